package docx

import (
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// WordprocessingML tags
const (
	tagBody      = "w:body"
	tagParagraph = "w:p"
	tagRun       = "w:r"
	tagText      = "w:t"
	tagTab       = "w:tab"
	tagBreak     = "w:br"
	tagCR        = "w:cr"
	tagHyperlink = "w:hyperlink"
	tagTable     = "w:tbl"
	tagRow       = "w:tr"
	tagCell      = "w:tc"
	tagSdt       = "w:sdt"
	tagSdtBody   = "w:sdtContent"
)

// runs returns the text runs of a paragraph in order, including runs nested
// in hyperlinks
func runs(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, child := range p.ChildElements() {
		switch child.FullTag() {
		case tagRun:
			out = append(out, child)
		case tagHyperlink:
			out = append(out, child.SelectElements(tagRun)...)
		}
	}
	return out
}

func runText(r *etree.Element) string {
	var b strings.Builder
	for _, child := range r.ChildElements() {
		switch child.FullTag() {
		case tagText:
			b.WriteString(child.Text())
		case tagTab:
			b.WriteByte('\t')
		case tagBreak, tagCR:
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func paragraphText(p *etree.Element) string {
	var b strings.Builder
	for _, r := range runs(p) {
		b.WriteString(runText(r))
	}
	return b.String()
}

// setRunText replaces the textual content of a run, keeping its properties
// and any non-text content. Line breaks and tabs become w:br and w:tab.
func setRunText(r *etree.Element, text string) {
	for _, child := range r.ChildElements() {
		switch child.FullTag() {
		case tagText, tagTab, tagBreak, tagCR:
			r.RemoveChild(child)
		}
	}
	if text == "" {
		return
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.CreateElement(tagBreak)
		}
		for j, chunk := range strings.Split(line, "\t") {
			if j > 0 {
				r.CreateElement(tagTab)
			}
			if chunk == "" {
				continue
			}
			t := r.CreateElement(tagText)
			t.CreateAttr("xml:space", "preserve")
			t.SetText(chunk)
		}
	}
}

func token(key string) string {
	return "{{" + key + "}}"
}

var tokenPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// replaceInParagraph substitutes every {{key}} of the paragraph in a single
// pass over its original text, so a value that itself spells a token is
// written as is. The runs are concatenated first so a token split across
// runs is still found; when anything changed the whole text lands in the
// first run and the other runs are emptied. Tokens without a mapping stay.
func replaceInParagraph(p *etree.Element, mapping map[string]string) bool {
	rs := runs(p)
	if len(rs) == 0 {
		return false
	}
	full := paragraphText(p)
	if !strings.Contains(full, "{{") {
		return false
	}

	changed := false
	full = tokenPattern.ReplaceAllStringFunc(full, func(tok string) string {
		v, ok := mapping[tok[2:len(tok)-2]]
		if !ok {
			return tok
		}
		changed = true
		return v
	})
	if !changed {
		return false
	}

	for _, r := range rs[1:] {
		setRunText(r, "")
	}
	setRunText(rs[0], full)
	return true
}

func replaceIn(paragraphs []*etree.Element, mapping map[string]string) bool {
	changed := false
	for _, p := range paragraphs {
		if replaceInParagraph(p, mapping) {
			changed = true
		}
	}
	return changed
}

// replaceInTree substitutes in every paragraph below root
func replaceInTree(root *etree.Element, mapping map[string]string) bool {
	return replaceIn(root.FindElements(".//"+tagParagraph), mapping)
}

// rowParagraphs returns the paragraphs of a table row's own cells, content
// controls included. Tables nested in a cell are left out.
func rowParagraphs(tr *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, child := range el.ChildElements() {
			switch child.FullTag() {
			case tagParagraph:
				out = append(out, child)
			case tagCell, tagSdt, tagSdtBody:
				walk(child)
			}
		}
	}
	walk(tr)
	return out
}

func rowContainsToken(tr *etree.Element, tok string) bool {
	for _, p := range rowParagraphs(tr) {
		if strings.Contains(paragraphText(p), tok) {
			return true
		}
	}
	return false
}
