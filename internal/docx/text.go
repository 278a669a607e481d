package docx

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

// ExtractText returns the body text in document order. Each paragraph is a
// line; each table row is a line holding its cell texts joined by spaces, so
// a label cell and its value cell read as "label: value".
func ExtractText(data []byte) (string, error) {
	pkg, err := Open(data)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeUnsupportedInput, "Falha ao ler DOCX.", err)
	}
	doc, err := pkg.Document()
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeUnsupportedInput, "Falha ao ler DOCX.", err)
	}
	root := doc.Root()
	if root == nil {
		return "", errors.New(errors.ErrorTypeUnsupportedInput, "Falha ao ler DOCX.")
	}
	body := root.SelectElement(tagBody)
	if body == nil {
		return "", nil
	}

	var lines []string
	walkBlocks(body, &lines)
	return strings.Join(lines, "\n"), nil
}

func walkBlocks(container *etree.Element, lines *[]string) {
	for _, el := range container.ChildElements() {
		switch el.FullTag() {
		case tagParagraph:
			*lines = append(*lines, paragraphText(el))
		case tagTable:
			for _, tr := range el.SelectElements(tagRow) {
				*lines = append(*lines, rowText(tr))
			}
		case tagSdt:
			if content := el.SelectElement(tagSdtBody); content != nil {
				walkBlocks(content, lines)
			}
		}
	}
}

func rowText(tr *etree.Element) string {
	var cells []string
	for _, tc := range tr.SelectElements(tagCell) {
		var paras []string
		walkBlocks(tc, &paras)
		text := strings.TrimSpace(strings.Join(paras, "\n"))
		if text != "" {
			cells = append(cells, text)
		}
	}
	return strings.Join(cells, " ")
}
