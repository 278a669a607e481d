package docx

import (
	"github.com/beevik/etree"
)

// RowGroup describes a repeatable itinerary row: the primary row carries
// the Primary token, an optional detail row right below it carries Detail.
type RowGroup struct {
	Direction string
	Primary   string
	Detail    string
	Keys      []string
}

// ItineraryGroups are the row groups of the Anexo I and II templates
var ItineraryGroups = []RowGroup{
	{
		Direction: "ida",
		Primary:   "ida_origem",
		Detail:    "ida_data_hora",
		Keys:      []string{"ida_origem", "ida_destino", "ida_data_hora"},
	},
	{
		Direction: "retorno",
		Primary:   "retorno_origem",
		Detail:    "retorno_data_hora",
		Keys:      []string{"retorno_origem", "retorno_destino", "retorno_data_hora"},
	},
}

// blank maps every key of the group to ""
func (g RowGroup) blank() map[string]string {
	m := make(map[string]string, len(g.Keys))
	for _, k := range g.Keys {
		m[k] = ""
	}
	return m
}

// values overlays a row item on the blank mapping so that a key the item
// lacks is cleared rather than left as a token
func (g RowGroup) values(item map[string]string) map[string]string {
	m := g.blank()
	for k, v := range item {
		m[k] = v
	}
	return m
}

// expandTables walks every table row by row. A row whose own cells carry a
// group's primary token is expanded to one row (or row pair) per item; with
// no items it is kept and blanked. Nested tables get their own turn.
func expandTables(body *etree.Element, groups []RowGroup, rows map[string][]map[string]string) {
	for _, tbl := range body.FindElements(".//" + tagTable) {
		trs := tbl.SelectElements(tagRow)
		for i := 0; i < len(trs); {
			g, ok := matchGroup(trs[i], groups)
			if !ok {
				i++
				continue
			}
			i += expandGroup(trs, i, g, rows[g.Direction])
		}
	}
}

func matchGroup(tr *etree.Element, groups []RowGroup) (RowGroup, bool) {
	for _, g := range groups {
		if rowContainsToken(tr, token(g.Primary)) {
			return g, true
		}
	}
	return RowGroup{}, false
}

// expandGroup expands the group anchored at trs[i] and returns how many
// template rows it consumed
func expandGroup(trs []*etree.Element, i int, g RowGroup, items []map[string]string) int {
	row := trs[i]
	var detail *etree.Element
	if g.Detail != "" && i+1 < len(trs) && rowContainsToken(trs[i+1], token(g.Detail)) {
		detail = trs[i+1]
	}
	consumed := 1
	if detail != nil {
		consumed = 2
	}

	if len(items) == 0 {
		replaceIn(rowParagraphs(row), g.blank())
		if detail != nil {
			replaceIn(rowParagraphs(detail), g.blank())
		}
		return consumed
	}

	// Shapes are captured before any substitution touches the rows.
	rowShape := row.Copy()
	var detailShape *etree.Element
	if detail != nil {
		detailShape = detail.Copy()
	}

	first := g.values(items[0])
	replaceIn(rowParagraphs(row), first)
	prev := row
	if detail != nil {
		replaceIn(rowParagraphs(detail), first)
		prev = detail
	}

	for _, item := range items[1:] {
		values := g.values(item)

		clone := rowShape.Copy()
		insertAfter(prev, clone)
		replaceIn(rowParagraphs(clone), values)
		prev = clone

		if detailShape != nil {
			dclone := detailShape.Copy()
			insertAfter(prev, dclone)
			replaceIn(rowParagraphs(dclone), values)
			prev = dclone
		}
	}
	return consumed
}

func insertAfter(prev, el *etree.Element) {
	parent := prev.Parent()
	parent.InsertChildAt(prev.Index()+1, el)
}
