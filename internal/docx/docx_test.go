package docx

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

var fixtureTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

type part struct {
	name string
	body string
}

func buildDocx(t *testing.T, body string, extra ...part) []byte {
	t.Helper()

	parts := []part{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`},
		{documentPart, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`},
	}
	parts = append(parts, extra...)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: fixtureTime})
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// para builds a paragraph with one run per argument
func para(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		b.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + r + `</w:t></w:r>`)
	}
	b.WriteString("</w:p>")
	return b.String()
}

// row builds a table row with one single-paragraph cell per argument
func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("<w:tr>")
	for _, c := range cells {
		b.WriteString("<w:tc>" + para(c) + "</w:tc>")
	}
	b.WriteString("</w:tr>")
	return b.String()
}

func table(rows ...string) string {
	return "<w:tbl>" + strings.Join(rows, "") + "</w:tbl>"
}

func itineraryTemplate(t *testing.T) []byte {
	return buildDocx(t,
		para("Anexo de ", "{{nome}}")+
			table(
				row("Origem", "Destino"),
				row("{{ida_origem}}", "{{ida_destino}}"),
				row("Data/Hora: {{ida_data_hora}}"),
				row("{{retorno_origem}}", "{{retorno_destino}}"),
				row("Data/Hora: {{retorno_data_hora}}"),
				row("Total"),
			))
}

func documentOf(t *testing.T, data []byte) *etree.Document {
	t.Helper()
	pkg, err := Open(data)
	require.NoError(t, err)
	doc, err := pkg.Document()
	require.NoError(t, err)
	return doc
}

func TestRender_TokenSplitAcrossRuns(t *testing.T) {
	tpl := buildDocx(t, para("Nome: {{nome", "_com", "pleto}}!"))

	out, err := Render(tpl, map[string]string{"nome_completo": "Maria"}, nil)
	require.NoError(t, err)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Equal(t, "Nome: Maria!", text)

	// the first run keeps its formatting, the others are emptied
	p := documentOf(t, out).FindElement("//w:p")
	rs := p.SelectElements("w:r")
	require.Len(t, rs, 3)
	assert.NotNil(t, rs[0].SelectElement("w:rPr"))
	assert.Equal(t, "Nome: Maria!", runText(rs[0]))
	assert.Empty(t, runText(rs[1]))
	assert.Empty(t, runText(rs[2]))
}

func TestRender_ExpandsRowPairs(t *testing.T) {
	rows := map[string][]map[string]string{
		"ida": {
			{"ida_origem": "A1", "ida_destino": "B1", "ida_data_hora": "d1"},
			{"ida_origem": "A2", "ida_destino": "B2", "ida_data_hora": "d2"},
			{"ida_origem": "A3", "ida_destino": "B3", "ida_data_hora": "d3"},
		},
		"retorno": {},
	}

	out, err := Render(itineraryTemplate(t), map[string]string{"nome": "Maria"}, rows)
	require.NoError(t, err)

	trs := documentOf(t, out).FindElements("//w:tbl/w:tr")
	assert.Len(t, trs, 10)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Anexo de Maria",
		"Origem Destino",
		"A1 B1", "Data/Hora: d1",
		"A2 B2", "Data/Hora: d2",
		"A3 B3", "Data/Hora: d3",
		"", "Data/Hora:",
		"Total",
	}, "\n"), text)
	assert.NotContains(t, text, "{{")
}

func TestRender_ZeroLegsKeepsBlankedRows(t *testing.T) {
	out, err := Render(itineraryTemplate(t), map[string]string{}, map[string][]map[string]string{})
	require.NoError(t, err)

	trs := documentOf(t, out).FindElements("//w:tbl/w:tr")
	assert.Len(t, trs, 6)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.NotContains(t, text, "ida_")
	assert.NotContains(t, text, "retorno_")
	// unrelated tokens without a value stay
	assert.Contains(t, text, "{{nome}}")
}

func TestRender_MissingRowKeyIsCleared(t *testing.T) {
	rows := map[string][]map[string]string{
		"ida": {{"ida_origem": "A1"}, {"ida_destino": "B2"}},
	}

	out, err := Render(itineraryTemplate(t), map[string]string{"ida_destino": "joined"}, rows)
	require.NoError(t, err)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Contains(t, text, "A1\nData/Hora:\nB2\nData/Hora:")
	assert.NotContains(t, text, "joined")
}

func TestRender_WithoutRowsUsesJoinedPlaceholders(t *testing.T) {
	mapping := map[string]string{
		"ida_origem":    "A1\nA2",
		"ida_destino":   "B1\tB2",
		"ida_data_hora": "",
	}

	out, err := Render(itineraryTemplate(t), mapping, nil)
	require.NoError(t, err)

	trs := documentOf(t, out).FindElements("//w:tbl/w:tr")
	assert.Len(t, trs, 6)

	brs := trs[1].FindElements(".//w:br")
	assert.Len(t, brs, 1)
	tabs := trs[1].FindElements(".//w:tab")
	assert.Len(t, tabs, 1)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Contains(t, text, "A1\nA2 B1\tB2")
}

func TestRender_NestedTableExpandsOnlyInnerRows(t *testing.T) {
	inner := table(
		row("{{ida_origem}}", "{{ida_destino}}"),
		row("{{ida_data_hora}}"),
	)
	tpl := buildDocx(t, table(
		"<w:tr><w:tc>"+para("Trechos")+inner+"</w:tc></w:tr>",
		row("Outer footer"),
	))
	rows := map[string][]map[string]string{
		"ida": {
			{"ida_origem": "A1", "ida_destino": "B1", "ida_data_hora": "D1"},
			{"ida_origem": "A2", "ida_destino": "B2", "ida_data_hora": "D2"},
		},
	}

	out, err := Render(tpl, map[string]string{}, rows)
	require.NoError(t, err)

	doc := documentOf(t, out)
	assert.Len(t, doc.FindElements("//w:body/w:tbl/w:tr"), 2)
	assert.Len(t, doc.FindElements("//w:tc/w:tbl/w:tr"), 4)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Equal(t, "Trechos\nA1 B1\nD1\nA2 B2\nD2\nOuter footer", text)
}

func TestRender_RowTokenInsideContentControl(t *testing.T) {
	sdtCell := "<w:tc><w:sdt><w:sdtContent>" + para("{{ida_origem}}") + "</w:sdtContent></w:sdt></w:tc>"
	tpl := buildDocx(t, table("<w:tr>"+sdtCell+"</w:tr>"))
	rows := map[string][]map[string]string{
		"ida": {{"ida_origem": "A1"}, {"ida_origem": "A2"}},
	}

	out, err := Render(tpl, map[string]string{}, rows)
	require.NoError(t, err)

	assert.Len(t, documentOf(t, out).FindElements("//w:tbl/w:tr"), 2)
	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Equal(t, "A1\nA2", text)
}

func TestRender_ValuesAreNotRescanned(t *testing.T) {
	tpl := buildDocx(t, para("{{motivo_viagem}} / {{siape}} / {{outro}}"))
	mapping := map[string]string{
		"motivo_viagem": "ver {{siape}}",
		"siape":         "1234567",
	}

	out, err := Render(tpl, mapping, nil)
	require.NoError(t, err)

	text, err := ExtractText(out)
	require.NoError(t, err)
	assert.Equal(t, "ver {{siape}} / 1234567 / {{outro}}", text)
}

func TestRender_Deterministic(t *testing.T) {
	tpl := itineraryTemplate(t)
	mapping := map[string]string{"nome": "Maria", "a": "1", "b": "2"}
	rows := map[string][]map[string]string{
		"ida":     {{"ida_origem": "A"}, {"ida_origem": "B"}},
		"retorno": {{"retorno_origem": "C"}},
	}

	first, err := Render(tpl, mapping, rows)
	require.NoError(t, err)
	second, err := Render(tpl, mapping, rows)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestRender_DoesNotModifyTemplate(t *testing.T) {
	tpl := itineraryTemplate(t)
	original := append([]byte(nil), tpl...)

	_, err := Render(tpl, map[string]string{"nome": "Maria"}, map[string][]map[string]string{
		"ida": {{"ida_origem": "A"}, {"ida_origem": "B"}},
	})
	require.NoError(t, err)
	assert.Equal(t, original, tpl)
}

func TestRender_HeadersAndFooters(t *testing.T) {
	tpl := buildDocx(t, para("corpo"),
		part{"word/header1.xml", `<w:hdr ` + wordNS + `>` + para("{{siape}}") + `</w:hdr>`},
		part{"word/media/header.png", "not xml"},
	)

	out, err := Render(tpl, map[string]string{"siape": "1234567"}, nil)
	require.NoError(t, err)

	pkg, err := Open(out)
	require.NoError(t, err)
	hdr, err := readPart(findFile(pkg.zr, "word/header1.xml"))
	require.NoError(t, err)
	assert.Equal(t, "1234567", paragraphText(hdr.FindElement("//w:p")))
	assert.NotNil(t, findFile(pkg.zr, "word/media/header.png"))
}

func TestRender_InvalidTemplate(t *testing.T) {
	_, err := Render([]byte("not a zip"), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeTemplateStructural))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("word/other.xml")
	require.NoError(t, zw.Close())

	_, err = Render(buf.Bytes(), nil, nil)
	assert.True(t, errors.Is(err, errors.ErrorTypeTemplateStructural))
}

func TestExtractText(t *testing.T) {
	body := para("ANEXO I") +
		para("Nome completo: ", "Maria") +
		table(
			row("Local de Origem:", "Bananeiras"),
			row("", ""),
		) +
		`<w:sdt><w:sdtContent>` + para("Conteúdo controlado") + `</w:sdtContent></w:sdt>` +
		`<w:p><w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink><w:r><w:tab/><w:t>fim</w:t></w:r></w:p>`

	text, err := ExtractText(buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, "ANEXO I\nNome completo: Maria\nLocal de Origem: Bananeiras\n\nConteúdo controlado\nlink\tfim", text)
}

func TestExtractText_Invalid(t *testing.T) {
	_, err := ExtractText([]byte{0x50, 0x4b, 0x03})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeUnsupportedInput))
	assert.Equal(t, "Falha ao ler DOCX.", errors.UserMessage(err))
}

func TestTemplateStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anexo1_template.docx")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0o600))

	store := NewTemplateStore(dir, time.Minute)
	data, err := store.Load("anexo1_template.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	// served from cache once loaded
	require.NoError(t, os.Remove(path))
	data, err = store.Load("anexo1_template.docx")
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)

	store.Invalidate()
	_, err = store.Load("anexo1_template.docx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrorTypeTemplateStructural))
	assert.Contains(t, errors.UserMessage(err), "anexo1_template.docx não encontrado")
}

func TestTemplateStore_RejectsPaths(t *testing.T) {
	store := NewTemplateStore(t.TempDir(), 0)

	for _, name := range []string{"", "../secret.docx", "sub/anexo.docx"} {
		_, err := store.Load(name)
		assert.True(t, errors.Is(err, errors.ErrorTypeTemplateStructural), name)
	}
}

func TestSetRunText_Empty(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<w:r `+wordNS+`><w:rPr/><w:t>x</w:t><w:br/><w:t>y</w:t></w:r>`))
	r := doc.Root()

	setRunText(r, "")
	assert.Equal(t, "", runText(r))
	assert.NotNil(t, r.SelectElement("w:rPr"))
}
