package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"html"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anexo1Lines = `IDENTIFICAÇÃO
Nome completo: João Pereira
CPF: 987.654.321-00
Siape: 7654321
DESCRIÇÃO DO MOTIVO DA VIAGEM: Reunião técnica
DESTINO (Ida):
Local de Origem: Bananeiras Local de Destino: João Pessoa Data/Hora: 04/06/2024 07:00
DESTINO (Retorno):
Local de Origem: João Pessoa Local de Destino: Bananeiras Data/Hora: 05/06/2024 19:00
DATA/HORA DA MISSÃO:
Data/Hora Início: 04/06/2024 09:00
Data/Hora Término: 05/06/2024 17:00
DÉBITO DO RECURSO:
( ) CCHSA ( ) CAVN (X) PROJETO: Extensão Rural`

func writeDocx(t *testing.T, dir, name, text string) string {
	t.Helper()
	var body strings.Builder
	for _, line := range strings.Split(text, "\n") {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + html.EscapeString(line) + `</w:t></w:r></w:p>`)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestRun_JSONOutput(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "anexo1.docx", anexo1Lines)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--format", "json", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var got struct {
		Target   string         `json:"target"`
		Source   string         `json:"source"`
		Filename string         `json:"filename"`
		Prefill  map[string]any `json:"prefill"`
		Warnings []string       `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, "anexo2", got.Target)
	assert.Equal(t, "docx", got.Source)
	assert.Equal(t, "anexo1.docx", got.Filename)
	assert.Empty(t, got.Warnings)
	assert.Equal(t, map[string]any{
		"nome":  "João Pereira",
		"cpf":   "98765432100",
		"siape": "7654321",
		"orgao": map[string]any{"tipo": "projetos", "detalhe": "Extensão Rural"},
	}, got.Prefill["proposto"])
}

func TestRun_TextOutput(t *testing.T) {
	path := writeDocx(t, t.TempDir(), "anexo1.docx", "IDENTIFICAÇÃO\nNome completo: João Pereira")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--target", "anexo1", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Arquivo: anexo1.docx (docx)")
	assert.Contains(t, out, "Formulário: anexo1")
	assert.Contains(t, out, "Avisos (")
	assert.Contains(t, out, `"nome_completo": "João Pereira"`)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notas.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o600))

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no file", nil, 2, "exactly one Anexo I file is required"},
		{"two files", []string{"a.pdf", "b.pdf"}, 2, "exactly one"},
		{"invalid target", []string{"--target", "anexo3", "a.pdf"}, 2, "invalid target"},
		{"invalid format", []string{"--format", "xml", "a.pdf"}, 2, "unsupported output format"},
		{"unknown flag", []string{"--nope", "a.pdf"}, 2, "unknown flag"},
		{"unsupported file", []string{txt}, 1, "Formato não suportado"},
		{"missing file", []string{filepath.Join(dir, "ausente.pdf")}, 1, "Arquivo não encontrado."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr.String(), tt.wantErr)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--help"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "USAGE:")
	assert.Contains(t, stdout.String(), "--target")
}
