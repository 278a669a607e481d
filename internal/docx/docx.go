// Package docx fills DOCX templates and reads the text of DOCX documents.
// Documents are handled as in-memory byte slices: the template source is
// never modified.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

const documentPart = "word/document.xml"

// Package is an opened DOCX archive
type Package struct {
	zr *zip.Reader
}

// Open reads a DOCX archive from memory
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}
	if findFile(zr, documentPart) == nil {
		return nil, fmt.Errorf("docx archive has no %s", documentPart)
	}
	return &Package{zr: zr}, nil
}

func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readPart(f *zip.File) (*etree.Document, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.Name, err)
	}
	return doc, nil
}

// Document parses the main document part
func (p *Package) Document() (*etree.Document, error) {
	return readPart(findFile(p.zr, documentPart))
}

// isHeaderOrFooter matches word/header1.xml, word/footer2.xml and so on
func isHeaderOrFooter(name string) bool {
	dir, file := path.Split(name)
	if dir != "word/" || !strings.HasSuffix(file, ".xml") {
		return false
	}
	return strings.HasPrefix(file, "header") || strings.HasPrefix(file, "footer")
}

// rewrite copies the archive, replacing the parts transform changed.
// Untouched entries are copied raw, and rewritten entries keep their
// original names, methods and timestamps, so equal input gives equal output.
func (p *Package) rewrite(transform func(name string, doc *etree.Document) (bool, error)) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range p.zr.File {
		if f.Name != documentPart && !isHeaderOrFooter(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		doc, err := readPart(f)
		if err != nil {
			return nil, err
		}
		changed, err := transform(f.Name, doc)
		if err != nil {
			return nil, err
		}
		if !changed {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		out, err := doc.WriteToBytes()
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", f.Name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(out); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Render fills a template with the itinerary row groups. A nil rows map
// skips row expansion; the joined itinerary placeholders of the mapping
// then fill the rows as plain text.
func Render(template []byte, mapping map[string]string, rows map[string][]map[string]string) ([]byte, error) {
	return RenderGroups(template, mapping, rows, ItineraryGroups)
}

// RenderGroups fills a template, expanding the given row groups first and
// then substituting the mapping in every paragraph of the body, headers and
// footers. Tokens absent from the mapping are left as they are.
func RenderGroups(template []byte, mapping map[string]string, rows map[string][]map[string]string, groups []RowGroup) ([]byte, error) {
	pkg, err := Open(template)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeTemplateStructural, "Template DOCX inválido.", err)
	}

	out, err := pkg.rewrite(func(name string, doc *etree.Document) (bool, error) {
		root := doc.Root()
		if root == nil {
			return false, fmt.Errorf("%s has no root element", name)
		}
		if name == documentPart && rows != nil {
			body := root.SelectElement(tagBody)
			if body == nil {
				return false, fmt.Errorf("%s has no body", name)
			}
			expandTables(body, groups, rows)
			// expansion always rewrites the part
			replaceInTree(root, mapping)
			return true, nil
		}
		return replaceInTree(root, mapping), nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeTemplateStructural, "Falha ao preencher o template DOCX.", err)
	}
	return out, nil
}
