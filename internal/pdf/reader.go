// Package pdf extracts the text layer of PDF documents held in memory.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

// Content types reported for a read document
const (
	ContentText    = "text"
	ContentMixed   = "mixed"
	ContentScanned = "scanned_images"
	ContentEmpty   = "no_content"
)

const (
	msgReadFailure = "Falha ao ler PDF. Certifique-se de que é um PDF com texto."
	msgNoText      = "PDF sem texto. Envie um PDF que não seja imagem/scan."
)

// Document is the text content of a PDF
type Document struct {
	Text        string
	Pages       int
	ImageCount  int
	ContentType string
}

// Reader handles PDF text extraction
type Reader struct {
	maxFileSize int64
	maxTextSize int
	log         *logrus.Entry
}

// NewReader creates a new PDF reader with the specified constraints
func NewReader(maxFileSize int64, log *logrus.Entry) *Reader {
	// pdfcpu would otherwise create a configuration directory under $HOME
	api.DisableConfigDir()

	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit
		log:         log,
	}
}

// Read extracts the text of every page, pages separated by a newline. A
// document without any text layer is rejected as unsupported input.
func (r *Reader) Read(data []byte) (*Document, error) {
	if r.maxFileSize > 0 && int64(len(data)) > r.maxFileSize {
		return nil, errors.New(errors.ErrorTypeUnsupportedInput,
			fmt.Sprintf("Arquivo muito grande: %d bytes (máximo: %d bytes).", len(data), r.maxFileSize))
	}

	pages, err := pageCount(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnsupportedInput, msgReadFailure, err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnsupportedInput, msgReadFailure, err)
	}

	text, err := r.extractTextContent(pdfReader)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnsupportedInput, msgReadFailure, err)
	}

	doc := &Document{
		Text:       text,
		Pages:      pages,
		ImageCount: countImages(pdfReader),
	}
	doc.ContentType = analyzeContentType(text, doc.ImageCount)

	r.log.WithFields(logrus.Fields{
		"pages":        doc.Pages,
		"images":       doc.ImageCount,
		"content_type": doc.ContentType,
		"text_length":  len(doc.Text),
	}).Debug("PDF text extracted")

	if strings.TrimSpace(doc.Text) == "" {
		return doc, errors.New(errors.ErrorTypeUnsupportedInput, msgNoText).WithContext(doc.ContentType)
	}
	return doc, nil
}

// pageCount reads the document structure with pdfcpu, which rejects broken
// files before the text extractor sees them
func pageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// extractTextContent extracts text content from a PDF reader
func (r *Reader) extractTextContent(pdfReader *pdf.Reader) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("text extraction panicked: %v", rec)
		}
	}()

	var builder strings.Builder
	totalLength := 0

	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			r.log.WithError(err).WithField("page", pageNum).Debug("Skipping unreadable page")
			continue
		}

		if totalLength+len(content) > r.maxTextSize {
			remaining := r.maxTextSize - totalLength
			if remaining > 0 {
				builder.WriteString(content[:remaining])
			}
			break
		}

		if pageNum > 1 {
			builder.WriteByte('\n')
		}
		builder.WriteString(content)
		totalLength += len(content)
	}

	return builder.String(), nil
}

// analyzeContentType determines the type of content in the PDF
func analyzeContentType(text string, imageCount int) string {
	// Minimum text length to consider content meaningful
	const minMeaningfulTextLength = 50

	clean := strings.TrimSpace(text)
	hasImages := imageCount > 0

	if len(clean) < minMeaningfulTextLength {
		if hasImages {
			return ContentScanned
		}
		if clean == "" {
			return ContentEmpty
		}
		return ContentText
	}
	if hasImages {
		return ContentMixed
	}
	return ContentText
}

// countImages counts image XObjects over all pages
func countImages(pdfReader *pdf.Reader) int {
	count := 0
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		count += countImagesOnPage(pdfReader, pageNum)
	}
	return count
}

func countImagesOnPage(pdfReader *pdf.Reader, pageNum int) (count int) {
	defer func() {
		if recover() != nil {
			count = 0
		}
	}()

	page := pdfReader.Page(pageNum)
	if page.V.IsNull() {
		return 0
	}

	resources := page.V.Key("Resources")
	if resources.IsNull() {
		return 0
	}

	xObjects := resources.Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return 0
	}

	for _, key := range xObjects.Keys() {
		obj := xObjects.Key(key)
		if obj.IsNull() {
			continue
		}
		subtype := obj.Key("Subtype")
		if subtype.IsNull() || subtype.Name() != "Image" {
			continue
		}
		count++
	}
	return count
}
