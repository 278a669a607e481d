package forms

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/convert"
	"github.com/a3tai/mcp-diarias/internal/docx"
	"github.com/a3tai/mcp-diarias/internal/errors"
	"github.com/a3tai/mcp-diarias/internal/extraction"
	"github.com/a3tai/mcp-diarias/internal/prefill"
	"github.com/a3tai/mcp-diarias/internal/record"
	"github.com/a3tai/mcp-diarias/internal/textnorm"
)

// SourceKind is the format of a document to digitize
type SourceKind string

const (
	SourcePDF  SourceKind = "pdf"
	SourceDOCX SourceKind = "docx"
	SourceDOC  SourceKind = "doc"
)

const (
	msgUnsupported   = "Formato não suportado. Envie PDF, DOC ou DOCX."
	msgEmptyFile     = "Arquivo vazio. Verifique se o Anexo I foi exportado corretamente."
	msgEmptyDOCX     = "DOCX sem texto legível."
	msgDOCConversion = "Falha ao converter DOC para DOCX. Verifique o arquivo enviado."
	msgUnparsable    = "Não foi possível interpretar o documento."
)

// DetectSource tells the source kind from a file name extension
func DetectSource(filename string) (SourceKind, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return SourcePDF, nil
	case ".docx":
		return SourceDOCX, nil
	case ".doc":
		return SourceDOC, nil
	default:
		return "", errors.New(errors.ErrorTypeUnsupportedInput, msgUnsupported).WithContext(filename)
	}
}

// PrefillResult is a digitized Anexo I projected onto a target form
type PrefillResult struct {
	prefill.Result
	Filename string     `json:"filename"`
	Source   SourceKind `json:"source"`
}

// Prefill digitizes a filled Anexo I held in memory. The filename only
// selects the source kind. Missing or ambiguous fields become warnings;
// only unreadable input fails.
func (s *Service) Prefill(ctx context.Context, filename string, data []byte, target anexo.Kind) (*PrefillResult, error) {
	if _, err := anexo.ParseKind(string(target)); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeInvalidPayload, "Formulário de destino inválido. Use anexo1 ou anexo2.", err)
	}
	kind, err := DetectSource(filename)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrorTypeUnsupportedInput, msgEmptyFile)
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, errors.New(errors.ErrorTypeUnsupportedInput,
			fmt.Sprintf("Arquivo muito grande: %d bytes (máximo: %d bytes).", len(data), s.cfg.MaxFileSize))
	}

	log := s.log.WithFields(logrus.Fields{"filename": filename, "source": kind, "target": target})

	raw, err := s.extractText(ctx, kind, data)
	if err != nil {
		log.WithError(err).Info("Text extraction failed")
		return nil, err
	}

	doc := extraction.Parse(textnorm.Normalize(raw))
	log.WithField("blocks", doc.Summary()).Debug("Anexo I parsed")
	if doc.IsEmpty() {
		return nil, errors.New(errors.ErrorTypeUnsupportedInput, msgUnparsable)
	}

	res, err := prefill.Build(record.Assemble(doc), target)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, msgUnparsable, err)
	}

	log.WithField("warnings", len(res.Warnings)).Info("Anexo I digitized")
	return &PrefillResult{Result: res, Filename: filename, Source: kind}, nil
}

// PrefillFile digitizes a document from the input directory. Relative
// paths are taken from that directory.
func (s *Service) PrefillFile(ctx context.Context, path string, target anexo.Kind) (*PrefillResult, error) {
	resolved, err := s.inputs.Resolve(path)
	if err != nil {
		return nil, err
	}
	if _, err := DetectSource(resolved); err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnsupportedInput, "Arquivo não encontrado.", err).WithContext(path)
	}
	if info.IsDir() {
		return nil, errors.New(errors.ErrorTypeUnsupportedInput, "O caminho informado é um diretório.").WithContext(path)
	}
	if info.Size() > s.cfg.MaxFileSize {
		return nil, errors.New(errors.ErrorTypeUnsupportedInput,
			fmt.Sprintf("Arquivo muito grande: %d bytes (máximo: %d bytes).", info.Size(), s.cfg.MaxFileSize))
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnsupportedInput, "Não foi possível ler o arquivo.", err).WithContext(path)
	}
	return s.Prefill(ctx, filepath.Base(resolved), data, target)
}

func (s *Service) extractText(ctx context.Context, kind SourceKind, data []byte) (string, error) {
	switch kind {
	case SourcePDF:
		doc, err := s.pdf.Read(data)
		if err != nil {
			return "", err
		}
		return doc.Text, nil
	case SourceDOCX:
		return docxText(data)
	case SourceDOC:
		converted, err := s.docToDOCX(ctx, data)
		if err != nil {
			return "", err
		}
		return docxText(converted)
	default:
		return "", errors.New(errors.ErrorTypeUnsupportedInput, msgUnsupported)
	}
}

func docxText(data []byte) (string, error) {
	text, err := docx.ExtractText(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New(errors.ErrorTypeUnsupportedInput, msgEmptyDOCX)
	}
	return text, nil
}

// docToDOCX converts a legacy .doc through the converter in a scratch
// directory removed afterwards
func (s *Service) docToDOCX(ctx context.Context, data []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "anexo-doc-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, msgDOCConversion, err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "anexo.doc")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, msgDOCConversion, err)
	}

	out, err := s.converter.Convert(ctx, src, dir, convert.FormatDOCX)
	if err != nil {
		if errors.Is(err, errors.ErrorTypeTimeout) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrorTypeCollaborator, msgDOCConversion, err)
	}

	converted, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeCollaborator, msgDOCConversion, err)
	}
	return converted, nil
}
