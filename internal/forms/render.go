package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/convert"
	"github.com/a3tai/mcp-diarias/internal/docx"
	"github.com/a3tai/mcp-diarias/internal/errors"
	"github.com/a3tai/mcp-diarias/internal/placeholders"
)

// Output formats of Generate
const (
	OutputDOCX = "docx"
	OutputPDF  = "pdf"
)

const (
	msgInvalidJSON   = "Payload JSON inválido."
	msgFixFields     = "Corrija os campos indicados antes de gerar o documento."
	msgPDFConversion = "Falha ao converter DOCX para PDF."
	msgWriteOutput   = "Falha ao gravar o documento gerado."
)

// GenerateResult describes a rendered document. On a validation failure
// only Kind and Errors are set.
type GenerateResult struct {
	Kind     anexo.Kind                `json:"kind"`
	Format   string                    `json:"format,omitempty"`
	Path     string                    `json:"path,omitempty"`
	Filename string                    `json:"filename,omitempty"`
	Size     int64                     `json:"size,omitempty"`
	Flags    any                       `json:"flags,omitempty"`
	Errors   []placeholders.FieldError `json:"errors,omitempty"`
}

// Preview validates a payload and returns its derived flags and, when
// valid, the placeholders the document would be rendered with
func (s *Service) Preview(kind anexo.Kind, payload []byte) (*placeholders.Prepared, error) {
	return s.prepare(kind, payload)
}

func (s *Service) prepare(kind anexo.Kind, payload []byte) (*placeholders.Prepared, error) {
	var prep placeholders.Prepared
	switch kind {
	case anexo.KindAnexo1:
		var p anexo.Anexo1
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInvalidPayload, msgInvalidJSON, err)
		}
		prep = placeholders.PrepareAnexo1(p, s.cfg.Deadlines)
	case anexo.KindAnexo2:
		var p anexo.Anexo2
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInvalidPayload, msgInvalidJSON, err)
		}
		prep = placeholders.PrepareAnexo2(p, s.cfg.Deadlines)
	default:
		return nil, errors.New(errors.ErrorTypeInvalidPayload, "Formulário inválido. Use anexo1 ou anexo2.")
	}
	return &prep, nil
}

// ParseOutputFormat validates an output format; empty means DOCX
func ParseOutputFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", OutputDOCX:
		return OutputDOCX, nil
	case OutputPDF:
		return OutputPDF, nil
	default:
		return "", errors.New(errors.ErrorTypeInvalidPayload, "Formato de saída inválido. Use docx ou pdf.").WithContext(format)
	}
}

// Generate validates a payload, renders the form template and writes
// <kind>_<id>.docx to the data directory. The PDF format converts that file
// and keeps both.
func (s *Service) Generate(ctx context.Context, kind anexo.Kind, payload []byte, format string) (*GenerateResult, error) {
	format, err := ParseOutputFormat(format)
	if err != nil {
		return nil, err
	}

	prep, err := s.prepare(kind, payload)
	if err != nil {
		return nil, err
	}

	log := s.log.WithFields(logrus.Fields{"kind": kind, "format": format})
	if !prep.OK {
		log.WithField("errors", len(prep.Errors)).Info("Payload rejected")
		return &GenerateResult{Kind: kind, Flags: prep.Flags, Errors: prep.Errors},
			errors.New(errors.ErrorTypeInvalidPayload, msgFixFields).WithContext(fieldSummary(prep.Errors))
	}

	template, err := s.templates.Load(kind.TemplateName())
	if err != nil {
		log.WithError(err).Error("Template unavailable")
		return nil, err
	}

	rendered, err := docx.Render(template, prep.Placeholders, prep.Rows)
	if err != nil {
		log.WithError(err).Error("Template rendering failed")
		return nil, err
	}

	name := fmt.Sprintf("%s_%s.docx", kind, s.newID())
	out := filepath.Join(s.cfg.DataDirectory, name)
	if err := os.WriteFile(out, rendered, 0o640); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, msgWriteOutput, err)
	}

	if format == OutputPDF {
		converted, err := s.converter.Convert(ctx, out, s.cfg.DataDirectory, convert.FormatPDF)
		if err != nil {
			log.WithError(err).Warn("PDF conversion failed")
			if rmErr := os.Remove(out); rmErr != nil {
				log.WithError(rmErr).Warn("Failed to remove intermediate DOCX")
			}
			if errors.Is(err, errors.ErrorTypeTimeout) {
				return nil, err
			}
			return nil, errors.Wrap(errors.ErrorTypeCollaborator, msgPDFConversion, err)
		}
		out = converted
	}

	info, err := os.Stat(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeUnknown, msgWriteOutput, err)
	}

	log.WithField("path", out).Info("Document generated")
	return &GenerateResult{
		Kind:     kind,
		Format:   format,
		Path:     out,
		Filename: filepath.Base(out),
		Size:     info.Size(),
		Flags:    prep.Flags,
	}, nil
}

func fieldSummary(errs []placeholders.FieldError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Field + ": " + e.Message
	}
	return strings.Join(parts, "; ")
}
