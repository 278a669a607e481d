// Package forms runs the travel form pipelines: digitizing a filled Anexo I
// into a prefill payload, and rendering a payload into the form's DOCX or
// PDF document.
package forms

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/assistant"
	"github.com/a3tai/mcp-diarias/internal/config"
	"github.com/a3tai/mcp-diarias/internal/convert"
	"github.com/a3tai/mcp-diarias/internal/docx"
	"github.com/a3tai/mcp-diarias/internal/pdf"
	"github.com/a3tai/mcp-diarias/internal/security"
)

// Service orchestrates the form components
type Service struct {
	cfg       *config.Config
	log       *logrus.Entry
	pdf       *pdf.Reader
	converter convert.Converter
	completer assistant.Completer
	assistant *assistant.Assistant
	templates *docx.TemplateStore
	inputs    *security.PathValidator
	newID     func() string
}

// Option customizes a Service
type Option func(*Service)

// WithConverter replaces the LibreOffice converter
func WithConverter(c convert.Converter) Option {
	return func(s *Service) { s.converter = c }
}

// WithCompleter replaces the language model client
func WithCompleter(c assistant.Completer) Option {
	return func(s *Service) { s.completer = c }
}

// WithIDGenerator replaces the generator of output file identifiers
func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

// NewService creates a new forms service with all components
func NewService(cfg *config.Config, log *logrus.Logger, opts ...Option) (*Service, error) {
	inputs, err := security.NewPathValidator(cfg.InputDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	entry := log.WithField("component", "forms")
	s := &Service{
		cfg:       cfg,
		log:       entry,
		pdf:       pdf.NewReader(cfg.MaxFileSize, log.WithField("component", "pdf")),
		templates: docx.NewTemplateStore(cfg.TemplatesDirectory, cfg.TemplateCacheTTL),
		inputs:    inputs,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.converter == nil {
		s.converter = convert.NewSOffice(cfg.ConverterBinary, cfg.ConverterTimeout,
			log.WithField("component", "convert"))
	}
	if s.completer == nil {
		s.completer = assistant.NewOpenAICompleter(cfg.AssistantBaseURL, cfg.AssistantModel,
			cfg.AssistantAPIKey, cfg.AssistantTimeout)
	}
	s.assistant = assistant.New(s.completer, log.WithField("component", "assistant"))

	return s, nil
}

// Templates exposes the template store
func (s *Service) Templates() *docx.TemplateStore {
	return s.templates
}

// Assistant exposes the drafting assistant
func (s *Service) Assistant() *assistant.Assistant {
	return s.assistant
}

// InputDirectory is the directory source documents are read from
func (s *Service) InputDirectory() string {
	return s.inputs.Root()
}
