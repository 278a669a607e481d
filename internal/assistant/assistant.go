// Package assistant drafts and reviews form payloads with a language model.
// Sensitive personal data is removed before anything is sent, and the
// model's reply must decode as JSON.
package assistant

import (
	"context"
	"encoding/json"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/errors"
)

const (
	msgEmptyText   = "Informe um texto para o assistente."
	msgInvalidJSON = "Modelo não retornou JSON válido."
	msgReviewInput = "Envie {kind, data}."

	// rawExcerpt bounds how much of an undecodable reply is kept for logs
	rawExcerpt = 4000
)

// Draft is a partial payload suggested from free text, plus the questions
// the model could not settle
type Draft struct {
	Prefill   map[string]any `json:"prefill"`
	Questions []string       `json:"questions"`
}

// Review lists consistency warnings and suggested texts for a payload
type Review struct {
	Warnings    []string          `json:"warnings"`
	Suggestions map[string]string `json:"suggestions"`
}

// Assistant wraps a Completer with the form prompts
type Assistant struct {
	completer Completer
	log       *logrus.Entry
}

// New creates an assistant over completer
func New(completer Completer, log *logrus.Entry) *Assistant {
	return &Assistant{completer: completer, log: log}
}

// Draft asks the model to prefill the given form from a free-text account
// of the trip
func (a *Assistant) Draft(ctx context.Context, kind anexo.Kind, text string) (*Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New(errors.ErrorTypeInvalidPayload, msgEmptyText)
	}

	var prompt string
	switch kind {
	case anexo.KindAnexo1:
		prompt = anexo1Draft(text)
	case anexo.KindAnexo2:
		prompt = anexo2Draft(text)
	default:
		return nil, errors.New(errors.ErrorTypeInvalidPayload, "Tipo de formulário desconhecido: "+string(kind)+".")
	}

	var draft Draft
	if err := a.ask(ctx, prompt, &draft); err != nil {
		return nil, err
	}
	if draft.Prefill == nil {
		draft.Prefill = map[string]any{}
	}
	if draft.Questions == nil {
		draft.Questions = []string{}
	}
	return &draft, nil
}

// Review asks the model to audit a payload. kind names the document in the
// prompt and defaults to "documento".
func (a *Assistant) Review(ctx context.Context, kind string, data map[string]any) (*Review, error) {
	if data == nil {
		return nil, errors.New(errors.ErrorTypeInvalidPayload, msgReviewInput)
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		kind = "documento"
	}

	payload, err := json.Marshal(Sanitize(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeInvalidPayload, msgReviewInput, err)
	}

	var rev Review
	if err := a.ask(ctx, review(kind, string(payload)), &rev); err != nil {
		return nil, err
	}
	if rev.Warnings == nil {
		rev.Warnings = []string{}
	}
	if rev.Suggestions == nil {
		rev.Suggestions = map[string]string{}
	}
	return &rev, nil
}

func (a *Assistant) ask(ctx context.Context, prompt string, out any) error {
	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.log.WithError(err).Warn("Assistant completion failed")
		return err
	}
	if err := decodeReply(raw, out); err != nil {
		excerpt := raw
		if len(excerpt) > rawExcerpt {
			excerpt = excerpt[:rawExcerpt]
		}
		a.log.WithError(err).WithField("raw", excerpt).Warn("Assistant reply is not JSON")
		return errors.Wrap(errors.ErrorTypeCollaborator, msgInvalidJSON, err)
	}
	return nil
}

// decodeReply decodes a model reply, repairing common defects such as
// code fences, trailing commas or single quotes when the strict decode
// fails. A reply without any object is rejected outright.
func decodeReply(raw string, out any) error {
	if !strings.Contains(raw, "{") {
		return errors.New(errors.ErrorTypeCollaborator, "reply has no JSON object")
	}
	if err := json.Unmarshal([]byte(raw), out); err == nil {
		return nil
	}
	repaired, err := jsonrepair.RepairJSON(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(repaired), out)
}
