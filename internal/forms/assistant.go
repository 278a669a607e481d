package forms

import (
	"context"
	"encoding/json"

	"github.com/a3tai/mcp-diarias/internal/anexo"
	"github.com/a3tai/mcp-diarias/internal/assistant"
	"github.com/a3tai/mcp-diarias/internal/errors"
)

// Draft asks the assistant for a partial payload of kind from free text
func (s *Service) Draft(ctx context.Context, kind anexo.Kind, text string) (*assistant.Draft, error) {
	return s.assistant.Draft(ctx, kind, text)
}

// Review asks the assistant to audit a JSON payload. Sensitive personal
// fields are stripped before the payload leaves the process.
func (s *Service) Review(ctx context.Context, kind string, payload []byte) (*assistant.Review, error) {
	var data map[string]any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInvalidPayload, msgInvalidJSON, err)
		}
	}
	return s.assistant.Review(ctx, kind, data)
}
