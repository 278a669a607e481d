package assistant

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/a3tai/mcp-diarias/internal/errors"
)

// DefaultTemperature keeps drafts close to the user's text
const DefaultTemperature = 0.2

// Completer sends one prompt to a language model and returns its raw reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter talks to an OpenAI-compatible chat completions endpoint.
// Ollama serves one under /v1.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
}

// NewOpenAICompleter creates a completer for baseURL. Ollama ignores the API
// key, so an empty key is replaced by a fixed one.
func NewOpenAICompleter(baseURL, model, apiKey string, timeout time.Duration) *OpenAICompleter {
	if apiKey == "" {
		apiKey = "ollama"
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	return &OpenAICompleter{
		client:      client,
		model:       model,
		temperature: DefaultTemperature,
		timeout:     timeout,
	}
}

// Complete sends prompt as a single user message
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrap(errors.ErrorTypeTimeout, "O assistente não respondeu a tempo.", err)
		}
		return "", errors.Wrap(errors.ErrorTypeCollaborator, "Falha ao chamar o assistente.", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrorTypeCollaborator, "Falha ao chamar o assistente.").
			WithContext("empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
