package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/timmy/clueso/internal/prompts"
)

// DefaultKeyCheckModel is cheap and available to every key.
const DefaultKeyCheckModel = "gpt-3.5-turbo"

// ErrAPIKeyNotSet is returned when no key is configured.
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set: please set OPENAI_API_KEY")

// KeyCheck verifies an API key with a tiny chat completion.
type KeyCheck struct {
	client openai.Client
	model  string
}

// KeyCheckResult is the model's reply to the check prompt.
type KeyCheckResult struct {
	Reply string
	Model string
}

// KeyCheckError is a failed check with troubleshooting hints.
type KeyCheckError struct {
	StatusCode int
	Err        error
	Hints      []string
}

func (e *KeyCheckError) Error() string { return e.Err.Error() }

func (e *KeyCheckError) Unwrap() error { return e.Err }

// NewKeyCheck creates a checker. An empty baseURL uses the public API and
// an empty model uses DefaultKeyCheckModel.
func NewKeyCheck(apiKey, baseURL, model string) (*KeyCheck, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultKeyCheckModel
	}
	return &KeyCheck{client: openai.NewClient(opts...), model: model}, nil
}

// Run sends the check prompt and returns the reply.
func (k *KeyCheck) Run(ctx context.Context) (KeyCheckResult, error) {
	completion, err := k.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(k.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompts.KeyCheckPrompt),
		},
		MaxTokens: openai.Int(10),
	})
	if err != nil {
		return KeyCheckResult{}, classifyKeyError(err)
	}
	if len(completion.Choices) == 0 {
		return KeyCheckResult{}, errors.New("no completion choices returned")
	}
	return KeyCheckResult{
		Reply: strings.TrimSpace(completion.Choices[0].Message.Content),
		Model: completion.Model,
	}, nil
}

func classifyKeyError(err error) error {
	out := &KeyCheckError{Err: fmt.Errorf("OpenAI API call failed: %w", err)}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		out.StatusCode = apiErr.StatusCode
	}
	switch {
	case out.StatusCode == http.StatusUnauthorized || strings.Contains(err.Error(), "Incorrect API key"):
		out.Hints = []string{
			"Make sure the .env file is in the working directory",
			`Key should start with "sk-"`,
			"Restart the server after updating .env",
			"Check billing at https://platform.openai.com/account/billing",
		}
	case out.StatusCode == http.StatusTooManyRequests:
		out.Hints = []string{
			"The key is valid but rate limited or out of quota",
			"Set generator.mode to simulated to run without API credits",
		}
	}
	return out
}

// MaskKey shows only the start of a key.
func MaskKey(key string) string {
	const visible = 8
	if len(key) <= visible {
		return strings.Repeat("*", len(key))
	}
	return key[:visible] + "..."
}
