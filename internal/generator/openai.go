package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/timmy/clueso/internal/domain"
	"github.com/timmy/clueso/internal/prompts"
)

// OpenAIConfig holds configuration for the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Schedule Schedule
}

// OpenAIGenerator asks an OpenAI-compatible chat completions endpoint for
// the tutorial outline and lays it out on the step schedule.
type OpenAIGenerator struct {
	client   *resty.Client
	model    string
	endpoint string
	sched    Schedule
}

// NewOpenAIGenerator creates a new OpenAI generator.
// Parameters:
//   - cfg: API key, base URL, model and schedule.
//
// Returns:
//   - *OpenAIGenerator: initialized client wrapper.
//   - error: non-nil if the API key is missing.
func NewOpenAIGenerator(cfg *OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai generator requires an API key")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	sched := cfg.Schedule
	if sched.Stride <= 0 {
		sched = DefaultSchedule
	}

	return &OpenAIGenerator{
		client:   client,
		model:    model,
		endpoint: baseURL + "/chat/completions",
		sched:    sched,
	}, nil
}

func (g *OpenAIGenerator) Mode() string { return domain.AIModeOpenAI }

// Model returns the model name being used.
func (g *OpenAIGenerator) Model() string { return g.model }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiErrorBody struct {
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// outline is the JSON the model is asked to produce.
type outline struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// Generate requests an outline for the video and builds the result.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - video: the uploaded recording; only its original name is sent.
//
// Returns:
//   - domain.GenerationResult: steps, transcript and script.
//   - error: *domain.GenerationError on transport, HTTP or parse failure.
func (g *OpenAIGenerator) Generate(ctx context.Context, video domain.Video) (domain.GenerationResult, error) {
	name := video.OriginalName
	if name == "" {
		name = defaultVideoName
	}

	req := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompts.TutorialSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(prompts.TutorialUserPrompt, name)},
		},
		MaxTokens:      800,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var resp chatResponse
	var errBody apiErrorBody
	httpResp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&errBody).
		Post(g.endpoint)
	if err != nil {
		return domain.GenerationResult{}, domain.NewGenerationError("failed to call chat completions API", err)
	}

	if httpResp.IsError() {
		msg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if errBody.Error != nil {
			msg += ": " + errBody.Error.Message
		} else if len(httpResp.Body()) > 0 {
			msg += ": " + string(httpResp.Body())
		}
		return domain.GenerationResult{}, domain.NewGenerationError("chat completions API returned error", errors.New(msg))
	}
	if resp.Error != nil {
		return domain.GenerationResult{}, domain.NewGenerationError("chat completions API error", errors.New(resp.Error.Message))
	}
	if len(resp.Choices) == 0 {
		return domain.GenerationResult{}, domain.NewGenerationError("no choices in response", nil)
	}

	out, err := parseOutline(resp.Choices[0].Message.Content)
	if err != nil {
		return domain.GenerationResult{}, domain.NewGenerationError("malformed tutorial outline", err)
	}

	tpl := Template{
		ID:          "openai",
		Title:       out.Title,
		Category:    out.Category,
		Description: out.Description,
		Steps:       out.Steps,
	}
	return Build(tpl, video, g.sched, domain.AIModeOpenAI), nil
}

// parseOutline accepts the model's JSON, tolerating a fenced code block.
func parseOutline(content string) (outline, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out outline
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return outline{}, err
	}

	steps := out.Steps[:0]
	for _, s := range out.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	out.Steps = steps

	if out.Title == "" {
		return outline{}, errors.New("missing title")
	}
	if len(out.Steps) == 0 {
		return outline{}, errors.New("no steps")
	}
	if out.Category == "" {
		out.Category = "General"
	}
	return out, nil
}
