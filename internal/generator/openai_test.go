package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/clueso/internal/config"
	"github.com/timmy/clueso/internal/domain"
)

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Len(t, req.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestOpenAIGeneratorSuccess(t *testing.T) {
	content := "```json\n{\"title\":\"Git Branching\",\"category\":\"Dev\",\"description\":\"Branch safely\",\"steps\":[\"Open a terminal\",\" \",\"Run git checkout -b feature\"]}\n```"
	srv := chatServer(t, http.StatusOK, completion(content))

	g, err := NewOpenAIGenerator(&OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	res, err := g.Generate(context.Background(), domain.Video{OriginalName: "git.mp4"})
	require.NoError(t, err)

	require.Len(t, res.Steps, 2)
	assert.Equal(t, "00:05", res.Steps[0].Timestamp)
	assert.Equal(t, "00:12", res.Steps[1].Timestamp)
	assert.Equal(t, "Run git checkout -b feature", res.Steps[1].Text)
	assert.Equal(t, domain.AIModeOpenAI, res.AIMode)
	assert.Equal(t, "Git Branching", res.Template.Title)
	assert.Contains(t, res.Transcript, "Video: git.mp4")
}

func TestOpenAIGeneratorFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"http error", http.StatusTooManyRequests, `{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`, "returned error"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"not json", http.StatusOK, completion("sure, here you go"), "malformed"},
		{"no steps", http.StatusOK, completion(`{"title":"x","steps":[]}`), "malformed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := chatServer(t, tc.status, tc.body)
			g, err := NewOpenAIGenerator(&OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
			require.NoError(t, err)

			_, err = g.Generate(context.Background(), domain.Video{})
			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Contains(t, genErr.Reason, tc.reason)
		})
	}
}

func TestOpenAIGeneratorQuotaMessage(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`)
	g, err := NewOpenAIGenerator(&OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), domain.Video{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429: quota exceeded")
}

func TestNewSelectsByMode(t *testing.T) {
	cfg := &config.Config{
		Generator: config.GeneratorConfig{Mode: config.GeneratorModeSimulated, Stride: DefaultSchedule.Stride},
	}
	g, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.AIModeSimulated, g.Mode())

	cfg.Generator.Mode = config.GeneratorModeOpenAI
	_, err = New(cfg)
	assert.Error(t, err, "missing key")

	cfg.OpenAI.APIKey = "sk-test"
	g, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.AIModeOpenAI, g.Mode())

	cfg.Generator.Mode = "magic"
	_, err = New(cfg)
	assert.Error(t, err)
}
