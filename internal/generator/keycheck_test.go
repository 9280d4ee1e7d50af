package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/clueso/internal/prompts"
)

func keyServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key", r.Header.Get("Authorization"))

		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultKeyCheckModel, req.Model)
		assert.Equal(t, 10, req.MaxTokens)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, prompts.KeyCheckPrompt, req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestKeyCheckSuccess(t *testing.T) {
	srv := keyServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-3.5-turbo-0125",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": " API key is working! "}}]
	}`)

	kc, err := NewKeyCheck("sk-test-key", srv.URL+"/v1/", "")
	require.NoError(t, err)

	res, err := kc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "API key is working!", res.Reply)
	assert.Equal(t, "gpt-3.5-turbo-0125", res.Model)
}

func TestKeyCheckRejectedKey(t *testing.T) {
	srv := keyServer(t, http.StatusUnauthorized, `{"error": {
		"message": "Incorrect API key provided: sk-test-key.",
		"type": "invalid_request_error",
		"code": "invalid_api_key"
	}}`)

	kc, err := NewKeyCheck("sk-test-key", srv.URL+"/v1/", "")
	require.NoError(t, err)

	_, err = kc.Run(context.Background())
	require.Error(t, err)

	var kerr *KeyCheckError
	require.True(t, errors.As(err, &kerr))
	assert.Equal(t, http.StatusUnauthorized, kerr.StatusCode)
	assert.NotEmpty(t, kerr.Hints)
}

func TestKeyCheckRequiresKey(t *testing.T) {
	_, err := NewKeyCheck("", "", "")
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "sk-proj-...", MaskKey("sk-proj-abcdefghijkl"))
	assert.Equal(t, "****", MaskKey("abcd"))
}
