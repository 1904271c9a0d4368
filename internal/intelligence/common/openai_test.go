package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/meisai-checker/pkg/errors"
)

func newRequest() *ChatRequest {
	return &ChatRequest{
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "明細書"},
		},
	}
}

func TestOpenAIClient_Complete_Success(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Equal(t, 0.2, body["temperature"])
		msgs, _ := body["messages"].([]any)
		if assert.Len(t, msgs, 2) {
			assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"model": "gpt-4o-mini-2024",
			"choices": [{"message": {"role": "assistant", "content": "[]"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL+"/v1/", "sk-test", time.Second)
	resp, err := c.Complete(context.Background(), newRequest())

	require.NoError(t, err)
	assert.Equal(t, "[]", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "gpt-4o-mini-2024", resp.Model)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestOpenAIClient_Complete_NonSuccessStatus(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(srv.URL, "bad", time.Second).Complete(context.Background(), newRequest())

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLLMStatus))
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "no retry")
}

func TestOpenAIClient_Complete_BadEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(srv.URL, "k", time.Second).Complete(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLLMBadResponse))
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIClient(srv.URL, "k", time.Second).Complete(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLLMBadResponse))
}

func TestOpenAIClient_Complete_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewOpenAIClient(url, "k", time.Second).Complete(context.Background(), newRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLLMRequestFailed))
}

func TestOpenAIClient_Complete_RejectsEmptyRequest(t *testing.T) {
	c := NewOpenAIClient("", "k", 0)
	_, err := c.Complete(context.Background(), &ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestOpenAIClient_Endpoint(t *testing.T) {
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", NewOpenAIClient("", "", 0).Endpoint())
	assert.Equal(t, "http://local:1234/v1/chat/completions", NewOpenAIClient(" http://local:1234/v1/ ", "", 0).Endpoint())
}

func TestOpenAIClient_WithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: time.Millisecond}
	c := NewOpenAIClient("", "", 0, WithHTTPClient(custom), WithHTTPClient(nil))
	assert.Same(t, custom, c.http)
}

func TestChatClientFunc(t *testing.T) {
	var f ChatClient = ChatClientFunc(func(_ context.Context, req *ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Content: req.Model}, nil
	})
	resp, err := f.Complete(context.Background(), &ChatRequest{Model: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Content)
}

//Personal.AI order the ending
