package review_gpt

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/meisai-checker/internal/intelligence/common"
	"github.com/turtacn/meisai-checker/internal/testutil"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// MockChatClient is a testify mock of common.ChatClient.
type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Complete(ctx context.Context, req *common.ChatRequest) (*common.ChatResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*common.ChatResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDetect_NoAPIKeyMakesNoRequest(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	d := NewDetector(Config{BaseURL: srv.URL}, nil)
	got, err := d.Detect(context.Background(), "本文", "基準")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.False(t, d.Enabled())
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestDetect_OverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant",
			"content": "[{\"category\": \"clarity\", \"message\": \"用語が不明確\"}, {}]"}}]}`))
	}))
	defer srv.Close()

	d := NewDetector(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: time.Second}, nil)
	got, err := d.Detect(context.Background(), "本文", "")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "L-0001", got[0].ID)
	assert.Equal(t, "clarity", got[0].Category)
	assert.Equal(t, "L-0002", got[1].ID)
	assert.Equal(t, "other", got[1].Category)
}

func TestDetect_SendsPromptAndSettings(t *testing.T) {
	client := new(MockChatClient)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req *common.ChatRequest) bool {
		return req.Model == DefaultModel &&
			req.Temperature == 0.2 &&
			len(req.Messages) == 2 &&
			req.Messages[0].Content == SystemPrompt &&
			req.Messages[1].Content == BuildUserPrompt("本文", "基準")
	})).Return(&common.ChatResponse{Content: "[]"}, nil).Once()

	d := NewDetector(Config{APIKey: "k"}, nil, WithChatClient(client))
	got, err := d.Detect(context.Background(), "本文", "基準")

	require.NoError(t, err)
	assert.Empty(t, got)
	client.AssertExpectations(t)
}

func TestDetect_InvalidReplyYieldsNothing(t *testing.T) {
	client := new(MockChatClient)
	client.On("Complete", mock.Anything, mock.Anything).
		Return(&common.ChatResponse{Content: "申し訳ありません、JSONで返せません"}, nil)
	logger := testutil.NewMockLogger()

	d := NewDetector(Config{APIKey: "k"}, logger, WithChatClient(client))
	got, err := d.Detect(context.Background(), "本文", "")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, logger.HasMessage("warn", "semantic review reply is not a JSON array"))
}

func TestDetect_EmptyContentTreatedAsEmptyArray(t *testing.T) {
	client := new(MockChatClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(&common.ChatResponse{Content: ""}, nil)
	logger := testutil.NewMockLogger()

	got, err := NewDetector(Config{APIKey: "k"}, logger, WithChatClient(client)).
		Detect(context.Background(), "本文", "")

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, logger.CountLevel("warn"))
}

func TestDetect_BackendFailureIsReturned(t *testing.T) {
	client := new(MockChatClient)
	cause := errors.New(errors.ErrCodeLLMStatus, "chat completion returned status 401")
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, cause).Once()

	got, err := NewDetector(Config{APIKey: "k"}, nil, WithChatClient(client)).
		Detect(context.Background(), "本文", "")

	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.IsCode(err, errors.ErrCodeLLMRequestFailed))
	assert.True(t, errors.IsCode(err, errors.ErrCodeLLMStatus))
	client.AssertNumberOfCalls(t, "Complete", 1)
}

func TestDetect_PlainErrorWrapped(t *testing.T) {
	client := new(MockChatClient)
	cause := stderrors.New("dial tcp: refused")
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, cause)

	_, err := NewDetector(Config{APIKey: "k"}, nil, WithChatClient(client)).
		Detect(context.Background(), "本文", "")

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, errors.ErrCodeLLMRequestFailed, errors.GetCode(err))
}

func TestNewDetector_Defaults(t *testing.T) {
	d := NewDetector(Config{}, nil)
	assert.Equal(t, DefaultModel, d.Model())
	client, ok := d.client.(*common.OpenAIClient)
	require.True(t, ok)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", client.Endpoint())
}

func TestDetect_RecordsMetrics(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "t"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	client := new(MockChatClient)
	client.On("Complete", mock.Anything, mock.Anything).Return(&common.ChatResponse{
		Content: `[{"message": "ok"}, 42, "x"]`,
		Usage:   common.Usage{PromptTokens: 100, CompletionTokens: 20},
	}, nil).Once()
	client.On("Complete", mock.Anything, mock.Anything).Return(nil, stderrors.New("timeout")).Once()

	d := NewDetector(Config{APIKey: "k", Model: "m1"}, nil, WithChatClient(client), WithMetrics(metrics))
	_, err = d.Detect(context.Background(), "本文", "")
	require.NoError(t, err)
	_, err = d.Detect(context.Background(), "本文", "")
	require.Error(t, err)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `t_llm_requests_total{model="m1",status="success"} 1`)
	assert.Contains(t, body, `t_llm_requests_total{model="m1",status="failure"} 1`)
	assert.Contains(t, body, `t_llm_tokens_total{direction="prompt",model="m1"} 100`)
	assert.Contains(t, body, `t_llm_dropped_entries_total{model="m1"} 2`)
}

//Personal.AI order the ending
