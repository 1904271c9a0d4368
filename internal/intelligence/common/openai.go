package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

const (
	// DefaultBaseURL is the public OpenAI v1 API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 120 * time.Second

	// maxErrorBody bounds how much of a failed reply is kept in the error.
	maxErrorBody = 512
)

// OpenAIClient speaks the OpenAI-compatible chat completions protocol over
// plain HTTP.  Any server exposing POST <base>/chat/completions works.
type OpenAIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  logging.Logger
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithHTTPClient injects the transport, mainly for tests.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAIClient) {
		if c != nil {
			o.http = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) OpenAIOption {
	return func(o *OpenAIClient) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOpenAIClient builds a client for baseURL (DefaultBaseURL when empty).
// timeout bounds the whole request; zero selects two minutes.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration, opts ...OpenAIOption) *OpenAIClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &OpenAIClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:   true,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the full completion URL.
func (c *OpenAIClient) Endpoint() string {
	return c.baseURL + "/chat/completions"
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Complete posts req once.  Transport failures, non-2xx statuses, bodies
// that are not a completion envelope and replies without choices are all
// returned as errors.
func (c *OpenAIClient) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.InvalidParam("chat request requires at least one message")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal chat request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLLMRequestFailed, "create chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLLMRequestFailed, "chat request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLLMRequestFailed, "read chat response")
	}

	c.logger.Debug("chat completion finished",
		logging.String("model", req.Model),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, errors.New(errors.ErrCodeLLMStatus,
			fmt.Sprintf("chat completion returned status %d", resp.StatusCode)).WithDetail(snippet)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeLLMBadResponse, "decode chat response")
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New(errors.ErrCodeLLMBadResponse, "chat response has no choices")
	}

	choice := decoded.Choices[0]
	return &ChatResponse{
		Model:        decoded.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        decoded.Usage,
	}, nil
}

//Personal.AI order the ending
