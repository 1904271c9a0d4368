// Package review_gpt implements the semantic detector.  It asks a chat
// completion model to review the document against the guideline excerpt and
// normalises the untrusted JSON reply into review.Suggestions.
package review_gpt

import (
	"context"
	"time"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/meisai-checker/internal/intelligence/common"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gpt-4o-mini"

	// Temperature is fixed for reproducible reviews.
	Temperature = 0.2
)

// Config carries the chat backend settings.  An empty APIKey disables the
// detector.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Detector is the semantic detector.  It keeps no state between calls.
type Detector struct {
	cfg     Config
	client  common.ChatClient
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// Option configures a Detector.
type Option func(*Detector)

// WithChatClient replaces the HTTP backend.
func WithChatClient(c common.ChatClient) Option {
	return func(d *Detector) {
		if c != nil {
			d.client = c
		}
	}
}

// WithMetrics records request latency, token usage and dropped entries.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(d *Detector) {
		if m != nil {
			d.metrics = m
		}
	}
}

// NewDetector builds a Detector.  Without WithChatClient it talks to
// cfg.BaseURL through common.OpenAIClient.
func NewDetector(cfg Config, logger logging.Logger, opts ...Option) *Detector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = common.DefaultBaseURL
	}
	d := &Detector{cfg: cfg, logger: logger.Named("review_gpt"), metrics: prometheus.NewNopMetrics()}
	for _, opt := range opts {
		opt(d)
	}
	if d.client == nil {
		d.client = common.NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout,
			common.WithLogger(d.logger))
	}
	return d
}

// Enabled reports whether an API key is configured.
func (d *Detector) Enabled() bool {
	return d.cfg.APIKey != ""
}

// Model returns the configured model name.
func (d *Detector) Model() string {
	return d.cfg.Model
}

// Detect reviews text against guidelines.  Without an API key it returns
// nil without contacting the backend.  Backend failures are returned with
// code LLM_001; a malformed reply is not an error and yields fewer (or no)
// suggestions.
func (d *Detector) Detect(ctx context.Context, text, guidelines string) ([]review.Suggestion, error) {
	if !d.Enabled() {
		d.logger.Debug("semantic review skipped: no api key")
		return nil, nil
	}

	req := &common.ChatRequest{
		Model:       d.cfg.Model,
		Messages:    BuildMessages(text, guidelines),
		Temperature: Temperature,
	}

	start := time.Now()
	resp, err := d.client.Complete(ctx, req)
	if err != nil {
		prometheus.RecordLLMCall(d.metrics, d.cfg.Model, false, time.Since(start), 0, 0)
		return nil, errors.Wrap(err, errors.ErrCodeLLMRequestFailed, "semantic review request failed")
	}
	prometheus.RecordLLMCall(d.metrics, d.cfg.Model, true, time.Since(start),
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	out, stats := parseWithStats(resp.Content)
	if stats.Dropped > 0 {
		d.metrics.LLMDroppedEntries.WithLabelValues(d.cfg.Model).Add(float64(stats.Dropped))
	}
	switch {
	case !stats.Valid:
		d.logger.Warn("semantic review reply is not a JSON array",
			logging.Int("content_length", len(resp.Content)))
	case stats.Dropped > 0:
		d.logger.Warn("semantic review entries dropped",
			logging.Int("entries", stats.Entries),
			logging.Int("dropped", stats.Dropped))
	}
	d.logger.Info("semantic review finished",
		logging.String("model", d.cfg.Model),
		logging.Int("suggestions", len(out)),
		logging.Int("prompt_tokens", resp.Usage.PromptTokens),
		logging.Int("completion_tokens", resp.Usage.CompletionTokens))
	return out, nil
}

//Personal.AI order the ending
