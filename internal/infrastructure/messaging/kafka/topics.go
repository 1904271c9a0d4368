package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

const (
	// TopicReviewCompleted is the default topic for finished runs.
	TopicReviewCompleted = "review.completed"

	EventTypeReviewCompleted = "review.completed"
	EventSource              = "meisai-checker"
	SchemaVersion            = "1.0"
)

// EventEnvelope wraps every event payload.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ReviewCompletedPayload summarises a finished run.  Suggestions are not
// included; consumers fetch them from the history API.
type ReviewCompletedPayload struct {
	RunID       string         `json:"run_id"`
	Document    string         `json:"document"`
	Source      string         `json:"source"`
	UseLLM      bool           `json:"use_llm"`
	Model       string         `json:"model,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMs  int64          `json:"duration_ms"`
	Paragraphs  int            `json:"paragraphs"`
	Summary     review.Summary `json:"summary"`
	ReportPath  string         `json:"report_path"`
	FixedPath   string         `json:"fixed_path"`
	ArchiveKeys []string       `json:"archive_keys,omitempty"`
}

// NewEnvelope marshals payload into an envelope with a fresh event id.
func NewEnvelope(eventType string, payload any) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        EventSource,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       data,
	}, nil
}

// Publisher is what the review events need from a producer.
type Publisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

// ReviewEventPublisher emits a review.completed event per run.
type ReviewEventPublisher struct {
	producer Publisher
	topic    string
	logger   logging.Logger
}

// NewReviewEventPublisher publishes to topic (TopicReviewCompleted when
// empty).
func NewReviewEventPublisher(p Publisher, topic string, logger logging.Logger) *ReviewEventPublisher {
	if topic == "" {
		topic = TopicReviewCompleted
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReviewEventPublisher{producer: p, topic: topic, logger: logger.Named("events")}
}

// PublishReviewCompleted publishes run keyed by its id.
func (r *ReviewEventPublisher) PublishReviewCompleted(ctx context.Context, run *review.Run) error {
	if run == nil || run.ID == "" {
		return errors.InvalidParam("run id is required")
	}
	env, err := NewEnvelope(EventTypeReviewCompleted, ReviewCompletedPayload{
		RunID:       run.ID,
		Document:    run.Document,
		Source:      run.Source,
		UseLLM:      run.UseLLM,
		Model:       run.Model,
		StartedAt:   run.StartedAt,
		DurationMs:  run.Duration.Milliseconds(),
		Paragraphs:  run.Paragraphs,
		Summary:     run.Summarize(),
		ReportPath:  run.ReportPath,
		FixedPath:   run.FixedPath,
		ArchiveKeys: run.ArchiveKeys,
	})
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal event envelope")
	}

	err = r.producer.Publish(ctx, &ProducerMessage{
		Topic: r.topic,
		Key:   []byte(run.ID),
		Value: value,
		Headers: map[string]string{
			"event_type":     env.EventType,
			"schema_version": env.SchemaVersion,
		},
		Timestamp: env.Timestamp,
	})
	if err != nil {
		return err
	}
	r.logger.Debug("review event published", logging.String("run_id", run.ID), logging.String("event_id", env.EventID))
	return nil
}

//Personal.AI order the ending
