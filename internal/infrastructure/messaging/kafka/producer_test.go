package kafka

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/meisai-checker/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
	written   []kafka.Message
	closes    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		if err := m.writeFunc(ctx, msgs...); err != nil {
			return err
		}
	}
	m.written = append(m.written, msgs...)
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closes++
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newTestProducer(w WriterInterface) *Producer {
	return NewProducerWithWriter(w, ProducerConfig{Brokers: []string{"localhost:9092"}}, nil)
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(ProducerConfig{}, nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = NewProducer(ProducerConfig{Brokers: []string{"b:9092"}, MaxRetries: -1}, nil)
	assert.Error(t, err)

	p, err := NewProducer(ProducerConfig{Brokers: []string{"b:9092"}, Acks: "all", CompressionCodec: "gzip"}, nil)
	require.NoError(t, err)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
	assert.Equal(t, 4, w.MaxAttempts)
}

func TestPublish_Success(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{
		Topic:   TopicReviewCompleted,
		Key:     []byte("run-1"),
		Value:   []byte(`{"ok":true}`),
		Headers: map[string]string{"event_type": "review.completed"},
	})
	require.NoError(t, err)
	require.Len(t, w.written, 1)
	msg := w.written[0]
	assert.Equal(t, TopicReviewCompleted, msg.Topic)
	assert.Equal(t, []byte("run-1"), msg.Key)
	assert.False(t, msg.Time.IsZero())
	assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("review.completed")}}, msg.Headers)
	assert.Equal(t, int64(1), p.Sent())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, nil))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Value: []byte("x")}))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Topic: "t"}))
	big := []byte(strings.Repeat("x", 1024*1024+1))
	assert.Error(t, p.Publish(ctx, &ProducerMessage{Topic: "t", Value: big}))
}

func TestPublish_WriterError(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return errors.New("leader not available")
	}}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("v"), Timestamp: time.Unix(0, 0)})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeEventPublishFailed))
	assert.Equal(t, int64(1), p.Failed())
}

func TestClose_Idempotent(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closes)
	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: []byte("v")}))
}

//Personal.AI order the ending
