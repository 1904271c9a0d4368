package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

const (
	defaultKeyPrefix = "meisai:review:"
	defaultTTL       = 30 * 24 * time.Hour
)

// HistoryStore keeps finished runs as JSON under "<prefix>run:<id>" and an
// index of run ids ordered by start time under "<prefix>runs".
type HistoryStore struct {
	client *Client
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// HistoryOption configures a HistoryStore.
type HistoryOption func(*HistoryStore)

// WithKeyPrefix sets the key prefix.
func WithKeyPrefix(prefix string) HistoryOption {
	return func(h *HistoryStore) {
		if prefix != "" {
			h.prefix = prefix
		}
	}
}

// WithTTL sets how long a run is kept.  Zero or less keeps runs forever.
func WithTTL(ttl time.Duration) HistoryOption {
	return func(h *HistoryStore) { h.ttl = ttl }
}

// NewHistoryStore returns a store on client.
func NewHistoryStore(client *Client, logger logging.Logger, opts ...HistoryOption) *HistoryStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &HistoryStore{client: client, prefix: defaultKeyPrefix, ttl: defaultTTL, logger: logger.Named("history")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HistoryStore) runKey(id string) string { return h.prefix + "run:" + id }
func (h *HistoryStore) indexKey() string        { return h.prefix + "runs" }

func (h *HistoryStore) expiry() time.Duration {
	if h.ttl < 0 {
		return 0
	}
	return h.ttl
}

// Save stores run and adds it to the index.
func (h *HistoryStore) Save(ctx context.Context, run *review.Run) error {
	if run == nil || run.ID == "" {
		return errors.InvalidParam("run id is required")
	}
	rdb, err := h.client.rdbOrErr()
	if err != nil {
		return err
	}

	data, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "marshal run")
	}
	if err := rdb.Set(ctx, h.runKey(run.ID), data, h.expiry()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeHistoryFailed, "store run").WithDetail(run.ID)
	}
	score := float64(run.StartedAt.UnixMilli())
	if err := rdb.ZAdd(ctx, h.indexKey(), redis.Z{Score: score, Member: run.ID}).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeHistoryFailed, "index run").WithDetail(run.ID)
	}

	h.logger.Debug("run saved", logging.String("run_id", run.ID), logging.Int("suggestions", len(run.Suggestions)))
	return nil
}

// Get loads one run.  An unknown or expired id yields RPT_002.
func (h *HistoryStore) Get(ctx context.Context, id string) (*review.Run, error) {
	rdb, err := h.client.rdbOrErr()
	if err != nil {
		return nil, err
	}
	data, err := rdb.Get(ctx, h.runKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.New(errors.ErrCodeReviewNotFound, "review not found").WithDetail(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeHistoryFailed, "load run").WithDetail(id)
	}

	var run review.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "decode run").WithDetail(id)
	}
	return &run, nil
}

// Recent returns up to limit runs, newest first.  Index entries whose run
// has expired are removed.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]*review.Run, error) {
	if limit <= 0 {
		return nil, nil
	}
	rdb, err := h.client.rdbOrErr()
	if err != nil {
		return nil, err
	}
	ids, err := rdb.ZRevRange(ctx, h.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeHistoryFailed, "list runs")
	}

	out := make([]*review.Run, 0, len(ids))
	var stale []any
	for _, id := range ids {
		run, err := h.Get(ctx, id)
		if errors.IsCode(err, errors.ErrCodeReviewNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if len(stale) > 0 {
		if err := rdb.ZRem(ctx, h.indexKey(), stale...).Err(); err != nil {
			h.logger.Warn("failed to prune run index", logging.Err(err))
		}
	}
	return out, nil
}

//Personal.AI order the ending
