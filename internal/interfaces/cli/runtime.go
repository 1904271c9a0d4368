package cli

import (
	"context"
	"errors"
	"sync/atomic"

	appreview "github.com/turtacn/meisai-checker/internal/application/review"
	"github.com/turtacn/meisai-checker/internal/config"
	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/database/redis"
	"github.com/turtacn/meisai-checker/internal/infrastructure/document/guidelines"
	"github.com/turtacn/meisai-checker/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/meisai-checker/internal/infrastructure/storage/minio"
	"github.com/turtacn/meisai-checker/internal/intelligence/review_gpt"
	"github.com/turtacn/meisai-checker/internal/intelligence/rule_checker"
	"github.com/turtacn/meisai-checker/internal/interfaces/http/handlers"
)

// Runtime holds everything a command needs to run reviews.  Close releases
// the sink connections.
type Runtime struct {
	Config    *config.Config // startup configuration; Reload does not replace it
	Logger    logging.Logger
	Collector prometheus.MetricsCollector // nil when metrics are disabled
	Metrics   *prometheus.AppMetrics
	Service   appreview.Service
	Checkers  []handlers.HealthChecker

	current atomic.Value // appreview.Service
	sinks   appreview.Options
	closers []func() error
}

// RuntimeOptions tweaks BuildRuntime.
type RuntimeOptions struct {
	// WithSinks connects the configured MinIO, Redis and Kafka sinks.  Sinks
	// that cannot be reached are skipped with a warning.
	WithSinks bool
	// Metrics overrides the metric set built from the config.
	Metrics *prometheus.AppMetrics
	// Collector is served on /metrics when Metrics is set.
	Collector prometheus.MetricsCollector
}

// BuildRuntime wires the detectors, loader and sinks described by cfg.
func BuildRuntime(ctx context.Context, cfg *config.Config, logger logging.Logger, opts RuntimeOptions) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	rt := &Runtime{Config: cfg, Logger: logger}

	switch {
	case opts.Metrics != nil:
		rt.Metrics, rt.Collector = opts.Metrics, opts.Collector
	case cfg.Metrics.Enabled:
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return nil, err
		}
		rt.Collector = collector
		rt.Metrics = prometheus.NewAppMetrics(collector)
	default:
		rt.Metrics = prometheus.NewNopMetrics()
	}

	if opts.WithSinks {
		rt.connectSinks(ctx, &rt.sinks)
	}

	svc, err := rt.newService(cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.current.Store(svc)
	rt.Service = serviceSwitch{rt: rt}
	return rt, nil
}

func (rt *Runtime) newService(cfg *config.Config) (appreview.Service, error) {
	semantic := review_gpt.NewDetector(review_gpt.Config{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	}, rt.Logger, review_gpt.WithMetrics(rt.Metrics))
	if !semantic.Enabled() {
		rt.Logger.Info("no API key configured; semantic review is disabled")
	}

	return appreview.NewService(appreview.Options{
		Heuristic:     rule_checker.NewChecker(rt.Logger),
		Semantic:      semantic,
		Guidelines:    guidelines.NewLoader(rt.Logger),
		Archive:       rt.sinks.Archive,
		History:       rt.sinks.History,
		Events:        rt.sinks.Events,
		Metrics:       rt.Metrics,
		GuidelinesDir: cfg.Guidelines.Dir,
		OutDir:        cfg.Output.Dir,
		Logger:        rt.Logger,
	})
}

// Reload rebuilds the detectors and paths from cfg.  Sinks, metrics and the
// listener keep their startup settings; reviews already running finish on
// the previous service.
func (rt *Runtime) Reload(cfg *config.Config) error {
	svc, err := rt.newService(cfg)
	if err != nil {
		return err
	}
	rt.current.Store(svc)
	return nil
}

// serviceSwitch forwards to the service installed by the last Reload.
type serviceSwitch struct{ rt *Runtime }

func (s serviceSwitch) load() appreview.Service {
	return s.rt.current.Load().(appreview.Service)
}

func (s serviceSwitch) Review(ctx context.Context, in *appreview.Input) (*appreview.Result, error) {
	return s.load().Review(ctx, in)
}

func (s serviceSwitch) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return s.load().GetRun(ctx, id)
}

func (s serviceSwitch) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	return s.load().ListRuns(ctx, limit)
}

func (rt *Runtime) connectSinks(ctx context.Context, opts *appreview.Options) {
	cfg, logger := rt.Config, rt.Logger

	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(ctx, minio.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
			Region:    cfg.MinIO.Region,
			Bucket:    cfg.MinIO.Bucket,
		}, logger)
		if err != nil {
			logger.Warn("report archive unavailable", logging.Err(err))
		} else {
			opts.Archive = minio.NewReportArchive(client, logger)
			rt.Checkers = append(rt.Checkers, handlers.CheckerFunc{ComponentName: "minio", Fn: func(ctx context.Context) error {
				status, err := client.HealthCheck(ctx)
				if err != nil {
					return err
				}
				if !status.Healthy {
					return errors.New(status.Error)
				}
				return nil
			}})
		}
	}

	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, redis.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn("review history unavailable; using in-memory history", logging.Err(err))
		} else {
			opts.History = redis.NewHistoryStore(client, logger,
				redis.WithKeyPrefix(cfg.Redis.KeyPrefix), redis.WithTTL(cfg.Redis.TTL))
			rt.closers = append(rt.closers, client.Close)
			rt.Checkers = append(rt.Checkers, handlers.CheckerFunc{ComponentName: "redis", Fn: client.Ping})
		}
	}
	if opts.History == nil {
		opts.History = appreview.NewMemoryHistory(0)
	}

	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		}, logger)
		if err != nil {
			logger.Warn("review events unavailable", logging.Err(err))
		} else {
			opts.Events = kafka.NewReviewEventPublisher(producer, cfg.Kafka.Topic, logger)
			rt.closers = append(rt.closers, producer.Close)
		}
	}
}

// Close releases sink connections in reverse order.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

//Personal.AI order the ending
