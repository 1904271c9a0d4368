// Package review runs a complete specification review: it reads the
// document, runs the detectors, writes the report and the fixed copy, and
// hands the finished run to the optional sinks.
package review

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/application/reporting"
	"github.com/turtacn/meisai-checker/internal/infrastructure/document/docx"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/meisai-checker/internal/infrastructure/storage/minio"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// Service defines the review application operations.
type Service interface {
	Review(ctx context.Context, input *Input) (*Result, error)
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]*domain.Run, error)
}

// Input describes one review.
type Input struct {
	// Path is the .docx to review.
	Path string
	// Name is the document name reported to sinks; defaults to the base of Path.
	Name string
	// GuidelinesDir overrides the configured guideline folder.
	GuidelinesDir string
	// OutDir overrides the configured output folder.
	OutDir string
	UseLLM bool
	Source string
}

// Result is what a caller gets back from Review.
type Result struct {
	RunID       string              `json:"run_id"`
	Suggestions []domain.Suggestion `json:"suggestions"`
	ReportPath  string              `json:"report_path"`
	FixedPath   string              `json:"fixed_path"`
	Duration    time.Duration       `json:"duration_ns"`
	Run         *domain.Run         `json:"-"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Collaborators
// ─────────────────────────────────────────────────────────────────────────────

// HeuristicDetector runs the rule-based checks.
type HeuristicDetector interface {
	Check(paragraphs []string) []domain.Suggestion
}

// SemanticDetector runs the model-based review.
type SemanticDetector interface {
	Detect(ctx context.Context, text, guidelines string) ([]domain.Suggestion, error)
	Enabled() bool
	Model() string
}

// GuidelineLoader aggregates the reference material.
type GuidelineLoader interface {
	Load(dir string) (string, error)
}

// Archiver stores run artefacts.
type Archiver interface {
	ArchiveRun(ctx context.Context, runID string, files ...string) ([]minio.ArchivedObject, error)
}

// HistoryStore keeps finished runs.
type HistoryStore interface {
	Save(ctx context.Context, run *domain.Run) error
	Get(ctx context.Context, id string) (*domain.Run, error)
	Recent(ctx context.Context, limit int) ([]*domain.Run, error)
}

// EventPublisher announces finished runs.
type EventPublisher interface {
	PublishReviewCompleted(ctx context.Context, run *domain.Run) error
}

// Options carries the service's collaborators.  Heuristic and Guidelines are
// required; the sinks are optional.
type Options struct {
	Heuristic     HeuristicDetector
	Semantic      SemanticDetector
	Guidelines    GuidelineLoader
	Archive       Archiver
	History       HistoryStore
	Events        EventPublisher
	Metrics       *prometheus.AppMetrics
	GuidelinesDir string
	OutDir        string
	Logger        logging.Logger
	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

type serviceImpl struct {
	opts   Options
	logger logging.Logger
}

// NewService validates opts and builds a Service.
func NewService(opts Options) (Service, error) {
	if opts.Heuristic == nil {
		return nil, errors.InvalidParam("heuristic detector is required")
	}
	if opts.Guidelines == nil {
		return nil, errors.InvalidParam("guideline loader is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = prometheus.NewNopMetrics()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.OutDir == "" {
		opts.OutDir = "reports"
	}
	return &serviceImpl{opts: opts, logger: opts.Logger.Named("review")}, nil
}

// Review runs the whole pipeline.  A missing input fails with DOC_001 before
// anything else happens; a failing sink only logs a warning.
func (s *serviceImpl) Review(ctx context.Context, input *Input) (*Result, error) {
	if input == nil || input.Path == "" {
		return nil, errors.InvalidParam("input document is required")
	}
	source := input.Source
	if source == "" {
		source = domain.SourceCLI
	}

	started := s.opts.Now()
	s.opts.Metrics.ActiveReviews.WithLabelValues(source).Inc()
	defer s.opts.Metrics.ActiveReviews.WithLabelValues(source).Dec()

	result, paragraphs, err := s.run(ctx, input, source, started)
	prometheus.RecordReview(s.opts.Metrics, source, err == nil, paragraphs, s.opts.Now().Sub(started))
	if err != nil {
		s.logger.Error("review failed", logging.String("document", input.Path), logging.Err(err))
		return nil, err
	}
	return result, nil
}

func (s *serviceImpl) run(ctx context.Context, input *Input, source string, started time.Time) (*Result, int, error) {
	info, err := os.Stat(input.Path)
	if err != nil || info.IsDir() {
		return nil, 0, errors.New(errors.ErrCodeDocumentNotFound, "input document not found").WithDetail(input.Path)
	}

	doc, err := docx.Read(input.Path)
	if err != nil {
		return nil, 0, err
	}

	gdir := firstNonEmpty(input.GuidelinesDir, s.opts.GuidelinesDir, "guidelines")
	guidelines, err := s.opts.Guidelines.Load(gdir)
	if err != nil {
		return nil, len(doc.Paragraphs), err
	}
	s.opts.Metrics.GuidelinesLoadedBytes.WithLabelValues(gdir).Set(float64(len(guidelines)))

	suggestions := s.opts.Heuristic.Check(doc.Paragraphs)
	s.countSuggestions(prometheus.DetectorHeuristic, suggestions)

	useLLM := input.UseLLM && s.opts.Semantic != nil
	var model string
	if useLLM {
		model = s.opts.Semantic.Model()
		semantic, err := s.opts.Semantic.Detect(ctx, doc.FullText(), guidelines)
		if err != nil {
			return nil, len(doc.Paragraphs), err
		}
		s.countSuggestions(prometheus.DetectorSemantic, semantic)
		suggestions = append(suggestions, semantic...)
	}

	outDir := firstNonEmpty(input.OutDir, s.opts.OutDir)
	reportPath := reporting.ReportPath(outDir, input.Path)
	fixedPath := reporting.FixedPath(outDir, input.Path)
	if err := reporting.WriteJSON(reportPath, suggestions); err != nil {
		return nil, len(doc.Paragraphs), err
	}
	if err := docx.WriteWithReplacements(input.Path, fixedPath, buildReplacements(suggestions)); err != nil {
		return nil, len(doc.Paragraphs), err
	}

	name := input.Name
	if name == "" {
		name = filepath.Base(input.Path)
	}
	run := &domain.Run{
		ID:          s.opts.NewID(),
		Document:    name,
		Source:      source,
		UseLLM:      useLLM && s.opts.Semantic.Enabled(),
		Model:       model,
		StartedAt:   started.UTC(),
		Duration:    s.opts.Now().Sub(started),
		Paragraphs:  len(doc.Paragraphs),
		ReportPath:  reportPath,
		FixedPath:   fixedPath,
		Suggestions: suggestions,
	}
	s.publish(ctx, run)

	s.logger.Info("review finished",
		logging.String("run_id", run.ID),
		logging.String("document", name),
		logging.Int("paragraphs", run.Paragraphs),
		logging.Int("suggestions", len(suggestions)),
		logging.Duration("elapsed", run.Duration))

	return &Result{
		RunID:       run.ID,
		Suggestions: suggestions,
		ReportPath:  reportPath,
		FixedPath:   fixedPath,
		Duration:    run.Duration,
		Run:         run,
	}, run.Paragraphs, nil
}

// buildReplacements is where accepted autofixes turn into text
// replacements.  Suggestions carry no "before" text yet, so the map stays
// empty and the fixed copy equals the input.
func buildReplacements([]domain.Suggestion) map[string]string {
	return map[string]string{}
}

// publish hands run to every configured sink in order: archive, history,
// events.  Archive keys are recorded on run before it is saved.
func (s *serviceImpl) publish(ctx context.Context, run *domain.Run) {
	if s.opts.Archive != nil {
		objs, err := s.opts.Archive.ArchiveRun(ctx, run.ID, run.ReportPath, run.FixedPath)
		s.sinkDone("minio", run.ID, err)
		for _, o := range objs {
			run.ArchiveKeys = append(run.ArchiveKeys, o.Key)
		}
	}
	if s.opts.History != nil {
		s.sinkDone("redis", run.ID, s.opts.History.Save(ctx, run))
	}
	if s.opts.Events != nil {
		s.sinkDone("kafka", run.ID, s.opts.Events.PublishReviewCompleted(ctx, run))
	}
}

func (s *serviceImpl) sinkDone(sink, runID string, err error) {
	prometheus.RecordSinkOperation(s.opts.Metrics, sink, err)
	if err != nil {
		s.logger.Warn("optional sink failed",
			logging.String("sink", sink),
			logging.String("run_id", runID),
			logging.Err(err))
	}
}

func (s *serviceImpl) countSuggestions(detector string, items []domain.Suggestion) {
	for _, item := range items {
		prometheus.RecordSuggestion(s.opts.Metrics, detector, item.Category, item.Severity)
	}
}

// GetRun loads a finished run from history.
func (s *serviceImpl) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	if s.opts.History == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "review history is not configured")
	}
	return s.opts.History.Get(ctx, id)
}

// ListRuns returns up to limit finished runs, newest first.
func (s *serviceImpl) ListRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	if s.opts.History == nil {
		return nil, errors.New(errors.ErrCodeFeatureDisabled, "review history is not configured")
	}
	if limit <= 0 {
		return nil, errors.InvalidParam("limit must be positive")
	}
	return s.opts.History.Recent(ctx, limit)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

//Personal.AI order the ending
