package prometheus

import (
	"strconv"
	"time"
)

// Detector label values.
const (
	DetectorHeuristic = "heuristic"
	DetectorSemantic  = "semantic"
)

// AppMetrics holds every metric the checker exports.
type AppMetrics struct {
	// Reviews
	ReviewsTotal          CounterVec
	ReviewDuration        HistogramVec
	ReviewParagraphs      HistogramVec
	SuggestionsTotal      CounterVec
	ActiveReviews         GaugeVec
	GuidelinesLoadedBytes GaugeVec

	// Chat backend
	LLMRequestsTotal   CounterVec
	LLMRequestDuration HistogramVec
	LLMTokensUsed      CounterVec
	LLMDroppedEntries  CounterVec

	// Optional sinks
	SinkOperationsTotal CounterVec

	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Config
	ConfigReloadsTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultReviewDurationBuckets = []float64{.05, .1, .5, 1, 2, 5, 10, 30, 60, 120, 300}
	DefaultLLMDurationBuckets    = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	DefaultParagraphBuckets      = []float64{10, 50, 100, 250, 500, 1000, 2500, 5000}
)

// NewAppMetrics registers every family on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.ReviewsTotal = collector.RegisterCounter("reviews_total", "Completed review runs", "source", "status")
	m.ReviewDuration = collector.RegisterHistogram("review_duration_seconds", "Review run duration", DefaultReviewDurationBuckets, "source")
	m.ReviewParagraphs = collector.RegisterHistogram("review_paragraphs", "Paragraphs per reviewed document", DefaultParagraphBuckets, "source")
	m.SuggestionsTotal = collector.RegisterCounter("suggestions_total", "Suggestions produced", "detector", "category", "severity")
	m.ActiveReviews = collector.RegisterGauge("active_reviews", "Reviews in progress", "source")
	m.GuidelinesLoadedBytes = collector.RegisterGauge("guidelines_loaded_bytes", "Size of the last aggregated guideline text", "dir")

	m.LLMRequestsTotal = collector.RegisterCounter("llm_requests_total", "Chat completion requests", "model", "status")
	m.LLMRequestDuration = collector.RegisterHistogram("llm_request_duration_seconds", "Chat completion duration", DefaultLLMDurationBuckets, "model")
	m.LLMTokensUsed = collector.RegisterCounter("llm_tokens_total", "Tokens reported by the chat backend", "model", "direction")
	m.LLMDroppedEntries = collector.RegisterCounter("llm_dropped_entries_total", "Model reply entries that could not be normalised", "model")

	m.SinkOperationsTotal = collector.RegisterCounter("sink_operations_total", "Optional sink operations", "sink", "status")

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.ConfigReloadsTotal = collector.RegisterCounter("config_reloads_total", "Configuration reloads", "status")

	return m
}

// NewNopMetrics returns metrics that record nothing.
func NewNopMetrics() *AppMetrics {
	return &AppMetrics{
		ReviewsTotal:          noopCounterVec{},
		ReviewDuration:        noopHistogramVec{},
		ReviewParagraphs:      noopHistogramVec{},
		SuggestionsTotal:      noopCounterVec{},
		ActiveReviews:         noopGaugeVec{},
		GuidelinesLoadedBytes: noopGaugeVec{},
		LLMRequestsTotal:      noopCounterVec{},
		LLMRequestDuration:    noopHistogramVec{},
		LLMTokensUsed:         noopCounterVec{},
		LLMDroppedEntries:     noopCounterVec{},
		SinkOperationsTotal:   noopCounterVec{},
		HTTPRequestsTotal:     noopCounterVec{},
		HTTPRequestDuration:   noopHistogramVec{},
		ConfigReloadsTotal:    noopCounterVec{},
	}
}

// Helpers

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// RecordReview counts one finished run.
func RecordReview(m *AppMetrics, source string, success bool, paragraphs int, duration time.Duration) {
	m.ReviewsTotal.WithLabelValues(source, statusLabel(success)).Inc()
	m.ReviewDuration.WithLabelValues(source).Observe(duration.Seconds())
	if success {
		m.ReviewParagraphs.WithLabelValues(source).Observe(float64(paragraphs))
	}
}

// RecordSuggestion counts one suggestion by detector, category and severity.
func RecordSuggestion(m *AppMetrics, detector, category, severity string) {
	m.SuggestionsTotal.WithLabelValues(detector, category, severity).Inc()
}

// RecordLLMCall records one chat completion.
func RecordLLMCall(m *AppMetrics, model string, success bool, duration time.Duration, promptTokens, completionTokens int) {
	m.LLMRequestsTotal.WithLabelValues(model, statusLabel(success)).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
}

// RecordSinkOperation counts one archive, history or event operation.
func RecordSinkOperation(m *AppMetrics, sink string, err error) {
	m.SinkOperationsTotal.WithLabelValues(sink, statusLabel(err == nil)).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

//Personal.AI order the ending
