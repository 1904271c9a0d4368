package handlers

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/meisai-checker/internal/application/reporting"
	"github.com/turtacn/meisai-checker/internal/application/review"
	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
	apitypes "github.com/turtacn/meisai-checker/pkg/types/review"
)

const (
	// FormFieldDocument carries the uploaded .docx.
	FormFieldDocument = apitypes.FormFieldDocument
	// FormFieldUseLLM toggles the semantic detector; it defaults to true.
	FormFieldUseLLM = apitypes.FormFieldUseLLM

	defaultListLimit = 20
	maxListLimit     = 100
)

// ReviewHandlerConfig carries the upload limits and directories.
type ReviewHandlerConfig struct {
	UploadDir      string
	OutDir         string
	MaxUploadBytes int64
}

// ReviewHandler serves /api/v1/reviews.
type ReviewHandler struct {
	service review.Service
	cfg     ReviewHandlerConfig
	logger  logging.Logger
	newID   func() string
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(service review.Service, cfg ReviewHandlerConfig, logger logging.Logger) *ReviewHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "reports"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	return &ReviewHandler{service: service, cfg: cfg, logger: logger.Named("review_handler"), newID: uuid.NewString}
}

// Response bodies are defined in pkg/types/review so that pkg/client can
// decode them.
type (
	CreateReviewResponse = apitypes.CreateReviewResponse
	RunListItem          = apitypes.RunListItem
	ListReviewsResponse  = apitypes.ListReviewsResponse
)

// Create handles POST /api/v1/reviews.  The upload is stored under its own
// directory so that equal file names never share report paths.
func (h *ReviewHandler) Create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes)

	fh, err := c.FormFile(FormFieldDocument)
	if err != nil {
		writeAppError(c, errors.InvalidParam("multipart field \""+FormFieldDocument+"\" is required").WithCause(err))
		return
	}
	name := filepath.Base(fh.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".docx") {
		writeAppError(c, errors.New(errors.ErrCodeDocumentInvalid, "only .docx documents are accepted").WithDetail(name))
		return
	}

	useLLM := true
	if raw := c.PostForm(FormFieldUseLLM); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeAppError(c, errors.InvalidParam("use_llm must be a boolean").WithDetail(raw))
			return
		}
		useLLM = v
	}

	uploadID := h.newID()
	dst := filepath.Join(h.cfg.UploadDir, uploadID, name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		writeAppError(c, errors.Wrap(err, errors.ErrCodeInternal, "create upload directory"))
		return
	}
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		writeAppError(c, errors.Wrap(err, errors.ErrCodeInternal, "store upload"))
		return
	}

	res, err := h.service.Review(c.Request.Context(), &review.Input{
		Path:   dst,
		Name:   name,
		OutDir: filepath.Join(h.cfg.OutDir, uploadID),
		UseLLM: useLLM,
		Source: domain.SourceHTTP,
	})
	if err != nil {
		h.logger.Warn("review request failed", logging.String("document", name), logging.Err(err))
		writeAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateReviewResponse{
		RunID:       res.RunID,
		Document:    name,
		UseLLM:      res.Run.UseLLM,
		DurationMs:  res.Duration.Milliseconds(),
		Summary:     res.Run.Summarize(),
		Suggestions: nonNil(res.Suggestions),
	})
}

// Get handles GET /api/v1/reviews/:id.  ?format=markdown renders the
// summary document instead of JSON.
func (h *ReviewHandler) Get(c *gin.Context) {
	run, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}

	switch strings.ToLower(c.DefaultQuery("format", "json")) {
	case "json":
		run.Suggestions = nonNil(run.Suggestions)
		c.JSON(http.StatusOK, run)
	case "markdown", "md":
		var buf bytes.Buffer
		if err := reporting.RenderMarkdown(&buf, run); err != nil {
			writeAppError(c, errors.Wrap(err, errors.ErrCodeInternal, "render summary"))
			return
		}
		c.Data(http.StatusOK, apitypes.MarkdownContentType, buf.Bytes())
	default:
		writeAppError(c, errors.InvalidParam("format must be json or markdown").WithDetail(c.Query("format")))
	}
}

// List handles GET /api/v1/reviews?limit=N.
func (h *ReviewHandler) List(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			writeAppError(c, errors.InvalidParam("limit must be between 1 and 100").WithDetail(raw))
			return
		}
		limit = n
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		writeAppError(c, err)
		return
	}

	resp := ListReviewsResponse{Runs: make([]RunListItem, 0, len(runs))}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, apitypes.NewRunListItem(run))
	}
	c.JSON(http.StatusOK, resp)
}

func nonNil(items []domain.Suggestion) []domain.Suggestion {
	if items == nil {
		return []domain.Suggestion{}
	}
	return items
}

//Personal.AI order the ending
