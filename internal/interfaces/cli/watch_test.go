package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreview "github.com/turtacn/meisai-checker/internal/application/review"
	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

// recordingService captures Review calls and reports them on a channel.
type recordingService struct {
	mu     sync.Mutex
	inputs []*appreview.Input
	calls  chan string
	err    error
}

func newRecordingService() *recordingService {
	return &recordingService{calls: make(chan string, 16)}
}

func (s *recordingService) Review(_ context.Context, in *appreview.Input) (*appreview.Result, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, in)
	s.mu.Unlock()
	defer func() { s.calls <- in.Path }()
	if s.err != nil {
		return nil, s.err
	}
	return &appreview.Result{
		RunID:       "run",
		Suggestions: []domain.Suggestion{{ID: "H-0001"}},
		ReportPath:  "/out/x_report.json",
		FixedPath:   "/out/x_fixed.docx",
	}, nil
}

func (s *recordingService) GetRun(context.Context, string) (*domain.Run, error) { return nil, nil }

func (s *recordingService) ListRuns(context.Context, int) ([]*domain.Run, error) { return nil, nil }

func (s *recordingService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

func waitCall(t *testing.T, s *recordingService) string {
	t.Helper()
	select {
	case p := <-s.calls:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("review was not triggered")
		return ""
	}
}

func TestDocxWatcher_Reviewable(t *testing.T) {
	w := newDocxWatcher(newRecordingService(), nil, watchOptions{OutDir: "/data/reports"})

	cases := map[string]bool{
		"/data/in/draft.docx":         true,
		"/data/in/DRAFT.DOCX":         true,
		"/data/in/draft.doc":          false,
		"/data/in/notes.txt":          false,
		"/data/in/~$draft.docx":       false,
		"/data/in/.draft.docx":        false,
		"/data/in/draft_fixed.docx":   false,
		"/data/reports/draft.docx":    false,
		"/data/reports/sub/memo.docx": true,
	}
	for path, want := range cases {
		assert.Equal(t, want, w.reviewable(path), path)
	}
}

func TestDocxWatcher_DebounceCollapsesEvents(t *testing.T) {
	svc := newRecordingService()
	w := newDocxWatcher(svc, nil, watchOptions{Debounce: 50 * time.Millisecond})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		w.schedule(ctx, "/in/a.docx")
	}
	w.schedule(ctx, "/in/b.docx")

	got := []string{waitCall(t, svc), waitCall(t, svc)}
	assert.ElementsMatch(t, []string{"/in/a.docx", "/in/b.docx"}, got)

	w.drain()
	assert.Equal(t, 2, svc.count())
}

func TestDocxWatcher_DrainCancelsPending(t *testing.T) {
	svc := newRecordingService()
	w := newDocxWatcher(svc, nil, watchOptions{Debounce: time.Hour})

	w.schedule(context.Background(), "/in/a.docx")
	w.drain()

	assert.Zero(t, svc.count())
}

func TestDocxWatcher_ReviewOutput(t *testing.T) {
	svc := newRecordingService()
	var out bytes.Buffer
	w := newDocxWatcher(svc, nil, watchOptions{OutDir: "/out", UseLLM: true, Out: &out})

	w.review(context.Background(), "/in/x.docx")
	<-svc.calls

	assert.Equal(t, "x.docx (1件)\n解析完了:\n- レポート: /out/x_report.json\n- 修正版(現状は原文コピー): /out/x_fixed.docx\n", out.String())
	in := svc.inputs[0]
	assert.Equal(t, domain.SourceWatch, in.Source)
	assert.Equal(t, "/out", in.OutDir)
	assert.True(t, in.UseLLM)

	out.Reset()
	svc.err = errors.New(errors.ErrCodeDocumentNotFound, "document not found")
	w.review(context.Background(), "/in/y.docx")
	<-svc.calls
	assert.Contains(t, out.String(), "エラー:")
	assert.Contains(t, out.String(), "y.docx")
}

func TestDocxWatcher_RunReviewsNewFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.docx"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$existing.docx"), []byte("x"), 0o644))

	svc := newRecordingService()
	w := newDocxWatcher(svc, nil, watchOptions{Debounce: 200 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, dir, true) }()

	assert.Equal(t, filepath.Join(dir, "existing.docx"), waitCall(t, svc))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.docx"), []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, "new.docx"), waitCall(t, svc))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Equal(t, 2, svc.count())
}

func TestDocxWatcher_RunRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.docx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := newDocxWatcher(newRecordingService(), nil, watchOptions{}).Run(context.Background(), path, false)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

//Personal.AI order the ending
