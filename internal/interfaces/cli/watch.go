package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	appreview "github.com/turtacn/meisai-checker/internal/application/review"
	domain "github.com/turtacn/meisai-checker/internal/domain/review"
	"github.com/turtacn/meisai-checker/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/meisai-checker/pkg/errors"
)

const defaultWatchDebounce = 500 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var (
		outDir   string
		noLLM    bool
		initial  bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Review every .docx saved into a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			rt, err := BuildRuntime(cmd.Context(), cliCtx.Config, cliCtx.Logger, RuntimeOptions{WithSinks: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			if outDir == "" {
				outDir = cliCtx.Config.Output.Dir
			}
			w := newDocxWatcher(rt.Service, cliCtx.Logger, watchOptions{
				OutDir:   outDir,
				UseLLM:   !noLLM,
				Debounce: debounce,
				Out:      cmd.OutOrStdout(),
			})
			return w.Run(cmd.Context(), args[0], initial)
		},
	}

	f := cmd.Flags()
	f.StringVar(&outDir, "out-dir", "", "report directory (default: output.dir from config)")
	f.BoolVar(&noLLM, "no-llm", false, "heuristic checks only")
	f.BoolVar(&initial, "initial", false, "also review the .docx files already in the folder")
	f.DurationVar(&debounce, "debounce", defaultWatchDebounce, "quiet period before a changed file is reviewed")
	return cmd
}

type watchOptions struct {
	OutDir   string
	UseLLM   bool
	Debounce time.Duration
	Out      io.Writer
}

// docxWatcher reviews .docx files created or rewritten in one folder.
// Events for the same file within the debounce window collapse into one
// review.
type docxWatcher struct {
	service appreview.Service
	logger  logging.Logger
	opts    watchOptions

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
	outMu   sync.Mutex
}

func newDocxWatcher(service appreview.Service, logger logging.Logger, opts watchOptions) *docxWatcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultWatchDebounce
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &docxWatcher{
		service: service,
		logger:  logger.Named("watch"),
		opts:    opts,
		timers:  make(map[string]*time.Timer),
	}
}

// Run blocks until ctx is cancelled.  Reviews already started are allowed
// to finish.
func (w *docxWatcher) Run(ctx context.Context, dir string, initial bool) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errors.InvalidParam("watch target is not a directory").WithDetail(dir)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "create file watcher")
	}
	defer fw.Close()
	if err := fw.Add(dir); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "watch directory").WithDetail(dir)
	}
	w.logger.Info("watching for documents", logging.String("dir", dir))

	if initial {
		for _, path := range existingDocuments(dir) {
			if w.reviewable(path) {
				w.schedule(ctx, path)
			}
		}
	}

	defer w.drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
				continue
			}
			if w.reviewable(ev.Name) {
				w.schedule(ctx, ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", logging.Err(err))
		}
	}
}

// reviewable rejects non-.docx files, Word lock files, hidden files and the
// watcher's own output.
func (w *docxWatcher) reviewable(path string) bool {
	base := filepath.Base(path)
	if !strings.EqualFold(filepath.Ext(base), ".docx") {
		return false
	}
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	if strings.HasSuffix(strings.ToLower(base), "_fixed.docx") {
		return false
	}
	if w.opts.OutDir != "" && sameDir(filepath.Dir(path), w.opts.OutDir) {
		return false
	}
	return true
}

func (w *docxWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.opts.Debounce)
		return
	}
	w.pending.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.opts.Debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		w.review(ctx, path)
	})
	w.timers[path] = t
}

func (w *docxWatcher) review(ctx context.Context, path string) {
	res, err := w.service.Review(ctx, &appreview.Input{
		Path:   path,
		OutDir: w.opts.OutDir,
		UseLLM: w.opts.UseLLM,
		Source: domain.SourceWatch,
	})

	w.outMu.Lock()
	defer w.outMu.Unlock()
	if err != nil {
		w.logger.Warn("review failed", logging.String("document", path), logging.Err(err))
		PrintError(w.opts.Out, fmt.Errorf("%s: %w", filepath.Base(path), err))
		return
	}
	fmt.Fprintf(w.opts.Out, "%s (%d件)\n", filepath.Base(path), len(res.Suggestions))
	printCheckResult(w.opts.Out, res.ReportPath, res.FixedPath)
}

// drain cancels reviews that have not started and waits for running ones.
func (w *docxWatcher) drain() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.pending.Wait()
}

func existingDocuments(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

//Personal.AI order the ending
