package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"docsmith/internal/logging"
)

const debounceWindow = 500 * time.Millisecond

// Watcher re-runs the pipeline on Python files as they change. Writes
// from editors arrive in bursts, so events are debounced per path.
type Watcher struct {
	pipe    *Pipeline
	logger  *zap.Logger
	write   bool
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	pending  map[string]*time.Timer
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewWatcher(pipe *Pipeline, write bool, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		pipe:    pipe,
		logger:  logging.Named(logger, logging.CategoryWatch),
		write:   write,
		watcher: fsw,
		pending: make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Watch blocks processing change events under root until the context
// is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	if err := w.addRecursive(root); err != nil {
		return err
	}
	w.logger.Info("watching", zap.String("root", root))
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, ev)
		}
	}
}

// Stop ends the watch loop and waits for it to drain.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
	w.watcher.Close()

	w.mu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = map[string]*time.Timer{}
	w.mu.Unlock()
}

func (w *Watcher) handleEvent(ctx context.Context, ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.logger.Warn("watch add failed", zap.String("path", ev.Name), zap.Error(err))
			}
			return
		}
	}
	if !strings.HasSuffix(ev.Name, ".py") || strings.HasSuffix(ev.Name, documentedSuffix) {
		return
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[ev.Name]; ok {
		t.Reset(debounceWindow)
		return
	}
	path := ev.Name
	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.process(ctx, path)
	})
}

func (w *Watcher) process(ctx context.Context, path string) {
	select {
	case <-w.stopCh:
		return
	case <-ctx.Done():
		return
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("read failed", zap.String("path", path), zap.Error(err))
		return
	}
	res, err := w.pipe.ProcessSource(ctx, path, content)
	if err != nil {
		w.logger.Warn("processing failed", zap.String("path", path), zap.Error(err))
		return
	}
	if !res.Changed {
		w.logger.Debug("no undocumented declarations", zap.String("path", path))
		return
	}
	if err := os.WriteFile(outputPath(path, w.write), res.Updated, 0o644); err != nil {
		w.logger.Warn("write failed", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("documented",
		zap.String("path", path),
		zap.Int("declarations", len(res.Outcomes)),
		zap.Bool("written", w.write))
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "__pycache__" || name == "venv") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
