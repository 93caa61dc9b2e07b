package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports changes to a fixed set of files. It watches their parent
// directories so files replaced by rename are still seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
	logger   *zap.Logger
}

type WatcherOptionFunc func(w *Watcher)

func WithDebounce(d time.Duration) WatcherOptionFunc {
	return func(w *Watcher) {
		w.debounce = d
	}
}

func WithLogger(logger *zap.Logger) WatcherOptionFunc {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func New(paths []string, options ...WatcherOptionFunc) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no paths to watch")
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fs,
		files:    make(map[string]bool, len(paths)),
		debounce: 200 * time.Millisecond,
		logger:   zap.NewNop(),
	}
	for _, opts := range options {
		opts(w)
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fs.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run calls onChange with the changed files, sorted, once per burst of
// events. It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !w.files[name] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file changed", zap.String("path", name), zap.String("op", event.Op.String()))
			pending[name] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = make(map[string]bool)
			onChange(changed)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}
