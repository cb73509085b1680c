package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher re-reads a Loader's backing file on change and invokes
// onChange with the newly decoded Tunables, adapted from the teacher's
// config_watcher.go polling loop but driven by fsnotify instead of a
// stat-based poll.
type Watcher struct {
	loader   *Loader
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	done     chan struct{}
}

// Watch starts watching path for changes and calls onChange with the
// freshly loaded Tunables each time the file is written. The returned
// Watcher must be stopped with Stop to release the fsnotify handle.
func Watch(path string, onChange func(Tunables), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		loader:  NewLoader(path),
		watcher: fsw,
		logger:  logger.With(zap.String("component", "config-watcher")),
		done:    make(chan struct{}),
	}

	go w.run(path, onChange)
	return w, nil
}

func (w *Watcher) run(path string, onChange func(Tunables)) {
	target := filepath.Clean(path)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			t, err := w.loader.Load()
			if err != nil {
				w.logger.Warn("config reload failed", zap.Error(err))
				continue
			}
			onChange(t)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

// Stop releases the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}
