package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file when it changes on disk and hands the
// result to a handler. Files that fail to load or validate are
// ignored; the last good configuration stays in effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// Watch starts watching path. The handler runs on the watcher's
// goroutine.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: start watcher: %w", err)
	}
	// Watch the directory: editors replace config files by rename,
	// which drops a watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w := &Watcher{watcher: fw, path: path, done: make(chan struct{})}
	go w.loop(onChange)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(onChange func(Config)) {
	defer close(w.done)
	for event := range w.watcher.Events {
		if event.Name != w.path {
			continue
		}
		if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
			continue
		}
		cfg, err := Load(w.path)
		if err != nil {
			continue
		}
		onChange(cfg)
	}
}
