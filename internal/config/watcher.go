// Copyright (c) 2025 Al-Muwaffaq Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file when it changes on disk and hands the
// validated result to a callback. A file that fails to load or validate
// is ignored; the previous config stays in effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching path. onChange runs on the watcher goroutine with
// each successfully loaded config.
func Watch(path string, log *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files via rename,
	// which drops a watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{watcher: fw, done: make(chan struct{})}
	go w.run(path, log, onChange)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run(path string, log *zap.Logger, onChange func(*Config)) {
	// Editors fire several events per save; debounce them into one reload.
	var pending <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(250 * time.Millisecond)

		case <-pending:
			pending = nil
			cfg, err := LoadFromPath(path)
			if err != nil {
				log.Warn("config reload skipped", zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", path))
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
