// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package manifest

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a manifest file whenever it is written.
//
// The directory containing the file is watched rather than the file, so
// editors that save by renaming a temporary file are seen as well.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the manifest at path. Changes made after
// NewWatcher returns are delivered by Run.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("manifest: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("manifest: watch %s: %w", path, err)
	}
	return &Watcher{path: filepath.Clean(path), watcher: w}, nil
}

// Run calls fn with the reloaded manifest, or the error that prevented
// loading it, after every write to the file. It returns when ctx is done
// or the watcher fails.
func (w *Watcher) Run(ctx context.Context, fn func(*Manifest, error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			fn(Load(w.path))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("manifest: watch %s: %w", w.path, err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
