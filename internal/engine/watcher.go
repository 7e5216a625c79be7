package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven index mutation.
// kind is "indexed" or "removed"; path is relative to the note root.
type EventCallback func(kind string, path string)

// Monitor subscribes to filesystem notifications under the note root and
// applies changes to the store until ctx is cancelled. New directories
// created at runtime are added to the watch list. Failure to establish the
// subscription is returned as an error and is fatal to this component; a
// failure processing one event is logged and the loop continues.
func (e *Engine) Monitor(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("engine: create watcher: %w", err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, e.root); err != nil {
		return fmt.Errorf("engine: watch %s: %w", e.root, err)
	}

	e.logger.Info("monitor: started", slog.String("root", e.root))

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("monitor: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			e.handleEvent(w, ev, cb)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("monitor: watch error", slog.String("error", watchErr.Error()))
		}
	}
}

// handleEvent applies one filesystem event. Create and Write funnel into the
// same serialized upsert path as the startup scan; Remove and Rename delete
// the record directly, no rescan needed.
func (e *Engine) handleEvent(w *fsnotify.Watcher, ev fsnotify.Event, cb EventCallback) {
	path := ev.Name

	// A new directory needs a watch of its own, plus a pass over any note
	// files that landed in it before the watch was in place.
	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
			if addErr := addDirsRecursive(w, path); addErr != nil {
				e.logger.Warn("monitor: add new dir failed",
					slog.String("path", path), slog.String("error", addErr.Error()))
			}
			e.indexNewDir(path, cb)
			return
		}
	}

	if !strings.HasSuffix(path, ".md") || isIndexArtifact(filepath.Base(path)) {
		return
	}
	rel, err := e.rel(path)
	if err != nil {
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if !e.isNoteFile(path) {
			return
		}
		updated, err := e.applyUpsert(path, rel)
		if err != nil {
			e.logger.Warn("monitor: index failed",
				slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		if updated {
			e.logger.Debug("monitor: indexed", slog.String("path", rel))
			if cb != nil {
				cb("indexed", rel)
			}
		}

	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Rename delivers the old path only; if the file moved within the
		// root, its new path arrives as a separate Create event.
		if err := e.applyRemove(rel); err != nil {
			e.logger.Warn("monitor: remove failed",
				slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		e.logger.Debug("monitor: removed", slog.String("path", rel))
		if cb != nil {
			cb("removed", rel)
		}
	}
}

// indexNewDir indexes valid note files found under a directory that was
// created while the watcher was already running.
func (e *Engine) indexNewDir(dir string, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !e.isNoteFile(path) {
			return nil
		}
		rel, relErr := e.rel(path)
		if relErr != nil {
			return nil
		}
		updated, idxErr := e.applyUpsert(path, rel)
		if idxErr != nil {
			e.logger.Warn("monitor: index from new dir failed",
				slog.String("path", rel), slog.String("error", idxErr.Error()))
			return nil
		}
		if updated && cb != nil {
			cb("indexed", rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
