package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/ansuz/internal/note"
)

// mtimeLayout is the modification marker format. Millisecond precision is
// enough to detect editor saves; the marker is only ever compared for
// equality.
const mtimeLayout = "2006-01-02 15:04:05.000"

// StartIndexing launches a full reindex in the background and returns
// immediately. Errors are logged; a failed reindex never takes the process
// down.
func (e *Engine) StartIndexing() {
	go func() {
		if err := e.Reindex(); err != nil {
			e.logger.Error("reindex failed", slog.String("error", err.Error()))
		}
	}()
}

// Reindex brings the store up to date with the note root:
//   - every stored filepath starts as a deletion candidate
//   - scanner output is applied path by path, with unchanged files skipped
//     via the stored modification marker
//   - candidates still unaccounted for after the scan (present in the store,
//     absent from disk) are deleted in one transaction
//
// A read or parse failure on one file is logged and skipped; it never aborts
// the reindex of the rest.
func (e *Engine) Reindex() error {
	stale, err := e.allFilepaths()
	if err != nil {
		return err
	}

	paths := make(chan string, scanBuffer)
	go e.scan(paths)

	var indexed, skipped, failed int
	for path := range paths {
		rel, err := e.rel(path)
		if err != nil {
			continue
		}
		delete(stale, rel)

		updated, err := e.applyUpsert(path, rel)
		switch {
		case err != nil:
			failed++
			e.logger.Warn("reindex: index failed",
				slog.String("path", rel), slog.String("error", err.Error()))
		case updated:
			indexed++
			e.logger.Debug("reindex: indexed", slog.String("path", rel))
		default:
			skipped++
		}
	}

	if len(stale) > 0 {
		e.mu.Lock()
		err := e.deleteNotes(stale)
		e.mu.Unlock()
		if err != nil {
			return err
		}
	}

	e.logger.Info("reindex complete",
		slog.Int("indexed", indexed),
		slog.Int("skipped", skipped),
		slog.Int("failed", failed),
		slog.Int("removed", len(stale)))
	return nil
}

// applyUpsert parses a note file and writes it to the store unless its
// modification marker is unchanged. Returns whether a write happened.
// This is the single serialized write path for scan and watch events alike.
func (e *Engine) applyUpsert(path, rel string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat: %w", err)
	}
	marker := info.ModTime().Format(mtimeLayout)

	stored, ok, err := e.storedMtime(rel)
	if err != nil {
		return false, err
	}
	if ok && stored == marker {
		return false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read: %w", err)
	}
	n, err := note.Parse(data)
	if err != nil {
		return false, fmt.Errorf("parse: %w", err)
	}
	metadata, err := n.MetadataJSON()
	if err != nil {
		return false, err
	}

	tags := make([]string, len(n.Frontmatter.Tags))
	copy(tags, n.Frontmatter.Tags)
	return true, e.upsertNote(rel, marker, metadata, n.Content, tags)
}

// applyRemove deletes the record for a path that disappeared from disk.
func (e *Engine) applyRemove(rel string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteNote(rel)
}

// IndexNow synchronously indexes a single freshly written note file, used by
// write paths that want the note searchable immediately instead of waiting
// for a watcher cycle.
func (e *Engine) IndexNow(rel string) error {
	path := e.absFromRel(rel)
	if !e.isNoteFile(path) {
		return fmt.Errorf("engine: %s is not a valid note file", rel)
	}
	_, err := e.applyUpsert(path, rel)
	return err
}

func (e *Engine) absFromRel(rel string) string {
	return filepath.Join(e.root, rel)
}
