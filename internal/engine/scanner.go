package engine

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// scanBuffer bounds the scanner-to-pipeline channel so discovery never runs
// arbitrarily far ahead of persistence.
const scanBuffer = 100

// scan enumerates the note root with an explicit directory worklist and
// sends every path passing the validity filter to out, closing it when the
// walk completes. Traversal order is unspecified; unreadable directories are
// logged and skipped.
func (e *Engine) scan(out chan<- string) {
	defer close(out)

	stack := []string{e.root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			e.logger.Warn("scan: read dir failed",
				slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}
			if isIndexArtifact(entry.Name()) {
				continue
			}
			if e.isNoteFile(path) {
				out <- path
			}
		}
	}
}

// isIndexArtifact reports whether a filename belongs to the store itself.
func isIndexArtifact(name string) bool {
	return name == DBFilename || strings.HasPrefix(name, DBFilename+"-")
}
