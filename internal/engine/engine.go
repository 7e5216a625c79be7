// Package engine keeps a SQLite full-text index consistent with a directory
// tree of Markdown notes and answers search and id-prefix queries against it.
//
// The startup scanner and the filesystem watcher both feed the same
// serialized apply path, making the engine the sole writer to the store.
// Readers are never blocked by in-flight writes; they may lag disk state by
// up to one indexing cycle.
package engine

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/starford/ansuz/internal/note"
)

// DBFilename is the name of the index database file inside the note root.
const DBFilename = ".notes.db"

// Engine owns the store handle and the indexing machinery for one note root.
type Engine struct {
	db           *sql.DB
	root         string
	logger       *slog.Logger
	maxNoteBytes int64

	// mu serializes every index mutation, whether it originates from the
	// startup scan or from a watcher event.
	mu sync.Mutex

	upserts  atomic.Int64
	removals atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMaxNoteSize overrides the note size ceiling in bytes. Non-positive
// values keep the default.
func WithMaxNoteSize(bytes int64) Option {
	return func(e *Engine) {
		if bytes > 0 {
			e.maxNoteBytes = bytes
		}
	}
}

// Open validates the note root, opens (or creates) the index database inside
// it, and applies the schema. Connection or schema failures are fatal.
func Open(root string, opts ...Option) (*Engine, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("engine: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("engine: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("engine: root is not a directory: %s", abs)
	}

	e := &Engine{
		root:         abs,
		logger:       slog.Default(),
		maxNoteBytes: note.MaxNoteBytes,
	}
	for _, opt := range opts {
		opt(e)
	}

	db, err := openDB(filepath.Join(abs, DBFilename))
	if err != nil {
		return nil, err
	}
	e.db = db
	return e, nil
}

// Close closes the underlying database connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Root returns the absolute note root path.
func (e *Engine) Root() string {
	return e.root
}

// rel converts an absolute path under the root to the store's relative key.
func (e *Engine) rel(abs string) (string, error) {
	rel, err := filepath.Rel(e.root, abs)
	if err != nil || rel == "." || !fs.ValidPath(filepath.ToSlash(rel)) {
		return "", fmt.Errorf("engine: path %s is outside the note root", abs)
	}
	return rel, nil
}
