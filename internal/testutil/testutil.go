// Package testutil provides shared test helpers for setting up note roots
// and index engines.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/engine"
)

// TestEngine creates a temporary note root with an engine opened on it,
// both cleaned up automatically.
func TestEngine(t *testing.T) (string, *engine.Engine) {
	t.Helper()
	root := t.TempDir()

	eng, err := engine.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })
	return root, eng
}

// WriteNote writes a note file under root at the given relative path,
// creating parent directories as needed.
func WriteNote(t *testing.T, root, rel, content string) string {
	t.Helper()
	abs := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return abs
}
