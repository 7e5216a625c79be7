package engine

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func indexed(e *Engine, rel string) func() bool {
	return func() bool {
		_, ok, _ := e.storedMtime(rel)
		return ok
	}
}

func TestMonitorNewFileIndexed(t *testing.T) {
	root, e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go e.Monitor(ctx, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	writeNote(t, root, "2024-06-15 new.md",
		noteText("8f3kq9l2m5n7p0r4", "2024-06-15T09:30:00Z", nil, "# New\n"))

	eventually(t, 5*time.Second, 50*time.Millisecond,
		indexed(e, "2024-06-15 new.md"), "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range events {
			if ev == "indexed:2024-06-15 new.md" {
				return true
			}
		}
		return false
	}, "expected indexed callback for the new file")
}

func TestMonitorNewDirWatched(t *testing.T) {
	root, e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.Monitor(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(root, "2024")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	writeNote(t, root, filepath.Join("2024", "2024-06-15 deep.md"),
		noteText("8f3kq9l2m5n7p0r4", "2024-06-15T09:30:00Z", nil, "# Deep\n"))

	eventually(t, 5*time.Second, 50*time.Millisecond,
		indexed(e, filepath.Join("2024", "2024-06-15 deep.md")),
		"file in new subdir not indexed by watcher")
}

func TestMonitorDeleteRemovesFromIndex(t *testing.T) {
	root, e := newTestEngine(t)

	abs := writeNote(t, root, "2024-06-15 del.md",
		noteText("8f3kq9l2m5n7p0r4", "2024-06-15T09:30:00Z", nil, "# Delete Me\n"))
	if err := e.Reindex(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := e.storedMtime("2024-06-15 del.md"); !ok {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.Monitor(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(abs); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok, _ := e.storedMtime("2024-06-15 del.md")
		return !ok
	}, "deleted file still in index")
}

func TestMonitorRenameReconciles(t *testing.T) {
	root, e := newTestEngine(t)

	abs := writeNote(t, root, "2024-06-15 old.md",
		noteText("8f3kq9l2m5n7p0r4", "2024-06-15T09:30:00Z", nil, "# Rename\n"))
	if err := e.Reindex(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.Monitor(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	if err := os.Rename(abs, filepath.Join(root, "2024-06-15 renamed.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, oldOK, _ := e.storedMtime("2024-06-15 old.md")
		_, newOK, _ := e.storedMtime("2024-06-15 renamed.md")
		return !oldOK && newOK
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}

func TestMonitorIgnoresInvalidFiles(t *testing.T) {
	root, e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go e.Monitor(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	writeNote(t, root, "README.md", "# Not a note\n")
	writeNote(t, root, "2024-06-15 ok.md",
		noteText("8f3kq9l2m5n7p0r4", "2024-06-15T09:30:00Z", nil, "# OK\n"))

	eventually(t, 5*time.Second, 50*time.Millisecond,
		indexed(e, "2024-06-15 ok.md"), "valid sibling not indexed")

	if _, ok, _ := e.storedMtime("README.md"); ok {
		t.Error("README.md should never be indexed")
	}
}
