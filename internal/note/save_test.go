package note

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveLayout(t *testing.T) {
	root := t.TempDir()
	n := New(time.Now(), []string{"work"}, "# Rollout Plan\n\nDetails.\n")

	rel, err := n.Save(root)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	now := time.Now()
	wantDir := filepath.Join(fmt.Sprintf("%d", now.Year()), monthDirs[now.Month()-1])
	if filepath.Dir(rel) != wantDir {
		t.Errorf("dir = %q, want %q", filepath.Dir(rel), wantDir)
	}
	wantName := now.Format("2006-01-02") + " Rollout Plan.md"
	if filepath.Base(rel) != wantName {
		t.Errorf("filename = %q, want %q", filepath.Base(rel), wantName)
	}

	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse saved note: %v", err)
	}
	if back.ID != n.ID {
		t.Errorf("saved id = %q, want %q", back.ID, n.ID)
	}
}

func TestSaveCollisionCounter(t *testing.T) {
	root := t.TempDir()
	content := "# Same Title\n"

	first, err := New(time.Now(), nil, content).Save(root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(time.Now(), nil, content).Save(root)
	if err != nil {
		t.Fatal(err)
	}
	third, err := New(time.Now(), nil, content).Save(root)
	if err != nil {
		t.Fatal(err)
	}

	if first == second || second == third {
		t.Fatalf("collisions not resolved: %q %q %q", first, second, third)
	}
	if !strings.Contains(filepath.Base(second), "(2)") {
		t.Errorf("second file = %q, want (2) counter", second)
	}
	if !strings.Contains(filepath.Base(third), "(3)") {
		t.Errorf("third file = %q, want (3) counter", third)
	}
}

func TestNoteFilenameSanitizes(t *testing.T) {
	date := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	got := noteFilename(date, `a/b:c*d?e"f<g>h|i`, 0)
	if strings.ContainsAny(got, `/\:*?"<>|`) {
		t.Errorf("filename %q still contains unsafe characters", got)
	}
	if !strings.HasPrefix(got, "2024-06-15 ") || !strings.HasSuffix(got, ".md") {
		t.Errorf("filename %q has wrong shape", got)
	}
}
