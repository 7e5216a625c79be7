package note

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var monthDirs = [...]string{
	"01 January", "02 February", "03 March", "04 April",
	"05 May", "06 June", "07 July", "08 August",
	"09 September", "10 October", "11 November", "12 December",
}

// Save writes the note under root in a YYYY/MM Month/ directory, deriving
// the filename from the save date and the note title. On filename collision
// a counter is inserted. Returns the path relative to root.
func (n *Note) Save(root string) (string, error) {
	title := n.ExtractTitle()
	if title == "" {
		return "", fmt.Errorf("note content is empty")
	}

	now := time.Now()
	monthDir := filepath.Join(root, fmt.Sprintf("%d", now.Year()), monthDirs[now.Month()-1])
	if err := os.MkdirAll(monthDir, 0o755); err != nil {
		return "", fmt.Errorf("create note directory: %w", err)
	}

	filename := noteFilename(now, title, 0)
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(monthDir, filename)); os.IsNotExist(err) {
			break
		}
		filename = noteFilename(now, title, counter)
	}

	abs := filepath.Join(monthDir, filename)
	if err := os.WriteFile(abs, []byte(n.Render()), 0o644); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("relativize note path: %w", err)
	}
	return rel, nil
}

// noteFilename builds "YYYY-MM-DD Title.md", inserting "(counter)" when
// counter > 0. Characters unsafe in filenames are replaced with dashes.
func noteFilename(date time.Time, title string, counter int) string {
	sanitized := strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return c
	}, title)

	dateStr := date.Format("2006-01-02")
	if counter > 0 {
		return fmt.Sprintf("%s (%d) %s.md", dateStr, counter, sanitized)
	}
	return fmt.Sprintf("%s %s.md", dateStr, sanitized)
}
