package engine

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/note"
)

// minPrefixLength is the floor for id prefixes. Shorter prefixes are never
// returned even when they would be unique.
const minPrefixLength = 2

// countIDPrefix counts stored note ids beginning with prefix.
func (e *Engine) countIDPrefix(prefix string) (int, error) {
	var count int
	err := e.db.QueryRow(`
		SELECT COUNT(*) FROM notes
		WHERE json_extract(metadata, '$.id') LIKE ? || '%'
	`, prefix).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("engine: count id prefix: %w", err)
	}
	return count, nil
}

// ShortestUniquePrefix returns the shortest prefix of id, at least two
// characters, that matches exactly one stored note. It fails when the id is
// not present in the store at all.
func (e *Engine) ShortestUniquePrefix(id string) (string, error) {
	id, err := note.ParseID(id)
	if err != nil {
		return "", err
	}

	full, err := e.countIDPrefix(id)
	if err != nil {
		return "", err
	}
	if full == 0 {
		return "", fmt.Errorf("note id %s: %w", id, apperr.ErrNotFound)
	}

	for n := minPrefixLength; n < len(id); n++ {
		count, err := e.countIDPrefix(id[:n])
		if err != nil {
			return "", err
		}
		if count == 1 {
			return id[:n], nil
		}
	}
	return id, nil
}

// resolvePrefix finds the single note whose id begins with prefix.
// Zero matches yields (nil row, nil error); more than one is an
// AmbiguousIDError carrying the prefix and match count.
func (e *Engine) resolvePrefix(prefix string) (filepath string, n *note.Note, err error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", nil, fmt.Errorf("engine: empty id prefix")
	}

	count, err := e.countIDPrefix(prefix)
	if err != nil {
		return "", nil, err
	}
	if count == 0 {
		return "", nil, nil
	}
	if count > 1 {
		return "", nil, &apperr.AmbiguousIDError{Prefix: prefix, Count: count}
	}

	var metadata, content string
	err = e.db.QueryRow(`
		SELECT filepath, metadata, content FROM notes
		WHERE json_extract(metadata, '$.id') LIKE ? || '%'
	`, prefix).Scan(&filepath, &metadata, &content)
	if err == sql.ErrNoRows {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("engine: resolve id prefix: %w", err)
	}

	n, err = note.FromMetadataJSON(metadata, content)
	if err != nil {
		return "", nil, fmt.Errorf("engine: decode %s: %w", filepath, err)
	}
	return filepath, n, nil
}

// NoteByIDPrefix resolves an id prefix to the note and its filepath.
// A missing note is reported as (nil, "", nil), not as an error.
func (e *Engine) NoteByIDPrefix(prefix string) (*note.Note, string, error) {
	filepath, n, err := e.resolvePrefix(prefix)
	if err != nil {
		return nil, "", err
	}
	return n, filepath, nil
}

// FilepathByIDPrefix resolves an id prefix to a filepath relative to the
// note root; empty string when no note matches.
func (e *Engine) FilepathByIDPrefix(prefix string) (string, error) {
	filepath, _, err := e.resolvePrefix(prefix)
	return filepath, err
}
