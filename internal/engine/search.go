package engine

import (
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/note"
)

// SearchOptions narrow a search. Before and After bound the note creation
// time (inclusive). Limit caps returned rows; nil means unbounded and a
// zero limit returns the total count only.
type SearchOptions struct {
	Before *time.Time
	After  *time.Time
	Limit  *int
}

// SearchResult is one search hit, ordered by engine relevance rank and then
// creation time descending.
type SearchResult struct {
	Filepath string
	Note     *note.Note
}

// Search compiles the user query and runs it against the full-text index.
// It returns the matching rows plus the true total match count so callers
// can detect truncation.
//
// An empty compiled query, or a before/after pair that cannot overlap
// (before earlier than after), is a deliberate empty answer: no rows, zero
// total, no error.
func (e *Engine) Search(query string, opts SearchOptions) ([]SearchResult, int, error) {
	compiled, err := CompileQuery(query)
	if err != nil {
		return nil, 0, err
	}
	if compiled == "" {
		return nil, 0, nil
	}
	if opts.Before != nil && opts.After != nil && opts.Before.Before(*opts.After) {
		return nil, 0, nil
	}

	where := ` WHERE notes_fts MATCH ?`
	args := []any{compiled}
	if opts.Before != nil {
		where += ` AND json_extract(n.metadata, '$.created') <= ?`
		args = append(args, opts.Before.Format(time.RFC3339))
	}
	if opts.After != nil {
		where += ` AND json_extract(n.metadata, '$.created') >= ?`
		args = append(args, opts.After.Format(time.RFC3339))
	}

	var total int
	countSQL := `SELECT COUNT(*) FROM notes_fts JOIN notes n ON n.id = notes_fts.rowid` + where
	if err := e.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("engine: count search results: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}
	if opts.Limit != nil && *opts.Limit == 0 {
		return nil, total, nil
	}

	querySQL := `
		SELECT n.filepath, n.metadata, n.content
		FROM notes_fts JOIN notes n ON n.id = notes_fts.rowid` + where + `
		ORDER BY notes_fts.rank, json_extract(n.metadata, '$.created') DESC`
	if opts.Limit != nil {
		querySQL += ` LIMIT ?`
		args = append(args, *opts.Limit)
	}

	rows, err := e.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("engine: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var filepath, metadata, content string
		if err := rows.Scan(&filepath, &metadata, &content); err != nil {
			return nil, 0, err
		}
		n, err := note.FromMetadataJSON(metadata, content)
		if err != nil {
			return nil, 0, fmt.Errorf("engine: decode %s: %w", filepath, err)
		}
		out = append(out, SearchResult{Filepath: filepath, Note: n})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
