package engine

import (
	"database/sql"
	"fmt"
)

// allFilepaths returns every filepath currently in the store.
func (e *Engine) allFilepaths() (map[string]struct{}, error) {
	rows, err := e.db.Query(`SELECT filepath FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("engine: list filepaths: %w", err)
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// storedMtime returns the modification marker stored for a filepath, or
// ok=false when the path is not indexed.
func (e *Engine) storedMtime(filepath string) (mtime string, ok bool, err error) {
	err = e.db.QueryRow(`SELECT mtime FROM notes WHERE filepath = ?`, filepath).Scan(&mtime)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("engine: stored mtime: %w", err)
	}
	return mtime, true, nil
}

// upsertNote inserts or updates a note row and replaces its tag linkage in
// one transaction. The FTS entry follows via the schema triggers, so the
// record, its full-text entry, and its tags move as a single atomic unit.
func (e *Engine) upsertNote(filepath, mtime, metadata, content string, tags []string) error {
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("engine: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO notes (filepath, mtime, metadata, content)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(filepath) DO UPDATE SET
			mtime    = excluded.mtime,
			metadata = excluded.metadata,
			content  = excluded.content
	`, filepath, mtime, metadata, content)
	if err != nil {
		return fmt.Errorf("engine: upsert note: %w", err)
	}

	var noteID int64
	if err := tx.QueryRow(`SELECT id FROM notes WHERE filepath = ?`, filepath).Scan(&noteID); err != nil {
		return fmt.Errorf("engine: note id after upsert: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("engine: clear tag links: %w", err)
	}
	for _, tag := range tags {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tags (tag_name) VALUES (?)`, tag); err != nil {
			return fmt.Errorf("engine: insert tag: %w", err)
		}
		_, err := tx.Exec(`
			INSERT OR IGNORE INTO note_tags (note_id, tag_id)
			SELECT ?, tag_id FROM tags WHERE tag_name = ?
		`, noteID, tag)
		if err != nil {
			return fmt.Errorf("engine: link tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("engine: commit upsert: %w", err)
	}
	e.upserts.Add(1)
	return nil
}

// deleteNote removes one note row; triggers and cascades take care of the
// FTS entry and tag linkage.
func (e *Engine) deleteNote(filepath string) error {
	res, err := e.db.Exec(`DELETE FROM notes WHERE filepath = ?`, filepath)
	if err != nil {
		return fmt.Errorf("engine: delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		e.removals.Add(n)
	}
	return nil
}

// deleteNotes removes a batch of note rows in a single transaction so the
// startup-diff cleanup is atomic.
func (e *Engine) deleteNotes(filepaths map[string]struct{}) error {
	if len(filepaths) == 0 {
		return nil
	}
	tx, err := e.db.Begin()
	if err != nil {
		return fmt.Errorf("engine: begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for p := range filepaths {
		if _, err := tx.Exec(`DELETE FROM notes WHERE filepath = ?`, p); err != nil {
			return fmt.Errorf("engine: delete note %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("engine: commit delete tx: %w", err)
	}
	e.removals.Add(int64(len(filepaths)))
	return nil
}
