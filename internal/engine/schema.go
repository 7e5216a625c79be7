package engine

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// The schema needs FTS5, so binaries must be built with the sqlite_fts5
// build tag.
//
// The FTS table is kept consistent with the notes table purely through
// triggers, so a notes row can never outlive (or predate) its full-text
// entry. Tag linkage rows cascade on delete, and orphaned tags are pruned
// by the note_tags trigger.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	filepath TEXT NOT NULL UNIQUE,
	mtime    TEXT NOT NULL,
	metadata TEXT NOT NULL,
	content  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	tag_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	tag_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS note_tags (
	note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(tag_id),
	PRIMARY KEY (note_id, tag_id)
);

CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
	content,
	tags,
	tokenize = 'unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS notes_fts_insert AFTER INSERT ON notes BEGIN
	INSERT INTO notes_fts (rowid, content, tags)
	VALUES (new.id, new.content, json_extract(new.metadata, '$.tags'));
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_update AFTER UPDATE ON notes BEGIN
	DELETE FROM notes_fts WHERE rowid = old.id;
	INSERT INTO notes_fts (rowid, content, tags)
	VALUES (new.id, new.content, json_extract(new.metadata, '$.tags'));
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_delete AFTER DELETE ON notes BEGIN
	DELETE FROM notes_fts WHERE rowid = old.id;
END;

CREATE TRIGGER IF NOT EXISTS note_tags_prune AFTER DELETE ON note_tags BEGIN
	DELETE FROM tags
	WHERE tag_id = old.tag_id
	  AND NOT EXISTS (SELECT 1 FROM note_tags WHERE tag_id = old.tag_id);
END;
`

// openDB opens (or creates) the SQLite database and applies the schema.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("engine: open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("engine: apply schema: %w", err)
	}
	return db, nil
}
