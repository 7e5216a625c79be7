// Package note implements the Markdown note model: YAML frontmatter with an
// optional stable id, a creation timestamp, and a validated tag list, plus a
// free-form body.
package note

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// MaxNoteBytes is the content size ceiling for a single note (50 KiB).
const MaxNoteBytes = 50 * 1024

// Frontmatter is the structured metadata block attached to a note.
type Frontmatter struct {
	ID      string
	Created time.Time
	Tags    []string
}

// Note is a parsed note: frontmatter plus body content.
type Note struct {
	Frontmatter
	Content string
}

// frontmatterDoc is the YAML wire form of a frontmatter block.
type frontmatterDoc struct {
	ID      string   `yaml:"id"`
	Created string   `yaml:"created"`
	Tags    []string `yaml:"tags"`
}

// Metadata is the JSON wire form stored in the index next to the body.
type Metadata struct {
	ID      string   `json:"id,omitempty"`
	Created string   `json:"created"`
	Tags    []string `json:"tags"`
}

// New creates a note with a fresh random id and the given creation time.
func New(created time.Time, tags []string, content string) *Note {
	return &Note{
		Frontmatter: Frontmatter{ID: NewID(), Created: created, Tags: tags},
		Content:     content,
	}
}

// Parse turns raw note text into a Note.
//
// A leading `---` YAML block supplies id, created, and tags; each field is
// validated strictly. A missing or empty block yields default frontmatter
// (random id, current time, no tags). Any validation failure is returned as
// an error so the indexing pipeline can make its skip decision at one place.
func Parse(data []byte) (*Note, error) {
	if err := validateContent(data); err != nil {
		return nil, err
	}

	yamlBlock, body := splitFrontmatter(data)
	if yamlBlock == nil {
		return New(time.Now(), nil, body), nil
	}

	var doc frontmatterDoc
	if err := yaml.Unmarshal(yamlBlock, &doc); err != nil {
		return nil, fmt.Errorf("invalid frontmatter yaml: %w", err)
	}

	fm := Frontmatter{}
	if doc.ID != "" {
		id, err := ParseID(doc.ID)
		if err != nil {
			return nil, err
		}
		fm.ID = id
	}

	if doc.Created == "" {
		return nil, fmt.Errorf("frontmatter is missing the created timestamp")
	}
	created, err := time.Parse(time.RFC3339, doc.Created)
	if err != nil {
		return nil, fmt.Errorf("invalid created timestamp %q: %w", doc.Created, err)
	}
	fm.Created = created.Local()

	seen := make(map[string]struct{}, len(doc.Tags))
	for _, raw := range doc.Tags {
		tag, err := ValidateTag(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		fm.Tags = append(fm.Tags, tag)
	}

	return &Note{Frontmatter: fm, Content: body}, nil
}

// validateContent rejects empty, oversized, binary, or non-UTF-8 input.
func validateContent(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("note content is empty")
	}
	if len(data) > MaxNoteBytes {
		return fmt.Errorf("note content is too large (> %d bytes)", MaxNoteBytes)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return fmt.Errorf("note content contains null bytes")
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("note content is not valid UTF-8")
	}
	return nil
}

// splitFrontmatter separates the YAML block (between leading --- delimiters)
// from the body. It returns a nil block when there is no frontmatter, no
// closing delimiter, or the block is blank.
func splitFrontmatter(data []byte) ([]byte, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r\t ")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	block := bytes.TrimSpace(rest[:idx])
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")
	if len(block) == 0 {
		return nil, body
	}
	return block, body
}

// MetadataJSON serializes the frontmatter for storage in the index.
func (n *Note) MetadataJSON() (string, error) {
	tags := n.Frontmatter.Tags
	if tags == nil {
		tags = []string{}
	}
	out, err := json.Marshal(Metadata{
		ID:      n.Frontmatter.ID,
		Created: n.Frontmatter.Created.Format(time.RFC3339),
		Tags:    tags,
	})
	if err != nil {
		return "", fmt.Errorf("serialize frontmatter: %w", err)
	}
	return string(out), nil
}

// FromMetadataJSON reconstructs a Note from stored metadata and body.
func FromMetadataJSON(metadataJSON, content string) (*Note, error) {
	var meta Metadata
	if err := json.Unmarshal([]byte(metadataJSON), &meta); err != nil {
		return nil, fmt.Errorf("parse stored metadata: %w", err)
	}
	created, err := time.Parse(time.RFC3339, meta.Created)
	if err != nil {
		return nil, fmt.Errorf("parse stored created timestamp %q: %w", meta.Created, err)
	}
	return &Note{
		Frontmatter: Frontmatter{ID: meta.ID, Created: created.Local(), Tags: meta.Tags},
		Content:     content,
	}, nil
}

// FrontmatterYAML renders the canonical frontmatter block.
func (n *Note) FrontmatterYAML() string {
	var b strings.Builder
	b.WriteString("---\n")
	if n.Frontmatter.ID != "" {
		b.WriteString("id: " + n.Frontmatter.ID + "\n")
	}
	b.WriteString("created: " + n.Frontmatter.Created.Format("2006-01-02T15:04:05-07:00") + "\n")
	if len(n.Frontmatter.Tags) > 0 {
		b.WriteString("\ntags:")
		for _, tag := range n.Frontmatter.Tags {
			b.WriteString("\n  - " + tag)
		}
		b.WriteString("\n")
	}
	b.WriteString("---")
	return b.String()
}

// Render returns the complete note text: frontmatter block plus body.
func (n *Note) Render() string {
	return n.FrontmatterYAML() + "\n\n" + strings.TrimRight(n.Content, " \t\n") + "\n"
}

// ExtractTitle derives a display title from the first non-empty content
// line, stripping markdown heading and list markers.
func (n *Note) ExtractTitle() string {
	title := ""
	for _, line := range strings.Split(n.Content, "\n") {
		if strings.TrimSpace(line) != "" {
			title = strings.TrimSpace(line)
			break
		}
	}

	switch {
	case strings.HasPrefix(title, "#"):
		title = strings.TrimSpace(strings.TrimLeft(title, "#"))
	case strings.HasPrefix(title, "- "):
		title = strings.TrimSpace(strings.TrimPrefix(title, "- "))
	case strings.HasPrefix(title, "* "):
		title = strings.TrimSpace(strings.TrimPrefix(title, "* "))
	}

	if len(title) > 100 {
		title = title[:100]
	}
	return strings.TrimRight(title, ".")
}
