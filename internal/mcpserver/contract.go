package mcpserver

// NoteFormatContract describes the canonical Markdown note format that
// LLM consumers should follow when creating notes.
const NoteFormatContract = `# Ansuz Note Format Contract

Every Markdown note stored in Ansuz follows this structure.

## Structure

` + "```" + `markdown
---
id: 8f3kq9l2m5n7p0r4                   # 16 lowercase base36 characters
created: 2025-01-20T10:15:00+01:00     # RFC3339 timestamp

tags: [meeting-notes, project-x]       # OPTIONAL - lowercase, dashes allowed
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Frontmatter is generated for you.** When adding notes through the
   ` + "`" + `add_note` + "`" + ` tool, supply only the Markdown body and optional tags; the
   server assigns the id, timestamp, and file location.
2. **Tags** are lowercase and may contain letters, digits, and dashes
   (e.g. ` + "`" + `project-x` + "`" + `, ` + "`" + `meeting-notes` + "`" + `). A leading ` + "`" + `+` + "`" + ` sigil is accepted
   and stripped. Dashes may not start or end a tag.
3. **Titles** come from the first non-empty line of the body. Markdown
   heading and list markers are stripped, so starting a note with
   ` + "`" + `# Some Title` + "`" + ` gives it the title "Some Title".
4. **File layout** is date based: ` + "`" + `YYYY/MM Month/YYYY-MM-DD Title.md` + "`" + `.
   Do not try to control note paths directly.
5. **Size** is capped at 50 KiB per note. Keep notes focused; split long
   material into several notes.
6. **Encoding** is UTF-8.

## Searching

The ` + "`" + `search_notes` + "`" + ` query language:

- ` + "`" + `+tag` + "`" + ` matches notes carrying that tag.
- Bare words match note content (full-text).
- ` + "`" + `"quoted phrases"` + "`" + ` match exactly.
- ` + "`" + `AND` + "`" + `, ` + "`" + `OR` + "`" + `, ` + "`" + `NOT` + "`" + ` and parentheses combine terms,
  e.g. ` + "`" + `+work AND (standup OR retro)` + "`" + `.
- ` + "`" + `before` + "`" + ` and ` + "`" + `after` + "`" + ` narrow the creation date range.

## Example

` + "```" + `markdown
# Weekly standup 2025-01-20

Discussed the rollout plan. Next steps:

- finalize migration script
- schedule the maintenance window
` + "```" + `

With tags ` + "`" + `["+meeting-notes", "+project-x"]` + "`" + ` this becomes
` + "`" + `2025/01 January/2025-01-20 Weekly standup 2025-01-20.md` + "`" + `.
`
