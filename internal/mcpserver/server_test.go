package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/note"
	"github.com/starford/ansuz/internal/testutil"
)

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	root, eng := testutil.TestEngine(t)
	return New(eng), root
}

func seedNote(t *testing.T, srv *Server, root, id, body string, tags []string) {
	t.Helper()
	created, _ := time.Parse(time.RFC3339, "2024-06-15T09:30:00Z")
	n := &note.Note{Content: body}
	n.ID = id
	n.Created = created
	n.Tags = tags
	rel := "2024/2024-06-15 " + id + ".md"
	testutil.WriteNote(t, root, rel, n.Render())
	if err := srv.eng.IndexNow(rel); err != nil {
		t.Fatal(err)
	}
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "search_notes":
		result, err = srv.searchNotes(ctx, req)
	case "add_note":
		result, err = srv.addNote(ctx, req)
	case "get_note":
		result, err = srv.getNote(ctx, req)
	case "get_note_filepath":
		result, err = srv.getNoteFilepath(ctx, req)
	case "get_short_id":
		result, err = srv.getShortID(ctx, req)
	case "get_note_contract":
		result, err = srv.getNoteContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestAddNoteAndSearch(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "add_note", map[string]interface{}{
		"content": "# Rollout Plan\n\nShip it next week.\n",
		"tags":    []interface{}{"+work"},
	})
	if res.IsError {
		t.Fatalf("add_note failed: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "Note added successfully:") {
		t.Errorf("unexpected response: %q", resultText(res))
	}

	res = callTool(t, srv, "search_notes", map[string]interface{}{"query": "+work"})
	if res.IsError {
		t.Fatalf("search_notes failed: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "Rollout Plan") {
		t.Errorf("search response missing the new note: %q", resultText(res))
	}
}

func TestAddNoteValidation(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "add_note", map[string]interface{}{"content": "   "})
	if !res.IsError {
		t.Error("empty content accepted")
	}

	res = callTool(t, srv, "add_note", map[string]interface{}{
		"content": "x",
		"tags":    []interface{}{"+Bad_Tag"},
	})
	if !res.IsError {
		t.Error("invalid tag accepted")
	}

	many := make([]interface{}, 11)
	for i := range many {
		many[i] = "+tag"
	}
	res = callTool(t, srv, "add_note", map[string]interface{}{"content": "x", "tags": many})
	if !res.IsError {
		t.Error("more than 10 tags accepted")
	}
}

func TestSearchNotesNoResults(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "search_notes", map[string]interface{}{"query": "nothing-matches"})
	if res.IsError {
		t.Fatalf("search failed: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "No results found") {
		t.Errorf("response = %q, want no-results notice", resultText(res))
	}
}

func TestSearchNotesTruncationNotice(t *testing.T) {
	srv, root := testServer(t)

	for i := 0; i < 3; i++ {
		seedNote(t, srv, root, "aaaa00000000000"+string(rune('1'+i)), "common topic\n", nil)
	}

	res := callTool(t, srv, "search_notes", map[string]interface{}{
		"query": "common",
		"limit": float64(2),
	})
	if res.IsError {
		t.Fatalf("search failed: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "matches 3 notes") {
		t.Errorf("response = %q, want truncation notice", resultText(res))
	}
}

func TestGetNoteByPrefix(t *testing.T) {
	srv, root := testServer(t)
	seedNote(t, srv, root, "abcd111111111111", "# Standup\n", []string{"work"})

	res := callTool(t, srv, "get_note", map[string]interface{}{"id": "ab"})
	if res.IsError {
		t.Fatalf("get_note failed: %s", resultText(res))
	}
	if !strings.Contains(resultText(res), "id: abcd111111111111") {
		t.Errorf("response missing frontmatter: %q", resultText(res))
	}

	res = callTool(t, srv, "get_note", map[string]interface{}{"id": "zz"})
	if !res.IsError {
		t.Error("unknown prefix should be an error result")
	}
}

func TestGetNoteFilepath(t *testing.T) {
	srv, root := testServer(t)
	seedNote(t, srv, root, "abcd111111111111", "# Standup\n", nil)

	res := callTool(t, srv, "get_note_filepath", map[string]interface{}{"id": "ab"})
	if res.IsError {
		t.Fatalf("get_note_filepath failed: %s", resultText(res))
	}
	path := resultText(res)
	if !strings.HasPrefix(path, root) || !strings.HasSuffix(path, ".md") {
		t.Errorf("path = %q, want absolute path under %q", path, root)
	}
}

func TestGetShortID(t *testing.T) {
	srv, root := testServer(t)
	seedNote(t, srv, root, "abcd111111111111", "# A\n", nil)
	seedNote(t, srv, root, "abce222222222222", "# B\n", nil)

	res := callTool(t, srv, "get_short_id", map[string]interface{}{"id": "abcd111111111111"})
	if res.IsError {
		t.Fatalf("get_short_id failed: %s", resultText(res))
	}
	if resultText(res) != "abcd" {
		t.Errorf("short id = %q, want %q", resultText(res), "abcd")
	}
}

func TestGetNoteContract(t *testing.T) {
	srv, _ := testServer(t)

	res := callTool(t, srv, "get_note_contract", map[string]interface{}{})
	if !strings.Contains(resultText(res), "Note Format Contract") {
		t.Errorf("contract response missing heading")
	}
}
