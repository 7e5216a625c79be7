// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/engine"
	"github.com/starford/ansuz/internal/note"
)

// defaultSearchLimit bounds search_notes responses so tool output stays
// digestible for LLM consumers.
const defaultSearchLimit = 25

// maxTags is the ceiling on tags accepted by add_note.
const maxTags = 10

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	eng *engine.Engine
}

// New creates a new MCP server with all Ansuz tools registered.
func New(eng *engine.Engine) *Server {
	s := &Server{eng: eng}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by tags and full-text terms. "+
			"Tags start with '+' (e.g. +work), bare words match note content, "+
			"and AND/OR/NOT with parentheses combine them."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query, e.g. '+work standup' or 'foo AND (bar OR baz)'")),
		mcp.WithString("before", mcp.Description("Only notes created on or before this date (ISO8601 or similar)")),
		mcp.WithString("after", mcp.Description("Only notes created on or after this date (ISO8601 or similar)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 25)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Create a new note with the given Markdown content. "+
			"The note is stored under a date-based directory and indexed immediately. "+
			"Read the contract first via the get_note_contract tool or the "+
			"ansuz://note-format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The content of the note in Markdown format")),
		mcp.WithArray("tags", mcp.Description("Optional tags (up to 10). Tags should start with '+' and can only contain lowercase letters, numbers, and dashes."),
			mcp.Items(map[string]any{"type": "string"})),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read the full content of a note by its id or a unique id prefix."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id or unique prefix (at least 2 characters)")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("get_note_filepath",
		mcp.WithDescription("Return the absolute filesystem path of a note by its id or a unique id prefix."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id or unique prefix (at least 2 characters)")),
	), s.getNoteFilepath)

	s.mcp.AddTool(mcp.NewTool("get_short_id",
		mcp.WithDescription("Return the shortest prefix of a full note id that still uniquely identifies it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Full 16 character note id")),
	), s.getShortID)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the canonical Ansuz note format contract. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://note-format", "Note Format Contract",
			mcp.WithResourceDescription("Canonical Markdown note format that all notes must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var opts engine.SearchOptions
	if raw := req.GetString("before", ""); raw != "" {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'before' date: %v", err)), nil
		}
		opts.Before = &t
	}
	if raw := req.GetString("after", ""); raw != "" {
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid 'after' date: %v", err)), nil
		}
		opts.After = &t
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	opts.Limit = &limit

	results, total, err := s.eng.Search(query, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("{}\n\nNo results found. You may need to use fewer terms or a larger date range."), nil
	}

	idToTitle := make(map[string]string, len(results))
	for _, res := range results {
		idToTitle[res.Note.ID] = res.Note.ExtractTitle()
	}
	out, _ := json.MarshalIndent(idToTitle, "", "  ")

	response := string(out)
	if total > len(results) {
		response += fmt.Sprintf("\n\nNOTE: The query matches %d notes. Be more specific by adding more terms or limit the search using `before` and `after`.", total)
	}
	return mcp.NewToolResultText(response), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rawTags := req.GetStringSlice("tags", nil)
	if len(rawTags) > maxTags {
		return mcp.NewToolResultError(fmt.Sprintf("Too many tags provided. Maximum is %d tags.", maxTags)), nil
	}
	tags := make([]string, 0, len(rawTags))
	for _, raw := range rawTags {
		tag, err := note.ValidateTag(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tags = append(tags, tag)
	}

	if strings.TrimSpace(content) == "" {
		return mcp.NewToolResultError("Note content cannot be empty."), nil
	}

	n := note.New(time.Now(), tags, content)
	rel, err := n.Save(s.eng.Root())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error saving note: %v", err)), nil
	}

	// Index right away instead of waiting for the watcher to pick it up.
	if err := s.eng.IndexNow(rel); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error adding note to database: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Note added successfully: %s", rel)), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	n, _, err := s.eng.NoteByIDPrefix(prefix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if n == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no note found with id prefix %q", prefix)), nil
	}
	return mcp.NewToolResultText(n.Render()), nil
}

func (s *Server) getNoteFilepath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rel, err := s.eng.FilepathByIDPrefix(prefix)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if rel == "" {
		return mcp.NewToolResultError(fmt.Sprintf("no note found with id prefix %q", prefix)), nil
	}
	return mcp.NewToolResultText(filepath.Join(s.eng.Root(), rel)), nil
}

func (s *Server) getShortID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	short, err := s.eng.ShortestUniquePrefix(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(short), nil
}

func (s *Server) getNoteContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://note-format",
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
