package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/engine"
	"github.com/starford/ansuz/internal/note"
)

// Handler holds API route handlers.
type Handler struct {
	eng *engine.Engine
}

// NewHandler creates a new Handler.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{eng: eng}
}

// parseDate parses a user-supplied date in any common format.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			before	query		string	false	"Only notes created on or before this date"
//	@Param			after	query		string	false	"Only notes created on or after this date"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	var opts engine.SearchOptions
	var err error
	if opts.Before, err = parseDate(r.URL.Query().Get("before")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'before' date")
		return
	}
	if opts.After, err = parseDate(r.URL.Query().Get("after")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'after' date")
		return
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid 'limit'")
			return
		}
		opts.Limit = &limit
	}

	results, total, err := h.eng.Search(q, opts)
	if err != nil {
		var qerr *apperr.InvalidQueryError
		if errors.As(err, &qerr) {
			writeError(w, http.StatusBadRequest, qerr.Error())
			return
		}
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]SearchResult, 0, len(results))
	for _, res := range results {
		out = append(out, SearchResult{
			Filepath: res.Filepath,
			ID:       res.Note.ID,
			Title:    res.Note.ExtractTitle(),
			Created:  res.Note.Created,
			Tags:     res.Note.Tags,
			Content:  res.Note.Content,
		})
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: out, Total: total})
}

// GetNote handles GET /api/notes/{prefix}.
//
//	@Summary		Look up a note by id prefix
//	@Tags			notes
//	@Produce		json
//	@Param			prefix	path		string	true	"Note id prefix"
//	@Success		200		{object}	NoteResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{prefix} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	if prefix == "" {
		writeError(w, http.StatusBadRequest, "prefix is required")
		return
	}

	n, filepath, err := h.eng.NoteByIDPrefix(prefix)
	if err != nil {
		var amb *apperr.AmbiguousIDError
		if errors.As(err, &amb) {
			writeError(w, http.StatusConflict, amb.Error())
			return
		}
		slog.Error("note lookup failed", slog.String("prefix", prefix), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if n == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, NoteResponse{
		Filepath: filepath,
		ID:       n.ID,
		Title:    n.ExtractTitle(),
		Created:  n.Created,
		Tags:     n.Tags,
		Content:  n.Content,
	})
}

// Resolve handles GET /api/resolve/{id}.
//
//	@Summary		Resolve a full note id to its shortest unique prefix
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Full 16 character note id"
//	@Success		200	{object}	ResolveResponse
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve/{id} [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := note.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	short, err := h.eng.ShortestUniquePrefix(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("id resolution failed", slog.String("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{ID: id, ShortID: short})
}
