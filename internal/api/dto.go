package api

import "time"

// SearchResult is a single search hit in the API response.
type SearchResult struct {
	Filepath string    `json:"filepath" example:"2024/06 June/2024-06-15 Standup.md" validate:"required"`
	ID       string    `json:"id" example:"8f3kq9l2m5n7p0r4" validate:"required"`
	Title    string    `json:"title" example:"Standup" validate:"required"`
	Created  time.Time `json:"created" validate:"required"`
	Tags     []string  `json:"tags" example:"work,standup"`
	Content  string    `json:"content" validate:"required"`
}

// SearchResponse wraps search results. Total is the number of matches
// before the limit was applied.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
	Total   int            `json:"total" example:"42" validate:"required"`
}

// NoteResponse is the full note returned by prefix lookup.
type NoteResponse struct {
	Filepath string    `json:"filepath" example:"2024/06 June/2024-06-15 Standup.md" validate:"required"`
	ID       string    `json:"id" example:"8f3kq9l2m5n7p0r4" validate:"required"`
	Title    string    `json:"title" example:"Standup" validate:"required"`
	Created  time.Time `json:"created" validate:"required"`
	Tags     []string  `json:"tags" example:"work,standup"`
	Content  string    `json:"content" validate:"required"`
}

// ResolveResponse maps a full note id to its shortest unique prefix.
type ResolveResponse struct {
	ID      string `json:"id" example:"8f3kq9l2m5n7p0r4" validate:"required"`
	ShortID string `json:"short_id" example:"8f" validate:"required"`
}
