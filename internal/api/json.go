package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errResponse is the error payload every failing endpoint returns.
type errResponse struct {
	Error string `json:"error" validate:"required"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", slog.String("error", err.Error()))
	}
}

// writeError emits the standard error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResponse{Error: msg})
}
