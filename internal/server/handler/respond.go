// Package handler provides HTTP handlers for the code reviewer API and GitHub webhooks.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sevigo/code-reviewer/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// StatusForError maps a pipeline failure kind to an HTTP status code.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrPreconditionFailed):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTimedOut):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writePipelineError reports err without exposing wrapped provider details for 500s.
func writePipelineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusForError(err)
	logger.Error("review request failed", "status", status, "error", err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "review failed")
		return
	}
	writeError(w, status, err.Error())
}
