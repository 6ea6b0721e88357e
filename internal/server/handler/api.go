package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/review"
)

// MaxReviewBodyBytes caps the size of a POST /api/review body.
const MaxReviewBodyBytes = 2 << 20

// Reviewer reviews a diff submitted over the API.
type Reviewer interface {
	ReviewDiff(ctx context.Context, req review.DiffRequest) (*review.Outcome, error)
}

// CredentialChecker reports whether the model provider has its secret.
type CredentialChecker interface {
	CheckCredentials() error
}

// ReviewRequest is the body of POST /api/review.
type ReviewRequest struct {
	CodeDiff string `json:"code_diff"`
	Language string `json:"language"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Database         string `json:"database"`
}

// APIHandler serves the REST API.
type APIHandler struct {
	reviewer Reviewer
	checker  CredentialChecker
	store    core.ReviewStore
	database string
	logger   *slog.Logger
}

// NewAPIHandler creates an APIHandler. database names the store backend in health responses.
func NewAPIHandler(reviewer Reviewer, checker CredentialChecker, store core.ReviewStore, database string, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		reviewer: reviewer,
		checker:  checker,
		store:    store,
		database: database,
		logger:   logger,
	}
}

// Health reports liveness and whether a review could succeed.
func (h *APIHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:           "healthy",
		APIKeyConfigured: h.checker.CheckCredentials() == nil,
		Database:         h.database,
	})
}

// Review analyzes a submitted diff and returns the review record.
func (h *APIHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	body := http.MaxBytesReader(w, r.Body, MaxReviewBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "request body is empty")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.CodeDiff) == "" {
		writeError(w, http.StatusBadRequest, "code_diff is required")
		return
	}

	h.logger.Info("received review request", "diff_bytes", len(req.CodeDiff), "language", req.Language)

	outcome, err := h.reviewer.ReviewDiff(r.Context(), review.DiffRequest{
		Label:    "api",
		Diff:     req.CodeDiff,
		Language: strings.ToLower(req.Language),
		UseCache: true,
	})
	if err != nil {
		writePipelineError(w, h.logger, err)
		return
	}

	out, err := review.RenderJSON(outcome)
	if err != nil {
		writePipelineError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// Stats returns aggregate statistics. A store failure yields zeroed stats.
func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.AggregateStats(r.Context())
	if err != nil {
		h.logger.Warn("failed to aggregate review stats", "error", err)
		stats = &core.ReviewStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

// Reviews lists recent reviews, newest first. A store failure yields an empty list.
func (h *APIHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reviews, err := h.store.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Warn("failed to list reviews", "error", err)
		reviews = nil
	}
	if reviews == nil {
		reviews = []core.ReviewSummary{}
	}
	writeJSON(w, http.StatusOK, reviews)
}
