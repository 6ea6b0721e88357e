package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/sevigo/code-reviewer/internal/core"
)

// WebhookHandler processes incoming webhooks from GitHub.
type WebhookHandler struct {
	secret     []byte
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with the given secret and dispatcher.
func NewWebhookHandler(secret string, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		secret:     []byte(secret),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle processes GitHub webhook requests.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, h.secret)
	if err != nil {
		h.logger.Warn("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := github.WebHookType(r)
	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "type", eventType, "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PingEvent:
		_, _ = fmt.Fprint(w, "pong")
	case *github.PullRequestEvent:
		reviewEvent, err := core.EventFromPullRequest(e)
		h.dispatch(r.Context(), w, reviewEvent, err)
	case *github.IssueCommentEvent:
		reviewEvent, err := core.EventFromIssueComment(e)
		h.dispatch(r.Context(), w, reviewEvent, err)
	case *github.InstallationEvent:
		h.logger.Info("installation event",
			"action", e.GetAction(),
			"installation_id", e.GetInstallation().GetID(),
			"account", e.GetInstallation().GetAccount().GetLogin(),
			"repositories", len(e.Repositories),
		)
		_, _ = fmt.Fprint(w, "Installation event acknowledged")
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", eventType)
		_, _ = fmt.Fprint(w, "Event type not handled")
	}
}

func (h *WebhookHandler) dispatch(ctx context.Context, w http.ResponseWriter, event *core.GitHubEvent, err error) {
	if err != nil {
		if errors.Is(err, core.ErrEventIgnored) {
			h.logger.Debug("ignoring webhook event", "reason", err.Error())
			_, _ = fmt.Fprint(w, "Event ignored")
			return
		}
		h.logger.Warn("malformed webhook event", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.dispatcher.Dispatch(ctx, event); err != nil {
		h.logger.Error("failed to dispatch review job", "error", err, "repo", event.RepoFullName)
		http.Error(w, "Failed to start review job", http.StatusServiceUnavailable)
		return
	}

	h.logger.Info("review job dispatched", "repo", event.RepoFullName, "pr", event.PRNumber, "trigger", event.Trigger)
	w.WriteHeader(http.StatusAccepted)
	_, _ = fmt.Fprint(w, "Review job accepted")
}
