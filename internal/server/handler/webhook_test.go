package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/logger"
)

const testSecret = "s3cret"

type recordingDispatcher struct {
	events []*core.GitHubEvent
	err    error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event *core.GitHubEvent) error {
	if d.err != nil {
		return d.err
	}
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Stop() {}

func signedRequest(t *testing.T, eventType, body, secret string) *http.Request {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := mac.Write([]byte(body))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

const pullRequestPayload = `{
  "action": "opened",
  "number": 8,
  "pull_request": {"number": 8, "title": "Add cache", "head": {"sha": "abc"}},
  "repository": {"name": "api", "full_name": "octo/api", "language": "Go", "owner": {"login": "octo"}},
  "installation": {"id": 42}
}`

func TestWebhookHandler_PullRequestDispatched(t *testing.T) {
	d := &recordingDispatcher{}
	h := NewWebhookHandler(testSecret, d, logger.Discard())

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", pullRequestPayload, testSecret))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, d.events, 1)
	assert.Equal(t, "octo/api", d.events[0].RepoFullName)
	assert.Equal(t, 8, d.events[0].PRNumber)
	assert.Equal(t, int64(42), d.events[0].InstallationID)
}

func TestWebhookHandler_BadSignature(t *testing.T) {
	d := &recordingDispatcher{}
	h := NewWebhookHandler(testSecret, d, logger.Discard())

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", pullRequestPayload, "wrong"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, d.events)
}

func TestWebhookHandler_IgnoredComment(t *testing.T) {
	d := &recordingDispatcher{}
	h := NewWebhookHandler(testSecret, d, logger.Discard())
	body := `{
  "action": "created",
  "issue": {"number": 8, "pull_request": {"url": "https://api.github.com/repos/octo/api/pulls/8"}},
  "comment": {"body": "nice"},
  "repository": {"name": "api", "full_name": "octo/api", "owner": {"login": "octo"}},
  "installation": {"id": 42}
}`

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "issue_comment", body, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event ignored", rec.Body.String())
	assert.Empty(t, d.events)
}

func TestWebhookHandler_QueueFull(t *testing.T) {
	d := &recordingDispatcher{err: assert.AnError}
	h := NewWebhookHandler(testSecret, d, logger.Discard())

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "pull_request", pullRequestPayload, testSecret))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWebhookHandler_Installation(t *testing.T) {
	h := NewWebhookHandler(testSecret, &recordingDispatcher{}, logger.Discard())
	body := `{"action": "created", "installation": {"id": 42, "account": {"login": "octo"}}}`

	rec := httptest.NewRecorder()
	h.Handle(rec, signedRequest(t, "installation", body, testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Installation event acknowledged", rec.Body.String())
}
