package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sevigo/code-reviewer/internal/core"
)

var rateLimitMarkers = []string{"rate limit", "ratelimit", "rate_limit", "rate-limit", "quota", "429", "too many requests"}

// ClassifyError attaches a failure kind to an error returned by a provider.
// Detection is by substring of the lowercased message, which is the only signal
// shared by every SDK. Errors that already carry a kind are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{core.ErrPreconditionFailed, core.ErrRateLimited, core.ErrTimedOut, core.ErrReviewFailed} {
		if errors.Is(err, kind) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, rateLimitMarkers):
		return fmt.Errorf("%w: API rate limit exceeded: %w", core.ErrRateLimited, err)
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: API request timed out: %w", core.ErrTimedOut, err)
	default:
		return fmt.Errorf("%w: API error: %w", core.ErrReviewFailed, err)
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
