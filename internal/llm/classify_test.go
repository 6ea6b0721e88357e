package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rate limit", errors.New("Rate limit reached for requests"), core.ErrRateLimited},
		{"quota", errors.New("RESOURCE_EXHAUSTED: quota exceeded"), core.ErrRateLimited},
		{"status 429", errors.New("googleapi: Error 429"), core.ErrRateLimited},
		{"timeout", errors.New("request Timeout awaiting headers"), core.ErrTimedOut},
		{"deadline text", errors.New("Deadline exceeded on upstream"), core.ErrTimedOut},
		{"deadline sentinel", fmt.Errorf("call: %w", context.DeadlineExceeded), core.ErrTimedOut},
		{"rate_limit code", errors.New(`{"type":"rate_limit_error"}`), core.ErrRateLimited},
		{"too many requests", errors.New("Too Many Requests"), core.ErrRateLimited},
		{"generic", errors.New("connection refused"), core.ErrReviewFailed},
		{"generate is not rate", errors.New("gemini: failed to generate content: 500 internal server error"), core.ErrReviewFailed},
		{"separate is not rate", errors.New("separate request failed"), core.ErrReviewFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyError_KeepsExistingKind(t *testing.T) {
	err := fmt.Errorf("%w: GEMINI_API_KEY is not set", core.ErrPreconditionFailed)

	got := ClassifyError(err)
	assert.Same(t, err, got)
	assert.NotErrorIs(t, got, core.ErrRateLimited)
}

func TestClassifyError_Nil(t *testing.T) {
	assert.NoError(t, ClassifyError(nil))
}
