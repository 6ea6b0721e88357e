// Package llm turns a diff into review text through a cached, retried model call.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sevigo/code-reviewer/internal/cache"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/logger"
	"github.com/sevigo/code-reviewer/internal/retry"
)

// DefaultRetryPolicy retries every transient failure kind with the same backoff.
var DefaultRetryPolicy = retry.Policy{
	MaxAttempts: 3,
	BaseDelay:   2 * time.Second,
	MaxDelay:    60 * time.Second,
	RetryOn:     []error{core.ErrRateLimited, core.ErrTimedOut, core.ErrReviewFailed},
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Model          string
	Provider       ModelProvider
	ResponseFormat core.ResponseFormat
	// Timeout bounds a single attempt. Zero leaves the provider's own timeout in charge.
	Timeout time.Duration
}

// Request is one analysis call.
type Request struct {
	Diff     string
	Language string
	UseCache bool
}

// Analysis is the model's answer for a Request.
type Analysis struct {
	Text   string
	Model  string
	Cached bool
}

// Client composes the response cache, the retrying invoker and a Provider.
type Client struct {
	provider Provider
	prompts  *PromptManager
	cache    *cache.Cache
	invoker  *retry.Invoker
	opts     ClientOptions
	logger   *slog.Logger
}

// NewClient creates a Client. responseCache may be nil, which disables caching.
func NewClient(provider Provider, prompts *PromptManager, responseCache *cache.Cache, opts ClientOptions, log *slog.Logger, retryOpts ...retry.Option) *Client {
	log = logger.OrDefault(log)
	if opts.Model == "" {
		opts.Model = core.DefaultModelName
	}
	if opts.Provider == "" {
		opts.Provider = DefaultProvider
	}
	if opts.ResponseFormat == "" {
		opts.ResponseFormat = core.ResponseMarkdown
	}
	return &Client{
		provider: provider,
		prompts:  prompts,
		cache:    responseCache,
		invoker:  retry.NewInvoker(DefaultRetryPolicy, log, retryOpts...),
		opts:     opts,
		logger:   log,
	}
}

func (c *Client) Model() string {
	return c.opts.Model
}

func (c *Client) ResponseFormat() core.ResponseFormat {
	return c.opts.ResponseFormat
}

// CheckCredentials reports a missing provider secret as ErrPreconditionFailed.
func (c *Client) CheckCredentials() error {
	if cc, ok := c.provider.(CredentialChecker); ok {
		return cc.CheckCredentials()
	}
	return nil
}

// CacheKey is the fingerprint under which the answer for req is stored. The
// response format and language hint are folded into the model component so
// that differently shaped answers never share an entry.
func (c *Client) CacheKey(req Request) string {
	model := c.opts.Model
	if c.opts.ResponseFormat == core.ResponseJSON {
		model += ":json"
	}
	if req.Language != "" {
		model += ":" + req.Language
	}
	return cache.Fingerprint(req.Diff, model)
}

// Analyze returns the review text for req.Diff. A cache hit skips the network
// entirely. Provider failures are classified and retried; the last one is
// returned once attempts run out.
func (c *Client) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	var key string
	if req.UseCache && c.cache != nil {
		key = c.CacheKey(req)
		if entry, ok := c.cache.Get(key); ok {
			c.logger.InfoContext(ctx, "using cached review", "cache_key", key, "model", entry.ModelName)
			return &Analysis{Text: entry.ReviewText, Model: c.opts.Model, Cached: true}, nil
		}
		c.logger.DebugContext(ctx, "review cache miss", "cache_key", key)
	}

	prompt, err := c.prompts.Render(PromptKeyFor(c.opts.ResponseFormat), c.opts.Provider, ReviewPromptData{
		Diff:     req.Diff,
		Language: req.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build review prompt: %w", err)
	}

	var text string
	err = c.invoker.Do(ctx, func(ctx context.Context) error {
		resp, genErr := c.generateWithTimeout(ctx, prompt)
		if genErr != nil {
			return ClassifyError(genErr)
		}
		text = resp
		return nil
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "review failed", "model", c.opts.Model, "error", err)
		return nil, err
	}

	if key != "" {
		if err := c.cache.Set(key, cache.Entry{ReviewText: text, ModelName: c.opts.Model}); err != nil {
			c.logger.WarnContext(ctx, "failed to store review in cache", "cache_key", key, "error", err)
		}
	}
	return &Analysis{Text: text, Model: c.opts.Model}, nil
}

// generateWithTimeout wraps generation with a hard timeout when one is configured.
func (c *Client) generateWithTimeout(ctx context.Context, prompt string) (string, error) {
	if c.opts.Timeout <= 0 {
		return c.provider.Generate(ctx, prompt)
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	type result struct {
		resp string
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := c.provider.Generate(ctx, prompt)
		resultCh <- result{resp, err}
	}()

	select {
	case res := <-resultCh:
		return res.resp, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
