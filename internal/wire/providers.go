// Package wire builds the application object graph.
package wire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/wire"

	"github.com/sevigo/code-reviewer/internal/app"
	"github.com/sevigo/code-reviewer/internal/cache"
	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/db"
	"github.com/sevigo/code-reviewer/internal/github"
	"github.com/sevigo/code-reviewer/internal/gitutil"
	"github.com/sevigo/code-reviewer/internal/jobs"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/logger"
	"github.com/sevigo/code-reviewer/internal/review"
	"github.com/sevigo/code-reviewer/internal/server"
	"github.com/sevigo/code-reviewer/internal/server/handler"
	"github.com/sevigo/code-reviewer/internal/storage"
)

// PipelineSet builds a review pipeline from a loaded config.
var PipelineSet = wire.NewSet(
	app.NewPipeline,
	llm.NewPromptManager,
	gitutil.NewClient,
	ProvideProvider,
	ProvideCache,
	ProvideStore,
	ProvideClient,
	ProvideOrchestrator,
	wire.Bind(new(core.DiffSource), new(*gitutil.Client)),
)

// ServerSet adds the HTTP server and the pull request worker pool.
var ServerSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	ProvideLogger,
	ProvideReviewConfig,
	ProvideClientFactory,
	jobs.NewReviewJob,
	ProvideDispatcher,
	ProvideAPIHandler,
	ProvideWebhookHandler,
	ProvideRouter,
	ProvideServer,
	wire.Bind(new(jobs.Reviewer), new(*review.Orchestrator)),
	wire.Bind(new(core.Job), new(*jobs.ReviewJob)),
)

// ProvideLogger builds the process logger from the logging section.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}

// ProvideReviewConfig reads .codereview.yaml from the working directory.
// A missing file yields the defaults.
func ProvideReviewConfig(log *slog.Logger) (core.ReviewConfig, error) {
	return LoadReviewConfig(".", log)
}

// LoadReviewConfig reads .codereview.yaml from repoPath, falling back to the defaults when it is absent.
func LoadReviewConfig(repoPath string, log *slog.Logger) (core.ReviewConfig, error) {
	reviewCfg, err := config.LoadReviewConfig(repoPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			log.Debug("no review config found, using defaults", "path", repoPath)
			return reviewCfg, nil
		}
		return core.ReviewConfig{}, err
	}
	if err := review.ValidateRules(reviewCfg.CustomRules()); err != nil {
		return core.ReviewConfig{}, fmt.Errorf("invalid custom rules: %w", err)
	}
	return reviewCfg, nil
}

// ProvideProvider creates the model backend for the configured provider.
func ProvideProvider(ctx context.Context, cfg *config.Config, reviewCfg core.ReviewConfig, log *slog.Logger) (llm.Provider, error) {
	return llm.NewProvider(ctx, cfg.AI, llm.ProviderOptions{
		Model:       cfg.AI.ResolveModel(reviewCfg),
		Temperature: reviewCfg.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, log)
}

// ProvideCache opens the response cache. It returns nil when caching is disabled
// or the directory cannot be used, which makes every run a cache miss.
func ProvideCache(cfg *config.Config, log *slog.Logger) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, log)
	if err != nil {
		log.Warn("response cache disabled", "dir", cfg.Cache.Dir, "error", err)
		return nil
	}
	return c
}

// ProvideStore connects to Postgres when a database host is configured. Without
// one, or when the database is unreachable, reviews are kept in memory.
func ProvideStore(cfg *config.Config, log *slog.Logger) (core.ReviewStore, func()) {
	if !cfg.Database.Enabled() {
		log.Debug("no database configured, keeping reviews in memory")
		return storage.NewMemoryStore(), func() {}
	}
	conn, cleanup, err := db.Open(&cfg.Database, log)
	if err != nil {
		log.Warn("database unavailable, keeping reviews in memory", "host", cfg.Database.Host, "error", err)
		return storage.NewMemoryStore(), func() {}
	}
	return storage.NewStore(conn.DB), cleanup
}

// ProvideClient composes the review client.
func ProvideClient(cfg *config.Config, reviewCfg core.ReviewConfig, provider llm.Provider, prompts *llm.PromptManager, responseCache *cache.Cache, log *slog.Logger) *llm.Client {
	return llm.NewClient(provider, prompts, responseCache, llm.ClientOptions{
		Model:          cfg.AI.ResolveModel(reviewCfg),
		Provider:       llm.ModelProvider(cfg.AI.Provider),
		ResponseFormat: core.ResponseFormat(cfg.AI.ResponseFormat),
		Timeout:        cfg.AI.Timeout,
	}, log)
}

// ProvideOrchestrator wires the review pipeline.
func ProvideOrchestrator(source core.DiffSource, client *llm.Client, store core.ReviewStore, reviewCfg core.ReviewConfig, log *slog.Logger) *review.Orchestrator {
	return review.NewOrchestrator(source, client, store, reviewCfg, log)
}

// ProvideClientFactory creates GitHub App installation clients.
func ProvideClientFactory(cfg *config.Config, log *slog.Logger) github.ClientFactory {
	return github.NewInstallationClientFactory(cfg.GitHub, log)
}

// ProvideDispatcher starts the pull request worker pool.
func ProvideDispatcher(job core.Job, cfg *config.Config, log *slog.Logger) core.JobDispatcher {
	return jobs.NewDispatcher(job, cfg.MaxWorkers, jobs.DefaultQueueSize, log)
}

// ProvideAPIHandler builds the REST handlers.
func ProvideAPIHandler(pipeline *app.Pipeline, log *slog.Logger) *handler.APIHandler {
	backend := "memory"
	if _, ok := pipeline.Store.(*storage.MemoryStore); !ok {
		backend = "postgres"
	}
	return handler.NewAPIHandler(pipeline.Orchestrator, pipeline.Client, pipeline.Store, backend, log)
}

// ProvideWebhookHandler returns nil when the GitHub App is not configured.
func ProvideWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, log *slog.Logger) *handler.WebhookHandler {
	if !cfg.GitHub.WebhooksEnabled() {
		log.Info("GitHub webhooks disabled: app_id or webhook_secret is not set")
		return nil
	}
	return handler.NewWebhookHandler(cfg.GitHub.WebhookSecret, dispatcher, log)
}

// ProvideRouter builds the HTTP routes.
func ProvideRouter(cfg *config.Config, api *handler.APIHandler, webhook *handler.WebhookHandler, log *slog.Logger) *chi.Mux {
	return server.NewRouter(cfg.Server, api, webhook, log)
}

// ProvideServer creates the HTTP server.
func ProvideServer(cfg *config.Config, router *chi.Mux, log *slog.Logger) *server.Server {
	return server.NewServer(cfg.Server.Port, router, log)
}
