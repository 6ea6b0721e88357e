// Package app assembles the review pipeline and the server process around it.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/sevigo/code-reviewer/internal/cache"
	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
	"github.com/sevigo/code-reviewer/internal/llm"
	"github.com/sevigo/code-reviewer/internal/review"
	"github.com/sevigo/code-reviewer/internal/server"
)

// Pipeline is everything a single review run needs.
type Pipeline struct {
	Config       *config.Config
	Review       core.ReviewConfig
	Client       *llm.Client
	Cache        *cache.Cache
	Store        core.ReviewStore
	Orchestrator *review.Orchestrator
}

// NewPipeline groups the pipeline components. responseCache may be nil.
func NewPipeline(cfg *config.Config, reviewCfg core.ReviewConfig, client *llm.Client, responseCache *cache.Cache, store core.ReviewStore, orchestrator *review.Orchestrator) *Pipeline {
	return &Pipeline{
		Config:       cfg,
		Review:       reviewCfg,
		Client:       client,
		Cache:        responseCache,
		Store:        store,
		Orchestrator: orchestrator,
	}
}

// App holds the main application components.
type App struct {
	cfg        *config.Config
	pipeline   *Pipeline
	server     *server.Server
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewApp sets up the server application.
func NewApp(cfg *config.Config, pipeline *Pipeline, srv *server.Server, dispatcher core.JobDispatcher, logger *slog.Logger) *App {
	return &App{
		cfg:        cfg,
		pipeline:   pipeline,
		server:     srv,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.logger.Info("starting code reviewer",
		"server_port", a.cfg.Server.Port,
		"provider", a.cfg.AI.Provider,
		"model", a.pipeline.Client.Model(),
		"max_workers", a.cfg.MaxWorkers,
		"webhooks", a.cfg.GitHub.WebhooksEnabled(),
	)
	if err := a.pipeline.Client.CheckCredentials(); err != nil {
		a.logger.Warn("reviews will fail until the provider credential is set", "error", err)
	}

	if err := a.server.Start(); err != nil {
		a.logger.Error("failed to start HTTP server", "error", err)
		return err
	}
	return nil
}

// Stop shuts down the application cleanly.
func (a *App) Stop(ctx context.Context) error {
	a.logger.Info("shutting down code reviewer")

	// The server goes first so no new jobs are queued while the dispatcher drains.
	serverErr := a.server.Stop(ctx)
	if serverErr != nil {
		a.logger.Error("error during HTTP server shutdown", "error", serverErr)
	}

	a.dispatcher.Stop()

	if serverErr != nil {
		return serverErr
	}
	a.logger.Info("code reviewer stopped")
	return nil
}

// RunCacheSweeper removes expired cache entries every interval until ctx is done.
func (a *App) RunCacheSweeper(ctx context.Context, interval time.Duration) error {
	if a.pipeline.Cache == nil || interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := a.pipeline.Cache.Sweep(0); err != nil {
				a.logger.Warn("cache sweep failed", "error", err)
			}
		}
	}
}
