//go:build wireinject
// +build wireinject

package wire

import (
	"context"
	"log/slog"

	"github.com/google/wire"

	"github.com/sevigo/code-reviewer/internal/app"
	"github.com/sevigo/code-reviewer/internal/config"
	"github.com/sevigo/code-reviewer/internal/core"
)

// InitializeApp builds the server process from config.yaml and the environment.
func InitializeApp(ctx context.Context) (*app.App, func(), error) {
	wire.Build(PipelineSet, ServerSet)
	return &app.App{}, nil, nil
}

// InitializePipeline builds a review pipeline for an already loaded configuration.
func InitializePipeline(ctx context.Context, cfg *config.Config, reviewCfg core.ReviewConfig, logger *slog.Logger) (*app.Pipeline, func(), error) {
	wire.Build(PipelineSet)
	return &app.Pipeline{}, nil, nil
}
