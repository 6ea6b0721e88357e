package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/code-reviewer/internal/config"
)

// ClientFactory returns a client acting as the given App installation.
type ClientFactory func(ctx context.Context, installationID int64) (Client, error)

// NewInstallationClientFactory builds installation clients from the App credentials in cfg.
func NewInstallationClientFactory(cfg config.GitHubConfig, logger *slog.Logger) ClientFactory {
	return func(ctx context.Context, installationID int64) (Client, error) {
		return CreateInstallationClient(ctx, cfg, installationID, logger)
	}
}

// CreateInstallationClient creates a GitHub client that is authenticated as a specific application installation.
func CreateInstallationClient(ctx context.Context, cfg config.GitHubConfig, installationID int64, logger *slog.Logger) (Client, error) {
	logger.Info("creating GitHub installation client", "installation_id", installationID)

	privateKey, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.PrivateKeyPath, err)
	}

	// The apps transport authenticates as the App itself, which is only allowed to mint installation tokens.
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, cfg.AppID, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}
	logger.Info("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	return NewGitHubClient(github.NewClient(tc), logger), nil
}
