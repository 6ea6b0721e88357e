package jobs

import (
	"errors"
	"fmt"

	"github.com/sevigo/code-reviewer/internal/core"
)

// ValidateEvent ensures the event carries everything a pull request review needs.
func ValidateEvent(event *core.GitHubEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return errors.New("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return errors.New("repository name cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
