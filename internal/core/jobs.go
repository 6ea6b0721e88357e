package core

import (
	"context"
)

// JobDispatcher queues pull request reviews for background workers.
type JobDispatcher interface {
	// Dispatch queues the event. It fails instead of blocking when the queue is full.
	Dispatch(ctx context.Context, event *GitHubEvent) error
	// Stop drains the queue and waits for running jobs.
	Stop()
}

// Job is the unit of work a dispatcher worker runs for one event.
type Job interface {
	Run(ctx context.Context, event *GitHubEvent) error
}
