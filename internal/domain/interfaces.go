package domain

import "context"

// TaskAPI is the command and status surface of the remote task service.
type TaskAPI interface {
	// Status fetches the current state of both stages
	Status(ctx context.Context) (TaskStatus, error)

	// StartScrape asks the service to scrape the given target URL
	StartScrape(ctx context.Context, target string) (CommandResult, error)

	// StartDownload asks the service to download everything scraped so far
	StartDownload(ctx context.Context) (CommandResult, error)

	// Stop asks the service to stop whichever stages are running
	Stop(ctx context.Context) (CommandResult, error)
}

// LogFeed opens subscriptions to the service's pushed log lines.
type LogFeed interface {
	// Subscribe opens one subscription. Errors returned here mean the
	// subscription never opened; later failures arrive on Subscription.Errors.
	Subscribe(ctx context.Context) (Subscription, error)
}

// Subscription is one open log feed.
//
// Lines delivers payloads in arrival order. Errors receives exactly one value
// when the feed breaks, and only after every line already read has been
// taken from Lines. Close releases the underlying connection and is safe to
// call more than once.
type Subscription interface {
	Lines() <-chan string
	Errors() <-chan error
	Close() error
}

// HistoryRepository remembers scrape targets the service accepted.
type HistoryRepository interface {
	// Record moves target to the front of the history
	Record(target string) error

	// Recent returns targets, most recent first
	Recent() []string
}
