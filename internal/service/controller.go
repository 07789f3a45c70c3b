package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmcdole/scrapedeck/internal/domain"
	"github.com/mmcdole/scrapedeck/internal/metrics"
)

// DefaultCommandTimeout bounds a single command round trip.
const DefaultCommandTimeout = 10 * time.Second

// Command names, used in reports and metrics labels.
const (
	CommandScrape   = "scrape"
	CommandDownload = "download"
	CommandStop     = "stop"
)

// Report is what a command produced for the operator. An empty Line means
// nothing goes to the log; an empty Notice means no notification is shown.
type Report struct {
	Command string
	Kind    domain.Marker
	Line    string
	Notice  string
}

// HasLine reports whether the report carries a log line.
func (r Report) HasLine() bool { return r.Line != "" }

// HasNotice reports whether the report needs a notification.
func (r Report) HasNotice() bool { return r.Notice != "" }

// TaskController issues operator commands to the task service, one round
// trip each, and turns the outcome into a Report. It never retries.
type TaskController struct {
	api     domain.TaskAPI
	history domain.HistoryRepository
	timeout time.Duration
	logger  *slog.Logger
}

// NewTaskController creates a controller. history may be nil.
func NewTaskController(api domain.TaskAPI, history domain.HistoryRepository, timeout time.Duration, logger *slog.Logger) *TaskController {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskController{
		api:     api,
		history: history,
		timeout: timeout,
		logger:  logger,
	}
}

// StartScrape validates raw and asks the service to scrape it. Invalid input
// produces a notice only and never reaches the service.
func (c *TaskController) StartScrape(ctx context.Context, raw string) Report {
	target, err := ValidateTarget(raw)
	if err != nil {
		metrics.Commands.WithLabelValues(CommandScrape, "invalid").Inc()
		c.logger.Debug("scrape target rejected", "input", raw, "error", err)
		return Report{
			Command: CommandScrape,
			Kind:    domain.MarkFailure,
			Notice:  ValidationNotice(err),
		}
	}

	return c.run(ctx, CommandScrape, domain.MarkSuccess,
		func(ctx context.Context) (domain.CommandResult, error) {
			return c.api.StartScrape(ctx, target)
		},
		func() { c.remember(target) },
	)
}

// StartDownload asks the service to download what has been scraped.
func (c *TaskController) StartDownload(ctx context.Context) Report {
	return c.run(ctx, CommandDownload, domain.MarkSuccess, c.api.StartDownload, nil)
}

// StopTask asks the service to stop whatever is running.
func (c *TaskController) StopTask(ctx context.Context) Report {
	return c.run(ctx, CommandStop, domain.MarkWarning, c.api.Stop, nil)
}

func (c *TaskController) run(
	ctx context.Context,
	command string,
	successMark domain.Marker,
	call func(context.Context) (domain.CommandResult, error),
	onSuccess func(),
) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report := Report{Command: command}

	result, err := call(ctx)
	switch {
	case err != nil:
		metrics.Commands.WithLabelValues(command, "error").Inc()
		c.logger.Warn("command request failed", "command", command, "error", err)
		report.Kind = domain.MarkFailure
		report.Line = domain.MarkFailure.Line("request failed: " + err.Error())

	case !result.Success:
		metrics.Commands.WithLabelValues(command, "rejected").Inc()
		message := result.Message
		if message == "" {
			message = command + " failed"
		}
		c.logger.Info("command rejected", "command", command, "message", message)
		report.Kind = domain.MarkFailure
		report.Line = domain.MarkFailure.Line(message)
		report.Notice = message

	default:
		metrics.Commands.WithLabelValues(command, "ok").Inc()
		message := result.Message
		if message == "" {
			message = command + " started"
		}
		c.logger.Info("command accepted", "command", command, "message", message)
		report.Kind = successMark
		report.Line = successMark.Line(message)
		if onSuccess != nil {
			onSuccess()
		}
	}

	return report
}

func (c *TaskController) remember(target string) {
	if c.history == nil {
		return
	}
	if err := c.history.Record(target); err != nil {
		c.logger.Warn("failed to record target", "target", target, "error", err)
	}
}
