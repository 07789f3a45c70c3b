package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/scrapedeck/internal/service"
)

// maxLinesPerMsg caps how many queued lines one LogLinesMsg drains
const maxLinesPerMsg = 64

// tickInterval is the spinner frame period
const tickInterval = 100 * time.Millisecond

// Command factories for async operations

// ListenLogCmd waits for the next log payloads. Lines already queued behind
// the first are drained into the same message.
func ListenLogCmd(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		line, ok := <-ch
		if !ok {
			return LogLinesMsg{Ok: false}
		}

		lines := make([]string, 0, maxLinesPerMsg)
		lines = append(lines, line)
		for len(lines) < maxLinesPerMsg {
			select {
			case next, ok := <-ch:
				if !ok {
					return LogLinesMsg{Lines: lines, Ok: true}
				}
				lines = append(lines, next)
			default:
				return LogLinesMsg{Lines: lines, Ok: true}
			}
		}
		return LogLinesMsg{Lines: lines, Ok: true}
	}
}

// ListenStatusCmd waits for the next poll outcome
func ListenStatusCmd(ch <-chan service.StatusUpdate) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-ch
		return StatusUpdateMsg{Update: update, Ok: ok}
	}
}

// StartScrapeCmd issues a scrape for raw
func StartScrapeCmd(ctx context.Context, ctrl Controller, raw string) tea.Cmd {
	return func() tea.Msg {
		return CommandDoneMsg{Report: ctrl.StartScrape(ctx, raw)}
	}
}

// StartDownloadCmd issues a download
func StartDownloadCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return CommandDoneMsg{Report: ctrl.StartDownload(ctx)}
	}
}

// StopTaskCmd issues a stop
func StopTaskCmd(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return CommandDoneMsg{Report: ctrl.StopTask(ctx)}
	}
}

// CopyLinesCmd copies lines to the system clipboard
func CopyLinesCmd(lines []string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(strings.Join(lines, "\n"))
		return ClipboardMsg{Lines: len(lines), Err: err}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
