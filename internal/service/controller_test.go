package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/scrapedeck/internal/domain"
)

func newTestController(api *fakeAPI, history domain.HistoryRepository) *TaskController {
	return NewTaskController(api, history, 0, newTestLogger())
}

func TestStartScrape_ValidationNeverCallsService(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		notice string
	}{
		{"empty", "", NoticeEmptyTarget},
		{"whitespace", "   \t ", NoticeEmptyTarget},
		{"no scheme", "example.com", NoticeInvalidTarget},
		{"ftp", "ftp://example.com", NoticeInvalidTarget},
		{"leading text", "see http://example.com", NoticeInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			history := &fakeHistory{}
			report := newTestController(api, history).StartScrape(context.Background(), tt.input)

			assert.Equal(t, tt.notice, report.Notice)
			assert.False(t, report.HasLine(), "validation failure must not log")
			assert.Equal(t, 0, api.totalCalls())
			assert.Empty(t, history.Recent())
		})
	}
}

func TestStartScrape_SendsTrimmedTarget(t *testing.T) {
	api := &fakeAPI{result: domain.CommandResult{Success: true, Message: "Scraping started"}}
	history := &fakeHistory{}

	report := newTestController(api, history).StartScrape(context.Background(), "  https://example.com/gallery  ")

	require.Equal(t, 1, api.scrapeCalls)
	assert.Equal(t, []string{"https://example.com/gallery"}, api.targets)
	assert.Equal(t, domain.MarkSuccess, report.Kind)
	assert.Equal(t, "✅ Scraping started", report.Line)
	assert.False(t, report.HasNotice())
	assert.Equal(t, []string{"https://example.com/gallery"}, history.Recent())
}

func TestCommands_RemoteFailure(t *testing.T) {
	for _, command := range []string{CommandScrape, CommandDownload, CommandStop} {
		t.Run(command, func(t *testing.T) {
			api := &fakeAPI{result: domain.CommandResult{Success: false, Message: "Already running"}}
			history := &fakeHistory{}
			c := newTestController(api, history)

			report := issue(c, command)

			assert.Equal(t, domain.MarkFailure, report.Kind)
			assert.Equal(t, "❌ Already running", report.Line)
			assert.Equal(t, "Already running", report.Notice)
			assert.Equal(t, 1, api.totalCalls(), "no retry")
			assert.Empty(t, history.Recent())
		})
	}
}

func TestCommands_TransportFailure(t *testing.T) {
	for _, command := range []string{CommandScrape, CommandDownload, CommandStop} {
		t.Run(command, func(t *testing.T) {
			api := &fakeAPI{err: fmt.Errorf("dial tcp: %w", domain.ErrServerOffline)}
			c := newTestController(api, &fakeHistory{})

			report := issue(c, command)

			assert.Equal(t, domain.MarkFailure, report.Kind)
			assert.Contains(t, report.Line, "❌ request failed:")
			assert.Contains(t, report.Line, domain.ErrServerOffline.Error())
			assert.False(t, report.HasNotice(), "transport failures only log")
			assert.Equal(t, 1, api.totalCalls(), "no retry")
		})
	}
}

func TestCommands_SuccessMarkers(t *testing.T) {
	tests := []struct {
		command string
		message string
		line    string
	}{
		{CommandDownload, "Download started", "✅ Download started"},
		{CommandStop, "Stopped all tasks", "⚠️ Stopped all tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			api := &fakeAPI{result: domain.CommandResult{Success: true, Message: tt.message}}
			report := issue(newTestController(api, nil), tt.command)

			assert.Equal(t, tt.line, report.Line)
			assert.False(t, report.HasNotice())
			assert.Equal(t, tt.command, report.Command)
		})
	}
}

func TestCommands_EmptyMessageFallback(t *testing.T) {
	api := &fakeAPI{result: domain.CommandResult{Success: false}}
	report := newTestController(api, nil).StartDownload(context.Background())

	assert.Equal(t, "❌ download failed", report.Line)
	assert.Equal(t, "download failed", report.Notice)
}

func TestStartScrape_HistoryFailureKeepsReport(t *testing.T) {
	api := &fakeAPI{result: domain.CommandResult{Success: true, Message: "ok"}}
	history := &fakeHistory{err: errBoom}

	report := newTestController(api, history).StartScrape(context.Background(), "http://example.com")

	assert.Equal(t, "✅ ok", report.Line)
}

func issue(c *TaskController, command string) Report {
	ctx := context.Background()
	switch command {
	case CommandScrape:
		return c.StartScrape(ctx, "http://example.com")
	case CommandDownload:
		return c.StartDownload(ctx)
	default:
		return c.StopTask(ctx)
	}
}
