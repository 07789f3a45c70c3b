package tui

import (
	"time"

	"github.com/mmcdole/scrapedeck/internal/service"
)

// Message types for the TUI

// LogLinesMsg carries log payloads drained from the stream channel.
// Ok is false once the channel has closed.
type LogLinesMsg struct {
	Lines []string
	Ok    bool
}

// StatusUpdateMsg carries one poll outcome
type StatusUpdateMsg struct {
	Update service.StatusUpdate
	Ok     bool
}

// CommandDoneMsg signals that a command round trip finished
type CommandDoneMsg struct {
	Report service.Report
}

// ClipboardMsg signals the result of copying the log
type ClipboardMsg struct {
	Lines int
	Err   error
}

// TickMsg drives the spinner animation
type TickMsg time.Time
