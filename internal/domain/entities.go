package domain

import "strings"

// Stage identifies one of the two independently controllable remote jobs
type Stage string

const (
	StageScrape   Stage = "scrape"
	StageDownload Stage = "download"
)

// Stages lists every stage in display order
var Stages = []Stage{StageScrape, StageDownload}

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Title returns the stage name for panel headers
func (s Stage) Title() string {
	switch s {
	case StageScrape:
		return "Scrape"
	case StageDownload:
		return "Download"
	default:
		return string(s)
	}
}

// TaskStatus is a point-in-time snapshot of the remote service.
// It is rebuilt on every poll and never merged with an earlier value.
type TaskStatus struct {
	Scraping         bool   // Scrape stage running
	ScrapeProgress   string // Empty when the service reports none
	Downloading      bool   // Download stage running
	DownloadProgress string // Empty when the service reports none
}

// Active reports whether the given stage is running
func (s TaskStatus) Active(stage Stage) bool {
	switch stage {
	case StageScrape:
		return s.Scraping
	case StageDownload:
		return s.Downloading
	default:
		return false
	}
}

// Progress returns the stage's progress text (empty if absent)
func (s TaskStatus) Progress(stage Stage) string {
	switch stage {
	case StageScrape:
		return s.ScrapeProgress
	case StageDownload:
		return s.DownloadProgress
	default:
		return ""
	}
}

// AnyActive reports whether at least one stage is running
func (s TaskStatus) AnyActive() bool {
	return s.Scraping || s.Downloading
}

// CommandResult is the synchronous reply to a start/stop command
type CommandResult struct {
	Success bool
	Message string
}

// LogEntry is one accepted log line and its arrival sequence
type LogEntry struct {
	Seq  uint64
	Text string
}

// Marker prefixes log lines produced locally from command outcomes
type Marker string

const (
	MarkSuccess Marker = "✅"
	MarkFailure Marker = "❌"
	MarkWarning Marker = "⚠️"
)

// Line prefixes message with the marker
func (m Marker) Line(message string) string {
	return string(m) + " " + message
}

// IsBlank reports whether a log payload carries no visible text
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
