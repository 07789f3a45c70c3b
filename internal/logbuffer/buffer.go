// Package logbuffer holds the bounded, ordered view model for streamed log lines.
package logbuffer

import (
	"github.com/mmcdole/scrapedeck/internal/domain"
)

// MaxEntries is the retention bound; the oldest entry is evicted beyond it.
const MaxEntries = 500

// State distinguishes the two empty states from a buffer holding lines
type State int

const (
	StateEmpty   State = iota // never received a line
	StateCleared              // operator cleared the log
	StateFilled               // holds at least one line
)

// Placeholder texts for the empty states
const (
	PlaceholderWaiting = "Waiting for logs..."
	PlaceholderCleared = "Log cleared"
)

// Buffer is an append-only FIFO of accepted log lines.
// It has a single owner and is not safe for concurrent use.
type Buffer struct {
	entries []domain.LogEntry
	cleared bool
	seq     uint64 // accepted lines since creation
}

// New creates an empty buffer
func New() *Buffer {
	return &Buffer{entries: make([]domain.LogEntry, 0, 64)}
}

// Append adds line unless it is blank. Returns whether the line was accepted.
func (b *Buffer) Append(line string) bool {
	if domain.IsBlank(line) {
		return false
	}

	b.seq++
	b.cleared = false
	b.entries = append(b.entries, domain.LogEntry{Seq: b.seq, Text: line})

	if len(b.entries) > MaxEntries {
		// Drop exactly one; copy down so the backing array does not grow forever
		copy(b.entries, b.entries[1:])
		b.entries[len(b.entries)-1] = domain.LogEntry{}
		b.entries = b.entries[:len(b.entries)-1]
	}
	return true
}

// Clear drops every entry and marks the buffer as cleared
func (b *Buffer) Clear() {
	b.entries = b.entries[:0]
	b.cleared = true
}

// State reports which of the empty/cleared/filled states the buffer is in
func (b *Buffer) State() State {
	switch {
	case len(b.entries) > 0:
		return StateFilled
	case b.cleared:
		return StateCleared
	default:
		return StateEmpty
	}
}

// Placeholder returns the text to show instead of entries, or "" when filled
func (b *Buffer) Placeholder() string {
	switch b.State() {
	case StateCleared:
		return PlaceholderCleared
	case StateEmpty:
		return PlaceholderWaiting
	default:
		return ""
	}
}

// Len returns the number of retained entries
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Total returns how many lines were accepted since creation, evicted or not
func (b *Buffer) Total() uint64 {
	return b.seq
}

// Entries returns a copy of the retained entries, oldest first
func (b *Buffer) Entries() []domain.LogEntry {
	out := make([]domain.LogEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Lines returns the retained entry texts, oldest first
func (b *Buffer) Lines() []string {
	lines := make([]string, len(b.entries))
	for i, e := range b.entries {
		lines[i] = e.Text
	}
	return lines
}
