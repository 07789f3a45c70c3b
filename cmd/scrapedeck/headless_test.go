package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/scrapedeck/internal/domain"
	"github.com/mmcdole/scrapedeck/internal/service"
)

func TestHeadlessPrintsAcceptedLines(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessPrinter(&out)

	p.line("fetching page 1")
	p.line("")
	p.line("  ")
	p.line("saved 1.jpg")

	assert.Equal(t, "fetching page 1\nsaved 1.jpg\n", out.String())
}

func TestHeadlessPrintsStageTransitions(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessPrinter(&out)

	p.status(service.StatusUpdate{Seq: 1, Status: domain.TaskStatus{}})
	p.status(service.StatusUpdate{Seq: 2, Status: domain.TaskStatus{Scraping: true}})
	p.status(service.StatusUpdate{Seq: 3, Status: domain.TaskStatus{Scraping: true}})
	p.status(service.StatusUpdate{Seq: 4, Status: domain.TaskStatus{Scraping: true, ScrapeProgress: "2/5"}})
	p.status(service.StatusUpdate{Seq: 5, Status: domain.TaskStatus{}})

	assert.Equal(t, "[scrape] running\n[scrape] running: 2/5\n[scrape] ready\n", out.String())
}

func TestHeadlessStatusFailuresAndStaleUpdates(t *testing.T) {
	var out bytes.Buffer
	p := newHeadlessPrinter(&out)

	p.status(service.StatusUpdate{Seq: 2, Status: domain.TaskStatus{Downloading: true}})
	p.status(service.StatusUpdate{Seq: 1, Status: domain.TaskStatus{}})
	p.status(service.StatusUpdate{Seq: 3, Err: errors.New("boom")})
	p.status(service.StatusUpdate{Seq: 4, Err: errors.New("boom")})
	p.status(service.StatusUpdate{Seq: 5, Status: domain.TaskStatus{Downloading: true}})

	assert.Equal(t,
		"[download] running\n[status] unavailable: boom\n[status] available\n",
		out.String())
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	lines := make(chan string, 1)
	statuses := make(chan service.StatusUpdate)
	lines <- "hello"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runHeadless(ctx, &out, lines, statuses) }()

	require.Eventually(t, func() bool { return len(lines) == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runHeadless did not return after cancel")
	}
	assert.Equal(t, "hello\n", out.String())
}

func TestRunHeadlessReturnsWhenChannelsClose(t *testing.T) {
	var out bytes.Buffer
	lines := make(chan string)
	statuses := make(chan service.StatusUpdate)
	close(lines)
	close(statuses)

	require.NoError(t, runHeadless(context.Background(), &out, lines, statuses))
}
