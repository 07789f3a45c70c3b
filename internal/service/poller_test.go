package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/scrapedeck/internal/domain"
)

func runPoller(t *testing.T, p *StatusPoller) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func TestStatusPoller_PollsImmediately(t *testing.T) {
	source := &scriptedSource{script: []statusReply{
		{status: domain.TaskStatus{Scraping: true, ScrapeProgress: "3/10"}},
	}}
	sink := &recordingSink{}
	runPoller(t, NewStatusPoller(source, sink, time.Hour, time.Second, newTestLogger()))

	require.Eventually(t, func() bool { return len(sink.Statuses()) == 1 }, time.Second, 5*time.Millisecond)
	update := sink.Statuses()[0]
	assert.NoError(t, update.Err)
	assert.EqualValues(t, 1, update.Seq)
	assert.True(t, update.Status.Scraping)
	assert.Equal(t, "3/10", update.Status.ScrapeProgress)
	assert.False(t, update.IssuedAt.IsZero())
}

func TestStatusPoller_KeepsPollingAfterFailures(t *testing.T) {
	source := &scriptedSource{script: []statusReply{
		{err: domain.ErrServerOffline},
		{err: domain.ErrServerOffline},
		{status: domain.TaskStatus{Downloading: true}},
	}}
	sink := &recordingSink{}
	runPoller(t, NewStatusPoller(source, sink, 10*time.Millisecond, time.Second, newTestLogger()))

	require.Eventually(t, func() bool {
		for _, u := range sink.Statuses() {
			if u.Err == nil && u.Status.Downloading {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	updates := sink.Statuses()
	require.GreaterOrEqual(t, len(updates), 3)
	assert.ErrorIs(t, updates[0].Err, domain.ErrServerOffline)
	assert.ErrorIs(t, updates[1].Err, domain.ErrServerOffline)
}

func TestStatusPoller_SlowQueryDoesNotDelayTicks(t *testing.T) {
	source := &scriptedSource{script: []statusReply{
		{status: domain.TaskStatus{Scraping: true}, delay: 300 * time.Millisecond},
		{status: domain.TaskStatus{}},
	}}
	sink := &recordingSink{}
	runPoller(t, NewStatusPoller(source, sink, 20*time.Millisecond, time.Second, newTestLogger()))

	require.Eventually(t, func() bool { return source.Calls() >= 3 }, 250*time.Millisecond, 5*time.Millisecond)
}

func TestStatusPoller_StaleResponseIsDropped(t *testing.T) {
	source := &scriptedSource{script: []statusReply{
		{status: domain.TaskStatus{Scraping: true, ScrapeProgress: "old"}, delay: 200 * time.Millisecond},
		{status: domain.TaskStatus{Scraping: false}},
	}}
	sink := &recordingSink{}
	runPoller(t, NewStatusPoller(source, sink, 20*time.Millisecond, time.Second, newTestLogger()))

	// Give the slow first query time to come back after later ones.
	time.Sleep(350 * time.Millisecond)

	for _, u := range sink.Statuses() {
		assert.NotEqual(t, "old", u.Status.ScrapeProgress, "stale response seq %d was published", u.Seq)
	}
}

func TestStatusPoller_PublishOrdering(t *testing.T) {
	tests := []struct {
		name      string
		updates   []StatusUpdate
		published []uint64
	}{
		{
			name: "in order",
			updates: []StatusUpdate{
				{Seq: 1}, {Seq: 2}, {Seq: 3},
			},
			published: []uint64{1, 2, 3},
		},
		{
			name: "older success after newer success",
			updates: []StatusUpdate{
				{Seq: 2}, {Seq: 1},
			},
			published: []uint64{2},
		},
		{
			name: "older failure after newer success",
			updates: []StatusUpdate{
				{Seq: 2}, {Seq: 1, Err: errBoom},
			},
			published: []uint64{2},
		},
		{
			name: "older success after newer failure",
			updates: []StatusUpdate{
				{Seq: 2, Err: errBoom}, {Seq: 1},
			},
			published: []uint64{2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			p := NewStatusPoller(&scriptedSource{}, sink, time.Hour, time.Second, newTestLogger())

			for _, u := range tt.updates {
				p.publish(context.Background(), u)
			}

			var got []uint64
			for _, u := range sink.Statuses() {
				got = append(got, u.Seq)
			}
			assert.Equal(t, tt.published, got)
		})
	}
}

func TestStatusPoller_ShutdownCancelsInFlightQuery(t *testing.T) {
	source := &scriptedSource{script: []statusReply{
		{delay: time.Hour},
	}}
	sink := &recordingSink{}
	p := NewStatusPoller(source, sink, time.Hour, time.Hour, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return source.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, sink.Statuses(), "cancelled query must not be published")
}
