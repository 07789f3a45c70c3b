package metrics

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServeDisabled(t *testing.T) {
	require.NoError(t, Serve(context.Background(), "", newTestLogger()))
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", newTestLogger()) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServeBadAddress(t *testing.T) {
	err := Serve(context.Background(), "127.0.0.1:-1", newTestLogger())
	assert.Error(t, err)
}

func TestCommandsCounter(t *testing.T) {
	before := testutil.ToFloat64(Commands.WithLabelValues("scrape", "ok"))
	Commands.WithLabelValues("scrape", "ok").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Commands.WithLabelValues("scrape", "ok")))
}
