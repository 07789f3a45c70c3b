package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSink_DeliversInOrder(t *testing.T) {
	sink := NewChannelSink(4)
	ctx := context.Background()

	require.NoError(t, sink.PushLine(ctx, "a"))
	require.NoError(t, sink.PushLine(ctx, "b"))
	require.NoError(t, sink.PushStatus(ctx, StatusUpdate{Seq: 7}))

	assert.Equal(t, "a", <-sink.Lines())
	assert.Equal(t, "b", <-sink.Lines())
	assert.EqualValues(t, 7, (<-sink.Statuses()).Seq)
}

func TestChannelSink_FullSinkHonorsContext(t *testing.T) {
	sink := NewChannelSink(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sink.PushLine(ctx, "dropped"), context.Canceled)
	assert.ErrorIs(t, sink.PushStatus(ctx, StatusUpdate{}), context.Canceled)
}
