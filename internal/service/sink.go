package service

import "context"

// LineSink receives log payloads in arrival order.
type LineSink interface {
	PushLine(ctx context.Context, line string) error
}

// StatusSink receives status poll outcomes.
type StatusSink interface {
	PushStatus(ctx context.Context, update StatusUpdate) error
}

// LineSinkFunc adapts a plain function to LineSink.
type LineSinkFunc func(ctx context.Context, line string) error

func (f LineSinkFunc) PushLine(ctx context.Context, line string) error {
	return f(ctx, line)
}

// StatusSinkFunc adapts a plain function to StatusSink.
type StatusSinkFunc func(ctx context.Context, update StatusUpdate) error

func (f StatusSinkFunc) PushStatus(ctx context.Context, update StatusUpdate) error {
	return f(ctx, update)
}

// ChannelSink adapts both sinks to channels for Bubble Tea.
// Sends block until the reader takes them or ctx ends, so no line is dropped.
type ChannelSink struct {
	lines    chan string
	statuses chan StatusUpdate
}

// NewChannelSink creates a sink whose channels hold up to buffer items each.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 0 {
		buffer = 0
	}
	return &ChannelSink{
		lines:    make(chan string, buffer),
		statuses: make(chan StatusUpdate, buffer),
	}
}

// PushLine queues a log payload for the reader.
func (s *ChannelSink) PushLine(ctx context.Context, line string) error {
	select {
	case s.lines <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PushStatus queues a poll outcome for the reader.
func (s *ChannelSink) PushStatus(ctx context.Context, update StatusUpdate) error {
	select {
	case s.statuses <- update:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Lines returns the log payload channel.
func (s *ChannelSink) Lines() <-chan string { return s.lines }

// Statuses returns the poll outcome channel.
func (s *ChannelSink) Statuses() <-chan StatusUpdate { return s.statuses }
