package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/scrapedeck/internal/domain"
	"github.com/mmcdole/scrapedeck/internal/metrics"
)

// DefaultReconnectDelay is the fixed wait between a feed disruption and the
// next subscription attempt.
const DefaultReconnectDelay = 5 * time.Second

// ConnState is the log stream's connection state.
type ConnState int

const (
	ConnIdle ConnState = iota
	ConnConnected
	ConnRetrying
)

func (s ConnState) String() string {
	switch s {
	case ConnConnected:
		return "connected"
	case ConnRetrying:
		return "reconnecting"
	default:
		return "idle"
	}
}

var errReconnectRequested = errors.New("reconnect requested")

// LogStream keeps exactly one log feed subscription open and forwards its
// payloads to a sink. A disruption of any kind is followed by a fixed delay
// and a fresh subscription, with no attempt cap.
type LogStream struct {
	feed   domain.LogFeed
	sink   LineSink
	delay  time.Duration
	logger *slog.Logger

	reconnect chan struct{}

	mu     sync.Mutex
	active domain.Subscription
	state  ConnState
}

// NewLogStream creates a stream. A non-positive delay uses DefaultReconnectDelay.
func NewLogStream(feed domain.LogFeed, sink LineSink, delay time.Duration, logger *slog.Logger) *LogStream {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LogStream{
		feed:      feed,
		sink:      sink,
		delay:     delay,
		logger:    logger,
		reconnect: make(chan struct{}, 1),
	}
}

// Run subscribes and dispatches until ctx ends. It always returns nil once
// ctx is done; disruptions are retried, never returned.
func (s *LogStream) Run(ctx context.Context) error {
	defer func() {
		s.closeActive()
		s.setState(ConnIdle)
	}()

	for {
		err := s.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, errReconnectRequested) {
			s.logger.Info("log stream reconnect requested")
			continue
		}

		s.setState(ConnRetrying)
		metrics.StreamDisconnects.Inc()
		s.logger.Warn("log stream disrupted, retrying", "error", err, "delay", s.delay)

		if !s.wait(ctx) {
			return nil
		}
	}
}

// Reconnect drops the current subscription and opens a new one without
// waiting out the reconnect delay.
func (s *LogStream) Reconnect() {
	select {
	case s.reconnect <- struct{}{}:
	default:
	}
}

// State reports the current connection state.
func (s *LogStream) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// session opens one subscription and dispatches from it until it breaks.
func (s *LogStream) session(ctx context.Context) error {
	sub, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer s.closeActive()
	return s.dispatch(ctx, sub)
}

// connect closes any open subscription before opening the next one.
func (s *LogStream) connect(ctx context.Context) (domain.Subscription, error) {
	s.closeActive()

	sub, err := s.feed.Subscribe(ctx)
	if err != nil {
		return nil, err
	}

	// Requests made before this subscription opened are satisfied by it
	select {
	case <-s.reconnect:
	default:
	}

	s.mu.Lock()
	s.active = sub
	s.state = ConnConnected
	s.mu.Unlock()

	metrics.StreamConnects.Inc()
	s.logger.Info("log stream connected")
	return sub, nil
}

func (s *LogStream) dispatch(ctx context.Context, sub domain.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.reconnect:
			return errReconnectRequested
		case line, ok := <-sub.Lines():
			if !ok {
				return domain.ErrFeedClosed
			}
			metrics.LogLinesReceived.Inc()
			if err := s.sink.PushLine(ctx, line); err != nil {
				return err
			}
		case err := <-sub.Errors():
			if err == nil {
				err = domain.ErrFeedClosed
			}
			return err
		}
	}
}

// wait sleeps out the reconnect delay. A Reconnect call cuts it short.
func (s *LogStream) wait(ctx context.Context) bool {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-s.reconnect:
		return true
	}
}

func (s *LogStream) closeActive() {
	s.mu.Lock()
	sub := s.active
	s.active = nil
	s.mu.Unlock()

	if sub == nil {
		return
	}
	if err := sub.Close(); err != nil {
		s.logger.Debug("closing log subscription", "error", err)
	}
}

func (s *LogStream) setState(state ConnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
