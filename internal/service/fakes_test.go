package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/scrapedeck/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSub is a subscription driven by the test.
type fakeSub struct {
	lines  chan string
	errs   chan error
	closed chan struct{}
	once   sync.Once
	feed   *fakeFeed
}

func (s *fakeSub) Lines() <-chan string { return s.lines }
func (s *fakeSub) Errors() <-chan error { return s.errs }

func (s *fakeSub) Close() error {
	s.once.Do(func() {
		s.feed.open.Add(-1)
		close(s.closed)
	})
	return nil
}

func (s *fakeSub) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// fakeFeed hands out fakeSubs and tracks how many are open at once.
type fakeFeed struct {
	open     atomic.Int32
	maxOpen  atomic.Int32
	attempts atomic.Int32
	failures atomic.Int32

	subscribed chan *fakeSub
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{subscribed: make(chan *fakeSub, 16)}
}

func (f *fakeFeed) Subscribe(ctx context.Context) (domain.Subscription, error) {
	f.attempts.Add(1)
	if f.failures.Load() > 0 {
		f.failures.Add(-1)
		return nil, domain.ErrServerOffline
	}

	n := f.open.Add(1)
	for {
		cur := f.maxOpen.Load()
		if n <= cur || f.maxOpen.CompareAndSwap(cur, n) {
			break
		}
	}

	sub := &fakeSub{
		lines:  make(chan string),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
		feed:   f,
	}
	f.subscribed <- sub
	return sub, nil
}

// recordingSink collects everything pushed into it.
type recordingSink struct {
	mu       sync.Mutex
	lines    []string
	statuses []StatusUpdate
}

func (s *recordingSink) PushLine(_ context.Context, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

func (s *recordingSink) PushStatus(_ context.Context, update StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, update)
	return nil
}

func (s *recordingSink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *recordingSink) Statuses() []StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StatusUpdate(nil), s.statuses...)
}

// fakeAPI is a scripted TaskAPI that counts calls.
type fakeAPI struct {
	mu sync.Mutex

	result  domain.CommandResult
	err     error
	targets []string

	scrapeCalls   int
	downloadCalls int
	stopCalls     int
}

func (a *fakeAPI) Status(ctx context.Context) (domain.TaskStatus, error) {
	return domain.TaskStatus{}, nil
}

func (a *fakeAPI) StartScrape(ctx context.Context, target string) (domain.CommandResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scrapeCalls++
	a.targets = append(a.targets, target)
	return a.result, a.err
}

func (a *fakeAPI) StartDownload(ctx context.Context) (domain.CommandResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.downloadCalls++
	return a.result, a.err
}

func (a *fakeAPI) Stop(ctx context.Context) (domain.CommandResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopCalls++
	return a.result, a.err
}

func (a *fakeAPI) totalCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scrapeCalls + a.downloadCalls + a.stopCalls
}

// fakeHistory records targets in memory.
type fakeHistory struct {
	mu      sync.Mutex
	targets []string
	err     error
}

func (h *fakeHistory) Record(target string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.targets = append([]string{target}, h.targets...)
	return nil
}

func (h *fakeHistory) Recent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.targets...)
}

// statusReply is one scripted answer from scriptedSource.
type statusReply struct {
	status domain.TaskStatus
	err    error
	delay  time.Duration
}

// scriptedSource answers status queries from a script, repeating the last
// entry once the script runs out.
type scriptedSource struct {
	mu     sync.Mutex
	script []statusReply
	calls  int
}

func (s *scriptedSource) Status(ctx context.Context) (domain.TaskStatus, error) {
	s.mu.Lock()
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	reply := s.script[idx]
	s.calls++
	s.mu.Unlock()

	if reply.delay > 0 {
		select {
		case <-time.After(reply.delay):
		case <-ctx.Done():
			return domain.TaskStatus{}, ctx.Err()
		}
	}
	return reply.status, reply.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var errBoom = errors.New("boom")
