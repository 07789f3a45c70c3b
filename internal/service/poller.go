package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/scrapedeck/internal/domain"
	"github.com/mmcdole/scrapedeck/internal/metrics"
)

const (
	DefaultPollInterval = time.Second
	DefaultPollTimeout  = 5 * time.Second
)

// StatusSource answers status queries.
type StatusSource interface {
	Status(ctx context.Context) (domain.TaskStatus, error)
}

// StatusUpdate is the outcome of one status query. Seq orders queries by
// issue time; a failed query carries Err and a zero Status.
type StatusUpdate struct {
	Seq      uint64
	IssuedAt time.Time
	Status   domain.TaskStatus
	Err      error
}

// StatusPoller queries the service on a fixed interval. Queries may overlap;
// a response is published only if no later-issued query has already
// published, so a slow stale answer never overwrites a fresher one.
type StatusPoller struct {
	source   StatusSource
	sink     StatusSink
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	seq atomic.Uint64

	publishMu sync.Mutex
	published uint64
}

// NewStatusPoller creates a poller. Non-positive durations use the defaults.
func NewStatusPoller(source StatusSource, sink StatusSink, interval, timeout time.Duration, logger *slog.Logger) *StatusPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusPoller{
		source:   source,
		sink:     sink,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run polls once immediately and then every interval until ctx ends.
// It waits for in-flight queries before returning.
func (p *StatusPoller) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	issue := func() {
		seq := p.seq.Add(1)
		issuedAt := time.Now()
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.poll(ctx, seq, issuedAt)
		}()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	issue()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			issue()
		}
	}
}

func (p *StatusPoller) poll(ctx context.Context, seq uint64, issuedAt time.Time) {
	queryCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	metrics.StatusPolls.Inc()
	start := time.Now()
	status, err := p.source.Status(queryCtx)
	metrics.StatusPollDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		metrics.StatusPollFailures.Inc()
		p.logger.Warn("status poll failed", "seq", seq, "error", err)
	}

	p.publish(ctx, StatusUpdate{
		Seq:      seq,
		IssuedAt: issuedAt,
		Status:   status,
		Err:      err,
	})
}

// publish forwards update unless a later-issued success already went out.
// Failures are forwarded without claiming the sequence, so a slower success
// issued before them is still accepted.
func (p *StatusPoller) publish(ctx context.Context, update StatusUpdate) {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()

	if update.Seq <= p.published {
		metrics.StatusPollsStale.Inc()
		p.logger.Debug("dropping stale status", "seq", update.Seq, "published", p.published)
		return
	}
	if update.Err == nil {
		p.published = update.Seq
	}

	if err := p.sink.PushStatus(ctx, update); err != nil {
		p.logger.Debug("status sink closed", "error", err)
	}
}
