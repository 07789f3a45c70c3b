package taskserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/mmcdole/scrapedeck/internal/domain"
)

const (
	initialScanBuffer = 64 * 1024
	maxScanBuffer     = 4 * 1024 * 1024
)

// subscription is one open text/event-stream connection to /api/logs
type subscription struct {
	lines  chan string
	errs   chan error
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe opens the log feed. The returned subscription stays open until
// the service drops it, ctx ends, or Close is called.
func (c *Client) Subscribe(ctx context.Context) (domain.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(subCtx, http.MethodGet, c.baseURL+pathLogs, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	if resp.StatusCode != http.StatusOK {
		blob, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: log feed status=%d body=%s",
			domain.ErrUnexpectedResponse, resp.StatusCode, strings.TrimSpace(string(blob)))
	}

	c.logger.Debug("log feed opened", "url", c.baseURL+pathLogs)

	sub := &subscription{
		lines:  make(chan string),
		errs:   make(chan error, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go sub.read(subCtx, resp.Body)
	return sub, nil
}

func (s *subscription) Lines() <-chan string { return s.lines }

func (s *subscription) Errors() <-chan error { return s.errs }

// Close cancels the connection and waits for the reader to exit
func (s *subscription) Close() error {
	s.once.Do(s.cancel)
	<-s.done
	return nil
}

func (s *subscription) read(ctx context.Context, body io.ReadCloser) {
	defer close(s.done)
	defer body.Close()

	err := readEvents(body, func(data string) error {
		select {
		case s.lines <- data:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	switch {
	case ctx.Err() != nil:
		err = ctx.Err()
	case err == nil:
		err = domain.ErrFeedClosed
	default:
		err = fmt.Errorf("%w: %v", domain.ErrFeedClosed, err)
	}
	s.errs <- err
}

// readEvents parses a text/event-stream body and calls emit with the data of
// each dispatched event. Multi-line data is joined with "\n". Comments and
// the event/id/retry fields are ignored. An event cut off by EOF is dropped.
func readEvents(r io.Reader, emit func(data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialScanBuffer), maxScanBuffer)

	var data []string
	hasData := false

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		if line == "" {
			if hasData {
				if err := emit(strings.Join(data, "\n")); err != nil {
					return err
				}
			}
			data = data[:0]
			hasData = false
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		if field == "data" {
			data = append(data, value)
			hasData = true
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("log event exceeded max size (%d bytes)", maxScanBuffer)
		}
		return err
	}
	return nil
}
