package main

import (
	"context"
	"fmt"
	"io"

	"github.com/mmcdole/scrapedeck/internal/domain"
	"github.com/mmcdole/scrapedeck/internal/logbuffer"
	"github.com/mmcdole/scrapedeck/internal/service"
)

// headlessPrinter writes accepted log lines and stage transitions as plain
// text. It applies the same acceptance and staleness rules as the TUI.
type headlessPrinter struct {
	out     io.Writer
	buffer  *logbuffer.Buffer
	seq     uint64
	last    domain.TaskStatus
	seen    bool // a status has been printed
	offline bool
}

func newHeadlessPrinter(out io.Writer) *headlessPrinter {
	return &headlessPrinter{out: out, buffer: logbuffer.New()}
}

// runHeadless prints until ctx ends or both channels close
func runHeadless(ctx context.Context, out io.Writer, lines <-chan string, statuses <-chan service.StatusUpdate) error {
	p := newHeadlessPrinter(out)
	for lines != nil || statuses != nil {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			p.line(line)
		case update, ok := <-statuses:
			if !ok {
				statuses = nil
				continue
			}
			p.status(update)
		}
	}
	return nil
}

func (p *headlessPrinter) line(line string) {
	if p.buffer.Append(line) {
		fmt.Fprintln(p.out, line)
	}
}

func (p *headlessPrinter) status(update service.StatusUpdate) {
	if update.Err != nil {
		if !p.offline {
			p.offline = true
			fmt.Fprintf(p.out, "[status] unavailable: %v\n", update.Err)
		}
		return
	}
	if update.Seq <= p.seq {
		return
	}
	p.seq = update.Seq

	if p.offline {
		p.offline = false
		fmt.Fprintln(p.out, "[status] available")
	}

	for _, stage := range domain.Stages {
		active := update.Status.Active(stage)
		progress := update.Status.Progress(stage)
		if p.seen && active == p.last.Active(stage) && progress == p.last.Progress(stage) {
			continue
		}
		if !p.seen && !active {
			continue
		}
		fmt.Fprintln(p.out, stageLine(stage, active, progress))
	}
	p.last = update.Status
	p.seen = true
}

func stageLine(stage domain.Stage, active bool, progress string) string {
	switch {
	case !active:
		return fmt.Sprintf("[%s] ready", stage)
	case progress == "":
		return fmt.Sprintf("[%s] running", stage)
	default:
		return fmt.Sprintf("[%s] running: %s", stage, progress)
	}
}
