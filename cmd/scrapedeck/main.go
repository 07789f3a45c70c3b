package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/mmcdole/scrapedeck/internal/adapter"
	"github.com/mmcdole/scrapedeck/internal/metrics"
	"github.com/mmcdole/scrapedeck/internal/service"
	"github.com/mmcdole/scrapedeck/internal/store"
	"github.com/mmcdole/scrapedeck/internal/taskserver"
	"github.com/mmcdole/scrapedeck/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// sinkBuffer is how many lines and status updates may queue ahead of the UI
const sinkBuffer = 256

type options struct {
	configFile  string
	headless    bool
	writeConfig string
}

func main() {
	var (
		showVersion bool
		opts        options
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&opts.configFile, "config", "", "config file (default "+adapter.DefaultConfigFile()+")")
	flag.BoolVar(&opts.headless, "headless", false, "print the log stream and stage changes instead of the TUI")
	flag.StringVar(&opts.writeConfig, "write-config", "", "write the effective configuration to `file` and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("scrapedeck %s\n", Version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := adapter.LoadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.writeConfig != "" {
		if err := adapter.SaveConfig(cfg, opts.writeConfig); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("✓ Configuration written to %s\n", opts.writeConfig)
		return nil
	}

	logger, logFile, err := adapter.SetupLogger(cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting scrapedeck", "version", Version, "server", cfg.Server.URL)

	history, err := store.Open(cfg.History.File, cfg.History.Limit)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer history.Close()

	client := taskserver.NewClient(cfg.Server.URL, cfg.Server.RequestTimeout, logger)
	sink := service.NewChannelSink(sinkBuffer)
	stream := service.NewLogStream(client, sink, cfg.Stream.ReconnectDelay, logger)
	poller := service.NewStatusPoller(client, sink, cfg.Poll.Interval, cfg.Poll.Timeout, logger)
	controller := service.NewTaskController(client, history, cfg.Server.RequestTimeout, logger)

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Cancelled when the front end exits so the live loops follow it down
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stream.Run(gctx) })
	g.Go(func() error { return poller.Run(gctx) })
	g.Go(func() error { return metrics.Serve(gctx, cfg.Metrics.Listen, logger) })

	if opts.headless || !term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Info("running headless")
		g.Go(func() error {
			defer cancel()
			return runHeadless(gctx, os.Stdout, sink.Lines(), sink.Statuses())
		})
	} else {
		model := tui.NewModel(tui.Options{
			Context:    gctx,
			Controller: controller,
			Stream:     stream,
			History:    history,
			Lines:      sink.Lines(),
			Statuses:   sink.Statuses(),
			ServerURL:  client.BaseURL(),
			Logger:     logger,
		})
		g.Go(func() error {
			defer cancel()
			return runTUI(gctx, model, logger)
		})
	}

	err = g.Wait()
	logger.Info("shutting down")
	return err
}

func runTUI(ctx context.Context, model tui.Model, logger *slog.Logger) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		// A signal or a failed loop tore the program down
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
