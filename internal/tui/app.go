package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/scrapedeck/internal/domain"
	"github.com/mmcdole/scrapedeck/internal/service"
	"github.com/mmcdole/scrapedeck/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateRunning ApplicationState = iota
	StateHelp
)

// Focus identifies which widget receives typed keys
type Focus int

const (
	FocusInput Focus = iota
	FocusLog
)

// ServiceState is what the latest poll said about the service
type ServiceState int

const (
	ServiceUnknown ServiceState = iota
	ServiceOnline
	ServiceOffline
)

// Controller issues operator commands (consumer-defined interface)
type Controller interface {
	StartScrape(ctx context.Context, raw string) service.Report
	StartDownload(ctx context.Context) service.Report
	StopTask(ctx context.Context) service.Report
}

// Stream is the live log subscription (consumer-defined interface)
type Stream interface {
	Reconnect()
	State() service.ConnState
}

// Options wires the model to the live loops
type Options struct {
	Context    context.Context
	Controller Controller
	Stream     Stream
	History    domain.HistoryRepository
	Lines      <-chan string
	Statuses   <-chan service.StatusUpdate
	ServerURL  string
	Logger     *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Focus Focus
	Ready bool

	// Wiring
	ctx        context.Context
	controller Controller
	stream     Stream
	history    domain.HistoryRepository
	lines      <-chan string
	statuses   <-chan service.StatusUpdate
	serverURL  string
	logger     *slog.Logger

	// UI Components
	URLInput components.URLInput
	LogPane  components.LogPane
	Notice   components.NoticeModal

	// Latest status projection; no other task state is kept
	Panel       PanelView
	Service     ServiceState
	lastStatus  uint64
	lastPollErr error

	// Dimensions
	Width  int
	Height int

	// UI state
	Flash        string
	FlashIsErr   bool
	SpinnerFrame int
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		State:      StateRunning,
		Focus:      FocusInput,
		ctx:        ctx,
		controller: opts.Controller,
		stream:     opts.Stream,
		history:    opts.History,
		lines:      opts.Lines,
		statuses:   opts.Statuses,
		serverURL:  opts.ServerURL,
		logger:     logger,
		URLInput:   components.NewURLInput(),
		LogPane:    components.NewLogPane(),
		Notice:     components.NewNoticeModal(),
		Panel:      Bind(domain.TaskStatus{}),
	}
	m.refreshHistory()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenLogCmd(m.lines),
		ListenStatusCmd(m.statuses),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)

	case LogLinesMsg:
		m.LogPane.AppendLines(msg.Lines)
		if !msg.Ok {
			m.logger.Debug("log channel closed")
			return m, nil
		}
		return m, ListenLogCmd(m.lines)

	case StatusUpdateMsg:
		if !msg.Ok {
			m.logger.Debug("status channel closed")
			return m, nil
		}
		m.applyStatus(msg.Update)
		return m, ListenStatusCmd(m.statuses)

	case CommandDoneMsg:
		m.applyReport(msg.Report)
		return m, nil

	case ClipboardMsg:
		if msg.Err != nil {
			m.setFlash("Copy failed: "+msg.Err.Error(), true)
		} else {
			m.setFlash(pluralize(msg.Lines, "line")+" copied", false)
		}
		return m, nil
	}

	return m, nil
}

// applyStatus replaces the panel with the projection of a successful poll.
// Failures and stale updates leave the last good panel in place.
func (m *Model) applyStatus(update service.StatusUpdate) {
	if update.Err != nil {
		m.Service = ServiceOffline
		m.lastPollErr = update.Err
		return
	}
	if update.Seq <= m.lastStatus {
		return
	}
	m.lastStatus = update.Seq
	m.lastPollErr = nil
	m.Service = ServiceOnline
	m.Panel = Bind(update.Status)
}

// applyReport surfaces a command outcome: at most one log line and at most
// one notice.
func (m *Model) applyReport(report service.Report) {
	if report.HasLine() {
		m.LogPane.Append(report.Line)
	}
	if report.HasNotice() {
		m.Notice.Show(report.Notice)
	}
	if report.Command == service.CommandScrape && report.Kind == domain.MarkSuccess {
		m.refreshHistory()
	}
}

func (m *Model) refreshHistory() {
	if m.history == nil {
		return
	}
	m.URLInput.SetHistory(m.history.Recent())
}

func (m *Model) setFlash(text string, isErr bool) {
	m.Flash = text
	m.FlashIsErr = isErr
}

// connState reports the stream state, idle when no stream is wired
func (m Model) connState() service.ConnState {
	if m.stream == nil {
		return service.ConnIdle
	}
	return m.stream.State()
}
