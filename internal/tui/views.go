package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/scrapedeck/internal/service"
	"github.com/mmcdole/scrapedeck/internal/tui/styles"
)

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Starting..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	layout := calculateLayout(m.Width, m.Height)

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderStagePanel(m.Panel.Scrape, "enter", layout),
		m.renderStagePanel(m.Panel.Download, "C-d", layout),
	)

	inputBorder := styles.InactiveBorder
	if m.Focus == FocusInput {
		inputBorder = styles.ActiveBorder
	}
	input := inputBorder.
		Width(layout.inputInner + 2).
		Padding(0, 1).
		Render(m.URLInput.View())

	logBorder := styles.InactiveBorder
	if m.Focus == FocusLog {
		logBorder = styles.ActiveBorder
	}
	logPane := logBorder.
		Width(layout.logInnerWidth + 2).
		Padding(0, 1).
		Render(m.LogPane.View())

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		panels,
		input,
		logPane,
		m.renderFooter(),
	)

	// Overlay notice if visible
	if m.Notice.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Notice.View())
	}

	return view
}

// renderHeader renders the title line with service and stream badges
func (m Model) renderHeader() string {
	var svcBadge string
	switch m.Service {
	case ServiceOnline:
		svcBadge = styles.OnlineBadgeStyle.Render("service online")
	case ServiceOffline:
		svcBadge = styles.OfflineBadgeStyle.Render("service offline")
	default:
		svcBadge = styles.PendingBadgeStyle.Render("service ...")
	}

	var streamBadge string
	switch state := m.connState(); state {
	case service.ConnConnected:
		streamBadge = styles.OnlineBadgeStyle.Render("log " + state.String())
	case service.ConnRetrying:
		streamBadge = styles.OfflineBadgeStyle.Render("log " + state.String())
	default:
		streamBadge = styles.PendingBadgeStyle.Render("log " + state.String())
	}

	left := styles.TitleStyle.Render("scrapedeck") + " " + styles.DimStyle.Render(m.serverURL)
	right := svcBadge + " " + streamBadge

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderStagePanel renders one stage's indicator, progress and controls
func (m Model) renderStagePanel(sv StageView, startKey string, layout screenLayout) string {
	title := styles.TitleStyle.Render(sv.Stage.Title())

	var indicator string
	if sv.Indicator == IndicatorRunning {
		indicator = styles.RunningStyle.Render(styles.RunningChar+" "+sv.Indicator.String()) +
			" " + RenderSpinner(m.SpinnerFrame)
	} else {
		indicator = styles.ReadyStyle.Render(styles.ReadyChar + " " + sv.Indicator.String())
	}

	progress := styles.SubtitleStyle.Render(styles.Truncate(sv.Progress, layout.panelInner))

	hints := styles.RenderHint(startKey, "start", sv.StartEnabled) + "  " +
		styles.RenderHint("C-x", "stop", sv.StopEnabled)

	border := styles.InactiveBorder
	if sv.Indicator == IndicatorRunning {
		border = styles.RunningBorder
	}

	return border.
		Width(layout.panelInner + 2).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, indicator, progress, hints))
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.Flash != "" && m.FlashIsErr:
		left = styles.ErrorStyle.Render(m.Flash)
	case m.Flash != "":
		left = styles.DimStyle.Render(m.Flash)
	case m.lastPollErr != nil:
		left = styles.ErrorStyle.Render(styles.Truncate(m.lastPollErr.Error(), m.Width/2))
	default:
		left = styles.DimStyle.Render(pluralize(m.LogPane.Buffer().Len(), "line"))
	}

	var right string
	if m.Focus == FocusLog {
		right = styles.AccentStyle.Render("/") + styles.DimStyle.Render(" filter  ") +
			styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help  ")
	} else {
		right = styles.AccentStyle.Render("F1") + styles.DimStyle.Render(" help  ")
	}
	right += styles.AccentStyle.Render("tab") + styles.DimStyle.Render(" focus")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// helpSection groups bindings under one heading on the help screen
type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections() []helpSection {
	return []helpSection{
		{"COMMANDS", []key.Binding{Keys.StartScrape, Keys.StartDownload, Keys.Stop}},
		{"LOG", []key.Binding{Keys.ClearLog, Keys.Reconnect, Keys.Copy, Keys.Filter}},
		{"URL FIELD", []key.Binding{Keys.Recall}},
		{"OTHER", []key.Binding{Keys.SwitchFocus, Keys.Help, Keys.HelpAnywhere, Keys.Quit}},
	}
}

// renderHelp renders the help screen from the key map
func (m Model) renderHelp() string {
	keyStyle := styles.HelpKeyStyle.Width(14)

	var rows []string
	for i, section := range helpSections() {
		if i > 0 {
			rows = append(rows, "")
		}
		rows = append(rows, styles.TitleStyle.Render(section.title))
		for _, b := range section.bindings {
			h := b.Help()
			rows = append(rows, "  "+keyStyle.Render(h.Key)+styles.HelpDescStyle.Render(h.Desc))
		}
	}
	rows = append(rows, "", styles.DimStyle.Render("Press ? or Esc to return..."))

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
