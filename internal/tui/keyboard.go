package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/scrapedeck/internal/service"
)

// handleKeyMsg routes a key press. Keys bound to commands are consumed here
// and never reach the URL input or log pane.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Quit) {
		return m, tea.Quit
	}
	m.Flash = ""

	// A notice blocks everything else until dismissed
	if m.Notice.HandleKey(msg) {
		return m, nil
	}

	if m.State == StateHelp {
		if key.Matches(msg, Keys.Help, Keys.HelpAnywhere) || msg.String() == "esc" {
			m.State = StateRunning
		}
		return m, nil
	}

	// The log filter owns the keyboard while it is open
	if m.LogPane.Filtering() {
		var cmd tea.Cmd
		m.LogPane, cmd = m.LogPane.Update(msg)
		return m, cmd
	}

	if handled, next, cmd := m.handleCommandKey(msg); handled {
		return next, cmd
	}

	return m.routeToFocused(msg)
}

// handleCommandKey handles bindings that work from either focus
func (m Model) handleCommandKey(msg tea.KeyMsg) (bool, Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.StartScrape):
		cmd := m.startScrape()
		return true, m, cmd

	case key.Matches(msg, Keys.StartDownload):
		if !m.Panel.Download.StartEnabled || m.controller == nil {
			return true, m, nil
		}
		return true, m, StartDownloadCmd(m.ctx, m.controller)

	case key.Matches(msg, Keys.Stop):
		if !m.Panel.StopEnabled() || m.controller == nil {
			return true, m, nil
		}
		return true, m, StopTaskCmd(m.ctx, m.controller)

	case key.Matches(msg, Keys.ClearLog):
		m.LogPane.Clear()
		return true, m, nil

	case key.Matches(msg, Keys.Reconnect):
		if m.stream != nil {
			m.stream.Reconnect()
			m.setFlash("Reconnecting log stream...", false)
		}
		return true, m, nil

	case key.Matches(msg, Keys.Copy):
		lines := m.LogPane.VisibleLines()
		if len(lines) == 0 {
			m.setFlash("Nothing to copy", false)
			return true, m, nil
		}
		return true, m, CopyLinesCmd(lines)

	case key.Matches(msg, Keys.SwitchFocus):
		cmd := m.toggleFocus()
		return true, m, cmd

	case key.Matches(msg, Keys.HelpAnywhere):
		m.State = StateHelp
		return true, m, nil
	}

	// Printable keys below only act as commands outside the URL field
	if m.Focus != FocusLog {
		return false, m, nil
	}

	switch {
	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return true, m, nil

	case key.Matches(msg, Keys.Filter):
		m.LogPane.StartFilter()
		m.updateLayout()
		return true, m, nil
	}

	return false, m, nil
}

// startScrape validates the field synchronously so a bad target raises its
// notice without a round trip.
func (m *Model) startScrape() tea.Cmd {
	if !m.Panel.Scrape.StartEnabled || m.controller == nil {
		return nil
	}

	raw := m.URLInput.Value()
	if _, err := service.ValidateTarget(raw); err != nil {
		m.Notice.Show(service.ValidationNotice(err))
		return nil
	}
	return StartScrapeCmd(m.ctx, m.controller, raw)
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.Focus == FocusInput {
		m.Focus = FocusLog
		m.URLInput.Blur()
		m.LogPane.SetFocused(true)
		return nil
	}
	m.Focus = FocusInput
	m.LogPane.SetFocused(false)
	m.updateLayout()
	return m.URLInput.Focus()
}

func (m Model) routeToFocused(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.Focus == FocusLog {
		m.LogPane, cmd = m.LogPane.Update(msg)
		return m, cmd
	}
	m.URLInput, cmd = m.URLInput.Update(msg)
	return m, cmd
}
