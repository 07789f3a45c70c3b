package components

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/scrapedeck/internal/tui/styles"
)

// DismissKey closes the visible notice
var DismissKey = key.NewBinding(
	key.WithKeys("enter", "esc"),
	key.WithHelp("enter/esc", "dismiss"),
)

// NoticeModal is a blocking notification. Notices raised while one is
// showing queue up behind it, so each is seen exactly once.
type NoticeModal struct {
	queue []string
}

// NewNoticeModal creates an empty notice modal
func NewNoticeModal() NoticeModal {
	return NoticeModal{}
}

// Show queues message for display
func (m *NoticeModal) Show(message string) {
	if message == "" {
		return
	}
	m.queue = append(m.queue, message)
}

// Dismiss drops the notice on screen, revealing the next queued one
func (m *NoticeModal) Dismiss() {
	if len(m.queue) > 0 {
		m.queue = m.queue[1:]
	}
}

// IsVisible returns whether a notice is on screen
func (m NoticeModal) IsVisible() bool {
	return len(m.queue) > 0
}

// Message returns the notice on screen
func (m NoticeModal) Message() string {
	if len(m.queue) == 0 {
		return ""
	}
	return m.queue[0]
}

// Pending returns how many notices wait behind the visible one
func (m NoticeModal) Pending() int {
	if len(m.queue) == 0 {
		return 0
	}
	return len(m.queue) - 1
}

// HandleKey consumes every key while visible. Only DismissKey dismisses.
func (m *NoticeModal) HandleKey(msg tea.KeyMsg) (handled bool) {
	if !m.IsVisible() {
		return false
	}
	if key.Matches(msg, DismissKey) {
		m.Dismiss()
	}
	return true
}

// View renders the notice modal
func (m NoticeModal) View() string {
	if !m.IsVisible() {
		return ""
	}

	const modalWidth = 44

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Red).
		Bold(true).
		Width(modalWidth).
		Background(styles.SlateDark)

	bodyStyle := lipgloss.NewStyle().
		Foreground(styles.White).
		Width(modalWidth).
		Background(styles.SlateDark)

	hint := DismissKey.Help().Key + " to " + DismissKey.Help().Desc
	if n := m.Pending(); n > 0 {
		hint += " · " + strconv.Itoa(n) + " more"
	}
	hintStyle := styles.DimStyle.
		Width(modalWidth).
		Background(styles.SlateDark)

	spacer := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.SlateDark).
		Render("")

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Notice"),
		spacer,
		bodyStyle.Render(m.Message()),
		spacer,
		hintStyle.Render(hint),
	)

	return styles.NoticeModalStyle.Render(content)
}
