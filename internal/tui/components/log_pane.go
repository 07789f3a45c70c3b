package components

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/scrapedeck/internal/logbuffer"
	"github.com/mmcdole/scrapedeck/internal/tui/styles"
)

// LogPane shows the log buffer in a scrollable viewport. It follows the
// newest line unless the operator has scrolled up, and can be narrowed with
// a fuzzy filter.
type LogPane struct {
	buffer   *logbuffer.Buffer
	viewport viewport.Model

	filterInput textinput.Model
	filtering   bool // filter input has the keyboard
	filterQuery string

	follow  bool
	focused bool
	width   int
	height  int
	renders int // content rebuilds
}

// NewLogPane creates an empty log pane
func NewLogPane() LogPane {
	fi := textinput.New()
	fi.Prompt = "/"
	fi.PromptStyle = styles.FilterPromptStyle
	fi.Placeholder = "filter log..."
	fi.PlaceholderStyle = styles.DimStyle
	fi.CharLimit = 120

	p := LogPane{
		buffer:      logbuffer.New(),
		viewport:    viewport.New(0, 0),
		filterInput: fi,
		follow:      true,
	}
	p.refresh()
	return p
}

// Append adds one line. Blank lines are ignored; returns whether it was kept.
func (p *LogPane) Append(line string) bool {
	return p.AppendLines([]string{line}) == 1
}

// AppendLines adds lines in order and rebuilds the view once. Returns how
// many were kept.
func (p *LogPane) AppendLines(lines []string) int {
	accepted := 0
	for _, line := range lines {
		if p.buffer.Append(line) {
			accepted++
		}
	}
	if accepted > 0 {
		p.refresh()
	}
	return accepted
}

// Clear empties the log and shows the cleared placeholder
func (p *LogPane) Clear() {
	p.buffer.Clear()
	p.follow = true
	p.refresh()
}

// Buffer exposes the underlying buffer
func (p *LogPane) Buffer() *logbuffer.Buffer {
	return p.buffer
}

// SetSize sets the pane's outer dimensions
func (p *LogPane) SetSize(width, height int) {
	p.width = width
	p.height = height

	innerHeight := height
	if p.filtering || p.filterQuery != "" {
		innerHeight-- // filter line
	}
	if innerHeight < 1 {
		innerHeight = 1
	}
	p.viewport.Width = width
	p.viewport.Height = innerHeight
	p.filterInput.Width = width - 2
	p.refresh()
}

// SetFocused toggles keyboard focus
func (p *LogPane) SetFocused(focused bool) {
	p.focused = focused
	if !focused {
		p.stopFilter()
	}
}

// Focused returns whether the pane has keyboard focus
func (p LogPane) Focused() bool {
	return p.focused
}

// Filtering returns whether the filter input has the keyboard
func (p LogPane) Filtering() bool {
	return p.filtering
}

// FilterQuery returns the active filter text
func (p LogPane) FilterQuery() string {
	return p.filterQuery
}

// StartFilter opens the filter input
func (p *LogPane) StartFilter() {
	p.filtering = true
	p.filterInput.SetValue(p.filterQuery)
	p.filterInput.CursorEnd()
	p.filterInput.Focus()
	p.SetSize(p.width, p.height)
}

func (p *LogPane) stopFilter() {
	p.filtering = false
	p.filterInput.Blur()
}

// Update handles keys while focused. Returns (pane, cmd).
func (p LogPane) Update(msg tea.Msg) (LogPane, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	if p.filtering && isKey {
		switch keyMsg.String() {
		case "enter":
			p.stopFilter()
			p.SetSize(p.width, p.height)
			return p, nil
		case "esc":
			p.stopFilter()
			p.filterQuery = ""
			p.filterInput.SetValue("")
			p.SetSize(p.width, p.height)
			return p, nil
		}

		var cmd tea.Cmd
		p.filterInput, cmd = p.filterInput.Update(msg)
		if q := p.filterInput.Value(); q != p.filterQuery {
			p.filterQuery = q
			p.refresh()
		}
		return p, cmd
	}

	if isKey && keyMsg.String() == "esc" && p.filterQuery != "" {
		p.filterQuery = ""
		p.filterInput.SetValue("")
		p.SetSize(p.width, p.height)
		return p, nil
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	p.follow = p.viewport.AtBottom()
	return p, cmd
}

// VisibleLines returns the lines shown, after filtering, oldest first
func (p LogPane) VisibleLines() []string {
	lines := p.buffer.Lines()
	if p.filterQuery == "" {
		return lines
	}

	lower := make([]string, len(lines))
	for i, l := range lines {
		lower[i] = strings.ToLower(l)
	}

	matches := fuzzy.Find(strings.ToLower(p.filterQuery), lower)

	// Keep arrival order rather than match score
	idx := make([]int, len(matches))
	for i, match := range matches {
		idx[i] = match.Index
	}
	sort.Ints(idx)

	visible := make([]string, len(idx))
	for i, j := range idx {
		visible[i] = lines[j]
	}
	return visible
}

func (p *LogPane) refresh() {
	var content string
	switch lines := p.VisibleLines(); {
	case p.buffer.Len() == 0:
		content = styles.DimStyle.Render(p.buffer.Placeholder())
	case len(lines) == 0:
		content = styles.DimStyle.Render("No lines match " + p.filterQuery)
	default:
		content = styles.LogLineStyle.Render(strings.Join(lines, "\n"))
	}

	p.renders++
	p.viewport.SetContent(content)
	if p.follow {
		p.viewport.GotoBottom()
	}
}

// View renders the pane content without a border
func (p LogPane) View() string {
	if !p.filtering && p.filterQuery == "" {
		return p.viewport.View()
	}

	var filterLine string
	if p.filtering {
		filterLine = p.filterInput.View()
	} else {
		filterLine = styles.FilterPromptStyle.Render("/") + styles.SubtitleStyle.Render(p.filterQuery) +
			styles.DimStyle.Render("  (esc clears)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.viewport.View(), filterLine)
}
