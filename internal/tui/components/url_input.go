package components

import (
	"sort"
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/scrapedeck/internal/tui/styles"
)

// URLInput is the scrape target field. Up and down walk through previously
// accepted targets, ranked against whatever has been typed.
type URLInput struct {
	input   textinput.Model
	history []string // most recent first

	draft      string   // text typed before recall started
	candidates []string // history ranked against draft
	recall     int      // index into candidates, -1 when showing draft
}

// NewURLInput creates an empty, focused target field
func NewURLInput() URLInput {
	ti := textinput.New()
	ti.Placeholder = "https://example.com/gallery"
	ti.Prompt = "URL ❯ "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.CharLimit = 2048
	ti.Focus()

	return URLInput{
		input:  ti,
		recall: -1,
	}
}

// SetHistory replaces the recallable targets
func (u *URLInput) SetHistory(targets []string) {
	u.history = append([]string(nil), targets...)
	u.resetRecall()
}

// History returns the recallable targets, most recent first
func (u URLInput) History() []string {
	return u.history
}

// Value returns the raw field content
func (u URLInput) Value() string {
	return u.input.Value()
}

// SetValue replaces the field content
func (u *URLInput) SetValue(v string) {
	u.input.SetValue(v)
	u.input.CursorEnd()
	u.resetRecall()
}

// SetWidth sets the visible field width
func (u *URLInput) SetWidth(width int) {
	w := width - lipgloss.Width(u.input.Prompt) - 1
	if w < 1 {
		w = 1
	}
	u.input.Width = w
}

// Focus gives the field the keyboard
func (u *URLInput) Focus() tea.Cmd {
	return u.input.Focus()
}

// Blur takes the keyboard away
func (u *URLInput) Blur() {
	u.input.Blur()
}

// Focused returns whether the field has the keyboard
func (u URLInput) Focused() bool {
	return u.input.Focused()
}

// Suggestions ranks history against text: closest matches first, ties by
// recency. Empty text returns the whole history.
func Suggestions(text string, history []string) []string {
	if text == "" {
		return append([]string(nil), history...)
	}

	ranks := fuzzy.RankFindFold(text, history)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.Target
	}
	return out
}

// Update handles input events
func (u URLInput) Update(msg tea.Msg) (URLInput, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "up":
			u.older()
			return u, nil
		case "down":
			u.newer()
			return u, nil
		}
	}

	before := u.input.Value()
	var cmd tea.Cmd
	u.input, cmd = u.input.Update(msg)
	if u.input.Value() != before {
		u.resetRecall()
	}
	return u, cmd
}

func (u *URLInput) older() {
	if u.recall == -1 {
		u.draft = u.input.Value()
		u.candidates = Suggestions(u.draft, u.history)
	}
	if u.recall+1 >= len(u.candidates) {
		return
	}
	u.recall++
	u.input.SetValue(u.candidates[u.recall])
	u.input.CursorEnd()
}

func (u *URLInput) newer() {
	switch {
	case u.recall > 0:
		u.recall--
		u.input.SetValue(u.candidates[u.recall])
	case u.recall == 0:
		u.recall = -1
		u.input.SetValue(u.draft)
	default:
		return
	}
	u.input.CursorEnd()
}

func (u *URLInput) resetRecall() {
	u.recall = -1
	u.draft = ""
	u.candidates = nil
}

// View renders the field with a recall hint
func (u URLInput) View() string {
	view := u.input.View()
	switch {
	case u.recall >= 0:
		view += styles.DimStyle.Render("  " + strconv.Itoa(u.recall+1) + "/" + strconv.Itoa(len(u.candidates)))
	case len(u.history) > 0 && u.input.Focused():
		view += styles.DimStyle.Render("  ↑ history")
	}
	return view
}
