package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Color palette
var (
	Amber      = lipgloss.Color("#E5A00D")
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Green      = lipgloss.Color("#10B981")
	Red        = lipgloss.Color("#EF4444")
	Blue       = lipgloss.Color("#3B82F6")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)

	RunningBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Green)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	LogLineStyle = lipgloss.NewStyle().
			Foreground(LightGray)
)

// Stage indicator characters (unstyled)
const (
	ReadyChar   = "○"
	RunningChar = "●"
)

// Stage indicator styles
var (
	ReadyStyle   = lipgloss.NewStyle().Foreground(DimGray)
	RunningStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
)

// Control hint styles
var (
	EnabledKeyStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true)

	EnabledLabelStyle = lipgloss.NewStyle().
				Foreground(White)

	DisabledStyle = lipgloss.NewStyle().
			Foreground(SlateLight)
)

// Connection badge styles
var (
	OnlineBadgeStyle = lipgloss.NewStyle().
				Foreground(SlateDark).
				Background(Green).
				Padding(0, 1)

	OfflineBadgeStyle = lipgloss.NewStyle().
				Foreground(White).
				Background(Red).
				Padding(0, 1)

	PendingBadgeStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Background(SlateLight).
				Padding(0, 1)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Amber).
			Padding(1, 2).
			Background(SlateDark)

	NoticeModalStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Red).
				Padding(1, 2).
				Background(SlateDark)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(Amber)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Green)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Amber).
				Bold(true)
)

// Truncate shortens s to width display cells, adding an ellipsis when cut
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// RenderHint renders a "key label" control hint, dimmed when disabled
func RenderHint(key, label string, enabled bool) string {
	if !enabled {
		return DisabledStyle.Render(key + " " + label)
	}
	return EnabledKeyStyle.Render(key) + " " + EnabledLabelStyle.Render(label)
}
