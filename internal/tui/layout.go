package tui

// Vertical layout, top to bottom
const (
	HeaderHeight = 1
	PanelHeight  = 6 // 4 content lines + border
	InputHeight  = 3 // 1 content line + border
	FooterHeight = 1
	BorderSize   = 2

	MinLogHeight = 3
	MinWidth     = 40
)

type screenLayout struct {
	panelWidth     int // outer width of each stage panel
	panelInner     int
	inputInner     int
	logInnerWidth  int
	logInnerHeight int
}

// calculateLayout splits the window into header, stage panels, URL field,
// log pane and footer. The log pane takes whatever height is left.
func calculateLayout(width, height int) screenLayout {
	if width < MinWidth {
		width = MinWidth
	}

	l := screenLayout{
		panelWidth:    width / 2,
		inputInner:    width - BorderSize - 2,
		logInnerWidth: width - BorderSize - 2,
	}
	l.panelInner = l.panelWidth - BorderSize - 2

	l.logInnerHeight = height - HeaderHeight - PanelHeight - InputHeight - FooterHeight - BorderSize
	if l.logInnerHeight < MinLogHeight {
		l.logInnerHeight = MinLogHeight
	}
	return l
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	layout := calculateLayout(m.Width, m.Height)
	m.URLInput.SetWidth(layout.inputInner)
	m.LogPane.SetSize(layout.logInnerWidth, layout.logInnerHeight)
}
