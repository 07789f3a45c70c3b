package tui

import "github.com/mmcdole/scrapedeck/internal/domain"

// ProgressPlaceholder is shown for a running stage that reports no progress.
const ProgressPlaceholder = "Processing..."

// Indicator is a stage's visible run state
type Indicator int

const (
	IndicatorReady Indicator = iota
	IndicatorRunning
)

func (i Indicator) String() string {
	if i == IndicatorRunning {
		return "Running"
	}
	return "Ready"
}

// StageView is everything the screen shows for one stage
type StageView struct {
	Stage        domain.Stage
	Indicator    Indicator
	StartEnabled bool
	StopEnabled  bool
	Progress     string
}

// PanelView is the projection of one status snapshot
type PanelView struct {
	Scrape   StageView
	Download StageView
}

// Stage returns the view for stage
func (p PanelView) Stage(stage domain.Stage) StageView {
	if stage == domain.StageDownload {
		return p.Download
	}
	return p.Scrape
}

// StopEnabled reports whether either stage can be stopped
func (p PanelView) StopEnabled() bool {
	return p.Scrape.StopEnabled || p.Download.StopEnabled
}

// Bind maps a status snapshot to controls. It holds no state: the same
// status always yields the same view.
func Bind(status domain.TaskStatus) PanelView {
	return PanelView{
		Scrape:   bindStage(domain.StageScrape, status),
		Download: bindStage(domain.StageDownload, status),
	}
}

func bindStage(stage domain.Stage, status domain.TaskStatus) StageView {
	if !status.Active(stage) {
		return StageView{
			Stage:        stage,
			Indicator:    IndicatorReady,
			StartEnabled: true,
		}
	}

	progress := status.Progress(stage)
	if progress == "" {
		progress = ProgressPlaceholder
	}
	return StageView{
		Stage:       stage,
		Indicator:   IndicatorRunning,
		StopEnabled: true,
		Progress:    progress,
	}
}
