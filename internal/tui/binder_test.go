package tui

import (
	"testing"

	"github.com/mmcdole/scrapedeck/internal/domain"
)

func TestBind(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.TaskStatus
		scrape   StageView
		download StageView
	}{
		{
			name:     "idle",
			status:   domain.TaskStatus{},
			scrape:   StageView{Stage: domain.StageScrape, Indicator: IndicatorReady, StartEnabled: true},
			download: StageView{Stage: domain.StageDownload, Indicator: IndicatorReady, StartEnabled: true},
		},
		{
			name:     "scraping with progress",
			status:   domain.TaskStatus{Scraping: true, ScrapeProgress: "Page 3 of 10"},
			scrape:   StageView{Stage: domain.StageScrape, Indicator: IndicatorRunning, StopEnabled: true, Progress: "Page 3 of 10"},
			download: StageView{Stage: domain.StageDownload, Indicator: IndicatorReady, StartEnabled: true},
		},
		{
			name:     "downloading without progress",
			status:   domain.TaskStatus{Downloading: true},
			scrape:   StageView{Stage: domain.StageScrape, Indicator: IndicatorReady, StartEnabled: true},
			download: StageView{Stage: domain.StageDownload, Indicator: IndicatorRunning, StopEnabled: true, Progress: ProgressPlaceholder},
		},
		{
			name:     "progress ignored while inactive",
			status:   domain.TaskStatus{ScrapeProgress: "leftover", DownloadProgress: "leftover"},
			scrape:   StageView{Stage: domain.StageScrape, Indicator: IndicatorReady, StartEnabled: true},
			download: StageView{Stage: domain.StageDownload, Indicator: IndicatorReady, StartEnabled: true},
		},
		{
			name:     "both running",
			status:   domain.TaskStatus{Scraping: true, Downloading: true, DownloadProgress: "12 files"},
			scrape:   StageView{Stage: domain.StageScrape, Indicator: IndicatorRunning, StopEnabled: true, Progress: ProgressPlaceholder},
			download: StageView{Stage: domain.StageDownload, Indicator: IndicatorRunning, StopEnabled: true, Progress: "12 files"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bind(tt.status)
			if got.Scrape != tt.scrape {
				t.Errorf("scrape = %+v, want %+v", got.Scrape, tt.scrape)
			}
			if got.Download != tt.download {
				t.Errorf("download = %+v, want %+v", got.Download, tt.download)
			}
		})
	}
}

func TestBind_StartAndStopAreExclusive(t *testing.T) {
	for _, scraping := range []bool{false, true} {
		for _, downloading := range []bool{false, true} {
			view := Bind(domain.TaskStatus{Scraping: scraping, Downloading: downloading})
			for _, sv := range []StageView{view.Scrape, view.Download} {
				if sv.StartEnabled == sv.StopEnabled {
					t.Errorf("%s: start=%v stop=%v, want exactly one enabled", sv.Stage, sv.StartEnabled, sv.StopEnabled)
				}
			}
			if view.StopEnabled() != (scraping || downloading) {
				t.Errorf("StopEnabled() = %v for scraping=%v downloading=%v", view.StopEnabled(), scraping, downloading)
			}
		}
	}
}

func TestBind_IsStateless(t *testing.T) {
	status := domain.TaskStatus{Scraping: true, ScrapeProgress: "1/2"}
	Bind(domain.TaskStatus{Downloading: true})
	if Bind(status) != Bind(status) {
		t.Fatal("Bind returned different views for the same status")
	}
}

func TestIndicatorString(t *testing.T) {
	if IndicatorReady.String() != "Ready" || IndicatorRunning.String() != "Running" {
		t.Fatalf("unexpected indicator labels %q %q", IndicatorReady, IndicatorRunning)
	}
}
