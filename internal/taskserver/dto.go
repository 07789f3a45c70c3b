package taskserver

import "github.com/mmcdole/scrapedeck/internal/domain"

// statusResponse is the body of GET /api/status
type statusResponse struct {
	Scraping         bool   `json:"scraping"`
	ScrapeProgress   string `json:"scrape_progress,omitempty"`
	Downloading      bool   `json:"downloading"`
	DownloadProgress string `json:"download_progress,omitempty"`
}

func (r statusResponse) toDomain() domain.TaskStatus {
	return domain.TaskStatus{
		Scraping:         r.Scraping,
		ScrapeProgress:   r.ScrapeProgress,
		Downloading:      r.Downloading,
		DownloadProgress: r.DownloadProgress,
	}
}

// scrapeRequest is the body of POST /api/scrape
type scrapeRequest struct {
	URL string `json:"url"`
}

// commandResponse is the body returned by every start/stop endpoint.
// Pointers distinguish a missing field from a false/empty one.
type commandResponse struct {
	Success *bool   `json:"success"`
	Message *string `json:"message"`
}

func (r commandResponse) valid() bool {
	return r.Success != nil
}

func (r commandResponse) toDomain() domain.CommandResult {
	result := domain.CommandResult{Success: *r.Success}
	if r.Message != nil {
		result.Message = *r.Message
	}
	return result
}
