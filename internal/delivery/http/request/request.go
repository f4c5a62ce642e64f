package request

// ParseRequest asks for a synchronous scrape of one URL.
type ParseRequest struct {
	URL        string `json:"url"`
	Credential string `json:"credential,omitempty"`
}

// SubmitScrapeRequest queues a URL for the background worker.
type SubmitScrapeRequest struct {
	URL        string `json:"url"`
	Credential string `json:"credential,omitempty"`
	Force      bool   `json:"force"`
}
