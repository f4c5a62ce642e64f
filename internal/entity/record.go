package entity

import "time"

// PageType identifies which page variant a URL points at.
type PageType string

const (
	PageTypeNote PageType = "note"
	PageTypeUser PageType = "user"
)

// ParseMethod records which extraction strategy produced an accepted record.
type ParseMethod string

const (
	ParseMethodMetaTags      ParseMethod = "meta-tags"
	ParseMethodInitialState  ParseMethod = "json-initial-state"
	ParseMethodScriptRegex   ParseMethod = "script-regex"
	ParseMethodBasicFallback ParseMethod = "basic-fallback"
	ParseMethodError         ParseMethod = "error"
)

// ExtractedRecord is the final structured output of one scrape.
// Metric fields are always present so the record keeps the same shape
// regardless of the parse method.
type ExtractedRecord struct {
	URL         string      `json:"url"`
	Type        PageType    `json:"type"`
	Title       string      `json:"title"`
	Author      string      `json:"author,omitempty"`
	AuthorID    string      `json:"authorId,omitempty"`
	Likes       int64       `json:"likes"`
	Collections int64       `json:"collections"`
	Comments    int64       `json:"comments"`
	Shares      int64       `json:"shares"`
	ParseMethod ParseMethod `json:"parseMethod"`
	Success     bool        `json:"success"`
	ParsedAt    time.Time   `json:"parsedAt"`
	Error       string      `json:"error,omitempty"`
}
