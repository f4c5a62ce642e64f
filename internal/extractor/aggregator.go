package extractor

import (
	"time"

	"github.com/user/engagement-scraper/internal/entity"
)

// Aggregator turns pipeline results and fetch failures into records.
type Aggregator struct {
	now func() time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{now: time.Now}
}

// Build stamps a pipeline result with its URL, type and parse time.
func (a *Aggregator) Build(url string, pageType entity.PageType, r Result) *entity.ExtractedRecord {
	return &entity.ExtractedRecord{
		URL:         url,
		Type:        pageType,
		Title:       r.Fields.Title,
		Author:      r.Fields.Author,
		AuthorID:    r.Fields.AuthorID,
		Likes:       r.Fields.Likes,
		Collections: r.Fields.Collections,
		Comments:    r.Fields.Comments,
		Shares:      r.Fields.Shares,
		ParseMethod: r.Method,
		Success:     r.Success,
		ParsedAt:    a.now().UTC(),
	}
}

// Failure builds the record returned when the page could not be fetched.
func (a *Aggregator) Failure(url string, pageType entity.PageType, err error) *entity.ExtractedRecord {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &entity.ExtractedRecord{
		URL:         url,
		Type:        pageType,
		ParseMethod: entity.ParseMethodError,
		Success:     false,
		ParsedAt:    a.now().UTC(),
		Error:       msg,
	}
}
