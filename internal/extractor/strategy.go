// Package extractor derives engagement records from fetched page markup.
//
// Each extraction method lives behind the Strategy interface; a Pipeline
// runs them in a fixed order per page type and accepts the first one that
// succeeds.
package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/engagement-scraper/internal/entity"
)

// Context is the content under analysis for one pipeline run. It is built
// once and only read by strategies.
type Context struct {
	Body     string
	PageType entity.PageType
	doc      *goquery.Document
}

// NewContext parses body once so every strategy shares the same document.
func NewContext(body string, pageType entity.PageType) *Context {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		// html parsing only fails on reader errors; fall back to an empty tree.
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return &Context{Body: body, PageType: pageType, doc: doc}
}

// Document returns the parsed markup.
func (c *Context) Document() *goquery.Document {
	return c.doc
}

// Fields is the subset of an ExtractedRecord a strategy can populate.
type Fields struct {
	Title       string
	Author      string
	AuthorID    string
	Likes       int64
	Collections int64
	Comments    int64
	Shares      int64
}

// Outcome is one strategy's attempt.
type Outcome struct {
	Fields  Fields
	Success bool
}

// Strategy is a single extraction method.
type Strategy interface {
	Method() entity.ParseMethod
	Attempt(c *Context) Outcome
}

// DetectPageType classifies a platform URL.
func DetectPageType(rawURL string) entity.PageType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return entity.PageTypeNote
	}
	if strings.Contains(u.Path, "/user/profile/") {
		return entity.PageTypeUser
	}
	return entity.PageTypeNote
}
