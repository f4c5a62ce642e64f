package extractor

import (
	"regexp"
	"strings"

	"github.com/user/engagement-scraper/internal/entity"
)

// siteTitleSuffix matches the site name the platform appends to every title.
var siteTitleSuffix = regexp.MustCompile(`\s*-\s*小红书\s*$`)

// FallbackTitleStrategy recovers only the document title.
type FallbackTitleStrategy struct{}

func (FallbackTitleStrategy) Method() entity.ParseMethod { return entity.ParseMethodBasicFallback }

func (FallbackTitleStrategy) Attempt(c *Context) Outcome {
	title := c.Document().Find("title").First().Text()
	title = strings.TrimSpace(siteTitleSuffix.ReplaceAllString(title, ""))
	return Outcome{
		Fields:  Fields{Title: title},
		Success: title != "",
	}
}
