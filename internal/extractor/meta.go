package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/engagement-scraper/internal/entity"
)

const (
	metaTitle   = "og:title"
	metaLike    = "og:xhs:note_like"
	metaCollect = "og:xhs:note_collect"
	metaComment = "og:xhs:note_comment"
	metaShare   = "og:xhs:note_share"
)

// MetaTagStrategy reads the title and engagement counters the platform
// publishes as <meta> elements.
type MetaTagStrategy struct{}

func (MetaTagStrategy) Method() entity.ParseMethod { return entity.ParseMethodMetaTags }

func (MetaTagStrategy) Attempt(c *Context) Outcome {
	var out Outcome
	c.Document().Find("meta").Each(func(i int, s *goquery.Selection) {
		key, _ := s.Attr("property")
		if key == "" {
			key, _ = s.Attr("name")
		}
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		content = strings.TrimSpace(content)

		switch key {
		case metaTitle:
			out.Fields.Title = content
		case metaLike:
			out.Fields.Likes = Normalize(content)
			out.Success = true
		case metaCollect:
			out.Fields.Collections = Normalize(content)
			out.Success = true
		case metaComment:
			out.Fields.Comments = Normalize(content)
			out.Success = true
		case metaShare:
			out.Fields.Shares = Normalize(content)
			out.Success = true
		}
	})
	return out
}
