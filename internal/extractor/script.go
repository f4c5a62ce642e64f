package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/engagement-scraper/internal/entity"
)

const interactionMarker = "interactInfo"

var (
	likedCountPattern     = counterPattern("likedCount")
	collectedCountPattern = counterPattern("collectedCount")
	commentCountPattern   = counterPattern("commentCount")
	shareCountPattern     = counterPattern("shareCount")
)

// counterPattern matches `"key":"1.2万"`, `"key":120`, `"key":"1,024"` and
// the unquoted-key variants found in minified bundles. Commas are only taken
// as thousands separators. The last group captures the character after a
// magnitude suffix so a k that starts the next identifier can be rejected.
func counterPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`"?\b` + key + `"?\s*:\s*"?([0-9]+(?:,[0-9]{3})*(?:\.[0-9]+)?)(?:\s*([万kK]))?([A-Za-z0-9_$]?)`)
}

// counterText returns the matched value with its magnitude suffix, if any.
func counterText(p *regexp.Regexp, block string) (string, bool) {
	m := p.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	value, suffix, next := m[1], m[2], m[3]
	if next != "" && suffix != "万" {
		// In "120 keyword" the k starts the next token.
		suffix = ""
	}
	return value + suffix, true
}

// ScriptPatternStrategy pattern-matches counters in the first inline script
// that mentions interaction data.
type ScriptPatternStrategy struct{}

func (ScriptPatternStrategy) Method() entity.ParseMethod { return entity.ParseMethodScriptRegex }

func (ScriptPatternStrategy) Attempt(c *Context) Outcome {
	var block string
	c.Document().Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, interactionMarker) {
			block = text
			return false
		}
		return true
	})
	if block == "" {
		return Outcome{}
	}

	var out Outcome
	match := func(p *regexp.Regexp, dst *int64) {
		if text, ok := counterText(p, block); ok {
			*dst = Normalize(text)
			out.Success = true
		}
	}
	match(likedCountPattern, &out.Fields.Likes)
	match(collectedCountPattern, &out.Fields.Collections)
	match(commentCountPattern, &out.Fields.Comments)
	match(shareCountPattern, &out.Fields.Shares)
	return out
}
