package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"github.com/user/engagement-scraper/internal/entity"
)

const initialStateMarker = "window.__INITIAL_STATE__"

// EmbeddedStateStrategy reads the application state the server serialises
// into the page as window.__INITIAL_STATE__.
type EmbeddedStateStrategy struct{}

func (EmbeddedStateStrategy) Method() entity.ParseMethod { return entity.ParseMethodInitialState }

func (EmbeddedStateStrategy) Attempt(c *Context) Outcome {
	raw, ok := findInitialState(c)
	if !ok {
		return Outcome{}
	}
	state, ok := parseState(raw)
	if !ok {
		return Outcome{}
	}

	switch c.PageType {
	case entity.PageTypeUser:
		return userOutcome(state)
	default:
		return noteOutcome(state)
	}
}

// findInitialState returns the object literal assigned to the state marker
// in the first inline script that contains it.
func findInitialState(c *Context) (string, bool) {
	var literal string
	var found bool
	c.Document().Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, initialStateMarker)
		if idx < 0 {
			return true
		}
		rest := strings.TrimSpace(text[idx+len(initialStateMarker):])
		if !strings.HasPrefix(rest, "=") {
			return true
		}
		literal, found = objectLiteral(strings.TrimSpace(rest[1:])), true
		return false
	})
	return literal, found
}

// objectLiteral cuts s at the end of its leading {...} value. Strings are
// skipped so braces and semicolons inside them do not end the literal. When
// the braces never balance, everything up to the first statement terminator
// is returned and left for JSON validation to reject.
func objectLiteral(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	if i := strings.IndexByte(s, ';'); i >= 0 {
		return s[:i]
	}
	return s
}

func parseState(literal string) (gjson.Result, bool) {
	literal = replaceUndefined(literal)
	if !gjson.Valid(literal) {
		return gjson.Result{}, false
	}
	return gjson.Parse(literal), true
}

// replaceUndefined rewrites bare undefined tokens to null. String contents
// are copied untouched.
func replaceUndefined(s string) string {
	if !strings.Contains(s, "undefined") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			b.WriteByte(ch)
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if isIdentByte(ch) {
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if word := s[i:j]; word == "undefined" {
				b.WriteString("null")
			} else {
				b.WriteString(word)
			}
			i = j - 1
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func isIdentByte(ch byte) bool {
	return ch == '_' || ch == '$' ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}

// firstValue returns the first entry of a keyed map, or an empty result.
func firstValue(m gjson.Result) gjson.Result {
	var first gjson.Result
	m.ForEach(func(_, value gjson.Result) bool {
		first = value
		return false
	})
	return first
}

func noteOutcome(state gjson.Result) Outcome {
	detail := firstValue(state.Get("note.noteDetailMap")).Get("note")
	if !detail.IsObject() {
		return Outcome{}
	}

	title := detail.Get("title").String()
	if title == "" {
		title = detail.Get("desc").String()
	}
	author := detail.Get("user.nickname").String()
	if author == "" {
		author = detail.Get("user.nickName").String()
	}

	interact := detail.Get("interactInfo")
	likes := interact.Get("likedCount")
	collections := interact.Get("collectedCount")
	comments := interact.Get("commentCount")
	shares := interact.Get("shareCount")

	f := Fields{
		Title:       strings.TrimSpace(title),
		Author:      author,
		AuthorID:    detail.Get("user.userId").String(),
		Likes:       counter(likes),
		Collections: counter(collections),
		Comments:    counter(comments),
		Shares:      counter(shares),
	}
	found := hasIdentity(f) || isCounter(likes) || isCounter(collections) || isCounter(comments) || isCounter(shares)
	return Outcome{Fields: f, Success: found}
}

func userOutcome(state gjson.Result) Outcome {
	detail := state.Get("user.userPageData")
	if !detail.IsObject() {
		return Outcome{}
	}

	info := detail.Get("basicInfo")
	f := Fields{
		Title:    strings.TrimSpace(info.Get("desc").String()),
		Author:   info.Get("nickname").String(),
		AuthorID: info.Get("redId").String(),
	}
	if f.Title == "" {
		f.Title = f.Author
	}

	// Profile pages carry one combined "interaction" total (likes plus
	// collections) rather than per-counter values.
	interaction := false
	detail.Get("interactions").ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() == "interaction" {
			count := item.Get("count")
			f.Likes = counter(count)
			interaction = isCounter(count)
			return false
		}
		return true
	})
	return Outcome{Fields: f, Success: hasIdentity(f) || interaction}
}

func hasIdentity(f Fields) bool {
	return f.Title != "" || f.Author != "" || f.AuthorID != ""
}

// isCounter reports whether r holds a numeric or string counter value.
func isCounter(r gjson.Result) bool {
	return r.Type == gjson.Number || r.Type == gjson.String
}

func counter(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		return Normalize(r.Float())
	case gjson.String:
		return Normalize(r.String())
	default:
		return 0
	}
}
