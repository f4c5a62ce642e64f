package extractor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/engagement-scraper/internal/entity"
	"go.uber.org/zap"
)

func extract(t *testing.T, page string, pageType entity.PageType) Result {
	t.Helper()
	return NewPipeline(zap.NewNop()).Extract(NewContext(page, pageType))
}

func TestPipeline_Order(t *testing.T) {
	p := NewPipeline(nil)
	methods := func(pt entity.PageType) []entity.ParseMethod {
		var out []entity.ParseMethod
		for _, s := range p.Order(pt) {
			out = append(out, s.Method())
		}
		return out
	}
	assert.Equal(t, []entity.ParseMethod{
		entity.ParseMethodMetaTags,
		entity.ParseMethodInitialState,
		entity.ParseMethodScriptRegex,
		entity.ParseMethodBasicFallback,
	}, methods(entity.PageTypeNote))
	assert.Equal(t, []entity.ParseMethod{
		entity.ParseMethodInitialState,
		entity.ParseMethodMetaTags,
		entity.ParseMethodBasicFallback,
	}, methods(entity.PageTypeUser))
}

func TestPipeline_FirstSuccessWins(t *testing.T) {
	r := extract(t, metaAndStatePage, entity.PageTypeNote)
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodMetaTags, r.Method)
	assert.Equal(t, int64(88), r.Fields.Likes)
	// Author is only available from the embedded state, which is never consulted.
	assert.Empty(t, r.Fields.Author)
	assert.Empty(t, r.Fields.AuthorID)
}

func TestPipeline_EmbeddedState(t *testing.T) {
	r := extract(t, stateOnlyPage, entity.PageTypeNote)
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodInitialState, r.Method)
	assert.Equal(t, int64(120), r.Fields.Likes)
	assert.Equal(t, int64(40), r.Fields.Collections)
	assert.Equal(t, int64(5), r.Fields.Comments)
	assert.Equal(t, int64(0), r.Fields.Shares)
}

func TestPipeline_MalformedStateFallsThroughToScript(t *testing.T) {
	var r Result
	require.NotPanics(t, func() { r = extract(t, malformedStatePage, entity.PageTypeNote) })
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodScriptRegex, r.Method)
	assert.Equal(t, int64(7), r.Fields.Comments)
}

func TestPipeline_FallbackTitle(t *testing.T) {
	r := extract(t, titleOnlyPage, entity.PageTypeNote)
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodBasicFallback, r.Method)
	assert.Equal(t, "示例笔记", r.Fields.Title)
}

func TestPipeline_TotalFailure(t *testing.T) {
	r := extract(t, emptyPage, entity.PageTypeNote)
	assert.False(t, r.Success)
	assert.Equal(t, entity.ParseMethodBasicFallback, r.Method)
	assert.Equal(t, Fields{}, r.Fields)
}

func TestPipeline_SeededTitleIsKept(t *testing.T) {
	page := `<html><head><meta name="og:title" content="Meta title"></head><body>
<script>window.__INITIAL_STATE__={"note":{"noteDetailMap":{"x":{"note":{"user":{"nickname":"alice","userId":"u1"},"interactInfo":{"likedCount":"3"}}}}}}</script>
</body></html>`
	r := extract(t, page, entity.PageTypeNote)
	assert.Equal(t, entity.ParseMethodInitialState, r.Method)
	assert.Equal(t, "Meta title", r.Fields.Title)
	assert.Equal(t, "alice", r.Fields.Author)
	assert.Equal(t, int64(3), r.Fields.Likes)
}

func TestPipeline_AcceptedValueOverridesSeed(t *testing.T) {
	page := `<html><head><meta name="og:title" content="Meta title"></head><body>
<script>window.__INITIAL_STATE__={"note":{"noteDetailMap":{"x":{"note":{"title":"State title"}}}}}</script>
</body></html>`
	r := extract(t, page, entity.PageTypeNote)
	assert.Equal(t, "State title", r.Fields.Title)
}

func TestPipeline_SeededTitleWithoutFallbackTitle(t *testing.T) {
	page := `<html><head><meta name="og:title" content="Meta title"></head><body></body></html>`
	r := extract(t, page, entity.PageTypeNote)
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodBasicFallback, r.Method)
	assert.Equal(t, "Meta title", r.Fields.Title)
}

func TestPipeline_EmptyStateDetailFallsBackToTitle(t *testing.T) {
	page := `<html><head><title>真实标题 - 小红书</title></head><body>
<script>window.__INITIAL_STATE__={"note":{"noteDetailMap":{"x":{"note":{}}}}}</script>
</body></html>`
	r := extract(t, page, entity.PageTypeNote)
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodBasicFallback, r.Method)
	assert.Equal(t, "真实标题", r.Fields.Title)
}

func TestPipeline_UserPage(t *testing.T) {
	r := extract(t, userPage, entity.PageTypeUser)
	assert.True(t, r.Success)
	assert.Equal(t, entity.ParseMethodInitialState, r.Method)
	assert.Equal(t, "bob", r.Fields.Author)
}

func TestAggregator_Build(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))
	a := &Aggregator{now: func() time.Time { return fixed }}

	rec := a.Build("https://www.xiaohongshu.com/explore/1", entity.PageTypeNote, Result{
		Fields:  Fields{Title: "t", Likes: 1, Shares: 2},
		Method:  entity.ParseMethodMetaTags,
		Success: true,
	})
	assert.Equal(t, &entity.ExtractedRecord{
		URL:         "https://www.xiaohongshu.com/explore/1",
		Type:        entity.PageTypeNote,
		Title:       "t",
		Likes:       1,
		Shares:      2,
		ParseMethod: entity.ParseMethodMetaTags,
		Success:     true,
		ParsedAt:    fixed.UTC(),
	}, rec)
}

func TestAggregator_Failure(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &Aggregator{now: func() time.Time { return fixed }}

	rec := a.Failure("https://example.com/x", entity.PageTypeNote, errors.New("connection refused"))
	assert.False(t, rec.Success)
	assert.Equal(t, entity.ParseMethodError, rec.ParseMethod)
	assert.Equal(t, "connection refused", rec.Error)
	assert.Equal(t, fixed, rec.ParsedAt)
	assert.Zero(t, rec.Likes)
}
