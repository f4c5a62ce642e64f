package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/engagement-scraper/internal/entity"
	"github.com/user/engagement-scraper/internal/extractor"
	"go.uber.org/zap"
)

const notePage = `<html><head>
<meta property="og:title" content="Weekend hike">
<meta property="og:xhs:note_like" content="1.2万">
<meta property="og:xhs:note_collect" content="310">
<meta property="og:xhs:note_comment" content="42">
</head><body></body></html>`

func newTestScraper(f *fakeFetcher) Scraper {
	return NewScraperUseCase(f, extractor.NewPipeline(nil), extractor.NewAggregator(), nil, zap.NewNop())
}

func TestScrape_Success(t *testing.T) {
	f := &fakeFetcher{result: &entity.FetchResult{StatusCode: 200, Body: notePage, Attempts: 1}}
	uc := newTestScraper(f)

	rec, err := uc.Scrape(context.Background(), ScrapeRequest{
		URL:        "https://www.xiaohongshu.com/explore/65a1",
		Credential: "web_session=abc",
	})
	require.NoError(t, err)

	assert.True(t, rec.Success)
	assert.Equal(t, entity.PageTypeNote, rec.Type)
	assert.Equal(t, entity.ParseMethodMetaTags, rec.ParseMethod)
	assert.Equal(t, "Weekend hike", rec.Title)
	assert.Equal(t, int64(12000), rec.Likes)
	assert.Equal(t, int64(310), rec.Collections)
	assert.Equal(t, int64(42), rec.Comments)
	assert.False(t, rec.ParsedAt.IsZero())

	require.Len(t, f.got, 1)
	assert.Equal(t, "web_session=abc", f.got[0].Credential)
}

func TestScrape_UserPageType(t *testing.T) {
	f := &fakeFetcher{result: &entity.FetchResult{StatusCode: 200, Body: "<html></html>"}}
	rec, err := newTestScraper(f).Scrape(context.Background(), ScrapeRequest{
		URL: "https://www.xiaohongshu.com/user/profile/5f00",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PageTypeUser, rec.Type)
	assert.False(t, rec.Success)
	assert.Equal(t, entity.ParseMethodBasicFallback, rec.ParseMethod)
}

func TestScrape_FetchFailure(t *testing.T) {
	f := &fakeFetcher{err: entity.ErrFetchFailed}
	rec, err := newTestScraper(f).Scrape(context.Background(), ScrapeRequest{
		URL: "https://www.xiaohongshu.com/explore/65a1",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrFetchFailed)

	require.NotNil(t, rec)
	assert.False(t, rec.Success)
	assert.Equal(t, entity.ParseMethodError, rec.ParseMethod)
	assert.Equal(t, entity.ErrFetchFailed.Error(), rec.Error)
	assert.Zero(t, rec.Likes)
}

func TestScrape_InvalidURL(t *testing.T) {
	f := &fakeFetcher{}
	for _, raw := range []string{"", "not-a-url", "ftp://example.com/a", "https://"} {
		rec, err := newTestScraper(f).Scrape(context.Background(), ScrapeRequest{URL: raw})
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
		assert.Nil(t, rec)
	}
	assert.Empty(t, f.got)
}
