package blog

import (
	"bytes"
	"testing"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRenderFeed_Parses verifies the feed is valid RSS by parsing it back
func TestRenderFeed_Parses(t *testing.T) {
	entries := []ListingEntry{
		{Identifier: "second", Title: "두 번째 공지", Date: "2024.03.02", Preview: "둘"},
		{Identifier: "first", Title: "첫 번째 공지", Date: "2024.03.01", Preview: "하나"},
	}

	data, err := RenderFeed(testMeta(), entries)
	require.NoError(t, err)

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "농지연금 블로그", feed.Title)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "두 번째 공지", feed.Items[0].Title)
	assert.Equal(t, "https://blog.example.com/blog/second.html", feed.Items[0].Link)
	assert.Equal(t, "둘", feed.Items[0].Description)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.Equal(t, "2024-03-02", feed.Items[0].PublishedParsed.Format("2006-01-02"))
	require.NotNil(t, feed.UpdatedParsed)
	assert.Equal(t, "2024-03-02", feed.UpdatedParsed.Format("2006-01-02"))
}

// TestRenderFeed_Idempotent verifies the feed has no wall-clock content
func TestRenderFeed_Idempotent(t *testing.T) {
	entries := []ListingEntry{{Identifier: "a", Title: "공지", Date: "2024.03.01"}}

	first, err := RenderFeed(testMeta(), entries)
	require.NoError(t, err)
	second, err := RenderFeed(testMeta(), entries)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestRenderFeed_RelativeLinks verifies links without a site URL
func TestRenderFeed_RelativeLinks(t *testing.T) {
	meta := testMeta()
	meta.URL = ""

	data, err := RenderFeed(meta, []ListingEntry{{Identifier: "a", Title: "공지", Date: "bad date"}})
	require.NoError(t, err)

	assert.Contains(t, string(data), "<link>a.html</link>")
	assert.NotContains(t, string(data), "pubDate")
}
