package scraper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewListConfig verifies list config creation with defaults
func TestNewListConfig(t *testing.T) {
	config := NewListConfig("td.subject a")

	assert.Equal(t, "td.subject a", config.ArticleSelector)
	assert.Equal(t, "pageIndex", config.PageParam)
	assert.Equal(t, 0, config.MaxPages, "should walk every page by default")
	assert.Empty(t, config.PageCountSelector)
}

// TestDefaultScraperConfig_Patterns verifies the default patterns compile
// and match the board's URLs
func TestDefaultScraperConfig_Patterns(t *testing.T) {
	config := DefaultScraperConfig()
	assert.Equal(t, ModeList, config.DiscoveryMode)

	article, err := regexp.Compile(config.ListConfig.ArticlePattern)
	require.NoError(t, err)
	assert.True(t, article.MatchString("NoticeView.do?menuId=080030&ntceSn=12"))
	assert.False(t, article.MatchString("RepdList.do?pageIndex=2"))

	download, err := regexp.Compile(config.ArticleConfig.DownloadPattern)
	require.NoError(t, err)
	assert.True(t, download.MatchString("/cmm/fms/FileDown.do?atchFileId=1"))
	assert.False(t, download.MatchString("/info/bbs/NoticeView.do"))
}
