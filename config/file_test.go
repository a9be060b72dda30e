package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pevans/boardblog/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: point HOME at an empty temp dir and clear overrides
func isolateEnv(t *testing.T) string {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{EnvListURL, EnvBaseURL, EnvBlogDir, EnvLedgerDSN, EnvLogLevel, EnvMaxArticles} {
		t.Setenv(key, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_NoFile(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg, "should fall back to defaults")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

// TestLoad_HomeFile verifies the file overlays defaults
func TestLoad_HomeFile(t *testing.T) {
	home := isolateEnv(t)
	writeFile(t, filepath.Join(home, ".boardblog", "config.yaml"), `board:
  list_url: "https://board.example.com/bbs/List.do"
  max_articles: 0
output:
  blog_dir: "/srv/blog"
  feed: false
http:
  page_delay: 250ms
classifier:
  split_mode: paragraphs
selectors:
  list:
    max_pages: 3
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://board.example.com/bbs/List.do", cfg.Board.ListURL)
	assert.Equal(t, "https://www.fbo.or.kr", cfg.Board.BaseURL, "unset fields keep defaults")
	assert.Equal(t, 0, cfg.Board.MaxArticles)
	assert.Equal(t, "/srv/blog", cfg.Output.BlogDir)
	assert.False(t, cfg.Output.Feed)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTP.PageDelay)
	assert.Equal(t, "paragraphs", cfg.Classifier.SplitMode)
	assert.Equal(t, 3, cfg.Selectors.ListConfig.MaxPages)
	assert.Equal(t, "td.subject a", cfg.Selectors.ListConfig.ArticleSelector)
}

// TestLoad_EnvOverridesFile verifies environment precedence
func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `output:
  blog_dir: "from-file"
ledger:
  path: "from-file.db"
`)
	t.Setenv(EnvBlogDir, "from-env")
	t.Setenv(EnvMaxArticles, "25")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Output.BlogDir)
	assert.Equal(t, "from-file.db", cfg.Ledger.Path)
	assert.Equal(t, 25, cfg.Board.MaxArticles)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidEnvNumber(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvMaxArticles, "many")

	_, err := Load("")

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "board: [unclosed")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoad_InvalidValue(t *testing.T) {
	isolateEnv(t)
	t.Setenv(EnvListURL, "ftp://board.example.com/list")

	_, err := Load("")

	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestWriteDefaultConfigFile verifies init writes once unless forced and
// the written file loads back to the defaults
func TestWriteDefaultConfigFile(t *testing.T) {
	isolateEnv(t)

	created, err := WriteDefaultConfigFile(false)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = WriteDefaultConfigFile(false)
	require.NoError(t, err)
	assert.False(t, created, "should not overwrite without force")

	created, err = WriteDefaultConfigFile(true)
	require.NoError(t, err)
	assert.True(t, created)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, scraper.ModeList, cfg.Scraper().DiscoveryMode)
}
