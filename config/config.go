package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/pevans/boardblog/blocks"
	"github.com/pevans/boardblog/discovery"
	"github.com/pevans/boardblog/scraper"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete run configuration. It is passed explicitly to
// every component at construction.
type Config struct {
	Board      BoardConfig           `yaml:"board"`
	Selectors  scraper.ScraperConfig `yaml:"selectors"`
	Output     OutputConfig          `yaml:"output"`
	Ledger     LedgerConfig          `yaml:"ledger"`
	HTTP       HTTPConfig            `yaml:"http"`
	Classifier ClassifierConfig      `yaml:"classifier"`
	Log        LogConfig             `yaml:"log"`
}

// BoardConfig describes the remote bulletin board.
type BoardConfig struct {
	BaseURL       string `yaml:"base_url"`
	ListURL       string `yaml:"list_url"`
	DiscoveryMode string `yaml:"discovery_mode"` // "list" or "feed"
	FeedURL       string `yaml:"feed_url,omitempty"`
	MaxArticles   int    `yaml:"max_articles"` // 0 means no limit
}

// OutputConfig describes the generated blog.
type OutputConfig struct {
	BlogDir  string `yaml:"blog_dir"`
	SiteURL  string `yaml:"site_url,omitempty"`
	SiteName string `yaml:"site_name"`
	Feed     bool   `yaml:"feed"`
}

// LedgerConfig locates the SQLite run ledger.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// HTTPConfig tunes retrieval.
type HTTPConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	PageDelay time.Duration `yaml:"page_delay"`
}

// ClassifierConfig tunes block classification.
type ClassifierConfig struct {
	SplitMode      string `yaml:"split_mode"` // "lines" or "paragraphs"
	ShortThreshold int    `yaml:"short_threshold"`
}

// LogConfig sets the log level: debug, info, warn, or error.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration for the farmland bank press board.
func Default() *Config {
	return &Config{
		Board: BoardConfig{
			BaseURL:       "https://www.fbo.or.kr",
			ListURL:       "https://www.fbo.or.kr/info/bbs/RepdList.do?menuId=080030&schNtceClsfCd=B01010200",
			DiscoveryMode: scraper.ModeList,
			MaxArticles:   10,
		},
		Selectors: scraper.DefaultScraperConfig(),
		Output: OutputConfig{
			BlogDir:  "blog",
			SiteName: "보도자료 블로그",
			Feed:     true,
		},
		Ledger: LedgerConfig{
			Path: "boardblog.db",
		},
		HTTP: HTTPConfig{
			UserAgent: discovery.DefaultUserAgent,
			Timeout:   discovery.DefaultTimeout,
			PageDelay: time.Second,
		},
		Classifier: ClassifierConfig{
			SplitMode:      blocks.SplitLines,
			ShortThreshold: blocks.DefaultShortThreshold,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Scraper returns the selector configuration with the board's discovery
// mode applied.
func (c *Config) Scraper() scraper.ScraperConfig {
	s := c.Selectors
	s.DiscoveryMode = c.Board.DiscoveryMode
	return s
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if err := validateURL("board.base_url", c.Board.BaseURL); err != nil {
		return err
	}
	if err := validateURL("board.list_url", c.Board.ListURL); err != nil {
		return err
	}

	switch c.Board.DiscoveryMode {
	case scraper.ModeList:
	case scraper.ModeFeed:
		if c.Board.FeedURL != "" {
			if err := validateURL("board.feed_url", c.Board.FeedURL); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown discovery mode %q", ErrInvalidConfig, c.Board.DiscoveryMode)
	}

	if c.Board.MaxArticles < 0 {
		return fmt.Errorf("%w: board.max_articles must be non-negative", ErrInvalidConfig)
	}
	if c.Selectors.ListConfig.MaxPages < 0 {
		return fmt.Errorf("%w: selectors.list.max_pages must be non-negative", ErrInvalidConfig)
	}
	if c.Selectors.ArticleConfig.TitleSelector == "" {
		return fmt.Errorf("%w: selectors.article.title_selector is required", ErrInvalidConfig)
	}

	if c.Output.BlogDir == "" {
		return fmt.Errorf("%w: output.blog_dir is required", ErrInvalidConfig)
	}
	if c.Output.SiteURL != "" {
		if err := validateURL("output.site_url", c.Output.SiteURL); err != nil {
			return err
		}
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("%w: ledger.path is required", ErrInvalidConfig)
	}

	if c.HTTP.Timeout < 0 || c.HTTP.PageDelay < 0 {
		return fmt.Errorf("%w: http durations must be non-negative", ErrInvalidConfig)
	}

	switch c.Classifier.SplitMode {
	case blocks.SplitLines, blocks.SplitParagraphs:
	default:
		return fmt.Errorf("%w: unknown split mode %q", ErrInvalidConfig, c.Classifier.SplitMode)
	}
	if c.Classifier.ShortThreshold < 0 {
		return fmt.Errorf("%w: classifier.short_threshold must be non-negative", ErrInvalidConfig)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http or https URL, got %q", ErrInvalidConfig, field, raw)
	}
	return nil
}

// ParseLevel maps a level name to a slog level. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, name)
}
