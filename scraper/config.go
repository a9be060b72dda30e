package scraper

// Discovery modes.
const (
	ModeList = "list"
	ModeFeed = "feed"
)

// ScraperConfig defines how to find and extract articles on a bulletin
// board.
type ScraperConfig struct {
	DiscoveryMode string        `yaml:"-" json:"discovery_mode"` // "list" or "feed"
	ListConfig    ListConfig    `yaml:"list" json:"list_config"`
	ArticleConfig ArticleConfig `yaml:"article" json:"article_config"`
}

// ListConfig defines how to discover article links from the paginated
// listing pages.
type ListConfig struct {
	// ArticleSelector selects anchors inside the subject cell of each row.
	ArticleSelector string `yaml:"article_selector" json:"article_selector"`
	// ArticlePattern is a regular expression an anchor href must match to
	// count as an article view link.
	ArticlePattern string `yaml:"article_pattern" json:"article_pattern"`
	// PageCountSelector selects the element holding the total page count,
	// e.g. "1 / 12". The last integer in its text is the total.
	PageCountSelector string `yaml:"page_count_selector,omitempty" json:"page_count_selector,omitempty"`
	// PageParam is the query parameter carrying the page number.
	PageParam string `yaml:"page_param" json:"page_param"`
	MaxPages  int    `yaml:"max_pages" json:"max_pages"` // 0 means every page
}

// ArticleConfig defines how to extract fields from an individual article
// page.
type ArticleConfig struct {
	TitleSelector      string `yaml:"title_selector" json:"title_selector"`
	DateSelector       string `yaml:"date_selector,omitempty" json:"date_selector,omitempty"`
	ContentSelector    string `yaml:"content_selector" json:"content_selector"`
	AttachmentSelector string `yaml:"attachment_selector,omitempty" json:"attachment_selector,omitempty"`
	DownloadPattern    string `yaml:"download_pattern,omitempty" json:"download_pattern,omitempty"`
}

// NewListConfig creates a new list configuration with default values.
func NewListConfig(articleSelector string) ListConfig {
	return ListConfig{
		ArticleSelector: articleSelector,
		ArticlePattern:  `NoticeView\.do`,
		PageParam:       "pageIndex",
	}
}

// DefaultScraperConfig returns selectors matching the Korea Rural
// Community Corporation farmland bank press board.
func DefaultScraperConfig() ScraperConfig {
	list := NewListConfig("td.subject a")
	list.PageCountSelector = ".total_page, .pageInfo, .board_total"

	return ScraperConfig{
		DiscoveryMode: ModeList,
		ListConfig:    list,
		ArticleConfig: ArticleConfig{
			TitleSelector:      "div.viewTit > h4",
			DateSelector:       "div.viewTit li, div.viewTit span, div.viewInfo li",
			ContentSelector:    "div.viewContent",
			AttachmentSelector: "div.viewFile a, ul.file a, div.file a",
			DownloadPattern:    `(?i)(filedown|download)`,
		},
	}
}
