package boardblog

import (
	"fmt"
	"log/slog"

	"github.com/pevans/boardblog/blocks"
	"github.com/pevans/boardblog/blog"
	"github.com/pevans/boardblog/config"
	"github.com/pevans/boardblog/discovery"
)

// NewFromConfig wires a pipeline for the board described by cfg. store may
// be nil to run without a ledger.
func NewFromConfig(cfg *config.Config, store Ledger, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := discovery.NewHTTPClient(cfg.HTTP.Timeout)
	opts := []discovery.Option{
		discovery.WithHTTPClient(client),
		discovery.WithUserAgent(cfg.HTTP.UserAgent),
		discovery.WithDelay(cfg.HTTP.PageDelay),
		discovery.WithFeedURL(cfg.Board.FeedURL),
		discovery.WithLogger(logger.With("component", "discovery")),
	}

	scraperConfig := cfg.Scraper()

	discoverer, err := discovery.NewDiscoverer(cfg.Board.ListURL, scraperConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create discoverer: %w", err)
	}

	fetcher, err := discovery.NewFetcher(cfg.Board.BaseURL, scraperConfig.ArticleConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	classifier := blocks.NewClassifier(
		blocks.WithSplitMode(cfg.Classifier.SplitMode),
		blocks.WithShortThreshold(cfg.Classifier.ShortThreshold),
	)

	site, err := blog.NewSite(cfg.Output.BlogDir, blog.SiteMeta{
		Name: cfg.Output.SiteName,
		URL:  cfg.Output.SiteURL,
		Feed: cfg.Output.Feed,
	})
	if err != nil {
		return nil, err
	}

	pipelineOpts := []Option{
		WithMaxArticles(cfg.Board.MaxArticles),
		WithLogger(logger),
	}
	if store != nil {
		pipelineOpts = append(pipelineOpts, WithLedger(store))
	}

	return New(discoverer, fetcher, classifier, site, pipelineOpts...), nil
}
