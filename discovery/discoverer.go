package discovery

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pevans/boardblog/scraper"
)

// Ref is a reference to one article: the path and query of its view page,
// relative to the board's base URL.
type Ref string

// Resolve returns the absolute article URL for ref against baseURL.
func (r Ref) Resolve(baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	u, err := base.Parse(string(r))
	if err != nil {
		return "", fmt.Errorf("failed to resolve ref %s: %w", r, err)
	}
	return u.String(), nil
}

var pageNumberPattern = regexp.MustCompile(`\d+`)

// Discoverer walks the board's listing pages (or its RSS feed) and returns
// article references in page-then-position order.
type Discoverer struct {
	listURL string
	config  scraper.ScraperConfig
	pattern *regexp.Regexp
	opts    options
}

// NewDiscoverer creates a discoverer for the listing at listURL.
func NewDiscoverer(listURL string, config scraper.ScraperConfig, opts ...Option) (*Discoverer, error) {
	if _, err := url.Parse(listURL); err != nil {
		return nil, fmt.Errorf("invalid list URL: %w", err)
	}

	pattern, err := regexp.Compile(config.ListConfig.ArticlePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid article pattern: %w", err)
	}

	return &Discoverer{
		listURL: listURL,
		config:  config,
		pattern: pattern,
		opts:    newOptions(opts),
	}, nil
}

// Discover returns every article reference currently listed. Duplicates on
// the board are kept. Any fetch or parse failure is logged and yields an
// empty result.
func (d *Discoverer) Discover(ctx context.Context) []Ref {
	var (
		refs []Ref
		err  error
	)

	switch d.config.DiscoveryMode {
	case scraper.ModeFeed:
		refs, err = d.discoverFeed(ctx)
	default:
		refs, err = d.discoverList(ctx)
	}

	if err != nil {
		d.opts.logger.Error("discovery failed", "url", d.listURL, "error", err)
		return nil
	}

	d.opts.logger.Info("discovery finished", "articles", len(refs))
	return refs
}

func (d *Discoverer) discoverList(ctx context.Context) ([]Ref, error) {
	list := d.config.ListConfig
	d.opts.logger.Info("scanning list", "url", d.listURL)

	first, err := FetchHTML(ctx, d.opts.client, d.listURL, d.opts.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch list page 1: %w", err)
	}

	total := PageCount(first, list.PageCountSelector)
	if list.MaxPages > 0 && total > list.MaxPages {
		total = list.MaxPages
	}

	refs := d.collect(first, d.listURL)
	d.opts.logger.Info("links found", "page", 1, "pages", total, "links", len(refs))

	for page := 2; page <= total; page++ {
		if err := sleep(ctx, d.opts.delay); err != nil {
			return nil, err
		}

		pageURL, err := PageURL(d.listURL, list.PageParam, page)
		if err != nil {
			return nil, err
		}

		doc, err := FetchHTML(ctx, d.opts.client, pageURL, d.opts.userAgent)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch list page %d: %w", page, err)
		}

		pageRefs := d.collect(doc, pageURL)
		d.opts.logger.Info("links found", "page", page, "pages", total, "links", len(pageRefs))
		refs = append(refs, pageRefs...)
	}

	return refs, nil
}

// collect selects article anchors on one listing page.
func (d *Discoverer) collect(doc *goquery.Document, pageURL string) []Ref {
	var refs []Ref
	doc.Find(d.config.ListConfig.ArticleSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !d.pattern.MatchString(href) {
			return
		}

		ref, err := NormalizeRef(pageURL, href)
		if err != nil {
			d.opts.logger.Warn("ignoring article link", "href", href, "error", err)
			return
		}
		refs = append(refs, ref)
	})
	return refs
}

func (d *Discoverer) discoverFeed(ctx context.Context) ([]Ref, error) {
	feedURL := d.opts.feedURL
	if feedURL == "" {
		feedURL = d.listURL
	}
	d.opts.logger.Info("reading feed", "url", feedURL)

	body, err := get(ctx, d.opts.client, feedURL, d.opts.userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	var refs []Ref
	for _, item := range feed.Items {
		if item.Link == "" || !d.pattern.MatchString(item.Link) {
			continue
		}
		ref, err := NormalizeRef(feedURL, item.Link)
		if err != nil {
			d.opts.logger.Warn("ignoring feed item", "link", item.Link, "error", err)
			continue
		}
		refs = append(refs, ref)
	}
	d.opts.logger.Info("links found", "feed", feed.Title, "links", len(refs))

	return refs, nil
}

// PageCount reads the total page count from the indicator matched by
// selector: the last integer in its text, e.g. 12 in "1 / 12". A missing
// or unreadable indicator means a single page.
func PageCount(doc *goquery.Document, selector string) int {
	if selector == "" {
		return 1
	}

	node := doc.Find(selector).First()
	if node.Length() == 0 {
		return 1
	}

	numbers := pageNumberPattern.FindAllString(node.Text(), -1)
	if len(numbers) == 0 {
		return 1
	}

	total, err := strconv.Atoi(numbers[len(numbers)-1])
	if err != nil || total < 1 {
		return 1
	}
	return total
}

// PageURL returns listURL with the page query parameter set.
func PageURL(listURL, param string, page int) (string, error) {
	u, err := url.Parse(listURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse list URL: %w", err)
	}
	if param == "" {
		param = "pageIndex"
	}

	q := u.Query()
	q.Set(param, strconv.Itoa(page))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// NormalizeRef resolves href against the page it was found on and keeps
// only the path and query.
func NormalizeRef(pageURL, href string) (Ref, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %w", err)
	}

	u, err := base.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("failed to parse href: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	ref := u.EscapedPath()
	if u.RawQuery != "" {
		ref += "?" + u.RawQuery
	}
	return Ref(ref), nil
}
