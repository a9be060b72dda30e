package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/boardblog/blog"
	"github.com/pevans/boardblog/scraper"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrSkip marks an article that could not be extracted and must be left
// out of the run.
var ErrSkip = errors.New("article skipped")

var datePattern = regexp.MustCompile(`(\d{4})[-./](\d{1,2})[-./](\d{1,2})`)

// Elements that end a visual line in the body container.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.Pre: true, atom.Table: true, atom.Ul: true, atom.Ol: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Blockquote: true,
}

// RawArticle holds the fields extracted from one article page. Date is
// always YYYY.MM.DD.
type RawArticle struct {
	Title       string
	Date        string
	Body        string
	Attachments []blog.Attachment
	SourceURL   string
}

// Fetcher retrieves article pages and extracts their raw fields.
type Fetcher struct {
	baseURL  string
	config   scraper.ArticleConfig
	download *regexp.Regexp
	opts     options
}

// NewFetcher creates a fetcher resolving refs against baseURL.
func NewFetcher(baseURL string, config scraper.ArticleConfig, opts ...Option) (*Fetcher, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var download *regexp.Regexp
	if config.DownloadPattern != "" {
		re, err := regexp.Compile(config.DownloadPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid download pattern: %w", err)
		}
		download = re
	}

	return &Fetcher{
		baseURL:  baseURL,
		config:   config,
		download: download,
		opts:     newOptions(opts),
	}, nil
}

// Fetch retrieves and extracts one article. A page without a title yields
// an error wrapping ErrSkip.
func (f *Fetcher) Fetch(ctx context.Context, ref Ref) (*RawArticle, error) {
	sourceURL, err := ref.Resolve(f.baseURL)
	if err != nil {
		return nil, err
	}

	f.opts.logger.Info("fetching article", "url", sourceURL)

	doc, err := FetchHTML(ctx, f.opts.client, sourceURL, f.opts.userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch article: %w", err)
	}

	return f.Extract(doc, sourceURL)
}

// Extract reads the article fields from a parsed page. Missing date, body,
// and attachments fall back to the run date, the unavailable placeholder,
// and an empty list.
func (f *Fetcher) Extract(doc *goquery.Document, sourceURL string) (*RawArticle, error) {
	titleNode := doc.Find(f.config.TitleSelector).First()
	if titleNode.Length() == 0 {
		return nil, fmt.Errorf("%w: no title node at %s", ErrSkip, sourceURL)
	}
	title := strings.Join(strings.Fields(titleNode.Text()), " ")
	if title == "" {
		return nil, fmt.Errorf("%w: empty title at %s", ErrSkip, sourceURL)
	}

	article := &RawArticle{
		Title:       title,
		Date:        f.extractDate(doc),
		Body:        blog.ContentUnavailable,
		Attachments: f.extractAttachments(doc, sourceURL),
		SourceURL:   sourceURL,
	}

	if content := doc.Find(f.config.ContentSelector).First(); content.Length() > 0 {
		article.Body = BodyText(content)
	}

	return article, nil
}

// extractDate scans the metadata nodes for the first date-like token.
func (f *Fetcher) extractDate(doc *goquery.Document) string {
	if f.config.DateSelector != "" {
		var date string
		doc.Find(f.config.DateSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			date = NormalizeDate(s.Text())
			return date == ""
		})
		if date != "" {
			return date
		}
	}
	return f.opts.now().Format(blog.DateLayout)
}

func (f *Fetcher) extractAttachments(doc *goquery.Document, sourceURL string) []blog.Attachment {
	attachments := []blog.Attachment{}
	if f.config.AttachmentSelector == "" {
		return attachments
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		return attachments
	}

	doc.Find(f.config.AttachmentSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		if f.download != nil && !f.download.MatchString(href) {
			return
		}

		u, err := base.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}

		name := strings.Join(strings.Fields(s.Text()), " ")
		if name == "" {
			name = u.String()
		}
		attachments = append(attachments, blog.Attachment{Name: name, URL: u.String()})
	})

	return attachments
}

// NormalizeDate returns the first YYYY-MM-DD style token in text as
// YYYY.MM.DD, or "" when there is none.
func NormalizeDate(text string) string {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%s.%02d.%02d", m[1], month, day)
}

// BodyText renders the visible text of the content container, turning
// <br> and the end of block elements into newlines.
func BodyText(s *goquery.Selection) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Br:
				b.WriteString("\n")
				return
			case atom.Script, atom.Style:
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteString("\n")
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	return strings.TrimSpace(b.String())
}
