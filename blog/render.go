package blog

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// SiteMeta describes the blog the artifacts belong to.
type SiteMeta struct {
	Name string
	// URL is the public base URL of the blog directory, used for feed links.
	URL string
	// Feed enables the RSS artifact and its link on the listing page.
	Feed bool
}

// FeedFilename is the RSS artifact name relative to the blog directory.
const FeedFilename = "feed.xml"

// IndexFilename is the listing artifact name relative to the blog
// directory.
const IndexFilename = "index.html"

type blockView struct {
	Class string
	HTML  template.HTML
}

type articleView struct {
	SiteName    string
	Title       string
	Date        string
	Blocks      []blockView
	Attachments []Attachment
	SourceURL   string
}

type indexView struct {
	SiteName string
	FeedHref string
	Entries  []ListingEntry
}

// RenderArticle renders the full HTML document for one article.
func RenderArticle(meta SiteMeta, a Article) ([]byte, error) {
	body := a.Blocks
	if len(body) == 0 {
		body = PlaceholderBlocks()
	}

	view := articleView{
		SiteName:    meta.Name,
		Title:       a.DisplayTitle(),
		Date:        a.Date,
		Blocks:      make([]blockView, 0, len(body)),
		Attachments: a.Attachments,
		SourceURL:   a.SourceURL,
	}
	for _, b := range body {
		// Block text is escaped by the classifier; only its own markup remains
		view.Blocks = append(view.Blocks, blockView{
			Class: b.Kind.String(),
			HTML:  template.HTML(b.Text),
		})
	}

	return execute("article.html", view)
}

// Aggregate renders the listing page from entries in the given order. It
// rebuilds the whole document, so equal input always yields equal bytes.
func Aggregate(meta SiteMeta, entries []ListingEntry) ([]byte, error) {
	view := indexView{
		SiteName: meta.Name,
		Entries:  entries,
	}
	if meta.Feed {
		view.FeedHref = FeedFilename
	}

	return execute("index.html", view)
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
