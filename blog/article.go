// Package blog holds the durable outputs of a run: one artifact per
// article, the listing page and the feed.
package blog

import (
	"strings"
	"unicode/utf8"

	"github.com/pevans/boardblog/blocks"
	"github.com/pevans/boardblog/identity"
)

// PreviewLength is the maximum number of characters of summary text shown
// on a listing card before the ellipsis.
const PreviewLength = 60

// ContentUnavailable is shown when an article has no usable body text.
const ContentUnavailable = "내용을 가져올 수 없습니다."

// Attachment is a downloadable file linked from an article.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Article is the processed form of one bulletin article, keyed by
// Identifier.
type Article struct {
	Identifier  string         `json:"identifier"`
	Title       string         `json:"title"`
	Date        string         `json:"date"` // YYYY.MM.DD
	Blocks      []blocks.Block `json:"blocks"`
	Attachments []Attachment   `json:"attachments"`
	SourceURL   string         `json:"source_url"`
}

// DisplayTitle returns the title without leading bracketed tags.
func (a Article) DisplayTitle() string {
	return identity.DisplayTitle(a.Title)
}

// Filename returns the artifact file name relative to the blog directory.
func (a Article) Filename() string {
	return a.Identifier + ".html"
}

// PlaceholderBlocks is the block sequence used when the body classifies to
// nothing.
func PlaceholderBlocks() []blocks.Block {
	return []blocks.Block{{Kind: blocks.Paragraph, Text: ContentUnavailable}}
}

// ListingEntry is one card on the listing page.
type ListingEntry struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Date       string `json:"date"`
	Preview    string `json:"preview"`
}

// Href returns the relative link to the article artifact.
func (e ListingEntry) Href() string {
	return e.Identifier + ".html"
}

// NewListingEntry derives a listing entry from an article. The preview is
// taken from the summary block, or the first block when there is none.
func NewListingEntry(a Article) ListingEntry {
	var source string
	for _, b := range a.Blocks {
		if b.Kind == blocks.Summary {
			source = b.Plain()
			break
		}
	}
	if source == "" && len(a.Blocks) > 0 {
		source = a.Blocks[0].Plain()
	}

	return ListingEntry{
		Identifier: a.Identifier,
		Title:      a.DisplayTitle(),
		Date:       a.Date,
		Preview:    Preview(source),
	}
}

// Preview collapses whitespace and truncates text to PreviewLength
// characters, appending "..." when something was cut.
func Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	return strings.TrimSpace(string([]rune(text)[:PreviewLength])) + "..."
}
