// Package blocks turns the raw body text of a bulletin article into an
// ordered sequence of typed, pre-rendered content blocks.
package blocks

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Kind identifies the role of a content block.
type Kind int

const (
	Summary Kind = iota
	Heading
	Paragraph
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Summary:
		return "summary"
	case Heading:
		return "heading"
	case Paragraph:
		return "paragraph"
	default:
		return "unknown"
	}
}

// Block is one classified unit of article body text. Text is HTML: source
// text is escaped, and highlight and line-break markup may be embedded.
type Block struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Plain returns the block text with markup removed and entities decoded.
func (b Block) Plain() string {
	text := strings.ReplaceAll(b.Text, lineBreak, " ")
	return html.UnescapeString(StripTags(text))
}

// Segmentation policies.
const (
	SplitLines      = "lines"
	SplitParagraphs = "paragraphs"
)

// DefaultShortThreshold is the visible length below which an unterminated
// line reads as a heading.
const DefaultShortThreshold = 30

const lineBreak = "<br>"

var (
	breakTagPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
	blankLinePattern = regexp.MustCompile(`\n[ \t]*\n`)
	tagPattern       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

	// Leading glyphs used as section markers in official documents.
	markerPattern      = regexp.MustCompile(`^(?:[□■○●◎◇◆▶▷►▪•·※\-–]|\d{1,2}[.)](?:\s|$)|[\[(<〈《【「『])`)
	stripMarkerPattern = regexp.MustCompile(`^(?:[□■○●◎◇◆▶▷►▪•·※\-–]+|\d{1,2}[.)])\s*`)
)

// Rule is one row of the classification decision table. Rules are
// evaluated in order and the first match wins.
type Rule struct {
	Name  string
	Kind  Kind
	Match func(visible string) bool
}

// DefaultRules returns the decision table used for every block after the
// first. A block no rule matches is a Paragraph.
func DefaultRules(shortThreshold int) []Rule {
	return []Rule{
		{
			Name:  "leading-marker",
			Kind:  Heading,
			Match: HasLeadingMarker,
		},
		{
			Name: "short-unterminated",
			Kind: Heading,
			Match: func(visible string) bool {
				return utf8.RuneCountInString(visible) < shortThreshold && !endsTerminated(visible)
			},
		},
	}
}

// Classifier converts raw body text into content blocks. It holds no state
// between calls.
type Classifier struct {
	splitMode      string
	shortThreshold int
	rules          []Rule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSplitMode sets the segmentation policy (SplitLines or
// SplitParagraphs).
func WithSplitMode(mode string) Option {
	return func(c *Classifier) {
		c.splitMode = mode
	}
}

// WithShortThreshold sets the visible length below which an unterminated
// block is classified as a heading.
func WithShortThreshold(n int) Option {
	return func(c *Classifier) {
		c.shortThreshold = n
	}
}

// NewClassifier creates a classifier splitting on single newlines with the
// default short-text threshold.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		splitMode:      SplitLines,
		shortThreshold: DefaultShortThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rules = DefaultRules(c.shortThreshold)
	return c
}

// Rules returns the decision table in evaluation order.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// KindOf classifies a non-leading block by its visible text and returns
// the name of the rule that decided it ("" for the Paragraph fallback).
func (c *Classifier) KindOf(visible string) (Kind, string) {
	for _, rule := range c.rules {
		if rule.Match(visible) {
			return rule.Kind, rule.Name
		}
	}
	return Paragraph, ""
}

// Classify converts raw body text into an ordered block sequence. The first
// block is always the Summary. Empty or whitespace-only input yields nil.
func (c *Classifier) Classify(raw string) []Block {
	segments := Segment(Normalize(raw), c.splitMode)

	var out []Block
	for _, visible := range segments {
		if len(out) == 0 {
			out = append(out, Block{Kind: Summary, Text: renderProse(visible)})
			continue
		}

		kind, _ := c.KindOf(visible)
		switch kind {
		case Heading:
			text := StripMarker(visible)
			if text == "" {
				continue
			}
			out = append(out, Block{Kind: Heading, Text: html.EscapeString(text)})
		default:
			out = append(out, Block{Kind: Paragraph, Text: renderProse(visible)})
		}
	}

	return out
}

// Normalize strips carriage returns, turns literal line-break tags into
// newlines and trims surrounding whitespace.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r", "")
	text = breakTagPattern.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// Segment splits normalized text into candidate blocks and returns their
// visible text. Blocks that are empty after trimming are dropped.
func Segment(text, mode string) []string {
	var parts []string
	if mode == SplitParagraphs {
		parts = blankLinePattern.Split(text, -1)
	} else {
		parts = strings.Split(text, "\n")
	}

	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		// Paragraph mode keeps soft-wrapped lines together
		visible := strings.Join(strings.Fields(StripTags(part)), " ")
		if visible != "" {
			segments = append(segments, visible)
		}
	}
	return segments
}

// StripTags removes inline HTML tags. Angle-bracketed Hangul such as
// "<사업 개요>" is not a tag and is kept.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// HasLeadingMarker reports whether the text opens with a section marker
// glyph, a short numeral followed by a period, or an opening bracket.
func HasLeadingMarker(visible string) bool {
	return markerPattern.MatchString(visible)
}

// StripMarker removes leading bullet glyphs and numbering. Brackets are
// part of the heading text and are kept.
func StripMarker(visible string) string {
	return strings.TrimSpace(stripMarkerPattern.ReplaceAllString(visible, ""))
}

func endsTerminated(visible string) bool {
	return strings.HasSuffix(visible, ".") || strings.HasSuffix(visible, ",")
}

// renderProse escapes text, highlights dates and amounts, and breaks
// sentences onto their own lines.
func renderProse(visible string) string {
	text := Highlight(html.EscapeString(visible))
	return BreakSentences(text)
}

// BreakSentences replaces every period followed by a space with a period
// followed by a line break.
func BreakSentences(text string) string {
	return strings.ReplaceAll(text, ". ", "."+lineBreak)
}
