// Package identity derives filesystem-safe article identifiers from titles.
package identity

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxLength bounds an identifier in characters, suffix included.
const MaxLength = 50

// fallbackIdentifier is used when a title has no usable characters.
const fallbackIdentifier = "article"

// reservedIdentifiers name pages the site writes itself.
var reservedIdentifiers = []string{"index"}

var (
	leadingTagPattern = regexp.MustCompile(`^(?:\s*(?:\[[^\]]*\]|【[^】]*】))+`)
	bracketPattern    = regexp.MustCompile(`[\[\]{}()<>【】〈〉《》「」『』]`)
	illegalPattern    = regexp.MustCompile(`[\\/:*?"|#%]`)
	spacePattern      = regexp.MustCompile(`\s+`)
	hyphenRunPattern  = regexp.MustCompile(`-{2,}`)
)

// Resolve derives an identifier from an article title: leading bracketed
// tags such as "[보도자료]" are dropped, bracket and path-illegal
// characters are stripped, whitespace becomes hyphens and the result is
// cut to MaxLength characters.
func Resolve(title string) string {
	s := norm.NFC.String(title)
	s = leadingTagPattern.ReplaceAllString(s, "")
	s = bracketPattern.ReplaceAllString(s, "")
	s = illegalPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = spacePattern.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRunPattern.ReplaceAllString(s, "-")

	s = trimEdges(truncate(trimEdges(s), MaxLength))
	if s == "" {
		return fallbackIdentifier
	}
	return s
}

// IsReserved reports whether identifier would name the same file as a
// site page such as the listing. Case is ignored.
func IsReserved(identifier string) bool {
	for _, name := range reservedIdentifiers {
		if strings.EqualFold(identifier, name) {
			return true
		}
	}
	return false
}

// DisplayTitle removes leading bracketed tags and collapses whitespace for
// presentation. A title that is nothing but tags is returned trimmed.
func DisplayTitle(title string) string {
	s := norm.NFC.String(title)
	stripped := strings.Join(strings.Fields(leadingTagPattern.ReplaceAllString(s, "")), " ")
	if stripped == "" {
		return strings.Join(strings.Fields(s), " ")
	}
	return stripped
}

// WithSuffix appends a numeric disambiguator, shortening the base so the
// result still fits MaxLength. n <= 1 returns the base unchanged.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	head := trimEdges(truncate(base, MaxLength-utf8.RuneCountInString(suffix)))
	if head == "" {
		head = fallbackIdentifier
	}
	return head + suffix
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// trimEdges drops hyphens and dots a filename should not start or end with.
func trimEdges(s string) string {
	return strings.Trim(s, "-.")
}
