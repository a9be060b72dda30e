package blocks

import (
	"regexp"
	"strings"
)

const (
	markOpen  = `<span class="hl">`
	markClose = `</span>`
)

var (
	datePattern = regexp.MustCompile(
		`\d{4}-\d{1,2}-\d{1,2}|\d{4}\.\d{1,2}\.\d{1,2}|\d{4}년\s?\d{1,2}월(?:\s?\d{1,2}일)?`)
	amountPattern = regexp.MustCompile(
		`\d[\d,]*(?:\.\d+)?\s?(?:[조억천만백]+\s?)?원|\d+(?:\.\d+)?%`)
	markPattern = regexp.MustCompile(regexp.QuoteMeta(markOpen) + `.*?` + regexp.QuoteMeta(markClose))
)

// Highlight wraps date tokens and then amount/percentage tokens in the
// highlight marker. Text already inside a marker is left alone, so the
// function is idempotent.
func Highlight(text string) string {
	text = markOutside(text, datePattern)
	return markOutside(text, amountPattern)
}

// markOutside wraps matches of re that fall between existing markers.
func markOutside(text string, re *regexp.Regexp) string {
	var b strings.Builder
	last := 0
	for _, loc := range markPattern.FindAllStringIndex(text, -1) {
		b.WriteString(re.ReplaceAllString(text[last:loc[0]], markOpen+"$0"+markClose))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(re.ReplaceAllString(text[last:], markOpen+"$0"+markClose))
	return b.String()
}
