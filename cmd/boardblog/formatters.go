package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/pevans/boardblog/ledger"
)

const (
	identifierWidth = 36
	titleWidth      = 44
)

// printRecordTable prints ledger records as aligned columns. Widths are
// measured in terminal cells so Hangul titles line up.
func printRecordTable(w io.Writer, records []ledger.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No articles recorded.")
		return
	}

	header := fmt.Sprintf("%-10s  %s  %s  %s", "DATE",
		cell("IDENTIFIER", identifierWidth), cell("TITLE", titleWidth), "UPDATED")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", runewidth.StringWidth(header)))

	for _, rec := range records {
		fmt.Fprintf(w, "%-10s  %s  %s  %s\n",
			rec.Date,
			cell(rec.Identifier, identifierWidth),
			cell(rec.Title, titleWidth),
			rec.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
}

// cell truncates s to width cells and pads it on the right.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "..."), width)
}
