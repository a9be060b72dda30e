package blog

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"time"
)

// DateLayout is the normalized article date format.
const DateLayout = "2006.01.02"

// Bulletin dates carry no zone; they are local to the publishing board.
var boardZone = time.FixedZone("KST", 9*60*60)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate,omitempty"`
	Description string  `xml:"description"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RenderFeed renders an RSS 2.0 document for the listing entries. The
// build date is the newest entry date rather than the wall clock, so equal
// input yields equal bytes.
func RenderFeed(meta SiteMeta, entries []ListingEntry) ([]byte, error) {
	channel := rssChannel{
		Title:       meta.Name,
		Link:        meta.URL,
		Description: meta.Name,
		Language:    "ko",
		Items:       make([]rssItem, 0, len(entries)),
	}

	var newest time.Time
	for _, e := range entries {
		link, err := entryLink(meta.URL, e)
		if err != nil {
			return nil, err
		}

		item := rssItem{
			Title:       e.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: "true", Value: link},
			Description: e.Preview,
		}
		if published, err := time.ParseInLocation(DateLayout, e.Date, boardZone); err == nil {
			item.PubDate = published.Format(time.RFC1123Z)
			if published.After(newest) {
				newest = published
			}
		}
		channel.Items = append(channel.Items, item)
	}
	if !newest.IsZero() {
		channel.LastBuildDate = newest.Format(time.RFC1123Z)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(rssDocument{Version: "2.0", Channel: channel}); err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// entryLink resolves an entry's artifact against the site URL. Without a
// site URL the link stays relative.
func entryLink(siteURL string, e ListingEntry) (string, error) {
	if siteURL == "" {
		return e.Href(), nil
	}
	link, err := url.JoinPath(siteURL, e.Href())
	if err != nil {
		return "", fmt.Errorf("failed to build link for %s: %w", e.Identifier, err)
	}
	return link, nil
}
