package discovery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// DefaultUserAgent identifies the crawler to the board.
const DefaultUserAgent = "boardblog/1.0 (bulletin board to static blog)"

// DefaultTimeout bounds a single page retrieval.
const DefaultTimeout = 10 * time.Second

// ErrHTTPStatus is returned when the board answers with anything but 200.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// NewHTTPClient creates the client used for list, feed, and article
// retrieval. A zero timeout uses DefaultTimeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// get performs a GET and returns a body decoded to UTF-8 from the declared
// or sniffed charset. The caller closes the returned body.
func get(ctx context.Context, client *http.Client, pageURL, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return readCloser{Reader: body, Closer: resp.Body}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// FetchHTML fetches and parses an HTML page.
func FetchHTML(ctx context.Context, client *http.Client, pageURL, userAgent string) (*goquery.Document, error) {
	body, err := get(ctx, client, pageURL, userAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, nil
}
