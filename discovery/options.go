package discovery

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type options struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	feedURL   string
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Discoverer or a Fetcher.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		userAgent: DefaultUserAgent,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = NewHTTPClient(DefaultTimeout)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithDelay sets the pause between successive list page retrievals.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithFeedURL sets the RSS endpoint read in feed discovery mode.
func WithFeedURL(u string) Option {
	return func(o *options) {
		o.feedURL = u
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithClock sets the clock used for the fallback article date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
