package boardblog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pevans/boardblog/blocks"
	"github.com/pevans/boardblog/blog"
	"github.com/pevans/boardblog/discovery"
	"github.com/pevans/boardblog/identity"
	"github.com/pevans/boardblog/ledger"
)

// RefSource lists the articles currently on the board.
type RefSource interface {
	Discover(ctx context.Context) []discovery.Ref
}

// ArticleSource retrieves one article. An error wrapping discovery.ErrSkip
// drops the article without counting it as a failure.
type ArticleSource interface {
	Fetch(ctx context.Context, ref discovery.Ref) (*discovery.RawArticle, error)
}

// Ledger persists published articles and runs across invocations.
type Ledger interface {
	identity.Claims
	BeginRun() (*ledger.Run, error)
	FinishRun(runID uuid.UUID, counts ledger.Counts) error
	Upsert(rec ledger.Record) error
}

// ArticleError records a failed article without aborting the run.
type ArticleError struct {
	Ref discovery.Ref
	Err error
}

func (e ArticleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

func (e ArticleError) Unwrap() error {
	return e.Err
}

// RunResult summarizes one run.
type RunResult struct {
	RunID      uuid.UUID
	Discovered int
	Written    int
	Skipped    int
	Failed     int
	Collisions int
	// Entries is the listing in processing order, one per identifier.
	Entries []blog.ListingEntry
	Errors  []ArticleError
}

// Counts converts the result for the ledger.
func (r *RunResult) Counts() ledger.Counts {
	return ledger.Counts{
		Discovered: r.Discovered,
		Written:    r.Written,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		Collisions: r.Collisions,
	}
}

// Pipeline turns board articles into blog artifacts: discover, then for
// each ref fetch, classify, assign an identifier, and write; finally
// rebuild the listing.
type Pipeline struct {
	refs        RefSource
	articles    ArticleSource
	classifier  *blocks.Classifier
	site        *blog.Site
	ledger      Ledger
	maxArticles int
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLedger records articles and runs, and keeps identifiers stable
// across runs.
func WithLedger(l Ledger) Option {
	return func(p *Pipeline) {
		p.ledger = l
	}
}

// WithMaxArticles processes at most n discovered refs. 0 means no limit.
func WithMaxArticles(n int) Option {
	return func(p *Pipeline) {
		p.maxArticles = n
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// New creates a pipeline from its collaborators.
func New(refs RefSource, articles ArticleSource, classifier *blocks.Classifier, site *blog.Site, opts ...Option) *Pipeline {
	p := &Pipeline{
		refs:       refs,
		articles:   articles,
		classifier: classifier,
		site:       site,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Run performs one sequential pass over the board. Per-article failures are
// collected in the result; only a failure to write the listing or to start
// the run record is returned as an error. When no article is produced the
// listing is left untouched.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{RunID: uuid.New()}

	var claims identity.Claims
	if p.ledger != nil {
		run, err := p.ledger.BeginRun()
		if err != nil {
			return nil, fmt.Errorf("failed to begin run: %w", err)
		}
		result.RunID = run.RunID
		claims = p.ledger
	}
	defer p.finish(result)

	p.logger.Info("run started", "run_id", result.RunID)

	refs := p.refs.Discover(ctx)
	result.Discovered = len(refs)
	if p.maxArticles > 0 && len(refs) > p.maxArticles {
		p.logger.Info("limiting articles", "discovered", len(refs), "max", p.maxArticles)
		refs = refs[:p.maxArticles]
	}

	registry := identity.NewRegistry(claims)
	listed := make(map[string]bool)

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry, assignment, err := p.process(ctx, result.RunID, registry, ref)
		switch {
		case errors.Is(err, discovery.ErrSkip):
			result.Skipped++
			p.logger.Warn("skipped article", "ref", ref, "reason", err)
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, ArticleError{Ref: ref, Err: err})
			p.logger.Error("failed to process article", "ref", ref, "error", err)
		case listed[entry.Identifier]:
			p.logger.Debug("duplicate ref, already listed", "ref", ref, "identifier", entry.Identifier)
		default:
			listed[entry.Identifier] = true
			result.Written++
			if assignment.Collided {
				result.Collisions++
			}
			result.Entries = append(result.Entries, entry)
		}
	}

	if len(result.Entries) == 0 {
		p.logger.Info("no articles generated, listing left untouched")
		return result, nil
	}

	if err := p.site.WriteIndex(result.Entries); err != nil {
		return result, err
	}
	p.logger.Info("index written", "entries", len(result.Entries), "dir", p.site.Dir())

	if err := p.site.WriteFeed(result.Entries); err != nil {
		return result, err
	}

	return result, nil
}

// process handles a single ref from fetch to persisted artifact.
func (p *Pipeline) process(ctx context.Context, runID uuid.UUID, registry *identity.Registry, ref discovery.Ref) (blog.ListingEntry, identity.Assignment, error) {
	raw, err := p.articles.Fetch(ctx, ref)
	if err != nil {
		return blog.ListingEntry{}, identity.Assignment{}, err
	}

	content := p.classifier.Classify(raw.Body)
	if len(content) == 0 {
		content = blog.PlaceholderBlocks()
	}

	assignment, err := registry.Assign(raw.SourceURL, raw.Title)
	if err != nil {
		return blog.ListingEntry{}, identity.Assignment{}, err
	}
	if assignment.Collided {
		p.logger.Warn("identifier collision",
			"base", assignment.Base, "identifier", assignment.Identifier, "url", raw.SourceURL)
	}

	article := blog.Article{
		Identifier:  assignment.Identifier,
		Title:       raw.Title,
		Date:        raw.Date,
		Blocks:      content,
		Attachments: raw.Attachments,
		SourceURL:   raw.SourceURL,
	}

	path, err := p.site.WriteArticle(article)
	if err != nil {
		return blog.ListingEntry{}, assignment, err
	}
	p.logger.Info("generated article", "path", path, "blocks", len(content))

	if p.ledger != nil {
		rec := ledger.Record{
			SourceURL:  raw.SourceURL,
			Identifier: assignment.Identifier,
			Title:      raw.Title,
			Date:       raw.Date,
			RunID:      runID,
		}
		if err := p.ledger.Upsert(rec); err != nil {
			p.logger.Warn("failed to record article", "url", raw.SourceURL, "error", err)
		}
	}

	return blog.NewListingEntry(article), assignment, nil
}

func (p *Pipeline) finish(result *RunResult) {
	p.logger.Info("run finished",
		"run_id", result.RunID,
		"discovered", result.Discovered,
		"written", result.Written,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"collisions", result.Collisions,
	)

	if p.ledger == nil {
		return
	}
	if err := p.ledger.FinishRun(result.RunID, result.Counts()); err != nil {
		p.logger.Warn("failed to record run", "run_id", result.RunID, "error", err)
	}
}
