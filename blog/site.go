package blog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/boardblog/identity"
)

// Site writes artifacts into a blog directory: <dir>/<identifier>.html per
// article, plus <dir>/index.html and optionally <dir>/feed.xml.
type Site struct {
	dir  string
	meta SiteMeta
}

// NewSite creates a site writer, creating the directory if it doesn't
// exist.
func NewSite(dir string, meta SiteMeta) (*Site, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blog directory: %w", err)
	}

	return &Site{
		dir:  dir,
		meta: meta,
	}, nil
}

// Dir returns the blog directory.
func (s *Site) Dir() string {
	return s.dir
}

// Meta returns the site description used for rendering.
func (s *Site) Meta() SiteMeta {
	return s.meta
}

// ArticlePath returns the artifact path for an identifier.
func (s *Site) ArticlePath(identifier string) string {
	return filepath.Join(s.dir, identifier+".html")
}

// WriteArticle renders and saves one article artifact, replacing any
// previous file with the same identifier. It returns the written path.
func (s *Site) WriteArticle(a Article) (string, error) {
	if a.Identifier == "" {
		return "", fmt.Errorf("failed to write article: empty identifier")
	}
	if identity.IsReserved(a.Identifier) {
		return "", fmt.Errorf("failed to write article: identifier %q is reserved", a.Identifier)
	}

	data, err := RenderArticle(s.meta, a)
	if err != nil {
		return "", err
	}

	path := s.ArticlePath(a.Identifier)
	if err := writeFile(path, data); err != nil {
		return "", fmt.Errorf("failed to write article %s: %w", a.Identifier, err)
	}

	return path, nil
}

// WriteIndex regenerates the listing page from entries.
func (s *Site) WriteIndex(entries []ListingEntry) error {
	data, err := Aggregate(s.meta, entries)
	if err != nil {
		return err
	}

	if err := writeFile(filepath.Join(s.dir, IndexFilename), data); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// WriteFeed regenerates the RSS feed from entries. It does nothing when the
// feed is disabled.
func (s *Site) WriteFeed(entries []ListingEntry) error {
	if !s.meta.Feed {
		return nil
	}

	data, err := RenderFeed(s.meta, entries)
	if err != nil {
		return err
	}

	if err := writeFile(filepath.Join(s.dir, FeedFilename), data); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	return nil
}

// writeFile replaces path through a temporary file so a reader never sees
// a half-written artifact.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
