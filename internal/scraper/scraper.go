// Package scraper fetches documentation pages and reduces them to plain text.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
)

// maxBodyBytes caps how much of a page is read
const maxBodyBytes = 5 << 20

// Options configures a Scraper
type Options struct {
	Timeout          time.Duration
	MaxContentLength int
	UserAgent        string
	Sources          config.Sources // Defaults to config.DefaultSources()
	HTTPClient       *http.Client   // Defaults to a client with Timeout
	Logger           *zap.Logger
}

// Scraper fetches and cleans documentation from the configured sources
type Scraper struct {
	client           *http.Client
	timeout          time.Duration
	maxContentLength int
	userAgent        string
	sources          config.Sources
	logger           *zap.Logger
}

// New creates a documentation scraper
func New(opts Options) *Scraper {
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultRequestTimeout
	}
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = config.DefaultMaxContentLength
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.Sources == nil {
		opts.Sources = config.DefaultSources()
	}
	if opts.HTTPClient == nil {
		// The default client follows redirects
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	s := &Scraper{
		client:           opts.HTTPClient,
		timeout:          opts.Timeout,
		maxContentLength: opts.MaxContentLength,
		userAgent:        opts.UserAgent,
		sources:          opts.Sources,
		logger:           logging.OrNop(opts.Logger),
	}
	s.logger.Debug("Documentation scraper initialized",
		zap.Duration("timeout", s.timeout),
		zap.Int("max_length", s.maxContentLength))
	return s
}

// Source looks up a configured source by name or alias
func (s *Scraper) Source(name string) (*config.Source, error) {
	return s.sources.Get(name)
}

// FetchDocs fetches a documentation section (or the index when section is
// empty) from src and returns its cleaned text.
func (s *Scraper) FetchDocs(ctx context.Context, src *config.Source, section string) (string, error) {
	return s.fetchAndExtract(ctx, src, src.URL(section))
}

// FetchSource is FetchDocs with the source looked up by name
func (s *Scraper) FetchSource(ctx context.Context, name, section string) (string, error) {
	src, err := s.Source(name)
	if err != nil {
		return "", err
	}
	return s.FetchDocs(ctx, src, section)
}

// FetchPaperDocs fetches Paper documentation
func (s *Scraper) FetchPaperDocs(ctx context.Context, section string) (string, error) {
	return s.FetchSource(ctx, config.SourcePaper.Name, section)
}

// FetchLeafDocs fetches Leaf documentation
func (s *Scraper) FetchLeafDocs(ctx context.Context, section string) (string, error) {
	return s.FetchSource(ctx, config.SourceLeaf.Name, section)
}

// FetchPurpurDocs fetches Purpur documentation
func (s *Scraper) FetchPurpurDocs(ctx context.Context, section string) (string, error) {
	return s.FetchSource(ctx, config.SourcePurpur.Name, section)
}

// SearchWiki fetches a Minecraft Wiki article by name. Spaces become
// underscores, as in wiki page URLs.
func (s *Scraper) SearchWiki(ctx context.Context, query string) (string, error) {
	src, err := s.Source(config.SourceWiki.Name)
	if err != nil {
		return "", err
	}
	return s.fetchAndExtract(ctx, src, src.URL(WikiPath(query)))
}

// WikiPath converts an article name into an escaped wiki path
func WikiPath(query string) string {
	formatted := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	segments := strings.Split(formatted, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

func (s *Scraper) fetchAndExtract(ctx context.Context, src *config.Source, pageURL string) (string, error) {
	body, err := s.fetchURL(ctx, pageURL)
	if err != nil {
		return "", err
	}

	result, err := Extract(body, src.Selectors, s.maxContentLength)
	if err != nil {
		s.logger.Error("Error parsing HTML", zap.String("url", pageURL), zap.Error(err))
		return "", err
	}

	s.logger.Debug("Found content using selector", zap.String("selector", result.Selector))
	if result.Truncated {
		s.logger.Warn("Content truncated",
			zap.Int("from", result.Length),
			zap.Int("to", s.maxContentLength))
	}

	s.logger.Info("Successfully fetched documentation",
		zap.String("source", src.Name),
		zap.Int("chars", len([]rune(result.Text))))
	return result.Text, nil
}

func (s *Scraper) fetchURL(ctx context.Context, pageURL string) (string, error) {
	s.logger.Info("Fetching URL", zap.String("url", pageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL %s: %v", errs.ErrNetwork, pageURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ru;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		if errs.Timeout(err) {
			s.logger.Error("Timeout fetching URL", zap.String("url", pageURL), zap.Error(err))
			return "", fmt.Errorf("%w: request timed out after %d seconds", errs.ErrNetwork, int(s.timeout.Seconds()))
		}
		s.logger.Error("Request error fetching URL", zap.String("url", pageURL), zap.Error(err))
		return "", fmt.Errorf("%w: network error: %v", errs.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("HTTP error fetching URL", zap.String("url", pageURL), zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("%w: HTTP %d error: %s", errs.ErrNetwork, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if errs.Timeout(err) {
			return "", fmt.Errorf("%w: request timed out after %d seconds", errs.ErrNetwork, int(s.timeout.Seconds()))
		}
		return "", fmt.Errorf("%w: network error: %v", errs.ErrNetwork, err)
	}

	return string(body), nil
}
