// Package github lists releases of GitHub repositories.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	gh "github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/version"
)

const (
	perPage  = 100
	maxPages = 10 // Safety limit
)

// Options configures a Client
type Options struct {
	Token      string // Optional; raises the API rate limit
	BaseURL    string // Defaults to https://api.github.com/
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client wraps the GitHub API client
type Client struct {
	gh     *gh.Client
	logger *zap.Logger
}

// NewClient creates a new GitHub API client
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if opts.Token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: opts.Token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := gh.NewClient(httpClient)
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	}

	if opts.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", opts.BaseURL, err)
		}
		client.BaseURL = base
	}

	return &Client{
		gh:     client,
		logger: logging.OrNop(opts.Logger),
	}, nil
}

// ListReleases returns up to count published releases, newest version first.
// Drafts, prereleases and tags that are not semantic versions are skipped.
// A count of zero or less fetches every page up to the safety limit.
func (c *Client) ListReleases(ctx context.Context, owner, repo string, count int) ([]version.Release, error) {
	c.logger.Info("Listing releases",
		zap.String("repository", owner+"/"+repo),
		zap.Int("count", count))

	var releases []version.Release
	opts := &gh.ListOptions{PerPage: perPage}

	for page := 1; page <= maxPages; page++ {
		opts.Page = page

		ghReleases, resp, err := c.gh.Repositories.ListReleases(ctx, owner, repo, opts)
		if err != nil {
			return nil, classify(err, fmt.Sprintf("failed to list releases of %s/%s (page %d)", owner, repo, page))
		}

		for _, ghRelease := range ghReleases {
			if ghRelease.GetDraft() || ghRelease.GetPrerelease() {
				continue
			}

			release, err := parseRelease(ghRelease)
			if err != nil {
				c.logger.Debug("Skipping release", zap.Error(err))
				continue
			}
			releases = append(releases, *release)
		}

		if count > 0 && len(releases) >= count {
			break
		}
		if resp.NextPage == 0 {
			break
		}
	}

	version.SortNewestFirst(releases)
	if count > 0 && len(releases) > count {
		releases = releases[:count]
	}
	return releases, nil
}

// LatestRelease fetches the release GitHub marks as latest
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*version.Release, error) {
	ghRelease, _, err := c.gh.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("failed to get latest release of %s/%s", owner, repo))
	}

	release, err := parseRelease(ghRelease)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrAPI, err)
	}
	return release, nil
}

// parseRelease converts a GitHub release to our Release type
func parseRelease(ghRelease *gh.RepositoryRelease) (*version.Release, error) {
	tagName := ghRelease.GetTagName()
	if tagName == "" {
		return nil, fmt.Errorf("release has no tag name")
	}

	// Accepts a leading 'v'
	ver, err := semver.NewVersion(tagName)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", tagName, err)
	}

	return &version.Release{
		Version:     ver,
		Tag:         tagName,
		Name:        ghRelease.GetName(),
		PublishedAt: ghRelease.GetPublishedAt().Time,
		URL:         ghRelease.GetHTMLURL(),
	}, nil
}

// classify maps go-github failures onto the shared error kinds
func classify(err error, action string) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	var respErr *gh.ErrorResponse

	switch {
	case errors.As(err, &rateErr):
		return fmt.Errorf("%w: GitHub rate limit exceeded, resets at %s. Set GITHUB_TOKEN to raise the limit",
			errs.ErrAPI, rateErr.Rate.Reset.Time.Format(time.RFC3339))
	case errors.As(err, &abuseErr):
		return fmt.Errorf("%w: GitHub secondary rate limit exceeded. Please try again later", errs.ErrAPI)
	case errors.As(err, &respErr):
		if respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s: repository not found", errs.ErrAPI, action)
		}
		status := 0
		if respErr.Response != nil {
			status = respErr.Response.StatusCode
		}
		return fmt.Errorf("%w: %s: GitHub API error: HTTP %d", errs.ErrAPI, action, status)
	case errs.Timeout(err):
		return fmt.Errorf("%w: %s: request timed out", errs.ErrNetwork, action)
	default:
		return fmt.Errorf("%w: %s: %v", errs.ErrNetwork, action, err)
	}
}
