package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/cache"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/version"
)

// Bounds of the release count argument
const (
	DefaultReleaseCount = 5
	MaxReleaseCount     = 20
)

type releasesArgs struct {
	Platform *string `json:"platform"`
	Count    *int    `json:"count"`
}

// ReleasesCacheKey is the cache key of a platform release listing
func ReleasesCacheKey(platform string, count int) string {
	return fmt.Sprintf("releases:%s:%d", platform, count)
}

func intPtr(v int) *int { return &v }

func (r *Registry) releasesTool() *Tool {
	return &Tool{
		Name: "get_platform_releases",
		Description: "List recent releases of a Minecraft server platform (Paper, Purpur, Leaf) " +
			"from GitHub, newest version first. Drafts and prereleases are skipped.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"platform": {
					Type:        "string",
					Description: "Server platform",
					Enum:        config.PlatformNames(),
				},
				"count": {
					Type:        "integer",
					Description: "Number of releases to list",
					Default:     DefaultReleaseCount,
					Minimum:     intPtr(1),
					Maximum:     intPtr(MaxReleaseCount),
				},
			},
			Required: []string{"platform"},
		},
		handler: func(ctx context.Context, raw json.RawMessage) (*Result, error) {
			var args releasesArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.Platform == nil {
				return nil, fmt.Errorf("%w: platform is required", ErrInvalidArguments)
			}
			count := DefaultReleaseCount
			if args.Count != nil {
				count = *args.Count
			}
			return r.Releases(ctx, *args.Platform, count)
		},
	}
}

// Releases lists the newest releases of a server platform. Unknown platforms
// and counts outside 1..MaxReleaseCount are invalid arguments.
func (r *Registry) Releases(ctx context.Context, platform string, count int) (*Result, error) {
	if count < 1 || count > MaxReleaseCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", ErrInvalidArguments, MaxReleaseCount, count)
	}

	repo, err := config.GetPlatform(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	name := strings.ToLower(repo.Repo)
	if src, err := config.GetSource(platform); err == nil {
		name = src.Name
	}

	key := ReleasesCacheKey(name, count)
	text, err := r.cached(ctx, key, cache.DefaultTTL, false, func(ctx context.Context) (fetchResult, error) {
		releases, err := r.releases.ListReleases(ctx, repo.Owner, repo.Repo, count)
		if err != nil {
			return fetchResult{}, err
		}
		return fetchResult{text: FormatReleases(repo, releases), store: true}, nil
	})
	if err != nil {
		msg := errs.Message(err)
		switch {
		case errors.Is(err, errs.ErrAPI):
			return errorResult(r.logger, "GitHub API error: %s", msg), nil
		case errors.Is(err, errs.ErrNetwork):
			return errorResult(r.logger, "Network error accessing GitHub API: %s", msg), nil
		default:
			return errorResult(r.logger, "Unexpected error listing releases: %s", msg), nil
		}
	}
	return textResult(text), nil
}

// FormatReleases renders a release listing, newest first
func FormatReleases(repo config.Repository, releases []version.Release) string {
	if len(releases) == 0 {
		return fmt.Sprintf("No releases found for %s.", repo.FullName())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Releases of %s:\n\n", repo.FullName())
	for _, rel := range releases {
		fmt.Fprintf(&b, "- %s", rel.Tag)
		if !rel.PublishedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", rel.PublishedAt.Format("2006-01-02"))
		}
		if title := rel.Title(); title != rel.Tag {
			fmt.Fprintf(&b, ": %s", title)
		}
		b.WriteString("\n")
		if rel.URL != "" {
			fmt.Fprintf(&b, "  %s\n", rel.URL)
		}
	}
	return b.String()
}
