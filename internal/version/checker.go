// Package version checks a running build against the releases published on
// GitHub. Release tags are vX.Y.Z and are compared as semantic versions.
package version

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// ReleaseLister fetches the published releases of a repository
type ReleaseLister interface {
	ListReleases(ctx context.Context, owner, repo string, count int) ([]Release, error)
}

// Checker performs version analysis for one repository
type Checker struct {
	client ReleaseLister
	owner  string
	repo   string
}

// NewChecker creates a new version checker
func NewChecker(client ReleaseLister, owner, repo string) *Checker {
	return &Checker{
		client: client,
		owner:  owner,
		repo:   repo,
	}
}

// Analyse compares current with the repository's releases. A current value
// that is not a semantic version (such as "dev") yields StatusUnknown.
func (c *Checker) Analyse(ctx context.Context, current string) (*Analysis, error) {
	releases, err := c.client.ListReleases(ctx, c.owner, c.repo, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch releases: %w", err)
	}

	if len(releases) == 0 {
		return nil, fmt.Errorf("no releases available for %s/%s", c.owner, c.repo)
	}

	latest := Latest(releases)
	analysis := &Analysis{
		Current:       current,
		Latest:        latest.Version,
		LatestRelease: &latest,
	}

	currentVersion, err := semver.NewVersion(current)
	if err != nil {
		analysis.Message = fmt.Sprintf("Latest version: %s (running %s)", latest.Version, displayVersion(current))
		return analysis, nil
	}
	analysis.CurrentVersion = currentVersion

	// Local builds can be ahead of the newest published tag
	if !currentVersion.LessThan(latest.Version) {
		analysis.IsLatest = true
		analysis.Message = fmt.Sprintf("Version %s is up to date", currentVersion)
		return analysis, nil
	}

	analysis.NewerReleases = FindNewer(releases, currentVersion)
	analysis.ReleasesBehind = len(analysis.NewerReleases)
	analysis.Message = fmt.Sprintf("Version %s is %d %s behind latest %s",
		currentVersion, analysis.ReleasesBehind, Pluralize(analysis.ReleasesBehind, "release", "releases"), latest.Version)

	return analysis, nil
}

// Latest returns the release with the highest version. releases must not be
// empty.
func Latest(releases []Release) Release {
	latest := releases[0]
	for _, r := range releases[1:] {
		if r.Version.GreaterThan(latest.Version) {
			latest = r
		}
	}
	return latest
}

// FindNewer returns releases newer than v, sorted oldest first
func FindNewer(releases []Release, v *semver.Version) []Release {
	var newer []Release
	for _, release := range releases {
		if release.Version.GreaterThan(v) {
			newer = append(newer, release)
		}
	}

	sort.Slice(newer, func(i, j int) bool {
		return newer[i].Version.LessThan(newer[j].Version)
	})
	return newer
}

// SortNewestFirst orders releases by descending version in place
func SortNewestFirst(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].Version.GreaterThan(releases[j].Version)
	})
}

func displayVersion(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// Pluralize returns singular when n is 1 and plural otherwise
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
