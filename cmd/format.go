package cmd

import (
	"fmt"
	"time"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/version"
)

// formatUKDate formats a date in UK format: "25 Jul 2024"
func formatUKDate(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// formatReleaseAge describes when a release was published relative to now.
// Clock skew can put published slightly ahead of now.
func formatReleaseAge(published, now time.Time) string {
	days := int(now.Sub(published).Hours() / 24)
	switch {
	case days == 0:
		return "today"
	case days < 0:
		return fmt.Sprintf("in %d %s", -days, version.Pluralize(-days, "day", "days"))
	default:
		return fmt.Sprintf("%d %s ago", days, version.Pluralize(days, "day", "days"))
	}
}

// formatReleaseLine renders one entry of the available updates list
func formatReleaseLine(release version.Release, now time.Time) string {
	if release.PublishedAt.IsZero() {
		return fmt.Sprintf("v%s", release.Version)
	}
	return fmt.Sprintf("v%s (%s, %s)", release.Version, formatUKDate(release.PublishedAt), formatReleaseAge(release.PublishedAt, now))
}
