package version

import (
	"encoding/json"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Status represents how a running build compares to published releases
type Status string

const (
	StatusCurrent Status = "current"
	StatusBehind  Status = "behind"
	StatusUnknown Status = "unknown"
)

// Release represents a published GitHub release
type Release struct {
	Version     *semver.Version `json:"version"`
	Tag         string          `json:"tag"`
	Name        string          `json:"name,omitempty"`
	PublishedAt time.Time       `json:"published_at"`
	URL         string          `json:"url"`
}

// Title returns the release name, falling back to the tag
func (r Release) Title() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Tag
}

// Analysis contains the update check results
type Analysis struct {
	Current        string          `json:"current"`
	CurrentVersion *semver.Version `json:"-"`
	Latest         *semver.Version `json:"-"`
	LatestRelease  *Release        `json:"latest_release,omitempty"`
	IsLatest       bool            `json:"is_latest"`
	ReleasesBehind int             `json:"releases_behind"`
	NewerReleases  []Release       `json:"newer_releases,omitempty"`
	Message        string          `json:"message"`
}

// Status returns the status level
func (a *Analysis) Status() Status {
	switch {
	case a.CurrentVersion == nil:
		return StatusUnknown
	case a.ReleasesBehind > 0:
		return StatusBehind
	default:
		return StatusCurrent
	}
}

// MarshalJSON renders versions as plain strings and includes the status
func (a *Analysis) MarshalJSON() ([]byte, error) {
	type Alias Analysis
	return json.MarshalIndent(&struct {
		Latest string `json:"latest"`
		Status Status `json:"status"`
		*Alias
	}{
		Latest: versionString(a.Latest),
		Status: a.Status(),
		Alias:  (*Alias)(a),
	}, "", "  ")
}

func versionString(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.String()
}
