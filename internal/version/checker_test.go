package version

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
)

// MockReleaseLister for testing
type MockReleaseLister struct {
	Releases []Release
	Error    error

	gotOwner string
	gotRepo  string
}

func (m *MockReleaseLister) ListReleases(ctx context.Context, owner, repo string, count int) ([]Release, error) {
	m.gotOwner, m.gotRepo = owner, repo
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Releases, nil
}

func newTestRelease(version string, daysAgo int) Release {
	v := semver.MustParse(version)
	return Release{
		Version:     v,
		Tag:         "v" + version,
		PublishedAt: time.Now().AddDate(0, 0, -daysAgo),
		URL:         fmt.Sprintf("https://github.com/minecraft-mcp/minecraft-mcp-server/releases/tag/v%s", version),
	}
}

func testReleases() []Release {
	// Unordered on purpose
	return []Release{
		newTestRelease("1.1.0", 20),
		newTestRelease("1.3.0", 2),
		newTestRelease("1.0.0", 40),
		newTestRelease("1.2.0", 10),
	}
}

func TestAnalyse_UpToDate(t *testing.T) {
	client := &MockReleaseLister{Releases: testReleases()}
	checker := NewChecker(client, "minecraft-mcp", "minecraft-mcp-server")

	analysis, err := checker.Analyse(context.Background(), "v1.3.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.gotOwner != "minecraft-mcp" || client.gotRepo != "minecraft-mcp-server" {
		t.Errorf("queried %s/%s", client.gotOwner, client.gotRepo)
	}
	if !analysis.IsLatest {
		t.Error("expected IsLatest to be true")
	}
	if analysis.Latest.String() != "1.3.0" {
		t.Errorf("expected latest 1.3.0, got %s", analysis.Latest)
	}
	if analysis.ReleasesBehind != 0 {
		t.Errorf("expected 0 releases behind, got %d", analysis.ReleasesBehind)
	}
	if analysis.Status() != StatusCurrent {
		t.Errorf("expected status current, got %s", analysis.Status())
	}
}

func TestAnalyse_AheadOfLatest(t *testing.T) {
	checker := NewChecker(&MockReleaseLister{Releases: testReleases()}, "o", "r")

	analysis, err := checker.Analyse(context.Background(), "1.4.0-rc.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !analysis.IsLatest || analysis.Status() != StatusCurrent {
		t.Errorf("unreleased build should count as current, got %+v", analysis)
	}
}

func TestAnalyse_Behind(t *testing.T) {
	checker := NewChecker(&MockReleaseLister{Releases: testReleases()}, "o", "r")

	analysis, err := checker.Analyse(context.Background(), "1.1.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.IsLatest {
		t.Error("expected IsLatest to be false")
	}
	if analysis.ReleasesBehind != 2 {
		t.Errorf("expected 2 releases behind, got %d", analysis.ReleasesBehind)
	}
	if analysis.Status() != StatusBehind {
		t.Errorf("expected status behind, got %s", analysis.Status())
	}
	if got := analysis.NewerReleases[0].Version.String(); got != "1.2.0" {
		t.Errorf("expected oldest newer release first, got %s", got)
	}
	if !strings.Contains(analysis.Message, "2 releases behind latest 1.3.0") {
		t.Errorf("unexpected message %q", analysis.Message)
	}
}

func TestAnalyse_OneBehind(t *testing.T) {
	checker := NewChecker(&MockReleaseLister{Releases: testReleases()}, "o", "r")

	analysis, err := checker.Analyse(context.Background(), "1.2.0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(analysis.Message, "1 release behind") {
		t.Errorf("unexpected message %q", analysis.Message)
	}
}

func TestAnalyse_UnknownCurrent(t *testing.T) {
	tests := []struct {
		current string
		wantMsg string
	}{
		{current: "dev", wantMsg: "running dev"},
		{current: "", wantMsg: "running unknown"},
		{current: "not-a-version", wantMsg: "running not-a-version"},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			checker := NewChecker(&MockReleaseLister{Releases: testReleases()}, "o", "r")

			analysis, err := checker.Analyse(context.Background(), tt.current)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if analysis.Status() != StatusUnknown {
				t.Errorf("expected status unknown, got %s", analysis.Status())
			}
			if analysis.Latest.String() != "1.3.0" {
				t.Errorf("expected latest 1.3.0, got %s", analysis.Latest)
			}
			if !strings.Contains(analysis.Message, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", analysis.Message, tt.wantMsg)
			}
		})
	}
}

func TestAnalyse_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewChecker(&MockReleaseLister{Error: boom}, "o", "r").Analyse(context.Background(), "1.0.0")
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}

	_, err = NewChecker(&MockReleaseLister{}, "o", "r").Analyse(context.Background(), "1.0.0")
	if err == nil || !strings.Contains(err.Error(), "no releases available for o/r") {
		t.Errorf("expected no releases error, got %v", err)
	}
}

func TestFindNewer(t *testing.T) {
	newer := FindNewer(testReleases(), semver.MustParse("1.0.0"))

	want := []string{"1.1.0", "1.2.0", "1.3.0"}
	if len(newer) != len(want) {
		t.Fatalf("expected %d releases, got %d", len(want), len(newer))
	}
	for i, v := range want {
		if newer[i].Version.String() != v {
			t.Errorf("newer[%d] = %s, want %s", i, newer[i].Version, v)
		}
	}
}

func TestSortNewestFirst(t *testing.T) {
	releases := testReleases()
	SortNewestFirst(releases)

	want := []string{"1.3.0", "1.2.0", "1.1.0", "1.0.0"}
	for i, v := range want {
		if releases[i].Version.String() != v {
			t.Errorf("releases[%d] = %s, want %s", i, releases[i].Version, v)
		}
	}
}

func TestRelease_Title(t *testing.T) {
	r := newTestRelease("1.0.0", 0)
	if r.Title() != "v1.0.0" {
		t.Errorf("expected tag fallback, got %q", r.Title())
	}
	r.Name = "First release"
	if r.Title() != "First release" {
		t.Errorf("expected name, got %q", r.Title())
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "releases"},
		{1, "release"},
		{2, "releases"},
	}

	for _, tt := range tests {
		if got := Pluralize(tt.n, "release", "releases"); got != tt.want {
			t.Errorf("Pluralize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
