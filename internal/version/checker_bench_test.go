package version

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

func benchReleases(n int) []Release {
	releases := make([]Release, n)
	for i := 0; i < n; i++ {
		releases[i] = newTestRelease(fmt.Sprintf("1.%d.0", i), n-i)
	}
	return releases
}

func BenchmarkAnalyse(b *testing.B) {
	checker := NewChecker(&MockReleaseLister{Releases: benchReleases(100)}, "o", "r")
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := checker.Analyse(ctx, "1.10.0"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalysisMarshalJSON(b *testing.B) {
	checker := NewChecker(&MockReleaseLister{Releases: benchReleases(100)}, "o", "r")
	analysis, err := checker.Analyse(context.Background(), "1.50.0")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(analysis); err != nil {
			b.Fatal(err)
		}
	}
}
