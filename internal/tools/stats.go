package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/cache"
)

func (r *Registry) cacheStatsTool() *Tool {
	return &Tool{
		Name:        "get_cache_stats",
		Description: "Report how many cached tool results are stored, active and expired.",
		InputSchema: Schema{Type: "object", Properties: map[string]Property{}},
		handler: func(ctx context.Context, raw json.RawMessage) (*Result, error) {
			if err := decodeArgs(raw, &struct{}{}); err != nil {
				return nil, err
			}
			return r.CacheStats(), nil
		},
	}
}

// CacheStats reports cache contents. It is never cached itself.
func (r *Registry) CacheStats() *Result {
	return textResult(FormatStats(r.cache.Stats()))
}

// FormatStats renders cache statistics
func FormatStats(stats cache.Stats) string {
	var b strings.Builder
	b.WriteString("Cache Statistics:\n\n")
	fmt.Fprintf(&b, "Total entries: %d\n", stats.TotalEntries)
	fmt.Fprintf(&b, "Active entries: %d\n", stats.ActiveEntries)
	fmt.Fprintf(&b, "Expired entries: %d\n", stats.ExpiredEntries)
	fmt.Fprintf(&b, "Default TTL: %s\n", stats.DefaultTTL)
	return b.String()
}
