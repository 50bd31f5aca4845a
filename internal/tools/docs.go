package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/cache"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/errs"
)

type docsArgs struct {
	Section      string `json:"section"`
	ForceRefresh bool   `json:"force_refresh"`
}

type wikiArgs struct {
	Query *string `json:"query"`
}

// DocsCacheKey is the cache key of a documentation section. Surrounding
// slashes are ignored, matching how the section is joined into the URL.
func DocsCacheKey(source, section string) string {
	section = normalizeSection(section)
	if section == "" {
		section = "index"
	}
	return source + ":" + section
}

func normalizeSection(section string) string {
	return strings.Trim(strings.TrimSpace(section), "/")
}

// WikiCacheKey is the cache key of a wiki article
func WikiCacheKey(query string) string {
	return "wiki:" + strings.ToLower(query)
}

func (r *Registry) docsTool(name string) *Tool {
	// Sources may be overridden from a YAML file; the predefined entry keeps
	// the tool listable when the fetcher does not know the source.
	src, err := config.GetSource(name)
	if r.docs != nil {
		if configured, cerr := r.docs.Source(name); cerr == nil {
			src, err = configured, nil
		}
	}
	if err != nil {
		panic(fmt.Sprintf("predefined source %q missing: %v", name, err))
	}

	return &Tool{
		Name:        "get_" + src.Name + "_docs",
		Description: strings.TrimSpace(fmt.Sprintf("Get %s documentation. %s", src.Title, src.Description)),
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"section": {
					Type:        "string",
					Description: "Specific documentation section to fetch (optional), e.g. \"admin/reference/configuration\"",
				},
				"force_refresh": {
					Type:        "boolean",
					Description: "Force cache refresh, bypassing cached data",
					Default:     false,
				},
			},
		},
		handler: func(ctx context.Context, raw json.RawMessage) (*Result, error) {
			var args docsArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return r.fetchDocs(ctx, src, strings.TrimSpace(args.Section), args.ForceRefresh), nil
		},
	}
}

// Docs fetches documentation from any configured source, including sources
// added through the sources file that have no tool of their own.
func (r *Registry) Docs(ctx context.Context, source, section string, refresh bool) (*Result, error) {
	src, err := r.docs.Source(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return r.fetchDocs(ctx, src, strings.TrimSpace(section), refresh), nil
}

func (r *Registry) fetchDocs(ctx context.Context, src *config.Source, section string, refresh bool) *Result {
	section = normalizeSection(section)
	key := DocsCacheKey(src.Name, section)

	text, err := r.cached(ctx, key, cache.DefaultTTL, refresh, func(ctx context.Context) (fetchResult, error) {
		content, err := r.docs.FetchDocs(ctx, src, section)
		return fetchResult{text: content, store: true}, err
	})
	if err != nil {
		msg := errs.Message(err)
		switch {
		case errors.Is(err, errs.ErrNetwork):
			return errorResult(r.logger, "Network error fetching %s documentation: %s", src.Title, msg)
		case errors.Is(err, errs.ErrParsing):
			return errorResult(r.logger, "Failed to parse %s documentation: %s", src.Title, msg)
		default:
			return errorResult(r.logger, "Unexpected error fetching %s documentation: %s", src.Title, msg)
		}
	}
	return textResult(text)
}

func (r *Registry) wikiTool() *Tool {
	return &Tool{
		Name: "search_minecraft_wiki",
		Description: "Search Minecraft Wiki for articles. Searches the official Minecraft Wiki (minecraft.wiki) " +
			"for articles about game mechanics, blocks, items, mobs, and more.",
		InputSchema: Schema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "Search query or article name, e.g. \"Diamond\", \"Redstone\", \"Creeper\"",
				},
			},
			Required: []string{"query"},
		},
		handler: func(ctx context.Context, raw json.RawMessage) (*Result, error) {
			var args wikiArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.Query == nil || strings.TrimSpace(*args.Query) == "" {
				return nil, fmt.Errorf("%w: query is required", ErrInvalidArguments)
			}
			return r.Wiki(ctx, *args.Query), nil
		},
	}
}

// Wiki fetches a Minecraft Wiki article
func (r *Registry) Wiki(ctx context.Context, query string) *Result {
	key := WikiCacheKey(query)

	text, err := r.cached(ctx, key, cache.DefaultTTL, false, func(ctx context.Context) (fetchResult, error) {
		content, err := r.docs.SearchWiki(ctx, query)
		return fetchResult{text: content, store: true}, err
	})
	if err != nil {
		msg := errs.Message(err)
		switch {
		case errors.Is(err, errs.ErrNetwork):
			return errorResult(r.logger, "Network error searching Minecraft Wiki: %s", msg)
		case errors.Is(err, errs.ErrParsing):
			return errorResult(r.logger, "Failed to parse Minecraft Wiki article: %s", msg)
		default:
			return errorResult(r.logger, "Unexpected error searching Minecraft Wiki: %s", msg)
		}
	}

	r.logger.Debug("Wiki article ready", zap.String("query", query))
	return textResult(text)
}
