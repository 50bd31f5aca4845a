// Package tools implements the tools served over MCP and the CLI. Results
// are cached per tool input and concurrent identical calls share one fetch.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/cache"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/mojang"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/version"
)

var (
	// ErrUnknownTool is returned by Call for names that are not registered
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned by Call when arguments do not match the
	// tool's input schema
	ErrInvalidArguments = errors.New("invalid arguments")
)

// DocsFetcher fetches documentation pages and wiki articles
type DocsFetcher interface {
	Source(name string) (*config.Source, error)
	FetchDocs(ctx context.Context, src *config.Source, section string) (string, error)
	SearchWiki(ctx context.Context, query string) (string, error)
}

// MojangAPI looks up players and service health
type MojangAPI interface {
	PlayerUUID(ctx context.Context, username string) (*mojang.PlayerID, error)
	PlayerProfile(ctx context.Context, id string) (*mojang.Profile, error)
	ServiceStatus(ctx context.Context) ([]mojang.ServiceStatus, error)
}

// Property describes one tool argument in a JSON schema
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *int     `json:"minimum,omitempty"`
	Maximum     *int     `json:"maximum,omitempty"`
}

// Schema is the JSON schema of a tool's arguments object
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Tool is a registered tool
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`

	handler func(ctx context.Context, args json.RawMessage) (*Result, error)
}

// Result is the text output of a tool call. IsError marks failures that are
// reported to the caller as content rather than as protocol errors.
type Result struct {
	Text    string
	IsError bool
}

func textResult(text string) *Result {
	return &Result{Text: text}
}

func errorResult(logger *zap.Logger, format string, args ...any) *Result {
	msg := fmt.Sprintf(format, args...)
	logger.Error(msg)
	return &Result{Text: "Error: " + msg, IsError: true}
}

// Options configures a Registry
type Options struct {
	Cache     cache.Cache
	Docs      DocsFetcher
	Mojang    MojangAPI
	Releases  version.ReleaseLister
	StatusTTL time.Duration
	// FetchTimeout bounds a shared upstream fetch, which outlives the
	// cancellation of any single caller. Zero selects DefaultFetchTimeout.
	FetchTimeout time.Duration
	NoCache      bool // Neither read nor store results
	Logger       *zap.Logger
}

// DefaultFetchTimeout covers a player lookup, which makes two requests
const DefaultFetchTimeout = 2 * config.DefaultRequestTimeout

// Registry holds the tools and the collaborators they share
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool

	cache        cache.Cache
	docs         DocsFetcher
	mojang       MojangAPI
	releases     version.ReleaseLister
	statusTTL    time.Duration
	fetchTimeout time.Duration
	noCache      bool
	group        singleflight.Group
	logger       *zap.Logger
}

// NewRegistry creates a registry with every tool registered
func NewRegistry(opts Options) *Registry {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = config.DefaultStatusTTL
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory(cache.Options{DefaultTTL: config.DefaultCacheTTL, Logger: opts.Logger})
	}

	r := &Registry{
		byName:       make(map[string]*Tool),
		cache:        opts.Cache,
		docs:         opts.Docs,
		mojang:       opts.Mojang,
		releases:     opts.Releases,
		statusTTL:    opts.StatusTTL,
		fetchTimeout: opts.FetchTimeout,
		noCache:      opts.NoCache,
		logger:       logging.OrNop(opts.Logger),
	}

	for _, name := range []string{config.SourcePaper.Name, config.SourceLeaf.Name, config.SourcePurpur.Name} {
		r.register(r.docsTool(name))
	}
	r.register(r.wikiTool())
	r.register(r.playerTool())
	r.register(r.statusTool())
	r.register(r.releasesTool())
	r.register(r.cacheStatsTool())

	return r
}

func (r *Registry) register(t *Tool) {
	r.tools = append(r.tools, t)
	r.byName[t.Name] = t
}

// List returns the registered tools in registration order
func (r *Registry) List() []Tool {
	list := make([]Tool, len(r.tools))
	for i, t := range r.tools {
		list[i] = *t
	}
	return list
}

// Call runs a tool. args is the JSON arguments object and may be empty.
// Failures of the underlying fetch come back as a Result with IsError set;
// the error return is reserved for unknown tools and invalid arguments.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}

	r.logger.Debug("Calling tool", zap.String("tool", name))
	return tool.handler(ctx, args)
}

// decodeArgs unmarshals args into dst, reporting type mismatches and
// malformed objects as invalid arguments.
func decodeArgs(args json.RawMessage, dst any) error {
	if err := json.Unmarshal(args, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

// fetchResult is what a fetch hands back through singleflight
type fetchResult struct {
	text  string
	store bool
}

// cached serves key from the cache unless refresh is set. Otherwise it runs
// fetch once for all concurrent callers and stores cacheable results.
// Failed fetches are never stored. The shared fetch is detached from the
// caller's cancellation and bounded by the fetch timeout instead; a caller
// whose ctx ends stops waiting without failing the others.
func (r *Registry) cached(ctx context.Context, key string, ttl time.Duration, refresh bool,
	fetch func(ctx context.Context) (fetchResult, error)) (string, error) {
	if !refresh && !r.noCache {
		// An empty cached value is treated as a miss
		if data, ok := r.cache.Get(key); ok && data != "" {
			r.logger.Info("Returning cached result", zap.String("key", key))
			return data, nil
		}
	}

	ch := r.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()

		res, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if res.store && !r.noCache {
			r.cache.Set(key, res.text, ttl)
		}
		return res.text, nil
	})

	select {
	case <-ctx.Done():
		r.logger.Debug("Stopped waiting for fetch", zap.String("key", key), zap.Error(ctx.Err()))
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			r.logger.Debug("Shared in-flight fetch", zap.String("key", key))
		}
		return res.Val.(string), nil
	}
}
