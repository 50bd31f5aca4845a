package cmd

import (
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/cache"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/github"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/mojang"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/scraper"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/tools"
)

// app wires the configured components together
type app struct {
	cache    cache.Cache
	registry *tools.Registry
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}

	cacheOpts := cache.Options{DefaultTTL: cfg.CacheTTL, Path: cfg.CachePath, Logger: logger}
	if noCache {
		cacheOpts.DefaultTTL = 0
		cacheOpts.Path = ""
	}
	c, err := cache.New(cacheOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	docs := scraper.New(scraper.Options{
		Timeout:          cfg.RequestTimeout,
		MaxContentLength: cfg.MaxContentLength,
		UserAgent:        cfg.UserAgent,
		Sources:          sources,
		Logger:           logger,
	})

	mojangClient := mojang.NewClient(mojang.Options{
		Timeout:   cfg.RequestTimeout,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})

	githubClient, err := newGitHubClient(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	registry := tools.NewRegistry(tools.Options{
		Cache:        c,
		Docs:         docs,
		Mojang:       mojangClient,
		Releases:     githubClient,
		StatusTTL:    cfg.StatusTTL,
		FetchTimeout: 2 * cfg.RequestTimeout,
		NoCache:      noCache,
		Logger:       logger,
	})

	return &app{
		cache:    c,
		registry: registry,
	}, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}

func newGitHubClient(cfg *config.Config, logger *zap.Logger) (*github.Client, error) {
	token := detectGitHubToken(cfg.GitHubToken)
	if token == "" {
		logger.Debug("No GitHub token found, using unauthenticated requests")
	}
	return github.NewClient(github.Options{
		Token:     token,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
}

// detectGitHubToken attempts to find a GitHub token from multiple sources
func detectGitHubToken(providedToken string) string {
	// 1. GITHUB_TOKEN from the environment or the dotenv file
	if providedToken != "" {
		return providedToken
	}

	// 2. GitHub CLI
	ghToken, err := getGitHubCLIToken()
	if err == nil && ghToken != "" {
		return ghToken
	}

	// 3. Unauthenticated
	return ""
}

// getGitHubCLIToken attempts to retrieve a token from the GitHub CLI
func getGitHubCLIToken() (string, error) {
	cmd := exec.Command("gh", "auth", "token")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", fmt.Errorf("gh auth token returned empty")
	}

	return token, nil
}
