package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, warnings, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultMaxContentLength, cfg.MaxContentLength)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultStatusTTL, cfg.StatusTTL)
	assert.Equal(t, DefaultUpdateRepo, cfg.UpdateRepo)
	assert.Empty(t, cfg.CachePath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MINECRAFT_MCP_CACHE_TTL", "7200")
	t.Setenv("MINECRAFT_MCP_REQUEST_TIMEOUT", "10")
	t.Setenv("MINECRAFT_MCP_MAX_CONTENT_LENGTH", "5000")
	t.Setenv("MINECRAFT_MCP_LOG_LEVEL", "debug")
	t.Setenv("MINECRAFT_MCP_USER_AGENT", "TestAgent/2.0")
	t.Setenv("MINECRAFT_MCP_CACHE_PATH", "/tmp/cache.db")
	t.Setenv("MINECRAFT_MCP_UPDATE_REPO", "https://github.com/example/server/releases")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, warnings, err := Load("")
	require.NoError(t, err)

	assert.Empty(t, warnings)
	assert.Equal(t, 7200*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5000, cfg.MaxContentLength)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "TestAgent/2.0", cfg.UserAgent)
	assert.Equal(t, "/tmp/cache.db", cfg.CachePath)
	assert.Equal(t, "https://github.com/example/server/releases", cfg.UpdateRepo)
	assert.Equal(t, "ghp_test", cfg.GitHubToken)
}

func TestLoad_CaseInsensitivePrefix(t *testing.T) {
	t.Setenv("minecraft_mcp_cache_ttl", "60")

	cfg, _, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
}

func TestLoad_InvalidValuesWarn(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		check    func(t *testing.T, cfg *Config)
		contains string
	}{
		{
			name:  "negative cache ttl",
			key:   "MINECRAFT_MCP_CACHE_TTL",
			value: "-5",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
			},
			contains: "Invalid cache_ttl",
		},
		{
			name:  "very high cache ttl is kept",
			key:   "MINECRAFT_MCP_CACHE_TTL",
			value: "90000",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90000*time.Second, cfg.CacheTTL)
			},
			contains: "very high",
		},
		{
			name:  "zero request timeout",
			key:   "MINECRAFT_MCP_REQUEST_TIMEOUT",
			value: "0",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
			},
			contains: "Invalid request_timeout",
		},
		{
			name:  "very high request timeout is kept",
			key:   "MINECRAFT_MCP_REQUEST_TIMEOUT",
			value: "600",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 600*time.Second, cfg.RequestTimeout)
			},
			contains: "very high",
		},
		{
			name:  "non-numeric timeout",
			key:   "MINECRAFT_MCP_REQUEST_TIMEOUT",
			value: "soon",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
			},
			contains: "Invalid request_timeout 'soon'",
		},
		{
			name:  "content length clamped low",
			key:   "MINECRAFT_MCP_MAX_CONTENT_LENGTH",
			value: "10",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, MinContentLength, cfg.MaxContentLength)
			},
			contains: "below",
		},
		{
			name:  "content length clamped high",
			key:   "MINECRAFT_MCP_MAX_CONTENT_LENGTH",
			value: "1000000",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, MaxContentLength, cfg.MaxContentLength)
			},
			contains: "above",
		},
		{
			name:  "unknown log level",
			key:   "MINECRAFT_MCP_LOG_LEVEL",
			value: "verbose",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "INFO", cfg.LogLevel)
			},
			contains: "Invalid log level 'verbose'",
		},
		{
			name:  "bad update repo",
			key:   "MINECRAFT_MCP_UPDATE_REPO",
			value: "not-a-repo",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultUpdateRepo, cfg.UpdateRepo)
			},
			contains: "Invalid update_repo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg, warnings, err := Load("")
			require.NoError(t, err)
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0], tt.contains)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MINECRAFT_MCP_STATUS_TTL=42\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MINECRAFT_MCP_STATUS_TTL") })

	cfg, warnings, err := Load(envFile)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 42*time.Second, cfg.StatusTTL)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MINECRAFT_MCP_CACHE_TTL=1\n"), 0o644))
	t.Setenv("MINECRAFT_MCP_CACHE_TTL", "120")

	cfg, _, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.CacheTTL)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"debug", "DEBUG", true},
		{" Warning ", "WARNING", true},
		{"CRITICAL", "CRITICAL", true},
		{"trace", "INFO", false},
		{"", "INFO", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, valid := NormalizeLogLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, valid)
		})
	}
}
