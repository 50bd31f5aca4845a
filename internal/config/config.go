// Package config loads server settings from the environment and describes the
// documentation sources and release repositories the server knows about.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every setting name. Matching is case-insensitive.
const EnvPrefix = "MINECRAFT_MCP_"

// Defaults
const (
	DefaultCacheTTL         = 3600 * time.Second
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMaxContentLength = 10000
	DefaultLogLevel         = "INFO"
	DefaultUserAgent        = "MinecraftMCPServer/1.0"
	DefaultStatusTTL        = 300 * time.Second
	DefaultUpdateRepo       = "minecraft-mcp/minecraft-mcp-server"

	MinContentLength = 1000
	MaxContentLength = 100000

	highCacheTTL       = 24 * time.Hour
	highRequestTimeout = 5 * time.Minute
)

// ValidLogLevels lists accepted LOG_LEVEL values
var ValidLogLevels = []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}

// Config holds the server configuration
type Config struct {
	CacheTTL         time.Duration
	RequestTimeout   time.Duration
	MaxContentLength int
	LogLevel         string
	UserAgent        string

	CachePath   string // Empty means in-memory cache
	StatusTTL   time.Duration
	SourcesFile string // Optional YAML override for documentation sources
	UpdateRepo  string // owner/repo checked by "version --check"
	GitHubToken string
}

// Default returns a config populated with defaults
func Default() *Config {
	return &Config{
		CacheTTL:         DefaultCacheTTL,
		RequestTimeout:   DefaultRequestTimeout,
		MaxContentLength: DefaultMaxContentLength,
		LogLevel:         DefaultLogLevel,
		UserAgent:        DefaultUserAgent,
		StatusTTL:        DefaultStatusTTL,
		UpdateRepo:       DefaultUpdateRepo,
	}
}

// Load reads an optional dotenv file and then the environment. Problems with
// individual values never fail the load: they are reported as warnings and
// the affected setting falls back to its default.
func Load(envFile string) (*Config, []string, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if v, ok := lookup("CACHE_TTL"); ok {
		secs, err := strconv.Atoi(v)
		switch {
		case err != nil:
			warn("Invalid cache_ttl '%s'. Using default %d seconds.", v, int(DefaultCacheTTL.Seconds()))
		case secs < 0:
			warn("Invalid cache_ttl '%d'. Using default %d seconds.", secs, int(DefaultCacheTTL.Seconds()))
		default:
			cfg.CacheTTL = time.Duration(secs) * time.Second
			if cfg.CacheTTL > highCacheTTL {
				warn("Cache TTL of %d seconds is very high (>24 hours). This may lead to stale data.", secs)
			}
		}
	}

	if v, ok := lookup("REQUEST_TIMEOUT"); ok {
		secs, err := strconv.Atoi(v)
		switch {
		case err != nil:
			warn("Invalid request_timeout '%s'. Using default %d seconds.", v, int(DefaultRequestTimeout.Seconds()))
		case secs < 1:
			warn("Invalid request_timeout '%d'. Using default %d seconds.", secs, int(DefaultRequestTimeout.Seconds()))
		default:
			cfg.RequestTimeout = time.Duration(secs) * time.Second
			if cfg.RequestTimeout > highRequestTimeout {
				warn("Request timeout of %d seconds is very high (>5 minutes). This may cause long waits.", secs)
			}
		}
	}

	if v, ok := lookup("MAX_CONTENT_LENGTH"); ok {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			warn("Invalid max_content_length '%s'. Using default %d.", v, DefaultMaxContentLength)
		case n < MinContentLength:
			warn("max_content_length %d is below %d. Using %d.", n, MinContentLength, MinContentLength)
			cfg.MaxContentLength = MinContentLength
		case n > MaxContentLength:
			warn("max_content_length %d is above %d. Using %d.", n, MaxContentLength, MaxContentLength)
			cfg.MaxContentLength = MaxContentLength
		default:
			cfg.MaxContentLength = n
		}
	}

	if v, ok := lookup("LOG_LEVEL"); ok {
		level, valid := NormalizeLogLevel(v)
		if !valid {
			warn("Invalid log level '%s'. Using 'INFO'. Valid levels: %s", v, strings.Join(ValidLogLevels, ", "))
		}
		cfg.LogLevel = level
	}

	if v, ok := lookup("USER_AGENT"); ok && strings.TrimSpace(v) != "" {
		cfg.UserAgent = v
	}

	if v, ok := lookup("CACHE_PATH"); ok {
		cfg.CachePath = strings.TrimSpace(v)
	}

	if v, ok := lookup("STATUS_TTL"); ok {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 0 {
			warn("Invalid status_ttl '%s'. Using default %d seconds.", v, int(DefaultStatusTTL.Seconds()))
		} else {
			cfg.StatusTTL = time.Duration(secs) * time.Second
		}
	}

	if v, ok := lookup("SOURCES_FILE"); ok {
		cfg.SourcesFile = strings.TrimSpace(v)
	}

	if v, ok := lookup("UPDATE_REPO"); ok && strings.TrimSpace(v) != "" {
		if _, err := ParseRepository(v); err != nil {
			warn("Invalid update_repo '%s'. Using '%s'.", v, DefaultUpdateRepo)
		} else {
			cfg.UpdateRepo = strings.TrimSpace(v)
		}
	}

	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")

	return cfg, warnings, nil
}

// NormalizeLogLevel upper-cases level and reports whether it is recognised.
// Unrecognised levels normalise to INFO.
func NormalizeLogLevel(level string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(level))
	for _, valid := range ValidLogLevels {
		if upper == valid {
			return upper, true
		}
	}
	return DefaultLogLevel, false
}

// lookup finds EnvPrefix+name ignoring case
func lookup(name string) (string, bool) {
	want := EnvPrefix + name
	if v, ok := os.LookupEnv(want); ok {
		return v, true
	}
	for _, kv := range os.Environ() {
		key, value, found := strings.Cut(kv, "=")
		if found && strings.EqualFold(key, want) {
			return value, true
		}
	}
	return "", false
}
