package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	colour "github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/logging"
)

var (
	verbose bool
	noCache bool
	envFile string

	// Version information (set via SetVersionInfo from main)
	appVersion = "dev"
	buildTime  = "unknown"
	gitCommit  = "unknown"

	// Set up by the persistent pre-run hook
	cfg    *config.Config
	logger = zap.NewNop()

	// Colours for output
	green  = colour.New(colour.FgGreen, colour.Bold)
	yellow = colour.New(colour.FgYellow, colour.Bold)
	red    = colour.New(colour.FgRed, colour.Bold)
	cyan   = colour.New(colour.FgCyan)
	grey   = colour.New(colour.FgHiBlack)
)

// errToolFailed marks a tool result that was already printed as an error
var errToolFailed = errors.New("tool reported an error")

// SetVersionInfo sets the version information from the main package
func SetVersionInfo(version, build, commit string) {
	appVersion = version
	buildTime = build
	gitCommit = commit
}

var rootCmd = &cobra.Command{
	Use:   "minecraft-mcp-server",
	Short: "Minecraft documentation MCP server",
	Long: `Serve Minecraft server documentation (Paper, Leaf, Purpur), Minecraft Wiki
articles, Mojang player and service data, and platform releases to MCP
clients over stdio.

Run without a subcommand to start the MCP server. The other subcommands run
the same tools once and print the result.`,
	Example: `  # Serve MCP on stdio
  minecraft-mcp-server

  # Fetch a Paper documentation section
  minecraft-mcp-server docs paper admin/reference/configuration

  # Look up a player
  minecraft-mcp-server player Notch

  # Check for a newer release of this server
  minecraft-mcp-server version --check`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&noCache, "no-cache", "n", false, "do not read or store cached results")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errToolFailed) {
		red.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, warnings, err := config.Load(envFile)
	if err != nil {
		return err
	}
	cfg = loaded

	l, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}
	logger = l

	for _, w := range warnings {
		logger.Warn(w)
	}
	logger.Debug("Configuration loaded",
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Int("max_content_length", cfg.MaxContentLength),
		zap.String("log_level", cfg.LogLevel),
		zap.String("cache_path", cfg.CachePath),
		zap.Bool("github_token", cfg.GitHubToken != ""),
		zap.Bool("no_cache", noCache))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	// Syncing stderr fails on some platforms; nothing useful can be done about it
	_ = logger.Sync()
	return nil
}

// configOrDefault returns the loaded configuration, or defaults when the
// pre-run hook has not run
func configOrDefault() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}
