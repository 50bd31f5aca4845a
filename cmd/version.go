package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	colour "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/config"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/version"
)

var (
	checkUpdates bool
	jsonOutput   bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Show version information. With --check, compare this build against the
releases published for the update repository (MINECRAFT_MCP_UPDATE_REPO).`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().BoolVar(&checkUpdates, "check", false, "check GitHub for a newer release")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}

type versionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	info := versionInfo{Version: appVersion, BuildTime: buildTime, GitCommit: gitCommit}

	if !checkUpdates {
		if jsonOutput {
			return outputJSON(out, info)
		}
		printVersionInfo(out, info)
		return nil
	}

	cfg := configOrDefault()
	repo, err := config.ParseRepository(cfg.UpdateRepo)
	if err != nil {
		return err
	}

	client, err := newGitHubClient(cfg, logger)
	if err != nil {
		return err
	}

	checker := version.NewChecker(client, repo.Owner, repo.Repo)
	analysis, err := checker.Analyse(cmd.Context(), appVersion)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}

	if jsonOutput {
		data, err := analysis.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printVersionInfo(out, info)
	fmt.Fprintln(out)
	printAnalysis(out, analysis, time.Now())
	return nil
}

func outputJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printVersionInfo(w io.Writer, info versionInfo) {
	fmt.Fprintf(w, "minecraft-mcp-server %s\n", info.Version)
	fmt.Fprintf(w, "Build time: %s\n", info.BuildTime)
	fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
}

// printAnalysis prints a coloured status line and, for builds that are
// behind, the releases published since
func printAnalysis(w io.Writer, analysis *version.Analysis, now time.Time) {
	status := analysis.Status()
	colourFunc := getStatusColour(status)

	var statusLine string
	switch status {
	case version.StatusCurrent:
		statusLine = fmt.Sprintf("%s Version %s is the latest version", getStatusIcon(status), analysis.CurrentVersion)
	case version.StatusBehind:
		latestDate := ""
		if analysis.LatestRelease != nil && !analysis.LatestRelease.PublishedAt.IsZero() {
			latestDate = fmt.Sprintf(" (Released %s)", formatUKDate(analysis.LatestRelease.PublishedAt))
		}
		statusLine = fmt.Sprintf("%s Version %s is %d %s behind: Update to v%s%s",
			getStatusIcon(status),
			analysis.CurrentVersion,
			analysis.ReleasesBehind,
			version.Pluralize(analysis.ReleasesBehind, "release", "releases"),
			analysis.Latest,
			latestDate)
	default:
		statusLine = fmt.Sprintf("%s Latest version: v%s (running %s)", getStatusIcon(status), analysis.Latest, analysis.Current)
	}
	colourFunc.Fprintln(w, statusLine)

	if len(analysis.NewerReleases) == 0 {
		return
	}

	fmt.Fprintln(w)
	cyan.Fprintln(w, "Available Updates")
	for _, release := range analysis.NewerReleases {
		fmt.Fprintf(w, "  • %s\n", formatReleaseLine(release, now))
		if verbose && release.URL != "" {
			grey.Fprintf(w, "    %s\n", release.URL)
		}
	}
}

func getStatusIcon(status version.Status) string {
	switch status {
	case version.StatusCurrent:
		return "✅"
	case version.StatusBehind:
		return "⚠️ "
	default:
		return "ℹ️ "
	}
}

func getStatusColour(status version.Status) *colour.Color {
	switch status {
	case version.StatusCurrent:
		return green
	case version.StatusBehind:
		return yellow
	default:
		return cyan
	}
}
