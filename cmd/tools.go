package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minecraft-mcp/minecraft-mcp-server/internal/mojang"
	"github.com/minecraft-mcp/minecraft-mcp-server/internal/tools"
)

var (
	refresh      bool
	releaseCount int
)

var docsCmd = &cobra.Command{
	Use:   "docs <source> [section]",
	Short: "Fetch documentation from paper, leaf, purpur or a configured source",
	Example: `  minecraft-mcp-server docs paper
  minecraft-mcp-server docs purpur configuration --refresh`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section := ""
		if len(args) == 2 {
			section = args[1]
		}
		return runTool(cmd, nil, func(ctx context.Context, r *tools.Registry) (*tools.Result, error) {
			return r.Docs(ctx, args[0], section, refresh)
		})
	},
}

var wikiCmd = &cobra.Command{
	Use:     "wiki <article...>",
	Short:   "Fetch a Minecraft Wiki article",
	Example: `  minecraft-mcp-server wiki Redstone Comparator`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return runTool(cmd, nil, func(ctx context.Context, r *tools.Registry) (*tools.Result, error) {
			return r.Wiki(ctx, query), nil
		})
	},
}

var playerCmd = &cobra.Command{
	Use:   "player <username>",
	Short: "Look up a player profile through the Mojang API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, nil, func(ctx context.Context, r *tools.Registry) (*tools.Result, error) {
			return r.Player(ctx, args[0]), nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check Mojang service status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, printStatusText, func(ctx context.Context, r *tools.Registry) (*tools.Result, error) {
			return r.Status(ctx), nil
		})
	},
}

var releasesCmd = &cobra.Command{
	Use:   "releases <platform>",
	Short: "List recent releases of paper, purpur or leaf",
	Example: `  minecraft-mcp-server releases paper
  minecraft-mcp-server releases purpur --count 10`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTool(cmd, nil, func(ctx context.Context, r *tools.Registry) (*tools.Result, error) {
			return r.Releases(ctx, args[0], releaseCount)
		})
	},
}

func init() {
	docsCmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "bypass cached data")
	releasesCmd.Flags().IntVarP(&releaseCount, "count", "c", tools.DefaultReleaseCount,
		fmt.Sprintf("number of releases to list (1-%d)", tools.MaxReleaseCount))

	rootCmd.AddCommand(docsCmd, wikiCmd, playerCmd, statusCmd, releasesCmd)
}

// runTool builds the components, runs one tool and prints its result with
// render, or as plain text when render is nil
func runTool(cmd *cobra.Command, render func(io.Writer, string),
	call func(ctx context.Context, r *tools.Registry) (*tools.Result, error)) error {
	a, err := newApp(configOrDefault(), logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := call(cmd.Context(), a.registry)
	if err != nil {
		return err
	}
	if render == nil {
		render = printText
	}
	return printResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), result, render)
}

// printResult writes successful output to out and tool errors to errOut
func printResult(out, errOut io.Writer, result *tools.Result, render func(io.Writer, string)) error {
	if result.IsError {
		red.Fprintln(errOut, strings.TrimRight(result.Text, "\n"))
		return errToolFailed
	}
	render(out, result.Text)
	return nil
}

func printText(w io.Writer, text string) {
	fmt.Fprintln(w, strings.TrimRight(text, "\n"))
}

// printStatusText colours each service line by its state marker
func printStatusText(w io.Writer, text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, tools.StatusSymbol(mojang.StateOnline)):
			green.Fprintln(w, line)
		case strings.HasPrefix(line, tools.StatusSymbol(mojang.StateDegraded)):
			yellow.Fprintln(w, line)
		case strings.HasPrefix(line, tools.StatusSymbol(mojang.StateOffline)):
			red.Fprintln(w, line)
		case strings.HasPrefix(line, "Mojang"):
			cyan.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}
