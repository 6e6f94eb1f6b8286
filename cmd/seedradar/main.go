package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seedradar",
		Short:         "Track which games and movies are trending on torrent top lists",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file, .yaml or .toml (default: ./config.yaml if present)")

	root.AddCommand(collectCmd())
	root.AddCommand(rankingsCmd())
	root.AddCommand(chartCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(serveCmd())

	return root
}

func collectCmd() *cobra.Command {
	var (
		categories  []string
		noArtifacts bool
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Sample listings, append to history and rebuild rankings and charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), categories, noArtifacts)
		},
	}

	cmd.Flags().StringSliceVar(&categories, "category", nil, "categories to collect (e.g., games,movies)")
	cmd.Flags().BoolVar(&noArtifacts, "no-artifacts", false, "do not write ranking and chart files")
	return cmd
}

func rankingsCmd() *cobra.Command {
	var (
		category   string
		period     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the current ranking of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRankings(cmd.Context(), category, period, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&category, "category", "games", "category to rank")
	cmd.Flags().StringVar(&period, "period", "daily", "ranking period: daily or weekly")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func chartCmd() *cobra.Command {
	var (
		category   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the peers-over-time chart of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd.Context(), category, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&category, "category", "games", "category to chart")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func historyCmd() *cobra.Command {
	var (
		category string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), category, limit)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	cmd.Flags().IntVar(&limit, "limit", 20, "max records to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
