package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vzy-dashboard/backend/internal/config"
)

var (
	outDir  string
	project string
	jql     string
)

var (
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#f07171", Dark: "#f07178"})
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#86b300", Dark: "#c2d94c"})
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#828c99", Dark: "#6c7680"})
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

var rootCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch Jira issues and write the dashboard documents",
	Long: `fetch pulls every issue of the project from Jira Cloud and writes
data.json (platform x status bug matrix) and detailed_data.json.

Examples:
  fetch                                   # Use JIRA_* settings from the environment
  fetch --out-dir public --project VZY    # Override output dir and project
  fetch kpi                               # Refresh kpi_data.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runFetch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "", "Directory for the JSON documents (default OUTPUT_DIR)")
	rootCmd.Flags().StringVar(&project, "project", "", "Jira project key (default JIRA_PROJECT_KEY)")
	rootCmd.Flags().StringVar(&jql, "jql", "", "Issue query (default JIRA_JQL or project = <key>)")

	rootCmd.AddCommand(kpiCmd)
}

// loadConfig applies command line overrides on top of the environment.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if project != "" {
		cfg.JiraProjectKey = project
	}
	if jql != "" {
		cfg.JiraJQL = jql
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render(errorLine(err)))
		os.Exit(1)
	}
}
