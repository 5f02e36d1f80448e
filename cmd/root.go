package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Asterixfoods/asterix-charts/chart_renderer"
	contracts_renderer "github.com/Asterixfoods/asterix-charts/chart_renderer/contracts"
	"github.com/Asterixfoods/asterix-charts/config"
	"github.com/Asterixfoods/asterix-charts/constants/lipgloss"
	"github.com/Asterixfoods/asterix-charts/journal"
	contracts_journal "github.com/Asterixfoods/asterix-charts/journal/contracts"
	"github.com/spf13/cobra"
)

// RootDependencies holds everything the subcommands share.
type RootDependencies struct {
	Config   *config.Config
	Cwd      string
	Renderer contracts_renderer.IChartRenderer
	Journal  contracts_journal.IRunJournal
}

// rootCmd: asterix-charts
var rootCmd = &cobra.Command{
	Use:   "asterix-charts",
	Short: "Provision chart projects from a summary CSV and run the Asterix chart generator.",
	Long: `asterix-charts prepares a timestamped project folder for every chart run.
It checks that summary_data.csv is present, creates a Project_<date>_<time>
folder, stages the CSV into it, launches the chart generator with the project
folder as its working directory, and removes the top-level CSV once the charts
exist. Invoked without a subcommand it starts a run, so double-clicking the
binary next to the CSV is all the workflow needs.`,
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle: the closure calls handleRootCommand, which refers to rootCmd.
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		if ok, _ := cmd.Flags().GetBool("version"); ok {
			fmt.Println(config.DefaultConfig.Version)
			return
		}

		rootDependencies := handleRootCommand(cmd)
		code := runProvisioning(rootDependencies)
		closeJournal(rootDependencies)
		if code != 0 {
			os.Exit(code)
		}
	}
	config.InitFlags(rootCmd)
}

// handleRootCommand builds the shared dependencies from the loaded config.
func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		os.Exit(1)
	}

	cfg := config.LoadConfigs(rootCmd, cwd)

	rootDependencies := &RootDependencies{
		Config: cfg,
		Cwd:    cwd,
		Renderer: chart_renderer.NewExecChartRenderer(
			cfg.Generator.Command,
			cfg.Generator.Args,
			cfg.Generator.Env,
			cfg.Generator.Timeout,
		),
	}

	if cfg.History.Enabled {
		journalPath := cfg.History.Path
		if !filepath.IsAbs(journalPath) {
			journalPath = filepath.Join(cwd, journalPath)
		}
		rootDependencies.Journal = journal.NewRunJournal(journalPath)
	}

	return rootDependencies
}

func closeJournal(rootDependencies *RootDependencies) {
	if rootDependencies.Journal != nil {
		_ = rootDependencies.Journal.Close()
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}
