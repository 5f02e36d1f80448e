package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/Asterixfoods/asterix-charts/constants/lipgloss"
	models_journal "github.com/Asterixfoods/asterix-charts/journal/models"
	"github.com/Asterixfoods/asterix-charts/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// historyCmd: asterix-charts history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent chart runs recorded in the local journal.",
	Long: `The 'history' subcommand lists the runs recorded in the local sqlite
journal: which project folders were created, how each run ended, and how many
charts were produced. Use --clear to wipe the journal.`,
	Run: func(cmd *cobra.Command, args []string) {
		var limit int
		var clear bool

		// Parse flags
		limit, _ = cmd.Flags().GetInt("limit")
		clear, _ = cmd.Flags().GetBool("clear")

		rootDependencies := handleRootCommand(cmd)
		handleHistoryCommand(rootDependencies, limit, clear)
		closeJournal(rootDependencies)
	},
}

func init() {
	// Define command-specific flags
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	historyCmd.Flags().Bool("clear", false, "Remove all recorded runs")

	// Add the history command to the root command
	rootCmd.AddCommand(historyCmd)
}

func handleHistoryCommand(rootDependencies *RootDependencies, limit int, clear bool) {
	if rootDependencies.Journal == nil {
		fmt.Println(lipgloss.Yellow.Render("Run history is disabled. Enable it with --history or history.enabled in asterix-config.yaml."))
		return
	}

	ctx := context.Background()

	if clear {
		// Confirm before wiping (unless running non-interactively)
		if !rootDependencies.Config.NonInteractive {
			reader := bufio.NewReader(os.Stdin)
			confirmed, err := utils.ConfirmPrompt("Are you sure you want to clear the entire run history?", reader)
			if err != nil {
				fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting user prompt: %v", err)))
				return
			}
			if !confirmed {
				fmt.Println(lipgloss.Yellow.Render("History clear cancelled."))
				return
			}
		}

		if err := rootDependencies.Journal.Clear(ctx); err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error clearing history: %v", err)))
			return
		}
		fmt.Println(lipgloss.Green.Render("✓ Run history cleared."))
		return
	}

	records, err := rootDependencies.Journal.List(ctx, limit)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error reading history: %v", err)))
		return
	}

	if len(records) == 0 {
		fmt.Println(lipgloss.Gray.Render("No runs recorded yet."))
		return
	}

	data := pterm.TableData{{"Run", "Project", "Status", "Charts", "Started"}}
	for _, r := range records {
		data = append(data, []string{
			shortRunID(r.ID),
			r.Folder,
			statusLabel(r),
			strconv.Itoa(r.ChartCount),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusLabel(r models_journal.RunRecord) string {
	if r.Status == "failed" && r.ErrorKind != "" {
		return fmt.Sprintf("%s (%s)", r.Status, r.ErrorKind)
	}
	return r.Status
}
