package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Asterixfoods/asterix-charts/config"
	"github.com/Asterixfoods/asterix-charts/constants/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// doctorCmd: asterix-charts doctor
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that everything a chart run needs is in place.",
	Long: `The 'doctor' subcommand checks the environment without touching it: is the
summary CSV present, can the chart generator be found, is the run journal
usable. Run it when a chart run fails before its first step.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		healthy := handleDoctorCommand(rootDependencies)
		closeJournal(rootDependencies)
		if !healthy {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func handleDoctorCommand(rootDependencies *RootDependencies) bool {
	cfg := rootDependencies.Config
	healthy := true

	fmt.Println(lipgloss.Info.Render("Asterix charts environment check"))

	// Configuration source
	if used := viper.ConfigFileUsed(); used != "" {
		checkOK(fmt.Sprintf("config: %s (%s)", used, config.GetConfigFileType(used)))
	} else {
		checkNote("config: built-in defaults")
	}

	// Input artifact
	inputPath := filepath.Join(rootDependencies.Cwd, cfg.InputFile)
	if info, err := os.Stat(inputPath); err == nil && !info.IsDir() {
		checkOK(fmt.Sprintf("%s: %d bytes, modified %s", cfg.InputFile, info.Size(), info.ModTime().Format("2006-01-02 15:04")))
	} else {
		healthy = false
		checkFail(fmt.Sprintf("%s: not found in %s", cfg.InputFile, rootDependencies.Cwd))
		fmt.Println(lipgloss.Gray.Render("    Export your Summary tab as CSV and save it here before running."))
	}

	// Chart generator
	if path, err := rootDependencies.Renderer.Resolve(); err == nil {
		checkOK(fmt.Sprintf("generator: %s", path))
	} else {
		healthy = false
		checkFail(fmt.Sprintf("generator: %v", err))
	}

	// Run journal
	if rootDependencies.Journal == nil {
		checkNote("history: disabled")
	} else if n, err := rootDependencies.Journal.Count(context.Background()); err == nil {
		checkOK(fmt.Sprintf("history: %s (%d runs recorded)", cfg.History.Path, n))
	} else {
		checkWarn(fmt.Sprintf("history: %v", err))
	}

	return healthy
}

func checkOK(msg string) {
	fmt.Println(lipgloss.Green.Render("✓ ") + msg)
}

func checkFail(msg string) {
	fmt.Println(lipgloss.Red.Render("✗ ") + msg)
}

func checkWarn(msg string) {
	fmt.Println(lipgloss.Yellow.Render("! ") + msg)
}

func checkNote(msg string) {
	fmt.Println(lipgloss.Gray.Render("• " + msg))
}
