package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Asterixfoods/asterix-charts/constants/lipgloss"
	"github.com/Asterixfoods/asterix-charts/provisioner"
	"github.com/Asterixfoods/asterix-charts/provisioner/models"
	"github.com/Asterixfoods/asterix-charts/utils"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// runCmd: asterix-charts run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Provision a project folder and generate charts from the summary CSV.",
	Long: `The 'run' subcommand performs one full chart run: it validates that the
summary CSV exists, creates a timestamped project folder, stages the CSV into
it, runs the chart generator inside that folder, and removes the top-level CSV
after the charts are generated. Interrupting a run rolls the project folder
back and leaves the CSV where it was.`,
	Run: func(cmd *cobra.Command, args []string) {
		rootDependencies := handleRootCommand(cmd)
		code := runProvisioning(rootDependencies)
		closeJournal(rootDependencies)
		if code != 0 {
			os.Exit(code)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// runProvisioning drives one provisioning run and returns the process exit code.
func runProvisioning(rootDependencies *RootDependencies) int {
	// Create a context with cancel function
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := rootDependencies.Config
	reader := bufio.NewReader(os.Stdin)

	banner := lipgloss.BoxStyle.Render(fmt.Sprintf("Asterix charts %s\nChart project provisioning for %s", cfg.Version, cfg.InputFile))
	fmt.Println(banner)

	sink := newStepSink()

	orchestrator := provisioner.NewOrchestrator(provisioner.Options{
		BaseDir:       rootDependencies.Cwd,
		InputFile:     cfg.InputFile,
		ProjectPrefix: cfg.ProjectPrefix,
		ChartsDir:     cfg.ChartsDir,
		KeepOriginal:  cfg.KeepOriginal,
		WriteManifest: cfg.Manifest,
		Renderer:      rootDependencies.Renderer,
		Journal:       rootDependencies.Journal,
		Trace:         sink.handle,
	})

	report, err := orchestrator.Run(ctx)
	sink.flush()

	if err != nil {
		reportRunFailure(ctx, reader, rootDependencies, report, err)
		return provisioner.ExitCode(err)
	}

	fmt.Println(lipgloss.Green.Render("✔ Charts generated!"))
	resultBox := lipgloss.BoxStyle.Render(fmt.Sprintf(
		"Project folder:  %s\nCharts:          %s\nBackup CSV:      %s",
		report.ProjectDir, report.ChartsDir, report.StagedCopy))
	fmt.Println(resultBox)

	if !cfg.NonInteractive {
		_ = utils.AcknowledgePromptWithContext(ctx, "Press Enter to exit...", reader)
	}
	return provisioner.ExitOK
}

func reportRunFailure(ctx context.Context, reader *bufio.Reader, rootDependencies *RootDependencies, report *models.RunReport, err error) {
	cfg := rootDependencies.Config

	switch {
	case errors.Is(err, provisioner.ErrMissingInput):
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("❌ %s not found in %s", cfg.InputFile, rootDependencies.Cwd)))
		remediation := lipgloss.BoxStyle.Render(fmt.Sprintf(
			"Please make sure you:\n"+
				"1. Export your Summary tab as CSV\n"+
				"2. Save it as '%s'\n"+
				"3. Put it in the same folder as this tool", cfg.InputFile))
		fmt.Println(remediation)

	case errors.Is(err, provisioner.ErrInterrupted):
		fmt.Println(lipgloss.Yellow.Render("🔄 Run interrupted. The project folder was rolled back and the summary CSV is untouched."))

	case errors.Is(err, provisioner.ErrRenderer):
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		if report.ProjectDir != "" {
			fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf(
				"The project folder and staged copy are kept at %s; the original CSV was not removed.", report.ProjectDir)))
		}

	default:
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
	}

	if !cfg.NonInteractive {
		_ = utils.AcknowledgePromptWithContext(ctx, "Press Enter to exit...", reader)
	}
}

// Step numbering and labels for the console progress lines.
var (
	stepNumbers = map[models.Stage]int{
		models.StageValidate:  1,
		models.StageProvision: 2,
		models.StageStaging:   3,
		models.StageRender:    4,
		models.StageCleanup:   5,
	}
	stepLabels = map[models.Stage]string{
		models.StageValidate:  "Checking summary data",
		models.StageProvision: "Creating project folder",
		models.StageStaging:   "Staging the CSV",
		models.StageRender:    "Running the chart generator",
		models.StageCleanup:   "Removing the top-level CSV",
	}
	warningNouns = map[models.Stage]string{
		models.StageManifest: "could not write the run manifest",
		models.StageJournal:  "could not record the run in the journal",
	}
)

// stepSink renders orchestrator trace events as numbered console steps. The
// fast filesystem stages get a spinner; the render stage prints a plain
// headline so the generator's own output can stream through untouched.
type stepSink struct {
	spinner *pterm.SpinnerPrinter
}

func newStepSink() *stepSink {
	return &stepSink{}
}

func (s *stepSink) handle(event models.TraceEvent) {
	switch event.Status {
	case models.TraceStarted:
		s.started(event)
	case models.TraceDone:
		s.done(event)
	case models.TraceFailed:
		s.failed(event)
	case models.TraceSkipped:
		s.stopSpinner()
		fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("• [%d/5] %s", stepNumbers[event.Stage], event.Detail)))
	case models.TraceWarning:
		s.stopSpinner()
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("⚠️ Warning: %s: %s", warningNouns[event.Stage], event.Detail)))
	}
}

func (s *stepSink) started(event models.TraceEvent) {
	s.stopSpinner()

	switch event.Stage {
	case models.StageRender:
		fmt.Println(lipgloss.BlueSky.Render(fmt.Sprintf("[%d/5] %s (%s)...", stepNumbers[event.Stage], stepLabels[event.Stage], event.Detail)))
	case models.StageRollback:
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("🔄 Rolling back %s...", event.Detail)))
	default:
		spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).
			WithSequence("⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏").
			WithDelay(100 * time.Millisecond).WithRemoveWhenDone(true)
		s.spinner, _ = spinner.Start(fmt.Sprintf("[%d/5] %s...", stepNumbers[event.Stage], stepLabels[event.Stage]))
	}
}

func (s *stepSink) done(event models.TraceEvent) {
	s.stopSpinner()

	if event.Stage == models.StageRollback {
		fmt.Println(lipgloss.Yellow.Render(fmt.Sprintf("Rolled back %s.", event.Detail)))
		return
	}

	detail := event.Detail
	if detail == "" {
		detail = stepLabels[event.Stage]
	}
	fmt.Println(lipgloss.Green.Render("✓ ") + fmt.Sprintf("[%d/5] %s", stepNumbers[event.Stage], detail))
}

func (s *stepSink) failed(event models.TraceEvent) {
	s.stopSpinner()

	if event.Stage == models.StageRollback {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Rollback incomplete: %s", event.Detail)))
		return
	}
	fmt.Println(lipgloss.Red.Render(fmt.Sprintf("✗ [%d/5] %s failed", stepNumbers[event.Stage], stepLabels[event.Stage])))
}

func (s *stepSink) stopSpinner() {
	if s.spinner != nil {
		s.spinner.Stop()
		fmt.Print("\r")
		s.spinner = nil
	}
}

func (s *stepSink) flush() {
	s.stopSpinner()
}
