package provisioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	contracts_renderer "github.com/Asterixfoods/asterix-charts/chart_renderer/contracts"
	contracts_journal "github.com/Asterixfoods/asterix-charts/journal/contracts"
	models_journal "github.com/Asterixfoods/asterix-charts/journal/models"
	"github.com/Asterixfoods/asterix-charts/provisioner/contracts"
	"github.com/Asterixfoods/asterix-charts/provisioner/models"
	"github.com/google/uuid"
)

// Options configures an Orchestrator.
type Options struct {
	// BaseDir is the directory the run was invoked from. The input CSV is
	// expected there and the project folder is created as its direct child.
	BaseDir string
	// InputFile is the expected CSV name, summary_data.csv by default.
	InputFile string
	// ProjectPrefix is the folder name prefix, Project by default.
	ProjectPrefix string
	// ChartsDir is the subfolder the generator writes, asterix_charts by default.
	ChartsDir string
	// KeepOriginal skips the delete-original cleanup step.
	KeepOriginal bool
	// WriteManifest writes a run.yaml audit file into the project folder.
	WriteManifest bool
	// Renderer launches the chart generator. Required.
	Renderer contracts_renderer.IChartRenderer
	// Journal records run outcomes. Optional.
	Journal contracts_journal.IRunJournal
	// Now is the clock used for folder naming and timestamps. Optional.
	Now func() time.Time
	// Trace receives stage progress events. Optional.
	Trace func(models.TraceEvent)
}

// Orchestrator drives one provisioning run: validate, provision, stage,
// delegate to the generator, clean up. Interruption rolls every created
// artifact back; ordinary failures keep the project folder so nothing the
// user may still want is destroyed.
type Orchestrator struct {
	opts Options
}

// NewOrchestrator creates a provisioning orchestrator.
func NewOrchestrator(opts Options) contracts.IProvisioningOrchestrator {
	if opts.BaseDir == "" {
		opts.BaseDir = "."
	}
	if opts.InputFile == "" {
		opts.InputFile = "summary_data.csv"
	}
	if opts.ProjectPrefix == "" {
		opts.ProjectPrefix = "Project"
	}
	if opts.ChartsDir == "" {
		opts.ChartsDir = "asterix_charts"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Trace == nil {
		opts.Trace = func(models.TraceEvent) {}
	}
	return &Orchestrator{opts: opts}
}

// Run executes the provisioning sequence. The returned report is always
// non-nil and describes how far the run got.
func (o *Orchestrator) Run(ctx context.Context) (*models.RunReport, error) {
	report := &models.RunReport{
		RunID:     uuid.NewString(),
		Status:    models.RunFailed,
		StartedAt: o.opts.Now(),
	}

	// Validate. On this path nothing may be created or recorded, not even
	// the journal file: a run against an empty folder must leave it empty.
	o.trace(models.StageValidate, models.TraceStarted, o.opts.InputFile)
	inputPath := filepath.Join(o.opts.BaseDir, o.opts.InputFile)
	info, err := os.Stat(inputPath)
	if err != nil || info.IsDir() {
		o.trace(models.StageValidate, models.TraceFailed, inputPath)
		report.FinishedAt = o.opts.Now()
		return report, fmt.Errorf("%w: %s", ErrMissingInput, inputPath)
	}
	report.InputSize = info.Size()
	o.trace(models.StageValidate, models.TraceDone, fmt.Sprintf("%s (%d bytes)", o.opts.InputFile, info.Size()))

	if ctx.Err() != nil {
		// Nothing has been created yet, so there is nothing to roll back.
		o.finish(report, models.RunRolledBack, ErrInterrupted)
		return report, ErrInterrupted
	}

	// Provision the project folder. Same-minute re-runs derive the same
	// name, so collisions get a numeric suffix instead of a silent merge.
	o.trace(models.StageProvision, models.TraceStarted, "")
	name, err := nextAvailableName(o.opts.BaseDir, DeriveFolderName(o.opts.ProjectPrefix, report.StartedAt))
	if err != nil {
		o.trace(models.StageProvision, models.TraceFailed, err.Error())
		report.FinishedAt = o.opts.Now()
		if errors.Is(err, ErrFolderCollision) {
			return report, err
		}
		return report, fmt.Errorf("%w: %v", ErrFolderCreation, err)
	}
	projectDir := filepath.Join(o.opts.BaseDir, name)
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		o.trace(models.StageProvision, models.TraceFailed, err.Error())
		report.FinishedAt = o.opts.Now()
		return report, fmt.Errorf("%w: %v", ErrFolderCreation, err)
	}
	report.ProjectName = name
	report.ProjectDir = projectDir
	report.ChartsDir = filepath.Join(projectDir, o.opts.ChartsDir)
	o.trace(models.StageProvision, models.TraceDone, name)

	if ctx.Err() != nil {
		return o.interrupt(report)
	}

	// Stage the CSV into the project folder. The top-level original is not
	// touched until the generator has succeeded.
	o.trace(models.StageStaging, models.TraceStarted, o.opts.InputFile)
	staged, err := stageFile(inputPath, projectDir)
	if err != nil {
		o.trace(models.StageStaging, models.TraceFailed, err.Error())
		runErr := fmt.Errorf("%w: %v", ErrStaging, err)
		o.finish(report, models.RunFailed, runErr)
		return report, runErr
	}
	report.StagedCopy = staged.Path
	report.Checksum = staged.Checksum
	o.trace(models.StageStaging, models.TraceDone, "checksum "+staged.Checksum)

	if ctx.Err() != nil {
		return o.interrupt(report)
	}

	// Delegate to the chart generator, synchronously, with the project
	// folder as its working directory. Its output streams straight through.
	o.trace(models.StageRender, models.TraceStarted, o.opts.Renderer.Command())
	renderErr := o.opts.Renderer.Render(ctx, projectDir)
	report.ChartCount = countCharts(report.ChartsDir)
	if ctx.Err() != nil {
		return o.interrupt(report)
	}
	if renderErr != nil {
		o.trace(models.StageRender, models.TraceFailed, renderErr.Error())
		runErr := fmt.Errorf("%w: %v", ErrRenderer, renderErr)
		o.manifest(report, models.RunFailed)
		o.finish(report, models.RunFailed, runErr)
		return report, runErr
	}
	o.trace(models.StageRender, models.TraceDone, fmt.Sprintf("%d charts", report.ChartCount))

	o.manifest(report, models.RunCompleted)

	// Cleanup: the staged copy now serves as the backup, so the top-level
	// original goes away unless the user asked to keep it.
	if o.opts.KeepOriginal {
		o.trace(models.StageCleanup, models.TraceSkipped, "keeping "+o.opts.InputFile)
	} else {
		o.trace(models.StageCleanup, models.TraceStarted, o.opts.InputFile)
		if err := os.Remove(inputPath); err != nil {
			o.trace(models.StageCleanup, models.TraceFailed, err.Error())
			runErr := fmt.Errorf("removing original %s: %w", o.opts.InputFile, err)
			o.finish(report, models.RunFailed, runErr)
			return report, runErr
		}
		o.trace(models.StageCleanup, models.TraceDone, "removed "+o.opts.InputFile)
	}

	o.finish(report, models.RunCompleted, nil)
	return report, nil
}

// interrupt rolls the run back to the pre-run state: the project folder and
// everything inside it is removed, the top-level original stays.
func (o *Orchestrator) interrupt(report *models.RunReport) (*models.RunReport, error) {
	o.trace(models.StageRollback, models.TraceStarted, report.ProjectName)
	if err := os.RemoveAll(report.ProjectDir); err != nil {
		o.trace(models.StageRollback, models.TraceFailed, err.Error())
	} else {
		report.StagedCopy = ""
		report.ChartsDir = ""
		report.ChartCount = 0
		o.trace(models.StageRollback, models.TraceDone, report.ProjectName)
	}
	o.finish(report, models.RunRolledBack, ErrInterrupted)
	return report, ErrInterrupted
}

// finish stamps the terminal state and records it in the journal. Journal
// problems are traced as warnings, never turned into run failures.
func (o *Orchestrator) finish(report *models.RunReport, status models.RunStatus, runErr error) {
	report.Status = status
	report.FinishedAt = o.opts.Now()
	if o.opts.Journal == nil {
		return
	}
	// The run context may already be cancelled here; the journal write
	// still has to land.
	err := o.opts.Journal.Record(context.Background(), models_journal.RunRecord{
		ID:         report.RunID,
		Folder:     report.ProjectName,
		InputFile:  o.opts.InputFile,
		Checksum:   report.Checksum,
		Status:     string(status),
		ErrorKind:  ErrorKind(runErr),
		ChartCount: report.ChartCount,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
	})
	if err != nil {
		o.trace(models.StageJournal, models.TraceWarning, err.Error())
	}
}

// manifest writes the run.yaml audit file. The manifest status reflects the
// generator outcome; like the journal this is best-effort.
func (o *Orchestrator) manifest(report *models.RunReport, status models.RunStatus) {
	if !o.opts.WriteManifest {
		return
	}
	m := runManifest{
		RunID:     report.RunID,
		CreatedAt: report.StartedAt,
		Status:    string(status),
		Input: manifestInput{
			Name:     o.opts.InputFile,
			Size:     report.InputSize,
			Checksum: report.Checksum,
		},
		Generator: manifestGenerator{Command: o.opts.Renderer.Command()},
		Charts: manifestCharts{
			Dir:   o.opts.ChartsDir,
			Count: report.ChartCount,
		},
	}
	if err := writeManifest(report.ProjectDir, m); err != nil {
		o.trace(models.StageManifest, models.TraceWarning, err.Error())
	}
}

func (o *Orchestrator) trace(stage models.Stage, status, detail string) {
	o.opts.Trace(models.TraceEvent{Stage: stage, Status: status, Detail: detail})
}

func countCharts(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n
}
