package provisioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Asterixfoods/asterix-charts/journal"
	"github.com/Asterixfoods/asterix-charts/provisioner/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// stubRenderer stands in for the external chart generator. It records the
// working directory it was launched with and can emit chart files, fail, or
// run an arbitrary function to simulate interruption mid-render.
type stubRenderer struct {
	charts      int
	renderErr   error
	renderFn    func(ctx context.Context) error
	observedDir string
	sawStaged   bool
}

func (s *stubRenderer) Command() string { return "stub-generator" }

func (s *stubRenderer) Resolve() (string, error) { return "stub-generator", nil }

func (s *stubRenderer) Render(ctx context.Context, workDir string) error {
	s.observedDir = workDir
	if _, err := os.Stat(filepath.Join(workDir, "summary_data.csv")); err == nil {
		s.sawStaged = true
	}
	if s.charts > 0 {
		chartsDir := filepath.Join(workDir, "asterix_charts")
		if err := os.MkdirAll(chartsDir, 0o755); err != nil {
			return err
		}
		for i := 0; i < s.charts; i++ {
			name := fmt.Sprintf("chart_%02d.png", i+1)
			if err := os.WriteFile(filepath.Join(chartsDir, name), []byte("png"), 0o644); err != nil {
				return err
			}
		}
	}
	if s.renderFn != nil {
		return s.renderFn(ctx)
	}
	return s.renderErr
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 14, 7, 0, 0, time.Local)
}

// Test that a run without the input CSV fails without touching the folder
func TestOrchestrator_MissingInputLeavesNoTrace(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	j := journal.NewRunJournal(filepath.Join(baseDir, ".asterix-charts", "runs.db"))
	defer j.Close()

	orch := NewOrchestrator(Options{
		BaseDir:  baseDir,
		Renderer: &stubRenderer{},
		Journal:  j,
	})

	report, err := orch.Run(context.Background())
	require.NotNil(t, report)
	assert.ErrorIs(t, err, ErrMissingInput)
	assert.Equal(t, models.RunFailed, report.Status)

	// Not even the journal file may appear on this path
	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Repeated attempts behave the same
	_, err = orch.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingInput)
	entries, err = os.ReadDir(baseDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Test the full happy path: provision, stage, render, manifest, cleanup
func TestOrchestrator_SuccessfulRun(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	content := []byte("Product,Week,Sales\nLF Media,1,120\n")
	inputPath := filepath.Join(baseDir, "summary_data.csv")
	require.NoError(t, os.WriteFile(inputPath, content, 0o644))

	renderer := &stubRenderer{charts: 2}
	orch := NewOrchestrator(Options{
		BaseDir:       baseDir,
		Renderer:      renderer,
		Now:           fixedClock,
		WriteManifest: true,
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Project_03_05_2024_1407", report.ProjectName)
	assert.Equal(t, filepath.Join(baseDir, "Project_03_05_2024_1407"), report.ProjectDir)
	assert.Equal(t, models.RunCompleted, report.Status)
	assert.Equal(t, int64(len(content)), report.InputSize)
	assert.Equal(t, 2, report.ChartCount)
	assert.Len(t, report.Checksum, 16)

	info, err := os.Stat(report.ProjectDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The staged copy carries the original bytes
	staged, err := os.ReadFile(report.StagedCopy)
	require.NoError(t, err)
	assert.Equal(t, content, staged)

	// The top-level original is gone after a successful run
	_, err = os.Stat(inputPath)
	assert.True(t, os.IsNotExist(err))

	// The manifest reflects the completed run
	data, err := os.ReadFile(filepath.Join(report.ProjectDir, "run.yaml"))
	require.NoError(t, err)
	var m struct {
		RunID  string `yaml:"run_id"`
		Status string `yaml:"status"`
		Charts struct {
			Count int `yaml:"count"`
		} `yaml:"charts"`
	}
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, report.RunID, m.RunID)
	assert.Equal(t, "completed", m.Status)
	assert.Equal(t, 2, m.Charts.Count)
}

// Test that a generator failure keeps the original and the staged copy
func TestOrchestrator_RendererFailureKeepsData(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	content := []byte("Product,Week,Sales\nLF Retail,1,98\n")
	inputPath := filepath.Join(baseDir, "summary_data.csv")
	require.NoError(t, os.WriteFile(inputPath, content, 0o644))

	orch := NewOrchestrator(Options{
		BaseDir:       baseDir,
		Renderer:      &stubRenderer{renderErr: errors.New("exit status 3")},
		WriteManifest: true,
	})

	report, err := orch.Run(context.Background())
	assert.ErrorIs(t, err, ErrRenderer)
	assert.Equal(t, models.RunFailed, report.Status)

	// Original untouched
	original, err := os.ReadFile(inputPath)
	require.NoError(t, err)
	assert.Equal(t, content, original)

	// Staged copy kept for inspection and re-runs
	staged, err := os.ReadFile(report.StagedCopy)
	require.NoError(t, err)
	assert.Equal(t, content, staged)

	// The manifest records the failure
	data, err := os.ReadFile(filepath.Join(report.ProjectDir, "run.yaml"))
	require.NoError(t, err)
	var m struct {
		Status string `yaml:"status"`
	}
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "failed", m.Status)
}

// Test that the generator is launched with the project folder as its cwd
func TestOrchestrator_GeneratorRunsInProjectFolder(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "summary_data.csv"), []byte("Week,Sales\n"), 0o644))

	renderer := &stubRenderer{charts: 1}
	orch := NewOrchestrator(Options{BaseDir: baseDir, Renderer: renderer})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, report.ProjectDir, renderer.observedDir)
	assert.True(t, renderer.sawStaged, "generator should find summary_data.csv in its cwd")
}

// Test that a same-minute re-run gets a suffixed folder instead of a merge
func TestOrchestrator_CollisionGetsSuffix(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	require.NoError(t, os.Mkdir(filepath.Join(baseDir, "Project_03_05_2024_1407"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "summary_data.csv"), []byte("Week,Sales\n"), 0o644))

	orch := NewOrchestrator(Options{
		BaseDir:  baseDir,
		Renderer: &stubRenderer{charts: 1},
		Now:      fixedClock,
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Project_03_05_2024_1407_2", report.ProjectName)

	// The pre-existing folder is untouched
	entries, err := os.ReadDir(filepath.Join(baseDir, "Project_03_05_2024_1407"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// Test the keep-original switch
func TestOrchestrator_KeepOriginal(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	inputPath := filepath.Join(baseDir, "summary_data.csv")
	require.NoError(t, os.WriteFile(inputPath, []byte("Week,Sales\n"), 0o644))

	var events []models.TraceEvent
	orch := NewOrchestrator(Options{
		BaseDir:      baseDir,
		Renderer:     &stubRenderer{charts: 1},
		KeepOriginal: true,
		Trace:        func(e models.TraceEvent) { events = append(events, e) },
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RunCompleted, report.Status)

	// Both the original and the staged copy survive
	_, err = os.Stat(inputPath)
	assert.NoError(t, err)
	_, err = os.Stat(report.StagedCopy)
	assert.NoError(t, err)

	skipped := false
	for _, e := range events {
		if e.Stage == models.StageCleanup && e.Status == models.TraceSkipped {
			skipped = true
		}
	}
	assert.True(t, skipped, "cleanup should be traced as skipped")
}

// Test that cancellation mid-render rolls the whole run back
func TestOrchestrator_InterruptRollsBack(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	content := []byte("Product,Week,Sales\nLF Media,1,120\n")
	inputPath := filepath.Join(baseDir, "summary_data.csv")
	require.NoError(t, os.WriteFile(inputPath, content, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := &stubRenderer{
		charts: 1,
		renderFn: func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return ctx.Err()
		},
	}
	orch := NewOrchestrator(Options{BaseDir: baseDir, Renderer: renderer})

	report, err := orch.Run(ctx)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, models.RunRolledBack, report.Status)
	assert.Empty(t, report.StagedCopy)

	// The project folder and everything staged into it is gone
	_, err = os.Stat(report.ProjectDir)
	assert.True(t, os.IsNotExist(err))

	// The original is exactly where it was
	original, err := os.ReadFile(inputPath)
	require.NoError(t, err)
	assert.Equal(t, content, original)
}

// Test cancellation before any folder has been created
func TestOrchestrator_InterruptBeforeProvisioning(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "summary_data.csv"), []byte("Week,Sales\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := NewOrchestrator(Options{BaseDir: baseDir, Renderer: &stubRenderer{}})

	report, err := orch.Run(ctx)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, models.RunRolledBack, report.Status)

	// Only the input CSV remains
	entries, err := os.ReadDir(baseDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "summary_data.csv", entries[0].Name())
}

// Test that run outcomes land in the journal, and validation failures do not
func TestOrchestrator_JournalRecordsRuns(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "summary_data.csv"), []byte("Week,Sales\n"), 0o644))

	j := journal.NewRunJournal(filepath.Join(baseDir, ".asterix-charts", "runs.db"))
	defer j.Close()

	orch := NewOrchestrator(Options{
		BaseDir:  baseDir,
		Renderer: &stubRenderer{charts: 3},
		Now:      fixedClock,
		Journal:  j,
	})

	report, err := orch.Run(context.Background())
	require.NoError(t, err)

	records, err := j.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, report.RunID, records[0].ID)
	assert.Equal(t, report.ProjectName, records[0].Folder)
	assert.Equal(t, "completed", records[0].Status)
	assert.Equal(t, 3, records[0].ChartCount)
	assert.Equal(t, report.Checksum, records[0].Checksum)

	// The successful run consumed the CSV; the next attempt fails validation
	// and must not be journalled
	_, err = orch.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingInput)

	count, err := j.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// Test the stage progression reported for a clean run
func TestOrchestrator_TraceSequence(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	require.NoError(t, os.WriteFile(filepath.Join(baseDir, "summary_data.csv"), []byte("Week,Sales\n"), 0o644))

	var seen []string
	orch := NewOrchestrator(Options{
		BaseDir:  baseDir,
		Renderer: &stubRenderer{charts: 1},
		Trace: func(e models.TraceEvent) {
			seen = append(seen, fmt.Sprintf("%s:%s", e.Stage, e.Status))
		},
	})

	_, err = orch.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"validate:started", "validate:done",
		"provision:started", "provision:done",
		"staging:started", "staging:done",
		"render:started", "render:done",
		"cleanup:started", "cleanup:done",
	}, seen)
}

// Test that a directory named like the input file fails validation
func TestOrchestrator_InputIsDirectory(t *testing.T) {
	baseDir, err := os.MkdirTemp("", "orchestrator_test")
	require.NoError(t, err)
	defer os.RemoveAll(baseDir)

	require.NoError(t, os.Mkdir(filepath.Join(baseDir, "summary_data.csv"), 0o755))

	orch := NewOrchestrator(Options{BaseDir: baseDir, Renderer: &stubRenderer{}})

	_, err = orch.Run(context.Background())
	assert.ErrorIs(t, err, ErrMissingInput)
}
