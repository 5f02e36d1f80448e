package models

import "time"

// RunStatus is the terminal state of a provisioning run.
type RunStatus string

const (
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
	RunRolledBack RunStatus = "rolled_back"
)

// Stage identifies one step of the provisioning sequence.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageProvision Stage = "provision"
	StageStaging   Stage = "staging"
	StageRender    Stage = "render"
	StageCleanup   Stage = "cleanup"
	StageRollback  Stage = "rollback"
	StageManifest  Stage = "manifest"
	StageJournal   Stage = "journal"
)

// Trace statuses emitted around each stage.
const (
	TraceStarted = "started"
	TraceDone    = "done"
	TraceFailed  = "failed"
	TraceSkipped = "skipped"
	TraceWarning = "warning"
)

// TraceEvent reports stage progress to whoever is watching (usually the CLI).
type TraceEvent struct {
	Stage  Stage
	Status string
	Detail string
}

// RunReport describes the outcome of a provisioning run.
type RunReport struct {
	RunID       string
	ProjectName string
	ProjectDir  string
	StagedCopy  string
	ChartsDir   string
	Checksum    string
	InputSize   int64
	ChartCount  int
	Status      RunStatus
	StartedAt   time.Time
	FinishedAt  time.Time
}
