package models

import "time"

// RunRecord is one journal row describing a provisioning run.
type RunRecord struct {
	ID         string
	Folder     string
	InputFile  string
	Checksum   string
	Status     string
	ErrorKind  string
	ChartCount int
	StartedAt  time.Time
	FinishedAt time.Time
}
