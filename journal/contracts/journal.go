package contracts

import (
	"context"

	"github.com/Asterixfoods/asterix-charts/journal/models"
)

// IRunJournal persists provisioning run outcomes.
type IRunJournal interface {
	// Record appends one run to the journal.
	Record(ctx context.Context, record models.RunRecord) error
	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]models.RunRecord, error)
	// Count returns the number of recorded runs.
	Count(ctx context.Context) (int, error)
	// Clear removes all recorded runs.
	Clear(ctx context.Context) error
	Close() error
}
