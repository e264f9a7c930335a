// Package repository persists analysis runs and serves their trial summaries.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/okian/freethrow/internal/domain/model"
)

// Run is one analysis pass over a participant's trials.
type Run struct {
	ID            uuid.UUID            `json:"id"`
	ParticipantID string               `json:"participant_id"`
	Spread        string               `json:"spread"`
	CreatedAt     time.Time            `json:"created_at"`
	Summaries     []model.TrialSummary `json:"summaries"`
}

// Store provides read/write access to analysis runs. Reads are served from
// the most recently saved run.
type Store interface {
	// Save persists run and makes it the latest.
	Save(ctx context.Context, run Run) error

	// Latest returns the most recent run. Returns ErrNotFound if none was saved.
	Latest(ctx context.Context) (Run, error)

	// Trials returns the summaries of the latest run in trial order.
	Trials(ctx context.Context) ([]model.TrialSummary, error)

	// Trial returns one summary of the latest run by trial id.
	// Returns ErrNotFound if the trial is unknown.
	Trial(ctx context.Context, trialID string) (model.TrialSummary, error)

	// Count returns the number of trials in the latest run.
	Count(ctx context.Context) (int, error)

	Close() error
}
