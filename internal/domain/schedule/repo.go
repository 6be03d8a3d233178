package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Schedule, int, error)
	ListActive(ctx context.Context) ([]*Schedule, error)

	// ClaimDue atomically stamps last_executed_at and the attempt counters
	// when the schedule is active and has not fired since periodStart. The
	// attempt counter restarts at 1 when this is the first attempt of the
	// period. The returned bool is the claim: true means this caller holds
	// firing rights for the period and no concurrent caller can obtain them.
	ClaimDue(ctx context.Context, id uuid.UUID, now, periodStart time.Time) (bool, error)

	// ReleaseClaim restores last_executed_at after a failed initiation so the
	// schedule becomes due again. Attempt counters are left in place.
	ReleaseClaim(ctx context.Context, id uuid.UUID, prev *time.Time) error

	Deactivate(ctx context.Context, id uuid.UUID) error
}
