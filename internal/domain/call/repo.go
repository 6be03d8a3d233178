package call

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists call records. GetByID returns ErrNotFound for an
// unknown id.
type Repository interface {
	Create(ctx context.Context, c *Call) error
	GetByID(ctx context.Context, id uuid.UUID) (*Call, error)
	Update(ctx context.Context, c *Call) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Call, int, error)
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID, limit, offset int) ([]*Call, int, error)
}
