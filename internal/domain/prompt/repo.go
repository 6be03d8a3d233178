package prompt

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prompt) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Update(ctx context.Context, p *Prompt) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prompt, int, error)
}
