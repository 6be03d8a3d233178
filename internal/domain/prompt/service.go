package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	prompts Repository
}

func NewService(prompts Repository) *Service {
	return &Service{prompts: prompts}
}

func (s *Service) Create(ctx context.Context, p *Prompt) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("content is required")
	}
	p.IsActive = true
	return s.prompts.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return s.prompts.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Prompt) error {
	if p.Content != "" && strings.TrimSpace(p.Content) == "" {
		return fmt.Errorf("content cannot be blank")
	}
	return s.prompts.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.prompts.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prompt, int, error) {
	return s.prompts.ListByPatient(ctx, patientID, limit, offset)
}
