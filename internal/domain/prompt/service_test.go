package prompt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	prompts map[uuid.UUID]*Prompt
}

func newMockRepo() *mockRepo {
	return &mockRepo{prompts: make(map[uuid.UUID]*Prompt)}
}

func (m *mockRepo) Create(_ context.Context, p *Prompt) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.prompts[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prompt, error) {
	p, ok := m.prompts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prompt) error {
	m.prompts[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.prompts, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prompt, int, error) {
	var result []*Prompt
	for _, p := range m.prompts {
		if p.PatientID == patientID {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func TestCreatePromptValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if err := svc.Create(ctx, &Prompt{Name: "daily", Content: "hi"}); err == nil {
		t.Error("expected error for missing patient_id")
	}
	if err := svc.Create(ctx, &Prompt{PatientID: uuid.New(), Content: "hi"}); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Create(ctx, &Prompt{PatientID: uuid.New(), Name: "daily", Content: "  "}); err == nil {
		t.Error("expected error for blank content")
	}
}

func TestCreatePromptActivatesByDefault(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Prompt{PatientID: uuid.New(), Name: "daily check-in", Content: "Hello {{patientName}}"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsActive {
		t.Error("expected new prompt to be active")
	}
}

func TestListByPatientFilters(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	ctx := context.Background()

	pid := uuid.New()
	other := uuid.New()
	for _, owner := range []uuid.UUID{pid, pid, other} {
		p := &Prompt{PatientID: owner, Name: "p", Content: "c"}
		if err := svc.Create(ctx, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items, total, err := svc.ListByPatient(ctx, pid, 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 prompts for patient, got total=%d len=%d", total, len(items))
	}
}
