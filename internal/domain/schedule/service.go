package schedule

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	schedules Repository
}

func NewService(schedules Repository) *Service {
	return &Service{schedules: schedules}
}

func (s *Service) Create(ctx context.Context, sched *Schedule) error {
	if sched.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if sched.PromptID == uuid.Nil {
		return fmt.Errorf("prompt_id is required")
	}
	if !validTypes[sched.Type] {
		return fmt.Errorf("invalid schedule type: %s", sched.Type)
	}
	if sched.RecurrenceType == "" {
		sched.RecurrenceType = RecurrenceNone
	}
	if !validRecurrences[sched.RecurrenceType] {
		return fmt.Errorf("invalid recurrence type: %s", sched.RecurrenceType)
	}

	switch sched.Type {
	case TypeOneTime:
		if sched.ScheduledTime == nil {
			return fmt.Errorf("scheduled_time is required for one-time schedules")
		}
		sched.RecurrenceType = RecurrenceNone
	case TypeRecurring:
		if sched.RecurrenceType == RecurrenceNone {
			return fmt.Errorf("recurrence_type is required for recurring schedules")
		}
		if sched.RecurrenceType == RecurrenceWeekly {
			if sched.DayOfWeek == nil || *sched.DayOfWeek < 0 || *sched.DayOfWeek > 6 {
				return fmt.Errorf("day_of_week must be 0-6 for weekly schedules")
			}
		}
		if sched.RecurrenceType == RecurrenceMonthly {
			if sched.DayOfMonth == nil || *sched.DayOfMonth < 1 || *sched.DayOfMonth > 31 {
				return fmt.Errorf("day_of_month must be 1-31 for monthly schedules")
			}
		}
	}

	sched.IsActive = true
	return s.schedules.Create(ctx, sched)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, sched *Schedule) error {
	if sched.Type != "" && !validTypes[sched.Type] {
		return fmt.Errorf("invalid schedule type: %s", sched.Type)
	}
	if sched.RecurrenceType != "" && !validRecurrences[sched.RecurrenceType] {
		return fmt.Errorf("invalid recurrence type: %s", sched.RecurrenceType)
	}
	return s.schedules.Update(ctx, sched)
}

// Cancel deactivates a schedule so the poller never evaluates it again.
// Schedules are kept for audit; deletion only happens via patient cascade.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.schedules.Deactivate(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.schedules.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Schedule, int, error) {
	return s.schedules.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListActive(ctx context.Context) ([]*Schedule, error) {
	return s.schedules.ListActive(ctx)
}
