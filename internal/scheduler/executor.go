// Package scheduler drives the outbound-call pipeline: it evaluates which
// schedules are due, claims firing rights, places calls through the voice
// provider and records the results.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carecall/carecall/internal/domain/call"
	"github.com/carecall/carecall/internal/domain/patient"
	"github.com/carecall/carecall/internal/domain/prompt"
	"github.com/carecall/carecall/internal/domain/schedule"
	"github.com/carecall/carecall/internal/platform/vapi"
)

// ErrBrokenReference marks a schedule whose patient or prompt no longer
// exists. The schedule is skipped; the rest of the batch continues.
var ErrBrokenReference = errors.New("schedule references a missing patient or prompt")

// PatientStore is the slice of the patient repository the executor needs.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// PromptStore is the slice of the prompt repository the executor needs.
type PromptStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*prompt.Prompt, error)
}

// Caller initiates calls at the voice provider.
type Caller interface {
	Start(ctx context.Context, req vapi.CallRequest) (*vapi.ProviderCall, error)
}

// Summary aggregates one executor pass. Failures are isolated per schedule
// and never abort the batch.
type Summary struct {
	Executed int
	Failed   int
	Skipped  int
}

type Executor struct {
	schedules schedule.Repository
	patients  PatientStore
	prompts   PromptStore
	calls     call.Repository
	caller    Caller

	assistantID   string
	phoneNumberID string
	defaultLoc    *time.Location
	maxAttempts   int
	log           zerolog.Logger
}

type Config struct {
	AssistantID   string
	PhoneNumberID string
	DefaultLoc    *time.Location
	MaxAttempts   int
}

func NewExecutor(schedules schedule.Repository, patients PatientStore, prompts PromptStore,
	calls call.Repository, caller Caller, cfg Config, log zerolog.Logger) *Executor {
	if cfg.DefaultLoc == nil {
		cfg.DefaultLoc = time.UTC
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	return &Executor{
		schedules:     schedules,
		patients:      patients,
		prompts:       prompts,
		calls:         calls,
		caller:        caller,
		assistantID:   cfg.AssistantID,
		phoneNumberID: cfg.PhoneNumberID,
		defaultLoc:    cfg.DefaultLoc,
		maxAttempts:   cfg.MaxAttempts,
		log:           log,
	}
}

// Run evaluates every active schedule against now and fires the due ones.
// Each schedule is processed independently.
func (e *Executor) Run(ctx context.Context, now time.Time) Summary {
	var sum Summary

	scheds, err := e.schedules.ListActive(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("list active schedules")
		sum.Failed++
		return sum
	}

	for _, s := range scheds {
		switch e.runOne(ctx, s, now) {
		case outcomeExecuted:
			sum.Executed++
		case outcomeFailed:
			sum.Failed++
		default:
			sum.Skipped++
		}
	}
	return sum
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeExecuted
	outcomeFailed
)

func (e *Executor) runOne(ctx context.Context, s *schedule.Schedule, now time.Time) outcome {
	pt, err := e.patients.GetByID(ctx, s.PatientID)
	if err != nil {
		// An orphan that would not fire anyway is not worth a failure on
		// every poll; it only counts once it would otherwise be due.
		if !schedule.IsDue(s, now, e.defaultLoc) {
			return outcomeSkipped
		}
		e.log.Warn().Err(ErrBrokenReference).Str("schedule_id", s.ID.String()).
			Str("patient_id", s.PatientID.String()).Msg("skipping schedule")
		return outcomeFailed
	}

	loc := pt.Location(e.defaultLoc)
	if !schedule.IsDue(s, now, loc) {
		return outcomeSkipped
	}

	// The retry budget is scoped to the firing period: attempts recorded
	// before the current period started do not count against it.
	attempts := s.AttemptCount
	if s.LastAttemptAt == nil || s.LastAttemptAt.Before(schedule.PeriodStart(s, now, loc)) {
		attempts = 0
	}
	if attempts >= e.maxAttempts {
		e.log.Warn().Str("schedule_id", s.ID.String()).Int("attempts", s.AttemptCount).
			Msg("retry budget exhausted, deactivating schedule")
		if err := e.schedules.Deactivate(ctx, s.ID); err != nil {
			e.log.Error().Err(err).Str("schedule_id", s.ID.String()).Msg("deactivate schedule")
		}
		return outcomeFailed
	}

	pr, err := e.prompts.GetByID(ctx, s.PromptID)
	if err != nil {
		e.log.Warn().Err(ErrBrokenReference).Str("schedule_id", s.ID.String()).
			Str("prompt_id", s.PromptID.String()).Msg("skipping schedule")
		return outcomeFailed
	}

	// Claim firing rights before touching the provider so overlapping
	// executors cannot fire the same schedule twice in one period.
	prev := s.LastExecutedAt
	claimed, err := e.schedules.ClaimDue(ctx, s.ID, now, schedule.PeriodStart(s, now, loc))
	if err != nil {
		e.log.Error().Err(err).Str("schedule_id", s.ID.String()).Msg("claim schedule")
		return outcomeFailed
	}
	if !claimed {
		return outcomeSkipped
	}

	if err := e.fire(ctx, s, pt, pr, now); err != nil {
		// The claim is rolled back so the next poll retries; attempt
		// counters stay in place to bound those retries.
		if relErr := e.schedules.ReleaseClaim(ctx, s.ID, prev); relErr != nil {
			e.log.Error().Err(relErr).Str("schedule_id", s.ID.String()).Msg("release claim")
		}
		e.log.Error().Err(err).Str("schedule_id", s.ID.String()).Msg("call initiation failed")
		return outcomeFailed
	}

	e.finalize(ctx, s, now, loc)
	return outcomeExecuted
}

// fire renders the prompt, initiates the call and records the attempt. A
// call record is written whether or not the provider accepted.
func (e *Executor) fire(ctx context.Context, s *schedule.Schedule, pt *patient.Patient, pr *prompt.Prompt, now time.Time) error {
	rec := &call.Call{
		PatientID:   pt.ID,
		PromptID:    pr.ID,
		PhoneNumber: pt.NormalizedPhone(),
	}
	if s.ID != uuid.Nil {
		sid := s.ID
		rec.ScheduleID = &sid
	}

	provCall, err := e.caller.Start(ctx, vapi.CallRequest{
		AssistantID:    e.assistantID,
		PhoneNumberID:  e.phoneNumberID,
		CustomerNumber: pt.NormalizedPhone(),
		PromptOverride: pr.Render(pt, now),
	})
	if err != nil {
		rec.Status = call.StatusFailed
		if createErr := e.calls.Create(ctx, rec); createErr != nil {
			e.log.Error().Err(createErr).Str("schedule_id", s.ID.String()).Msg("record failed call")
		}
		return err
	}

	rec.ProviderCallID = &provCall.ID
	rec.Status = call.StatusFromProvider(provCall.Status)
	if rec.Status == call.StatusInProgress {
		rec.StartedAt = &now
	}
	if err := e.calls.Create(ctx, rec); err != nil {
		// The provider accepted the call; losing the record is logged but
		// the schedule still advances.
		e.log.Error().Err(err).Str("provider_call_id", provCall.ID).Msg("record call")
	}
	return nil
}

// finalize resets the retry budget after a successful initiation and retires
// schedules that have run their course.
func (e *Executor) finalize(ctx context.Context, s *schedule.Schedule, now time.Time, loc *time.Location) {
	n := now
	s.LastExecutedAt = &n
	s.LastAttemptAt = &n
	s.AttemptCount = 0
	if s.Type == schedule.TypeOneTime || s.Type == schedule.TypeNow {
		s.IsActive = false
	}
	if s.Type == schedule.TypeRecurring && s.EndDateReached(now, loc) {
		s.IsActive = false
	}
	if err := e.schedules.Update(ctx, s); err != nil {
		e.log.Error().Err(err).Str("schedule_id", s.ID.String()).Msg("finalize schedule")
	}
}

// ExecuteNow places the call for a freshly created "now" schedule without
// going through the poller.
func (e *Executor) ExecuteNow(ctx context.Context, s *schedule.Schedule) error {
	pt, err := e.patients.GetByID(ctx, s.PatientID)
	if err != nil {
		return ErrBrokenReference
	}
	pr, err := e.prompts.GetByID(ctx, s.PromptID)
	if err != nil {
		return ErrBrokenReference
	}

	now := time.Now()
	if err := e.fire(ctx, s, pt, pr, now); err != nil {
		return err
	}
	e.finalize(ctx, s, now, pt.Location(e.defaultLoc))
	return nil
}
