package call

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carecall/carecall/internal/platform/vapi"
)

// Provider is the slice of the voice-provider client the reconciler needs.
type Provider interface {
	Get(ctx context.Context, providerCallID string) (*vapi.ProviderCall, error)
}

type Service struct {
	calls    Repository
	provider Provider
}

func NewService(calls Repository, provider Provider) *Service {
	return &Service{calls: calls, provider: provider}
}

func (s *Service) Create(ctx context.Context, c *Call) error {
	if c.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if c.PromptID == uuid.Nil {
		return fmt.Errorf("prompt_id is required")
	}
	if c.Status == "" {
		c.Status = StatusPending
	}
	return s.calls.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Call, error) {
	return s.calls.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Call, int, error) {
	return s.calls.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListBySchedule(ctx context.Context, scheduleID uuid.UUID, limit, offset int) ([]*Call, int, error) {
	return s.calls.ListBySchedule(ctx, scheduleID, limit, offset)
}

// Refresh pulls the provider's latest view of a call and merges it into the
// local record. The merge is idempotent and never lets a missing remote
// field erase previously captured data; repeating it against an unchanged
// provider snapshot leaves the record value-equal.
func (s *Service) Refresh(ctx context.Context, id uuid.UUID) (*Call, error) {
	c, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ProviderCallID == nil || *c.ProviderCallID == "" {
		return nil, ErrNoProviderCall
	}

	remote, err := s.provider.Get(ctx, *c.ProviderCallID)
	if err != nil {
		return nil, fmt.Errorf("sync call %s: %w", id, err)
	}

	merge(c, remote)

	if err := s.calls.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func merge(c *Call, remote *vapi.ProviderCall) {
	if remote.Status != "" {
		c.Status = StatusFromProvider(remote.Status)
	}
	if remote.StartedAt != nil {
		c.StartedAt = remote.StartedAt
	}
	if remote.EndedAt != nil {
		c.CompletedAt = remote.EndedAt
	}
	if d := remote.DurationSeconds(); d != nil {
		c.DurationSeconds = d
	}

	if remote.Artifact != nil {
		if remote.Artifact.RecordingURL != "" {
			v := remote.Artifact.RecordingURL
			c.RecordingURL = &v
		}
		if remote.Artifact.LogURL != "" {
			v := remote.Artifact.LogURL
			c.LogURL = &v
		}
		if remote.Artifact.TranscriptURL != "" {
			v := remote.Artifact.TranscriptURL
			c.TranscriptURL = &v
		}
		if entries := NormalizeTranscript(remote.Artifact.Messages); len(entries) > 0 {
			c.TranscriptEntries = entries
			flat := FlattenTranscript(entries)
			c.Transcript = &flat
		}
	}

	if remote.Analysis != nil {
		if remote.Analysis.Summary != "" {
			v := remote.Analysis.Summary
			c.AnalysisSummary = &v
		}
		if len(remote.Analysis.StructuredData) > 0 {
			c.AnalysisStructured = remote.Analysis.StructuredData
		}
		if remote.Analysis.SuccessEvaluation != "" {
			v := remote.Analysis.SuccessEvaluation
			c.AnalysisSuccess = &v
		}
	}
}
