package call

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Call statuses. The status only moves forward: pending, in-progress, then
// completed or failed.
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

var (
	// ErrNotFound is returned when no call exists for the given id.
	ErrNotFound = errors.New("call not found")
	// ErrNoProviderCall is returned when a refresh is requested for a call
	// that was never accepted by the provider.
	ErrNoProviderCall = errors.New("call has no provider call id")
)

// providerStatusMap is the fixed lookup from provider call states to local
// statuses. Unrecognized provider states map to pending.
var providerStatusMap = map[string]string{
	"queued":      StatusPending,
	"scheduled":   StatusPending,
	"ringing":     StatusInProgress,
	"in-progress": StatusInProgress,
	"forwarding":  StatusInProgress,
	"ended":       StatusCompleted,
}

// StatusFromProvider maps a provider call state to a local status.
func StatusFromProvider(providerStatus string) string {
	if s, ok := providerStatusMap[providerStatus]; ok {
		return s
	}
	return StatusPending
}

// TranscriptEntry is one normalized utterance of a call transcript.
type TranscriptEntry struct {
	Role             string   `json:"role"`
	Message          string   `json:"message"`
	SecondsFromStart *float64 `json:"seconds_from_start,omitempty"`
}

// Call maps to the call_record table. One row per phone-call attempt.
type Call struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	PatientID          uuid.UUID         `db:"patient_id" json:"patient_id"`
	PromptID           uuid.UUID         `db:"prompt_id" json:"prompt_id"`
	ScheduleID         *uuid.UUID        `db:"schedule_id" json:"schedule_id,omitempty"`
	PhoneNumber        string            `db:"phone_number" json:"phone_number"`
	ProviderCallID     *string           `db:"provider_call_id" json:"provider_call_id,omitempty"`
	Status             string            `db:"status" json:"status"`
	StartedAt          *time.Time        `db:"started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time        `db:"completed_at" json:"completed_at,omitempty"`
	DurationSeconds    *int              `db:"duration_seconds" json:"duration_seconds,omitempty"`
	Transcript         *string           `db:"transcript" json:"transcript,omitempty"`
	TranscriptEntries  []TranscriptEntry `db:"transcript_entries" json:"transcript_entries,omitempty"`
	RecordingURL       *string           `db:"recording_url" json:"recording_url,omitempty"`
	LogURL             *string           `db:"log_url" json:"log_url,omitempty"`
	TranscriptURL      *string           `db:"transcript_url" json:"transcript_url,omitempty"`
	AnalysisSummary    *string           `db:"analysis_summary" json:"analysis_summary,omitempty"`
	AnalysisStructured json.RawMessage   `db:"analysis_structured" json:"analysis_structured,omitempty"`
	AnalysisSuccess    *string           `db:"analysis_success" json:"analysis_success,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}
