package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Schedule types.
const (
	TypeOneTime   = "one-time"
	TypeRecurring = "recurring"
	TypeNow       = "now"
)

// Recurrence types.
const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

var validTypes = map[string]bool{
	TypeOneTime: true, TypeRecurring: true, TypeNow: true,
}

var validRecurrences = map[string]bool{
	RecurrenceNone: true, RecurrenceDaily: true,
	RecurrenceWeekly: true, RecurrenceMonthly: true,
}

// Schedule maps to the schedule table. For one-time schedules ScheduledTime
// is the absolute due instant; for recurring schedules only its time-of-day
// component is meaningful.
type Schedule struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	PatientID         uuid.UUID  `db:"patient_id" json:"patient_id"`
	PromptID          uuid.UUID  `db:"prompt_id" json:"prompt_id"`
	Type              string     `db:"schedule_type" json:"type"`
	ScheduledTime     *time.Time `db:"scheduled_time" json:"scheduled_time,omitempty"`
	RecurrenceType    string     `db:"recurrence_type" json:"recurrence_type"`
	RecurrenceEndDate *time.Time `db:"recurrence_end_date" json:"recurrence_end_date,omitempty"`
	DayOfWeek         *int       `db:"day_of_week" json:"day_of_week,omitempty"`
	DayOfMonth        *int       `db:"day_of_month" json:"day_of_month,omitempty"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	LastExecutedAt    *time.Time `db:"last_executed_at" json:"last_executed_at,omitempty"`
	AttemptCount      int        `db:"attempt_count" json:"attempt_count"`
	LastAttemptAt     *time.Time `db:"last_attempt_at" json:"last_attempt_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// PastEndDate reports whether the instant falls on a calendar day after the
// recurrence end date. Schedules without an end date never expire.
func (s *Schedule) PastEndDate(now time.Time, loc *time.Location) bool {
	if s.RecurrenceEndDate == nil {
		return false
	}
	end := s.RecurrenceEndDate.In(loc)
	endOfDay := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)
	return now.In(loc).After(endOfDay)
}

// EndDateReached reports whether the instant falls on or after the recurrence
// end date's calendar day. Once it does, no later firing remains, so a run on
// the end date itself is the schedule's last.
func (s *Schedule) EndDateReached(now time.Time, loc *time.Location) bool {
	if s.RecurrenceEndDate == nil {
		return false
	}
	end := s.RecurrenceEndDate.In(loc)
	local := now.In(loc)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	nowDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return !nowDay.Before(endDay)
}
