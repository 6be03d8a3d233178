package schedule

import "time"

// IsDue reports whether a schedule should fire at the given instant. Calendar
// arithmetic for recurring schedules happens in loc, which should be the
// patient's time zone.
//
// One-time schedules are due once their instant has passed and they have not
// fired before. Recurring schedules fire at most once per calendar day, on
// the matching weekday or day-of-month for weekly and monthly rules, and only
// once the configured time-of-day has been reached. Schedules of type "now"
// are executed synchronously at creation and are never due here.
func IsDue(s *Schedule, now time.Time, loc *time.Location) bool {
	if !s.IsActive {
		return false
	}

	switch s.Type {
	case TypeOneTime:
		return s.ScheduledTime != nil && !s.ScheduledTime.After(now) && s.LastExecutedAt == nil
	case TypeRecurring:
		return recurringDue(s, now, loc)
	default:
		return false
	}
}

// PeriodStart returns the beginning of the firing period that an execution at
// now would satisfy. For recurring schedules that is local midnight, which
// makes "fired already this period" a comparison against LastExecutedAt. For
// one-time schedules any prior execution disqualifies, so the zero time is
// returned.
func PeriodStart(s *Schedule, now time.Time, loc *time.Location) time.Time {
	if s.Type != TypeRecurring {
		return time.Time{}
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

func recurringDue(s *Schedule, now time.Time, loc *time.Location) bool {
	local := now.In(loc)

	if s.PastEndDate(now, loc) {
		return false
	}
	if firedToday(s, local, loc) {
		return false
	}
	if !timeOfDayReached(s, local, loc) {
		return false
	}

	switch s.RecurrenceType {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return s.DayOfWeek != nil && int(local.Weekday()) == *s.DayOfWeek
	case RecurrenceMonthly:
		if s.DayOfMonth == nil {
			return false
		}
		return local.Day() == clampDayOfMonth(*s.DayOfMonth, local.Year(), local.Month())
	default:
		return false
	}
}

func firedToday(s *Schedule, local time.Time, loc *time.Location) bool {
	if s.LastExecutedAt == nil {
		return false
	}
	last := s.LastExecutedAt.In(loc)
	return last.Year() == local.Year() && last.YearDay() == local.YearDay()
}

// timeOfDayReached compares wall-clock time against the time-of-day component
// of ScheduledTime. A schedule without one is due any time of day.
func timeOfDayReached(s *Schedule, local time.Time, loc *time.Location) bool {
	if s.ScheduledTime == nil {
		return true
	}
	want := s.ScheduledTime.In(loc)
	nowMinutes := local.Hour()*60 + local.Minute()
	wantMinutes := want.Hour()*60 + want.Minute()
	return nowMinutes >= wantMinutes
}

// clampDayOfMonth pins a configured day to the last day of shorter months,
// so a day-31 schedule fires on Feb 28/29, Apr 30 and so on.
func clampDayOfMonth(day, year int, month time.Month) int {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}
