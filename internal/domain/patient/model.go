package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Conditions tracked by the care program.
const (
	ConditionCHF   = "chf"
	ConditionCOPD  = "copd"
	ConditionOther = "other"
)

var validConditions = map[string]bool{
	ConditionCHF: true, ConditionCOPD: true, ConditionOther: true,
}

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	FirstName string     `db:"first_name" json:"first_name"`
	LastName  string     `db:"last_name" json:"last_name"`
	Email     string     `db:"email" json:"email"`
	Phone     string     `db:"phone" json:"phone"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Condition string     `db:"condition" json:"condition"`
	Timezone  *string    `db:"timezone" json:"timezone,omitempty"`
	Active    bool       `db:"active" json:"active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName returns first and last name joined with a space.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Age returns the patient's age in whole years at the given instant, or -1
// when no birth date is recorded.
func (p *Patient) Age(now time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	b := *p.BirthDate
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return -1
	}
	return age
}

// NormalizedPhone returns the phone number in E.164 form. Digits are kept,
// separators dropped. Ten-digit numbers are assumed to be North American.
func (p *Patient) NormalizedPhone() string {
	var digits strings.Builder
	for _, r := range p.Phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case d == "":
		return ""
	case len(d) == 10:
		return "+1" + d
	case len(d) == 11 && d[0] == '1':
		return "+" + d
	default:
		return "+" + d
	}
}

// Location resolves the patient's time zone, falling back to the given
// default when none is set or the stored name is invalid.
func (p *Patient) Location(fallback *time.Location) *time.Location {
	if p.Timezone == nil || *p.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(*p.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
