package prompt

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carecall/carecall/internal/domain/patient"
)

// Prompt maps to the prompt table. Content is a text template with
// {{patientName}}, {{patientAge}} and {{patientCondition}} placeholders.
type Prompt struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Render substitutes patient attributes into the template. An unknown age
// renders as an empty string rather than a sentinel.
func (p *Prompt) Render(pt *patient.Patient, now time.Time) string {
	age := ""
	if a := pt.Age(now); a >= 0 {
		age = strconv.Itoa(a)
	}
	out := strings.ReplaceAll(p.Content, "{{patientName}}", pt.FullName())
	out = strings.ReplaceAll(out, "{{patientAge}}", age)
	out = strings.ReplaceAll(out, "{{patientCondition}}", conditionLabel(pt.Condition))
	return out
}

func conditionLabel(condition string) string {
	switch condition {
	case patient.ConditionCHF:
		return "congestive heart failure"
	case patient.ConditionCOPD:
		return "COPD"
	default:
		return "a chronic condition"
	}
}
