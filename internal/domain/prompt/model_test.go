package prompt

import (
	"testing"
	"time"

	"github.com/carecall/carecall/internal/domain/patient"
)

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	birth := time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)
	pt := &patient.Patient{
		FirstName: "Mary",
		LastName:  "Jones",
		BirthDate: &birth,
		Condition: patient.ConditionCHF,
	}
	p := &Prompt{Content: "Call {{patientName}}, age {{patientAge}}, about {{patientCondition}}."}

	got := p.Render(pt, now)
	want := "Call Mary Jones, age 76, about congestive heart failure."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderWithoutBirthDate(t *testing.T) {
	pt := &patient.Patient{FirstName: "Bob", Condition: patient.ConditionCOPD}
	p := &Prompt{Content: "{{patientName}} ({{patientAge}}) has {{patientCondition}}"}

	got := p.Render(pt, time.Now())
	want := "Bob () has COPD"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderRepeatedPlaceholder(t *testing.T) {
	pt := &patient.Patient{FirstName: "Ann", Condition: "other"}
	p := &Prompt{Content: "Hi {{patientName}}. {{patientName}}, how are you?"}

	got := p.Render(pt, time.Now())
	want := "Hi Ann. Ann, how are you?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
