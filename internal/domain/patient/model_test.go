package patient

import (
	"testing"
	"time"
)

func TestFullName(t *testing.T) {
	p := &Patient{FirstName: "Mary", LastName: "Jones"}
	if got := p.FullName(); got != "Mary Jones" {
		t.Errorf("expected Mary Jones, got %q", got)
	}
	p = &Patient{FirstName: "Cher"}
	if got := p.FullName(); got != "Cher" {
		t.Errorf("expected Cher, got %q", got)
	}
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	birth := time.Date(1950, 6, 15, 0, 0, 0, 0, time.UTC)
	p := &Patient{BirthDate: &birth}
	if got := p.Age(now); got != 76 {
		t.Errorf("expected 76 on birthday, got %d", got)
	}

	birth = time.Date(1950, 6, 16, 0, 0, 0, 0, time.UTC)
	p = &Patient{BirthDate: &birth}
	if got := p.Age(now); got != 75 {
		t.Errorf("expected 75 the day before birthday, got %d", got)
	}

	p = &Patient{}
	if got := p.Age(now); got != -1 {
		t.Errorf("expected -1 without birth date, got %d", got)
	}
}

func TestNormalizedPhone(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"(555) 123-4567", "+15551234567"},
		{"555-123-4567", "+15551234567"},
		{"1 555 123 4567", "+15551234567"},
		{"+1 555 123 4567", "+15551234567"},
		{"+44 20 7946 0958", "+442079460958"},
		{"", ""},
	}
	for _, c := range cases {
		p := &Patient{Phone: c.in}
		if got := p.NormalizedPhone(); got != c.want {
			t.Errorf("NormalizedPhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	tz := "America/New_York"
	p := &Patient{Timezone: &tz}
	if got := p.Location(time.UTC); got.String() != ny.String() {
		t.Errorf("expected America/New_York, got %v", got)
	}

	bad := "Mars/OlympusMons"
	p = &Patient{Timezone: &bad}
	if got := p.Location(time.UTC); got != time.UTC {
		t.Errorf("expected fallback for invalid zone, got %v", got)
	}

	p = &Patient{}
	if got := p.Location(time.UTC); got != time.UTC {
		t.Errorf("expected fallback when unset, got %v", got)
	}
}
