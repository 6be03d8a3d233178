package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type fakeRunner struct {
	ran []uuid.UUID
	err error
}

func (f *fakeRunner) ExecuteNow(_ context.Context, s *Schedule) error {
	f.ran = append(f.ran, s.ID)
	return f.err
}

func newTestHandler(runner NowRunner) (*Handler, *echo.Echo) {
	svc := NewService(newMockRepo())
	h := NewHandler(svc, runner)
	e := echo.New()
	return h, e
}

func TestHandler_CreateSchedule(t *testing.T) {
	h, e := newTestHandler(nil)
	when := time.Now().Add(time.Hour).Format(time.RFC3339)
	body := `{"patient_id":"` + uuid.New().String() + `","prompt_id":"` + uuid.New().String() +
		`","type":"one-time","scheduled_time":"` + when + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var got Schedule
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.IsActive {
		t.Error("expected created schedule to be active")
	}
}

func TestHandler_CreateSchedule_BadRequest(t *testing.T) {
	h, e := newTestHandler(nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err == nil {
		t.Error("expected error for missing fields")
	}
}

func TestHandler_CreateNowScheduleRunsImmediately(t *testing.T) {
	runner := &fakeRunner{}
	h, e := newTestHandler(runner)
	body := `{"patient_id":"` + uuid.New().String() + `","prompt_id":"` + uuid.New().String() + `","type":"now"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if len(runner.ran) != 1 {
		t.Errorf("expected the runner invoked once, got %d", len(runner.ran))
	}
}

func TestHandler_CreateOneTimeDoesNotRunImmediately(t *testing.T) {
	runner := &fakeRunner{}
	h, e := newTestHandler(runner)
	when := time.Now().Add(time.Hour).Format(time.RFC3339)
	body := `{"patient_id":"` + uuid.New().String() + `","prompt_id":"` + uuid.New().String() +
		`","type":"one-time","scheduled_time":"` + when + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.ran) != 0 {
		t.Errorf("one-time schedules must not run at creation, runner invoked %d times", len(runner.ran))
	}
}

func TestHandler_Cancel(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	h := NewHandler(svc, nil)
	e := echo.New()

	s := validOneTime()
	if err := svc.Create(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(s.ID.String())

	if err := h.Cancel(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if s.IsActive {
		t.Error("expected schedule deactivated")
	}
}

func TestHandler_GetSchedule_InvalidID(t *testing.T) {
	h, e := newTestHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.Get(c); err == nil {
		t.Error("expected error for invalid id")
	}
}
