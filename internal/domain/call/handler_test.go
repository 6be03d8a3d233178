package call

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carecall/carecall/internal/platform/vapi"
)

func newTestHandler(provider Provider) (*Handler, *mockRepo, *echo.Echo) {
	repo := newMockRepo()
	h := NewHandler(NewService(repo, provider))
	return h, repo, echo.New()
}

func refreshContext(e *echo.Echo, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestHandler_Refresh(t *testing.T) {
	provider := &mockProvider{call: &vapi.ProviderCall{ID: "prov-1", Status: "ended"}}
	h, repo, e := newTestHandler(provider)
	id := newStoredCall(t, repo, "prov-1")

	c, rec := refreshContext(e, id.String())
	if err := h.Refresh(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Refresh_NotFound(t *testing.T) {
	h, _, e := newTestHandler(&mockProvider{})
	c, _ := refreshContext(e, uuid.New().String())

	err := h.Refresh(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Refresh_NoProviderCall(t *testing.T) {
	h, repo, e := newTestHandler(&mockProvider{})
	id := newStoredCall(t, repo, "")
	c, _ := refreshContext(e, id.String())

	err := h.Refresh(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %v", err)
	}
}

func TestHandler_Refresh_ProviderFailure(t *testing.T) {
	provider := &mockProvider{err: &vapi.RequestError{StatusCode: 500, Message: "upstream broke"}}
	h, repo, e := newTestHandler(provider)
	id := newStoredCall(t, repo, "prov-1")
	c, _ := refreshContext(e, id.String())

	err := h.Refresh(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %v", err)
	}
}

func TestHandler_Get(t *testing.T) {
	h, repo, e := newTestHandler(&mockProvider{})
	id := newStoredCall(t, repo, "prov-1")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
