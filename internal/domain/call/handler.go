package call

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carecall/carecall/internal/platform/vapi"
	"github.com/carecall/carecall/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:patient_id/calls", h.ListByPatient)
	api.GET("/schedules/:schedule_id/calls", h.ListBySchedule)
	api.GET("/calls/:id", h.Get)
	api.POST("/calls/:id/refresh", h.Refresh)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "call not found")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListBySchedule(c echo.Context) error {
	scheduleID, err := uuid.Parse(c.Param("schedule_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid schedule_id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBySchedule(c.Request().Context(), scheduleID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Refresh(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.Refresh(c.Request().Context(), id)
	if err != nil {
		var reqErr *vapi.RequestError
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "call not found")
		case errors.Is(err, ErrNoProviderCall):
			return echo.NewHTTPError(http.StatusConflict, "call has no provider call id")
		case errors.As(err, &reqErr):
			return echo.NewHTTPError(http.StatusBadGateway, reqErr.Message)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, rec)
}
