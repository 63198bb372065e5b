package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meetsync/scheduler/internal/dto"
	"github.com/meetsync/scheduler/internal/service"
)

type SlotHandler struct {
	svc service.SlotService
}

func NewSlotHandler(svc service.SlotService) *SlotHandler {
	return &SlotHandler{svc: svc}
}

func (h *SlotHandler) RegisterRoutes(e *echo.Echo) {
	owners := e.Group("/api/v1/owners")
	owners.POST("/:ownerId/slots", h.CreateSlot)
	owners.GET("/:ownerId/slots", h.ListSlots)

	slots := e.Group("/api/v1/slots")
	slots.GET("/:id", h.GetSlot)
	slots.PATCH("/:id/availability", h.SetAvailability)
	slots.DELETE("/:id", h.DeleteSlot)
}

func (h *SlotHandler) CreateSlot(c echo.Context) error {
	ownerID := c.Param("ownerId")

	var req dto.CreateSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	slot, err := h.svc.CreateSlot(c.Request().Context(), ownerID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInterval), errors.Is(err, service.ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateSlot):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) ListSlots(c echo.Context) error {
	ownerID := c.Param("ownerId")
	from := c.QueryParam("from")
	to := c.QueryParam("to")

	slots, err := h.svc.ListSlots(c.Request().Context(), ownerID, from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.SlotResponse, len(slots))
	for i := range slots {
		resp[i] = dto.ToSlotResponse(&slots[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SlotHandler) GetSlot(c echo.Context) error {
	slot, err := h.svc.GetSlot(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) SetAvailability(c echo.Context) error {
	var req dto.SetAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Available == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "available is required")
	}

	slot, err := h.svc.SetAvailability(c.Request().Context(), c.Param("id"), *req.Available)
	if err != nil {
		if errors.Is(err, service.ErrSlotNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToSlotResponse(slot))
}

func (h *SlotHandler) DeleteSlot(c echo.Context) error {
	err := h.svc.DeleteSlot(c.Request().Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlotNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrSlotBooked):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.NoContent(http.StatusNoContent)
}
