package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/service"
)

// HoldHandler exposes the hold lifecycle over HTTP.  All routes run
// behind JWT auth; the holder identity comes from the token, never
// from the body.
type HoldHandler struct {
	Holds *service.HoldService
}

func NewHoldHandler(holds *service.HoldService) *HoldHandler {
	if holds == nil {
		panic("nil service passed to NewHoldHandler")
	}
	return &HoldHandler{Holds: holds}
}

type acquireHoldReq struct {
	SeatNumbers []string `json:"seat_numbers"`
}

type holdResp struct {
	HoldID      string    `json:"hold_id"`
	TrainID     uint64    `json:"train_id"`
	SeatNumbers []string  `json:"seat_numbers"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Acquire handles POST /v1/trains/:id/hold.  All requested seats are
// claimed together or the request fails with no effect.
func (h *HoldHandler) Acquire(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	trainID, err := parseTrainID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	var req acquireHoldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	hold, err := h.Holds.AcquireHold(c.Request().Context(), trainID, req.SeatNumbers, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_numbers is required"})
		case errors.Is(err, model.ErrMaxSeatsExceeded):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "at most 4 seats per hold"})
		case errors.Is(err, model.ErrUnknownSeat):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat number"})
		case errors.Is(err, model.ErrTrainNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		case errors.Is(err, model.ErrSeatUnavailable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "some seats are unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hold failed"})
	}

	return c.JSON(http.StatusCreated, holdResp{
		HoldID:      hold.ID,
		TrainID:     hold.TrainID,
		SeatNumbers: hold.SeatNumbers,
		ExpiresAt:   hold.ExpiresAt,
	})
}

// Release handles DELETE /v1/holds/:hold_id.  Releasing a hold that
// already expired or was committed is a success, not an error.
func (h *HoldHandler) Release(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	holdID := strings.TrimSpace(c.Param("hold_id"))
	if holdID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}

	err := h.Holds.ReleaseHold(c.Request().Context(), holdID, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrHoldNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
		case errors.Is(err, model.ErrNotOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "release failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
