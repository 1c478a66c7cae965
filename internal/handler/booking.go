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

// BookingHandler exposes commit and booking listing.  Commit is
// idempotent per hold, so clients that time out may simply resend.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type commitReq struct {
	Passenger struct {
		Name   string `json:"name"`
		Age    int    `json:"age"`
		Gender string `json:"gender"`
	} `json:"passenger"`
	PaymentToken string `json:"payment_token"`
}

type bookingResp struct {
	BookingID        string    `json:"booking_id"`
	TrainID          uint64    `json:"train_id"`
	SeatNumbers      []string  `json:"seat_numbers"`
	PassengerName    string    `json:"passenger_name"`
	TotalAmountCents uint32    `json:"total_amount_cents"`
	Status           string    `json:"status"`
	PaymentRef       string    `json:"payment_ref"`
	CreatedAt        time.Time `json:"created_at"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		BookingID:        b.ID,
		TrainID:          b.TrainID,
		SeatNumbers:      b.SeatNumbers,
		PassengerName:    b.Passenger.Name,
		TotalAmountCents: b.TotalAmountCents,
		Status:           string(b.Status),
		PaymentRef:       b.PaymentRef,
		CreatedAt:        b.CreatedAt,
	}
}

// Commit handles POST /v1/holds/:hold_id/commit.  On payment decline
// the hold stays alive, so the client may retry until the TTL lapses.
func (h *BookingHandler) Commit(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	holdID := strings.TrimSpace(c.Param("hold_id"))
	if holdID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}
	var req commitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p := model.Passenger{
		Name:   strings.TrimSpace(req.Passenger.Name),
		Age:    req.Passenger.Age,
		Gender: model.Gender(strings.ToLower(strings.TrimSpace(req.Passenger.Gender))),
	}

	b, err := h.Bookings.CommitBooking(c.Request().Context(), holdID, userID, p, req.PaymentToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidPassenger):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, model.ErrHoldNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "hold not found"})
		case errors.Is(err, model.ErrNotOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, model.ErrHoldExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired"})
		case errors.Is(err, model.ErrPaymentFailed):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment failed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// List handles GET /v1/my-bookings.
func (h *BookingHandler) List(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Bookings.MyBookings(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	items := make([]bookingResp, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
