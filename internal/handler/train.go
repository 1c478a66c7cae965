package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/inventory"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/repository"
)

// TrainHandler serves the public train catalog and seat maps, plus
// the admin provisioning endpoint.  Seat maps come straight from the
// inventory store; the available/held/booked counts are recomputed
// from the snapshot on every request.
type TrainHandler struct {
	Trains *repository.TrainRepo
	Seats  inventory.Store
}

func NewTrainHandler(trains *repository.TrainRepo, seats inventory.Store) *TrainHandler {
	if trains == nil || seats == nil {
		panic("nil dependency passed to NewTrainHandler")
	}
	return &TrainHandler{Trains: trains, Seats: seats}
}

type trainPart struct {
	ID                uint64    `json:"id"`
	Number            string    `json:"number"`
	Name              string    `json:"name"`
	Source            string    `json:"source"`
	Destination       string    `json:"destination"`
	DepartsAt         time.Time `json:"departs_at"`
	ArrivesAt         time.Time `json:"arrives_at"`
	PricePerSeatCents uint32    `json:"price_per_seat_cents"`
	SeatCount         int       `json:"seat_count"`
}

func toTrainPart(t model.Train) trainPart {
	return trainPart{
		ID:                t.ID,
		Number:            t.Number,
		Name:              t.Name,
		Source:            t.Source,
		Destination:       t.Destination,
		DepartsAt:         t.DepartsAt,
		ArrivesAt:         t.ArrivesAt,
		PricePerSeatCents: t.PricePerSeatCents,
		SeatCount:         t.SeatCount,
	}
}

// Search handles GET /v1/trains?source=&destination=.  Both filters
// are optional; matching is case-insensitive on full station names.
func (h *TrainHandler) Search(c echo.Context) error {
	source := strings.TrimSpace(c.QueryParam("source"))
	destination := strings.TrimSpace(c.QueryParam("destination"))

	trains, err := h.Trains.Search(c.Request().Context(), source, destination)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	items := make([]trainPart, 0, len(trains))
	for _, t := range trains {
		items = append(items, toTrainPart(t))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/trains/:id and includes live seat counts.
func (h *TrainHandler) Get(c echo.Context) error {
	trainID, err := parseTrainID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	ctx := c.Request().Context()

	t, err := h.Trains.GetTrain(ctx, trainID)
	if err != nil {
		if errors.Is(err, model.ErrTrainNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	seats, err := h.Seats.SeatMap(ctx, trainID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seat map failed"})
	}
	available, held, booked := inventory.Tally(seats)

	return c.JSON(http.StatusOK, echo.Map{
		"train":     toTrainPart(t),
		"available": available,
		"held":      held,
		"booked":    booked,
	})
}

type seatPart struct {
	SeatNumber string `json:"seat_number"`
	Status     string `json:"status"`
}

// SeatMap handles GET /v1/trains/:id/seats.  The snapshot is taken
// without blocking writers; a seat shown AVAILABLE can legitimately be
// gone by the time the client tries to hold it.
func (h *TrainHandler) SeatMap(c echo.Context) error {
	trainID, err := parseTrainID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	ctx := c.Request().Context()

	seats, err := h.Seats.SeatMap(ctx, trainID)
	if err != nil {
		if errors.Is(err, model.ErrTrainNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seat map failed"})
	}

	items := make([]seatPart, 0, len(seats))
	for _, s := range seats {
		items = append(items, seatPart{
			SeatNumber: s.SeatNumber,
			Status:     s.Status.State().String(),
		})
	}
	available, held, booked := inventory.Tally(seats)
	return c.JSON(http.StatusOK, echo.Map{
		"train_id":  trainID,
		"seats":     items,
		"available": available,
		"held":      held,
		"booked":    booked,
	})
}

type createTrainReq struct {
	Number            string    `json:"number"`
	Name              string    `json:"name"`
	Source            string    `json:"source"`
	Destination       string    `json:"destination"`
	DepartsAt         time.Time `json:"departs_at"`
	ArrivesAt         time.Time `json:"arrives_at"`
	PricePerSeatCents uint32    `json:"price_per_seat_cents"`
	SeatCount         int       `json:"seat_count"`
}

const maxSeatCount = 2000

// Create handles POST /v1/admin/trains.  It inserts the train row and
// provisions its full seat set, all seats starting Available.
func (h *TrainHandler) Create(c echo.Context) error {
	var req createTrainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Number = strings.TrimSpace(req.Number)
	req.Name = strings.TrimSpace(req.Name)
	req.Source = strings.TrimSpace(req.Source)
	req.Destination = strings.TrimSpace(req.Destination)
	switch {
	case req.Number == "" || req.Name == "" || req.Source == "" || req.Destination == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number/name/source/destination required"})
	case req.SeatCount < 1 || req.SeatCount > maxSeatCount:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_count out of range"})
	case req.DepartsAt.IsZero() || req.ArrivesAt.IsZero() || !req.ArrivesAt.After(req.DepartsAt):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule"})
	case req.PricePerSeatCents == 0:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_seat_cents required"})
	}

	ctx := c.Request().Context()
	t := model.Train{
		Number:            req.Number,
		Name:              req.Name,
		Source:            req.Source,
		Destination:       req.Destination,
		DepartsAt:         req.DepartsAt.UTC(),
		ArrivesAt:         req.ArrivesAt.UTC(),
		PricePerSeatCents: req.PricePerSeatCents,
		SeatCount:         req.SeatCount,
	}
	if err := h.Trains.Create(ctx, &t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create train failed"})
	}
	if err := h.Seats.CreateSeats(ctx, t.ID, SeatNumbers(req.SeatCount)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision seats failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"train": toTrainPart(t)})
}

// SeatNumbers generates the seat labels for a train of the given
// size.  Zero-padding keeps lexicographic order equal to numeric
// order, which the inventory store relies on for its lock ordering.
func SeatNumbers(count int) []string {
	out := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		out = append(out, fmt.Sprintf("S%03d", i))
	}
	return out
}

func parseTrainID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid train id")
	}
	return id, nil
}
