// Package queue defines message payloads exchanged over the message
// broker, the publisher used by the booking coordinator, and the
// background consumer that processes confirmations.
package queue

// BookingConfirmedEvent is published when a booking commit succeeds.
// It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID        string   `json:"booking_id"`
	UserID           uint64   `json:"user_id"`
	TrainID          uint64   `json:"train_id"`
	TrainNumber      string   `json:"train_number"`
	TrainName        string   `json:"train_name"`
	Source           string   `json:"source"`
	Destination      string   `json:"destination"`
	DepartsAt        string   `json:"departs_at"`
	PassengerName    string   `json:"passenger_name"`
	SeatNumbers      []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
