// Package queue defines the booking event payload and the background
// consumer that records it.
package queue

// Event actions.
const (
	ActionBooked    = "booked"
	ActionCancelled = "cancelled"
)

// BookingEvent is published after every committed booking or cancellation.
// It carries enough to audit the change without reading the database.
type BookingEvent struct {
	Reference  string   `json:"reference"`
	Action     string   `json:"action"`
	Movie      string   `json:"movie"`
	Date       string   `json:"date"`
	SeatClass  string   `json:"seat_class"`
	Seats      []string `json:"seats"`
	Amount     int      `json:"amount"`
	Phone      string   `json:"phone"`
	OccurredAt string   `json:"occurred_at"`
}
