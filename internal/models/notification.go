package models

import "time"

// Notification is a toast raised for an inbound real-time event. Every toast
// is also appended to the local journal.
type Notification struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id,omitempty"`
	OrderNumber   string    `json:"order_number,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ReceivedAt    time.Time `json:"received_at"`
	Read          bool      `json:"read"`
}
