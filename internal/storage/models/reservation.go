package models

import "time"

// Reservation is a native booking created inside the application.
// CheckIn/CheckOut are half-open dates: the checkout day is free again.
type Reservation struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	GuestName   string    `json:"guest_name"`
	CheckIn     time.Time `json:"check_in"`
	CheckOut    time.Time `json:"check_out"`
	Status      string    `json:"status"`
	Channel     string    `json:"channel,omitempty"`
	Price       float64   `json:"price,omitempty"`
	Currency    string    `json:"currency,omitempty"`
	ExternalRef *string   `json:"external_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reservation status constants
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusPending   = "pending"
	ReservationStatusCancelled = "cancelled"
)
