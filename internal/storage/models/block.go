package models

import "time"

// Block is a host-created manual block making a property unavailable,
// for maintenance, personal use or an unspecified reason.
type Block struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"property_id"`
	BlockType  string    `json:"block_type"`
	Reason     *string   `json:"reason,omitempty"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Block type constants
const (
	BlockTypeMaintenance = "maintenance"
	BlockTypePersonal    = "personal"
	BlockTypeUnavailable = "unavailable"
)
