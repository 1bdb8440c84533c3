// Package models contains the persisted domain records of the application.
package models

import "time"

// Property is a rental unit owned by a host account. The availability
// engine treats properties as read-only reference data.
type Property struct {
	ID        string    `json:"id"`
	HostID    string    `json:"host_id"`
	Name      string    `json:"name"`
	City      string    `json:"city,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
