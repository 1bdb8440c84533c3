package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// ReservationRepository provides data access for native reservations.
type ReservationRepository struct {
	BaseRepository
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *DB) *ReservationRepository {
	return &ReservationRepository{BaseRepository: NewBaseRepository(db)}
}

const reservationColumns = `id, property_id, guest_name, check_in, check_out,
	status, channel, price, currency, external_ref, created_at, updated_at`

// Create inserts a new reservation.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	res.ID = GenerateID()
	res.CreatedAt = r.Now()
	res.UpdatedAt = r.Now()
	if res.Status == "" {
		res.Status = models.ReservationStatusConfirmed
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO reservations (
			id, property_id, guest_name, check_in, check_out,
			status, channel, price, currency, external_ref, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.ID, res.PropertyID, res.GuestName, res.CheckIn, res.CheckOut,
		res.Status, res.Channel, res.Price, res.Currency, res.ExternalRef,
		res.CreatedAt, res.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}
	return nil
}

// GetByID retrieves a reservation by its ID. Returns nil when not found.
func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	res := &models.Reservation{}
	err := r.DB().QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ?", id,
	).Scan(
		&res.ID, &res.PropertyID, &res.GuestName, &res.CheckIn, &res.CheckOut,
		&res.Status, &res.Channel, &res.Price, &res.Currency, &res.ExternalRef,
		&res.CreatedAt, &res.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying reservation: %w", err)
	}
	return res, nil
}

// ListInWindow retrieves the reservations overlapping the half-open window
// [from, to). An empty propertyID lists across all properties.
func (r *ReservationRepository) ListInWindow(ctx context.Context, propertyID string, from, to time.Time) ([]models.Reservation, error) {
	query := "SELECT " + reservationColumns + ` FROM reservations
		WHERE check_in < ? AND check_out > ?`
	args := []any{to, from}
	if propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}
	query += " ORDER BY check_in"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(
			&res.ID, &res.PropertyID, &res.GuestName, &res.CheckIn, &res.CheckOut,
			&res.Status, &res.Channel, &res.Price, &res.Currency, &res.ExternalRef,
			&res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// Update updates an existing reservation.
func (r *ReservationRepository) Update(ctx context.Context, res *models.Reservation) error {
	res.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE reservations SET
			guest_name = ?, check_in = ?, check_out = ?, status = ?,
			channel = ?, price = ?, currency = ?, external_ref = ?, updated_at = ?
		WHERE id = ?
	`,
		res.GuestName, res.CheckIn, res.CheckOut, res.Status,
		res.Channel, res.Price, res.Currency, res.ExternalRef, res.UpdatedAt, res.ID,
	)

	if err != nil {
		return fmt.Errorf("updating reservation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reservation not found: %s", res.ID)
	}
	return nil
}

// Delete removes a reservation by ID.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting reservation: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("reservation not found: %s", id)
	}
	return nil
}
