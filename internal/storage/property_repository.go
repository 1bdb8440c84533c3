package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// PropertyRepository provides data access for rental properties.
type PropertyRepository struct {
	BaseRepository
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{BaseRepository: NewBaseRepository(db)}
}

const propertyColumns = "id, host_id, name, city, address, created_at, updated_at"

// Create inserts a new property.
func (r *PropertyRepository) Create(ctx context.Context, p *models.Property) error {
	p.ID = GenerateID()
	p.CreatedAt = r.Now()
	p.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO properties (id, host_id, name, city, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.HostID, p.Name, p.City, p.Address, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// GetByID retrieves a property by its ID. Returns nil when not found.
func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*models.Property, error) {
	p := &models.Property{}
	err := r.DB().QueryRowContext(ctx,
		"SELECT "+propertyColumns+" FROM properties WHERE id = ?", id,
	).Scan(&p.ID, &p.HostID, &p.Name, &p.City, &p.Address, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying property: %w", err)
	}
	return p, nil
}

// List retrieves all properties ordered by name.
func (r *PropertyRepository) List(ctx context.Context) ([]models.Property, error) {
	return r.list(ctx, "SELECT "+propertyColumns+" FROM properties ORDER BY name")
}

// ListByHost retrieves the properties belonging to a host account.
func (r *PropertyRepository) ListByHost(ctx context.Context, hostID string) ([]models.Property, error) {
	return r.list(ctx, "SELECT "+propertyColumns+" FROM properties WHERE host_id = ? ORDER BY name", hostID)
}

func (r *PropertyRepository) list(ctx context.Context, query string, args ...any) ([]models.Property, error) {
	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.ID, &p.HostID, &p.Name, &p.City, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

// Update updates an existing property.
func (r *PropertyRepository) Update(ctx context.Context, p *models.Property) error {
	p.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE properties SET host_id = ?, name = ?, city = ?, address = ?, updated_at = ?
		WHERE id = ?
	`, p.HostID, p.Name, p.City, p.Address, p.UpdatedAt, p.ID)

	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("property not found: %s", p.ID)
	}
	return nil
}

// Delete removes a property and, via cascade, its reservations, blocks and feeds.
func (r *PropertyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("property not found: %s", id)
	}
	return nil
}

// Count returns the number of properties.
func (r *PropertyRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return n, nil
}
