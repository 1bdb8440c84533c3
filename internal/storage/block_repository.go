package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/storage/models"
)

// BlockRepository provides data access for manual blocks.
type BlockRepository struct {
	BaseRepository
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(db *DB) *BlockRepository {
	return &BlockRepository{BaseRepository: NewBaseRepository(db)}
}

const blockColumns = "id, property_id, block_type, reason, start_date, end_date, created_at, updated_at"

// Create inserts a new manual block.
func (r *BlockRepository) Create(ctx context.Context, b *models.Block) error {
	b.ID = GenerateID()
	b.CreatedAt = r.Now()
	b.UpdatedAt = r.Now()
	if b.BlockType == "" {
		b.BlockType = models.BlockTypeUnavailable
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO blocks (id, property_id, block_type, reason, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.PropertyID, b.BlockType, b.Reason, b.StartDate, b.EndDate, b.CreatedAt, b.UpdatedAt)

	if err != nil {
		return fmt.Errorf("inserting block: %w", err)
	}
	return nil
}

// GetByID retrieves a block by its ID. Returns nil when not found.
func (r *BlockRepository) GetByID(ctx context.Context, id string) (*models.Block, error) {
	b := &models.Block{}
	err := r.DB().QueryRowContext(ctx,
		"SELECT "+blockColumns+" FROM blocks WHERE id = ?", id,
	).Scan(&b.ID, &b.PropertyID, &b.BlockType, &b.Reason, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying block: %w", err)
	}
	return b, nil
}

// ListInWindow retrieves the blocks overlapping the half-open window
// [from, to). An empty propertyID lists across all properties.
func (r *BlockRepository) ListInWindow(ctx context.Context, propertyID string, from, to time.Time) ([]models.Block, error) {
	query := "SELECT " + blockColumns + " FROM blocks WHERE start_date < ? AND end_date > ?"
	args := []any{to, from}
	if propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}
	query += " ORDER BY start_date"

	rows, err := r.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		var b models.Block
		if err := rows.Scan(&b.ID, &b.PropertyID, &b.BlockType, &b.Reason, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// Delete removes a block by ID.
func (r *BlockRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB().ExecContext(ctx, "DELETE FROM blocks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting block: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("block not found: %s", id)
	}
	return nil
}
