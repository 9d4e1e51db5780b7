package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garagerent/internal/db"
	apperrors "garagerent/internal/errors"
)

// SpaceRepository is a read-only view over the listing collaborator's data.
// This core never mutates spaces; it only needs owner and price.
type SpaceRepository struct {
	DB *sql.DB
}

func NewSpaceRepository(database *sql.DB) *SpaceRepository {
	return &SpaceRepository{DB: database}
}

func (r *SpaceRepository) GetByID(ctx context.Context, id int64) (*db.Space, error) {
	var s db.Space
	query := `SELECT id, owner_id, title, price_per_day, created_at FROM spaces WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.OwnerID, &s.Title, &s.PricePerDay, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("space not found")
		}
		return nil, fmt.Errorf("querying space %d: %w", id, err)
	}
	return &s, nil
}
