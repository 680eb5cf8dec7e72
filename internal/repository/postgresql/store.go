package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albamate/albamate-backend/internal/domain/store"
	"github.com/albamate/albamate-backend/internal/pkg/database"
)

type storeRepository struct {
	db *database.DB
}

// GetLocation implements store.StoreRepository.
func (r *storeRepository) GetLocation(ctx context.Context, storeID string) (store.StoreLocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, latitude, longitude, radius_meters FROM stores WHERE id = $1`

	var loc store.StoreLocation
	err := q.QueryRow(ctx, query, storeID).Scan(
		&loc.StoreID, &loc.Location.Latitude, &loc.Location.Longitude, &loc.RadiusMeters,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.StoreLocation{}, store.ErrStoreNotFound
		}
		return store.StoreLocation{}, fmt.Errorf("failed to get store location: %w", err)
	}

	return loc, nil
}

func NewStoreRepository(db *database.DB) store.StoreRepository {
	return &storeRepository{db: db}
}
