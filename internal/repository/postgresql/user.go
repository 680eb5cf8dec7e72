package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/albamate/albamate-backend/internal/domain/user"
	"github.com/albamate/albamate-backend/internal/pkg/database"
)

type storeMembershipRepository struct {
	db *database.DB
}

// GetMembership returns the user's role at a store, or nil when unrelated.
func (r *storeMembershipRepository) GetMembership(ctx context.Context, userID string, storeID string) (*user.StoreMembership, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT user_id, store_id, role FROM store_members WHERE user_id = $1 AND store_id = $2`

	var m user.StoreMembership
	err := q.QueryRow(ctx, query, userID, storeID).Scan(&m.UserID, &m.StoreID, &m.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get store membership: %w", err)
	}

	return &m, nil
}

// IsStoreMaster implements user.AuthorizationChecker.
func (r *storeMembershipRepository) IsStoreMaster(ctx context.Context, userID string, storeID string) (bool, error) {
	m, err := r.GetMembership(ctx, userID, storeID)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsStoreMaster(), nil
}

func NewAuthorizationChecker(db *database.DB) user.AuthorizationChecker {
	return &storeMembershipRepository{db: db}
}
