package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/jwtauth/v5"

	"github.com/albamate/albamate-backend/internal/domain/user"
)

// requireStoreMaster checks that the caller in ctx holds store-master authority over storeID.
func requireStoreMaster(ctx context.Context, authz user.AuthorizationChecker, storeID string) error {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.ErrUserIDRequired
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.ErrUserIDRequired
	}

	isMaster, err := authz.IsStoreMaster(ctx, userID, storeID)
	if err != nil {
		return fmt.Errorf("failed to check store authority: %w", err)
	}
	if !isMaster {
		slog.Warn("payroll access rejected, caller is not store master",
			"user_id", userID,
			"store_id", storeID,
		)
		return user.ErrStoreMasterRequired
	}
	return nil
}
