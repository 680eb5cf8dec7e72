package user

import "context"

// AuthorizationChecker answers store-level authority questions.
type AuthorizationChecker interface {
	// IsStoreMaster reports whether userID holds store-master authority over storeID.
	// An unknown user or store is simply false.
	IsStoreMaster(ctx context.Context, userID string, storeID string) (bool, error)
}
