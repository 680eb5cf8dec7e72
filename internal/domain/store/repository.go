package store

import "context"

type StoreRepository interface {
	// GetLocation returns ErrStoreNotFound when the store does not exist
	GetLocation(ctx context.Context, storeID string) (StoreLocation, error)
}
