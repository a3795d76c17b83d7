package repository

import (
	"context"

	"laborstatus.service/internal/core/model"
)

// Repository contract for the store registry.
type Repository interface {
	GetStore(ctx context.Context, storeID string) (*model.Store, error)
	ListStores(ctx context.Context) ([]model.Store, error)
}
