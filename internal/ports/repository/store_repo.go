package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"laborstatus.service/internal/core/model"
)

// StoreRepository is the PostgreSQL implementation of the store registry.
type StoreRepository struct {
	DB *sql.DB
}

// NewStoreRepository create new instance
func NewStoreRepository(db *sql.DB) Repository {
	return &StoreRepository{DB: db}
}

// GetStore resolves a store to its time clock. Unknown ids return
// model.ErrStoreNotFound.
func (r *StoreRepository) GetStore(ctx context.Context, storeID string) (*model.Store, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.storeId", storeID))

	query := `SELECT store_id, clock_id, display_name, manager_email
              FROM stores
              WHERE store_id = $1`

	var managerEmail sql.NullString
	store := &model.Store{}
	err := r.DB.QueryRowContext(ctx, query, storeID).Scan(&store.StoreID, &store.ClockID, &store.DisplayName, &managerEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrStoreNotFound, storeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store %s: %w", storeID, err)
	}

	store.ManagerEmail = managerEmail.String
	return store, nil
}

// ListStores returns every registered store ordered by id.
func (r *StoreRepository) ListStores(ctx context.Context) ([]model.Store, error) {
	query := `SELECT store_id, clock_id, display_name, manager_email
              FROM stores
              ORDER BY store_id`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var s model.Store
		var managerEmail sql.NullString
		if err := rows.Scan(&s.StoreID, &s.ClockID, &s.DisplayName, &managerEmail); err != nil {
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		s.ManagerEmail = managerEmail.String
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
