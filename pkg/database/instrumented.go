package database

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx driver
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"laborstatus.service/internal/config"
)

// NewInstrumentedConnection opens the store registry database with
// OpenTelemetry spans for every query.
func NewInstrumentedConnection(cfg config.Config) (*sql.DB, error) {
	db, err := otelsql.Open("pgx", DSN(cfg),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithSQLCommenter(true),
	)
	if err != nil {
		return nil, fmt.Errorf("error opening instrumented database: %w", err)
	}
	configurePool(db)

	if err := ping(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
