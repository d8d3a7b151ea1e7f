package postgres

import (
	"context"
	"database/sql"
	_ "embed"

	"rentmarket-backend/internal/logger"
	"rentmarket-backend/internal/repository"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ProductRepository
	repository.AddressRepository
	repository.CartRepository
	repository.RentalRequestRepository
	repository.OrderRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		UserRepository:          NewUserRepository(db),
		ProductRepository:       NewProductRepository(db),
		AddressRepository:       NewAddressRepository(db),
		CartRepository:          NewCartRepository(db),
		RentalRequestRepository: NewRentalRequestRepository(db),
		OrderRepository:         NewOrderRepository(db),
		NotificationRepository:  NewNotificationRepository(db),
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	logger.DatabaseCall("MIGRATE", "schema.sql")
	_, err := s.db.ExecContext(ctx, schemaSQL)
	logger.DatabaseResult("MIGRATE", 0, err)
	return err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn in a transaction, rolling back when fn fails.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
