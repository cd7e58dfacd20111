// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"alternator-reqgen/internal/common/config"
	apperrors "alternator-reqgen/internal/common/errors"
)

// PostgresClient owns the handle used by the postgres history store.
type PostgresClient struct {
	DB *sql.DB
}

// ConnectPostgres opens the pool described by cfg and pings it.
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, apperrors.NewStoreFailedError("postgres", "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxIdleTime(time.Minute)

	c := &PostgresClient{DB: db}
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewPostgresFromDB wraps an already opened handle.
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return apperrors.NewStoreFailedError("postgres", "ping", err)
	}
	return nil
}

// InTx runs fn inside a transaction, committing only when fn succeeds.
func (c *PostgresClient) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *PostgresClient) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
