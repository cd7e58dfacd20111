package reconcile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"alternator-reqgen/internal/common/database"
	apperrors "alternator-reqgen/internal/common/errors"
)

// PostgresStore keeps the history in a three column table keyed by
// (operation, body).
type PostgresStore struct {
	db    *sql.DB
	owner *database.PostgresClient
	table string
}

func NewPostgresStore(client *database.PostgresClient, table string) *PostgresStore {
	return &PostgresStore{db: client.DB, owner: client, table: pq.QuoteIdentifier(table)}
}

func (s *PostgresStore) schemaSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	operation TEXT NOT NULL,
	body TEXT NOT NULL,
	response TEXT NOT NULL,
	PRIMARY KEY (operation, body)
)`, s.table)
}

func (s *PostgresStore) selectSQL() string {
	return fmt.Sprintf("SELECT operation, body, response FROM %s", s.table)
}

func (s *PostgresStore) upsertSQL() string {
	return fmt.Sprintf(
		"INSERT INTO %s (operation, body, response) VALUES ($1, $2, $3) "+
			"ON CONFLICT (operation, body) DO UPDATE SET response = EXCLUDED.response",
		s.table,
	)
}

// EnsureSchema creates the table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.schemaSQL()); err != nil {
		return apperrors.NewStoreFailedError(BackendPostgres, "ensure schema", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*History, error) {
	rows, err := s.db.QueryContext(ctx, s.selectSQL())
	if err != nil {
		return nil, apperrors.NewStoreFailedError(BackendPostgres, "load", err)
	}
	defer rows.Close()

	h := NewHistory()
	for rows.Next() {
		var op, body, resp string
		if err := rows.Scan(&op, &body, &resp); err != nil {
			return nil, apperrors.NewStoreFailedError(BackendPostgres, "load", err)
		}
		h.Put(op, body, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreFailedError(BackendPostgres, "load", err)
	}
	return h, nil
}

// Persist upserts every entry in a single transaction.
func (s *PostgresStore) Persist(ctx context.Context, h *History) error {
	err := s.owner.InTx(ctx, func(tx *sql.Tx) error {
		return s.upsertAll(ctx, tx, h)
	})
	if err != nil {
		return apperrors.NewStoreFailedError(BackendPostgres, "persist", err)
	}
	return nil
}

func (s *PostgresStore) upsertAll(ctx context.Context, tx *sql.Tx, h *History) error {
	stmt, err := tx.PrepareContext(ctx, s.upsertSQL())
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, op := range h.Operations() {
		for _, body := range h.Bodies(op) {
			resp, _ := h.Lookup(op, body)
			if _, err := stmt.ExecContext(ctx, op, body, resp); err != nil {
				return fmt.Errorf("upsert %s: %w", op, err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.owner.Close()
}
