package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autoparts-storefront/db"
	"autoparts-storefront/logging"
)

// PostgresStateRepository keeps session state in the storefront_state table
type PostgresStateRepository struct {
	conn *sql.DB
}

// NewPostgresStateRepository creates a repository on conn, or on db.DB when conn is nil
func NewPostgresStateRepository(conn *sql.DB) *PostgresStateRepository {
	if conn == nil {
		conn = db.DB
	}
	return &PostgresStateRepository{conn: conn}
}

// Ensure PostgresStateRepository implements StateRepositoryInterface
var _ StateRepositoryInterface = (*PostgresStateRepository)(nil)

// Load returns the stored payload
func (r *PostgresStateRepository) Load(ctx context.Context, owner, kind string) ([]byte, error) {
	query := `SELECT payload FROM storefront_state WHERE owner = $1 AND kind = $2`

	var payload []byte
	err := r.conn.QueryRowContext(ctx, query, owner, kind).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		logging.S().Errorf("❌ Load: Error reading %s for owner=%s: %v", kind, owner, err)
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return payload, nil
}

// Save upserts the payload
func (r *PostgresStateRepository) Save(ctx context.Context, owner, kind string, payload []byte) error {
	query := `
		INSERT INTO storefront_state (owner, kind, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (owner, kind) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`

	if _, err := r.conn.ExecContext(ctx, query, owner, kind, string(payload)); err != nil {
		logging.S().Errorf("❌ Save: Error writing %s for owner=%s: %v", kind, owner, err)
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

// Delete removes the payload; deleting a missing row is not an error
func (r *PostgresStateRepository) Delete(ctx context.Context, owner, kind string) error {
	query := `DELETE FROM storefront_state WHERE owner = $1 AND kind = $2`

	if _, err := r.conn.ExecContext(ctx, query, owner, kind); err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}
