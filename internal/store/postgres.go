package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps records as jsonb rows.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres migrates the schema and connects a pool.
func OpenPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	if err := MigratePostgres(connString); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// MigratePostgres runs the Postgres migrations over a short-lived
// database/sql handle.
func MigratePostgres(connString string) error {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return fmt.Errorf("opening db for migrations: %w", err)
	}
	defer db.Close()
	return Migrate(db, "postgres")
}

// Pool exposes the connection pool for collaborators sharing the database.
func (p *PostgresStore) Pool() *pgxpool.Pool { return p.pool }

func (p *PostgresStore) Read(ctx context.Context, key Key) (json.RawMessage, error) {
	var value []byte
	err := p.pool.QueryRow(ctx, `SELECT value FROM board_records WHERE key = $1`, string(key)).Scan(&value)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, fmt.Errorf("postgres read: %w", err)
		}
	}
	return json.RawMessage(value), nil
}

func (p *PostgresStore) Write(ctx context.Context, key Key, value json.RawMessage) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO board_records (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, string(key), string(value))
	if err != nil {
		return fmt.Errorf("postgres write: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
