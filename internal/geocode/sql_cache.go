package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Schema creates the table used by SQLCache.
const Schema = `
CREATE TABLE IF NOT EXISTS reverse_geocode_cache (
	cell_key   TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	resolved   BOOLEAN NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// OpenDB opens a Postgres connection pool through the pgx stdlib driver.
func OpenDB(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}

	return db, nil
}

// SQLCache persists reverse geocoding results in Postgres so they survive
// restarts and are shared between replicas.
type SQLCache struct {
	DB *sql.DB
}

func NewSQLCache(db *sql.DB) *SQLCache {
	return &SQLCache{DB: db}
}

// Migrate creates the cache table if it does not exist.
func (s *SQLCache) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate reverse_geocode_cache: %w", err)
	}
	return nil
}

func (s *SQLCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	if s.DB == nil {
		return Entry{}, false, errors.New("geocode cache: db is nil")
	}

	var e Entry
	err := s.DB.QueryRowContext(ctx,
		`SELECT address, resolved FROM reverse_geocode_cache WHERE cell_key = $1`,
		key,
	).Scan(&e.Text, &e.Resolved)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get geocode cache %q: %w", key, err)
	}
	return e, true, nil
}

func (s *SQLCache) Put(ctx context.Context, key string, e Entry) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO reverse_geocode_cache (cell_key, address, resolved, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (cell_key) DO UPDATE
	SET address = EXCLUDED.address,
		resolved = EXCLUDED.resolved,
		updated_at = EXCLUDED.updated_at;
	`, key, e.Text, e.Resolved)
	if err != nil {
		return fmt.Errorf("insert geocode cache %q: %w", key, err)
	}
	return nil
}
