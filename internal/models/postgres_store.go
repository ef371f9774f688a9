package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps page states in the page_states table, one row per
// session key.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &PostgresStore{pool: pool, ttl: ttl}
}

func (s *PostgresStore) Load(ctx context.Context, key string) (*PageState, error) {
	query := `
		SELECT state
		FROM page_states
		WHERE session_key = $1 AND expires_at > NOW()
	`

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var raw []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NewPageState(), nil
		}
		return nil, fmt.Errorf("failed to load page state: %w", mapPgError(err))
	}

	return decodePageState(raw)
}

func (s *PostgresStore) Update(ctx context.Context, key string, fn func(*PageState) error) (*PageState, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	initial, err := json.Marshal(NewPageState())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page state: %w", err)
	}

	// Make sure the row exists so it can be locked.
	_, err = tx.Exec(ctx, `
		INSERT INTO page_states (session_key, state, updated_at, expires_at)
		VALUES ($1, $2, NOW(), $3)
		ON CONFLICT (session_key) DO NOTHING
	`, key, initial, time.Now().Add(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to create page state: %w", mapPgError(err))
	}

	var raw []byte
	var expiresAt time.Time
	err = tx.QueryRow(ctx, `
		SELECT state, expires_at
		FROM page_states
		WHERE session_key = $1
		FOR UPDATE
	`, key).Scan(&raw, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to lock page state: %w", mapPgError(err))
	}

	state := NewPageState()
	if time.Now().Before(expiresAt) {
		if state, err = decodePageState(raw); err != nil {
			return nil, err
		}
	}

	fnErr := fn(state)
	if err := state.Validate(); err != nil {
		return nil, err
	}
	state.UpdatedAt = time.Now()

	encoded, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page state: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE page_states
		SET state = $2, updated_at = $3, expires_at = $4
		WHERE session_key = $1
	`, key, encoded, state.UpdatedAt, state.UpdatedAt.Add(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to save page state: %w", mapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit page state: %w", mapPgError(err))
	}

	return state, fnErr
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM page_states WHERE session_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete page state: %w", mapPgError(err))
	}
	return nil
}

// DeleteExpired removes idle sessions and reports how many rows went away.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	result, err := s.pool.Exec(ctx, `DELETE FROM page_states WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired page states: %w", mapPgError(err))
	}
	return result.RowsAffected(), nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return s.pool.Ping(ctx)
}

func decodePageState(raw []byte) (*PageState, error) {
	state := NewPageState()
	if err := json.Unmarshal(raw, state); err != nil {
		return nil, fmt.Errorf("failed to decode page state: %w", err)
	}
	return state, nil
}

// mapPgError turns the server errors callers can act on into sentinels.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UndefinedTable:
		return fmt.Errorf("%w: %s", ErrStoreNotMigrated, pgErr.Message)
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return fmt.Errorf("%w: %s", ErrStoreConflict, pgErr.Message)
	default:
		return err
	}
}
