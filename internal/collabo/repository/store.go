package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/connecta/collabo-backend/config"
	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Queries implements domain.Repository on top of a pool or a transaction.
type Queries struct {
	db dbtx
}

// Store is the Postgres backed domain.Store.
type Store struct {
	*Queries
	pool *pgxpool.Pool
	mode config.DurabilityMode
}

func NewStore(pool *pgxpool.Pool, mode config.DurabilityMode) *Store {
	return &Store{
		Queries: &Queries{db: pool},
		pool:    pool,
		mode:    mode,
	}
}

func (s *Store) Mode() config.DurabilityMode {
	return s.mode
}

func (s *Store) Atomic(ctx context.Context, fn func(tx domain.Repository) error) error {
	if s.mode != config.DurabilityStrict {
		return fn(s.Queries)
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ domain.Store = (*Store)(nil)
