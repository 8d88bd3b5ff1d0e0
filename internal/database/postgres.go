package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/adamanr/ems_service/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Querier is the subset of pgx shared by the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

func NewPool(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	url := fmt.Sprintf("postgres://%s:%s@%s/%s",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Database)

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		logger.Error("Error parsing DB config", slog.String("error", err.Error()))
		return nil, err
	}
	poolCfg.MaxConns = cfg.Database.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Error connecting to DB", slog.String("error", err.Error()))
		return nil, err
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Error pinging DB", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Connected to DB successfully", slog.Int("max_conns", int(poolCfg.MaxConns)))
	return pool, nil
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, db Querier, logger *slog.Logger) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		logger.Error("Error applying schema", slog.String("error", err.Error()))
		return fmt.Errorf("apply schema: %w", err)
	}

	logger.Info("Schema is up to date")
	return nil
}

type txKey struct{}

// Store implements every persistence operation on PostgreSQL. Missing rows are
// reported as pgx.ErrNoRows and constraint violations as *pgconn.PgError.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// WithinTx runs fn in a transaction carried by the returned context. Nested
// calls join the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *Store) q(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}

	return s.db
}

func execAffecting(ctx context.Context, q Querier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
