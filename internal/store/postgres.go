package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
)

// PostgresKV backs the snapshot store with a single key-value table.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV establishes a connection pool and ensures the schema exists.
func NewPostgresKV(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*PostgresKV, error) {
	if cfg.DSN == "" {
		return nil, errors.New("store: POSTGRES_DSN not provided")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	kv := &PostgresKV{pool: pool}
	if err := kv.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return kv, nil
}

func (p *PostgresKV) ensureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS kv_entries (
            key        TEXT PRIMARY KEY,
            value      BYTEA NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`
	_, err := p.pool.Exec(ctx, ddl)
	return err
}

func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT value FROM kv_entries WHERE key = $1`
	var value []byte
	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	const query = `
        INSERT INTO kv_entries (key, value, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := p.pool.Exec(ctx, query, key, value)
	return err
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM kv_entries WHERE key = $1`
	_, err := p.pool.Exec(ctx, query, key)
	return err
}

// Close releases pool resources.
func (p *PostgresKV) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}

// Ping verifies database connectivity.
func (p *PostgresKV) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.pool.Ping(ctx)
}
