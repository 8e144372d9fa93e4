package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier 仓库使用的查询接口，*pgxpool.Pool 与 pgx.Tx 均满足
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB 数据库连接池封装
type DB struct {
	Pool *pgxpool.Pool
}

// New 创建数据库连接
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close 关闭连接池
func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate 执行数据库迁移
func (db *DB) Migrate(ctx context.Context) error {
	migrations := []string{
		migrationCreateVehiclePresets,
		migrationCreatePriceSnapshots,
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// 数据库迁移 SQL
const migrationCreateVehiclePresets = `
CREATE TABLE IF NOT EXISTS vehicle_presets (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    powertrain VARCHAR(16) NOT NULL CHECK (powertrain IN ('petrol', 'diesel', 'hybrid', 'electric')),
    purchase_price DOUBLE PRECISION NOT NULL CHECK (purchase_price >= 0),
    consumption DOUBLE PRECISION NOT NULL CHECK (consumption > 0),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_vehicle_presets_powertrain ON vehicle_presets(powertrain);
`

const migrationCreatePriceSnapshots = `
CREATE TABLE IF NOT EXISTS price_snapshots (
    id UUID PRIMARY KEY,
    source TEXT NOT NULL,
    petrol_per_liter DOUBLE PRECISION NOT NULL,
    diesel_per_liter DOUBLE PRECISION NOT NULL,
    electric_per_kwh DOUBLE PRECISION NOT NULL,
    fetched_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_snapshots_fetched_at ON price_snapshots(fetched_at DESC);
`
