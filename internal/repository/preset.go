package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/langchou/evcompare/internal/models"
)

// PresetRepository 车型数据仓库
type PresetRepository struct {
	q Querier
}

// NewPresetRepository 创建车型仓库
func NewPresetRepository(q Querier) *PresetRepository {
	return &PresetRepository{q: q}
}

// Upsert 创建或更新车型
func (r *PresetRepository) Upsert(ctx context.Context, p *models.Preset) error {
	query := `
		INSERT INTO vehicle_presets (id, name, powertrain, purchase_price, consumption, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			powertrain = EXCLUDED.powertrain,
			purchase_price = EXCLUDED.purchase_price,
			consumption = EXCLUDED.consumption,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at
	`
	now := time.Now()
	err := r.q.QueryRow(ctx, query,
		p.ID,
		p.Name,
		string(p.Powertrain),
		p.PurchasePrice,
		p.Consumption,
		now,
		now,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert preset: %w", err)
	}
	return nil
}

// Seed 写入内置车型，已存在的按 ID 覆盖
func (r *PresetRepository) Seed(ctx context.Context, presets []models.Preset) error {
	for i := range presets {
		if err := r.Upsert(ctx, &presets[i]); err != nil {
			return fmt.Errorf("seed preset %s: %w", presets[i].ID, err)
		}
	}
	return nil
}

// Get 按 ID 获取车型
func (r *PresetRepository) Get(ctx context.Context, id string) (*models.Preset, error) {
	query := `
		SELECT id, name, powertrain, purchase_price, consumption, created_at
		FROM vehicle_presets WHERE id = $1
	`
	p := &models.Preset{}
	var powertrain string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&powertrain,
		&p.PurchasePrice,
		&p.Consumption,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrPresetNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get preset: %w", err)
	}
	p.Powertrain = models.Powertrain(powertrain)
	return p, nil
}

// List 列出车型，powertrain 为空时返回全部
func (r *PresetRepository) List(ctx context.Context, powertrain models.Powertrain) ([]models.Preset, error) {
	query := `
		SELECT id, name, powertrain, purchase_price, consumption, created_at
		FROM vehicle_presets
		WHERE $1 = '' OR powertrain = $1
		ORDER BY powertrain, purchase_price, name
	`
	rows, err := r.q.Query(ctx, query, string(powertrain))
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	presets := make([]models.Preset, 0)
	for rows.Next() {
		var p models.Preset
		var pt string
		if err := rows.Scan(&p.ID, &p.Name, &pt, &p.PurchasePrice, &p.Consumption, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan preset: %w", err)
		}
		p.Powertrain = models.Powertrain(pt)
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presets: %w", err)
	}
	return presets, nil
}
