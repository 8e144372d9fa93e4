package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/langchou/evcompare/internal/models"
)

// PriceRepository 价格快照仓库
type PriceRepository struct {
	q Querier
}

// NewPriceRepository 创建价格快照仓库
func NewPriceRepository(q Querier) *PriceRepository {
	return &PriceRepository{q: q}
}

// Insert 保存一次抓取结果
func (r *PriceRepository) Insert(ctx context.Context, s *models.PriceSnapshot) error {
	id := uuid.New()
	s.ID = id.String()
	query := `
		INSERT INTO price_snapshots (id, source, petrol_per_liter, diesel_per_liter, electric_per_kwh, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.Exec(ctx, query,
		id,
		s.Source,
		s.Prices.PetrolPerLiter,
		s.Prices.DieselPerLiter,
		s.Prices.ElectricPerKWh,
		s.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert price snapshot: %w", err)
	}
	return nil
}

// Latest 最近一次快照
func (r *PriceRepository) Latest(ctx context.Context) (*models.PriceSnapshot, error) {
	query := `
		SELECT id::text, source, petrol_per_liter, diesel_per_liter, electric_per_kwh, fetched_at
		FROM price_snapshots
		ORDER BY fetched_at DESC
		LIMIT 1
	`
	s := &models.PriceSnapshot{}
	err := r.q.QueryRow(ctx, query).Scan(
		&s.ID,
		&s.Source,
		&s.Prices.PetrolPerLiter,
		&s.Prices.DieselPerLiter,
		&s.Prices.ElectricPerKWh,
		&s.FetchedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNoPriceData
	}
	if err != nil {
		return nil, fmt.Errorf("get latest price snapshot: %w", err)
	}
	return s, nil
}
