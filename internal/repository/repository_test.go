package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/evcompare/internal/catalog"
	"github.com/langchou/evcompare/internal/models"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = r.values[i].(string)
		case *float64:
			*d = r.values[i].(float64)
		case *time.Time:
			*d = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakeQuerier struct {
	row      fakeRow
	execErr  error
	queryErr error
	args     []any
}

func (q *fakeQuerier) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	q.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), q.execErr
}

func (q *fakeQuerier) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	q.args = args
	return nil, q.queryErr
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.args = args
	return q.row
}

func TestPriceRepository_Latest(t *testing.T) {
	fetched := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		row     fakeRow
		wantErr error
	}{
		{name: "no snapshots", row: fakeRow{err: pgx.ErrNoRows}, wantErr: models.ErrNoPriceData},
		{name: "query failure", row: fakeRow{err: errors.New("connection reset")}},
		{name: "latest snapshot", row: fakeRow{values: []any{"id-1", "mimit", 1.8, 1.7, 0.25, fetched}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewPriceRepository(&fakeQuerier{row: tt.row})
			s, err := repo.Latest(context.Background())

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
			case tt.row.err != nil:
				require.Error(t, err)
				assert.NotErrorIs(t, err, models.ErrNoPriceData)
				assert.Contains(t, err.Error(), "get latest price snapshot")
			default:
				require.NoError(t, err)
				assert.Equal(t, "mimit", s.Source)
				assert.Equal(t, models.PriceTable{PetrolPerLiter: 1.8, DieselPerLiter: 1.7, ElectricPerKWh: 0.25}, s.Prices)
				assert.Equal(t, fetched, s.FetchedAt)
			}
		})
	}
}

func TestPriceRepository_Insert(t *testing.T) {
	q := &fakeQuerier{}
	repo := NewPriceRepository(q)

	s := &models.PriceSnapshot{Source: "mimit", Prices: models.PriceTable{PetrolPerLiter: 1.8}, FetchedAt: time.Now()}
	require.NoError(t, repo.Insert(context.Background(), s))
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)
	require.Len(t, q.args, 6)
	assert.Equal(t, "mimit", q.args[1])

	q.execErr = errors.New("disk full")
	err = repo.Insert(context.Background(), &models.PriceSnapshot{})
	assert.ErrorContains(t, err, "insert price snapshot")
}

func TestPresetRepository_Get(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	repo := NewPresetRepository(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})
	_, err := repo.Get(context.Background(), "trabant")
	require.ErrorIs(t, err, models.ErrPresetNotFound)
	assert.Contains(t, err.Error(), "trabant")

	q := &fakeQuerier{row: fakeRow{values: []any{"renault-zoe", "Renault Zoe", "electric", 33000.0, 17.2, created}}}
	p, err := NewPresetRepository(q).Get(context.Background(), "renault-zoe")
	require.NoError(t, err)
	assert.Equal(t, models.PowertrainElectric, p.Powertrain)
	assert.Equal(t, 17.2, p.Consumption)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, []any{"renault-zoe"}, q.args)
}

func TestPresetRepository_Errors(t *testing.T) {
	q := &fakeQuerier{row: fakeRow{err: errors.New("timeout")}, queryErr: errors.New("timeout")}
	repo := NewPresetRepository(q)

	err := repo.Seed(context.Background(), []models.Preset{{ID: "fiat-panda-1.2"}})
	assert.ErrorContains(t, err, "seed preset fiat-panda-1.2")

	_, err = repo.List(context.Background(), models.PowertrainPetrol)
	assert.ErrorContains(t, err, "list presets")
	assert.Equal(t, []any{"petrol"}, q.args)
}

// 需要真实数据库: DATABASE_URL=postgres://... go test ./internal/repository
func TestRepositories_Postgres(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))

	presets := NewPresetRepository(db.Pool)
	require.NoError(t, presets.Seed(ctx, catalog.Default().All()))

	zoe, err := presets.Get(ctx, "renault-zoe")
	require.NoError(t, err)
	assert.Equal(t, models.PowertrainElectric, zoe.Powertrain)

	electric, err := presets.List(ctx, models.PowertrainElectric)
	require.NoError(t, err)
	for _, p := range electric {
		assert.Equal(t, models.PowertrainElectric, p.Powertrain)
	}

	_, err = presets.Get(ctx, "does-not-exist")
	assert.ErrorIs(t, err, models.ErrPresetNotFound)

	snapshots := NewPriceRepository(db.Pool)
	snap := &models.PriceSnapshot{
		Source:    "test",
		Prices:    models.PriceTable{PetrolPerLiter: 1.8, DieselPerLiter: 1.7, ElectricPerKWh: 0.25},
		FetchedAt: time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, snapshots.Insert(ctx, snap))

	latest, err := snapshots.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, latest.ID)
	assert.Equal(t, snap.Prices, latest.Prices)
	assert.True(t, snap.FetchedAt.Equal(latest.FetchedAt))

	_, err = db.Pool.Exec(ctx, `DELETE FROM price_snapshots WHERE id = $1`, snap.ID)
	require.NoError(t, err)
}
