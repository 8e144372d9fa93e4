package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/evcompare/internal/models"
)

func TestUnitPrice(t *testing.T) {
	prices := models.PriceTable{PetrolPerLiter: 1.9, DieselPerLiter: 1.8, ElectricPerKWh: 0.25}

	tests := []struct {
		powertrain models.Powertrain
		expected   float64
	}{
		{models.PowertrainPetrol, 1.9},
		{models.PowertrainDiesel, 1.8},
		{models.PowertrainHybrid, 1.52},
		{models.PowertrainElectric, 0.25},
	}
	for _, tt := range tests {
		t.Run(string(tt.powertrain), func(t *testing.T) {
			got, err := UnitPrice(tt.powertrain, prices)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}

	_, err := UnitPrice("hydrogen", prices)
	assert.Error(t, err)
}

func TestAnnualCost_Linear(t *testing.T) {
	base := AnnualCost(6, 15000, 1.9)
	assert.InDelta(t, 1710, base, 1e-9)

	assert.InDelta(t, 2*base, AnnualCost(12, 15000, 1.9), 1e-9)
	assert.InDelta(t, 2*base, AnnualCost(6, 30000, 1.9), 1e-9)
	assert.InDelta(t, 2*base, AnnualCost(6, 15000, 3.8), 1e-9)

	for _, in := range [][3]float64{{0, 0, 0}, {5, 0, 2}, {0, 10000, 2}, {4.2, 12345, 0.31}} {
		assert.GreaterOrEqual(t, AnnualCost(in[0], in[1], in[2]), 0.0)
	}
}

func TestAnnualCO2(t *testing.T) {
	assert.InDelta(t, 2070, AnnualCO2(6, 15000, 2.3), 1e-9)
	assert.InDelta(t, 1125, AnnualCO2(15, 15000, 0.5), 1e-9)
	assert.Equal(t, 0.0, AnnualCO2(6, 0, 2.3))
	assert.InDelta(t, 1800, TailpipeCO2(120, 15000), 1e-9)
}
