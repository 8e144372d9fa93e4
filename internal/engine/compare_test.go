package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langchou/evcompare/internal/models"
)

func scenarioInput() Input {
	return Input{
		A: models.VehicleProfile{
			Powertrain:    models.PowertrainPetrol,
			PurchasePrice: 25000,
			Consumption:   models.CombinedRate(6),
		},
		B: models.VehicleProfile{
			Powertrain:    models.PowertrainElectric,
			PurchasePrice: 35000,
			Consumption:   models.CombinedRate(15),
		},
		Usage: models.UsageProfile{
			AnnualDistanceKm: 15000,
			RouteMix:         models.DefaultRouteMix(),
		},
		Prices: models.PriceTable{PetrolPerLiter: 1.90, DieselPerLiter: 1.80, ElectricPerKWh: 0.25},
	}
}

func TestCompare_PetrolVsElectric(t *testing.T) {
	result, err := Compare(scenarioInput(), DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 1710, result.A.AnnualCost, 1e-9)
	assert.InDelta(t, 562.5, result.B.AnnualCost, 1e-9)
	assert.InDelta(t, 2070, result.A.AnnualCO2Kg, 1e-9)
	assert.InDelta(t, 1125, result.B.AnnualCO2Kg, 1e-9)

	require.True(t, result.BreakEven.Found())
	assert.InDelta(t, 8.72, result.BreakEven.Years, 0.005)
	assert.Equal(t, SideB, result.BreakEven.Payer)
	assert.Equal(t, 10, result.HorizonYears)

	assert.Equal(t, "Petrol car", result.A.Label)
	assert.Equal(t, "Electric car", result.B.Label)
	assert.Equal(t, "L/100km", result.A.ConsumptionUnit)
	assert.Equal(t, "kWh/100km", result.B.ConsumptionUnit)

	require.Len(t, result.A.CumulativeCost, 11)
	assert.Equal(t, 25000.0, result.A.CumulativeCost[0].Value)
	assert.Equal(t, 35000.0, result.B.CumulativeCost[0].Value)
	assert.Equal(t, 0.0, result.A.CumulativeCO2[0].Value)

	// 持有 5 年: 33550 vs 37812.5
	assert.Equal(t, DefaultOwnershipYears, result.OwnershipYears)
	assert.InDelta(t, 33550, result.A.OwnershipCost, 1e-9)
	assert.InDelta(t, 37812.5, result.B.OwnershipCost, 1e-9)
	assert.Equal(t, SideA, result.Verdict.Cheaper)
	assert.InDelta(t, 4262.5, result.Verdict.Savings, 1e-9)

	require.NotNil(t, result.CO2Savings)
	assert.Equal(t, SideB, result.CO2Savings.Side)
	assert.InDelta(t, 945, result.CO2Savings.AnnualKg, 1e-9)
	assert.Len(t, result.CO2Savings.Equivalencies, 3)
	assert.Contains(t, result.CO2Savings.Summary, "~16 tree seedlings")
	assert.Empty(t, result.Warnings)
}

func TestCompare_OrderIndependentBreakEven(t *testing.T) {
	in := scenarioInput()
	swapped := in
	swapped.A, swapped.B = in.B, in.A

	r1, err := Compare(in, DefaultOptions())
	require.NoError(t, err)
	r2, err := Compare(swapped, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, r1.BreakEven.Kind, r2.BreakEven.Kind)
	assert.InDelta(t, r1.BreakEven.Years, r2.BreakEven.Years, 1e-9)
	assert.Equal(t, r1.Vehicle(r1.BreakEven.Payer).Label, r2.Vehicle(r2.BreakEven.Payer).Label)
}

func TestCompare_ZeroDistance(t *testing.T) {
	in := scenarioInput()
	in.Usage.AnnualDistanceKm = 0

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)

	for _, v := range []VehicleResult{result.A, result.B} {
		assert.Equal(t, 0.0, v.AnnualCost)
		assert.Equal(t, 0.0, v.AnnualCO2Kg)
	}
	assert.False(t, result.BreakEven.Found())
	assert.Equal(t, BreakEvenNever, result.BreakEven.Kind)
	assert.Equal(t, DefaultHorizonYears, result.HorizonYears)
	assert.Nil(t, result.CO2Savings)
}

func TestCompare_RouteWeighted(t *testing.T) {
	in := scenarioInput()
	in.A.Consumption = models.SegmentedRate(7.0, 5.5, 6.5)
	in.Usage.RouteMix = models.RouteMix{UrbanPct: 30, ExtraUrbanPct: 50, HighwayPct: 20}

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 6.15, result.A.WeightedConsumption, 1e-9)
	assert.Empty(t, result.Warnings)
}

func TestCompare_DegenerateMixWarns(t *testing.T) {
	in := scenarioInput()
	in.A.Consumption = models.SegmentedRate(7.0, 5.5, 6.5)
	in.Usage.RouteMix = models.RouteMix{UrbanPct: 30, ExtraUrbanPct: 30, HighwayPct: 30}

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, models.WarningDegenerateRouteMix, result.Warnings[0].Code)
	assert.InDelta(t, 19.0/3, result.A.WeightedConsumption, 1e-9)

	in.MixMode = MixAutoNormalize
	result, err = Compare(in, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.InDelta(t, 19.0/3, result.A.WeightedConsumption, 1e-9)
}

func TestCompare_IdenticalVehicles(t *testing.T) {
	in := scenarioInput()
	in.B = in.A

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, BreakEvenTied, result.BreakEven.Kind)
	assert.False(t, result.BreakEven.Found())
	assert.Equal(t, "Petrol car (A)", result.A.Label)
	assert.Equal(t, "Petrol car (B)", result.B.Label)
	assert.Equal(t, Side(""), result.Verdict.Cheaper)
}

func TestCompare_ProductionAndTailpipe(t *testing.T) {
	in := scenarioInput()
	in.IncludeProductionCO2 = true
	grams := 120.0
	in.A.TailpipeGPerKm = &grams
	in.Usage.OwnershipYears = 3

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 1800, result.A.AnnualCO2Kg, 1e-9)
	assert.Equal(t, ProductionCO2CombustionKg, result.A.CumulativeCO2[0].Value)
	assert.Equal(t, ProductionCO2ElectricKg, result.B.CumulativeCO2[0].Value)
	assert.InDelta(t, 7000+3*1800, result.A.OwnershipCO2Kg, 1e-9)
	assert.InDelta(t, 12000+3*1125, result.B.OwnershipCO2Kg, 1e-9)
	assert.Equal(t, 3, result.Verdict.OwnershipYears)
}

func TestCompare_HybridDiscount(t *testing.T) {
	in := scenarioInput()
	in.A.Powertrain = models.PowertrainHybrid
	in.A.Consumption = models.CombinedRate(5)

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 150*5*1.9*HybridPetrolPriceFactor, result.A.AnnualCost, 1e-9)
	assert.InDelta(t, 150*5*2.0, result.A.AnnualCO2Kg, 1e-9)
}

func TestCompare_HorizonOverride(t *testing.T) {
	in := scenarioInput()
	in.HorizonYears = 3

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, result.HorizonYears)
	assert.Len(t, result.B.CumulativeCost, 4)
	assert.Equal(t, 3, result.B.CostSeries().Horizon)
}

func TestCompare_InvalidInput(t *testing.T) {
	in := scenarioInput()
	in.A.PurchasePrice = -1
	in.Usage.AnnualDistanceKm = -100
	in.Prices.ElectricPerKWh = -0.2
	in.B.Consumption = models.CombinedRate(0).WithMeasure(models.MeasureEfficiency)

	result, err := Compare(in, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, result)

	var fields []string
	for _, e := range InvalidInputs(err) {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"vehicle_a.purchase_price",
		"usage.annual_distance_km",
		"prices.electric_price_per_kwh",
		"vehicle_b.consumption.combined",
	}, fields)
}

func TestResult_Rounded(t *testing.T) {
	in := scenarioInput()
	in.A.Consumption = models.CombinedRate(6.1234)

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)

	rounded := result.Rounded()
	assert.Equal(t, RoundMoney(result.A.AnnualCost), rounded.A.AnnualCost)
	assert.InDelta(t, result.BreakEven.Years, rounded.BreakEven.Years, 0.005)
	// 原结果不被修改
	assert.NotEqual(t, result.A.AnnualCost, rounded.A.AnnualCost)
	assert.Equal(t, 1745.17, rounded.A.AnnualCost)
}

func TestRoundMoney(t *testing.T) {
	assert.Equal(t, 562.5, RoundMoney(562.5))
	assert.Equal(t, 1.24, RoundMoney(1.235))
	assert.Equal(t, 0.0, RoundMoney(0))
	assert.True(t, math.IsInf(RoundMoney(math.Inf(1)), 1))
}

func invalidFields(err error) []string {
	var fields []string
	for _, e := range InvalidInputs(err) {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestCompare_OutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *Input)
		field  string
	}{
		{
			name: "break-even overflows",
			modify: func(in *Input) {
				in.A.PurchasePrice = 0
				in.B.PurchasePrice = 1e300
				in.Usage.AnnualDistanceKm = 1e-10
			},
			field: "vehicle_b.purchase_price",
		},
		{
			name: "break-even overflows with tiny distance",
			modify: func(in *Input) {
				in.B.PurchasePrice = 1e308
				in.Usage.AnnualDistanceKm = 1e-300
			},
			field: "vehicle_b.purchase_price",
		},
		{
			name: "annual cost overflows",
			modify: func(in *Input) {
				in.A.Consumption = models.CombinedRate(1e200)
				in.Usage.AnnualDistanceKm = 1e200
			},
			field: "usage.annual_distance_km",
		},
		{
			name: "efficiency too small",
			modify: func(in *Input) {
				in.B.Consumption = models.CombinedRate(1e-320).WithMeasure(models.MeasureEfficiency)
			},
			field: "vehicle_b.consumption.combined",
		},
		{
			name: "weighted consumption overflows",
			modify: func(in *Input) {
				in.B.Consumption = models.SegmentedRate(1e308, 1e308, 1e308)
			},
			field: "vehicle_b.consumption",
		},
		{
			name: "cumulative cost overflows",
			modify: func(in *Input) {
				in.A.PurchasePrice = 1.7e308
				in.A.Consumption = models.CombinedRate(1e298)
				in.Usage.AnnualDistanceKm = 1e10
			},
			field: "vehicle_a.purchase_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInput()
			tt.modify(&in)

			var result *Result
			var err error
			require.NotPanics(t, func() {
				result, err = Compare(in, DefaultOptions())
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, IsInvalidInput(err))
			assert.Contains(t, invalidFields(err), tt.field)
		})
	}
}

func TestCompare_DistantBreakEven(t *testing.T) {
	in := scenarioInput()
	in.B.PurchasePrice = 1e20
	in.Usage.AnnualDistanceKm = 100

	result, err := Compare(in, DefaultOptions())
	require.NoError(t, err)

	require.True(t, result.BreakEven.Found())
	assert.Greater(t, result.BreakEven.Years, 1e19)
	assert.Positive(t, result.BreakEven.WholeYears())
	assert.Equal(t, MaxHorizonYears, result.HorizonYears)
	assert.Len(t, result.A.CumulativeCost, MaxHorizonYears+1)
	assert.Len(t, result.B.CumulativeCO2, MaxHorizonYears+1)

	require.NotPanics(t, func() { result.Rounded() })
}
