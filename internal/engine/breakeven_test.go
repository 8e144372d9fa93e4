package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolveBreakEven(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Ownership
		kind      BreakEvenKind
		years     float64
		payer     Side
		wholeYear int
	}{
		{
			name:      "pricier B recovers premium",
			a:         Ownership{PurchasePrice: 25000, AnnualCost: 1710},
			b:         Ownership{PurchasePrice: 35000, AnnualCost: 562.5},
			kind:      BreakEvenFinite,
			years:     10000 / 1147.5,
			payer:     SideB,
			wholeYear: 8,
		},
		{
			name:      "pricier A recovers premium",
			a:         Ownership{PurchasePrice: 30000, AnnualCost: 500},
			b:         Ownership{PurchasePrice: 20000, AnnualCost: 2500},
			kind:      BreakEvenFinite,
			years:     5,
			payer:     SideA,
			wholeYear: 5,
		},
		{
			name: "cheaper vehicle also cheaper to run",
			a:    Ownership{PurchasePrice: 20000, AnnualCost: 500},
			b:    Ownership{PurchasePrice: 30000, AnnualCost: 900},
			kind: BreakEvenNever,
		},
		{
			name: "equal running costs",
			a:    Ownership{PurchasePrice: 20000, AnnualCost: 800},
			b:    Ownership{PurchasePrice: 30000, AnnualCost: 800},
			kind: BreakEvenNever,
		},
		{
			name: "equal price different running cost",
			a:    Ownership{PurchasePrice: 20000, AnnualCost: 800},
			b:    Ownership{PurchasePrice: 20000, AnnualCost: 400},
			kind: BreakEvenNever,
		},
		{
			name: "identical vehicles",
			a:    Ownership{PurchasePrice: 20000, AnnualCost: 800},
			b:    Ownership{PurchasePrice: 20000, AnnualCost: 800},
			kind: BreakEvenTied,
		},
		{
			name: "zero distance",
			a:    Ownership{PurchasePrice: 25000},
			b:    Ownership{PurchasePrice: 35000},
			kind: BreakEvenNever,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SolveBreakEven(tt.a, tt.b)
			assert.Equal(t, tt.kind, got.Kind)
			assert.InDelta(t, tt.years, got.Years, 1e-9)
			assert.Equal(t, tt.payer, got.Payer)
			assert.Equal(t, tt.wholeYear, got.WholeYears())
			assert.Equal(t, tt.kind == BreakEvenFinite, got.Found())

			swapped := SolveBreakEven(tt.b, tt.a)
			assert.Equal(t, got.Kind, swapped.Kind)
			assert.InDelta(t, got.Years, swapped.Years, 1e-9)
			if got.Found() {
				assert.NotEqual(t, got.Payer, swapped.Payer)
			}
		})
	}
}

func TestBreakEven_String(t *testing.T) {
	assert.Equal(t, "no break-even", BreakEven{Kind: BreakEvenTied}.String())
	assert.Equal(t, "vehicle b breaks even after 8.71 years", BreakEven{Kind: BreakEvenFinite, Years: 8.714, Payer: SideB}.String())
}

func TestBreakEven_WholeYears(t *testing.T) {
	assert.Equal(t, 8, BreakEven{Kind: BreakEvenFinite, Years: 8.99}.WholeYears())
	assert.Equal(t, 0, BreakEven{Kind: BreakEvenNever, Years: 5}.WholeYears())
	assert.Equal(t, math.MaxInt, BreakEven{Kind: BreakEvenFinite, Years: 1e19}.WholeYears())
}
