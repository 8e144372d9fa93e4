package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/langchou/evcompare/internal/models"
)

// Validate 校验一次对比的全部输入，返回所有不合法字段 (errors.Join)
func Validate(in Input) error {
	var errs []error
	errs = append(errs, vehicleErrors(in.A, "vehicle_a")...)
	errs = append(errs, vehicleErrors(in.B, "vehicle_b")...)

	errs = appendIf(errs, nonNegative("usage.annual_distance_km", in.Usage.AnnualDistanceKm))
	errs = append(errs, routeMixErrors(in.Usage.RouteMix)...)
	if in.Usage.OwnershipYears < 0 {
		errs = append(errs, invalid("usage.ownership_years", float64(in.Usage.OwnershipYears), "must not be negative"))
	}

	errs = appendIf(errs, nonNegative("prices.petrol_price_per_liter", in.Prices.PetrolPerLiter))
	errs = appendIf(errs, nonNegative("prices.diesel_price_per_liter", in.Prices.DieselPerLiter))
	errs = appendIf(errs, nonNegative("prices.electric_price_per_kwh", in.Prices.ElectricPerKWh))

	if in.HorizonYears < 0 || in.HorizonYears > MaxHorizonYears {
		errs = append(errs, invalid("horizon_years", float64(in.HorizonYears),
			fmt.Sprintf("must be between 0 and %d", MaxHorizonYears)))
	}
	if _, err := ParseMixMode(string(in.MixMode)); err != nil {
		errs = append(errs, invalid("mix_mode", 0, err.Error()))
	}

	return errors.Join(errs...)
}

func vehicleErrors(v models.VehicleProfile, prefix string) []error {
	var errs []error
	if !v.Powertrain.Valid() {
		errs = append(errs, invalid(prefix+".powertrain", 0, fmt.Sprintf("unknown powertrain %q", v.Powertrain)))
	}
	errs = appendIf(errs, nonNegative(prefix+".purchase_price", v.PurchasePrice))
	if v.TailpipeGPerKm != nil {
		errs = appendIf(errs, nonNegative(prefix+".tailpipe_g_per_km", *v.TailpipeGPerKm))
	}

	field := prefix + ".consumption"
	c := v.Consumption
	if err := checkShape(c, field); err != nil {
		return append(errs, err)
	}
	if c.Combined != nil {
		_, err := perHundred(*c.Combined, c.Measure, field+".combined")
		return appendIf(errs, err)
	}
	for _, s := range []struct {
		name string
		v    float64
	}{
		{"urban", c.Segments.Urban},
		{"extra_urban", c.Segments.ExtraUrban},
		{"highway", c.Segments.Highway},
	} {
		_, err := perHundred(s.v, c.Measure, field+".segments."+s.name)
		errs = appendIf(errs, err)
	}
	return errs
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, v, "must be a non-negative number")
	}
	return nil
}

func appendIf(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// evaluatedErrors 输入合法但计算结果超出 float64 范围时，指出导致溢出的输入
func evaluatedErrors(in Input, a, b VehicleResult) error {
	var errs []error
	for _, v := range []struct {
		field  string
		result VehicleResult
	}{
		{"vehicle_a", a},
		{"vehicle_b", b},
	} {
		switch {
		case !finite(v.result.WeightedConsumption):
			errs = append(errs, invalid(v.field+".consumption", 0, "weighted consumption is out of range"))
		case !finite(v.result.AnnualCost), !finite(v.result.AnnualCO2Kg):
			errs = append(errs, invalid("usage.annual_distance_km", in.Usage.AnnualDistanceKm,
				fmt.Sprintf("annual cost or CO2 of %s is out of range", v.field)))
		}
	}
	return errors.Join(errs...)
}

// breakEvenError 差价极大而年费差极小时回本年数溢出
func breakEvenError(in Input, be BreakEven) error {
	if !be.Found() || finite(be.Years) {
		return nil
	}
	field, price := "vehicle_b.purchase_price", in.B.PurchasePrice
	if be.Payer == SideA {
		field, price = "vehicle_a.purchase_price", in.A.PurchasePrice
	}
	return invalid(field, price, "break-even years are out of range")
}

// projectedErrors 累计序列单调不减，检查投影终点与持有期终点即可
func projectedErrors(in Input, r *Result) error {
	var errs []error
	last := max(r.HorizonYears, r.OwnershipYears)
	for _, v := range []struct {
		field  string
		result VehicleResult
		price  float64
	}{
		{"vehicle_a", r.A, in.A.PurchasePrice},
		{"vehicle_b", r.B, in.B.PurchasePrice},
	} {
		if !finite(v.result.cost.At(last)) {
			errs = append(errs, invalid(v.field+".purchase_price", v.price,
				fmt.Sprintf("cumulative cost over %d years is out of range", last)))
		}
		if !finite(v.result.co2.At(last)) {
			errs = append(errs, invalid("usage.annual_distance_km", in.Usage.AnnualDistanceKm,
				fmt.Sprintf("cumulative CO2 of %s over %d years is out of range", v.field, last)))
		}
	}
	if r.CO2Savings != nil {
		for _, eq := range r.CO2Savings.Equivalencies {
			if !finite(eq.Value) {
				errs = append(errs, invalid("usage.annual_distance_km", in.Usage.AnnualDistanceKm,
					"CO2 savings equivalencies are out of range"))
				break
			}
		}
	}
	return errors.Join(errs...)
}
