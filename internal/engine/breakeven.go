package engine

import (
	"fmt"
	"math"
)

// Side 对比中的车辆位置
type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// BreakEvenKind 回本计算的结果类型
type BreakEvenKind string

const (
	// BreakEvenFinite 较贵车辆在有限年数后回本
	BreakEvenFinite BreakEvenKind = "finite"
	// BreakEvenNever 不存在回本点（先便宜的车用起来也不更贵）
	BreakEvenNever BreakEvenKind = "never"
	// BreakEvenTied 购车价与年费用完全相同，两条成本曲线重合
	BreakEvenTied BreakEvenKind = "tied"
)

// Ownership 一辆车的购车价与年费用
type Ownership struct {
	PurchasePrice float64
	AnnualCost    float64
}

// BreakEven 回本结果。Years 仅在 Kind 为 finite 时有意义
type BreakEven struct {
	Kind  BreakEvenKind `json:"kind"`
	Years float64       `json:"years,omitempty"`
	Payer Side          `json:"payer,omitempty"` // 购车更贵、运行更省、最终回本的一方
}

// Found 是否存在有限的回本年数；never 与 tied 都视为无回本
func (b BreakEven) Found() bool {
	return b.Kind == BreakEvenFinite
}

// WholeYears 截断为整数年，仅用于展示
func (b BreakEven) WholeYears() int {
	if !b.Found() {
		return 0
	}
	if b.Years >= math.MaxInt {
		return math.MaxInt
	}
	return int(b.Years)
}

func (b BreakEven) String() string {
	if b.Found() {
		return fmt.Sprintf("vehicle %s breaks even after %.2f years", b.Payer, b.Years)
	}
	return "no break-even"
}

// SolveBreakEven 计算回本年数，与参数顺序无关
func SolveBreakEven(a, b Ownership) BreakEven {
	if a == b {
		return BreakEven{Kind: BreakEvenTied}
	}
	if years, ok := payback(a, b); ok {
		return BreakEven{Kind: BreakEvenFinite, Years: years, Payer: SideB}
	}
	if years, ok := payback(b, a); ok {
		return BreakEven{Kind: BreakEvenFinite, Years: years, Payer: SideA}
	}
	return BreakEven{Kind: BreakEvenNever}
}

// payback 当 other 购车更贵且年费用更低时，返回差价被年费差抵消所需年数
func payback(base, other Ownership) (float64, bool) {
	deltaPrice := other.PurchasePrice - base.PurchasePrice
	deltaAnnual := base.AnnualCost - other.AnnualCost
	if deltaPrice > 0 && deltaAnnual > 0 {
		return deltaPrice / deltaAnnual, true
	}
	return 0, false
}
