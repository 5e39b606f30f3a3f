package game

import "github.com/shopspring/decimal"

var (
	one     = decimal.NewFromInt(1)
	half    = decimal.RequireFromString("0.5")
	msInSec = int32(-3)
)

// Multiplier returns 1 + floor(combo/ComboStep)*0.5.
func Multiplier(combo int) decimal.Decimal {
	if combo < 0 {
		combo = 0
	}
	steps := decimal.NewFromInt(int64(combo / ComboStep))
	return one.Add(steps.Mul(half))
}

// ScoreDelta applies the combo multiplier to base and rounds half up.
func ScoreDelta(base, combo int) int {
	raw := decimal.NewFromInt(int64(base)).Mul(Multiplier(combo))
	return int(raw.Add(half).Floor().IntPart())
}

// SpeedLabel formats a spawn interval as seconds, e.g. 800 -> "0.8s".
func SpeedLabel(ms int) string {
	return decimal.New(int64(ms), msInSec).StringFixed(1) + "s"
}
