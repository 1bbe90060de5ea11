// Package calculator derives the live metrics of a watched stock.
package calculator

import (
	"math"

	"github.com/bestchoice-b3/b3-daily/internal/contracts"
)

// UpsideSignalThreshold is the upside percentage above which a stock is flagged
const UpsideSignalThreshold = 20.0

// LiveDerived holds the fields recomputed from a fresh quote
type LiveDerived struct {
	CurrentPrice      float64
	Media200          *float64
	Upside            *float64
	AveragePercent200 *float64
}

// ComputeLiveDerived recomputes the quote-dependent fields of a stock.
// targetPrice is the stock's current target, nil when unset.
// ⭐ SSOT: upside and averagePercent200 formulas live only here
func ComputeLiveDerived(targetPrice *float64, quote contracts.Quote) LiveDerived {
	var current float64
	if quote.Price != nil {
		current = *quote.Price
	}

	out := LiveDerived{
		CurrentPrice: current,
		Media200:     copyFloat(quote.Media200),
	}

	if !validPrice(current) {
		return out
	}

	media200 := 0.0
	if quote.Media200 != nil {
		media200 = *quote.Media200
	}
	avg := (current - media200) * 100 / current
	out.AveragePercent200 = &avg

	if targetPrice != nil {
		out.Upside = ComputeUpside(*targetPrice, current)
	}

	return out
}

// ComputeUpside returns (target-current)/current*100, nil when current is
// not a positive finite number
func ComputeUpside(target, current float64) *float64 {
	if !validPrice(current) {
		return nil
	}
	upside := (target - current) / current * 100
	return &upside
}

// ComputeScore counts the true checklist flags
func ComputeScore(c contracts.Checklist) int {
	score := 0
	for _, v := range c.Values() {
		if v {
			score++
		}
	}
	return score
}

// Apply writes the live fields onto an update
func (d LiveDerived) Apply(u *contracts.StockUpdate) {
	price := d.CurrentPrice
	u.CurrentPrice = &price
	u.Media200 = copyFloat(d.Media200)
	u.Upside = copyFloat(d.Upside)
	u.AveragePercent200 = copyFloat(d.AveragePercent200)
}

// ApplyToStock writes the live fields onto a stock
func (d LiveDerived) ApplyToStock(s *contracts.Stock) {
	s.CurrentPrice = d.CurrentPrice
	s.Media200 = copyFloat(d.Media200)
	s.Upside = copyFloat(d.Upside)
	s.AveragePercent200 = copyFloat(d.AveragePercent200)
}

// AverageSignal reports whether the 200-day deviation is outside the
// stock's distance thresholds. Stocks without media200 never signal.
func AverageSignal(s contracts.Stock) bool {
	if s.Media200 == nil {
		return false
	}
	avg := 0.0
	if s.AveragePercent200 != nil {
		avg = *s.AveragePercent200
	}
	return avg > s.DistancePositive || avg < -s.DistanceNegative
}

// UpsideSignal reports whether the upside exceeds UpsideSignalThreshold
func UpsideSignal(s contracts.Stock) bool {
	return s.Upside != nil && *s.Upside > UpsideSignalThreshold
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
