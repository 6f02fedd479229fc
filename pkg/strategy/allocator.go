package strategy

import (
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"
)

// BuyOpportunity is a sized buy order candidate: the quote-currency
// amount to spend on a symbol.
type BuyOpportunity struct {
	Symbol       string
	AmountQuote  decimal.Decimal
	CurrentPrice float64
	RSI          float64
}

// Allocate divides the available quote balance across ranked buy
// candidates. The balance is first floored to the rounding unit; below
// the minimum order size nothing is allocated. Each candidate's share is
// weighted by (100 - RSI), floored to the rounding unit, and dropped
// (not redistributed) when it falls under the minimum order size. A
// remaining-balance accumulator guarantees the total never exceeds the
// floored balance.
func (s *Selector) Allocate(available decimal.Decimal, candidates []BuyCandidate) []BuyOpportunity {
	cfg := s.cfg
	floored := floorToUnit(available, cfg.RoundingUnit)
	if floored.LessThan(cfg.MinOrderSize) || len(candidates) == 0 {
		return nil
	}

	chosen := candidates
	if cfg.Policy == AllocationTiered {
		if n := tierCount(floored, cfg.RoundingUnit, cfg.MaxBuyCandidates); n < len(chosen) {
			chosen = chosen[:n]
		}
	}

	totalWeight := decimal.Zero
	weights := make([]decimal.Decimal, len(chosen))
	for i, c := range chosen {
		w := decimal.NewFromFloat(100 - c.RSI)
		if w.LessThanOrEqual(decimal.Zero) {
			continue
		}
		weights[i] = w
		totalWeight = totalWeight.Add(w)
	}
	if totalWeight.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	remaining := floored
	var out []BuyOpportunity
	for i, c := range chosen {
		if weights[i].IsZero() || remaining.LessThan(cfg.MinOrderSize) {
			continue
		}
		share := floorToUnit(floored.Mul(weights[i]).Div(totalWeight), cfg.RoundingUnit)
		if share.GreaterThan(remaining) {
			share = remaining
		}
		if share.LessThan(cfg.MinOrderSize) {
			logx.Infof("skip buy %s: share %s below minimum order size %s", c.Symbol, share, cfg.MinOrderSize)
			continue
		}
		remaining = remaining.Sub(share)
		out = append(out, BuyOpportunity{
			Symbol:       c.Symbol,
			AmountQuote:  share,
			CurrentPrice: c.CurrentPrice,
			RSI:          c.RSI,
		})
	}
	return out
}

// tierCount caps the candidate count by balance size: one candidate per
// two rounding units of balance, starting at one.
func tierCount(balance, unit decimal.Decimal, max int) int {
	steps := balance.Div(unit.Mul(decimal.NewFromInt(2))).Floor().IntPart()
	n := int(steps) + 1
	if n > max {
		return max
	}
	return n
}

func floorToUnit(amount, unit decimal.Decimal) decimal.Decimal {
	if unit.LessThanOrEqual(decimal.Zero) {
		return amount
	}
	return amount.Div(unit).Floor().Mul(unit)
}
