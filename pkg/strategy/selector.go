package strategy

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"basketbot/pkg/market"
)

// SellOpportunity is a held asset the strategy wants to liquidate.
type SellOpportunity struct {
	Symbol           string
	CurrentPrice     float64
	RSI              float64
	SMA              float64
	HasSMA           bool
	AvailableBalance decimal.Decimal
}

// BuyCandidate is a symbol whose RSI reads oversold, ranked before
// allocation.
type BuyCandidate struct {
	Symbol       string
	CurrentPrice float64
	RSI          float64
}

// Selector derives sell and buy candidate lists from an indicator
// snapshot and an account balance snapshot. It holds no state across
// cycles; identical inputs yield identical (set-equal) outputs.
type Selector struct {
	cfg *Config
}

// NewSelector builds a selector over the given strategy configuration.
func NewSelector(cfg *Config) *Selector {
	if cfg == nil {
		cfg = Default()
	}
	return &Selector{cfg: cfg}
}

// SellOpportunities returns the held assets eligible for liquidation.
// Output order is unspecified (set semantics).
func (s *Selector) SellOpportunities(snapshot market.Snapshot, balances map[string]decimal.Decimal) []SellOpportunity {
	var out []SellOpportunity
	for symbol, analysis := range snapshot {
		if s.cfg.Denylisted(symbol) {
			continue
		}
		balance, ok := balances[symbol]
		if !ok || balance.LessThanOrEqual(s.cfg.DustThreshold) {
			continue
		}
		fiatValue := balance.Mul(decimal.NewFromFloat(analysis.CurrentPrice))
		if fiatValue.LessThanOrEqual(s.cfg.MinFiatValue) {
			logx.Infof("skip sell %s: value %s below viability threshold %s", symbol, fiatValue, s.cfg.MinFiatValue)
			continue
		}
		if analysis.RSI <= s.cfg.Overbought {
			continue
		}
		if s.cfg.RequireSMACross && (!analysis.HasSMA || analysis.CurrentPrice <= analysis.SMA) {
			continue
		}
		out = append(out, SellOpportunity{
			Symbol:           symbol,
			CurrentPrice:     analysis.CurrentPrice,
			RSI:              analysis.RSI,
			SMA:              analysis.SMA,
			HasSMA:           analysis.HasSMA,
			AvailableBalance: balance,
		})
	}
	return out
}

// BuyCandidates returns oversold symbols ranked ascending by RSI (the
// strongest signal first), truncated to the configured maximum. Ties
// break on symbol so the ranking is deterministic.
func (s *Selector) BuyCandidates(snapshot market.Snapshot) []BuyCandidate {
	var out []BuyCandidate
	for symbol, analysis := range snapshot {
		if s.cfg.Denylisted(symbol) {
			continue
		}
		if analysis.RSI >= s.cfg.Oversold {
			continue
		}
		out = append(out, BuyCandidate{
			Symbol:       symbol,
			CurrentPrice: analysis.CurrentPrice,
			RSI:          analysis.RSI,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RSI != out[j].RSI {
			return out[i].RSI < out[j].RSI
		}
		return out[i].Symbol < out[j].Symbol
	})
	if len(out) > s.cfg.MaxBuyCandidates {
		out = out[:s.cfg.MaxBuyCandidates]
	}
	return out
}
