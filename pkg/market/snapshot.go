package market

import (
	"basketbot/pkg/market/indicators"
	"basketbot/pkg/market/resample"
)

// Analysis carries the per-symbol indicator readout for one decision cycle.
type Analysis struct {
	CurrentPrice float64
	RSI          float64
	SMA          float64
	HasSMA       bool
}

// Snapshot maps symbol -> indicator analysis. Symbols whose resampled
// history is too short for RSI, or whose RSI is indeterminate, are absent
// rather than defaulted to a sentinel level.
type Snapshot map[string]Analysis

// Analyze computes the indicator snapshot from resampled series. Each
// symbol is analyzed independently; the snapshot carries only the last
// value of each indicator series.
func Analyze(series map[string][]resample.Bucket, rsiPeriod, smaWindow int) Snapshot {
	snapshot := make(Snapshot, len(series))
	for symbol, buckets := range series {
		if len(buckets) == 0 {
			continue
		}
		prices := resample.Prices(buckets)

		rsi, ok := indicators.Latest(indicators.RSI(prices, rsiPeriod))
		if !ok {
			continue
		}

		analysis := Analysis{
			CurrentPrice: prices[len(prices)-1],
			RSI:          rsi,
		}
		if sma, ok := indicators.Latest(indicators.SMA(prices, smaWindow)); ok {
			analysis.SMA = sma
			analysis.HasSMA = true
		}
		snapshot[symbol] = analysis
	}
	return snapshot
}
