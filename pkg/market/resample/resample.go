package resample

import (
	"sort"
	"time"
)

// Tick is a single observed trade price for a symbol.
type Tick struct {
	Symbol string
	Price  float64
	Time   time.Time
}

// Bucket is one resampled row: the last price observed inside a fixed
// time window. Windows with no ticks produce no Bucket.
type Bucket struct {
	Symbol string
	Start  time.Time
	Price  float64
}

// Series groups ticks by symbol and collapses each symbol's ticks into
// width-sized buckets keyed by the last price in the bucket. Ticks are
// sorted by timestamp per symbol before bucketing, so callers may pass
// them in any order. No interpolation happens between buckets.
func Series(ticks []Tick, width time.Duration) map[string][]Bucket {
	if width <= 0 {
		width = time.Hour
	}

	bySymbol := make(map[string][]Tick)
	for _, tick := range ticks {
		bySymbol[tick.Symbol] = append(bySymbol[tick.Symbol], tick)
	}

	out := make(map[string][]Bucket, len(bySymbol))
	for symbol, symbolTicks := range bySymbol {
		sort.SliceStable(symbolTicks, func(i, j int) bool {
			return symbolTicks[i].Time.Before(symbolTicks[j].Time)
		})

		var buckets []Bucket
		for _, tick := range symbolTicks {
			start := tick.Time.Truncate(width)
			if n := len(buckets); n > 0 && buckets[n-1].Start.Equal(start) {
				buckets[n-1].Price = tick.Price
				continue
			}
			buckets = append(buckets, Bucket{Symbol: symbol, Start: start, Price: tick.Price})
		}
		out[symbol] = buckets
	}
	return out
}

// Prices extracts the bucketed price series in bucket order.
func Prices(buckets []Bucket) []float64 {
	prices := make([]float64, len(buckets))
	for i, b := range buckets {
		prices[i] = b.Price
	}
	return prices
}
