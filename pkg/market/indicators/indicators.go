package indicators

import "math"

// RSI computes the Relative Strength Index over the supplied prices using
// exponential smoothing with span = period (alpha = 2/(period+1)). Entries
// before the smoothing window has enough input are NaN. A NaN entry after
// warm-up means the gain/loss ratio was indeterminate (flat market);
// callers treat that as "no signal" rather than a default level.
func RSI(prices []float64, period int) []float64 {
	rsi := make([]float64, len(prices))
	for i := range rsi {
		rsi[i] = math.NaN()
	}
	if period <= 0 || len(prices) <= period {
		return rsi
	}

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gainSum += change
		} else {
			lossSum -= change
		}
	}
	avgGain := gainSum / float64(period)
	avgLoss := lossSum / float64(period)
	rsi[period] = strengthIndex(avgGain, avgLoss)

	alpha := 2.0 / float64(period+1)
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain := math.Max(change, 0)
		loss := math.Max(-change, 0)

		avgGain += alpha * (gain - avgGain)
		avgLoss += alpha * (loss - avgLoss)

		rsi[i] = strengthIndex(avgGain, avgLoss)
	}
	return rsi
}

// SMA computes the trailing arithmetic mean over the given window. Entries
// before the window is filled are NaN.
func SMA(prices []float64, window int) []float64 {
	sma := make([]float64, len(prices))
	for i := range sma {
		sma[i] = math.NaN()
	}
	if window <= 0 || len(prices) < window {
		return sma
	}

	var sum float64
	for i, price := range prices {
		sum += price
		if i >= window {
			sum -= prices[i-window]
		}
		if i >= window-1 {
			sma[i] = sum / float64(window)
		}
	}
	return sma
}

// Latest returns the final value of a series and whether it carries a signal.
func Latest(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return last, true
}

func strengthIndex(avgGain, avgLoss float64) float64 {
	switch {
	case avgGain == 0 && avgLoss == 0:
		// 0/0 ratio: no signal.
		return math.NaN()
	case avgLoss == 0:
		return 100.0
	case avgGain == 0:
		return 0.0
	default:
		rs := avgGain / avgLoss
		return 100.0 - (100.0 / (1.0 + rs))
	}
}
