package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRSIIncreasingSeries(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	rsi := RSI(prices, 14)
	require.Len(t, rsi, len(prices))
	for i := 0; i < 14; i++ {
		require.True(t, math.IsNaN(rsi[i]), "index %d should be warm-up", i)
	}
	last, ok := Latest(rsi)
	require.True(t, ok)
	require.InDelta(t, 100.0, last, 1e-9)
}

func TestRSIDecreasingSeries(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	last, ok := Latest(RSI(prices, 14))
	require.True(t, ok)
	require.InDelta(t, 0.0, last, 1e-9)
}

func TestRSIConstantSeriesHasNoSignal(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 42.0
	}
	rsi := RSI(prices, 14)
	_, ok := Latest(rsi)
	require.False(t, ok, "flat market must not produce an RSI level")
}

func TestRSIStaysBounded(t *testing.T) {
	prices := []float64{100, 101, 99, 103, 102, 104, 101, 105, 106, 104, 108, 107, 109, 111, 110, 112, 109, 113, 114, 112}
	rsi := RSI(prices, 14)
	for i, v := range rsi {
		if math.IsNaN(v) {
			continue
		}
		require.GreaterOrEqual(t, v, 0.0, "index %d", i)
		require.LessOrEqual(t, v, 100.0, "index %d", i)
	}
	last, ok := Latest(rsi)
	require.True(t, ok)
	// Mostly rising series should read above the neutral midpoint.
	require.Greater(t, last, 50.0)
}

func TestRSIInsufficientHistory(t *testing.T) {
	rsi := RSI([]float64{1, 2, 3}, 14)
	require.Len(t, rsi, 3)
	_, ok := Latest(rsi)
	require.False(t, ok)
}

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	sma := SMA(prices, 3)
	require.Len(t, sma, len(prices))
	require.True(t, math.IsNaN(sma[0]))
	require.True(t, math.IsNaN(sma[1]))
	require.InDelta(t, 2.0, sma[2], 1e-9)
	require.InDelta(t, 3.0, sma[3], 1e-9)
	require.InDelta(t, 4.0, sma[4], 1e-9)
}

func TestSMAWindowLargerThanSeries(t *testing.T) {
	sma := SMA([]float64{1, 2}, 20)
	_, ok := Latest(sma)
	require.False(t, ok)
}
