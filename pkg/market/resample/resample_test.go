package resample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSeriesOneTickPerBucket(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 30, 0, 0, time.UTC)
	var ticks []Tick
	for i := 0; i < 6; i++ {
		ticks = append(ticks, Tick{
			Symbol: "BTC",
			Price:  100 + float64(i),
			Time:   base.Add(time.Duration(i) * time.Hour),
		})
	}

	series := Series(ticks, time.Hour)
	require.Len(t, series, 1)
	buckets := series["BTC"]
	require.Len(t, buckets, 6)
	for i, b := range buckets {
		require.Equal(t, base.Add(time.Duration(i)*time.Hour).Truncate(time.Hour), b.Start)
		require.Equal(t, 100+float64(i), b.Price)
	}
}

func TestSeriesLastTickWinsWithinBucket(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticks := []Tick{
		{Symbol: "ETH", Price: 10, Time: base.Add(5 * time.Minute)},
		{Symbol: "ETH", Price: 11, Time: base.Add(25 * time.Minute)},
		{Symbol: "ETH", Price: 12, Time: base.Add(55 * time.Minute)},
	}

	buckets := Series(ticks, time.Hour)["ETH"]
	require.Len(t, buckets, 1)
	require.Equal(t, 12.0, buckets[0].Price)
}

func TestSeriesSortsUnorderedTicks(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ticks := []Tick{
		{Symbol: "SOL", Price: 3, Time: base.Add(2 * time.Hour)},
		{Symbol: "SOL", Price: 1, Time: base},
		{Symbol: "SOL", Price: 2, Time: base.Add(time.Hour)},
	}

	buckets := Series(ticks, time.Hour)["SOL"]
	require.Len(t, buckets, 3)
	require.Equal(t, []float64{1, 2, 3}, Prices(buckets))
}

func TestSeriesSkipsEmptyBuckets(t *testing.T) {
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	ticks := []Tick{
		{Symbol: "BTC", Price: 1, Time: base},
		{Symbol: "BTC", Price: 2, Time: base.Add(5 * time.Hour)},
	}

	buckets := Series(ticks, time.Hour)["BTC"]
	require.Len(t, buckets, 2, "gap hours must not be filled")
	require.Equal(t, base, buckets[0].Start)
	require.Equal(t, base.Add(5*time.Hour), buckets[1].Start)
}

func TestSeriesAbsentSymbol(t *testing.T) {
	series := Series(nil, time.Hour)
	require.Empty(t, series["XRP"])
}
