package strategy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, 14, cfg.RSIPeriod)
	require.Equal(t, 20, cfg.SMAWindow)
	require.Equal(t, time.Hour, cfg.Bucket)
	require.Equal(t, 96*time.Hour, cfg.Lookback)
	require.Equal(t, 70.0, cfg.Overbought)
	require.Equal(t, 30.0, cfg.Oversold)
	require.Equal(t, 3, cfg.MaxBuyCandidates)
	require.Equal(t, AllocationInverseRSI, cfg.Policy)
	require.True(t, cfg.RoundingUnit.Equal(dec("10")))
	require.True(t, cfg.DustThreshold.Equal(dec("0.00001")))
	require.True(t, cfg.MinFiatValue.Equal(dec("0.90")))
}

func TestConfigFromYAML(t *testing.T) {
	raw := `
rsi_period: 10
sma_window: 30
bucket: 30m
lookback: 48h
overbought: 65
oversold: 50
require_sma_cross: true
stablecoins: [USDC, USDT, DAI]
max_buy_candidates: 5
allocation_policy: tiered
rounding_unit: "5"
min_order_size: "5"
dust_threshold: "0.0001"
min_fiat_value: "1.00"
`
	cfg, err := LoadConfigFromReader(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 10, cfg.RSIPeriod)
	require.Equal(t, 30*time.Minute, cfg.Bucket)
	require.Equal(t, 48*time.Hour, cfg.Lookback)
	require.Equal(t, AllocationTiered, cfg.Policy)
	require.True(t, cfg.RequireSMACross)
	require.True(t, cfg.Denylisted("usdt"))
	require.False(t, cfg.Denylisted("BTC"))
	require.True(t, cfg.RoundingUnit.Equal(dec("5")))
}

func TestConfigRejectsUnknownPolicy(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("allocation_policy: martingale\n"))
	require.Error(t, err)
}

func TestConfigRejectsInvertedThresholds(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("oversold: 80\noverbought: 70\n"))
	require.Error(t, err)
}

func TestConfigRejectsBadDecimal(t *testing.T) {
	_, err := LoadConfigFromReader(strings.NewReader("rounding_unit: ten\n"))
	require.Error(t, err)
}
