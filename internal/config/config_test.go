package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "basketbot/pkg/exchange/sim" // register sim provider type
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "basketbot.yaml", "Env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.True(t, cfg.IsTestEnv())
	require.Equal(t, "EUR", cfg.Quote)
	require.False(t, cfg.DryRun)
	require.Equal(t, "0 * * * *", cfg.Schedule)
	require.Equal(t, time.Minute, cfg.CollectInterval())
	require.Equal(t, 2*time.Second, cfg.ConfirmWait())
	require.Equal(t, 8, cfg.MaxPrecision)
	require.Equal(t, 10, cfg.TTL.Short)
	require.Nil(t, cfg.Strategy.Value)
	require.Equal(t, dir, cfg.BaseDir())
}

func TestLoadHydratesSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "strategy.yaml", "overbought: 75\nstablecoins: [USDC]\n")
	writeFile(t, dir, "exchange.yaml", `
default: paper
providers:
  paper:
    type: sim
    quote: EUR
`)
	path := writeFile(t, dir, "basketbot.yaml", `
Env: dev
Quote: EUR
Strategy:
  File: strategy.yaml
Exchange:
  File: exchange.yaml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Strategy.Value)
	require.Equal(t, 75.0, cfg.Strategy.Value.Overbought)
	require.True(t, cfg.Strategy.Value.Denylisted("usdc"))
	require.NotNil(t, cfg.Exchange.Value)
	require.Equal(t, "paper", cfg.Exchange.Value.Default)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "basketbot.yaml", "Env: staging\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "basketbot.yaml", "ConfirmDelay: soon\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadPrecision(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "basketbot.yaml", "MaxPrecision: 30\n")
	_, err := Load(path)
	require.Error(t, err)
}
