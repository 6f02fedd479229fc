package exchange

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func init() {
	RegisterProvider("stub", func(name string, cfg *ProviderConfig) (Provider, error) {
		return nil, nil
	})
}

func TestLoadConfigFromReader(t *testing.T) {
	t.Setenv("TEST_VENUE_KEY", "k-123")
	raw := `
default: main
providers:
  main:
    type: stub
    api_key: ${TEST_VENUE_KEY}
    quote: eur
    sandbox: true
    timeout: 10s
`
	cfg, err := LoadConfigFromReader(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, "main", cfg.Default)

	p := cfg.Providers["main"]
	require.NotNil(t, p)
	require.Equal(t, "k-123", p.APIKey)
	require.Equal(t, "EUR", p.Quote)
	require.True(t, p.Sandbox)
	require.Equal(t, 10*time.Second, p.Timeout)
}

func TestLoadConfigRejectsUnknownType(t *testing.T) {
	raw := `
providers:
  main:
    type: nonexistent
`
	_, err := LoadConfigFromReader(strings.NewReader(raw))
	require.Error(t, err)
}

func TestLoadConfigRejectsUnknownDefault(t *testing.T) {
	raw := `
default: missing
providers:
  main:
    type: stub
`
	_, err := LoadConfigFromReader(strings.NewReader(raw))
	require.Error(t, err)
}

func TestLoadConfigRejectsBadTimeout(t *testing.T) {
	raw := `
providers:
  main:
    type: stub
    timeout: whenever
`
	_, err := LoadConfigFromReader(strings.NewReader(raw))
	require.Error(t, err)
}

func TestValidateSymbols(t *testing.T) {
	products := []Product{{Symbol: "BTC", Quote: "EUR"}, {Symbol: "ETH", Quote: "EUR"}}
	require.NoError(t, ValidateSymbols(products, []string{"btc", "ETH"}))
	require.Error(t, ValidateSymbols(products, []string{"BTC", "DOGE"}))
}

func TestClassifyRejection(t *testing.T) {
	err := ClassifyRejection("BTC", "size has too many decimal places")
	require.ErrorIs(t, err, ErrPrecision)

	err = ClassifyRejection("BTC", "insufficient funds")
	require.NotErrorIs(t, err, ErrPrecision)
}
