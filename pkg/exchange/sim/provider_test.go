package sim

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"basketbot/pkg/exchange"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSellMovesBalances(t *testing.T) {
	p := New("EUR")
	p.SetPrice("BTC", dec("20000"))
	p.Deposit("BTC", dec("0.5"))

	ack, err := p.SubmitMarketOrder(context.Background(), exchange.OrderRequest{
		Symbol:   "BTC",
		Side:     exchange.OrderSideSell,
		BaseSize: dec("0.5"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, ack.OrderID)

	balances, err := p.Balances(context.Background())
	require.NoError(t, err)
	require.True(t, balances["BTC"].IsZero())
	require.True(t, balances["EUR"].Equal(dec("10000")))

	fill, err := p.OrderFill(context.Background(), ack.OrderID)
	require.NoError(t, err)
	require.NotNil(t, fill)
	require.True(t, fill.FilledSize.Equal(dec("0.5")))
	require.True(t, fill.FilledValue.Equal(dec("10000")))
}

func TestBuySpendsQuoteCurrency(t *testing.T) {
	p := New("EUR")
	p.SetPrice("ETH", dec("2000"))
	p.Deposit("EUR", dec("100"))

	ack, err := p.SubmitMarketOrder(context.Background(), exchange.OrderRequest{
		Symbol:    "ETH",
		Side:      exchange.OrderSideBuy,
		QuoteSize: dec("100"),
	})
	require.NoError(t, err)

	balances, _ := p.Balances(context.Background())
	require.True(t, balances["EUR"].IsZero())
	require.True(t, balances["ETH"].Equal(dec("0.05")))

	fill, err := p.OrderFill(context.Background(), ack.OrderID)
	require.NoError(t, err)
	require.True(t, fill.FilledValue.Equal(dec("100")))
}

func TestPrecisionRejectionIsTyped(t *testing.T) {
	p := New("EUR")
	p.SetPrice("BTC", dec("20000"))
	p.Deposit("BTC", dec("1"))
	p.SetMaxDecimals("BTC", 3)

	_, err := p.SubmitMarketOrder(context.Background(), exchange.OrderRequest{
		Symbol:   "BTC",
		Side:     exchange.OrderSideSell,
		BaseSize: dec("0.12345678"),
	})
	require.ErrorIs(t, err, exchange.ErrPrecision)

	_, err = p.SubmitMarketOrder(context.Background(), exchange.OrderRequest{
		Symbol:   "BTC",
		Side:     exchange.OrderSideSell,
		BaseSize: dec("0.123"),
	})
	require.NoError(t, err)
}

func TestInsufficientFundsIsTerminal(t *testing.T) {
	p := New("EUR")
	p.SetPrice("BTC", dec("20000"))

	_, err := p.SubmitMarketOrder(context.Background(), exchange.OrderRequest{
		Symbol:   "BTC",
		Side:     exchange.OrderSideSell,
		BaseSize: dec("1"),
	})
	require.Error(t, err)
	require.NotErrorIs(t, err, exchange.ErrPrecision)
}

func TestHeldFillsReportAbsent(t *testing.T) {
	p := New("EUR")
	p.SetPrice("BTC", dec("20000"))
	p.Deposit("BTC", dec("1"))
	p.HoldFills(true)

	ack, err := p.SubmitMarketOrder(context.Background(), exchange.OrderRequest{
		Symbol:   "BTC",
		Side:     exchange.OrderSideSell,
		BaseSize: dec("1"),
	})
	require.NoError(t, err)

	fill, err := p.OrderFill(context.Background(), ack.OrderID)
	require.NoError(t, err)
	require.Nil(t, fill)
}

func TestListProductsAndValidateSymbols(t *testing.T) {
	p := New("EUR")
	p.SetPrice("BTC", dec("20000"))
	p.SetPrice("ETH", dec("2000"))

	products, err := p.ListProducts(context.Background(), "eur")
	require.NoError(t, err)
	require.Len(t, products, 2)

	require.NoError(t, exchange.ValidateSymbols(products, []string{"btc", "ETH"}))
	require.Error(t, exchange.ValidateSymbols(products, []string{"DOGE"}))
}
