package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Provider exposes the brokerage operations the decision engine needs,
// venue-agnostic. Transport and authentication live behind it.
type Provider interface {
	// ListProducts returns the tradable products quoted in the given currency.
	ListProducts(ctx context.Context, quote string) ([]Product, error)

	// Balances returns the available amount per currency.
	Balances(ctx context.Context) (map[string]decimal.Decimal, error)

	// CurrentPrice returns the latest trade price for a symbol.
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)

	// SubmitMarketOrder places a market order. Rejections surface as errors;
	// precision rejections satisfy errors.Is(err, ErrPrecision).
	SubmitMarketOrder(ctx context.Context, req OrderRequest) (*OrderAck, error)

	// OrderFill reports fill details for a submitted order. A nil Fill with
	// nil error means the venue has not published fill data yet.
	OrderFill(ctx context.Context, orderID string) (*Fill, error)
}

// Canonical normalizes a symbol to the single form used everywhere:
// upper-case, no surrounding whitespace. Venue-specific product-id
// formatting is the provider's problem, not the caller's.
func Canonical(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbols checks, once at startup, that every configured symbol is
// present in the venue's declared product list.
func ValidateSymbols(products []Product, symbols []string) error {
	known := make(map[string]struct{}, len(products))
	for _, p := range products {
		known[Canonical(p.Symbol)] = struct{}{}
	}
	for _, s := range symbols {
		if _, ok := known[Canonical(s)]; !ok {
			return fmt.Errorf("exchange: symbol %q not in venue product list", s)
		}
	}
	return nil
}
