package exchange

import "github.com/shopspring/decimal"

// OrderSide represents order direction.
type OrderSide string

const (
	// OrderSideBuy acquires the base asset.
	OrderSideBuy OrderSide = "BUY"
	// OrderSideSell liquidates the base asset.
	OrderSideSell OrderSide = "SELL"
)

// Product describes one tradable instrument on the venue.
type Product struct {
	Symbol string // base asset, canonical form
	Quote  string // quote currency, e.g. EUR
}

// OrderRequest is a normalized market order. Sells are sized in base
// units (BaseSize); buys are sized in quote currency (QuoteSize). Exactly
// one of the two is set, matching the side.
type OrderRequest struct {
	Symbol    string
	Side      OrderSide
	BaseSize  decimal.Decimal
	QuoteSize decimal.Decimal
	ClientID  string
}

// Size returns whichever sizing field applies to the order's side.
func (r OrderRequest) Size() decimal.Decimal {
	if r.Side == OrderSideSell {
		return r.BaseSize
	}
	return r.QuoteSize
}

// OrderAck acknowledges an accepted order.
type OrderAck struct {
	OrderID string
}

// Fill reports the executed quantity and value of a completed order.
type Fill struct {
	FilledSize  decimal.Decimal // base units
	FilledValue decimal.Decimal // quote currency
	Price       decimal.Decimal // average execution price
}
