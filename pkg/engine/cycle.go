package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"basketbot/pkg/exchange"
	"basketbot/pkg/market"
	"basketbot/pkg/strategy"
)

// OrderState tracks an order through the execution protocol.
type OrderState string

const (
	// StatePendingSubmit means no venue call has been made yet (also the
	// terminal state in dry-run mode).
	StatePendingSubmit OrderState = "PENDING_SUBMIT"
	// StateSubmitted means the venue accepted the order; fill data may
	// still be pending.
	StateSubmitted OrderState = "SUBMITTED"
	// StateFilled means fill data was confirmed and the trade persisted.
	StateFilled OrderState = "FILLED"
	// StateRejected means the venue rejected the order terminally.
	StateRejected OrderState = "REJECTED"
)

// Trade is a confirmed fill, persisted exactly once per exchange order.
type Trade struct {
	Symbol          string
	Side            exchange.OrderSide
	FilledSize      decimal.Decimal
	FillPrice       decimal.Decimal
	FilledValue     decimal.Decimal
	ExternalOrderID string
	ExecutedAt      time.Time
}

// OrderResult is the outcome of one order attempt chain.
type OrderResult struct {
	Symbol    string
	Side      exchange.OrderSide
	State     OrderState
	OrderID   string
	Precision int32
	DryRun    bool
	Trade     *Trade
	Err       error
}

// Cycle is the per-run context: every stage reads from it and appends to
// it, and nothing in it is refreshed once captured. Balance and indicator
// snapshots are taken exactly once so all decisions within the cycle see
// the same world.
type Cycle struct {
	StartedAt time.Time
	Symbols   []string
	Balances  map[string]decimal.Decimal
	Snapshot  market.Snapshot
	Sells     []strategy.SellOpportunity
	Buys      []strategy.BuyOpportunity
	Orders    []OrderResult
}

// QuoteBalance returns the available amount of the given quote currency
// captured at cycle start.
func (c *Cycle) QuoteBalance(quote string) decimal.Decimal {
	if c.Balances == nil {
		return decimal.Zero
	}
	return c.Balances[exchange.Canonical(quote)]
}
