package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"basketbot/pkg/exchange"
)

const defaultMaxDecimals = 8

func init() {
	exchange.RegisterProvider("sim", func(name string, cfg *exchange.ProviderConfig) (exchange.Provider, error) {
		quote := cfg.Quote
		if quote == "" {
			quote = "EUR"
		}
		return New(quote), nil
	})
}

// Provider is a paper-trading venue that keeps balances, prices and fills
// in memory. It enforces per-symbol decimal precision limits on order
// sizes, so the precision-retry protocol can be exercised without a real
// brokerage.
type Provider struct {
	mu sync.Mutex

	quote       string
	prices      map[string]decimal.Decimal
	balances    map[string]decimal.Decimal
	maxDecimals map[string]int32
	fills       map[string]exchange.Fill
	holdFills   bool
}

// New constructs a simulator quoting in the given currency.
func New(quote string) *Provider {
	return &Provider{
		quote:       exchange.Canonical(quote),
		prices:      make(map[string]decimal.Decimal),
		balances:    make(map[string]decimal.Decimal),
		maxDecimals: make(map[string]int32),
		fills:       make(map[string]exchange.Fill),
	}
}

// SetPrice publishes a mark price, implicitly listing the product.
func (p *Provider) SetPrice(symbol string, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[exchange.Canonical(symbol)] = price
}

// Deposit credits a currency balance.
func (p *Provider) Deposit(currency string, amount decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := exchange.Canonical(currency)
	p.balances[c] = p.balances[c].Add(amount)
}

// SetMaxDecimals limits the size precision accepted for a symbol.
func (p *Provider) SetMaxDecimals(symbol string, decimals int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxDecimals[exchange.Canonical(symbol)] = decimals
}

// HoldFills makes OrderFill report "not yet available" for subsequent
// orders, mimicking a venue that is slow to publish fill data.
func (p *Provider) HoldFills(hold bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.holdFills = hold
}

// ListProducts reports every symbol with a published price.
func (p *Provider) ListProducts(ctx context.Context, quote string) ([]exchange.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if exchange.Canonical(quote) != p.quote {
		return nil, nil
	}
	products := make([]exchange.Product, 0, len(p.prices))
	for symbol := range p.prices {
		products = append(products, exchange.Product{Symbol: symbol, Quote: p.quote})
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Symbol < products[j].Symbol })
	return products, nil
}

// Balances returns a copy of the current balances.
func (p *Provider) Balances(ctx context.Context) (map[string]decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]decimal.Decimal, len(p.balances))
	for currency, amount := range p.balances {
		out[currency] = amount
	}
	return out, nil
}

// CurrentPrice returns the mark price for a symbol.
func (p *Provider) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	price, ok := p.prices[exchange.Canonical(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("sim: no price for %s", symbol)
	}
	return price, nil
}

// SubmitMarketOrder fills the order synchronously at the mark price.
func (p *Provider) SubmitMarketOrder(ctx context.Context, req exchange.OrderRequest) (*exchange.OrderAck, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	symbol := exchange.Canonical(req.Symbol)
	price, ok := p.prices[symbol]
	if !ok {
		return nil, exchange.Reject(symbol, "unknown product")
	}

	size := req.Size()
	if size.LessThanOrEqual(decimal.Zero) {
		return nil, exchange.Reject(symbol, "size must be positive")
	}
	limit, ok := p.maxDecimals[symbol]
	if !ok {
		limit = defaultMaxDecimals
	}
	if !size.Equal(size.Truncate(limit)) {
		return nil, exchange.RejectPrecision(symbol, fmt.Sprintf("size %s exceeds %d decimal places", size, limit))
	}

	var baseSize, quoteValue decimal.Decimal
	switch req.Side {
	case exchange.OrderSideSell:
		baseSize = req.BaseSize
		quoteValue = baseSize.Mul(price)
		if p.balances[symbol].LessThan(baseSize) {
			return nil, exchange.Reject(symbol, "insufficient funds")
		}
		p.balances[symbol] = p.balances[symbol].Sub(baseSize)
		p.balances[p.quote] = p.balances[p.quote].Add(quoteValue)
	case exchange.OrderSideBuy:
		quoteValue = req.QuoteSize
		if p.balances[p.quote].LessThan(quoteValue) {
			return nil, exchange.Reject(symbol, "insufficient funds")
		}
		baseSize = quoteValue.Div(price).Truncate(defaultMaxDecimals)
		p.balances[p.quote] = p.balances[p.quote].Sub(quoteValue)
		p.balances[symbol] = p.balances[symbol].Add(baseSize)
	default:
		return nil, exchange.Reject(symbol, fmt.Sprintf("unsupported side %q", req.Side))
	}

	orderID := uuid.NewString()
	if !p.holdFills {
		p.fills[orderID] = exchange.Fill{
			FilledSize:  baseSize,
			FilledValue: quoteValue,
			Price:       price,
		}
	}
	return &exchange.OrderAck{OrderID: orderID}, nil
}

// OrderFill returns recorded fill details, or nil when unavailable.
func (p *Provider) OrderFill(ctx context.Context, orderID string) (*exchange.Fill, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fill, ok := p.fills[orderID]
	if !ok {
		return nil, nil
	}
	return &fill, nil
}

var _ exchange.Provider = (*Provider)(nil)
