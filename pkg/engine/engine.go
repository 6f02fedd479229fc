package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"basketbot/pkg/exchange"
	"basketbot/pkg/journal"
	"basketbot/pkg/market"
	"basketbot/pkg/market/resample"
	"basketbot/pkg/retry"
	"basketbot/pkg/strategy"
)

// TickSource provides raw price history for the lookback window.
type TickSource interface {
	History(ctx context.Context, symbols []string, since time.Time) ([]resample.Tick, error)
}

// TradeRecorder persists confirmed fills.
type TradeRecorder interface {
	RecordTrade(ctx context.Context, trade Trade) error
}

// Config holds engine-level execution knobs.
type Config struct {
	Quote        string        // quote currency, e.g. EUR
	Symbols      []string      // optional watchlist; empty means every listed product
	DryRun       bool          // log intent, submit nothing
	ConfirmDelay time.Duration // wait before polling for fill data
	MaxPrecision int32         // starting decimal places for order sizes
}

func (c *Config) normalise() {
	c.Quote = exchange.Canonical(c.Quote)
	if c.Quote == "" {
		c.Quote = "EUR"
	}
	if c.ConfirmDelay <= 0 {
		c.ConfirmDelay = 2 * time.Second
	}
	if c.MaxPrecision <= 0 {
		c.MaxPrecision = 8
	}
}

// Option customises Engine construction.
type Option func(*Engine)

// WithJournal attaches a cycle journal writer.
func WithJournal(w *journal.Writer) Option {
	return func(e *Engine) { e.journal = w }
}

// WithClock overrides the engine clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.nowFn = now }
}

// WithWait overrides the confirmation-delay sleep.
func WithWait(wait func(context.Context, time.Duration) error) Option {
	return func(e *Engine) { e.waitFn = wait }
}

// Engine runs the decision-and-execution cycle: resample, analyze,
// select, allocate, then execute sells and buys strictly in sequence. At
// most one order is outstanding at a time.
type Engine struct {
	cfg      Config
	scfg     *strategy.Config
	selector *strategy.Selector
	venue    exchange.Provider
	ticks    TickSource
	trades   TradeRecorder
	journal  *journal.Writer
	nowFn    func() time.Time
	waitFn   func(context.Context, time.Duration) error
}

// New constructs an engine over its collaborators.
func New(cfg Config, scfg *strategy.Config, venue exchange.Provider, ticks TickSource, trades TradeRecorder, opts ...Option) *Engine {
	cfg.normalise()
	if scfg == nil {
		scfg = strategy.Default()
	}
	e := &Engine{
		cfg:      cfg,
		scfg:     scfg,
		selector: strategy.NewSelector(scfg),
		venue:    venue,
		ticks:    ticks,
		trades:   trades,
		nowFn:    time.Now,
		waitFn:   waitContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunCycle executes one full decision cycle. Connectivity failures on
// shared reads abort the cycle; per-symbol execution failures are
// recorded in the cycle and do not stop the remaining symbols. A trade
// persistence failure is re-raised: a real position change exists that
// the store missed.
func (e *Engine) RunCycle(ctx context.Context) (*Cycle, error) {
	cycle := &Cycle{StartedAt: e.nowFn()}

	products, err := e.venue.ListProducts(ctx, e.cfg.Quote)
	if err != nil {
		return cycle, fmt.Errorf("list products: %w", err)
	}
	if len(e.cfg.Symbols) > 0 {
		if err := exchange.ValidateSymbols(products, e.cfg.Symbols); err != nil {
			return cycle, err
		}
		for _, s := range e.cfg.Symbols {
			cycle.Symbols = append(cycle.Symbols, exchange.Canonical(s))
		}
	} else {
		for _, p := range products {
			cycle.Symbols = append(cycle.Symbols, exchange.Canonical(p.Symbol))
		}
	}
	sort.Strings(cycle.Symbols)
	logx.Infof("cycle start: %d tradable symbols quoted in %s", len(cycle.Symbols), e.cfg.Quote)

	balances, err := e.venue.Balances(ctx)
	if err != nil {
		return cycle, fmt.Errorf("fetch balances: %w", err)
	}
	cycle.Balances = make(map[string]decimal.Decimal, len(balances))
	for currency, amount := range balances {
		cycle.Balances[exchange.Canonical(currency)] = amount
	}

	ticks, err := e.ticks.History(ctx, cycle.Symbols, cycle.StartedAt.Add(-e.scfg.Lookback))
	if err != nil {
		return cycle, fmt.Errorf("fetch price history: %w", err)
	}
	series := resample.Series(ticks, e.scfg.Bucket)
	cycle.Snapshot = market.Analyze(series, e.scfg.RSIPeriod, e.scfg.SMAWindow)
	for symbol, a := range cycle.Snapshot {
		if a.HasSMA {
			logx.Infof("%s: price %.4f, sma %.4f, rsi %.2f", symbol, a.CurrentPrice, a.SMA, a.RSI)
		} else {
			logx.Infof("%s: price %.4f, rsi %.2f (sma pending)", symbol, a.CurrentPrice, a.RSI)
		}
	}

	cycle.Sells = e.selector.SellOpportunities(cycle.Snapshot, cycle.Balances)
	if len(cycle.Sells) == 0 {
		logx.Info("no sell opportunities this cycle")
	}
	for _, opp := range cycle.Sells {
		result := e.executeSell(ctx, opp)
		cycle.Orders = append(cycle.Orders, result)
		if perr := asPersistError(result.Err); perr != nil {
			e.writeJournal(cycle, perr)
			return cycle, perr
		}
	}

	candidates := e.selector.BuyCandidates(cycle.Snapshot)
	cycle.Buys = e.selector.Allocate(cycle.QuoteBalance(e.cfg.Quote), candidates)
	if len(cycle.Buys) == 0 {
		logx.Info("no buy opportunities this cycle")
	}
	for _, opp := range cycle.Buys {
		result := e.executeBuy(ctx, opp)
		cycle.Orders = append(cycle.Orders, result)
		if perr := asPersistError(result.Err); perr != nil {
			e.writeJournal(cycle, perr)
			return cycle, perr
		}
	}

	e.writeJournal(cycle, nil)
	return cycle, nil
}

func (e *Engine) executeSell(ctx context.Context, opp strategy.SellOpportunity) OrderResult {
	result := OrderResult{Symbol: opp.Symbol, Side: exchange.OrderSideSell, State: StatePendingSubmit}
	logx.Infof("sell %s: balance %s, price %.4f, rsi %.2f",
		opp.Symbol, opp.AvailableBalance, opp.CurrentPrice, opp.RSI)
	if e.cfg.DryRun {
		result.DryRun = true
		logx.Infof("dry-run: would sell %s %s", opp.AvailableBalance, opp.Symbol)
		return result
	}
	return e.submitAndConfirm(ctx, result, func(precision int32) (exchange.OrderRequest, bool) {
		size := opp.AvailableBalance.Truncate(precision)
		if size.LessThanOrEqual(decimal.Zero) {
			return exchange.OrderRequest{}, false
		}
		return exchange.OrderRequest{
			Symbol:   opp.Symbol,
			Side:     exchange.OrderSideSell,
			BaseSize: size,
			ClientID: uuid.NewString(),
		}, true
	})
}

func (e *Engine) executeBuy(ctx context.Context, opp strategy.BuyOpportunity) OrderResult {
	result := OrderResult{Symbol: opp.Symbol, Side: exchange.OrderSideBuy, State: StatePendingSubmit}
	logx.Infof("buy %s: %s %s at rsi %.2f", opp.Symbol, opp.AmountQuote, e.cfg.Quote, opp.RSI)
	if e.cfg.DryRun {
		result.DryRun = true
		logx.Infof("dry-run: would buy %s %s of %s", opp.AmountQuote, e.cfg.Quote, opp.Symbol)
		return result
	}
	return e.submitAndConfirm(ctx, result, func(precision int32) (exchange.OrderRequest, bool) {
		amount := opp.AmountQuote.Truncate(precision)
		if amount.LessThan(e.scfg.MinOrderSize) {
			return exchange.OrderRequest{}, false
		}
		return exchange.OrderRequest{
			Symbol:    opp.Symbol,
			Side:      exchange.OrderSideBuy,
			QuoteSize: amount,
			ClientID:  uuid.NewString(),
		}, true
	})
}

// submitAndConfirm drives one order through the state machine. Precision
// rejections re-enter PENDING_SUBMIT with one fewer decimal place, down
// to zero; every other rejection is terminal for the symbol.
func (e *Engine) submitAndConfirm(ctx context.Context, result OrderResult, buildReq func(int32) (exchange.OrderRequest, bool)) OrderResult {
	var ack *exchange.OrderAck
	policy := retry.Policy[int32]{
		MaxAttempts: int(e.cfg.MaxPrecision) + 1,
		Retryable:   func(err error) bool { return errors.Is(err, exchange.ErrPrecision) },
		Next: func(precision int32) (int32, bool) {
			if precision <= 0 {
				return 0, false
			}
			logx.Infof("%s: precision rejected, retrying at %d decimal places", result.Symbol, precision-1)
			return precision - 1, true
		},
	}

	precision, err := policy.Do(ctx, e.cfg.MaxPrecision, func(ctx context.Context, precision int32) error {
		req, ok := buildReq(precision)
		if !ok {
			return exchange.Reject(result.Symbol, fmt.Sprintf("size rounds away at %d decimal places", precision))
		}
		a, err := e.venue.SubmitMarketOrder(ctx, req)
		if err != nil {
			return err
		}
		ack = a
		return nil
	})
	result.Precision = precision
	if err != nil {
		result.State = StateRejected
		result.Err = err
		logx.Errorf("%s %s rejected: %v", result.Side, result.Symbol, err)
		return result
	}

	result.State = StateSubmitted
	result.OrderID = ack.OrderID
	logx.Infof("%s %s submitted, order %s", result.Side, result.Symbol, ack.OrderID)

	if err := e.waitFn(ctx, e.cfg.ConfirmDelay); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrUnconfirmed, err)
		return result
	}
	fill, err := e.venue.OrderFill(ctx, ack.OrderID)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrUnconfirmed, err)
		logx.Errorf("%s order %s: fill lookup failed, flagging for follow-up: %v", result.Symbol, ack.OrderID, err)
		return result
	}
	if fill == nil {
		result.Err = ErrUnconfirmed
		logx.Errorf("%s order %s: no fill data after %s, flagging for follow-up", result.Symbol, ack.OrderID, e.cfg.ConfirmDelay)
		return result
	}

	trade := Trade{
		Symbol:          result.Symbol,
		Side:            result.Side,
		FilledSize:      fill.FilledSize,
		FillPrice:       fill.Price,
		FilledValue:     fill.FilledValue,
		ExternalOrderID: ack.OrderID,
		ExecutedAt:      e.nowFn(),
	}
	if err := e.trades.RecordTrade(ctx, trade); err != nil {
		// The venue-side fill is real; losing it silently is not an option.
		result.State = StateFilled
		result.Err = &PersistError{Trade: trade, Err: err}
		return result
	}
	result.State = StateFilled
	result.Trade = &trade
	logx.Infof("%s %s filled: size %s, value %s, order %s",
		result.Side, result.Symbol, trade.FilledSize, trade.FilledValue, trade.ExternalOrderID)
	return result
}

func (e *Engine) writeJournal(cycle *Cycle, cycleErr error) {
	if e.journal == nil {
		return
	}
	rec := &journal.CycleRecord{
		Timestamp: cycle.StartedAt,
		DryRun:    e.cfg.DryRun,
		Symbols:   cycle.Symbols,
		Success:   cycleErr == nil,
	}
	if cycleErr != nil {
		rec.ErrorMessage = cycleErr.Error()
	}
	rec.Indicators = make(map[string]any, len(cycle.Snapshot))
	for symbol, a := range cycle.Snapshot {
		rec.Indicators[symbol] = map[string]any{"price": a.CurrentPrice, "rsi": a.RSI}
	}
	for _, s := range cycle.Sells {
		rec.Sells = append(rec.Sells, map[string]any{
			"symbol": s.Symbol, "balance": s.AvailableBalance.String(), "rsi": s.RSI,
		})
	}
	for _, b := range cycle.Buys {
		rec.Buys = append(rec.Buys, map[string]any{
			"symbol": b.Symbol, "amount": b.AmountQuote.String(), "rsi": b.RSI,
		})
	}
	for _, o := range cycle.Orders {
		entry := map[string]any{
			"symbol": o.Symbol, "side": string(o.Side), "state": string(o.State),
		}
		if o.OrderID != "" {
			entry["order_id"] = o.OrderID
		}
		if o.Err != nil {
			entry["error"] = o.Err.Error()
		}
		rec.Orders = append(rec.Orders, entry)
	}
	if _, err := e.journal.WriteCycle(rec); err != nil {
		logx.Errorf("write cycle journal: %v", err)
	}
}

func asPersistError(err error) *PersistError {
	var perr *PersistError
	if errors.As(err, &perr) {
		return perr
	}
	return nil
}

func waitContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
