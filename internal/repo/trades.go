package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"basketbot/pkg/engine"
	"basketbot/pkg/exchange"
)

// TradesRepo persists confirmed fills. RecordTrade keys on the external
// order id so a replayed confirmation cannot double-insert.
type TradesRepo interface {
	RecordTrade(ctx context.Context, trade engine.Trade) error
	Recent(ctx context.Context, limit int) ([]engine.Trade, error)
}

type tradesRepo struct {
	conn sqlx.SqlConn
}

func newTradesRepo(deps Dependencies) TradesRepo {
	return &tradesRepo{conn: deps.DBConn}
}

type tradeRow struct {
	ID              int64     `db:"id"`
	Symbol          string    `db:"symbol"`
	Side            string    `db:"side"`
	FilledSize      string    `db:"filled_size"`
	FillPrice       string    `db:"fill_price"`
	FilledValue     string    `db:"filled_value"`
	ExternalOrderID string    `db:"external_order_id"`
	ExecutedAt      time.Time `db:"executed_at"`
}

func (r *tradesRepo) RecordTrade(ctx context.Context, trade engine.Trade) error {
	const query = `
INSERT INTO trades (symbol, side, filled_size, fill_price, filled_value, external_order_id, executed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (external_order_id) DO NOTHING`

	_, err := r.conn.ExecCtx(ctx, query,
		trade.Symbol,
		string(trade.Side),
		trade.FilledSize.String(),
		trade.FillPrice.String(),
		trade.FilledValue.String(),
		trade.ExternalOrderID,
		trade.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("tradesRepo.RecordTrade: %w", err)
	}
	return nil
}

func (r *tradesRepo) Recent(ctx context.Context, limit int) ([]engine.Trade, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
SELECT id, symbol, side, filled_size, fill_price, filled_value, external_order_id, executed_at
FROM trades
ORDER BY executed_at DESC
LIMIT $1`

	var rows []tradeRow
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("tradesRepo.Recent query: %w", err)
	}

	trades := make([]engine.Trade, 0, len(rows))
	for _, row := range rows {
		trade := engine.Trade{
			Symbol:          row.Symbol,
			Side:            exchange.OrderSide(row.Side),
			ExternalOrderID: row.ExternalOrderID,
			ExecutedAt:      row.ExecutedAt,
		}
		var err error
		if trade.FilledSize, err = decimal.NewFromString(row.FilledSize); err != nil {
			return nil, fmt.Errorf("tradesRepo.Recent: bad filled_size for order %s: %w", row.ExternalOrderID, err)
		}
		if trade.FillPrice, err = decimal.NewFromString(row.FillPrice); err != nil {
			return nil, fmt.Errorf("tradesRepo.Recent: bad fill_price for order %s: %w", row.ExternalOrderID, err)
		}
		if trade.FilledValue, err = decimal.NewFromString(row.FilledValue); err != nil {
			return nil, fmt.Errorf("tradesRepo.Recent: bad filled_value for order %s: %w", row.ExternalOrderID, err)
		}
		trades = append(trades, trade)
	}
	return trades, nil
}
