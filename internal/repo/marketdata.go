package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"basketbot/pkg/exchange"
	"basketbot/pkg/market/resample"
)

// MarketDataRepo stores and serves raw price ticks. History feeds the
// decision engine's lookback window; InsertTick is the collector's write
// path.
type MarketDataRepo interface {
	History(ctx context.Context, symbols []string, since time.Time) ([]resample.Tick, error)
	InsertTick(ctx context.Context, tick resample.Tick) error
	LatestPrice(ctx context.Context, symbol string) (float64, error)
}

type marketDataRepo struct {
	conn  sqlx.SqlConn
	cache cache.Cache
	ttl   TTLSet
}

func newMarketDataRepo(deps Dependencies) MarketDataRepo {
	return &marketDataRepo{
		conn:  deps.DBConn,
		cache: deps.Cache,
		ttl:   deps.TTL,
	}
}

type tickRow struct {
	Symbol string    `db:"symbol"`
	Price  float64   `db:"price"`
	Ts     time.Time `db:"ts"`
}

func (r *marketDataRepo) History(ctx context.Context, symbols []string, since time.Time) ([]resample.Tick, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	canon := make([]string, 0, len(symbols))
	for _, s := range symbols {
		canon = append(canon, exchange.Canonical(s))
	}

	const query = `
SELECT symbol, price, ts
FROM price_ticks
WHERE symbol = ANY($1) AND ts >= $2
ORDER BY ts ASC`

	var rows []tickRow
	if err := r.conn.QueryRowsCtx(ctx, &rows, query, canon, since); err != nil {
		return nil, fmt.Errorf("marketDataRepo.History query: %w", err)
	}

	ticks := make([]resample.Tick, 0, len(rows))
	for _, row := range rows {
		ticks = append(ticks, resample.Tick{Symbol: row.Symbol, Price: row.Price, Time: row.Ts})
	}
	return ticks, nil
}

func (r *marketDataRepo) InsertTick(ctx context.Context, tick resample.Tick) error {
	const query = `INSERT INTO price_ticks (symbol, price, ts) VALUES ($1, $2, $3)`
	if _, err := r.conn.ExecCtx(ctx, query, exchange.Canonical(tick.Symbol), tick.Price, tick.Time); err != nil {
		return fmt.Errorf("marketDataRepo.InsertTick: %w", err)
	}
	return nil
}

func (r *marketDataRepo) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = exchange.Canonical(symbol)
	key := "basketbot:price_latest:" + symbol

	var cached float64
	if ok, _ := r.getCache(ctx, key, &cached); ok {
		return cached, nil
	}

	const query = `SELECT price FROM price_ticks WHERE symbol = $1 ORDER BY ts DESC LIMIT 1`
	var price float64
	if err := r.conn.QueryRowCtx(ctx, &price, query, symbol); err != nil {
		return 0, fmt.Errorf("marketDataRepo.LatestPrice query: %w", err)
	}
	r.setCache(ctx, key, r.ttl.Short, price)
	return price, nil
}

func (r *marketDataRepo) getCache(ctx context.Context, key string, v any) (bool, error) {
	if r.cache == nil {
		return false, nil
	}
	if err := r.cache.GetCtx(ctx, key, v); err != nil {
		if r.cache.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *marketDataRepo) setCache(ctx context.Context, key string, ttl int, v any) {
	if r.cache == nil || ttl <= 0 {
		return
	}
	if err := r.cache.SetWithExpireCtx(ctx, key, v, time.Duration(ttl)*time.Second); err != nil {
		logx.WithContext(ctx).Errorf("set cache %s: %v", key, err)
	}
}
