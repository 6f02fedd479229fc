package repo

import (
	"errors"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// TTLSet bundles cache durations in seconds.
type TTLSet struct {
	Short  int
	Medium int
	Long   int
}

// Dependencies bundles the shared infrastructure repositories are built
// on. Cache may be nil; repositories then skip caching entirely.
type Dependencies struct {
	DBConn sqlx.SqlConn
	Cache  cache.Cache
	TTL    TTLSet
}

// Set exposes strongly typed repositories to application logic.
type Set struct {
	MarketData MarketDataRepo
	Trades     TradesRepo
}

// New constructs the repository set, validating required dependencies.
func New(deps Dependencies) (*Set, error) {
	if deps.DBConn == nil {
		return nil, errors.New("repo: missing DBConn dependency")
	}
	return &Set{
		MarketData: newMarketDataRepo(deps),
		Trades:     newTradesRepo(deps),
	}, nil
}
