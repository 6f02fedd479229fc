package svc

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	"basketbot/internal/config"
	"basketbot/internal/repo"
	exchangepkg "basketbot/pkg/exchange"
	"basketbot/pkg/exchange/sim" // importing also registers the sim provider type
	"basketbot/pkg/journal"
	strategypkg "basketbot/pkg/strategy"
)

// ServiceContext wires configuration into the shared collaborators both
// binaries use: the venue provider, the repositories and the journal.
type ServiceContext struct {
	Config *config.Config

	StrategyConfig    *strategypkg.Config
	ExchangeConfig    *exchangepkg.Config
	ExchangeProviders map[string]exchangepkg.Provider
	Venue             exchangepkg.Provider

	DBConn sqlx.SqlConn
	Cache  cache.Cache
	Repos  *repo.Set

	Journal *journal.Writer
}

func NewServiceContext(c *config.Config) (*ServiceContext, error) {
	svc := &ServiceContext{Config: c}

	svc.StrategyConfig = c.Strategy.Value
	if svc.StrategyConfig == nil {
		svc.StrategyConfig = strategypkg.Default()
	}

	if c.Exchange.Value != nil {
		exchangeCfg := c.Exchange.Value
		// Test environment never touches a live venue.
		if c.IsTestEnv() {
			for _, provider := range exchangeCfg.Providers {
				provider.Sandbox = true
			}
		}
		providers, err := exchangeCfg.BuildProviders()
		if err != nil {
			return nil, fmt.Errorf("build exchange providers: %w", err)
		}
		svc.ExchangeConfig = exchangeCfg
		svc.ExchangeProviders = providers
		if exchangeCfg.Default != "" {
			svc.Venue = providers[exchangeCfg.Default]
		}
	}
	if svc.Venue == nil {
		svc.Venue = sim.New(c.Quote)
	}

	if c.Postgres.DSN == "" {
		return nil, fmt.Errorf("config: postgres.dsn is required")
	}
	svc.DBConn = sqlx.NewSqlConn("pgx", c.Postgres.DSN)
	raw, err := svc.DBConn.RawDB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	raw.SetMaxOpenConns(c.Postgres.MaxOpen)
	raw.SetMaxIdleConns(c.Postgres.MaxIdle)

	if c.Redis.Host != "" {
		svc.Cache = cache.New(
			cache.ClusterConf{{RedisConf: c.Redis, Weight: 100}},
			syncx.NewSingleFlight(),
			cache.NewStat("basketbot"),
			sql.ErrNoRows,
		)
	}

	repos, err := repo.New(repo.Dependencies{
		DBConn: svc.DBConn,
		Cache:  svc.Cache,
		TTL:    repo.TTLSet{Short: c.TTL.Short, Medium: c.TTL.Medium, Long: c.TTL.Long},
	})
	if err != nil {
		return nil, err
	}
	svc.Repos = repos

	svc.Journal = journal.NewWriter(c.JournalDir)
	return svc, nil
}
