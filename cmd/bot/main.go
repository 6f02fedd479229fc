package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"basketbot/internal/cli"
	"basketbot/internal/config"
	"basketbot/internal/svc"
	"basketbot/pkg/engine"
)

const cycleTimeout = 5 * time.Minute

var configFile = flag.String("f", "etc/basketbot.yaml", "the config file")

func main() {
	flag.Parse()

	appCfg, err := config.Load(*configFile)
	if err != nil {
		logx.Errorf("load config %s: %v", *configFile, err)
		os.Exit(1)
	}
	cli.LogConfigSummary(appCfg)

	svcCtx, err := svc.NewServiceContext(appCfg)
	if err != nil {
		logx.Errorf("build service context: %v", err)
		os.Exit(1)
	}

	eng := engine.New(
		engine.Config{
			Quote:        appCfg.Quote,
			Symbols:      appCfg.Symbols,
			DryRun:       appCfg.DryRun,
			ConfirmDelay: appCfg.ConfirmWait(),
			MaxPrecision: int32(appCfg.MaxPrecision),
		},
		svcCtx.StrategyConfig,
		svcCtx.Venue,
		svcCtx.Repos.MarketData,
		svcCtx.Repos.Trades,
		engine.WithJournal(svcCtx.Journal),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logRecentTrades(ctx, svcCtx)

	runOnce := func() {
		cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
		defer cancel()

		start := time.Now()
		cycle, err := eng.RunCycle(cycleCtx)
		if err != nil {
			logx.Errorf("cycle failed after %s: %v", time.Since(start).Round(time.Millisecond), err)
			return
		}
		logx.Infof("cycle done in %s: %d sells, %d buys, %d orders",
			time.Since(start).Round(time.Millisecond), len(cycle.Sells), len(cycle.Buys), len(cycle.Orders))
	}

	// One cycle immediately, then on the configured schedule.
	runOnce()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(appCfg.Schedule, runOnce); err != nil {
		logx.Errorf("invalid schedule %q: %v", appCfg.Schedule, err)
		os.Exit(1)
	}
	scheduler.Start()
	logx.Infof("scheduler started with %q, press Ctrl+C to stop", appCfg.Schedule)

	<-ctx.Done()
	logx.Info("shutdown signal received, stopping scheduler")
	<-scheduler.Stop().Done()
	logx.Info("stopped")
}

// logRecentTrades reports the last few persisted fills at startup so an
// operator can see where the previous run left the book.
func logRecentTrades(ctx context.Context, svcCtx *svc.ServiceContext) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	trades, err := svcCtx.Repos.Trades.Recent(queryCtx, 5)
	if err != nil {
		logx.Errorf("load recent trades: %v", err)
		return
	}
	if len(trades) == 0 {
		logx.Info("no prior trades on record")
		return
	}
	for _, trade := range trades {
		logx.Infof("prior trade: %s %s size %s value %s at %s (order %s)",
			trade.Side, trade.Symbol, trade.FilledSize, trade.FilledValue,
			trade.ExecutedAt.Format(time.RFC3339), trade.ExternalOrderID)
	}
}
