package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"basketbot/internal/cli"
	"basketbot/internal/config"
	"basketbot/internal/svc"
	"basketbot/pkg/exchange"
	"basketbot/pkg/market/resample"
)

const apiTimeout = 5 * time.Second

var configFile = flag.String("f", "etc/basketbot.yaml", "the config file")

// The collector samples the venue's current prices on an interval and
// appends them to the price_ticks table, which is the decision engine's
// only market-data input.
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logx.Infof("collector started, sampling every %s", appCfg.CollectInterval())
	collect(ctx, svcCtx)

	ticker := time.NewTicker(appCfg.CollectInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logx.Info("collector stopped")
			return
		case <-ticker.C:
			collect(ctx, svcCtx)
		}
	}
}

func collect(parentCtx context.Context, svcCtx *svc.ServiceContext) {
	if parentCtx.Err() != nil {
		return
	}

	symbols := svcCtx.Config.Symbols
	if len(symbols) == 0 {
		ctx, cancel := context.WithTimeout(parentCtx, apiTimeout)
		products, err := svcCtx.Venue.ListProducts(ctx, svcCtx.Config.Quote)
		cancel()
		if err != nil {
			logx.Errorf("list products: %v", err)
			return
		}
		for _, p := range products {
			symbols = append(symbols, p.Symbol)
		}
	}

	sampled := 0
	for _, symbol := range symbols {
		symbol = exchange.Canonical(symbol)
		ctx, cancel := context.WithTimeout(parentCtx, apiTimeout)
		price, err := svcCtx.Venue.CurrentPrice(ctx, symbol)
		cancel()
		if err != nil {
			logx.Errorf("price %s: %v", symbol, err)
			continue
		}
		sampledPrice := price.InexactFloat64()

		ctx, cancel = context.WithTimeout(parentCtx, apiTimeout)
		prev, err := svcCtx.Repos.MarketData.LatestPrice(ctx, symbol)
		cancel()
		if err == nil && prev > 0 {
			logx.Infof("%s: %.4f (prev %.4f, %+.2f%%)", symbol, sampledPrice, prev, (sampledPrice-prev)/prev*100)
		} else {
			logx.Infof("%s: %.4f (first sample)", symbol, sampledPrice)
		}

		tick := resample.Tick{Symbol: symbol, Price: sampledPrice, Time: time.Now().UTC()}
		ctx, cancel = context.WithTimeout(parentCtx, apiTimeout)
		err = svcCtx.Repos.MarketData.InsertTick(ctx, tick)
		cancel()
		if err != nil {
			logx.Errorf("store tick %s: %v", symbol, err)
			continue
		}
		sampled++
	}
	logx.Infof("sampled %d/%d symbols", sampled, len(symbols))
}
