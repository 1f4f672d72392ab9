package supervisor

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scorearb/arbiter/internal/adapters/kalshi_auth"
	"github.com/scorearb/arbiter/internal/adapters/outbound/goalserve"
	"github.com/scorearb/arbiter/internal/adapters/outbound/kalshi_http"
	"github.com/scorearb/arbiter/internal/audit"
	"github.com/scorearb/arbiter/internal/config"
	"github.com/scorearb/arbiter/internal/core/brain"
	"github.com/scorearb/arbiter/internal/core/oracle"
	"github.com/scorearb/arbiter/internal/core/orderbook"
	"github.com/scorearb/arbiter/internal/core/risk"
	"github.com/scorearb/arbiter/internal/core/sniper"
	"github.com/scorearb/arbiter/internal/core/ticker"
	"github.com/scorearb/arbiter/internal/events"
	"github.com/scorearb/arbiter/internal/telemetry"
)

// channelCapacity bounds every hot-path Channel[T] (spec.md §2: "a small
// integer, 64-256").
const channelCapacity = 128

// Run boots the full five-agent pipeline: load config, init logging, load
// the signing key, warm the exchange connection, wire the event channels,
// start Watcher/Oracle/Brain/Sniper/Shield, then block until a shutdown
// signal arrives. On that signal it cancels every agent's context at once
// and closes the Watcher, then waits DrainGracePeriod before returning;
// trades still queued on the ExecuteTrade channel are not sent. Returns a
// process exit code.
func Run() int {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("arbiter: starting mode=%s", cfg.ExchangeMode)

	series, err := config.LoadSeriesDocument(cfg.SeriesConfigPath)
	if err != nil {
		telemetry.Errorf("load series config: %v", err)
		return 1
	}

	signer, err := kalshi_auth.NewSignerFromFile(cfg.ExchangeKeyID, cfg.ExchangeKeyFile, kalshi_auth.Algo(cfg.ExchangeKeyAlgo))
	if err != nil {
		telemetry.Errorf("load signing key: %v", err)
		return 1
	}
	if !signer.Enabled() {
		telemetry.Warnf("arbiter: no signing credentials configured, running unauthenticated")
	}

	httpClient := kalshi_http.NewClient(cfg.ExchangeBaseURL, signer, cfg.RestTimeout)

	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.MarketFetchTimeout)
	balance, err := httpClient.GetBalance(warmCtx)
	warmCancel()
	if err != nil {
		telemetry.Warnf("arbiter: connection warm-up failed: %v", err)
	} else {
		telemetry.Infof("arbiter: balance=$%.2f", float64(balance)/100.0)
	}

	store, err := audit.OpenStore(cfg.AuditDBPath)
	if err != nil {
		telemetry.Errorf("open audit store: %v", err)
		return 1
	}
	defer store.Close()

	status := events.NewBus()

	gameEvents := events.NewChannel[events.GameEvent]("game_event", channelCapacity, events.DropOldest)
	executeTrades := events.NewChannel[events.ExecuteTrade]("execute_trade", channelCapacity, events.Block)
	fillReports := events.NewChannel[events.FillReport]("fill_report", channelCapacity, events.DropNewest)

	books := orderbook.NewCache()
	watcher := orderbook.NewWatcher(cfg.ExchangeWSURL, signer, books, status, cfg.WSConnectTimeout, cfg.WSIdleTimeout, channelCapacity)
	builder := ticker.NewThresholdMapBuilder(httpClient)

	limits := risk.Limits{
		MaxDailyLossCents:    cfg.MaxDailyLossCents,
		MaxOpenExposureCents: cfg.MaxOpenExposureCents,
		MaxTradesPerGame:     cfg.MaxTradesPerGame,
		NetPayoutCents:       cfg.NetPayoutCents,
	}
	state := risk.NewState(limits)

	goalserveClient := goalserve.NewClient(cfg.ScoreProviderAPIKey, cfg.MarketFetchTimeout)
	scoreAdapter := goalserve.NewAdapter(goalserveClient)
	orc := oracle.New(scoreAdapter, series, cfg.PollInterval, gameEvents, status)

	br := brain.New(cfg, series, books, builder, watcher, state, gameEvents, executeTrades)
	sn := sniper.New(httpClient, store, executeTrades, fillReports, cfg.BreakerFailureThreshold, cfg.BreakerCooldown, cfg.BreakerMaxCooldown)
	sh := risk.NewShield(state, fillReports, status, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		telemetry.Errorf("start watcher: %v", err)
		return 1
	}

	go orc.Run(ctx)
	go br.Run(ctx)
	go sn.Run(ctx)
	go sh.Run(ctx)

	telemetry.Infof("arbiter: all agents started, sports=%d", len(series))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("arbiter: shutdown signal received, stopping agents")
	cancel()
	if err := watcher.Close(); err != nil {
		telemetry.Warnf("arbiter: watcher close: %v", err)
	}

	time.Sleep(cfg.DrainGracePeriod)

	telemetry.Infof("arbiter: shutdown complete trades=%d orders=%d errors=%d halts=%d",
		telemetry.Metrics.TradesExecuted.Value(),
		telemetry.Metrics.OrdersSent.Value(),
		telemetry.Metrics.OrderErrors.Value(),
		telemetry.Metrics.HaltEvents.Value(),
	)
	return 0
}
