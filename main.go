package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"okxflow/config"
	"okxflow/internal/channel"
	"okxflow/internal/nonce"
	"okxflow/internal/reader/okx"
	"okxflow/internal/symbols"
	"okxflow/internal/transport"
	"okxflow/logger"
	"okxflow/models"
)

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(config.ResolveConfigPath(*configPath))
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Okxflow.Name,
		"version": cfg.Okxflow.Version,
	}).Info("starting okxflow")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Metrics.CloudWatch.Enabled {
		logger.InitCloudWatch(cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace, cfg.Metrics.CloudWatch.DashboardName)
		logger.CreateDefaultDashboard(ctx)
	}
	if strings.ToLower(cfg.Logging.Level) == "report" {
		logger.StartReport(ctx, log, 30*time.Second)
	}

	channels := channel.NewChannels()
	defer channels.Close()

	if cfg.Metrics.ChannelSize {
		channels.StartMetricsReporting(ctx)
	}

	translator := symbols.NewStaticTranslator(cfg.Source.Okx.Pairs())
	seq := nonce.NewSequencer()

	rest := transport.NewHTTPClient(
		cfg.Reader.Timeout,
		cfg.Reader.RateLimit.RequestsPerSecond,
		cfg.Reader.RateLimit.BurstSize,
		cfg.Reader.LocalIP,
		nil,
	)

	snapshotReader := okx.Okx_Snapshot_NewReader(cfg, rest, translator, seq)
	streamReader := okx.Okx_Stream_NewReader(cfg, channels, translator, transport.NewWSDialer(cfg.Reader.LocalIP), seq)

	// Seed a snapshot per instrument so downstream books have a base state
	// before deltas start flowing. Failures are logged, not fatal; consumers
	// can re-request through the snapshot reader at any time.
	for _, inst := range cfg.Source.Okx.Instruments {
		snapshot, err := snapshotReader.FetchOrderBook(ctx, inst.Pair)
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"pair": inst.Pair}).Warn("initial snapshot failed")
			continue
		}
		channels.Diff.Push(snapshot)
		log.WithFields(logger.Fields{"pair": inst.Pair, "update_id": snapshot.UpdateID}).Info("initial snapshot seeded")
	}

	if err := streamReader.Okx_Stream_Start(ctx); err != nil {
		log.WithError(err).Error("failed to start stream reader")
		os.Exit(1)
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go drainTrades(ctx, &wg, channels, log)
	go drainDiffs(ctx, &wg, channels, log)
	go drainFunding(ctx, &wg, channels, log)

	log.Info("all components started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")

	log.Info("starting graceful shutdown")
	cancel()

	streamReader.Okx_Stream_Stop()
	wg.Wait()

	log.Info("okxflow shutdown complete")
}

// drainTrades is the demo consumer for the trade queue. Real deployments
// replace these drains with downstream processing.
func drainTrades(ctx context.Context, wg *sync.WaitGroup, channels *channel.Channels, log *logger.Log) {
	defer wg.Done()
	entry := log.WithComponent("trade_consumer")
	for {
		ev, err := channels.Trade.Pop(ctx)
		if err != nil {
			return
		}
		logger.LogDataFlowEntry(entry, "trade_queue", "consumer", 1, "trade_event")
		entry.WithFields(logger.Fields{
			"pair":  ev.TradingPair,
			"side":  ev.Side,
			"price": ev.Price,
		}).Debug("trade event")
	}
}

func drainDiffs(ctx context.Context, wg *sync.WaitGroup, channels *channel.Channels, log *logger.Log) {
	defer wg.Done()
	entry := log.WithComponent("diff_consumer")
	for {
		ev, err := channels.Diff.Pop(ctx)
		if err != nil {
			return
		}
		logger.LogDataFlowEntry(entry, "diff_queue", "consumer", len(ev.Bids)+len(ev.Asks), "orderbook_levels")
		entry.WithFields(logger.Fields{
			"pair":      ev.TradingPair,
			"type":      ev.Type.String(),
			"update_id": ev.UpdateID,
		}).Debug("order book event")
	}
}

func drainFunding(ctx context.Context, wg *sync.WaitGroup, channels *channel.Channels, log *logger.Log) {
	defer wg.Done()
	entry := log.WithComponent("funding_consumer")
	for {
		upd, err := channels.Funding.Pop(ctx)
		if err != nil {
			return
		}
		logger.LogDataFlowEntry(entry, "funding_queue", "consumer", 1, "funding_update")
		entry.WithFields(logger.Fields{
			"pair":   upd.TradingPair,
			"fields": presentFundingFields(upd),
		}).Debug("funding update")
	}
}

func presentFundingFields(upd models.FundingInfoUpdate) []string {
	fields := make([]string, 0, 4)
	if upd.IndexPrice != nil {
		fields = append(fields, "index_price")
	}
	if upd.MarkPrice != nil {
		fields = append(fields, "mark_price")
	}
	if upd.NextFundingUTCTimestamp != nil {
		fields = append(fields, "next_funding_utc_timestamp")
	}
	if upd.Rate != nil {
		fields = append(fields, "rate")
	}
	return fields
}
