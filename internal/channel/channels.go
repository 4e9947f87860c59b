// Package channel holds the consumer-facing output queues, one per canonical
// channel kind. Producers (the stream reader) never block on enqueue; each
// queue has a single downstream consumer.
package channel

import (
	"context"
	"time"

	"okxflow/logger"
	"okxflow/models"
)

// Channels aggregates the three named output queues.
type Channels struct {
	Trade   *Queue[models.TradeEvent]
	Diff    *Queue[models.OrderBookEvent]
	Funding *Queue[models.FundingInfoUpdate]

	log                 *logger.Log
	metricsReportTicker *time.Ticker
}

// NewChannels creates the trade, diff and funding queues.
func NewChannels() *Channels {
	log := logger.GetLogger()

	c := &Channels{
		Trade:   NewQueue[models.TradeEvent](),
		Diff:    NewQueue[models.OrderBookEvent](),
		Funding: NewQueue[models.FundingInfoUpdate](),
		log:     log,
	}

	log.WithComponent("channels").Info("event channels initialized")
	return c
}

// StartMetricsReporting periodically logs queue throughput and backlog until
// the context is cancelled.
func (c *Channels) StartMetricsReporting(ctx context.Context) {
	c.metricsReportTicker = time.NewTicker(30 * time.Second)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.metricsReportTicker.Stop()
				return
			case <-c.metricsReportTicker.C:
				c.logChannelStats()
			}
		}
	}()
}

func (c *Channels) logChannelStats() {
	c.log.WithComponent("channels").WithFields(logger.Fields{
		"trade_events_sent":   c.Trade.Pushed(),
		"diff_events_sent":    c.Diff.Pushed(),
		"funding_events_sent": c.Funding.Pushed(),
		"trade_backlog":       c.Trade.Len(),
		"diff_backlog":        c.Diff.Len(),
		"funding_backlog":     c.Funding.Len(),
	}).Info("channel statistics")
}

// Close stops background reporting. Queues have no resources to release.
func (c *Channels) Close() {
	if c.metricsReportTicker != nil {
		c.metricsReportTicker.Stop()
	}
	c.log.WithComponent("channels").Info("all channels closed")
}
