package okx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	appconfig "okxflow/config"
	"okxflow/internal/channel"
	"okxflow/internal/nonce"
	"okxflow/internal/symbols"
	"okxflow/internal/transport"
	"okxflow/logger"
	"okxflow/models"
)

// wsPingPayload is the liveness probe sent when the receive window expires
// without data. The exchange answers with a plain "pong" frame, which the
// classifier drops as unrouted.
const wsPingPayload = "ping"

// Okx_Stream_Reader consumes the public websocket, classifies every inbound
// frame and fans the normalized events out to the consumer queues. One reader
// drives one connection covering all configured instruments; the connection
// is re-established on failure until the context is cancelled.
type Okx_Stream_Reader struct {
	config     *appconfig.Config
	channels   *channel.Channels
	translator symbols.Translator
	dialer     transport.StreamDialer
	nonce      *nonce.Sequencer
	subLimiter *rate.Limiter
	log        *logger.Log
	ctx        context.Context
	wg         *sync.WaitGroup
	mu         sync.RWMutex
	running    bool

	// sleep performs the reconnect backoff; tests substitute it to avoid
	// real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// Okx_Stream_NewReader creates a new stream reader. The nonce sequencer is
// shared with the snapshot reader so diff update ids interleave correctly
// with snapshot ids.
func Okx_Stream_NewReader(cfg *appconfig.Config, ch *channel.Channels, translator symbols.Translator, dialer transport.StreamDialer, seq *nonce.Sequencer) *Okx_Stream_Reader {
	sub := cfg.Reader.SubscribeRateLimit
	return &Okx_Stream_Reader{
		config:     cfg,
		channels:   ch,
		translator: translator,
		dialer:     dialer,
		nonce:      seq,
		subLimiter: rate.NewLimiter(rate.Limit(sub.RequestsPerSecond), sub.BurstSize),
		log:        logger.GetLogger(),
		wg:         &sync.WaitGroup{},
		sleep:      sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Okx_Stream_Start launches the websocket worker for all configured
// instruments. It returns immediately; the worker runs until the context is
// cancelled.
func (r *Okx_Stream_Reader) Okx_Stream_Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("Okx_Stream_Reader already running")
	}
	r.running = true
	r.ctx = ctx
	r.mu.Unlock()

	log := r.log.WithComponent("okx_stream_reader").WithFields(logger.Fields{"operation": "Okx_Stream_Start"})

	instIDs := make([]string, 0, len(r.config.Source.Okx.Instruments))
	for _, inst := range r.config.Source.Okx.Instruments {
		instIDs = append(instIDs, inst.InstID)
	}
	if len(instIDs) == 0 {
		return fmt.Errorf("no instruments configured")
	}

	wsURL := r.config.Source.Okx.WsURL
	if wsURL == "" {
		wsURL = DefaultWsURL
	}

	log.WithFields(logger.Fields{"instruments": instIDs, "url": wsURL}).Info("starting okx stream reader")
	r.wg.Add(1)
	go r.stream(wsURL, instIDs)
	return nil
}

// Okx_Stream_Stop waits for the worker to unwind. The context passed to
// Okx_Stream_Start must be cancelled first.
func (r *Okx_Stream_Reader) Okx_Stream_Stop() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	r.log.WithComponent("okx_stream_reader").Info("stopping okx stream reader")
	r.wg.Wait()
	r.log.WithComponent("okx_stream_reader").Info("okx stream reader stopped")
}

// stream is the connection lifecycle loop: connect, subscribe, pump, and on
// any failure back off for the configured delay before reconnecting. Only
// context cancellation exits the loop.
func (r *Okx_Stream_Reader) stream(wsURL string, instIDs []string) {
	defer r.wg.Done()
	log := r.log.WithComponent("okx_stream_reader").WithFields(logger.Fields{"worker": "stream", "url": wsURL})

	for attempt := 0; ; attempt++ {
		if r.ctx.Err() != nil {
			return
		}
		if attempt > 0 {
			logger.IncrementReconnect()
			if err := r.sleep(r.ctx, r.config.Reader.Backoff); err != nil {
				return
			}
		}

		session := uuid.NewString()
		slog := log.WithFields(logger.Fields{"session": session})

		err := r.runSession(slog, wsURL, instIDs)
		if errors.Is(err, context.Canceled) || r.ctx.Err() != nil {
			return
		}
		slog.WithError(err).Warn("websocket session ended, reconnecting")
	}
}

// runSession drives one connection from handshake to failure. The connection
// is always released before returning.
func (r *Okx_Stream_Reader) runSession(log *logger.Entry, wsURL string, instIDs []string) error {
	conn, err := r.dialer.Connect(r.ctx, wsURL, r.config.Reader.ConnectTimeout)
	if err != nil {
		return err
	}
	defer conn.Disconnect()
	log.Info("websocket connected")

	if err := r.subscribe(r.ctx, conn, instIDs); err != nil {
		return err
	}
	log.WithFields(logger.Fields{"instruments": len(instIDs)}).Info("subscriptions sent")

	for {
		msg, err := conn.Receive(r.ctx, r.config.Reader.IdleTimeout)
		if errors.Is(err, transport.ErrIdleTimeout) {
			// Idleness is not fatal; probe and keep waiting.
			log.Debug("idle timeout, sending ping")
			if err := conn.Send(r.ctx, wsPingPayload); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		r.dispatch(log, msg)
	}
}

// dispatch routes one raw frame to its normalizer. Malformed frames are
// counted and dropped; a frame must never take the session down.
func (r *Okx_Stream_Reader) dispatch(log *logger.Entry, msg []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.IncrementDroppedMessage()
			log.WithFields(logger.Fields{"panic": rec}).Error("panic while processing message")
		}
	}()

	kind := classify(msg)
	logger.IncrementStreamRead(len(msg))

	var err error
	switch kind {
	case models.ChannelKindDiff:
		err = r.handleDiff(msg)
	case models.ChannelKindTrade:
		err = r.handleTrades(msg)
	case models.ChannelKindFunding:
		err = r.handleFunding(msg)
	default:
		log.WithFields(logger.Fields{"raw": string(msg)}).Debug("unrouted message dropped")
		return
	}
	if err != nil {
		logger.IncrementDroppedMessage()
		log.WithError(err).WithFields(logger.Fields{"channel": kind.String()}).Warn("dropping malformed message")
	}
}
