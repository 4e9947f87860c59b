package okx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	appconfig "okxflow/config"
	"okxflow/internal/nonce"
	"okxflow/internal/symbols"
	"okxflow/internal/transport"
	"okxflow/logger"
	"okxflow/models"
)

// Okx_Snapshot_Reader fetches point-in-time order book and funding data over
// REST. It runs independently of the websocket stream and is used to seed the
// diff sequence and answer on-demand funding queries. It has no retry policy
// of its own; failures propagate to the caller.
type Okx_Snapshot_Reader struct {
	config     *appconfig.Config
	rest       transport.RESTClient
	translator symbols.Translator
	nonce      *nonce.Sequencer
	log        *logger.Log
}

// Okx_Snapshot_NewReader creates a new snapshot reader. The nonce sequencer
// must be shared with the stream reader so snapshot and diff update ids form
// one strictly increasing sequence.
func Okx_Snapshot_NewReader(cfg *appconfig.Config, rest transport.RESTClient, translator symbols.Translator, seq *nonce.Sequencer) *Okx_Snapshot_Reader {
	return &Okx_Snapshot_Reader{
		config:     cfg,
		rest:       rest,
		translator: translator,
		nonce:      seq,
		log:        logger.GetLogger(),
	}
}

func (r *Okx_Snapshot_Reader) restURL(path string) string {
	base := r.config.Source.Okx.RestURL
	if base == "" {
		base = DefaultRestURL
	}
	return base + path
}

// FetchOrderBook requests depth-100 book data for the pair and returns one
// Snapshot event with an update id drawn from the shared nonce sequencer.
func (r *Okx_Snapshot_Reader) FetchOrderBook(ctx context.Context, pair string) (models.OrderBookEvent, error) {
	log := r.log.WithComponent("okx_snapshot_reader").WithFields(logger.Fields{"pair": pair, "operation": "fetch_orderbook"})

	instID, err := r.translator.ToNative(pair)
	if err != nil {
		return models.OrderBookEvent{}, err
	}

	body, err := r.rest.Execute(ctx, transport.RESTRequest{
		URL:     r.restURL(orderBookPath),
		Method:  http.MethodGet,
		Params:  map[string]string{"instId": instID, "sz": snapshotDepth},
		LimitID: orderBookLimitID,
	})
	if err != nil {
		return models.OrderBookEvent{}, err
	}

	var resp models.OkxOrderBookSnapshotResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.OrderBookEvent{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Data) == 0 {
		return models.OrderBookEvent{}, fmt.Errorf("%w: empty data array", ErrMalformedResponse)
	}

	book := resp.Data[0]
	tsMs, err := strconv.ParseFloat(book.Ts, 64)
	if err != nil {
		return models.OrderBookEvent{}, fmt.Errorf("%w: non-numeric ts %q", ErrMalformedResponse, book.Ts)
	}
	timestamp := tsMs / 1e3

	bids, err := parseLevels(book.Bids)
	if err != nil {
		return models.OrderBookEvent{}, err
	}
	asks, err := parseLevels(book.Asks)
	if err != nil {
		return models.OrderBookEvent{}, err
	}

	event := models.OrderBookEvent{
		Type:        models.OrderBookEventSnapshot,
		TradingPair: pair,
		UpdateID:    r.nonce.Next(timestamp),
		Bids:        bids,
		Asks:        asks,
		Timestamp:   timestamp,
	}

	logger.IncrementSnapshotRead(len(body))
	logger.LogDataFlowEntry(log, "okx_api", "caller", len(bids)+len(asks), "orderbook_levels")
	return event, nil
}

// parseLevels converts wire rows into price levels. The first two fields of
// a row are price and size; anything beyond is ignored.
func parseLevels(rows [][]string) ([]models.PriceLevel, error) {
	levels := make([]models.PriceLevel, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: price level row has %d fields", ErrMalformedResponse, len(row))
		}
		price, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric price %q", ErrMalformedResponse, row[0])
		}
		size, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric size %q", ErrMalformedResponse, row[1])
		}
		levels = append(levels, models.PriceLevel{Price: price, Size: size})
	}
	return levels, nil
}

// FetchFundingInfo issues the index-price, mark-price and funding-rate
// requests concurrently and combines their first-row results into one
// complete FundingInfo. If any request fails the whole operation fails with
// that error and no partial result is returned.
func (r *Okx_Snapshot_Reader) FetchFundingInfo(ctx context.Context, pair string) (models.FundingInfo, error) {
	instID, err := r.translator.ToNative(pair)
	if err != nil {
		return models.FundingInfo{}, err
	}

	var idxBody, markBody, fundBody json.RawMessage
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		idxBody, err = r.rest.Execute(gctx, transport.RESTRequest{
			URL:     r.restURL(indexTickersPath),
			Method:  http.MethodGet,
			Params:  map[string]string{"instId": instID},
			LimitID: indexTickersLimitID,
		})
		return err
	})
	g.Go(func() error {
		var err error
		markBody, err = r.rest.Execute(gctx, transport.RESTRequest{
			URL:          r.restURL(markPricePath),
			Method:       http.MethodGet,
			Params:       map[string]string{"instId": instID, "instType": instTypeSwap},
			LimitID:      markPriceLimitID,
			AuthRequired: true,
		})
		return err
	})
	g.Go(func() error {
		var err error
		fundBody, err = r.rest.Execute(gctx, transport.RESTRequest{
			URL:     r.restURL(fundingRatePath),
			Method:  http.MethodGet,
			Params:  map[string]string{"instId": instID},
			LimitID: fundingRateLimitID,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return models.FundingInfo{}, err
	}

	var idxResp models.OkxIndexTickerResp
	if err := json.Unmarshal(idxBody, &idxResp); err != nil || len(idxResp.Data) == 0 {
		return models.FundingInfo{}, fmt.Errorf("%w: index ticker", ErrMalformedResponse)
	}
	indexPrice, err := decimal.NewFromString(idxResp.Data[0].IdxPx)
	if err != nil {
		return models.FundingInfo{}, fmt.Errorf("%w: non-numeric idxPx %q", ErrMalformedResponse, idxResp.Data[0].IdxPx)
	}

	var markResp models.OkxMarkPriceResp
	if err := json.Unmarshal(markBody, &markResp); err != nil || len(markResp.Data) == 0 {
		return models.FundingInfo{}, fmt.Errorf("%w: mark price", ErrMalformedResponse)
	}
	markPrice, err := decimal.NewFromString(markResp.Data[0].MarkPx)
	if err != nil {
		return models.FundingInfo{}, fmt.Errorf("%w: non-numeric markPx %q", ErrMalformedResponse, markResp.Data[0].MarkPx)
	}

	var fundResp models.OkxFundingRateResp
	if err := json.Unmarshal(fundBody, &fundResp); err != nil || len(fundResp.Data) == 0 {
		return models.FundingInfo{}, fmt.Errorf("%w: funding rate", ErrMalformedResponse)
	}
	nextFundingTime, err := strconv.ParseInt(fundResp.Data[0].NextFundingTime, 10, 64)
	if err != nil {
		return models.FundingInfo{}, fmt.Errorf("%w: non-numeric nextFundingTime %q", ErrMalformedResponse, fundResp.Data[0].NextFundingTime)
	}
	rate, err := decimal.NewFromString(fundResp.Data[0].NextFundingRate)
	if err != nil {
		return models.FundingInfo{}, fmt.Errorf("%w: non-numeric nextFundingRate %q", ErrMalformedResponse, fundResp.Data[0].NextFundingRate)
	}

	return models.FundingInfo{
		TradingPair:             pair,
		IndexPrice:              indexPrice,
		MarkPrice:               markPrice,
		NextFundingUTCTimestamp: nextFundingTime,
		Rate:                    rate,
	}, nil
}
