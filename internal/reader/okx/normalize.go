package okx

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"okxflow/logger"
	"okxflow/models"
)

// predictedRateScale converts the exchange's fixed-point e6 funding rate into
// a plain decimal rate.
const predictedRateScale = -6

func (r *Okx_Stream_Reader) handleDiff(raw []byte) error {
	var msg models.OkxBookMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// REST is the only snapshot source; anything but an incremental update
	// is ignored here.
	if msg.Action != "update" {
		return nil
	}
	if len(msg.Data) == 0 {
		return fmt.Errorf("%w: book update with empty data", ErrMalformedResponse)
	}

	pair, err := r.translator.ToCanonical(msg.Arg.InstID)
	if err != nil {
		return err
	}

	// The exchange sends one depth update per message; only the first data
	// record is meaningful.
	book := msg.Data[0]
	tsMs, err := strconv.ParseFloat(book.Ts, 64)
	if err != nil {
		return fmt.Errorf("%w: non-numeric ts %q", ErrMalformedResponse, book.Ts)
	}
	timestamp := tsMs / 1e3

	bids, err := parseLevels(book.Bids)
	if err != nil {
		return err
	}
	asks, err := parseLevels(book.Asks)
	if err != nil {
		return err
	}

	r.channels.Diff.Push(models.OrderBookEvent{
		Type:        models.OrderBookEventDiff,
		TradingPair: pair,
		UpdateID:    r.nonce.Next(timestamp),
		Bids:        bids,
		Asks:        asks,
		Timestamp:   timestamp,
	})
	logger.RecordChannelMessage("diff", len(raw))
	return nil
}

func (r *Okx_Stream_Reader) handleTrades(raw []byte) error {
	var msg models.OkxTradeMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	for _, fill := range msg.Data {
		pair, err := r.translator.ToCanonical(fill.InstID)
		if err != nil {
			return err
		}
		tsMs, err := strconv.ParseFloat(fill.Ts, 64)
		if err != nil {
			return fmt.Errorf("%w: non-numeric ts %q", ErrMalformedResponse, fill.Ts)
		}
		amount, err := strconv.ParseFloat(fill.Sz, 64)
		if err != nil {
			return fmt.Errorf("%w: non-numeric sz %q", ErrMalformedResponse, fill.Sz)
		}
		price, err := strconv.ParseFloat(fill.Px, 64)
		if err != nil {
			return fmt.Errorf("%w: non-numeric px %q", ErrMalformedResponse, fill.Px)
		}

		side := models.TradeSideSell
		if fill.Side == "buy" {
			side = models.TradeSideBuy
		}

		r.channels.Trade.Push(models.TradeEvent{
			TradingPair: pair,
			TradeID:     fill.TradeID,
			Side:        side,
			Amount:      amount,
			Price:       price,
			Timestamp:   tsMs / 1e3,
		})
	}
	logger.RecordChannelMessage("trade", len(raw))
	return nil
}

func (r *Okx_Stream_Reader) handleFunding(raw []byte) error {
	var msg models.OkxFundingMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// Full refreshes are not emitted on this channel; only deltas carry
	// funding changes.
	if msg.Type != "delta" {
		return nil
	}

	instID := channelInstrument(msg.Topic)
	pair, err := r.translator.ToCanonical(instID)
	if err != nil {
		return err
	}

	for _, entry := range msg.Data.Update {
		update := models.FundingInfoUpdate{TradingPair: pair}

		if entry.IndexPrice != nil {
			v, err := decimal.NewFromString(entry.IndexPrice.String())
			if err != nil {
				return fmt.Errorf("%w: non-numeric index_price %q", ErrMalformedResponse, entry.IndexPrice.String())
			}
			update.IndexPrice = &v
		}
		if entry.MarkPrice != nil {
			v, err := decimal.NewFromString(entry.MarkPrice.String())
			if err != nil {
				return fmt.Errorf("%w: non-numeric mark_price %q", ErrMalformedResponse, entry.MarkPrice.String())
			}
			update.MarkPrice = &v
		}
		if entry.NextFundingTime != nil {
			ts, err := parseFundingTime(*entry.NextFundingTime)
			if err != nil {
				return err
			}
			update.NextFundingUTCTimestamp = &ts
		}
		if entry.PredictedFundingRateE6 != nil {
			v, err := decimal.NewFromString(entry.PredictedFundingRateE6.String())
			if err != nil {
				return fmt.Errorf("%w: non-numeric predicted_funding_rate_e6 %q", ErrMalformedResponse, entry.PredictedFundingRateE6.String())
			}
			rate := v.Shift(predictedRateScale)
			update.Rate = &rate
		}

		r.channels.Funding.Push(update)
	}
	logger.RecordChannelMessage("funding", len(raw))
	return nil
}

// channelInstrument returns the last dot-or-slash segment of a topic, the
// instrument identifier.
func channelInstrument(topic string) string {
	idx := strings.LastIndexAny(topic, "./")
	if idx < 0 {
		return topic
	}
	return topic[idx+1:]
}

// parseFundingTime accepts the exchange's funding-time renditions: a plain
// epoch-seconds integer, RFC 3339, or a bare "2006-01-02 15:04:05" UTC
// timestamp.
func parseFundingTime(s string) (int64, error) {
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return epoch, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Unix(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t.Unix(), nil
	}
	return 0, fmt.Errorf("%w: unparseable next_funding_time %q", ErrMalformedResponse, s)
}
