package models

import "github.com/shopspring/decimal"

/////////////////////////////////////////////////////////////////////////////
///////////////////////////////// GENERAL ///////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// ChannelKind classifies an inbound websocket message into one of the three
// canonical data channels. Anything that cannot be routed (acks, pings,
// unsubscribed channels) is Unrouted.
type ChannelKind int

const (
	ChannelKindUnrouted ChannelKind = iota
	ChannelKindTrade
	ChannelKindDiff
	ChannelKindFunding
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelKindTrade:
		return "trade"
	case ChannelKindDiff:
		return "diff"
	case ChannelKindFunding:
		return "funding"
	default:
		return "unrouted"
	}
}

// TradeSide is the numeric trade-type tag used on outward trade events.
type TradeSide int

const (
	TradeSideBuy  TradeSide = 1
	TradeSideSell TradeSide = 2
)

// PriceLevel is a single (price, size) pair. Levels appear in ordered lists,
// bids descending and asks ascending, exactly as received from the exchange.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBookEventType distinguishes REST snapshots from websocket diffs.
type OrderBookEventType int

const (
	OrderBookEventSnapshot OrderBookEventType = 1
	OrderBookEventDiff     OrderBookEventType = 2
)

func (t OrderBookEventType) String() string {
	if t == OrderBookEventSnapshot {
		return "snapshot"
	}
	return "diff"
}

// OrderBookEvent carries one book snapshot or delta. UpdateID is assigned at
// ingestion time by the nonce sequencer and is strictly increasing across
// both snapshots and diffs. Timestamp is epoch seconds with fraction.
type OrderBookEvent struct {
	Type        OrderBookEventType `json:"type"`
	TradingPair string             `json:"trading_pair"`
	UpdateID    uint64             `json:"update_id"`
	Bids        []PriceLevel       `json:"bids"`
	Asks        []PriceLevel       `json:"asks"`
	Timestamp   float64            `json:"timestamp"`
}

// TradeEvent is one trade print. A single wire message may carry many prints;
// each becomes its own event. Timestamp is epoch seconds with fraction.
type TradeEvent struct {
	TradingPair string    `json:"trading_pair"`
	TradeID     string    `json:"trade_id"`
	Side        TradeSide `json:"side"`
	Amount      float64   `json:"amount"`
	Price       float64   `json:"price"`
	Timestamp   float64   `json:"timestamp"`
}

// FundingInfo is the complete funding bundle for an instrument, assembled
// from the three REST endpoints.
type FundingInfo struct {
	TradingPair             string          `json:"trading_pair"`
	IndexPrice              decimal.Decimal `json:"index_price"`
	MarkPrice               decimal.Decimal `json:"mark_price"`
	NextFundingUTCTimestamp int64           `json:"next_funding_utc_timestamp"`
	Rate                    decimal.Decimal `json:"rate"`
}

// FundingInfoUpdate is a sparse funding delta from the instruments channel.
// A nil field means the exchange did not report it in this update and the
// previously known value still stands; consumers must never treat nil as
// zero.
type FundingInfoUpdate struct {
	TradingPair             string           `json:"trading_pair"`
	IndexPrice              *decimal.Decimal `json:"index_price,omitempty"`
	MarkPrice               *decimal.Decimal `json:"mark_price,omitempty"`
	NextFundingUTCTimestamp *int64           `json:"next_funding_utc_timestamp,omitempty"`
	Rate                    *decimal.Decimal `json:"rate,omitempty"`
}
