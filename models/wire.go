package models

import "encoding/json"

/////////////////////////////////////////////////////////////////////////////
////////////////////////////////// OKX //////////////////////////////////////
/////////////////////////////////////////////////////////////////////////////

// SubscribeArg is one channel/instrument entry of a subscribe request.
type SubscribeArg struct {
	Channel string `json:"channel"`
	InstID  string `json:"instId"`
}

// SubscribeRequest mirrors the OKX websocket subscribe operation. One request
// is sent per channel kind, carrying one arg per instrument.
type SubscribeRequest struct {
	Op   string         `json:"op"`
	Args []SubscribeArg `json:"args"`
}

// OkxBookMsg represents an order book update from the websocket. Rows in Bids
// and Asks carry price and size in their first two fields; any further fields
// are ignored.
type OkxBookMsg struct {
	Arg struct {
		Channel string `json:"channel"`
		InstID  string `json:"instId"`
	} `json:"arg"`
	Action string `json:"action"`
	Data   []struct {
		Ts   string     `json:"ts"`
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	} `json:"data"`
}

// OkxTradeMsg represents a batch of trade prints from the websocket.
type OkxTradeMsg struct {
	Data []struct {
		InstID  string `json:"instId"`
		TradeID string `json:"tradeId"`
		Side    string `json:"side"`
		Sz      string `json:"sz"`
		Px      string `json:"px"`
		Ts      string `json:"ts"`
	} `json:"data"`
}

// OkxFundingMsg represents an instruments-channel delta. Update entries are
// sparse; pointers distinguish absent fields from zero values. Numeric fields
// may arrive as either JSON numbers or strings, hence json.Number.
type OkxFundingMsg struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	Data  struct {
		Update []OkxFundingEntry `json:"update"`
	} `json:"data"`
}

// OkxFundingEntry is one sparse funding update record.
type OkxFundingEntry struct {
	IndexPrice             *json.Number `json:"index_price,omitempty"`
	MarkPrice              *json.Number `json:"mark_price,omitempty"`
	NextFundingTime        *string      `json:"next_funding_time,omitempty"`
	PredictedFundingRateE6 *json.Number `json:"predicted_funding_rate_e6,omitempty"`
}

// OkxOrderBookSnapshotResp mirrors the REST depth endpoint response.
type OkxOrderBookSnapshotResp struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Ts   string     `json:"ts"`
		Bids [][]string `json:"bids"`
		Asks [][]string `json:"asks"`
	} `json:"data"`
}

// OkxIndexTickerResp mirrors the REST index-tickers endpoint response.
type OkxIndexTickerResp struct {
	Code string `json:"code"`
	Data []struct {
		InstID string `json:"instId"`
		IdxPx  string `json:"idxPx"`
	} `json:"data"`
}

// OkxMarkPriceResp mirrors the REST mark-price endpoint response.
type OkxMarkPriceResp struct {
	Code string `json:"code"`
	Data []struct {
		InstID string `json:"instId"`
		MarkPx string `json:"markPx"`
	} `json:"data"`
}

// OkxFundingRateResp mirrors the REST funding-rate endpoint response.
type OkxFundingRateResp struct {
	Code string `json:"code"`
	Data []struct {
		InstID          string `json:"instId"`
		FundingRate     string `json:"fundingRate"`
		NextFundingRate string `json:"nextFundingRate"`
		NextFundingTime string `json:"nextFundingTime"`
	} `json:"data"`
}
