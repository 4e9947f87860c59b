package okx

import "time"

// Default endpoints for the OKX perpetual-swap public API. Both are
// overridable through configuration.
const (
	DefaultRestURL = "https://www.okx.com"
	DefaultWsURL   = "wss://ws.okx.com:8443/ws/v5/public"
)

// REST paths consumed by the snapshot fetcher.
const (
	orderBookPath    = "/api/v5/market/books"
	indexTickersPath = "/api/v5/market/index-tickers"
	markPricePath    = "/api/v5/public/mark-price"
	fundingRatePath  = "/api/v5/public/funding-rate"
)

// Rate-limit bucket identifiers, one per REST endpoint.
const (
	orderBookLimitID    = "market/books"
	indexTickersLimitID = "market/index-tickers"
	markPriceLimitID    = "public/mark-price"
	fundingRateLimitID  = "public/funding-rate"
)

// Websocket channel names. Subscribe requests and the classifier use the
// same closed set.
const (
	wsTradesChannel      = "trades"
	wsOrderBookChannel   = "books"
	wsInstrumentsChannel = "instruments"
)

const (
	snapshotDepth = "100"
	instTypeSwap  = "SWAP"

	// receive window before a liveness probe is sent
	defaultIdleTimeout = 30 * time.Second
	// fixed delay between reconnect attempts
	defaultBackoff = 5 * time.Second

	defaultConnectTimeout = 10 * time.Second
)
