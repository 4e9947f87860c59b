package okx

import (
	"context"
	"testing"
	"time"

	appconfig "okxflow/config"
	"okxflow/internal/channel"
	"okxflow/internal/nonce"
	"okxflow/internal/symbols"
	"okxflow/models"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Reader: appconfig.ReaderConfig{
			ConnectTimeout:     time.Second,
			IdleTimeout:        time.Second,
			Backoff:            5 * time.Second,
			SubscribeRateLimit: appconfig.RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10},
		},
		Source: appconfig.SourceConfig{
			Okx: appconfig.OkxSourceConfig{
				WsURL: "ws://example.invalid",
				Instruments: []appconfig.InstrumentConfig{
					{Pair: "BTC-USDT", InstID: "BTC-USDT-SWAP"},
					{Pair: "ETH-USDT", InstID: "ETH-USDT-SWAP"},
				},
			},
		},
	}
}

func newTestReader(t *testing.T) *Okx_Stream_Reader {
	t.Helper()
	cfg := testConfig()
	translator := symbols.NewStaticTranslator(cfg.Source.Okx.Pairs())
	return Okx_Stream_NewReader(cfg, channel.NewChannels(), translator, nil, nonce.NewSequencer())
}

func popDiff(t *testing.T, r *Okx_Stream_Reader) models.OrderBookEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ev, err := r.channels.Diff.Pop(ctx)
	if err != nil {
		t.Fatalf("pop diff: %v", err)
	}
	return ev
}

func TestHandleDiffProducesOneEvent(t *testing.T) {
	r := newTestReader(t)
	raw := `{"arg":{"channel":"books","instId":"BTC-USDT-SWAP"},"action":"update","data":[{"ts":"1000","bids":[["10","1"]],"asks":[["11","2"]]},{"ts":"2000","bids":[],"asks":[]}]}`
	if err := r.handleDiff([]byte(raw)); err != nil {
		t.Fatalf("handleDiff: %v", err)
	}

	ev := popDiff(t, r)
	if ev.Type != models.OrderBookEventDiff {
		t.Fatalf("type = %v, want diff", ev.Type)
	}
	if ev.TradingPair != "BTC-USDT" {
		t.Fatalf("trading pair = %q", ev.TradingPair)
	}
	if ev.Timestamp != 1.0 {
		t.Fatalf("timestamp = %v, want 1.0", ev.Timestamp)
	}
	if ev.UpdateID == 0 {
		t.Fatal("update id must be positive")
	}
	if len(ev.Bids) != 1 || ev.Bids[0] != (models.PriceLevel{Price: 10, Size: 1}) {
		t.Fatalf("bids = %+v", ev.Bids)
	}
	if len(ev.Asks) != 1 || ev.Asks[0] != (models.PriceLevel{Price: 11, Size: 2}) {
		t.Fatalf("asks = %+v", ev.Asks)
	}

	// Second data record must not produce a second event.
	if n := r.channels.Diff.Len(); n != 0 {
		t.Fatalf("diff queue length = %d, want 0", n)
	}
}

func TestHandleDiffIgnoresNonUpdateActions(t *testing.T) {
	r := newTestReader(t)
	raw := `{"arg":{"instId":"BTC-USDT-SWAP"},"action":"snapshot","data":[{"ts":"1000","bids":[],"asks":[]}]}`
	if err := r.handleDiff([]byte(raw)); err != nil {
		t.Fatalf("handleDiff: %v", err)
	}
	if n := r.channels.Diff.Len(); n != 0 {
		t.Fatalf("diff queue length = %d, want 0", n)
	}
}

func TestHandleDiffRejectsMalformed(t *testing.T) {
	r := newTestReader(t)
	cases := []string{
		`{"arg":{"instId":"BTC-USDT-SWAP"},"action":"update","data":[]}`,
		`{"arg":{"instId":"BTC-USDT-SWAP"},"action":"update","data":[{"ts":"abc","bids":[],"asks":[]}]}`,
		`{"arg":{"instId":"BTC-USDT-SWAP"},"action":"update","data":[{"ts":"1000","bids":[["x","1"]],"asks":[]}]}`,
		`{"arg":{"instId":"UNKNOWN"},"action":"update","data":[{"ts":"1000","bids":[],"asks":[]}]}`,
	}
	for _, raw := range cases {
		if err := r.handleDiff([]byte(raw)); err == nil {
			t.Fatalf("handleDiff(%s) expected error", raw)
		}
	}
	if n := r.channels.Diff.Len(); n != 0 {
		t.Fatalf("diff queue length = %d, want 0", n)
	}
}

func TestHandleTradesEmitsOneEventPerPrint(t *testing.T) {
	r := newTestReader(t)
	raw := `{"topic":"trades.BTC-USDT-SWAP","data":[
		{"instId":"BTC-USDT-SWAP","tradeId":"t1","side":"buy","sz":"0.5","px":"30000","ts":"1500"},
		{"instId":"ETH-USDT-SWAP","tradeId":"t2","side":"sell","sz":"2","px":"2000","ts":"2500"}
	]}`
	if err := r.handleTrades([]byte(raw)); err != nil {
		t.Fatalf("handleTrades: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, err := r.channels.Trade.Pop(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if first.TradingPair != "BTC-USDT" || first.TradeID != "t1" || first.Side != models.TradeSideBuy {
		t.Fatalf("first event = %+v", first)
	}
	if first.Amount != 0.5 || first.Price != 30000 || first.Timestamp != 1.5 {
		t.Fatalf("first event = %+v", first)
	}

	second, err := r.channels.Trade.Pop(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if second.TradingPair != "ETH-USDT" || second.TradeID != "t2" || second.Side != models.TradeSideSell {
		t.Fatalf("second event = %+v", second)
	}
	if second.Timestamp != 2.5 {
		t.Fatalf("second timestamp = %v", second.Timestamp)
	}
}

func TestHandleFundingSparseEntry(t *testing.T) {
	r := newTestReader(t)
	raw := `{"type":"delta","topic":"instruments.BTC-USDT-SWAP","data":{"update":[{"mark_price":"101.5"}]}}`
	if err := r.handleFunding([]byte(raw)); err != nil {
		t.Fatalf("handleFunding: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	upd, err := r.channels.Funding.Pop(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if upd.TradingPair != "BTC-USDT" {
		t.Fatalf("trading pair = %q", upd.TradingPair)
	}
	if upd.MarkPrice == nil || upd.MarkPrice.String() != "101.5" {
		t.Fatalf("mark price = %v", upd.MarkPrice)
	}
	if upd.IndexPrice != nil || upd.NextFundingUTCTimestamp != nil || upd.Rate != nil {
		t.Fatalf("unexpected fields set: %+v", upd)
	}
}

func TestHandleFundingFullEntry(t *testing.T) {
	r := newTestReader(t)
	raw := `{"type":"delta","topic":"instruments.BTC-USDT-SWAP","data":{"update":[
		{"index_price":100,"mark_price":"101","next_funding_time":"1700000000","predicted_funding_rate_e6":"125"}
	]}}`
	if err := r.handleFunding([]byte(raw)); err != nil {
		t.Fatalf("handleFunding: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	upd, err := r.channels.Funding.Pop(ctx)
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if upd.IndexPrice == nil || upd.IndexPrice.String() != "100" {
		t.Fatalf("index price = %v", upd.IndexPrice)
	}
	if upd.NextFundingUTCTimestamp == nil || *upd.NextFundingUTCTimestamp != 1700000000 {
		t.Fatalf("next funding time = %v", upd.NextFundingUTCTimestamp)
	}
	if upd.Rate == nil || upd.Rate.String() != "0.000125" {
		t.Fatalf("rate = %v", upd.Rate)
	}
}

func TestHandleFundingIgnoresNonDelta(t *testing.T) {
	r := newTestReader(t)
	raw := `{"type":"snapshot","topic":"instruments.BTC-USDT-SWAP","data":{"update":[{"mark_price":"101"}]}}`
	if err := r.handleFunding([]byte(raw)); err != nil {
		t.Fatalf("handleFunding: %v", err)
	}
	if n := r.channels.Funding.Len(); n != 0 {
		t.Fatalf("funding queue length = %d, want 0", n)
	}
}

func TestParseFundingTimeFormats(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1700000000", 1700000000},
		{"2023-11-14T22:13:20Z", 1700000000},
		{"2023-11-14 22:13:20", 1700000000},
	}
	for _, tc := range cases {
		got, err := parseFundingTime(tc.in)
		if err != nil {
			t.Fatalf("parseFundingTime(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseFundingTime(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
	if _, err := parseFundingTime("not a time"); err == nil {
		t.Fatal("expected error for unparseable input")
	}
}
