package channel

import (
	"context"
	"testing"
	"time"

	"okxflow/models"
)

func TestQueueOrdering(t *testing.T) {
	q := NewQueue[int]()
	for i := 0; i < 100; i++ {
		q.Push(i)
	}
	if q.Len() != 100 {
		t.Fatalf("Len = %d, want 100", q.Len())
	}
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		got, err := q.Pop(ctx)
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != i {
			t.Fatalf("Pop = %d, want %d", got, i)
		}
	}
}

func TestQueuePopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string]()
	done := make(chan string, 1)
	go func() {
		item, err := q.Pop(context.Background())
		if err != nil {
			return
		}
		done <- item
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push("hello")

	select {
	case item := <-done:
		if item != "hello" {
			t.Fatalf("Pop = %q", item)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up after Push")
	}
}

func TestQueuePopCancellation(t *testing.T) {
	q := NewQueue[int]()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Pop(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewChannels(t *testing.T) {
	c := NewChannels()
	if c.Trade == nil || c.Diff == nil || c.Funding == nil {
		t.Fatal("expected non-nil queues")
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.StartMetricsReporting(ctx)

	c.Trade.Push(models.TradeEvent{TradingPair: "BTC-USDT"})
	if c.Trade.Pushed() != 1 {
		t.Fatalf("Pushed = %d, want 1", c.Trade.Pushed())
	}

	cancel()
	c.Close()
}
