package logger

import (
	"sync/atomic"
	"testing"
)

func readStreamWarns() int64 {
	return atomic.LoadInt64(&warnsStream)
}

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	// Ensure environment variables do not override the provided level
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestConfigureInvalidFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("info", "xml", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestStreamCounters(t *testing.T) {
	before := readStreamWarns()
	log := Logger()
	log.WithComponent("okx_stream_reader").Warn("boom")
	if after := readStreamWarns(); after != before+1 {
		t.Fatalf("warns_stream = %d, want %d", after, before+1)
	}
}
