package symbols

import "testing"

func TestStaticTranslatorRoundTrip(t *testing.T) {
	tr := NewStaticTranslator(map[string]string{
		"BTC-USDT": "BTC-USDT-SWAP",
		"ETH-USDT": "ETH-USDT-SWAP",
	})

	instID, err := tr.ToNative("BTC-USDT")
	if err != nil {
		t.Fatalf("ToNative: %v", err)
	}
	if instID != "BTC-USDT-SWAP" {
		t.Fatalf("ToNative = %q", instID)
	}

	pair, err := tr.ToCanonical("ETH-USDT-SWAP")
	if err != nil {
		t.Fatalf("ToCanonical: %v", err)
	}
	if pair != "ETH-USDT" {
		t.Fatalf("ToCanonical = %q", pair)
	}
}

func TestStaticTranslatorUnknown(t *testing.T) {
	tr := NewStaticTranslator(map[string]string{"BTC-USDT": "BTC-USDT-SWAP"})
	if _, err := tr.ToNative("DOGE-USDT"); err == nil {
		t.Fatal("expected error for unknown pair")
	}
	if _, err := tr.ToCanonical("DOGE-USDT-SWAP"); err == nil {
		t.Fatal("expected error for unknown instrument")
	}
}
