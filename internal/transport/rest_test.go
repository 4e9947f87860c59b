package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClientExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("instId") != "BTC-USDT-SWAP" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if ua := r.Header.Get("User-Agent"); ua != defaultUserAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Write([]byte(`{"code":"0","data":[]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, 100, 10, "", nil)
	body, err := client.Execute(context.Background(), RESTRequest{
		URL:     srv.URL + "/api/v5/market/books",
		Method:  http.MethodGet,
		Params:  map[string]string{"instId": "BTC-USDT-SWAP"},
		LimitID: "books",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(body) != `{"code":"0","data":[]}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHTTPClientStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewHTTPClient(time.Second, 100, 10, "", nil)
	_, err := client.Execute(context.Background(), RESTRequest{URL: srv.URL, LimitID: "x"})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *TransportError, got %T", err)
	}
}

func TestHTTPClientAuthWithoutSigner(t *testing.T) {
	client := NewHTTPClient(time.Second, 100, 10, "", nil)
	_, err := client.Execute(context.Background(), RESTRequest{
		URL:          "http://localhost:1/api",
		AuthRequired: true,
		LimitID:      "x",
	})
	if err == nil {
		t.Fatal("expected error for authenticated request without signer")
	}
}

func TestHTTPClientSignerApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("OK-ACCESS-KEY") != "test-key" {
			t.Errorf("signer header missing")
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	sign := func(req *http.Request) error {
		req.Header.Set("OK-ACCESS-KEY", "test-key")
		return nil
	}
	client := NewHTTPClient(time.Second, 100, 10, "", sign)
	if _, err := client.Execute(context.Background(), RESTRequest{URL: srv.URL, AuthRequired: true, LimitID: "x"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestHTTPClientCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(time.Second, 100, 10, "", nil)
	_, err := client.Execute(ctx, RESTRequest{URL: "http://localhost:1/api", LimitID: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
