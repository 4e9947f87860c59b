// Package transport provides the REST request/response and websocket
// send/receive facilities consumed by the readers. Both are exposed as small
// interfaces so tests can substitute fakes; the default implementations wrap
// net/http and gorilla/websocket.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"okxflow/logger"
)

const defaultUserAgent = "okxflow/1.0"

// RESTRequest describes one REST call. LimitID selects the client-side rate
// limiter bucket for the endpoint.
type RESTRequest struct {
	URL          string
	Method       string
	Params       map[string]string
	LimitID      string
	AuthRequired bool
}

// RESTClient executes REST requests against the exchange.
type RESTClient interface {
	Execute(ctx context.Context, req RESTRequest) (json.RawMessage, error)
}

// Signer attaches authentication headers to a request. Credential handling
// and signature algorithms live outside this core.
type Signer func(req *http.Request) error

// HTTPClient is the default RESTClient. Requests sharing a LimitID share a
// token bucket; unknown LimitIDs fall back to the default bucket.
type HTTPClient struct {
	httpClient     *http.Client
	sign           Signer
	log            *logger.Log
	mu             sync.Mutex
	limiters       map[string]*rate.Limiter
	limitPerSecond float64
	limitBurst     int
}

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds an HTTPClient. localIP optionally pins the outbound
// interface; sign may be nil for public-only use.
func NewHTTPClient(timeout time.Duration, requestsPerSecond float64, burst int, localIP string, sign Signer) *HTTPClient {
	base := &http.Transport{}
	if localIP != "" {
		if ip := net.ParseIP(localIP); ip != nil {
			dialer := &net.Dialer{LocalAddr: &net.TCPAddr{IP: ip}}
			base.DialContext = dialer.DialContext
		}
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &HTTPClient{
		httpClient:     &http.Client{Transport: userAgentTransport{agent: defaultUserAgent, base: base}, Timeout: timeout},
		sign:           sign,
		log:            logger.GetLogger(),
		limiters:       make(map[string]*rate.Limiter),
		limitPerSecond: requestsPerSecond,
		limitBurst:     burst,
	}
}

func (c *HTTPClient) limiter(limitID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[limitID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.limitPerSecond), c.limitBurst)
		c.limiters[limitID] = l
	}
	return l
}

// Execute performs the request and returns the raw response body. All
// failures other than context cancellation are reported as *TransportError.
func (c *HTTPClient) Execute(ctx context.Context, req RESTRequest) (json.RawMessage, error) {
	if err := c.limiter(req.LimitID).Wait(ctx); err != nil {
		return nil, err
	}

	target, err := url.Parse(req.URL)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	if len(req.Params) > 0 {
		query := target.Query()
		for k, v := range req.Params {
			query.Set(k, v)
		}
		target.RawQuery = query.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	if req.AuthRequired {
		if c.sign == nil {
			return nil, &TransportError{Op: "request", Err: fmt.Errorf("authenticated request without signer")}
		}
		if err := c.sign(httpReq); err != nil {
			return nil, &TransportError{Op: "request", Err: err}
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "response", Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &TransportError{Op: "response", Err: fmt.Errorf("http status %d: %s", resp.StatusCode, body)}
	}
	return body, nil
}
