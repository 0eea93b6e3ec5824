package probe

import (
	"context"
	"net"
	"net/http"
	"time"
)

// HTTPProber times a single HEAD request. Latency covers DNS, connect, TLS and the
// wait for response headers.
type HTTPProber struct {
	timeout time.Duration
}

// NewHTTPProber returns a prober with the default timeout.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{timeout: DefaultTimeout}
}

// Measure sends HEAD target with a client that lives only for this call.
func (h *HTTPProber) Measure(ctx context.Context, target string) Result {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: h.timeout}).DialContext,
		TLSHandshakeTimeout: h.timeout,
		DisableKeepAlives:   true,
	}
	defer transport.CloseIdleConnections()
	client := &http.Client{Transport: transport}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return failed(KindNetworkError, "%v", err)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return failed(KindNetworkError, "%v", err)
	}
	defer resp.Body.Close()
	elapsed := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failed(KindHTTPError, "unexpected status %s", resp.Status)
	}
	return succeeded(float64(elapsed.Milliseconds()))
}
