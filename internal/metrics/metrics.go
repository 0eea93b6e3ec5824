package metrics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/doridoridoriand/pingtap/internal/probe"
	"github.com/doridoridoriand/pingtap/internal/session"
)

var failureKinds = []probe.Kind{
	probe.KindTimeout,
	probe.KindExternalToolError,
	probe.KindUnparsableOutput,
	probe.KindHTTPError,
	probe.KindNetworkError,
	probe.KindResolveError,
}

// Source provides the session state to export.
type Source interface {
	Snapshot() session.View
}

// Server exposes Prometheus-style metrics based on the session history.
type Server struct {
	source Source
}

// NewServer constructs a metrics server.
func NewServer(source Source) *Server {
	return &Server{source: source}
}

// Handler returns the router serving /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		bw := bufio.NewWriter(w)
		defer bw.Flush()
		writeMetrics(bw, s.source.Snapshot())
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

func writeMetrics(w *bufio.Writer, view session.View) {
	variant := escapeLabel(string(view.Variant))

	var ok, failed int
	failures := make(map[probe.Kind]int)
	for _, e := range view.Entries {
		if e.Result.Success {
			ok++
			continue
		}
		failed++
		failures[probe.KindOf(e.Result.Err)]++
	}

	fmt.Fprintf(w, "pingtap_probes_total{variant=\"%s\",outcome=\"success\"} %d\n", variant, ok)
	fmt.Fprintf(w, "pingtap_probes_total{variant=\"%s\",outcome=\"failure\"} %d\n", variant, failed)
	for _, kind := range failureKinds {
		fmt.Fprintf(w, "pingtap_probe_failures_total{kind=\"%s\"} %d\n", kind, failures[kind])
	}

	for _, e := range view.Entries {
		if e.Result.Success {
			fmt.Fprintf(w, "pingtap_last_latency_ms{target=\"%s\"} %s\n", escapeLabel(e.Target), session.FormatLatency(e.Result.LatencyMS))
			break
		}
	}

	busy := 0
	if view.Busy {
		busy = 1
	}
	fmt.Fprintf(w, "pingtap_busy %d\n", busy)
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "\n", "\\n")
	return value
}

// Serve starts an HTTP server and blocks until context cancellation.
func Serve(ctx context.Context, addr string, source Source) error {
	server := &http.Server{
		Addr:    addr,
		Handler: NewServer(source).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Shutdown(context.Background())
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return context.Canceled
		}
		return err
	}
}
