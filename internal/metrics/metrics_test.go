package metrics

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doridoridoriand/pingtap/internal/probe"
	"github.com/doridoridoriand/pingtap/internal/session"
)

type fakeSource struct {
	view session.View
}

func (f fakeSource) Snapshot() session.View {
	return f.view
}

func sampleView() session.View {
	return session.View{
		Variant: probe.VariantICMP,
		Busy:    true,
		Entries: []session.Entry{
			{Target: "bad.example", Result: probe.Result{Err: &probe.Error{Kind: probe.KindTimeout, Message: "timed out"}}},
			{Target: "quote\"d", Result: probe.Result{Success: true, LatencyMS: 14.2}},
			{Target: "old.example", Result: probe.Result{Success: true, LatencyMS: 30}},
			{Target: "x", Result: probe.Result{Err: &probe.Error{Kind: probe.KindUnparsableOutput, Message: "?"}}},
		},
	}
}

func TestWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	writer := bufio.NewWriter(&buf)
	writeMetrics(writer, sampleView())
	_ = writer.Flush()

	got := buf.String()
	expected := strings.Join([]string{
		`pingtap_probes_total{variant="icmp",outcome="success"} 2`,
		`pingtap_probes_total{variant="icmp",outcome="failure"} 2`,
		`pingtap_probe_failures_total{kind="timeout"} 1`,
		`pingtap_probe_failures_total{kind="external_tool_error"} 0`,
		`pingtap_probe_failures_total{kind="unparsable_output"} 1`,
		`pingtap_probe_failures_total{kind="http_error"} 0`,
		`pingtap_probe_failures_total{kind="network_error"} 0`,
		`pingtap_probe_failures_total{kind="resolve_error"} 0`,
		`pingtap_last_latency_ms{target="quote\"d"} 14.2`,
		`pingtap_busy 1`,
		"",
	}, "\n")
	if got != expected {
		t.Fatalf("unexpected metrics:\n%s", got)
	}
}

func TestWriteMetricsEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	writer := bufio.NewWriter(&buf)
	writeMetrics(writer, session.View{Variant: probe.VariantHTTP})
	_ = writer.Flush()

	got := buf.String()
	if strings.Contains(got, "pingtap_last_latency_ms") {
		t.Fatalf("expected no latency gauge without successes:\n%s", got)
	}
	if !strings.Contains(got, "pingtap_busy 0\n") {
		t.Fatalf("expected idle gauge:\n%s", got)
	}
}

func TestEscapeLabel(t *testing.T) {
	if got := escapeLabel("a\\b\"c\nd"); got != `a\\b\"c\nd` {
		t.Fatalf("unexpected escape: %q", got)
	}
}

func TestHandler(t *testing.T) {
	srv := httptest.NewServer(NewServer(fakeSource{view: sampleView()}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(string(body), "pingtap_busy 1") {
		t.Fatalf("unexpected body:\n%s", body)
	}

	resp, err = http.Post(srv.URL+"/metrics", "text/plain", nil)
	if err != nil {
		t.Fatalf("post metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", resp.StatusCode)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Serve(ctx, addr, fakeSource{}) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}
