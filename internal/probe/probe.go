package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTimeout bounds every measurement. It is not configurable.
const DefaultTimeout = 5 * time.Second

// Variant selects how latency is measured.
type Variant string

const (
	VariantICMP       Variant = "icmp"
	VariantHTTP       Variant = "http"
	VariantICMPNative Variant = "icmp-native"
	VariantDNS        Variant = "dns"
)

// Variants lists every supported variant in display order.
func Variants() []Variant {
	return []Variant{VariantICMP, VariantHTTP, VariantICMPNative, VariantDNS}
}

// ParseVariant converts user input into a Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants() {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown probe variant %q", s)
}

// Result is the outcome of a single measurement.
type Result struct {
	LatencyMS float64
	Success   bool
	Err       error
}

func succeeded(latencyMS float64) Result {
	return Result{LatencyMS: latencyMS, Success: true}
}

func failed(kind Kind, format string, args ...any) Result {
	return Result{Err: &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Prober performs exactly one measurement against a target.
type Prober interface {
	Measure(ctx context.Context, target string) Result
}

// Options carries the few knobs a prober needs beyond the target.
type Options struct {
	// Resolver is the host:port queried by the dns variant.
	Resolver string
}

// New builds the prober for a variant.
func New(variant Variant, opts Options) (Prober, error) {
	switch variant {
	case VariantICMP:
		return NewExternalPinger(), nil
	case VariantHTTP:
		return NewHTTPProber(), nil
	case VariantICMPNative:
		return NewFallbackPinger(NewICMPPinger(), NewExternalPinger()), nil
	case VariantDNS:
		return NewDNSProber(opts.Resolver), nil
	default:
		return nil, fmt.Errorf("unknown probe variant %q", variant)
	}
}

func deadlineExceeded(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
}
