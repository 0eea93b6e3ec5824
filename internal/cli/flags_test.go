package cli

import (
	"flag"
	"io"
	"testing"

	"github.com/doridoridoriand/pingtap/internal/probe"
)

func TestOptionalString(t *testing.T) {
	var s OptionalString
	if s.String() != "" {
		t.Fatalf("expected empty string for unset string")
	}
	if _, ok := s.Value(); ok {
		t.Fatalf("expected unset string to report false")
	}
	if s.Ptr() != nil {
		t.Fatalf("expected nil pointer for unset string")
	}
	if err := s.Set("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.String() != "hello" {
		t.Fatalf("expected string value to be hello, got %q", s.String())
	}
	if p := s.Ptr(); p == nil || *p != "hello" {
		t.Fatalf("expected pointer to hello, got %v", p)
	}
}

func TestOptionalStringEmptyValueCountsAsSet(t *testing.T) {
	var s OptionalString
	if err := s.Set(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := s.Value(); !ok || v != "" {
		t.Fatalf("expected explicitly empty value to be set, got %q (ok=%v)", v, ok)
	}
}

func TestOptionalBool(t *testing.T) {
	var b OptionalBool
	if b.String() != "" || b.Ptr() != nil {
		t.Fatalf("expected unset bool")
	}
	if !b.IsBoolFlag() {
		t.Fatalf("expected bool flag semantics")
	}
	if err := b.Set("true"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, ok := b.Value(); !ok || !v {
		t.Fatalf("expected true, got %v (ok=%v)", v, ok)
	}
	if b.String() != "true" {
		t.Fatalf("expected \"true\", got %q", b.String())
	}
}

func TestOptionalBoolInvalid(t *testing.T) {
	var b OptionalBool
	if err := b.Set("maybe"); err == nil {
		t.Fatalf("expected error for invalid bool")
	}
	if _, ok := b.Value(); ok {
		t.Fatalf("expected invalid bool to remain unset")
	}
}

func TestOptionalVariant(t *testing.T) {
	var v OptionalVariant
	if v.String() != "" || v.Ptr() != nil {
		t.Fatalf("expected unset variant")
	}
	if err := v.Set("HTTP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := v.Value(); !ok || got != probe.VariantHTTP {
		t.Fatalf("expected http, got %q (ok=%v)", got, ok)
	}
	if p := v.Ptr(); p == nil || *p != probe.VariantHTTP {
		t.Fatalf("expected pointer to http")
	}
	if err := v.Set("smoke-signal"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestFlagSetIntegration(t *testing.T) {
	fs := flag.NewFlagSet("pingtap", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		noUI    OptionalBool
		variant OptionalVariant
		logDir  OptionalString
	)
	fs.Var(&noUI, "no-ui", "")
	fs.Var(&variant, "variant", "")
	fs.Var(&logDir, "log-dir", "")

	if err := fs.Parse([]string{"--no-ui", "--variant", "dns", "8.8.8.8"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, ok := noUI.Value(); !ok || !v {
		t.Fatalf("expected --no-ui without value to mean true")
	}
	if v, _ := variant.Value(); v != probe.VariantDNS {
		t.Fatalf("expected dns variant, got %q", v)
	}
	if _, ok := logDir.Value(); ok {
		t.Fatalf("expected log-dir unset")
	}
	if fs.Arg(0) != "8.8.8.8" {
		t.Fatalf("expected positional target, got %v", fs.Args())
	}
}
