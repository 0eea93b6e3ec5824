package probe

import (
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
)

// FallbackPinger delegates to primary, then secondary when permission errors occur.
type FallbackPinger struct {
	primary   Prober
	secondary Prober
}

// NewFallbackPinger wraps primary with a secondary fallback.
func NewFallbackPinger(primary, secondary Prober) *FallbackPinger {
	return &FallbackPinger{primary: primary, secondary: secondary}
}

// Measure uses the primary prober and falls back on permission-related errors.
func (p *FallbackPinger) Measure(ctx context.Context, target string) Result {
	result := p.primary.Measure(ctx, target)
	if result.Success || !isPermissionError(result.Err) {
		return result
	}
	return p.secondary.Measure(ctx, target)
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "permission denied")
}
