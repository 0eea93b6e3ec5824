package probe

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// waitDelay caps how long Wait blocks on output pipes after the process is killed.
const waitDelay = 500 * time.Millisecond

const replyWaitMargin = time.Second

// ExternalPinger invokes the system ping command and parses its output.
type ExternalPinger struct {
	command string
	timeout time.Duration
	parser  OutputParser
}

// NewExternalPinger returns a ping implementation that shells out to ping.
func NewExternalPinger() *ExternalPinger {
	return &ExternalPinger{
		command: "ping",
		timeout: DefaultTimeout,
		parser:  TimeTokenParser{},
	}
}

// WithParser returns a copy of p that reads latency with parser.
func (p *ExternalPinger) WithParser(parser OutputParser) *ExternalPinger {
	clone := *p
	clone.parser = parser
	return &clone
}

// Measure runs ping once against target. The process is killed when the timeout passes.
func (p *ExternalPinger) Measure(ctx context.Context, target string) Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.command, pingArgs(target, p.timeout)...)
	cmd.WaitDelay = waitDelay
	out, err := cmd.CombinedOutput()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if deadlineExceeded(ctx, err) {
			return failed(KindTimeout, "ping did not finish within %s", p.timeout)
		}
		return failed(KindTimeout, "ping canceled: %v", ctxErr)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if line := firstLine(out); line != "" {
				return failed(KindExternalToolError, "%s", line)
			}
			return failed(KindExternalToolError, "ping failed: %v", exitErr)
		}
		return failed(KindExternalToolError, "run ping: %v", err)
	}

	latency, err := p.parser.ParseLatency(out)
	if err != nil {
		return failed(KindUnparsableOutput, "%v", err)
	}
	return succeeded(latency)
}

// pingArgs gives ping a reply wait one second shorter than timeout, so an unanswered echo
// ends with ping's own exit rather than racing the kill.
func pingArgs(addr string, timeout time.Duration) []string {
	wait := timeout - replyWaitMargin
	switch runtime.GOOS {
	case "darwin":
		waitMs := max(100, int(wait.Milliseconds()))
		return []string{"-n", "-c", "1", "-W", strconv.Itoa(waitMs), addr}
	default:
		waitSec := max(1, int(wait.Seconds()+0.5))
		return []string{"-n", "-c", "1", "-W", strconv.Itoa(waitSec), addr}
	}
}

func firstLine(output []byte) string {
	line, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(line)
}

