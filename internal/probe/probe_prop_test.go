//go:build property

package probe

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// The parsed latency equals the number following time= in the output.
func TestTimeTokenRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("time=<n> ms yields n", prop.ForAll(
		func(value float64, seq int) bool {
			token := strconv.FormatFloat(value, 'f', 3, 64)
			output := fmt.Sprintf("64 bytes from 192.0.2.1: icmp_seq=%d ttl=57 time=%s ms\n", seq, token)

			got, err := TimeTokenParser{}.ParseLatency([]byte(output))
			if err != nil {
				return false
			}
			want, _ := strconv.ParseFloat(token, 64)
			return got == want
		},
		gen.Float64Range(0, 10000),
		gen.IntRange(0, 65535),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Output without a time token never produces a latency.
func TestNoTokenNoLatencyProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("alphanumeric output is unparsable", prop.ForAll(
		func(output string) bool {
			_, err := TimeTokenParser{}.ParseLatency([]byte(output))
			return errors.Is(err, ErrNoLatency)
		},
		gen.AlphaNumString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Failure results always carry a kind and a message, never a latency.
func TestFailedResultShapeProperty(t *testing.T) {
	kinds := []Kind{KindTimeout, KindExternalToolError, KindUnparsableOutput, KindHTTPError, KindNetworkError, KindResolveError}
	properties := gopter.NewProperties(nil)

	properties.Property("failed results are well formed", prop.ForAll(
		func(idx int, msg string) bool {
			result := failed(kinds[idx], "%s", msg+"!")
			return !result.Success && result.LatencyMS == 0 && KindOf(result.Err) == kinds[idx] && result.Err.Error() != ""
		},
		gen.IntRange(0, len(kinds)-1),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
