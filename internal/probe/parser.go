package probe

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var timePattern = regexp.MustCompile(`time=([0-9.]+)\s*ms`)

// ErrNoLatency is returned by parsers when the output has no latency token.
var ErrNoLatency = errors.New("could not read response time from ping output")

// OutputParser extracts a latency in milliseconds from ping output.
type OutputParser interface {
	ParseLatency(output []byte) (float64, error)
}

// TimeTokenParser reads the first "time=<n> ms" token, as printed by iputils and BSD ping.
type TimeTokenParser struct{}

func (TimeTokenParser) ParseLatency(output []byte) (float64, error) {
	matches := timePattern.FindSubmatch(output)
	if len(matches) < 2 {
		return 0, ErrNoLatency
	}
	value, err := strconv.ParseFloat(string(matches[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad number %q", ErrNoLatency, matches[1])
	}
	return value, nil
}
