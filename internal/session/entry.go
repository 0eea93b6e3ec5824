package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/doridoridoriand/pingtap/internal/probe"
)

const timeLayout = "15:04:05"

// Entry is one recorded measurement. CapturedAt is set when the result arrives.
type Entry struct {
	Target     string
	Variant    probe.Variant
	Result     probe.Result
	CapturedAt time.Time
}

// Line renders the entry the way the history list shows it.
func (e Entry) Line() string {
	stamp := e.CapturedAt.Format(timeLayout)
	if e.Result.Success {
		return fmt.Sprintf("%s • %s • %s ms", stamp, e.Target, FormatLatency(e.Result.LatencyMS))
	}
	return fmt.Sprintf("%s • %s • error: %s", stamp, e.Target, errorMessage(e.Result.Err))
}

// FormatLatency prints ms with as many decimals as it carries.
func FormatLatency(ms float64) string {
	return strconv.FormatFloat(ms, 'f', -1, 64)
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown failure"
	}
	return err.Error()
}
