package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/doridoridoriand/pingtap/internal/log"
	"github.com/doridoridoriand/pingtap/internal/probe"
)

var (
	ErrEmptyTarget = errors.New("enter an address to ping")
	ErrBusy        = errors.New("a probe is already running")
)

// DefaultTarget is the initial input for a variant.
func DefaultTarget(variant probe.Variant) string {
	switch variant {
	case probe.VariantHTTP:
		return "https://example.com"
	case probe.VariantDNS:
		return "example.com"
	default:
		return "8.8.8.8"
	}
}

// View is a point-in-time copy of the session for rendering.
type View struct {
	Variant probe.Variant
	Input   string
	Busy    bool
	Pending string
	Notice  string
	Entries []Entry
}

// Session owns everything the user sees: the input, the busy flag and the result history.
// At most one probe is in flight at a time.
type Session struct {
	mu       sync.Mutex
	prober   probe.Prober
	variant  probe.Variant
	timeout  time.Duration
	logger   *log.Logger
	now      func() time.Time
	onChange func()

	input   string
	busy    bool
	pending string
	notice  string
	entries []Entry

	wg sync.WaitGroup
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger records every result with logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock replaces time.Now for capture timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session that measures with p.
func New(p probe.Prober, variant probe.Variant, opts ...Option) *Session {
	s := &Session{
		prober:  p,
		variant: variant,
		timeout: probe.DefaultTimeout,
		logger:  log.Nop(),
		now:     time.Now,
		input:   DefaultTarget(variant),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to run after every state change. fn must not block.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// SetInput replaces the input text.
func (s *Session) SetInput(value string) {
	s.mu.Lock()
	s.input = value
	s.notice = ""
	s.mu.Unlock()
	s.notify()
}

// AppendInput adds r to the end of the input.
func (s *Session) AppendInput(r rune) {
	s.mu.Lock()
	s.input += string(r)
	s.notice = ""
	s.mu.Unlock()
	s.notify()
}

// Backspace removes the last rune of the input.
func (s *Session) Backspace() {
	s.mu.Lock()
	if runes := []rune(s.input); len(runes) > 0 {
		s.input = string(runes[:len(runes)-1])
	}
	s.mu.Unlock()
	s.notify()
}

// Submit starts a probe for the trimmed input. The result is recorded when the returned
// task finishes.
func (s *Session) Submit(ctx context.Context) (*probe.Task, error) {
	s.mu.Lock()
	target := strings.TrimSpace(s.input)
	if target == "" {
		s.notice = ErrEmptyTarget.Error()
		s.mu.Unlock()
		s.notify()
		return nil, ErrEmptyTarget
	}
	if s.busy {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.busy = true
	s.pending = target
	s.notice = ""
	s.wg.Add(1)
	s.mu.Unlock()
	s.notify()

	task := probe.Start(ctx, s.prober, target, s.timeout)
	go s.record(task)
	return task, nil
}

func (s *Session) record(task *probe.Task) {
	defer s.wg.Done()
	<-task.Done()
	result, _ := task.Result()

	entry := Entry{
		Target:     task.Target,
		Variant:    s.variant,
		Result:     result,
		CapturedAt: s.now(),
	}

	s.mu.Lock()
	s.entries = append([]Entry{entry}, s.entries...)
	s.busy = false
	s.pending = ""
	s.mu.Unlock()

	s.logger.LogProbeResult(entry.Target, entry.Variant, entry.Result)
	s.notify()
}

// Wait blocks until every submitted probe has been recorded.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Snapshot returns a copy of the current state, newest entry first.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		Variant: s.variant,
		Input:   s.input,
		Busy:    s.busy,
		Pending: s.pending,
		Notice:  s.notice,
		Entries: append([]Entry(nil), s.entries...),
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
