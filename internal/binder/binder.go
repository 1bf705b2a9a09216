// Package binder wires the publisher to the feedback widget regardless of
// which of the two initializes first.
//
// The widget may attach to the page after the engine starts, so the binder
// polls for it on a fixed interval with a bounded attempt budget:
//
//	Unbound --widget found--> Bound       (terminal)
//	Unbound --budget spent--> Abandoned   (terminal)
//
// Ticks are explicit so the state machine can be driven without a clock.
package binder

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

// State of the binder.
type State int32

const (
	Unbound State = iota
	Bound
	Abandoned
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "Unbound"
	case Bound:
		return "Bound"
	case Abandoned:
		return "Abandoned"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Bound || s == Abandoned
}

// Locator reports the widget if it is present on the page.
type Locator func() (widget.Widget, bool)

// Config bounds the polling schedule.
type Config struct {
	// Interval between presence checks (default 250ms).
	Interval time.Duration

	// MaxAttempts is the number of interval retries after the first check.
	// The first check is free, so the binder gives up after MaxAttempts+1
	// misses (default 80: 81 checks, ~20s).
	MaxAttempts int
}

// DefaultConfig returns the standard polling schedule.
func DefaultConfig() Config {
	return Config{
		Interval:    250 * time.Millisecond,
		MaxAttempts: 80,
	}
}

// Binder is the bounded retry state machine.
type Binder struct {
	cfg     Config
	locate  Locator
	builder widget.Builder
	pub     *widget.Publisher
	log     zerolog.Logger

	mu       sync.Mutex
	attempts int
	state    atomic.Int32
	done     chan struct{}
}

// New creates a Binder. On success it builds a fresh record with builder
// and wires it through pub.
func New(locate Locator, builder widget.Builder, pub *widget.Publisher, cfg Config, log zerolog.Logger) *Binder {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	return &Binder{
		cfg:     cfg,
		locate:  locate,
		builder: builder,
		pub:     pub,
		log:     log.With().Str("component", "binder").Logger(),
		done:    make(chan struct{}),
	}
}

// State returns the current state. Safe for concurrent use.
func (b *Binder) State() State {
	return State(b.state.Load())
}

// Attempts returns the number of unsuccessful presence checks so far.
func (b *Binder) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// Done is closed once the binder reaches a terminal state.
func (b *Binder) Done() <-chan struct{} {
	return b.done
}

// Tick performs one presence check and returns the resulting state.
// Ticks after a terminal state are no-ops.
func (b *Binder) Tick() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s := b.State(); s.Terminal() {
		return s
	}

	if w, ok := b.find(); ok {
		b.pub.Wire(w, b.builder.Build())
		b.finish(Bound)
		b.log.Debug().Int("attempts", b.attempts).Msg("widget bound")
		return Bound
	}

	b.attempts++
	if b.attempts > b.cfg.MaxAttempts {
		b.finish(Abandoned)
		b.log.Debug().Int("attempts", b.attempts).Msg("widget never appeared, giving up")
		return Abandoned
	}
	return Unbound
}

// Run ticks immediately, then on every interval until a terminal state is
// reached or ctx is cancelled. The ticker never outlives Run.
func (b *Binder) Run(ctx context.Context) State {
	if s := b.Tick(); s.Terminal() {
		return s
	}

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.State()
		case <-ticker.C:
			if s := b.Tick(); s.Terminal() {
				return s
			}
		}
	}
}

// find calls the locator, treating a panic as "not present".
func (b *Binder) find() (w widget.Widget, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			w, ok = nil, false
		}
	}()
	w, ok = b.locate()
	return w, ok && w != nil
}

func (b *Binder) finish(s State) {
	b.state.Store(int32(s))
	close(b.done)
}
