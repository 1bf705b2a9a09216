// Package engine keeps the diagnostic record fresh: it publishes an initial
// record, rebuilds on every refresh trigger, and runs the binder so the
// widget is wired whenever it shows up.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/assembler"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/binder"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/detector"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/diff"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

// Engine coordinates the assembler, publisher and binder for one page.
type Engine struct {
	env    browser.Env
	locate binder.Locator
	asm    *assembler.Assembler
	pub    *widget.Publisher
	binder *binder.Binder
	log    zerolog.Logger

	mu        sync.Mutex
	prev      *model.Record
	refreshes int
	started   bool
}

type options struct {
	log       zerolog.Logger
	bind      binder.Config
	now       func() time.Time
	detectors []detector.Detector
}

// Option configures an Engine.
type Option func(*options)

func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithBinderConfig(cfg binder.Config) Option {
	return func(o *options) { o.bind = cfg }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithDetectors(ds ...detector.Detector) Option {
	return func(o *options) { o.detectors = ds }
}

// New wires an engine over env. locate reports the widget when present.
func New(env browser.Env, hints model.Hints, locate binder.Locator, opts ...Option) *Engine {
	o := options{log: zerolog.Nop(), bind: binder.DefaultConfig(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	asmOpts := []assembler.Option{assembler.WithClock(o.now), assembler.WithLogger(o.log)}
	if o.detectors != nil {
		asmOpts = append(asmOpts, assembler.WithDetectors(o.detectors...))
	}
	asm := assembler.New(env, hints, asmOpts...)
	pub := widget.NewPublisher(asm, o.log)

	return &Engine{
		env:    env,
		locate: locate,
		asm:    asm,
		pub:    pub,
		binder: binder.New(locate, asm, pub, o.bind, o.log),
		log:    o.log.With().Str("component", "engine").Logger(),
	}
}

// Start publishes the initial record, subscribes to refresh triggers and
// starts the binder in the background. It is a no-op after the first call.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	e.Refresh()

	if n, ok := e.env.(browser.Notifier); ok {
		for _, trigger := range browser.Triggers() {
			trigger := trigger
			n.Subscribe(trigger, func() {
				e.log.Debug().Str("trigger", string(trigger)).Msg("refresh triggered")
				e.Refresh()
			})
		}
	}

	go e.binder.Run(ctx)
}

// Refresh rebuilds the record and publishes it to the widget if present.
// Each call is a full, independent rebuild.
func (e *Engine) Refresh() model.Record {
	rec := e.asm.Build()

	e.mu.Lock()
	if e.prev != nil {
		if d := diff.Compare(*e.prev, rec); d.Changed() {
			e.log.Debug().Strs("changed", d.Fields()).Msg("record changed")
		}
	}
	e.prev = &rec
	e.refreshes++
	e.mu.Unlock()

	var w widget.Widget
	if e.locate != nil {
		if found, ok := safeLocate(e.locate); ok {
			w = found
		}
	}
	e.pub.Deliver(w, rec)
	return rec
}

// Refreshes returns how many refresh cycles have run.
func (e *Engine) Refreshes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refreshes
}

// Binder exposes the binder for status checks.
func (e *Engine) Binder() *binder.Binder {
	return e.binder
}

// Assembler exposes the record builder.
func (e *Engine) Assembler() *assembler.Assembler {
	return e.asm
}

// Publisher exposes the publisher.
func (e *Engine) Publisher() *widget.Publisher {
	return e.pub
}

func safeLocate(locate binder.Locator) (w widget.Widget, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			w, ok = nil, false
		}
	}()
	w, ok = locate()
	return w, ok && w != nil
}
