package widget

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Publisher hands records to the widget through whichever calling
// convention it exposes.
type Publisher struct {
	builder Builder
	log     zerolog.Logger

	mu      sync.Mutex
	current model.Record
	built   bool
}

// NewPublisher creates a Publisher. builder is used to rebuild the record
// right before feedback is submitted.
func NewPublisher(builder Builder, log zerolog.Logger) *Publisher {
	return &Publisher{builder: builder, log: log.With().Str("component", "publisher").Logger()}
}

// Deliver stores rec in the inspection slot and, if w is present, sends it.
// It reports whether a calling convention accepted the record.
func (p *Publisher) Deliver(w Widget, rec model.Record) bool {
	p.mu.Lock()
	p.current = rec
	p.built = true
	p.mu.Unlock()
	remember(rec)

	if w == nil {
		return false
	}
	return p.send(w, rec)
}

// Wire delivers rec and attaches the lifecycle hooks: "load" re-sends the
// current record, "feedbackbeforesend" rebuilds and sends a fresh one.
func (p *Publisher) Wire(w Widget, rec model.Record) {
	p.Deliver(w, rec)

	sub, ok := w.(Subscriber)
	if !ok {
		return
	}
	p.guard("subscribe", func() {
		sub.On(EventLoad, func() {
			if cur, ok := p.Current(); ok {
				p.Deliver(w, cur)
			}
		})
		sub.On(EventFeedbackBeforeSend, func() {
			if p.builder == nil {
				return
			}
			p.Deliver(w, p.builder.Build())
		})
	})
}

// Current returns the record most recently handed to Deliver.
func (p *Publisher) Current() (model.Record, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.built
}

func (p *Publisher) send(w Widget, rec model.Record) (ok bool) {
	p.guard("deliver", func() {
		var err error
		switch target := w.(type) {
		case Setter:
			err = target.SetCustomData(rec)
		case Commander:
			err = target.Call(CommandSetCustomData, rec)
		default:
			p.log.Debug().Str("widget", fmt.Sprintf("%T", w)).Msg("widget exposes no calling convention")
			return
		}
		if err != nil {
			p.log.Debug().Err(err).Msg("widget rejected record")
			return
		}
		ok = true
	})
	return ok
}

// guard swallows panics raised by the widget.
func (p *Publisher) guard(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Debug().Str("op", op).Str("cause", fmt.Sprint(r)).Msg("widget call panicked")
		}
	}()
	fn()
}
