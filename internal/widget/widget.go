// Package widget delivers diagnostic records to the embedded feedback widget.
//
// The widget is opaque: any value may be a Widget, and its capabilities are
// probed with type assertions before use. Delivery never fails loudly.
package widget

import (
	"sync/atomic"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Lifecycle events emitted by the widget.
const (
	EventLoad               = "load"
	EventFeedbackBeforeSend = "feedbackbeforesend"
)

// CommandSetCustomData is the command name used with callable widgets.
const CommandSetCustomData = "setCustomData"

// Widget is whatever the feedback SDK exposes on the page.
type Widget interface{}

// Setter is the object-method calling convention.
type Setter interface {
	SetCustomData(rec model.Record) error
}

// Commander is the callable-with-command calling convention.
type Commander interface {
	Call(command string, payload interface{}) error
}

// CommandFunc adapts a plain function to Commander.
type CommandFunc func(command string, payload interface{}) error

func (f CommandFunc) Call(command string, payload interface{}) error {
	return f(command, payload)
}

// Subscriber is implemented by widgets that emit lifecycle events.
type Subscriber interface {
	On(event string, handler func())
}

// Builder produces a fresh record on demand.
type Builder interface {
	Build() model.Record
}

// last is the process-wide inspection slot. It is for debugging only;
// nothing may branch on its contents.
var last atomic.Pointer[model.Record]

// Last returns the most recently published record.
func Last() (model.Record, bool) {
	p := last.Load()
	if p == nil {
		return model.Record{}, false
	}
	return *p, true
}

// Reset empties the inspection slot.
func Reset() {
	last.Store(nil)
}

func remember(rec model.Record) {
	last.Store(&rec)
}
