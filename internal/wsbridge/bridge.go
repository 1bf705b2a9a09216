// Package wsbridge exposes a feedback widget running in a remote page over a
// websocket. The bridge is the widget as far as the publisher and binder are
// concerned: it accepts setCustomData and relays the page's lifecycle events.
package wsbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

const writeWait = 10 * time.Second

// ErrClosed is returned when writing to a closed bridge.
var ErrClosed = errors.New("bridge closed")

// Bridge is a widget backed by a websocket connection.
type Bridge struct {
	conn *websocket.Conn
	live *browser.Live
	log  zerolog.Logger

	writeMu sync.Mutex

	mu       sync.Mutex
	handlers map[string][]func()

	ready  atomic.Bool
	closed atomic.Bool
}

// New wraps conn. Page state reported by the client is written into live.
func New(conn *websocket.Conn, live *browser.Live, log zerolog.Logger) *Bridge {
	return &Bridge{
		conn:     conn,
		live:     live,
		log:      log.With().Str("component", "wsbridge").Str("client_addr", conn.RemoteAddr().String()).Logger(),
		handlers: make(map[string][]func()),
	}
}

// SetCustomData sends the record to the page.
func (b *Bridge) SetCustomData(rec model.Record) error {
	return b.send(Command{Command: widget.CommandSetCustomData, Payload: rec})
}

// On registers a handler for a widget lifecycle event.
func (b *Bridge) On(event string, handler func()) {
	b.mu.Lock()
	b.handlers[event] = append(b.handlers[event], handler)
	b.mu.Unlock()
}

// Locate reports the bridge as the widget once the page said it is ready.
func (b *Bridge) Locate() (widget.Widget, bool) {
	if b.ready.Load() && !b.closed.Load() {
		return b, true
	}
	return nil, false
}

// Ready reports whether the client has announced its widget.
func (b *Bridge) Ready() bool {
	return b.ready.Load()
}

// ReadLoop processes client events until the connection closes or ctx is
// cancelled. A normal close returns nil.
func (b *Bridge) ReadLoop(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { b.Close() })
	defer stop()

	start := time.Now()
	defer func() {
		_ = b.Close()
		b.log.Debug().Dur("duration", time.Since(start)).Msg("websocket read loop ended")
	}()

	for {
		var ev Event
		if err := b.conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("read event: %w", err)
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				b.log.Debug().Int("close_code", closeErr.Code).Msg("client closed websocket")
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		b.Dispatch(ev)
	}
}

// Dispatch applies one client event.
func (b *Bridge) Dispatch(ev Event) {
	b.log.Debug().Str("event", ev.Event).Msg("client event")

	b.live.Update(ev.apply)

	switch {
	case ev.Event == EventReady:
		b.ready.Store(true)
	case isLifecycle(ev.Event):
		b.fire(ev.Event)
	default:
		if t, ok := trigger(ev.Event); ok {
			b.live.Emit(t)
			return
		}
		b.log.Warn().Str("event", ev.Event).Msg("unknown client event")
	}
}

// Close closes the underlying connection. It is safe to call repeatedly.
func (b *Bridge) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_ = b.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return b.conn.Close()
}

func (b *Bridge) fire(event string) {
	b.mu.Lock()
	hs := append([]func(){}, b.handlers[event]...)
	b.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (b *Bridge) send(msg Command) error {
	if b.closed.Load() {
		return ErrClosed
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if err := b.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := b.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write %s: %w", msg.Command, err)
	}
	return nil
}
