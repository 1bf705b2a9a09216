package engine

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/binder"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/detector"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

type recordingWidget struct {
	mu       sync.Mutex
	received []model.Record
	handlers map[string][]func()
}

func newRecordingWidget() *recordingWidget {
	return &recordingWidget{handlers: make(map[string][]func())}
}

func (w *recordingWidget) SetCustomData(rec model.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.received = append(w.received, rec)
	return nil
}

func (w *recordingWidget) On(event string, handler func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[event] = append(w.handlers[event], handler)
}

func (w *recordingWidget) emit(event string) {
	w.mu.Lock()
	hs := append([]func(){}, w.handlers[event]...)
	w.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (w *recordingWidget) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.received)
}

func (w *recordingWidget) lastRecord() model.Record {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.received[len(w.received)-1]
}

// slot is a widget locator whose widget can be attached later.
type slot struct {
	w atomic.Pointer[recordingWidget]
}

func (s *slot) locate() (widget.Widget, bool) {
	if w := s.w.Load(); w != nil {
		return w, true
	}
	return nil, false
}

func newLive() *browser.Live {
	return browser.NewLive(browser.Snapshot{
		Host:     "www.example.com",
		Path:     "/locations",
		IsOnline: true,
		Geometry: browser.Viewport{InnerWidth: 390, InnerHeight: 844},
	})
}

func fastBinder() Option {
	return WithBinderConfig(binder.Config{Interval: time.Millisecond, MaxAttempts: 10000})
}

func TestStartPublishesBeforeWidgetExists(t *testing.T) {
	widget.Reset()
	s := &slot{}
	e := New(newLive(), model.Hints{}, s.locate, fastBinder())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)

	last, ok := widget.Last()
	require.True(t, ok, "initial refresh should fill the inspection slot")
	assert.Equal(t, "/locations", last.PagePath)
	assert.Equal(t, 1, e.Refreshes())
	assert.Equal(t, binder.Unbound, e.Binder().State())
}

func TestWidgetAttachingLaterGetsBound(t *testing.T) {
	s := &slot{}
	e := New(newLive(), model.Hints{}, s.locate, fastBinder())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)

	w := newRecordingWidget()
	s.w.Store(w)

	select {
	case <-e.Binder().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("binder never reached a terminal state")
	}
	require.Equal(t, binder.Bound, e.Binder().State())
	require.Equal(t, 1, w.count())

	w.emit(widget.EventLoad)
	assert.Equal(t, 2, w.count())
}

func TestTriggersCauseFullRefresh(t *testing.T) {
	live := newLive()
	s := &slot{}
	w := newRecordingWidget()
	s.w.Store(w)

	e := New(live, model.Hints{}, s.locate, fastBinder())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)
	<-e.Binder().Done()

	before := w.count()

	live.Update(func(snap *browser.Snapshot) { snap.IsOnline = false })
	live.Emit(browser.TriggerOffline)

	require.Equal(t, before+1, w.count())
	assert.Equal(t, model.Offline, w.lastRecord().ConnectionState)

	live.Update(func(snap *browser.Snapshot) { snap.Geometry = browser.Viewport{InnerWidth: 844, InnerHeight: 390} })
	live.Emit(browser.TriggerOrientationChange)

	require.Equal(t, before+2, w.count())
	assert.Equal(t, model.Landscape, w.lastRecord().Orientation)

	// No debouncing: rapid triggers each rebuild.
	live.Emit(browser.TriggerThemeChange)
	live.Emit(browser.TriggerThemeChange)
	assert.Equal(t, before+4, w.count())
	assert.Equal(t, 5, e.Refreshes())
}

func TestStartIsIdempotent(t *testing.T) {
	live := newLive()
	e := New(live, model.Hints{}, (&slot{}).locate, fastBinder())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.Start(ctx)
	e.Start(ctx)

	live.Emit(browser.TriggerOnline)
	assert.Equal(t, 2, e.Refreshes(), "second Start must not double-subscribe")
}

func TestRefreshLogsChangedFields(t *testing.T) {
	var logs bytes.Buffer
	live := newLive()
	e := New(live, model.Hints{}, nil, WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))

	e.Refresh()
	live.Update(func(snap *browser.Snapshot) { snap.ColorScheme = "dark" })
	rec := e.Refresh()

	assert.Equal(t, model.Dark, rec.Theme)
	assert.True(t, strings.Contains(logs.String(), `"changed":["theme"]`), logs.String())
}

func TestRefreshSurvivesBrokenDetector(t *testing.T) {
	boom := detector.Func{ID: "boom", Fn: func(detector.Input, *model.Record) { panic("boom") }}
	e := New(newLive(), model.Hints{BuildVersion: "v9"}, nil, WithDetectors(boom))

	var rec model.Record
	assert.NotPanics(t, func() { rec = e.Refresh() })
	assert.Equal(t, model.FailureMarker, rec.Error)
	assert.Equal(t, "v9", rec.BuildVersion)
}

func TestRefreshSurvivesPanickingLocator(t *testing.T) {
	e := New(newLive(), model.Hints{}, func() (widget.Widget, bool) { panic("no window") })
	assert.NotPanics(t, func() { e.Refresh() })
}
