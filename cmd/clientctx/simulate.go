package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/binder"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/engine"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/output"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

// consoleWidget prints every record it receives as one JSON document.
type consoleWidget struct {
	w io.Writer

	mu       sync.Mutex
	handlers map[string][]func()
	received int
}

func newConsoleWidget(w io.Writer) *consoleWidget {
	return &consoleWidget{w: w, handlers: make(map[string][]func())}
}

func (c *consoleWidget) SetCustomData(rec model.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received++
	return output.EncodeJSON(c.w, rec)
}

func (c *consoleWidget) On(event string, handler func()) {
	c.mu.Lock()
	c.handlers[event] = append(c.handlers[event], handler)
	c.mu.Unlock()
}

func (c *consoleWidget) emit(event string) {
	c.mu.Lock()
	hs := append([]func(){}, c.handlers[event]...)
	c.mu.Unlock()
	for _, h := range hs {
		h()
	}
}

func (c *consoleWidget) deliveries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

type simulateOptions struct {
	widgetAfter     time.Duration
	events          []string
	bindInterval    time.Duration
	bindMaxAttempts int
}

func newSimulateCmd() *cobra.Command {
	var (
		page    pageFlags
		opts    simulateOptions
		quiet   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the refresh engine against a simulated widget",
		Long: `Starts the engine for the page described by the flags. A console widget
appears after --widget-after; once bound, each --events entry is fired in
order. Page triggers (online, offline, themechange, orientationchange)
flip the matching page state first; widget events (load,
feedbackbeforesend) are raised on the widget. Every record delivered to
the widget is printed as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			progress := output.NewVerboseProgress(!quiet, verbose)

			snap, err := page.snapshot()
			if err != nil {
				return err
			}
			hints, err := page.hints()
			if err != nil {
				return err
			}
			now, err := page.clock()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			return runSimulation(ctx, browser.NewLive(*snap), hints, now, opts, os.Stdout, progress)
		},
	}

	page.register(cmd.Flags())
	cmd.Flags().DurationVar(&opts.widgetAfter, "widget-after", time.Second, "Delay before the widget appears (negative: never)")
	cmd.Flags().StringSliceVar(&opts.events, "events", nil, "Events to fire after binding, e.g. offline,load,feedbackbeforesend")
	cmd.Flags().DurationVar(&opts.bindInterval, "bind-interval", binder.DefaultConfig().Interval, "Binder retry interval")
	cmd.Flags().IntVar(&opts.bindMaxAttempts, "bind-max-attempts", binder.DefaultConfig().MaxAttempts, "Binder attempt budget")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runSimulation(ctx context.Context, live *browser.Live, hints model.Hints, now func() time.Time,
	opts simulateOptions, out io.Writer, progress *output.Progress) error {

	for _, ev := range opts.events {
		if !knownEvent(ev) {
			return fmt.Errorf("unknown event %q", ev)
		}
	}

	w := newConsoleWidget(out)
	var present atomic.Bool
	locate := func() (widget.Widget, bool) {
		if present.Load() {
			return w, true
		}
		return nil, false
	}

	eng := engine.New(live, hints, locate,
		engine.WithLogger(progress.Logger()),
		engine.WithClock(now),
		engine.WithBinderConfig(binder.Config{Interval: opts.bindInterval, MaxAttempts: opts.bindMaxAttempts}))
	eng.Start(ctx)

	if opts.widgetAfter >= 0 {
		timer := time.AfterFunc(opts.widgetAfter, func() {
			progress.Debug("widget appeared")
			present.Store(true)
		})
		defer timer.Stop()
	}

	select {
	case <-eng.Binder().Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	state := eng.Binder().State()
	progress.Log("binder %s after %d attempts", state, eng.Binder().Attempts())
	if state != binder.Bound {
		return nil
	}

	for _, ev := range opts.events {
		progress.Debug("firing %s", ev)
		fire(live, w, ev)
	}
	progress.Log("%d records delivered, %d refreshes", w.deliveries(), eng.Refreshes())
	return nil
}

// fire raises one simulated event.
func fire(live *browser.Live, w *consoleWidget, ev string) {
	switch ev {
	case widget.EventLoad, widget.EventFeedbackBeforeSend:
		w.emit(ev)
		return
	case string(browser.TriggerOnline):
		live.Update(func(s *browser.Snapshot) { s.IsOnline = true })
	case string(browser.TriggerOffline):
		live.Update(func(s *browser.Snapshot) { s.IsOnline = false })
	case string(browser.TriggerThemeChange):
		live.Update(func(s *browser.Snapshot) {
			if s.ColorScheme == "dark" {
				s.ColorScheme = "light"
			} else {
				s.ColorScheme = "dark"
			}
		})
	case string(browser.TriggerOrientationChange):
		live.Update(func(s *browser.Snapshot) {
			g := &s.Geometry
			g.InnerWidth, g.InnerHeight = g.InnerHeight, g.InnerWidth
			g.ClientWidth, g.ClientHeight = g.ClientHeight, g.ClientWidth
			switch {
			case strings.HasPrefix(s.Orientation, "portrait"):
				s.Orientation = "landscape-primary"
			case strings.HasPrefix(s.Orientation, "landscape"):
				s.Orientation = "portrait-primary"
			}
		})
	}
	live.Emit(browser.Trigger(ev))
}

func knownEvent(ev string) bool {
	if ev == widget.EventLoad || ev == widget.EventFeedbackBeforeSend {
		return true
	}
	for _, t := range browser.Triggers() {
		if string(t) == ev {
			return true
		}
	}
	return false
}
