package wsbridge

import (
	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/widget"
)

// Client events.
const (
	EventReady = "ready"
)

// Command is a server-to-client message.
type Command struct {
	Command string      `json:"command"`
	Payload interface{} `json:"payload,omitempty"`
}

// Event is a client-to-server message. Besides the event name it may carry
// page state that changed; absent fields leave the current state untouched.
type Event struct {
	Event string `json:"event"`

	Host  *string `json:"host,omitempty"`
	Path  *string `json:"path,omitempty"`
	Query *string `json:"query,omitempty"`

	UserAgent   *string `json:"userAgent,omitempty"`
	Online      *bool   `json:"online,omitempty"`
	Orientation *string `json:"orientation,omitempty"`
	ColorScheme *string `json:"colorScheme,omitempty"`
	Theme       *string `json:"theme,omitempty"`

	Network  *browser.NetworkInfo `json:"network,omitempty"`
	Viewport *ViewportState       `json:"viewport,omitempty"`

	Meta    map[string]string `json:"meta,omitempty"`
	Storage map[string]string `json:"storage,omitempty"`
	Cookie  *string           `json:"cookie,omitempty"`
}

// ViewportState is the geometry reported by the page.
type ViewportState struct {
	InnerWidth   int     `json:"innerWidth"`
	InnerHeight  int     `json:"innerHeight"`
	ClientWidth  int     `json:"clientWidth"`
	ClientHeight int     `json:"clientHeight"`
	ScreenWidth  int     `json:"screenWidth"`
	ScreenHeight int     `json:"screenHeight"`
	PixelRatio   float64 `json:"pixelRatio"`
}

// apply overlays the state carried by ev onto snap.
func (ev Event) apply(snap *browser.Snapshot) {
	if ev.Host != nil {
		snap.Host = *ev.Host
	}
	if ev.Path != nil {
		snap.Path = *ev.Path
	}
	if ev.Query != nil {
		snap.Query = *ev.Query
	}
	if ev.UserAgent != nil {
		snap.UA = *ev.UserAgent
	}
	if ev.Online != nil {
		snap.IsOnline = *ev.Online
	}
	if ev.Orientation != nil {
		snap.Orientation = *ev.Orientation
	}
	if ev.ColorScheme != nil {
		snap.ColorScheme = *ev.ColorScheme
	}
	if ev.Theme != nil {
		snap.RootTheme = *ev.Theme
	}
	if ev.Network != nil {
		n := *ev.Network
		snap.Network = &n
	}
	if v := ev.Viewport; v != nil {
		snap.Geometry = browser.Viewport{
			InnerWidth:   v.InnerWidth,
			InnerHeight:  v.InnerHeight,
			ClientWidth:  v.ClientWidth,
			ClientHeight: v.ClientHeight,
			ScreenWidth:  v.ScreenWidth,
			ScreenHeight: v.ScreenHeight,
			PixelRatio:   v.PixelRatio,
		}
	}
	if ev.Meta != nil {
		snap.MetaTags = ev.Meta
	}
	if ev.Storage != nil {
		snap.Storage = ev.Storage
	}
	if ev.Cookie != nil {
		snap.Cookies = *ev.Cookie
	}
}

// trigger maps a client event to the refresh trigger it raises.
func trigger(event string) (browser.Trigger, bool) {
	for _, t := range browser.Triggers() {
		if string(t) == event {
			return t, true
		}
	}
	return "", false
}

func isLifecycle(event string) bool {
	return event == widget.EventLoad || event == widget.EventFeedbackBeforeSend
}
