package browser

import (
	"fmt"
	"net/url"
)

// Params describes a page by hand. The command line and tool surfaces use
// it to build a Snapshot without a real browser.
type Params struct {
	URL             string
	UserAgent       string
	Platform        string
	PlatformVersion string
	Mobile          *bool

	Offline       bool
	EffectiveType string
	Downlink      *float64
	RTT           *float64

	Orientation  string
	Width        int
	Height       int
	ScreenWidth  int
	ScreenHeight int
	PixelRatio   float64

	Theme       string // data-theme attribute
	ColorScheme string // "dark", "light" or "" when unknown

	Meta    map[string]string
	Storage map[string]string
	Cookie  string
}

// Snapshot builds the Env described by p.
func (p Params) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		UA: p.UserAgent,
		Hints: ClientHints{
			Platform:        p.Platform,
			PlatformVersion: p.PlatformVersion,
			Mobile:          p.Mobile,
		},
		IsOnline:    !p.Offline,
		Orientation: p.Orientation,
		Geometry: Viewport{
			InnerWidth:   p.Width,
			InnerHeight:  p.Height,
			ClientWidth:  p.Width,
			ClientHeight: p.Height,
			ScreenWidth:  p.ScreenWidth,
			ScreenHeight: p.ScreenHeight,
			PixelRatio:   p.PixelRatio,
		},
		RootTheme:   p.Theme,
		ColorScheme: p.ColorScheme,
		MetaTags:    p.Meta,
		Storage:     p.Storage,
		Cookies:     p.Cookie,
	}

	if p.EffectiveType != "" || p.Downlink != nil || p.RTT != nil {
		snap.Network = &NetworkInfo{EffectiveType: p.EffectiveType, Downlink: p.Downlink, RTT: p.RTT}
	}

	if p.URL != "" {
		u, err := url.Parse(p.URL)
		if err != nil {
			return nil, fmt.Errorf("parse page url: %w", err)
		}
		snap.Host = u.Hostname()
		snap.Path = u.Path
		if u.RawQuery != "" {
			snap.Query = "?" + u.RawQuery
		}
	}
	return snap, nil
}
