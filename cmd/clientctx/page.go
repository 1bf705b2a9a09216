package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// pageFlags describes a page on the command line.
type pageFlags struct {
	url           string
	host          string
	path          string
	query         string
	ua            string
	platform      string
	platformVer   string
	online        bool
	effectiveType string
	downlink      float64
	rtt           float64
	theme         string
	prefersDark   bool
	orientation   string
	viewport      string
	screen        string
	dpr           float64
	meta          map[string]string
	token         string
	tokenKey      string
	cookie        string
	hintsFile     string
	now           string

	fs *pflag.FlagSet
}

func (p *pageFlags) register(fs *pflag.FlagSet) {
	p.fs = fs
	fs.StringVar(&p.url, "url", "", "Page URL (sets host, path and query)")
	fs.StringVar(&p.host, "host", "", "Page host name")
	fs.StringVar(&p.path, "path", "/", "Page path")
	fs.StringVar(&p.query, "query", "", "Page query string including '?'")
	fs.StringVar(&p.ua, "ua", "", "User-Agent string")
	fs.StringVar(&p.platform, "platform", "", "Client hint platform (e.g. Android, macOS)")
	fs.StringVar(&p.platformVer, "platform-version", "", "Client hint platform version")
	fs.BoolVar(&p.online, "online", true, "Page is online")
	fs.StringVar(&p.effectiveType, "effective-type", "", "Network effective type (e.g. 4g)")
	fs.Float64Var(&p.downlink, "downlink", 0, "Network downlink in Mbps")
	fs.Float64Var(&p.rtt, "rtt", 0, "Network round-trip time in ms")
	fs.StringVar(&p.theme, "theme", "", "Explicit data-theme attribute")
	fs.BoolVar(&p.prefersDark, "prefers-dark", false, "Page prefers a dark color scheme")
	fs.StringVar(&p.orientation, "orientation", "", "Screen orientation type (e.g. landscape-primary)")
	fs.StringVar(&p.viewport, "viewport", "", "Viewport size WxH")
	fs.StringVar(&p.screen, "screen", "", "Screen size WxH")
	fs.Float64Var(&p.dpr, "dpr", 1, "Device pixel ratio")
	fs.StringToStringVar(&p.meta, "meta", nil, "Page meta tags (user-country=AT,app-build=1.0)")
	fs.StringVar(&p.token, "token", "", "Session token placed in storage")
	fs.StringVar(&p.tokenKey, "token-key", "token", "Storage key for --token")
	fs.StringVar(&p.cookie, "cookie", "", "Raw cookie string")
	fs.StringVar(&p.hintsFile, "hints", "", "Path to a hints JSON file")
	fs.StringVar(&p.now, "now", "", "Reference time in RFC 3339 (default: current time)")
}

func (p *pageFlags) changed(name string) bool {
	return p.fs != nil && p.fs.Changed(name)
}

// params converts the flags into page parameters.
func (p *pageFlags) params() (browser.Params, error) {
	params := browser.Params{
		URL:             p.url,
		UserAgent:       p.ua,
		Platform:        p.platform,
		PlatformVersion: p.platformVer,
		Offline:         !p.online,
		EffectiveType:   p.effectiveType,
		Orientation:     p.orientation,
		PixelRatio:      p.dpr,
		Theme:           p.theme,
		Meta:            p.meta,
		Cookie:          p.cookie,
	}
	if p.changed("downlink") {
		v := p.downlink
		params.Downlink = &v
	}
	if p.changed("rtt") {
		v := p.rtt
		params.RTT = &v
	}
	if p.changed("prefers-dark") {
		params.ColorScheme = "light"
		if p.prefersDark {
			params.ColorScheme = "dark"
		}
	}
	if p.viewport != "" {
		w, h, err := parseSize(p.viewport)
		if err != nil {
			return browser.Params{}, fmt.Errorf("invalid --viewport: %w", err)
		}
		params.Width, params.Height = w, h
	}
	if p.screen != "" {
		w, h, err := parseSize(p.screen)
		if err != nil {
			return browser.Params{}, fmt.Errorf("invalid --screen: %w", err)
		}
		params.ScreenWidth, params.ScreenHeight = w, h
	}
	if p.token != "" {
		params.Storage = map[string]string{p.tokenKey: p.token}
	}
	return params, nil
}

// snapshot builds the page Env. Explicit --host/--path/--query win over --url.
func (p *pageFlags) snapshot() (*browser.Snapshot, error) {
	params, err := p.params()
	if err != nil {
		return nil, err
	}
	snap, err := params.Snapshot()
	if err != nil {
		return nil, err
	}
	if p.url == "" || p.changed("host") {
		snap.Host = p.host
	}
	if p.url == "" || p.changed("path") {
		snap.Path = p.path
	}
	if p.url == "" || p.changed("query") {
		snap.Query = p.query
	}
	return snap, nil
}

// hints loads the hints file. A custom --token-key becomes the hinted key
// unless the file names one.
func (p *pageFlags) hints() (model.Hints, error) {
	var hints model.Hints
	if p.hintsFile != "" {
		h, err := model.LoadHints(p.hintsFile)
		if err != nil {
			return model.Hints{}, err
		}
		hints = h
	}
	if p.token != "" && hints.AuthTokenKey == "" {
		hints.AuthTokenKey = p.tokenKey
	}
	return hints, nil
}

func (p *pageFlags) clock() (func() time.Time, error) {
	if p.now == "" {
		return time.Now, nil
	}
	at, err := time.Parse(time.RFC3339, p.now)
	if err != nil {
		return nil, fmt.Errorf("invalid --now: %w", err)
	}
	return func() time.Time { return at }, nil
}

// parseSize parses "WxH".
func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(strings.TrimSpace(s)), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("want WxH, got %q", s)
	}
	return w, h, nil
}
