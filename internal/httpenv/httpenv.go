// Package httpenv derives a page snapshot from an HTTP request so the
// detectors can run server side. User-Agent client hints, network hints
// and the cookie header stand in for the browser APIs.
package httpenv

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// HintsHeader carries a JSON hints object from the host application.
// Clients that cannot set headers (websockets) use the HintsParam query
// parameter instead.
const (
	HintsHeader = "X-App-Context"
	HintsParam  = "hints"
)

// AcceptCH lists the client hints the server asks browsers to send.
var AcceptCH = []string{
	"Sec-CH-UA-Platform",
	"Sec-CH-UA-Platform-Version",
	"Sec-CH-UA-Mobile",
	"Sec-CH-Prefers-Color-Scheme",
	"Sec-CH-Viewport-Width",
	"Sec-CH-Viewport-Height",
	"Sec-CH-DPR",
	"ECT",
	"Downlink",
	"RTT",
}

// AcceptCHValue is AcceptCH joined for the Accept-CH response header.
func AcceptCHValue() string {
	return strings.Join(AcceptCH, ", ")
}

// FromRequest builds a snapshot of the requesting page.
// A request that reached the server is treated as online.
func FromRequest(r *http.Request) *browser.Snapshot {
	h := r.Header
	snap := &browser.Snapshot{
		Host:     hostname(r.Host),
		Path:     r.URL.Path,
		UA:       h.Get("User-Agent"),
		IsOnline: true,
		Hints: browser.ClientHints{
			Platform:        unquote(h.Get("Sec-CH-UA-Platform")),
			PlatformVersion: unquote(h.Get("Sec-CH-UA-Platform-Version")),
			Mobile:          mobileHint(h.Get("Sec-CH-UA-Mobile")),
		},
		Network:     network(h),
		ColorScheme: strings.ToLower(unquote(h.Get("Sec-CH-Prefers-Color-Scheme"))),
		Cookies:     h.Get("Cookie"),
	}
	if r.URL.RawQuery != "" {
		snap.Query = "?" + r.URL.RawQuery
	}

	width := intHeader(h, "Sec-CH-Viewport-Width", "Viewport-Width")
	height := intHeader(h, "Sec-CH-Viewport-Height")
	snap.Geometry = browser.Viewport{
		InnerWidth:   width,
		InnerHeight:  height,
		ClientWidth:  width,
		ClientHeight: height,
		PixelRatio:   floatHeader(h, "Sec-CH-DPR", "DPR"),
	}
	return snap
}

// HintsFromRequest decodes the hints header, falling back to the query
// parameter. Missing hints yield zero hints.
func HintsFromRequest(r *http.Request) (model.Hints, error) {
	raw := r.Header.Get(HintsHeader)
	if raw == "" {
		raw = r.URL.Query().Get(HintsParam)
	}
	return model.ParseHints([]byte(raw))
}

func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}

// unquote strips the structured-header quotes around string hints.
func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func mobileHint(v string) *bool {
	var b bool
	switch strings.TrimSpace(v) {
	case "?1":
		b = true
	case "?0":
		b = false
	default:
		return nil
	}
	return &b
}

func network(h http.Header) *browser.NetworkInfo {
	ect := h.Get("ECT")
	downlink := floatPtr(h.Get("Downlink"))
	rtt := floatPtr(h.Get("RTT"))
	if ect == "" && downlink == nil && rtt == nil {
		return nil
	}
	return &browser.NetworkInfo{EffectiveType: ect, Downlink: downlink, RTT: rtt}
}

func floatPtr(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil
	}
	return &f
}

// intHeader returns the first parseable value among names, or 0.
func intHeader(h http.Header, names ...string) int {
	for _, name := range names {
		if n, err := strconv.Atoi(strings.TrimSpace(h.Get(name))); err == nil {
			return n
		}
	}
	return 0
}

func floatHeader(h http.Header, names ...string) float64 {
	for _, name := range names {
		if f := floatPtr(h.Get(name)); f != nil {
			return *f
		}
	}
	return 0
}
