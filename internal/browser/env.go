// Package browser models the ambient page state that detectors read:
// location, navigator, screen, document and storage.
//
// Env is read-only. Methods that can fail in a real page (storage access,
// the screen orientation API, cookie access) return an error instead of
// panicking so detectors can degrade to their defaults.
package browser

// Location is the page location split the way detectors consume it.
type Location struct {
	Host  string // host name without port
	Path  string
	Query string // raw search string including the leading "?", or ""
}

// ClientHints carries structured platform hints (User-Agent Client Hints).
type ClientHints struct {
	Platform        string // e.g. "Android", "macOS", "Windows"
	PlatformVersion string
	Mobile          *bool
}

// NetworkInfo mirrors the Network Information API.
type NetworkInfo struct {
	EffectiveType string   // "4g", "3g", "slow-2g"
	Type          string   // "wifi", "cellular"
	Downlink      *float64 // Mbps
	RTT           *float64 // ms
}

// Viewport holds window and screen geometry.
type Viewport struct {
	InnerWidth   int
	InnerHeight  int
	ClientWidth  int
	ClientHeight int
	ScreenWidth  int
	ScreenHeight int
	PixelRatio   float64
}

// Env is the ambient state of one page.
type Env interface {
	Location() Location
	UserAgent() string
	ClientHints() ClientHints
	Online() bool
	// Connection reports the network information capability, ok=false when unsupported.
	Connection() (NetworkInfo, bool)
	// OrientationType returns the screen orientation type ("portrait-primary", ...),
	// "" when the API is unavailable.
	OrientationType() (string, error)
	Viewport() Viewport
	// ThemeAttr returns the data-theme attribute on the document root and body.
	ThemeAttr() (root, body string)
	// PrefersDark evaluates the prefers-color-scheme: dark media query.
	PrefersDark() (matches, supported bool)
	// Meta returns the content of <meta name="...">.
	Meta(name string) (string, bool)
	// StorageItem reads origin-scoped key-value storage ("" when missing).
	StorageItem(key string) (string, error)
	// Cookie returns the raw document cookie string.
	Cookie() (string, error)
}

// Trigger names a page event that invalidates the current record.
type Trigger string

const (
	TriggerOnline            Trigger = "online"
	TriggerOffline           Trigger = "offline"
	TriggerThemeChange       Trigger = "themechange"
	TriggerOrientationChange Trigger = "orientationchange"
)

// Triggers lists every refresh trigger.
func Triggers() []Trigger {
	return []Trigger{TriggerOnline, TriggerOffline, TriggerThemeChange, TriggerOrientationChange}
}

// Notifier is implemented by environments that emit refresh triggers.
type Notifier interface {
	Subscribe(trigger Trigger, fn func())
}
