package detector

import (
	"fmt"
	"strings"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Display groups the display facets of the record.
type Display struct {
	Orientation model.Orientation
	Theme       model.Theme
	ViewportPx  string
	ScreenPx    string
	PixelRatio  float64
}

// DetectDisplay reads orientation, theme and geometry.
func DetectDisplay(env browser.Env) Display {
	vp := env.Viewport()
	ratio := vp.PixelRatio
	if ratio <= 0 {
		ratio = 1
	}
	return Display{
		Orientation: DetectOrientation(env),
		Theme:       DetectTheme(env),
		ViewportPx:  fmt.Sprintf("%dx%d", vp.ClientWidth, vp.ClientHeight),
		ScreenPx:    fmt.Sprintf("%dx%d", vp.ScreenWidth, vp.ScreenHeight),
		PixelRatio:  ratio,
	}
}

// DetectOrientation prefers the screen orientation API and falls back to
// comparing the window's inner height and width.
func DetectOrientation(env browser.Env) model.Orientation {
	if kind, err := env.OrientationType(); err == nil && kind != "" {
		if strings.Contains(kind, "portrait") {
			return model.Portrait
		}
		return model.Landscape
	}

	vp := env.Viewport()
	if vp.InnerHeight >= vp.InnerWidth {
		return model.Portrait
	}
	return model.Landscape
}

// DetectTheme prefers an explicit data-theme attribute (root, then body),
// then the system color scheme. Defaults to Light.
func DetectTheme(env browser.Env) model.Theme {
	root, body := env.ThemeAttr()
	explicit := root
	if explicit == "" {
		explicit = body
	}
	if explicit != "" {
		if strings.EqualFold(explicit, "dark") {
			return model.Dark
		}
		return model.Light
	}

	if dark, supported := env.PrefersDark(); supported && dark {
		return model.Dark
	}
	return model.Light
}
