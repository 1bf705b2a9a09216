// Package detector infers individual facets of the client context.
//
// Every detector is a total function: a heuristic miss is not an error,
// it resolves to model.Unknown (or nil for nullable facets).
package detector

import (
	"time"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Input is the ambient state every detector reads.
type Input struct {
	Env   browser.Env
	Hints model.Hints
	Now   time.Time
}

// Detector writes one facet of the record under construction.
type Detector interface {
	// Name returns a unique identifier, e.g. "session".
	Name() string

	// Detect fills its facet of rec. It must not retain rec.
	Detect(in Input, rec *model.Record)
}

// Func adapts a plain function to the Detector interface.
type Func struct {
	ID string
	Fn func(in Input, rec *model.Record)
}

func (f Func) Name() string                       { return f.ID }
func (f Func) Detect(in Input, rec *model.Record) { f.Fn(in, rec) }

// Default returns the full detector set in evaluation order.
func Default() []Detector {
	return []Detector{
		Func{ID: "environment", Fn: func(in Input, rec *model.Record) {
			loc := in.Env.Location()
			rec.RuntimeEnvironment = DetectEnvironment(loc.Host)
			rec.PagePath = loc.Path
			rec.PageQuery = loc.Query
		}},
		Func{ID: "os", Fn: func(in Input, rec *model.Record) {
			info := DetectOS(in.Env.UserAgent(), in.Env.ClientHints())
			rec.DeviceOS = info.OS
			rec.DeviceOSVersion = info.Version
		}},
		Func{ID: "brand_model", Fn: func(in Input, rec *model.Record) {
			rec.DeviceBrandModel = DetectBrandModel(in.Env.UserAgent())
		}},
		Func{ID: "platform", Fn: func(in Input, rec *model.Record) {
			rec.Platform = DetectPlatform(in.Env.UserAgent(), in.Env.ClientHints())
		}},
		Func{ID: "display", Fn: func(in Input, rec *model.Record) {
			d := DetectDisplay(in.Env)
			rec.Orientation = d.Orientation
			rec.Theme = d.Theme
			rec.ViewportPx = d.ViewportPx
			rec.ScreenPx = d.ScreenPx
			rec.DevicePixelRatio = d.PixelRatio
		}},
		Func{ID: "connection", Fn: func(in Input, rec *model.Record) {
			c := DetectConnection(in.Env)
			rec.ConnectionState = c.State
			rec.ConnectionType = c.Type
			rec.DownlinkMbps = c.DownlinkMbps
			rec.RTTMs = c.RTTMs
		}},
		Func{ID: "session", Fn: func(in Input, rec *model.Record) {
			s := DetectSession(in.Env, in.Hints.AuthTokenKey, in.Now)
			rec.SessionState = s.State
			rec.TokenExpiresInSec = s.ExpiresInSec
			rec.TokenExpISO = s.ExpISO
		}},
	}
}
