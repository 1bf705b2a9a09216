package detector

import (
	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Connection groups the network facets of the record.
type Connection struct {
	State        model.ConnectionState
	Type         string
	DownlinkMbps *float64
	RTTMs        *float64
}

// DetectConnection reads the online flag and, when supported, the
// Network Information API. Absent values stay nil.
func DetectConnection(env browser.Env) Connection {
	c := Connection{State: model.Offline, Type: model.Unknown}
	if env.Online() {
		c.State = model.Online
	}

	info, ok := env.Connection()
	if !ok {
		return c
	}
	switch {
	case info.EffectiveType != "":
		c.Type = info.EffectiveType
	case info.Type != "":
		c.Type = info.Type
	}
	c.DownlinkMbps = copyFloat(info.Downlink)
	c.RTTMs = copyFloat(info.RTT)
	return c
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
