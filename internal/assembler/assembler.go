// Package assembler composes every detector's output and the caller hints
// into one diagnostic record, and never lets a detector failure escape.
package assembler

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/detector"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Page metadata consulted when hints are absent.
const (
	MetaUserCountry = "user-country"
	MetaUserType    = "user-type"
	MetaAppBuild    = "app-build"
)

// Assembler builds diagnostic records from an environment and hints.
type Assembler struct {
	env       browser.Env
	hints     model.Hints
	detectors []detector.Detector
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithDetectors replaces the default detector set.
func WithDetectors(ds ...detector.Detector) Option {
	return func(a *Assembler) { a.detectors = ds }
}

// WithClock sets the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithLogger sets the logger used to surface assembly failures.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Assembler) { a.log = log }
}

// New creates an Assembler over env. Hints are read once here.
func New(env browser.Env, hints model.Hints, opts ...Option) *Assembler {
	a := &Assembler{
		env:       env,
		hints:     hints,
		detectors: detector.Default(),
		now:       time.Now,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Hints returns the caller hints this assembler was created with.
func (a *Assembler) Hints() model.Hints {
	return a.hints
}

// Build runs every detector and returns a complete record. If any detector
// panics, Build returns the minimal fallback record instead.
func (a *Assembler) Build() (rec model.Record) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Warn().
				Str("component", "assembler").
				Str("cause", fmt.Sprint(r)).
				Msg("build failed, falling back to minimal record")
			rec = a.Fallback()
		}
	}()

	in := detector.Input{Env: a.env, Hints: a.hints, Now: a.now()}
	rec = model.NewRecord()
	for _, d := range a.detectors {
		d.Detect(in, &rec)
	}
	a.applyIdentity(&rec)
	return rec
}

// applyIdentity merges hints, page metadata and defaults for the business
// facets: hints > meta tags > Unknown.
func (a *Assembler) applyIdentity(rec *model.Record) {
	rec.MainAddressCountry = firstNonEmpty(a.hints.MainAddressCountry, a.meta(MetaUserCountry), model.Unknown)
	rec.UserType = firstNonEmpty(a.hints.UserType, a.meta(MetaUserType), model.Unknown)
	rec.BuildVersion = firstNonEmpty(a.hints.BuildVersion, a.meta(MetaAppBuild), model.Unknown)

	rec.UserKind = model.Unidentified
	if a.hints.Identified() {
		rec.UserKind = model.Identified
	}
	rec.MainAddressInAustria = InAustria(rec.MainAddressCountry)
}

func (a *Assembler) meta(name string) string {
	v, _ := a.env.Meta(name)
	return v
}

// InAustria derives the home-country tri-state from a country code.
func InAustria(country string) model.TriState {
	if country == "" || country == model.Unknown {
		return model.TriUnknown
	}
	return model.TriStateOf(strings.EqualFold(country, model.HomeCountry))
}

// Fallback returns the minimal record: environment, page location, build
// version and the failure marker. It does not go through the detector set.
func (a *Assembler) Fallback() model.Record {
	loc := a.safeLocation()
	return model.Record{
		RuntimeEnvironment: fallbackEnvironment(loc.Host),
		PagePath:           loc.Path,
		PageQuery:          loc.Query,
		BuildVersion:       firstNonEmpty(a.hints.BuildVersion, model.Unknown),
		Error:              model.FailureMarker,
	}
}

func (a *Assembler) safeLocation() (loc browser.Location) {
	defer func() {
		if r := recover(); r != nil {
			loc = browser.Location{}
		}
	}()
	return a.env.Location()
}

// fallbackEnvironment repeats the environment policy so the fallback path
// does not depend on the detector package succeeding.
func fallbackEnvironment(host string) model.Environment {
	host = strings.ToLower(host)
	has := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(host, s) {
				return true
			}
		}
		return false
	}
	switch {
	case has("localhost") || strings.HasPrefix(host, "127."):
		return model.EnvTesting
	case has("dev", "qa", "test"):
		return model.EnvTesting
	case has("stage", "staging", "preprod", "uat"):
		return model.EnvStaging
	}
	return model.EnvProduction
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
