package assembler

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/detector"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

var fixedNow = time.Date(2025, 9, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func tokenExpiringIn(d time.Duration) string {
	body := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, fixedNow.Add(d).Unix())))
	return "eyJhbGciOiJub25lIn0." + body + ".sig"
}

func pixelEnv() *browser.Snapshot {
	downlink := 8.5
	return &browser.Snapshot{
		Host:     "qa.shop.example.com",
		Path:     "/track",
		Query:    "?id=42",
		UA:       "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
		IsOnline: true,
		Network:  &browser.NetworkInfo{EffectiveType: "4g", Downlink: &downlink},
		Geometry: browser.Viewport{
			InnerWidth: 412, InnerHeight: 915,
			ClientWidth: 412, ClientHeight: 800,
			ScreenWidth: 1080, ScreenHeight: 2400,
			PixelRatio: 2.625,
		},
		ColorScheme: "dark",
		MetaTags: map[string]string{
			MetaUserCountry: "DE",
			MetaUserType:    "Private",
			MetaAppBuild:    "meta-build",
		},
		Storage: map[string]string{"access_token": tokenExpiringIn(time.Hour)},
	}
}

func TestBuildFullRecord(t *testing.T) {
	a := New(pixelEnv(), model.Hints{}, WithClock(clock))
	rec := a.Build()

	if rec.Failed() {
		t.Fatalf("unexpected fallback record: %+v", rec)
	}

	checks := []struct {
		field string
		got   interface{}
		want  interface{}
	}{
		{"runtimeEnvironment", rec.RuntimeEnvironment, model.EnvTesting},
		{"pagePath", rec.PagePath, "/track"},
		{"pageQuery", rec.PageQuery, "?id=42"},
		{"deviceOS", rec.DeviceOS, "Android"},
		{"deviceOSVersion", rec.DeviceOSVersion, "14"},
		{"deviceBrandModel", rec.DeviceBrandModel, "Google Pixel 8"},
		{"platform", rec.Platform, model.MobileWeb},
		{"orientation", rec.Orientation, model.Portrait},
		{"theme", rec.Theme, model.Dark},
		{"viewportPx", rec.ViewportPx, "412x800"},
		{"screenPx", rec.ScreenPx, "1080x2400"},
		{"devicePixelRatio", rec.DevicePixelRatio, 2.625},
		{"connectionState", rec.ConnectionState, model.Online},
		{"connectionType", rec.ConnectionType, "4g"},
		{"sessionState", rec.SessionState, model.SessionActive},
		{"mainAddressCountry", rec.MainAddressCountry, "DE"},
		{"mainAddressInAustria", rec.MainAddressInAustria, model.TriFalse},
		{"userType", rec.UserType, "Private"},
		{"userKind", rec.UserKind, model.Unidentified},
		{"buildVersion", rec.BuildVersion, "meta-build"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
	if rec.DownlinkMbps == nil || *rec.DownlinkMbps != 8.5 {
		t.Errorf("downlinkMbps = %v, want 8.5", rec.DownlinkMbps)
	}
	if rec.RTTMs != nil {
		t.Errorf("rttMs = %v, want nil", *rec.RTTMs)
	}
}

func TestHintsTakePrecedence(t *testing.T) {
	hints := model.Hints{
		UserType:           "Business",
		UserID:             "12345",
		MainAddressCountry: "at",
		BuildVersion:       "2025.09.15.1234",
	}
	rec := New(pixelEnv(), hints, WithClock(clock)).Build()

	if rec.UserType != "Business" {
		t.Errorf("userType = %q, want Business", rec.UserType)
	}
	if rec.UserKind != model.Identified {
		t.Errorf("userKind = %s, want Identified", rec.UserKind)
	}
	if rec.MainAddressCountry != "at" {
		t.Errorf("mainAddressCountry = %q, want at", rec.MainAddressCountry)
	}
	if rec.MainAddressInAustria != model.TriTrue {
		t.Errorf("mainAddressInAustria = %v, want true", rec.MainAddressInAustria)
	}
	if rec.BuildVersion != "2025.09.15.1234" {
		t.Errorf("buildVersion = %q", rec.BuildVersion)
	}
}

func TestDefaultsWithoutHintsOrMeta(t *testing.T) {
	rec := New(&browser.Snapshot{Host: "www.example.com"}, model.Hints{}, WithClock(clock)).Build()

	if rec.MainAddressCountry != model.Unknown || rec.MainAddressInAustria != model.TriUnknown {
		t.Errorf("country = %q / %v, want Unknown", rec.MainAddressCountry, rec.MainAddressInAustria)
	}
	if rec.UserType != model.Unknown || rec.BuildVersion != model.Unknown {
		t.Errorf("userType = %q buildVersion = %q, want Unknown", rec.UserType, rec.BuildVersion)
	}
	if rec.SessionState != model.SessionUnknown || rec.TokenExpiresInSec != nil || rec.TokenExpISO != nil {
		t.Errorf("session = %s, want Unknown with nil timings", rec.SessionState)
	}
	if rec.ConnectionState != model.Offline {
		t.Errorf("connectionState = %s, want Offline", rec.ConnectionState)
	}
	if rec.RuntimeEnvironment != model.EnvProduction {
		t.Errorf("runtimeEnvironment = %s, want production", rec.RuntimeEnvironment)
	}
}

func TestInAustria(t *testing.T) {
	tests := []struct {
		country string
		want    model.TriState
	}{
		{"AT", model.TriTrue},
		{"at", model.TriTrue},
		{"At", model.TriTrue},
		{"DE", model.TriFalse},
		{"AUT", model.TriFalse},
		{model.Unknown, model.TriUnknown},
		{"", model.TriUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			if got := InAustria(tt.country); got != tt.want {
				t.Errorf("InAustria(%q) = %v, want %v", tt.country, got, tt.want)
			}
		})
	}
}

func TestBuildRecoversFromDetectorPanic(t *testing.T) {
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	boom := detector.Func{ID: "boom", Fn: func(detector.Input, *model.Record) {
		panic("userAgentData is not an object")
	}}

	env := &browser.Snapshot{Host: "uat.example.com", Path: "/pricing", Query: "?plan=pro"}
	hints := model.Hints{BuildVersion: "b-7", UserType: "Business"}

	a := New(env, hints, WithClock(clock), WithLogger(log),
		WithDetectors(append(detector.Default(), boom)...))
	rec := a.Build()

	if !rec.Failed() || rec.Error != model.FailureMarker {
		t.Fatalf("expected failure marker, got %+v", rec)
	}
	if rec.RuntimeEnvironment != model.EnvStaging {
		t.Errorf("runtimeEnvironment = %s, want staging", rec.RuntimeEnvironment)
	}
	if rec.PagePath != "/pricing" || rec.PageQuery != "?plan=pro" {
		t.Errorf("page = %q%q", rec.PagePath, rec.PageQuery)
	}
	if rec.BuildVersion != "b-7" {
		t.Errorf("buildVersion = %q, want b-7", rec.BuildVersion)
	}
	if rec.UserType != "" {
		t.Errorf("minimal record must not carry userType, got %q", rec.UserType)
	}
	if !strings.Contains(logs.String(), "falling back") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

// panickyEnv panics on every access, including Location.
type panickyEnv struct{ browser.Snapshot }

func (panickyEnv) Location() browser.Location { panic("location unavailable") }

func TestFallbackSurvivesBrokenLocation(t *testing.T) {
	rec := New(&panickyEnv{}, model.Hints{}, WithClock(clock)).Build()

	if !rec.Failed() {
		t.Fatal("expected fallback record")
	}
	if rec.RuntimeEnvironment != model.EnvProduction {
		t.Errorf("runtimeEnvironment = %s, want production", rec.RuntimeEnvironment)
	}
	if rec.BuildVersion != model.Unknown {
		t.Errorf("buildVersion = %q, want Unknown", rec.BuildVersion)
	}
}

func TestFallbackEnvironmentMatchesDetector(t *testing.T) {
	hosts := []string{"localhost", "127.0.0.1", "dev.example.com", "qa.example.com",
		"stage.example.com", "preprod.example.com", "uat.example.com", "www.example.com", ""}
	for _, h := range hosts {
		if got, want := fallbackEnvironment(h), detector.DetectEnvironment(h); got != want {
			t.Errorf("fallbackEnvironment(%q) = %s, detector says %s", h, got, want)
		}
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := New(pixelEnv(), model.Hints{UserID: "1"}, WithClock(clock))

	first := a.Build()
	second := a.Build()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("records differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
