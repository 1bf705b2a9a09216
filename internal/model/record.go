// Package model defines the diagnostic record published to the feedback widget
// and the optional caller hints that steer its inference.
// These types are serialized to JSON and attached to feedback submissions.
package model

import (
	"encoding/json"
	"fmt"
)

// Unknown is the total default for every string facet that could not be inferred.
const Unknown = "Unknown"

// FailureMarker is set on the minimal record produced when assembly fails.
const FailureMarker = "buildCustomData_failed"

// HomeCountry is the ISO 3166-1 alpha-2 code mainAddressInAustria is derived from.
const HomeCountry = "AT"

// Environment is the deployment tier inferred from the page host.
type Environment string

const (
	EnvTesting    Environment = "testing"
	EnvStaging    Environment = "staging"
	EnvProduction Environment = "production"
)

// SessionState classifies the freshness of the session token.
type SessionState string

const (
	SessionActive       SessionState = "Active"
	SessionExpiringSoon SessionState = "ExpiringSoon"
	SessionExpired      SessionState = "Expired"
	SessionUnknown      SessionState = "Unknown"
)

type ConnectionState string

const (
	Online  ConnectionState = "Online"
	Offline ConnectionState = "Offline"
)

type Orientation string

const (
	Portrait  Orientation = "Portrait"
	Landscape Orientation = "Landscape"
)

type Theme string

const (
	Light Theme = "Light"
	Dark  Theme = "Dark"
)

type Platform string

const (
	MobileWeb  Platform = "Mobile Web"
	DesktopWeb Platform = "Desktop Web"
)

type UserKind string

const (
	Identified   UserKind = "Identified"
	Unidentified UserKind = "Unidentified"
)

// TriState is a boolean that may also be unknown.
// It encodes as JSON true, false or the string "Unknown".
type TriState int8

const (
	TriUnknown TriState = iota
	TriFalse
	TriTrue
)

// TriStateOf converts a known boolean.
func TriStateOf(v bool) TriState {
	if v {
		return TriTrue
	}
	return TriFalse
}

func (t TriState) String() string {
	switch t {
	case TriTrue:
		return "true"
	case TriFalse:
		return "false"
	default:
		return Unknown
	}
}

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case TriTrue:
		return []byte("true"), nil
	case TriFalse:
		return []byte("false"), nil
	default:
		return []byte(`"` + Unknown + `"`), nil
	}
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case bool:
		*t = TriStateOf(v)
	case string, nil:
		*t = TriUnknown
	default:
		return fmt.Errorf("tristate: unexpected JSON value %s", data)
	}
	return nil
}

// --- Record: the diagnostic snapshot ---

// Record is the diagnostic snapshot for one refresh cycle.
// It is built wholesale by the assembler and never mutated after delivery.
type Record struct {
	// Business/user context
	UserType             string   `json:"userType"`
	UserKind             UserKind `json:"userKind"`
	MainAddressCountry   string   `json:"mainAddressCountry"`
	MainAddressInAustria TriState `json:"mainAddressInAustria"`

	// Auth/session
	SessionState      SessionState `json:"sessionState"`
	TokenExpiresInSec *int64       `json:"tokenExpiresInSec"`
	TokenExpISO       *string      `json:"tokenExpIso"`

	// Device/runtime
	Platform         Platform    `json:"platform"`
	DeviceOS         string      `json:"deviceOS"`
	DeviceOSVersion  string      `json:"deviceOSVersion"`
	DeviceBrandModel string      `json:"deviceBrandModel"`
	Orientation      Orientation `json:"orientation"`
	Theme            Theme       `json:"theme"`
	ViewportPx       string      `json:"viewportPx"`
	ScreenPx         string      `json:"screenPx"`
	DevicePixelRatio float64     `json:"devicePixelRatio"`

	// Connection
	ConnectionState ConnectionState `json:"connectionState"`
	ConnectionType  string          `json:"connectionType"`
	DownlinkMbps    *float64        `json:"downlinkMbps"`
	RTTMs           *float64        `json:"rttMs"`

	// App/env
	RuntimeEnvironment Environment `json:"runtimeEnvironment"`
	PagePath           string      `json:"pagePath"`
	PageQuery          string      `json:"pageQuery"`
	BuildVersion       string      `json:"buildVersion"`

	// Error is only set on the minimal fallback record.
	Error string `json:"error,omitempty"`
}

// NewRecord returns a record with every field at its default.
func NewRecord() Record {
	return Record{
		UserType:             Unknown,
		UserKind:             Unidentified,
		MainAddressCountry:   Unknown,
		MainAddressInAustria: TriUnknown,
		SessionState:         SessionUnknown,
		Platform:             DesktopWeb,
		DeviceOS:             Unknown,
		DeviceOSVersion:      Unknown,
		DeviceBrandModel:     Unknown,
		Orientation:          Portrait,
		Theme:                Light,
		ViewportPx:           "0x0",
		ScreenPx:             "0x0",
		DevicePixelRatio:     1,
		ConnectionState:      Online,
		ConnectionType:       Unknown,
		RuntimeEnvironment:   EnvProduction,
		BuildVersion:         Unknown,
	}
}

// Failed reports whether this is the minimal fallback record.
func (r Record) Failed() bool {
	return r.Error != ""
}

// minimalRecord is the wire shape of a failed assembly.
type minimalRecord struct {
	RuntimeEnvironment Environment `json:"runtimeEnvironment"`
	PagePath           string      `json:"pagePath"`
	PageQuery          string      `json:"pageQuery"`
	BuildVersion       string      `json:"buildVersion"`
	Error              string      `json:"error"`
}

// MarshalJSON emits only the minimal field set for failed records.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(minimalRecord{
			RuntimeEnvironment: r.RuntimeEnvironment,
			PagePath:           r.PagePath,
			PageQuery:          r.PageQuery,
			BuildVersion:       r.BuildVersion,
			Error:              r.Error,
		})
	}
	type plain Record
	return json.Marshal(plain(r))
}
