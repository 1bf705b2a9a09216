package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Hints are optional values supplied by the host application.
// Every field is optional; present values take precedence over heuristics.
type Hints struct {
	UserType           string `json:"userType,omitempty"`
	UserID             any    `json:"userId,omitempty"` // presence => Identified
	MainAddressCountry string `json:"mainAddressCountry,omitempty"`
	BuildVersion       string `json:"buildVersion,omitempty"`
	AuthTokenKey       string `json:"authTokenKey,omitempty"`
}

// Identified reports whether a truthy user id was supplied.
func (h Hints) Identified() bool {
	switch v := h.UserID.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// ParseHints decodes a hints JSON object. Empty input yields zero hints.
func ParseHints(data []byte) (Hints, error) {
	var h Hints
	if len(strings.TrimSpace(string(data))) == 0 {
		return h, nil
	}
	if err := json.Unmarshal(data, &h); err != nil {
		return Hints{}, fmt.Errorf("parse hints: %w", err)
	}
	return h, nil
}

// LoadHints reads a hints JSON file.
func LoadHints(path string) (Hints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Hints{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseHints(data)
}
