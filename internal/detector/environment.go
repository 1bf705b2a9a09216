package detector

import (
	"strings"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

var (
	testingMarkers = []string{"dev", "qa", "test"}
	stagingMarkers = []string{"stage", "staging", "preprod", "uat"}
)

// DetectEnvironment maps a page host name to its deployment tier.
// First match wins: loopback, then testing markers, then staging markers.
func DetectEnvironment(host string) model.Environment {
	host = strings.ToLower(host)
	switch {
	case strings.Contains(host, "localhost") || strings.HasPrefix(host, "127."):
		return model.EnvTesting
	case containsAny(host, testingMarkers):
		return model.EnvTesting
	case containsAny(host, stagingMarkers):
		return model.EnvStaging
	default:
		return model.EnvProduction
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
