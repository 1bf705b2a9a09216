package detector

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

func TestDetectEnvironment(t *testing.T) {
	tests := []struct {
		host string
		want model.Environment
	}{
		{"localhost", model.EnvTesting},
		{"LOCALHOST", model.EnvTesting},
		{"127.0.0.1", model.EnvTesting},
		{"qa.example.com", model.EnvTesting},
		{"dev-portal.example.com", model.EnvTesting},
		{"shop.test.example.com", model.EnvTesting},
		{"stage.example.com", model.EnvStaging},
		{"staging.example.com", model.EnvStaging},
		{"preprod.example.com", model.EnvStaging},
		{"uat.example.com", model.EnvStaging},
		{"www.example.com", model.EnvProduction},
		{"", model.EnvProduction},
		// testing markers win over staging markers
		{"qa-staging.example.com", model.EnvTesting},
		// substring match: "devices" contains "dev"
		{"devices.example.com", model.EnvTesting},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := DetectEnvironment(tt.host); got != tt.want {
				t.Errorf("DetectEnvironment(%q) = %s, want %s", tt.host, got, tt.want)
			}
		})
	}
}
