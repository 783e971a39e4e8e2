package handlers

import (
	"testing"

	"github.com/eduzayn/lms-edunexia-sub001/internal/config"
	"github.com/eduzayn/lms-edunexia-sub001/internal/models"
)

func TestNewCasdoorAuthMiddlewareClientConfig(t *testing.T) {
	cfg := config.CasdoorConfig{
		Endpoint:     "https://auth.example.com",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		Cert:         "cert-pem",
		Organization: "edunexia",
		Application:  "assessment-service",
	}

	cam := NewCasdoorAuthMiddleware(cfg, nil)

	if cam.client.OrganizationName != "edunexia" {
		t.Errorf("OrganizationName = %q, want edunexia", cam.client.OrganizationName)
	}
	if cam.client.ApplicationName != "assessment-service" {
		t.Errorf("ApplicationName = %q, want assessment-service", cam.client.ApplicationName)
	}
	if cam.client.Endpoint != cfg.Endpoint {
		t.Errorf("Endpoint = %q, want %q", cam.client.Endpoint, cfg.Endpoint)
	}
}

func TestMapCasdoorRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.UserRole
	}{
		{"admin", models.RoleAdmin},
		{"Administrator", models.RoleAdmin},
		{"teacher", models.RoleTeacher},
		{"Instructor", models.RoleTeacher},
		{"educator", models.RoleTeacher},
		{"student", models.RoleStudent},
		{"", models.RoleStudent},
		{"anything-else", models.RoleStudent},
	}

	for _, tt := range tests {
		if got := mapCasdoorRole(tt.in); got != tt.want {
			t.Errorf("mapCasdoorRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
