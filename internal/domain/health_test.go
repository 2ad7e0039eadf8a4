package domain_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/runnerkit/hello-service/internal/domain"
)

func TestHealthStatus_Constructors(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.HealthStatus
		wantCode int
		healthy  bool
	}{
		{"healthy maps to 200", domain.Healthy(domain.MsgHealthy), http.StatusOK, true},
		{"unhealthy maps to 500", domain.Unhealthy(domain.MsgDatabaseUnhealthy), http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.status.HTTPCode != tc.wantCode {
				t.Fatalf("expected code %d, got %d", tc.wantCode, tc.status.HTTPCode)
			}
			if tc.status.IsHealthy() != tc.healthy {
				t.Fatalf("expected IsHealthy=%v", tc.healthy)
			}
		})
	}
}

func TestHealthStatus_JSONOmitsHTTPCode(t *testing.T) {
	b, err := json.Marshal(domain.Unhealthy(domain.MsgDatabaseUnhealthy))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"status":"error","message":"Database connection failed"}`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}
}
