package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/runnerkit/hello-service/internal/api"
	"github.com/runnerkit/hello-service/internal/config"
	"github.com/runnerkit/hello-service/internal/domain"
	"github.com/runnerkit/hello-service/internal/metrics"
	"github.com/runnerkit/hello-service/internal/ratelimiter"
	"github.com/runnerkit/hello-service/internal/service"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubLocator struct {
	prefix  string
	objects map[string]bool
	err     error
}

func escapes(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return true
		}
	}
	return name == ""
}

func (l stubLocator) Exists(_ context.Context, name string) (bool, error) {
	if escapes(name) {
		return false, domain.ErrInvalidKey
	}
	if l.err != nil {
		return false, l.err
	}
	return l.objects[name], nil
}

func (l stubLocator) URL(name string) (string, error) {
	if escapes(name) {
		return "", domain.ErrInvalidKey
	}
	return "https://cdn.example.com/" + l.prefix + name, nil
}

type routerOpts struct {
	dbErr      error
	storageErr error
	probeRate  int
	mediaErr   error
}

func newRouter(t *testing.T, o routerOpts) http.Handler {
	t.Helper()
	cfg := &config.Config{
		AllowedHosts: []string{"example.com", "*.apprunner.aws"},
		Environment:  "test",
		HTTPPort:     "8080",
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := service.NewHealthService(
		stubPinger{o.dbErr},
		stubPinger{o.storageErr},
		"NO_SECRET",
		zap.NewNop(),
		m.ProbeHook(),
	)
	return api.NewRouter(cfg, api.Deps{
		Health:  svc,
		Media:   stubLocator{objects: map[string]bool{"avatars/a.png": true}, err: o.mediaErr},
		Static:  stubLocator{prefix: "static/"},
		Limiter: ratelimiter.New(o.probeRate),
		Metrics: reg,
		Logger:  zap.NewNop(),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouter_Liveness(t *testing.T) {
	h := newRouter(t, routerOpts{dbErr: errors.New("database down")})

	for _, path := range []string{"/health", "/health/"} {
		t.Run(path, func(t *testing.T) {
			rec := get(h, path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			want := `{"status":"ok","message":"Health check successful"}`
			if got := rec.Body.String(); got != want {
				t.Fatalf("expected %q, got %q", want, got)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("unexpected content type %s", ct)
			}
		})
	}
}

func TestRouter_Readiness(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantCode int
		wantBody string
	}{
		{
			name:     "reachable database",
			wantCode: http.StatusOK,
			wantBody: `{"status":"ok","message":"Database connection successful"}`,
		},
		{
			name:     "invalid host",
			dbErr:    errors.New("dial tcp: lookup invalid_host: no such host"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"status":"error","message":"Database connection failed"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newRouter(t, routerOpts{dbErr: tc.dbErr})
			for _, path := range []string{"/health/db/", "/health/db"} {
				rec := get(h, path)
				if rec.Code != tc.wantCode {
					t.Fatalf("%s: expected %d, got %d", path, tc.wantCode, rec.Code)
				}
				if got := rec.Body.String(); got != tc.wantBody {
					t.Fatalf("%s: expected %q, got %q", path, tc.wantBody, got)
				}
				if strings.Contains(rec.Body.String(), "invalid_host") {
					t.Fatal("underlying error leaked into the response")
				}
			}
		})
	}
}

func TestRouter_StorageReadiness(t *testing.T) {
	rec := get(newRouter(t, routerOpts{storageErr: errors.New("AccessDenied")}), "/health/storage/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	want := `{"status":"error","message":"Storage connection failed"}`
	if got := rec.Body.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRouter_ResponsesAreByteIdentical(t *testing.T) {
	h := newRouter(t, routerOpts{})
	for _, path := range []string{"/", "/health", "/health/db/"} {
		first := get(h, path).Body.String()
		for i := 0; i < 3; i++ {
			if got := get(h, path).Body.String(); got != first {
				t.Fatalf("%s: expected identical bodies, got %q then %q", path, first, got)
			}
		}
	}
}

func TestRouter_Hello(t *testing.T) {
	h := newRouter(t, routerOpts{})
	for _, path := range []string{"/", "/home/"} {
		rec := get(h, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Hello World") {
			t.Fatalf("%s: expected greeting, got %q", path, rec.Body.String())
		}
	}
}

func TestRouter_Info(t *testing.T) {
	rec := get(newRouter(t, routerOpts{}), "/info")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`"message":"Hello from AWS App Runner!"`, `"environment":"test"`, `"port":"8080"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestRouter_RejectsDisallowedHost(t *testing.T) {
	h := newRouter(t, routerOpts{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "attacker.test"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Host = "svc-123.eu-west-1.apprunner.aws"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected wildcard host to pass, got %d", rec.Code)
	}
}

func TestRouter_ProbeRateLimit(t *testing.T) {
	h := newRouter(t, routerOpts{probeRate: 2})

	codes := []int{get(h, "/health/db/").Code, get(h, "/health/storage/").Code, get(h, "/health/db/").Code}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 200, 200, 429; got %v", codes)
	}

	// Liveness is never limited.
	if rec := get(h, "/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected liveness to bypass limiter, got %d", rec.Code)
	}
}

func TestRouter_Media(t *testing.T) {
	h := newRouter(t, routerOpts{})

	rec := get(h, "/media/avatars/a.png")
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://cdn.example.com/avatars/a.png" {
		t.Fatalf("unexpected location %s", loc)
	}

	if rec := get(h, "/media/missing.png"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	if rec := get(newRouter(t, routerOpts{mediaErr: errors.New("timeout")}), "/media/a.png"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on store failure, got %d", rec.Code)
	}

	rec = get(h, "/static/css/site.css")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("expected 301, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://cdn.example.com/static/css/site.css" {
		t.Fatalf("unexpected location %s", loc)
	}
}

func TestRouter_RejectsEscapingObjectKeys(t *testing.T) {
	h := newRouter(t, routerOpts{})

	for _, path := range []string{"/static/../private/report.pdf", "/static/css/../../private/report.pdf", "/media/../private/report.pdf"} {
		rec := get(h, path)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "" {
			t.Fatalf("%s: expected no redirect, got %s", path, loc)
		}
	}
}

func TestRouter_MetricsAndDocs(t *testing.T) {
	h := newRouter(t, routerOpts{})
	get(h, "/health/db/")

	rec := get(h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `health_checks_total{probe="database",result="ok"} 1`) {
		t.Fatalf("expected probe counter in scrape, got:\n%s", rec.Body.String())
	}

	rec = get(h, "/swagger/openapi.yaml")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/health/db/") {
		t.Fatalf("expected embedded OpenAPI document, got %d", rec.Code)
	}

	if rec := get(h, "/swagger"); rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect to swagger UI, got %d", rec.Code)
	}
}

func TestRouter_SecurityHeadersOnEveryResponse(t *testing.T) {
	rec := get(newRouter(t, routerOpts{}), "/health")
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("expected X-Frame-Options header")
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Fatal("expected correlation id header")
	}
}
