package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"solardash/internal/config"
)

func newTestServer(token string) *Server {
	s := New(&config.Config{BaseURL: "http://localhost:3000", APIToken: token})
	s.RegisterRoutes(Deps{})
	return s
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	s := newTestServer("")

	req, _ := http.NewRequest("GET", "/api/nope", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var body struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "error" || body.Error == "" {
		t.Errorf("body = %+v, want error envelope", body)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer("")

	for _, path := range []string{"/healthz", "/metrics"} {
		req, _ := http.NewRequest("GET", path, nil)
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("%s: request failed: %v", path, err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("%s: status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestMetricsExposition(t *testing.T) {
	s := newTestServer("")

	req, _ := http.NewRequest("GET", "/metrics", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output should include Go runtime metrics")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer("s3cret")

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/api/competitor-tracking"},
		{"POST", "/api/competitor-tracking/schedule"},
		{"POST", "/api/keyword-discovery"},
		{"POST", "/api/keywords/bootstrap"},
		{"GET", "/api/live-rankings"},
		{"POST", "/api/live-rankings"},
		{"POST", "/api/business-config"},
		{"GET", "/api/credentials/google"},
		{"POST", "/api/credentials/google/refresh"},
		{"DELETE", "/api/credentials/google"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			req, _ := http.NewRequest(rt.method, rt.path, nil)
			resp, err := s.App.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != 401 {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}

func TestKeywordDiscoveryIsPublic(t *testing.T) {
	s := newTestServer("s3cret")

	req, _ := http.NewRequest("GET", "/api/keyword-discovery?area=Austin,%20TX", nil)
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestRateLimitSkipsProbes(t *testing.T) {
	s := New(&config.Config{BaseURL: "http://localhost:3000", RateLimit: 2})
	s.RegisterRoutes(Deps{})

	status := func(path string) int {
		req, _ := http.NewRequest("GET", path, nil)
		resp, err := s.App.Test(req)
		if err != nil {
			t.Fatalf("%s: request failed: %v", path, err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 2; i++ {
		if got := status("/api/keyword-discovery?area=Austin,%20TX"); got != 200 {
			t.Fatalf("request %d: status = %d, want 200", i+1, got)
		}
	}
	if got := status("/api/keyword-discovery?area=Austin,%20TX"); got != 429 {
		t.Errorf("over budget: status = %d, want 429", got)
	}
	if got := status("/healthz"); got != 200 {
		t.Errorf("healthz over budget: status = %d, want 200", got)
	}
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{name: "falls back to base url", cfg: config.Config{BaseURL: "http://localhost:3000"}, want: []string{"http://localhost:3000"}},
		{name: "splits and trims", cfg: config.Config{BaseURL: "http://x", CORSOrigins: "https://a.com, https://b.com,"}, want: []string{"https://a.com", "https://b.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allowedOrigins(&tt.cfg)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("allowedOrigins() = %v, want %v", got, tt.want)
			}
		})
	}
}
