package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
)

type fakeProbeStore struct {
	pingErr   error
	schemaErr error
	version   int64
	dirty     bool
}

func (p fakeProbeStore) Ping(ctx context.Context) error {
	return p.pingErr
}

func (p fakeProbeStore) SchemaVersion(ctx context.Context) (int64, bool, error) {
	return p.version, p.dirty, p.schemaErr
}

func TestProbes(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name      string
		path      string
		store     fakeProbeStore
		expected  int
		wantError string
	}{
		{name: "liveness ignores database", path: "/healthz", store: fakeProbeStore{pingErr: down}, expected: 200},
		{name: "readiness with database", path: "/readyz", store: fakeProbeStore{version: 1}, expected: 200},
		{name: "readiness without database", path: "/readyz", store: fakeProbeStore{pingErr: down}, expected: 503, wantError: "database unavailable"},
		{name: "readiness before migrations", path: "/readyz", store: fakeProbeStore{schemaErr: down}, expected: 503, wantError: "schema not migrated"},
		{name: "readiness with dirty schema", path: "/readyz", store: fakeProbeStore{version: 1, dirty: true}, expected: 503, wantError: "schema migration incomplete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProbeHandler(tt.store, "simulated")
			app := fiber.New()
			app.Get("/healthz", h.Liveness)
			app.Get("/readyz", h.Readiness)

			req, _ := http.NewRequest("GET", tt.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.expected {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.expected)
			}

			var body struct {
				Status string `json:"status"`
				Error  string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestReadinessReportsSchemaAndMode(t *testing.T) {
	h := NewProbeHandler(fakeProbeStore{version: 3}, "live")
	app := fiber.New()
	app.Get("/readyz", h.Readiness)

	req, _ := http.NewRequest("GET", "/readyz", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Data struct {
			SchemaVersion int64  `json:"schemaVersion"`
			SERPMode      string `json:"serpMode"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.SchemaVersion != 3 || body.Data.SERPMode != "live" {
		t.Errorf("data = %+v, want version 3 in live mode", body.Data)
	}
}
