package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/sitegraph"
	"github.com/soundprediction/sitegraph/pkg/config"
	"github.com/soundprediction/sitegraph/pkg/server/dto"
	"github.com/soundprediction/sitegraph/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	graph, err := sitegraph.NewClient(st, nil, quiet)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 0
	cfg.Server.Mode = gin.TestMode

	srv := New(cfg, graph, quiet)
	srv.Setup()
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	// Ingest a batch through the API, then read it back through every
	// query route.
	body := `{
		"items": [
			{
				"source_url": "https://www.motherson.com/contact/address-directory",
				"structured_facilities": [
					{"name": "Chakan Facility", "division": "SMP", "city": "Chakan",
					 "state": "Maharashtra", "status": "planned",
					 "expansion_type": "greenfield", "date": "2024-11-01"}
				]
			},
			{
				"source_url": "https://careers.motherson.com/openings",
				"structured_jobs": [
					{"title": "Assembly Line Operator", "posted_date": "2024-05-01"}
				]
			}
		]
	}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/items", strings.NewReader(body))
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest returned %d: %s", w.Code, w.Body.String())
	}

	for _, route := range []string{
		"/health",
		"/ready",
		"/api/v1/facilities",
		"/api/v1/facilities?state=Maharashtra&status=planned",
		"/api/v1/expansions",
		"/api/v1/expansions?date_from=2024-01-01",
		"/api/v1/jobs",
		"/api/v1/jobs?factory_only=true",
		"/api/v1/stats",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, route, nil)
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s returned %d: %s", route, w.Code, w.Body.String())
		}
	}
}

func TestExpansionsRejectBadDates(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/expansions?date_from=last-week", nil)
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestFacilitiesRouteReturnsData(t *testing.T) {
	srv := newTestServer(t)

	body := `{"items": [{"source_url": "https://example.com",
		"structured_facilities": [{"name": "Sanand Plant", "division": "MSWIL", "city": "Sanand"}]}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/items", strings.NewReader(body))
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ingest returned %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/facilities", nil)
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("facilities returned %d", w.Code)
	}

	var result dto.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.Success {
		t.Error("expected success")
	}
	data, ok := result.Data.([]interface{})
	if !ok || len(data) != 1 {
		t.Errorf("expected 1 facility in response, got %v", result.Data)
	}
}
