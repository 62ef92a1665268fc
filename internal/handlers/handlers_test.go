package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v5"

	airspacecache "airspacecache"
	"airspacecache/internal/config"
	"airspacecache/internal/handlers"
	"airspacecache/internal/logging"
)

type memPrefs struct{ values map[string][]string }

func (m *memPrefs) GetStringSlice(key string) ([]string, error) { return m.values[key], nil }
func (m *memPrefs) SetStringSlice(key string, values []string) error {
	m.values[key] = values
	return nil
}

func newTestServer(t *testing.T) (*echo.Echo, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		Store: config.StoreConfig{
			Dir: t.TempDir(), FileName: "test.db",
			SizeLimitBytes: 100 * 1024 * 1024, SizeTargetBytes: 80 * 1024 * 1024,
			EvictionBatchSize: 50, GeometryTTL: 7 * 24 * time.Hour, TileMetadataTTL: 24 * time.Hour,
		},
		Ingest: config.IngestConfig{
			BaseURL: "http://unused", Timeout: 5 * time.Second, RetryAttempts: 1,
			RetryBaseDelay: time.Millisecond, StalenessWindow: 30 * 24 * time.Hour,
		},
	}
	eng, err := airspacecache.New(cfg, &memPrefs{values: map[string][]string{}}, logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	e := echo.New()
	handlers.New(eng, logging.Discard()).Register(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return e, srv
}

func TestListCountriesEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/countries")
	if err != nil {
		t.Fatalf("GET /api/countries: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var countries []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(countries) == 0 {
		t.Error("expected a non-empty country list")
	}
}

func TestSelectedCountriesRoundTripsOverHTTP(t *testing.T) {
	_, srv := newTestServer(t)

	body, _ := json.Marshal([]string{"FR", "IT"})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/countries/selected", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT selected: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/api/countries/selected")
	if err != nil {
		t.Fatalf("GET selected: %v", err)
	}
	defer resp2.Body.Close()
	var got []string
	if err := json.NewDecoder(resp2.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 2 || got[0] != "FR" || got[1] != "IT" {
		t.Errorf("expected [FR IT], got %v", got)
	}
}

func TestCacheStatisticsEndpoint(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/cache/statistics")
	if err != nil {
		t.Fatalf("GET statistics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestFetchPolygonsForViewportEndpointReturnsEmptyListNotNull(t *testing.T) {
	_, srv := newTestServer(t)

	body, _ := json.Marshal(map[string]any{
		"west": -1, "south": -1, "east": 1, "north": 1,
	})
	resp, err := http.Post(srv.URL+"/api/viewport", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST viewport: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var polys []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&polys); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if polys == nil {
		t.Error("expected an empty array, not a JSON null, for no matching polygons")
	}
}
