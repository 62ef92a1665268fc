package airspacecache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	airspacecache "airspacecache"
	"airspacecache/entities"
	"airspacecache/internal/config"
	"airspacecache/internal/logging"
)

type memPrefs struct {
	values map[string][]string
}

func newMemPrefs() *memPrefs { return &memPrefs{values: map[string][]string{}} }

func (m *memPrefs) GetStringSlice(key string) ([]string, error) { return m.values[key], nil }

func (m *memPrefs) SetStringSlice(key string, values []string) error {
	m.values[key] = values
	return nil
}

const sampleFeatureCollection = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"id": "outer",
			"geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]},
			"properties": {"name": "Outer", "type": 1, "lowerLimit": {"value": 5000, "unit": 1, "referenceDatum": 1}, "upperLimit": {"value": 10000, "unit": 1, "referenceDatum": 1}}
		},
		{
			"type": "Feature",
			"id": "inner",
			"geometry": {"type": "Polygon", "coordinates": [[[2,2],[8,2],[8,8],[2,8],[2,2]]]},
			"properties": {"name": "Inner", "type": 5, "lowerLimit": {"value": 1000, "unit": 1, "referenceDatum": 1}, "upperLimit": {"value": 4000, "unit": 1, "referenceDatum": 1}}
		}
	]
}`

func newTestEngine(t *testing.T, baseURL string) *airspacecache.Engine {
	t.Helper()
	cfg := &config.Config{
		Store: config.StoreConfig{
			Dir: t.TempDir(), FileName: "test.db",
			SizeLimitBytes: 100 * 1024 * 1024, SizeTargetBytes: 80 * 1024 * 1024,
			EvictionBatchSize: 50, GeometryTTL: 7 * 24 * time.Hour, TileMetadataTTL: 24 * time.Hour,
		},
		Ingest: config.IngestConfig{
			BaseURL: baseURL, Timeout: 5 * time.Second, RetryAttempts: 2,
			RetryBaseDelay: time.Millisecond, StalenessWindow: 30 * 24 * time.Hour,
		},
		Log: config.LogConfig{},
	}
	eng, err := airspacecache.New(cfg, newMemPrefs(), logging.Discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestListAvailableCountriesIsStaticData(t *testing.T) {
	eng := newTestEngine(t, "http://unused")
	list := eng.ListAvailableCountries()
	if len(list) == 0 {
		t.Fatal("expected a non-empty static country catalog")
	}
	for _, c := range list {
		if c.Code == "" || c.Name == "" {
			t.Errorf("country entry missing code/name: %+v", c)
		}
	}
}

func TestSelectedCountriesRoundTrips(t *testing.T) {
	eng := newTestEngine(t, "http://unused")

	if got, err := eng.SelectedCountries(); err != nil || len(got) != 0 {
		t.Fatalf("expected empty selection initially, got %v err %v", got, err)
	}

	if err := eng.SetSelectedCountries([]string{"FR", "CH"}); err != nil {
		t.Fatalf("SetSelectedCountries: %v", err)
	}
	got, err := eng.SelectedCountries()
	if err != nil {
		t.Fatalf("SelectedCountries: %v", err)
	}
	if len(got) != 2 || got[0] != "FR" || got[1] != "CH" {
		t.Errorf("expected [FR CH], got %v", got)
	}
}

func TestDownloadAndFetchPolygonsWithClipping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeatureCollection))
	}))
	defer srv.Close()

	eng := newTestEngine(t, srv.URL)
	ctx := context.Background()

	result, err := eng.DownloadCountry(ctx, "LF", nil)
	if err != nil {
		t.Fatalf("DownloadCountry: %v", err)
	}
	if !result.Success || result.AirspaceCount != 2 {
		t.Fatalf("unexpected download result: %+v", result)
	}
	if eng.Offline() {
		t.Error("expected Offline() false after a successful download")
	}
	if err := eng.SetSelectedCountries([]string{"LF"}); err != nil {
		t.Fatalf("SetSelectedCountries: %v", err)
	}

	req := entities.RenderRequest{
		Params: entities.ViewportParams{
			Bounds:          entities.Bounds{West: -1, South: -1, East: 11, North: 11},
			ClippingEnabled: true,
		},
		Opacity: 0.5,
	}
	polys, err := eng.FetchPolygonsForViewport(ctx, req, nil)
	if err != nil {
		t.Fatalf("FetchPolygonsForViewport: %v", err)
	}
	if len(polys) != 2 {
		t.Fatalf("expected 2 styled polygons, got %d", len(polys))
	}

	var outer *entities.StyledPolygon
	for i := range polys {
		if polys[i].AirspaceID == "LF-outer" {
			outer = &polys[i]
		}
	}
	if outer == nil {
		t.Fatalf("expected to find the outer polygon LF-outer in %+v", polys)
	}
	if len(outer.Holes) != 1 {
		t.Errorf("expected the outer (higher) polygon to gain one hole from the inner mask, got %d", len(outer.Holes))
	}
	for _, p := range polys {
		if p.Opacity != 0.5 {
			t.Errorf("expected opacity 0.5 to propagate to every styled polygon, got %v", p.Opacity)
		}
	}

	stats, err := eng.GetCacheStatistics(ctx)
	if err != nil {
		t.Fatalf("GetCacheStatistics: %v", err)
	}
	if stats.TotalGeometries != 2 {
		t.Errorf("expected 2 cached geometries, got %d", stats.TotalGeometries)
	}

	if err := eng.DeleteCountry(ctx, "LF"); err != nil {
		t.Fatalf("DeleteCountry: %v", err)
	}
	polysAfter, err := eng.FetchPolygonsForViewport(ctx, req, nil)
	if err != nil {
		t.Fatalf("FetchPolygonsForViewport after delete: %v", err)
	}
	if len(polysAfter) != 0 {
		t.Errorf("expected no polygons after deleting the only loaded country, got %d", len(polysAfter))
	}
}

func TestFetchPolygonsWithoutClippingPassesThroughRings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeatureCollection))
	}))
	defer srv.Close()

	eng := newTestEngine(t, srv.URL)
	ctx := context.Background()

	if _, err := eng.DownloadCountry(ctx, "LF", nil); err != nil {
		t.Fatalf("DownloadCountry: %v", err)
	}
	if err := eng.SetSelectedCountries([]string{"LF"}); err != nil {
		t.Fatalf("SetSelectedCountries: %v", err)
	}

	req := entities.RenderRequest{
		Params: entities.ViewportParams{
			Bounds:          entities.Bounds{West: -1, South: -1, East: 11, North: 11},
			ClippingEnabled: false,
		},
	}
	polys, err := eng.FetchPolygonsForViewport(ctx, req, nil)
	if err != nil {
		t.Fatalf("FetchPolygonsForViewport: %v", err)
	}
	if len(polys) != 2 {
		t.Fatalf("expected 2 styled polygons, got %d", len(polys))
	}
	for _, p := range polys {
		if len(p.Holes) != 0 {
			t.Errorf("%s: expected no holes when clipping is disabled, got %d", p.AirspaceID, len(p.Holes))
		}
		if p.CompletelyClipped {
			t.Errorf("%s: should never be marked completely clipped when clipping is disabled", p.AirspaceID)
		}
	}
}

// TestFetchPolygonsWithNoSelectedCountriesIsEmpty guards spec.md §8's
// end-to-end scenario 1: an empty selection matches no airspaces, even
// though data for other countries is cached and the viewport bounds
// are non-degenerate.
func TestFetchPolygonsWithNoSelectedCountriesIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeatureCollection))
	}))
	defer srv.Close()

	eng := newTestEngine(t, srv.URL)
	ctx := context.Background()

	if _, err := eng.DownloadCountry(ctx, "LF", nil); err != nil {
		t.Fatalf("DownloadCountry: %v", err)
	}
	// Deliberately never call SetSelectedCountries.

	req := entities.RenderRequest{
		Params: entities.ViewportParams{
			Bounds:          entities.Bounds{West: 0, South: 0, East: 1, North: 1},
			ClippingEnabled: false,
		},
	}
	polys, err := eng.FetchPolygonsForViewport(ctx, req, nil)
	if err != nil {
		t.Fatalf("FetchPolygonsForViewport: %v", err)
	}
	if len(polys) != 0 {
		t.Errorf("expected no polygons with an empty country selection, got %d", len(polys))
	}
}

func TestClearCacheRemovesEverything(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeatureCollection))
	}))
	defer srv.Close()

	eng := newTestEngine(t, srv.URL)
	ctx := context.Background()

	if _, err := eng.DownloadCountry(ctx, "LF", nil); err != nil {
		t.Fatalf("DownloadCountry: %v", err)
	}
	if err := eng.ClearCache(ctx); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	stats, err := eng.GetCacheStatistics(ctx)
	if err != nil {
		t.Fatalf("GetCacheStatistics: %v", err)
	}
	if stats.TotalGeometries != 0 {
		t.Errorf("expected an empty cache after ClearCache, got %d geometries", stats.TotalGeometries)
	}
}
