package catalog_test

import (
	"context"
	"testing"
	"time"

	"airspacecache/entities"
	"airspacecache/internal/catalog"
	"airspacecache/internal/config"
	"airspacecache/internal/logging"
	"airspacecache/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := config.StoreConfig{
		Dir:               t.TempDir(),
		FileName:          "test.db",
		SizeLimitBytes:    100 * 1024 * 1024,
		SizeTargetBytes:   80 * 1024 * 1024,
		EvictionBatchSize: 50,
		GeometryTTL:       7 * 24 * time.Hour,
		TileMetadataTTL:   24 * time.Hour,
	}
	s, err := store.Open(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func square() entities.Ring {
	return entities.Ring{{Lng: 0, Lat: 0}, {Lng: 1, Lat: 0}, {Lng: 1, Lat: 1}, {Lng: 0, Lat: 1}}
}

func testAirspace(id string) entities.Airspace {
	now := time.Now().UnixMilli()
	return entities.Airspace{
		ID: id, Name: id, TypeCode: entities.TypeCTR,
		Rings: []entities.Ring{square()},
		Lower: entities.AltitudeLimit{Feet: 0}, Upper: entities.AltitudeLimit{Feet: 1000},
		FetchTimeMs: now, LastAccessMs: now,
	}
}

func TestPutCountryMetadataAndCachedCountries(t *testing.T) {
	s := openTestStore(t)
	c := catalog.New(s, 30*24*time.Hour, logging.Discard())
	ctx := context.Background()

	rec := entities.CountryRecord{CountryCode: "LF", AirspaceCount: 2, FetchTimeMs: time.Now().UnixMilli()}
	if err := c.PutCountryMetadata(ctx, rec); err != nil {
		t.Fatalf("PutCountryMetadata: %v", err)
	}

	countries, err := c.CachedCountries(ctx)
	if err != nil {
		t.Fatalf("CachedCountries: %v", err)
	}
	if len(countries) != 1 || countries[0].CountryCode != "LF" {
		t.Errorf("unexpected countries: %+v", countries)
	}
}

func TestPutCountryMappingsReplacesSet(t *testing.T) {
	s := openTestStore(t)
	c := catalog.New(s, 30*24*time.Hour, logging.Discard())
	ctx := context.Background()

	if err := s.PutBatch(ctx, []entities.Airspace{testAirspace("a1"), testAirspace("a2"), testAirspace("a3")}); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}
	if err := c.PutCountryMetadata(ctx, entities.CountryRecord{CountryCode: "LF", FetchTimeMs: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("PutCountryMetadata: %v", err)
	}

	if err := c.PutCountryMappings(ctx, "LF", []string{"a1", "a2"}); err != nil {
		t.Fatalf("PutCountryMappings: %v", err)
	}
	ids, err := c.IDsForCountry(ctx, "LF")
	if err != nil {
		t.Fatalf("IDsForCountry: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %v", ids)
	}

	// Replacing the set with just a3 drops a1 and a2.
	if err := c.PutCountryMappings(ctx, "LF", []string{"a3"}); err != nil {
		t.Fatalf("PutCountryMappings replace: %v", err)
	}
	ids, err = c.IDsForCountry(ctx, "LF")
	if err != nil {
		t.Fatalf("IDsForCountry: %v", err)
	}
	if len(ids) != 1 || ids[0] != "a3" {
		t.Errorf("expected mapping set replaced with just a3, got %v", ids)
	}
}

func TestIDsForCountriesUnion(t *testing.T) {
	s := openTestStore(t)
	c := catalog.New(s, 30*24*time.Hour, logging.Discard())
	ctx := context.Background()

	if err := s.PutBatch(ctx, []entities.Airspace{testAirspace("a1"), testAirspace("a2")}); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}
	for _, code := range []string{"LF", "ED"} {
		if err := c.PutCountryMetadata(ctx, entities.CountryRecord{CountryCode: code, FetchTimeMs: time.Now().UnixMilli()}); err != nil {
			t.Fatalf("PutCountryMetadata: %v", err)
		}
	}
	if err := c.PutCountryMappings(ctx, "LF", []string{"a1"}); err != nil {
		t.Fatalf("PutCountryMappings: %v", err)
	}
	if err := c.PutCountryMappings(ctx, "ED", []string{"a2"}); err != nil {
		t.Fatalf("PutCountryMappings: %v", err)
	}

	ids, err := c.IDsForCountries(ctx, []string{"LF", "ED"})
	if err != nil {
		t.Fatalf("IDsForCountries: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected union of 2 ids, got %v", ids)
	}
}

func TestDeleteCountryCascadesAndCleanOrphans(t *testing.T) {
	s := openTestStore(t)
	c := catalog.New(s, 30*24*time.Hour, logging.Discard())
	ctx := context.Background()

	if err := s.PutBatch(ctx, []entities.Airspace{testAirspace("a1")}); err != nil {
		t.Fatalf("PutBatch: %v", err)
	}
	if err := c.PutCountryMetadata(ctx, entities.CountryRecord{CountryCode: "LF", FetchTimeMs: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("PutCountryMetadata: %v", err)
	}
	if err := c.PutCountryMappings(ctx, "LF", []string{"a1"}); err != nil {
		t.Fatalf("PutCountryMappings: %v", err)
	}

	if err := c.DeleteCountry(ctx, "LF"); err != nil {
		t.Fatalf("DeleteCountry: %v", err)
	}

	removed, err := c.CleanOrphans(ctx)
	if err != nil {
		t.Fatalf("CleanOrphans: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 orphan removed, got %d", removed)
	}

	got, err := s.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Error("expected orphaned airspace to be gone")
	}
}

func TestNeedsUpdate(t *testing.T) {
	s := openTestStore(t)
	c := catalog.New(s, 24*time.Hour, logging.Discard())
	ctx := context.Background()

	needs, err := c.NeedsUpdate(ctx, "ZZ")
	if err != nil {
		t.Fatalf("NeedsUpdate: %v", err)
	}
	if !needs {
		t.Error("expected an absent country to need an update")
	}

	if err := c.PutCountryMetadata(ctx, entities.CountryRecord{CountryCode: "LF", FetchTimeMs: time.Now().UnixMilli()}); err != nil {
		t.Fatalf("PutCountryMetadata: %v", err)
	}
	needs, err = c.NeedsUpdate(ctx, "LF")
	if err != nil {
		t.Fatalf("NeedsUpdate: %v", err)
	}
	if needs {
		t.Error("expected a freshly fetched country to not need an update")
	}

	stale := time.Now().Add(-48 * time.Hour).UnixMilli()
	if err := c.PutCountryMetadata(ctx, entities.CountryRecord{CountryCode: "LF", FetchTimeMs: stale}); err != nil {
		t.Fatalf("PutCountryMetadata: %v", err)
	}
	needs, err = c.NeedsUpdate(ctx, "LF")
	if err != nil {
		t.Fatalf("NeedsUpdate: %v", err)
	}
	if !needs {
		t.Error("expected a stale country to need an update")
	}
}
