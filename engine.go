// Package airspacecache is the facade implementing spec.md §6's
// inbound API, wiring every component into the data flow spec.md §2
// describes: Ingestor -> (CoordCodec, AltitudeResolver) ->
// GeometryStore + CountryCatalog; render request -> ViewportQuery ->
// GeometryStore -> Clipper -> StyleResolver -> polygon list.
// CountryCatalog scopes ViewportQuery to the user's currently loaded
// countries via ViewportParams.CountryCodes.
package airspacecache

import (
	"context"
	"fmt"
	"log/slog"

	"airspacecache/entities"
	"airspacecache/interfaces"
	"airspacecache/internal/catalog"
	"airspacecache/internal/clip"
	"airspacecache/internal/config"
	"airspacecache/internal/httpclient"
	"airspacecache/internal/ingest"
	"airspacecache/internal/logging"
	"airspacecache/internal/store"
	"airspacecache/internal/style"
	"airspacecache/internal/viewport"
)

const selectedCountriesKey = "selected_countries"

// Engine is the single long-lived facade a host process constructs
// once at startup (disposed via Close) and calls for every inbound
// operation.
type Engine struct {
	store    *store.Store
	catalog  *catalog.Catalog
	ingestor *ingest.Ingestor
	query    *viewport.Query
	clipper  *clip.Clipper
	styles   interfaces.StyleResolver
	prefs    interfaces.PreferenceStore
	log      *slog.Logger
}

// New wires every component from cfg and prefs.
func New(cfg *config.Config, prefs interfaces.PreferenceStore, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = logging.Discard()
	}

	s, err := store.Open(cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	cat := catalog.New(s, cfg.Ingest.StalenessWindow, log)
	httpClient := httpclient.NewWithTimeout(cfg.Ingest.Timeout)
	styles := style.New()

	return &Engine{
		store:    s,
		catalog:  cat,
		ingestor: ingest.New(httpClient, s, cat, cfg.Ingest, log),
		query:    viewport.New(s, log),
		clipper:  clip.New(styles, log),
		styles:   styles,
		prefs:    prefs,
		log:      log,
	}, nil
}

// Close releases the underlying store's file handle.
func (e *Engine) Close() error { return e.store.Close() }

// ListAvailableCountries answers list_available_countries() — static
// catalog data, spec.md §6.
func (e *Engine) ListAvailableCountries() []entities.CountryInfo {
	out := make([]entities.CountryInfo, len(availableCountries))
	copy(out, availableCountries)
	return out
}

// CachedCountries lists countries currently downloaded into the store.
func (e *Engine) CachedCountries(ctx context.Context) ([]entities.CountryRecord, error) {
	return e.catalog.CachedCountries(ctx)
}

// SelectedCountries answers selected_countries() — spec.md §6.
func (e *Engine) SelectedCountries() ([]string, error) {
	return e.prefs.GetStringSlice(selectedCountriesKey)
}

// SetSelectedCountries answers set_selected_countries(codes) —
// spec.md §6.
func (e *Engine) SetSelectedCountries(codes []string) error {
	return e.prefs.SetStringSlice(selectedCountriesKey, codes)
}

// NeedsUpdate reports whether code's cached dataset is stale per the
// Ingestor's staleness window (spec.md §4.E), so a caller can decide
// whether to re-download before the user asks for it explicitly.
func (e *Engine) NeedsUpdate(ctx context.Context, code string) (bool, error) {
	return e.catalog.NeedsUpdate(ctx, code)
}

// DownloadCountry answers download_country(code, progress_cb?) —
// spec.md §6.
func (e *Engine) DownloadCountry(ctx context.Context, code string, progress interfaces.ProgressFunc) (entities.DownloadResult, error) {
	return e.ingestor.DownloadCountry(ctx, code, progress)
}

// Offline reports whether the last download attempt failed to reach
// the network, per the Ingestor's offline flag.
func (e *Engine) Offline() bool { return e.ingestor.Offline() }

// DeleteCountry answers delete_country(code) — spec.md §6. It removes
// the country's mapping rows and then sweeps any airspace left with no
// remaining country mapping.
func (e *Engine) DeleteCountry(ctx context.Context, code string) error {
	if err := e.catalog.DeleteCountry(ctx, code); err != nil {
		return err
	}
	_, err := e.catalog.CleanOrphans(ctx)
	return err
}

// FetchPolygonsForViewport answers fetch_polygons_for_viewport(...) —
// the single hot-path entry point, spec.md §6. Its signature has no
// country_codes parameter: country scoping always comes from the
// caller's persisted selected_countries() state (spec.md §2), never
// from the request, so it is injected here before every query.
// Clipping only runs when req.Params.ClippingEnabled is set, matching
// the Clipper's "altitude-sorted subtractive clipping" being an
// opt-in rendering cost.
func (e *Engine) FetchPolygonsForViewport(ctx context.Context, req entities.RenderRequest, cancel interfaces.CancelToken) ([]entities.StyledPolygon, error) {
	selected, err := e.SelectedCountries()
	if err != nil {
		return nil, err
	}
	req.Params.CountryCodes = selected

	geoms, err := e.query.Query(ctx, req.Params, cancel)
	if err != nil {
		return nil, err
	}
	if len(geoms) == 0 {
		return nil, nil
	}

	if !req.Params.ClippingEnabled {
		out := make([]entities.StyledPolygon, len(geoms))
		for i, g := range geoms {
			out[i] = passthroughStyledPolygon(g, e.styles.Resolve(g.TypeCode, g.IcaoClass), req.Opacity)
		}
		return out, nil
	}

	clipped, err := e.clipper.Clip(ctx, geoms, req.Params.Bounds, cancel)
	if err != nil {
		return nil, err
	}

	out := make([]entities.StyledPolygon, len(clipped))
	for i, cp := range clipped {
		out[i] = entities.StyledPolygon{
			AirspaceID:        cp.AirspaceID,
			OuterRing:         cp.OuterRing,
			Holes:             cp.Holes,
			Style:             cp.Style,
			Opacity:           req.Opacity,
			CompletelyClipped: cp.CompletelyClipped,
		}
	}
	return out, nil
}

// GetCacheStatistics answers get_cache_statistics() — spec.md §6.
func (e *Engine) GetCacheStatistics(ctx context.Context) (entities.CacheStatistics, error) {
	return e.store.Statistics(ctx)
}

// ClearCache answers clear_cache() — spec.md §6.
func (e *Engine) ClearCache(ctx context.Context) error {
	return e.store.ClearAll(ctx)
}

// CleanExpiredCache answers clean_expired_cache() — spec.md §6.
func (e *Engine) CleanExpiredCache(ctx context.Context) error {
	if err := e.store.CleanExpired(ctx); err != nil {
		return err
	}
	_, err := e.catalog.CleanOrphans(ctx)
	return err
}

// passthroughStyledPolygon styles a geometry with no clipping applied:
// its first ring is the outer boundary, any further rings (only
// possible when a geometry was decoded with pre-existing holes) are
// passed through as holes unchanged.
func passthroughStyledPolygon(g entities.Geometry, s entities.Style, opacity float64) entities.StyledPolygon {
	var outer []entities.Point
	var holes [][]entities.Point
	for i, ring := range g.Rings {
		if i == 0 {
			outer = ring
		} else {
			holes = append(holes, ring)
		}
	}
	return entities.StyledPolygon{AirspaceID: g.ID, OuterRing: outer, Holes: holes, Style: s, Opacity: opacity}
}
