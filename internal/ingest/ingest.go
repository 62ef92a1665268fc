// Package ingest implements the Ingestor component (spec.md §4.E):
// downloading one country's airspace FeatureCollection, parsing each
// feature into Airspace rows, and writing them through the
// GeometryStore and CountryCatalog in one pass.
package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"airspacecache/entities"
	"airspacecache/interfaces"
	"airspacecache/internal/altitude"
	"airspacecache/internal/config"
	"airspacecache/internal/geojson"
	"airspacecache/internal/logging"
)

// maxConcurrentCountryDownloads bounds the multi-country fan-out in
// DownloadCountries — spec.md §4.E rationale for using an
// errgroup-bounded pool rather than one goroutine per country.
const maxConcurrentCountryDownloads = 4

// Ingestor implements interfaces.Ingestor.
type Ingestor struct {
	http     interfaces.HTTPClient
	store    interfaces.GeometryStore
	catalog  interfaces.CountryCatalog
	altitude interfaces.AltitudeResolver
	cfg      config.IngestConfig
	log      *slog.Logger

	offline atomic.Bool
}

// New builds an Ingestor wired to its collaborators.
func New(httpClient interfaces.HTTPClient, store interfaces.GeometryStore, cat interfaces.CountryCatalog, cfg config.IngestConfig, log *slog.Logger) *Ingestor {
	if log == nil {
		log = logging.Discard()
	}
	return &Ingestor{
		http:     httpClient,
		store:    store,
		catalog:  cat,
		altitude: altitude.New(),
		cfg:      cfg,
		log:      log,
	}
}

// Offline reports whether the most recent fetch attempt failed with a
// network error — spec.md §6's offline-mode surface.
func (i *Ingestor) Offline() bool { return i.offline.Load() }

// DownloadCountry fetches, parses and stores one country's dataset —
// spec.md §4.E.
func (i *Ingestor) DownloadCountry(ctx context.Context, code string, progress interfaces.ProgressFunc) (entities.DownloadResult, error) {
	start := time.Now()
	i.log.InfoContext(ctx, "country download start", slog.String("event", logging.EventCountryDownloadStart), slog.String("country", code))

	url := fmt.Sprintf("%s?country=%s", i.cfg.BaseURL, code)
	body, contentLength, err := i.fetchWithRetry(ctx, url)
	if err != nil {
		i.offline.Store(true)
		return entities.DownloadResult{Success: false, Country: code, Error: err.Error()}, err
	}
	defer body.Close()
	i.offline.Store(false)

	data, err := io.ReadAll(withProgress(body, contentLength, progress))
	if err != nil {
		return entities.DownloadResult{Success: false, Country: code, Error: err.Error()},
			fmt.Errorf("%w: reading response body: %v", entities.ErrNetwork, err)
	}

	i.log.InfoContext(ctx, "country download complete", slog.String("event", logging.EventCountryDownloadComplete),
		slog.String("country", code), slog.Int("bytes", len(data)))

	fc, err := geojson.Parse(data)
	if err != nil {
		return entities.DownloadResult{Success: false, Country: code, Error: err.Error()}, err
	}

	i.log.InfoContext(ctx, "country store start", slog.String("event", logging.EventCountryStoreStart), slog.String("country", code))

	batch, discardedInner, parseErr := i.parseFeatures(fc, code)
	if parseErr != nil {
		i.log.WarnContext(ctx, "some features failed to parse", slog.String("country", code), slog.String("error", parseErr.Error()))
	}

	now := time.Now().UnixMilli()
	for idx := range batch {
		batch[idx].FetchTimeMs = now
		batch[idx].LastAccessMs = now
	}

	if err := i.store.PutBatch(ctx, batch); err != nil {
		return entities.DownloadResult{Success: false, Country: code, Error: err.Error()}, err
	}

	ids := make([]string, len(batch))
	for idx, a := range batch {
		ids[idx] = a.ID
	}
	if err := i.catalog.PutCountryMappings(ctx, code, ids); err != nil {
		return entities.DownloadResult{Success: false, Country: code, Error: err.Error()}, err
	}

	if err := i.catalog.PutCountryMetadata(ctx, entities.CountryRecord{
		CountryCode:   code,
		AirspaceCount: len(batch),
		FetchTimeMs:   now,
		SizeBytes:     int64(len(data)),
		LastAccessMs:  now,
	}); err != nil {
		return entities.DownloadResult{Success: false, Country: code, Error: err.Error()}, err
	}

	i.log.InfoContext(ctx, "country store complete", slog.String("event", logging.EventCountryStoreComplete),
		slog.String("country", code), slog.Int("count", len(batch)))

	return entities.DownloadResult{
		Success:             true,
		Country:             code,
		AirspaceCount:       len(batch),
		SizeMB:              float64(len(data)) / (1024 * 1024),
		DurationMs:          time.Since(start).Milliseconds(),
		DiscardedInnerRings: discardedInner,
	}, nil
}

// DownloadCountries fans multiple DownloadCountry calls out over a
// bounded worker pool, continuing past individual country failures —
// spec.md §4.E's multi-country selection flow.
func (i *Ingestor) DownloadCountries(ctx context.Context, codes []string, progress interfaces.ProgressFunc) ([]entities.DownloadResult, error) {
	results := make([]entities.DownloadResult, len(codes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCountryDownloads)

	for idx, code := range codes {
		idx, code := idx, code
		g.Go(func() error {
			res, err := i.DownloadCountry(ctx, code, progress)
			results[idx] = res
			if err != nil {
				// A single country's failure does not abort the others;
				// the error is already captured in res.Error.
				return nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// fetchWithRetry issues the GET, retrying on failure with exponential
// backoff starting at cfg.RetryBaseDelay — spec.md §4.E. The overall
// per-attempt deadline is the caller's responsibility via ctx.
func (i *Ingestor) fetchWithRetry(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	var lastErr error
	delay := i.cfg.RetryBaseDelay

	for attempt := 0; attempt < i.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		body, _, _, contentLength, err := i.http.Get(ctx, url, "", "")
		if err == nil {
			return body, contentLength, nil
		}
		lastErr = fmt.Errorf("%w: attempt %d/%d: %v", entities.ErrNetwork, attempt+1, i.cfg.RetryAttempts, err)
	}
	return nil, 0, lastErr
}

// progressReader wraps a response body, invoking progress after every
// read with running totals — spec.md §6's download-progress surface,
// SPEC_FULL's replacement of observer callbacks with ProgressFunc.
type progressReader struct {
	io.Reader
	total      int64
	downloaded int64
	progress   interfaces.ProgressFunc
}

func withProgress(r io.Reader, total int64, progress interfaces.ProgressFunc) io.Reader {
	if progress == nil {
		return r
	}
	return &progressReader{Reader: r, total: total, progress: progress}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.Reader.Read(buf)
	p.downloaded += int64(n)
	if p.progress != nil {
		p.progress(p.downloaded, p.total)
	}
	return n, err
}

// parseFeatures converts every feature's geometry+properties into zero
// or more Airspace rows (a MultiPolygon splits into one row per
// sub-polygon — spec.md §4.E, SPEC_FULL supplement 1).
func (i *Ingestor) parseFeatures(fc geojson.FeatureCollection, country string) ([]entities.Airspace, int, error) {
	var batch []entities.Airspace
	var discardedInner int
	var firstErr error

	for featureIdx, f := range fc.Features {
		rings, discarded, err := geojson.ExteriorRings(f.Geometry)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		discardedInner += discarded

		props := f.FlattenedProperties()
		name, _ := props["name"].(string)
		typeCode := parseTypeCode(props["type"])
		icaoClass := parseIcaoClass(props["icaoClass"])
		activity := parseInt(props["activity"])

		lower := i.resolveLimit(props["lowerLimit"])
		upper := i.resolveLimit(props["upperLimit"])

		// id is namespaced by country (a global primary key across every
		// cached country's dataset) plus the source feature's own stable
		// id, falling back to its array position only when the source
		// genuinely carries no "id" member.
		sourceID, hasID := f.StableID()
		if !hasID {
			i.log.Warn("feature has no source id, synthesizing one from position",
				slog.String("country", country), slog.Int("feature_index", featureIdx))
			sourceID = fmt.Sprintf("%d", featureIdx)
		}
		featureID := fmt.Sprintf("%s-%s", country, sourceID)

		for ringIdx, ring := range rings {
			// A MultiPolygon feature still shares one source id across
			// its sub-polygons; ringIdx disambiguates rows within it
			// without disturbing id stability for the common
			// single-polygon case (ringIdx 0 for every feature that
			// splits into exactly one row).
			id := featureID
			if len(rings) > 1 {
				id = fmt.Sprintf("%s-%d", featureID, ringIdx)
			}
			a := entities.Airspace{
				ID:              id,
				Name:            name,
				TypeCode:        typeCode,
				IcaoClass:       icaoClass,
				Rings:           []entities.Ring{ring},
				Lower:           lower,
				Upper:           upper,
				Country:         country,
				Activity:        activity,
				GeometryHash:    geometryHash(ring),
				ExtraProperties: props,
			}
			batch = append(batch, a)
		}
	}

	return batch, discardedInner, firstErr
}

func (i *Ingestor) resolveLimit(raw any) entities.AltitudeLimit {
	m, _ := raw.(map[string]any)
	text, numeric, isText := "", 0.0, false
	switch v := m["value"].(type) {
	case string:
		text, isText = v, true
	case float64:
		numeric = v
	}
	unit := entities.AltitudeUnit(parseInt(m["unit"]))
	ref := entities.AltitudeReference(parseInt(m["referenceDatum"]))

	feet := i.altitude.Resolve(text, numeric, isText, unit, ref)
	return entities.AltitudeLimit{
		RawValueText:    text,
		RawValueNumeric: numeric,
		RawValueIsText:  isText,
		Unit:            unit,
		Reference:       ref,
		Feet:            feet,
	}
}

func parseTypeCode(v any) entities.TypeCode {
	return entities.TypeCode(parseInt(v))
}

func parseIcaoClass(v any) *entities.IcaoClass {
	n, ok := v.(float64)
	if !ok {
		return nil
	}
	c := entities.IcaoClass(int(n))
	return &c
}

func parseInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func geometryHash(ring entities.Ring) uint64 {
	h := fnv.New64a()
	for _, p := range ring {
		fmt.Fprintf(h, "%.7f,%.7f;", p.Lng, p.Lat)
	}
	return h.Sum64()
}
