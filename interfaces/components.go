package interfaces

import (
	"context"

	"airspacecache/entities"
)

// GeometryStore is the persistent relational store for airspace rows —
// spec.md §4.C.
type GeometryStore interface {
	Put(ctx context.Context, a entities.Airspace) error
	PutBatch(ctx context.Context, batch []entities.Airspace) error
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
	Get(ctx context.Context, id string) (*entities.Airspace, error)
	GetMany(ctx context.Context, ids []string) ([]entities.Airspace, error)
	QueryViewport(ctx context.Context, params entities.ViewportParams) ([]entities.Geometry, error)
	EnforceSizeLimit(ctx context.Context) error
	CleanExpired(ctx context.Context) error
	ClearAll(ctx context.Context) error
	Statistics(ctx context.Context) (entities.CacheStatistics, error)
	Close() error
}

// CountryCatalog tracks country metadata and the country↔airspace
// mapping — spec.md §4.D.
type CountryCatalog interface {
	PutCountryMetadata(ctx context.Context, rec entities.CountryRecord) error
	PutCountryMappings(ctx context.Context, code string, ids []string) error
	IDsForCountry(ctx context.Context, code string) ([]string, error)
	IDsForCountries(ctx context.Context, codes []string) ([]string, error)
	CachedCountries(ctx context.Context) ([]entities.CountryRecord, error)
	DeleteCountry(ctx context.Context, code string) error
	CleanOrphans(ctx context.Context) (int, error)
	NeedsUpdate(ctx context.Context, code string) (bool, error)
}

// Ingestor downloads and stores one country's airspace dataset —
// spec.md §4.E.
type Ingestor interface {
	DownloadCountry(ctx context.Context, code string, progress ProgressFunc) (entities.DownloadResult, error)
	Offline() bool
}

// ViewportQuery builds and executes the filtered spatial query and
// decodes rows into in-memory geometries — spec.md §4.F.
type ViewportQuery interface {
	Query(ctx context.Context, params entities.ViewportParams, cancel CancelToken) ([]entities.Geometry, error)
}

// Clipper performs the altitude-sorted subtractive clipping pass —
// spec.md §4.G.
type Clipper interface {
	Clip(ctx context.Context, sorted []entities.Geometry, viewport entities.Bounds, cancel CancelToken) ([]entities.ClippedPolygon, error)
}

// StyleResolver maps airspace attributes to render style — spec.md §4.H.
type StyleResolver interface {
	Resolve(typeCode entities.TypeCode, icaoClass *entities.IcaoClass) entities.Style
}

// CoordCodec encodes/decodes polygon rings to/from the Int32 buffer
// pair persisted by the GeometryStore — spec.md §4.A.
type CoordCodec interface {
	Encode(rings []entities.Ring) (coords, offsets []byte, bounds entities.Bounds, err error)
	Decode(coords, offsets []byte) ([]entities.Ring, error)
}

// AltitudeResolver maps a raw (value, unit, reference) triple to feet —
// spec.md §4.B.
type AltitudeResolver interface {
	Resolve(valueText string, valueNumeric float64, isText bool, unit entities.AltitudeUnit, ref entities.AltitudeReference) int
	Format(limit entities.AltitudeLimit) string
}
