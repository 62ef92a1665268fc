// Package store implements the GeometryStore component (spec.md §4.C):
// a single-writer embedded relational store with native indexed
// columns for altitude, classification and bounds, built on the pure
// Go modernc.org/sqlite driver — grounded on the teacher's
// services/mvt_backup_mbtiles.go, which opens the same driver directly
// for its own SQLite-backed snapshot cache.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pocketbase/dbx"
	_ "modernc.org/sqlite"

	"airspacecache/entities"
	"airspacecache/internal/codec"
	"airspacecache/internal/config"
	"airspacecache/internal/logging"
)

// Store implements interfaces.GeometryStore and backs
// internal/catalog's CountryCatalog over the same underlying database,
// per spec.md §4.D ("Uses the same store").
type Store struct {
	mu    sync.Mutex // single-writer lock, per spec.md §5
	db    *dbx.DB
	sqlDB *sql.DB
	path  string
	codec codec.Codec
	cfg   config.StoreConfig
	log   *slog.Logger
}

// Open opens (creating if necessary) the embedded store at
// cfg.Dir/cfg.FileName. A schema version mismatch deletes and
// recreates the file — the pre-release migration policy of
// spec.md §9/§7.
func Open(cfg config.StoreConfig, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = logging.Discard()
	}
	path := filepath.Join(cfg.Dir, cfg.FileName)

	s, err := openAt(path, cfg, log)
	if err != nil {
		return nil, err
	}

	mismatch, err := s.checkSchemaVersion()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if mismatch {
		log.Warn("schema version mismatch, recreating store", slog.String("path", path))
		s.Close()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: removing stale store: %v", entities.ErrStore, err)
		}
		s, err = openAt(path, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := s.writeSchemaVersion(); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

func openAt(path string, cfg config.StoreConfig, log *slog.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening sqlite: %v", entities.ErrStore, err)
	}
	sqlDB.SetMaxOpenConns(1) // single writer, WAL-style journaling per spec.md §4.C

	db := dbx.NewFromDB(sqlDB, "sqlite")

	s := &Store{db: db, sqlDB: sqlDB, path: path, cfg: cfg, log: log}
	if err := s.init(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("%w: enabling WAL: %v", entities.ErrStore, err)
	}
	for _, stmt := range ddl {
		if _, err := s.sqlDB.Exec(stmt); err != nil {
			return fmt.Errorf("%w: executing schema statement %q: %v", entities.ErrStore, stmt, err)
		}
	}

	var count int
	row := s.sqlDB.QueryRow("SELECT COUNT(*) FROM schema_meta")
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if count == 0 {
		if err := s.writeSchemaVersion(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) checkSchemaVersion() (mismatch bool, err error) {
	var v int
	row := s.sqlDB.QueryRow("SELECT version FROM schema_meta LIMIT 1")
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return v != schemaVersion, nil
}

func (s *Store) writeSchemaVersion() error {
	if _, err := s.sqlDB.Exec("DELETE FROM schema_meta"); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if _, err := s.sqlDB.Exec("INSERT INTO schema_meta(version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.sqlDB.Close()
}

// DB exposes the shared dbx handle for internal/catalog, which
// operates on the same file per spec.md §4.D.
func (s *Store) DB() *dbx.DB { return s.db }

// Path returns the on-disk file path backing this store, for
// components (e.g. internal/backup) that operate on the file directly.
func (s *Store) Path() string { return s.path }

// Put upserts a single airspace row — spec.md §4.C.
func (s *Store) Put(ctx context.Context, a entities.Airspace) error {
	return s.PutBatch(ctx, []entities.Airspace{a})
}

// PutBatch upserts a batch of airspace rows in a single transaction,
// used by the Ingestor — spec.md §4.C, §4.E.
func (s *Store) PutBatch(ctx context.Context, batch []entities.Airspace) error {
	if len(batch) == 0 {
		return nil
	}
	if err := s.EnforceSizeLimit(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.InfoContext(ctx, "batch geometry insert", slog.String("event", "BATCH_GEOMETRY_INSERT"), slog.Int("count", len(batch)))

	return s.db.Transactional(func(tx *dbx.Tx) error {
		for _, a := range batch {
			if err := putOne(tx, s.codec, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func putOne(tx *dbx.Tx, c codec.Codec, a entities.Airspace) error {
	coordBlob, offsetBlob, bounds, err := c.Encode(a.Rings)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", a.ID, err)
	}
	a.Bounds = bounds

	extra, err := json.Marshal(a.ExtraProperties)
	if err != nil {
		return fmt.Errorf("marshalling extra properties for %s: %w", a.ID, err)
	}

	var icaoClass any
	if entities.HasIcaoClass(a.IcaoClass) {
		icaoClass = int(*a.IcaoClass)
	}

	params := dbx.Params{
		"id":                      a.ID,
		"name":                    a.Name,
		"type_code":               int(a.TypeCode),
		"icao_class":              icaoClass,
		"coords":                  coordBlob,
		"offsets":                 offsetBlob,
		"bounds_west":             a.Bounds.West,
		"bounds_south":            a.Bounds.South,
		"bounds_east":             a.Bounds.East,
		"bounds_north":            a.Bounds.North,
		"lower_altitude_ft":       a.Lower.Feet,
		"upper_altitude_ft":       a.Upper.Feet,
		"lower_raw_value_text":    a.Lower.RawValueText,
		"lower_raw_value_numeric": a.Lower.RawValueNumeric,
		"lower_raw_is_text":       boolToInt(a.Lower.RawValueIsText),
		"lower_unit":              int(a.Lower.Unit),
		"lower_reference":         int(a.Lower.Reference),
		"upper_raw_value_text":    a.Upper.RawValueText,
		"upper_raw_value_numeric": a.Upper.RawValueNumeric,
		"upper_raw_is_text":       boolToInt(a.Upper.RawValueIsText),
		"upper_unit":              int(a.Upper.Unit),
		"upper_reference":         int(a.Upper.Reference),
		"country":                 a.Country,
		"activity":                a.Activity,
		"geometry_hash":           int64(a.GeometryHash),
		"fetch_time_ms":           a.FetchTimeMs,
		"last_accessed_ms":        a.LastAccessMs,
		"extra_properties":        string(extra),
	}

	_, err = tx.NewQuery(`
		INSERT INTO airspaces (
			id, name, type_code, icao_class, coords, offsets,
			bounds_west, bounds_south, bounds_east, bounds_north,
			lower_altitude_ft, upper_altitude_ft,
			lower_raw_value_text, lower_raw_value_numeric, lower_raw_is_text, lower_unit, lower_reference,
			upper_raw_value_text, upper_raw_value_numeric, upper_raw_is_text, upper_unit, upper_reference,
			country, activity, geometry_hash, fetch_time_ms, last_accessed_ms, extra_properties
		) VALUES (
			{:id}, {:name}, {:type_code}, {:icao_class}, {:coords}, {:offsets},
			{:bounds_west}, {:bounds_south}, {:bounds_east}, {:bounds_north},
			{:lower_altitude_ft}, {:upper_altitude_ft},
			{:lower_raw_value_text}, {:lower_raw_value_numeric}, {:lower_raw_is_text}, {:lower_unit}, {:lower_reference},
			{:upper_raw_value_text}, {:upper_raw_value_numeric}, {:upper_raw_is_text}, {:upper_unit}, {:upper_reference},
			{:country}, {:activity}, {:geometry_hash}, {:fetch_time_ms}, {:last_accessed_ms}, {:extra_properties}
		)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, type_code=excluded.type_code, icao_class=excluded.icao_class,
			coords=excluded.coords, offsets=excluded.offsets,
			bounds_west=excluded.bounds_west, bounds_south=excluded.bounds_south,
			bounds_east=excluded.bounds_east, bounds_north=excluded.bounds_north,
			lower_altitude_ft=excluded.lower_altitude_ft, upper_altitude_ft=excluded.upper_altitude_ft,
			lower_raw_value_text=excluded.lower_raw_value_text, lower_raw_value_numeric=excluded.lower_raw_value_numeric,
			lower_raw_is_text=excluded.lower_raw_is_text, lower_unit=excluded.lower_unit, lower_reference=excluded.lower_reference,
			upper_raw_value_text=excluded.upper_raw_value_text, upper_raw_value_numeric=excluded.upper_raw_value_numeric,
			upper_raw_is_text=excluded.upper_raw_is_text, upper_unit=excluded.upper_unit, upper_reference=excluded.upper_reference,
			country=excluded.country, activity=excluded.activity, geometry_hash=excluded.geometry_hash,
			fetch_time_ms=excluded.fetch_time_ms, last_accessed_ms=excluded.last_accessed_ms,
			extra_properties=excluded.extra_properties
	`).Bind(params).Execute()
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ExistingIDs reports which of ids are already present, for delta
// computation before a batch insert — spec.md §4.C.
func (s *Store) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var got []string
	err := s.db.Select("id").From("airspaces").Where(dbx.In("id", toAnySlice(ids)...)).Column(&got)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	for _, id := range got {
		out[id] = true
	}
	return out, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Get decodes a single airspace row by id, or nil if absent —
// queries never error for "not found" per spec.md §7.
func (s *Store) Get(ctx context.Context, id string) (*entities.Airspace, error) {
	rows, err := s.GetMany(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// GetMany decodes multiple airspace rows by id.
func (s *Store) GetMany(ctx context.Context, ids []string) ([]entities.Airspace, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q := s.db.Select("*").From("airspaces").Where(dbx.In("id", toAnySlice(ids)...))
	rows, err := q.Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	defer rows.Close()

	var out []entities.Airspace
	for rows.Next() {
		a, err := scanAirspaceRow(rows)
		if err != nil {
			// Read errors on a single row log and skip — spec.md §4.C
			// failure semantics.
			s.log.WarnContext(ctx, "skipping corrupt row", slog.String("error", err.Error()))
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	touchLastAccessed(s, ctx, ids)
	return out, nil
}

func touchLastAccessed(s *Store, ctx context.Context, ids []string) {
	_, _ = s.db.Update("airspaces", dbx.Params{"last_accessed_ms": nowMs()}, dbx.In("id", toAnySlice(ids)...)).Execute()
}

func nowMs() int64 { return time.Now().UnixMilli() }

// scanAirspaceRow decodes one *sql.Rows row (from a `SELECT *` over
// airspaces) into an entities.Airspace, decoding its coord/offset blobs
// back into rings via the codec.
func scanAirspaceRow(rows *sql.Rows) (entities.Airspace, error) {
	var a entities.Airspace
	var coordBlob, offsetBlob []byte
	var extraJSON string
	var icaoClass sql.NullInt64
	var geometryHash int64

	err := rows.Scan(
		&a.ID, &a.Name, &a.TypeCode, &icaoClass, &coordBlob, &offsetBlob,
		&a.Bounds.West, &a.Bounds.South, &a.Bounds.East, &a.Bounds.North,
		&a.Lower.Feet, &a.Upper.Feet,
		&a.Lower.RawValueText, &a.Lower.RawValueNumeric, &a.Lower.RawValueIsText, &a.Lower.Unit, &a.Lower.Reference,
		&a.Upper.RawValueText, &a.Upper.RawValueNumeric, &a.Upper.RawValueIsText, &a.Upper.Unit, &a.Upper.Reference,
		&a.Country, &a.Activity, &geometryHash, &a.FetchTimeMs, &a.LastAccessMs, &extraJSON,
	)
	if err != nil {
		return entities.Airspace{}, err
	}
	a.GeometryHash = uint64(geometryHash)

	if icaoClass.Valid {
		c := entities.IcaoClass(icaoClass.Int64)
		a.IcaoClass = &c
	}

	var c codec.Codec
	rings, err := c.Decode(coordBlob, offsetBlob)
	if err != nil {
		return entities.Airspace{}, fmt.Errorf("decoding geometry for %s: %w", a.ID, err)
	}
	a.Rings = rings

	if extraJSON != "" {
		if err := json.Unmarshal([]byte(extraJSON), &a.ExtraProperties); err != nil {
			return entities.Airspace{}, fmt.Errorf("decoding extra properties for %s: %w", a.ID, err)
		}
	}

	return a, nil
}

// QueryViewport builds and executes the single dynamic SQL statement
// combining bounds intersection, country restriction, and optional
// type/class/altitude filters — spec.md §4.C, §4.F.
//
// Callers are expected to short-circuit an empty CountryCodes before
// reaching here (ViewportQuery does, per spec.md's end-to-end scenario
// 1); if one ever arrives anyway the INNER JOIN plus an empty IN ()
// still correctly matches zero rows rather than skipping the join.
func (s *Store) QueryViewport(ctx context.Context, params entities.ViewportParams) ([]entities.Geometry, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := params.Bounds
	cond := dbx.And(
		dbx.NewExp("bounds_west <= {:east}", dbx.Params{"east": b.East}),
		dbx.NewExp("bounds_east >= {:west}", dbx.Params{"west": b.West}),
		dbx.NewExp("bounds_south <= {:north}", dbx.Params{"north": b.North}),
		dbx.NewExp("bounds_north >= {:south}", dbx.Params{"south": b.South}),
	)

	q := s.db.Select("a.*").From("airspaces a").
		InnerJoin("country_mappings m", dbx.NewExp("m.airspace_id = a.id")).
		AndWhere(dbx.In("m.country_code", toAnySlice(params.CountryCodes)...))

	q = q.AndWhere(cond)

	if len(params.ExcludedTypeCodes) > 0 {
		q = q.AndWhere(dbx.NotIn("a.type_code", toAnySliceTypeCode(params.ExcludedTypeCodes)...))
	}
	if len(params.ExcludedIcaoClasses) > 0 {
		q = q.AndWhere(dbx.Or(
			dbx.NewExp("a.icao_class IS NULL"),
			dbx.NotIn("a.icao_class", toAnySliceIcaoClass(params.ExcludedIcaoClasses)...),
		))
	}
	if params.MaxAltitudeFt != nil {
		q = q.AndWhere(dbx.NewExp("a.lower_altitude_ft <= {:max}", dbx.Params{"max": *params.MaxAltitudeFt}))
	}

	q = q.OrderBy("a.lower_altitude_ft ASC")

	rows, err := q.Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	defer rows.Close()

	var out []entities.Geometry
	var ids []string
	for rows.Next() {
		g, id, err := scanGeometryRow(rows)
		if err != nil {
			s.log.WarnContext(ctx, "skipping corrupt row during viewport query", slog.String("error", err.Error()))
			continue
		}
		out = append(out, g)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}

	touchLastAccessed(s, ctx, ids)
	return out, nil
}

// scanGeometryRow decodes one `SELECT a.*` row directly into an
// entities.Geometry, retaining the raw Int32 buffers so the Clipper can
// consume them without a second allocation pass — spec.md §4.A, §4.F.
func scanGeometryRow(rows *sql.Rows) (entities.Geometry, string, error) {
	var g entities.Geometry
	var coordBlob, offsetBlob []byte
	var extraJSON string
	var icaoClass sql.NullInt64
	var lowerRaw, upperRaw struct {
		text    string
		numeric float64
		isText  int
		unit    int
		ref     int
	}

	err := rows.Scan(
		&g.ID, &g.Name, &g.TypeCode, &icaoClass, &coordBlob, &offsetBlob,
		&g.Bounds.West, &g.Bounds.South, &g.Bounds.East, &g.Bounds.North,
		&g.LowerAltitudeFt, &g.UpperAltitudeFt,
		&lowerRaw.text, &lowerRaw.numeric, &lowerRaw.isText, &lowerRaw.unit, &lowerRaw.ref,
		&upperRaw.text, &upperRaw.numeric, &upperRaw.isText, &upperRaw.unit, &upperRaw.ref,
		new(string), new(int), new(int64), new(int64), new(int64), &extraJSON,
	)
	if err != nil {
		return entities.Geometry{}, "", err
	}

	if icaoClass.Valid {
		c := entities.IcaoClass(icaoClass.Int64)
		g.IcaoClass = &c
	}

	var c codec.Codec
	rings, err := c.Decode(coordBlob, offsetBlob)
	if err != nil {
		return entities.Geometry{}, "", fmt.Errorf("decoding geometry for %s: %w", g.ID, err)
	}
	g.Rings = rings
	g.CoordBuf = decodeInt32sLocal(coordBlob)
	g.OffsetBuf = decodeInt32sLocal(offsetBlob)

	if extraJSON != "" {
		if err := json.Unmarshal([]byte(extraJSON), &g.Properties); err != nil {
			return entities.Geometry{}, "", fmt.Errorf("decoding extra properties for %s: %w", g.ID, err)
		}
	}

	return g, g.ID, nil
}

// decodeInt32sLocal mirrors codec's internal alignment-safe blob
// decode: the store reads blobs at offsets the Go runtime does not
// guarantee are 4-byte aligned, so bytes are copied before being
// reinterpreted as int32.
func decodeInt32sLocal(src []byte) []int32 {
	aligned := make([]byte, len(src))
	copy(aligned, src)
	out := make([]int32, len(aligned)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(aligned[4*i:]))
	}
	return out
}

func toAnySliceTypeCode(ts []entities.TypeCode) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = int(t)
	}
	return out
}

func toAnySliceIcaoClass(cs []entities.IcaoClass) []any {
	out := make([]any, len(cs))
	for i, c := range cs {
		out[i] = int(c)
	}
	return out
}

// EnforceSizeLimit deletes oldest-accessed rows in batches until the
// file is back under the target size, then vacuums — spec.md §4.C.
// Triggered before any insert.
func (s *Store) EnforceSizeLimit(ctx context.Context) error {
	if s.path == ":memory:" {
		return nil
	}
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if info.Size() < s.cfg.SizeLimitBytes {
		return nil
	}

	s.log.Warn("store size limit exceeded, evicting oldest-accessed rows",
		slog.Int64("size_bytes", info.Size()), slog.Int64("limit_bytes", s.cfg.SizeLimitBytes))

	for {
		info, err := os.Stat(s.path)
		if err != nil {
			return fmt.Errorf("%w: %v", entities.ErrStore, err)
		}
		if info.Size() <= s.cfg.SizeTargetBytes {
			break
		}

		res, err := s.db.NewQuery(fmt.Sprintf(`
			DELETE FROM airspaces WHERE id IN (
				SELECT id FROM airspaces ORDER BY last_accessed_ms ASC LIMIT %d
			)`, s.cfg.EvictionBatchSize)).Execute()
		if err != nil {
			return fmt.Errorf("%w: %v", entities.ErrStore, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			break // nothing left to evict
		}
	}

	_, err = s.sqlDB.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("%w: vacuuming: %v", entities.ErrStore, err)
	}
	return nil
}

// CleanExpired deletes geometries older than the configured TTL and
// tile metadata older than its own TTL, vacuuming if anything changed
// — spec.md §4.C.
func (s *Store) CleanExpired(ctx context.Context) error {
	cutoffGeom := time.Now().Add(-s.cfg.GeometryTTL).UnixMilli()
	cutoffTile := time.Now().Add(-s.cfg.TileMetadataTTL).UnixMilli()

	var removed int64
	err := s.db.Transactional(func(tx *dbx.Tx) error {
		res, err := tx.NewQuery("DELETE FROM airspaces WHERE fetch_time_ms < {:cutoff}").Bind(dbx.Params{"cutoff": cutoffGeom}).Execute()
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		removed += n

		res, err = tx.NewQuery("DELETE FROM tile_metadata WHERE fetch_time_ms < {:cutoff}").Bind(dbx.Params{"cutoff": cutoffTile}).Execute()
		if err != nil {
			return err
		}
		n, _ = res.RowsAffected()
		removed += n
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if removed > 0 {
		if _, err := s.sqlDB.Exec("VACUUM"); err != nil {
			return fmt.Errorf("%w: vacuuming: %v", entities.ErrStore, err)
		}
	}
	return nil
}

// ClearAll closes the store, deletes the file and its journal
// sidecars, and reopens the file immediately; the store is not reopened
// lazily on next access — spec.md §4.C.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sqlDB.Close(); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStore, err)
	}

	if s.path != ":memory:" {
		for _, suffix := range []string{"", "-wal", "-shm", "-journal"} {
			if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("%w: removing %s: %v", entities.ErrStore, s.path+suffix, err)
			}
		}
	}

	reopened, err := openAt(s.path, s.cfg, s.log)
	if err != nil {
		return err
	}
	s.sqlDB = reopened.sqlDB
	s.db = reopened.db
	return s.writeSchemaVersion()
}

// Statistics answers get_cache_statistics() — spec.md §6, with
// compression_ratio defined per SPEC_FULL supplement 5.
func (s *Store) Statistics(ctx context.Context) (entities.CacheStatistics, error) {
	var stats struct {
		Count        int
		CoordBytes   int64
		OffsetBytes  int64
		LastFetchMs  sql.NullInt64
		TotalPoints  int64
	}

	row := s.sqlDB.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(LENGTH(coords)),0), COALESCE(SUM(LENGTH(offsets)),0),
		       MAX(fetch_time_ms), COALESCE(SUM(LENGTH(coords)/8),0)
		FROM airspaces`)
	if err := row.Scan(&stats.Count, &stats.CoordBytes, &stats.OffsetBytes, &stats.LastFetchMs, &stats.TotalPoints); err != nil {
		return entities.CacheStatistics{}, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}

	totalBytes := stats.CoordBytes + stats.OffsetBytes
	// Reconstructed GeoJSON would store each coordinate pair as two
	// float64 text/JSON numbers, conservatively ~16 bytes/point.
	estimatedSourceBytes := stats.TotalPoints * 16
	ratio := 0.0
	if estimatedSourceBytes > 0 {
		ratio = float64(totalBytes) / float64(estimatedSourceBytes)
	}

	dbSizeMB := 0.0
	if info, err := os.Stat(s.path); err == nil {
		dbSizeMB = float64(info.Size()) / (1024 * 1024)
	}

	return entities.CacheStatistics{
		TotalGeometries:  stats.Count,
		TotalBytes:       totalBytes,
		DBSizeMB:         dbSizeMB,
		CompressionRatio: ratio,
		LastUpdatedMs:    stats.LastFetchMs.Int64,
	}, nil
}
