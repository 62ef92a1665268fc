package store

// schemaVersion is bumped whenever the on-disk layout changes. A
// mismatch triggers the pre-release delete-and-recreate policy —
// spec.md §4.C, §7 SchemaVersionMismatch, SPEC_FULL supplement 4.
const schemaVersion = 1

// ddl creates the full schema: the airspaces table with its native
// columns (avoiding per-row JSON parsing on the hot path), the country
// metadata and mapping tables, and a legacy tile-metadata table kept
// for compatibility per spec.md §4.C.
var ddl = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS schema_meta (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS airspaces (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type_code INTEGER NOT NULL,
		icao_class INTEGER,
		coords BLOB NOT NULL,
		offsets BLOB NOT NULL,
		bounds_west REAL NOT NULL,
		bounds_south REAL NOT NULL,
		bounds_east REAL NOT NULL,
		bounds_north REAL NOT NULL,
		lower_altitude_ft INTEGER NOT NULL,
		upper_altitude_ft INTEGER NOT NULL,
		lower_raw_value_text TEXT NOT NULL DEFAULT '',
		lower_raw_value_numeric REAL NOT NULL DEFAULT 0,
		lower_raw_is_text INTEGER NOT NULL DEFAULT 0,
		lower_unit INTEGER NOT NULL DEFAULT 0,
		lower_reference INTEGER NOT NULL DEFAULT 0,
		upper_raw_value_text TEXT NOT NULL DEFAULT '',
		upper_raw_value_numeric REAL NOT NULL DEFAULT 0,
		upper_raw_is_text INTEGER NOT NULL DEFAULT 0,
		upper_unit INTEGER NOT NULL DEFAULT 0,
		upper_reference INTEGER NOT NULL DEFAULT 0,
		country TEXT NOT NULL DEFAULT '',
		activity INTEGER NOT NULL DEFAULT 0,
		geometry_hash INTEGER NOT NULL DEFAULT 0,
		fetch_time_ms INTEGER NOT NULL,
		last_accessed_ms INTEGER NOT NULL,
		extra_properties TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS country_metadata (
		country_code TEXT PRIMARY KEY,
		airspace_count INTEGER NOT NULL DEFAULT 0,
		fetch_time_ms INTEGER NOT NULL,
		etag TEXT NOT NULL DEFAULT '',
		last_modified TEXT NOT NULL DEFAULT '',
		size_bytes INTEGER NOT NULL DEFAULT 0,
		last_accessed_ms INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS country_mappings (
		country_code TEXT NOT NULL REFERENCES country_metadata(country_code) ON DELETE CASCADE,
		airspace_id TEXT NOT NULL REFERENCES airspaces(id) ON DELETE CASCADE,
		PRIMARY KEY (country_code, airspace_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tile_metadata (
		tile_key TEXT PRIMARY KEY,
		fetch_time_ms INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_spatial ON airspaces(lower_altitude_ft, bounds_west, bounds_east, bounds_south, bounds_north)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_bounds_west ON airspaces(bounds_west)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_bounds_east ON airspaces(bounds_east)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_bounds_south ON airspaces(bounds_south)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_bounds_north ON airspaces(bounds_north)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_type_code ON airspaces(type_code)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_icao_class ON airspaces(icao_class)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_country ON airspaces(country)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_fetch_time ON airspaces(fetch_time_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_airspaces_filter ON airspaces(lower_altitude_ft, type_code, icao_class)`,
	`CREATE INDEX IF NOT EXISTS idx_mappings_airspace ON country_mappings(airspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tile_metadata_fetch_time ON tile_metadata(fetch_time_ms)`,
}
