// Package catalog implements the CountryCatalog component (spec.md
// §4.D): country download metadata and the country↔airspace mapping,
// over the same database as internal/store.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pocketbase/dbx"

	"airspacecache/entities"
)

// Catalog implements interfaces.CountryCatalog. It shares the
// underlying *dbx.DB with a store.Store instance, per spec.md §4.D
// ("Uses the same store").
type Catalog struct {
	db              *dbx.DB
	log             *slog.Logger
	stalenessWindow time.Duration
}

// dbHandle is satisfied by *store.Store's DB() accessor; catalog does
// not import internal/store to avoid a cyclic dependency — the facade
// package wires the two together.
type dbHandle interface {
	DB() *dbx.DB
}

// New builds a Catalog over the database backing s.
func New(s dbHandle, stalenessWindow time.Duration, log *slog.Logger) *Catalog {
	return &Catalog{db: s.DB(), stalenessWindow: stalenessWindow, log: log}
}

// PutCountryMetadata upserts the metadata row for one country —
// spec.md §4.D, §4.E step 8.
func (c *Catalog) PutCountryMetadata(ctx context.Context, rec entities.CountryRecord) error {
	_, err := c.db.NewQuery(`
		INSERT INTO country_metadata (
			country_code, airspace_count, fetch_time_ms, etag, last_modified, size_bytes, last_accessed_ms
		) VALUES (
			{:code}, {:count}, {:fetch}, {:etag}, {:modified}, {:size}, {:accessed}
		)
		ON CONFLICT(country_code) DO UPDATE SET
			airspace_count=excluded.airspace_count, fetch_time_ms=excluded.fetch_time_ms,
			etag=excluded.etag, last_modified=excluded.last_modified,
			size_bytes=excluded.size_bytes, last_accessed_ms=excluded.last_accessed_ms
	`).Bind(dbx.Params{
		"code":     rec.CountryCode,
		"count":    rec.AirspaceCount,
		"fetch":    rec.FetchTimeMs,
		"etag":     rec.ETag,
		"modified": rec.LastModified,
		"size":     rec.SizeBytes,
		"accessed": rec.LastAccessMs,
	}).Execute()
	if err != nil {
		return fmt.Errorf("%w: putting country metadata for %s: %v", entities.ErrStore, rec.CountryCode, err)
	}
	return nil
}

// PutCountryMappings replaces the full id set for a country in one
// transaction (delete-then-insert-all) — spec.md §4.D, §4.E step 8.
func (c *Catalog) PutCountryMappings(ctx context.Context, code string, ids []string) error {
	return c.db.Transactional(func(tx *dbx.Tx) error {
		if _, err := tx.NewQuery("DELETE FROM country_mappings WHERE country_code = {:code}").
			Bind(dbx.Params{"code": code}).Execute(); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := tx.NewQuery(`
				INSERT INTO country_mappings (country_code, airspace_id) VALUES ({:code}, {:id})
				ON CONFLICT DO NOTHING
			`).Bind(dbx.Params{"code": code, "id": id}).Execute(); err != nil {
				return err
			}
		}
		return nil
	})
}

// IDsForCountry returns the airspace ids mapped to one country.
func (c *Catalog) IDsForCountry(ctx context.Context, code string) ([]string, error) {
	return c.IDsForCountries(ctx, []string{code})
}

// IDsForCountries returns the union of airspace ids mapped to any of
// codes — used by ViewportQuery's multi-country selection.
func (c *Catalog) IDsForCountries(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var ids []string
	err := c.db.Select("DISTINCT airspace_id").From("country_mappings").
		Where(dbx.In("country_code", toAnySlice(codes)...)).Column(&ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	return ids, nil
}

// CachedCountries lists every country with a metadata row —
// spec.md §6 list_available_countries's "already downloaded" subset.
func (c *Catalog) CachedCountries(ctx context.Context) ([]entities.CountryRecord, error) {
	rows, err := c.db.Select("*").From("country_metadata").OrderBy("country_code ASC").Rows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	defer rows.Close()

	var out []entities.CountryRecord
	for rows.Next() {
		var rec entities.CountryRecord
		if err := rows.Scan(&rec.CountryCode, &rec.AirspaceCount, &rec.FetchTimeMs,
			&rec.ETag, &rec.LastModified, &rec.SizeBytes, &rec.LastAccessMs); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrStore, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteCountry removes a country's metadata row; ON DELETE CASCADE
// drops its mappings, and CleanOrphans should be run afterward to
// reclaim airspaces left with no remaining country mapping —
// spec.md §6 delete_country.
func (c *Catalog) DeleteCountry(ctx context.Context, code string) error {
	_, err := c.db.NewQuery("DELETE FROM country_metadata WHERE country_code = {:code}").
		Bind(dbx.Params{"code": code}).Execute()
	if err != nil {
		return fmt.Errorf("%w: deleting country %s: %v", entities.ErrStore, code, err)
	}
	return nil
}

// CleanOrphans deletes airspace rows with no remaining country
// mapping, reporting how many were removed — spec.md §6 delete_country
// step 2, clean_expired_cache.
func (c *Catalog) CleanOrphans(ctx context.Context) (int, error) {
	res, err := c.db.NewQuery(`
		DELETE FROM airspaces WHERE id NOT IN (SELECT DISTINCT airspace_id FROM country_mappings)
	`).Execute()
	if err != nil {
		return 0, fmt.Errorf("%w: cleaning orphans: %v", entities.ErrStore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if n > 0 {
		c.log.InfoContext(ctx, "cleaned orphan airspaces", slog.Int64("count", n))
	}
	return int(n), nil
}

// NeedsUpdate reports whether a country's metadata is older than the
// configured staleness window, or absent entirely — spec.md §4.E
// needs_update, §9 Open Question (non-expiry of metadata rows
// themselves; staleness is judged, not enforced by deletion).
func (c *Catalog) NeedsUpdate(ctx context.Context, code string) (bool, error) {
	rows, err := c.db.Select("fetch_time_ms").From("country_metadata").
		Where(dbx.HashExp{"country_code": code}).Rows()
	if err != nil {
		return false, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return true, nil
	}
	var fetchTimeMs sql.NullInt64
	if err := rows.Scan(&fetchTimeMs); err != nil {
		return false, fmt.Errorf("%w: %v", entities.ErrStore, err)
	}
	if !fetchTimeMs.Valid {
		return true, nil
	}
	age := time.Since(time.UnixMilli(fetchTimeMs.Int64))
	return age > c.stalenessWindow, nil
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
