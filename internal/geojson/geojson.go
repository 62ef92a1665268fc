// Package geojson parses the GeoJSON FeatureCollection documents the
// Ingestor downloads into this engine's Ring/Point shapes, flattening
// both the nested and legacy top-level property layouts the source
// datasets use — spec.md §4.E.
package geojson

import (
	"encoding/json"
	"fmt"

	"airspacecache/entities"
)

// FeatureCollection is the top-level GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature: a geometry plus its properties,
// which may be nested under "properties" or, in some legacy source
// files, spread across the feature's top level.
type Feature struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id"`
	Geometry   Geometry        `json:"geometry"`
	Properties json.RawMessage `json:"properties"`

	// Extra captures any top-level fields outside type/geometry/properties
	// — the legacy flattened-property shape.
	Extra map[string]any `json:"-"`
}

// UnmarshalJSON implements the dual nested/flattened property shape:
// it decodes known fields normally, then re-decodes the whole object
// into a generic map to recover any sibling fields as Extra.
func (f *Feature) UnmarshalJSON(data []byte) error {
	type alias Feature
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*f = Feature(a)

	var whole map[string]any
	if err := json.Unmarshal(data, &whole); err != nil {
		return err
	}
	delete(whole, "type")
	delete(whole, "id")
	delete(whole, "geometry")
	delete(whole, "properties")
	f.Extra = whole
	return nil
}

// StableID returns the source feature's top-level GeoJSON "id", per
// the spec's string/number member, as a string. ok is false when the
// feature carries no "id" at all, so the caller can fall back to a
// synthetic scheme.
func (f Feature) StableID() (id string, ok bool) {
	if len(f.ID) == 0 || string(f.ID) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f.ID, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(f.ID, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// FlattenedProperties returns the flattened property map: nested "properties"
// keys take precedence over same-named top-level (legacy) keys.
func (f Feature) FlattenedProperties() map[string]any {
	out := make(map[string]any, len(f.Extra))
	for k, v := range f.Extra {
		out[k] = v
	}
	if len(f.Properties) > 0 {
		var nested map[string]any
		if err := json.Unmarshal(f.Properties, &nested); err == nil {
			for k, v := range nested {
				out[k] = v
			}
		}
	}
	return out
}

// Geometry is a GeoJSON Polygon or MultiPolygon. Coordinates are kept
// raw until Polygons() decodes them, since the nesting depth differs
// between the two geometry types.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// rawRing is a GeoJSON linear ring: an array of [lng, lat] pairs.
type rawRing [][2]float64

// Polygons decodes the geometry into one slice of rings per polygon:
// a Polygon geometry yields exactly one entry; a MultiPolygon yields
// one entry per sub-polygon. Each entry's rings are in GeoJSON order
// (ring 0 is the exterior ring; subsequent rings are interior/holes).
func (g Geometry) Polygons() ([][]rawRing, error) {
	switch g.Type {
	case "Polygon":
		var rings []rawRing
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("%w: decoding Polygon coordinates: %v", entities.ErrProtocol, err)
		}
		return [][]rawRing{rings}, nil
	case "MultiPolygon":
		var polys [][]rawRing
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("%w: decoding MultiPolygon coordinates: %v", entities.ErrProtocol, err)
		}
		return polys, nil
	default:
		return nil, fmt.Errorf("%w: unsupported geometry type %q", entities.ErrProtocol, g.Type)
	}
}

// Parse decodes a raw GeoJSON FeatureCollection document.
func Parse(data []byte) (FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return FeatureCollection{}, fmt.Errorf("%w: decoding FeatureCollection: %v", entities.ErrProtocol, err)
	}
	if fc.Type != "FeatureCollection" {
		return FeatureCollection{}, fmt.Errorf("%w: expected FeatureCollection, got %q", entities.ErrProtocol, fc.Type)
	}
	return fc, nil
}

// ExteriorRings extracts just the exterior ring of each polygon in a
// feature's geometry, discarding any interior rings (holes in the
// source dataset are not modeled — this engine's holes come from
// altitude-sorted clipping, not source geometry). It reports how many
// interior rings were discarded, for DownloadResult.DiscardedInnerRings
// (SPEC_FULL supplement 1).
func ExteriorRings(g Geometry) (polygons []entities.Ring, discardedInner int, err error) {
	polys, err := g.Polygons()
	if err != nil {
		return nil, 0, err
	}

	for _, rings := range polys {
		if len(rings) == 0 {
			continue
		}
		polygons = append(polygons, toRing(rings[0]))
		discardedInner += len(rings) - 1
	}
	return polygons, discardedInner, nil
}

func toRing(r rawRing) entities.Ring {
	// GeoJSON closes each linear ring by repeating its first position;
	// Ring does not, so the closing position is dropped.
	if n := len(r); n > 1 && r[0] == r[n-1] {
		r = r[:n-1]
	}
	ring := make(entities.Ring, len(r))
	for i, p := range r {
		ring[i] = entities.Point{Lng: p[0], Lat: p[1]}
	}
	return ring
}
