// Package codec implements the CoordCodec component (spec.md §4.A):
// lossless conversion between floating-point lat/lng polygons and two
// parallel Int32 buffers suitable both for persistence and for direct
// feed into the clipping engine with no intermediate allocation.
//
// Layout mirrors the binary scaled-coordinate pattern the S-57 chart
// parser uses for its SG2D fields: signed little-endian int32 pairs,
// scaled by a fixed multiplication factor (here 10^7 degrees instead
// of S-57's COMF).
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"airspacecache/entities"
)

// Scale is the fixed-point multiplier applied to degrees before
// rounding to int32. 10^7 gives ~1.11cm precision at the equator.
const Scale = 1e7

// Codec implements interfaces.CoordCodec.
type Codec struct{}

// New returns a stateless Codec. CoordCodec has no per-instance state;
// New exists so callers can hold an interfaces.CoordCodec value the
// same way they hold the other long-lived components.
func New() *Codec { return &Codec{} }

// Encode converts rings into the packed coord/offset blobs and computes
// tight bounds over all encoded points. Points failing validation
// (lat outside [-90,90], lng outside [-180,180], NaN) are dropped;
// rings left with <3 points are dropped; a polygon with zero surviving
// rings is an error.
func (Codec) Encode(rings []entities.Ring) (coordBlob, offsetBlob []byte, bounds entities.Bounds, err error) {
	var coords []int32
	var offsets []int32
	pointIndex := 0

	for _, ring := range rings {
		var kept []entities.Point
		for _, p := range ring {
			if validPoint(p) {
				kept = append(kept, p)
			}
		}
		if len(kept) < 3 {
			continue
		}

		offsets = append(offsets, int32(pointIndex))
		for _, p := range kept {
			coords = append(coords, round(p.Lng*Scale), round(p.Lat*Scale))
			pointIndex++
		}
	}

	if len(offsets) == 0 {
		return nil, nil, entities.Bounds{}, fmt.Errorf("%w: polygon has no valid rings", entities.ErrCorruptGeometry)
	}

	// Bounds computation iterates all encoded points once, in float
	// space, matching spec.md §4.A.
	for i := 0; i < len(coords); i += 2 {
		lng := float64(coords[i]) / Scale
		lat := float64(coords[i+1]) / Scale
		if i == 0 {
			bounds = entities.Bounds{West: lng, East: lng, South: lat, North: lat}
			continue
		}
		if lng < bounds.West {
			bounds.West = lng
		}
		if lng > bounds.East {
			bounds.East = lng
		}
		if lat < bounds.South {
			bounds.South = lat
		}
		if lat > bounds.North {
			bounds.North = lat
		}
	}

	return encodeInt32s(coords), encodeInt32s(offsets), bounds, nil
}

// Decode reverses Encode. It copies the input blobs into aligned
// buffers before building an int32 view — the store may return bytes
// at arbitrary alignment (spec.md §4.A).
func (Codec) Decode(coordBlob, offsetBlob []byte) ([]entities.Ring, error) {
	if len(coordBlob)%8 != 0 {
		return nil, fmt.Errorf("%w: coord blob length %d not a multiple of 8", entities.ErrCorruptGeometry, len(coordBlob))
	}
	if len(offsetBlob)%4 != 0 {
		return nil, fmt.Errorf("%w: offset blob length %d not a multiple of 4", entities.ErrCorruptGeometry, len(offsetBlob))
	}

	coords := decodeInt32s(coordBlob)
	offsets := decodeInt32s(offsetBlob)
	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: no ring offsets", entities.ErrCorruptGeometry)
	}

	numPoints := len(coords) / 2
	rings := make([]entities.Ring, 0, len(offsets))
	for i, off := range offsets {
		start := int(off)
		end := numPoints
		if i+1 < len(offsets) {
			end = int(offsets[i+1])
		}
		if start < 0 || end > numPoints || start >= end {
			return nil, fmt.Errorf("%w: ring offset %d..%d out of range (numPoints=%d)", entities.ErrCorruptGeometry, start, end, numPoints)
		}

		ring := make(entities.Ring, 0, end-start)
		for p := start; p < end; p++ {
			lng := float64(coords[2*p]) / Scale
			lat := float64(coords[2*p+1]) / Scale
			ring = append(ring, entities.Point{Lng: lng, Lat: lat})
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// encodeInt32s packs a slice of int32 into a little-endian byte blob.
func encodeInt32s(vals []int32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
	}
	return buf
}

// decodeInt32s copies src into an aligned buffer and reinterprets it
// as a slice of int32, so callers never read a misaligned blob
// directly — src may come from a store at an arbitrary byte offset.
func decodeInt32s(src []byte) []int32 {
	aligned := make([]byte, len(src))
	copy(aligned, src)

	out := make([]int32, len(aligned)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(aligned[4*i:]))
	}
	return out
}

func validPoint(p entities.Point) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func round(v float64) int32 {
	return int32(math.Round(v))
}
