// Package clip implements the Clipper component (spec.md §4.G):
// altitude-sorted subtractive clipping of the Int32 coordinate buffers
// ViewportQuery decodes, pruned with an R-tree spatial index over the
// bounds already inserted for lower-altitude polygons.
//
// The R-tree usage mirrors the S-57 chart index's bbox-overlap query
// (ChartIndex.Query); the boolean-difference primitive is
// github.com/ctessum/polyclip-go, fed the raw Int32-scaled coordinates
// directly so no lat/lng float conversion happens on the clip-mask path.
package clip

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ctessum/polyclip-go"
	"github.com/dhconnelly/rtreego"

	"airspacecache/entities"
	"airspacecache/interfaces"
	"airspacecache/internal/codec"
	"airspacecache/internal/logging"
)

// cancelCheckInterval is the suggested N from spec.md §5: cancellation
// is checked every 64th polygon inside the clipping loop.
const cancelCheckInterval = 64

// Clipper implements interfaces.Clipper.
type Clipper struct {
	style interfaces.StyleResolver
	log   *slog.Logger
}

// New builds a Clipper that resolves output styles through style.
func New(style interfaces.StyleResolver, log *slog.Logger) *Clipper {
	if log == nil {
		log = logging.Discard()
	}
	return &Clipper{style: style, log: log}
}

// indexedBounds is the rtreego.Spatial wrapper inserted into the tree
// as lower-altitude polygons are processed, so later polygons can
// query for overlapping masks in O(log n) instead of rescanning every
// prior index.
type indexedBounds struct {
	idx int
	b   entities.Bounds
}

func (e indexedBounds) Bounds() rtreego.Rect {
	point := rtreego.Point{e.b.West, e.b.South}
	lengths := []float64{e.b.East - e.b.West, e.b.North - e.b.South}
	if lengths[0] <= 0 {
		lengths[0] = 1e-9
	}
	if lengths[1] <= 0 {
		lengths[1] = 1e-9
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// Clip performs the altitude-sorted subtractive clipping pass. sorted
// must already be ordered by ascending LowerAltitudeFt (ViewportQuery's
// contract); output preserves that order, one entry per input that
// intersects viewport.
func (c *Clipper) Clip(ctx context.Context, sorted []entities.Geometry, viewport entities.Bounds, cancel interfaces.CancelToken) ([]entities.ClippedPolygon, error) {
	if isCancelled(cancel) {
		return nil, entities.ErrCancelled
	}

	tree := rtreego.NewTree(2, 25, 50)
	out := make([]entities.ClippedPolygon, 0, len(sorted))

	for i, g := range sorted {
		if i%cancelCheckInterval == 0 && isCancelled(cancel) {
			return nil, entities.ErrCancelled
		}

		// Step 1 safety net: ViewportQuery already filtered to bounds
		// intersecting the viewport; a polygon that somehow slips
		// through is dropped rather than clipped or rendered.
		if !g.Bounds.Intersects(viewport) {
			continue
		}

		style := c.style.Resolve(g.TypeCode, g.IcaoClass)
		masks := c.collectMasks(tree, sorted, i, g)

		var cp entities.ClippedPolygon
		if len(masks) == 0 {
			cp = passthroughPolygon(g, style)
		} else {
			subject := contoursFromGeometry(g)
			result, err := safeDifference(subject, masks)
			if err != nil {
				c.log.WarnContext(ctx, "clip primitive failed, emitting pre-clip polygon",
					slog.String("event", logging.EventClippingStage),
					slog.String("airspace_id", g.ID), slog.Any("error", err))
				cp = passthroughPolygon(g, style)
			} else {
				cp = polygonFromResult(g.ID, style, result)
			}
		}

		out = append(out, cp)
		tree.Insert(indexedBounds{idx: i, b: g.Bounds})
	}

	if isCancelled(cancel) {
		return nil, entities.ErrCancelled
	}

	return out, nil
}

// collectMasks gathers clip masks from every already-inserted (hence
// lower-index, per the caller's insertion order) polygon whose bounds
// overlap g's and whose altitude is strictly lower — spec.md §4.G
// step 2a. The R-tree restricts the candidate set to bbox-overlapping
// entries; the altitude comparison then drops ties, since the sorted
// order only guarantees altitudes[j] <= altitudes[i] for already-
// inserted j.
func (c *Clipper) collectMasks(tree *rtreego.Rtree, sorted []entities.Geometry, i int, g entities.Geometry) polyclip.Polygon {
	queryRect := indexedBounds{b: g.Bounds}.Bounds()
	candidates := tree.SearchIntersect(queryRect)

	var masks polyclip.Polygon
	for _, sp := range candidates {
		ib := sp.(indexedBounds)
		mask := sorted[ib.idx]
		if mask.LowerAltitudeFt >= g.LowerAltitudeFt {
			continue
		}
		masks = append(masks, contoursFromGeometry(mask)...)
	}
	return masks
}

// safeDifference invokes the boolean-difference primitive, recovering
// from a panic in the clipping library (e.g. a self-intersecting or
// otherwise degenerate ring) and reporting it as an error so the
// caller can fall back to the pre-clip polygon rather than aborting
// the whole batch — spec.md §4.G failure semantics.
func safeDifference(subject, clips polyclip.Polygon) (result polyclip.Polygon, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: clip primitive panicked: %v", entities.ErrCorruptGeometry, r)
		}
	}()
	result = subject.Construct(polyclip.DIFFERENCE, clips)
	return result, nil
}

// contoursFromGeometry decodes g's raw Int32 coordinate buffer
// directly into clip-engine contours, scaled-integer values still
// stored as float64 — no lat/lng conversion happens on this path.
func contoursFromGeometry(g entities.Geometry) polyclip.Polygon {
	if len(g.CoordBuf) == 0 || len(g.OffsetBuf) == 0 {
		return ringsToContours(g.Rings)
	}

	numPoints := len(g.CoordBuf) / 2
	poly := make(polyclip.Polygon, 0, len(g.OffsetBuf))
	for i, off := range g.OffsetBuf {
		start := int(off)
		end := numPoints
		if i+1 < len(g.OffsetBuf) {
			end = int(g.OffsetBuf[i+1])
		}
		if start < 0 || end > numPoints || start >= end {
			continue
		}
		contour := make(polyclip.Contour, 0, end-start)
		for p := start; p < end; p++ {
			contour = append(contour, polyclip.Point{
				X: float64(g.CoordBuf[2*p]),
				Y: float64(g.CoordBuf[2*p+1]),
			})
		}
		poly = append(poly, contour)
	}
	return poly
}

// ringsToContours is the fallback path for geometries decoded without
// their raw buffers (e.g. built directly in tests): it scales degrees
// back up to the same integer space contoursFromGeometry uses, so a
// subject and its masks are always comparable.
func ringsToContours(rings []entities.Ring) polyclip.Polygon {
	poly := make(polyclip.Polygon, 0, len(rings))
	for _, ring := range rings {
		contour := make(polyclip.Contour, 0, len(ring))
		for _, p := range ring {
			contour = append(contour, polyclip.Point{X: p.Lng * codec.Scale, Y: p.Lat * codec.Scale})
		}
		poly = append(poly, contour)
	}
	return poly
}

// passthroughPolygon emits g unmodified: no masks applied, or the
// clip primitive failed for this polygon.
func passthroughPolygon(g entities.Geometry, style entities.Style) entities.ClippedPolygon {
	var outer []entities.Point
	var holes [][]entities.Point
	for i, ring := range g.Rings {
		points := make([]entities.Point, len(ring))
		copy(points, ring)
		if i == 0 {
			outer = points
		} else {
			holes = append(holes, points)
		}
	}
	return entities.ClippedPolygon{AirspaceID: g.ID, OuterRing: outer, Holes: holes, Style: style}
}

// polygonFromResult converts the clip engine's output contours back
// to float lat/lng points, picks the largest-area contour as the
// outer ring (the rest become holes), and discards any contour left
// with fewer than 3 points. A result with no surviving contours
// records CompletelyClipped.
func polygonFromResult(airspaceID string, style entities.Style, result polyclip.Polygon) entities.ClippedPolygon {
	cp := entities.ClippedPolygon{AirspaceID: airspaceID, Style: style}

	type converted struct {
		points []entities.Point
		area   float64
	}
	var kept []converted
	for _, contour := range result {
		if len(contour) < 3 {
			continue
		}
		points := make([]entities.Point, len(contour))
		for i, p := range contour {
			points[i] = entities.Point{Lng: p.X / codec.Scale, Lat: p.Y / codec.Scale}
		}
		kept = append(kept, converted{points: points, area: absArea(points)})
	}

	if len(kept) == 0 {
		cp.CompletelyClipped = true
		return cp
	}

	outerIdx := 0
	for i := 1; i < len(kept); i++ {
		if kept[i].area > kept[outerIdx].area {
			outerIdx = i
		}
	}

	cp.OuterRing = kept[outerIdx].points
	for i, k := range kept {
		if i == outerIdx {
			continue
		}
		cp.Holes = append(cp.Holes, k.points)
	}
	return cp
}

// absArea computes twice the shoelace area magnitude, enough to
// compare contours by size without a sqrt or division.
func absArea(points []entities.Point) float64 {
	var sum float64
	n := len(points)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].Lng*points[j].Lat - points[j].Lng*points[i].Lat
	}
	if sum < 0 {
		sum = -sum
	}
	return sum
}

func isCancelled(cancel interfaces.CancelToken) bool {
	return cancel != nil && cancel.Cancelled()
}
