package clip_test

import (
	"context"
	"testing"

	"airspacecache/entities"
	"airspacecache/internal/clip"
	"airspacecache/internal/logging"
	"airspacecache/internal/style"
)

func square(west, south, east, north float64) entities.Ring {
	return entities.Ring{
		{Lng: west, Lat: south},
		{Lng: east, Lat: south},
		{Lng: east, Lat: north},
		{Lng: west, Lat: north},
	}
}

func squareGeometry(id string, lowerFt int, west, south, east, north float64) entities.Geometry {
	return entities.Geometry{
		ID:              id,
		Rings:           []entities.Ring{square(west, south, east, north)},
		Bounds:          entities.Bounds{West: west, South: south, East: east, North: north},
		LowerAltitudeFt: lowerFt,
		UpperAltitudeFt: lowerFt + 1000,
	}
}

func TestClipPassesThroughDisjointBounds(t *testing.T) {
	c := clip.New(style.New(), logging.Discard())

	a := squareGeometry("a", 1000, 0, 0, 1, 1)
	b := squareGeometry("b", 2000, 10, 10, 11, 11)
	viewport := entities.Bounds{West: -20, South: -20, East: 20, North: 20}

	out, err := c.Clip(context.Background(), []entities.Geometry{a, b}, viewport, nil)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 output polygons, got %d", len(out))
	}
	for _, cp := range out {
		if cp.CompletelyClipped {
			t.Errorf("%s: disjoint polygon should not be clipped", cp.AirspaceID)
		}
		if len(cp.Holes) != 0 {
			t.Errorf("%s: disjoint polygon should have no holes, got %d", cp.AirspaceID, len(cp.Holes))
		}
		if len(cp.OuterRing) != 4 {
			t.Errorf("%s: expected outer ring of 4 points, got %d", cp.AirspaceID, len(cp.OuterRing))
		}
	}
}

func TestClipSubtractsNestedLowerPolygon(t *testing.T) {
	c := clip.New(style.New(), logging.Discard())

	inner := squareGeometry("inner", 1000, 2, 2, 8, 8)
	outer := squareGeometry("outer", 5000, 0, 0, 10, 10)
	viewport := entities.Bounds{West: -20, South: -20, East: 20, North: 20}

	// sorted must be ascending by LowerAltitudeFt per ViewportQuery's contract.
	out, err := c.Clip(context.Background(), []entities.Geometry{inner, outer}, viewport, nil)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 output polygons, got %d", len(out))
	}

	innerOut, outerOut := out[0], out[1]
	if innerOut.AirspaceID != "inner" || outerOut.AirspaceID != "outer" {
		t.Fatalf("expected order preserved, got %s then %s", innerOut.AirspaceID, outerOut.AirspaceID)
	}

	if len(innerOut.Holes) != 0 {
		t.Errorf("inner polygon should have no masks below it, got %d holes", len(innerOut.Holes))
	}
	if innerOut.CompletelyClipped {
		t.Errorf("inner polygon should not be clipped away")
	}

	if outerOut.CompletelyClipped {
		t.Fatalf("outer polygon should survive with a hole, not be fully clipped")
	}
	if len(outerOut.Holes) != 1 {
		t.Fatalf("expected outer polygon to gain exactly 1 hole, got %d", len(outerOut.Holes))
	}
	if len(outerOut.Holes[0]) < 3 {
		t.Errorf("expected hole ring with >=3 points, got %d", len(outerOut.Holes[0]))
	}
}

func TestClipFullyConsumesIdenticalLowerPolygon(t *testing.T) {
	c := clip.New(style.New(), logging.Discard())

	lower := squareGeometry("lower", 1000, 0, 0, 10, 10)
	upper := squareGeometry("upper", 5000, 0, 0, 10, 10)
	viewport := entities.Bounds{West: -20, South: -20, East: 20, North: 20}

	out, err := c.Clip(context.Background(), []entities.Geometry{lower, upper}, viewport, nil)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 output polygons, got %d", len(out))
	}
	if !out[1].CompletelyClipped {
		t.Errorf("expected the upper polygon to be fully consumed by an identical lower mask")
	}
}

func TestClipDoesNotMaskAtEqualAltitude(t *testing.T) {
	c := clip.New(style.New(), logging.Discard())

	a := squareGeometry("a", 3000, 0, 0, 10, 10)
	b := squareGeometry("b", 3000, 2, 2, 8, 8)
	viewport := entities.Bounds{West: -20, South: -20, East: 20, North: 20}

	out, err := c.Clip(context.Background(), []entities.Geometry{a, b}, viewport, nil)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	for _, cp := range out {
		if len(cp.Holes) != 0 || cp.CompletelyClipped {
			t.Errorf("%s: same-altitude polygons must not clip each other, got %+v", cp.AirspaceID, cp)
		}
	}
}

func TestClipDropsPolygonOutsideViewport(t *testing.T) {
	c := clip.New(style.New(), logging.Discard())

	inside := squareGeometry("inside", 1000, 0, 0, 1, 1)
	outside := squareGeometry("outside", 2000, 100, 100, 101, 101)
	viewport := entities.Bounds{West: -5, South: -5, East: 5, North: 5}

	out, err := c.Clip(context.Background(), []entities.Geometry{inside, outside}, viewport, nil)
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if len(out) != 1 || out[0].AirspaceID != "inside" {
		t.Fatalf("expected only the in-viewport polygon to survive, got %+v", out)
	}
}

type fakeCancel struct{ cancelled bool }

func (f fakeCancel) Cancelled() bool { return f.cancelled }

func TestClipRespectsCancellationUpFront(t *testing.T) {
	c := clip.New(style.New(), logging.Discard())
	_, err := c.Clip(context.Background(), []entities.Geometry{squareGeometry("a", 0, 0, 0, 1, 1)},
		entities.Bounds{West: -1, South: -1, East: 2, North: 2}, fakeCancel{cancelled: true})
	if err != entities.ErrCancelled {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}
