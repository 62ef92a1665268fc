package entities

// TypeCode enumerates the airspace kind. The set is closed per the
// source datasets (OpenAIP-style), but unknown codes are preserved
// verbatim rather than rejected — see spec.md §3.
type TypeCode int

const (
	TypeOther TypeCode = iota
	TypeCTR
	TypeTMA
	TypeCTA
	TypeD
	TypeR
	TypeP
	TypeFIR
	TypeATZ
)

// KnownTypeCode reports whether code falls within the closed set this
// engine recognizes by name. Unknown codes are still stored and
// rendered — see StyleResolver's gray default style.
func KnownTypeCode(code TypeCode) bool {
	return code >= TypeOther && code <= TypeATZ
}

// IcaoClass is an optional ICAO airspace class A..G, or ClassNone when
// absent. "Absent" and ClassNone are treated identically by filters.
type IcaoClass int

const (
	ClassA IcaoClass = iota
	ClassB
	ClassC
	ClassD
	ClassE
	ClassF
	ClassG
	ClassNone
)

// HasIcaoClass reports whether an airspace carries a meaningful ICAO
// class, as opposed to the sentinel ClassNone.
func HasIcaoClass(c *IcaoClass) bool {
	return c != nil && *c != ClassNone
}

// Sentinel altitude value meaning "unbounded" or "unknown".
const UnboundedAltitudeFt = 999999

// AltitudeUnit is the raw unit code carried alongside a resolved
// altitude, preserved for display. Matches the OpenAIP-style codes in
// spec.md §6.
type AltitudeUnit int

const (
	UnitFeet   AltitudeUnit = 1
	UnitMeters AltitudeUnit = 2
	UnitFL     AltitudeUnit = 6
)

// AltitudeReference is the raw reference datum code.
type AltitudeReference int

const (
	RefGND AltitudeReference = 0
	RefAMSL AltitudeReference = 1
	RefSTD  AltitudeReference = 2
)

// AltitudeLimit carries both the raw (value, unit, reference) triple
// used for display, and the resolved feet value used for filtering
// and sorting. Value may be numeric or a sentinel string ("GND",
// "SFC", "UNL", "UNLIMITED") — RawValueText holds it verbatim and
// RawValueNumeric holds the parsed number when applicable.
type AltitudeLimit struct {
	RawValueText    string
	RawValueNumeric float64
	RawValueIsText  bool
	Unit            AltitudeUnit
	Reference       AltitudeReference
	Feet            int
}

// Bounds is an axis-aligned bounding box in WGS84 degrees.
type Bounds struct {
	West  float64
	South float64
	East  float64
	North float64
}

// Intersects reports whether b and other overlap per the bounding-box
// rule in spec.md §4.C: west <= east' && east >= west' && south <= north' && north >= south'.
func (b Bounds) Intersects(other Bounds) bool {
	return b.West <= other.East && b.East >= other.West &&
		b.South <= other.North && b.North >= other.South
}

// Ring is an ordered sequence of (lng, lat) points. The first point is
// not duplicated as the last.
type Ring []Point

// Point is a (lng, lat) coordinate pair in WGS84 degrees.
type Point struct {
	Lng float64
	Lat float64
}

// Airspace is the logical entity persisted by the GeometryStore — one
// row per airspace, per spec.md §3.
type Airspace struct {
	ID         string
	Name       string
	TypeCode   TypeCode
	IcaoClass  *IcaoClass // nil means absent; treated like ClassNone
	Rings      []Ring
	Bounds     Bounds
	Lower      AltitudeLimit
	Upper      AltitudeLimit
	Country    string
	Activity   int
	GeometryHash uint64
	FetchTimeMs   int64
	LastAccessMs  int64
	ExtraProperties map[string]any
}

// LowerFt and UpperFt are convenience accessors onto the resolved
// altitude columns used for filtering/sorting.
func (a *Airspace) LowerFt() int { return a.Lower.Feet }
func (a *Airspace) UpperFt() int { return a.Upper.Feet }

// Geometry is the in-memory decoded shape ViewportQuery hands to the
// Clipper and ultimately the caller — spec.md §4.F.
type Geometry struct {
	ID         string
	Name       string
	TypeCode   TypeCode
	IcaoClass  *IcaoClass
	Rings      []Ring
	Bounds     Bounds
	LowerAltitudeFt int
	UpperAltitudeFt int
	Properties map[string]any

	// CoordBuf/OffsetBuf are the raw Int32 buffers backing Rings,
	// retained so the Clipper can feed the clipping engine without a
	// second allocation pass (spec.md §4.A rationale).
	CoordBuf  []int32
	OffsetBuf []int32
}

// ClippedPolygon is the Clipper's output unit — spec.md §4.G.
type ClippedPolygon struct {
	AirspaceID string
	OuterRing  []Point
	Holes      [][]Point
	Style      Style
	// CompletelyClipped is true when a higher-altitude polygon was
	// fully consumed by lower-altitude masks and produced no output.
	CompletelyClipped bool
}

// Style is the render-ready fill/border pairing for a polygon — spec.md §4.H.
type Style struct {
	FillColor   string
	BorderColor string
	BorderWidth float64
}
