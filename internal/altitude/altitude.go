// Package altitude implements the AltitudeResolver component
// (spec.md §4.B): mapping a raw (value, unit, reference) triple to a
// resolved feet value, and the reverse formatting for display.
package altitude

import (
	"fmt"
	"math"
	"strings"

	"airspacecache/entities"
)

// Resolver implements interfaces.AltitudeResolver. Stateless, like
// CoordCodec — see codec.New's doc comment for why a constructor
// exists anyway.
type Resolver struct{}

func New() *Resolver { return &Resolver{} }

// Resolve applies the table from spec.md §4.B, in order:
//  1. reference == GND, or the text value is "GND"/"SFC" -> 0
//  2. unit == FL, numeric value -> round(value * 100)
//  3. unit == ft, numeric value -> round(value)
//  4. unit == m, numeric value -> round(value * 3.28084)
//  5. text value "unlimited"/"unl" -> 999999
//  6. anything else -> 999999
func (Resolver) Resolve(valueText string, valueNumeric float64, isText bool, unit entities.AltitudeUnit, ref entities.AltitudeReference) int {
	if ref == entities.RefGND {
		return 0
	}
	if isText {
		switch strings.ToUpper(strings.TrimSpace(valueText)) {
		case "GND", "SFC":
			return 0
		case "UNLIMITED", "UNL":
			return entities.UnboundedAltitudeFt
		default:
			return entities.UnboundedAltitudeFt
		}
	}

	switch unit {
	case entities.UnitFL:
		return int(math.Round(valueNumeric * 100))
	case entities.UnitFeet:
		return int(math.Round(valueNumeric))
	case entities.UnitMeters:
		return int(math.Round(valueNumeric * 3.28084))
	default:
		return entities.UnboundedAltitudeFt
	}
}

// Format renders a raw altitude triple for display, decoupled from the
// resolved feet value used for filtering/sorting — spec.md §4.B.
func (Resolver) Format(limit entities.AltitudeLimit) string {
	if limit.Reference == entities.RefGND {
		return "GND"
	}
	if limit.RawValueIsText {
		switch strings.ToUpper(strings.TrimSpace(limit.RawValueText)) {
		case "GND", "SFC":
			return "GND"
		case "UNLIMITED", "UNL":
			return "unlimited"
		default:
			return limit.RawValueText
		}
	}

	switch limit.Unit {
	case entities.UnitFL:
		return fmt.Sprintf("FL%d", int(math.Round(limit.RawValueNumeric)))
	case entities.UnitFeet:
		suffix := "AMSL"
		if limit.Reference == entities.RefSTD {
			suffix = "STD"
		}
		return fmt.Sprintf("%dft %s", int(math.Round(limit.RawValueNumeric)), suffix)
	case entities.UnitMeters:
		return fmt.Sprintf("%dm AMSL", int(math.Round(limit.RawValueNumeric)))
	default:
		return "unknown"
	}
}

// ResolveLimit is a convenience that fills in Feet on a copy of limit.
func ResolveLimit(r interface {
	Resolve(string, float64, bool, entities.AltitudeUnit, entities.AltitudeReference) int
}, limit entities.AltitudeLimit) entities.AltitudeLimit {
	limit.Feet = r.Resolve(limit.RawValueText, limit.RawValueNumeric, limit.RawValueIsText, limit.Unit, limit.Reference)
	return limit
}
