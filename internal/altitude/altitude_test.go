package altitude_test

import (
	"testing"

	"airspacecache/entities"
	"airspacecache/internal/altitude"
)

func TestResolveTable(t *testing.T) {
	r := altitude.New()

	cases := []struct {
		name       string
		valueText  string
		valueNum   float64
		isText     bool
		unit       entities.AltitudeUnit
		ref        entities.AltitudeReference
		wantFeet   int
	}{
		{"GND reference", "", 0, false, entities.UnitFeet, entities.RefGND, 0},
		{"GND text", "GND", 0, true, 0, entities.RefAMSL, 0},
		{"SFC text", "SFC", 0, true, 0, entities.RefAMSL, 0},
		{"FL90", "", 90, false, entities.UnitFL, entities.RefSTD, 9000},
		{"feet", "", 2000, false, entities.UnitFeet, entities.RefAMSL, 2000},
		{"3000 meters", "", 3000, false, entities.UnitMeters, entities.RefAMSL, 9843},
		{"unlimited text", "unlimited", 0, true, 0, entities.RefAMSL, entities.UnboundedAltitudeFt},
		{"unl text", "UNL", 0, true, 0, entities.RefAMSL, entities.UnboundedAltitudeFt},
		{"unknown text", "banana", 0, true, 0, entities.RefAMSL, entities.UnboundedAltitudeFt},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := r.Resolve(c.valueText, c.valueNum, c.isText, c.unit, c.ref)
			if got != c.wantFeet {
				t.Errorf("got %d, want %d", got, c.wantFeet)
			}
		})
	}
}
