// Package style implements the StyleResolver component (spec.md §4.H):
// mapping airspace attributes to a render-ready fill/border style.
package style

import "airspacecache/entities"

// Resolver implements interfaces.StyleResolver.
type Resolver struct {
	byClass *[8]entities.Style
	byType  map[entities.TypeCode]entities.Style
	fallback entities.Style
}

// New builds a Resolver with the default ICAO-class and type-code
// style tables from spec.md §4.H.
func New() *Resolver {
	classStyles := [8]entities.Style{
		entities.ClassA:    {FillColor: "#FF3B30", BorderColor: "#B8291F", BorderWidth: 2},
		entities.ClassB:    {FillColor: "#FF9500", BorderColor: "#C97300", BorderWidth: 2},
		entities.ClassC:    {FillColor: "#FFCC00", BorderColor: "#C9A300", BorderWidth: 1.5},
		entities.ClassD:    {FillColor: "#34C759", BorderColor: "#279B45", BorderWidth: 1.5},
		entities.ClassE:    {FillColor: "#5AC8FA", BorderColor: "#3D9FC9", BorderWidth: 1},
		entities.ClassF:    {FillColor: "#AF52DE", BorderColor: "#8A3EB0", BorderWidth: 1},
		entities.ClassG:    {FillColor: "#8E8E93", BorderColor: "#6D6D72", BorderWidth: 0.5},
		entities.ClassNone: {FillColor: "#C7C7CC", BorderColor: "#9B9BA1", BorderWidth: 0.5},
	}

	typeStyles := map[entities.TypeCode]entities.Style{
		entities.TypeCTR: {FillColor: "#007AFF", BorderColor: "#005BB5", BorderWidth: 2},
		entities.TypeTMA: {FillColor: "#5856D6", BorderColor: "#403F9E", BorderWidth: 1.5},
		entities.TypeCTA: {FillColor: "#5856D6", BorderColor: "#403F9E", BorderWidth: 1.5},
		entities.TypeD:   {FillColor: "#FF3B30", BorderColor: "#B8291F", BorderWidth: 2},
		entities.TypeR:   {FillColor: "#D70015", BorderColor: "#8E000E", BorderWidth: 2.5},
		entities.TypeP:   {FillColor: "#8E0000", BorderColor: "#5C0000", BorderWidth: 2.5},
		entities.TypeFIR: {FillColor: "#8E8E93", BorderColor: "#6D6D72", BorderWidth: 1},
		entities.TypeATZ: {FillColor: "#34C759", BorderColor: "#279B45", BorderWidth: 1.5},
	}

	return &Resolver{
		byClass:  &classStyles,
		byType:   typeStyles,
		fallback: entities.Style{FillColor: "#8E8E93", BorderColor: "#6D6D72", BorderWidth: 1},
	}
}

// Resolve maps (type code, ICAO class) to style. ICAO class is the
// primary table; the type-code table is the fallback used when the
// class is absent/unknown — spec.md §4.H.
func (r *Resolver) Resolve(typeCode entities.TypeCode, icaoClass *entities.IcaoClass) entities.Style {
	if entities.HasIcaoClass(icaoClass) {
		c := *icaoClass
		if int(c) >= 0 && int(c) < len(r.byClass) {
			return r.byClass[c]
		}
	}
	if !entities.KnownTypeCode(typeCode) {
		return r.fallback
	}
	if s, ok := r.byType[typeCode]; ok {
		return s
	}
	return r.fallback
}
