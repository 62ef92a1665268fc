package entities

import "errors"

// Sentinel error kinds per the error handling design. Components wrap
// these with fmt.Errorf("...: %w", ErrX) so callers can use errors.Is.
var (
	// ErrNetwork marks a transient failure talking to the ingest source.
	ErrNetwork = errors.New("network error")

	// ErrProtocol marks a response that did not conform to the expected
	// GeoJSON FeatureCollection shape.
	ErrProtocol = errors.New("protocol error")

	// ErrCorruptGeometry marks a single geometry that failed validation
	// (bad coordinates, misaligned blob, degenerate ring).
	ErrCorruptGeometry = errors.New("corrupt geometry")

	// ErrStore marks an open/write failure in the geometry store.
	ErrStore = errors.New("store error")

	// ErrSchemaVersionMismatch marks a persisted file whose schema
	// version does not match this build's expectation.
	ErrSchemaVersionMismatch = errors.New("schema version mismatch")

	// ErrCancelled marks cooperative cancellation of an in-flight
	// operation. Callers should treat this as a non-failure.
	ErrCancelled = errors.New("cancelled")

	// ErrAntimeridianSpan marks a viewport whose west bound is east of
	// its east bound, which this engine does not support (spec.md §9).
	ErrAntimeridianSpan = errors.New("viewport spans the antimeridian")
)
