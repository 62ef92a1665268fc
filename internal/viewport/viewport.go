// Package viewport implements the ViewportQuery component (spec.md
// §4.F): wrapping GeometryStore.QueryViewport with the degenerate-
// selection fast path and cooperative cancellation checks.
package viewport

import (
	"context"
	"log/slog"

	"airspacecache/entities"
	"airspacecache/interfaces"
	"airspacecache/internal/logging"
)

// Query implements interfaces.ViewportQuery.
type Query struct {
	store interfaces.GeometryStore
	log   *slog.Logger
}

// New builds a Query over store.
func New(store interfaces.GeometryStore, log *slog.Logger) *Query {
	if log == nil {
		log = logging.Discard()
	}
	return &Query{store: store, log: log}
}

// Query executes the viewport query, short-circuiting without ever
// touching the database when the viewport has zero area or no country
// is selected (end-to-end scenario 1: an empty selection never runs
// the SQL join and always answers []).
func (q *Query) Query(ctx context.Context, params entities.ViewportParams, cancel interfaces.CancelToken) ([]entities.Geometry, error) {
	if isCancelled(cancel) {
		return nil, entities.ErrCancelled
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.Bounds.West == params.Bounds.East || params.Bounds.South == params.Bounds.North {
		return nil, nil
	}

	// No country selected: spec.md §4.D defines the effective airspace
	// set as airspaces INNER JOIN mappings WHERE country_code IN
	// (selected) — an empty selection matches nothing, and must not
	// fall through to a bounds-only scan of every cached country.
	if len(params.CountryCodes) == 0 {
		return nil, nil
	}

	q.log.InfoContext(ctx, "spatial index query", slog.String("event", logging.EventSpatialIndexQuery),
		slog.Float64("west", params.Bounds.West), slog.Float64("south", params.Bounds.South),
		slog.Float64("east", params.Bounds.East), slog.Float64("north", params.Bounds.North),
		slog.Int("country_count", len(params.CountryCodes)))

	results, err := q.store.QueryViewport(ctx, params)
	if err != nil {
		return nil, err
	}

	if isCancelled(cancel) {
		return nil, entities.ErrCancelled
	}

	return results, nil
}

func isCancelled(cancel interfaces.CancelToken) bool {
	return cancel != nil && cancel.Cancelled()
}
