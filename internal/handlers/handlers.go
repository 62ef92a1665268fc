// Package handlers implements the HTTP surface for spec.md §6's
// inbound API over github.com/labstack/echo/v5, the router the
// teacher's main.go registers routes and CORS middleware through
// (there via PocketBase's embedded router; here directly, since this
// module has no PocketBase application layer to ride on).
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v5"

	"airspacecache"
	"airspacecache/entities"
	"airspacecache/internal/logging"
)

// Handlers binds the facade Engine to HTTP routes.
type Handlers struct {
	engine *airspacecache.Engine
	log    *slog.Logger
}

// New builds a Handlers bound to engine.
func New(engine *airspacecache.Engine, log *slog.Logger) *Handlers {
	if log == nil {
		log = logging.Discard()
	}
	return &Handlers{engine: engine, log: log}
}

// Register attaches every route to e.
func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/api/countries", h.listAvailableCountries)
	e.GET("/api/countries/cached", h.cachedCountries)
	e.GET("/api/countries/selected", h.getSelectedCountries)
	e.PUT("/api/countries/selected", h.setSelectedCountries)
	e.POST("/api/countries/:code/download", h.downloadCountry)
	e.DELETE("/api/countries/:code", h.deleteCountry)
	e.POST("/api/viewport", h.fetchPolygonsForViewport)
	e.GET("/api/cache/statistics", h.getCacheStatistics)
	e.POST("/api/cache/clear", h.clearCache)
	e.POST("/api/cache/clean-expired", h.cleanExpiredCache)
}

func (h *Handlers) listAvailableCountries(c echo.Context) error {
	return c.JSON(http.StatusOK, h.engine.ListAvailableCountries())
}

func (h *Handlers) cachedCountries(c echo.Context) error {
	countries, err := h.engine.CachedCountries(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, countries)
}

func (h *Handlers) getSelectedCountries(c echo.Context) error {
	codes, err := h.engine.SelectedCountries()
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, codes)
}

func (h *Handlers) setSelectedCountries(c echo.Context) error {
	var codes []string
	if err := c.Bind(&codes); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := h.engine.SetSelectedCountries(codes); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) downloadCountry(c echo.Context) error {
	code := c.Param("code")
	result, err := h.engine.DownloadCountry(c.Request().Context(), code, nil)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "download_country failed",
			slog.String("country", code), slog.Any("error", err))
	}
	// Propagation policy (spec.md §7): ingestion always returns a
	// DownloadResult rather than an HTTP error, even on failure.
	return c.JSON(http.StatusOK, result)
}

func (h *Handlers) deleteCountry(c echo.Context) error {
	code := c.Param("code")
	if err := h.engine.DeleteCountry(c.Request().Context(), code); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// viewportRequest is the JSON request body for
// fetch_polygons_for_viewport, mirroring its spec.md §6 signature.
// Country scoping is never accepted from the client — it comes from
// the server's own selected_countries() state (see Engine.
// FetchPolygonsForViewport).
type viewportRequest struct {
	West            float64 `json:"west"`
	South           float64 `json:"south"`
	East            float64 `json:"east"`
	North           float64 `json:"north"`
	ExcludedTypes   []int   `json:"excluded_types"`
	ExcludedClasses []int   `json:"excluded_classes"`
	MaxAltitudeFt   *int    `json:"max_alt_ft"`
	ClippingEnabled bool    `json:"clipping_enabled"`
	Opacity         float64 `json:"opacity"`
}

func (h *Handlers) fetchPolygonsForViewport(c echo.Context) error {
	var req viewportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	excludedTypes := make([]entities.TypeCode, len(req.ExcludedTypes))
	for i, t := range req.ExcludedTypes {
		excludedTypes[i] = entities.TypeCode(t)
	}
	excludedClasses := make([]entities.IcaoClass, len(req.ExcludedClasses))
	for i, cl := range req.ExcludedClasses {
		excludedClasses[i] = entities.IcaoClass(cl)
	}

	renderReq := entities.RenderRequest{
		Params: entities.ViewportParams{
			Bounds:              entities.Bounds{West: req.West, South: req.South, East: req.East, North: req.North},
			ExcludedTypeCodes:   excludedTypes,
			ExcludedIcaoClasses: excludedClasses,
			MaxAltitudeFt:       req.MaxAltitudeFt,
			ClippingEnabled:     req.ClippingEnabled,
		},
		Opacity: req.Opacity,
	}

	ctx := c.Request().Context()
	polys, err := h.engine.FetchPolygonsForViewport(ctx, renderReq, ctxCancelToken{ctx})
	if err != nil {
		if err == entities.ErrCancelled {
			return c.NoContent(http.StatusRequestTimeout)
		}
		return jsonError(c, err)
	}
	if polys == nil {
		polys = []entities.StyledPolygon{}
	}
	return c.JSON(http.StatusOK, polys)
}

func (h *Handlers) getCacheStatistics(c echo.Context) error {
	stats, err := h.engine.GetCacheStatistics(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handlers) clearCache(c echo.Context) error {
	if err := h.engine.ClearCache(c.Request().Context()); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) cleanExpiredCache(c echo.Context) error {
	if err := h.engine.CleanExpiredCache(c.Request().Context()); err != nil {
		return jsonError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func jsonError(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

// ctxCancelToken bridges a request's context.Context to
// interfaces.CancelToken, so an HTTP client disconnecting surfaces as
// cooperative cancellation inside ViewportQuery/Clipper.
type ctxCancelToken struct {
	ctx context.Context
}

func (c ctxCancelToken) Cancelled() bool { return c.ctx.Err() != nil }
