package logging

// Contractual structured log event keys from spec.md §6. Values are
// carried in each record's "event" attribute; fields carried alongside
// are informational and documented at each call site.
const (
	EventCountryDownloadStart     = "COUNTRY_DOWNLOAD_START"
	EventCountryDownloadComplete  = "COUNTRY_DOWNLOAD_COMPLETE"
	EventCountryStoreStart        = "COUNTRY_STORE_START"
	EventCountryStoreComplete     = "COUNTRY_STORE_COMPLETE"
	EventDirectPolygonFetch       = "DIRECT_POLYGON_FETCH"
	EventDirectPolygonComplete    = "DIRECT_POLYGON_COMPLETE"
	EventSpatialIndexQuery        = "SPATIAL_INDEX_QUERY"
	EventClippingStage            = "CLIPPING_STAGE"
	EventClippingDetailedPerf     = "CLIPPING_DETAILED_PERFORMANCE"
	EventBatchGeometryInsert      = "BATCH_GEOMETRY_INSERT"
	EventBatchGeometryFetch       = "BATCH_GEOMETRY_FETCH"
)
