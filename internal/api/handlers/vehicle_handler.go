package handlers

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"citymove/internal/domain/entities"
	"citymove/internal/geo"
	"citymove/internal/metrics"
	"citymove/internal/services"
)

type VehicleHandler struct {
	vehicles         *services.VehicleService
	tracking         *services.TrackingService
	metrics          *metrics.Collector
	geohashPrecision int
}

func NewVehicleHandler(
	vehicles *services.VehicleService,
	tracking *services.TrackingService,
	m *metrics.Collector,
	geohashPrecision int,
) *VehicleHandler {
	return &VehicleHandler{
		vehicles:         vehicles,
		tracking:         tracking,
		metrics:          m,
		geohashPrecision: geohashPrecision,
	}
}

type vehicleList struct {
	Vehicles []entities.Vehicle `json:"vehicles"`
	Count    int                `json:"count"`
}

func listOf(vs []entities.Vehicle) vehicleList {
	if vs == nil {
		vs = []entities.Vehicle{}
	}
	return vehicleList{Vehicles: vs, Count: len(vs)}
}

// List handles GET /vehicles
func (h *VehicleHandler) List(c *gin.Context) {
	vs, err := h.vehicles.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(vs))
}

// Search handles GET /vehicles/search?from=&to=&type=
func (h *VehicleHandler) Search(c *gin.Context) {
	params := services.SearchParams{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if cat, ok := categoryParam(c); ok {
		params.Category = &cat
	}

	vs, err := h.vehicles.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(vs))
}

// Nearby handles GET /vehicles/nearby?lat=&lng=&radius=
func (h *VehicleHandler) Nearby(c *gin.Context) {
	origin, ok, err := locationParams(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if !ok {
		badRequest(c, "lat and lng are required")
		return
	}
	radius, hasRadius, err := floatParam(c, "radius")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if radius < 0 {
		badRequest(c, "radius must be non-negative")
		return
	}
	var radiusKm *float64
	if hasRadius {
		radiusKm = &radius
	}

	vs, err := h.vehicles.Nearby(c.Request.Context(), origin, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(vs))
}

// Filter handles GET /vehicles/filter, the search screen's filter panel:
// type, max_price, sort_by, lat/lng/radius and from/to may be combined.
func (h *VehicleHandler) Filter(c *gin.Context) {
	var criteria entities.QueryCriteria

	if cat, ok := categoryParam(c); ok {
		criteria = criteria.WithCategory(cat)
	}
	maxPrice, ok, err := floatParam(c, "max_price")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if ok {
		criteria = criteria.WithMaxPrice(maxPrice)
	}
	criteria = criteria.WithSort(entities.ParseSortKey(c.Query("sort_by")))

	origin, hasOrigin, err := locationParams(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if hasOrigin {
		criteria.Origin = &origin
	}
	radius, hasRadius, err := floatParam(c, "radius")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if hasRadius {
		criteria.RadiusKm = &radius
	}
	criteria = criteria.WithRoute(c.Query("from"), c.Query("to"))

	vs, err := h.vehicles.Filter(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(vs))
}

// Get handles GET /vehicles/:id
func (h *VehicleHandler) Get(c *gin.Context) {
	v, err := h.vehicles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type UpdateLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// UpdateLocation handles PATCH /vehicles/:id/location (operators only)
func (h *VehicleHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	loc := entities.NewLocation(*req.Lat, *req.Lng)
	if err := validateLocation(loc); err != nil {
		badRequest(c, err.Error())
		return
	}

	v, err := h.vehicles.UpdateLocation(c.Request.Context(), c.Param("id"), loc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle":    v,
		"geohash":    geo.EncodeLocation(v.Position, h.geohashPrecision),
		"updated_at": v.UpdatedAt,
	})
}

// Stream handles GET /vehicles/stream as server-sent events. An optional
// ?type= narrows the stream to one category.
func (h *VehicleHandler) Stream(c *gin.Context) {
	cat, filtered := categoryParam(c)

	ctx := c.Request.Context()
	updates, cancel := h.tracking.Subscribe(ctx)
	defer cancel()

	h.metrics.StreamClientsAdd(1)
	defer h.metrics.StreamClientsAdd(-1)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"status": "subscribed"})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case v, ok := <-updates:
			if !ok {
				return false
			}
			if filtered && v.Category != cat {
				return true
			}
			c.SSEvent("vehicle", v)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// categoryParam reads ?type=. Empty and "all" mean no filter; anything else
// is passed through so criteria validation can reject unknown values.
func categoryParam(c *gin.Context) (entities.Category, bool) {
	v := strings.TrimSpace(c.Query("type"))
	if v == "" || v == "all" {
		return "", false
	}
	return entities.Category(v), true
}

func floatParam(c *gin.Context, name string) (float64, bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return f, true, nil
}

// locationParams reads lat and lng. Supplying only one of them is an error.
func locationParams(c *gin.Context) (entities.Location, bool, error) {
	lat, hasLat, err := floatParam(c, "lat")
	if err != nil {
		return entities.Location{}, false, err
	}
	lng, hasLng, err := floatParam(c, "lng")
	if err != nil {
		return entities.Location{}, false, err
	}
	if hasLat != hasLng {
		return entities.Location{}, false, fmt.Errorf("lat and lng must be given together")
	}
	if !hasLat {
		return entities.Location{}, false, nil
	}
	loc := entities.NewLocation(lat, lng)
	if err := validateLocation(loc); err != nil {
		return entities.Location{}, false, err
	}
	return loc, true, nil
}

func validateLocation(loc entities.Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("lat must be between -90 and 90")
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("lng must be between -180 and 180")
	}
	return nil
}
