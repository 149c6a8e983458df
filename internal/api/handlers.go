package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"ski-search/internal/db"
	"ski-search/internal/geo"
	"ski-search/internal/models"
	"ski-search/internal/normalize"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Handlers contains HTTP handlers and their dependencies
type Handlers struct {
	db   *db.DB
	conv *normalize.Converter
}

// NewHandlers creates a new Handlers instance
func NewHandlers(database *db.DB, profile normalize.Profile) *Handlers {
	return &Handlers{db: database, conv: normalize.NewConverter(profile)}
}

// resortQuery holds the filters applied after conversion
type resortQuery struct {
	state           string
	minElevation    *int
	maxElevation    *int
	minLifts        *int
	minTrails       *int
	minSkiableAcres *int
	near            *geo.Point
	radiusKm        float64
	limit           int
	offset          int
}

func (q *resortQuery) match(r *models.SkiResort) bool {
	if q.state != "" && !strings.EqualFold(r.Location.State, q.state) {
		return false
	}
	if q.minElevation != nil && r.Elevation.Summit < *q.minElevation {
		return false
	}
	if q.maxElevation != nil && r.Elevation.Summit > *q.maxElevation {
		return false
	}
	if q.minLifts != nil && r.Lifts.Total < *q.minLifts {
		return false
	}
	if q.minTrails != nil && r.Trails.Total < *q.minTrails {
		return false
	}
	if q.minSkiableAcres != nil && r.SkiableAcres < *q.minSkiableAcres {
		return false
	}
	if q.near != nil {
		c := r.Location.Coordinates
		if !q.near.Within(geo.Point{Latitude: c.Latitude, Longitude: c.Longitude}, q.radiusKm) {
			return false
		}
	}
	return true
}

func intParam(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

// ListResorts handles GET /api/resorts
func (h *Handlers) ListResorts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := db.ResortFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		Country: q.Get("country"),
	}
	if v := q.Get("min_rating"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinRating = &val
		}
	}

	rq := resortQuery{
		state:           q.Get("state"),
		minElevation:    intParam(q.Get("min_elevation")),
		maxElevation:    intParam(q.Get("max_elevation")),
		minLifts:        intParam(q.Get("min_lifts")),
		minTrails:       intParam(q.Get("min_trails")),
		minSkiableAcres: intParam(q.Get("min_skiable_acres")),
		radiusKm:        50,
		limit:           defaultLimit,
	}

	// Parse proximity filter (near=lat,lng)
	if v := q.Get("near"); v != "" {
		p, err := geo.ParsePoint(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rq.near = &p
		filter.HasCoordinates = true
	}
	if v := q.Get("radius_km"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 {
			rq.radiusKm = val
		}
	}

	// Parse pagination
	if v := q.Get("limit"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 && val <= maxLimit {
			rq.limit = val
		}
	}
	if v := q.Get("offset"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			rq.offset = val
		}
	}

	raw, err := h.db.ListResorts(filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to list resorts")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resorts := make([]models.SkiResort, 0, len(raw))
	for i := range raw {
		if strings.TrimSpace(raw[i].Name) == "" {
			continue
		}
		sr := h.conv.ConvertOne(&raw[i], int(raw[i].ID))
		if rq.match(&sr) {
			resorts = append(resorts, sr)
		}
	}

	if rq.offset >= len(resorts) {
		resorts = resorts[:0]
	} else {
		resorts = resorts[rq.offset:]
	}
	if len(resorts) > rq.limit {
		resorts = resorts[:rq.limit]
	}

	writeJSON(w, map[string]interface{}{
		"resorts": resorts,
		"count":   len(resorts),
	})
}

// GetResort handles GET /api/resorts/{id}. Both "resort-12" and "12" are accepted.
func (h *Handlers) GetResort(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(chi.URLParam(r, "id"), h.conv.Profile.IDPrefix+"-")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid resort ID", http.StatusBadRequest)
		return
	}

	raw, err := h.db.GetResort(id)
	if errors.Is(err, db.ErrNotFound) {
		http.Error(w, "resort not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, h.conv.ConvertOne(raw, int(raw.ID)))
}

// FilterOptions is the response of GET /api/filters/options. Elevations are in feet.
type FilterOptions struct {
	Countries []string       `json:"countries"`
	States    []string       `json:"states"`
	Elevation ElevationRange `json:"elevation"`
}

type ElevationRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// GetFilterOptions handles GET /api/filters/options
func (h *Handlers) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.db.GetFilterOptions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := FilterOptions{Countries: options.Countries, States: options.States}
	// converted records carry the country in the state slot
	if h.conv.Profile.StateFromCountry {
		out.States = options.Countries
	}
	if options.ElevationTopMin != nil {
		ft := normalize.MetersToFeet(*options.ElevationTopMin)
		out.Elevation.Min = &ft
	}
	if options.ElevationTopMax != nil {
		ft := normalize.MetersToFeet(*options.ElevationTopMax)
		out.Elevation.Max = &ft
	}

	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
