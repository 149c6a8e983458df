package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ski-search/internal/models"
)

// ResortFilter narrows ListResorts. Zero values do not filter.
type ResortFilter struct {
	// Search matches name, country, region, city, state or description, case-insensitively
	Search         string
	Country        string
	State          string
	MinRating      *float64
	HasCoordinates bool
}

const resortColumns = `
	id, url, name, country, state, region, city, rating,
	elevation_base, elevation_top, vertical_drop,
	slopes_total_km, slopes_easy_km, slopes_intermediate_km, slopes_difficult_km, ski_routes_km,
	lifts_total, day_pass_price, season_start, season_end,
	website, description, skiable_acres, nearby_towns,
	latitude, longitude, scraped_at`

// resortRow adds the JSON-encoded town list to the scanned record
type resortRow struct {
	models.Resort
	NearbyTownsJSON *string `db:"nearby_towns"`
}

func (r *resortRow) toModel() models.Resort {
	out := r.Resort
	if r.NearbyTownsJSON != nil && *r.NearbyTownsJSON != "" {
		if err := json.Unmarshal([]byte(*r.NearbyTownsJSON), &out.NearbyTowns); err != nil {
			out.NearbyTowns = nil
		}
	}
	return out
}

// ListResorts returns resorts matching f in insertion order
func (db *DB) ListResorts(f ResortFilter) ([]models.Resort, error) {
	query := "SELECT " + resortColumns + " FROM resorts WHERE 1=1"
	args := make([]interface{}, 0)

	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query += ` AND (LOWER(name) LIKE ? OR LOWER(COALESCE(country, '')) LIKE ?
			OR LOWER(COALESCE(region, '')) LIKE ? OR LOWER(COALESCE(city, '')) LIKE ?
			OR LOWER(COALESCE(state, '')) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?)`
		args = append(args, like, like, like, like, like, like)
	}
	if f.Country != "" {
		query += " AND LOWER(country) = LOWER(?)"
		args = append(args, f.Country)
	}
	if f.State != "" {
		query += " AND LOWER(state) = LOWER(?)"
		args = append(args, f.State)
	}
	if f.MinRating != nil {
		query += " AND rating >= ?"
		args = append(args, *f.MinRating)
	}
	if f.HasCoordinates {
		query += " AND latitude IS NOT NULL AND longitude IS NOT NULL"
	}
	query += " ORDER BY id"

	var rows []resortRow
	if err := db.Select(&rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list resorts: %w", err)
	}

	resorts := make([]models.Resort, len(rows))
	for i := range rows {
		resorts[i] = rows[i].toModel()
	}
	return resorts, nil
}

// GetResort returns a single resort by ID
func (db *DB) GetResort(id int64) (*models.Resort, error) {
	var row resortRow
	err := db.Get(&row, "SELECT "+resortColumns+" FROM resorts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resort %d: %w", id, err)
	}

	r := row.toModel()
	return &r, nil
}

// UpsertResort inserts or updates a resort keyed by URL. Fields missing from
// a re-scrape keep their stored values. The record's ID is set on return.
func (db *DB) UpsertResort(r *models.Resort) error {
	var towns *string
	if len(r.NearbyTowns) > 0 {
		b, err := json.Marshal(r.NearbyTowns)
		if err != nil {
			return fmt.Errorf("failed to encode nearby towns: %w", err)
		}
		s := string(b)
		towns = &s
	}

	query := `
		INSERT INTO resorts (
			url, name, country, state, region, city, rating,
			elevation_base, elevation_top, vertical_drop,
			slopes_total_km, slopes_easy_km, slopes_intermediate_km, slopes_difficult_km, ski_routes_km,
			lifts_total, day_pass_price, season_start, season_end,
			website, description, skiable_acres, nearby_towns,
			latitude, longitude, scraped_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, CURRENT_TIMESTAMP
		)
		ON CONFLICT(url) DO UPDATE SET
			name = excluded.name,
			country = COALESCE(excluded.country, resorts.country),
			state = COALESCE(excluded.state, resorts.state),
			region = COALESCE(excluded.region, resorts.region),
			city = COALESCE(excluded.city, resorts.city),
			rating = COALESCE(excluded.rating, resorts.rating),
			elevation_base = COALESCE(excluded.elevation_base, resorts.elevation_base),
			elevation_top = COALESCE(excluded.elevation_top, resorts.elevation_top),
			vertical_drop = COALESCE(excluded.vertical_drop, resorts.vertical_drop),
			slopes_total_km = COALESCE(excluded.slopes_total_km, resorts.slopes_total_km),
			slopes_easy_km = COALESCE(excluded.slopes_easy_km, resorts.slopes_easy_km),
			slopes_intermediate_km = COALESCE(excluded.slopes_intermediate_km, resorts.slopes_intermediate_km),
			slopes_difficult_km = COALESCE(excluded.slopes_difficult_km, resorts.slopes_difficult_km),
			ski_routes_km = COALESCE(excluded.ski_routes_km, resorts.ski_routes_km),
			lifts_total = COALESCE(excluded.lifts_total, resorts.lifts_total),
			day_pass_price = COALESCE(excluded.day_pass_price, resorts.day_pass_price),
			season_start = COALESCE(excluded.season_start, resorts.season_start),
			season_end = COALESCE(excluded.season_end, resorts.season_end),
			website = COALESCE(excluded.website, resorts.website),
			description = COALESCE(excluded.description, resorts.description),
			skiable_acres = COALESCE(excluded.skiable_acres, resorts.skiable_acres),
			nearby_towns = COALESCE(excluded.nearby_towns, resorts.nearby_towns),
			latitude = COALESCE(excluded.latitude, resorts.latitude),
			longitude = COALESCE(excluded.longitude, resorts.longitude),
			scraped_at = excluded.scraped_at,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	err := db.Get(&r.ID, query,
		r.URL, r.Name, r.Country, r.State, r.Region, r.City, r.Rating,
		r.ElevationBase, r.ElevationTop, r.VerticalDrop,
		r.SlopesTotalKm, r.SlopesEasyKm, r.SlopesIntermediateKm, r.SlopesDifficultKm, r.SkiRoutesKm,
		r.LiftsTotal, r.DayPassPrice, r.SeasonStart, r.SeasonEnd,
		r.Website, r.Description, r.SkiableAcres, towns,
		r.Latitude, r.Longitude, r.ScrapedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert resort %s: %w", r.URL, err)
	}
	return nil
}

// UpdateCoordinates stores geocoded coordinates for a resort
func (db *DB) UpdateCoordinates(id int64, lat, lng float64) error {
	res, err := db.Exec("UPDATE resorts SET latitude = ?, longitude = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", lat, lng, id)
	if err != nil {
		return fmt.Errorf("failed to update coordinates: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetResortCount returns the number of stored resorts
func (db *DB) GetResortCount() (int, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM resorts")
	return count, err
}

// FilterOptions lists the values available to API filters
type FilterOptions struct {
	Countries       []string `json:"countries"`
	States          []string `json:"states"`
	ElevationTopMin *int     `json:"-"`
	ElevationTopMax *int     `json:"-"`
}

// GetFilterOptions returns distinct countries and states and the summit range in meters
func (db *DB) GetFilterOptions() (*FilterOptions, error) {
	opts := &FilterOptions{Countries: []string{}, States: []string{}}

	err := db.Select(&opts.Countries, "SELECT DISTINCT country FROM resorts WHERE country IS NOT NULL ORDER BY country")
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	err = db.Select(&opts.States, "SELECT DISTINCT state FROM resorts WHERE state IS NOT NULL ORDER BY state")
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}

	var elevation struct {
		Min *int `db:"min_top"`
		Max *int `db:"max_top"`
	}
	err = db.Get(&elevation, "SELECT MIN(elevation_top) AS min_top, MAX(elevation_top) AS max_top FROM resorts")
	if err != nil {
		return nil, fmt.Errorf("failed to get elevation range: %w", err)
	}
	opts.ElevationTopMin = elevation.Min
	opts.ElevationTopMax = elevation.Max

	return opts, nil
}
