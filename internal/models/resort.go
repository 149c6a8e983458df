package models

import (
	"time"
)

// Resort is a raw ski resort record as extracted from a resort page.
// Every attribute is optional because extraction is best effort.
type Resort struct {
	ID                   int64     `db:"id" json:"-"`
	URL                  string    `db:"url" json:"resort_url"`
	Name                 string    `db:"name" json:"name"`
	Country              *string   `db:"country" json:"country"`
	State                *string   `db:"state" json:"state"`
	Region               *string   `db:"region" json:"region"`
	City                 *string   `db:"city" json:"city"`
	Rating               *float64  `db:"rating" json:"rating"`
	ElevationBase        *int      `db:"elevation_base" json:"elevation_base"` // meters
	ElevationTop         *int      `db:"elevation_top" json:"elevation_top"`   // meters
	VerticalDrop         *int      `db:"vertical_drop" json:"vertical_drop"`   // meters
	SlopesTotalKm        *float64  `db:"slopes_total_km" json:"slopes_total_km"`
	SlopesEasyKm         *float64  `db:"slopes_easy_km" json:"slopes_easy_km"`
	SlopesIntermediateKm *float64  `db:"slopes_intermediate_km" json:"slopes_intermediate_km"`
	SlopesDifficultKm    *float64  `db:"slopes_difficult_km" json:"slopes_difficult_km"`
	SkiRoutesKm          *float64  `db:"ski_routes_km" json:"ski_routes_km"`
	LiftsTotal           *int      `db:"lifts_total" json:"lifts_total"`
	DayPassPrice         *string   `db:"day_pass_price" json:"day_pass_price"` // e.g. "€79.50", "US$129"
	SeasonStart          *string   `db:"season_start" json:"season_start"`
	SeasonEnd            *string   `db:"season_end" json:"season_end"`
	Website              *string   `db:"website" json:"website"`
	Description          *string   `db:"description" json:"description"`
	SkiableAcres         *int      `db:"skiable_acres" json:"skiable_acres"`
	NearbyTowns          []string  `db:"-" json:"nearby_towns"`
	Latitude             *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude            *float64  `db:"longitude" json:"longitude,omitempty"`
	ScrapedAt            time.Time `db:"scraped_at" json:"scraped_at"`
}

// Location returns the most specific place name known for the resort,
// used for geocoding queries and log lines.
func (r *Resort) Location() string {
	parts := []string{r.Name}
	for _, p := range []*string{r.City, r.Region, r.State, r.Country} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// HasCoordinates reports whether the resort has been geocoded
func (r *Resort) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}
