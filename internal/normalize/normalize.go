package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"ski-search/internal/extract"
	"ski-search/internal/models"
)

const feetPerMeter = 3.28084

// MetersToFeet converts meters to whole feet, rounding to nearest
func MetersToFeet(m int) int {
	return int(math.Round(float64(m) * feetPerMeter))
}

// Converter reshapes raw resort records into the front-end format
type Converter struct {
	Profile Profile
}

// NewConverter creates a converter for a profile
func NewConverter(p Profile) *Converter {
	return &Converter{Profile: p}
}

// Convert converts records in order. Records without a name are dropped and
// ids are numbered over the records that remain.
func (c *Converter) Convert(resorts []models.Resort) []models.SkiResort {
	out := make([]models.SkiResort, 0, len(resorts))
	for i := range resorts {
		if strings.TrimSpace(resorts[i].Name) == "" {
			continue
		}
		out = append(out, c.ConvertOne(&resorts[i], len(out)+1))
	}
	return out
}

// ConvertOne converts a single record, using n for its id
func (c *Converter) ConvertOne(r *models.Resort, n int) models.SkiResort {
	p := c.Profile

	slopes := models.SlopesKm{
		Total:        km(r.SlopesTotalKm),
		Easy:         km(r.SlopesEasyKm),
		Intermediate: km(r.SlopesIntermediateKm),
		Difficult:    km(r.SlopesDifficultKm),
	}

	out := models.SkiResort{
		ID:   fmt.Sprintf("%s-%d", p.IDPrefix, n),
		Name: strings.TrimSpace(r.Name),
		Location: models.Location{
			State:       c.state(r),
			City:        c.city(r),
			Coordinates: coordinates(r),
		},
		Elevation: models.Elevation{
			Base:     feet(r.ElevationBase),
			Summit:   feet(r.ElevationTop),
			Vertical: feet(r.VerticalDrop),
		},
		Lifts:        c.lifts(r.LiftsTotal),
		Trails:       c.trails(slopes),
		SkiableAcres: c.skiableAcres(r.SkiableAcres, slopes.Total),
		Snowmaking: models.Snowmaking{
			Percentage: p.SnowmakingPercent,
			Acres:      estimate(slopes.Total, p.SnowmakingAcresPerKm, p.DefaultSnowmakingAcres),
		},
		SeasonDates: models.SeasonDates{
			Opening: orDefault(r.SeasonStart, p.SeasonOpening),
			Closing: orDefault(r.SeasonEnd, p.SeasonClosing),
		},
		Website:         nonEmpty(r.Website),
		Description:     c.description(r),
		Amenities:       append([]string{}, p.Amenities...),
		LiftTicketPrice: models.LiftTicketPrice{Adult: c.price(r.DayPassPrice)},
	}

	if p.IncludeScraped {
		out.Scraped = &models.ScrapedData{
			Rating:      r.Rating,
			SlopesKm:    slopes,
			NearbyTowns: append([]string{}, r.NearbyTowns...),
			SourceURL:   r.URL,
		}
	}

	return out
}

func (c *Converter) state(r *models.Resort) string {
	if c.Profile.StateFromCountry {
		if s := deref(r.Country); s != "" {
			return s
		}
	}
	if s := deref(r.State); s != "" {
		return s
	}
	return "Unknown"
}

func (c *Converter) city(r *models.Resort) string {
	if c.Profile.StateFromCountry {
		if region := CleanRegion(deref(r.Region)); region != "" {
			return region
		}
	}
	if s := strings.TrimSpace(deref(r.City)); s != "" {
		return s
	}
	if c.Profile.UnknownCity {
		return "Unknown"
	}
	return ""
}

func (c *Converter) lifts(total *int) models.Lifts {
	n := 0
	if total != nil && *total > 0 {
		n = *total
	}
	if !c.Profile.SplitLifts {
		return models.Lifts{Total: n}
	}

	raw := n
	if n == 0 {
		n = c.Profile.DefaultLifts
	}
	l := models.Lifts{
		Total:        n,
		Chairlifts:   max(int(float64(n)*0.7), 1),
		SurfaceLifts: max(int(float64(n)*0.3), 1),
	}
	if raw > 20 {
		l.Gondolas = 1
	}
	return l
}

func (c *Converter) trails(s models.SlopesKm) models.Trails {
	if !c.Profile.EstimateTrails {
		return models.Trails{}
	}
	d := c.Profile.DefaultTrails
	t := models.Trails{
		Total:        trailCount(s.Total, d.Total),
		Beginner:     trailCount(s.Easy, d.Beginner),
		Intermediate: trailCount(s.Intermediate, d.Intermediate),
		Advanced:     trailCount(s.Difficult, d.Advanced),
	}
	t.Expert = max(1, t.Total-t.Beginner-t.Intermediate-t.Advanced)
	return t
}

// trailCount estimates one trail per two km of slope
func trailCount(km float64, def int) int {
	if km <= 0 {
		return def
	}
	return max(int(km/2), 1)
}

func (c *Converter) skiableAcres(extracted *int, totalKm float64) int {
	if extracted != nil && *extracted > 0 {
		return *extracted
	}
	return estimate(totalKm, c.Profile.AcresPerKm, c.Profile.DefaultSkiableAcres)
}

func estimate(km, perKm float64, def int) int {
	if km <= 0 || perKm == 0 {
		return def
	}
	return int(km * perKm)
}

func (c *Converter) description(r *models.Resort) string {
	if d := strings.TrimSpace(deref(r.Description)); d != "" {
		return d
	}
	place := deref(r.State)
	if c.Profile.StateFromCountry {
		place = deref(r.Country)
	}
	if place == "" {
		place = c.Profile.DescriptionFallback
	}
	return fmt.Sprintf(c.Profile.DescriptionFormat, place)
}

func (c *Converter) price(s *string) int {
	if s == nil {
		return c.Profile.DefaultPrice
	}
	if f, ok := extract.LeadingNumber(*s); ok && f >= 1 && f <= math.MaxInt32 {
		return int(f)
	}
	return c.Profile.DefaultPrice
}

var regionBreadcrumb = regexp.MustCompile(`\s+(?:Worldwide|Europe|Austria|Switzerland|France)\s+`)

// CleanRegion trims breadcrumb noise from an extracted region
func CleanRegion(region string) string {
	if parts := regionBreadcrumb.Split(region, -1); len(parts) > 1 {
		return strings.TrimSpace(parts[0])
	}
	return strings.Join(strings.Fields(region), " ")
}

func feet(m *int) int {
	if m == nil || *m < 0 {
		return 0
	}
	return MetersToFeet(*m)
}

func km(f *float64) float64 {
	if f == nil || *f < 0 || *f > math.MaxInt32 {
		return 0
	}
	return *f
}

func coordinates(r *models.Resort) models.Coordinates {
	if !r.HasCoordinates() {
		return models.Coordinates{}
	}
	return models.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonEmpty(s *string) *string {
	if v := deref(s); v != "" {
		return &v
	}
	return nil
}

func orDefault(s *string, def string) string {
	if v := deref(s); v != "" {
		return v
	}
	return def
}
