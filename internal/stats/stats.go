package stats

import (
	"sort"

	"ski-search/internal/extract"
	"ski-search/internal/models"
)

// Group is a count of resorts sharing a country or state
type Group struct {
	Name  string
	Count int
}

// Summary describes a set of raw resort records
type Summary struct {
	Total         int
	Named         int
	ByCountry     []Group
	ByState       []Group
	AvgRating     *float64
	AvgDayPass    *float64
	WithElevation int
	WithSlopes    int
	Geocoded      int
}

// Summarize computes summary statistics. Groups are sorted by count, then name.
func Summarize(resorts []models.Resort) Summary {
	s := Summary{Total: len(resorts)}
	countries := map[string]int{}
	states := map[string]int{}
	var ratingSum, priceSum float64
	var ratings, prices int

	for i := range resorts {
		r := &resorts[i]
		if r.Name != "" {
			s.Named++
		}
		countries[orUnknown(r.Country)]++
		if r.State != nil && *r.State != "" {
			states[*r.State]++
		}
		if r.Rating != nil {
			ratingSum += *r.Rating
			ratings++
		}
		if r.DayPassPrice != nil {
			if p, ok := extract.LeadingNumber(*r.DayPassPrice); ok {
				priceSum += p
				prices++
			}
		}
		if r.ElevationBase != nil || r.ElevationTop != nil {
			s.WithElevation++
		}
		if r.SlopesTotalKm != nil {
			s.WithSlopes++
		}
		if r.HasCoordinates() {
			s.Geocoded++
		}
	}

	s.ByCountry = groups(countries)
	s.ByState = groups(states)
	if ratings > 0 {
		avg := ratingSum / float64(ratings)
		s.AvgRating = &avg
	}
	if prices > 0 {
		avg := priceSum / float64(prices)
		s.AvgDayPass = &avg
	}
	return s
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "Unknown"
	}
	return *s
}

func groups(m map[string]int) []Group {
	out := make([]Group, 0, len(m))
	for name, n := range m {
		out = append(out, Group{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
