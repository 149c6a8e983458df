package normalize

import (
	"fmt"
	"strings"
)

// TrailDefaults are the trail counts used when slope lengths are unknown
type TrailDefaults struct {
	Total        int
	Beginner     int
	Intermediate int
	Advanced     int
}

// Profile holds the defaults and estimates applied during conversion
type Profile struct {
	Name     string
	IDPrefix string

	DefaultPrice int

	SnowmakingPercent      int
	SnowmakingAcresPerKm   float64
	DefaultSnowmakingAcres int

	AcresPerKm          float64
	DefaultSkiableAcres int

	DefaultLifts int
	// SplitLifts estimates chairlift, surface lift and gondola counts
	SplitLifts bool

	// EstimateTrails derives trail counts from slope km (km / 2)
	EstimateTrails bool
	DefaultTrails  TrailDefaults

	SeasonOpening string
	SeasonClosing string

	// DescriptionFormat takes the place name, or DescriptionFallback
	DescriptionFormat   string
	DescriptionFallback string
	// StateFromCountry fills location.state with the country (Europe has no states)
	StateFromCountry bool
	// UnknownCity fills a missing city with "Unknown" instead of omitting it
	UnknownCity bool

	Amenities []string

	IncludeScraped bool
}

// Alpine converts European resorts
var Alpine = Profile{
	Name:                   "alpine",
	IDPrefix:               "resort",
	DefaultPrice:           65,
	SnowmakingPercent:      85,
	SnowmakingAcresPerKm:   80,
	DefaultSnowmakingAcres: 400,
	AcresPerKm:             100,
	DefaultSkiableAcres:    500,
	DefaultLifts:           10,
	SplitLifts:             true,
	EstimateTrails:         true,
	DefaultTrails:          TrailDefaults{Total: 10, Beginner: 3, Intermediate: 4, Advanced: 3},
	SeasonOpening:          "Early December",
	SeasonClosing:          "Mid April",
	DescriptionFormat:      "Alpine ski resort in %s",
	DescriptionFallback:    "Europe",
	StateFromCountry:       true,
	UnknownCity:            true,
	Amenities:              []string{"Ski School", "Equipment Rental", "Restaurants", "Parking"},
	IncludeScraped:         true,
}

// USA converts North American resorts
var USA = Profile{
	Name:                "usa",
	IDPrefix:            "usa-resort",
	DefaultPrice:        75,
	SnowmakingPercent:   50,
	SeasonOpening:       "December",
	SeasonClosing:       "April",
	DescriptionFormat:   "Ski resort in %s",
	DescriptionFallback: "USA",
	Amenities:           []string{},
}

// Profiles lists the built-in profiles by name
var Profiles = map[string]Profile{
	Alpine.Name: Alpine,
	USA.Name:    USA,
}

// ProfileByName looks up a built-in profile, case-insensitively
func ProfileByName(name string) (Profile, error) {
	if name == "" {
		return Alpine, nil
	}
	p, ok := Profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}
