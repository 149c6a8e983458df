package normalize

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ski-search/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestMetersToFeet(t *testing.T) {
	tests := []struct {
		m    int
		want int
	}{
		{0, 0},
		{1, 3},
		{800, 2625},
		{1200, 3937},
		{2000, 6562},
		{3527, 11572},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MetersToFeet(tt.m), "meters %d", tt.m)
	}
}

func TestConvertAlpineDefaults(t *testing.T) {
	out := NewConverter(Alpine).Convert([]models.Resort{{Name: "Nowhere"}})
	require.Len(t, out, 1)
	r := out[0]

	assert.Equal(t, "resort-1", r.ID)
	assert.Equal(t, "Nowhere", r.Name)
	assert.Equal(t, "Unknown", r.Location.State)
	assert.Equal(t, "Unknown", r.Location.City)
	assert.Equal(t, models.Coordinates{}, r.Location.Coordinates)
	assert.Equal(t, models.Elevation{}, r.Elevation)
	assert.Equal(t, models.Lifts{Total: 10, Chairlifts: 7, SurfaceLifts: 3, Gondolas: 0}, r.Lifts)
	assert.Equal(t, models.Trails{Total: 10, Beginner: 3, Intermediate: 4, Advanced: 3, Expert: 1}, r.Trails)
	assert.Equal(t, 500, r.SkiableAcres)
	assert.Equal(t, models.Snowmaking{Percentage: 85, Acres: 400}, r.Snowmaking)
	assert.Equal(t, models.SeasonDates{Opening: "Early December", Closing: "Mid April"}, r.SeasonDates)
	assert.Nil(t, r.Website)
	assert.Equal(t, "Alpine ski resort in Europe", r.Description)
	assert.Equal(t, []string{"Ski School", "Equipment Rental", "Restaurants", "Parking"}, r.Amenities)
	assert.Equal(t, 65, r.LiftTicketPrice.Adult)
	require.NotNil(t, r.Scraped)
	assert.Nil(t, r.Scraped.Rating)
	assert.Equal(t, []string{}, r.Scraped.NearbyTowns)
}

func TestConvertAlpineFromScrapedValues(t *testing.T) {
	in := models.Resort{
		URL:                  "https://www.skiresort.info/ski-resort/kitzski-kitzbuehelkirchberg/",
		Name:                 "KitzSki",
		Country:              ptr("Austria"),
		Region:               ptr("Kitzbuehel Alps Worldwide Europe Austria"),
		Rating:               ptr(4.7),
		ElevationBase:        ptr(800),
		ElevationTop:         ptr(2000),
		VerticalDrop:         ptr(1200),
		SlopesTotalKm:        ptr(188.0),
		SlopesEasyKm:         ptr(93.0),
		SlopesIntermediateKm: ptr(67.5),
		SlopesDifficultKm:    ptr(28.0),
		LiftsTotal:           ptr(57),
		DayPassPrice:         ptr("€79,50"),
		SeasonStart:          ptr("2024-10-18"),
		Website:              ptr("https://www.kitzski.at/en/"),
		NearbyTowns:          []string{"Kirchberg"},
		Latitude:             ptr(47.45),
		Longitude:            ptr(12.39),
	}

	out := NewConverter(Alpine).Convert([]models.Resort{in})
	require.Len(t, out, 1)
	r := out[0]

	assert.Equal(t, "Austria", r.Location.State)
	assert.Equal(t, "Kitzbuehel Alps", r.Location.City)
	assert.Equal(t, models.Coordinates{Latitude: 47.45, Longitude: 12.39}, r.Location.Coordinates)
	assert.Equal(t, models.Elevation{Base: 2625, Summit: 6562, Vertical: 3937}, r.Elevation)
	assert.Equal(t, models.Lifts{Total: 57, Chairlifts: 39, SurfaceLifts: 17, Gondolas: 1}, r.Lifts)
	assert.Equal(t, models.Trails{Total: 94, Beginner: 46, Intermediate: 33, Advanced: 14, Expert: 1}, r.Trails)
	assert.Equal(t, 18800, r.SkiableAcres)
	assert.Equal(t, models.Snowmaking{Percentage: 85, Acres: 15040}, r.Snowmaking)
	assert.Equal(t, models.SeasonDates{Opening: "2024-10-18", Closing: "Mid April"}, r.SeasonDates)
	require.NotNil(t, r.Website)
	assert.Equal(t, "https://www.kitzski.at/en/", *r.Website)
	assert.Equal(t, "Alpine ski resort in Austria", r.Description)
	assert.Equal(t, 79, r.LiftTicketPrice.Adult)

	require.NotNil(t, r.Scraped)
	require.NotNil(t, r.Scraped.Rating)
	assert.InDelta(t, 4.7, *r.Scraped.Rating, 0.001)
	assert.Equal(t, models.SlopesKm{Total: 188, Easy: 93, Intermediate: 67.5, Difficult: 28}, r.Scraped.SlopesKm)
	assert.Equal(t, []string{"Kirchberg"}, r.Scraped.NearbyTowns)
}

func TestConvertSmallResortTrailFloor(t *testing.T) {
	out := NewConverter(Alpine).Convert([]models.Resort{{
		Name:          "Tiny",
		SlopesTotalKm: ptr(1.5),
		SlopesEasyKm:  ptr(1.0),
		LiftsTotal:    ptr(1),
		SkiableAcres:  ptr(42),
	}})
	require.Len(t, out, 1)

	assert.Equal(t, models.Trails{Total: 1, Beginner: 1, Intermediate: 4, Advanced: 3, Expert: 1}, out[0].Trails)
	assert.Equal(t, models.Lifts{Total: 1, Chairlifts: 1, SurfaceLifts: 1}, out[0].Lifts)
	assert.Equal(t, 42, out[0].SkiableAcres)
}

func TestConvertUSA(t *testing.T) {
	in := []models.Resort{
		{Name: "Vail", State: ptr("Colorado"), City: ptr("Eagle County"), ElevationBase: ptr(2475), LiftsTotal: ptr(31), DayPassPrice: ptr("US$229"), SkiableAcres: ptr(5289)},
		{Name: "Mystery Hill"},
	}

	out := NewConverter(USA).Convert(in)
	require.Len(t, out, 2)

	vail := out[0]
	assert.Equal(t, "usa-resort-1", vail.ID)
	assert.Equal(t, "Colorado", vail.Location.State)
	assert.Equal(t, "Eagle County", vail.Location.City)
	assert.Equal(t, 8120, vail.Elevation.Base)
	assert.Equal(t, models.Lifts{Total: 31}, vail.Lifts)
	assert.Equal(t, models.Trails{}, vail.Trails)
	assert.Equal(t, 5289, vail.SkiableAcres)
	assert.Equal(t, 229, vail.LiftTicketPrice.Adult)
	assert.Equal(t, models.Snowmaking{Percentage: 50}, vail.Snowmaking)
	assert.Equal(t, "Ski resort in Colorado", vail.Description)
	assert.Nil(t, vail.Scraped)

	hill := out[1]
	assert.Equal(t, "usa-resort-2", hill.ID)
	assert.Equal(t, "Unknown", hill.Location.State)
	assert.Empty(t, hill.Location.City)
	assert.Equal(t, 75, hill.LiftTicketPrice.Adult)
	assert.Equal(t, models.SeasonDates{Opening: "December", Closing: "April"}, hill.SeasonDates)
	assert.Equal(t, "Ski resort in USA", hill.Description)
	assert.Equal(t, []string{}, hill.Amenities)

	raw, err := json.Marshal(hill.Location)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"city"`)
}

func TestConvertDropsNamelessRecords(t *testing.T) {
	in := []models.Resort{{Name: ""}, {Name: "A"}, {Name: "   "}, {Name: "B"}}
	out := NewConverter(Alpine).Convert(in)

	require.Len(t, out, 2)
	assert.LessOrEqual(t, len(out), len(in))
	assert.Equal(t, "resort-1", out[0].ID)
	assert.Equal(t, "A", out[0].Name)
	assert.Equal(t, "resort-2", out[1].ID)
	assert.Equal(t, "B", out[1].Name)
}

func TestConvertMalformedPriceUsesDefault(t *testing.T) {
	out := NewConverter(Alpine).Convert([]models.Resort{{Name: "X", DayPassPrice: ptr("on request")}})
	require.Len(t, out, 1)
	assert.Equal(t, 65, out[0].LiftTicketPrice.Adult)
}

func TestConvertIsDeterministic(t *testing.T) {
	in := []models.Resort{
		{Name: "A", Country: ptr("France"), SlopesTotalKm: ptr(600.0), NearbyTowns: []string{"Val Thorens"}},
		{Name: "B", State: ptr("Utah")},
	}
	c := NewConverter(Alpine)

	first, err := json.Marshal(c.Convert(in))
	require.NoError(t, err)
	second, err := json.Marshal(c.Convert(in))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestProfileByName(t *testing.T) {
	p, err := ProfileByName("USA")
	require.NoError(t, err)
	assert.Equal(t, "usa", p.Name)

	p, err = ProfileByName("")
	require.NoError(t, err)
	assert.Equal(t, "alpine", p.Name)

	_, err = ProfileByName("andes")
	assert.Error(t, err)
}

func TestCleanRegion(t *testing.T) {
	assert.Equal(t, "Tyrol", CleanRegion("Tyrol Worldwide Europe"))
	assert.Equal(t, "Valais", CleanRegion("  Valais  "))
	assert.Equal(t, "", CleanRegion(""))
}

func TestConvertOneMatchesConvert(t *testing.T) {
	in := []models.Resort{
		{Name: "Ischgl", Country: ptr("Austria"), LiftsTotal: ptr(45), SlopesTotalKm: ptr(239.0), Rating: ptr(4.8)},
		{Name: "Vail", State: ptr("Colorado"), ElevationTop: ptr(3527), DayPassPrice: ptr("US$229")},
	}
	c := NewConverter(Alpine)
	batch := c.Convert(in)
	require.Len(t, batch, len(in))

	for i := range in {
		one := c.ConvertOne(&in[i], 100+i)
		if diff := cmp.Diff(batch[i], one, cmpopts.IgnoreFields(models.SkiResort{}, "ID")); diff != "" {
			t.Fatal(diff)
		}
	}
}

func TestConvertIgnoresNegativeAndHugeCounts(t *testing.T) {
	in := []models.Resort{{
		Name:          "Broken",
		LiftsTotal:    ptr(-3),
		SlopesTotalKm: ptr(1e30),
		DayPassPrice:  ptr("€99999999999999999999"),
	}}
	r := NewConverter(Alpine).Convert(in)[0]

	assert.Equal(t, Alpine.DefaultLifts, r.Lifts.Total)
	assert.Equal(t, Alpine.DefaultTrails.Total, r.Trails.Total)
	assert.Equal(t, Alpine.DefaultSkiableAcres, r.SkiableAcres)
	assert.Equal(t, Alpine.DefaultPrice, r.LiftTicketPrice.Adult)
	assert.GreaterOrEqual(t, r.Snowmaking.Acres, 0)
}
