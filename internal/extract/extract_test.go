package extract

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name, url string) *Page {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	defer f.Close()

	page, err := NewPage(f, url)
	require.NoError(t, err)
	return page
}

func TestExtractPageAlpine(t *testing.T) {
	page := loadFixture(t, "resort.html", "https://www.skiresort.info/ski-resort/kitzski-kitzbuehelkirchberg/")
	r := Default().ExtractPage(page)

	assert.Equal(t, "KitzSki – Kitzbühel/Kirchberg", r.Name)
	assert.Equal(t, "https://www.skiresort.info/ski-resort/kitzski-kitzbuehelkirchberg/", r.URL)

	require.NotNil(t, r.Country)
	assert.Equal(t, "Austria", *r.Country)
	assert.Nil(t, r.State)
	require.NotNil(t, r.Region)
	assert.Equal(t, "Kitzbuehel Alps", *r.Region)
	assert.Nil(t, r.City)

	require.NotNil(t, r.Rating)
	assert.InDelta(t, 4.7, *r.Rating, 0.001)

	require.NotNil(t, r.ElevationBase)
	require.NotNil(t, r.ElevationTop)
	require.NotNil(t, r.VerticalDrop)
	assert.Equal(t, 800, *r.ElevationBase)
	assert.Equal(t, 2000, *r.ElevationTop)
	assert.Equal(t, 1200, *r.VerticalDrop)

	require.NotNil(t, r.SlopesTotalKm)
	assert.InDelta(t, 188.0, *r.SlopesTotalKm, 0.001)
	require.NotNil(t, r.SlopesEasyKm)
	assert.InDelta(t, 93.0, *r.SlopesEasyKm, 0.001)
	require.NotNil(t, r.SlopesIntermediateKm)
	assert.InDelta(t, 67.5, *r.SlopesIntermediateKm, 0.001)
	require.NotNil(t, r.SlopesDifficultKm)
	assert.InDelta(t, 28.0, *r.SlopesDifficultKm, 0.001)
	require.NotNil(t, r.SkiRoutesKm)
	assert.InDelta(t, 12.5, *r.SkiRoutesKm, 0.001)

	require.NotNil(t, r.LiftsTotal)
	assert.Equal(t, 57, *r.LiftsTotal)

	require.NotNil(t, r.DayPassPrice)
	assert.Equal(t, "€79,50", *r.DayPassPrice)

	require.NotNil(t, r.SeasonStart)
	require.NotNil(t, r.SeasonEnd)
	assert.Equal(t, "2024-10-18", *r.SeasonStart)
	assert.Equal(t, "2025-05-01", *r.SeasonEnd)

	assert.Nil(t, r.SkiableAcres)

	require.NotNil(t, r.Website)
	assert.Equal(t, "https://www.kitzski.at/en/", *r.Website)

	require.NotNil(t, r.Description)
	assert.True(t, strings.HasPrefix(*r.Description, "Test report for the ski resort KitzSki"))

	assert.Equal(t, []string{"Kitzbühel", "Kirchberg", "Jochberg", "Aurach", "Reith"}, r.NearbyTowns)
}

func TestExtractPageUSA(t *testing.T) {
	long := "Vail is a ski resort with legendary back bowls. " + strings.Repeat("Powder days on the slopes are common. ", 12)
	html := `<html><head><title>Vail | skiresort.info</title>
<meta name="description" content="Vail">
</head><body>
<div class="breadcrumb"><a href="/ski-resorts/north-america/">North America</a> › <a href="/ski-resorts/usa/">USA</a> › <a href="/ski-resorts/colorado/">Colorado</a></div>
<h1>Ski resort Vail</h1>
<p>Vail › Eagle County › USA</p>
<p>` + long + `</p>
<div>Valley station: 2,475 m</div>
<div>Mountain station: 3,527 m</div>
<div>(1052 m difference)</div>
<div>Lifts: 31</div>
<div>Skiable area: 5,289 acres</div>
<div>Adult US$ 229</div>
<div>Opens: November</div>
<div>Closes: April</div>
<a href="https://www.skiresort.de/skigebiet/vail/">Deutsch</a>
<a href="https://www.vailresorts.com/">Official site</a>
</body></html>`

	page, err := ParseHTML(html, "https://www.skiresort.info/ski-resort/vail/")
	require.NoError(t, err)
	r := Default().ExtractPage(page)

	assert.Equal(t, "Vail", r.Name)
	require.NotNil(t, r.Country)
	assert.Equal(t, "USA", *r.Country)
	require.NotNil(t, r.State)
	assert.Equal(t, "Colorado", *r.State)
	require.NotNil(t, r.City)
	assert.Equal(t, "Eagle County", *r.City)

	require.NotNil(t, r.ElevationBase)
	assert.Equal(t, 2475, *r.ElevationBase)
	require.NotNil(t, r.ElevationTop)
	assert.Equal(t, 3527, *r.ElevationTop)
	require.NotNil(t, r.VerticalDrop)
	assert.Equal(t, 1052, *r.VerticalDrop)
	require.NotNil(t, r.LiftsTotal)
	assert.Equal(t, 31, *r.LiftsTotal)
	require.NotNil(t, r.SkiableAcres)
	assert.Equal(t, 5289, *r.SkiableAcres)
	require.NotNil(t, r.DayPassPrice)
	assert.Equal(t, "US$229", *r.DayPassPrice)
	require.NotNil(t, r.SeasonStart)
	assert.Equal(t, "November", *r.SeasonStart)
	require.NotNil(t, r.SeasonEnd)
	assert.Equal(t, "April", *r.SeasonEnd)

	require.NotNil(t, r.Website)
	assert.Equal(t, "https://www.vailresorts.com/", *r.Website)

	require.NotNil(t, r.Description)
	assert.True(t, strings.HasSuffix(*r.Description, "..."))
	assert.Equal(t, maxDescriptionRunes+3, len([]rune(*r.Description)))

	assert.Nil(t, r.Rating)
	assert.Nil(t, r.SlopesTotalKm)
	assert.Empty(t, r.NearbyTowns)
}

func TestExtractPageNameFallback(t *testing.T) {
	page, err := ParseHTML(`<html><head><title>Ski resort Zermatt - Matterhorn | skiresort.info</title></head><body></body></html>`, "u")
	require.NoError(t, err)
	assert.Equal(t, "Zermatt", Default().ExtractPage(page).Name)

	page, err = ParseHTML(`<html><head><title>Ski</title></head><body><p>no heading</p></body></html>`, "u")
	require.NoError(t, err)
	assert.Empty(t, Default().ExtractPage(page).Name)
}

func TestExtractPageStatePrefersLongestName(t *testing.T) {
	page, err := ParseHTML(`<html><body>
<div class="breadcrumb"><a>USA</a></div>
<h1>Snowshoe</h1><p>Snowshoe Mountain, West Virginia</p></body></html>`, "https://www.skiresort.info/ski-resort/snowshoe/")
	require.NoError(t, err)

	r := Default().ExtractPage(page)
	require.NotNil(t, r.State)
	assert.Equal(t, "West Virginia", *r.State)
}

func TestExtractPageStateFromURL(t *testing.T) {
	page, err := ParseHTML(`<html><body><h1>Loveland</h1></body></html>`,
		"https://www.skiresort.info/ski-resorts/colorado/loveland/")
	require.NoError(t, err)

	r := Default().ExtractPage(page)
	require.NotNil(t, r.State)
	assert.Equal(t, "Colorado", *r.State)
	require.NotNil(t, r.Country)
	assert.Equal(t, "USA", *r.Country)
}

func TestExtractFallbackOrder(t *testing.T) {
	e := Default()

	tests := []struct {
		name  string
		field Field
		text  string
		want  Value
	}{
		{"range beats labelled base", FieldElevationBase, "Base: 900 m\n1,050 m - 2,100 m", Value{Kind: KindInt, Int: 1050}},
		{"labelled base", FieldElevationBase, "Base: 1,050 m", Value{Kind: KindInt, Int: 1050}},
		{"valley station", FieldElevationBase, "Valley station: 950 m", Value{Kind: KindInt, Int: 950}},
		{"summit", FieldElevationTop, "Summit: 3,100 m", Value{Kind: KindInt, Int: 3100}},
		{"vertical drop label", FieldVerticalDrop, "Vertical drop: 850 m", Value{Kind: KindInt, Int: 850}},
		{"difference", FieldVerticalDrop, "Difference 1200 m", Value{Kind: KindInt, Int: 1200}},
		{"lifts label before loose count", FieldLiftsTotal, "30 lifts\nLifts: 12", Value{Kind: KindInt, Int: 12}},
		{"loose lift count", FieldLiftsTotal, "served by 9 lifts", Value{Kind: KindInt, Int: 9}},
		{"pistes", FieldSlopesTotal, "Pistes: 1,200.5 km", Value{Kind: KindFloat, Float: 1200.5}},
		{"lower case difficulty", FieldSlopesEasy, "easy: 12 km", Value{Kind: KindFloat, Float: 12}},
		{"rating out of range falls through", FieldRating, "Rating: 9.5\n4.2 / 5", Value{Kind: KindFloat, Float: 4.2}},
		{"rating label", FieldRating, "Rating: 3.9", Value{Kind: KindFloat, Float: 3.9}},
		{"dollar price", FieldDayPassPrice, "Adult $ 129", Value{Kind: KindString, Str: "US$129"}},
		{"us dollar price", FieldDayPassPrice, "US$ 99.00 and $ 10", Value{Kind: KindString, Str: "US$99.00"}},
		{"season month year", FieldSeasonStart, "Season: December 2024", Value{Kind: KindString, Str: "December 2024"}},
		{"early month", FieldSeasonStart, "usually opens early December", Value{Kind: KindString, Str: "Early December"}},
		{"mid month", FieldSeasonEnd, "closes Mid April", Value{Kind: KindString, Str: "Mid April"}},
		{"until", FieldSeasonEnd, "Until: May", Value{Kind: KindString, Str: "May"}},
		{"loose acres", FieldSkiableAcres, "2,000 acres of terrain", Value{Kind: KindInt, Int: 2000}},
		{"location", FieldCity, "Location: Park City", Value{Kind: KindString, Str: "Park City"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.text, tt.field)
			require.True(t, ok)
			if tt.want.Kind == KindFloat {
				assert.Equal(t, KindFloat, got.Kind)
				assert.InDelta(t, tt.want.Float, got.Float, 0.0001)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAbsent(t *testing.T) {
	e := Default()
	for _, r := range DefaultRules() {
		_, ok := e.Extract("", r.Field)
		assert.False(t, ok, r.Field)
		_, ok = e.Extract("nothing to see here", r.Field)
		assert.False(t, ok, r.Field)
	}

	_, ok := e.Extract("Worldwide › North America › USA", FieldCity)
	assert.False(t, ok)

	_, ok = e.Extract("Lifts: 4", Field("unknown"))
	assert.False(t, ok)
}

func TestNewExtractorReplacesRule(t *testing.T) {
	custom := Rule{
		Field:    FieldLiftsTotal,
		Kind:     KindInt,
		Patterns: []Pattern{p(`Anlagen:\s*(\d+)`)},
	}
	e := NewExtractor(append(DefaultRules(), custom)...)

	got, ok := e.Extract("Anlagen: 14", FieldLiftsTotal)
	require.True(t, ok)
	assert.Equal(t, 14, got.Int)

	_, ok = e.Extract("Lifts: 4", FieldLiftsTotal)
	assert.False(t, ok)
}
