package extract

import (
	"regexp"
)

// Field names a resort attribute that can be extracted from page text
type Field string

const (
	FieldRegion             Field = "region"
	FieldCity               Field = "city"
	FieldRating             Field = "rating"
	FieldElevationBase      Field = "elevation_base"
	FieldElevationTop       Field = "elevation_top"
	FieldVerticalDrop       Field = "vertical_drop"
	FieldSlopesTotal        Field = "slopes_total_km"
	FieldSlopesEasy         Field = "slopes_easy_km"
	FieldSlopesIntermediate Field = "slopes_intermediate_km"
	FieldSlopesDifficult    Field = "slopes_difficult_km"
	FieldSkiRoutes          Field = "ski_routes_km"
	FieldLiftsTotal         Field = "lifts_total"
	FieldDayPassPrice       Field = "day_pass_price"
	FieldSeasonStart        Field = "season_start"
	FieldSeasonEnd          Field = "season_end"
	FieldSkiableAcres       Field = "skiable_acres"
)

// Kind is the type a rule's capture is converted to
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Pattern is one regular expression in a field's fallback chain.
// Group selects the capture (1 when zero). Format, when set, is applied
// to string captures with fmt.Sprintf.
type Pattern struct {
	Expr   *regexp.Regexp
	Group  int
	Format string
}

// Rule is an ordered list of patterns for one field; the first pattern that
// matches and converts cleanly wins.
type Rule struct {
	Field    Field
	Kind     Kind
	Patterns []Pattern
	// Accept can veto a converted match so the next pattern is tried
	Accept func(Value) bool
}

const (
	num   = `(\d[\d,]*(?:\.\d+)?)`
	whole = `(\d[\d,]*)`
)

func p(expr string) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr)}
}

func pg(expr string, group int) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr), Group: group}
}

func pf(expr, format string) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr), Format: format}
}

var elevationRange = whole + `\s*m\s*[-–]\s*` + whole + `\s*m`

// DefaultRules returns the skiresort.info pattern sets
func DefaultRules() []Rule {
	return []Rule{
		{
			Field: FieldRegion,
			Kind:  KindString,
			Patterns: []Pattern{
				p(`([A-Za-z][A-Za-z ]*[A-Za-z])\s*\([A-Za-z][A-Za-z\s]*\)`),
			},
		},
		{
			Field: FieldCity,
			Kind:  KindString,
			Patterns: []Pattern{
				p(`›\s*([A-Za-z][A-Za-z ]*[A-Za-z])\s*›\s*USA`),
				p(`City:\s*([A-Za-z][A-Za-z ]*[A-Za-z])`),
				p(`Location:\s*([A-Za-z][A-Za-z ]*[A-Za-z])`),
			},
			Accept: func(v Value) bool {
				return len(v.Str) > 1 && !notCities[v.Str]
			},
		},
		{
			Field: FieldRating,
			Kind:  KindFloat,
			Patterns: []Pattern{
				p(`(\d+(?:\.\d+)?)\s+out of\s+\d+\s+stars?`),
				p(`Test report\s+(\d+(?:\.\d+)?)\s+out of\s+\d+`),
				p(`Rating:\s*(\d+\.\d+)`),
				p(`(\d+\.\d+)\s*/\s*5\b`),
			},
			Accept: func(v Value) bool {
				return v.Float <= 5
			},
		},
		{
			Field: FieldElevationBase,
			Kind:  KindInt,
			Patterns: []Pattern{
				pg(elevationRange, 1),
				p(`Base:\s*` + whole + `\s*m`),
				p(`Valley station:\s*` + whole + `\s*m`),
			},
		},
		{
			Field: FieldElevationTop,
			Kind:  KindInt,
			Patterns: []Pattern{
				pg(elevationRange, 2),
				p(`Top:\s*` + whole + `\s*m`),
				p(`Summit:\s*` + whole + `\s*m`),
				p(`Mountain station:\s*` + whole + `\s*m`),
			},
		},
		{
			Field: FieldVerticalDrop,
			Kind:  KindInt,
			Patterns: []Pattern{
				p(`Difference\s+` + whole + `\s*m`),
				p(`Vertical\s*drop:\s*` + whole + `\s*m`),
				p(`\(` + whole + `\s*m\s*difference\)`),
			},
		},
		{
			Field: FieldSlopesTotal,
			Kind:  KindFloat,
			Patterns: []Pattern{
				p(`Total:\s*` + num + `\s*km`),
				p(`Slopes:\s*` + num + `\s*km`),
				p(`Pistes:\s*` + num + `\s*km`),
			},
		},
		difficultyRule(FieldSlopesEasy, "easy"),
		difficultyRule(FieldSlopesIntermediate, "intermediate"),
		difficultyRule(FieldSlopesDifficult, "difficult"),
		{
			Field: FieldSkiRoutes,
			Kind:  KindFloat,
			Patterns: []Pattern{
				p(`Ski routes\s*` + num + `\s*km`),
			},
		},
		{
			Field: FieldLiftsTotal,
			Kind:  KindInt,
			Patterns: []Pattern{
				p(`(\d+)\s+ski lifts?`),
				p(`Total lifts?:\s*(\d+)`),
				p(`Lifts?:\s*(\d+)`),
				p(`(\d+)\s+lifts?\b`),
			},
		},
		{
			Field: FieldDayPassPrice,
			Kind:  KindString,
			Patterns: []Pattern{
				pf(`US\$\s*(\d+(?:[.,]\d{2})?)`, "US$%s"),
				pf(`€\s*(\d+(?:[.,]\d{2})?)`, "€%s"),
				pf(`\$\s*(\d+(?:[.,]\d{2})?)`, "US$%s"),
			},
		},
		{
			Field: FieldSeasonStart,
			Kind:  KindString,
			Patterns: []Pattern{
				p(`(\d{4}-\d{2}-\d{2})\s*-\s*\d{4}-\d{2}-\d{2}`),
				p(`Season:\s*(\w+\s+\d{4})`),
				p(`Opens?:\s*(\w+)`),
				p(`Opening:\s*(\w+)`),
				pf(`(?i)\bearly\s+(\w+)`, "Early %s"),
			},
		},
		{
			Field: FieldSeasonEnd,
			Kind:  KindString,
			Patterns: []Pattern{
				p(`\d{4}-\d{2}-\d{2}\s*-\s*(\d{4}-\d{2}-\d{2})`),
				p(`Closes?:\s*(\w+)`),
				p(`Closing:\s*(\w+)`),
				p(`Until:\s*(\w+)`),
				pf(`(?i)\bmid\s+(\w+)`, "Mid %s"),
			},
		},
		{
			Field: FieldSkiableAcres,
			Kind:  KindInt,
			Patterns: []Pattern{
				p(`Skiable area:\s*` + whole + `\s*acres?`),
				p(whole + `\s*acres?`),
			},
		},
	}
}

func difficultyRule(field Field, difficulty string) Rule {
	return Rule{
		Field: field,
		Kind:  KindFloat,
		Patterns: []Pattern{
			p(`(?i)` + difficulty + `\s*` + num + `\s*km`),
			p(`(?i)` + difficulty + `:\s*` + num + `\s*km`),
		},
	}
}

// breadcrumb entries that precede "› USA" but are not cities
var notCities = map[string]bool{
	"USA":           true,
	"North America": true,
	"Worldwide":     true,
}

var nearbyTownPattern = regexp.MustCompile(`•\s*([A-Za-z\-äöüßÄÖÜ][A-Za-z\s\-äöüßÄÖÜ]*?)\s*\([\d.,]+\s*km\)`)

// MaxNearbyTowns caps how many towns are kept per resort
const MaxNearbyTowns = 5
