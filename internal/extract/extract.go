package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ski-search/internal/models"
)

// Value is a converted capture
type Value struct {
	Kind  Kind
	Str   string
	Int   int
	Float float64
}

// Apply runs the rule's patterns in order against text and returns the first
// capture that converts to the rule's kind. Captures that fail to convert,
// or that Accept rejects, fall through to the next pattern.
func (r Rule) Apply(text string) (Value, bool) {
	for _, pat := range r.Patterns {
		m := pat.Expr.FindStringSubmatch(text)
		group := pat.Group
		if group == 0 {
			group = 1
		}
		if m == nil || group >= len(m) {
			continue
		}

		v, ok := convert(r.Kind, m[group], pat.Format)
		if !ok {
			continue
		}
		if r.Accept != nil && !r.Accept(v) {
			continue
		}
		return v, true
	}
	return Value{}, false
}

func convert(kind Kind, capture, format string) (Value, bool) {
	capture = strings.TrimSpace(capture)
	if capture == "" {
		return Value{}, false
	}

	switch kind {
	case KindInt:
		n, ok := ParseInt(capture)
		return Value{Kind: KindInt, Int: n}, ok
	case KindFloat:
		f, ok := ParseFloat(capture)
		return Value{Kind: KindFloat, Float: f}, ok
	default:
		if format != "" {
			capture = fmt.Sprintf(format, capture)
		}
		return Value{Kind: KindString, Str: capture}, true
	}
}

// Extractor applies pattern rules and DOM lookups to resort pages
type Extractor struct {
	rules map[Field]Rule
}

// NewExtractor creates an extractor from a rule set. A later rule for the
// same field replaces an earlier one.
func NewExtractor(rules ...Rule) *Extractor {
	e := &Extractor{rules: make(map[Field]Rule, len(rules))}
	for _, r := range rules {
		e.rules[r.Field] = r
	}
	return e
}

// Default returns an extractor using DefaultRules
func Default() *Extractor {
	return NewExtractor(DefaultRules()...)
}

// Extract finds field in text. Unknown fields and misses report false.
func (e *Extractor) Extract(text string, field Field) (Value, bool) {
	r, ok := e.rules[field]
	if !ok {
		return Value{}, false
	}
	return r.Apply(text)
}

func (e *Extractor) str(text string, field Field) *string {
	if v, ok := e.Extract(text, field); ok {
		return &v.Str
	}
	return nil
}

func (e *Extractor) integer(text string, field Field) *int {
	if v, ok := e.Extract(text, field); ok {
		return &v.Int
	}
	return nil
}

func (e *Extractor) float(text string, field Field) *float64 {
	if v, ok := e.Extract(text, field); ok {
		return &v.Float
	}
	return nil
}

// ExtractPage builds a raw resort record from a page. Fields that cannot be
// found are left nil; the record's Name may be empty.
func (e *Extractor) ExtractPage(p *Page) models.Resort {
	text := p.Text
	r := models.Resort{
		URL:                  p.URL,
		Name:                 resortName(p.Doc),
		Country:              country(p),
		Region:               e.str(text, FieldRegion),
		City:                 e.str(text, FieldCity),
		Rating:               e.float(text, FieldRating),
		ElevationBase:        e.integer(text, FieldElevationBase),
		ElevationTop:         e.integer(text, FieldElevationTop),
		VerticalDrop:         e.integer(text, FieldVerticalDrop),
		SlopesTotalKm:        e.float(text, FieldSlopesTotal),
		SlopesEasyKm:         e.float(text, FieldSlopesEasy),
		SlopesIntermediateKm: e.float(text, FieldSlopesIntermediate),
		SlopesDifficultKm:    e.float(text, FieldSlopesDifficult),
		SkiRoutesKm:          e.float(text, FieldSkiRoutes),
		LiftsTotal:           e.integer(text, FieldLiftsTotal),
		DayPassPrice:         e.str(text, FieldDayPassPrice),
		SeasonStart:          e.str(text, FieldSeasonStart),
		SeasonEnd:            e.str(text, FieldSeasonEnd),
		Website:              website(p.Doc),
		Description:          description(p.Doc),
		SkiableAcres:         e.integer(text, FieldSkiableAcres),
		NearbyTowns:          NearbyTowns(text),
	}

	r.State = usState(p, r.Country)
	if r.State != nil && r.Country == nil {
		usa := "USA"
		r.Country = &usa
	}

	return r
}

var (
	skiResortPrefix = regexp.MustCompile(`^(?i:ski resort)\s+`)
	titleSuffix     = regexp.MustCompile(`\s*(?:\||\s-\s).*$`)
)

func resortName(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return strings.TrimSpace(skiResortPrefix.ReplaceAllString(collapse(h1), ""))
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = titleSuffix.ReplaceAllString(collapse(title), "")
	title = strings.TrimSpace(skiResortPrefix.ReplaceAllString(title, ""))
	if len(title) > 3 {
		return title
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// KnownCountries are the countries recognised in breadcrumbs
var KnownCountries = []string{"Austria", "Switzerland", "France", "Italy", "Germany", "USA", "Canada"}

func country(p *Page) *string {
	var found *string
	p.Doc.Find("nav.breadcrumb a, ol.breadcrumb a, .breadcrumb a, [itemtype*='BreadcrumbList'] a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		label := strings.TrimSpace(s.Text())
		for _, c := range KnownCountries {
			if strings.EqualFold(label, c) {
				c := c
				found = &c
				return false
			}
		}
		return true
	})
	if found != nil {
		return found
	}

	html := strings.ToLower(p.HTML)
	for _, c := range KnownCountries {
		if strings.Contains(p.Text, c) && strings.Contains(html, "/"+strings.ToLower(c)+"/") {
			c := c
			return &c
		}
	}
	return nil
}

// USStates with ski areas
var USStates = []string{
	"Alaska", "Arizona", "California", "Colorado", "Connecticut", "Idaho", "Illinois",
	"Maine", "Massachusetts", "Michigan", "Minnesota", "Montana", "Nevada",
	"New Hampshire", "New Mexico", "New York", "North Carolina", "Oregon",
	"Pennsylvania", "Rhode Island", "South Dakota", "Tennessee", "Utah",
	"Vermont", "Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
}

// statesByLength lists longer names first so "West Virginia" wins over
// "Virginia".
var statesByLength = func() []string {
	s := append([]string(nil), USStates...)
	sort.SliceStable(s, func(i, j int) bool { return len(s[i]) > len(s[j]) })
	return s
}()

func usState(p *Page, country *string) *string {
	if country != nil && *country != "USA" {
		return nil
	}

	path := strings.ToLower(p.URL)
	for _, st := range statesByLength {
		slug := "/" + strings.ReplaceAll(strings.ToLower(st), " ", "-") + "/"
		if strings.Contains(path, slug) {
			st := st
			return &st
		}
	}

	if country == nil {
		return nil
	}
	for _, st := range statesByLength {
		if strings.Contains(p.Text, st) {
			st := st
			return &st
		}
	}
	return nil
}

var websiteHints = []string{"ski", "resort", "mountain"}

func website(doc *goquery.Document) *string {
	// skiresort.info labels the resort's own site "Main link"
	var found string
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 || !strings.Contains(strings.ToLower(s.Text()), "main link") {
			return true
		}
		a := s.NextAll().Filter("a[href]").First()
		if a.Length() == 0 {
			a = s.Parent().Find("a[href]").First()
		}
		if href, ok := a.Attr("href"); ok && isExternal(href) {
			found = href
			return false
		}
		return true
	})
	if found != "" {
		return &found
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !isExternal(href) {
			return true
		}
		lower := strings.ToLower(href)
		for _, h := range websiteHints {
			if strings.Contains(lower, h) {
				found = href
				return false
			}
		}
		return true
	})
	if found != "" {
		return &found
	}
	return nil
}

// isExternal reports whether href is an absolute http(s) link outside the
// skiresort.* family of sites
func isExternal(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return !strings.HasPrefix(host, "skiresort.")
}

var descriptionWords = []string{"ski", "resort", "slope"}

const maxDescriptionRunes = 300

func description(doc *goquery.Document) *string {
	if meta, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		meta = collapse(meta)
		if len(meta) > 20 {
			return &meta
		}
	}

	var found *string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapse(s.Text())
		if len(text) <= 100 {
			return true
		}
		lower := strings.ToLower(text)
		for _, w := range descriptionWords {
			if strings.Contains(lower, w) {
				if r := []rune(text); len(r) > maxDescriptionRunes {
					text = string(r[:maxDescriptionRunes]) + "..."
				}
				found = &text
				return false
			}
		}
		return true
	})
	return found
}

// NearbyTowns returns up to MaxNearbyTowns town names listed as
// "• Town (3.2 km)"
func NearbyTowns(text string) []string {
	var towns []string
	for _, m := range nearbyTownPattern.FindAllStringSubmatch(text, -1) {
		town := strings.TrimSpace(m[1])
		if len([]rune(town)) <= 2 {
			continue
		}
		towns = append(towns, town)
		if len(towns) == MaxNearbyTowns {
			break
		}
	}
	return towns
}
