package models

// SkiResort is the converted record consumed by the front-end application.
// Elevations are in feet.
type SkiResort struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Location        Location        `json:"location"`
	Elevation       Elevation       `json:"elevation"`
	Lifts           Lifts           `json:"lifts"`
	Trails          Trails          `json:"trails"`
	SkiableAcres    int             `json:"skiableAcres"`
	Snowmaking      Snowmaking      `json:"snowmaking"`
	SeasonDates     SeasonDates     `json:"seasonDates"`
	Website         *string         `json:"website,omitempty"`
	Description     string          `json:"description"`
	Amenities       []string        `json:"amenities"`
	LiftTicketPrice LiftTicketPrice `json:"liftTicketPrice"`
	Scraped         *ScrapedData    `json:"_scraped_data,omitempty"`
}

// Location is where the resort is
type Location struct {
	State       string      `json:"state"`
	City        string      `json:"city,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
}

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Elevation struct {
	Base     int `json:"base"`
	Summit   int `json:"summit"`
	Vertical int `json:"vertical"`
}

type Lifts struct {
	Total        int `json:"total"`
	Chairlifts   int `json:"chairlifts"`
	SurfaceLifts int `json:"surfaceLifts"`
	Gondolas     int `json:"gondolas"`
}

type Trails struct {
	Total        int `json:"total"`
	Beginner     int `json:"beginner"`
	Intermediate int `json:"intermediate"`
	Advanced     int `json:"advanced"`
	Expert       int `json:"expert"`
}

type Snowmaking struct {
	Percentage int `json:"percentage"`
	Acres      int `json:"acres"`
}

type SeasonDates struct {
	Opening string `json:"opening"`
	Closing string `json:"closing"`
}

type LiftTicketPrice struct {
	Adult int `json:"adult"`
}

// ScrapedData carries source values that have no slot in the front-end shape
type ScrapedData struct {
	Rating      *float64 `json:"rating"`
	SlopesKm    SlopesKm `json:"slopes_km"`
	NearbyTowns []string `json:"nearby_towns"`
	SourceURL   string   `json:"source_url,omitempty"`
}

type SlopesKm struct {
	Total        float64 `json:"total"`
	Easy         float64 `json:"easy"`
	Intermediate float64 `json:"intermediate"`
	Difficult    float64 `json:"difficult"`
}
