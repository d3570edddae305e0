package domain

import "time"

// Role of a destination within the dataset. A destination can carry both
// roles, but identity is per role so "Faro" the arrival region and "Faro"
// the coach stop stay distinct records.
const (
	RoleArrival   = "arrival"
	RoleDeparture = "departure"
)

// Transport modes known to the operator sources.
const (
	ModeFlight = "flight"
	ModeCoach  = "coach"
)

type Destination struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Country   string `json:"country,omitempty"`
	Region    string `json:"region,omitempty"`
	Arrival   bool   `json:"arrival"`
	Departure bool   `json:"departure"`
}

type Hotel struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DestinationID string `json:"destination_id"`
	// Stars x10 ("35" is three and a half stars), the operator's convention.
	Rating      int      `json:"rating"`
	RoomTypeIDs []string `json:"room_type_ids"`
	Lat         float64  `json:"lat,omitempty"`
	Lng         float64  `json:"lng,omitempty"`
	Raw         []byte   `json:"raw,omitempty"` // source payload for audit
}

type RoomType struct {
	ID        string `json:"id"`
	HotelID   string `json:"hotel_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	ExtraBeds int    `json:"extra_beds"`
	Board     string `json:"board,omitempty"` // meal basis, e.g. "All inclusive"
}

type TransportMethod struct {
	ID       string   `json:"id"`
	Mode     string   `json:"mode"`
	OriginID string   `json:"origin_id"`
	TargetID string   `json:"target_id"`
	Carrier  string   `json:"carrier,omitempty"`
	Via      []string `json:"via,omitempty"` // intermediate stop codes
}

type TourOption struct {
	ID            string  `json:"id"`
	DestinationID string  `json:"destination_id"`
	HotelID       string  `json:"hotel_id"`
	RoomTypeID    string  `json:"room_type_id"`
	TransportID   string  `json:"transport_id"`
	StartDate     string  `json:"start_date"` // YYYY-MM-DD
	EndDate       string  `json:"end_date"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency,omitempty"`
	Raw           []byte  `json:"raw,omitempty"`
}

// Manifest summarizes one run. It is always populated, even when entities
// were pruned, so partial-data runs stay auditable.
type Manifest struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	SourceCount   int            `json:"source_count"`
	Counts        map[string]int `json:"counts"`
	Warnings      int            `json:"warnings"`
	Conflicts     int            `json:"conflicts"`
	Pruned        map[string]int `json:"pruned"`
	FetchFailures int            `json:"fetch_failures"`
}

// Dataset is the single output artifact. Entity slices are ordered by
// identity key; references are internally consistent (no ID points outside
// the dataset).
type Dataset struct {
	Destinations []Destination     `json:"destinations"`
	Hotels       []Hotel           `json:"hotels"`
	RoomTypes    []RoomType        `json:"room_types"`
	Transports   []TransportMethod `json:"transports"`
	TourOptions  []TourOption      `json:"tour_options"`
	Manifest     Manifest          `json:"manifest"`
}

// Empty reports whether the dataset carries no entities at all. An empty
// dataset fails the run.
func (d *Dataset) Empty() bool {
	return len(d.Destinations) == 0 && len(d.Hotels) == 0 && len(d.RoomTypes) == 0 &&
		len(d.Transports) == 0 && len(d.TourOptions) == 0
}
