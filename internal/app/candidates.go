package app

import "tour_scraper/internal/domain"

// Candidate records are the mutable extraction-stage form of each entity.
// They reference other entities by name, not by ID; the resolver and
// assembler turn names into dataset-internal identifiers. A candidate is
// owned by the goroutine that extracted it until handed to the merge stage.

type DestinationCandidate struct {
	Name    string
	Role    string // RoleArrival | RoleDeparture
	Country string
	Region  string
	// Aliases are alternate lookup names for this destination (the
	// operator's URL identifier next to the display title).
	Aliases []string
}

func (c *DestinationCandidate) Key() string { return domain.DestinationKey(c.Name, c.Role) }

type HotelCandidate struct {
	Name     string
	DestName string // arrival destination reference
	Rating   int    // stars x10, 0 = unknown
	Lat, Lng float64
	Raw      []byte
}

func (c *HotelCandidate) Key() string {
	return domain.HotelKey(c.Name, domain.DestinationKey(c.DestName, domain.RoleArrival))
}

type RoomTypeCandidate struct {
	HotelKey  string // parent hotel identity key
	Name      string
	Capacity  int
	ExtraBeds int
	Board     string
}

func (c *RoomTypeCandidate) Key() string { return domain.RoomTypeKey(c.HotelKey, c.Name) }

type TransportCandidate struct {
	Mode       string
	OriginName string
	TargetName string
	Carrier    string
	Via        []string
}

func (c *TransportCandidate) Key() string {
	return domain.TransportKey(
		c.Mode,
		domain.DestinationKey(c.OriginName, domain.RoleDeparture),
		domain.DestinationKey(c.TargetName, domain.RoleArrival),
	)
}

type TourOptionCandidate struct {
	RateID           string
	SupplierObjectID string
	DestName         string
	HotelName        string
	RoomName         string // optional at extraction; resolved before assembly
	Board            string // meal basis of the offer, applied to lazily extracted rooms
	TransportKey     string // identity key of the referenced transport
	StartDate        string
	EndDate          string
	Price            float64
	Currency         string
	Raw              []byte

	// set by the resolver
	RoomKey string
}

func (c *TourOptionCandidate) hotelKey() string {
	return domain.HotelKey(c.HotelName, domain.DestinationKey(c.DestName, domain.RoleArrival))
}

func (c *TourOptionCandidate) Key() string {
	return domain.TourOptionKey(
		domain.DestinationKey(c.DestName, domain.RoleArrival),
		c.hotelKey(),
		c.RoomKey,
		c.TransportKey,
		c.StartDate,
		c.EndDate,
	)
}
