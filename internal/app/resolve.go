package app

import (
	"context"

	"tour_scraper/internal/domain"
)

// CandidateIndex gives the resolver key-based access to the merged
// candidates extracted so far.
type CandidateIndex struct {
	arrivals     map[string]*DestinationCandidate // normalized name/alias -> candidate
	departures   map[string]*DestinationCandidate
	hotels       map[string]*HotelCandidate
	transports   map[string]*TransportCandidate
	roomsByHotel map[string][]*RoomTypeCandidate // extraction order preserved
}

func NewCandidateIndex(dests []*DestinationCandidate, hotels []*HotelCandidate, transports []*TransportCandidate) *CandidateIndex {
	ix := &CandidateIndex{
		arrivals:     make(map[string]*DestinationCandidate),
		departures:   make(map[string]*DestinationCandidate),
		hotels:       make(map[string]*HotelCandidate, len(hotels)),
		transports:   make(map[string]*TransportCandidate, len(transports)),
		roomsByHotel: make(map[string][]*RoomTypeCandidate),
	}
	for _, d := range dests {
		m := ix.arrivals
		if d.Role == domain.RoleDeparture {
			m = ix.departures
		}
		names := append([]string{d.Name}, d.Aliases...)
		for _, n := range names {
			key := domain.NormalizeKey(n)
			if _, taken := m[key]; !taken {
				m[key] = d
			}
		}
	}
	for _, h := range hotels {
		ix.hotels[h.Key()] = h
	}
	for _, t := range transports {
		ix.transports[t.Key()] = t
	}
	return ix
}

// Arrival resolves an arrival destination by display name or operator alias.
func (ix *CandidateIndex) Arrival(name string) *DestinationCandidate {
	return ix.arrivals[domain.NormalizeKey(name)]
}

// Departure resolves a departure destination by display name or alias.
func (ix *CandidateIndex) Departure(name string) *DestinationCandidate {
	return ix.departures[domain.NormalizeKey(name)]
}

func (ix *CandidateIndex) AddRooms(rooms []*RoomTypeCandidate) {
	for _, r := range rooms {
		ix.roomsByHotel[r.HotelKey] = append(ix.roomsByHotel[r.HotelKey], r)
	}
}

// Resolver fills in the cross-entity references of tour-option candidates.
// Missing room types trigger a single on-demand fetch of the rate's product
// content (one hop, never deeper); any unresolved mandatory reference
// excludes the candidate and is kept in diagnostics.
type Resolver struct {
	client  domain.SourceClient
	ex      Extractor
	diag    *Diagnostics
	fetched map[string]bool // supplierObjectID -> content already fetched
}

func NewResolver(client domain.SourceClient, ex Extractor, diag *Diagnostics) *Resolver {
	return &Resolver{client: client, ex: ex, diag: diag, fetched: make(map[string]bool)}
}

// ResolveTourOptions returns the candidates whose references all resolved,
// plus every room-type candidate extracted along the way (resolved or not,
// so partial hotels still keep their rooms).
func (r *Resolver) ResolveTourOptions(ctx context.Context, tours []*TourOptionCandidate, ix *CandidateIndex) ([]*TourOptionCandidate, []*RoomTypeCandidate, error) {
	var resolved []*TourOptionCandidate
	var allRooms []*RoomTypeCandidate

	for _, tour := range tours {
		if err := ctx.Err(); err != nil {
			return resolved, allRooms, err
		}

		if ix.Arrival(tour.DestName) == nil {
			r.diag.Prune("tour_options", tour.RateID, "unresolved destination "+tour.DestName)
			continue
		}

		hotelKey := tour.hotelKey()
		if _, ok := ix.hotels[hotelKey]; !ok {
			r.diag.Prune("tour_options", tour.RateID, "unresolved hotel "+tour.HotelName)
			continue
		}

		if tour.TransportKey == "" {
			r.diag.Prune("tour_options", tour.RateID, "rate has no transport")
			continue
		}
		if _, ok := ix.transports[tour.TransportKey]; !ok {
			r.diag.Prune("tour_options", tour.RateID, "unresolved transport "+tour.TransportKey)
			continue
		}

		rooms := r.roomsFor(ctx, tour, hotelKey, ix, &allRooms)
		roomKey := ""
		if tour.RoomName != "" {
			want := domain.RoomTypeKey(hotelKey, tour.RoomName)
			for _, rt := range rooms {
				if rt.Key() == want {
					roomKey = want
					break
				}
			}
		} else if len(rooms) > 0 {
			// the operator does not name a room on every rate; the first
			// listed room of the hotel is the offered baseline
			roomKey = rooms[0].Key()
		}
		if roomKey == "" {
			r.diag.Prune("tour_options", tour.RateID, "unresolved room type "+tour.RoomName)
			continue
		}

		tour.RoomKey = roomKey
		resolved = append(resolved, tour)
	}
	return resolved, allRooms, nil
}

// roomsFor returns the known rooms of the hotel, fetching the rate's product
// content at most once per supplier object.
func (r *Resolver) roomsFor(ctx context.Context, tour *TourOptionCandidate, hotelKey string, ix *CandidateIndex, collected *[]*RoomTypeCandidate) []*RoomTypeCandidate {
	if rooms := ix.roomsByHotel[hotelKey]; len(rooms) > 0 {
		return rooms
	}
	if tour.SupplierObjectID == "" || r.fetched[tour.SupplierObjectID] {
		return nil
	}
	r.fetched[tour.SupplierObjectID] = true

	content, err := r.client.ProductContent(ctx, tour.SupplierObjectID)
	if err != nil {
		r.diag.FetchFailure("getProductContent", err)
		return nil
	}
	if content == nil {
		return nil
	}
	rooms := r.ex.RoomTypes(content, hotelKey, tour.Board, r.diag)
	ix.AddRooms(rooms)
	*collected = append(*collected, rooms...)
	return ix.roomsByHotel[hotelKey]
}
