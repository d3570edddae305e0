package app

import (
	"sort"
	"time"

	"tour_scraper/internal/domain"
)

// Assemble turns the merged, resolved candidates into the final dataset.
// Records whose references point at entities that did not survive earlier
// stages are pruned here, so the output is internally consistent: every ID
// a record carries exists in the same dataset. Entity slices are sorted by
// ID, which makes repeat runs over identical source data byte-identical up
// to the generation timestamp.
func Assemble(
	dests []*DestinationCandidate,
	hotels []*HotelCandidate,
	rooms []*RoomTypeCandidate,
	transports []*TransportCandidate,
	tours []*TourOptionCandidate,
	diag *Diagnostics,
	sourceCount int,
	now time.Time,
) *domain.Dataset {
	ix := NewCandidateIndex(dests, hotels, transports)
	ds := &domain.Dataset{}

	for _, d := range dests {
		ds.Destinations = append(ds.Destinations, domain.Destination{
			ID:        d.Key(),
			Name:      d.Name,
			Country:   d.Country,
			Region:    d.Region,
			Arrival:   d.Role == domain.RoleArrival,
			Departure: d.Role == domain.RoleDeparture,
		})
	}

	// Hotels need a resolvable arrival destination. The rate payload may
	// reference the destination by its operator alias, so the lookup goes
	// through the alias index and the record stores the canonical ID.
	hotelDest := make(map[string]string) // hotel key -> destination ID
	for _, h := range hotels {
		d := ix.Arrival(h.DestName)
		if d == nil {
			diag.Prune("hotels", h.Key(), "unknown destination "+h.DestName)
			continue
		}
		hotelDest[h.Key()] = d.Key()
	}

	roomsByHotel := make(map[string][]domain.RoomType)
	for _, r := range rooms {
		if _, ok := hotelDest[r.HotelKey]; !ok {
			diag.Prune("room_types", r.Key(), "unknown hotel")
			continue
		}
		roomsByHotel[r.HotelKey] = append(roomsByHotel[r.HotelKey], domain.RoomType{
			ID:        r.Key(),
			HotelID:   r.HotelKey,
			Name:      r.Name,
			Capacity:  r.Capacity,
			ExtraBeds: r.ExtraBeds,
			Board:     r.Board,
		})
	}

	// A hotel nothing can be booked in is dead weight; drop hotels that
	// ended up with no room types at all.
	finalHotel := make(map[string]bool, len(hotelDest))
	for _, h := range hotels {
		key := h.Key()
		destID, ok := hotelDest[key]
		if !ok {
			continue
		}
		hotelRooms := roomsByHotel[key]
		if len(hotelRooms) == 0 {
			diag.Prune("hotels", key, "no room types")
			continue
		}
		finalHotel[key] = true

		ids := make([]string, 0, len(hotelRooms))
		for _, r := range hotelRooms {
			ids = append(ids, r.ID)
		}
		sort.Strings(ids)
		ds.Hotels = append(ds.Hotels, domain.Hotel{
			ID:            key,
			Name:          h.Name,
			DestinationID: destID,
			Rating:        h.Rating,
			RoomTypeIDs:   ids,
			Lat:           h.Lat,
			Lng:           h.Lng,
			Raw:           h.Raw,
		})
		ds.RoomTypes = append(ds.RoomTypes, hotelRooms...)
	}

	finalTransport := make(map[string]bool, len(transports))
	for _, t := range transports {
		origin := ix.Departure(t.OriginName)
		target := ix.Arrival(t.TargetName)
		if origin == nil || target == nil {
			diag.Prune("transports", t.Key(), "unknown endpoint")
			continue
		}
		finalTransport[t.Key()] = true
		ds.Transports = append(ds.Transports, domain.TransportMethod{
			ID:       t.Key(),
			Mode:     t.Mode,
			OriginID: origin.Key(),
			TargetID: target.Key(),
			Carrier:  t.Carrier,
			Via:      t.Via,
		})
	}

	finalRoom := make(map[string]bool, len(ds.RoomTypes))
	for _, r := range ds.RoomTypes {
		finalRoom[r.ID] = true
	}
	for _, t := range tours {
		d := ix.Arrival(t.DestName)
		hotelKey := t.hotelKey()
		switch {
		case d == nil:
			diag.Prune("tour_options", t.Key(), "unknown destination")
			continue
		case !finalHotel[hotelKey]:
			diag.Prune("tour_options", t.Key(), "unknown hotel")
			continue
		case !finalRoom[t.RoomKey]:
			diag.Prune("tour_options", t.Key(), "unknown room type")
			continue
		case !finalTransport[t.TransportKey]:
			diag.Prune("tour_options", t.Key(), "unknown transport")
			continue
		}
		ds.TourOptions = append(ds.TourOptions, domain.TourOption{
			ID:            t.Key(),
			DestinationID: d.Key(),
			HotelID:       hotelKey,
			RoomTypeID:    t.RoomKey,
			TransportID:   t.TransportKey,
			StartDate:     t.StartDate,
			EndDate:       t.EndDate,
			Price:         t.Price,
			Currency:      t.Currency,
			Raw:           t.Raw,
		})
	}

	sort.Slice(ds.Destinations, func(i, j int) bool { return ds.Destinations[i].ID < ds.Destinations[j].ID })
	sort.Slice(ds.Hotels, func(i, j int) bool { return ds.Hotels[i].ID < ds.Hotels[j].ID })
	sort.Slice(ds.RoomTypes, func(i, j int) bool { return ds.RoomTypes[i].ID < ds.RoomTypes[j].ID })
	sort.Slice(ds.Transports, func(i, j int) bool { return ds.Transports[i].ID < ds.Transports[j].ID })
	sort.Slice(ds.TourOptions, func(i, j int) bool { return ds.TourOptions[i].ID < ds.TourOptions[j].ID })

	ds.Manifest = diag.Manifest(map[string]int{
		"destinations": len(ds.Destinations),
		"hotels":       len(ds.Hotels),
		"room_types":   len(ds.RoomTypes),
		"transports":   len(ds.Transports),
		"tour_options": len(ds.TourOptions),
	}, sourceCount, now)
	return ds
}
