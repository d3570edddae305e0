package app

// Merge stage: collapse candidates that share an identity key into one
// record per key. Field policy: a field set on any duplicate survives; when
// two candidates disagree on a set field the first-seen value wins and the
// conflict is recorded. Input order is the source encounter order, so the
// outcome is deterministic.

// mergeField fills *dst from src when unset, records a conflict when both
// are set and disagree.
func mergeField[T comparable](dst *T, src T, entity, key, field string, diag *Diagnostics) {
	var zero T
	if src == zero {
		return
	}
	if *dst == zero {
		*dst = src
		return
	}
	if *dst != src {
		diag.Conflict(entity, key, field, *dst, src)
	}
}

func MergeDestinations(cands []*DestinationCandidate, diag *Diagnostics) []*DestinationCandidate {
	byKey := make(map[string]*DestinationCandidate)
	var out []*DestinationCandidate
	for _, c := range cands {
		key := c.Key()
		base, ok := byKey[key]
		if !ok {
			byKey[key] = c
			out = append(out, c)
			continue
		}
		mergeField(&base.Country, c.Country, "destination", key, "country", diag)
		mergeField(&base.Region, c.Region, "destination", key, "region", diag)
		base.Aliases = unionStrings(base.Aliases, c.Aliases)
	}
	return out
}

func MergeHotels(cands []*HotelCandidate, diag *Diagnostics) []*HotelCandidate {
	byKey := make(map[string]*HotelCandidate)
	var out []*HotelCandidate
	for _, c := range cands {
		key := c.Key()
		base, ok := byKey[key]
		if !ok {
			byKey[key] = c
			out = append(out, c)
			continue
		}
		mergeField(&base.Rating, c.Rating, "hotel", key, "rating", diag)
		mergeField(&base.Lat, c.Lat, "hotel", key, "lat", diag)
		mergeField(&base.Lng, c.Lng, "hotel", key, "lng", diag)
		if len(base.Raw) == 0 {
			base.Raw = c.Raw
		}
	}
	return out
}

func MergeRoomTypes(cands []*RoomTypeCandidate, diag *Diagnostics) []*RoomTypeCandidate {
	byKey := make(map[string]*RoomTypeCandidate)
	var out []*RoomTypeCandidate
	for _, c := range cands {
		key := c.Key()
		base, ok := byKey[key]
		if !ok {
			byKey[key] = c
			out = append(out, c)
			continue
		}
		mergeField(&base.Capacity, c.Capacity, "room_type", key, "capacity", diag)
		mergeField(&base.ExtraBeds, c.ExtraBeds, "room_type", key, "extra_beds", diag)
		mergeField(&base.Board, c.Board, "room_type", key, "board", diag)
	}
	return out
}

func MergeTransports(cands []*TransportCandidate, diag *Diagnostics) []*TransportCandidate {
	byKey := make(map[string]*TransportCandidate)
	var out []*TransportCandidate
	for _, c := range cands {
		key := c.Key()
		base, ok := byKey[key]
		if !ok {
			byKey[key] = c
			out = append(out, c)
			continue
		}
		mergeField(&base.Carrier, c.Carrier, "transport", key, "carrier", diag)
		if len(base.Via) == 0 {
			base.Via = c.Via
		}
	}
	return out
}

func MergeTourOptions(cands []*TourOptionCandidate, diag *Diagnostics) []*TourOptionCandidate {
	byKey := make(map[string]*TourOptionCandidate)
	var out []*TourOptionCandidate
	for _, c := range cands {
		key := c.Key()
		base, ok := byKey[key]
		if !ok {
			byKey[key] = c
			out = append(out, c)
			continue
		}
		mergeField(&base.Price, c.Price, "tour_option", key, "price", diag)
		mergeField(&base.Currency, c.Currency, "tour_option", key, "currency", diag)
		if len(base.Raw) == 0 {
			base.Raw = c.Raw
		}
	}
	return out
}

func unionStrings(a, b []string) []string {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a))
	for _, s := range a {
		seen[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := seen[s]; !ok {
			a = append(a, s)
			seen[s] = struct{}{}
		}
	}
	return a
}
