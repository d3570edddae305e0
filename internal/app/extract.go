package app

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tour_scraper/internal/domain"
)

// Extractor turns raw source payloads into candidate records. One variant
// exists per operator; adding a source means one new variant plus a registry
// entry. Extractors never fail on a malformed item; they skip it and emit a
// warning into the diagnostics.
type Extractor interface {
	// Destinations maps the destination-region listing to arrival
	// destination candidates.
	Destinations(regions []map[string]any, diag *Diagnostics) []*DestinationCandidate
	// Rate maps one rate listing item to a hotel candidate and a tour-option
	// candidate. Either may be nil when mandatory fields are missing.
	Rate(rate map[string]any, diag *Diagnostics) (*HotelCandidate, *TourOptionCandidate)
	// Transports maps a rate's detailed transport segments to transport
	// candidates plus the endpoint destinations they imply.
	Transports(rateID string, segments []map[string]any, diag *Diagnostics) ([]*TransportCandidate, []*DestinationCandidate)
	// RoomTypes maps a product-content document to the room types of the
	// hotel identified by hotelKey.
	RoomTypes(content map[string]any, hotelKey, board string, diag *Diagnostics) []*RoomTypeCandidate
}

var extractors = map[string]Extractor{
	"itaka": itakaExtractor{},
}

// ExtractorFor selects the extractor variant for an operator identifier.
func ExtractorFor(operator string) (Extractor, error) {
	ex, ok := extractors[operator]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for operator %q", operator)
	}
	return ex, nil
}

/********** payload lookup helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns the string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// lookupF64 returns the first number found at the given paths
// (float64/int/string like "8,0").
func lookupF64(m map[string]any, paths ...string) (float64, bool) {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// lookupList returns the []map slice at path, nil when absent.
func lookupList(m map[string]any, path string) []map[string]any {
	raw, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// lookupStrings returns the []string slice at path, nil when absent.
func lookupStrings(m map[string]any, path string) []string {
	raw, ok := lookupAny(m, path).([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, it := range raw {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

/********** itaka variant **********/

// Field-location contract for the itaka GraphQL payloads:
//   - destination regions: {type, value, title, parent}; countries have
//     type "country", cities type "province" with parent = country value.
//     A "-narty" suffix marks the ski variant of a country and is stripped.
//   - rates: {id, supplierObjectId, startDate, endDate, price{amount,
//     currency}, room{title}, segments[{type, meal{title}, content{...}}]};
//     the hotel lives in the first segment of type "hotel".
//   - transport segments: {type: flight|bus, carrier, transportDetails{
//     from{code,city}, to{code,city}, via[{code,city}]}}.
//   - product content: descriptions[{id:"rooms", sections[{title,
//     lists[{items[]}]}]}]; bed counts are approximated from the
//     unstructured Polish room text.
type itakaExtractor struct{}

const skiSuffix = "-narty"

func (itakaExtractor) Destinations(regions []map[string]any, diag *Diagnostics) []*DestinationCandidate {
	var out []*DestinationCandidate
	countries := make(map[string]*DestinationCandidate)

	for _, region := range regions {
		if lookupStr(region, "type") != "country" {
			continue
		}
		value := lookupStr(region, "value")
		title := lookupStr(region, "title")
		if value == "" || title == "" {
			diag.Warnf("destination", "country region missing value/title: %v", region)
			continue
		}
		if strings.HasSuffix(value, skiSuffix) {
			continue // ski variant duplicates the base country
		}
		c := &DestinationCandidate{
			Name:    title,
			Role:    domain.RoleArrival,
			Country: title,
			Aliases: []string{value},
		}
		countries[value] = c
		out = append(out, c)
	}

	for _, region := range regions {
		if lookupStr(region, "type") != "province" {
			continue
		}
		title := lookupStr(region, "title")
		value := lookupStr(region, "value")
		if title == "" || value == "" {
			diag.Warnf("destination", "province region missing value/title: %v", region)
			continue
		}
		parent := strings.TrimSuffix(lookupStr(region, "parent"), skiSuffix)
		c := &DestinationCandidate{
			Name:    title,
			Role:    domain.RoleArrival,
			Region:  parent,
			Aliases: []string{value},
		}
		if pc, ok := countries[parent]; ok {
			c.Country = pc.Name
		}
		out = append(out, c)
	}
	return out
}

func (itakaExtractor) Rate(rate map[string]any, diag *Diagnostics) (*HotelCandidate, *TourOptionCandidate) {
	rateID := lookupStr(rate, "id")
	if rateID == "" {
		diag.Warnf("tour_option", "rate without id skipped")
		return nil, nil
	}

	var hotel *HotelCandidate
	var destName, board string
	for _, seg := range lookupList(rate, "segments") {
		if lookupStr(seg, "type") != "hotel" {
			continue
		}
		name := lookupStr(seg, "content.title")
		destName = lookupStr(seg, "content.destinations.country.title")
		if destName == "" {
			destName = strings.TrimSuffix(lookupStr(seg, "content.destinations.country.id"), skiSuffix)
		}
		board = lookupStr(seg, "meal.title")
		if name == "" || destName == "" {
			diag.Warnf("hotel", "rate %s: hotel segment missing name or destination", rateID)
			break
		}

		lat, latOK := lookupF64(seg, "content.geolocation.lat")
		lng, lngOK := lookupF64(seg, "content.geolocation.lng")
		if !latOK || !lngOK {
			// the odd ones without coordinates are not worth keeping
			diag.Warnf("hotel", "rate %s: hotel %q has no geolocation, skipped", rateID, name)
			break
		}

		rating := 0
		if f, ok := lookupF64(seg, "content.hotelRating"); ok {
			// the operator already reports stars x10 (35 = three and a half)
			rating = int(f + 0.5)
		}
		raw, _ := json.Marshal(seg)
		hotel = &HotelCandidate{
			Name:     name,
			DestName: destName,
			Rating:   rating,
			Lat:      lat,
			Lng:      lng,
			Raw:      raw,
		}
		break
	}

	start := lookupStr(rate, "startDate")
	end := lookupStr(rate, "endDate")
	price, priceOK := lookupF64(rate, "price.amount", "price.value", "price")
	hotelName := ""
	if hotel != nil {
		hotelName = hotel.Name
	} else {
		// keep the reference even when the hotel candidate was discarded,
		// so the pruning shows up in diagnostics instead of vanishing
		for _, seg := range lookupList(rate, "segments") {
			if lookupStr(seg, "type") == "hotel" {
				hotelName = lookupStr(seg, "content.title")
				break
			}
		}
	}

	if start == "" || end == "" || !priceOK || hotelName == "" || destName == "" {
		diag.Warnf("tour_option", "rate %s missing mandatory fields (dates/price/hotel/destination)", rateID)
		return hotel, nil
	}

	raw, _ := json.Marshal(rate)
	tour := &TourOptionCandidate{
		RateID:           rateID,
		SupplierObjectID: lookupStr(rate, "supplierObjectId"),
		DestName:         destName,
		HotelName:        hotelName,
		RoomName:         lookupStr(rate, "room.title"),
		Board:            board,
		StartDate:        start,
		EndDate:          end,
		Price:            price,
		Currency:         lookupStr(rate, "price.currency"),
		Raw:              raw,
	}
	return hotel, tour
}

func (itakaExtractor) Transports(rateID string, segments []map[string]any, diag *Diagnostics) ([]*TransportCandidate, []*DestinationCandidate) {
	var transports []*TransportCandidate
	var dests []*DestinationCandidate

	for _, seg := range segments {
		var mode string
		switch lookupStr(seg, "type") {
		case "flight":
			mode = domain.ModeFlight
		case "bus":
			mode = domain.ModeCoach
		default:
			continue // hotel and other segment types carry no transport
		}

		origin := routePointName(seg, "transportDetails.from")
		target := routePointName(seg, "transportDetails.to")
		if origin == "" || target == "" {
			diag.Warnf("transport", "rate %s: %s segment missing endpoints", rateID, mode)
			continue
		}

		var via []string
		for _, p := range lookupList(seg, "transportDetails.via") {
			if code := lookupStr(p, "code"); code != "" {
				via = append(via, code)
			}
		}

		transports = append(transports, &TransportCandidate{
			Mode:       mode,
			OriginName: origin,
			TargetName: target,
			Carrier:    lookupStr(seg, "carrier"),
			Via:        via,
		})
		dests = append(dests,
			&DestinationCandidate{Name: origin, Role: domain.RoleDeparture},
			&DestinationCandidate{Name: target, Role: domain.RoleArrival},
		)
	}
	return transports, dests
}

// routePointName prefers the point's city; bus stops sometimes repeat the
// code in the city field, in which case the code is all we have.
func routePointName(seg map[string]any, path string) string {
	city := lookupStr(seg, path+".city")
	code := lookupStr(seg, path+".code")
	if city != "" && city != code {
		return city
	}
	return code
}

var (
	roomBedsPattern  = regexp.MustCompile(`[ \-]os\b`)
	roomExtraPattern = regexp.MustCompile(`[ \-]dost`)
	roomDigitPattern = regexp.MustCompile(`\d`)
)

func (itakaExtractor) RoomTypes(content map[string]any, hotelKey, board string, diag *Diagnostics) []*RoomTypeCandidate {
	var out []*RoomTypeCandidate
	for _, desc := range lookupList(content, "descriptions") {
		if lookupStr(desc, "id") != "rooms" {
			continue
		}
		for _, section := range lookupList(desc, "sections") {
			title := lookupStr(section, "title")
			if title == "" {
				diag.Warnf("room_type", "room section without title skipped")
				continue
			}
			beds, extra, ok := parseBedCounts(section, title)
			if !ok {
				diag.Warnf("room_type", "room %q has no recognizable capacity, skipped", title)
				continue
			}
			out = append(out, &RoomTypeCandidate{
				HotelKey:  hotelKey,
				Name:      title,
				Capacity:  beds,
				ExtraBeds: extra,
				Board:     board,
			})
		}
	}
	return out
}

// parseBedCounts approximates bed counts from the unstructured room text.
// Regular beds precede the "os" (osoby) marker, extra beds sit between it
// and the "dost" (dostawka) marker. Not 100% accurate but good enough.
func parseBedCounts(section map[string]any, title string) (beds, extra int, ok bool) {
	lines := []string{title}
	if lists := lookupList(section, "lists"); len(lists) > 0 {
		lines = append(lines, lookupStrings(lists[0], "items")...)
	}

	beds = 1
	for _, line := range lines {
		loc := roomBedsPattern.FindStringIndex(line)
		if loc == nil {
			continue
		}
		ok = true
		beds = max(beds, maxDigit(line[:loc[0]], beds))

		rest := line[loc[1]:]
		extraLoc := roomExtraPattern.FindStringIndex(rest)
		if extraLoc == nil {
			// no extra beds mentioned
			break
		}
		extra = max(extra, max(1, maxDigit(rest[:extraLoc[0]], extra)))
		break
	}
	return beds, extra, ok
}

// maxDigit returns the largest single digit in s, or def when none occur.
func maxDigit(s string, def int) int {
	out := def
	for _, m := range roomDigitPattern.FindAllString(s, -1) {
		if n, err := strconv.Atoi(m); err == nil && n > out {
			out = n
		}
	}
	return out
}
