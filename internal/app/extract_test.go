package app

import (
	"testing"

	"tour_scraper/internal/domain"
)

func sampleRegions() []map[string]any {
	return []map[string]any{
		{"type": "country", "value": "portugalia", "title": "Portugalia"},
		{"type": "country", "value": "wlochy", "title": "Włochy"},
		{"type": "country", "value": "wlochy-narty", "title": "Włochy"},
		{"type": "province", "value": "algarve", "title": "Algarve", "parent": "portugalia"},
		{"type": "province", "value": "dolomity", "title": "Dolomity", "parent": "wlochy-narty"},
		{"type": "province", "title": "bez identyfikatora"},
	}
}

func sampleRate(id, hotel, dest string) map[string]any {
	return map[string]any{
		"id":               id,
		"supplierObjectId": "SO-" + id,
		"startDate":        "2026-07-01",
		"endDate":          "2026-07-08",
		"price":            map[string]any{"amount": 3199.0, "currency": "PLN"},
		"room":             map[string]any{"title": "Pokój standardowy"},
		"segments": []any{
			map[string]any{
				"type": "hotel",
				"meal": map[string]any{"title": "All inclusive"},
				"content": map[string]any{
					"title":        hotel,
					"hotelRating":  40.0,
					"destinations": map[string]any{"country": map[string]any{"id": "portugalia", "title": dest}},
					"geolocation":  map[string]any{"lat": 37.01, "lng": -7.93},
				},
			},
		},
	}
}

func sampleTransportSegments() []map[string]any {
	return []map[string]any{
		{"type": "hotel"},
		{
			"type":    "flight",
			"carrier": "LO",
			"transportDetails": map[string]any{
				"from": map[string]any{"code": "WAW", "city": "Warszawa"},
				"to":   map[string]any{"code": "FAO", "city": "Faro"},
				"via":  []any{map[string]any{"code": "LIS", "city": "Lizbona"}},
			},
		},
	}
}

func sampleContent() map[string]any {
	return map[string]any{
		"descriptions": []any{
			map[string]any{
				"id": "rooms",
				"sections": []any{
					map[string]any{
						"title": "Pokój standardowy",
						"lists": []any{map[string]any{"items": []any{"dla 2 os., możliwość 1 dost."}}},
					},
					map[string]any{
						"title": "Apartament rodzinny 4-os.",
					},
				},
			},
		},
	}
}

func TestExtract_Destinations(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	out := ex.Destinations(sampleRegions(), diag)
	if len(out) != 4 {
		t.Fatalf("got %d destinations, want 4 (ski duplicate and malformed entry skipped)", len(out))
	}

	byName := map[string]*DestinationCandidate{}
	for _, d := range out {
		byName[d.Name] = d
	}
	alg := byName["Algarve"]
	if alg == nil || alg.Country != "Portugalia" || alg.Region != "portugalia" {
		t.Fatalf("Algarve = %+v", alg)
	}
	if got := byName["Dolomity"]; got == nil || got.Country != "Włochy" {
		t.Fatalf("ski province should attach to the base country, got %+v", got)
	}
	if len(byName["Portugalia"].Aliases) != 1 || byName["Portugalia"].Aliases[0] != "portugalia" {
		t.Fatalf("country alias = %v", byName["Portugalia"].Aliases)
	}
	if diag.WarningCount() != 1 {
		t.Fatalf("warnings = %d, want 1 for the malformed province", diag.WarningCount())
	}
}

func TestExtract_Rate(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	hotel, tour := ex.Rate(sampleRate("r1", "Grand Plaza", "Portugalia"), diag)
	if hotel == nil || tour == nil {
		t.Fatalf("hotel=%v tour=%v", hotel, tour)
	}
	if hotel.Rating != 40 {
		t.Fatalf("rating = %d, want the source value 40 unscaled", hotel.Rating)
	}
	if hotel.DestName != "Portugalia" || tour.DestName != "Portugalia" {
		t.Fatalf("destination refs diverge: %q vs %q", hotel.DestName, tour.DestName)
	}
	if tour.Board != "All inclusive" || tour.RoomName != "Pokój standardowy" {
		t.Fatalf("tour = %+v", tour)
	}
	if tour.Price != 3199 || tour.Currency != "PLN" {
		t.Fatalf("price = %v %s", tour.Price, tour.Currency)
	}
}

func TestExtract_Rate_RatingPassesThroughUnscaled(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	// the operator encodes half stars as stars x10: 35 means three and a half
	rate := sampleRate("r8", "Grand Plaza", "Portugalia")
	seg := rate["segments"].([]any)[0].(map[string]any)
	seg["content"].(map[string]any)["hotelRating"] = 35.0

	hotel, _ := ex.Rate(rate, diag)
	if hotel == nil {
		t.Fatal("expected a hotel candidate")
	}
	if hotel.Rating != 35 {
		t.Fatalf("rating = %d, want 35", hotel.Rating)
	}
}

func TestExtract_Rate_NoGeolocationSkipsHotel(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	rate := sampleRate("r2", "Mystery Inn", "Portugalia")
	seg := rate["segments"].([]any)[0].(map[string]any)
	delete(seg["content"].(map[string]any), "geolocation")

	hotel, tour := ex.Rate(rate, diag)
	if hotel != nil {
		t.Fatalf("hotel should be skipped without coordinates, got %+v", hotel)
	}
	if tour == nil || tour.HotelName != "Mystery Inn" {
		t.Fatalf("tour should still reference the hotel, got %+v", tour)
	}
}

func TestExtract_Rate_MissingPrice(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	rate := sampleRate("r3", "Grand Plaza", "Portugalia")
	delete(rate, "price")

	if _, tour := ex.Rate(rate, diag); tour != nil {
		t.Fatalf("tour without price must be dropped, got %+v", tour)
	}
	if diag.WarningCount() == 0 {
		t.Fatal("expected a warning for the dropped rate")
	}
}

func TestExtract_Transports(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	transports, dests := ex.Transports("r1", sampleTransportSegments(), diag)
	if len(transports) != 1 {
		t.Fatalf("got %d transports, want 1", len(transports))
	}
	tr := transports[0]
	if tr.Mode != domain.ModeFlight || tr.OriginName != "Warszawa" || tr.TargetName != "Faro" {
		t.Fatalf("transport = %+v", tr)
	}
	if len(tr.Via) != 1 || tr.Via[0] != "LIS" {
		t.Fatalf("via = %v", tr.Via)
	}
	if len(dests) != 2 || dests[0].Role != domain.RoleDeparture || dests[1].Role != domain.RoleArrival {
		t.Fatalf("endpoint destinations = %+v", dests)
	}
}

func TestExtract_RoomTypes(t *testing.T) {
	ex := itakaExtractor{}
	diag := NewDiagnostics()

	rooms := ex.RoomTypes(sampleContent(), "hotel|grand plaza|dest|portugalia|arrival", "All inclusive", diag)
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	std := rooms[0]
	if std.Capacity != 2 || std.ExtraBeds != 1 || std.Board != "All inclusive" {
		t.Fatalf("standard room = %+v", std)
	}
	if rooms[1].Capacity != 4 || rooms[1].ExtraBeds != 0 {
		t.Fatalf("family room = %+v", rooms[1])
	}
}

func TestParseBedCounts(t *testing.T) {
	cases := []struct {
		line        string
		beds, extra int
		ok          bool
	}{
		{"dla 2 os., możliwość 1 dost.", 2, 1, true},
		{"pokój 3-os.", 3, 0, true},
		{"2 os + dostawka", 2, 1, true},
		{"apartament z widokiem", 1, 0, false},
	}
	for _, tc := range cases {
		section := map[string]any{"title": tc.line}
		beds, extra, ok := parseBedCounts(section, tc.line)
		if ok != tc.ok {
			t.Errorf("%q: ok = %v, want %v", tc.line, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if beds != tc.beds || extra != tc.extra {
			t.Errorf("%q: beds/extra = %d/%d, want %d/%d", tc.line, beds, extra, tc.beds, tc.extra)
		}
	}
}
