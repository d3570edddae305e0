package app

import "testing"

func TestMergeHotels_DuplicatesCollapse(t *testing.T) {
	diag := NewDiagnostics()

	a := &HotelCandidate{Name: "Grand Plaza", DestName: "Faro", Rating: 40, Lat: 37.01, Lng: -7.93}
	b := &HotelCandidate{Name: "grand plaza ", DestName: "Faro"} // same identity, fewer fields
	c := &HotelCandidate{Name: "Grand Plaza", DestName: "Lagos"} // different destination

	out := MergeHotels([]*HotelCandidate{a, b, c}, diag)
	if len(out) != 2 {
		t.Fatalf("got %d hotels, want 2", len(out))
	}
	if out[0] != a {
		t.Fatal("first-seen candidate must survive")
	}
	if out[0].Rating != 40 {
		t.Fatalf("rating = %d, want the set value to survive the merge", out[0].Rating)
	}
	if len(diag.conflicts) != 0 {
		t.Fatalf("no conflicts expected, got %v", diag.conflicts)
	}
}

func TestMergeHotels_ConflictKeepsFirstSeen(t *testing.T) {
	diag := NewDiagnostics()

	a := &HotelCandidate{Name: "Grand Plaza", DestName: "Faro", Rating: 40}
	b := &HotelCandidate{Name: "Grand Plaza", DestName: "Faro", Rating: 35}

	out := MergeHotels([]*HotelCandidate{a, b}, diag)
	if len(out) != 1 || out[0].Rating != 40 {
		t.Fatalf("merged = %+v", out)
	}
	if len(diag.conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1", len(diag.conflicts))
	}
}

func TestMergeHotels_FieldUnionIsOrderInsensitive(t *testing.T) {
	full := &HotelCandidate{Name: "Grand Plaza", DestName: "Faro", Rating: 40, Lat: 37.01, Lng: -7.93}
	bare := &HotelCandidate{Name: "Grand Plaza", DestName: "Faro"}

	ab := MergeHotels([]*HotelCandidate{
		{Name: full.Name, DestName: full.DestName, Rating: full.Rating, Lat: full.Lat, Lng: full.Lng},
		{Name: bare.Name, DestName: bare.DestName},
	}, NewDiagnostics())
	ba := MergeHotels([]*HotelCandidate{
		{Name: bare.Name, DestName: bare.DestName},
		{Name: full.Name, DestName: full.DestName, Rating: full.Rating, Lat: full.Lat, Lng: full.Lng},
	}, NewDiagnostics())

	if ab[0].Rating != ba[0].Rating || ab[0].Lat != ba[0].Lat || ab[0].Lng != ba[0].Lng {
		t.Fatalf("merge outcome depends on order: %+v vs %+v", ab[0], ba[0])
	}
}

func TestMergeDestinations_AliasesUnion(t *testing.T) {
	diag := NewDiagnostics()

	out := MergeDestinations([]*DestinationCandidate{
		{Name: "Portugalia", Role: "arrival", Country: "Portugalia", Aliases: []string{"portugalia"}},
		{Name: "portugalia ", Role: "arrival", Aliases: []string{"pt"}},
		{Name: "Portugalia", Role: "departure"}, // other role, other identity
	}, diag)

	if len(out) != 2 {
		t.Fatalf("got %d destinations, want 2", len(out))
	}
	if len(out[0].Aliases) != 2 {
		t.Fatalf("aliases = %v, want union of both", out[0].Aliases)
	}
}

func TestMergeTourOptions_SameOfferTwice(t *testing.T) {
	diag := NewDiagnostics()

	mk := func(price float64) *TourOptionCandidate {
		return &TourOptionCandidate{
			RateID: "r1", DestName: "Faro", HotelName: "Grand Plaza",
			TransportKey: "tk", RoomKey: "rk",
			StartDate: "2026-07-01", EndDate: "2026-07-08",
			Price: price, Currency: "PLN",
		}
	}
	out := MergeTourOptions([]*TourOptionCandidate{mk(3199), mk(2899)}, diag)
	if len(out) != 1 {
		t.Fatalf("got %d tour options, want 1", len(out))
	}
	if out[0].Price != 3199 {
		t.Fatalf("price = %v, want first-seen 3199", out[0].Price)
	}
	if len(diag.conflicts) != 1 {
		t.Fatalf("conflicts = %d, want 1 for the price disagreement", len(diag.conflicts))
	}
}
