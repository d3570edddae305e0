package domain

import "testing"

func TestNormalizeKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Grand  Plaza ", "grand plaza"},
		{"grand plaza", "grand plaza"},
		{"  FARO\t", "faro"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDestinationKey_RolesStayDistinct(t *testing.T) {
	a := DestinationKey("Faro", RoleArrival)
	d := DestinationKey("Faro", RoleDeparture)
	if a == d {
		t.Fatalf("arrival and departure identities collide: %q", a)
	}
}

func TestHotelKey_SameIdentityAcrossSpellings(t *testing.T) {
	dest := DestinationKey("Faro", RoleArrival)
	if HotelKey("Grand Plaza", dest) != HotelKey("grand  plaza ", dest) {
		t.Fatal("spelling variants must share one identity")
	}
	if HotelKey("Grand Plaza", dest) == HotelKey("Grand Plaza", DestinationKey("Lagos", RoleArrival)) {
		t.Fatal("the same name in different destinations must not collide")
	}
}
