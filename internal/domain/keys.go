package domain

import "strings"

// NormalizeKey folds a display value into its identity-key form:
// lower-cased, interior whitespace collapsed to single spaces, trimmed.
// "Grand  Plaza " and "grand plaza" normalize to the same key.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// KeyJoin builds a composite identity key from already-normalized parts.
func KeyJoin(parts ...string) string {
	return strings.Join(parts, "|")
}

// DestinationKey identifies a destination by normalized name and role.
func DestinationKey(name, role string) string {
	return KeyJoin("dest", NormalizeKey(name), role)
}

// HotelKey identifies a hotel by normalized name within a destination.
func HotelKey(name, destinationKey string) string {
	return KeyJoin("hotel", NormalizeKey(name), destinationKey)
}

// RoomTypeKey identifies a room type by its hotel and normalized type name.
func RoomTypeKey(hotelKey, name string) string {
	return KeyJoin("room", hotelKey, NormalizeKey(name))
}

// TransportKey identifies a transport method by mode and endpoints.
func TransportKey(mode, originKey, targetKey string) string {
	return KeyJoin("transport", mode, originKey, targetKey)
}

// TourOptionKey is the composite of every referenced entity plus the date
// range; two rates for the same room and dates are the same option.
func TourOptionKey(destKey, hotelKey, roomKey, transportKey, start, end string) string {
	return KeyJoin("tour", destKey, hotelKey, roomKey, transportKey, start, end)
}
