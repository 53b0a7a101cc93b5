package location

// Location represents a position fix reported by a device.
type Location struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64 // HDOP when the source sentence carries one, otherwise 0
}
