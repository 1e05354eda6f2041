package models

// Placemark is a resolved geographic point together with the provider's
// quality grade for the match (provider-specific, e.g. "ADDRESS", "CITY").
type Placemark struct {
	Latitude  float64 // Latitude of the geographical point.
	Longitude float64 // Longitude of the geographical point.
	Quality   string  // Provider-reported match quality.
}
