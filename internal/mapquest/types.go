package mapquest

// LatLng is a coordinate pair as returned by the geocoding service.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location is a single geocoding match. The field set mirrors the
// MapQuest Geocoding API v1 location object.
type Location struct {
	Street             string `json:"street"`
	AdminArea6         string `json:"adminArea6"`     // neighborhood
	AdminArea6Type     string `json:"adminArea6Type"`
	AdminArea5         string `json:"adminArea5"`     // city
	AdminArea5Type     string `json:"adminArea5Type"`
	AdminArea4         string `json:"adminArea4"`     // county
	AdminArea4Type     string `json:"adminArea4Type"`
	AdminArea3         string `json:"adminArea3"`     // state
	AdminArea3Type     string `json:"adminArea3Type"`
	AdminArea1         string `json:"adminArea1"`     // country
	AdminArea1Type     string `json:"adminArea1Type"`
	PostalCode         string `json:"postalCode"`
	GeocodeQuality     string `json:"geocodeQuality"`
	GeocodeQualityCode string `json:"geocodeQualityCode"`
	DragPoint          bool   `json:"dragPoint"`
	SideOfStreet       string `json:"sideOfStreet"`
	LinkID             string `json:"linkId"`
	UnknownInput       string `json:"unknownInput"`
	Type               string `json:"type"`
	LatLng             LatLng `json:"latLng"`
	DisplayLatLng      LatLng `json:"displayLatLng"`
	MapURL             string `json:"mapUrl"`

	// ProvidedLocation is the address text as the service echoed it back.
	// The service nests it once per result group; the client copies it into
	// every location of the group so each match is self-contained.
	ProvidedLocation string `json:"-"`
}

// Query describes a single-address geocoding request.
type Query struct {
	Location string // free-text address, required
	Country  string // optional country hint, sent as adminArea1
}

// geocodeResponse is the wire shape shared by the address and batch endpoints.
type geocodeResponse struct {
	Results []resultGroup `json:"results"`
}

// resultGroup holds the candidate locations for one input address.
type resultGroup struct {
	ProvidedLocation struct {
		Location string `json:"location"`
	} `json:"providedLocation"`
	Locations []Location `json:"locations"`
}

// flatten copies the group's echoed address into each of its locations.
func flatten(group resultGroup) []Location {
	if len(group.Locations) == 0 {
		return nil
	}

	locations := make([]Location, len(group.Locations))
	copy(locations, group.Locations)
	for i := range locations {
		locations[i].ProvidedLocation = group.ProvidedLocation.Location
	}

	return locations
}
