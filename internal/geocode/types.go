package geocode

// Address is the canonical address snapshot produced by a resolution call.
// It is copied onto the meeting's denormalized fields at write time and
// never used as a cache key for re-resolution.
type Address struct {
	Region      string `json:"region"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	DisplayName string `json:"displayName"`
}

type nominatimAddress struct {
	Region       string `json:"region"`
	Road         string `json:"road"`
	HouseNumber  string `json:"house_number"`
	City         string `json:"city"`
	Town         string `json:"town"`
	Village      string `json:"village"`
	Municipality string `json:"municipality"`
}

// nominatimResult mirrors the relevant parts of the OSM search payload.
type nominatimResult struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}
