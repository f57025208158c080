package models

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TextValue is the {text, value} pair Google returns for distances (meters) and durations (seconds).
type TextValue struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type GeocodeRequest struct {
	Address string `json:"address" validate:"required,max=300"`
}

type GeocodeResult struct {
	FormattedAddress  string             `json:"formattedAddress"`
	Location          LatLng             `json:"location"`
	PlaceID           string             `json:"placeId"`
	AddressComponents []AddressComponent `json:"addressComponents"`
}

type DirectionsRequest struct {
	Origin      string   `json:"origin" validate:"required"`
	Destination string   `json:"destination" validate:"required"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=driving walking bicycling transit"`
	Avoid       []string `json:"avoid" validate:"omitempty,dive,oneof=tolls highways ferries indoor"`
}

type RouteStep struct {
	Instruction   string    `json:"instruction"`
	Distance      TextValue `json:"distance"`
	Duration      TextValue `json:"duration"`
	StartLocation LatLng    `json:"startLocation"`
	EndLocation   LatLng    `json:"endLocation"`
}

type DirectionsResult struct {
	Distance         TextValue   `json:"distance"`
	Duration         TextValue   `json:"duration"`
	Steps            []RouteStep `json:"steps"`
	OverviewPolyline string      `json:"overviewPolyline"`
}

type DistanceRequest struct {
	Origins      []string `json:"origins" validate:"required,min=1,max=25,dive,required"`
	Destinations []string `json:"destinations" validate:"required,min=1,max=25,dive,required"`
	Mode         string   `json:"mode" validate:"omitempty,oneof=driving walking bicycling transit"`
}

// DistanceElement is one origin/destination pair of a distance matrix.
type DistanceElement struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	Distance    TextValue `json:"distance"`
	Duration    TextValue `json:"duration"`
}
