// README: Pricing value types: service/vehicle kinds, trip estimates, proposals and confirmed pricing.
package pricing

import "ridebook/internal/types"

type ServiceType string

const (
	ServiceDaily   ServiceType = "daily"
	ServiceAirport ServiceType = "airport"
	ServiceCargo   ServiceType = "cargo"
	ServiceWedding ServiceType = "wedding"
)

// IsWedding reports whether the service is priced per day instead of per km.
func (s ServiceType) IsWedding() bool {
	return s == ServiceWedding
}

// VehicleType is open-ended; pricing only distinguishes van, bike and the rest.
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehicleVan   VehicleType = "van"
	VehicleBike  VehicleType = "bike"
	VehicleBus   VehicleType = "bus"
	VehicleLorry VehicleType = "lorry"
)

type Coordinates struct {
	From types.GeoPoint `json:"from"`
	To   types.GeoPoint `json:"to"`
}

type TripEstimate struct {
	Pickup      string      `json:"pickup"`
	Dropoff     string      `json:"dropoff"`
	Coordinates Coordinates `json:"coordinates"`
	DistanceKm  float64     `json:"distanceKm"`
}

// Proposal is a computed price that is not authoritative until an admin
// confirms it. Distance fields are zero for wedding, day fields otherwise.
type Proposal struct {
	ServiceType    ServiceType `json:"serviceType"`
	VehicleType    VehicleType `json:"vehicleType,omitempty"`
	DistanceKm     float64     `json:"distanceKm,omitempty"`
	PricePerKm     float64     `json:"pricePerKm,omitempty"`
	Days           int         `json:"days,omitempty"`
	FlatRatePerDay float64     `json:"flatRatePerDay,omitempty"`
	ComputedPrice  float64     `json:"computedPrice"`
	Currency       string      `json:"currency"`
}

type QuoteRequest struct {
	Pickup      string
	Dropoff     string
	ServiceType ServiceType
	VehicleType VehicleType
	Days        int
}

type QuoteResult struct {
	Proposal Proposal      `json:"proposal"`
	Trip     *TripEstimate `json:"trip,omitempty"`
}

// ConfirmedPricing is the admin-authoritative price used for payment.
type ConfirmedPricing struct {
	ServiceType             ServiceType `json:"serviceType"`
	AdminCalculatedDistance float64     `json:"adminCalculatedDistance,omitempty"`
	PricePerKm              float64     `json:"pricePerKm,omitempty"`
	WeddingDays             int         `json:"weddingDays,omitempty"`
	AdminSetPrice           float64     `json:"adminSetPrice"`
	IsPriceConfirmed        bool        `json:"isPriceConfirmed"`
}
