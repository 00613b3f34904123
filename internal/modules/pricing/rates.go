// README: Rate table lookup and price arithmetic.
package pricing

import (
	"fmt"
	"math"
	"strings"

	"ridebook/internal/config"
	"ridebook/internal/types"
)

// DefaultVehicle is the rate key that applies to any vehicle not listed
// for a service.
const DefaultVehicle VehicleType = "default"

const (
	defaultFallbackRate  = 100
	defaultWeddingPerDay = 50000
)

// RateTable maps (service, vehicle) to LKR per km. It is built once at
// startup and never mutated afterwards.
type RateTable struct {
	rates         map[ServiceType]map[VehicleType]float64
	fallback      float64
	weddingPerDay float64
}

func defaultRates() map[ServiceType]map[VehicleType]float64 {
	return map[ServiceType]map[VehicleType]float64{
		ServiceWedding: {DefaultVehicle: 0},
		ServiceCargo:   {DefaultVehicle: 150},
		ServiceAirport: {VehicleVan: 120, DefaultVehicle: 100},
		ServiceDaily:   {VehicleVan: 120, VehicleBike: 50, DefaultVehicle: 90},
	}
}

func DefaultRateTable() RateTable {
	return RateTable{
		rates:         defaultRates(),
		fallback:      defaultFallbackRate,
		weddingPerDay: defaultWeddingPerDay,
	}
}

// NewRateTable layers configured rates over the defaults.
func NewRateTable(cfg config.PricingConfig) (RateTable, error) {
	t := DefaultRateTable()
	if cfg.FallbackRate > 0 {
		t.fallback = cfg.FallbackRate
	}
	if cfg.WeddingPerDay > 0 {
		t.weddingPerDay = cfg.WeddingPerDay
	}
	for svc, vehicles := range cfg.Rates {
		key := ServiceType(normalize(svc))
		if t.rates[key] == nil {
			t.rates[key] = map[VehicleType]float64{}
		}
		for vehicle, rate := range vehicles {
			if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
				return RateTable{}, fmt.Errorf("%w: rate %s/%s = %v", ErrInvalidInput, svc, vehicle, rate)
			}
			t.rates[key][VehicleType(normalize(vehicle))] = rate
		}
	}
	return t, nil
}

// RatePerKm returns the per-km rate. Wedding is 0 (flat per day) and an
// unrecognized service falls back to the table default.
func (t RateTable) RatePerKm(serviceType ServiceType, vehicleType VehicleType) float64 {
	vehicles, ok := t.rates[ServiceType(normalize(string(serviceType)))]
	if !ok {
		return t.fallback
	}
	if rate, ok := vehicles[VehicleType(normalize(string(vehicleType)))]; ok {
		return rate
	}
	if rate, ok := vehicles[DefaultVehicle]; ok {
		return rate
	}
	return t.fallback
}

func (t RateTable) WeddingPerDay() float64 {
	return t.weddingPerDay
}

// ComputeWeddingPrice charges the flat daily rate for each day.
func (t RateTable) ComputeWeddingPrice(days int) (float64, error) {
	if days < 1 {
		return 0, fmt.Errorf("%w: wedding days must be at least 1", ErrInvalidInput)
	}
	return types.Round2(float64(days) * t.weddingPerDay), nil
}

// ComputePrice multiplies distance by rate, rounded to 2 decimals.
func ComputePrice(distanceKm, pricePerKm float64) (float64, error) {
	if !finite(distanceKm) || !finite(pricePerKm) {
		return 0, fmt.Errorf("%w: distance and rate must be finite", ErrInvalidInput)
	}
	if distanceKm < 0 {
		return 0, fmt.Errorf("%w: distance must not be negative", ErrInvalidInput)
	}
	if pricePerKm < 0 {
		return 0, fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	}
	return types.Round2(distanceKm * pricePerKm), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
