// README: Admin pricing override: payload parsing per service type and confirmation.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ridebook/internal/types"
)

// OverrideRequest is the raw admin payload. Which fields matter depends on
// the booking's service type; zero means "not provided".
type OverrideRequest struct {
	AdminCalculatedDistance float64 `json:"adminCalculatedDistance"`
	PricePerKm              float64 `json:"pricePerKm"`
	AdminSetPrice           float64 `json:"adminSetPrice"`
	WeddingDays             int     `json:"weddingDays"`
}

// Override is either a DistanceOverride or a WeddingOverride.
type Override interface {
	price() float64
}

type DistanceOverride struct {
	AdminCalculatedDistance float64 `json:"adminCalculatedDistance" validate:"required,gt=0"`
	PricePerKm              float64 `json:"pricePerKm" validate:"required,gt=0"`
	AdminSetPrice           float64 `json:"adminSetPrice" validate:"required,gt=0"`
}

type WeddingOverride struct {
	WeddingDays   int     `json:"weddingDays" validate:"required,min=1"`
	AdminSetPrice float64 `json:"adminSetPrice" validate:"required,gt=0"`
}

func (o DistanceOverride) price() float64 { return o.AdminSetPrice }
func (o WeddingOverride) price() float64  { return o.AdminSetPrice }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ParseOverride picks the override shape from the booking's service type
// and requires every field of that shape (all-or-nothing). Amounts are
// rounded to cents first, so a value that rounds to 0 is rejected and the
// stored, returned and paid figures are the same number.
func ParseOverride(serviceType ServiceType, req OverrideRequest) (Override, error) {
	req.AdminCalculatedDistance = types.Round2(req.AdminCalculatedDistance)
	req.PricePerKm = types.Round2(req.PricePerKm)
	req.AdminSetPrice = types.Round2(req.AdminSetPrice)

	var o Override
	if ServiceType(normalize(string(serviceType))).IsWedding() {
		o = WeddingOverride{WeddingDays: req.WeddingDays, AdminSetPrice: req.AdminSetPrice}
	} else {
		o = DistanceOverride{
			AdminCalculatedDistance: req.AdminCalculatedDistance,
			PricePerKm:              req.PricePerKm,
			AdminSetPrice:           req.AdminSetPrice,
		}
	}
	if err := validate.Struct(o); err != nil {
		return nil, overrideError(err)
	}
	for _, v := range []float64{req.AdminCalculatedDistance, req.PricePerKm, req.AdminSetPrice} {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: override values must be finite", ErrInvalidInput)
		}
	}
	return o, nil
}

// Confirm turns a validated override into the authoritative pricing. The
// admin price is kept as supplied, even when it differs from distance*rate.
func Confirm(serviceType ServiceType, o Override) (ConfirmedPricing, error) {
	switch v := o.(type) {
	case DistanceOverride:
		return ConfirmedPricing{
			ServiceType:             serviceType,
			AdminCalculatedDistance: v.AdminCalculatedDistance,
			PricePerKm:              v.PricePerKm,
			AdminSetPrice:           v.AdminSetPrice,
			IsPriceConfirmed:        true,
		}, nil
	case WeddingOverride:
		return ConfirmedPricing{
			ServiceType:      serviceType,
			WeddingDays:      v.WeddingDays,
			AdminSetPrice:    v.AdminSetPrice,
			IsPriceConfirmed: true,
		}, nil
	default:
		return ConfirmedPricing{}, fmt.Errorf("%w: unsupported override %T", ErrInvalidInput, o)
	}
}

func overrideError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s required and must be greater than 0", ErrInvalidInput, strings.Join(fields, ", "))
}
