// README: Money value object and 2-decimal rounding shared by pricing and payments.
package types

import "math"

// CurrencyLKR is the only currency prices are quoted in.
const CurrencyLKR = "LKR"

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func LKR(amount float64) Money {
	return Money{Amount: amount, Currency: CurrencyLKR}
}

// Round2 rounds half away from zero at the second decimal place.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
