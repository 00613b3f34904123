// README: Payment record created when an admin confirms a cash booking's price.
package payment

import (
	"time"

	"ridebook/internal/types"
)

type Method string

const (
	MethodCash Method = "cash"
	MethodCard Method = "card"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

type Payment struct {
	ID         types.ID
	BookingID  types.ID
	CustomerID types.ID
	Amount     types.Money
	Method     Method
	Status     Status
	CreatedAt  time.Time
}

type CashPayment struct {
	BookingID  types.ID
	CustomerID types.ID
	Amount     float64
}
