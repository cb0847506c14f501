package sim

import (
	"fmt"
	"time"
)

// Side is the direction of an order.
type Side int

const (
	Buy  Side = 1
	Sell Side = -1
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Status is the lifecycle state of an order.
type Status int

const (
	Pending Status = iota
	Filled
	Rejected
	Canceled
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Filled:
		return "filled"
	case Rejected:
		return "rejected"
	case Canceled:
		return "canceled"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// OrderType is the kind of order. Only market orders exist.
type OrderType string

const Market OrderType = "market"

// Order is a request to trade Size units at the next bar's open.
type Order struct {
	ID        int
	Side      Side
	Size      float64
	Type      OrderType
	Status    Status
	CreatedAt int // bar index of submission

	FilledAt   int // bar index of the fill, -1 until filled
	FillTime   time.Time
	FillPrice  float64
	Commission float64

	// Reason explains a rejection or cancellation.
	Reason string
}

// transition moves the order out of Pending. Terminal states are final.
func (o *Order) transition(to Status) error {
	if o.Status != Pending || to == Pending {
		return fmt.Errorf("%w: order %d %s -> %s", ErrIllegalTransition, o.ID, o.Status, to)
	}
	o.Status = to
	return nil
}
