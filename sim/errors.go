package sim

import "errors"

var (
	// ErrInvalidOrder is a rejected submission: non-positive or non-finite
	// size, or a second order while one is still pending.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInsufficientFunds rejects a buy whose notional plus commission
	// exceeds available cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrShortingDisabled rejects a sell that would leave the position short.
	ErrShortingDisabled = errors.New("shorting disabled")

	// ErrIllegalTransition is a programming error: an order status change
	// outside Pending -> Filled|Rejected|Canceled.
	ErrIllegalTransition = errors.New("illegal order transition")

	// ErrSameBarFill is a programming error: an order settled on the bar
	// that created it.
	ErrSameBarFill = errors.New("order settled on its own bar")

	// ErrStaleMark is returned when MarkToMarket does not advance the bar.
	ErrStaleMark = errors.New("mark to market must advance the bar index")
)
