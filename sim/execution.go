package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/nWish8/Sandbox/market"
)

// ExecConfig holds the execution assumptions of a run.
type ExecConfig struct {
	CommissionRate float64  // fraction of notional, e.g. 0.001
	Slippage       Slippage // nil means NoSlippage
	AllowShort     bool
}

// Simulator settles pending orders against bars.
type Simulator struct {
	cfg ExecConfig
}

func NewSimulator(cfg ExecConfig) *Simulator {
	if cfg.Slippage == nil {
		cfg.Slippage = NoSlippage{}
	}
	return &Simulator{cfg: cfg}
}

// Outcome describes what happened to the pending order on a bar.
type Outcome struct {
	// Order is a copy of the order after settlement; nil when nothing was
	// pending.
	Order *Order

	Filled bool
	// FilledSize is always Order.Size. A partial-fill model would report
	// the executed quantity here and leave the order open.
	FilledSize float64

	// Rejection is the cause when the order was rejected.
	Rejection error

	// Trades closed by this fill.
	Trades []Trade
}

// Commission is the fee for trading size units at price.
func (s *Simulator) Commission(price, size float64) float64 {
	return s.cfg.CommissionRate * price * size
}

// FillPrice is the bar open adjusted by the slippage model.
func (s *Simulator) FillPrice(open float64, side Side) float64 {
	return s.cfg.Slippage.Adjust(open, side)
}

// Settle fills or rejects the ledger's pending order at the open of bar,
// which must come after the bar the order was created on. Rejections are
// recorded on the order and are not errors; a returned error means the
// run cannot continue.
func (s *Simulator) Settle(l *Ledger, bar market.Bar, barIndex int) (Outcome, error) {
	o, ok := l.Pending()
	if !ok {
		return Outcome{}, nil
	}
	if barIndex <= o.CreatedAt {
		return Outcome{}, fmt.Errorf("%w: order %d created at bar %d, settling at %d",
			ErrSameBarFill, o.ID, o.CreatedAt, barIndex)
	}

	price := s.FillPrice(bar.Open, o.Side)
	commission := s.Commission(price, o.Size)

	if cause := s.check(l, o, price, commission); cause != nil {
		if err := l.Reject(o.ID, cause); err != nil {
			return Outcome{}, err
		}
		return s.outcome(l, o.ID, 0, cause), nil
	}

	before := l.TradeCount()
	if err := l.ApplyFill(o.ID, price, o.Size, commission, barIndex, bar.Time); err != nil {
		return Outcome{}, err
	}
	return s.outcome(l, o.ID, before, nil), nil
}

func (s *Simulator) check(l *Ledger, o *Order, price, commission float64) error {
	if o.Size <= 0 || math.IsNaN(o.Size) {
		return fmt.Errorf("%w: size %g", ErrInvalidOrder, o.Size)
	}
	switch o.Side {
	case Buy:
		if cost := price*o.Size + commission; cost > l.Cash() {
			return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, cost, l.Cash())
		}
	case Sell:
		after := l.Position().Size - o.Size
		if !s.cfg.AllowShort && after < 0 && !nearlyEqual(after, 0) {
			return fmt.Errorf("%w: sell %g would leave position at %g", ErrShortingDisabled, o.Size, after)
		}
	}
	return nil
}

// Liquidate flattens the position at price on the given bar, bypassing
// next-bar settlement. It is used for the end-of-data close. Any pending
// order is canceled first. Slippage and commission still apply.
func (s *Simulator) Liquidate(l *Ledger, barIndex int, t time.Time, price float64) (Outcome, error) {
	if o, ok := l.Pending(); ok {
		if err := l.Cancel(o.ID, "superseded by liquidation"); err != nil {
			return Outcome{}, err
		}
	}
	pos := l.Position()
	if pos.IsFlat() {
		return Outcome{}, nil
	}

	side := Sell
	if pos.Direction() == Short {
		side = Buy
	}
	size := math.Abs(pos.Size)
	o, err := l.Submit(side, size, barIndex)
	if err != nil {
		return Outcome{}, err
	}

	fill := s.FillPrice(price, side)
	before := l.TradeCount()
	if err := l.ApplyFill(o.ID, fill, size, s.Commission(fill, size), barIndex, t); err != nil {
		return Outcome{}, err
	}
	return s.outcome(l, o.ID, before, nil), nil
}

func (s *Simulator) outcome(l *Ledger, id, tradesBefore int, rejection error) Outcome {
	o := l.orders[id-1]
	out := Outcome{Order: &o, Rejection: rejection}
	if o.Status == Filled {
		out.Filled = true
		out.FilledSize = o.Size
		out.Trades = l.Trades()[tradesBefore:]
	}
	return out
}
