package sim

import (
	"fmt"
	"math"
	"time"
)

// Snapshot is the portfolio marked at one bar's close.
type Snapshot struct {
	BarIndex      int
	Time          time.Time
	Cash          float64
	PositionSize  float64
	MarkPrice     float64
	PositionValue float64
	Equity        float64
}

// Ledger is the portfolio of a single run: cash, the open position, the
// order log, closed trades and the equity curve. It is not safe for
// concurrent use; each run owns its own.
type Ledger struct {
	initialCash float64
	cash        float64
	commission  float64

	pos Position
	leg leg

	orders    []Order
	pending   int // index into orders, -1 when none
	trades    []Trade
	snapshots []Snapshot
}

func NewLedger(initialCash float64) *Ledger {
	return &Ledger{
		initialCash: initialCash,
		cash:        initialCash,
		pending:     -1,
	}
}

// Submit records a market order created at bar. A bad size or a second
// order while one is pending is rejected: the order is still logged, with
// status Rejected, and ErrInvalidOrder is returned.
func (l *Ledger) Submit(side Side, size float64, bar int) (*Order, error) {
	o := Order{
		ID:        len(l.orders) + 1,
		Side:      side,
		Size:      size,
		Type:      Market,
		Status:    Pending,
		CreatedAt: bar,
		FilledAt:  -1,
	}

	var err error
	switch {
	case side != Buy && side != Sell:
		err = fmt.Errorf("%w: unknown side %d", ErrInvalidOrder, int(side))
	case math.IsNaN(size) || math.IsInf(size, 0) || size <= 0:
		err = fmt.Errorf("%w: size must be positive and finite, got %g", ErrInvalidOrder, size)
	case l.pending >= 0:
		err = fmt.Errorf("%w: order %d is still pending", ErrInvalidOrder, l.orders[l.pending].ID)
	}
	if err != nil {
		o.Status = Rejected
		o.Reason = err.Error()
		l.orders = append(l.orders, o)
		return &o, err
	}

	l.orders = append(l.orders, o)
	l.pending = len(l.orders) - 1
	return &o, nil
}

// Pending returns a copy of the pending order, if any.
func (l *Ledger) Pending() (*Order, bool) {
	if l.pending < 0 {
		return nil, false
	}
	o := l.orders[l.pending]
	return &o, true
}

func (l *Ledger) order(id int) (*Order, error) {
	if id < 1 || id > len(l.orders) {
		return nil, fmt.Errorf("%w: unknown order %d", ErrIllegalTransition, id)
	}
	return &l.orders[id-1], nil
}

func (l *Ledger) finish(id int, to Status, reason string) (*Order, error) {
	o, err := l.order(id)
	if err != nil {
		return nil, err
	}
	if err := o.transition(to); err != nil {
		return nil, err
	}
	o.Reason = reason
	l.pending = -1
	return o, nil
}

// Cancel moves a pending order to Canceled.
func (l *Ledger) Cancel(id int, reason string) error {
	_, err := l.finish(id, Canceled, reason)
	return err
}

// Reject moves a pending order to Rejected, recording why. Cash and the
// position are untouched.
func (l *Ledger) Reject(id int, cause error) error {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}
	_, err := l.finish(id, Rejected, reason)
	return err
}

// ApplyFill fills the pending order in full at price. Cash moves by the
// signed notional plus commission. Increasing fills average into the
// entry price, reducing fills realize P&L against it, and a fill that
// crosses zero closes the old leg and opens the excess at price. A Trade
// is recorded whenever a leg returns to flat.
func (l *Ledger) ApplyFill(id int, price, size, commission float64, bar int, t time.Time) error {
	o, err := l.order(id)
	if err != nil {
		return err
	}
	if o.Status != Pending {
		return fmt.Errorf("%w: order %d %s -> %s", ErrIllegalTransition, o.ID, o.Status, Filled)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("%w: fill price must be positive, got %g", ErrInvalidOrder, price)
	}
	if !nearlyEqual(size, o.Size) {
		return fmt.Errorf("%w: partial fills are not supported (order %g, fill %g)", ErrInvalidOrder, o.Size, size)
	}
	if commission < 0 || math.IsNaN(commission) {
		return fmt.Errorf("%w: commission must be non-negative, got %g", ErrInvalidOrder, commission)
	}

	if _, err := l.finish(id, Filled, ""); err != nil {
		return err
	}
	o.FilledAt = bar
	o.FillTime = t
	o.FillPrice = price
	o.Commission = commission

	l.cash -= float64(o.Side)*price*o.Size + commission
	l.commission += commission
	l.apply(Direction(o.Side), price, o.Size, commission, bar, t)
	return nil
}

func (l *Ledger) apply(dir Direction, price, qty, commission float64, bar int, t time.Time) {
	cur := l.pos.Direction()
	if cur == Flat || cur == dir {
		l.open(dir, price, qty, commission, bar, t)
		l.pos.UnrealizedPnL = UnrealizedPnL(l.pos, price)
		return
	}

	held := math.Abs(l.pos.Size)
	closeQty, openQty := qty, 0.0
	switch {
	case nearlyEqual(qty, held):
		closeQty = held
	case qty > held:
		closeQty, openQty = held, qty-held
	}

	closeCommission := commission * closeQty / qty
	l.leg.commission += closeCommission
	gross := l.leg.close(l.pos.AvgEntryPrice, price, closeQty)

	if closeQty == held {
		l.trades = append(l.trades, l.leg.trade(len(l.trades)+1, bar, t))
		l.pos = Position{}
		l.leg = leg{}
	} else {
		l.pos.Size -= float64(cur) * closeQty
		l.pos.RealizedPnL += gross
	}

	if openQty > 0 {
		l.open(dir, price, openQty, commission-closeCommission, bar, t)
	}
	l.pos.UnrealizedPnL = UnrealizedPnL(l.pos, price)
}

func (l *Ledger) open(dir Direction, price, qty, commission float64, bar int, t time.Time) {
	if l.pos.IsFlat() {
		l.pos = Position{EntryBar: bar, EntryTime: t}
		l.leg = leg{dir: dir, entryBar: bar, entryTime: t}
	}
	held := math.Abs(l.pos.Size)
	l.pos.AvgEntryPrice = (l.pos.AvgEntryPrice*held + price*qty) / (held + qty)
	l.pos.Size += float64(dir) * qty
	l.leg.commission += commission
}

// MarkToMarket revalues the position at price and appends the bar's
// snapshot. Bars must be marked in strictly increasing order.
func (l *Ledger) MarkToMarket(bar int, t time.Time, price float64) (Snapshot, error) {
	if n := len(l.snapshots); n > 0 && bar <= l.snapshots[n-1].BarIndex {
		return Snapshot{}, fmt.Errorf("%w: bar %d after bar %d", ErrStaleMark, bar, l.snapshots[n-1].BarIndex)
	}

	l.pos.UnrealizedPnL = UnrealizedPnL(l.pos, price)
	value := l.pos.Value(price)
	s := Snapshot{
		BarIndex:      bar,
		Time:          t,
		Cash:          l.cash,
		PositionSize:  l.pos.Size,
		MarkPrice:     price,
		PositionValue: value,
		Equity:        l.cash + value,
	}
	l.snapshots = append(l.snapshots, s)
	return s, nil
}

func (l *Ledger) InitialCash() float64 { return l.initialCash }

func (l *Ledger) Cash() float64 { return l.cash }

func (l *Ledger) Position() Position { return l.pos }

// Equity is cash plus the position valued at mark.
func (l *Ledger) Equity(mark float64) float64 { return l.cash + l.pos.Value(mark) }

func (l *Ledger) TotalCommission() float64 { return l.commission }

func (l *Ledger) Trades() []Trade {
	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Ledger) TradeCount() int { return len(l.trades) }

func (l *Ledger) Snapshots() []Snapshot {
	out := make([]Snapshot, len(l.snapshots))
	copy(out, l.snapshots)
	return out
}

func (l *Ledger) Orders() []Order {
	out := make([]Order, len(l.orders))
	copy(out, l.orders)
	return out
}
