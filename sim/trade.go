package sim

import "time"

// Trade is a completed round trip: one position leg from open to flat.
// Partial closes of the same leg accumulate into it, so EntryPrice and
// ExitPrice are size-weighted averages over the closed quantity.
type Trade struct {
	ID         int
	Side       Direction
	EntryPrice float64
	ExitPrice  float64
	Size       float64
	EntryBar   int
	ExitBar    int
	EntryTime  time.Time
	ExitTime   time.Time

	GrossPnL   float64
	Commission float64 // entry and exit commission attributed to this leg
	PnL        float64 // GrossPnL - Commission
	PnLPct     float64 // PnL / (EntryPrice * Size)
}

// leg accumulates a trade while its position is open.
type leg struct {
	dir        Direction
	entryBar   int
	entryTime  time.Time
	closedQty  float64
	entryCost  float64 // sum of avg entry * qty over closes
	exitValue  float64 // sum of exit price * qty over closes
	gross      float64
	commission float64
}

func (l *leg) close(avgEntry, exit, qty float64) float64 {
	g := pnl(l.dir, avgEntry, exit, qty)
	l.closedQty += qty
	l.entryCost += avgEntry * qty
	l.exitValue += exit * qty
	l.gross += g
	return g
}

func (l *leg) trade(id, exitBar int, exitTime time.Time) Trade {
	t := Trade{
		ID:         id,
		Side:       l.dir,
		Size:       l.closedQty,
		EntryBar:   l.entryBar,
		ExitBar:    exitBar,
		EntryTime:  l.entryTime,
		ExitTime:   exitTime,
		GrossPnL:   l.gross,
		Commission: l.commission,
		PnL:        l.gross - l.commission,
	}
	if l.closedQty > 0 {
		t.EntryPrice = l.entryCost / l.closedQty
		t.ExitPrice = l.exitValue / l.closedQty
	}
	if basis := t.EntryPrice * t.Size; basis != 0 {
		t.PnLPct = t.PnL / basis
	}
	return t
}

// Won reports whether the trade made money after commission.
func (t Trade) Won() bool { return t.PnL > 0 }

// Bars is the number of bars the trade was held.
func (t Trade) Bars() int { return t.ExitBar - t.EntryBar }
