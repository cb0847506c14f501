package backtest

import (
	"fmt"

	"github.com/nWish8/Sandbox/sim"
)

// State is where a run stands at the end of a bar.
type State int

const (
	StateFlat State = iota
	StateLong
	StateShort
	StateOrderPending
)

func (s State) String() string {
	switch s {
	case StateFlat:
		return "flat"
	case StateLong:
		return "long"
	case StateShort:
		return "short"
	case StateOrderPending:
		return "order_pending"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func positionState(p sim.Position) State {
	switch p.Direction() {
	case sim.Long:
		return StateLong
	case sim.Short:
		return StateShort
	}
	return StateFlat
}

func ledgerState(l *sim.Ledger) State {
	if _, ok := l.Pending(); ok {
		return StateOrderPending
	}
	return positionState(l.Position())
}
