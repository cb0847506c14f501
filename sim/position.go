package sim

import (
	"fmt"
	"time"
)

// Direction is the sign of a position or trade leg.
type Direction int

const (
	Short Direction = -1
	Flat  Direction = 0
	Long  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	case Flat:
		return "flat"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// Position is the open holding in the single instrument. A zero Size is
// flat.
type Position struct {
	Size          float64 // signed: positive long, negative short
	AvgEntryPrice float64
	UnrealizedPnL float64 // at the last mark
	RealizedPnL   float64 // gross P&L of the closed part of the open leg
	EntryBar      int
	EntryTime     time.Time
}

func (p Position) Direction() Direction {
	switch {
	case p.Size > 0:
		return Long
	case p.Size < 0:
		return Short
	}
	return Flat
}

func (p Position) IsFlat() bool { return p.Size == 0 }

// Value is the signed market value of the position at price.
func (p Position) Value(price float64) float64 { return p.Size * price }
