package sim

import "math"

// pnl is the gross profit of size units held in direction dir from entry
// to exit. Positive is profit.
func pnl(dir Direction, entry, exit, size float64) float64 {
	return float64(dir) * (exit - entry) * size
}

// UnrealizedPnL of the position at the given mark price.
func UnrealizedPnL(p Position, mark float64) float64 {
	return pnl(p.Direction(), p.AvgEntryPrice, mark, math.Abs(p.Size))
}

// sizeEpsilon absorbs float noise when a reducing fill should exactly
// flatten the position.
const sizeEpsilon = 1e-9

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= sizeEpsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
