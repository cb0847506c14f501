package sim

// Slippage moves a raw fill price against the trader: buys pay more,
// sells receive less.
type Slippage interface {
	Adjust(price float64, side Side) float64
}

// NoSlippage fills at the raw price.
type NoSlippage struct{}

func (NoSlippage) Adjust(price float64, _ Side) float64 { return price }

// BasisPoints slips the price by a fraction of itself; 10 bps is 0.1%.
type BasisPoints float64

func (b BasisPoints) Adjust(price float64, side Side) float64 {
	return clampPrice(price, price*(1+float64(side)*float64(b)/10000))
}

// FixedOffset slips the price by an absolute amount.
type FixedOffset float64

func (f FixedOffset) Adjust(price float64, side Side) float64 {
	return clampPrice(price, price+float64(side)*float64(f))
}

// clampPrice falls back to the raw price when slippage would drive the
// fill to zero or below.
func clampPrice(raw, adjusted float64) float64 {
	if adjusted <= 0 {
		return raw
	}
	return adjusted
}
