package clmm

import "math/big"

// SlippageDenominator is the base every slippage tolerance is expressed over.
const SlippageDenominator = 10000

// Percentage is an exact rational tolerance, numerator over denominator.
// Arithmetic never leaves integers, so repeated application is reproducible
// across runs and machines.
type Percentage struct {
	Num uint64
	Den uint64
}

// SlippageFromBps builds a tolerance from basis points (1 bps = 0.01%).
func SlippageFromBps(bps uint64) Percentage {
	return Percentage{Num: bps, Den: SlippageDenominator}
}

// Apply returns value * Num / Den. roundUp picks ceiling division.
func (p Percentage) Apply(value *big.Int, roundUp bool) *big.Int {
	if p.Den == 0 || p.Num == 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(value, new(big.Int).SetUint64(p.Num))
	quo, rem := num.QuoRem(num, new(big.Int).SetUint64(p.Den), new(big.Int))
	if roundUp && rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// AddSlippage returns the largest amount the caller will accept paying:
// value plus the tolerance margin, margin rounded up.
func (p Percentage) AddSlippage(value *big.Int) *big.Int {
	return new(big.Int).Add(value, p.Apply(value, true))
}

// SubtractSlippage returns the smallest amount the caller will accept
// receiving: value minus the tolerance margin, margin rounded up, floored
// at zero.
func (p Percentage) SubtractSlippage(value *big.Int) *big.Int {
	out := new(big.Int).Sub(value, p.Apply(value, true))
	if out.Sign() < 0 {
		out.SetUint64(0)
	}
	return out
}
