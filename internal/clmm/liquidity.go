package clmm

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidRange signals a tick range whose sqrt prices are not strictly
// increasing, or a non-positive lower bound.
var ErrInvalidRange = errors.New("invalid tick range")

// CoinAmounts is the pair of token quantities a liquidity figure represents
// over a range at a given pool price.
type CoinAmounts struct {
	CoinA *big.Int
	CoinB *big.Int
}

var q64 = new(big.Int).Lsh(big.NewInt(1), 64)

// AmountsFromLiquidity converts liquidity into the coin amounts it stands for,
// given the current pool sqrt price and the range boundary sqrt prices, all
// Q64.64. Set roundUp when the amounts will be paid in (deposits); leave it
// unset for amounts coming back out (withdrawals).
func AmountsFromLiquidity(liquidity, curSqrtPrice, lowerSqrtPrice, upperSqrtPrice *big.Int, roundUp bool) (CoinAmounts, error) {
	if err := checkRangePrices(lowerSqrtPrice, upperSqrtPrice); err != nil {
		return CoinAmounts{}, err
	}
	switch {
	case curSqrtPrice.Cmp(lowerSqrtPrice) < 0:
		// Entirely in coin A.
		return CoinAmounts{
			CoinA: amountADelta(liquidity, lowerSqrtPrice, upperSqrtPrice, roundUp),
			CoinB: new(big.Int),
		}, nil
	case curSqrtPrice.Cmp(upperSqrtPrice) >= 0:
		// Entirely in coin B. The upper bound is exclusive.
		return CoinAmounts{
			CoinA: new(big.Int),
			CoinB: amountBDelta(liquidity, lowerSqrtPrice, upperSqrtPrice, roundUp),
		}, nil
	default:
		return CoinAmounts{
			CoinA: amountADelta(liquidity, curSqrtPrice, upperSqrtPrice, roundUp),
			CoinB: amountBDelta(liquidity, lowerSqrtPrice, curSqrtPrice, roundUp),
		}, nil
	}
}

// LiquidityFromAmounts returns the largest liquidity the given coin amounts
// can fund over the range at the current pool sqrt price. Inside the range
// both coins constrain the result and the smaller binding wins.
func LiquidityFromAmounts(amountA, amountB, curSqrtPrice, lowerSqrtPrice, upperSqrtPrice *big.Int) (*big.Int, error) {
	if err := checkRangePrices(lowerSqrtPrice, upperSqrtPrice); err != nil {
		return nil, err
	}
	switch {
	case curSqrtPrice.Cmp(lowerSqrtPrice) <= 0:
		return liquidityFromAmountA(amountA, lowerSqrtPrice, upperSqrtPrice), nil
	case curSqrtPrice.Cmp(upperSqrtPrice) >= 0:
		return liquidityFromAmountB(amountB, lowerSqrtPrice, upperSqrtPrice), nil
	default:
		byA := liquidityFromAmountA(amountA, curSqrtPrice, upperSqrtPrice)
		byB := liquidityFromAmountB(amountB, lowerSqrtPrice, curSqrtPrice)
		if byA.Cmp(byB) < 0 {
			return byA, nil
		}
		return byB, nil
	}
}

// LiquidityFromCoinA returns the liquidity that amountA alone can fund over
// the range at the current pool sqrt price. Coin A only backs the part of the
// range above the current price, so a range entirely below it cannot be
// funded from A.
func LiquidityFromCoinA(amountA, curSqrtPrice, lowerSqrtPrice, upperSqrtPrice *big.Int) (*big.Int, error) {
	if err := checkRangePrices(lowerSqrtPrice, upperSqrtPrice); err != nil {
		return nil, err
	}
	switch {
	case curSqrtPrice.Cmp(lowerSqrtPrice) <= 0:
		return liquidityFromAmountA(amountA, lowerSqrtPrice, upperSqrtPrice), nil
	case curSqrtPrice.Cmp(upperSqrtPrice) >= 0:
		return nil, fmt.Errorf("coin A funds nothing in a range below the current price")
	default:
		return liquidityFromAmountA(amountA, curSqrtPrice, upperSqrtPrice), nil
	}
}

// LiquidityFromCoinB is the coin-B counterpart of LiquidityFromCoinA: coin B
// backs the part of the range below the current price.
func LiquidityFromCoinB(amountB, curSqrtPrice, lowerSqrtPrice, upperSqrtPrice *big.Int) (*big.Int, error) {
	if err := checkRangePrices(lowerSqrtPrice, upperSqrtPrice); err != nil {
		return nil, err
	}
	switch {
	case curSqrtPrice.Cmp(upperSqrtPrice) >= 0:
		return liquidityFromAmountB(amountB, lowerSqrtPrice, upperSqrtPrice), nil
	case curSqrtPrice.Cmp(lowerSqrtPrice) <= 0:
		return nil, fmt.Errorf("coin B funds nothing in a range above the current price")
	default:
		return liquidityFromAmountB(amountB, lowerSqrtPrice, curSqrtPrice), nil
	}
}

func checkRangePrices(lowerSqrtPrice, upperSqrtPrice *big.Int) error {
	if lowerSqrtPrice == nil || upperSqrtPrice == nil || lowerSqrtPrice.Sign() <= 0 {
		return ErrInvalidRange
	}
	if upperSqrtPrice.Cmp(lowerSqrtPrice) <= 0 {
		return ErrInvalidRange
	}
	return nil
}

// amountADelta is liquidity * (hi - lo) / (hi * lo), scaled back out of Q64.64.
func amountADelta(liquidity, lo, hi *big.Int, roundUp bool) *big.Int {
	num := new(big.Int).Sub(hi, lo)
	num.Mul(num, liquidity)
	num.Lsh(num, 64)
	den := new(big.Int).Mul(hi, lo)
	quo, rem := num.QuoRem(num, den, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// amountBDelta is liquidity * (hi - lo), scaled back out of Q64.64.
func amountBDelta(liquidity, lo, hi *big.Int, roundUp bool) *big.Int {
	num := new(big.Int).Sub(hi, lo)
	num.Mul(num, liquidity)
	quo, rem := num.QuoRem(num, q64, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}

// liquidityFromAmountA inverts amountADelta, rounding down so the amounts
// always cover the returned liquidity.
func liquidityFromAmountA(amountA, lo, hi *big.Int) *big.Int {
	num := new(big.Int).Mul(amountA, hi)
	num.Mul(num, lo)
	den := new(big.Int).Sub(hi, lo)
	den.Lsh(den, 64)
	return num.Quo(num, den)
}

// liquidityFromAmountB inverts amountBDelta, rounding down.
func liquidityFromAmountB(amountB, lo, hi *big.Int) *big.Int {
	num := new(big.Int).Lsh(amountB, 64)
	den := new(big.Int).Sub(hi, lo)
	return num.Quo(num, den)
}
