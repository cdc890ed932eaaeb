package rebalance

import (
	"fmt"
	"math/big"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/clmm"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

// stepPlan carries every amount the four-step flow needs, fixed once from a
// single pool snapshot so all steps price against the same state.
type stepPlan struct {
	// Withdrawal side: what removing the old liquidity should pay out, and
	// the least the guard will accept.
	expectA, expectB *big.Int
	minA, minB       *big.Int

	// Deposit side: the liquidity the withdrawn value funds in the new
	// range, the amounts that liquidity demands there, and the most the
	// guard will pay.
	newLiquidity *big.Int
	needA, needB *big.Int
	maxA, maxB   *big.Int
}

// buildPlan prices a full rebalance of pos into [newLower, newUpper) at the
// snapshot's price. The withdrawn token amounts are the budget: liquidity
// for the new range is recomputed from them rather than reusing the old
// figure, because the new range prices the same tokens differently. An
// out-of-range position withdraws single-sided, so the held coin alone
// sizes the new position and the opposite coin is topped up from the wallet
// within the maxA/maxB bounds.
func buildPlan(slippage clmm.Percentage, pos model.PositionInfo, snap model.PoolSnapshot, newLower, newUpper int32) (*stepPlan, error) {
	oldLo, err := clmm.TickToSqrtPriceX64(pos.TickLower)
	if err != nil {
		return nil, fmt.Errorf("old lower tick: %w", err)
	}
	oldHi, err := clmm.TickToSqrtPriceX64(pos.TickUpper)
	if err != nil {
		return nil, fmt.Errorf("old upper tick: %w", err)
	}
	cur := snap.CurrentSqrtPrice

	expect, err := clmm.AmountsFromLiquidity(pos.Liquidity, cur, oldLo, oldHi, false)
	if err != nil {
		return nil, fmt.Errorf("withdrawal amounts: %w", err)
	}

	newLo, err := clmm.TickToSqrtPriceX64(newLower)
	if err != nil {
		return nil, fmt.Errorf("new lower tick: %w", err)
	}
	newHi, err := clmm.TickToSqrtPriceX64(newUpper)
	if err != nil {
		return nil, fmt.Errorf("new upper tick: %w", err)
	}

	liquidity, err := carriedLiquidity(expect, cur, newLo, newHi)
	if err != nil {
		return nil, fmt.Errorf("size new position: %w", err)
	}
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("withdrawn amounts cannot fund the new range")
	}

	need, err := clmm.AmountsFromLiquidity(liquidity, cur, newLo, newHi, true)
	if err != nil {
		return nil, fmt.Errorf("deposit amounts: %w", err)
	}

	return &stepPlan{
		expectA:      expect.CoinA,
		expectB:      expect.CoinB,
		minA:         slippage.SubtractSlippage(expect.CoinA),
		minB:         slippage.SubtractSlippage(expect.CoinB),
		newLiquidity: liquidity,
		needA:        need.CoinA,
		needB:        need.CoinB,
		maxA:         slippage.AddSlippage(need.CoinA),
		maxB:         slippage.AddSlippage(need.CoinB),
	}, nil
}

// carriedLiquidity sizes the new position from the withdrawn amounts. With
// both coins on hand the smaller binding wins; a single-sided withdrawal is
// sized by the held coin alone.
func carriedLiquidity(held clmm.CoinAmounts, cur, newLo, newHi *big.Int) (*big.Int, error) {
	switch {
	case held.CoinA.Sign() > 0 && held.CoinB.Sign() > 0:
		return clmm.LiquidityFromAmounts(held.CoinA, held.CoinB, cur, newLo, newHi)
	case held.CoinA.Sign() > 0:
		return clmm.LiquidityFromCoinA(held.CoinA, cur, newLo, newHi)
	case held.CoinB.Sign() > 0:
		return clmm.LiquidityFromCoinB(held.CoinB, cur, newLo, newHi)
	default:
		return nil, fmt.Errorf("nothing withdrawn")
	}
}
