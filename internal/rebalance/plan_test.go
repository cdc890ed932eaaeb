package rebalance

import (
	"math/big"
	"testing"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/clmm"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

func sqrtPriceAt(t *testing.T, tick int32) *big.Int {
	t.Helper()
	sp, err := clmm.TickToSqrtPriceX64(tick)
	if err != nil {
		t.Fatalf("sqrt price for tick %d: %v", tick, err)
	}
	return sp
}

func planFixturePosition() model.PositionInfo {
	return model.PositionInfo{
		PositionID: "0xpos",
		PoolID:     "0xpool",
		TickLower:  1000,
		TickUpper:  2000,
		Liquidity:  big.NewInt(1_000_000),
		CoinTypeA:  "0x2::sui::SUI",
		CoinTypeB:  "0xusdc::coin::COIN",
	}
}

func TestBuildPlanAboveRange(t *testing.T) {
	pos := planFixturePosition()
	snap := model.PoolSnapshot{
		PoolID:           "0xpool",
		CurrentTick:      2500,
		CurrentSqrtPrice: sqrtPriceAt(t, 2500),
		TickSpacing:      20,
	}

	plan, err := buildPlan(clmm.SlippageFromBps(50), pos, snap, 2000, 3000)
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}

	// Price above the range means the withdrawal is all coin B.
	if plan.expectA.Sign() != 0 || plan.expectB.String() != "53896" {
		t.Fatalf("withdrawal amounts: A=%s B=%s", plan.expectA, plan.expectB)
	}
	if plan.minA.Sign() != 0 || plan.minB.String() != "53626" {
		t.Fatalf("min receive: A=%s B=%s", plan.minA, plan.minB)
	}

	// The held coin B sizes the new position; coin A is the wallet top-up.
	if plan.newLiquidity.String() != "1926509" {
		t.Fatalf("new liquidity = %s", plan.newLiquidity)
	}
	if plan.needA.String() != "41975" || plan.needB.String() != "53896" {
		t.Fatalf("deposit amounts: A=%s B=%s", plan.needA, plan.needB)
	}
	if plan.maxA.String() != "42185" || plan.maxB.String() != "54166" {
		t.Fatalf("max pay: A=%s B=%s", plan.maxA, plan.maxB)
	}

	// The funding coin's deposit never exceeds what the withdrawal pays out.
	if plan.needB.Cmp(plan.expectB) > 0 {
		t.Fatalf("deposit B %s exceeds withdrawn %s", plan.needB, plan.expectB)
	}
}

func TestBuildPlanBelowRange(t *testing.T) {
	pos := planFixturePosition()
	snap := model.PoolSnapshot{
		PoolID:           "0xpool",
		CurrentTick:      500,
		CurrentSqrtPrice: sqrtPriceAt(t, 500),
		TickSpacing:      20,
	}

	plan, err := buildPlan(clmm.SlippageFromBps(50), pos, snap, 0, 1000)
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}

	if plan.expectA.String() != "46389" || plan.expectB.Sign() != 0 {
		t.Fatalf("withdrawal amounts: A=%s B=%s", plan.expectA, plan.expectB)
	}
	if plan.minA.String() != "46157" || plan.minB.Sign() != 0 {
		t.Fatalf("min receive: A=%s B=%s", plan.minA, plan.minB)
	}
	if plan.newLiquidity.String() != "1926507" {
		t.Fatalf("new liquidity = %s", plan.newLiquidity)
	}
	if plan.needA.String() != "46389" || plan.needB.String() != "48768" {
		t.Fatalf("deposit amounts: A=%s B=%s", plan.needA, plan.needB)
	}
	if plan.maxA.String() != "46621" || plan.maxB.String() != "49012" {
		t.Fatalf("max pay: A=%s B=%s", plan.maxA, plan.maxB)
	}
}

func TestBuildPlanRejectsUnfundableRange(t *testing.T) {
	pos := planFixturePosition()
	snap := model.PoolSnapshot{
		PoolID:           "0xpool",
		CurrentTick:      2500,
		CurrentSqrtPrice: sqrtPriceAt(t, 2500),
		TickSpacing:      20,
	}

	// The withdrawal is all coin B, which cannot fund a range entirely
	// above the current price.
	if _, err := buildPlan(clmm.SlippageFromBps(50), pos, snap, 3000, 4000); err == nil {
		t.Fatal("expected an unfundable range to be rejected")
	}
}

func TestBuildPlanRejectsBadTicks(t *testing.T) {
	pos := planFixturePosition()
	pos.TickLower = -500_000
	snap := model.PoolSnapshot{
		PoolID:           "0xpool",
		CurrentTick:      2500,
		CurrentSqrtPrice: sqrtPriceAt(t, 2500),
		TickSpacing:      20,
	}

	if _, err := buildPlan(clmm.SlippageFromBps(50), pos, snap, 2000, 3000); err == nil {
		t.Fatal("expected out-of-bounds tick to be rejected")
	}
}
