package model

import "math/big"

// PositionInfo is a read-only snapshot of an on-chain position, taken when a
// check cycle starts. Rebalancing never mutates it; the next cycle reads a
// fresh one.
type PositionInfo struct {
	PositionID string   `json:"position_id"`
	PoolID     string   `json:"pool_id"`
	TickLower  int32    `json:"tick_lower"`
	TickUpper  int32    `json:"tick_upper"`
	Liquidity  *big.Int `json:"liquidity"`
	CoinTypeA  string   `json:"coin_type_a"`
	CoinTypeB  string   `json:"coin_type_b"`
}

// InRange reports whether the current tick sits inside the position's range.
// The lower bound is inclusive, the upper exclusive.
func (p PositionInfo) InRange(currentTick int32) bool {
	return currentTick >= p.TickLower && currentTick < p.TickUpper
}

// Width is the tick span of the position's range.
func (p PositionInfo) Width() int32 {
	return p.TickUpper - p.TickLower
}
