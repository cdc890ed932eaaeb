package model

import "math/big"

// PoolSnapshot is the pool state a rebalance decision is made against. It is
// immutable once fetched; freshness is the cache's concern.
type PoolSnapshot struct {
	PoolID           string   `json:"pool_id"`
	CurrentTick      int32    `json:"current_tick"`
	CurrentSqrtPrice *big.Int `json:"current_sqrt_price"`
	TickSpacing      int32    `json:"tick_spacing"`
}
