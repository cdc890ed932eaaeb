package model

// RebalanceRecord is the persisted outcome of one position check that went
// past the in-range short-circuit. Big integers travel as decimal strings so
// records survive any JSON reader.
type RebalanceRecord struct {
	PositionID    string   `json:"position_id"`
	NewPositionID string   `json:"new_position_id,omitempty"`
	PoolID        string   `json:"pool_id"`
	OldTickLower  int32    `json:"old_tick_lower"`
	OldTickUpper  int32    `json:"old_tick_upper"`
	NewTickLower  int32    `json:"new_tick_lower"`
	NewTickUpper  int32    `json:"new_tick_upper"`
	CurrentTick   int32    `json:"current_tick"`
	Liquidity     string   `json:"liquidity"`
	NewLiquidity  string   `json:"new_liquidity,omitempty"`
	AmountA       string   `json:"amount_a,omitempty"`
	AmountB       string   `json:"amount_b,omitempty"`
	Digests       []string `json:"digests,omitempty"`
	DryRun        bool     `json:"dry_run"`
	FinalState    string   `json:"final_state"`
	Error         string   `json:"error,omitempty"`
	StartedAt     string   `json:"started_at"`
	FinishedAt    string   `json:"finished_at"`
}
