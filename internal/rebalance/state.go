package rebalance

// State tracks where a position's check currently stands. States advance
// strictly forward within one cycle; the next cycle starts fresh from
// checking.
type State int

const (
	StateIdle State = iota
	StateCheckingRange
	StateInRange
	StateOutOfRange
	StateRemovingLiquidity
	StateClosingPosition
	StateOpeningPosition
	StateAddingLiquidity
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:              "idle",
	StateCheckingRange:     "checking_range",
	StateInRange:           "in_range",
	StateOutOfRange:        "out_of_range",
	StateRemovingLiquidity: "removing_liquidity",
	StateClosingPosition:   "closing_position",
	StateOpeningPosition:   "opening_position",
	StateAddingLiquidity:   "adding_liquidity",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether the cycle is finished with this position.
func (s State) Terminal() bool {
	return s == StateInRange || s == StateDone || s == StateFailed
}
