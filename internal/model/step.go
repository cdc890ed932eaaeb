package model

import "math/big"

// StepKind names one on-chain move of a rebalance flow.
type StepKind string

const (
	StepRemoveLiquidity StepKind = "remove_liquidity"
	StepClosePosition   StepKind = "close_position"
	StepOpenPosition    StepKind = "open_position"
	StepAddLiquidity    StepKind = "add_liquidity"
)

// StepParams carries everything an executor needs to build the transaction
// for a step. Steps read only the fields that concern them.
type StepParams struct {
	PoolID     string
	PositionID string
	CoinTypeA  string
	CoinTypeB  string

	// Liquidity to remove or add, depending on the step.
	Liquidity *big.Int

	// Slippage-guarded bounds. Min amounts protect withdrawals, max amounts
	// cap deposits.
	MinAmountA *big.Int
	MinAmountB *big.Int
	MaxAmountA *big.Int
	MaxAmountB *big.Int

	// New range bounds for the open step.
	TickLower int32
	TickUpper int32
}

// TxStatus is the chain's verdict on a submitted transaction.
type TxStatus string

const (
	TxStatusPending TxStatus = "pending"
	TxStatusSuccess TxStatus = "success"
	TxStatusFailure TxStatus = "failure"
)

// ExecResult is what submission returns before finality: the digest to poll
// and whatever status the node reported immediately.
type ExecResult struct {
	Digest string
	Status TxStatus
}

// Confirmation is the finalized outcome of a step's transaction.
type Confirmation struct {
	Digest string
	Status TxStatus
	// Error carries the on-chain abort message for failed transactions.
	Error string
	// NewPositionID is set when the transaction created a position object;
	// the open step relies on it to target the follow-up deposit.
	NewPositionID string
}
