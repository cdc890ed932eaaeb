package chain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

var (
	// ErrTxFailed is returned when the chain executed a transaction and
	// reported an abort.
	ErrTxFailed = errors.New("transaction failed on chain")
	// ErrConfirmationTimeout is returned when a digest never reaches a
	// final status within the polling budget.
	ErrConfirmationTimeout = errors.New("transaction confirmation timed out")
)

const (
	poolScriptModule = "pool_script"
	clockObjectID    = "0x6"
)

// ExecutorConfig wires a TxExecutor to a deployed CLMM integration.
type ExecutorConfig struct {
	// ScriptPackageID is the package holding the pool_script entry functions.
	ScriptPackageID string
	// GlobalConfigID is the shared protocol config object every entry
	// function takes first.
	GlobalConfigID string
	GasBudget      uint64

	// Confirmation polling: one status check per interval, up to the
	// attempt limit.
	ConfirmInterval time.Duration
	ConfirmAttempts int
}

// TxExecutor turns rebalance steps into move calls, has the node assemble
// the transaction, signs it locally and tracks it to finality.
type TxExecutor struct {
	client *Client
	signer Signer
	cfg    ExecutorConfig
	logger *zap.Logger
}

func NewTxExecutor(client *Client, signer Signer, cfg ExecutorConfig, logger *zap.Logger) *TxExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxExecutor{client: client, signer: signer, cfg: cfg, logger: logger}
}

var executeOptions = map[string]interface{}{
	"showEffects":       true,
	"showObjectChanges": true,
}

// Execute submits one step and returns the digest to confirm. A transport
// error and an immediate on-chain abort both come back as errors; callers
// retry them the same way.
func (e *TxExecutor) Execute(ctx context.Context, step model.StepKind, params model.StepParams) (model.ExecResult, error) {
	function, typeArgs, args, err := buildMoveCall(e.cfg.GlobalConfigID, step, params)
	if err != nil {
		return model.ExecResult{}, err
	}

	var built transactionBytes
	err = e.client.Call(ctx, &built, "unsafe_moveCall",
		e.signer.Address(),
		e.cfg.ScriptPackageID,
		poolScriptModule,
		function,
		typeArgs,
		args,
		nil, // let the node pick a gas object
		strconv.FormatUint(e.cfg.GasBudget, 10),
	)
	if err != nil {
		return model.ExecResult{}, fmt.Errorf("build %s: %w", step, err)
	}

	raw, err := base64.StdEncoding.DecodeString(built.TxBytes)
	if err != nil {
		return model.ExecResult{}, fmt.Errorf("decode tx bytes for %s: %w", step, err)
	}
	signature, err := e.signer.SignTransactionBlock(raw)
	if err != nil {
		return model.ExecResult{}, fmt.Errorf("sign %s: %w", step, err)
	}

	var resp transactionResponse
	err = e.client.Call(ctx, &resp, "sui_executeTransactionBlock",
		built.TxBytes,
		[]string{signature},
		executeOptions,
		"WaitForEffectsCert",
	)
	if err != nil {
		return model.ExecResult{}, fmt.Errorf("submit %s: %w", step, err)
	}

	result := model.ExecResult{Digest: resp.Digest, Status: model.TxStatusPending}
	if resp.Effects != nil {
		result.Status = mapTxStatus(resp.Effects.Status.Status)
		if result.Status == model.TxStatusFailure {
			return result, fmt.Errorf("%s %s: %w: %s", step, resp.Digest, ErrTxFailed, resp.Effects.Status.Error)
		}
	}
	e.logger.Debug("step submitted",
		zap.String("step", string(step)),
		zap.String("digest", resp.Digest),
		zap.String("endpoint", e.client.Endpoint()),
	)
	return result, nil
}

// AwaitConfirmation polls the digest until the chain reports a final status.
// Nodes answer not-found while a transaction propagates, so transport and
// lookup errors just burn one polling attempt.
func (e *TxExecutor) AwaitConfirmation(ctx context.Context, digest string) (model.Confirmation, error) {
	interval := e.cfg.ConfirmInterval
	if interval <= 0 {
		interval = time.Second
	}
	attempts := e.cfg.ConfirmAttempts
	if attempts <= 0 {
		attempts = 30
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return model.Confirmation{Digest: digest, Status: model.TxStatusPending}, ctx.Err()
			case <-timer.C:
			}
		}

		var resp transactionResponse
		err := e.client.Call(ctx, &resp, "sui_getTransactionBlock", digest, executeOptions)
		if err != nil {
			e.logger.Debug("confirmation poll failed",
				zap.String("digest", digest),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}
		if resp.Effects == nil {
			continue
		}

		switch mapTxStatus(resp.Effects.Status.Status) {
		case model.TxStatusSuccess:
			return model.Confirmation{
				Digest:        digest,
				Status:        model.TxStatusSuccess,
				NewPositionID: createdPositionID(resp.ObjectChanges),
			}, nil
		case model.TxStatusFailure:
			conf := model.Confirmation{
				Digest: digest,
				Status: model.TxStatusFailure,
				Error:  resp.Effects.Status.Error,
			}
			return conf, fmt.Errorf("%s: %w: %s", digest, ErrTxFailed, resp.Effects.Status.Error)
		}
	}
	return model.Confirmation{Digest: digest, Status: model.TxStatusPending},
		fmt.Errorf("%s after %d attempts: %w", digest, attempts, ErrConfirmationTimeout)
}

func mapTxStatus(s string) model.TxStatus {
	switch s {
	case "success":
		return model.TxStatusSuccess
	case "failure":
		return model.TxStatusFailure
	default:
		return model.TxStatusPending
	}
}

// createdPositionID picks the position object out of a transaction's object
// changes, if one was created.
func createdPositionID(changes []objectChange) string {
	for _, change := range changes {
		if change.Type == "created" && strings.Contains(change.ObjectType, "::position::Position") {
			return change.ObjectID
		}
	}
	return ""
}

func buildMoveCall(globalConfigID string, step model.StepKind, params model.StepParams) (string, []string, []interface{}, error) {
	typeArgs := []string{
		normalizeCoinType(params.CoinTypeA),
		normalizeCoinType(params.CoinTypeB),
	}

	switch step {
	case model.StepRemoveLiquidity:
		if params.PositionID == "" {
			return "", nil, nil, fmt.Errorf("remove_liquidity: position id required")
		}
		return "remove_liquidity", typeArgs, []interface{}{
			globalConfigID,
			params.PoolID,
			params.PositionID,
			bigArg(params.Liquidity),
			bigArg(params.MinAmountA),
			bigArg(params.MinAmountB),
			clockObjectID,
		}, nil
	case model.StepClosePosition:
		if params.PositionID == "" {
			return "", nil, nil, fmt.Errorf("close_position: position id required")
		}
		return "close_position", typeArgs, []interface{}{
			globalConfigID,
			params.PoolID,
			params.PositionID,
			bigArg(params.MinAmountA),
			bigArg(params.MinAmountB),
			clockObjectID,
		}, nil
	case model.StepOpenPosition:
		if params.TickLower >= params.TickUpper {
			return "", nil, nil, fmt.Errorf("open_position: range [%d, %d) is empty", params.TickLower, params.TickUpper)
		}
		return "open_position", typeArgs, []interface{}{
			globalConfigID,
			params.PoolID,
			strconv.FormatUint(uint64(encodeTickBits(params.TickLower)), 10),
			strconv.FormatUint(uint64(encodeTickBits(params.TickUpper)), 10),
		}, nil
	case model.StepAddLiquidity:
		if params.PositionID == "" {
			return "", nil, nil, fmt.Errorf("add_liquidity: position id required")
		}
		return "add_liquidity", typeArgs, []interface{}{
			globalConfigID,
			params.PoolID,
			params.PositionID,
			bigArg(params.Liquidity),
			bigArg(params.MaxAmountA),
			bigArg(params.MaxAmountB),
			clockObjectID,
		}, nil
	default:
		return "", nil, nil, fmt.Errorf("unknown step kind %q", step)
	}
}

// bigArg renders an amount as the decimal string the JSON API expects for
// u64/u128 values. Nil means zero.
func bigArg(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// normalizeCoinType prefixes the address part with 0x, which the type
// argument parser requires. type_name fields come without it.
func normalizeCoinType(name string) string {
	if name == "" || strings.HasPrefix(name, "0x") {
		return name
	}
	return "0x" + name
}
