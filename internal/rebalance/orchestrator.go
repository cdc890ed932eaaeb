package rebalance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/clmm"
	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

// PositionReader loads on-chain state. internal/chain provides the
// production implementation.
type PositionReader interface {
	ListPositions(ctx context.Context, owner string) ([]model.PositionInfo, error)
	GetPool(ctx context.Context, poolID string) (model.PoolSnapshot, error)
}

// Executor submits one rebalance step and tracks it to finality.
type Executor interface {
	Execute(ctx context.Context, step model.StepKind, params model.StepParams) (model.ExecResult, error)
	AwaitConfirmation(ctx context.Context, digest string) (model.Confirmation, error)
}

// EndpointRotator moves the transport to its next endpoint between retry
// attempts. chain.Client implements it.
type EndpointRotator interface {
	Failover()
}

// Recorder persists rebalance outcomes.
type Recorder interface {
	Record(ctx context.Context, rec model.RebalanceRecord) error
}

// Notifier pushes rebalance outcomes to operators. Implementations must not
// block the flow; delivery failures are theirs to log.
type Notifier interface {
	Notify(ctx context.Context, rec model.RebalanceRecord)
}

// Config holds the runtime settings of the rebalancing core.
type Config struct {
	// Owner is the address whose positions are managed.
	Owner string
	// Slippage guards every amount sent with a transaction.
	Slippage clmm.Percentage
	// Execute enables on-chain execution. Off means dry run: full math and
	// decisions, no transactions.
	Execute bool
	// Pools optionally restricts rebalancing to these pool IDs.
	Pools []string
	// Retry bounds every external call.
	Retry Policy
	// PoolTTL bounds pool snapshot staleness.
	PoolTTL time.Duration
}

// Deps are the swappable parts of the orchestrator. Recorder and Notifier
// are optional.
type Deps struct {
	Reader   PositionReader
	Executor Executor
	Rotator  EndpointRotator
	Recorder Recorder
	Notifier Notifier
}

// Result is the outcome of one position's check.
type Result struct {
	Position      model.PositionInfo
	State         State
	NewLower      int32
	NewUpper      int32
	NewPositionID string
	Digests       []string
	Err           error
}

// Orchestrator walks the owner's positions and recenters the ones that
// drifted out of range. One position is processed at a time; there is no
// concurrent execution against the wallet.
type Orchestrator struct {
	cfg      Config
	reader   PositionReader
	executor Executor
	rotator  EndpointRotator
	recorder Recorder
	notifier Notifier
	cache    *PoolCache
	logger   *zap.Logger
	allowed  map[string]struct{}
}

// NewOrchestrator builds an orchestrator with its dependencies.
func NewOrchestrator(cfg Config, deps Deps, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	var allowed map[string]struct{}
	if len(cfg.Pools) > 0 {
		allowed = make(map[string]struct{}, len(cfg.Pools))
		for _, id := range cfg.Pools {
			allowed[id] = struct{}{}
		}
	}
	return &Orchestrator{
		cfg:      cfg,
		reader:   deps.Reader,
		executor: deps.Executor,
		rotator:  deps.Rotator,
		recorder: deps.Recorder,
		notifier: deps.Notifier,
		cache:    NewPoolCache(cfg.PoolTTL),
		logger:   logger,
		allowed:  allowed,
	}
}

// CheckCycle inspects every owned position once. Positions still in range
// are left alone; the rest go through the remove, close, open, add flow.
// A failure on one position never blocks the others.
func (o *Orchestrator) CheckCycle(ctx context.Context) ([]Result, error) {
	if o.reader == nil {
		return nil, fmt.Errorf("position reader is nil")
	}
	if o.cfg.Owner == "" {
		return nil, fmt.Errorf("owner address is required")
	}
	if o.cfg.Execute && o.executor == nil {
		return nil, fmt.Errorf("execution is enabled but no executor is wired")
	}

	positions, err := o.listPositionsWithRetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	o.logger.Info("check cycle started",
		zap.Int("positions", len(positions)),
		zap.Bool("dry_run", !o.cfg.Execute),
	)

	results := make([]Result, 0, len(positions))
	for _, pos := range positions {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		if !o.poolAllowed(pos.PoolID) {
			o.logger.Debug("pool not on the allowlist", zap.String("position", pos.PositionID), zap.String("pool", pos.PoolID))
			continue
		}
		if pos.Liquidity == nil || pos.Liquidity.Sign() == 0 {
			o.logger.Debug("skipping empty position", zap.String("position", pos.PositionID))
			continue
		}
		results = append(results, o.processPosition(ctx, pos))
	}
	return results, nil
}

func (o *Orchestrator) poolAllowed(poolID string) bool {
	if o.allowed == nil {
		return true
	}
	_, ok := o.allowed[poolID]
	return ok
}

func (o *Orchestrator) processPosition(ctx context.Context, pos model.PositionInfo) Result {
	res := Result{Position: pos, State: StateCheckingRange}

	snap, err := o.poolSnapshot(ctx, pos.PoolID)
	if err != nil {
		res.State = StateFailed
		res.Err = fmt.Errorf("pool snapshot for %s: %w", pos.PoolID, err)
		o.logger.Error("pool state unavailable",
			zap.String("position", pos.PositionID),
			zap.String("pool", pos.PoolID),
			zap.Error(err),
		)
		return res
	}

	if pos.InRange(snap.CurrentTick) {
		res.State = StateInRange
		o.logger.Debug("position in range",
			zap.String("position", pos.PositionID),
			zap.Int32("current_tick", snap.CurrentTick),
			zap.Int32("lower", pos.TickLower),
			zap.Int32("upper", pos.TickUpper),
		)
		return res
	}

	res.State = StateOutOfRange
	startedAt := time.Now().UTC()

	newLower, newUpper, err := clmm.RecenterRange(snap.CurrentTick, snap.TickSpacing, pos.Width())
	if err != nil {
		res = o.failPosition(res, fmt.Errorf("recenter range: %w", err))
		o.persist(ctx, buildRecord(res, snap, nil, startedAt, !o.cfg.Execute))
		return res
	}
	res.NewLower, res.NewUpper = newLower, newUpper

	plan, err := buildPlan(o.cfg.Slippage, pos, snap, newLower, newUpper)
	if err != nil {
		res = o.failPosition(res, fmt.Errorf("plan rebalance: %w", err))
		o.persist(ctx, buildRecord(res, snap, nil, startedAt, !o.cfg.Execute))
		return res
	}

	o.logger.Info("position out of range",
		zap.String("position", pos.PositionID),
		zap.String("pool", pos.PoolID),
		zap.Int32("current_tick", snap.CurrentTick),
		zap.Int32("old_lower", pos.TickLower),
		zap.Int32("old_upper", pos.TickUpper),
		zap.Int32("new_lower", newLower),
		zap.Int32("new_upper", newUpper),
		zap.String("price", clmm.PriceFromSqrtPriceX64(snap.CurrentSqrtPrice, 0, 0).StringFixed(8)),
		zap.String("new_liquidity", plan.newLiquidity.String()),
		zap.Bool("dry_run", !o.cfg.Execute),
	)

	if !o.cfg.Execute {
		// Dry run stops at the decision; the record carries the full plan.
		o.persist(ctx, buildRecord(res, snap, plan, startedAt, true))
		return res
	}

	res = o.runFlow(ctx, res, plan)
	if res.State == StateDone {
		// The pool's composition moved; let the next cycle refetch.
		o.cache.Invalidate(pos.PoolID)
	}
	o.persist(ctx, buildRecord(res, snap, plan, startedAt, false))
	return res
}

// runFlow executes the four on-chain steps in order. There is no rollback:
// a failure leaves the position however far it got, and the next cycle
// re-derives what remains to be done from chain state.
func (o *Orchestrator) runFlow(ctx context.Context, res Result, plan *stepPlan) Result {
	pos := res.Position
	base := model.StepParams{
		PoolID:     pos.PoolID,
		PositionID: pos.PositionID,
		CoinTypeA:  pos.CoinTypeA,
		CoinTypeB:  pos.CoinTypeB,
	}

	res.State = StateRemovingLiquidity
	remove := base
	remove.Liquidity = pos.Liquidity
	remove.MinAmountA = plan.minA
	remove.MinAmountB = plan.minB
	if _, err := o.runStep(ctx, &res, model.StepRemoveLiquidity, remove); err != nil {
		return o.failPosition(res, err)
	}

	res.State = StateClosingPosition
	if _, err := o.runStep(ctx, &res, model.StepClosePosition, base); err != nil {
		return o.failPosition(res, err)
	}

	res.State = StateOpeningPosition
	open := base
	open.PositionID = ""
	open.TickLower = res.NewLower
	open.TickUpper = res.NewUpper
	conf, err := o.runStep(ctx, &res, model.StepOpenPosition, open)
	if err != nil {
		return o.failPosition(res, err)
	}
	if conf.NewPositionID == "" {
		return o.failPosition(res, fmt.Errorf("transaction %s created no position object", conf.Digest))
	}
	res.NewPositionID = conf.NewPositionID

	res.State = StateAddingLiquidity
	add := base
	add.PositionID = conf.NewPositionID
	add.Liquidity = plan.newLiquidity
	add.MaxAmountA = plan.maxA
	add.MaxAmountB = plan.maxB
	if _, err := o.runStep(ctx, &res, model.StepAddLiquidity, add); err != nil {
		return o.failPosition(res, err)
	}

	res.State = StateDone
	o.logger.Info("rebalance complete",
		zap.String("position", pos.PositionID),
		zap.String("new_position", res.NewPositionID),
		zap.String("pool", pos.PoolID),
		zap.Int32("new_lower", res.NewLower),
		zap.Int32("new_upper", res.NewUpper),
		zap.Strings("digests", res.Digests),
	)
	return res
}

// runStep submits one step under the retry policy and waits for its
// confirmation. Submission is what retries; confirmation polling has its own
// budget inside the executor and a timeout there fails the step, since
// resubmitting a possibly-landed transaction is worse than surfacing it.
func (o *Orchestrator) runStep(ctx context.Context, res *Result, step model.StepKind, params model.StepParams) (model.Confirmation, error) {
	var exec model.ExecResult
	err := withRetry(ctx, o.cfg.Retry, o.rotateEndpoint, func(ctx context.Context) error {
		r, err := o.executor.Execute(ctx, step, params)
		if err != nil {
			o.logger.Warn("step attempt failed",
				zap.String("step", string(step)),
				zap.String("position", res.Position.PositionID),
				zap.Error(err),
			)
			return err
		}
		exec = r
		return nil
	})
	if err != nil {
		return model.Confirmation{}, fmt.Errorf("%s: %w", step, err)
	}
	res.Digests = append(res.Digests, exec.Digest)

	conf, err := o.executor.AwaitConfirmation(ctx, exec.Digest)
	if err != nil {
		return conf, fmt.Errorf("confirm %s: %w", step, err)
	}
	o.logger.Info("step confirmed",
		zap.String("step", string(step)),
		zap.String("position", res.Position.PositionID),
		zap.String("digest", conf.Digest),
	)
	return conf, nil
}

func (o *Orchestrator) rotateEndpoint() {
	if o.rotator == nil {
		return
	}
	o.rotator.Failover()
}

func (o *Orchestrator) failPosition(res Result, err error) Result {
	failedAt := res.State
	res.State = StateFailed
	res.Err = fmt.Errorf("%s: %w", failedAt, err)
	o.logger.Error("rebalance failed",
		zap.String("position", res.Position.PositionID),
		zap.String("pool", res.Position.PoolID),
		zap.String("step", failedAt.String()),
		zap.Error(err),
	)
	return res
}

func (o *Orchestrator) listPositionsWithRetry(ctx context.Context) ([]model.PositionInfo, error) {
	var positions []model.PositionInfo
	err := withRetry(ctx, o.cfg.Retry, o.rotateEndpoint, func(ctx context.Context) error {
		var err error
		positions, err = o.reader.ListPositions(ctx, o.cfg.Owner)
		if err != nil {
			o.logger.Warn("list positions failed", zap.Error(err))
		}
		return err
	})
	return positions, err
}

func (o *Orchestrator) poolSnapshot(ctx context.Context, poolID string) (model.PoolSnapshot, error) {
	return o.cache.Get(ctx, poolID, func(ctx context.Context, id string) (model.PoolSnapshot, error) {
		var snap model.PoolSnapshot
		err := withRetry(ctx, o.cfg.Retry, o.rotateEndpoint, func(ctx context.Context) error {
			var err error
			snap, err = o.reader.GetPool(ctx, id)
			if err != nil {
				o.logger.Warn("pool fetch failed", zap.String("pool", id), zap.Error(err))
			}
			return err
		})
		return snap, err
	})
}

func (o *Orchestrator) persist(ctx context.Context, rec model.RebalanceRecord) {
	if o.recorder != nil {
		if err := o.recorder.Record(ctx, rec); err != nil {
			// Bookkeeping must never fail a rebalance.
			o.logger.Warn("record rebalance failed", zap.Error(err))
		}
	}
	if o.notifier != nil {
		o.notifier.Notify(ctx, rec)
	}
}

func buildRecord(res Result, snap model.PoolSnapshot, plan *stepPlan, startedAt time.Time, dryRun bool) model.RebalanceRecord {
	rec := model.RebalanceRecord{
		PositionID:    res.Position.PositionID,
		NewPositionID: res.NewPositionID,
		PoolID:        res.Position.PoolID,
		OldTickLower:  res.Position.TickLower,
		OldTickUpper:  res.Position.TickUpper,
		NewTickLower:  res.NewLower,
		NewTickUpper:  res.NewUpper,
		CurrentTick:   snap.CurrentTick,
		Liquidity:     res.Position.Liquidity.String(),
		Digests:       res.Digests,
		DryRun:        dryRun,
		FinalState:    res.State.String(),
		StartedAt:     startedAt.Format(time.RFC3339),
		FinishedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if plan != nil {
		rec.NewLiquidity = plan.newLiquidity.String()
		rec.AmountA = plan.expectA.String()
		rec.AmountB = plan.expectB.String()
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}
