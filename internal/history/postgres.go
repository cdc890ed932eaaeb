package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

// PostgresRecorder persists rebalance records to a rebalance_history table.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(ctx context.Context, dsn string) (*PostgresRecorder, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresRecorder{pool: pool}, nil
}

func (r *PostgresRecorder) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Record inserts one rebalance outcome.
func (r *PostgresRecorder) Record(ctx context.Context, rec model.RebalanceRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rebalance_history (
			position_id, new_position_id, pool_id,
			old_tick_lower, old_tick_upper, new_tick_lower, new_tick_upper,
			current_tick, liquidity, new_liquidity, amount_a, amount_b,
			digests, dry_run, final_state, error, started_at, finished_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now())
	`,
		rec.PositionID,
		rec.NewPositionID,
		rec.PoolID,
		rec.OldTickLower,
		rec.OldTickUpper,
		rec.NewTickLower,
		rec.NewTickUpper,
		rec.CurrentTick,
		rec.Liquidity,
		rec.NewLiquidity,
		rec.AmountA,
		rec.AmountB,
		rec.Digests,
		rec.DryRun,
		rec.FinalState,
		rec.Error,
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rebalance record: %w", err)
	}
	return nil
}
