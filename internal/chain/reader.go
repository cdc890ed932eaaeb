package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/daniel4e393653-cmd/cetus-rebalance-bot/internal/model"
)

var (
	// ErrPoolPaused is returned when the pool object reports is_pause.
	ErrPoolPaused = errors.New("pool is paused")
	// ErrMalformedObject wraps every object decode failure.
	ErrMalformedObject = errors.New("malformed chain object")
)

// Sui caps owned-object pages at 50 entries.
const ownedPageLimit = 50

// Reader loads positions and pool state through the JSON-RPC object API.
type Reader struct {
	client    *Client
	packageID string
	logger    *zap.Logger
}

// NewReader builds a reader for positions minted by the given CLMM package.
func NewReader(client *Client, packageID string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{client: client, packageID: packageID, logger: logger}
}

func (r *Reader) positionStructType() string {
	return r.packageID + "::position::Position"
}

// ListPositions returns every decodable CLMM position owned by the address,
// walking cursor pages until the node reports the end. Objects that fail to
// decode are skipped with a warning so one bad entry cannot sink a cycle.
func (r *Reader) ListPositions(ctx context.Context, owner string) ([]model.PositionInfo, error) {
	query := map[string]interface{}{
		"filter":  map[string]interface{}{"StructType": r.positionStructType()},
		"options": map[string]interface{}{"showContent": true},
	}

	var out []model.PositionInfo
	var cursor *string
	for {
		var page ownedObjectsPage
		if err := r.client.Call(ctx, &page, "suix_getOwnedObjects", owner, query, cursor, ownedPageLimit); err != nil {
			return nil, fmt.Errorf("list positions for %s: %w", owner, err)
		}
		for _, obj := range page.Data {
			pos, err := decodePosition(obj)
			if err != nil {
				r.logger.Warn("skipping undecodable position", zap.Error(err))
				continue
			}
			out = append(out, pos)
		}
		if !page.HasNextPage || page.NextCursor == nil {
			return out, nil
		}
		cursor = page.NextCursor
	}
}

// GetPool fetches and decodes a pool object.
func (r *Reader) GetPool(ctx context.Context, poolID string) (model.PoolSnapshot, error) {
	var resp objectResponse
	opts := map[string]interface{}{"showContent": true}
	if err := r.client.Call(ctx, &resp, "sui_getObject", poolID, opts); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("get pool %s: %w", poolID, err)
	}
	return decodePool(poolID, resp)
}

func moveFields(obj objectResponse) (string, json.RawMessage, error) {
	if obj.Error != nil {
		return "", nil, fmt.Errorf("%w: node error %q for %s", ErrMalformedObject, obj.Error.Code, obj.Error.ObjectID)
	}
	if obj.Data == nil || obj.Data.Content == nil {
		return "", nil, fmt.Errorf("%w: missing content", ErrMalformedObject)
	}
	if obj.Data.Content.DataType != "moveObject" {
		return "", nil, fmt.Errorf("%w: %s is not a move object", ErrMalformedObject, obj.Data.ObjectID)
	}
	return obj.Data.ObjectID, obj.Data.Content.Fields, nil
}

func decodePosition(obj objectResponse) (model.PositionInfo, error) {
	id, raw, err := moveFields(obj)
	if err != nil {
		return model.PositionInfo{}, err
	}

	var fields positionFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.PositionInfo{}, fmt.Errorf("%w: position %s: %v", ErrMalformedObject, id, err)
	}

	liquidity, ok := new(big.Int).SetString(fields.Liquidity, 10)
	if !ok || liquidity.Sign() < 0 {
		return model.PositionInfo{}, fmt.Errorf("%w: position %s has liquidity %q", ErrMalformedObject, id, fields.Liquidity)
	}
	lower := decodeTick(fields.TickLowerIndex)
	upper := decodeTick(fields.TickUpperIndex)
	if lower >= upper {
		return model.PositionInfo{}, fmt.Errorf("%w: position %s range [%d, %d)", ErrMalformedObject, id, lower, upper)
	}

	return model.PositionInfo{
		PositionID: id,
		PoolID:     fields.Pool,
		TickLower:  lower,
		TickUpper:  upper,
		Liquidity:  liquidity,
		CoinTypeA:  fields.CoinTypeA.Fields.Name,
		CoinTypeB:  fields.CoinTypeB.Fields.Name,
	}, nil
}

func decodePool(poolID string, obj objectResponse) (model.PoolSnapshot, error) {
	id, raw, err := moveFields(obj)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("pool %s: %w", poolID, err)
	}

	var fields poolFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("%w: pool %s: %v", ErrMalformedObject, id, err)
	}
	if fields.IsPause {
		return model.PoolSnapshot{}, fmt.Errorf("%w: %s", ErrPoolPaused, id)
	}
	if fields.TickSpacing == 0 {
		return model.PoolSnapshot{}, fmt.Errorf("%w: pool %s has zero tick spacing", ErrMalformedObject, id)
	}
	sqrtPrice, ok := new(big.Int).SetString(fields.CurrentSqrtPrice, 10)
	if !ok || sqrtPrice.Sign() <= 0 {
		return model.PoolSnapshot{}, fmt.Errorf("%w: pool %s has sqrt price %q", ErrMalformedObject, id, fields.CurrentSqrtPrice)
	}

	return model.PoolSnapshot{
		PoolID:           id,
		CurrentTick:      decodeTick(fields.CurrentTickIndex),
		CurrentSqrtPrice: sqrtPrice,
		TickSpacing:      int32(fields.TickSpacing),
	}, nil
}
