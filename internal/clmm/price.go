package clmm

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var q128Dec = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128), 0)

// PriceFromSqrtPriceX64 converts a Q64.64 sqrt price into the pool price of
// one whole coin A quoted in whole coin B, adjusting for coin decimals. The
// result is for operators and reports; position math stays in fixed point.
func PriceFromSqrtPriceX64(sqrtPrice *big.Int, decimalsA, decimalsB int32) decimal.Decimal {
	sq := decimal.NewFromBigInt(sqrtPrice, 0)
	return sq.Mul(sq).Div(q128Dec).Shift(decimalsA - decimalsB)
}

// PriceFromTick is PriceFromSqrtPriceX64 over the tick's sqrt price.
func PriceFromTick(tick int32, decimalsA, decimalsB int32) (decimal.Decimal, error) {
	sqrtPrice, err := TickToSqrtPriceX64(tick)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return PriceFromSqrtPriceX64(sqrtPrice, decimalsA, decimalsB), nil
}
