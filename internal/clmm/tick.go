package clmm

import (
	"errors"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// Tick bounds for the pools this bot manages. Prices are 1.0001^tick and the
// sqrt price is carried as unsigned Q64.64, which caps the magnitude at 443636.
const (
	MinTick int32 = -443636
	MaxTick int32 = 443636
)

var (
	// MinSqrtPriceX64 is TickToSqrtPriceX64(MinTick).
	MinSqrtPriceX64 = mustBigInt("4295048017")
	// MaxSqrtPriceX64 is TickToSqrtPriceX64(MaxTick).
	MaxSqrtPriceX64 = mustBigInt("79226673515401279992447579062")

	ErrTickOutOfBounds  = errors.New("tick out of bounds")
	ErrInvalidSqrtPrice = errors.New("sqrt price must be positive")
)

var (
	// ratioConstants[i] is 1/sqrt(1.0001^(2^i)) in UQ128.128 for bit i of the
	// tick magnitude. Bit 19 covers 524288, beyond MaxTick.
	ratioConstants = [20]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}

	// oneQ128 is 1 in UQ128.128, the starting ratio for even tick magnitudes.
	oneQ128    = uint256.MustFromHex("0x100000000000000000000000000000000")
	maxUint256 = new(uint256.Int).Not(new(uint256.Int))
	low64Mask  = uint256.NewInt(math.MaxUint64)
)

// log base for the inverse conversion, ln(1.0001).
var logTickBase = math.Log(1.0001)

const q64Float = float64(1 << 64)

// TickToSqrtPriceX64 returns sqrt(1.0001^tick) as an unsigned Q64.64
// fixed-point value. The result is exact per the reference constant table;
// callers must stay within [MinTick, MaxTick].
func TickToSqrtPriceX64(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfBounds
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(ratioConstants[0])
	} else {
		ratio.Set(oneQ128)
	}
	for i := 1; i < len(ratioConstants); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, ratioConstants[i]).Rsh(ratio, 128)
		}
	}

	// The table encodes negative powers, so a positive tick takes the
	// reciprocal before rescaling.
	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// UQ128.128 -> Q64.64, rounding up so the sqrt price never understates.
	rem := new(uint256.Int).And(ratio, low64Mask)
	ratio.Rsh(ratio, 64)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}
	return ratio.ToBig(), nil
}

// SqrtPriceX64ToTick returns the tick for a Q64.64 sqrt price. The conversion
// goes through a float64 logarithm, so it is approximate: round-tripping a
// tick may come back one below the original. The result is clamped to
// [MinTick, MaxTick].
func SqrtPriceX64ToTick(sqrtPrice *big.Int) (int32, error) {
	if sqrtPrice == nil || sqrtPrice.Sign() <= 0 {
		return 0, ErrInvalidSqrtPrice
	}
	f, _ := new(big.Float).SetInt(sqrtPrice).Float64()
	tick := math.Floor(2 * math.Log(f/q64Float) / logTickBase)
	if tick < float64(MinTick) {
		return MinTick, nil
	}
	if tick > float64(MaxTick) {
		return MaxTick, nil
	}
	return int32(tick), nil
}

// IsInitializableTick reports whether tick sits on the pool's spacing grid.
func IsInitializableTick(tick, spacing int32) bool {
	return spacing > 0 && tick%spacing == 0
}

// PrevInitializableTick floors tick to the nearest multiple of spacing.
// Spacing must be positive.
func PrevInitializableTick(tick, spacing int32) int32 {
	rem := tick % spacing
	if rem < 0 {
		rem += spacing
	}
	return tick - rem
}

// NextInitializableTick ceils tick to the nearest multiple of spacing.
// Spacing must be positive.
func NextInitializableTick(tick, spacing int32) int32 {
	prev := PrevInitializableTick(tick, spacing)
	if prev == tick {
		return tick
	}
	return prev + spacing
}

func mustBigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("clmm: bad integer literal " + s)
	}
	return n
}
