package clmm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentageSlippage(t *testing.T) {
	half := SlippageFromBps(50) // 0.5%

	t.Run("add slippage", func(t *testing.T) {
		cases := []struct {
			in   int64
			want string
		}{
			{1_000_000, "1005000"},
			{12345, "12407"},
			{199, "200"},
			{1, "2"},
			{0, "0"},
		}
		for _, tc := range cases {
			got := half.AddSlippage(big.NewInt(tc.in))
			assert.Equal(t, tc.want, got.String(), "input %d", tc.in)
		}
	})

	t.Run("subtract slippage", func(t *testing.T) {
		cases := []struct {
			in   int64
			want string
		}{
			{1_000_000, "995000"},
			{12345, "12283"},
			{199, "198"},
			{1, "0"},
			{0, "0"},
		}
		for _, tc := range cases {
			got := half.SubtractSlippage(big.NewInt(tc.in))
			assert.Equal(t, tc.want, got.String(), "input %d", tc.in)
		}
	})

	t.Run("round trip loses at most the margin", func(t *testing.T) {
		v := big.NewInt(1_000_000)
		back := half.SubtractSlippage(half.AddSlippage(v))
		assert.Equal(t, "999975", back.String())
	})

	t.Run("margin always rounds up", func(t *testing.T) {
		// 12345 * 50 / 10000 = 61.725, so the margin must be 62.
		got := half.Apply(big.NewInt(12345), true)
		assert.Equal(t, "62", got.String())
		floor := half.Apply(big.NewInt(12345), false)
		assert.Equal(t, "61", floor.String())
	})

	t.Run("zero tolerance is the identity", func(t *testing.T) {
		none := SlippageFromBps(0)
		v := big.NewInt(777)
		assert.Equal(t, "777", none.AddSlippage(v).String())
		assert.Equal(t, "777", none.SubtractSlippage(v).String())
	})

	t.Run("inputs are never mutated", func(t *testing.T) {
		v := big.NewInt(199)
		_ = half.AddSlippage(v)
		_ = half.SubtractSlippage(v)
		assert.Equal(t, "199", v.String())
	})
}
