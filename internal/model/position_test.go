package model

import (
	"math/big"
	"testing"
)

func TestPositionInRangeBounds(t *testing.T) {
	pos := PositionInfo{
		PositionID: "0xpos",
		TickLower:  1000,
		TickUpper:  2000,
		Liquidity:  big.NewInt(1),
	}

	cases := []struct {
		tick int32
		want bool
	}{
		{999, false},
		{1000, true}, // lower bound inclusive
		{1001, true},
		{1999, true},
		{2000, false}, // upper bound exclusive
		{2500, false},
		{-1000, false},
	}
	for _, tc := range cases {
		if got := pos.InRange(tc.tick); got != tc.want {
			t.Fatalf("InRange(%d): want %v, got %v", tc.tick, tc.want, got)
		}
	}
}

func TestPositionWidth(t *testing.T) {
	pos := PositionInfo{TickLower: -500, TickUpper: 1500}
	if got := pos.Width(); got != 2000 {
		t.Fatalf("Width: want 2000, got %d", got)
	}
}
