package clmm

// RecenterRange builds a fresh position range of (at least) the given width
// centered on the current tick. Both bounds land on the pool's spacing grid:
// the lower bound is floored, the upper ceiled, so alignment can widen the
// range by up to one spacing step but never narrows it. Bounds are clamped
// to the legal tick grid.
func RecenterRange(currentTick, spacing, width int32) (int32, int32, error) {
	if spacing <= 0 || width <= 0 {
		return 0, 0, ErrInvalidRange
	}

	lowHalf := width / 2
	highHalf := width - lowHalf
	lower := PrevInitializableTick(currentTick-lowHalf, spacing)
	upper := NextInitializableTick(currentTick+highHalf, spacing)

	if minAligned := NextInitializableTick(MinTick, spacing); lower < minAligned {
		lower = minAligned
	}
	if maxAligned := PrevInitializableTick(MaxTick, spacing); upper > maxAligned {
		upper = maxAligned
	}
	if upper <= lower {
		return 0, 0, ErrInvalidRange
	}
	return lower, upper, nil
}
