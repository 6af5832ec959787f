// Package stats models the possible numeric range of a hidden stat derived
// from a base stat, and pins it once the true value is observed.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange reports an observed stat value outside the computed bounds.
var ErrOutOfRange = errors.New("stat value out of range")

// IV and EV bounds and nature multipliers used for worst/best-case bounds.
const (
	minIV = 0
	maxIV = 31
	minEV = 0
	maxEV = 252
)

const (
	minNature = 0.9
	maxNature = 1.1
)

// Calc computes a stat value from its components. HP uses the HP formula,
// with the base-1 special case (such a species always has exactly 1 HP).
// For other stats the nature multiplier applies after the level scaling,
// itself floored.
func Calc(isHP bool, base, level, evs, ivs int, nature float64) int {
	x := 2*base + ivs + evs/4
	if isHP {
		if base == 1 {
			return 1
		}
		return (x+100)*level/100 + 10
	}
	return int(math.Floor(float64(x*level/100+5) * nature))
}

// Range is the inclusive [min, max] envelope of a hidden stat.
type Range struct {
	base  int
	level int
	isHP  bool
	min   int
	max   int
}

// New derives the widest possible range for a stat from its base and level:
// min at worst-case IVs/EVs/nature, max at best-case.
func New(isHP bool, base, level int) *Range {
	r := &Range{base: base, level: level, isHP: isHP}
	if isHP {
		// Nature never affects HP.
		r.min = Calc(true, base, level, minEV, minIV, 1)
		r.max = Calc(true, base, level, maxEV, maxIV, 1)
	} else {
		r.min = Calc(false, base, level, minEV, minIV, minNature)
		r.max = Calc(false, base, level, maxEV, maxIV, maxNature)
	}
	return r
}

// Clone returns an independent copy of the range.
func (r *Range) Clone() *Range {
	c := *r
	return &c
}

// Min returns the lowest still-possible value.
func (r *Range) Min() int { return r.min }

// Max returns the highest still-possible value.
func (r *Range) Max() int { return r.max }

// Known reports whether the true value has been pinned.
func (r *Range) Known() bool { return r.min == r.max }

// Set pins the true value, collapsing the range. A value outside the current
// bounds is an inference-consistency error.
func (r *Range) Set(v int) error {
	if v < r.min || v > r.max {
		return fmt.Errorf("stat value %d outside [%d, %d]: %w", v, r.min, r.max, ErrOutOfRange)
	}
	r.min = v
	r.max = v
	return nil
}
