// Package loudness implements ITU-R BS.1770 integrated loudness: K-weighted
// mean-square power in 100 ms windows, channel reduction, and the two-stage
// absolute/relative gated mean.
package loudness

import (
	"fmt"
	"math"
)

// Power is a mean-square power value, always non-negative.
type Power float64

// LKFS converts the power to loudness. Zero power is -Inf.
func (p Power) LKFS() float64 {
	return -0.691 + 10.0*math.Log10(float64(p))
}

// PowerFromLKFS is the inverse of Power.LKFS.
func PowerFromLKFS(lkfs float64) Power {
	return Power(math.Pow(10, (lkfs+0.691)*0.1))
}

// Loudness is the integrated loudness of a track or album, together with
// the gated mean power it was computed from.
type Loudness struct {
	Power Power
}

// Floor is the result when no gating block passes the gates.
var Floor = Loudness{}

// LUFS returns the loudness in LUFS (equivalently LKFS). Floor is -Inf.
func (l Loudness) LUFS() float64 {
	return l.Power.LKFS()
}

// IsFloor reports whether l carries no measurable power.
func (l Loudness) IsFloor() bool {
	return l.Power <= 0
}

func (l Loudness) String() string {
	if l.IsFloor() {
		return "-inf LUFS"
	}
	return fmt.Sprintf("%.3f LUFS", l.LUFS())
}
