package loudness

import "fmt"

const (
	// AbsoluteGateLKFS is the fixed gate applied to every 400 ms block.
	AbsoluteGateLKFS = -70.0

	// RelativeGateLU is how far below the absolute-gated mean the relative
	// gate sits.
	RelativeGateLU = 10.0

	// windowsPerBlock is the number of 100 ms windows in one 400 ms gating
	// block. Consecutive blocks overlap by 75%.
	windowsPerBlock = 4
)

// Windows is a timeline of 100 ms window powers. Window i starts at
// i*100 ms.
type Windows []Power

// ReduceStereo combines the left and right timelines into one, weighting
// both channels equally: each combined window is the mean of the two
// channel powers. Both timelines must have the same length.
func ReduceStereo(left, right Windows) (Windows, error) {
	if len(left) != len(right) {
		return nil, fmt.Errorf("channel timelines differ in length: %d and %d windows", len(left), len(right))
	}

	out := make(Windows, len(left))
	for i := range left {
		out[i] = (left[i] + right[i]) / 2
	}
	return out, nil
}

// GatedMean computes the BS.1770 gated mean power of a timeline. It reports
// false when no gating block passes both gates, including when the timeline
// is shorter than one block.
func GatedMean(windows Windows) (Power, bool) {
	if len(windows) < windowsPerBlock {
		return 0, false
	}

	absolute := PowerFromLKFS(AbsoluteGateLKFS)

	blocks := make([]Power, 0, len(windows)-windowsPerBlock+1)
	for i := 0; i+windowsPerBlock <= len(windows); i++ {
		var sum Power
		for _, w := range windows[i : i+windowsPerBlock] {
			sum += w
		}
		block := sum / windowsPerBlock
		if block > absolute {
			blocks = append(blocks, block)
		}
	}
	if len(blocks) == 0 {
		return 0, false
	}

	var sum Power
	for _, b := range blocks {
		sum += b
	}
	absoluteGated := sum / Power(len(blocks))

	relative := PowerFromLKFS(absoluteGated.LKFS() - RelativeGateLU)

	sum = 0
	n := 0
	for _, b := range blocks {
		if b > relative {
			sum += b
			n++
		}
	}
	if n == 0 {
		return 0, false
	}

	return sum / Power(n), true
}
