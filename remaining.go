package chessclock

import "math"

// ElapsedToRemaining converts a signed elapsed value and an unsigned
// remaining-time baseline into remaining milliseconds. The arithmetic
// saturates instead of wrapping at both numeric boundaries:
//
//   - elapsed at or beyond the baseline yields 0 (time exhausted or overshot)
//   - a deeply negative elapsed (banked bonus time) that would push the
//     result past the uint32 range yields math.MaxUint32
//
// Defined for every int64 input, including math.MinInt64.
func ElapsedToRemaining(elapsedMS int64, lastRemainingMS uint32) uint32 {
	if elapsedMS >= int64(lastRemainingMS) {
		return 0
	}

	if elapsedMS < 0 {
		// magnitude computed in uint64 so -math.MinInt64 cannot overflow
		magnitude := uint64(-(elapsedMS + 1)) + 1
		if magnitude >= uint64(math.MaxUint32-lastRemainingMS) {
			return math.MaxUint32
		}
		return lastRemainingMS + uint32(magnitude)
	}

	// elapsed is non-negative and strictly below the baseline here, so the
	// subtraction fits
	return lastRemainingMS - uint32(elapsedMS)
}
