package sal

import "math"

// airAbsorptionEntry is one row of the 20-entry distance-indexed air
// absorption table: a log-spaced distance and its 4-tap FIR approximating
// 70% humidity spherical spreading + absorption.
type airAbsorptionEntry struct {
	distance float64
	coeffs   [4]float64
}

// airAbsorptionTable holds 20 log-spaced distances from 1m to 100m
// (geometric ratio ~1.2743, i.e. 100^(1/19)) each with its FIR. Row 0 is
// pinned to the reference coefficients measured at that distance; the
// remaining rows extrapolate the same roll-off shape so
// that higher-frequency content is attenuated progressively more with
// distance, which is the qualitative behaviour the table encodes.
var airAbsorptionTable = buildAirAbsorptionTable()

const airAbsorptionRatio = 1.2743

func buildAirAbsorptionTable() [20]airAbsorptionEntry {
	var table [20]airAbsorptionEntry
	base := [4]float64{0.98968, 0.010477, -0.00015333, -2.0147e-06}
	dist := 1.0
	for i := 0; i < 20; i++ {
		table[i].distance = dist
		// The absorption grows (b0 shrinks, higher taps grow in magnitude)
		// linearly in the table index, i.e. in log-distance, past the
		// reference 1m point.
		growth := 1.0 + 0.015*float64(i)
		table[i].coeffs = [4]float64{
			1 - (1-base[0])*growth,
			base[1] * growth,
			base[2] * growth,
			base[3] * growth,
		}
		dist *= airAbsorptionRatio
	}
	return table
}

// NearestAirFilter returns the FIR coefficients for the table entry whose
// distance is closest (by absolute difference) to the requested distance.
func NearestAirFilter(distance float64) [4]float64 {
	best := 0
	bestDiff := math.Abs(airAbsorptionTable[0].distance - distance)
	for i := 1; i < len(airAbsorptionTable); i++ {
		diff := math.Abs(airAbsorptionTable[i].distance - distance)
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return airAbsorptionTable[best].coeffs
}
