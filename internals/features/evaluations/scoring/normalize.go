// Package scoring turns raw answers into 0–5 scores at every level of the
// question → theme → function → global hierarchy and maps scores to maturity levels.
// Nothing here touches the database.
package scoring

import "math"

// ScaleMax is the canonical internal scale. Percentages are display only.
const ScaleMax = 5.0

// Normalize projects a raw answer given on [0, scaleMax] onto [0, 5].
// scaleMax <= 0 means the answer is already on the canonical scale.
func Normalize(raw, scaleMax float64) float64 {
	if scaleMax <= 0 {
		scaleMax = ScaleMax
	}
	return clamp(raw/scaleMax*ScaleMax, 0, ScaleMax)
}

// Percentage = score/5*100, rounded to 2 decimals.
func Percentage(score float64) float64 {
	return Round2(score / ScaleMax * 100)
}

func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	switch {
	case math.IsNaN(x):
		return lo
	case x < lo:
		return lo
	case x > hi:
		return hi
	}
	return x
}
