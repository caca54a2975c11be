package builtin

import "math"

// centTolerance absorbs binary floating point noise: 19.995*100 evaluates to
// 1999.4999999999998, which must ceil to 2000.
const centTolerance = 1e-6

// CeilCents rounds x up to the nearest cent. It never rounds down.
func CeilCents(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	cents := x * 100
	if r := math.Round(cents); math.Abs(cents-r) < centTolerance {
		return r / 100
	}
	return math.Ceil(cents) / 100
}
