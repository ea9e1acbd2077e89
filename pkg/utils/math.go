package utils

import "math"

// Arange returns values in [start, stop) spaced by step, following numpy.arange:
// the count is ceil((stop-start)/step) and element i is start + i*delta with
// delta = (start+step) - start. The last element may overshoot stop by a
// rounding error; callers that feed it to a square root must clamp.
// Non-finite bounds or steps, and ranges too long to allocate, yield nil.
func Arange(start, stop, step float64) []float64 {
	if step == 0 {
		return nil
	}
	n := math.Ceil((stop - start) / step)
	if !(n > 0) || math.IsInf(n, 0) || n > math.MaxInt32 {
		return nil
	}

	count := int(n)
	values := make([]float64, count)
	values[0] = start
	if count == 1 {
		return values
	}

	delta := (start + step) - start
	values[1] = start + delta
	for i := 2; i < count; i++ {
		values[i] = start + float64(i)*delta
	}
	return values
}

// ClampFloat64 clamps a float64 value between min and max
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
