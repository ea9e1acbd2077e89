package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArangeCounts(t *testing.T) {
	tests := []struct {
		name              string
		start, stop, step float64
		expected          int
	}{
		{"unit axis forward", -1, 1.1, 0.1, 21},
		{"unit axis backward", 0.9, -1, -0.1, 19},
		{"half axis forward", -0.5, 0.6, 0.1, 11},
		{"half axis backward", 0.4, -0.5, -0.1, 9},
		{"quad axis forward", -4, 4.1, 0.1, 81},
		{"quad axis backward", 3.9, -4, -0.1, 79},
		{"overshooting axis", -0.3, 0.4, 0.1, 7},
		{"empty range", 0, 0, 0.1, 0},
		{"wrong direction", 1, 0, 0.1, 0},
		{"zero step", 0, 1, 0, 0},
		{"infinite stop", -1, math.Inf(1), 0.1, 0},
		{"infinite start", math.Inf(-1), 1, 0.1, 0},
		{"nan stop", -1, math.NaN(), 0.1, 0},
		{"nan step", -1, 1, math.NaN(), 0},
		{"unallocatable range", -1e300, 1e300, 0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Arange(tt.start, tt.stop, tt.step)
			assert.Len(t, got, tt.expected, "Arange(%v, %v, %v)", tt.start, tt.stop, tt.step)
		})
	}
}

func TestArangeValues(t *testing.T) {
	values := Arange(-1, 1.1, 0.1)
	require.NotEmpty(t, values)

	assert.Equal(t, -1.0, values[0])
	for i := 1; i < len(values); i++ {
		assert.InDelta(t, 0.1, values[i]-values[i-1], 1e-9, "step %d", i)
	}
	assert.InDelta(t, 1.0, values[len(values)-1], 1e-9)
}

func TestArangeOvershoot(t *testing.T) {
	values := Arange(-0.3, 0.4, 0.1)
	require.NotEmpty(t, values)

	last := values[len(values)-1]
	if last <= 0.3 {
		t.Skipf("no floating overshoot on this platform: %v", last)
	}
	assert.Negative(t, 0.3*0.3-last*last, "overshooting value %v should give a negative radicand", last)
}

func TestArangeAngles(t *testing.T) {
	for _, n := range []int{1, 2, 3, 6, 18, 36} {
		step := 2 * math.Pi / float64(n)
		values := Arange(0, 2*math.Pi, step)
		if !assert.Len(t, values, n) {
			continue
		}
		for i, v := range values {
			assert.Equal(t, float64(i)*step, v, "angle %d of %d", i, n)
		}
	}
}

func TestClampFloat64(t *testing.T) {
	tests := []struct {
		value, min, max, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
		{-1e-17, 0.0, math.Inf(1), 0.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampFloat64(tt.value, tt.min, tt.max), "ClampFloat64(%g, %g, %g)", tt.value, tt.min, tt.max)
	}
}
