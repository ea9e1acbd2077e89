package geometry

import (
	"math"

	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/utils"
)

// EllipseStep is the x spacing of outline samples. Changing it changes the
// vertex lists handed to the engine, so it is fixed.
const EllipseStep = 0.1

// EllipseOutline samples an ellipse with semi-axis a along x and b along y,
// centered at the local origin. The lower branch runs from -a to +a, the upper
// branch from a-EllipseStep back towards -a, which closes the loop.
//
// a must be positive.
func EllipseOutline(a, b float64) []Vector3 {
	lower := utils.Arange(-a, a+EllipseStep, EllipseStep)
	upper := utils.Arange(a-EllipseStep, -a, -EllipseStep)

	vertices := make([]Vector3, 0, len(lower)+len(upper))
	for _, x := range lower {
		vertices = append(vertices, V3(x, -ellipseHalfHeight(a, b, x), 0))
	}
	for _, x := range upper {
		vertices = append(vertices, V3(x, ellipseHalfHeight(a, b, x), 0))
	}
	return vertices
}

// ellipseHalfHeight is |y| on the ellipse at x. The sampled x may overshoot a
// by a rounding error; the radicand is clamped so the vertex lands on the axis.
func ellipseHalfHeight(a, b, x float64) float64 {
	return (b / a) * math.Sqrt(utils.ClampFloat64(a*a-x*x, 0, math.Inf(1)))
}
