package geometry

import "math"

// BuildGeometry returns the bulk block spanning (sx, sy, sz) with index n,
// followed by numberOfEllipses prisms with index n+dn. Prism i sits at angle
// 2πi/numberOfEllipses on a ring with radii coreRad+a along x and coreRad+b
// along y, and is extruded over the full depth sz.
//
// The result is always 1+numberOfEllipses bodies long. The function is pure;
// callers validate that a, b and coreRad are positive.
func BuildGeometry(a, b, coreRad, sx, sy, sz, n, dn float64, numberOfEllipses int) []SolidBody {
	count := numberOfEllipses
	if count < 0 {
		count = 0
	}

	bodies := make([]SolidBody, 0, 1+count)
	bodies = append(bodies, Block{
		Size:     V3(sx, sy, sz),
		Center:   V3(0, 0, 0),
		Material: Medium{Index: n},
	})

	if count == 0 {
		return bodies
	}

	step := 2 * math.Pi / float64(count)
	for i := 0; i < count; i++ {
		angle := float64(i) * step
		bodies = append(bodies, Prism{
			Vertices: EllipseOutline(a, b),
			Height:   sz,
			Center:   V3((coreRad+a)*math.Cos(angle), (coreRad+b)*math.Sin(angle), 0),
			Material: Medium{Index: n + dn},
		})
	}
	return bodies
}
