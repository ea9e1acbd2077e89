package geometry

import "gonum.org/v1/gonum/spatial/r3"

// Vector3 is a point or an extent in simulation units.
type Vector3 = r3.Vec

// V3 is shorthand for a Vector3 literal.
func V3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Medium is an isotropic material described by its refractive index.
type Medium struct {
	Index float64
}

// BodyKind tags the SolidBody variants.
type BodyKind string

const (
	KindBlock BodyKind = "block"
	KindPrism BodyKind = "prism"
)

// SolidBody is either a Block or a Prism.
type SolidBody interface {
	Kind() BodyKind
	Position() Vector3
	Medium() Medium
	solidBody()
}

// Block is an axis-aligned box.
type Block struct {
	Size     Vector3
	Center   Vector3
	Material Medium
}

func (Block) Kind() BodyKind { return KindBlock }
func (b Block) Position() Vector3 { return b.Center }
func (b Block) Medium() Medium { return b.Material }
func (Block) solidBody() {}

// Prism is a closed polygon in the xy plane extruded along z by Height.
// Vertices are relative to Center.
type Prism struct {
	Vertices []Vector3
	Height   float64
	Center   Vector3
	Material Medium
}

func (Prism) Kind() BodyKind { return KindPrism }
func (p Prism) Position() Vector3 { return p.Center }
func (p Prism) Medium() Medium { return p.Material }
func (Prism) solidBody() {}

// Counts returns the number of blocks, prisms and prism vertices in bodies.
func Counts(bodies []SolidBody) (blocks, prisms, vertices int) {
	for _, body := range bodies {
		switch b := body.(type) {
		case Block:
			blocks++
		case Prism:
			prisms++
			vertices += len(b.Vertices)
		}
	}
	return blocks, prisms, vertices
}
