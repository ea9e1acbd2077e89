package simulation

import (
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/config"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
)

// Cell layout constants. They are tuned values, not derived ones.
const (
	// PML is the absorbing boundary thickness. It is added on both sides in x
	// and y but only once in z.
	PML = 2.0
	// DomainMargin pads the cross-section beyond the source plane.
	DomainMargin = 2.0
	// DomainDepth is the cell length along the propagation axis.
	DomainDepth = 4.0

	recordComponent  = "ey"
	recordInterval   = 0.1
	recordSliceDepth = 0.5
)

// Domain holds the cell extents derived from the core radius and ellipse axes.
type Domain struct {
	Sx, Sy, Sz         float64
	SourceSx, SourceSy float64
}

// NewDomain sizes the cell so the ellipse ring plus one ring width of cladding
// fits inside, with DomainMargin extra around the source plane.
func NewDomain(coreRad, a, b float64) Domain {
	sourceSx := 2*coreRad + 4*a
	sourceSy := 2*coreRad + 4*b
	return Domain{
		Sx:       sourceSx + DomainMargin,
		Sy:       sourceSy + DomainMargin,
		Sz:       DomainDepth,
		SourceSx: sourceSx,
		SourceSy: sourceSy,
	}
}

// CellSize is the full engine cell including the absorbing layers.
func (d Domain) CellSize() geometry.Vector3 {
	return geometry.V3(d.Sx+2*PML, d.Sy+2*PML, d.Sz+PML)
}

// SourceSize is the source cross-section normal to z.
func (d Domain) SourceSize() geometry.Vector3 {
	return geometry.V3(d.SourceSx, d.SourceSy, 0)
}

// Plan assembles the engine configuration for p: the waveguide geometry, one
// eigenmode source at the origin launching along z, an epsilon snapshot and
// Ey recordings of the whole cell and of a thin slice around z = 0.
func Plan(p config.Parameters, kind engine.SourceKind) (*engine.Config, Domain) {
	d := NewDomain(p.CoreRadius, p.SemiAxisA, p.SemiAxisB)
	cell := d.CellSize()

	bodies := geometry.BuildGeometry(
		p.SemiAxisA, p.SemiAxisB, p.CoreRadius,
		d.Sx, d.Sy, d.Sz,
		p.CoreIndex, p.IndexDelta, p.EllipseCount,
	)

	source := engine.Source{
		Kind:           kind,
		Frequency:      p.Frequency(),
		Width:          p.FrequencyWidth,
		Center:         geometry.V3(0, 0, 0),
		Size:           d.SourceSize(),
		EigBand:        1,
		Direction:      engine.DirectionZ,
		KPoint:         geometry.V3(0, 0, 1/p.Wavelength),
		Parity:         engine.ParityOddY,
		MatchFrequency: true,
	}

	cfg := &engine.Config{
		Resolution:     p.Resolution,
		CellSize:       cell,
		Sources:        []engine.Source{source},
		Geometry:       bodies,
		FilenamePrefix: p.Name,
		EpsAveraging:   false,
		Until:          p.SimulationTime,
		OutputEpsilon:  true,
		FieldOutputs: []engine.FieldOutput{
			{Component: recordComponent, Interval: recordInterval},
			{
				Component: recordComponent,
				Interval:  recordInterval,
				Volume: &engine.Volume{
					Center: geometry.V3(0, 0, 0),
					Size:   geometry.V3(cell.X, cell.Y, recordSliceDepth),
				},
			},
		},
	}
	return cfg, d
}
