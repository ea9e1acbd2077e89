package simulation

import (
	"testing"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/config"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestNewDomainDefaults(t *testing.T) {
	d := NewDomain(8, 1, 4)

	assert.Equal(t, 22.0, d.Sx)
	assert.Equal(t, 34.0, d.Sy)
	assert.Equal(t, 4.0, d.Sz)
	assert.Equal(t, 20.0, d.SourceSx)
	assert.Equal(t, 32.0, d.SourceSy)

	assert.Equal(t, geometry.V3(26, 38, 6), d.CellSize())
	assert.Equal(t, geometry.V3(20, 32, 0), d.SourceSize())
}

func TestNewDomainScales(t *testing.T) {
	tests := []struct {
		core, a, b float64
		sx, sy     float64
	}{
		{0, 1, 1, 6, 6},
		{12.5, 1.5, 3, 33, 39},
		{5, 2, 2, 20, 20},
	}

	for _, tt := range tests {
		d := NewDomain(tt.core, tt.a, tt.b)
		assert.Equal(t, tt.sx, d.Sx)
		assert.Equal(t, tt.sy, d.Sy)
		assert.Equal(t, d.Sx-DomainMargin, d.SourceSx)
		assert.Equal(t, d.Sy-DomainMargin, d.SourceSy)
		assert.Equal(t, DomainDepth, d.Sz)
	}
}

func TestPlanDefaults(t *testing.T) {
	p := config.DefaultParameters()
	cfg, d := Plan(p, engine.SourceContinuous)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 20, cfg.Resolution)
	assert.Equal(t, d.CellSize(), cfg.CellSize)
	assert.Equal(t, "YAG", cfg.FilenamePrefix)
	assert.False(t, cfg.EpsAveraging)
	assert.True(t, cfg.OutputEpsilon)
	assert.Equal(t, 10.0, cfg.Until)

	blocks, prisms, _ := geometry.Counts(cfg.Geometry)
	assert.Equal(t, 1, blocks)
	assert.Equal(t, 18, prisms)

	block, ok := cfg.Geometry[0].(geometry.Block)
	require.True(t, ok)
	assert.Equal(t, geometry.V3(d.Sx, d.Sy, d.Sz), block.Size)
}

func TestPlanSource(t *testing.T) {
	p := config.DefaultParameters()
	cfg, _ := Plan(p, engine.SourceContinuous)

	require.Len(t, cfg.Sources, 1)
	src := cfg.Sources[0]
	assert.Equal(t, engine.SourceContinuous, src.Kind)
	assert.True(t, scalar.EqualWithinAbs(1/0.795, src.Frequency, 1e-12))
	assert.Equal(t, 0.25, src.Width)
	assert.Equal(t, geometry.V3(0, 0, 0), src.Center)
	assert.Equal(t, geometry.V3(20, 32, 0), src.Size)
	assert.Equal(t, 1, src.EigBand)
	assert.Equal(t, engine.DirectionZ, src.Direction)
	assert.Equal(t, engine.ParityOddY, src.Parity)
	assert.True(t, src.MatchFrequency)
	assert.Equal(t, 0.0, src.KPoint.X)
	assert.Equal(t, 0.0, src.KPoint.Y)
	assert.True(t, scalar.EqualWithinAbs(1/0.795, src.KPoint.Z, 1e-12))

	gaussian, _ := Plan(p, engine.SourceGaussian)
	assert.Equal(t, engine.SourceGaussian, gaussian.Sources[0].Kind)
}

func TestPlanFieldOutputs(t *testing.T) {
	cfg, _ := Plan(config.DefaultParameters(), engine.SourceContinuous)

	require.Len(t, cfg.FieldOutputs, 2)
	full := cfg.FieldOutputs[0]
	assert.Equal(t, "ey", full.Component)
	assert.Equal(t, 0.1, full.Interval)
	assert.Nil(t, full.Volume)

	slice := cfg.FieldOutputs[1]
	assert.Equal(t, "ey", slice.Component)
	assert.Equal(t, 0.1, slice.Interval)
	require.NotNil(t, slice.Volume)
	assert.Equal(t, geometry.V3(0, 0, 0), slice.Volume.Center)
	assert.Equal(t, geometry.V3(26, 38, 0.5), slice.Volume.Size)
}

func TestPlanIdempotent(t *testing.T) {
	p := config.DefaultParameters()
	first, _ := Plan(p, engine.SourceContinuous)
	second, _ := Plan(p, engine.SourceContinuous)
	assert.Equal(t, first, second)
}

func TestPlanWithoutEllipses(t *testing.T) {
	p := config.DefaultParameters()
	p.EllipseCount = 0
	cfg, _ := Plan(p, engine.SourceContinuous)

	require.Len(t, cfg.Geometry, 1)
	assert.Equal(t, geometry.KindBlock, cfg.Geometry[0].Kind())
	require.NoError(t, cfg.Validate())
}
