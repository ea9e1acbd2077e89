// Package engine describes the contract with the external FDTD engine: the
// configuration it accepts and the Runner interface behind which a concrete
// backend (local meep process, remote service) launches the run loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/models"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/utils"
)

var (
	// ErrEngineUnavailable means the engine could not be reached or started.
	ErrEngineUnavailable = errors.New("engine unavailable")
	// ErrEngineFailed means the engine started but its run loop failed.
	ErrEngineFailed = errors.New("engine run failed")
	// ErrInvalidConfig is returned before any engine work when Config is unusable.
	ErrInvalidConfig = errors.New("invalid engine config")
)

// Runner launches one blocking engine run.
type Runner interface {
	Name() string
	Run(ctx context.Context, cfg *Config) (*models.RunResult, error)
}

// SourceKind selects the temporal profile of the source.
type SourceKind string

const (
	SourceContinuous SourceKind = "continuous"
	SourceGaussian   SourceKind = "gaussian"
)

// Direction is the propagation axis of an eigenmode source.
type Direction string

const (
	DirectionX Direction = "X"
	DirectionY Direction = "Y"
	DirectionZ Direction = "Z"
)

// Parity restricts the eigenmode solver to modes of one symmetry.
type Parity string

const (
	ParityNone  Parity = "NO_PARITY"
	ParityOddY  Parity = "ODD_Y"
	ParityEvenY Parity = "EVEN_Y"
)

// Source is an eigenmode source. Frequency and Width describe the carrier;
// Width is only used by gaussian sources.
type Source struct {
	Kind           SourceKind
	Frequency      float64
	Width          float64
	Center         geometry.Vector3
	Size           geometry.Vector3
	EigBand        int
	Direction      Direction
	KPoint         geometry.Vector3
	Parity         Parity
	MatchFrequency bool
}

// Volume is a box region of the cell.
type Volume struct {
	Center geometry.Vector3
	Size   geometry.Vector3
}

// FieldOutput records one field component every Interval time units into a
// single appended dataset. A nil Volume records the whole cell.
type FieldOutput struct {
	Component string
	Interval  float64
	Volume    *Volume
}

// Config is everything the engine needs for one run.
type Config struct {
	RunID          string
	Resolution     int
	CellSize       geometry.Vector3
	Sources        []Source
	Geometry       []geometry.SolidBody
	FilenamePrefix string
	EpsAveraging   bool
	Until          float64
	OutputEpsilon  bool
	FieldOutputs   []FieldOutput
}

var fieldComponents = map[string]string{
	"ex": "output_efield_x",
	"ey": "output_efield_y",
	"ez": "output_efield_z",
	"hx": "output_hfield_x",
	"hy": "output_hfield_y",
	"hz": "output_hfield_z",
}

// FieldOutputFunc returns the engine's step function name for a component.
func FieldOutputFunc(component string) (string, bool) {
	name, ok := fieldComponents[component]
	return name, ok
}

// Validate checks the parts of Config the engine would otherwise reject late.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if c.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %d", ErrInvalidConfig, c.Resolution)
	}
	if !finite(c.CellSize.X, c.CellSize.Y, c.CellSize.Z, c.Until) {
		return fmt.Errorf("%w: cell size and until must be finite", ErrInvalidConfig)
	}
	if c.CellSize.X <= 0 || c.CellSize.Y <= 0 || c.CellSize.Z < 0 {
		return fmt.Errorf("%w: bad cell size %v", ErrInvalidConfig, c.CellSize)
	}
	if c.Until <= 0 {
		return fmt.Errorf("%w: until must be positive, got %g", ErrInvalidConfig, c.Until)
	}
	if c.FilenamePrefix == "" {
		return fmt.Errorf("%w: filename prefix is required", ErrInvalidConfig)
	}
	if !utils.ValidPrefix(c.FilenamePrefix) {
		return fmt.Errorf("%w: invalid filename prefix %q", ErrInvalidConfig, c.FilenamePrefix)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: at least one source is required", ErrInvalidConfig)
	}
	for i, src := range c.Sources {
		if src.Kind != SourceContinuous && src.Kind != SourceGaussian {
			return fmt.Errorf("%w: source %d: unknown kind %q", ErrInvalidConfig, i, src.Kind)
		}
		if !finite(src.Frequency, src.Width) {
			return fmt.Errorf("%w: source %d: frequency and width must be finite", ErrInvalidConfig, i)
		}
		if src.Frequency <= 0 {
			return fmt.Errorf("%w: source %d: frequency must be positive", ErrInvalidConfig, i)
		}
		if src.Kind == SourceGaussian && src.Width <= 0 {
			return fmt.Errorf("%w: source %d: gaussian width must be positive", ErrInvalidConfig, i)
		}
	}
	for i, out := range c.FieldOutputs {
		if _, ok := FieldOutputFunc(out.Component); !ok {
			return fmt.Errorf("%w: output %d: unknown field component %q", ErrInvalidConfig, i, out.Component)
		}
		if out.Interval <= 0 {
			return fmt.Errorf("%w: output %d: interval must be positive", ErrInvalidConfig, i)
		}
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
