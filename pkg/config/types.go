package config

import "time"

// Config is the file layout accepted by LoadConfig.
type Config struct {
	LogLevel   string         `yaml:"log_level" toml:"log_level"`
	LogFormat  string         `yaml:"log_format" toml:"log_format"`
	Parameters Parameters     `yaml:"parameters" toml:"parameters"`
	Engine     EngineSettings `yaml:"engine" toml:"engine"`
}

// Parameters are the physical inputs of one waveguide run. Lengths are in
// micrometres, time in engine units.
type Parameters struct {
	Wavelength     float64 `yaml:"wavelength" toml:"wavelength"`           // pulse carrier wavelength
	FrequencyWidth float64 `yaml:"frequency_width" toml:"frequency_width"` // pulse width in frequency
	CoreIndex      float64 `yaml:"core_index" toml:"core_index"`           // bulk refractive index
	IndexDelta     float64 `yaml:"index_delta" toml:"index_delta"`         // laser-written index change, usually negative
	SimulationTime float64 `yaml:"simulation_time" toml:"simulation_time"`
	CoreRadius     float64 `yaml:"core_radius" toml:"core_radius"`
	EllipseCount   int     `yaml:"ellipse_count" toml:"ellipse_count"`
	SemiAxisA      float64 `yaml:"semi_axis_a" toml:"semi_axis_a"` // x extent of each ellipse
	SemiAxisB      float64 `yaml:"semi_axis_b" toml:"semi_axis_b"` // y extent of each ellipse
	Resolution     int     `yaml:"resolution" toml:"resolution"`   // pixels per unit length
	Name           string  `yaml:"name" toml:"name"`               // output file prefix
}

// Frequency is the carrier frequency, 1/wavelength.
func (p Parameters) Frequency() float64 {
	return 1 / p.Wavelength
}

// EngineSettings selects and configures the engine backend.
type EngineSettings struct {
	Backend string `yaml:"backend" toml:"backend"` // meep or remote
	Address string `yaml:"address" toml:"address"` // remote engine gRPC address
	Python  string `yaml:"python" toml:"python"`   // interpreter used by the meep backend
	WorkDir string `yaml:"workdir" toml:"workdir"`
	Timeout string `yaml:"timeout" toml:"timeout"` // e.g. "2h"; empty means no limit
	Source  string `yaml:"source" toml:"source"`   // continuous or gaussian
}

const (
	BackendMeep   = "meep"
	BackendRemote = "remote"

	SourceContinuous = "continuous"
	SourceGaussian   = "gaussian"
)

// DefaultParameters returns the parameters of the reference YAG waveguide.
func DefaultParameters() Parameters {
	return Parameters{
		Wavelength:     0.795,
		FrequencyWidth: 0.25,
		CoreIndex:      1.822,
		IndexDelta:     -0.004,
		SimulationTime: 10,
		CoreRadius:     8,
		EllipseCount:   18,
		SemiAxisA:      1,
		SemiAxisB:      4,
		Resolution:     20,
		Name:           "YAG",
	}
}

// DefaultEngineSettings runs meep locally in the current directory.
func DefaultEngineSettings() EngineSettings {
	return EngineSettings{
		Backend: BackendMeep,
		Address: "localhost:50061",
		Python:  "python3",
		WorkDir: ".",
		Source:  SourceContinuous,
	}
}

// DefaultConfig returns a Config populated with every default.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Parameters: DefaultParameters(),
		Engine:     DefaultEngineSettings(),
	}
}

// GetTimeout parses the timeout string. An empty string means no limit.
func (e EngineSettings) GetTimeout() (time.Duration, error) {
	if e.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(e.Timeout)
}
