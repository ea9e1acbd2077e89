package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/utils"
)

// LoadConfig reads a configuration file and validates it.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig decodes a configuration file on top of the defaults without
// validating it, so callers can apply overrides first. The decoder is chosen
// by extension: .toml for TOML, anything else is read as YAML.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		cfg, err = DecodeConfigTOML(data)
	default:
		cfg, err = DecodeConfigYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the whole configuration.
func Validate(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat)
	}

	if err := ValidateParameters(cfg.Parameters); err != nil {
		return fmt.Errorf("parameters validation failed: %w", err)
	}
	if err := validateEngine(cfg.Engine); err != nil {
		return fmt.Errorf("engine validation failed: %w", err)
	}
	return nil
}

// ValidateParameters rejects values the geometry and domain arithmetic cannot use.
// A zero semi-axis would divide by zero in the ellipse outline.
func ValidateParameters(p Parameters) error {
	floats := []struct {
		name  string
		value float64
	}{
		{"wavelength", p.Wavelength},
		{"frequency_width", p.FrequencyWidth},
		{"core_index", p.CoreIndex},
		{"index_delta", p.IndexDelta},
		{"simulation_time", p.SimulationTime},
		{"core_radius", p.CoreRadius},
		{"semi_axis_a", p.SemiAxisA},
		{"semi_axis_b", p.SemiAxisB},
	}
	for _, f := range floats {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%s must be finite, got %g", f.name, f.value)
		}
	}

	if p.Wavelength <= 0 {
		return fmt.Errorf("wavelength must be positive, got %g", p.Wavelength)
	}
	if p.FrequencyWidth < 0 {
		return fmt.Errorf("frequency_width cannot be negative, got %g", p.FrequencyWidth)
	}
	if p.CoreIndex <= 0 {
		return fmt.Errorf("core_index must be positive, got %g", p.CoreIndex)
	}
	if p.CoreIndex+p.IndexDelta <= 0 {
		return fmt.Errorf("core_index + index_delta must be positive, got %g", p.CoreIndex+p.IndexDelta)
	}
	if p.SimulationTime <= 0 {
		return fmt.Errorf("simulation_time must be positive, got %g", p.SimulationTime)
	}
	if p.CoreRadius <= 0 {
		return fmt.Errorf("core_radius must be positive, got %g", p.CoreRadius)
	}
	if p.SemiAxisA <= 0 {
		return fmt.Errorf("semi_axis_a must be positive, got %g", p.SemiAxisA)
	}
	if p.SemiAxisB <= 0 {
		return fmt.Errorf("semi_axis_b must be positive, got %g", p.SemiAxisB)
	}
	if p.EllipseCount < 0 {
		return fmt.Errorf("ellipse_count cannot be negative, got %d", p.EllipseCount)
	}
	if p.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %d", p.Resolution)
	}
	if !utils.ValidPrefix(p.Name) {
		return fmt.Errorf("invalid name %q (letters, digits, '.', '_' and '-' only)", p.Name)
	}
	return nil
}

func validateEngine(e EngineSettings) error {
	switch e.Backend {
	case BackendMeep:
		if e.Python == "" {
			return fmt.Errorf("python interpreter cannot be empty for the %s backend", BackendMeep)
		}
	case BackendRemote:
		if e.Address == "" {
			return fmt.Errorf("address cannot be empty for the %s backend", BackendRemote)
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be %s or %s)", e.Backend, BackendMeep, BackendRemote)
	}

	if e.Source != SourceContinuous && e.Source != SourceGaussian {
		return fmt.Errorf("invalid source: %s (must be %s or %s)", e.Source, SourceContinuous, SourceGaussian)
	}

	d, err := e.GetTimeout()
	if err != nil {
		return fmt.Errorf("invalid timeout %s: %w", e.Timeout, err)
	}
	if d < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", e.Timeout)
	}
	return nil
}
