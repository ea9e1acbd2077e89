package engine

import (
	"fmt"
	"os"

	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ManifestVersion is bumped when the manifest layout changes incompatibly.
const ManifestVersion = 1

// Manifest encodes cfg as a protobuf Struct. The same message is written to
// disk next to the outputs and sent to remote engines.
func Manifest(cfg *Config) (*structpb.Struct, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sources := make([]any, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		sources = append(sources, map[string]any{
			"kind":            string(src.Kind),
			"frequency":       src.Frequency,
			"width":           src.Width,
			"center":          vec(src.Center),
			"size":            vec(src.Size),
			"eig_band":        float64(src.EigBand),
			"direction":       string(src.Direction),
			"k_point":         vec(src.KPoint),
			"parity":          string(src.Parity),
			"match_frequency": src.MatchFrequency,
		})
	}

	bodies := make([]any, 0, len(cfg.Geometry))
	for i, body := range cfg.Geometry {
		switch b := body.(type) {
		case geometry.Block:
			bodies = append(bodies, map[string]any{
				"type":   string(geometry.KindBlock),
				"size":   vec(b.Size),
				"center": vec(b.Center),
				"index":  b.Material.Index,
			})
		case geometry.Prism:
			vertices := make([]any, 0, len(b.Vertices))
			for _, v := range b.Vertices {
				vertices = append(vertices, vec(v))
			}
			bodies = append(bodies, map[string]any{
				"type":     string(geometry.KindPrism),
				"vertices": vertices,
				"height":   b.Height,
				"center":   vec(b.Center),
				"index":    b.Material.Index,
			})
		default:
			return nil, fmt.Errorf("%w: body %d has unsupported type %T", ErrInvalidConfig, i, body)
		}
	}

	outputs := make([]any, 0, len(cfg.FieldOutputs))
	for _, out := range cfg.FieldOutputs {
		entry := map[string]any{
			"component": out.Component,
			"interval":  out.Interval,
		}
		if out.Volume != nil {
			entry["volume"] = map[string]any{
				"center": vec(out.Volume.Center),
				"size":   vec(out.Volume.Size),
			}
		}
		outputs = append(outputs, entry)
	}

	s, err := structpb.NewStruct(map[string]any{
		"version":         float64(ManifestVersion),
		"run_id":          cfg.RunID,
		"resolution":      float64(cfg.Resolution),
		"cell_size":       vec(cfg.CellSize),
		"sources":         sources,
		"geometry":        bodies,
		"filename_prefix": cfg.FilenamePrefix,
		"eps_averaging":   cfg.EpsAveraging,
		"until":           cfg.Until,
		"output_epsilon":  cfg.OutputEpsilon,
		"field_outputs":   outputs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return s, nil
}

// WriteManifest writes cfg as indented protojson to path.
func WriteManifest(path string, cfg *Config) error {
	s, err := Manifest(cfg)
	if err != nil {
		return err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return FromManifest(s)
}

// FromManifest decodes a Struct produced by Manifest and validates the result.
func FromManifest(s *structpb.Struct) (*Config, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: empty manifest", ErrInvalidConfig)
	}
	fields := s.GetFields()
	if v := number(fields["version"]); v != ManifestVersion {
		return nil, fmt.Errorf("%w: unsupported manifest version %g", ErrInvalidConfig, v)
	}

	cfg := &Config{
		RunID:          fields["run_id"].GetStringValue(),
		Resolution:     int(number(fields["resolution"])),
		CellSize:       toVec(fields["cell_size"]),
		FilenamePrefix: fields["filename_prefix"].GetStringValue(),
		EpsAveraging:   fields["eps_averaging"].GetBoolValue(),
		Until:          number(fields["until"]),
		OutputEpsilon:  fields["output_epsilon"].GetBoolValue(),
	}

	for _, v := range fields["sources"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		cfg.Sources = append(cfg.Sources, Source{
			Kind:           SourceKind(f["kind"].GetStringValue()),
			Frequency:      number(f["frequency"]),
			Width:          number(f["width"]),
			Center:         toVec(f["center"]),
			Size:           toVec(f["size"]),
			EigBand:        int(number(f["eig_band"])),
			Direction:      Direction(f["direction"].GetStringValue()),
			KPoint:         toVec(f["k_point"]),
			Parity:         Parity(f["parity"].GetStringValue()),
			MatchFrequency: f["match_frequency"].GetBoolValue(),
		})
	}

	for i, v := range fields["geometry"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		material := geometry.Medium{Index: number(f["index"])}
		switch kind := geometry.BodyKind(f["type"].GetStringValue()); kind {
		case geometry.KindBlock:
			cfg.Geometry = append(cfg.Geometry, geometry.Block{
				Size:     toVec(f["size"]),
				Center:   toVec(f["center"]),
				Material: material,
			})
		case geometry.KindPrism:
			raw := f["vertices"].GetListValue().GetValues()
			vertices := make([]geometry.Vector3, 0, len(raw))
			for _, rv := range raw {
				vertices = append(vertices, toVec(rv))
			}
			cfg.Geometry = append(cfg.Geometry, geometry.Prism{
				Vertices: vertices,
				Height:   number(f["height"]),
				Center:   toVec(f["center"]),
				Material: material,
			})
		default:
			return nil, fmt.Errorf("%w: body %d has unknown type %q", ErrInvalidConfig, i, kind)
		}
	}

	for _, v := range fields["field_outputs"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		out := FieldOutput{
			Component: f["component"].GetStringValue(),
			Interval:  number(f["interval"]),
		}
		if vol := f["volume"].GetStructValue(); vol != nil {
			out.Volume = &Volume{
				Center: toVec(vol.GetFields()["center"]),
				Size:   toVec(vol.GetFields()["size"]),
			}
		}
		cfg.FieldOutputs = append(cfg.FieldOutputs, out)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func vec(v geometry.Vector3) []any {
	return []any{v.X, v.Y, v.Z}
}

func toVec(v *structpb.Value) geometry.Vector3 {
	values := v.GetListValue().GetValues()
	var out [3]float64
	for i := 0; i < len(values) && i < 3; i++ {
		out[i] = values[i].GetNumberValue()
	}
	return geometry.V3(out[0], out[1], out[2])
}

func number(v *structpb.Value) float64 {
	return v.GetNumberValue()
}
