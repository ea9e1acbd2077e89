package meep

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
)

const scriptTemplate = `# Generated by wgsim for run {{.RunID}}. Edits are overwritten.
import meep as mp

geometry = [
{{- range .Geometry}}
    {{body .}},
{{- end}}
]

sources = [
{{- range .Sources}}
    mp.EigenModeSource(
        src={{carrier .}},
        center={{vec .Center}},
        size={{vec .Size}},
        eig_band={{.EigBand}},
        direction=mp.{{.Direction}},
        eig_kpoint={{vec .KPoint}},
        eig_parity=mp.{{.Parity}},
        eig_match_freq={{pybool .MatchFrequency}},
    ),
{{- end}}
]

sim = mp.Simulation(
    resolution={{.Resolution}},
    cell_size={{vec .CellSize}},
    sources=sources,
    geometry=geometry,
    filename_prefix={{str .FilenamePrefix}},
    eps_averaging={{pybool .EpsAveraging}},
)

sim.run(
{{- if .OutputEpsilon}}
    mp.at_beginning(mp.output_epsilon),
{{- end}}
{{- range .FieldOutputs}}
    {{output .}},
{{- end}}
    until={{num .Until}},
)
`

var script = template.Must(template.New("meep").Funcs(template.FuncMap{
	"num":     num,
	"vec":     vec,
	"str":     strconv.Quote,
	"pybool":  pybool,
	"body":    body,
	"carrier": carrier,
	"output":  output,
}).Parse(scriptTemplate))

// RenderScript produces the Python control file that drives meep for cfg.
func RenderScript(cfg *engine.Config) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := script.Execute(&buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to render meep script: %w", err)
	}
	return buf.Bytes(), nil
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func vec(v geometry.Vector3) string {
	return "mp.Vector3(" + num(v.X) + ", " + num(v.Y) + ", " + num(v.Z) + ")"
}

func pybool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func medium(m geometry.Medium) string {
	return "mp.Medium(index=" + num(m.Index) + ")"
}

func body(b geometry.SolidBody) (string, error) {
	switch b := b.(type) {
	case geometry.Block:
		return fmt.Sprintf("mp.Block(size=%s, center=%s, material=%s)", vec(b.Size), vec(b.Center), medium(b.Material)), nil
	case geometry.Prism:
		vertices := make([]string, len(b.Vertices))
		for i, v := range b.Vertices {
			vertices[i] = vec(v)
		}
		return fmt.Sprintf("mp.Prism([%s], height=%s, center=%s, material=%s)",
			strings.Join(vertices, ", "), num(b.Height), vec(b.Center), medium(b.Material)), nil
	default:
		return "", fmt.Errorf("unsupported body %T", b)
	}
}

func carrier(src engine.Source) (string, error) {
	switch src.Kind {
	case engine.SourceContinuous:
		return "mp.ContinuousSource(frequency=" + num(src.Frequency) + ")", nil
	case engine.SourceGaussian:
		return "mp.GaussianSource(frequency=" + num(src.Frequency) + ", fwidth=" + num(src.Width) + ")", nil
	default:
		return "", fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}

func output(out engine.FieldOutput) (string, error) {
	fn, ok := engine.FieldOutputFunc(out.Component)
	if !ok {
		return "", fmt.Errorf("unsupported field component %q", out.Component)
	}
	step := fmt.Sprintf("mp.to_appended(%s, mp.at_every(%s, mp.%s))", strconv.Quote(out.Component), num(out.Interval), fn)
	if out.Volume == nil {
		return step, nil
	}
	return fmt.Sprintf("mp.in_volume(mp.Volume(center=%s, size=%s), %s)", vec(out.Volume.Center), vec(out.Volume.Size), step), nil
}
