package engine_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestManifestFields(t *testing.T) {
	cfg := referenceConfig(t)

	s, err := engine.Manifest(cfg)
	require.NoError(t, err)

	fields := s.GetFields()
	assert.Equal(t, float64(engine.ManifestVersion), fields["version"].GetNumberValue())
	assert.Equal(t, "run-test", fields["run_id"].GetStringValue())
	assert.Equal(t, float64(20), fields["resolution"].GetNumberValue())
	assert.Equal(t, "YAG", fields["filename_prefix"].GetStringValue())
	assert.False(t, fields["eps_averaging"].GetBoolValue())

	cell := fields["cell_size"].GetListValue().GetValues()
	require.Len(t, cell, 3)
	assert.Equal(t, 26.0, cell[0].GetNumberValue())
	assert.Equal(t, 38.0, cell[1].GetNumberValue())
	assert.Equal(t, 6.0, cell[2].GetNumberValue())

	bodies := fields["geometry"].GetListValue().GetValues()
	require.Len(t, bodies, 19)
	assert.Equal(t, "block", bodies[0].GetStructValue().GetFields()["type"].GetStringValue())
	prism := bodies[1].GetStructValue().GetFields()
	assert.Equal(t, "prism", prism["type"].GetStringValue())
	assert.Len(t, prism["vertices"].GetListValue().GetValues(), 40)
}

func TestManifestRoundTrip(t *testing.T) {
	cfg := referenceConfig(t)

	s, err := engine.Manifest(cfg)
	require.NoError(t, err)

	decoded, err := engine.FromManifest(s)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestManifestFile(t *testing.T) {
	cfg := referenceConfig(t)
	path := filepath.Join(t.TempDir(), "YAG-manifest.json")

	require.NoError(t, engine.WriteManifest(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"filename_prefix"`))

	loaded, err := engine.ReadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Geometry, loaded.Geometry)
	assert.Equal(t, cfg.FieldOutputs, loaded.FieldOutputs)
}

func TestFromManifestRejects(t *testing.T) {
	_, err := engine.FromManifest(nil)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)

	wrongVersion, err := structpb.NewStruct(map[string]any{"version": 99.0})
	require.NoError(t, err)
	_, err = engine.FromManifest(wrongVersion)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)

	cfg := referenceConfig(t)
	s, err := engine.Manifest(cfg)
	require.NoError(t, err)
	bodies := s.GetFields()["geometry"].GetListValue().GetValues()
	bodies[0].GetStructValue().GetFields()["type"] = structpb.NewStringValue("sphere")
	_, err = engine.FromManifest(s)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}

type sphere struct{ geometry.Block }

func (sphere) Kind() geometry.BodyKind { return "sphere" }

func TestManifestUnsupportedBody(t *testing.T) {
	cfg := referenceConfig(t)
	cfg.Geometry = append(cfg.Geometry, sphere{})

	_, err := engine.Manifest(cfg)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
}
