//go:build integration
// +build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine/meep"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine/remote"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/simulation"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/config"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// startEngineHost serves a dry-run meep runner on a local TCP port, the same
// way wgsim-engined does, and returns its address.
func startEngineHost(t *testing.T, workDir string) string {
	t.Helper()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := meep.NewRunner(meep.Options{WorkDir: workDir, DryRun: true})
	runner.SetLogger(discard)
	host := remote.NewServer(runner, 1)
	host.SetLogger(discard)

	srv := grpc.NewServer(remote.ServerOptions()...)
	host.Register(srv)
	hs := health.NewServer()
	hs.SetServingStatus(remote.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)
	return lis.Addr().String()
}

func TestIntegration_RemoteDryRunPipeline(t *testing.T) {
	hostDir := t.TempDir()
	clientDir := t.TempDir()
	addr := startEngineHost(t, hostDir)

	client, err := remote.Dial(addr)
	require.NoError(t, err)
	defer client.Close()
	client.SetTimeout(10 * time.Second)
	client.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	sim := simulation.New(client, clientDir).WithManifest(true)
	sim.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	p := config.DefaultParameters()
	p.Name = "remote-yag"
	run, err := sim.Run(context.Background(), p, engine.SourceGaussian)
	require.NoError(t, err)

	require.Equal(t, models.RunStatusPlanned, run.Status)
	assert.Equal(t, remote.Name, run.Engine)

	scriptPath := filepath.Join(hostDir, "remote-yag-sim.py")
	require.Equal(t, []string{scriptPath}, run.OutputFiles)
	script, err := os.ReadFile(scriptPath)
	require.NoError(t, err)
	assert.Equal(t, p.EllipseCount, strings.Count(string(script), "mp.Prism("))
	assert.Contains(t, string(script), "mp.GaussianSource(")

	for _, name := range []string{"remote-yag-manifest.json", "remote-yag-run.json"} {
		assert.FileExists(t, filepath.Join(clientDir, name))
	}
}

func TestIntegration_RemoteRejectsInvalidRunBeforeEngine(t *testing.T) {
	hostDir := t.TempDir()
	addr := startEngineHost(t, hostDir)

	client, err := remote.Dial(addr)
	require.NoError(t, err)
	defer client.Close()
	client.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	cfg, _ := simulation.Plan(config.DefaultParameters(), engine.SourceContinuous)
	cfg.RunID = "run-escape"
	cfg.FilenamePrefix = "../escaped"

	_, err = client.Run(context.Background(), cfg)
	assert.ErrorIs(t, err, engine.ErrInvalidConfig)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(hostDir), "escaped-sim.py"))
}
