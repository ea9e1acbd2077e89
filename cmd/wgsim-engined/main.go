// Command wgsim-engined hosts the meep engine behind the gRPC run service so
// wgsim can submit runs with -engine remote.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine/meep"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine/remote"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	var grpcAddr string
	var python string
	var workDir string
	var timeout time.Duration
	var maxRuns int
	var logLevel string
	var logFormat string

	flag.StringVar(&grpcAddr, "grpc-addr", ":50061", "gRPC listen address")
	flag.StringVar(&python, "python", "python3", "python interpreter with meep installed")
	flag.StringVar(&workDir, "workdir", ".", "directory for scripts and outputs")
	flag.DurationVar(&timeout, "timeout", 0, "per-run timeout (0 for none)")
	flag.IntVar(&maxRuns, "max-runs", 1, "maximum concurrent runs")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	flag.Parse()

	log := logger.NewWithFormat(logFormat, logLevel, os.Stdout)
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := meep.NewRunner(meep.Options{
		Python:  python,
		WorkDir: workDir,
		Timeout: timeout,
	})
	runner.SetLogger(log)

	host := remote.NewServer(runner, maxRuns)
	host.SetLogger(log)

	// TODO: Configure TLS before exposing the engine outside a trusted network.
	grpcServer := grpc.NewServer(remote.ServerOptions()...)
	host.Register(grpcServer)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(remote.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", grpcAddr, "error", err)
		stop()
		os.Exit(1)
	}

	go func() {
		logger.Info("engine host listening", "addr", grpcAddr, "workdir", workDir, "max_runs", maxRuns)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	healthServer.Shutdown()

	// In-flight runs can take hours; after the grace period they are cancelled,
	// which kills the engine processes.
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(30 * time.Second):
		logger.Warn("grace period expired, cancelling active runs")
		grpcServer.Stop()
	}
}
