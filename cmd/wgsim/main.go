// Command wgsim builds the waveguide geometry from its physical parameters and
// runs it on an FDTD engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine/meep"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine/remote"
	"github.com/GoSim-25-26J-441/waveguide-sim/internal/simulation"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/config"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	configPath string
	dryRun     bool
	manifest   bool
}

// newFlagSet binds every flag to cfg so a config file can be loaded into the
// same struct before explicit flags are re-applied.
func newFlagSet(cfg *config.Config, opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("wgsim", flag.ContinueOnError)
	fs.SetOutput(stderr)

	p := &cfg.Parameters
	fs.Float64Var(&p.Wavelength, "wvg", p.Wavelength, "wavelength")
	fs.Float64Var(&p.FrequencyWidth, "df", p.FrequencyWidth, "frequency width")
	fs.Float64Var(&p.CoreIndex, "n", p.CoreIndex, "core refractive index")
	fs.Float64Var(&p.IndexDelta, "dn", p.IndexDelta, "index change inside the ellipses")
	fs.Float64Var(&p.SimulationTime, "t", p.SimulationTime, "simulation time")
	fs.Float64Var(&p.CoreRadius, "c", p.CoreRadius, "core radius")
	fs.IntVar(&p.EllipseCount, "N", p.EllipseCount, "number of ellipses")
	fs.Float64Var(&p.SemiAxisA, "a", p.SemiAxisA, "ellipse semi-axis along x")
	fs.Float64Var(&p.SemiAxisB, "b", p.SemiAxisB, "ellipse semi-axis along y")
	fs.IntVar(&p.Resolution, "res", p.Resolution, "resolution (pixels per unit)")
	fs.StringVar(&p.Name, "name", p.Name, "output file prefix")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json)")
	fs.StringVar(&cfg.Engine.Backend, "engine", cfg.Engine.Backend, "engine backend (meep, remote)")
	fs.StringVar(&cfg.Engine.Address, "engine-addr", cfg.Engine.Address, "remote engine address")
	fs.StringVar(&cfg.Engine.Python, "python", cfg.Engine.Python, "python interpreter for the meep backend")
	fs.StringVar(&cfg.Engine.WorkDir, "workdir", cfg.Engine.WorkDir, "directory for scripts, outputs and run records")
	fs.StringVar(&cfg.Engine.Timeout, "timeout", cfg.Engine.Timeout, "engine timeout, e.g. 2h (empty for none)")
	fs.StringVar(&cfg.Engine.Source, "source", cfg.Engine.Source, "source carrier (continuous, gaussian)")

	fs.StringVar(&opts.configPath, "config", "", "YAML or TOML config file")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "write the engine script without running it")
	fs.BoolVar(&opts.manifest, "manifest", true, "write the engine manifest next to the outputs")
	return fs
}

// parseArgs parses the command line on top of the defaults.
func parseArgs(args []string, stderr io.Writer) (*config.Config, *options, *flag.FlagSet, error) {
	cfg := config.DefaultConfig()
	opts := &options{}
	fs := newFlagSet(cfg, opts, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, opts, fs, nil
}

// loadConfigFile replaces cfg with the file contents and re-applies the flags
// that were set explicitly, so flags win over the file. The result is
// validated once, after the overrides.
func loadConfigFile(fs *flag.FlagSet, cfg *config.Config, path string) error {
	set := map[string]string{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = f.Value.String()
	})

	loaded, err := config.ReadConfig(path)
	if err != nil {
		return err
	}
	*cfg = *loaded

	for name, value := range set {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("flag -%s: %w", name, err)
		}
	}
	return config.Validate(cfg)
}

// newRunner picks the engine backend. A dry run always uses the local meep
// backend since nothing is executed.
func newRunner(cfg *config.Config, opts *options, log *slog.Logger) (engine.Runner, func(), error) {
	timeout, err := cfg.Engine.GetTimeout()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid engine timeout %q: %w", cfg.Engine.Timeout, err)
	}

	if cfg.Engine.Backend == config.BackendRemote && !opts.dryRun {
		client, err := remote.Dial(cfg.Engine.Address)
		if err != nil {
			return nil, nil, err
		}
		client.SetTimeout(timeout)
		client.SetLogger(log)
		return client, func() {
			if err := client.Close(); err != nil {
				log.Warn("failed to close engine connection", "error", err)
			}
		}, nil
	}

	runner := meep.NewRunner(meep.Options{
		Python:  cfg.Engine.Python,
		WorkDir: cfg.Engine.WorkDir,
		Timeout: timeout,
		DryRun:  opts.dryRun,
	})
	runner.SetLogger(log)
	return runner, func() {}, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, opts, fs, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "wgsim: %v\n", err)
		return 2
	}

	if opts.configPath != "" {
		err = loadConfigFile(fs, cfg, opts.configPath)
	} else {
		err = config.Validate(cfg)
	}
	log := logger.NewWithFormat(cfg.LogFormat, cfg.LogLevel, stderr)
	logger.SetDefault(log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return 1
	}

	runner, closeRunner, err := newRunner(cfg, opts, log)
	if err != nil {
		log.Error("failed to set up engine", "backend", cfg.Engine.Backend, "error", err)
		return 1
	}
	defer closeRunner()

	sim := simulation.New(runner, cfg.Engine.WorkDir).WithManifest(opts.manifest)
	sim.SetLogger(log)

	log.Info("starting simulation",
		"engine", runner.Name(),
		"wavelength", cfg.Parameters.Wavelength,
		"ellipses", cfg.Parameters.EllipseCount,
		"resolution", cfg.Parameters.Resolution,
		"until", cfg.Parameters.SimulationTime,
	)

	result, err := sim.Run(ctx, cfg.Parameters, engine.SourceKind(cfg.Engine.Source))
	if err != nil {
		log.Error("simulation failed", "error", err)
		return 1
	}

	fmt.Fprintf(stdout, "%s %s %s\n", result.ID, result.Status, sim.RecordPath(result.Prefix))
	return 0
}
