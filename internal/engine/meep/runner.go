// Package meep runs the engine as a local Python process driving the meep
// FDTD library. The run configuration is rendered into a control script in
// the work directory and the interpreter is started there, so meep writes its
// output files next to the script.
package meep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/waveguide-sim/internal/engine"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/models"
	"github.com/GoSim-25-26J-441/waveguide-sim/pkg/utils"
)

// Name identifies this backend in logs and run records.
const Name = "meep"

// Options configure the local meep backend.
type Options struct {
	Python  string        // interpreter, default "python3"
	WorkDir string        // script and output directory, default "."
	Timeout time.Duration // zero means no limit
	DryRun  bool          // write the script but do not start the engine
}

// Runner implements engine.Runner with a local interpreter process.
type Runner struct {
	opts   Options
	logger *slog.Logger

	// command builds the process; tests swap it for a helper process.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewRunner creates a Runner, filling unset options with defaults.
func NewRunner(opts Options) *Runner {
	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	return &Runner{
		opts:    opts,
		logger:  logger.Default,
		command: exec.CommandContext,
	}
}

// SetLogger sets the runner's logger
func (r *Runner) SetLogger(l *slog.Logger) {
	r.logger = l
}

// Name returns the backend name.
func (r *Runner) Name() string {
	return Name
}

// ScriptPath is where the control script for cfg is written.
func (r *Runner) ScriptPath(cfg *engine.Config) string {
	return filepath.Join(r.opts.WorkDir, utils.RunFileName(cfg.FilenamePrefix, "sim.py"))
}

// Run writes the control script and, unless DryRun is set, blocks until the
// interpreter exits.
func (r *Runner) Run(ctx context.Context, cfg *engine.Config) (*models.RunResult, error) {
	src, err := RenderScript(cfg)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(r.opts.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work dir %s: %w", r.opts.WorkDir, err)
	}
	scriptPath := r.ScriptPath(cfg)
	if err := os.WriteFile(scriptPath, src, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write script %s: %w", scriptPath, err)
	}
	log := r.logger.With("engine", Name, "run_id", cfg.RunID, "script", scriptPath)
	log.Debug("meep script written", "bytes", len(src))

	if r.opts.DryRun {
		log.Info("dry run, engine not started")
		return &models.RunResult{
			Engine:      Name,
			Status:      models.RunStatusPlanned,
			OutputFiles: []string{scriptPath},
			Message:     "dry run",
		}, nil
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	cmd := r.command(ctx, r.opts.Python, "-u", filepath.Base(scriptPath))
	cmd.Dir = r.opts.WorkDir
	stdout := &lineLogger{log: log, level: slog.LevelInfo, stream: "stdout"}
	stderr := &lineLogger{log: log, level: slog.LevelWarn, stream: "stderr", keep: 20}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Info("starting engine", "python", r.opts.Python, "until", cfg.Until)
	start := time.Now()
	runErr := cmd.Run()
	stdout.Flush()
	stderr.Flush()
	elapsed := time.Since(start)

	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s: %v", engine.ErrEngineUnavailable, r.opts.Python, runErr)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("%v (%w)", runErr, ctxErr)
		}
		log.Error("engine failed", "elapsed", utils.FormatDuration(elapsed), "error", runErr)
		return &models.RunResult{
			Engine:  Name,
			Status:  models.RunStatusFailed,
			Message: stderr.Tail(),
		}, fmt.Errorf("%w: %w", engine.ErrEngineFailed, runErr)
	}

	files, err := collectOutputs(r.opts.WorkDir, cfg.FilenamePrefix)
	if err != nil {
		return nil, err
	}
	log.Info("engine finished", "elapsed", utils.FormatDuration(elapsed), "files", len(files))
	return &models.RunResult{
		Engine:      Name,
		Status:      models.RunStatusCompleted,
		OutputFiles: files,
	}, nil
}

// collectOutputs lists the HDF5 files meep wrote for prefix.
func collectOutputs(dir, prefix string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*.h5"))
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && !info.IsDir() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// lineLogger turns process output into one log record per line.
type lineLogger struct {
	log    *slog.Logger
	level  slog.Level
	stream string
	keep   int

	mu   sync.Mutex
	buf  bytes.Buffer
	tail []string
}

func (l *lineLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Write(p)
	for {
		line, err := l.buf.ReadString('\n')
		if err != nil {
			// Partial line, keep it for the next write.
			l.buf.Reset()
			l.buf.WriteString(line)
			break
		}
		l.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush logs a trailing line without newline.
func (l *lineLogger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.buf.Len() > 0 {
		l.emit(l.buf.String())
		l.buf.Reset()
	}
}

// Tail returns the last kept lines.
func (l *lineLogger) Tail() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.tail, "\n")
}

func (l *lineLogger) emit(line string) {
	if line == "" {
		return
	}
	l.log.Log(context.Background(), l.level, line, "stream", l.stream)
	if l.keep > 0 {
		l.tail = append(l.tail, line)
		if len(l.tail) > l.keep {
			l.tail = l.tail[len(l.tail)-l.keep:]
		}
	}
}
