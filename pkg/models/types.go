package models

import "time"

// RunStatus represents the status of a simulation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	// RunStatusPlanned marks a dry run: inputs were written, the engine was not started.
	RunStatusPlanned RunStatus = "planned"
)

// IsTerminal reports whether no further transition is expected.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusPlanned:
		return true
	}
	return false
}

// Run is the record written next to the engine outputs.
type Run struct {
	ID          string            `json:"id"`
	Status      RunStatus         `json:"status"`
	Engine      string            `json:"engine"`
	Prefix      string            `json:"prefix"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
	Duration    time.Duration     `json:"duration,omitempty"`
	Geometry    GeometrySummary   `json:"geometry"`
	OutputFiles []string          `json:"output_files,omitempty"`
	Error       string            `json:"error,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// GeometrySummary describes the generated cell without repeating every vertex.
type GeometrySummary struct {
	Blocks        int        `json:"blocks"`
	Prisms        int        `json:"prisms"`
	Vertices      int        `json:"vertices"`
	CellSize      [3]float64 `json:"cell_size"`
	SourceSize    [3]float64 `json:"source_size"`
	Resolution    int        `json:"resolution"`
	SimulationEnd float64    `json:"simulation_end"`
}

// RunResult is what an engine backend reports after its run loop returns.
type RunResult struct {
	Engine      string    `json:"engine"`
	Status      RunStatus `json:"status"`
	OutputFiles []string  `json:"output_files,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// Finish stamps the end of the run from an engine result and error.
func (r *Run) Finish(end time.Time, result *RunResult, err error) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	if result != nil {
		r.Status = result.Status
		r.OutputFiles = result.OutputFiles
	}
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
	}
}
