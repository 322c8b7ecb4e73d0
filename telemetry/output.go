package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/hivelab/hive/config"
)

// OutputManager handles structured run output with CSV logging. Each run gets
// a uuid so output from repeated runs into the same tree never collides.
type OutputManager struct {
	dir   string
	runID string

	telemetryFile   *os.File
	convergenceFile *os.File
	perfFile        *os.File

	telemetryHeaderWritten   bool
	convergenceHeaderWritten bool
	perfHeaderWritten        bool
}

// NewOutputManager creates an output manager rooted at dir/<run-uuid>.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	runID := uuid.NewString()
	runDir := filepath.Join(dir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: runDir, runID: runID}

	f, err := os.Create(filepath.Join(runDir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	om.telemetryFile = f

	f, err = os.Create(filepath.Join(runDir, "convergence.csv"))
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating convergence.csv: %w", err)
	}
	om.convergenceFile = f

	f, err = os.Create(filepath.Join(runDir, "perf.csv"))
	if err != nil {
		om.telemetryFile.Close()
		om.convergenceFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// RunID returns the run's uuid, empty when output is disabled.
func (om *OutputManager) RunID() string {
	if om == nil {
		return ""
	}
	return om.runID
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return writeCSV([]WindowStats{stats}, om.telemetryFile, &om.telemetryHeaderWritten, "telemetry")
}

// WriteConvergence writes a convergence sample to convergence.csv.
func (om *OutputManager) WriteConvergence(s ConvergenceSample) error {
	if om == nil {
		return nil
	}
	return writeCSV([]ConvergenceSample{s}, om.convergenceFile, &om.convergenceHeaderWritten, "convergence")
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return writeCSV([]PerfStatsCSV{stats.ToCSV(windowEnd)}, om.perfFile, &om.perfHeaderWritten, "perf")
}

func writeCSV[T any](records []T, f *os.File, headerWritten *bool, what string) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return fmt.Errorf("writing %s: %w", what, err)
		}
		*headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, f := range []*os.File{om.telemetryFile, om.convergenceFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
