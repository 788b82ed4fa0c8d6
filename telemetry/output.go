package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/veldt-labs/throng/config"
)

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir            string
	populationFile *os.File
	perfFile       *os.File

	// Track if headers have been written
	populationHeaderWritten bool
	perfHeaderWritten       bool
}

// NewOutputManager creates an output manager rooted at dir.
// Returns nil if dir is empty (output disabled); a nil manager is safe
// to call.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	populationPath := filepath.Join(dir, "population.csv")
	f, err := os.Create(populationPath)
	if err != nil {
		return nil, fmt.Errorf("creating population.csv: %w", err)
	}
	om.populationFile = f

	perfPath := filepath.Join(dir, "perf.csv")
	f, err = os.Create(perfPath)
	if err != nil {
		om.populationFile.Close()
		return nil, fmt.Errorf("creating perf.csv: %w", err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the effective configuration as YAML alongside the
// CSV output, so a run stays reproducible.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteWindow appends a window stats record to population.csv.
func (om *OutputManager) WriteWindow(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.populationHeaderWritten {
		if err := gocsv.Marshal(records, om.populationFile); err != nil {
			return fmt.Errorf("writing population stats: %w", err)
		}
		om.populationHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.populationFile); err != nil {
			return fmt.Errorf("writing population stats: %w", err)
		}
	}

	return nil
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}

	records := []PerfStatsCSV{stats.ToCSV(windowEnd)}

	if !om.perfHeaderWritten {
		if err := gocsv.Marshal(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf stats: %w", err)
		}
		om.perfHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.perfFile); err != nil {
			return fmt.Errorf("writing perf stats: %w", err)
		}
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

	if om.populationFile != nil {
		if err := om.populationFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
