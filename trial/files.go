package trial

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReportFiles names the files of one trial inside the experiment output
// directory.
type ReportFiles struct {
	OutDir     string
	Network    string
	Experiment string
	Trial      string
}

// ValidationFile holds one validation accuracy per epoch of this trial.
func (f ReportFiles) ValidationFile() string {
	return filepath.Join(f.OutDir, fmt.Sprintf("nni_%s_%s_validation_accs_%s", f.Network, f.Experiment, f.Trial))
}

// TestFile holds one test accuracy per finished trial of the experiment.
func (f ReportFiles) TestFile() string {
	return filepath.Join(f.OutDir, fmt.Sprintf("nni_%s_%s_test_accs", f.Network, f.Experiment))
}

// TrainCheckpoint is the parameter file of the best epoch of this trial.
func (f ReportFiles) TrainCheckpoint() string {
	return filepath.Join(f.OutDir, fmt.Sprintf("best_train_%s_%s.npz", f.Experiment, f.Trial))
}

// TestCheckpoint is the parameter file of the best trial of the experiment.
func (f ReportFiles) TestCheckpoint() string {
	return filepath.Join(f.OutDir, fmt.Sprintf("best_test_%s.npz", f.Experiment))
}

// HistoryFile is the tab separated epoch log of this trial.
func (f ReportFiles) HistoryFile() string {
	return filepath.Join(f.OutDir, fmt.Sprintf("history_%s_%s_%s.tsv", f.Network, f.Experiment, f.Trial))
}

// Cleanup removes the per-trial checkpoint and validation file. Missing
// files are not an error.
func (f ReportFiles) Cleanup() error {
	for _, path := range []string{f.TrainCheckpoint(), f.ValidationFile()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// appendValue adds value as a new line of the file at path.
func appendValue(path string, value float64) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(file, strconv.FormatFloat(value, 'g', -1, 64)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// readValues returns the values of a one-value-per-line file. A missing
// file has no values.
func readValues(path string) ([]float64, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var values []float64
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("trial: %s line %v: %w", path, line, err)
		}
		values = append(values, value)
	}
	return values, scanner.Err()
}
