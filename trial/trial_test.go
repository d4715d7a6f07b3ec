package trial

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestParamsFromJSON(t *testing.T) {
	p, err := ParamsFromJSON([]byte(`{"order": 6.0, "theta": 0.8, "tau": 0.05, "n_neurons": 20, "minibatch": 16.0, "lr": 0.01, "synapse_out": 0.02}`))
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultParams()
	want.Order, want.Theta, want.Tau = 6, 0.8, 0.05
	want.NNeurons, want.Minibatch, want.LR, want.SynapseOut = 20, 16, 0.01, 0.02
	if p != want {
		t.Errorf("got %+v\nwant %+v", p, want)
	}
}

func TestParamsFromJSONInvalid(t *testing.T) {
	tests := []string{
		`{"order": 2.5}`,
		`{"order": 0}`,
		`{"theta": -1}`,
		`{"tau": 0}`,
		`{"synapse_in": -0.1}`,
		`{"minibatch": 0}`,
		`{"order": "four"}`,
		`not json`,
	}
	for _, test := range tests {
		if _, err := ParamsFromJSON([]byte(test)); !errors.Is(err, ErrInvalidParams) {
			t.Errorf("ParamsFromJSON(%s) error = %v", test, err)
		}
	}
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("default params invalid: %v", err)
	}
}

func TestReportFiles(t *testing.T) {
	f := ReportFiles{OutDir: "out", Network: "slmu", Experiment: "exp1", Trial: "t7"}
	tests := []struct {
		got, want string
	}{
		{f.ValidationFile(), filepath.Join("out", "nni_slmu_exp1_validation_accs_t7")},
		{f.TestFile(), filepath.Join("out", "nni_slmu_exp1_test_accs")},
		{f.TrainCheckpoint(), filepath.Join("out", "best_train_exp1_t7.npz")},
		{f.TestCheckpoint(), filepath.Join("out", "best_test_exp1.npz")},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("got %q, want %q", test.got, test.want)
		}
	}
}

func TestCheckpointer(t *testing.T) {
	c := NewCheckpointer()
	scores := []float64{50, 40, 50, 60, 59}
	want := []bool{true, false, true, true, false}
	for index, score := range scores {
		if got := c.Observe(score); got != want[index] {
			t.Errorf("Observe(%v) = %v, want %v", score, got, want[index])
		}
	}
	if c.Best() != 60 {
		t.Errorf("best = %v, want 60", c.Best())
	}
}

func TestCheckpointerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accs")
	c, err := NewCheckpointerFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(c.Best(), -1) {
		t.Errorf("missing file best = %v", c.Best())
	}
	for _, value := range []float64{71.5, 80.25, 64} {
		if err := appendValue(path, value); err != nil {
			t.Fatal(err)
		}
	}
	if c, err = NewCheckpointerFromFile(path); err != nil {
		t.Fatal(err)
	}
	if c.Best() != 80.25 {
		t.Errorf("best = %v, want 80.25", c.Best())
	}
	if err := os.WriteFile(path, []byte("12\nabc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCheckpointerFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSearchSpaceDue(t *testing.T) {
	tests := []struct {
		seq, every int
		want       bool
	}{
		{0, 200, false},
		{199, 200, false},
		{200, 200, true},
		{400, 200, true},
		{5, 0, false},
	}
	for _, test := range tests {
		if got := SearchSpaceDue(test.seq, test.every); got != test.want {
			t.Errorf("SearchSpaceDue(%v, %v) = %v", test.seq, test.every, got)
		}
	}
}

// fakeTrainer plays back validation accuracies and tracks which epoch's
// parameters are loaded.
// testAccs holds the test accuracy of the parameters saved at each epoch.
type fakeTrainer struct {
	valAccs  []float64
	testAccs []float64
	current  int
	loaded   int
}

func (f *fakeTrainer) TrainEpoch(epoch int) (float64, error) {
	f.current = epoch
	return f.valAccs[epoch], nil
}

func (f *fakeTrainer) Evaluate() (float64, error) {
	return f.testAccs[f.loaded], nil
}

func (f *fakeTrainer) SaveParams(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(f.current)), 0o644)
}

func (f *fakeTrainer) LoadParams(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.loaded, err = strconv.Atoi(string(data))
	return err
}

type recordingReporter struct {
	intermediate []float64
	final        []float64
}

func (r *recordingReporter) ReportIntermediate(value float64) error {
	r.intermediate = append(r.intermediate, value)
	return nil
}

func (r *recordingReporter) ReportFinal(value float64) error {
	r.final = append(r.final, value)
	return nil
}

func TestRunner(t *testing.T) {
	dir := t.TempDir()
	files := ReportFiles{OutDir: dir, Network: "slmu", Experiment: "exp", Trial: "a"}
	// A tie at epoch 3 moves the checkpoint to the later epoch.
	trainer := &fakeTrainer{
		valAccs:  []float64{0.5, 0.75, 0.5, 0.75},
		testAccs: []float64{0.1, 0.2, 0.3, 0.625},
	}
	reporter := &recordingReporter{}
	var history bytes.Buffer
	runner := Runner{Trainer: trainer, Reporter: reporter, Files: files, Epochs: 4, History: &history}
	res, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}
	if res.BestEpoch != 3 || res.BestValidation != 75 {
		t.Errorf("best epoch %v with %v, want 3 with 75", res.BestEpoch, res.BestValidation)
	}
	if res.Test != 62.5 || !res.NewBestTest {
		t.Errorf("test = %v, new best = %v", res.Test, res.NewBestTest)
	}
	wantIntermediate := []float64{50, 75, 50, 75}
	for index, value := range wantIntermediate {
		if reporter.intermediate[index] != value {
			t.Errorf("intermediate %v = %v, want %v", index, reporter.intermediate[index], value)
		}
	}
	if len(reporter.final) != 1 || reporter.final[0] != 62.5 {
		t.Errorf("final reports = %v", reporter.final)
	}
	if res.History.Len() != 4 || res.History.ValAcc(2) != 50 {
		t.Errorf("history has %v rows", res.History.Len())
	}
	lines := strings.Split(strings.TrimSpace(history.String()), "\n")
	if len(lines) != 5 {
		t.Errorf("history TSV has %v lines, want header plus 4", len(lines))
	}
	for _, path := range []string{files.TrainCheckpoint(), files.ValidationFile()} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s not removed", path)
		}
	}
	if values, err := readValues(files.TestFile()); err != nil || len(values) != 1 || values[0] != 62.5 {
		t.Errorf("test file = %v, %v", values, err)
	}
	if _, err := os.Stat(files.TestCheckpoint()); err != nil {
		t.Errorf("test checkpoint missing: %v", err)
	}
}

func TestRunnerKeepsBetterEarlierTrial(t *testing.T) {
	dir := t.TempDir()
	files := ReportFiles{OutDir: dir, Network: "slmu", Experiment: "exp", Trial: "b"}
	if err := appendValue(files.TestFile(), 90); err != nil {
		t.Fatal(err)
	}
	trainer := &fakeTrainer{valAccs: []float64{0.4, 0.3}, testAccs: []float64{0.5, 0.6}}
	runner := Runner{Trainer: trainer, Reporter: &recordingReporter{}, Files: files, Epochs: 2, KeepCheckpoint: true}
	res, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}
	if res.NewBestTest || res.Test != 50 {
		t.Errorf("test = %v, new best = %v", res.Test, res.NewBestTest)
	}
	if _, err := os.Stat(files.TestCheckpoint()); !os.IsNotExist(err) {
		t.Error("test checkpoint written for a worse trial")
	}
	if values, err := readValues(files.ValidationFile()); err != nil || len(values) != 2 || values[0] != 40 {
		t.Errorf("validation file = %v, %v", values, err)
	}
}
