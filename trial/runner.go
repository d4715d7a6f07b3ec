package trial

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Trainer trains and evaluates a network. It is provided by the simulation
// backend. Accuracies are fractions in [0, 1].
type Trainer interface {
	// TrainEpoch runs one training epoch and returns the validation accuracy.
	TrainEpoch(epoch int) (float64, error)
	// Evaluate returns the test accuracy of the current parameters.
	Evaluate() (float64, error)
	SaveParams(path string) error
	LoadParams(path string) error
}

// Runner drives one trial.
type Runner struct {
	Trainer  Trainer
	Reporter Reporter
	Files    ReportFiles
	Epochs   int
	// History receives the epoch log, when not nil.
	History io.Writer
	Logger  *log.Logger
	// KeepCheckpoint skips removing the per-trial files at the end.
	KeepCheckpoint bool
}

// Result summarizes a finished trial. Accuracies are in percent.
type Result struct {
	BestValidation float64
	BestEpoch      int
	Test           float64
	// NewBestTest is set when the trial beat all earlier trials of the
	// experiment.
	NewBestTest bool
	History     *History
}

func (r *Runner) logf(format string, v ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, v...)
	}
}

// Run trains for Epochs epochs, checkpointing whenever the validation
// accuracy reaches its running maximum, then reloads the best checkpoint,
// evaluates it and reports the test accuracy.
func (r *Runner) Run() (*Result, error) {
	if r.Epochs < 1 {
		return nil, fmt.Errorf("%w: epochs = %v", ErrInvalidParams, r.Epochs)
	}
	if err := os.MkdirAll(r.Files.OutDir, 0o755); err != nil {
		return nil, err
	}
	// Earlier trials of the experiment are seeded once, before training.
	testBest, err := NewCheckpointerFromFile(r.Files.TestFile())
	if err != nil {
		return nil, err
	}

	res := &Result{History: NewHistory(r.History), BestEpoch: -1}
	valBest := NewCheckpointer()
	for epoch := 0; epoch < r.Epochs; epoch++ {
		acc, err := r.Trainer.TrainEpoch(epoch)
		if err != nil {
			return nil, fmt.Errorf("trial: epoch %v: %w", epoch, err)
		}
		acc *= 100
		if err := r.Reporter.ReportIntermediate(acc); err != nil {
			return nil, err
		}
		if err := appendValue(r.Files.ValidationFile(), acc); err != nil {
			return nil, err
		}
		saved := valBest.Observe(acc)
		if saved {
			if err := r.Trainer.SaveParams(r.Files.TrainCheckpoint()); err != nil {
				return nil, err
			}
			res.BestEpoch = epoch
		}
		if err := res.History.Add(epoch, acc, valBest.Best(), saved); err != nil {
			return nil, err
		}
		r.logf("epoch %v: validation accuracy %.2f%% (best %.2f%%)", epoch, acc, valBest.Best())
	}
	res.BestValidation = valBest.Best()
	if res.BestEpoch < 0 {
		return nil, fmt.Errorf("trial: no epoch produced a comparable validation accuracy")
	}

	if err := r.Trainer.LoadParams(r.Files.TrainCheckpoint()); err != nil {
		return nil, err
	}
	test, err := r.Trainer.Evaluate()
	if err != nil {
		return nil, fmt.Errorf("trial: evaluate: %w", err)
	}
	res.Test = test * 100
	if err := appendValue(r.Files.TestFile(), res.Test); err != nil {
		return nil, err
	}
	if res.NewBestTest = testBest.Observe(res.Test); res.NewBestTest {
		if err := r.Trainer.SaveParams(r.Files.TestCheckpoint()); err != nil {
			return nil, err
		}
	}
	r.logf("best validation accuracy %.2f%% at epoch %v, test accuracy %.2f%%", res.BestValidation, res.BestEpoch, res.Test)
	if err := r.Reporter.ReportFinal(res.Test); err != nil {
		return nil, err
	}

	if !r.KeepCheckpoint {
		if err := r.Files.Cleanup(); err != nil {
			return nil, err
		}
	}
	return res, nil
}
