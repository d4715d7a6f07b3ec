// Command slmu prepares a spiking LMU tuning trial: it loads the dataset,
// optionally decomposes it into octave bands, builds the memory kernel for
// the trial parameters and exports everything the training backend needs.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/econfig"
	"github.com/hammal/slmu/dataset"
	"github.com/hammal/slmu/filterbank"
	"github.com/hammal/slmu/lmu"
	"github.com/hammal/slmu/plots"
	"github.com/hammal/slmu/trial"
)

// impulseSteps is the length of the plotted kernel impulse response.
const impulseSteps = 100

func main() {
	logger := log.New(os.Stderr, "slmu: ", log.LstdFlags)
	var cfg Config
	if _, err := econfig.Config(&cfg, "config.toml"); err != nil {
		logger.Fatal(err)
	}
	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

func outDir(cfg Config) string {
	return filepath.Join(cfg.OutRoot, fmt.Sprintf("tmp_%s_%s_%s", cfg.Network, cfg.Experiment, cfg.Dataset))
}

func loadParams(cfg Config) (trial.Params, error) {
	if cfg.ParamsFile == "" {
		return trial.DefaultParams(), nil
	}
	data, err := os.ReadFile(cfg.ParamsFile)
	if err != nil {
		return trial.Params{}, err
	}
	return trial.ParamsFromJSON(data)
}

func run(cfg Config, logger *log.Logger) error {
	debugf := func(format string, v ...interface{}) {
		if cfg.Debug {
			logger.Printf(format, v...)
		}
	}
	if trial.SearchSpaceDue(cfg.Sequence, cfg.SearchSpaceEvery) {
		logger.Printf("trial %v is due for a search space refresh", cfg.Sequence)
	}

	params, err := loadParams(cfg)
	if err != nil {
		return err
	}
	debugf("params %+v", params)

	data, err := dataset.Load(filepath.Join(cfg.DataDir, cfg.DataFile+".npz"))
	if err != nil {
		return err
	}
	logger.Printf("loaded %v/%v/%v samples of %v x %v, %v classes (%v)",
		data.Train.Len(), data.Val.Len(), data.Test.Len(),
		data.Timesteps(), data.InputDim(), data.Classes(), datasize.ByteSize(data.Bytes()).HumanReadable())

	out := outDir(cfg)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	if cfg.FreqDec {
		fb, err := filterbank.New(cfg.Bands, cfg.SampleRate, cfg.FilterOrder)
		if err != nil {
			return err
		}
		for index, band := range fb.Bands {
			debugf("band %v: %.3f - %.3f Hz (center %.3f)", index, band.Low, band.High, band.Center)
		}
		data = data.Decompose(fb)
		logger.Printf("decomposed into %v bands: %v x %v per sample (%v)",
			fb.Len(), data.Timesteps(), data.InputDim(), datasize.ByteSize(data.Bytes()).HumanReadable())
		if cfg.SaveFeatures {
			if err := data.Save(filepath.Join(out, "features_"+cfg.Dataset+".npz")); err != nil {
				return err
			}
		}
		if cfg.Plot {
			if err := plots.FilterbankResponse(fb, 512, filepath.Join(out, "filterbank.png")); err != nil {
				return err
			}
		}
	}

	kernel, err := lmu.NewMemoryKernel(params.Order, params.Theta, params.Tau)
	if err != nil {
		return err
	}
	if !kernel.Stable() {
		logger.Printf("warning: discrete memory kernel of order %v with theta %v is not stable", params.Order, params.Theta)
	}
	transforms, err := lmu.NewTransforms(kernel, data.InputDim(), data.Classes(), cfg.Seed)
	if err != nil {
		return err
	}
	r, c := transforms.Readout.Dims()
	debugf("readout %v x %v, leak %v", r, c, kernel.Leak)

	files := trial.ReportFiles{OutDir: out, Network: cfg.Network, Experiment: cfg.Experiment, Trial: cfg.Trial}
	kernelPath := filepath.Join(out, fmt.Sprintf("kernel_%s_%s.npz", cfg.Experiment, cfg.Trial))
	if err := dataset.SaveKernel(kernelPath, kernel); err != nil {
		return err
	}
	logger.Printf("memory kernel of order %v written to %s, reports go to %s", kernel.Order, kernelPath, files.ValidationFile())

	if cfg.Plot {
		if err := plots.KernelImpulse(kernel, impulseSteps, filepath.Join(out, "kernel.png")); err != nil {
			return err
		}
	}
	return nil
}
