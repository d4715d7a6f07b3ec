package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/emer/emergent/v2/econfig"
	"github.com/hammal/slmu/dataset"
	"gonum.org/v1/gonum/mat"
)

func testConfig(t *testing.T) Config {
	dir := t.TempDir()
	split := func(n int) dataset.Split {
		s := dataset.Split{Y: mat.NewDense(n, 2, nil)}
		for k := 0; k < n; k++ {
			x := mat.NewDense(16, 3, nil)
			for i := 0; i < 16; i++ {
				for c := 0; c < 3; c++ {
					x.Set(i, c, float64((i*(c+1)+k)%5))
				}
			}
			s.X = append(s.X, x)
			s.Y.Set(k, k%2, 1)
		}
		return s
	}
	data := dataset.Dataset{Train: split(4), Val: split(2), Test: split(2)}
	if err := data.Save(filepath.Join(dir, "data.npz")); err != nil {
		t.Fatal(err)
	}
	return Config{
		Network:     "slmu",
		Dataset:     "toy",
		DataFile:    "data",
		DataDir:     dir,
		OutRoot:     dir,
		FreqDec:     true,
		Bands:       3,
		SampleRate:  20,
		FilterOrder: 2,
		Experiment:  "exp",
		Trial:       "t1",
		Plot:        true,
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	if err := econfig.SetFromDefaults(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Network != "slmu" || cfg.Bands != 5 || cfg.SampleRate != 20 || cfg.FilterOrder != 2 || cfg.SearchSpaceEvery != 200 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.FreqDec || cfg.Plot || cfg.ParamsFile != "" {
		t.Errorf("untagged fields not zero: %+v", cfg)
	}
	if _, err := econfig.SetFromArgs(&cfg, []string{"-bands", "4", "-freq-dec", "-sample-rate=50"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Bands != 4 || !cfg.FreqDec || cfg.SampleRate != 50 {
		t.Errorf("args not applied: %+v", cfg)
	}
	if _, err := econfig.SetFromArgs(&cfg, []string{"-epochs", "3"}); err == nil {
		t.Error("unknown flag accepted")
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.SaveFeatures = true
	paramsFile := filepath.Join(cfg.DataDir, "params.json")
	if err := os.WriteFile(paramsFile, []byte(`{"order": 3, "theta": 2.0, "tau": 0.2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.ParamsFile = paramsFile
	if err := run(cfg, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}
	out := outDir(cfg)
	kernel, err := dataset.LoadKernelMatrices(filepath.Join(out, "kernel_exp_t1.npz"))
	if err != nil {
		t.Fatal(err)
	}
	if r, c := kernel["A_H"].Dims(); r != 3 || c != 3 {
		t.Errorf("A_H is %vx%v", r, c)
	}
	features, err := dataset.Load(filepath.Join(out, "features_toy.npz"))
	if err != nil {
		t.Fatal(err)
	}
	if features.InputDim() != 9 {
		t.Errorf("features have %v channels, want 9", features.InputDim())
	}
	for _, name := range []string{"filterbank.png", "kernel.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestRunInvalidParams(t *testing.T) {
	cfg := testConfig(t)
	cfg.ParamsFile = filepath.Join(cfg.DataDir, "params.json")
	if err := os.WriteFile(cfg.ParamsFile, []byte(`{"order": 0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(cfg, log.New(io.Discard, "", 0)); err == nil {
		t.Error("expected an error for order 0")
	}
}
