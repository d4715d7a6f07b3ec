package main

// Config has the parameters of a trial run. Values come from the default
// tags, then config.toml and its includes, then the command line.
type Config struct {

	// specify include files here, and after configuration,
	// it contains list of include files added.
	Includes []string

	// name of the network type, part of every report file name
	Network string `default:"slmu"`

	// name identifying the dataset in the output directory
	Dataset string `default:"wisdm2"`

	// dataset archive, without the .npz extension
	DataFile string `default:"data_watch_40"`

	// directory holding the dataset archive
	DataDir string `default:"../data"`

	// root of the per experiment output directories
	OutRoot string `default:"../output"`

	// decompose every input channel into octave bands before training
	FreqDec bool

	// number of octave bands of the frequency decomposition
	Bands int `default:"5" min:"2"`

	// sampling rate of the input signals in Hz
	SampleRate float64 `default:"20"`

	// order of the Butterworth prototype of every band
	FilterOrder int `default:"2" min:"1"`

	// JSON parameter set from the tuning controller, defaults when empty
	ParamsFile string

	// experiment id
	Experiment string `default:"standalone"`

	// trial id
	Trial string `default:"0"`

	// sequence number of the trial within the experiment
	Sequence int

	// refresh the search space every this many trials
	SearchSpaceEvery int `default:"200"`

	// seed of the readout initialization
	Seed uint64

	// write the decomposed dataset next to the kernel
	SaveFeatures bool

	// write filterbank and kernel plots
	Plot bool

	// log extra details
	Debug bool
}

func (cfg *Config) IncludesPtr() *[]string { return &cfg.Includes }
