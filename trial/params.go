// Package trial runs one hyperparameter tuning trial of a memory cell
// classifier: it parses the trial parameters handed out by the tuning
// controller, drives an external Trainer epoch by epoch, keeps the best
// checkpoint and writes the report files shared by all trials of an
// experiment.
package trial

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned for trial parameters outside their domain.
var ErrInvalidParams = errors.New("trial: invalid parameters")

// Params is the parameter set of one trial. Only Order, Theta and Tau shape
// the memory kernel, the rest is handed through to the Trainer.
type Params struct {
	Order      int     `json:"order"`
	Theta      float64 `json:"theta"`
	Tau        float64 `json:"tau"`
	SynapseAll float64 `json:"synapse_all"`
	SynapseIn  float64 `json:"synapse_in"`
	SynapseOut float64 `json:"synapse_out"`
	MaxRate    float64 `json:"max_rate"`
	NNeurons   int     `json:"n_neurons"`
	Minibatch  int     `json:"minibatch"`
	LR         float64 `json:"lr"`
}

// DefaultParams returns a parameter set for standalone runs.
func DefaultParams() Params {
	return Params{
		Order:      4,
		Theta:      1,
		Tau:        0.1,
		SynapseAll: 0,
		SynapseIn:  0,
		SynapseOut: 0.01,
		MaxRate:    250,
		NNeurons:   10,
		Minibatch:  32,
		LR:         0.001,
	}
}

// rawParams accepts integral values sent as floats by the controller.
type rawParams struct {
	Order      *float64 `json:"order"`
	Theta      *float64 `json:"theta"`
	Tau        *float64 `json:"tau"`
	SynapseAll *float64 `json:"synapse_all"`
	SynapseIn  *float64 `json:"synapse_in"`
	SynapseOut *float64 `json:"synapse_out"`
	MaxRate    *float64 `json:"max_rate"`
	NNeurons   *float64 `json:"n_neurons"`
	Minibatch  *float64 `json:"minibatch"`
	LR         *float64 `json:"lr"`
}

// ParamsFromJSON decodes a parameter set on top of DefaultParams and
// validates it. Integer parameters may arrive as floats but must be
// integral.
func ParamsFromJSON(data []byte) (Params, error) {
	var raw rawParams
	if err := json.Unmarshal(data, &raw); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	p := DefaultParams()
	floatFields := []struct {
		src *float64
		dst *float64
	}{
		{raw.Theta, &p.Theta},
		{raw.Tau, &p.Tau},
		{raw.SynapseAll, &p.SynapseAll},
		{raw.SynapseIn, &p.SynapseIn},
		{raw.SynapseOut, &p.SynapseOut},
		{raw.MaxRate, &p.MaxRate},
		{raw.LR, &p.LR},
	}
	for _, field := range floatFields {
		if field.src != nil {
			*field.dst = *field.src
		}
	}
	intFields := []struct {
		name string
		src  *float64
		dst  *int
	}{
		{"order", raw.Order, &p.Order},
		{"n_neurons", raw.NNeurons, &p.NNeurons},
		{"minibatch", raw.Minibatch, &p.Minibatch},
	}
	for _, field := range intFields {
		if field.src == nil {
			continue
		}
		if *field.src != math.Trunc(*field.src) || math.Abs(*field.src) > math.MaxInt32 {
			return Params{}, fmt.Errorf("%w: %s = %v is not an integer", ErrInvalidParams, field.name, *field.src)
		}
		*field.dst = int(*field.src)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks the domain of every parameter.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"order", float64(p.Order)},
		{"theta", p.Theta},
		{"tau", p.Tau},
		{"max_rate", p.MaxRate},
		{"n_neurons", float64(p.NNeurons)},
		{"minibatch", float64(p.Minibatch)},
		{"lr", p.LR},
	}
	for _, check := range positive {
		if !(check.value > 0) || math.IsInf(check.value, 0) {
			return fmt.Errorf("%w: %s = %v must be positive", ErrInvalidParams, check.name, check.value)
		}
	}
	nonNegative := []struct {
		name  string
		value float64
	}{
		{"synapse_all", p.SynapseAll},
		{"synapse_in", p.SynapseIn},
		{"synapse_out", p.SynapseOut},
	}
	for _, check := range nonNegative {
		if !(check.value >= 0) || math.IsInf(check.value, 0) {
			return fmt.Errorf("%w: %s = %v must be non-negative", ErrInvalidParams, check.name, check.value)
		}
	}
	return nil
}
