package trial

import "math"

// Checkpointer tracks the running maximum of a score. A score equal to the
// maximum counts as an improvement so the latest of equally good
// checkpoints is kept.
type Checkpointer struct {
	best float64
}

// NewCheckpointer returns a Checkpointer with no score seen yet.
func NewCheckpointer() *Checkpointer {
	return &Checkpointer{best: math.Inf(-1)}
}

// NewCheckpointerFromFile seeds the running maximum with the values already
// recorded in the one-value-per-line file at path.
func NewCheckpointerFromFile(path string) (*Checkpointer, error) {
	values, err := readValues(path)
	if err != nil {
		return nil, err
	}
	c := NewCheckpointer()
	for _, value := range values {
		c.Observe(value)
	}
	return c, nil
}

// Observe records score and reports whether it is at least the best so far.
func (c *Checkpointer) Observe(score float64) bool {
	if score >= c.best {
		c.best = score
		return true
	}
	return false
}

// Best returns the running maximum, -Inf before the first score.
func (c *Checkpointer) Best() float64 {
	return c.best
}
