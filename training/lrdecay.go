package training

import (
	"fmt"
	"io"
	"math"
	"os"
)

// LRDecay multiplies an optimizer's learning rate by a fixed factor after a
// patience window of non-improvement in a monitored metric. Decay triggers on
// sustained stagnation rather than a single bad epoch; the counter resets
// both on improvement and on firing, so decay can repeat every patience
// stagnant epochs. There is deliberately no floor on the learning rate and
// no cap on the number of decays.
type LRDecay struct {
	optimizer Optimizer
	decayRate float64
	patience  int
	metric    MetricName

	best    float64
	sign    float64
	counter int
	out     io.Writer
}

// NewLRDecay creates a decay tracker bound to a live optimizer. For the loss
// metric, improvement means strictly lower; for any other metric, strictly
// higher.
func NewLRDecay(optimizer Optimizer, decayRate float64, patience int, metric MetricName) *LRDecay {
	d := &LRDecay{
		optimizer: optimizer,
		decayRate: decayRate,
		patience:  patience,
		metric:    metric,
		out:       os.Stdout,
	}

	if metric == Loss {
		d.best = math.Inf(1)
		d.sign = 1
	} else {
		d.best = math.Inf(-1)
		d.sign = -1
	}

	return d
}

// SetOutput redirects the decay notices.
func (d *LRDecay) SetOutput(w io.Writer) {
	d.out = w
}

// Metric returns the monitored metric name.
func (d *LRDecay) Metric() MetricName {
	return d.metric
}

// stagnated records one observation and reports whether the patience window
// has been exhausted. A strict improvement resets the counter; hitting
// patience also resets it so the window restarts after each decay.
func (d *LRDecay) stagnated(val float64) bool {
	if d.sign*val < d.sign*d.best {
		d.best = val
		d.counter = 0
		return false
	}

	d.counter++
	if d.counter >= d.patience {
		d.counter = 0
		return true
	}
	return false
}

// Check records a new metric observation and, when the patience window is
// exhausted, applies the decayed learning rate to the live optimizer and
// prints a notice of the new rate.
func (d *LRDecay) Check(val float64) {
	if !d.stagnated(val) {
		return
	}

	lr := d.optimizer.LearningRate() * d.decayRate
	d.optimizer.SetLearningRate(lr)
	fmt.Fprintf(d.out, "  Decaying learning rate to %.6f\n", lr)
}
