// Package optimizer provides plain CPU optimizers with a live, adjustable
// learning rate. They exist so models built against the training harness
// have an optimizer whose rate learning-rate decay can mutate; models backed
// by an external framework bring their own.
package optimizer

import (
	"fmt"
)

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LearningRate float64
	Momentum     float64 // Momentum coefficient (0 for vanilla SGD)
	WeightDecay  float64 // L2 regularization coefficient
	Nesterov     bool    // Whether to use Nesterov momentum
}

// DefaultSGDConfig returns default SGD configuration.
func DefaultSGDConfig() SGDConfig {
	return SGDConfig{
		LearningRate: 0.01,
		Momentum:     0.0,
		WeightDecay:  0.0,
		Nesterov:     false,
	}
}

// SGD implements stochastic gradient descent with optional momentum,
// Nesterov momentum and weight decay.
type SGD struct {
	config    SGDConfig
	velocity  [][]float32
	stepCount uint64
}

// NewSGD creates an SGD optimizer.
func NewSGD(config SGDConfig) (*SGD, error) {
	if config.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", config.LearningRate)
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		return nil, fmt.Errorf("momentum must be in [0, 1), got %f", config.Momentum)
	}
	if config.Nesterov && config.Momentum == 0 {
		return nil, fmt.Errorf("nesterov momentum requires a non-zero momentum coefficient")
	}

	return &SGD{config: config}, nil
}

// LearningRate returns the current learning rate.
func (o *SGD) LearningRate() float64 {
	return o.config.LearningRate
}

// SetLearningRate updates the learning rate for subsequent steps.
func (o *SGD) SetLearningRate(lr float64) {
	o.config.LearningRate = lr
}

// StepCount returns the number of optimizer steps taken.
func (o *SGD) StepCount() uint64 {
	return o.stepCount
}

// Step applies one update in place. Params and grads are parallel slices of
// parameter/gradient buffers with matching lengths.
func (o *SGD) Step(params, grads [][]float32) error {
	if len(params) != len(grads) {
		return fmt.Errorf("parameter/gradient count mismatch: %d vs %d", len(params), len(grads))
	}

	if o.config.Momentum > 0 && o.velocity == nil {
		o.velocity = make([][]float32, len(params))
		for i := range params {
			o.velocity[i] = make([]float32, len(params[i]))
		}
	}

	lr := float32(o.config.LearningRate)
	momentum := float32(o.config.Momentum)
	weightDecay := float32(o.config.WeightDecay)

	for i := range params {
		if len(params[i]) != len(grads[i]) {
			return fmt.Errorf("parameter %d size mismatch: %d vs %d", i, len(params[i]), len(grads[i]))
		}

		for j := range params[i] {
			grad := grads[i][j]
			if weightDecay > 0 {
				grad += weightDecay * params[i][j]
			}

			if momentum > 0 {
				o.velocity[i][j] = momentum*o.velocity[i][j] + grad
				if o.config.Nesterov {
					grad += momentum * o.velocity[i][j]
				} else {
					grad = o.velocity[i][j]
				}
			}

			params[i][j] -= lr * grad
		}
	}

	o.stepCount++
	return nil
}
