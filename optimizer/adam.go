package optimizer

import (
	"fmt"
	"math"
)

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LearningRate float64
	Beta1        float64 // Momentum decay (typically 0.9)
	Beta2        float64 // Variance decay (typically 0.999)
	Epsilon      float64 // Small constant to prevent division by zero
	WeightDecay  float64 // L2 regularization coefficient
}

// DefaultAdamConfig returns default Adam configuration.
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{
		LearningRate: 0.001,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		WeightDecay:  0.0,
	}
}

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam struct {
	config    AdamConfig
	momentum  [][]float64
	variance  [][]float64
	stepCount uint64
}

// NewAdam creates an Adam optimizer.
func NewAdam(config AdamConfig) (*Adam, error) {
	if config.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %f", config.LearningRate)
	}
	if config.Beta1 < 0 || config.Beta1 >= 1 {
		return nil, fmt.Errorf("beta1 must be in [0, 1), got %f", config.Beta1)
	}
	if config.Beta2 < 0 || config.Beta2 >= 1 {
		return nil, fmt.Errorf("beta2 must be in [0, 1), got %f", config.Beta2)
	}
	if config.Epsilon <= 0 {
		return nil, fmt.Errorf("epsilon must be positive, got %g", config.Epsilon)
	}

	return &Adam{config: config}, nil
}

// LearningRate returns the current learning rate.
func (o *Adam) LearningRate() float64 {
	return o.config.LearningRate
}

// SetLearningRate updates the learning rate for subsequent steps.
func (o *Adam) SetLearningRate(lr float64) {
	o.config.LearningRate = lr
}

// StepCount returns the number of optimizer steps taken.
func (o *Adam) StepCount() uint64 {
	return o.stepCount
}

// Step applies one bias-corrected Adam update in place.
func (o *Adam) Step(params, grads [][]float32) error {
	if len(params) != len(grads) {
		return fmt.Errorf("parameter/gradient count mismatch: %d vs %d", len(params), len(grads))
	}

	if o.momentum == nil {
		o.momentum = make([][]float64, len(params))
		o.variance = make([][]float64, len(params))
		for i := range params {
			o.momentum[i] = make([]float64, len(params[i]))
			o.variance[i] = make([]float64, len(params[i]))
		}
	}

	o.stepCount++
	beta1 := o.config.Beta1
	beta2 := o.config.Beta2
	biasCorr1 := 1 - math.Pow(beta1, float64(o.stepCount))
	biasCorr2 := 1 - math.Pow(beta2, float64(o.stepCount))

	for i := range params {
		if len(params[i]) != len(grads[i]) {
			return fmt.Errorf("parameter %d size mismatch: %d vs %d", i, len(params[i]), len(grads[i]))
		}

		for j := range params[i] {
			grad := float64(grads[i][j])
			if o.config.WeightDecay > 0 {
				grad += o.config.WeightDecay * float64(params[i][j])
			}

			o.momentum[i][j] = beta1*o.momentum[i][j] + (1-beta1)*grad
			o.variance[i][j] = beta2*o.variance[i][j] + (1-beta2)*grad*grad

			mHat := o.momentum[i][j] / biasCorr1
			vHat := o.variance[i][j] / biasCorr2

			params[i][j] -= float32(o.config.LearningRate * mHat / (math.Sqrt(vHat) + o.config.Epsilon))
		}
	}

	return nil
}
