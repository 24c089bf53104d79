package optimizer

import (
	"math"
	"testing"
)

func TestNewSGDValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  SGDConfig
		wantErr bool
	}{
		{"default config", DefaultSGDConfig(), false},
		{"zero learning rate", SGDConfig{LearningRate: 0}, true},
		{"negative learning rate", SGDConfig{LearningRate: -0.1}, true},
		{"momentum too large", SGDConfig{LearningRate: 0.01, Momentum: 1.0}, true},
		{"negative momentum", SGDConfig{LearningRate: 0.01, Momentum: -0.5}, true},
		{"nesterov without momentum", SGDConfig{LearningRate: 0.01, Nesterov: true}, true},
		{"nesterov with momentum", SGDConfig{LearningRate: 0.01, Momentum: 0.9, Nesterov: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSGD(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSGD() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSGDVanillaStep(t *testing.T) {
	opt, err := NewSGD(SGDConfig{LearningRate: 0.1})
	if err != nil {
		t.Fatalf("NewSGD() error = %v", err)
	}

	params := [][]float32{{1.0, -2.0}}
	grads := [][]float32{{0.5, -1.0}}
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	want := []float32{0.95, -1.9}
	for i, w := range want {
		if math.Abs(float64(params[0][i]-w)) > 1e-6 {
			t.Errorf("params[0][%d] = %f, want %f", i, params[0][i], w)
		}
	}
	if opt.StepCount() != 1 {
		t.Errorf("StepCount() = %d, want 1", opt.StepCount())
	}
}

func TestSGDMomentumStep(t *testing.T) {
	opt, err := NewSGD(SGDConfig{LearningRate: 0.1, Momentum: 0.9})
	if err != nil {
		t.Fatalf("NewSGD() error = %v", err)
	}

	params := [][]float32{{1.0}}
	grads := [][]float32{{0.5}}

	// Step 1: v = 0.5, p = 1 - 0.1*0.5 = 0.95
	// Step 2: v = 0.9*0.5 + 0.5 = 0.95, p = 0.95 - 0.1*0.95 = 0.855
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if math.Abs(float64(params[0][0])-0.855) > 1e-6 {
		t.Errorf("params[0][0] = %f, want 0.855", params[0][0])
	}
}

func TestSGDNesterovStep(t *testing.T) {
	opt, err := NewSGD(SGDConfig{LearningRate: 0.1, Momentum: 0.9, Nesterov: true})
	if err != nil {
		t.Fatalf("NewSGD() error = %v", err)
	}

	params := [][]float32{{1.0}}
	grads := [][]float32{{0.5}}

	// v = 0.5, effective grad = 0.5 + 0.9*0.5 = 0.95, p = 1 - 0.095 = 0.905
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if math.Abs(float64(params[0][0])-0.905) > 1e-6 {
		t.Errorf("params[0][0] = %f, want 0.905", params[0][0])
	}
}

func TestSGDWeightDecay(t *testing.T) {
	opt, err := NewSGD(SGDConfig{LearningRate: 0.1, WeightDecay: 0.1})
	if err != nil {
		t.Fatalf("NewSGD() error = %v", err)
	}

	params := [][]float32{{1.0}}
	grads := [][]float32{{0.5}}

	// grad = 0.5 + 0.1*1.0 = 0.6, p = 1 - 0.06 = 0.94
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if math.Abs(float64(params[0][0])-0.94) > 1e-6 {
		t.Errorf("params[0][0] = %f, want 0.94", params[0][0])
	}
}

func TestSGDSetLearningRate(t *testing.T) {
	opt, err := NewSGD(DefaultSGDConfig())
	if err != nil {
		t.Fatalf("NewSGD() error = %v", err)
	}

	opt.SetLearningRate(0.5)
	if opt.LearningRate() != 0.5 {
		t.Errorf("LearningRate() = %f, want 0.5", opt.LearningRate())
	}

	params := [][]float32{{1.0}}
	grads := [][]float32{{1.0}}
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if math.Abs(float64(params[0][0])-0.5) > 1e-6 {
		t.Errorf("params[0][0] = %f, want 0.5", params[0][0])
	}
}

func TestSGDSizeMismatch(t *testing.T) {
	opt, err := NewSGD(DefaultSGDConfig())
	if err != nil {
		t.Fatalf("NewSGD() error = %v", err)
	}

	if err := opt.Step([][]float32{{1, 2}}, [][]float32{{1, 2}, {3}}); err == nil {
		t.Error("Step() with mismatched buffer counts should fail")
	}
	if err := opt.Step([][]float32{{1, 2}}, [][]float32{{1}}); err == nil {
		t.Error("Step() with mismatched buffer sizes should fail")
	}
}

func TestNewAdamValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  AdamConfig
		wantErr bool
	}{
		{"default config", DefaultAdamConfig(), false},
		{"zero learning rate", AdamConfig{Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-8}, true},
		{"beta1 too large", AdamConfig{LearningRate: 0.001, Beta1: 1.0, Beta2: 0.999, Epsilon: 1e-8}, true},
		{"beta2 too large", AdamConfig{LearningRate: 0.001, Beta1: 0.9, Beta2: 1.0, Epsilon: 1e-8}, true},
		{"zero epsilon", AdamConfig{LearningRate: 0.001, Beta1: 0.9, Beta2: 0.999}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdam(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewAdam() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAdamFirstStep(t *testing.T) {
	opt, err := NewAdam(DefaultAdamConfig())
	if err != nil {
		t.Fatalf("NewAdam() error = %v", err)
	}

	params := [][]float32{{1.0, -1.0}}
	grads := [][]float32{{0.5, -0.25}}
	if err := opt.Step(params, grads); err != nil {
		t.Fatalf("Step() error = %v", err)
	}

	// After bias correction the first update is lr * g/|g|, so every
	// parameter moves by the learning rate against its gradient sign.
	want := []float32{0.999, -0.999}
	for i, w := range want {
		if math.Abs(float64(params[0][i]-w)) > 1e-5 {
			t.Errorf("params[0][%d] = %f, want %f", i, params[0][i], w)
		}
	}
	if opt.StepCount() != 1 {
		t.Errorf("StepCount() = %d, want 1", opt.StepCount())
	}
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	config := DefaultAdamConfig()
	config.LearningRate = 0.1
	opt, err := NewAdam(config)
	if err != nil {
		t.Fatalf("NewAdam() error = %v", err)
	}

	// Minimize f(x) = x^2 from x = 3.
	params := [][]float32{{3.0}}
	for i := 0; i < 200; i++ {
		grads := [][]float32{{2 * params[0][0]}}
		if err := opt.Step(params, grads); err != nil {
			t.Fatalf("Step() error = %v", err)
		}
	}
	// Adam keeps taking steps of roughly the learning rate near the
	// minimum, so only require it to end up in the neighborhood.
	if math.Abs(float64(params[0][0])) > 0.5 {
		t.Errorf("after 200 steps x = %f, want near 0", params[0][0])
	}
}

func TestAdamSetLearningRate(t *testing.T) {
	opt, err := NewAdam(DefaultAdamConfig())
	if err != nil {
		t.Fatalf("NewAdam() error = %v", err)
	}

	opt.SetLearningRate(0.01)
	if opt.LearningRate() != 0.01 {
		t.Errorf("LearningRate() = %f, want 0.01", opt.LearningRate())
	}
}
