package training

import (
	"fmt"

	"github.com/tsawler/go-seqfit/tensor"
)

// FitLRDecay runs the full training loop: for up to cfg.Epochs epochs, one
// training epoch, a validation evaluation, a learning-rate decay check on
// the latest validation value of the decay metric, then the early-stopping
// check, breaking on the first stop signal. There is no checkpointing, no
// resumption and no parallelism; any model error halts the loop.
func FitLRDecay(model Model, xTrain, yTrain, xValid, yValid *tensor.Tensor, cfg FitConfig) (*Trainer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fit config: %w", err)
	}

	trainer, err := NewTrainer(model)
	if err != nil {
		return nil, err
	}

	trainset, err := NewSliceDataset(xTrain, yTrain)
	if err != nil {
		return nil, fmt.Errorf("failed to create training dataset: %w", err)
	}

	trainer.SetLRDecay(cfg.LRDecayRate, cfg.LRPatience, cfg.LRMetric)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		fmt.Fprintf(trainer.out, "\rEpoch %d \n", epoch+1)

		if _, _, _, err := trainer.TrainEpoch(trainset, TrainOptions{
			BatchSize: cfg.BatchSize,
			Shuffle:   cfg.Shuffle,
			Verbose:   cfg.Verbose,
		}); err != nil {
			return trainer, fmt.Errorf("epoch %d failed: %w", epoch+1, err)
		}

		if err := trainer.Evaluate(SplitValid, xValid, yValid, cfg.BatchSize, cfg.Verbose); err != nil {
			return trainer, fmt.Errorf("validation at epoch %d failed: %w", epoch+1, err)
		}

		val, err := trainer.Metrics.Valid.Latest(cfg.LRMetric)
		if err != nil {
			return trainer, err
		}
		if err := trainer.CheckLRDecay(val); err != nil {
			return trainer, err
		}

		stop, err := trainer.EarlyStopping(cfg.ESMetric, cfg.ESPatience)
		if err != nil {
			return trainer, err
		}
		if stop {
			fmt.Fprintln(trainer.out, "Patience ran out... Early stopping.")
			break
		}
	}

	return trainer, nil
}
