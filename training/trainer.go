package training

import (
	"fmt"
	"io"
	"os"

	"github.com/tsawler/go-seqfit/tensor"
)

// Optimizer is the slice of the external optimizer the harness needs: a live,
// adjustable scalar learning rate. Gradient application stays inside the
// model's training step.
type Optimizer interface {
	LearningRate() float64
	SetLearningRate(lr float64)
}

// EvalResult carries the outcome of a full-dataset evaluation pass: the mean
// loss plus, per declared metric, one value per output task. The per-task
// values feed the monitor's mean/std aggregation.
type EvalResult struct {
	Loss    float64
	Metrics map[MetricName][]float64
}

// Model is the external collaborator contract. The harness never computes
// forward passes, losses or gradients itself: TrainStep performs one opaque
// forward+loss+backward+update on a batch, Predict and Evaluate are
// batch-mode inference entry points, and Optimizer exposes the adjustable
// learning rate for decay.
type Model interface {
	TrainStep(x, y *tensor.Tensor) (loss float64, pred *tensor.Tensor, err error)
	Predict(x *tensor.Tensor, batchSize int) (*tensor.Tensor, error)
	Evaluate(x, y *tensor.Tensor, batchSize int) (*EvalResult, error)
	Optimizer() Optimizer
	MetricNames() []MetricName
}

// Trainer owns the epoch loop around an external model: per-split metric
// histories, optional learning-rate decay, and the early-stopping check. All
// state is mutated by the calling goroutine only.
type Trainer struct {
	model   Model
	Metrics *TrainMetrics
	lrDecay *LRDecay
	out     io.Writer
}

// NewTrainer creates a trainer around a model. The metric stores are sized by
// the model's declared metric names plus loss and start empty.
func NewTrainer(model Model) (*Trainer, error) {
	names := []MetricName{Loss}
	for _, name := range model.MetricNames() {
		if name == Loss {
			continue
		}
		names = append(names, name)
	}

	metrics, err := NewTrainMetrics(names)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric store: %w", err)
	}

	return &Trainer{
		model:   model,
		Metrics: metrics,
		out:     os.Stdout,
	}, nil
}

// SetOutput redirects all console output (progress bars, metric summaries,
// decay notices).
func (t *Trainer) SetOutput(w io.Writer) {
	t.out = w
	if t.lrDecay != nil {
		t.lrDecay.SetOutput(w)
	}
}

// TrainOptions configures one training epoch.
type TrainOptions struct {
	BatchSize int  // Defaults to 128
	Shuffle   bool // Streaming shuffle with buffer = batch size
	Verbose   bool // Render a per-batch progress bar
}

func (o TrainOptions) withDefaults() TrainOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 128
	}
	return o
}

// TrainEpoch runs one pass over the dataset: every batch exactly once in
// loader order, one opaque model training step per batch, a running mean of
// batch losses, and per-batch predictions and targets concatenated in batch
// order for the caller. Any model error propagates immediately.
func (t *Trainer) TrainEpoch(ds Dataset, opts TrainOptions) (float64, *tensor.Tensor, *tensor.Tensor, error) {
	opts = opts.withDefaults()

	loader, err := NewDataLoader(ds, opts.BatchSize, opts.Shuffle)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to create data loader: %w", err)
	}

	numBatches := loader.Len()
	progress := NewProgressBar(t.out, numBatches)

	runningLoss := 0.0
	var predBatches []*tensor.Tensor
	var targetBatches []*tensor.Tensor

	for i := 0; loader.HasNext(); i++ {
		batch, err := loader.Next()
		if err != nil {
			return 0, nil, nil, err
		}
		if batch == nil {
			break
		}

		loss, pred, err := t.model.TrainStep(batch.X, batch.Y)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("training step failed at batch %d: %w", i, err)
		}

		runningLoss += loss
		predBatches = append(predBatches, pred)
		targetBatches = append(targetBatches, batch.Y)

		if opts.Verbose {
			progress.Update(i+1, []MetricValue{{Name: Loss, Value: runningLoss / float64(i+1)}})
		}
	}

	preds, err := tensor.Concat(predBatches)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to concatenate predictions: %w", err)
	}
	targets, err := tensor.Concat(targetBatches)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed to concatenate targets: %w", err)
	}

	meanLoss := runningLoss / float64(numBatches)
	return meanLoss, preds, targets, nil
}

// Predict runs the model's batch-mode inference over the full dataset.
func (t *Trainer) Predict(x *tensor.Tensor, batchSize int) (*tensor.Tensor, error) {
	return t.model.Predict(x, batchSize)
}

// Evaluate runs the model's evaluation pass over a full dataset, appends loss
// and every configured metric to the split's history, and optionally prints
// the latest values.
func (t *Trainer) Evaluate(split Split, x, y *tensor.Tensor, batchSize int, verbose bool) error {
	if batchSize <= 0 {
		batchSize = 128
	}

	result, err := t.model.Evaluate(x, y, batchSize)
	if err != nil {
		return fmt.Errorf("model evaluation failed: %w", err)
	}

	values := map[MetricName][]float64{
		Loss: {result.Loss},
	}
	for _, name := range t.model.MetricNames() {
		if name == Loss {
			continue
		}
		vals, ok := result.Metrics[name]
		if !ok {
			return fmt.Errorf("model evaluation result missing metric %q", name)
		}
		values[name] = vals
	}

	if err := t.Metrics.Update(split, values); err != nil {
		return err
	}

	if verbose {
		if err := t.Metrics.Print(t.out, split); err != nil {
			return err
		}
	}

	return nil
}

// EarlyStopping reports whether the best validation value of a metric is
// more than patience epochs old. The best index is the earliest occurrence
// of the minimum for loss and of the maximum for any other metric. The check
// is a stateless re-derivation from history; the caller owns the decision to
// stop.
func (t *Trainer) EarlyStopping(metric MetricName, patience int) (bool, error) {
	vals, err := t.Metrics.Valid.History(metric)
	if err != nil {
		return false, err
	}
	if len(vals) == 0 {
		return false, fmt.Errorf("metric %q has no recorded validation values", metric)
	}

	best := 0
	for i, v := range vals {
		if metric == Loss {
			if v < vals[best] {
				best = i
			}
		} else {
			if v > vals[best] {
				best = i
			}
		}
	}

	return patience-(len(vals)-best-1) <= 0, nil
}

// PrintMetrics writes the latest metrics of a split to the trainer's output.
func (t *Trainer) PrintMetrics(split Split) error {
	return t.Metrics.Print(t.out, split)
}

// SetLRDecay configures learning-rate decay against the model's optimizer.
func (t *Trainer) SetLRDecay(decayRate float64, patience int, metric MetricName) {
	t.lrDecay = NewLRDecay(t.model.Optimizer(), decayRate, patience, metric)
	t.lrDecay.SetOutput(t.out)
}

// CheckLRDecay feeds one metric observation to the decay tracker.
func (t *Trainer) CheckLRDecay(val float64) error {
	if t.lrDecay == nil {
		return fmt.Errorf("learning rate decay not configured: call SetLRDecay first")
	}
	t.lrDecay.Check(val)
	return nil
}
