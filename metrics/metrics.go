// Package metrics provides the scalar metric computations a model
// implementation reports through the training harness: one value per output
// task (column), computed on CPU from prediction and target arrays. Columns
// that are degenerate for a metric (a single class present, zero variance)
// yield NaN, which the harness's monitors aggregate NaN-tolerantly.
package metrics

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tsawler/go-seqfit/tensor"
	"github.com/tsawler/go-seqfit/training"
)

// binaryThreshold converts a score to a hard class label.
const binaryThreshold = 0.5

// columns extracts per-task columns from a (N, T) tensor.
func columns(t *tensor.Tensor) ([][]float64, error) {
	if t.Dim() != 2 {
		return nil, fmt.Errorf("expected a 2D (samples, tasks) tensor, got shape %v", t.Shape)
	}

	cols := make([][]float64, t.Shape[1])
	for j := range cols {
		col, err := t.Col(j)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	return cols, nil
}

// pairedColumns extracts matching prediction/target columns, checking shape.
func pairedColumns(pred, y *tensor.Tensor) ([][]float64, [][]float64, error) {
	if pred.Dim() != 2 || y.Dim() != 2 {
		return nil, nil, fmt.Errorf("expected 2D tensors, got shapes %v and %v", pred.Shape, y.Shape)
	}
	if pred.Shape[0] != y.Shape[0] || pred.Shape[1] != y.Shape[1] {
		return nil, nil, fmt.Errorf("shape mismatch: predictions %v, targets %v", pred.Shape, y.Shape)
	}

	predCols, err := columns(pred)
	if err != nil {
		return nil, nil, err
	}
	yCols, err := columns(y)
	if err != nil {
		return nil, nil, err
	}
	return predCols, yCols, nil
}

// Accuracy returns per-task binary accuracy at a 0.5 threshold.
func Accuracy(pred, y *tensor.Tensor) ([]float64, error) {
	predCols, yCols, err := pairedColumns(pred, y)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(predCols))
	for j := range predCols {
		correct := 0
		for i := range predCols[j] {
			predicted := predCols[j][i] > binaryThreshold
			actual := yCols[j][i] > binaryThreshold
			if predicted == actual {
				correct++
			}
		}
		out[j] = float64(correct) / float64(len(predCols[j]))
	}
	return out, nil
}

// AUROC returns the per-task area under the ROC curve, computed by a
// descending-score sweep with trapezoidal integration. A column with only
// one class present yields NaN.
func AUROC(pred, y *tensor.Tensor) ([]float64, error) {
	predCols, yCols, err := pairedColumns(pred, y)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(predCols))
	for j := range predCols {
		out[j] = aurocColumn(predCols[j], yCols[j])
	}
	return out, nil
}

func aurocColumn(scores, labels []float64) float64 {
	order := sortedByScore(scores)

	totalPos, totalNeg := countClasses(labels)
	if totalPos == 0 || totalNeg == 0 {
		return math.NaN()
	}

	auc := 0.0
	tp, fp := 0, 0
	prevTPR, prevFPR := 0.0, 0.0

	for _, i := range order {
		if labels[i] > binaryThreshold {
			tp++
		} else {
			fp++
		}

		tpr := float64(tp) / float64(totalPos)
		fpr := float64(fp) / float64(totalNeg)

		auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
		prevTPR = tpr
		prevFPR = fpr
	}

	return auc
}

// AUPR returns the per-task area under the precision-recall curve, computed
// by a descending-score sweep with trapezoidal integration. A column with no
// positives yields NaN.
func AUPR(pred, y *tensor.Tensor) ([]float64, error) {
	predCols, yCols, err := pairedColumns(pred, y)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(predCols))
	for j := range predCols {
		out[j] = auprColumn(predCols[j], yCols[j])
	}
	return out, nil
}

func auprColumn(scores, labels []float64) float64 {
	order := sortedByScore(scores)

	totalPos, _ := countClasses(labels)
	if totalPos == 0 {
		return math.NaN()
	}

	area := 0.0
	tp, fp := 0, 0
	prevRecall, prevPrecision := 0.0, 1.0

	for _, i := range order {
		if labels[i] > binaryThreshold {
			tp++
		} else {
			fp++
		}

		recall := float64(tp) / float64(totalPos)
		precision := float64(tp) / float64(tp+fp)

		area += (recall - prevRecall) * (precision + prevPrecision) / 2.0
		prevRecall = recall
		prevPrecision = precision
	}

	return area
}

// PearsonR returns the per-task Pearson correlation between predictions and
// targets. Zero-variance columns yield NaN.
func PearsonR(pred, y *tensor.Tensor) ([]float64, error) {
	predCols, yCols, err := pairedColumns(pred, y)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(predCols))
	for j := range predCols {
		out[j] = stat.Correlation(predCols[j], yCols[j], nil)
	}
	return out, nil
}

// MCC returns the per-task Matthews correlation coefficient at a 0.5
// threshold. A zero denominator (any empty confusion margin) yields NaN.
func MCC(pred, y *tensor.Tensor) ([]float64, error) {
	predCols, yCols, err := pairedColumns(pred, y)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(predCols))
	for j := range predCols {
		var tp, tn, fp, fn float64
		for i := range predCols[j] {
			predicted := predCols[j][i] > binaryThreshold
			actual := yCols[j][i] > binaryThreshold
			switch {
			case predicted && actual:
				tp++
			case !predicted && !actual:
				tn++
			case predicted && !actual:
				fp++
			default:
				fn++
			}
		}

		denom := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn))
		if denom == 0 {
			out[j] = math.NaN()
			continue
		}
		out[j] = (tp*tn - fp*fn) / denom
	}
	return out, nil
}

// MSE returns the per-task mean squared error.
func MSE(pred, y *tensor.Tensor) ([]float64, error) {
	predCols, yCols, err := pairedColumns(pred, y)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(predCols))
	for j := range predCols {
		sum := 0.0
		for i := range predCols[j] {
			diff := predCols[j][i] - yCols[j][i]
			sum += diff * diff
		}
		out[j] = sum / float64(len(predCols[j]))
	}
	return out, nil
}

// Compute evaluates the named metrics over (N, T) prediction and target
// tensors, returning per-task values keyed by metric name. Loss is not a
// computable metric here: it comes from the model's own loss function.
func Compute(names []training.MetricName, pred, y *tensor.Tensor) (map[training.MetricName][]float64, error) {
	out := make(map[training.MetricName][]float64, len(names))

	for _, name := range names {
		var vals []float64
		var err error

		switch name {
		case training.Acc:
			vals, err = Accuracy(pred, y)
		case training.AUROC:
			vals, err = AUROC(pred, y)
		case training.AUPR:
			vals, err = AUPR(pred, y)
		case training.Corr:
			vals, err = PearsonR(pred, y)
		case training.MCC:
			vals, err = MCC(pred, y)
		case training.MSE:
			vals, err = MSE(pred, y)
		case training.Loss:
			return nil, fmt.Errorf("loss is computed by the model's loss function, not the metrics package")
		default:
			return nil, fmt.Errorf("unrecognized metric %q", name)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to compute %s: %w", name, err)
		}
		out[name] = vals
	}

	return out, nil
}

// sortedByScore returns sample indices ordered by descending score.
func sortedByScore(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

// countClasses counts positive and negative labels at the binary threshold.
func countClasses(labels []float64) (pos, neg int) {
	for _, label := range labels {
		if label > binaryThreshold {
			pos++
		} else {
			neg++
		}
	}
	return pos, neg
}
