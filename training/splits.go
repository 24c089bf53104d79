package training

import (
	"fmt"
	"io"
)

// Split identifies one of the three data partitions tracked by the harness.
type Split string

const (
	SplitTrain Split = "train"
	SplitValid Split = "valid"
	SplitTest  Split = "test"
)

// Splits lists the recognized split identifiers.
var Splits = []Split{SplitTrain, SplitValid, SplitTest}

// TrainMetrics routes metric updates and printing to three independent
// per-split monitors. There is no cross-split coupling.
type TrainMetrics struct {
	Train *MonitorMetrics
	Valid *MonitorMetrics
	Test  *MonitorMetrics
}

// NewTrainMetrics creates a metric store with one monitor per split, each
// tracking the same metric names.
func NewTrainMetrics(names []MetricName) (*TrainMetrics, error) {
	train, err := NewMonitorMetrics(names)
	if err != nil {
		return nil, fmt.Errorf("failed to create train monitor: %w", err)
	}
	valid, err := NewMonitorMetrics(names)
	if err != nil {
		return nil, fmt.Errorf("failed to create valid monitor: %w", err)
	}
	test, err := NewMonitorMetrics(names)
	if err != nil {
		return nil, fmt.Errorf("failed to create test monitor: %w", err)
	}

	return &TrainMetrics{Train: train, Valid: valid, Test: test}, nil
}

// Monitor returns the monitor for a split. An unrecognized split is an
// explicit error rather than a silent no-op, so mistyped split names surface
// immediately.
func (tm *TrainMetrics) Monitor(split Split) (*MonitorMetrics, error) {
	switch split {
	case SplitTrain:
		return tm.Train, nil
	case SplitValid:
		return tm.Valid, nil
	case SplitTest:
		return tm.Test, nil
	default:
		return nil, fmt.Errorf("unknown split %q: valid splits are %v", split, Splits)
	}
}

// Update appends metric values to the monitor for the named split.
func (tm *TrainMetrics) Update(split Split, values map[MetricName][]float64) error {
	monitor, err := tm.Monitor(split)
	if err != nil {
		return err
	}
	return monitor.Update(values)
}

// Print writes the latest metrics of the named split to w.
func (tm *TrainMetrics) Print(w io.Writer, split Split) error {
	monitor, err := tm.Monitor(split)
	if err != nil {
		return err
	}
	monitor.Print(w, string(split))
	return nil
}
