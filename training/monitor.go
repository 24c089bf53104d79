package training

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MetricName identifies a scalar evaluation metric tracked by the harness.
type MetricName string

const (
	Loss  MetricName = "loss"
	Acc   MetricName = "acc"
	AUROC MetricName = "auroc"
	AUPR  MetricName = "aupr"
	Corr  MetricName = "corr"
	MCC   MetricName = "mcc"
	MSE   MetricName = "mse"
)

// RecognizedMetrics lists every metric identifier the harness accepts, in
// display order.
var RecognizedMetrics = []MetricName{Loss, Acc, AUROC, AUPR, Corr, MCC, MSE}

// Valid reports whether the metric name is one of the recognized identifiers.
func (m MetricName) Valid() bool {
	for _, known := range RecognizedMetrics {
		if m == known {
			return true
		}
	}
	return false
}

// HasStd reports whether the metric carries a derived standard-deviation
// series. Every metric except loss does: loss is already a single scalar per
// epoch, while the others are aggregated from per-task values.
func (m MetricName) HasStd() bool {
	return m != Loss
}

// MonitorMetrics keeps per-epoch histories for one data split. Each tracked
// metric has an ordered value series; non-loss metrics additionally have a
// standard-deviation series recording the spread of the per-task values that
// produced each epoch's mean.
type MonitorMetrics struct {
	names  []MetricName
	values map[MetricName][]float64
	stds   map[MetricName][]float64
}

// NewMonitorMetrics creates a monitor for the given metric names. Names must
// be recognized identifiers; duplicates are collapsed.
func NewMonitorMetrics(names []MetricName) (*MonitorMetrics, error) {
	m := &MonitorMetrics{
		values: make(map[MetricName][]float64),
		stds:   make(map[MetricName][]float64),
	}

	for _, name := range names {
		if !name.Valid() {
			return nil, fmt.Errorf("unrecognized metric name %q", name)
		}
		if _, exists := m.values[name]; exists {
			continue
		}
		m.names = append(m.names, name)
		m.values[name] = []float64{}
		if name.HasStd() {
			m.stds[name] = []float64{}
		}
	}

	return m, nil
}

// Update appends, for each provided metric, the NaN-tolerant mean of the
// supplied values to its history and, for non-loss metrics, the NaN-tolerant
// standard deviation to the derived std series. An unknown metric name is an
// error and nothing is appended.
func (m *MonitorMetrics) Update(values map[MetricName][]float64) error {
	for name := range values {
		if _, ok := m.values[name]; !ok {
			return fmt.Errorf("unknown metric %q: monitor tracks %v", name, m.names)
		}
	}

	// Iterate in declaration order so append order is deterministic.
	for _, name := range m.names {
		vals, ok := values[name]
		if !ok {
			continue
		}
		m.values[name] = append(m.values[name], nanMean(vals))
		if name.HasStd() {
			m.stds[name] = append(m.stds[name], nanStd(vals))
		}
	}

	return nil
}

// Names returns the tracked metric names in declaration order.
func (m *MonitorMetrics) Names() []MetricName {
	return append([]MetricName{}, m.names...)
}

// History returns the recorded value series for a metric.
func (m *MonitorMetrics) History(name MetricName) ([]float64, error) {
	vals, ok := m.values[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q: monitor tracks %v", name, m.names)
	}
	return vals, nil
}

// StdHistory returns the recorded standard-deviation series for a metric.
func (m *MonitorMetrics) StdHistory(name MetricName) ([]float64, error) {
	stds, ok := m.stds[name]
	if !ok {
		return nil, fmt.Errorf("metric %q has no standard-deviation series", name)
	}
	return stds, nil
}

// Latest returns the most recent value of a metric.
func (m *MonitorMetrics) Latest(name MetricName) (float64, error) {
	vals, err := m.History(name)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("metric %q has no recorded values", name)
	}
	return vals[len(vals)-1], nil
}

// LatestStd returns the most recent standard deviation of a metric.
func (m *MonitorMetrics) LatestStd(name MetricName) (float64, error) {
	stds, err := m.StdHistory(name)
	if err != nil {
		return 0, err
	}
	if len(stds) == 0 {
		return 0, fmt.Errorf("metric %q has no recorded values", name)
	}
	return stds[len(stds)-1], nil
}

// Len returns the number of recorded epochs for a metric.
func (m *MonitorMetrics) Len(name MetricName) (int, error) {
	vals, err := m.History(name)
	if err != nil {
		return 0, err
	}
	return len(vals), nil
}

// Print writes the most recent value of every tracked metric to w, one line
// per metric, formatted to 5 decimal places. Metrics with a std series show
// mean+/-std.
func (m *MonitorMetrics) Print(w io.Writer, label string) {
	for _, name := range m.names {
		vals := m.values[name]
		if len(vals) == 0 {
			continue
		}
		if name.HasStd() {
			stds := m.stds[name]
			fmt.Fprintf(w, "  %s %s:\t%.5f+/-%.5f\n", label, name, vals[len(vals)-1], stds[len(stds)-1])
		} else {
			fmt.Fprintf(w, "  %s %s:\t%.5f\n", label, name, vals[len(vals)-1])
		}
	}
}

// nanMean returns the mean of the non-NaN entries, or NaN when every entry
// is NaN.
func nanMean(values []float64) float64 {
	finite := dropNaN(values)
	if len(finite) == 0 {
		return math.NaN()
	}
	return stat.Mean(finite, nil)
}

// nanStd returns the population standard deviation of the non-NaN entries,
// or NaN when every entry is NaN.
func nanStd(values []float64) float64 {
	finite := dropNaN(values)
	if len(finite) == 0 {
		return math.NaN()
	}
	if len(finite) == 1 {
		return 0
	}
	return stat.PopStdDev(finite, nil)
}

func dropNaN(values []float64) []float64 {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	return finite
}
