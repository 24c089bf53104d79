package training

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/guptarohit/asciigraph"
)

// SplitHistory is the serializable record of one split's metric series.
type SplitHistory struct {
	Metrics map[string][]float64 `json:"metrics"`
	Stds    map[string][]float64 `json:"stds,omitempty"`
}

// History is a point-in-time snapshot of a trainer's metric store, suitable
// for JSON export and offline inspection of training curves.
type History struct {
	Train SplitHistory `json:"train"`
	Valid SplitHistory `json:"valid"`
	Test  SplitHistory `json:"test"`
}

// NewHistory snapshots a metric store.
func NewHistory(tm *TrainMetrics) *History {
	return &History{
		Train: snapshotSplit(tm.Train),
		Valid: snapshotSplit(tm.Valid),
		Test:  snapshotSplit(tm.Test),
	}
}

func snapshotSplit(m *MonitorMetrics) SplitHistory {
	sh := SplitHistory{
		Metrics: make(map[string][]float64),
		Stds:    make(map[string][]float64),
	}

	for _, name := range m.Names() {
		vals, _ := m.History(name)
		sh.Metrics[string(name)] = append([]float64{}, vals...)
		if name.HasStd() {
			stds, _ := m.StdHistory(name)
			sh.Stds[string(name)] = append([]float64{}, stds...)
		}
	}

	return sh
}

// Save writes the history as indented JSON.
func (h *History) Save(path string) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	return nil
}

// LoadHistory reads a history file written by Save.
func LoadHistory(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	return &h, nil
}

// split returns the stored history for a split identifier.
func (h *History) split(split Split) (*SplitHistory, error) {
	switch split {
	case SplitTrain:
		return &h.Train, nil
	case SplitValid:
		return &h.Valid, nil
	case SplitTest:
		return &h.Test, nil
	default:
		return nil, fmt.Errorf("unknown split %q: valid splits are %v", split, Splits)
	}
}

// Curve returns the series for one (split, metric) pair.
func (h *History) Curve(split Split, metric MetricName) ([]float64, error) {
	sh, err := h.split(split)
	if err != nil {
		return nil, err
	}

	vals, ok := sh.Metrics[string(metric)]
	if !ok {
		return nil, fmt.Errorf("metric %q not recorded for split %q", metric, split)
	}
	return vals, nil
}

// RenderCurve draws one metric series as an ASCII line chart for quick
// terminal inspection.
func (h *History) RenderCurve(split Split, metric MetricName, height int) (string, error) {
	vals, err := h.Curve(split, metric)
	if err != nil {
		return "", err
	}
	if len(vals) < 2 {
		return "", fmt.Errorf("need at least 2 recorded epochs to plot, got %d", len(vals))
	}
	if height <= 0 {
		height = 10
	}

	chart := asciigraph.Plot(vals,
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("%s %s", split, metric)),
	)
	return chart, nil
}
