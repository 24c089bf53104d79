package logo

import (
	"fmt"
	"sort"
	"time"

	"github.com/tsawler/go-seqfit/training"
)

// PlotType identifies the kind of figure the sidecar service should render.
type PlotType string

const (
	AttributionMap PlotType = "attribution_map"
	FilterGrid     PlotType = "filter_logos"
	TrainingCurves PlotType = "training_curves"
)

// PlotData is the universal JSON payload for the sidecar plotting service.
type PlotData struct {
	PlotType  PlotType  `json:"plot_type"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	ModelName string    `json:"model_name"`

	// Data series - flexible structure for different plot types
	Series []SeriesData `json:"series"`

	Config PlotConfig `json:"config"`
}

// SeriesData represents a single data series in a plot.
type SeriesData struct {
	Name  string                 `json:"name"`
	Type  string                 `json:"type"` // "line", "logo", "bar"
	Data  []DataPoint            `json:"data"`
	Style map[string]interface{} `json:"style,omitempty"`
}

// DataPoint represents a single data point - flexible for different plot types.
type DataPoint struct {
	X     interface{} `json:"x"`
	Y     interface{} `json:"y"`
	Label string      `json:"label,omitempty"` // base letter for logo points
}

// PlotConfig contains plot-specific configuration.
type PlotConfig struct {
	XAxisLabel    string                 `json:"x_axis_label"`
	YAxisLabel    string                 `json:"y_axis_label"`
	ShowLegend    bool                   `json:"show_legend"`
	ShowGrid      bool                   `json:"show_grid"`
	Width         int                    `json:"width"`
	Height        int                    `json:"height"`
	CustomOptions map[string]interface{} `json:"custom_options,omitempty"`
}

// logoSeries flattens an L x A height matrix into logo data points, one per
// (position, base) pair with a non-zero height.
func logoSeries(name, alphabet string, heights [][]float64) SeriesData {
	letters := []rune(alphabet)
	series := SeriesData{Name: name, Type: "logo"}
	for l, row := range heights {
		for a, h := range row {
			if h == 0 {
				continue
			}
			series.Data = append(series.Data, DataPoint{
				X:     l,
				Y:     h,
				Label: string(letters[a]),
			})
		}
	}
	return series
}

// AttributionPlot packages a saliency matrix for rendering.
func AttributionPlot(m *SaliencyMatrix, modelName string) PlotData {
	return PlotData{
		PlotType:  AttributionMap,
		Title:     fmt.Sprintf("Attribution Map - %s", modelName),
		Timestamp: time.Now(),
		ModelName: modelName,
		Series:    []SeriesData{logoSeries("attribution", m.Alphabet, m.Values)},
		Config: PlotConfig{
			XAxisLabel: "Position",
			YAxisLabel: "Attribution",
			ShowLegend: false,
			ShowGrid:   false,
			Width:      1600,
			Height:     200,
		},
	}
}

// FilterGridPlot packages first-layer filter logos for rendering as a grid
// with numCols columns (8 when numCols is not positive).
func FilterGridPlot(logos []FilterLogo, numCols int, modelName string) PlotData {
	if numCols <= 0 {
		numCols = 8
	}
	numRows := (len(logos) + numCols - 1) / numCols

	series := make([]SeriesData, len(logos))
	for i, l := range logos {
		series[i] = logoSeries(fmt.Sprintf("filter_%d", i), l.Alphabet, l.Heights)
	}

	return PlotData{
		PlotType:  FilterGrid,
		Title:     fmt.Sprintf("First-Layer Filters - %s", modelName),
		Timestamp: time.Now(),
		ModelName: modelName,
		Series:    series,
		Config: PlotConfig{
			XAxisLabel: "Position",
			YAxisLabel: "Bits",
			ShowLegend: false,
			ShowGrid:   false,
			Width:      1200,
			Height:     150 * numRows,
			CustomOptions: map[string]interface{}{
				"num_cols": numCols,
				"num_rows": numRows,
			},
		},
	}
}

var curvePalette = []string{"#FF6B6B", "#4ECDC4", "#FF9F43", "#5F27CD", "#6C5CE7", "#95A5A6"}

// TrainingCurvesPlot packages every recorded metric series of a training
// history, one line per (split, metric) pair against epoch number.
func TrainingCurvesPlot(h *training.History, modelName string) PlotData {
	splits := []struct {
		name string
		hist *training.SplitHistory
	}{
		{string(training.SplitTrain), &h.Train},
		{string(training.SplitValid), &h.Valid},
		{string(training.SplitTest), &h.Test},
	}

	var series []SeriesData
	for _, s := range splits {
		names := make([]string, 0, len(s.hist.Metrics))
		for name := range s.hist.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			vals := s.hist.Metrics[name]
			line := SeriesData{
				Name: fmt.Sprintf("%s %s", s.name, name),
				Type: "line",
				Data: make([]DataPoint, len(vals)),
				Style: map[string]interface{}{
					"color":      curvePalette[len(series)%len(curvePalette)],
					"line_width": 2,
				},
			}
			for i, v := range vals {
				line.Data[i] = DataPoint{X: i + 1, Y: v}
			}
			series = append(series, line)
		}
	}

	return PlotData{
		PlotType:  TrainingCurves,
		Title:     fmt.Sprintf("Training Curves - %s", modelName),
		Timestamp: time.Now(),
		ModelName: modelName,
		Series:    series,
		Config: PlotConfig{
			XAxisLabel: "Epoch",
			YAxisLabel: "Metric",
			ShowLegend: true,
			ShowGrid:   true,
			Width:      800,
			Height:     600,
		},
	}
}
