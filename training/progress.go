package training

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultBarLength is the character width of the progress bar.
const DefaultBarLength = 30

// MetricValue pairs a metric name with a value for progress display.
type MetricValue struct {
	Name  MetricName
	Value float64
}

// RenderProgress writes one progress-bar frame for a batch loop: a bracketed
// fixed-width bar, the completion percentage, a time estimate and any
// supplied metric values. Frames before the final batch report remaining
// time extrapolated linearly from elapsed time and leave the line open for
// overwriting; the final batch reports total elapsed time and terminates the
// line.
func RenderProgress(w io.Writer, iter, numBatches int, start time.Time, barLength int, metrics []MetricValue) {
	if barLength <= 0 {
		barLength = DefaultBarLength
	}

	percent := float64(iter) / float64(numBatches)
	filled := int(percent*float64(barLength) + 0.5)
	if filled > barLength {
		filled = barLength
	}
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", barLength-filled)

	elapsed := time.Since(start).Seconds()

	var line string
	if iter == numBatches {
		line = fmt.Sprintf("\r[%s] %.1f%% -- elapsed time=%.1fs", bar, percent*100, elapsed)
	} else {
		remaining := elapsed * float64(numBatches-(iter+1)) / float64(iter+1)
		line = fmt.Sprintf("\r[%s] %.1f%%  -- remaining time=%.1fs", bar, percent*100, remaining)
	}

	// Append metrics in the fixed recognized order so the line layout is
	// stable from frame to frame.
	for _, known := range RecognizedMetrics {
		for _, mv := range metrics {
			if mv.Name == known {
				line += fmt.Sprintf(" -- %s=%.5f", mv.Name, mv.Value)
			}
		}
	}

	if iter == numBatches {
		line += "\n"
	}

	fmt.Fprint(w, line)
}

// ProgressBar is a thin stateful wrapper around RenderProgress for use in a
// batch loop: it owns the start time, total batch count and output writer.
type ProgressBar struct {
	w         io.Writer
	total     int
	barLength int
	start     time.Time
}

// NewProgressBar creates a progress bar for an epoch of total batches.
func NewProgressBar(w io.Writer, total int) *ProgressBar {
	return &ProgressBar{
		w:         w,
		total:     total,
		barLength: DefaultBarLength,
		start:     time.Now(),
	}
}

// Update renders the frame for the given one-based batch index.
func (pb *ProgressBar) Update(iter int, metrics []MetricValue) {
	RenderProgress(pb.w, iter, pb.total, pb.start, pb.barLength, metrics)
}
