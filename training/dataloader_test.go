package training

import (
	"sort"
	"testing"

	"github.com/tsawler/go-seqfit/tensor"
)

func buildDataset(t *testing.T, n int) *SliceDataset {
	t.Helper()

	xData := make([]float32, n*2)
	yData := make([]float32, n)
	for i := 0; i < n; i++ {
		xData[i*2] = float32(i)
		xData[i*2+1] = float32(i) * 10
		yData[i] = float32(i)
	}

	x, err := tensor.NewTensor([]int{n, 2}, xData)
	if err != nil {
		t.Fatalf("failed to create inputs: %v", err)
	}
	y, err := tensor.NewTensor([]int{n, 1}, yData)
	if err != nil {
		t.Fatalf("failed to create targets: %v", err)
	}

	ds, err := NewSliceDataset(x, y)
	if err != nil {
		t.Fatalf("failed to create dataset: %v", err)
	}
	return ds
}

func TestDataLoaderBatchPartition(t *testing.T) {
	tests := []struct {
		name       string
		samples    int
		batchSize  int
		numBatches int
		lastBatch  int
	}{
		{"even split", 12, 4, 3, 4},
		{"ragged tail", 10, 4, 3, 2},
		{"single batch", 3, 8, 1, 3},
	}

	for _, tt := range tests {
		ds := buildDataset(t, tt.samples)
		loader, err := NewDataLoader(ds, tt.batchSize, false)
		if err != nil {
			t.Fatalf("%s: failed to create loader: %v", tt.name, err)
		}

		if loader.Len() != tt.numBatches {
			t.Errorf("%s: expected %d batches, got %d", tt.name, tt.numBatches, loader.Len())
		}

		var batches []*Batch
		for loader.HasNext() {
			batch, err := loader.Next()
			if err != nil {
				t.Fatalf("%s: Next failed: %v", tt.name, err)
			}
			if batch == nil {
				break
			}
			batches = append(batches, batch)
		}

		if len(batches) != tt.numBatches {
			t.Fatalf("%s: expected %d batches, got %d", tt.name, tt.numBatches, len(batches))
		}
		last := batches[len(batches)-1]
		if last.X.Shape[0] != tt.lastBatch {
			t.Errorf("%s: expected last batch of %d, got %d", tt.name, tt.lastBatch, last.X.Shape[0])
		}
	}
}

func TestDataLoaderPreservesOrderWithoutShuffle(t *testing.T) {
	ds := buildDataset(t, 10)
	loader, _ := NewDataLoader(ds, 3, false)

	var seen []float32
	for loader.HasNext() {
		batch, err := loader.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if batch == nil {
			break
		}
		seen = append(seen, batch.Y.Data...)
	}

	for i := range seen {
		if seen[i] != float32(i) {
			t.Errorf("sample %d out of order: got %f", i, seen[i])
		}
	}
}

func TestDataLoaderShuffleIsPermutation(t *testing.T) {
	ds := buildDataset(t, 50)
	loader, _ := NewDataLoader(ds, 8, true)

	for trial := 0; trial < 3; trial++ {
		loader.Reset()

		var seen []float64
		for loader.HasNext() {
			batch, err := loader.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if batch == nil {
				break
			}
			for _, v := range batch.Y.Data {
				seen = append(seen, float64(v))
			}
		}

		if len(seen) != 50 {
			t.Fatalf("trial %d: expected 50 samples, got %d", trial, len(seen))
		}
		sort.Float64s(seen)
		for i := range seen {
			if seen[i] != float64(i) {
				t.Fatalf("trial %d: not a permutation at %d: %f", trial, i, seen[i])
			}
		}
	}
}

func TestBufferedShuffleBoundedDisplacement(t *testing.T) {
	const n, bufferSize = 100, 10

	order := bufferedShuffle(n, bufferSize)
	if len(order) != n {
		t.Fatalf("expected %d indices, got %d", n, len(order))
	}

	// With a streaming buffer, index i cannot appear before output position
	// i-bufferSize+1: it only enters the buffer after i-bufferSize+1 draws.
	for pos, idx := range order {
		if idx-pos >= bufferSize {
			t.Errorf("index %d at position %d exceeds buffer lookahead %d", idx, pos, bufferSize)
		}
	}
}

func TestSliceDatasetValidation(t *testing.T) {
	x, _ := tensor.Zeros([]int{4, 2})
	y, _ := tensor.Zeros([]int{3, 1})

	if _, err := NewSliceDataset(x, y); err == nil {
		t.Error("expected sample count mismatch error")
	}
	if _, err := NewSliceDataset(nil, y); err == nil {
		t.Error("expected nil tensor error")
	}
}

func TestDataLoaderValidation(t *testing.T) {
	ds := buildDataset(t, 4)

	if _, err := NewDataLoader(ds, 0, false); err == nil {
		t.Error("expected error for non-positive batch size")
	}
}
