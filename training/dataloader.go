package training

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/tsawler/go-seqfit/tensor"
)

// Dataset interface defines methods that all datasets must implement.
type Dataset interface {
	Len() int                                               // Total number of samples
	Get(idx int) (x *tensor.Tensor, y *tensor.Tensor, err error) // Returns a single sample
}

// SliceDataset exposes two tensors, indexed along their first axis, as a
// Dataset. The first dimensions must match.
type SliceDataset struct {
	x *tensor.Tensor
	y *tensor.Tensor
}

// NewSliceDataset creates a dataset backed by input and target tensors.
func NewSliceDataset(x, y *tensor.Tensor) (*SliceDataset, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("dataset tensors must not be nil")
	}
	if x.Shape[0] != y.Shape[0] {
		return nil, fmt.Errorf("sample count mismatch: inputs %d, targets %d", x.Shape[0], y.Shape[0])
	}

	return &SliceDataset{x: x, y: y}, nil
}

// Len returns the number of samples in the dataset.
func (ds *SliceDataset) Len() int {
	return ds.x.Shape[0]
}

// Get returns the sample at the given index.
func (ds *SliceDataset) Get(idx int) (*tensor.Tensor, *tensor.Tensor, error) {
	x, err := ds.x.Index(idx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index input: %v", err)
	}
	y, err := ds.y.Index(idx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index target: %v", err)
	}
	return x, y, nil
}

// Batch represents a batch of inputs and targets.
type Batch struct {
	X *tensor.Tensor
	Y *tensor.Tensor
}

// DataLoader provides batching and optional shuffling over a Dataset. The
// shuffle uses a streaming buffer whose size is fixed to the batch size, so
// samples move at most one buffer-length from their input position; with
// shuffling disabled the input order is preserved exactly.
type DataLoader struct {
	dataset   Dataset
	batchSize int
	shuffle   bool
	order     []int
	position  int
	mutex     sync.Mutex
}

// NewDataLoader creates a new DataLoader.
func NewDataLoader(dataset Dataset, batchSize int, shuffle bool) (*DataLoader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	if dataset.Len() == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	dl := &DataLoader{
		dataset:   dataset,
		batchSize: batchSize,
		shuffle:   shuffle,
	}
	dl.Reset()
	return dl, nil
}

// Len returns the number of batches in an epoch.
func (dl *DataLoader) Len() int {
	return (dl.dataset.Len() + dl.batchSize - 1) / dl.batchSize
}

// Reset rewinds the loader for a new epoch and reshuffles if enabled.
func (dl *DataLoader) Reset() {
	dl.mutex.Lock()
	defer dl.mutex.Unlock()

	dl.position = 0
	if dl.shuffle {
		dl.order = bufferedShuffle(dl.dataset.Len(), dl.batchSize)
	} else {
		dl.order = make([]int, dl.dataset.Len())
		for i := range dl.order {
			dl.order[i] = i
		}
	}
}

// bufferedShuffle produces a permutation of [0, n) with a streaming buffer:
// the buffer holds bufferSize upcoming indices, one is drawn at random per
// output position and replaced by the next index in sequence.
func bufferedShuffle(n, bufferSize int) []int {
	if bufferSize < 1 {
		bufferSize = 1
	}

	buffer := make([]int, 0, bufferSize)
	next := 0
	for next < n && len(buffer) < bufferSize {
		buffer = append(buffer, next)
		next++
	}

	order := make([]int, 0, n)
	for len(buffer) > 0 {
		j := rand.Intn(len(buffer))
		order = append(order, buffer[j])
		if next < n {
			buffer[j] = next
			next++
		} else {
			buffer[j] = buffer[len(buffer)-1]
			buffer = buffer[:len(buffer)-1]
		}
	}

	return order
}

// HasNext returns true if there are more batches in the current epoch.
func (dl *DataLoader) HasNext() bool {
	dl.mutex.Lock()
	defer dl.mutex.Unlock()
	return dl.position < len(dl.order)
}

// Next returns the next batch, or nil when the epoch is complete.
func (dl *DataLoader) Next() (*Batch, error) {
	dl.mutex.Lock()
	defer dl.mutex.Unlock()

	if dl.position >= len(dl.order) {
		return nil, nil // End of epoch
	}

	batchEnd := dl.position + dl.batchSize
	if batchEnd > len(dl.order) {
		batchEnd = len(dl.order)
	}

	batchIndices := dl.order[dl.position:batchEnd]
	dl.position = batchEnd

	batch, err := dl.loadBatch(batchIndices)
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %v", err)
	}

	return batch, nil
}

// loadBatch assembles samples into batched tensors.
func (dl *DataLoader) loadBatch(indices []int) (*Batch, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("empty batch indices")
	}

	firstX, firstY, err := dl.dataset.Get(indices[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load sample %d: %v", indices[0], err)
	}

	batchSize := len(indices)
	xShape := append([]int{batchSize}, firstX.Shape...)
	yShape := append([]int{batchSize}, firstY.Shape...)

	batchX, err := tensor.Zeros(xShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch input tensor: %v", err)
	}
	batchY, err := tensor.Zeros(yShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch target tensor: %v", err)
	}

	for i, idx := range indices {
		x, y, err := dl.dataset.Get(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to load sample %d: %v", idx, err)
		}
		if err := copyInto(batchX, x, i); err != nil {
			return nil, fmt.Errorf("failed to copy input for sample %d: %v", idx, err)
		}
		if err := copyInto(batchY, y, i); err != nil {
			return nil, fmt.Errorf("failed to copy target for sample %d: %v", idx, err)
		}
	}

	return &Batch{X: batchX, Y: batchY}, nil
}

// copyInto copies a sample tensor into a specific position in the batch tensor.
func copyInto(batchTensor, sampleTensor *tensor.Tensor, batchIndex int) error {
	sampleSize := sampleTensor.NumElems()
	offset := batchIndex * sampleSize

	if offset+sampleSize > len(batchTensor.Data) {
		return fmt.Errorf("sample %d exceeds batch capacity", batchIndex)
	}

	copy(batchTensor.Data[offset:offset+sampleSize], sampleTensor.Data)
	return nil
}
