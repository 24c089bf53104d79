package tensor

import (
	"fmt"
)

// Concat concatenates tensors along the first axis. All inputs must share
// the same trailing shape. Used to reassemble per-batch predictions and
// targets into epoch-level arrays in batch order.
func Concat(tensors []*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("cannot concatenate zero tensors")
	}

	first := tensors[0]
	totalRows := 0
	totalElems := 0
	for i, t := range tensors {
		if len(t.Shape) != len(first.Shape) {
			return nil, fmt.Errorf("rank mismatch at tensor %d: %v vs %v", i, t.Shape, first.Shape)
		}
		for axis := 1; axis < len(first.Shape); axis++ {
			if t.Shape[axis] != first.Shape[axis] {
				return nil, fmt.Errorf("trailing shape mismatch at tensor %d: %v vs %v", i, t.Shape, first.Shape)
			}
		}
		totalRows += t.Shape[0]
		totalElems += len(t.Data)
	}

	data := make([]float32, 0, totalElems)
	for _, t := range tensors {
		data = append(data, t.Data...)
	}

	shape := append([]int{totalRows}, first.Shape[1:]...)
	return NewTensor(shape, data)
}

// ArgmaxLast returns, for each slice along the last axis, the index of its
// maximum element. Ties resolve to the lowest index. The result has one
// entry per leading position (row-major order).
func (t *Tensor) ArgmaxLast() ([]int, error) {
	if len(t.Shape) == 0 {
		return nil, fmt.Errorf("cannot take argmax of empty tensor")
	}

	lastDim := t.Shape[len(t.Shape)-1]
	numSlices := len(t.Data) / lastDim

	indices := make([]int, numSlices)
	for s := 0; s < numSlices; s++ {
		base := s * lastDim
		maxIdx := 0
		maxVal := t.Data[base]
		for j := 1; j < lastDim; j++ {
			if t.Data[base+j] > maxVal {
				maxVal = t.Data[base+j]
				maxIdx = j
			}
		}
		indices[s] = maxIdx
	}

	return indices, nil
}

// OneHot encodes integer class indices as a (len(indices), numClasses)
// tensor. Useful for building one-hot sequence inputs in tests and examples.
func OneHot(indices []int, numClasses int) (*Tensor, error) {
	if numClasses <= 0 {
		return nil, fmt.Errorf("numClasses must be positive, got %d", numClasses)
	}

	data := make([]float32, len(indices)*numClasses)
	for i, idx := range indices {
		if idx < 0 || idx >= numClasses {
			return nil, fmt.Errorf("class index %d out of range [0, %d) at position %d", idx, numClasses, i)
		}
		data[i*numClasses+idx] = 1.0
	}

	return NewTensor([]int{len(indices), numClasses}, data)
}
