package tensor

import (
	"fmt"
)

// Tensor is a dense row-major float32 array. It is a data container for
// moving batches, predictions and weights across the harness/model boundary;
// all numeric computation on the contents is done by the caller.
type Tensor struct {
	Shape []int
	Data  []float32
}

// NewTensor creates a tensor from a shape and backing data slice.
func NewTensor(shape []int, data []float32) (*Tensor, error) {
	numElems, err := validateShape(shape)
	if err != nil {
		return nil, err
	}

	if len(data) != numElems {
		return nil, fmt.Errorf("data length mismatch: shape %v requires %d elements, got %d", shape, numElems, len(data))
	}

	return &Tensor{
		Shape: append([]int{}, shape...),
		Data:  data,
	}, nil
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape []int) (*Tensor, error) {
	numElems, err := validateShape(shape)
	if err != nil {
		return nil, err
	}

	return &Tensor{
		Shape: append([]int{}, shape...),
		Data:  make([]float32, numElems),
	}, nil
}

// validateShape checks that all dimensions are positive and returns the
// total element count.
func validateShape(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("shape must have at least one dimension")
	}

	numElems := 1
	for i, dim := range shape {
		if dim <= 0 {
			return 0, fmt.Errorf("invalid dimension %d at axis %d: dimensions must be positive", dim, i)
		}
		numElems *= dim
	}

	return numElems, nil
}

// NumElems returns the total number of elements.
func (t *Tensor) NumElems() int {
	return len(t.Data)
}

// Dim returns the number of dimensions.
func (t *Tensor) Dim() int {
	return len(t.Shape)
}

// Size returns a copy of the tensor shape.
func (t *Tensor) Size() []int {
	return append([]int{}, t.Shape...)
}

// offset converts multi-dimensional indices to a flat row-major offset.
func (t *Tensor) offset(indices []int) (int, error) {
	if len(indices) != len(t.Shape) {
		return 0, fmt.Errorf("index count mismatch: tensor has %d dimensions, got %d indices", len(t.Shape), len(indices))
	}

	offset := 0
	stride := 1
	for i := len(t.Shape) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= t.Shape[i] {
			return 0, fmt.Errorf("index %d out of range [0, %d) at axis %d", indices[i], t.Shape[i], i)
		}
		offset += indices[i] * stride
		stride *= t.Shape[i]
	}

	return offset, nil
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) (float32, error) {
	off, err := t.offset(indices)
	if err != nil {
		return 0, err
	}
	return t.Data[off], nil
}

// SetAt sets the element at the given indices.
func (t *Tensor) SetAt(value float32, indices ...int) error {
	off, err := t.offset(indices)
	if err != nil {
		return err
	}
	t.Data[off] = value
	return nil
}

// Row returns a view of row i of a 2D tensor.
func (t *Tensor) Row(i int) ([]float32, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("Row requires a 2D tensor, got shape %v", t.Shape)
	}
	if i < 0 || i >= t.Shape[0] {
		return nil, fmt.Errorf("row index %d out of range [0, %d)", i, t.Shape[0])
	}

	cols := t.Shape[1]
	return t.Data[i*cols : (i+1)*cols], nil
}

// Col returns column j of a 2D tensor as a float64 copy, the working type
// of the metric computations.
func (t *Tensor) Col(j int) ([]float64, error) {
	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("Col requires a 2D tensor, got shape %v", t.Shape)
	}
	if j < 0 || j >= t.Shape[1] {
		return nil, fmt.Errorf("column index %d out of range [0, %d)", j, t.Shape[1])
	}

	rows, cols := t.Shape[0], t.Shape[1]
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = float64(t.Data[i*cols+j])
	}
	return out, nil
}

// Index returns the sample at position i along the first axis as a tensor
// with the leading axis removed for multi-dimensional tensors, or a
// single-element tensor for 1D input.
func (t *Tensor) Index(i int) (*Tensor, error) {
	if i < 0 || i >= t.Shape[0] {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, t.Shape[0])
	}

	if len(t.Shape) == 1 {
		return NewTensor([]int{1}, t.Data[i:i+1])
	}

	sampleShape := t.Shape[1:]
	sampleSize := len(t.Data) / t.Shape[0]
	return NewTensor(sampleShape, t.Data[i*sampleSize:(i+1)*sampleSize])
}

// Reshape returns a tensor sharing the same data with a new shape.
func (t *Tensor) Reshape(newShape []int) (*Tensor, error) {
	numElems, err := validateShape(newShape)
	if err != nil {
		return nil, err
	}

	if numElems != len(t.Data) {
		return nil, fmt.Errorf("cannot reshape %v (%d elements) to %v (%d elements)", t.Shape, len(t.Data), newShape, numElems)
	}

	return &Tensor{
		Shape: append([]int{}, newShape...),
		Data:  t.Data,
	}, nil
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.Data))
	copy(data, t.Data)
	return &Tensor{
		Shape: append([]int{}, t.Shape...),
		Data:  data,
	}
}

// Equal reports whether two tensors have identical shape and data.
func (t *Tensor) Equal(other *Tensor) bool {
	if other == nil || len(t.Shape) != len(other.Shape) {
		return false
	}
	for i := range t.Shape {
		if t.Shape[i] != other.Shape[i] {
			return false
		}
	}
	for i := range t.Data {
		if t.Data[i] != other.Data[i] {
			return false
		}
	}
	return true
}

// String returns a compact description of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, elements=%d)", t.Shape, len(t.Data))
}
