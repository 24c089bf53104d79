package logo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/go-seqfit/tensor"
)

func oneHotBatch(t *testing.T, indices []int, numClasses int) *tensor.Tensor {
	t.Helper()
	x, err := tensor.OneHot(indices, numClasses)
	require.NoError(t, err)
	batch, err := x.Reshape([]int{1, len(indices), numClasses})
	require.NoError(t, err)
	return batch
}

func TestGradTimesInput(t *testing.T) {
	// "AGC" over ACGT
	x := oneHotBatch(t, []int{0, 2, 1}, 4)
	grad, err := tensor.NewTensor([]int{1, 3, 4}, []float32{
		0.1, 0.2, 0.3, 0.4,
		1, 2, 3, 4,
		-1, -2, -3, -4,
	})
	require.NoError(t, err)

	m, err := GradTimesInput(x, grad, "ACGT")
	require.NoError(t, err)

	assert.Equal(t, "AGC", m.Seq)
	assert.Equal(t, "ACGT", m.Alphabet)
	require.Equal(t, 3, m.Len())

	want := [][]float64{
		{0.1, 0, 0, 0},
		{0, 0, 3, 0},
		{0, -2, 0, 0},
	}
	for i := range want {
		for a := range want[i] {
			assert.InDelta(t, want[i][a], m.Values[i][a], 1e-6, "position %d base %d", i, a)
		}
	}
}

func TestGradTimesInputSingleSequence(t *testing.T) {
	// A 2D (L, A) tensor is treated as a batch of one.
	x, err := tensor.OneHot([]int{1, 3}, 4)
	require.NoError(t, err)
	grad, err := tensor.NewTensor([]int{2, 4}, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})
	require.NoError(t, err)

	m, err := GradTimesInput(x, grad, "ACGT")
	require.NoError(t, err)
	assert.Equal(t, "CT", m.Seq)
	assert.InDelta(t, 2.0, m.Values[0][1], 1e-6)
	assert.InDelta(t, 8.0, m.Values[1][3], 1e-6)
}

func TestGradTimesInputValidation(t *testing.T) {
	x := oneHotBatch(t, []int{0, 1}, 4)
	grad := oneHotBatch(t, []int{0, 1}, 4)

	_, err := GradTimesInput(x, grad, "AC")
	assert.Error(t, err, "alphabet smaller than channel count")

	short := oneHotBatch(t, []int{0}, 4)
	_, err = GradTimesInput(x, short, "ACGT")
	assert.Error(t, err, "gradient length mismatch")

	flat, err := tensor.NewTensor([]int{4}, []float32{1, 0, 0, 0})
	require.NoError(t, err)
	_, err = GradTimesInput(flat, grad, "ACGT")
	assert.Error(t, err, "1D input")
}

func TestL2NormScores(t *testing.T) {
	// "AT" over ACGT
	x := oneHotBatch(t, []int{0, 3}, 4)
	scores, err := tensor.NewTensor([]int{1, 2, 4}, []float32{
		3, 4, 0, 0,
		1, 1, 1, 1,
	})
	require.NoError(t, err)

	m, err := L2NormScores(x, scores, "ACGT")
	require.NoError(t, err)

	assert.Equal(t, "AT", m.Seq)
	assert.InDelta(t, 5.0, m.Values[0][0], 1e-4)
	assert.InDelta(t, 2.0, m.Values[1][3], 1e-4)

	// mass sits only on the observed base
	assert.Zero(t, m.Values[0][1])
	assert.Zero(t, m.Values[1][0])
}

func TestFilterLogos(t *testing.T) {
	w, err := tensor.NewTensor([]int{2, 2, 4}, []float32{
		// filter 0: uniform position, then a pure base
		0.25, 0.25, 0.25, 0.25,
		1, 0, 0, 0,
		// filter 1: two-way split, then uniform
		0.5, 0.5, 0, 0,
		0.25, 0.25, 0.25, 0.25,
	})
	require.NoError(t, err)

	logos, err := FilterLogos(w, "ACGT")
	require.NoError(t, err)
	require.Len(t, logos, 2)

	// Uniform positions carry no information, a pure base carries 2 bits.
	for a := 0; a < 4; a++ {
		assert.InDelta(t, 0.0, logos[0].Heights[0][a], 1e-3)
	}
	assert.InDelta(t, 2.0, logos[0].Heights[1][0], 1e-3)
	assert.InDelta(t, 0.0, logos[0].Heights[1][1], 1e-3)

	// A two-way split carries 1 bit, shared between the two bases.
	assert.InDelta(t, 0.5, logos[1].Heights[0][0], 1e-3)
	assert.InDelta(t, 0.5, logos[1].Heights[0][1], 1e-3)
	assert.InDelta(t, 0.0, logos[1].Heights[0][2], 1e-3)
}

func TestFilterLogosValidation(t *testing.T) {
	w, err := tensor.NewTensor([]int{2, 4}, make([]float32, 8))
	require.NoError(t, err)
	_, err = FilterLogos(w, "ACGT")
	assert.Error(t, err, "2D tensor is not a filter stack")

	w3, err := tensor.NewTensor([]int{1, 2, 4}, make([]float32, 8))
	require.NoError(t, err)
	_, err = FilterLogos(w3, "AC")
	assert.Error(t, err, "alphabet size mismatch")
}
