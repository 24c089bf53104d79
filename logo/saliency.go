// Package logo analyzes trained sequence models: it converts gradients and
// first-layer filters into sequence-logo matrices, and packages those
// matrices (plus training curves) as plot data for a sidecar rendering
// service.
package logo

import (
	"fmt"
	"math"

	"github.com/tsawler/go-seqfit/tensor"
)

// SaliencyMatrix holds per-position attribution scores shaped for a
// sequence-logo plot. Values is L x A with, at each position, the attribution
// mass placed on the observed base and zero elsewhere.
type SaliencyMatrix struct {
	Alphabet string
	Seq      string
	Values   [][]float64
}

// Len returns the sequence length.
func (m *SaliencyMatrix) Len() int {
	return len(m.Values)
}

// firstSequence reduces a (N, L, A) batch to its first (L, A) sequence. A
// tensor that is already two-dimensional passes through unchanged.
func firstSequence(t *tensor.Tensor, alphabet string) (*tensor.Tensor, error) {
	switch t.Dim() {
	case 3:
		seq, err := t.Index(0)
		if err != nil {
			return nil, err
		}
		t = seq
	case 2:
		// already a single sequence
	default:
		return nil, fmt.Errorf("expected a (N, L, A) or (L, A) tensor, got shape %v", t.Size())
	}

	if t.Size()[1] != len(alphabet) {
		return nil, fmt.Errorf("alphabet size mismatch: tensor has %d channels, alphabet %q has %d letters",
			t.Size()[1], alphabet, len(alphabet))
	}
	return t, nil
}

// saliencyToMatrix spreads per-position scores onto the observed bases,
// producing the L x A logo matrix.
func saliencyToMatrix(seq string, values []float64, alphabet string) *SaliencyMatrix {
	numLetters := len(alphabet)
	mat := make([][]float64, len(values))
	for i := range mat {
		mat[i] = make([]float64, numLetters)
	}

	letterIndex := make(map[rune]int, numLetters)
	for a, letter := range alphabet {
		letterIndex[letter] = a
	}
	for i, letter := range seq {
		mat[i][letterIndex[letter]] = values[i]
	}

	return &SaliencyMatrix{Alphabet: alphabet, Seq: seq, Values: mat}
}

// GradTimesInput builds a saliency matrix from input gradients: at each
// position the score is the gradient entry of the observed base. Only the
// first sequence of the batch is used.
func GradTimesInput(x, grad *tensor.Tensor, alphabet string) (*SaliencyMatrix, error) {
	seq, err := firstSequence(x, alphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to extract input sequence: %v", err)
	}
	g, err := firstSequence(grad, alphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to extract gradient: %v", err)
	}

	seqLen := seq.Size()[0]
	if g.Size()[0] != seqLen {
		return nil, fmt.Errorf("gradient length %d does not match sequence length %d", g.Size()[0], seqLen)
	}

	indices, err := seq.ArgmaxLast()
	if err != nil {
		return nil, fmt.Errorf("failed to decode one-hot sequence: %v", err)
	}

	letters := []rune(alphabet)
	decoded := make([]rune, seqLen)
	values := make([]float64, seqLen)
	for i, idx := range indices {
		decoded[i] = letters[idx]
		v, err := g.At(i, idx)
		if err != nil {
			return nil, err
		}
		values[i] = float64(v)
	}

	return saliencyToMatrix(string(decoded), values, alphabet), nil
}

// L2NormScores builds a saliency matrix from per-base scores (e.g. in-silico
// mutagenesis effects): at each position the score is the L2 norm of the
// score vector across the alphabet, assigned to the observed base. Only the
// first sequence of the batch is used.
func L2NormScores(x, scores *tensor.Tensor, alphabet string) (*SaliencyMatrix, error) {
	seq, err := firstSequence(x, alphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to extract input sequence: %v", err)
	}
	sc, err := firstSequence(scores, alphabet)
	if err != nil {
		return nil, fmt.Errorf("failed to extract scores: %v", err)
	}

	seqLen := seq.Size()[0]
	if sc.Size()[0] != seqLen {
		return nil, fmt.Errorf("scores length %d does not match sequence length %d", sc.Size()[0], seqLen)
	}

	indices, err := seq.ArgmaxLast()
	if err != nil {
		return nil, fmt.Errorf("failed to decode one-hot sequence: %v", err)
	}

	letters := []rune(alphabet)
	decoded := make([]rune, seqLen)
	values := make([]float64, seqLen)
	for i, idx := range indices {
		decoded[i] = letters[idx]

		row, err := sc.Row(i)
		if err != nil {
			return nil, err
		}
		sum := 1e-10
		for _, v := range row {
			sum += float64(v) * float64(v)
		}
		values[i] = math.Sqrt(sum)
	}

	return saliencyToMatrix(string(decoded), values, alphabet), nil
}
