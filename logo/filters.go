package logo

import (
	"fmt"
	"math"

	"github.com/tsawler/go-seqfit/tensor"
)

// FilterLogo holds the information-scaled logo heights of one first-layer
// convolutional filter: Heights is L x A where L is the filter length.
type FilterLogo struct {
	Alphabet string
	Heights  [][]float64
}

// FilterLogos converts a stack of first-layer filters, shaped (F, L, A) with
// each position normalized to a probability distribution over the alphabet,
// into per-filter logo heights. The height of base a at position l is the
// position's information content times the base's weight:
//
//	I_l = log2(A) + sum_a w_la * log2(w_la + 1e-7)
func FilterLogos(w *tensor.Tensor, alphabet string) ([]FilterLogo, error) {
	if w.Dim() != 3 {
		return nil, fmt.Errorf("expected a (F, L, A) filter tensor, got shape %v", w.Size())
	}

	numLetters := len(alphabet)
	if w.Size()[2] != numLetters {
		return nil, fmt.Errorf("alphabet size mismatch: filters have %d channels, alphabet %q has %d letters",
			w.Size()[2], alphabet, numLetters)
	}

	numFilters := w.Size()[0]
	filterLen := w.Size()[1]
	maxBits := math.Log2(float64(numLetters))

	logos := make([]FilterLogo, numFilters)
	for f := 0; f < numFilters; f++ {
		heights := make([][]float64, filterLen)
		for l := 0; l < filterLen; l++ {
			info := maxBits
			row := make([]float64, numLetters)
			for a := 0; a < numLetters; a++ {
				v, err := w.At(f, l, a)
				if err != nil {
					return nil, err
				}
				row[a] = float64(v)
				info += row[a] * math.Log2(row[a]+1e-7)
			}
			for a := range row {
				row[a] *= info
			}
			heights[l] = row
		}
		logos[f] = FilterLogo{Alphabet: alphabet, Heights: heights}
	}

	return logos, nil
}
