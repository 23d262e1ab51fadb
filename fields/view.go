package fields

import (
	"iter"

	"gonum.org/v1/gonum/floats"
)

// FlatView is a read-only, zero-copy window over scalar storage. It has no
// mutating methods; mutable access goes through FlatMut/AsFlatMut, and a
// caller must not keep a FlatView across writes made through those.
type FlatView struct {
	data []Scalar
}

// NewFlatView wraps an existing scalar slice without copying it
func NewFlatView(data []Scalar) FlatView { return FlatView{data: data} }

func (v FlatView) Len() int { return len(v.data) }

func (v FlatView) At(i int) Scalar { return v.data[i] }

// Raw returns the viewed storage itself, for encoders that consume a
// []Scalar. It aliases the source and must not be written through.
func (v FlatView) Raw() []Scalar { return v.data[:len(v.data):len(v.data)] }

// Slice returns the sub-view [i, j)
func (v FlatView) Slice(i, j int) FlatView { return FlatView{data: v.data[i:j:j]} }

// Values yields the scalars in storage order
func (v FlatView) Values() iter.Seq[Scalar] {
	return func(yield func(Scalar) bool) {
		for _, x := range v.data {
			if !yield(x) {
				return
			}
		}
	}
}

// All yields index/value pairs in storage order
func (v FlatView) All() iter.Seq2[int, Scalar] {
	return func(yield func(int, Scalar) bool) {
		for i, x := range v.data {
			if !yield(i, x) {
				return
			}
		}
	}
}

// CopyTo copies the view into dst and returns the number of scalars copied
func (v FlatView) CopyTo(dst []Scalar) int { return copy(dst, v.data) }

// Clone returns an owned copy of the viewed scalars
func (v FlatView) Clone() []Scalar {
	out := make([]Scalar, len(v.data))
	copy(out, v.data)
	return out
}

// Range returns the minimum and maximum scalar. ok is false for an empty view.
func (v FlatView) Range() (lo, hi Scalar, ok bool) {
	if len(v.data) == 0 {
		return 0, 0, false
	}
	return floats.Min(v.data), floats.Max(v.data), true
}

// TupleNorms returns the Euclidean norm of every k-component tuple.
// Len() must be a multiple of k.
func (v FlatView) TupleNorms(k int) []Scalar {
	if k <= 0 || len(v.data)%k != 0 {
		panic("fields: TupleNorms component count does not divide view length")
	}
	out := make([]Scalar, len(v.data)/k)
	for i := range out {
		out[i] = floats.Norm(v.data[i*k:(i+1)*k], 2)
	}
	return out
}
