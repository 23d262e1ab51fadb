package fields

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Dense returns the field as a [Len × Components] gonum matrix sharing the
// field storage. Returns nil for an empty field, which gonum cannot represent.
func (f *Field[T]) Dense() *mat.Dense {
	if f.Len() == 0 {
		return nil
	}
	return mat.NewDense(f.Len(), f.Components(), f.FlatMut())
}

// VecDense returns the flat field as a gonum vector sharing the field storage.
// Returns nil for an empty field.
func (f *Field[T]) VecDense() *mat.VecDense {
	if f.Len() == 0 {
		return nil
	}
	return mat.NewVecDense(f.Len()*f.Components(), f.FlatMut())
}

// SetFromDense replaces the field contents with the rows of m. m must have
// Components() columns.
func (f *Field[T]) SetFromDense(m mat.Matrix) error {
	r, c := m.Dims()
	if c != f.Components() {
		return fmt.Errorf("%w: matrix has %d columns, element has %d components",
			ErrLengthMismatch, c, f.Components())
	}
	f.Resize(r, *new(T))
	flat := f.FlatMut()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			flat[i*c+j] = m.At(i, j)
		}
	}
	return nil
}
