package fields

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// AddAssign adds other into f element by element
func (f *Field[T]) AddAssign(other *Field[T]) error {
	if err := f.checkSameLen(other); err != nil {
		return err
	}
	floats.Add(f.FlatMut(), other.FlatMut())
	return nil
}

// SubAssign subtracts other from f element by element
func (f *Field[T]) SubAssign(other *Field[T]) error {
	if err := f.checkSameLen(other); err != nil {
		return err
	}
	floats.Sub(f.FlatMut(), other.FlatMut())
	return nil
}

// ScaleAssign multiplies every component by s
func (f *Field[T]) ScaleAssign(s Scalar) {
	floats.Scale(s, f.FlatMut())
}

// AddScalar adds s to every component
func (f *Field[T]) AddScalar(s Scalar) {
	floats.AddConst(s, f.FlatMut())
}

// Fill sets every element to v
func (f *Field[T]) Fill(v T) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Resize sets the length to n, padding new elements with v
func (f *Field[T]) Resize(n int, v T) {
	if n <= len(f.data) {
		f.data = f.data[:n]
		return
	}
	f.Reserve(n - len(f.data))
	for len(f.data) < n {
		f.data = append(f.data, v)
	}
}

// Range returns the min and max over all components
func (f *Field[T]) Range() (lo, hi Scalar, ok bool) {
	return f.Flat().Range()
}

// Dot returns the sum of componentwise products of f and other
func (f *Field[T]) Dot(other *Field[T]) (Scalar, error) {
	if err := f.checkSameLen(other); err != nil {
		return 0, err
	}
	return floats.Dot(f.FlatMut(), other.FlatMut()), nil
}

func (f *Field[T]) checkSameLen(other *Field[T]) error {
	if f.Len() != other.Len() {
		return fmt.Errorf("%w: field has %d elements, other has %d",
			ErrLengthMismatch, f.Len(), other.Len())
	}
	return nil
}
