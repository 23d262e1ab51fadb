package fields

import (
	"fmt"
	"iter"
)

// Field is a growable, singly-owned collection of one aggregate type.
// Storage is a contiguous []T, so the whole field can be viewed as
// Len()*Components() scalars without copying.
type Field[T Aggregate] struct {
	data []T
}

// Aliases named after the element type
type (
	ScalarField      = Field[Scalar]
	Vector2Field     = Field[Vector2]
	Vector3Field     = Field[Vector3]
	Matrix3Field     = Field[Matrix3]
	SymmTensor3Field = Field[SymmTensor3]
)

// NewField creates an empty field
func NewField[T Aggregate]() *Field[T] {
	return &Field[T]{}
}

// NewFieldWithCapacity creates an empty field with room for n elements
func NewFieldWithCapacity[T Aggregate](n int) *Field[T] {
	return &Field[T]{data: make([]T, 0, n)}
}

// FieldOf creates a field holding a copy of elems
func FieldOf[T Aggregate](elems ...T) *Field[T] {
	f := NewFieldWithCapacity[T](len(elems))
	f.data = append(f.data, elems...)
	return f
}

// FieldFromFlat builds a field from element-major flat scalars. The length
// of flat must be a multiple of Components[T]().
func FieldFromFlat[T Aggregate](flat []Scalar) (*Field[T], error) {
	k := Components[T]()
	if len(flat)%k != 0 {
		return nil, fmt.Errorf("%w: %d scalars is not a multiple of %d components",
			ErrLengthMismatch, len(flat), k)
	}
	f := NewFieldWithCapacity[T](len(flat) / k)
	for i := 0; i < len(flat); i += k {
		f.data = append(f.data, FromScalars[T](flat[i:i+k]))
	}
	return f, nil
}

func (f *Field[T]) Len() int        { return len(f.data) }
func (f *Field[T]) Cap() int        { return cap(f.data) }
func (f *Field[T]) IsEmpty() bool   { return len(f.data) == 0 }
func (f *Field[T]) Components() int { return Components[T]() }

// Reserve grows capacity for at least additional more elements
func (f *Field[T]) Reserve(additional int) {
	if cap(f.data)-len(f.data) >= additional {
		return
	}
	grown := make([]T, len(f.data), len(f.data)+additional)
	copy(grown, f.data)
	f.data = grown
}

func (f *Field[T]) Push(v T) { f.data = append(f.data, v) }

func (f *Field[T]) Extend(vs ...T) { f.data = append(f.data, vs...) }

func (f *Field[T]) At(i int) T { return f.data[i] }

func (f *Field[T]) Set(i int, v T) { f.data[i] = v }

// Ptr returns a pointer to element i, valid until the next growth
func (f *Field[T]) Ptr(i int) *T { return &f.data[i] }

// Elements returns the backing storage. It aliases the field.
func (f *Field[T]) Elements() []T { return f.data }

func (f *Field[T]) Clear() { f.data = f.data[:0] }

// All yields index/element pairs
func (f *Field[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range f.data {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Flat returns the field as a read-only flat view:
//
//	[e0c0, e0c1, ..., e0ck-1, e1c0, ...]
//
// Length is Len()*Components().
func (f *Field[T]) Flat() FlatView { return ViewOf(f.data) }

// FlatMut returns the field as a mutable flat slice aliasing its storage,
// for solvers writing results in place.
func (f *Field[T]) FlatMut() []Scalar { return FlatSliceMut(f.data) }
