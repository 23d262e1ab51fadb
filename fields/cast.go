package fields

import "unsafe"

// This file is the only place where aggregate storage is reinterpreted as
// scalar storage. Every conversion below relies on one invariant: an
// Aggregate value of type T occupies exactly Components[T]() contiguous
// Scalars. The assertions fail to compile if any member of Aggregate
// breaks that.

const scalarSize = unsafe.Sizeof(Scalar(0))

var (
	_ = [1]struct{}{}[unsafe.Sizeof(Vector2{})-2*scalarSize]
	_ = [1]struct{}{}[unsafe.Sizeof(Vector3{})-3*scalarSize]
	_ = [1]struct{}{}[unsafe.Sizeof(Vector4{})-4*scalarSize]
	_ = [1]struct{}{}[unsafe.Sizeof(Matrix2{})-4*scalarSize]
	_ = [1]struct{}{}[unsafe.Sizeof(Matrix3{})-9*scalarSize]
	_ = [1]struct{}{}[unsafe.Sizeof(SymmTensor3{})-6*scalarSize]
	_ = [1]struct{}{}[unsafe.Alignof(Vector3{})-unsafe.Alignof(Scalar(0))]
)

// Components returns the number of scalars in one T
func Components[T Aggregate]() int {
	var zero T
	return int(unsafe.Sizeof(zero) / scalarSize)
}

// AsFlat returns a read-only view of the components of a
func AsFlat[T Aggregate](a *T) FlatView {
	return FlatView{data: AsFlatMut(a)}
}

// AsFlatMut returns the components of a as a mutable slice aliasing a
func AsFlatMut[T Aggregate](a *T) []Scalar {
	return unsafe.Slice((*Scalar)(unsafe.Pointer(a)), Components[T]())
}

// ViewOf returns a read-only view over a slice of aggregates, ordered
// element-major, component-minor.
func ViewOf[T Aggregate](s []T) FlatView {
	return FlatView{data: FlatSliceMut(s)}
}

// FlatSliceMut reinterprets s as len(s)*Components[T]() scalars. The result
// aliases s and has cap == len, so appending to it never writes into s.
func FlatSliceMut[T Aggregate](s []T) []Scalar {
	if len(s) == 0 {
		return []Scalar{}
	}
	n := len(s) * Components[T]()
	return unsafe.Slice((*Scalar)(unsafe.Pointer(unsafe.SliceData(s))), n)
}
