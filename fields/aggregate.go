package fields

import "gonum.org/v1/gonum/mat"

// Scalar is the floating point type stored by every field, point and tensor.
// The precision is chosen here once for the whole module.
type Scalar = float64

// Fixed-size aggregates. Each is a Go array of Scalar, so its memory is
// exactly len(array) contiguous scalars with no padding or header.
type (
	Vector2 [2]Scalar // x, y
	Vector3 [3]Scalar // x, y, z
	Vector4 [4]Scalar // x, y, z, w

	// Matrix2 and Matrix3 are stored row-major:
	//
	//	m[i*N+j] = row i, column j
	Matrix2 [4]Scalar
	Matrix3 [9]Scalar

	// SymmTensor3 stores the upper triangle row by row: xx, xy, xz, yy, yz, zz
	SymmTensor3 [6]Scalar
)

// Aggregate is the closed set of element types admitted into flat views.
// Every member has been checked for layout compatibility in cast.go; adding
// a type here requires adding its layout assertion there as well.
type Aggregate interface {
	Scalar | Vector2 | Vector3 | Vector4 | Matrix2 | Matrix3 | SymmTensor3
}

func NewVector2(x, y Scalar) Vector2 { return Vector2{x, y} }
func NewVector3(x, y, z Scalar) Vector3 { return Vector3{x, y, z} }

func (v Vector3) X() Scalar { return v[0] }
func (v Vector3) Y() Scalar { return v[1] }
func (v Vector3) Z() Scalar { return v[2] }

// Pad3 promotes a 2D vector to 3D with a zero z component
func (v Vector2) Pad3() Vector3 { return Vector3{v[0], v[1], 0} }

// Identity3 returns the 3×3 identity matrix
func Identity3() Matrix3 {
	return Matrix3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// At returns the entry at row i, column j
func (m *Matrix3) At(i, j int) Scalar { return m[i*3+j] }

// Dense returns a gonum view sharing the matrix storage; writes through the
// view modify m.
func (m *Matrix3) Dense() *mat.Dense { return mat.NewDense(3, 3, m[:]) }

// Full expands the symmetric storage into a row-major 3×3 matrix
func (s SymmTensor3) Full() Matrix3 {
	return Matrix3{
		s[0], s[1], s[2],
		s[1], s[3], s[4],
		s[2], s[4], s[5],
	}
}

// FromScalars rebuilds an aggregate from a flat component sequence.
// A length different from Components[T]() is a programming error and panics.
func FromScalars[T Aggregate](s []Scalar) (out T) {
	dst := AsFlatMut(&out)
	if len(s) != len(dst) {
		panic("fields: FromScalars length does not match component count")
	}
	copy(dst, s)
	return
}
