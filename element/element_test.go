package element

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCodes(t *testing.T) {
	want := map[CellType]uint8{
		Vertex: 1, Line: 3, PolyLine: 4, Triangle: 5,
		Polygon: 7, Quad: 9, Tetra: 10, Hexahedron: 12,
	}
	for ct, code := range want {
		assert.Equal(t, code, ct.Code(), ct.String())
		back, err := CellTypeFromCode(code)
		require.NoError(t, err)
		assert.Equal(t, ct, back)
	}
	assert.Len(t, CellTypes(), len(want))

	for _, code := range []uint8{0, 2, 6, 8, 11, 13, 255} {
		_, err := CellTypeFromCode(code)
		if !errors.Is(err, ErrUnknownCellType) {
			t.Errorf("code %d: expected ErrUnknownCellType, got %v", code, err)
		}
	}
}

func TestFixedArity(t *testing.T) {
	tests := []struct {
		ct    CellType
		n     int
		fixed bool
		dim   Dimensionality
	}{
		{Vertex, 1, true, D0},
		{Line, 2, true, D1},
		{PolyLine, 0, false, D1},
		{Triangle, 3, true, D2},
		{Polygon, 0, false, D2},
		{Quad, 4, true, D2},
		{Tetra, 4, true, D3},
		{Hexahedron, 8, true, D3},
	}
	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			n, fixed := tt.ct.FixedArity()
			assert.Equal(t, tt.fixed, fixed)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.dim, tt.ct.Dimensions())
		})
	}
}

func TestNewCellRecordArity(t *testing.T) {
	_, err := NewCellRecord(Triangle, 0, 1, 2, 3)
	assert.ErrorIs(t, err, ErrCellArity)

	c, err := NewCellRecord(Triangle, 0, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, c.Vertices)

	_, err = NewCellRecord(Polygon, 0, 1)
	assert.ErrorIs(t, err, ErrCellArity)
	_, err = NewCellRecord(Polygon, 0, 1, 2, 3, 4)
	assert.NoError(t, err)
	_, err = NewCellRecord(PolyLine, 0)
	assert.ErrorIs(t, err, ErrCellArity)

	_, err = NewCellRecord(CellType(6), 0)
	assert.ErrorIs(t, err, ErrUnknownCellType)
}

func TestFlattenTriangle(t *testing.T) {
	cells, err := Records([][]int{{0, 1, 2}}, []CellType{Triangle})
	require.NoError(t, err)
	topo, err := Flatten(cells, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, topo.Connectivity)
	assert.Equal(t, []int64{3}, topo.Offsets)
	assert.Equal(t, []uint8{5}, topo.Types)
	assert.Equal(t, int64(2), topo.MaxIndex)
}

func TestFlattenMixed(t *testing.T) {
	cells := []CellRecord{
		{Type: Tetra, Vertices: []int{0, 1, 2, 3}},
		{Type: Line, Vertices: []int{3, 4}},
		{Type: Polygon, Vertices: []int{0, 1, 4, 2, 3}},
	}
	topo, err := Flatten(cells, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 6, 11}, topo.Offsets)
	assert.Equal(t, []uint8{10, 3, 7}, topo.Types)
	assert.Len(t, topo.Connectivity, 11)
	assert.Equal(t, 3, topo.NCells())

	back, err := Unflatten(topo.Connectivity, topo.Offsets, topo.Types)
	require.NoError(t, err)
	assert.Equal(t, cells, back)
}

func TestFlattenValidation(t *testing.T) {
	_, err := Flatten([]CellRecord{{Type: Triangle, Vertices: []int{0, 1, 3}}}, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = Flatten([]CellRecord{{Type: Triangle, Vertices: []int{0, -1, 2}}}, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = Flatten([]CellRecord{{Type: Quad, Vertices: []int{0, 1, 2}}}, 3)
	assert.ErrorIs(t, err, ErrCellArity)

	_, err = Records([][]int{{0, 1, 2}}, nil)
	assert.ErrorIs(t, err, ErrCellsMismatch)

	_, err = Unflatten([]int64{0, 1}, []int64{3}, []uint8{5})
	assert.ErrorIs(t, err, ErrCellsMismatch)
}

func TestPointCloud(t *testing.T) {
	cells := PointCloud(4)
	require.Len(t, cells, 4)
	for k, c := range cells {
		assert.Equal(t, Vertex, c.Type)
		assert.Equal(t, []int{k}, c.Vertices)
	}
	topo, err := Flatten(cells, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, topo.Offsets)
	assert.Equal(t, []uint8{1, 1, 1, 1}, topo.Types)

	topo, err = Flatten(PointCloud(0), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, topo.NCells())
	assert.Equal(t, int64(-1), topo.MaxIndex)
}
