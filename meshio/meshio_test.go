package meshio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/fields"
	"github.com/notargets/gocfd/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromVerticesTets(t *testing.T) {
	verts := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}}
	eToV := [][]int{{0, 1, 2, 3}, {1, 2, 3, 4}}
	mesh, err := FromVertices(verts, eToV)
	require.NoError(t, err)
	require.Len(t, mesh.Points, 5)
	assert.Equal(t, fields.NewVector3(1, 1, 1), mesh.Points[4])
	require.Len(t, mesh.Cells, 2)
	assert.Equal(t, element.Tetra, mesh.Cells[0].Type)
	assert.Equal(t, []int{1, 2, 3, 4}, mesh.Cells[1].Vertices)

	// the mesh does not alias the reader's arrays
	eToV[0][0] = 4
	assert.Equal(t, 0, mesh.Cells[0].Vertices[0])

	s := Summarize(mesh)
	assert.Equal(t, 2, s.ByType[element.Tetra])
	assert.Equal(t, "5 vertices, 2 elements (Tet: 2)", s.String())
}

func TestFromVerticesPlanar(t *testing.T) {
	verts := [][]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {2, 0}}
	mesh, err := FromVertices(verts, [][]int{{0, 1, 2, 3}, {1, 4, 2}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, fields.NewVector3(1, 1, 0), mesh.Points[2])
	assert.Equal(t, element.Quad, mesh.Cells[0].Type)
	assert.Equal(t, element.Triangle, mesh.Cells[1].Type)
	assert.Equal(t, element.Line, mesh.Cells[2].Type)
}

func TestFromVerticesFlatZ(t *testing.T) {
	verts := [][]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	mesh, err := FromVertices(verts, [][]int{{0, 1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, element.Quad, mesh.Cells[0].Type)
}

func TestFromTyped(t *testing.T) {
	// 3D coordinates in the z=0 plane, as the gocfd readers store them
	verts := [][]float64{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {2, 0, 0}, {2, 1, 0}, {0, 0, 1}}
	eToV := [][]int{{0, 1, 2, 3}, {1, 4, 5, 2}, {1, 4, 5}, {0, 1, 3, 6}}
	types := []utils.ElementType{utils.Quad, utils.Quad, utils.Triangle, utils.Tet}
	mesh, err := FromTyped(verts, eToV, types)
	require.NoError(t, err)
	got := make([]element.CellType, len(mesh.Cells))
	for k, c := range mesh.Cells {
		got[k] = c.Type
	}
	assert.Equal(t, []element.CellType{element.Quad, element.Quad, element.Triangle, element.Tetra}, got)

	// eight vertices of a quadratic quad are not a hexahedron
	quad8 := [][]int{{0, 1, 2, 3, 4, 5, 6, 0}}
	_, err = FromTyped(verts, quad8, []utils.ElementType{utils.Quad8})
	assert.ErrorIs(t, err, ErrUnsupportedElement)
	assert.ErrorContains(t, err, "Quad8")

	for _, et := range []utils.ElementType{utils.Prism, utils.Pyramid, utils.Tet10, utils.Hex20, utils.Line3} {
		_, err := CellTypeOf(et)
		assert.ErrorIs(t, err, ErrUnsupportedElement, et.String())
	}

	_, err = FromTyped(verts, eToV, types[:2])
	assert.ErrorIs(t, err, ErrUnsupportedElement)
}

func TestFromVerticesHex(t *testing.T) {
	verts := make([][]float64, 8)
	for i := range verts {
		verts[i] = []float64{float64(i & 1), float64(i >> 1 & 1), float64(i >> 2)}
	}
	mesh, err := FromVertices(verts, [][]int{{0, 1, 3, 2, 4, 5, 7, 6}})
	require.NoError(t, err)
	assert.Equal(t, element.Hexahedron, mesh.Cells[0].Type)
}

func TestFromVerticesRejects(t *testing.T) {
	_, err := FromVertices([][]float64{{0, 0, 0}}, [][]int{{0, 0, 0, 0, 0, 0}})
	assert.ErrorIs(t, err, ErrUnsupportedElement)

	_, err = FromVertices([][]float64{{0}}, nil)
	assert.ErrorIs(t, err, ErrBadVertex)

	_, err = FromVertices([][]float64{{0, 0, 0}, {1, 0, 0}}, [][]int{{0, 2}})
	assert.ErrorIs(t, err, element.ErrIndexOutOfRange)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.neu"))
	assert.Error(t, err)
}

const twoTets = `        CONTROL INFO 2.0.0
** GAMBIT NEUTRAL FILE
two tets
PROGRAM:                  Test     VERSION:  1.0
Mon Jan  1 00:00:00 2025
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         8         2         1         2         3         3
ENDOFSECTION
   NODAL COORDINATES 2.0.0
         1   0.00000000000e+00   0.00000000000e+00   0.00000000000e+00
         2   1.00000000000e+00   0.00000000000e+00   0.00000000000e+00
         3   0.00000000000e+00   1.00000000000e+00   0.00000000000e+00
         4   0.00000000000e+00   0.00000000000e+00   1.00000000000e+00
         5   1.00000000000e+00   1.00000000000e+00   0.00000000000e+00
         6   1.00000000000e+00   0.00000000000e+00   1.00000000000e+00
         7   0.00000000000e+00   1.00000000000e+00   1.00000000000e+00
         8   1.00000000000e+00   1.00000000000e+00   1.00000000000e+00
ENDOFSECTION
   ELEMENTS/CELLS 2.0.0
         1         6         4         1         2         3         4
         2         6         4         2         5         6         8
ENDOFSECTION
       BOUNDARY CONDITIONS 2.0.0
inlet           1         2         0         0         0         0         0         0
         1         6         1
         1         6         2
wall            1         3         0         0         0         0         0         0
         1         6         3
         2         6         1
         2         6         4
ENDOFSECTION`

func TestReadGambitNeutral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two_tets.neu")
	require.NoError(t, os.WriteFile(path, []byte(twoTets), 0644))

	mesh, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, mesh.Points, 8)
	require.Len(t, mesh.Cells, 2)
	for _, c := range mesh.Cells {
		assert.Equal(t, element.Tetra, c.Type)
	}
	assert.Equal(t, "8 vertices, 2 elements (Tet: 2)", Summarize(mesh).String())
}
