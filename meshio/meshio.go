// Package meshio imports mesh files (Gambit .neu, SU2, Gmsh) through the
// gocfd readers and converts them into vtk meshes.
package meshio

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/fields"
	"github.com/notargets/DGExport/vtk"
	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/utils"
)

var (
	ErrUnsupportedElement = errors.New("meshio: unsupported element")
	ErrBadVertex          = errors.New("meshio: vertex must have 2 or 3 coordinates")
)

// Read loads a mesh file. Cells take the element types recorded by the
// reader; files without them fall back to FromVertices.
func Read(path string) (vtk.Mesh, error) {
	msh, err := readers.ReadMeshFile(path)
	if err != nil {
		return vtk.Mesh{}, fmt.Errorf("reading mesh %s: %w", path, err)
	}
	var mesh vtk.Mesh
	if len(msh.ElementTypes) == len(msh.EtoV) {
		mesh, err = FromTyped(msh.Vertices, msh.EtoV, msh.ElementTypes)
	} else {
		mesh, err = FromVertices(msh.Vertices, msh.EtoV)
	}
	if err != nil {
		return vtk.Mesh{}, fmt.Errorf("converting mesh %s: %w", path, err)
	}
	return mesh, nil
}

// linearTypes maps the first-order gocfd element types to VTK cells
var linearTypes = map[utils.ElementType]element.CellType{
	utils.Point:    element.Vertex,
	utils.Line:     element.Line,
	utils.Triangle: element.Triangle,
	utils.Quad:     element.Quad,
	utils.Tet:      element.Tetra,
	utils.Hex:      element.Hexahedron,
}

// CellTypeOf returns the cell type of a gocfd element type. Higher-order,
// prism and pyramid elements are unsupported.
func CellTypeOf(et utils.ElementType) (element.CellType, error) {
	if ct, ok := linearTypes[et]; ok {
		return ct, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedElement, et)
}

// FromTyped converts vertex coordinates and element-to-vertex lists whose
// element types are known
func FromTyped(vertices [][]float64, eToV [][]int, types []utils.ElementType) (vtk.Mesh, error) {
	if len(types) != len(eToV) {
		return vtk.Mesh{}, fmt.Errorf("%w: %d element types for %d elements",
			ErrUnsupportedElement, len(types), len(eToV))
	}
	return build(vertices, eToV, func(k int, _ bool) (element.CellType, error) {
		return CellTypeOf(types[k])
	})
}

// FromVertices converts vertex coordinates and element-to-vertex lists,
// guessing the cell type from the vertex count: 2 Line, 3 Triangle, 4 Tetra
// (Quad when all vertices lie in a constant z plane), 8 Hexahedron.
func FromVertices(vertices [][]float64, eToV [][]int) (vtk.Mesh, error) {
	return build(vertices, eToV, func(k int, planar bool) (element.CellType, error) {
		return cellTypeFor(len(eToV[k]), planar)
	})
}

func build(vertices [][]float64, eToV [][]int,
	typeOf func(k int, planar bool) (element.CellType, error)) (vtk.Mesh, error) {
	points := make([]fields.Vector3, len(vertices))
	for i, v := range vertices {
		switch len(v) {
		case 2:
			points[i] = fields.NewVector2(v[0], v[1]).Pad3()
		case 3:
			points[i] = fields.NewVector3(v[0], v[1], v[2])
		default:
			return vtk.Mesh{}, fmt.Errorf("%w: vertex %d has %d", ErrBadVertex, i, len(v))
		}
	}
	planar := len(points) > 0
	for _, p := range points {
		if p[2] != points[0][2] {
			planar = false
			break
		}
	}

	cells := make([]element.CellRecord, len(eToV))
	for k, verts := range eToV {
		ct, err := typeOf(k, planar)
		if err != nil {
			return vtk.Mesh{}, fmt.Errorf("element %d: %w", k, err)
		}
		if cells[k], err = element.NewCellRecord(ct, slices.Clone(verts)...); err != nil {
			return vtk.Mesh{}, fmt.Errorf("element %d: %w", k, err)
		}
	}
	if _, err := element.Flatten(cells, len(points)); err != nil {
		return vtk.Mesh{}, err
	}
	return vtk.Mesh{Points: points, Cells: cells}, nil
}

func cellTypeFor(nVerts int, planar bool) (element.CellType, error) {
	switch nVerts {
	case 2:
		return element.Line, nil
	case 3:
		return element.Triangle, nil
	case 4:
		if planar {
			return element.Quad, nil
		}
		return element.Tetra, nil
	case 8:
		return element.Hexahedron, nil
	}
	return 0, fmt.Errorf("%w: %d vertices", ErrUnsupportedElement, nVerts)
}

// Summary counts the cells of a mesh by type
type Summary struct {
	NumVertices int
	NumElements int
	ByType      map[element.CellType]int
}

func Summarize(mesh vtk.Mesh) Summary {
	s := Summary{
		NumVertices: len(mesh.Points),
		NumElements: len(mesh.Cells),
		ByType:      make(map[element.CellType]int),
	}
	for _, c := range mesh.Cells {
		s.ByType[c.Type]++
	}
	return s
}

// String returns e.g. "8 vertices, 6 elements (Tet: 6)"
func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d vertices, %d elements", s.NumVertices, s.NumElements)
	var parts []string
	for _, ct := range element.CellTypes() {
		if n := s.ByType[ct]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", ct, n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
	}
	return sb.String()
}
