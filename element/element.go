package element

import "fmt"

// Dimensionality represents the topological dimension of a cell
type Dimensionality uint8

const (
	D0 Dimensionality = iota // points
	D1                       // lines, polylines
	D2                       // triangles, polygons, quadrilaterals
	D3                       // tetrahedra, hexahedra
)

// CellType is a cell shape, valued by its VTK type code
type CellType uint8

const (
	Vertex     CellType = 1
	Line       CellType = 3
	PolyLine   CellType = 4
	Triangle   CellType = 5
	Polygon    CellType = 7
	Quad       CellType = 9
	Tetra      CellType = 10
	Hexahedron CellType = 12
)

// Variable marks a cell type whose vertex count comes from the record
const Variable = -1

// CellProperties describes one catalog entry
type CellProperties struct {
	Name       string         // VTK name, e.g. "VTK_TETRA"
	ShortName  string         // e.g. "Tet"
	NVerts     int            // Fixed vertex count, or Variable
	MinVerts   int            // Lower bound when NVerts is Variable
	NFaces     int            // Faces of a 3D cell, edges of a 2D cell
	Dimensions Dimensionality // Topological dimension
}

var catalog = map[CellType]CellProperties{
	Vertex:     {Name: "VTK_VERTEX", ShortName: "Vertex", NVerts: 1, MinVerts: 1, Dimensions: D0},
	Line:       {Name: "VTK_LINE", ShortName: "Line", NVerts: 2, MinVerts: 2, NFaces: 2, Dimensions: D1},
	PolyLine:   {Name: "VTK_POLY_LINE", ShortName: "PolyLine", NVerts: Variable, MinVerts: 2, Dimensions: D1},
	Triangle:   {Name: "VTK_TRIANGLE", ShortName: "Tri", NVerts: 3, MinVerts: 3, NFaces: 3, Dimensions: D2},
	Polygon:    {Name: "VTK_POLYGON", ShortName: "Polygon", NVerts: Variable, MinVerts: 3, Dimensions: D2},
	Quad:       {Name: "VTK_QUAD", ShortName: "Quad", NVerts: 4, MinVerts: 4, NFaces: 4, Dimensions: D2},
	Tetra:      {Name: "VTK_TETRA", ShortName: "Tet", NVerts: 4, MinVerts: 4, NFaces: 4, Dimensions: D3},
	Hexahedron: {Name: "VTK_HEXAHEDRON", ShortName: "Hex", NVerts: 8, MinVerts: 8, NFaces: 6, Dimensions: D3},
}

// CellTypes lists the catalog in code order
func CellTypes() []CellType {
	return []CellType{Vertex, Line, PolyLine, Triangle, Polygon, Quad, Tetra, Hexahedron}
}

// CellTypeFromCode maps a VTK type code back to the catalog
func CellTypeFromCode(code uint8) (CellType, error) {
	ct := CellType(code)
	if _, ok := catalog[ct]; !ok {
		return 0, fmt.Errorf("%w: code %d", ErrUnknownCellType, code)
	}
	return ct, nil
}

func (ct CellType) Valid() bool {
	_, ok := catalog[ct]
	return ok
}

// Code returns the VTK type code written to the types array
func (ct CellType) Code() uint8 { return uint8(ct) }

// Properties returns the catalog entry; the zero value for an unknown type
func (ct CellType) Properties() CellProperties { return catalog[ct] }

// FixedArity returns the required vertex count and true, or false for
// variable-arity types.
func (ct CellType) FixedArity() (int, bool) {
	p, ok := catalog[ct]
	if !ok || p.NVerts == Variable {
		return 0, false
	}
	return p.NVerts, true
}

func (ct CellType) Dimensions() Dimensionality { return catalog[ct].Dimensions }

func (ct CellType) String() string {
	if p, ok := catalog[ct]; ok {
		return p.ShortName
	}
	return fmt.Sprintf("CellType(%d)", uint8(ct))
}

// CheckArity validates a vertex count against the cell type
func (ct CellType) CheckArity(n int) error {
	p, ok := catalog[ct]
	if !ok {
		return fmt.Errorf("%w: code %d", ErrUnknownCellType, uint8(ct))
	}
	if p.NVerts == Variable {
		if n < p.MinVerts {
			return fmt.Errorf("%w: %s needs at least %d vertices, got %d",
				ErrCellArity, ct, p.MinVerts, n)
		}
		return nil
	}
	if n != p.NVerts {
		return fmt.Errorf("%w: %s needs %d vertices, got %d", ErrCellArity, ct, p.NVerts, n)
	}
	return nil
}
