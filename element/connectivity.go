package element

import "fmt"

// CellRecord is one cell: its type and ordered point indices
type CellRecord struct {
	Type     CellType
	Vertices []int
}

// NewCellRecord validates the vertex count against the cell type. The
// vertex slice is retained, not copied.
func NewCellRecord(ct CellType, vertices ...int) (CellRecord, error) {
	if err := ct.CheckArity(len(vertices)); err != nil {
		return CellRecord{}, err
	}
	return CellRecord{Type: ct, Vertices: vertices}, nil
}

// Validate checks arity and that every index addresses one of nPoints points
func (c CellRecord) Validate(nPoints int) error {
	if err := c.Type.CheckArity(len(c.Vertices)); err != nil {
		return err
	}
	for _, v := range c.Vertices {
		if v < 0 || v >= nPoints {
			return fmt.Errorf("%w: index %d, %d points", ErrIndexOutOfRange, v, nPoints)
		}
	}
	return nil
}

// Records pairs per-cell vertex lists with cell types. Both slices must have
// one entry per cell.
func Records(connectivity [][]int, types []CellType) ([]CellRecord, error) {
	if len(connectivity) != len(types) {
		return nil, fmt.Errorf("%w: %d connectivity entries, %d types",
			ErrCellsMismatch, len(connectivity), len(types))
	}
	cells := make([]CellRecord, len(types))
	for k := range types {
		c, err := NewCellRecord(types[k], connectivity[k]...)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", k, err)
		}
		cells[k] = c
	}
	return cells, nil
}

// PointCloud returns one Vertex cell per point, cell k referencing point k
func PointCloud(nPoints int) []CellRecord {
	cells := make([]CellRecord, nPoints)
	idx := make([]int, nPoints)
	for k := range cells {
		idx[k] = k
		cells[k] = CellRecord{Type: Vertex, Vertices: idx[k : k+1 : k+1]}
	}
	return cells
}

// Topology is the three parallel arrays of an unstructured grid
type Topology struct {
	Connectivity []int64 // [sum of vertex counts]
	Offsets      []int64 // [NCells] end of each cell in Connectivity
	Types        []uint8 // [NCells] VTK type codes
	MaxIndex     int64   // Largest point index referenced, -1 when empty
}

func (t Topology) NCells() int { return len(t.Types) }

// Flatten validates every cell against nPoints and builds connectivity,
// running-sum offsets and type codes.
func Flatten(cells []CellRecord, nPoints int) (Topology, error) {
	var total int
	for k, c := range cells {
		if err := c.Validate(nPoints); err != nil {
			return Topology{}, fmt.Errorf("cell %d: %w", k, err)
		}
		total += len(c.Vertices)
	}
	topo := Topology{
		Connectivity: make([]int64, 0, total),
		Offsets:      make([]int64, len(cells)),
		Types:        make([]uint8, len(cells)),
		MaxIndex:     -1,
	}
	for k, c := range cells {
		for _, v := range c.Vertices {
			iv := int64(v)
			if iv > topo.MaxIndex {
				topo.MaxIndex = iv
			}
			topo.Connectivity = append(topo.Connectivity, iv)
		}
		topo.Offsets[k] = int64(len(topo.Connectivity))
		topo.Types[k] = c.Type.Code()
	}
	return topo, nil
}

// Unflatten rebuilds cell records from the three parallel arrays, as read
// back from a file.
func Unflatten(connectivity, offsets []int64, types []uint8) ([]CellRecord, error) {
	if len(offsets) != len(types) {
		return nil, fmt.Errorf("%w: %d offsets, %d types", ErrCellsMismatch, len(offsets), len(types))
	}
	cells := make([]CellRecord, len(types))
	var start int64
	for k := range types {
		end := offsets[k]
		if end < start || end > int64(len(connectivity)) {
			return nil, fmt.Errorf("%w: offset %d of cell %d", ErrCellsMismatch, end, k)
		}
		ct, err := CellTypeFromCode(types[k])
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", k, err)
		}
		verts := make([]int, end-start)
		for i := range verts {
			verts[i] = int(connectivity[start+int64(i)])
		}
		if cells[k], err = NewCellRecord(ct, verts...); err != nil {
			return nil, fmt.Errorf("cell %d: %w", k, err)
		}
		start = end
	}
	return cells, nil
}
