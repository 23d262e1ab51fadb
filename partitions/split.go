package partitions

import (
	"fmt"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/fields"
	"github.com/notargets/DGExport/vtk"
)

// Piece is one partition's sub-mesh with its maps back to the global mesh
type Piece struct {
	ID                 int
	Mesh               vtk.Mesh
	LocalToGlobalPoint []int // [local point] → global point
	LocalToGlobalCell  []int // [local cell] → global cell
}

// Split cuts mesh into one self-contained piece per partition. Points are
// renumbered in order of first use by the partition's cells; point and cell
// data are subset to match.
func Split(mesh vtk.Mesh, layout *PartitionLayout) ([]Piece, error) {
	cells := cellsOf(mesh)
	nPoints := len(mesh.Points)
	if layout.TotalElements != len(cells) {
		return nil, fmt.Errorf("%w: layout covers %d elements, mesh has %d cells",
			ErrLayout, layout.TotalElements, len(cells))
	}
	if _, err := element.Flatten(cells, nPoints); err != nil {
		return nil, err
	}
	for _, a := range mesh.PointData {
		if err := a.Validate(nPoints); err != nil {
			return nil, fmt.Errorf("PointData: %w", err)
		}
	}
	for _, a := range mesh.CellData {
		if err := a.Validate(len(cells)); err != nil {
			return nil, fmt.Errorf("CellData: %w", err)
		}
	}

	pieces := make([]Piece, layout.NumPartitions)
	globalToLocal := make([]int, nPoints)
	for _, part := range layout.Partitions {
		for i := range globalToLocal {
			globalToLocal[i] = -1
		}
		pc := Piece{
			ID:                part.ID,
			LocalToGlobalCell: part.Elements,
		}
		pc.Mesh.Cells = make([]element.CellRecord, len(part.Elements))
		for local, global := range part.Elements {
			src := cells[global]
			verts := make([]int, len(src.Vertices))
			for i, gv := range src.Vertices {
				if globalToLocal[gv] < 0 {
					globalToLocal[gv] = len(pc.LocalToGlobalPoint)
					pc.LocalToGlobalPoint = append(pc.LocalToGlobalPoint, gv)
				}
				verts[i] = globalToLocal[gv]
			}
			pc.Mesh.Cells[local] = element.CellRecord{Type: src.Type, Vertices: verts}
		}
		pc.Mesh.Points = make([]fields.Vector3, len(pc.LocalToGlobalPoint))
		for local, global := range pc.LocalToGlobalPoint {
			pc.Mesh.Points[local] = mesh.Points[global]
		}
		for _, a := range mesh.PointData {
			pc.Mesh.PointData = append(pc.Mesh.PointData, subset(a, pc.LocalToGlobalPoint))
		}
		for _, a := range mesh.CellData {
			pc.Mesh.CellData = append(pc.Mesh.CellData, subset(a, part.Elements))
		}
		pieces[part.ID] = pc
	}
	return pieces, nil
}

// subset copies the tuples of a listed in ids, in that order
func subset(a vtk.FieldArray, ids []int) vtk.FieldArray {
	k := a.Components
	raw := a.Data.Raw()
	out := make([]fields.Scalar, 0, len(ids)*k)
	for _, id := range ids {
		out = append(out, raw[id*k:(id+1)*k]...)
	}
	return vtk.FromFlat(a.Name, out, k)
}
