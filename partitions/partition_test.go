package partitions

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/fields"
	"github.com/notargets/DGExport/vtk"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripMesh builds n unit quads in a row, 2n+2 points, with a point scalar
// equal to the point's x and a cell scalar equal to the cell index
func stripMesh(n int) vtk.Mesh {
	points := make([]fields.Vector3, 0, 2*n+2)
	for i := 0; i <= n; i++ {
		points = append(points, fields.NewVector3(float64(i), 0, 0), fields.NewVector3(float64(i), 1, 0))
	}
	cells := make([]element.CellRecord, n)
	cellIDs := make([]fields.Scalar, n)
	for k := 0; k < n; k++ {
		cells[k] = element.CellRecord{Type: element.Quad, Vertices: []int{2 * k, 2*k + 2, 2*k + 3, 2*k + 1}}
		cellIDs[k] = float64(k)
	}
	xs := make([]fields.Scalar, len(points))
	for i, p := range points {
		xs[i] = p.X()
	}
	return vtk.Mesh{
		Points:    points,
		Cells:     cells,
		PointData: []vtk.FieldArray{vtk.FromFlat("x", xs, 1), vtk.FromSlice("pos", points)},
		CellData:  []vtk.FieldArray{vtk.FromFlat("id", cellIDs, 1)},
	}
}

func TestNewLayout(t *testing.T) {
	types := []element.CellType{element.Tetra, element.Hexahedron, element.Tetra, element.Tetra}
	layout, err := NewLayout([]int{0, 1, 1, 0}, types)
	require.NoError(t, err)
	assert.Equal(t, 2, layout.NumPartitions)
	assert.Equal(t, 2, layout.KpartMax)
	assert.Equal(t, []int{0, 3}, layout.Partitions[0].Elements)
	assert.Equal(t, []int{1, 2}, layout.Partitions[1].Elements)
	assert.Equal(t, 1, layout.GetPartition(2))
	assert.Equal(t, -1, layout.GetPartition(4))

	groups := layout.Partitions[1].TypeGroups
	require.Len(t, groups, 2)
	assert.Equal(t, element.Tetra, groups[0].ElementType)
	assert.Equal(t, []int{1}, groups[0].LocalIDs)
	assert.Equal(t, element.Hexahedron, groups[1].ElementType)

	stats := layout.PartitionStatistics()
	assert.Equal(t, 2, stats.MinElements)
	assert.InDelta(t, 1.0, stats.Imbalance, 1e-12)

	_, err = NewLayout([]int{0, -1}, nil)
	assert.ErrorIs(t, err, ErrLayout)
	_, err = NewLayout([]int{0, 1}, types)
	assert.ErrorIs(t, err, ErrLayout)

	layout.KpartMax = 5
	assert.ErrorIs(t, layout.ValidateLayout(), ErrLayout)
}

func TestBuildPartitionsStrategies(t *testing.T) {
	mesh := stripMesh(10)
	tests := []struct {
		name     string
		builder  PartitionBuilder
		wantEToP []int
	}{
		{"block", PartitionBuilder{NumPartitions: 3, Strategy: BlockPartition},
			[]int{0, 0, 0, 0, 1, 1, 1, 1, 2, 2}},
		{"round robin", PartitionBuilder{NumPartitions: 3, Strategy: RoundRobin},
			[]int{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}},
		{"target size", PartitionBuilder{TargetPartitionSize: 5},
			[]int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}},
		// the strip runs along x, so Z-order follows cell order
		{"morton", PartitionBuilder{NumPartitions: 2, Strategy: SpaceFillingCurve},
			[]int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.builder
			b.Mesh = &mesh
			layout, err := b.BuildPartitions()
			require.NoError(t, err)
			assert.Equal(t, tt.wantEToP, layout.EToP)
			assert.NoError(t, layout.ValidateLayout())
		})
	}

	_, err := (&PartitionBuilder{Mesh: &mesh}).BuildPartitions()
	assert.ErrorIs(t, err, ErrLayout)
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []PartitionStrategy{BlockPartition, RoundRobin, SpaceFillingCurve, MetisPartition} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("scotch")
	assert.ErrorIs(t, err, ErrLayout)
}

func TestDualGraph(t *testing.T) {
	mesh := stripMesh(3)
	xadj, adjncy, vwgt, adjwgt := dualGraph(mesh.Cells, len(mesh.Points))
	assert.Equal(t, []int32{0, 1, 3, 4}, xadj)
	assert.Equal(t, []int32{1, 0, 2, 1}, adjncy)
	assert.Equal(t, []int32{4, 4, 4}, vwgt)
	assert.Equal(t, []int32{2, 2, 2, 2}, adjwgt)

	// tets 0 and 1 share a face, tets 1 and 2 only the vertex 3
	tets := []element.CellRecord{
		{Type: element.Tetra, Vertices: []int{0, 1, 2, 3}},
		{Type: element.Tetra, Vertices: []int{1, 2, 3, 4}},
		{Type: element.Tetra, Vertices: []int{3, 5, 6, 7}},
	}
	xadj, adjncy, _, adjwgt = dualGraph(tets, 8)
	assert.Equal(t, []int32{0, 1, 2, 2}, xadj)
	assert.Equal(t, []int32{1, 0}, adjncy)
	assert.Equal(t, []int32{3, 3}, adjwgt)
}

func TestBuildPartitionsMetis(t *testing.T) {
	mesh := stripMesh(16)
	layout, err := (&PartitionBuilder{Mesh: &mesh, NumPartitions: 2, Strategy: MetisPartition}).BuildPartitions()
	require.NoError(t, err)
	require.NoError(t, layout.ValidateLayout())
	require.Len(t, layout.EToP, 16)
	assert.Equal(t, 2, layout.NumPartitions)
	for _, p := range layout.Partitions {
		assert.NotEmpty(t, p.Elements)
	}

	// a strip is cut best by a single interface
	cuts := 0
	for k := 1; k < len(layout.EToP); k++ {
		if layout.EToP[k] != layout.EToP[k-1] {
			cuts++
		}
	}
	assert.Equal(t, 1, cuts)

	single, err := (&PartitionBuilder{Mesh: &mesh, NumPartitions: 1, Strategy: MetisPartition}).BuildPartitions()
	require.NoError(t, err)
	assert.Equal(t, make([]int, 16), single.EToP)
}

func TestSplitPreservesCellsAndValues(t *testing.T) {
	mesh := stripMesh(6)
	layout, err := NewLayout([]int{0, 1, 0, 1, 2, 2}, nil)
	require.NoError(t, err)

	pieces, err := Split(mesh, layout)
	require.NoError(t, err)
	require.Len(t, pieces, 3)

	total := 0
	for _, pc := range pieces {
		total += len(pc.Mesh.Cells)
		ids := pc.Mesh.CellData[0].Data
		for local, global := range pc.LocalToGlobalCell {
			assert.Equal(t, float64(global), ids.At(local))
			// renumbered vertices address the same coordinates
			for i, lv := range pc.Mesh.Cells[local].Vertices {
				gv := mesh.Cells[global].Vertices[i]
				assert.Equal(t, mesh.Points[gv], pc.Mesh.Points[lv])
			}
		}
		xs := pc.Mesh.PointData[0].Data
		pos := pc.Mesh.PointData[1].Data
		for local, p := range pc.Mesh.Points {
			assert.Equal(t, p.X(), xs.At(local))
			assert.Equal(t, p[1], pos.At(3*local+1))
		}
	}
	assert.Equal(t, len(mesh.Cells), total)
	// cells 0 and 2 share no points, so piece 0 has 8 of them
	assert.Len(t, pieces[0].Mesh.Points, 8)
	assert.Len(t, pieces[2].Mesh.Points, 6)
}

func TestSplitRejects(t *testing.T) {
	mesh := stripMesh(3)
	layout, err := NewLayout([]int{0, 1}, nil)
	require.NoError(t, err)
	_, err = Split(mesh, layout)
	assert.ErrorIs(t, err, ErrLayout)

	layout, err = NewLayout([]int{0, 1, 1}, nil)
	require.NoError(t, err)
	mesh.CellData = []vtk.FieldArray{vtk.FromFlat("bad", []fields.Scalar{1}, 1)}
	_, err = Split(mesh, layout)
	assert.ErrorIs(t, err, vtk.ErrLengthMismatch)
}

func TestWriteParallel(t *testing.T) {
	dir := t.TempDir()
	mesh := stripMesh(8)
	layout, err := (&PartitionBuilder{Mesh: &mesh, NumPartitions: 4}).BuildPartitions()
	require.NoError(t, err)

	var logged bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logged)
	logger.SetLevel(logrus.DebugLevel)
	pw := &ParallelWriter{
		Dir:     dir,
		Base:    "strip",
		Workers: 1,
		Options: []vtk.Option{vtk.WithEncoding(vtk.PackedBinary)},
		Log:     logrus.NewEntry(logger),
	}
	require.NoError(t, pw.Write(context.Background(), mesh, layout))
	assert.Contains(t, logged.String(), "wrote partitioned mesh")
	assert.Contains(t, logged.String(), "workers=1")

	idx, err := vtk.ReadParallelIndex(filepath.Join(dir, "strip.pvtu"))
	require.NoError(t, err)
	require.Equal(t, []string{"strip_0.vtu", "strip_1.vtu", "strip_2.vtu", "strip_3.vtu"}, idx.Sources)
	assert.Equal(t, []vtk.ArraySpec{{Name: "id", Type: vtk.Float64, Components: 1}}, idx.CellData)

	cells := 0
	var ids []float64
	for _, src := range idx.Sources {
		doc, err := vtk.ReadMesh(filepath.Join(dir, src))
		require.NoError(t, err)
		cells += doc.NumberOfCells
		a, ok := doc.CellArray("id")
		require.True(t, ok)
		ids = append(ids, a.Floats...)
	}
	assert.Equal(t, 8, cells)
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7}, ids)
}

func TestWriteParallelCancelled(t *testing.T) {
	mesh := stripMesh(2)
	layout, err := NewLayout([]int{0, 1}, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = (&ParallelWriter{Dir: t.TempDir(), Base: "c"}).Write(ctx, mesh, layout)
	assert.ErrorIs(t, err, context.Canceled)
}
