package partitions

import (
	"fmt"
	"math"
	"slices"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/fields"
	"github.com/notargets/DGExport/vtk"
)

// PartitionStrategy defines how cells are grouped
type PartitionStrategy int

const (
	BlockPartition    PartitionStrategy = iota // Consecutive cells
	RoundRobin                                 // Distribute cyclically
	SpaceFillingCurve                          // Morton order of cell centroids, then blocks
	MetisPartition                             // METIS k-way cut of the cell dual graph
)

var strategyNames = map[PartitionStrategy]string{
	BlockPartition:    "block",
	RoundRobin:        "roundrobin",
	SpaceFillingCurve: "morton",
	MetisPartition:    "metis",
}

func (s PartitionStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(s))
}

// ParseStrategy accepts block, roundrobin, morton or metis
func ParseStrategy(name string) (PartitionStrategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrLayout, name)
}

// PartitionBuilder constructs a layout for a mesh
type PartitionBuilder struct {
	Mesh *vtk.Mesh

	// Partitioning parameters. NumPartitions wins when positive.
	NumPartitions       int
	TargetPartitionSize int
	Strategy            PartitionStrategy
}

// BuildPartitions creates a partition layout for the builder's mesh
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.Mesh == nil {
		return nil, fmt.Errorf("%w: no mesh", ErrLayout)
	}
	cells := cellsOf(*pb.Mesh)
	if _, err := element.Flatten(cells, len(pb.Mesh.Points)); err != nil {
		return nil, err
	}
	numPartitions, err := pb.calculateNumPartitions(len(cells))
	if err != nil {
		return nil, err
	}

	var eToP []int
	switch pb.Strategy {
	case RoundRobin:
		eToP = make([]int, len(cells))
		for i := range eToP {
			eToP[i] = i % numPartitions
		}
	case SpaceFillingCurve:
		eToP = blocks(mortonOrder(pb.Mesh.Points, cells), numPartitions)
	case MetisPartition:
		if eToP, err = metisPartition(cells, len(pb.Mesh.Points), numPartitions); err != nil {
			return nil, err
		}
	default:
		order := make([]int, len(cells))
		for i := range order {
			order[i] = i
		}
		eToP = blocks(order, numPartitions)
	}

	types := make([]element.CellType, len(cells))
	for k, c := range cells {
		types[k] = c.Type
	}
	layout, err := NewLayout(eToP, types)
	if err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return layout, nil
}

// calculateNumPartitions determines the partition count
func (pb *PartitionBuilder) calculateNumPartitions(numElements int) (int, error) {
	if pb.NumPartitions > 0 {
		return pb.NumPartitions, nil
	}
	if pb.TargetPartitionSize <= 0 {
		return 0, fmt.Errorf("%w: need NumPartitions or TargetPartitionSize", ErrLayout)
	}
	numPartitions := int(math.Ceil(float64(numElements) / float64(pb.TargetPartitionSize)))
	return max(numPartitions, 1), nil
}

// blocks assigns cells to partitions in consecutive runs of order
func blocks(order []int, numPartitions int) []int {
	eToP := make([]int, len(order))
	perPartition := max(int(math.Ceil(float64(len(order))/float64(numPartitions))), 1)
	for i, k := range order {
		eToP[k] = min(i/perPartition, numPartitions-1)
	}
	return eToP
}

// mortonOrder sorts cells by the Z-order code of their centroid, quantized
// to 21 bits per axis inside the point bounding box
func mortonOrder(points []fields.Vector3, cells []element.CellRecord) []int {
	const bits = 21
	var lo, hi fields.Vector3
	for d := 0; d < 3; d++ {
		lo[d], hi[d] = math.Inf(1), math.Inf(-1)
	}
	for _, p := range points {
		for d := 0; d < 3; d++ {
			lo[d], hi[d] = min(lo[d], p[d]), max(hi[d], p[d])
		}
	}

	codes := make([]uint64, len(cells))
	for k, c := range cells {
		var centroid fields.Vector3
		for _, v := range c.Vertices {
			for d := 0; d < 3; d++ {
				centroid[d] += points[v][d]
			}
		}
		var q [3]uint64
		for d := 0; d < 3; d++ {
			centroid[d] /= float64(len(c.Vertices))
			if span := hi[d] - lo[d]; span > 0 {
				q[d] = uint64((centroid[d] - lo[d]) / span * float64(1<<bits-1))
			}
		}
		for b := 0; b < bits; b++ {
			for d := 0; d < 3; d++ {
				codes[k] |= (q[d] >> b & 1) << (3*b + d)
			}
		}
	}

	order := make([]int, len(cells))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case codes[a] < codes[b]:
			return -1
		case codes[a] > codes[b]:
			return 1
		}
		return 0
	})
	return order
}

func cellsOf(mesh vtk.Mesh) []element.CellRecord {
	if mesh.Cells == nil {
		return element.PointCloud(len(mesh.Points))
	}
	return mesh.Cells
}
