package partitions

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/notargets/DGExport/element"
)

// ErrLayout is returned for an element-to-partition map that does not fit
// the mesh it is applied to
var ErrLayout = errors.New("partitions: invalid layout")

// Partition is the set of cells written to one piece file
type Partition struct {
	// Unique identifier for this partition
	ID int

	// Element membership
	Elements    []int // Global cell indices in this partition, ascending
	NumElements int

	// Mixed element support
	ElementTypes []element.CellType // Type of each element
	TypeGroups   []ElementGroup     // Grouped by cell type, ascending type code
}

// ElementGroup represents cells of the same type within a partition
type ElementGroup struct {
	ElementType element.CellType
	Count       int   // Number of cells of this type
	LocalIDs    []int // Indices within the partition
}

// PartitionLayout manages the complete mesh decomposition
type PartitionLayout struct {
	// All partitions in the mesh
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(NumElements) across all partitions
	TotalElements int // Sum of all elements across partitions
	NumPartitions int

	// Element to partition mapping
	EToP []int // Length TotalElements: cell k belongs to partition EToP[k]
}

// NewLayout builds a layout from an element-to-partition map. cellTypes is
// optional; when given it must have one entry per element.
func NewLayout(eToP []int, cellTypes []element.CellType) (*PartitionLayout, error) {
	if cellTypes != nil && len(cellTypes) != len(eToP) {
		return nil, fmt.Errorf("%w: EToP length %d does not match %d cell types",
			ErrLayout, len(eToP), len(cellTypes))
	}
	numPartitions := 0
	for k, p := range eToP {
		if p < 0 {
			return nil, fmt.Errorf("%w: element %d assigned to partition %d", ErrLayout, k, p)
		}
		if p+1 > numPartitions {
			numPartitions = p + 1
		}
	}
	if numPartitions == 0 {
		numPartitions = 1
	}

	partitions := make([]Partition, numPartitions)
	for i := range partitions {
		partitions[i] = Partition{ID: i, Elements: make([]int, 0)}
	}
	for elem, part := range eToP {
		partitions[part].Elements = append(partitions[part].Elements, elem)
		if cellTypes != nil {
			partitions[part].ElementTypes = append(partitions[part].ElementTypes, cellTypes[elem])
		}
		partitions[part].NumElements++
	}

	layout := &PartitionLayout{
		Partitions:    partitions,
		TotalElements: len(eToP),
		NumPartitions: numPartitions,
		EToP:          eToP,
	}
	for i := range partitions {
		partitions[i].TypeGroups = createElementGroups(&partitions[i])
		layout.KpartMax = max(layout.KpartMax, partitions[i].NumElements)
	}
	if err := layout.ValidateLayout(); err != nil {
		return nil, err
	}
	return layout, nil
}

// createElementGroups organizes cells by type within a partition
func createElementGroups(p *Partition) []ElementGroup {
	if len(p.ElementTypes) == 0 {
		return nil
	}
	byType := make(map[element.CellType][]int)
	for i, ct := range p.ElementTypes {
		byType[ct] = append(byType[ct], i)
	}
	types := make([]element.CellType, 0, len(byType))
	for ct := range byType {
		types = append(types, ct)
	}
	slices.Sort(types)

	groups := make([]ElementGroup, 0, len(types))
	for _, ct := range types {
		groups = append(groups, ElementGroup{
			ElementType: ct,
			Count:       len(byType[ct]),
			LocalIDs:    byType[ct],
		})
	}
	return groups
}

// GetPartition returns the partition containing element k, or -1
func (pl *PartitionLayout) GetPartition(elementID int) int {
	if elementID < 0 || elementID >= len(pl.EToP) {
		return -1
	}
	return pl.EToP[elementID]
}

// ValidateLayout checks partition consistency
func (pl *PartitionLayout) ValidateLayout() error {
	if len(pl.Partitions) != pl.NumPartitions {
		return fmt.Errorf("%w: %d partitions, NumPartitions %d", ErrLayout, len(pl.Partitions), pl.NumPartitions)
	}
	actualMax, total := 0, 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			return fmt.Errorf("%w: partition at %d has ID %d", ErrLayout, i, p.ID)
		}
		if p.NumElements != len(p.Elements) {
			return fmt.Errorf("%w: partition %d: NumElements %d != %d elements",
				ErrLayout, p.ID, p.NumElements, len(p.Elements))
		}
		for _, e := range p.Elements {
			if pl.GetPartition(e) != p.ID {
				return fmt.Errorf("%w: element %d listed in partition %d, EToP says %d",
					ErrLayout, e, p.ID, pl.GetPartition(e))
			}
		}
		actualMax = max(actualMax, p.NumElements)
		total += p.NumElements
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("%w: computed KpartMax %d != stored KpartMax %d", ErrLayout, actualMax, pl.KpartMax)
	}
	if total != pl.TotalElements || len(pl.EToP) != pl.TotalElements {
		return fmt.Errorf("%w: %d elements in partitions, TotalElements %d, EToP length %d",
			ErrLayout, total, pl.TotalElements, len(pl.EToP))
	}
	return nil
}

type PartitionStats struct {
	NumPartitions int
	MinElements   int
	MaxElements   int
	AvgElements   float64
	Imbalance     float64 // MaxElements / AvgElements
}

// PartitionStatistics computes load balance metrics
func (pl *PartitionLayout) PartitionStatistics() PartitionStats {
	stats := PartitionStats{
		NumPartitions: pl.NumPartitions,
		MinElements:   math.MaxInt,
		AvgElements:   float64(pl.TotalElements) / float64(pl.NumPartitions),
	}
	for _, p := range pl.Partitions {
		stats.MinElements = min(stats.MinElements, p.NumElements)
		stats.MaxElements = max(stats.MaxElements, p.NumElements)
	}
	if stats.AvgElements > 0 {
		stats.Imbalance = float64(stats.MaxElements) / stats.AvgElements
	}
	return stats
}
