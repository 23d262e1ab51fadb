package partitions

import (
	"fmt"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/DGExport/element"
)

// ImbalanceFactor is the load imbalance METIS may accept, 1.05 for 5%
var ImbalanceFactor float32 = 1.05

// dualGraph builds the cell adjacency graph in CSR form. Two cells are
// neighbors when they share a facet, that is at least as many vertices as the
// lower of their two dimensions. Vertex weights are vertex counts and edge
// weights the number of shared vertices.
func dualGraph(cells []element.CellRecord, nPoints int) (xadj, adjncy, vwgt, adjwgt []int32) {
	pointCells := make([][]int, nPoints)
	for k, c := range cells {
		for _, v := range c.Vertices {
			if n := len(pointCells[v]); n == 0 || pointCells[v][n-1] != k {
				pointCells[v] = append(pointCells[v], k)
			}
		}
	}

	xadj = make([]int32, len(cells)+1)
	vwgt = make([]int32, len(cells))
	shared := make(map[int]int32)
	var order []int
	for k, c := range cells {
		vwgt[k] = int32(len(c.Vertices))
		clear(shared)
		order = order[:0]
		for _, v := range c.Vertices {
			for _, nb := range pointCells[v] {
				if nb == k {
					continue
				}
				if _, ok := shared[nb]; !ok {
					order = append(order, nb)
				}
				shared[nb]++
			}
		}
		for _, nb := range order {
			facet := max(int32(min(c.Type.Dimensions(), cells[nb].Type.Dimensions())), 1)
			if shared[nb] >= facet {
				adjncy = append(adjncy, int32(nb))
				adjwgt = append(adjwgt, shared[nb])
			}
		}
		xadj[k+1] = int32(len(adjncy))
	}
	return xadj, adjncy, vwgt, adjwgt
}

// metisPartition assigns cells to numPartitions parts with METIS k-way
// partitioning of the dual graph, minimizing communication volume
func metisPartition(cells []element.CellRecord, nPoints, numPartitions int) ([]int, error) {
	eToP := make([]int, len(cells))
	if numPartitions <= 1 || len(cells) == 0 {
		return eToP, nil
	}
	if numPartitions >= len(cells) {
		for k := range eToP {
			eToP[k] = k
		}
		return eToP, nil
	}

	xadj, adjncy, vwgt, adjwgt := dualGraph(cells, nPoints)
	opts := make([]int32, metis.NoOptions)
	if err := metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("setting METIS options: %w", err)
	}
	opts[metis.OptionObjType] = metis.ObjTypeVol

	part, _, err := metis.PartGraphKwayWeighted(xadj, adjncy, vwgt, adjwgt,
		int32(numPartitions), nil, []float32{ImbalanceFactor}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: METIS partitioning failed: %w", ErrLayout, err)
	}
	for k := range eToP {
		eToP[k] = int(part[k])
	}
	return eToP, nil
}
