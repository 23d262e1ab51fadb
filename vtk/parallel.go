package vtk

import (
	"bufio"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ArraySpec declares one array of a parallel index without its data
type ArraySpec struct {
	Name       string
	Type       DataType
	Components int
}

// ParallelIndex describes a .pvtu document: the arrays every piece carries
// and the piece files, relative to the index.
type ParallelIndex struct {
	PointData []ArraySpec
	CellData  []ArraySpec
	Sources   []string
}

// SpecsOf returns the declarations matching arrays, all Float64
func SpecsOf(arrays []FieldArray) []ArraySpec {
	out := make([]ArraySpec, len(arrays))
	for i, a := range arrays {
		out[i] = ArraySpec{Name: a.Name, Type: Float64, Components: a.Components}
	}
	return out
}

// WriteParallelIndex writes a PUnstructuredGrid index referencing the piece
// files of a partitioned mesh
func WriteParallelIndex(path string, idx ParallelIndex, opts ...Option) error {
	o := newOptions(opts)
	err := writeAtomic(path, func(w *bufio.Writer) error { return emitParallel(w, idx, o.header) })
	if err != nil {
		return err
	}
	o.log.WithFields(logrus.Fields{"path": path, "pieces": len(idx.Sources)}).Debug("wrote parallel index")
	return nil
}

func emitParallel(w *bufio.Writer, idx ParallelIndex, h HeaderType) error {
	fmt.Fprintln(w, `<?xml version="1.0"?>`)
	fmt.Fprintf(w, "<VTKFile type=\"PUnstructuredGrid\" version=\"1.0\" byte_order=\"LittleEndian\" header_type=\"%s\">\n", h)
	fmt.Fprintln(w, `  <PUnstructuredGrid GhostLevel="0">`)
	emitPSection(w, "PPointData", idx.PointData)
	emitPSection(w, "PCellData", idx.CellData)
	emitPSection(w, "PPoints", []ArraySpec{{Name: "Points", Type: Float64, Components: 3}})
	for _, src := range idx.Sources {
		fmt.Fprintf(w, "    <Piece Source=\"%s\"/>\n", escapeAttr(src))
	}
	fmt.Fprintln(w, "  </PUnstructuredGrid>")
	if _, err := fmt.Fprintln(w, "</VTKFile>"); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func emitPSection(w *bufio.Writer, name string, specs []ArraySpec) {
	if len(specs) == 0 {
		fmt.Fprintf(w, "    <%s/>\n", name)
		return
	}
	fmt.Fprintf(w, "    <%s>\n", name)
	for _, s := range specs {
		fmt.Fprintf(w, "      <PDataArray type=\"%s\" Name=\"%s\" NumberOfComponents=\"%d\"/>\n",
			s.Type, escapeAttr(s.Name), s.Components)
	}
	fmt.Fprintf(w, "    </%s>\n", name)
}
