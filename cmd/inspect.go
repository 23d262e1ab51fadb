package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/vtk"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.vtu|file.pvd|file.pvtu>",
	Short: "Print a summary of a VTK file written by dgexport",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd.OutOrStdout(), args[0])
	},
}

func inspect(w io.Writer, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pvd":
		entries, err := vtk.ReadSeries(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: collection of %d datasets\n", path, len(entries))
		for _, e := range entries {
			fmt.Fprintf(w, "  t=%-12g %s\n", e.Time, e.File)
		}
		return nil
	case ".pvtu":
		idx, err := vtk.ReadParallelIndex(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d pieces\n", path, len(idx.Sources))
		printSpecs(w, "point", idx.PointData)
		printSpecs(w, "cell", idx.CellData)
		for _, s := range idx.Sources {
			fmt.Fprintf(w, "  piece %s\n", s)
		}
		return nil
	}

	doc, err := vtk.ReadMesh(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d points, %d cells, header %s, index %s\n",
		path, doc.NumberOfPoints, doc.NumberOfCells, doc.HeaderType, doc.IndexType)
	counts := map[uint8]int{}
	for _, t := range doc.Types {
		counts[t]++
	}
	for _, ct := range element.CellTypes() {
		if n := counts[ct.Code()]; n > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", ct, n)
		}
	}
	printArrays(w, "point", doc.PointData)
	printArrays(w, "cell", doc.CellData)
	return nil
}

func printSpecs(w io.Writer, kind string, specs []vtk.ArraySpec) {
	for _, s := range specs {
		fmt.Fprintf(w, "  %s array %q %s x%d\n", kind, s.Name, s.Type, s.Components)
	}
}

func printArrays(w io.Writer, kind string, arrays []vtk.Array) {
	for _, a := range arrays {
		fmt.Fprintf(w, "  %s array %q %s x%d (%s, %d values)\n",
			kind, a.Name, a.Type, a.Components, a.Format, a.Len())
	}
}
