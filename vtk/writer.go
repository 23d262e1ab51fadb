package vtk

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/notargets/DGExport/element"
	"github.com/notargets/DGExport/fields"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Mesh is one UnstructuredGrid piece
type Mesh struct {
	Points    []fields.Vector3     // [P]
	Cells     []element.CellRecord // [C], nil writes one Vertex cell per point
	PointData []FieldArray         // each Components × P values
	CellData  []FieldArray         // each Components × C values
}

// Point is the set of point types accepted by WriteGrid
type Point interface {
	fields.Vector2 | fields.Vector3
}

// Promote returns points as 3D coordinates. 2D points get z = 0; 3D input
// is returned as is.
func Promote[P Point](points []P) []fields.Vector3 {
	switch s := any(points).(type) {
	case []fields.Vector3:
		return s
	case []fields.Vector2:
		out := make([]fields.Vector3, len(s))
		for i, p := range s {
			out[i] = p.Pad3()
		}
		return out
	}
	return nil
}

// WriteGrid writes points with optional per-cell connectivity and cell
// types. connectivity and cellTypes are either both nil, giving one Vertex
// cell per point, or both present with one entry per cell.
func WriteGrid[P Point](path string, points []P, connectivity [][]int, cellTypes []element.CellType,
	pointData, cellData []FieldArray, enc Encoding, opts ...Option) error {
	if (connectivity == nil) != (cellTypes == nil) {
		return fmt.Errorf("%w: connectivity and cell types must both be given or both be nil",
			ErrCellsMismatch)
	}
	var cells []element.CellRecord
	if connectivity != nil {
		var err error
		if cells, err = element.Records(connectivity, cellTypes); err != nil {
			return err
		}
	}
	mesh := Mesh{
		Points:    Promote(points),
		Cells:     cells,
		PointData: pointData,
		CellData:  cellData,
	}
	return WriteMesh(path, mesh, append([]Option{WithEncoding(enc)}, opts...)...)
}

// WriteMesh validates mesh, then writes it to path as a .vtu document. No
// file is created when validation fails, and a failed write leaves nothing
// at path.
func WriteMesh(path string, mesh Mesh, opts ...Option) error {
	o := newOptions(opts)
	g, err := prepareGrid(mesh, o)
	if err != nil {
		return err
	}
	if err = writeAtomic(path, g.emit); err != nil {
		return err
	}
	o.log.WithFields(logrus.Fields{
		"path":     path,
		"points":   g.nPoints,
		"cells":    g.nCells,
		"encoding": o.encoding,
		"appended": g.appended(),
	}).Debug("wrote unstructured grid")
	return nil
}

// WriteMeshTo writes the .vtu document for mesh to w
func WriteMeshTo(w io.Writer, mesh Mesh, opts ...Option) error {
	g, err := prepareGrid(mesh, newOptions(opts))
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if err = g.emit(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// dataArray is one DataArray element, encoded and placed before emission
type dataArray struct {
	Type       DataType
	Name       string
	Components int // 0 omits NumberOfComponents
	ascii      func(dst []byte, indent string) []byte
	binary     func(h HeaderType) (string, error)
	encoded    string // base64 block when binary
	offset     int    // into AppendedData when appended
	hasRange   bool
	rangeMin   float64
	rangeMax   float64
}

func newArray[T Number](name string, components, perLine int, data []T) *dataArray {
	return &dataArray{
		Type:       DataTypeOf[T](),
		Name:       name,
		Components: components,
		ascii: func(dst []byte, indent string) []byte {
			return appendASCII(dst, data, perLine, indent)
		},
		binary: func(h HeaderType) (string, error) { return EncodeBinary(data, h) },
	}
}

func (a *dataArray) setRange(v fields.FlatView, components int) {
	if v.Len() == 0 {
		return
	}
	vals := v.Raw()
	if components > 1 {
		vals = v.TupleNorms(components)
	}
	a.hasRange, a.rangeMin, a.rangeMax = true, floats.Min(vals), floats.Max(vals)
}

type grid struct {
	opts            options
	nPoints, nCells int
	pointData       []*dataArray
	cellData        []*dataArray
	points          *dataArray
	cells           []*dataArray // connectivity, offsets, types
}

func (g *grid) appended() bool { return g.opts.encoding == PackedBinary && !g.opts.inline }

// all returns the arrays in document order
func (g *grid) all() []*dataArray {
	out := make([]*dataArray, 0, len(g.pointData)+len(g.cellData)+4)
	out = append(out, g.pointData...)
	out = append(out, g.cellData...)
	out = append(out, g.points)
	return append(out, g.cells...)
}

// prepareGrid is the first pass: validate everything, build the arrays and,
// for binary output, encode every block and fix the appended offsets.
func prepareGrid(mesh Mesh, o options) (*grid, error) {
	if o.indexType != Int32 && o.indexType != Int64 {
		return nil, fmt.Errorf("vtk: index type %s is not Int32 or Int64", o.indexType)
	}
	g := &grid{opts: o, nPoints: len(mesh.Points)}

	cells := mesh.Cells
	if cells == nil {
		cells = element.PointCloud(g.nPoints)
	}
	topo, err := element.Flatten(cells, g.nPoints)
	if err != nil {
		return nil, err
	}
	g.nCells = topo.NCells()

	if err = validateSection("PointData", mesh.PointData, g.nPoints); err != nil {
		return nil, err
	}
	if err = validateSection("CellData", mesh.CellData, g.nCells); err != nil {
		return nil, err
	}

	for _, f := range mesh.PointData {
		g.pointData = append(g.pointData, g.fieldArray(f))
	}
	for _, f := range mesh.CellData {
		g.cellData = append(g.cellData, g.fieldArray(f))
	}

	pts := fields.ViewOf(mesh.Points)
	g.points = newArray("Points", 3, pointsPerLine, pts.Raw())
	if o.ranges {
		g.points.setRange(pts, 3)
	}

	indexType := o.indexType
	if indexType == Int32 && (topo.MaxIndex > math.MaxInt32 || int64(len(topo.Connectivity)) > math.MaxInt32) {
		o.log.WithField("connectivity", len(topo.Connectivity)).Debug("promoting indices to Int64")
		indexType = Int64
	}
	if indexType == Int64 {
		g.cells = []*dataArray{
			newArray("connectivity", 0, connectivityPerLine, topo.Connectivity),
			newArray("offsets", 0, offsetsPerLine, topo.Offsets),
		}
	} else {
		g.cells = []*dataArray{
			newArray("connectivity", 0, connectivityPerLine, narrow(topo.Connectivity)),
			newArray("offsets", 0, offsetsPerLine, narrow(topo.Offsets)),
		}
	}
	g.cells = append(g.cells, newArray("types", 0, typesPerLine, topo.Types))

	if o.encoding == PackedBinary {
		offset := 0
		for _, a := range g.all() {
			if a.encoded, err = a.binary(o.header); err != nil {
				return nil, fmt.Errorf("%s: %w", a.Name, err)
			}
			a.offset = offset
			offset += len(a.encoded)
		}
	}
	return g, nil
}

func (g *grid) fieldArray(f FieldArray) *dataArray {
	a := newArray(f.Name, f.Components, fieldValuesPerLine, f.Data.Raw())
	if g.opts.ranges {
		a.setRange(f.Data, f.Components)
	}
	return a
}

func narrow(s []int64) []int32 {
	out := make([]int32, len(s))
	for i, v := range s {
		out[i] = int32(v)
	}
	return out
}

const (
	indentPiece   = "    "
	indentSection = "      "
	indentArray   = "        "
	indentValues  = "          "
)

// emit is the second pass: write the XML structure, then the appended blocks
func (g *grid) emit(w *bufio.Writer) error {
	fmt.Fprintln(w, `<?xml version="1.0"?>`)
	fmt.Fprintf(w, "<VTKFile type=\"UnstructuredGrid\" version=\"1.0\" byte_order=\"LittleEndian\" header_type=\"%s\">\n",
		g.opts.header)
	fmt.Fprintln(w, "  <UnstructuredGrid>")
	fmt.Fprintf(w, "%s<Piece NumberOfPoints=\"%d\" NumberOfCells=\"%d\">\n", indentPiece, g.nPoints, g.nCells)

	var scratch []byte
	g.emitSection(w, &scratch, "PointData", g.pointData)
	g.emitSection(w, &scratch, "CellData", g.cellData)
	g.emitSection(w, &scratch, "Points", []*dataArray{g.points})
	g.emitSection(w, &scratch, "Cells", g.cells)

	fmt.Fprintf(w, "%s</Piece>\n", indentPiece)
	fmt.Fprintln(w, "  </UnstructuredGrid>")
	if g.appended() {
		fmt.Fprintln(w, `  <AppendedData encoding="base64">`)
		w.WriteString("   _")
		for _, a := range g.all() {
			w.WriteString(a.encoded)
		}
		w.WriteString("\n  </AppendedData>\n")
	}
	_, err := fmt.Fprintln(w, "</VTKFile>")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func (g *grid) emitSection(w *bufio.Writer, scratch *[]byte, name string, arrays []*dataArray) {
	if len(arrays) == 0 {
		fmt.Fprintf(w, "%s<%s/>\n", indentSection, name)
		return
	}
	fmt.Fprintf(w, "%s<%s>\n", indentSection, name)
	for _, a := range arrays {
		g.emitArray(w, scratch, a)
	}
	fmt.Fprintf(w, "%s</%s>\n", indentSection, name)
}

func (g *grid) emitArray(w *bufio.Writer, scratch *[]byte, a *dataArray) {
	var format string
	switch {
	case g.opts.encoding == PlainText:
		format = "ascii"
	case g.opts.inline:
		format = "binary"
	default:
		format = "appended"
	}
	w.WriteString(indentArray)
	w.WriteString(a.openTag(format))
	switch format {
	case "appended":
		w.WriteString("/>\n")
		return
	case "binary":
		w.WriteString(">\n")
		w.WriteString(indentValues)
		w.WriteString(a.encoded)
		w.WriteByte('\n')
	default:
		w.WriteString(">\n")
		*scratch = a.ascii((*scratch)[:0], indentValues)
		w.Write(*scratch)
	}
	w.WriteString(indentArray)
	w.WriteString("</DataArray>\n")
}

func (a *dataArray) openTag(format string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<DataArray type="%s" Name="%s"`, a.Type, escapeAttr(a.Name))
	if a.Components > 0 {
		fmt.Fprintf(&sb, ` NumberOfComponents="%d"`, a.Components)
	}
	fmt.Fprintf(&sb, ` format="%s"`, format)
	if format == "appended" {
		fmt.Fprintf(&sb, ` offset="%d"`, a.offset)
	}
	if a.hasRange {
		fmt.Fprintf(&sb, ` RangeMin="%s" RangeMax="%s"`, formatFloat(a.rangeMin), formatFloat(a.rangeMax))
	}
	return sb.String()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func escapeAttr(s string) string {
	var sb strings.Builder
	_ = xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
