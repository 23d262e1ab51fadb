package vtk

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Array is one decoded DataArray. Floating point arrays fill Floats,
// integer arrays fill Ints.
type Array struct {
	Name       string
	Type       DataType
	Components int
	Format     string
	Floats     []float64
	Ints       []int64
	RangeMin   *float64
	RangeMax   *float64
}

// Len returns the number of decoded values
func (a Array) Len() int { return len(a.Floats) + len(a.Ints) }

// Document is a decoded single-piece UnstructuredGrid
type Document struct {
	Version        string
	HeaderType     HeaderType
	NumberOfPoints int
	NumberOfCells  int
	Points         Array // Floats holds 3 × NumberOfPoints coordinates
	Connectivity   []int64
	Offsets        []int64
	Types          []uint8
	IndexType      DataType
	PointData      []Array
	CellData       []Array
}

// PointArray returns the point data array named name
func (d *Document) PointArray(name string) (Array, bool) { return findArray(d.PointData, name) }

// CellArray returns the cell data array named name
func (d *Document) CellArray(name string) (Array, bool) { return findArray(d.CellData, name) }

func findArray(arrays []Array, name string) (Array, bool) {
	for _, a := range arrays {
		if a.Name == name {
			return a, true
		}
	}
	return Array{}, false
}

type xmlFile struct {
	XMLName    xml.Name       `xml:"VTKFile"`
	Type       string         `xml:"type,attr"`
	Version    string         `xml:"version,attr"`
	ByteOrder  string         `xml:"byte_order,attr"`
	HeaderType string         `xml:"header_type,attr"`
	Grid       *xmlGrid       `xml:"UnstructuredGrid"`
	PGrid      *xmlPGrid      `xml:"PUnstructuredGrid"`
	Collection *xmlCollection `xml:"Collection"`
	Appended   *xmlAppended   `xml:"AppendedData"`
}

type xmlGrid struct {
	Pieces []xmlPiece `xml:"Piece"`
}

type xmlPiece struct {
	NumberOfPoints int       `xml:"NumberOfPoints,attr"`
	NumberOfCells  int       `xml:"NumberOfCells,attr"`
	PointData      xmlArrays `xml:"PointData"`
	CellData       xmlArrays `xml:"CellData"`
	Points         xmlArrays `xml:"Points"`
	Cells          xmlArrays `xml:"Cells"`
}

type xmlArrays struct {
	Arrays []xmlDataArray `xml:"DataArray"`
}

type xmlDataArray struct {
	Type       string   `xml:"type,attr"`
	Name       string   `xml:"Name,attr"`
	Components int      `xml:"NumberOfComponents,attr"`
	Format     string   `xml:"format,attr"`
	Offset     *int     `xml:"offset,attr"`
	RangeMin   *float64 `xml:"RangeMin,attr"`
	RangeMax   *float64 `xml:"RangeMax,attr"`
	Body       string   `xml:",chardata"`
}

type xmlAppended struct {
	Encoding string `xml:"encoding,attr"`
	Body     string `xml:",chardata"`
}

type xmlCollection struct {
	DataSets []xmlDataSet `xml:"DataSet"`
}

type xmlDataSet struct {
	Timestep float64 `xml:"timestep,attr"`
	Part     int     `xml:"part,attr"`
	File     string  `xml:"file,attr"`
}

type xmlPGrid struct {
	PointData xmlPArrays `xml:"PPointData"`
	CellData  xmlPArrays `xml:"PCellData"`
	Points    xmlPArrays `xml:"PPoints"`
	Pieces    []struct {
		Source string `xml:"Source,attr"`
	} `xml:"Piece"`
}

type xmlPArrays struct {
	Arrays []struct {
		Type       string `xml:"type,attr"`
		Name       string `xml:"Name,attr"`
		Components int    `xml:"NumberOfComponents,attr"`
	} `xml:"PDataArray"`
}

func parseFile(r io.Reader, want string) (*xmlFile, error) {
	var f xmlFile
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if f.Type != want {
		return nil, fmt.Errorf("%w: VTKFile type %q, expected %q", ErrMalformed, f.Type, want)
	}
	if f.ByteOrder != "" && f.ByteOrder != "LittleEndian" {
		return nil, fmt.Errorf("%w: byte order %q", ErrMalformed, f.ByteOrder)
	}
	return &f, nil
}

func openParse(path, want string) (*xmlFile, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer fh.Close()
	return parseFile(fh, want)
}

// ReadMesh decodes a .vtu file in any of the layouts WriteMesh produces
func ReadMesh(path string) (*Document, error) {
	f, err := openParse(path, "UnstructuredGrid")
	if err != nil {
		return nil, err
	}
	return decodeGrid(f)
}

// ParseMesh decodes a .vtu document from r
func ParseMesh(r io.Reader) (*Document, error) {
	f, err := parseFile(r, "UnstructuredGrid")
	if err != nil {
		return nil, err
	}
	return decodeGrid(f)
}

func decodeGrid(f *xmlFile) (*Document, error) {
	if f.Grid == nil || len(f.Grid.Pieces) != 1 {
		return nil, fmt.Errorf("%w: expected one UnstructuredGrid piece", ErrMalformed)
	}
	h, err := ParseHeaderType(f.HeaderType)
	if err != nil {
		return nil, err
	}
	dec := arrayDecoder{header: h}
	if f.Appended != nil {
		if f.Appended.Encoding != "base64" {
			return nil, fmt.Errorf("%w: appended encoding %q", ErrMalformed, f.Appended.Encoding)
		}
		i := strings.IndexByte(f.Appended.Body, '_')
		if i < 0 {
			return nil, fmt.Errorf("%w: AppendedData without leading underscore", ErrMalformed)
		}
		dec.appended = strings.TrimRight(f.Appended.Body[i+1:], " \t\r\n")
	}

	p := f.Grid.Pieces[0]
	doc := &Document{
		Version:        f.Version,
		HeaderType:     h,
		NumberOfPoints: p.NumberOfPoints,
		NumberOfCells:  p.NumberOfCells,
	}
	if doc.PointData, err = dec.decodeAll(p.PointData.Arrays); err != nil {
		return nil, fmt.Errorf("PointData: %w", err)
	}
	if doc.CellData, err = dec.decodeAll(p.CellData.Arrays); err != nil {
		return nil, fmt.Errorf("CellData: %w", err)
	}
	if len(p.Points.Arrays) != 1 {
		return nil, fmt.Errorf("%w: Points holds %d arrays", ErrMalformed, len(p.Points.Arrays))
	}
	if doc.Points, err = dec.decode(p.Points.Arrays[0]); err != nil {
		return nil, fmt.Errorf("Points: %w", err)
	}
	cells, err := dec.decodeAll(p.Cells.Arrays)
	if err != nil {
		return nil, fmt.Errorf("Cells: %w", err)
	}
	for _, a := range cells {
		switch a.Name {
		case "connectivity":
			doc.Connectivity, doc.IndexType = a.Ints, a.Type
		case "offsets":
			doc.Offsets = a.Ints
		case "types":
			doc.Types = make([]uint8, len(a.Ints))
			for i, v := range a.Ints {
				doc.Types[i] = uint8(v)
			}
		}
	}
	if len(doc.Offsets) != doc.NumberOfCells || len(doc.Types) != doc.NumberOfCells {
		return nil, fmt.Errorf("%w: %d cells, %d offsets, %d types",
			ErrMalformed, doc.NumberOfCells, len(doc.Offsets), len(doc.Types))
	}
	if doc.Points.Len() != 3*doc.NumberOfPoints {
		return nil, fmt.Errorf("%w: %d coordinates for %d points", ErrMalformed, doc.Points.Len(), doc.NumberOfPoints)
	}
	return doc, nil
}

type arrayDecoder struct {
	header   HeaderType
	appended string
}

func (d arrayDecoder) decodeAll(xs []xmlDataArray) ([]Array, error) {
	out := make([]Array, 0, len(xs))
	for _, x := range xs {
		a, err := d.decode(x)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (d arrayDecoder) decode(x xmlDataArray) (Array, error) {
	dt, err := ParseDataType(x.Type)
	if err != nil {
		return Array{}, err
	}
	a := Array{
		Name:       x.Name,
		Type:       dt,
		Components: x.Components,
		Format:     x.Format,
		RangeMin:   x.RangeMin,
		RangeMax:   x.RangeMax,
	}
	var raw []byte
	switch x.Format {
	case "ascii":
		err = a.fillASCII(x.Body)
		if err != nil {
			return Array{}, fmt.Errorf("%q: %w", x.Name, err)
		}
		return a, nil
	case "binary":
		if raw, err = base64.StdEncoding.DecodeString(stripSpace(x.Body)); err != nil {
			return Array{}, fmt.Errorf("%w: %q: %w", ErrMalformed, x.Name, err)
		}
	case "appended":
		if x.Offset == nil {
			return Array{}, fmt.Errorf("%w: %q is appended without an offset", ErrMalformed, x.Name)
		}
		if raw, err = d.appendedBlock(*x.Offset); err != nil {
			return Array{}, fmt.Errorf("%q: %w", x.Name, err)
		}
	default:
		return Array{}, fmt.Errorf("%w: %q has format %q", ErrMalformed, x.Name, x.Format)
	}
	if err = a.fillBinary(raw, d.header); err != nil {
		return Array{}, fmt.Errorf("%q: %w", x.Name, err)
	}
	return a, nil
}

// appendedBlock decodes the block starting at offset. The header is decoded
// first to learn the payload size, which fixes the encoded block length.
func (d arrayDecoder) appendedBlock(offset int) ([]byte, error) {
	hdrChars := base64.StdEncoding.EncodedLen(d.header.Size())
	if offset < 0 || offset+hdrChars > len(d.appended) {
		return nil, fmt.Errorf("%w: offset %d outside appended data of %d chars",
			ErrMalformed, offset, len(d.appended))
	}
	head, err := base64.StdEncoding.DecodeString(d.appended[offset : offset+hdrChars])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	n, err := readHeader(head, d.header)
	if err != nil {
		return nil, err
	}
	if n > uint64(len(d.appended)) {
		return nil, fmt.Errorf("%w: block at %d declares %d bytes", ErrMalformed, offset, n)
	}
	end := offset + encodedBlockLen(d.header, n)
	if end < offset || end > len(d.appended) {
		return nil, fmt.Errorf("%w: block at %d runs past appended data", ErrMalformed, offset)
	}
	raw, err := base64.StdEncoding.DecodeString(d.appended[offset:end])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return raw, nil
}

func (a *Array) fillASCII(body string) error {
	var err error
	switch a.Type {
	case Float64:
		a.Floats, err = DecodeASCII[float64](body)
	case Float32:
		a.Floats, err = widenF[float32](DecodeASCII[float32](body))
	case Int8:
		a.Ints, err = widenI[int8](DecodeASCII[int8](body))
	case UInt8:
		a.Ints, err = widenI[uint8](DecodeASCII[uint8](body))
	case Int32:
		a.Ints, err = widenI[int32](DecodeASCII[int32](body))
	case UInt32:
		a.Ints, err = widenI[uint32](DecodeASCII[uint32](body))
	case Int64:
		a.Ints, err = DecodeASCII[int64](body)
	case UInt64:
		a.Ints, err = widenI[uint64](DecodeASCII[uint64](body))
	}
	return err
}

func (a *Array) fillBinary(raw []byte, h HeaderType) error {
	var err error
	switch a.Type {
	case Float64:
		a.Floats, err = decodeBlock[float64](raw, h)
	case Float32:
		a.Floats, err = widenF[float32](decodeBlock[float32](raw, h))
	case Int8:
		a.Ints, err = widenI[int8](decodeBlock[int8](raw, h))
	case UInt8:
		a.Ints, err = widenI[uint8](decodeBlock[uint8](raw, h))
	case Int32:
		a.Ints, err = widenI[int32](decodeBlock[int32](raw, h))
	case UInt32:
		a.Ints, err = widenI[uint32](decodeBlock[uint32](raw, h))
	case Int64:
		a.Ints, err = decodeBlock[int64](raw, h)
	case UInt64:
		a.Ints, err = widenI[uint64](decodeBlock[uint64](raw, h))
	}
	return err
}

func widenF[T float32 | float64](s []T, err error) ([]float64, error) {
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out, nil
}

func widenI[T Number](s []T, err error) ([]int64, error) {
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(s))
	for i, v := range s {
		out[i] = int64(v)
	}
	return out, nil
}

// ReadSeries decodes a .pvd collection
func ReadSeries(path string) ([]SeriesEntry, error) {
	f, err := openParse(path, "Collection")
	if err != nil {
		return nil, err
	}
	if f.Collection == nil {
		return nil, fmt.Errorf("%w: no Collection element", ErrMalformed)
	}
	out := make([]SeriesEntry, len(f.Collection.DataSets))
	for i, ds := range f.Collection.DataSets {
		out[i] = SeriesEntry{Time: ds.Timestep, File: ds.File, Part: ds.Part}
	}
	return out, nil
}

// ReadParallelIndex decodes a .pvtu index
func ReadParallelIndex(path string) (*ParallelIndex, error) {
	f, err := openParse(path, "PUnstructuredGrid")
	if err != nil {
		return nil, err
	}
	if f.PGrid == nil {
		return nil, fmt.Errorf("%w: no PUnstructuredGrid element", ErrMalformed)
	}
	specs := func(p xmlPArrays) ([]ArraySpec, error) {
		out := make([]ArraySpec, 0, len(p.Arrays))
		for _, a := range p.Arrays {
			dt, err := ParseDataType(a.Type)
			if err != nil {
				return nil, err
			}
			out = append(out, ArraySpec{Name: a.Name, Type: dt, Components: a.Components})
		}
		return out, nil
	}
	idx := &ParallelIndex{}
	if idx.PointData, err = specs(f.PGrid.PointData); err != nil {
		return nil, err
	}
	if idx.CellData, err = specs(f.PGrid.CellData); err != nil {
		return nil, err
	}
	for _, p := range f.PGrid.Pieces {
		idx.Sources = append(idx.Sources, p.Source)
	}
	return idx, nil
}
