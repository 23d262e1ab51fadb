package vtk

import (
	"fmt"
	"reflect"
)

// DataType is the numeric tag written in a DataArray's type attribute
type DataType int

const (
	Int8 DataType = iota + 1
	UInt8
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
)

var dataTypeNames = map[DataType]string{
	Int8:    "Int8",
	UInt8:   "UInt8",
	Int32:   "Int32",
	UInt32:  "UInt32",
	Int64:   "Int64",
	UInt64:  "UInt64",
	Float32: "Float32",
	Float64: "Float64",
}

func (dt DataType) String() string {
	if s, ok := dataTypeNames[dt]; ok {
		return s
	}
	return fmt.Sprintf("DataType(%d)", int(dt))
}

// Size returns the width of one value in bytes
func (dt DataType) Size() int {
	switch dt {
	case Int8, UInt8:
		return 1
	case Int32, UInt32, Float32:
		return 4
	case Int64, UInt64, Float64:
		return 8
	default:
		return 0
	}
}

func (dt DataType) IsFloat() bool { return dt == Float32 || dt == Float64 }

// ParseDataType maps a type attribute back to its tag
func ParseDataType(s string) (DataType, error) {
	for dt, name := range dataTypeNames {
		if name == s {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown data type %q", ErrMalformed, s)
}

// Number is the set of Go types with a VTK data type tag
type Number interface {
	~int8 | ~uint8 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// DataTypeOf returns the tag for T
func DataTypeOf[T Number]() DataType {
	var zero T
	switch reflect.TypeOf(zero).Kind() {
	case reflect.Int8:
		return Int8
	case reflect.Uint8:
		return UInt8
	case reflect.Int32:
		return Int32
	case reflect.Uint32:
		return UInt32
	case reflect.Int64:
		return Int64
	case reflect.Uint64:
		return UInt64
	case reflect.Float32:
		return Float32
	default:
		return Float64
	}
}

// HeaderType is the width of the byte-count header preceding binary blocks
type HeaderType int

const (
	HeaderUInt32 HeaderType = iota
	HeaderUInt64
)

func (h HeaderType) String() string {
	if h == HeaderUInt64 {
		return "UInt64"
	}
	return "UInt32"
}

// Size returns the header width in bytes
func (h HeaderType) Size() int {
	if h == HeaderUInt64 {
		return 8
	}
	return 4
}

// ParseHeaderType accepts "UInt32" or "UInt64", either capitalized or lower
// case. Empty means UInt32.
func ParseHeaderType(s string) (HeaderType, error) {
	switch s {
	case "", "UInt32", "uint32":
		return HeaderUInt32, nil
	case "UInt64", "uint64":
		return HeaderUInt64, nil
	}
	return 0, fmt.Errorf("%w: unknown header type %q", ErrMalformed, s)
}

// Encoding selects how array payloads are written
type Encoding int

const (
	// PlainText writes values as whitespace separated decimal text
	PlainText Encoding = iota
	// PackedBinary writes little-endian raw values behind a byte-count
	// header, base64 encoded
	PackedBinary
)

func (e Encoding) String() string {
	if e == PackedBinary {
		return "binary"
	}
	return "ascii"
}

// ParseEncoding accepts "ascii"/"text" and "binary"/"base64"
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "ascii", "text", "plain":
		return PlainText, nil
	case "binary", "base64":
		return PackedBinary, nil
	}
	return 0, fmt.Errorf("vtk: unknown encoding %q", s)
}
