package vtk

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Values per line for PlainText arrays
const (
	pointsPerLine       = 2 * 3
	connectivityPerLine = 10
	offsetsPerLine      = 10
	typesPerLine        = 20
	fieldValuesPerLine  = 6
)

// appendRaw appends the little-endian bytes of data
func appendRaw[T Number](dst []byte, data []T) []byte {
	if len(data) == 0 {
		return dst
	}
	out, err := binary.Append(dst, binary.LittleEndian, data)
	if err != nil {
		// data is a slice of fixed-size values, which binary always accepts
		panic(fmt.Sprintf("vtk: encoding %T: %v", data, err))
	}
	return out
}

func appendHeader(dst []byte, h HeaderType, n int) ([]byte, error) {
	if h == HeaderUInt64 {
		return binary.LittleEndian.AppendUint64(dst, uint64(n)), nil
	}
	if uint64(n) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes with a UInt32 header", ErrTooLarge, n)
	}
	return binary.LittleEndian.AppendUint32(dst, uint32(n)), nil
}

// EncodeBinary returns base64(header + little-endian values), the header
// holding the raw byte length of the values.
func EncodeBinary[T Number](data []T, h HeaderType) (string, error) {
	n := len(data) * DataTypeOf[T]().Size()
	buf := make([]byte, 0, h.Size()+n)
	buf, err := appendHeader(buf, h, n)
	if err != nil {
		return "", err
	}
	buf = appendRaw(buf, data)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// DecodeBinary is the inverse of EncodeBinary. Whitespace in s is ignored.
func DecodeBinary[T Number](s string, h HeaderType) ([]T, error) {
	raw, err := base64.StdEncoding.DecodeString(stripSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return decodeBlock[T](raw, h)
}

func decodeBlock[T Number](raw []byte, h HeaderType) ([]T, error) {
	n, err := readHeader(raw, h)
	if err != nil {
		return nil, err
	}
	size := DataTypeOf[T]().Size()
	if n > uint64(len(raw)-h.Size()) || n%uint64(size) != 0 {
		return nil, fmt.Errorf("%w: header claims %d bytes, block holds %d of %d-byte values",
			ErrMalformed, n, len(raw)-h.Size(), size)
	}
	out := make([]T, n/uint64(size))
	if len(out) == 0 {
		return out, nil
	}
	if _, err := binary.Decode(raw[h.Size():h.Size()+int(n)], binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return out, nil
}

func readHeader(raw []byte, h HeaderType) (uint64, error) {
	if len(raw) < h.Size() {
		return 0, fmt.Errorf("%w: block shorter than its %s header", ErrMalformed, h)
	}
	if h == HeaderUInt64 {
		return binary.LittleEndian.Uint64(raw), nil
	}
	return uint64(binary.LittleEndian.Uint32(raw)), nil
}

// encodedBlockLen is the base64 length of a block with an n byte payload
func encodedBlockLen(h HeaderType, n uint64) int {
	return base64.StdEncoding.EncodedLen(h.Size() + int(n))
}

// appendValue formats v in its shortest exact decimal form
func appendValue[T Number](dst []byte, v T) []byte {
	switch x := any(v).(type) {
	case float64:
		return strconv.AppendFloat(dst, x, 'g', -1, 64)
	case float32:
		return strconv.AppendFloat(dst, float64(x), 'g', -1, 32)
	case int8:
		return strconv.AppendInt(dst, int64(x), 10)
	case int32:
		return strconv.AppendInt(dst, int64(x), 10)
	case int64:
		return strconv.AppendInt(dst, x, 10)
	case uint8:
		return strconv.AppendUint(dst, uint64(x), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(x), 10)
	case uint64:
		return strconv.AppendUint(dst, x, 10)
	}
	// named types fall through to the tag of their underlying kind
	switch DataTypeOf[T]() {
	case Float64, Float32:
		return strconv.AppendFloat(dst, float64(v), 'g', -1, DataTypeOf[T]().Size()*8)
	case Int8, Int32, Int64:
		return strconv.AppendInt(dst, int64(v), 10)
	default:
		return strconv.AppendUint(dst, uint64(v), 10)
	}
}

// appendASCII writes data perLine values to a line, each line prefixed by
// indent and terminated by a newline. Empty data writes nothing.
func appendASCII[T Number](dst []byte, data []T, perLine int, indent string) []byte {
	if perLine <= 0 {
		perLine = len(data)
	}
	for i, v := range data {
		switch {
		case i%perLine == 0:
			if i > 0 {
				dst = append(dst, '\n')
			}
			dst = append(dst, indent...)
		default:
			dst = append(dst, ' ')
		}
		dst = appendValue(dst, v)
	}
	if len(data) > 0 {
		dst = append(dst, '\n')
	}
	return dst
}

// EncodeASCII returns data as space separated decimal text, perLine values
// per line. perLine <= 0 writes a single line.
func EncodeASCII[T Number](data []T, perLine int) string {
	return strings.TrimSuffix(string(appendASCII(nil, data, perLine, "")), "\n")
}

// DecodeASCII parses whitespace separated values as T
func DecodeASCII[T Number](s string) ([]T, error) {
	tokens := strings.Fields(s)
	out := make([]T, len(tokens))
	dt := DataTypeOf[T]()
	bits := dt.Size() * 8
	for i, tok := range tokens {
		switch dt {
		case Float32, Float64:
			f, err := strconv.ParseFloat(tok, bits)
			if err != nil {
				return nil, fmt.Errorf("%w: value %d: %w", ErrMalformed, i, err)
			}
			out[i] = T(f)
		case Int8, Int32, Int64:
			n, err := strconv.ParseInt(tok, 10, bits)
			if err != nil {
				return nil, fmt.Errorf("%w: value %d: %w", ErrMalformed, i, err)
			}
			out[i] = T(n)
		default:
			n, err := strconv.ParseUint(tok, 10, bits)
			if err != nil {
				return nil, fmt.Errorf("%w: value %d: %w", ErrMalformed, i, err)
			}
			out[i] = T(n)
		}
	}
	return out, nil
}

func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
