package vtk

import "github.com/sirupsen/logrus"

// Option configures a writer call
type Option func(*options)

type options struct {
	encoding  Encoding
	header    HeaderType
	indexType DataType
	inline    bool
	ranges    bool
	log       *logrus.Entry
}

func newOptions(opts []Option) options {
	o := options{
		encoding:  PlainText,
		header:    HeaderUInt32,
		indexType: Int32,
		log:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithEncoding selects PlainText (default) or PackedBinary payloads
func WithEncoding(e Encoding) Option {
	return func(o *options) { o.encoding = e }
}

// WithHeaderType sets the binary block header width, UInt32 by default
func WithHeaderType(h HeaderType) Option {
	return func(o *options) { o.header = h }
}

// WithIndexType sets the connectivity and offsets type, Int32 or Int64.
// Int32 is promoted to Int64 when an index or offset does not fit.
func WithIndexType(dt DataType) Option {
	return func(o *options) { o.indexType = dt }
}

// WithInlineBinary writes binary blocks inside each DataArray instead of a
// trailing AppendedData section
func WithInlineBinary() Option {
	return func(o *options) { o.inline = true }
}

// WithRanges adds RangeMin/RangeMax to floating point arrays. Arrays with
// more than one component get the range of the tuple magnitudes.
func WithRanges() Option {
	return func(o *options) { o.ranges = true }
}

// WithLogger sets the entry used for debug logging
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
