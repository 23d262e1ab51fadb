package vtk

import (
	"bufio"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// SeriesEntry references one dataset of a time series
type SeriesEntry struct {
	Time float64
	File string // relative to the .pvd file, or absolute
	Part int
}

// WriteSeries writes a ParaView collection (.pvd) listing entries in the
// given order. Referenced files are not checked for existence.
func WriteSeries(path string, entries []SeriesEntry, opts ...Option) error {
	o := newOptions(opts)
	err := writeAtomic(path, func(w *bufio.Writer) error { return emitSeries(w, entries) })
	if err != nil {
		return err
	}
	o.log.WithFields(logrus.Fields{"path": path, "entries": len(entries)}).Debug("wrote collection")
	return nil
}

// WriteSeriesTo writes the .pvd document for entries to w
func WriteSeriesTo(w io.Writer, entries []SeriesEntry) error {
	bw := bufio.NewWriter(w)
	if err := emitSeries(bw, entries); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

func emitSeries(w *bufio.Writer, entries []SeriesEntry) error {
	fmt.Fprintln(w, `<?xml version="1.0"?>`)
	fmt.Fprintln(w, `<VTKFile type="Collection" version="0.1" byte_order="LittleEndian">`)
	fmt.Fprintln(w, "  <Collection>")
	for _, e := range entries {
		fmt.Fprintf(w, "    <DataSet timestep=\"%s\" group=\"\" part=\"%d\" file=\"%s\"/>\n",
			formatFloat(e.Time), e.Part, escapeAttr(e.File))
	}
	fmt.Fprintln(w, "  </Collection>")
	if _, err := fmt.Fprintln(w, "</VTKFile>"); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
