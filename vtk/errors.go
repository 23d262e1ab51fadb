package vtk

import (
	"errors"

	"github.com/notargets/DGExport/element"
)

var (
	// ErrIO wraps every failure of the underlying file system
	ErrIO = errors.New("vtk: i/o failure")
	// ErrLengthMismatch is returned when a field array's length is not
	// components × point or cell count
	ErrLengthMismatch = errors.New("vtk: field array length mismatch")
	// ErrCellsMismatch is returned when connectivity and cell types are not
	// both present or disagree in count
	ErrCellsMismatch = element.ErrCellsMismatch
	// ErrDuplicateName is returned for empty or repeated array names
	ErrDuplicateName = errors.New("vtk: duplicate or empty array name")
	// ErrInvalidComponents is returned for a component count below one
	ErrInvalidComponents = errors.New("vtk: invalid component count")
	// ErrMalformed is returned by the readers for input they cannot decode
	ErrMalformed = errors.New("vtk: malformed document")
	// ErrTooLarge is returned when a block exceeds the header's range
	ErrTooLarge = errors.New("vtk: block too large for header type")
)
