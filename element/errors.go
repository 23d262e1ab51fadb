package element

import "errors"

var (
	ErrCellArity       = errors.New("element: vertex count does not match cell type")
	ErrUnknownCellType = errors.New("element: unknown cell type")
	ErrIndexOutOfRange = errors.New("element: vertex index out of range")
	ErrCellsMismatch   = errors.New("element: connectivity and cell types disagree")
)
