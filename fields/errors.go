package fields

import "errors"

// ErrLengthMismatch is returned when two fields or a field and a flat buffer
// disagree in length.
var ErrLengthMismatch = errors.New("fields: length mismatch")
