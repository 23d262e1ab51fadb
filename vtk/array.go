package vtk

import (
	"fmt"

	"github.com/notargets/DGExport/fields"
)

// FieldArray is one named field of output data: Components scalars per point
// or per cell, element-major.
type FieldArray struct {
	Name       string
	Components int
	Data       fields.FlatView
}

// FromFlat wraps a flat scalar buffer without copying it
func FromFlat(name string, data []fields.Scalar, components int) FieldArray {
	return FieldArray{Name: name, Components: components, Data: fields.NewFlatView(data)}
}

// FromField names a field; the component count comes from its element type
func FromField[T fields.Aggregate](name string, f *fields.Field[T]) FieldArray {
	return FieldArray{Name: name, Components: f.Components(), Data: f.Flat()}
}

// FromSlice names a slice of aggregates without copying it
func FromSlice[T fields.Aggregate](name string, s []T) FieldArray {
	return FieldArray{Name: name, Components: fields.Components[T](), Data: fields.ViewOf(s)}
}

// Tuples returns the number of elements, Data.Len()/Components
func (a FieldArray) Tuples() int {
	if a.Components <= 0 {
		return 0
	}
	return a.Data.Len() / a.Components
}

// Validate checks a against count points or cells
func (a FieldArray) Validate(count int) error {
	if a.Name == "" {
		return fmt.Errorf("%w: array with %d components has no name", ErrDuplicateName, a.Components)
	}
	if a.Components < 1 {
		return fmt.Errorf("%w: %q has %d components", ErrInvalidComponents, a.Name, a.Components)
	}
	if want := a.Components * count; a.Data.Len() != want {
		return fmt.Errorf("%w: %q has %d values, expected %d (%d × %d components)",
			ErrLengthMismatch, a.Name, a.Data.Len(), want, count, a.Components)
	}
	return nil
}

// validateSection checks every array of one section and the uniqueness of
// their names
func validateSection(section string, arrays []FieldArray, count int) error {
	seen := make(map[string]bool, len(arrays))
	for _, a := range arrays {
		if err := a.Validate(count); err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
		if seen[a.Name] {
			return fmt.Errorf("%s: %w: %q", section, ErrDuplicateName, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}
