package tabular

import "errors"

var (
	// ErrUnsupportedType is returned when a value is none of the accepted table shapes.
	ErrUnsupportedType = errors.New("unsupported table type")

	// ErrMissingColumn is returned when a named column is absent from a frame.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateColumn is returned when a frame would hold two columns with one name.
	ErrDuplicateColumn = errors.New("duplicate column")

	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNonNumeric      = errors.New("non-numeric column")
	ErrEmpty           = errors.New("empty table")
)
