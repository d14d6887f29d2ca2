package predictions

import "github.com/pkg/errors"

var (
	// ErrInvalidBatch is returned when a batch is neither a sequence of tables
	// nor a dense array.
	ErrInvalidBatch = errors.New("predictions must be either a sequence of tables or a dense array")
	// ErrShapeMismatch is returned when a table or buffer does not fit the
	// shape of the batch it is written to.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrFieldCount is returned when a row does not hold FieldCount values.
	ErrFieldCount = errors.New("prediction rows must hold 6 values")
	// ErrItemIndex is returned when a batch item index is out of range.
	ErrItemIndex = errors.New("batch item index out of range")
)
