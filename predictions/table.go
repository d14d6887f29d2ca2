package predictions

import "github.com/pkg/errors"

// Table holds the predictions of one batch item, one row per detection.
type Table []Prediction

// TableFromRows builds a table from a slice of rows.
//
// Arguments:
//   - rows: One slice of FieldCount values per prediction.
//
// Returns:
//   - Table: The decoded table, nil for nil input.
//   - error: ErrFieldCount (wrapped with the row index) if a row has the wrong width.
//
// @example
// table, err := TableFromRows([][]float32{{1, 0.9, 0, 0, 10, 10}})
func TableFromRows(rows [][]float32) (Table, error) {
	if rows == nil {
		return nil, nil
	}
	t := make(Table, len(rows))
	for i, row := range rows {
		p, err := PredictionFromValues(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i)
		}
		t[i] = p
	}
	return t, nil
}

// TableFromFlat decodes a row-major buffer of FieldCount-wide rows, the layout
// detection heads usually emit.
//
// Arguments:
//   - data: The flat buffer. Its length must be a multiple of FieldCount.
//
// Returns:
//   - Table: The decoded table. The buffer is not retained.
//   - error: ErrFieldCount if the buffer length is not a multiple of FieldCount.
func TableFromFlat(data []float32) (Table, error) {
	if len(data)%FieldCount != 0 {
		return nil, errors.Wrapf(ErrFieldCount, "flat buffer of %d values", len(data))
	}
	n := len(data) / FieldCount
	t := make(Table, n)
	for i := 0; i < n; i++ {
		offset := i * FieldCount
		// Length is checked above, the error is always nil.
		t[i], _ = PredictionFromValues(data[offset : offset+FieldCount])
	}
	return t, nil
}

// Rows returns the table as a slice of rows in field order.
func (t Table) Rows() [][]float32 {
	if t == nil {
		return nil
	}
	rows := make([][]float32, len(t))
	for i, p := range t {
		v := p.Values()
		rows[i] = v[:]
	}
	return rows
}

// Flatten returns the table as a row-major buffer.
func (t Table) Flatten() []float32 {
	out := make([]float32, 0, len(t)*FieldCount)
	for _, p := range t {
		v := p.Values()
		out = append(out, v[:]...)
	}
	return out
}

// Clone returns a copy of the table that shares no storage with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Equal reports whether both tables hold the same rows in the same order.
func (t Table) Equal(o Table) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// ApproxEqual is Equal with an absolute per-field tolerance.
func (t Table) ApproxEqual(o Table, tol float32) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if !t[i].approxEqual(o[i], tol) {
			return false
		}
	}
	return true
}
