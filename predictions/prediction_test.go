package predictions

import (
	"image"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPredictionFromValues validates decoding of a single prediction row.
//
// Arguments:
//   - t: Testing context for assertions and error reporting.
func TestPredictionFromValues(t *testing.T) {
	p, err := PredictionFromValues([]float32{3, 0.75, 10, 20, 30, 40})
	require.NoError(t, err)

	assert.Equal(t, Prediction{ClassID: 3, Confidence: 0.75, XMin: 10, YMin: 20, XMax: 30, YMax: 40}, p)
	assert.Equal(t, 3, p.Class())
	assert.Equal(t, [FieldCount]float32{3, 0.75, 10, 20, 30, 40}, p.Values())

	_, err = PredictionFromValues([]float32{1, 2, 3})
	assert.True(t, errors.Is(err, ErrFieldCount), "short rows must be rejected")

	_, err = PredictionFromValues([]float32{1, 2, 3, 4, 5, 6, 7})
	assert.True(t, errors.Is(err, ErrFieldCount), "long rows must be rejected")
}

func TestPredictionGeometry(t *testing.T) {
	p := Prediction{XMin: 100.5, YMin: 100.5, XMax: 200.5, YMax: 300.5}
	assert.Equal(t, image.Rect(100, 100, 200, 300), p.Rect())
	assert.InDelta(t, 100*200, p.Area(), 1e-3)

	inverted := Prediction{XMin: 10, YMin: 10, XMax: 5, YMax: 20}
	assert.Zero(t, inverted.Area(), "inverted boxes have no area")
	assert.Equal(t, image.Rect(5, 10, 10, 20), inverted.Rect(), "Rect canonicalises corners")
}

func TestPredictionString(t *testing.T) {
	p := Prediction{ClassID: 1, Confidence: 0.5, XMin: 0, YMin: 0, XMax: 10, YMax: 10}
	assert.Equal(t, "Class 1 (confidence 0.500000): (0.000000, 0.000000), (10.000000, 10.000000)", p.String())
}

// TestTableRows validates conversion between tables and row slices.
//
// Arguments:
//   - t: Testing context for assertions and error reporting.
func TestTableRows(t *testing.T) {
	rows := [][]float32{
		{1, 0.9, 0, 0, 10, 10},
		{2, 0.8, 5, 5, 15, 15},
	}

	table, err := TableFromRows(rows)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, float32(2), table[1].ClassID)
	assert.Equal(t, rows, table.Rows())

	_, err = TableFromRows([][]float32{{1, 0.9, 0, 0, 10, 10}, {1}})
	assert.True(t, errors.Is(err, ErrFieldCount))
	assert.Contains(t, err.Error(), "row 1")

	empty, err := TableFromRows(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
	assert.Nil(t, empty.Rows())
}

func TestTableFlat(t *testing.T) {
	flat := []float32{
		1, 0.9, 0, 0, 10, 10,
		2, 0.8, 5, 5, 15, 15,
	}

	table, err := TableFromFlat(flat)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, flat, table.Flatten())

	flat[0] = 42
	assert.Equal(t, float32(1), table[0].ClassID, "the buffer must not be retained")

	_, err = TableFromFlat(flat[:7])
	assert.True(t, errors.Is(err, ErrFieldCount))
}

func TestTableClone(t *testing.T) {
	original := Table{{ClassID: 1, XMax: 10, YMax: 10}}
	clone := original.Clone()
	require.True(t, original.Equal(clone))

	clone[0].XMax = 99
	assert.Equal(t, float32(10), original[0].XMax, "clones must not share storage")
	assert.False(t, original.Equal(clone))

	assert.Nil(t, Table(nil).Clone())
}

func TestTableApproxEqual(t *testing.T) {
	a := Table{{ClassID: 1, Confidence: 0.5, XMax: 10, YMax: 10}}
	b := Table{{ClassID: 1, Confidence: 0.5, XMax: 10.0004, YMax: 9.9996}}

	assert.False(t, a.Equal(b))
	assert.True(t, a.ApproxEqual(b, 1e-3))
	assert.False(t, a.ApproxEqual(b, 1e-5))
	assert.False(t, a.ApproxEqual(append(b.Clone(), Prediction{}), 1), "row counts must match")
}
