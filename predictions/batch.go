package predictions

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Kind identifies the outer container of a batch.
type Kind int

const (
	// KindSequence is an ordered sequence of tables. Items may hold different
	// numbers of predictions.
	KindSequence Kind = iota
	// KindDense is a single (items, predictions, FieldCount) float32 array.
	KindDense
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindDense:
		return "dense"
	default:
		return "unknown"
	}
}

// Batch is the predictions of a group of images, indexed by batch item.
//
// Only *SequenceBatch and *DenseBatch implement it.
type Batch interface {
	// Kind reports the outer container kind.
	Kind() Kind
	// Len returns the number of batch items.
	Len() int
	// Item returns a copy of item i. It panics if i is out of range.
	Item(i int) Table
	// Clone returns a deep copy of the batch.
	Clone() Batch
	// SetItem replaces item i with a copy of t.
	SetItem(i int, t Table) error

	isBatch()
}

// Validate reports ErrInvalidBatch unless b is a usable *SequenceBatch or
// *DenseBatch.
func Validate(b Batch) error {
	switch v := b.(type) {
	case *SequenceBatch:
		if v == nil {
			return errors.Wrap(ErrInvalidBatch, "nil sequence batch")
		}
	case *DenseBatch:
		if v == nil || v.t == nil {
			return errors.Wrap(ErrInvalidBatch, "nil dense batch")
		}
	default:
		return errors.Wrapf(ErrInvalidBatch, "unsupported batch type %T", b)
	}
	return nil
}

// FromAny wraps untyped prediction data in a Batch.
//
// Arguments:
//   - v: A Batch, []Table, [][]Prediction or [][][]float32 (sequence batch), or a
//     *tensor.Dense of shape (items, predictions, 6) (dense batch).
//
// Returns:
//   - Batch: The wrapped batch. Input storage is copied, never shared.
//   - error: ErrInvalidBatch for any other type, including a single Table.
//
// @example
// batch, err := FromAny([][][]float32{{{1, 0.9, 0, 0, 10, 10}}})
func FromAny(v any) (Batch, error) {
	switch data := v.(type) {
	case Batch:
		if err := Validate(data); err != nil {
			return nil, err
		}
		return data.Clone(), nil
	case []Table:
		return NewSequenceBatch(data...), nil
	case [][]Prediction:
		tables := make([]Table, len(data))
		for i, rows := range data {
			tables[i] = Table(rows)
		}
		return NewSequenceBatch(tables...), nil
	case [][][]float32:
		tables := make([]Table, len(data))
		for i, rows := range data {
			t, err := TableFromRows(rows)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			tables[i] = t
		}
		return &SequenceBatch{tables: tables}, nil
	case *tensor.Dense:
		if data == nil {
			return nil, errors.Wrap(ErrInvalidBatch, "nil tensor")
		}
		return DenseBatchFromTensor(data)
	default:
		return nil, errors.Wrapf(ErrInvalidBatch, "unsupported type %T", v)
	}
}

// SequenceBatch is a batch stored as one table per item.
type SequenceBatch struct {
	tables []Table
}

// NewSequenceBatch returns a sequence batch holding copies of tables.
func NewSequenceBatch(tables ...Table) *SequenceBatch {
	out := make([]Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}
	return &SequenceBatch{tables: out}
}

func (*SequenceBatch) isBatch() {}

// Kind implements Batch.
func (*SequenceBatch) Kind() Kind { return KindSequence }

// Len implements Batch.
func (b *SequenceBatch) Len() int { return len(b.tables) }

// Item implements Batch.
func (b *SequenceBatch) Item(i int) Table {
	return b.tables[i].Clone()
}

// Clone implements Batch.
func (b *SequenceBatch) Clone() Batch {
	return NewSequenceBatch(b.tables...)
}

// SetItem implements Batch. Any row count is accepted.
func (b *SequenceBatch) SetItem(i int, t Table) error {
	if i < 0 || i >= len(b.tables) {
		return errors.Wrapf(ErrItemIndex, "item %d of %d", i, len(b.tables))
	}
	b.tables[i] = t.Clone()
	return nil
}

// Tables returns copies of every item's table.
func (b *SequenceBatch) Tables() []Table {
	out := make([]Table, len(b.tables))
	for i, t := range b.tables {
		out[i] = t.Clone()
	}
	return out
}

// DenseBatch is a batch stored as a float32 tensor of shape
// (items, predictions, FieldCount). Every item holds the same number of
// predictions.
type DenseBatch struct {
	t *tensor.Dense
}

// NewDenseBatch returns a zero-filled dense batch.
//
// Arguments:
//   - items: The number of batch items. Must be positive.
//   - perItem: The number of predictions per item. Must be positive.
//
// Returns:
//   - *DenseBatch: The batch.
//   - error: ErrShapeMismatch if either dimension is not positive.
func NewDenseBatch(items, perItem int) (*DenseBatch, error) {
	return DenseBatchFromFlat(items, perItem, make([]float32, items*perItem*FieldCount))
}

// DenseBatchFromFlat builds a dense batch over a copy of data, laid out
// row-major as (items, perItem, FieldCount).
//
// Arguments:
//   - items: The number of batch items.
//   - perItem: The number of predictions per item.
//   - data: The values. Its length must be items*perItem*FieldCount.
//
// Returns:
//   - *DenseBatch: The batch. data is not retained.
//   - error: ErrShapeMismatch if the dimensions or the buffer length are wrong.
//
// @example
// batch, err := DenseBatchFromFlat(1, 2, []float32{1, 0.9, 0, 0, 10, 10, 2, 0.8, 5, 5, 15, 15})
func DenseBatchFromFlat(items, perItem int, data []float32) (*DenseBatch, error) {
	if items <= 0 || perItem <= 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "invalid dense dimensions %dx%d", items, perItem)
	}
	if want := items * perItem * FieldCount; len(data) != want {
		return nil, errors.Wrapf(ErrShapeMismatch, "buffer holds %d values, need %d", len(data), want)
	}
	backing := make([]float32, len(data))
	copy(backing, data)
	t := tensor.New(
		tensor.WithShape(items, perItem, FieldCount),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(backing),
	)
	return &DenseBatch{t: t}, nil
}

// DenseBatchFromTensor copies a (items, predictions, FieldCount) float32
// tensor into a dense batch.
func DenseBatchFromTensor(t *tensor.Dense) (*DenseBatch, error) {
	if t.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrInvalidBatch, "tensor dtype %v, need float32", t.Dtype())
	}
	shape := t.Shape()
	if len(shape) != 3 || shape[2] != FieldCount {
		return nil, errors.Wrapf(ErrShapeMismatch, "tensor shape %v, need (items, predictions, %d)", shape, FieldCount)
	}
	// A view's Data is the parent's buffer, not the view's elements.
	if t.IsView() {
		materialized, ok := t.Materialize().(*tensor.Dense)
		if !ok {
			return nil, errors.Wrap(ErrInvalidBatch, "cannot materialize tensor view")
		}
		t = materialized
	}
	data, ok := t.Data().([]float32)
	if !ok {
		return nil, errors.Wrap(ErrInvalidBatch, "tensor is not backed by []float32")
	}
	return DenseBatchFromFlat(shape[0], shape[1], data)
}

// DenseBatchFromTables stacks tables that all hold the same number of rows.
func DenseBatchFromTables(tables ...Table) (*DenseBatch, error) {
	if len(tables) == 0 {
		return nil, errors.Wrap(ErrShapeMismatch, "no tables to stack")
	}
	perItem := len(tables[0])
	data := make([]float32, 0, len(tables)*perItem*FieldCount)
	for i, t := range tables {
		if len(t) != perItem {
			return nil, errors.Wrapf(ErrShapeMismatch, "item %d has %d predictions, item 0 has %d", i, len(t), perItem)
		}
		data = append(data, t.Flatten()...)
	}
	return DenseBatchFromFlat(len(tables), perItem, data)
}

func (*DenseBatch) isBatch() {}

// Kind implements Batch.
func (*DenseBatch) Kind() Kind { return KindDense }

// Len implements Batch.
func (b *DenseBatch) Len() int { return b.t.Shape()[0] }

// Shape returns the item and per-item prediction dimensions.
func (b *DenseBatch) Shape() (items, perItem int) {
	shape := b.t.Shape()
	return shape[0], shape[1]
}

// Item implements Batch.
func (b *DenseBatch) Item(i int) Table {
	items, perItem := b.Shape()
	if i < 0 || i >= items {
		panic(errors.Wrapf(ErrItemIndex, "item %d of %d", i, items))
	}
	stride := perItem * FieldCount
	// The slice is a multiple of FieldCount wide, the error is always nil.
	t, _ := TableFromFlat(b.data()[i*stride : (i+1)*stride])
	return t
}

// Clone implements Batch.
func (b *DenseBatch) Clone() Batch {
	items, perItem := b.Shape()
	// Dimensions come from a valid batch, the error is always nil.
	out, _ := DenseBatchFromFlat(items, perItem, b.data())
	return out
}

// SetItem implements Batch. t must hold exactly as many rows as the
// batch's prediction axis.
func (b *DenseBatch) SetItem(i int, t Table) error {
	items, perItem := b.Shape()
	if i < 0 || i >= items {
		return errors.Wrapf(ErrItemIndex, "item %d of %d", i, items)
	}
	if len(t) != perItem {
		return errors.Wrapf(ErrShapeMismatch, "cannot write %d predictions into item %d of width %d", len(t), i, perItem)
	}
	stride := perItem * FieldCount
	copy(b.data()[i*stride:(i+1)*stride], t.Flatten())
	return nil
}

// Tensor returns a copy of the underlying tensor.
func (b *DenseBatch) Tensor() *tensor.Dense {
	return b.t.Clone().(*tensor.Dense)
}

func (b *DenseBatch) data() []float32 {
	return b.t.Data().([]float32)
}
