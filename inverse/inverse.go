// Package inverse - maps predictions made on preprocessed images back into
// original-image coordinates by applying per-item chains of inverse transforms.
package inverse

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nvr-ai/go-invert/predictions"
)

var (
	// ErrChainIndex is returned when a batch item has no transform chain.
	ErrChainIndex = errors.New("no inverse transform chain for batch item")
	// ErrNilInverter is returned when a chain holds a nil inverter.
	ErrNilInverter = errors.New("nil inverter in transform chain")
)

// Inverter reverses one preprocessing step for a single batch item.
//
// Invert must return a table with the same layout as its input. It may
// modify its argument, which is always a private copy.
type Inverter interface {
	Invert(predictions.Table) predictions.Table
}

// InverterFunc adapts a plain function to the Inverter interface.
type InverterFunc func(predictions.Table) predictions.Table

// Invert calls f(t).
func (f InverterFunc) Invert(t predictions.Table) predictions.Table {
	return f(t)
}

// Chain is the ordered list of inverters recorded for one batch item.
type Chain []Inverter

// ApplyInverseTransforms applies chains[i] to item i of batch using the
// default configuration.
//
// Every inverter of a chain is applied to the original item and the last
// one's result is kept. An empty chain keeps a copy of the item. The output
// has the same kind as batch and shares no storage with it.
//
// Arguments:
//   - batch: The decoded predictions. Not modified.
//   - chains: One chain per batch item, usually the inverters returned by the
//     preprocessing steps applied to that item.
//
// Returns:
//   - predictions.Batch: The transformed predictions.
//   - error: predictions.ErrInvalidBatch if batch is not a sequence or dense
//     batch, or the first error raised while transforming an item.
//
// @example
// out, err := ApplyInverseTransforms(batch, []Chain{{undoResize}, {}})
//
//	if err != nil {
//	    return err
//	}
func ApplyInverseTransforms(batch predictions.Batch, chains []Chain) (predictions.Batch, error) {
	return defaultApplier.Apply(batch, chains)
}

var defaultApplier = &Applier{config: DefaultConfig(), logger: zerolog.Nop()}
