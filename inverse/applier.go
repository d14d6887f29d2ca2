package inverse

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nvr-ai/go-invert/predictions"
)

// Applier applies inverse transform chains to prediction batches.
type Applier struct {
	config *Config
	logger zerolog.Logger
}

// Option configures an Applier.
type Option func(*Applier)

// WithLogger sets the logger used for per-batch and per-item events. The
// level from Config.LogLevel is applied on top of it.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Applier) {
		a.logger = logger
	}
}

// NewApplier creates an Applier.
//
// Arguments:
//   - config: The applier configuration. nil selects DefaultConfig().
//   - opts: Optional settings such as WithLogger.
//
// Returns:
//   - *Applier: The configured applier.
//   - error: ErrInvalidConfig if the configuration does not validate.
//
// @example
//
//	applier, err := NewApplier(&Config{Workers: 4}, WithLogger(log.Logger))
//	if err != nil {
//	    log.Fatal().Err(err).Msg("invalid applier config")
//	}
//
// out, err := applier.Apply(batch, chains)
func NewApplier(config *Config, opts ...Option) (*Applier, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Applier{config: &cfg, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger.GetLevel() != zerolog.Disabled {
		a.logger = a.logger.Level(cfg.level())
	}
	return a, nil
}

// Config returns a copy of the applier configuration.
func (a *Applier) Config() Config {
	return *a.config
}

// Apply transforms every item of batch with its chain.
//
// Items are processed in index order unless Workers is greater than one, in
// which case they run concurrently. The output is the same either way; only
// the choice of error differs when several items fail. Once an item fails,
// items that have not started yet are skipped.
//
// Arguments:
//   - batch: The decoded predictions. Not modified.
//   - chains: One chain per batch item. Surplus chains are ignored.
//
// Returns:
//   - predictions.Batch: A new batch of the same kind as batch.
//   - error: predictions.ErrInvalidBatch, ErrChainIndex for an item without a
//     chain, ErrNilInverter, or predictions.ErrShapeMismatch when an inverter
//     changes the row count of a dense item.
func (a *Applier) Apply(batch predictions.Batch, chains []Chain) (predictions.Batch, error) {
	if err := predictions.Validate(batch); err != nil {
		a.logger.Error().Err(err).Msg("rejecting batch")
		return nil, err
	}

	n := batch.Len()
	a.logger.Debug().
		Stringer("kind", batch.Kind()).
		Int("items", n).
		Int("chains", len(chains)).
		Str("mode", string(a.config.ChainMode)).
		Msg("applying inverse transforms")

	out := batch.Clone()

	if a.config.Workers > 1 && n > 1 {
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(a.config.Workers)
		for i := 0; i < n && ctx.Err() == nil; i++ {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				return a.applyItem(batch, out, chains, i)
			})
		}
		if err := g.Wait(); err != nil {
			a.logger.Error().Err(err).Msg("inverse transform failed")
			return nil, err
		}
		return out, nil
	}

	for i := 0; i < n; i++ {
		if err := a.applyItem(batch, out, chains, i); err != nil {
			a.logger.Error().Err(err).Int("item", i).Msg("inverse transform failed")
			return nil, err
		}
	}
	return out, nil
}

// applyItem writes the transformed item i of src into dst. dst already holds
// a copy of src, so an empty chain needs no write.
func (a *Applier) applyItem(src, dst predictions.Batch, chains []Chain, i int) error {
	if i >= len(chains) {
		return errors.Wrapf(ErrChainIndex, "item %d, %d chains supplied", i, len(chains))
	}
	chain := chains[i]
	if len(chain) == 0 {
		a.logger.Debug().Int("item", i).Msg("empty chain, keeping original")
		return nil
	}

	var value predictions.Table
	switch a.config.ChainMode {
	case ChainModeCompose:
		value = src.Item(i)
		for pos, inv := range chain {
			if isNil(inv) {
				return errors.Wrapf(ErrNilInverter, "item %d, position %d", i, pos)
			}
			value = inv.Invert(value)
		}
	default:
		// Each inverter starts over from the original item.
		for pos, inv := range chain {
			if isNil(inv) {
				return errors.Wrapf(ErrNilInverter, "item %d, position %d", i, pos)
			}
			value = inv.Invert(src.Item(i))
		}
	}

	a.logger.Debug().
		Int("item", i).
		Int("chain", len(chain)).
		Int("rows", len(value)).
		Msg("item transformed")

	if err := dst.SetItem(i, value); err != nil {
		return errors.Wrapf(err, "item %d", i)
	}
	return nil
}

// isNil reports whether inv is nil or wraps a nil function.
func isNil(inv Inverter) bool {
	if inv == nil {
		return true
	}
	f, ok := inv.(InverterFunc)
	return ok && f == nil
}
