package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chance/internal/chance/wheel"
)

// OptionsKeyPrefix namespaces persisted wheel option lists.
const OptionsKeyPrefix = "wheel.options.v2"

// OptionsKey returns the storage key for a profile's wheel options.
func OptionsKey(profile string) string {
	if profile == "" {
		return OptionsKeyPrefix
	}
	return OptionsKeyPrefix + ":" + profile
}

// OptionRepository loads and saves one profile's wheel options.
type OptionRepository struct {
	kv     KV
	key    string
	newID  func() string
	logger *zap.Logger
}

// NewOptionRepository binds a repository to profile.
//
// Precondition: kv and logger must be non-nil.
func NewOptionRepository(kv KV, profile string, logger *zap.Logger) *OptionRepository {
	return &OptionRepository{kv: kv, key: OptionsKey(profile), newID: wheel.NewID, logger: logger}
}

// Load returns the stored options, migrating legacy data and falling back to
// defaults when nothing usable is stored. It never fails: read errors are
// logged and treated as missing data.
//
// Postcondition: a legacy or unreadable entry is rewritten in the current shape.
func (r *OptionRepository) Load(ctx context.Context) []wheel.Option {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.logger.Warn("loading wheel options", zap.String("key", r.key), zap.Error(err))
		return wheel.DefaultOptions()
	}
	if !ok {
		return wheel.DefaultOptions()
	}

	opts, shape := wheel.DecodeOptions(raw, r.newID)
	if shape != wheel.ShapeCurrent {
		r.logger.Info("migrated stored wheel options",
			zap.String("key", r.key),
			zap.String("shape", string(shape)),
			zap.Int("options", len(opts)),
		)
		if err := r.Save(ctx, opts); err != nil {
			r.logger.Warn("rewriting migrated wheel options", zap.String("key", r.key), zap.Error(err))
		}
	}
	return opts
}

// Save stores options in the current shape.
func (r *OptionRepository) Save(ctx context.Context, options []wheel.Option) error {
	raw, err := wheel.EncodeOptions(options)
	if err != nil {
		return fmt.Errorf("encoding wheel options: %w", err)
	}
	if err := r.kv.Put(ctx, r.key, raw); err != nil {
		return fmt.Errorf("saving wheel options: %w", err)
	}
	return nil
}
