// File: pool/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Construction-time configuration. Sizing is fixed for the pool's lifetime.

package pool

import (
	"fmt"

	"github.com/momentics/hioload-pool/api"
	"go.uber.org/zap"
)

const (
	DefaultMaxChunks     = 256
	DefaultSlotsPerChunk = 256
)

// Config holds the tunables that can come from a config file.
type Config struct {
	MaxChunks     int  `mapstructure:"max_chunks" yaml:"max_chunks"`
	SlotsPerChunk int  `mapstructure:"slots_per_chunk" yaml:"slots_per_chunk"`
	Debug         bool `mapstructure:"debug" yaml:"debug"`
	Quarantine    int  `mapstructure:"quarantine" yaml:"quarantine"`
}

// DefaultConfig returns the reference sizing: 256 x 256 = 65536 objects.
func DefaultConfig() Config {
	return Config{
		MaxChunks:     DefaultMaxChunks,
		SlotsPerChunk: DefaultSlotsPerChunk,
	}
}

// Capacity is the hard ceiling of live plus free objects.
func (c Config) Capacity() int { return c.MaxChunks * c.SlotsPerChunk }

// Validate checks the sizing against the tag layout.
func (c Config) Validate() error {
	if c.MaxChunks < 1 || c.MaxChunks > MaxChunksLimit {
		return invalidConfig("max_chunks", c.MaxChunks, MaxChunksLimit)
	}
	if c.SlotsPerChunk < 1 || c.SlotsPerChunk > MaxSlotsLimit {
		return invalidConfig("slots_per_chunk", c.SlotsPerChunk, MaxSlotsLimit)
	}
	if c.Quarantine < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "quarantine must not be negative").
			WithContext("quarantine", c.Quarantine)
	}
	if c.Quarantine > 0 && !c.Debug {
		return api.NewError(api.ErrCodeInvalidArgument, "quarantine requires debug mode").
			WithContext("quarantine", c.Quarantine)
	}
	return nil
}

func invalidConfig(key string, got, limit int) error {
	return api.NewError(api.ErrCodeInvalidArgument, fmt.Sprintf("%s must be in [1, %d]", key, limit)).
		WithContext(key, got)
}

type options[T any] struct {
	cfg    Config
	name   string
	ctor   func(*T)
	dtor   func(*T)
	logger *zap.Logger
}

// Option customizes a TaggedPool.
type Option[T any] func(*options[T])

// WithConfig replaces sizing and debug settings wholesale.
func WithConfig[T any](cfg Config) Option[T] {
	return func(o *options[T]) { o.cfg = cfg }
}

// WithMaxChunks sets the chunk ceiling (1..256).
func WithMaxChunks[T any](n int) Option[T] {
	return func(o *options[T]) { o.cfg.MaxChunks = n }
}

// WithSlotsPerChunk sets the chunk size (1..256).
func WithSlotsPerChunk[T any](n int) Option[T] {
	return func(o *options[T]) { o.cfg.SlotsPerChunk = n }
}

// WithDebug turns on ownership scans and payload poisoning.
func WithDebug[T any](on bool) Option[T] {
	return func(o *options[T]) { o.cfg.Debug = on }
}

// WithQuarantine delays reuse of released slots by n releases. It requires
// WithDebug(true); New rejects it otherwise.
func WithQuarantine[T any](n int) Option[T] {
	return func(o *options[T]) { o.cfg.Quarantine = n }
}

// WithConstructor sets the in-place initializer used by Acquire.
func WithConstructor[T any](fn func(*T)) Option[T] {
	return func(o *options[T]) { o.ctor = fn }
}

// WithDestructor sets the finalizer run by Release before the slot is reused.
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(o *options[T]) { o.dtor = fn }
}

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(o *options[T]) { o.logger = l }
}

// WithName labels the pool in logs and metrics.
func WithName[T any](name string) Option[T] {
	return func(o *options[T]) { o.name = name }
}
