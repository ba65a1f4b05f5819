package uorb

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Defaults used by DefaultConfig and for zero fields passed to New.
const (
	DefaultMaxNodes       = 64
	DefaultMaxInstances   = 10
	DefaultMaxSubscribers = 255
	DefaultMaxQueueSize   = 255
)

// Config controls bus limits and policies.
type Config struct {
	// MaxNodes bounds the registry. Creating a node past it fails with
	// ErrResourceExhausted.
	MaxNodes int
	// MaxInstances bounds the instance index of every topic.
	MaxInstances int
	// MaxSubscribers bounds live subscriptions per node.
	MaxSubscribers int
	// MaxQueueSize is the largest queue size an advertiser may request.
	MaxQueueSize int

	// SingleWriter rejects a second advertiser on a pinned instance with
	// ErrAlreadyAdvertised. By default any number of advertisers may write
	// to one instance and the last write wins.
	SingleWriter bool
	// EagerCleanup deletes a node as soon as it has neither advertisers nor
	// subscribers. By default nodes live until Delete or Close.
	EagerCleanup bool

	// Clock is the time source for update intervals.
	Clock clock.Clock
	// Logger receives lifecycle events. Nil means no logging.
	Logger *zap.Logger
}

// DefaultConfig returns the default bus configuration.
func DefaultConfig() Config {
	return Config{
		MaxNodes:       DefaultMaxNodes,
		MaxInstances:   DefaultMaxInstances,
		MaxSubscribers: DefaultMaxSubscribers,
		MaxQueueSize:   DefaultMaxQueueSize,
		Clock:          clock.New(),
		Logger:         zap.NewNop(),
	}
}

// normalize fills zero fields with defaults and rejects negative limits.
func (c Config) normalize() (Config, error) {
	for name, v := range map[string]int{
		"MaxNodes":       c.MaxNodes,
		"MaxInstances":   c.MaxInstances,
		"MaxSubscribers": c.MaxSubscribers,
		"MaxQueueSize":   c.MaxQueueSize,
	} {
		if v < 0 {
			return c, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, name, v)
		}
	}
	if c.MaxNodes == 0 {
		c.MaxNodes = DefaultMaxNodes
	}
	if c.MaxInstances == 0 {
		c.MaxInstances = DefaultMaxInstances
	}
	if c.MaxSubscribers == 0 {
		c.MaxSubscribers = DefaultMaxSubscribers
	}
	if c.MaxQueueSize == 0 {
		c.MaxQueueSize = DefaultMaxQueueSize
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}
