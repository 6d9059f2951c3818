package batch

import "time"

// Config retrieves the config values used by Batch. If these values are
// constant, NewConstantConfig can be used to create an implementation
// of the interface.
//
// Get is called before each batch is collected, so implementations may
// return different values over time. Get must then be safe for concurrent use.
type Config interface {
	Get() ConfigValues
}

// ConfigValues controls the timing and sizing of batches.
type ConfigValues struct {
	// MinTime specifies a minimum amount of time that should pass before
	// processing items, unless MaxItems is reached first.
	MinTime time.Duration `json:"minTime" mapstructure:"min_time"`

	// MinItems specifies the minimum number of items processed at a time.
	// Fewer items are only processed when MaxTime is reached or the Source
	// is exhausted.
	MinItems uint64 `json:"minItems" mapstructure:"min_items"`

	// MaxTime specifies the maximum amount of time to wait before processing
	// the items collected so far.
	MaxTime time.Duration `json:"maxTime" mapstructure:"max_time"`

	// MaxItems caps the number of items in a batch.
	MaxItems uint64 `json:"maxItems" mapstructure:"max_items"`
}

// FixedSize returns ConfigValues for batches of exactly n items.
func FixedSize(n uint64) ConfigValues {
	return ConfigValues{MinItems: n, MaxItems: n}
}

// NewConstantConfig returns a Config with constant values. If values
// is nil, items are processed one at a time as soon as they are read.
func NewConstantConfig(values *ConfigValues) *ConstantConfig {
	if values == nil {
		return &ConstantConfig{}
	}

	return &ConstantConfig{
		values: *values,
	}
}

// ConstantConfig is a Config with constant values. Create one with
// NewConstantConfig.
type ConstantConfig struct {
	values ConfigValues
}

// Get implements the Config interface.
func (c *ConstantConfig) Get() ConfigValues {
	return c.values
}

// fixConfig corrects conflicting ConfigValues:
//   - MinItems of zero becomes 1.
//   - MinTime is reduced to MaxTime when it is larger.
//   - MinItems is reduced to MaxItems when it is larger.
func fixConfig(c ConfigValues) ConfigValues {
	if c.MinItems == 0 {
		c.MinItems = 1
	}
	if c.MaxTime > 0 && c.MinTime > 0 && c.MaxTime < c.MinTime {
		c.MinTime = c.MaxTime
	}
	if c.MaxItems > 0 && c.MaxItems < c.MinItems {
		c.MinItems = c.MaxItems
	}
	return c
}
