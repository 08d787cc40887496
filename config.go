package slab

import (
	"errors"
	"fmt"
	"math"
)

type Config struct {
	ObjectSize int // Size of every slot, in bytes. Must be at least WordSize.
	Objects    int // Number of slots the mapped region must hold.
}

// Validate reports every invalid field, joined.
func (c Config) Validate() error {
	var errs []error
	if c.ObjectSize < WordSize {
		errs = append(errs, fmt.Errorf("invalid config: %w: %d < %d", ErrObjectSizeTooSmall, c.ObjectSize, WordSize))
	}
	if c.Objects < 0 {
		errs = append(errs, errors.New("invalid config: objects must not be negative"))
	}
	if c.Objects > 0 && c.ObjectSize > math.MaxInt/c.Objects {
		errs = append(errs, fmt.Errorf("invalid config: region size %d * %d overflows int", c.ObjectSize, c.Objects))
	}
	return errors.Join(errs...)
}

// RegionSize returns the number of bytes needed to back Objects slots.
func (c Config) RegionSize() int {
	return c.ObjectSize * c.Objects
}

func DefaultConfig() Config {
	return Config{
		ObjectSize: 64,   // One cache line on most targets.
		Objects:    1024, // 64KiB region.
	}
}
