package slab

import "fmt"

// Mapper acquires and releases backing regions.
type Mapper interface {
	Map(size int) ([]byte, error) // Map returns a writable region of exactly size bytes.
	Unmap(region []byte) error    // Unmap releases a region returned by Map.
}

// HeapMapper backs regions with Go heap memory.
type HeapMapper struct{}

func (HeapMapper) Map(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("slab: negative region size %d", size)
	}
	return make([]byte, size), nil
}

func (HeapMapper) Unmap(region []byte) error { return nil }

// DefaultMapper returns the platform's preferred mapper: anonymous mmap on
// Linux and macOS, the Go heap elsewhere.
func DefaultMapper() Mapper {
	return defaultMapper
}

// Region is a contiguous block of memory owned by the caller.
// An Allocator built on a Region only borrows it; close the Region after the
// last use of the allocator.
type Region struct {
	mapper Mapper
	data   []byte
}

// NewRegion maps size bytes using mapper.
func NewRegion(mapper Mapper, size int) (*Region, error) {
	data, err := mapper.Map(size)
	if err != nil {
		return nil, fmt.Errorf("cannot map %d byte region: %w", size, err)
	}
	return &Region{mapper: mapper, data: data}, nil
}

// Bytes returns the region's memory.
func (r *Region) Bytes() []byte {
	return r.data
}

func (r *Region) Len() int {
	return len(r.data)
}

// Close releases the region. Subsequent calls do nothing.
func (r *Region) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if err := r.mapper.Unmap(data); err != nil {
		return fmt.Errorf("cannot unmap %d byte region: %w", len(data), err)
	}
	return nil
}

// NewMapped maps a region sized for config.Objects slots and partitions it.
// The caller owns the returned Region and must close it once the allocator is
// no longer used.
func NewMapped(mapper Mapper, config Config) (*Allocator, *Region, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	r, err := NewRegion(mapper, config.RegionSize())
	if err != nil {
		return nil, nil, err
	}
	return New(r.Bytes(), config.ObjectSize), r, nil
}
