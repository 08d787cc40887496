package slab

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// checkedInstances numbers Checked allocators so that two allocators built
// over the same region in turn never issue interchangeable handles.
var checkedInstances atomic.Uint64

// Handle identifies a slot allocated by a Checked allocator.
// The zero Handle is never valid.
type Handle struct {
	owner uint64 // Tag of the issuing allocator.
	slot  Slot
	gen   uint32 // Generation of the slot at allocation; always odd.
}

// Slot returns the slot index the handle refers to.
func (h Handle) Slot() Slot {
	return h.slot
}

// Checked wraps an Allocator with provenance checks.
//
// Every slot carries a generation counter that is odd while the slot is
// allocated. Handles record the generation they were issued at, so freeing a
// slot twice, freeing a slot through a handle from an earlier allocation, or
// passing a handle from another allocator is reported as an error instead of
// corrupting the free list. The cost is one counter per slot and a few
// comparisons per operation.
//
// A Checked allocator is not safe for concurrent use.
type Checked struct {
	alloc  *Allocator
	logger *slog.Logger
	owner  uint64
	gens   []uint32
}

// NewChecked partitions region like New, after verifying that objectSize can
// hold a free-list link. A nil logger uses slog.Default().
func NewChecked(region []byte, objectSize int, logger *slog.Logger) (*Checked, error) {
	if objectSize < WordSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrObjectSizeTooSmall, objectSize, WordSize)
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := New(region, objectSize)
	return &Checked{
		alloc:  a,
		logger: logger,
		owner:  ownerTag(a, checkedInstances.Add(1)),
		gens:   make([]uint32, a.Capacity()),
	}, nil
}

// ownerTag derives a non-zero tag from the allocator's geometry and instance number.
// Hashing spreads tags over 64 bits so a forged handle is unlikely to validate.
func ownerTag(a *Allocator, instance uint64) uint64 {
	var buf [4 * 8]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(uintptr(a.Base())))
	binary.LittleEndian.PutUint64(buf[8:], uint64(len(a.region)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(a.ObjectSize()))
	binary.LittleEndian.PutUint64(buf[24:], instance)
	return xxhash.Sum64(buf[:]) | 1
}

// Allocate returns a handle to a free slot.
// The ok result is false when every slot is in use.
func (c *Checked) Allocate() (h Handle, ok bool) {
	s, ok := c.alloc.Allocate()
	if !ok {
		return Handle{}, false
	}
	c.gens[s]++
	return Handle{owner: c.owner, slot: s, gen: c.gens[s]}, true
}

// Deallocate returns the handle's slot to the free list.
// Invalid handles are rejected with an error and leave the allocator unchanged.
func (c *Checked) Deallocate(h Handle) error {
	if err := c.check(h, ErrDoubleFree); err != nil {
		return c.reject("deallocate", h, err)
	}
	c.gens[h.slot]++
	c.alloc.Deallocate(h.slot)
	return nil
}

// Bytes returns the memory of the handle's slot.
// It fails if the slot has been freed since the handle was issued.
func (c *Checked) Bytes(h Handle) ([]byte, error) {
	if err := c.check(h, ErrStaleHandle); err != nil {
		return nil, c.reject("access", h, err)
	}
	return c.alloc.Bytes(h.slot), nil
}

// check validates h against the slot's current generation. freed is returned
// when the slot was freed and not reallocated since h was issued.
func (c *Checked) check(h Handle, freed error) error {
	if h.owner != c.owner {
		return ErrForeignHandle
	}
	if int(h.slot) >= len(c.gens) {
		return fmt.Errorf("%w: slot %d, capacity %d", ErrSlotOutOfRange, h.slot, len(c.gens))
	}
	switch gen := c.gens[h.slot]; gen {
	case h.gen:
		return nil
	case h.gen + 1:
		return freed
	default:
		return fmt.Errorf("%w: slot %d at generation %d, handle generation %d", ErrStaleHandle, h.slot, gen, h.gen)
	}
}

func (c *Checked) reject(op string, h Handle, err error) error {
	c.logger.Warn("Rejected slab handle", "op", op, "slot", h.slot, "error", err)
	return err
}

// Capacity returns the total number of slots.
func (c *Checked) Capacity() int {
	return c.alloc.Capacity()
}

// FreeObjects returns the exact number of slots available for allocation.
func (c *Checked) FreeObjects() int {
	return c.alloc.FreeObjects()
}

// ObjectSize returns the size of every slot, in bytes.
func (c *Checked) ObjectSize() int {
	return c.alloc.ObjectSize()
}

// UpdateStats adds the allocator's counters to s.
func (c *Checked) UpdateStats(s *Stats) {
	c.alloc.UpdateStats(s)
}
