// Package slab implements a fixed-size object allocator over a caller-supplied
// memory region.
//
// The region is partitioned into equal-size slots at construction. Free slots
// are threaded into an intrusive singly linked list: the first machine word of
// every free slot holds the index of the next free slot, so no bookkeeping
// memory is allocated beyond the Allocator value itself. Allocate and
// Deallocate are O(1) and never allocate, block, or log.
//
// The Allocator is the trusted fast path. It performs no validation: passing
// a slot that was not returned by Allocate on the same instance, freeing a
// slot twice, or using a slot after freeing it corrupts the free list. Use
// Checked at untrusted boundaries and in tests where misuse must be reported.
//
// An Allocator is not safe for concurrent use.
package slab

import "unsafe"

// WordSize is the size of one free-list link, in bytes. It is the smallest
// valid object size.
const WordSize = int(unsafe.Sizeof(Slot(0)))

// Slot identifies one slot in an allocator's region by its index.
// The slot's first byte lies at Base() + Slot*ObjectSize().
type Slot uint

// noSlot terminates the free list.
const noSlot = ^Slot(0)

// Slab describes one partitioned memory region.
type Slab struct {
	base       unsafe.Pointer // First byte of the borrowed region.
	freeList   Slot           // Head of the free list, or noSlot.
	objectSize int            // Size of every slot, in bytes.
	capacity   int            // Total number of slots.
	freeCount  int            // Number of slots on the free list.
}

// Capacity returns the total number of slots.
func (s Slab) Capacity() int { return s.capacity }

// FreeObjects returns the number of slots available for allocation.
func (s Slab) FreeObjects() int { return s.freeCount }

// ObjectSize returns the size of every slot, in bytes.
func (s Slab) ObjectSize() int { return s.objectSize }

// Stats represents allocator stats.
type Stats struct {
	Capacity   int // Total slots.
	Free       int // Slots on the free list.
	InUse      int // Slots handed out and not yet returned.
	SlackBytes int // Region bytes past the last whole slot.
}

func (s *Stats) Reset() {
	*s = Stats{}
}

// Allocator hands out fixed-size slots from a borrowed region.
type Allocator struct {
	slab   Slab
	region []byte
}

// New partitions region into len(region)/objectSize slots, all initially free.
//
// The allocator borrows region: it never frees or resizes it, and the caller
// must keep it valid and must not use the allocator after releasing it.
// objectSize must be at least WordSize; smaller sizes are not detected and
// corrupt adjacent slots. An objectSize of zero panics. A region shorter than
// objectSize yields an allocator with no slots.
//
// Slots are linked so that the highest slot is allocated first. Callers must
// not rely on this order.
func New(region []byte, objectSize int) *Allocator {
	n := len(region) / objectSize
	a := &Allocator{
		slab: Slab{
			base:       unsafe.Pointer(unsafe.SliceData(region)),
			freeList:   noSlot,
			objectSize: objectSize,
		},
		region: region,
	}
	for i := range n {
		s := Slot(i)
		*a.link(s) = a.slab.freeList
		a.slab.freeList = s
		a.slab.capacity++
	}
	a.slab.freeCount = a.slab.capacity
	return a
}

// NewAt is like New for a region given by its base address and size in bytes.
// The memory in [base, base+size) must be writable for the allocator's lifetime.
func NewAt(base unsafe.Pointer, size int, objectSize int) *Allocator {
	return New(unsafe.Slice((*byte)(base), size), objectSize)
}

// link returns the free-list word stored at the start of slot s.
func (a *Allocator) link(s Slot) *Slot {
	return (*Slot)(unsafe.Add(a.slab.base, uintptr(s)*uintptr(a.slab.objectSize)))
}

// Allocate removes a slot from the free list and returns it.
// The ok result is false when every slot is in use.
// The slot's contents are not zeroed.
func (a *Allocator) Allocate() (s Slot, ok bool) {
	if a.slab.freeCount == 0 {
		return 0, false
	}
	s = a.slab.freeList
	a.slab.freeList = *a.link(s)
	a.slab.freeCount--
	return s, true
}

// Deallocate returns s to the free list, overwriting its first word.
//
// s must have been returned by Allocate on this allocator and must not have
// been deallocated since. Neither condition is checked.
func (a *Allocator) Deallocate(s Slot) {
	*a.link(s) = a.slab.freeList
	a.slab.freeList = s
	a.slab.freeCount++
}

// Get allocates a slot and returns its bytes, or nil if every slot is in use.
func (a *Allocator) Get() []byte {
	s, ok := a.Allocate()
	if !ok {
		return nil
	}
	return a.Bytes(s)
}

// Put returns the slot whose first byte b starts at.
// It does nothing if b is nil. The same preconditions as Deallocate apply.
func (a *Allocator) Put(b []byte) {
	if b == nil {
		return
	}
	a.Deallocate(a.SlotOf(unsafe.Pointer(unsafe.SliceData(b))))
}

// SlotOf returns the slot containing address p. p is not range checked.
func (a *Allocator) SlotOf(p unsafe.Pointer) Slot {
	return Slot((uintptr(p) - uintptr(a.slab.base)) / uintptr(a.slab.objectSize))
}

// Bytes returns the memory of slot s, with length and capacity ObjectSize().
func (a *Allocator) Bytes(s Slot) []byte {
	off := int(s) * a.slab.objectSize
	end := off + a.slab.objectSize
	return a.region[off:end:end]
}

// Pointer returns the address of the first byte of slot s.
func (a *Allocator) Pointer(s Slot) unsafe.Pointer {
	return unsafe.Add(a.slab.base, uintptr(s)*uintptr(a.slab.objectSize))
}

// Base returns the address of the first byte of the region.
func (a *Allocator) Base() unsafe.Pointer {
	return a.slab.base
}

// Slab returns a snapshot of the allocator's descriptor.
func (a *Allocator) Slab() Slab {
	return a.slab
}

// Capacity returns the total number of slots. It never changes.
func (a *Allocator) Capacity() int {
	return a.slab.capacity
}

// FreeObjects returns the exact number of slots available for allocation.
func (a *Allocator) FreeObjects() int {
	return a.slab.freeCount
}

// InUse returns the number of allocated slots.
func (a *Allocator) InUse() int {
	return a.slab.capacity - a.slab.freeCount
}

// ObjectSize returns the size of every slot, in bytes.
func (a *Allocator) ObjectSize() int {
	return a.slab.objectSize
}

// UpdateStats adds the allocator's counters to s.
func (a *Allocator) UpdateStats(s *Stats) {
	s.Capacity += a.slab.capacity
	s.Free += a.slab.freeCount
	s.InUse += a.InUse()
	s.SlackBytes += len(a.region) - a.slab.capacity*a.slab.objectSize
}
