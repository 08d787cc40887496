package slab

import "errors"

var (
	// ErrObjectSizeTooSmall indicates an object size that cannot hold a free-list link.
	ErrObjectSizeTooSmall = errors.New("slab: object size smaller than one word")

	// ErrForeignHandle indicates a handle issued by a different allocator.
	ErrForeignHandle = errors.New("slab: handle belongs to another allocator")

	// ErrSlotOutOfRange indicates a slot index at or past the allocator's capacity.
	ErrSlotOutOfRange = errors.New("slab: slot out of range")

	// ErrDoubleFree indicates an attempt to free a slot that is already free.
	ErrDoubleFree = errors.New("slab: slot already free")

	// ErrStaleHandle indicates a handle to a slot that was freed and possibly reallocated.
	ErrStaleHandle = errors.New("slab: stale handle")
)
