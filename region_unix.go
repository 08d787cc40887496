//go:build linux || darwin

package slab

import "golang.org/x/sys/unix"

var defaultMapper Mapper = MmapMapper{}

// MmapMapper backs regions with anonymous private mappings outside the Go heap,
// so the garbage collector never scans them.
type MmapMapper struct{}

func (MmapMapper) Map(size int) ([]byte, error) {
	if size == 0 {
		// mmap rejects zero-length mappings.
		return []byte{}, nil
	}
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
}

func (MmapMapper) Unmap(region []byte) error {
	if len(region) == 0 {
		return nil
	}
	return unix.Munmap(region)
}
