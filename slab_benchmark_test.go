package slab

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"
)

// go clean -testcache && go test -bench=. -benchtime=10s -benchmem .

const benchObjects = 1 << 12

func newBenchAllocator(b *testing.B, objectSize int) (*Allocator, *Region) {
	b.Helper()
	a, r, err := NewMapped(DefaultMapper(), Config{ObjectSize: objectSize, Objects: benchObjects})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { r.Close() })
	return a, r
}

// BenchmarkAllocateDeallocate measures a single slot cycling through the free list.
func BenchmarkAllocateDeallocate(b *testing.B) {
	a, _ := newBenchAllocator(b, 64)

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		s, ok := a.Allocate()
		if !ok {
			b.Fatal("allocator exhausted")
		}
		a.Deallocate(s)
	}
}

// BenchmarkFillAndDrain allocates every slot and then returns them all.
func BenchmarkFillAndDrain(b *testing.B) {
	a, _ := newBenchAllocator(b, 64)
	slots := make([]Slot, 0, benchObjects)

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		for {
			s, ok := a.Allocate()
			if !ok {
				break
			}
			slots = append(slots, s)
		}
		for _, s := range slots {
			a.Deallocate(s)
		}
		slots = slots[:0]
	}
}

// BenchmarkRandomChurn simulates a workload that frees slots in random order,
// scattering the free list across the region.
func BenchmarkRandomChurn(b *testing.B) {
	a, _ := newBenchAllocator(b, 128)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	live := make([]Slot, 0, benchObjects)
	for range benchObjects / 2 {
		s, _ := a.Allocate()
		live = append(live, s)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		i := rng.Intn(len(live))
		a.Deallocate(live[i])
		s, ok := a.Allocate()
		if !ok {
			b.Fatal("allocator exhausted")
		}
		live[i] = s
	}
}

// BenchmarkCheckedAllocateDeallocate measures the overhead of handle validation.
func BenchmarkCheckedAllocateDeallocate(b *testing.B) {
	c, err := NewChecked(make([]byte, 64*benchObjects), 64, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for range b.N {
		h, ok := c.Allocate()
		if !ok {
			b.Fatal("allocator exhausted")
		}
		if err := c.Deallocate(h); err != nil {
			b.Fatal(err)
		}
	}
}
