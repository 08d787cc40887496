package testutils

import (
	"errors"
	"sync/atomic"
)

var ErrMockUnmap = errors.New("mock unmap failure")

// MockMapper is a heap-backed mapper that counts Map and Unmap calls.
type MockMapper struct {
	FailUnmap bool // Unmap returns ErrMockUnmap when set.

	mapCalls   atomic.Int64
	unmapCalls atomic.Int64
	mappedSize atomic.Int64
}

func (m *MockMapper) Map(size int) ([]byte, error) {
	m.mapCalls.Add(1)
	m.mappedSize.Add(int64(size))
	return make([]byte, size), nil
}

func (m *MockMapper) Unmap(region []byte) error {
	m.unmapCalls.Add(1)
	if m.FailUnmap {
		return ErrMockUnmap
	}
	m.mappedSize.Add(-int64(len(region)))
	return nil
}

func (m *MockMapper) MapCalls() int64 {
	return m.mapCalls.Load()
}

func (m *MockMapper) UnmapCalls() int64 {
	return m.unmapCalls.Load()
}

// MappedBytes returns the number of bytes mapped and not yet unmapped.
func (m *MockMapper) MappedBytes() int64 {
	return m.mappedSize.Load()
}

func (m *MockMapper) Reset() {
	m.mapCalls.Store(0)
	m.unmapCalls.Store(0)
	m.mappedSize.Store(0)
}
