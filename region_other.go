//go:build !linux && !darwin

package slab

var defaultMapper Mapper = HeapMapper{}
