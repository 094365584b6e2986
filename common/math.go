package common

import (
	"unsafe"
)

// Float32Size is the byte width of a single 32-bit float vertex component.
const Float32Size = 4

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ByteLength returns the number of bytes SliceToBytes would produce for data
// without creating the view.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - uint64: total size of the slice contents in bytes
func ByteLength[T any](data []T) uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero)) * uint64(len(data))
}
