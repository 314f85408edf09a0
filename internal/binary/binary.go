// Package binary replaces the encoding/binary package in the standard library for little endian encoding using generics.
package binary

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
)

var Enc = binary.LittleEndian

// Size returns the number of bytes an integer of type T occupies.
func Size[T constraints.Integer]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// Get gets any integer size from a []byte slice.
func Get[T constraints.Integer](b []byte) T {
	_ = b[len(b)-1] // bounds check hint to compiler; see golang.org/issue/14808

	var r T // This is only used for type detction.
	switch any(r).(type) {
	case int8:
		return T(int8(b[0]))
	case int16:
		return T(int16(uint16(b[0]) | uint16(b[1])<<8))
	case int32:
		return T(int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24))
	case int64:
		return T(int64(Enc.Uint64(b)))
	case uint8:
		return T(b[0])
	case uint16:
		return T(uint16(b[0]) | uint16(b[1])<<8)
	case uint32:
		return T(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24)
	case uint64:
		return T(Enc.Uint64(b))
	}
	panic(fmt.Sprintf("unsupported type that passed the type constraint %T", r))
}

// Put puts any integer size into a []byte slice. b must be at least Size[T]() long.
func Put[T constraints.Integer](b []byte, v T) {
	switch Size[T]() {
	case 1:
		b[0] = byte(v)
	case 2:
		Enc.PutUint16(b, uint16(v))
	case 4:
		Enc.PutUint32(b, uint32(v))
	default:
		Enc.PutUint64(b, uint64(v))
	}
}

// Append appends the little endian encoding of v to b.
func Append[T constraints.Integer](b []byte, v T) []byte {
	switch Size[T]() {
	case 1:
		return append(b, byte(v))
	case 2:
		return Enc.AppendUint16(b, uint16(v))
	case 4:
		return Enc.AppendUint32(b, uint32(v))
	}
	return Enc.AppendUint64(b, uint64(v))
}
