package cl

import (
	"unsafe"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// HostType are the Go types that can be transferred to and from buffers, and used as scalar kernel arguments.
type HostType interface {
	int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64 | float16.Float16
}

// SizeOf returns the size in bytes of one element of type T.
func SizeOf[T HostType]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// asBytes reinterprets the slice as raw bytes, without copying.
func asBytes[T HostType](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*SizeOf[T]())
}

// BufferFromSlice creates a buffer initialized with a copy of data.
func BufferFromSlice[T HostType](c *Context, data []T) (*Buffer, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrEmpty, "BufferFromSlice with empty data")
	}
	return c.NewBuffer().FromHost(asBytes(data)).Done()
}

// WriteSlice writes src into the buffer, starting at element offset (in units of T).
func WriteSlice[T HostType](q *Queue, b *Buffer, blocking bool, offset int, src []T, wait []*Event, withEvent bool) (*Event, error) {
	return q.WriteBuffer(b, blocking, offset*SizeOf[T](), asBytes(src), wait, withEvent)
}

// ReadSlice reads len(dst) elements of the buffer, starting at element offset (in units of T), into dst.
func ReadSlice[T HostType](q *Queue, b *Buffer, blocking bool, offset int, dst []T, wait []*Event, withEvent bool) (*Event, error) {
	return q.ReadBuffer(b, blocking, offset*SizeOf[T](), asBytes(dst), wait, withEvent)
}

// FillValue fills count elements of the buffer, starting at element offset (in units of T), with value.
func FillValue[T HostType](q *Queue, b *Buffer, value T, offset, count int, wait []*Event, withEvent bool) (*Event, error) {
	size := SizeOf[T]()
	pattern := make([]byte, size)
	copy(pattern, asBytes([]T{value}))
	return q.FillBuffer(b, pattern, offset*size, count*size, wait, withEvent)
}
