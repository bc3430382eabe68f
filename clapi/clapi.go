// Package clapi describes the native boundary of the OpenCL runtime as seen by the Go bindings.
//
// It holds the opaque handle type, the status codes (with their symbolic names), the info/flag constants and the
// API interface that a backend must implement: purecl implements it over the system's libOpenCL, and clfake
// implements it in memory, for tests.
//
// Nothing in this package keeps state: objects are owned and tracked by package cl.
package clapi

import (
	"fmt"
	"unsafe"
)

// Handle is an opaque native object identifier (cl_platform_id, cl_context, cl_mem, ...).
// It is never dereferenced by the Go side: it's only used as a lookup key and as an argument to native calls.
type Handle uintptr

// String implements fmt.Stringer.
func (h Handle) String() string {
	return fmt.Sprintf("0x%x", uintptr(h))
}

// Proc is the address of an optional entry point, as resolved for a platform.
// The zero value means the entry point is not available.
type Proc uintptr

// Available returns whether the entry point was resolved.
func (p Proc) Available() bool { return p != 0 }

// Class identifies the family of native entry points used to query, retain and release a handle:
// clGet<Class>Info, clRetain<Class> and clRelease<Class>.
type Class int

const (
	ClassPlatform Class = iota
	ClassDevice
	ClassContext
	ClassCommandQueue
	ClassMem
	ClassSampler
	ClassProgram
	ClassKernel
	ClassEvent
)

var classNames = [...]string{"Platform", "Device", "Context", "CommandQueue", "MemObject", "Sampler", "Program", "Kernel", "Event"}

// String returns the name used in the native entry points (e.g. "MemObject" for clGetMemObjectInfo).
func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// ReferenceCountParam returns the info parameter holding the native reference count of objects of the class.
// Platforms have no reference count, and it returns 0 for them.
func (c Class) ReferenceCountParam() uint32 {
	switch c {
	case ClassDevice:
		return CL_DEVICE_REFERENCE_COUNT
	case ClassContext:
		return CL_CONTEXT_REFERENCE_COUNT
	case ClassCommandQueue:
		return CL_QUEUE_REFERENCE_COUNT
	case ClassMem:
		return CL_MEM_REFERENCE_COUNT
	case ClassSampler:
		return CL_SAMPLER_REFERENCE_COUNT
	case ClassProgram:
		return CL_PROGRAM_REFERENCE_COUNT
	case ClassKernel:
		return CL_KERNEL_REFERENCE_COUNT
	case ClassEvent:
		return CL_EVENT_REFERENCE_COUNT
	}
	return 0
}

// EventCallback is called by the runtime, from an arbitrary thread, when an event reaches the execution status
// it was registered for (or a negative error code). It must return promptly.
type EventCallback func(event Handle, status int32)

// MemCallback is called by the runtime, from an arbitrary thread, just before a memory object is deleted.
type MemCallback func(mem Handle)

// ImageFormat mirrors cl_image_format.
type ImageFormat struct {
	ChannelOrder, ChannelType uint32
}

// ImageDesc mirrors cl_image_desc.
type ImageDesc struct {
	Type                     uint32
	Width, Height, Depth     int
	ArraySize                int
	RowPitch, SlicePitch     int
	NumMipLevels, NumSamples uint32
	Buffer                   Handle
}

// BufferRect describes the regions of a rectangular transfer between a buffer and host memory, as taken by
// clEnqueueReadBufferRect and clEnqueueWriteBufferRect.
type BufferRect struct {
	BufferOrigin, HostOrigin, Region [3]int
	BufferRowPitch, BufferSlicePitch int
	HostRowPitch, HostSlicePitch     int
}

// CopyRect describes the regions of a rectangular copy between two buffers (clEnqueueCopyBufferRect).
type CopyRect struct {
	SrcOrigin, DstOrigin, Region [3]int
	SrcRowPitch, SrcSlicePitch   int
	DstRowPitch, DstSlicePitch   int
}

// BytePointer returns the address of the first byte of data, or nil if it is empty.
func BytePointer(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}
