package cl

import (
	"unsafe"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Enqueue operations.
//
// All of them take the operation arguments followed by wait, the events the command must wait for (nil for
// none), and withEvent, whether to return an Event tracking the command. The returned *Event is nil if
// withEvent is false.
//
// Arguments are validated before the command is enqueued, so a failed validation has no side effect.
//
// For non-blocking transfers, the host slices are used by the runtime after the call returns: they must not be
// modified (or, for reads, accessed) until the command completes.

// eventHandles returns the handles of the wait list.
func eventHandles(wait []*Event) ([]clapi.Handle, error) {
	if len(wait) == 0 {
		return nil, nil
	}
	handles, err := rawHandles(wait)
	if err != nil {
		return nil, errors.WithMessage(err, "wait list")
	}
	return handles, nil
}

// submit runs the native enqueue call with the wait list, and wraps the generated event, if requested.
func (q *Queue) submit(op string, wait []*Event, withEvent bool,
	call func(wait []clapi.Handle, event *clapi.Handle) clapi.Status) (*Event, error) {
	waitHandles, err := eventHandles(wait)
	if err != nil {
		return nil, err
	}
	var eventHandle clapi.Handle
	var eventPtr *clapi.Handle
	if withEvent {
		eventPtr = &eventHandle
	}
	if err := nativeError(op, call(waitHandles, eventPtr)); err != nil {
		return nil, err
	}
	if !withEvent {
		return nil, nil
	}
	c := q.Context()
	if c == nil {
		q.lib.api.Release(clapi.ClassEvent, eventHandle)
		return nil, internalErrorf("context of %s is not registered", q)
	}
	return newEvent(&c.base, eventHandle)
}

func checkBuffer(b *Buffer) error {
	if b == nil {
		return errors.Wrap(ErrValue, "nil buffer")
	}
	return b.alive()
}

// ReadBuffer reads len(dst) bytes starting at offset of the buffer into dst.
func (q *Queue) ReadBuffer(b *Buffer, blocking bool, offset int, dst []byte, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(b); err != nil {
		return nil, err
	}
	if len(dst) == 0 {
		return nil, errors.Wrap(ErrEmpty, "ReadBuffer into empty slice")
	}
	if err := checkBounds(b.size, offset, len(dst)); err != nil {
		return nil, errors.WithMessagef(err, "ReadBuffer from %s", b)
	}
	return q.submit("clEnqueueReadBuffer", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueReadBuffer(q.handle, b.handle, blocking, offset, len(dst), clapi.BytePointer(dst), waitHandles, event)
	})
}

// WriteBuffer writes src into the buffer, starting at offset.
func (q *Queue) WriteBuffer(b *Buffer, blocking bool, offset int, src []byte, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(b); err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, errors.Wrap(ErrEmpty, "WriteBuffer from empty slice")
	}
	if err := checkBounds(b.size, offset, len(src)); err != nil {
		return nil, errors.WithMessagef(err, "WriteBuffer to %s", b)
	}
	return q.submit("clEnqueueWriteBuffer", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueWriteBuffer(q.handle, b.handle, blocking, offset, len(src), clapi.BytePointer(src), waitHandles, event)
	})
}

// CopyBuffer copies size bytes from src (starting at srcOffset) to dst (starting at dstOffset).
func (q *Queue) CopyBuffer(src, dst *Buffer, srcOffset, dstOffset, size int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(src); err != nil {
		return nil, err
	}
	if err := checkBuffer(dst); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, errors.Wrapf(ErrValue, "invalid CopyBuffer size %d", size)
	}
	if err := checkBounds(src.size, srcOffset, size); err != nil {
		return nil, errors.WithMessagef(err, "CopyBuffer source %s", src)
	}
	if err := checkBounds(dst.size, dstOffset, size); err != nil {
		return nil, errors.WithMessagef(err, "CopyBuffer destination %s", dst)
	}
	return q.submit("clEnqueueCopyBuffer", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueCopyBuffer(q.handle, src.handle, dst.handle, srcOffset, dstOffset, size, waitHandles, event)
	})
}

// checkPattern validates a fill pattern: its size must be a power of 2 up to 128 bytes, and divide offset and size.
func checkPattern(pattern []byte, offset, size int) error {
	n := len(pattern)
	if n == 0 {
		return errors.Wrap(ErrEmpty, "empty fill pattern")
	}
	if n > 128 || n&(n-1) != 0 {
		return errors.Wrapf(ErrLength, "fill pattern size %d must be a power of 2 <= 128", n)
	}
	if offset%n != 0 || size%n != 0 {
		return errors.Wrapf(ErrLength, "fill offset %d and size %d must be multiples of the pattern size %d", offset, size, n)
	}
	return nil
}

// FillBuffer fills size bytes of the buffer starting at offset with the repeated pattern.
func (q *Queue) FillBuffer(b *Buffer, pattern []byte, offset, size int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(b); err != nil {
		return nil, err
	}
	if err := checkBounds(b.size, offset, size); err != nil {
		return nil, errors.WithMessagef(err, "FillBuffer of %s", b)
	}
	if err := checkPattern(pattern, offset, size); err != nil {
		return nil, err
	}
	return q.submit("clEnqueueFillBuffer", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueFillBuffer(q.handle, b.handle, pattern, offset, size, waitHandles, event)
	})
}

// rectPitches returns the pitches to use for a rectangular region, applying the OpenCL defaults for 0 pitches.
func rectPitches(region [3]int, rowPitch, slicePitch int) (int, int) {
	if rowPitch == 0 {
		rowPitch = region[0]
	}
	if slicePitch == 0 {
		slicePitch = region[1] * rowPitch
	}
	return rowPitch, slicePitch
}

// checkRect validates that the rectangular region starting at origin fits in a memory of the given size.
func checkRect(memSize int, origin, region [3]int, rowPitch, slicePitch int) error {
	for axis := range 3 {
		if origin[axis] < 0 || region[axis] <= 0 {
			return errors.Wrapf(ErrBoundaries, "invalid rectangle origin %v / region %v", origin, region)
		}
	}
	rowPitch, slicePitch = rectPitches(region, rowPitch, slicePitch)
	if rowPitch < region[0] || slicePitch < region[1]*rowPitch {
		return errors.Wrapf(ErrValue, "invalid pitches (row=%d, slice=%d) for region %v", rowPitch, slicePitch, region)
	}
	start := origin[2]*slicePitch + origin[1]*rowPitch + origin[0]
	end := (origin[2]+region[2]-1)*slicePitch + (origin[1]+region[1]-1)*rowPitch + origin[0] + region[0]
	if end > memSize {
		return errors.Wrapf(ErrBoundaries, "rectangle [%d, %d) out of %d bytes", start, end, memSize)
	}
	return nil
}

// ReadBufferRect reads a 2D or 3D rectangular region of the buffer into dst.
func (q *Queue) ReadBufferRect(b *Buffer, blocking bool, rect clapi.BufferRect, dst []byte, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(b); err != nil {
		return nil, err
	}
	if err := checkRect(b.size, rect.BufferOrigin, rect.Region, rect.BufferRowPitch, rect.BufferSlicePitch); err != nil {
		return nil, errors.WithMessagef(err, "ReadBufferRect from %s", b)
	}
	if err := checkRect(len(dst), rect.HostOrigin, rect.Region, rect.HostRowPitch, rect.HostSlicePitch); err != nil {
		return nil, errors.WithMessage(err, "ReadBufferRect into host slice")
	}
	return q.submit("clEnqueueReadBufferRect", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueReadBufferRect(q.handle, b.handle, blocking, rect, clapi.BytePointer(dst), waitHandles, event)
	})
}

// WriteBufferRect writes a 2D or 3D rectangular region of src into the buffer.
func (q *Queue) WriteBufferRect(b *Buffer, blocking bool, rect clapi.BufferRect, src []byte, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(b); err != nil {
		return nil, err
	}
	if err := checkRect(b.size, rect.BufferOrigin, rect.Region, rect.BufferRowPitch, rect.BufferSlicePitch); err != nil {
		return nil, errors.WithMessagef(err, "WriteBufferRect to %s", b)
	}
	if err := checkRect(len(src), rect.HostOrigin, rect.Region, rect.HostRowPitch, rect.HostSlicePitch); err != nil {
		return nil, errors.WithMessage(err, "WriteBufferRect from host slice")
	}
	return q.submit("clEnqueueWriteBufferRect", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueWriteBufferRect(q.handle, b.handle, blocking, rect, clapi.BytePointer(src), waitHandles, event)
	})
}

// CopyBufferRect copies a 2D or 3D rectangular region from src to dst.
func (q *Queue) CopyBufferRect(src, dst *Buffer, rect clapi.CopyRect, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(src); err != nil {
		return nil, err
	}
	if err := checkBuffer(dst); err != nil {
		return nil, err
	}
	if err := checkRect(src.size, rect.SrcOrigin, rect.Region, rect.SrcRowPitch, rect.SrcSlicePitch); err != nil {
		return nil, errors.WithMessagef(err, "CopyBufferRect source %s", src)
	}
	if err := checkRect(dst.size, rect.DstOrigin, rect.Region, rect.DstRowPitch, rect.DstSlicePitch); err != nil {
		return nil, errors.WithMessagef(err, "CopyBufferRect destination %s", dst)
	}
	return q.submit("clEnqueueCopyBufferRect", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueCopyBufferRect(q.handle, src.handle, dst.handle, rect, waitHandles, event)
	})
}

func checkImage(img *Image) error {
	if img == nil {
		return errors.Wrap(ErrValue, "nil image")
	}
	return img.alive()
}

// checkImageHost validates the size of the host slice used to transfer a region of the image, when the pixel
// size of the image format is known.
func checkImageHost(img *Image, region [3]int, rowPitch, slicePitch int, host []byte) error {
	if len(host) == 0 {
		return errors.Wrap(ErrEmpty, "empty host slice for image transfer")
	}
	pixelSize := PixelSize(img.format)
	if pixelSize == 0 {
		return nil
	}
	rowBytes := [3]int{region[0] * pixelSize, region[1], region[2]}
	return checkRect(len(host), [3]int{}, rowBytes, rowPitch, slicePitch)
}

// ReadImage reads a region of the image into dst. Pitches can be 0 for tightly packed rows and slices.
func (q *Queue) ReadImage(img *Image, blocking bool, origin, region [3]int, rowPitch, slicePitch int, dst []byte,
	wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if err := img.checkRegion(origin, region); err != nil {
		return nil, err
	}
	if err := checkImageHost(img, region, rowPitch, slicePitch, dst); err != nil {
		return nil, errors.WithMessagef(err, "ReadImage from %s", img)
	}
	return q.submit("clEnqueueReadImage", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueReadImage(q.handle, img.handle, blocking, origin, region, rowPitch, slicePitch,
			clapi.BytePointer(dst), waitHandles, event)
	})
}

// WriteImage writes src into a region of the image. Pitches can be 0 for tightly packed rows and slices.
func (q *Queue) WriteImage(img *Image, blocking bool, origin, region [3]int, rowPitch, slicePitch int, src []byte,
	wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if err := img.checkRegion(origin, region); err != nil {
		return nil, err
	}
	if err := checkImageHost(img, region, rowPitch, slicePitch, src); err != nil {
		return nil, errors.WithMessagef(err, "WriteImage to %s", img)
	}
	return q.submit("clEnqueueWriteImage", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueWriteImage(q.handle, img.handle, blocking, origin, region, rowPitch, slicePitch,
			clapi.BytePointer(src), waitHandles, event)
	})
}

// CopyImage copies a region between images of the same format.
func (q *Queue) CopyImage(src, dst *Image, srcOrigin, dstOrigin, region [3]int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkImage(src); err != nil {
		return nil, err
	}
	if err := checkImage(dst); err != nil {
		return nil, err
	}
	if err := src.checkRegion(srcOrigin, region); err != nil {
		return nil, err
	}
	if err := dst.checkRegion(dstOrigin, region); err != nil {
		return nil, err
	}
	return q.submit("clEnqueueCopyImage", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueCopyImage(q.handle, src.handle, dst.handle, srcOrigin, dstOrigin, region, waitHandles, event)
	})
}

// FillImage fills a region of the image with a color: 4 float32, int32 or uint32 values (depending on the
// channel type of the image) in native byte order.
func (q *Queue) FillImage(img *Image, color [16]byte, origin, region [3]int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}
	if err := img.checkRegion(origin, region); err != nil {
		return nil, err
	}
	return q.submit("clEnqueueFillImage", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueFillImage(q.handle, img.handle, color, origin, region, waitHandles, event)
	})
}

// CopyImageToBuffer copies a region of the image to the buffer, starting at dstOffset.
func (q *Queue) CopyImageToBuffer(src *Image, dst *Buffer, srcOrigin, region [3]int, dstOffset int,
	wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkImage(src); err != nil {
		return nil, err
	}
	if err := checkBuffer(dst); err != nil {
		return nil, err
	}
	if err := src.checkRegion(srcOrigin, region); err != nil {
		return nil, err
	}
	size := max(PixelSize(src.format), 1) * region[0] * region[1] * region[2]
	if err := checkBounds(dst.size, dstOffset, size); err != nil {
		return nil, errors.WithMessagef(err, "CopyImageToBuffer destination %s", dst)
	}
	return q.submit("clEnqueueCopyImageToBuffer", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueCopyImageToBuffer(q.handle, src.handle, dst.handle, srcOrigin, region, dstOffset, waitHandles, event)
	})
}

// CopyBufferToImage copies the contents of the buffer, starting at srcOffset, to a region of the image.
func (q *Queue) CopyBufferToImage(src *Buffer, dst *Image, srcOffset int, dstOrigin, region [3]int,
	wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkBuffer(src); err != nil {
		return nil, err
	}
	if err := checkImage(dst); err != nil {
		return nil, err
	}
	if err := dst.checkRegion(dstOrigin, region); err != nil {
		return nil, err
	}
	size := max(PixelSize(dst.format), 1) * region[0] * region[1] * region[2]
	if err := checkBounds(src.size, srcOffset, size); err != nil {
		return nil, errors.WithMessagef(err, "CopyBufferToImage source %s", src)
	}
	return q.submit("clEnqueueCopyBufferToImage", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueCopyBufferToImage(q.handle, src.handle, dst.handle, srcOffset, dstOrigin, region, waitHandles, event)
	})
}

// MapBuffer maps a region of the buffer into the host address space, and returns it as a slice.
// For non-blocking maps, the slice can only be accessed after the returned event completes.
// The region must be unmapped with Unmap.
func (q *Queue) MapBuffer(b *Buffer, blocking bool, flags clapi.MapFlags, offset, size int,
	wait []*Event, withEvent bool) ([]byte, *Event, error) {
	if err := q.alive(); err != nil {
		return nil, nil, err
	}
	if err := checkBuffer(b); err != nil {
		return nil, nil, err
	}
	if err := checkBounds(b.size, offset, size); err != nil {
		return nil, nil, errors.WithMessagef(err, "MapBuffer of %s", b)
	}
	var ptr unsafe.Pointer
	event, err := q.submit("clEnqueueMapBuffer", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		var st clapi.Status
		ptr, st = q.lib.api.EnqueueMapBuffer(q.handle, b.handle, blocking, flags, offset, size, waitHandles, event)
		return st
	})
	if err != nil {
		return nil, nil, err
	}
	if ptr == nil {
		return nil, event, internalErrorf("clEnqueueMapBuffer returned a nil pointer for %s", b)
	}
	return unsafe.Slice((*byte)(ptr), size), event, nil
}

// ImageMapping is a region of an image mapped into the host address space.
type ImageMapping struct {
	Data                 []byte
	RowPitch, SlicePitch int
}

// MapImage maps a region of the image into the host address space. The region must be unmapped with Unmap.
func (q *Queue) MapImage(img *Image, blocking bool, flags clapi.MapFlags, origin, region [3]int,
	wait []*Event, withEvent bool) (ImageMapping, *Event, error) {
	if err := q.alive(); err != nil {
		return ImageMapping{}, nil, err
	}
	if err := checkImage(img); err != nil {
		return ImageMapping{}, nil, err
	}
	if err := img.checkRegion(origin, region); err != nil {
		return ImageMapping{}, nil, err
	}
	var ptr unsafe.Pointer
	var rowPitch, slicePitch int
	event, err := q.submit("clEnqueueMapImage", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		var st clapi.Status
		ptr, rowPitch, slicePitch, st = q.lib.api.EnqueueMapImage(q.handle, img.handle, blocking, flags, origin, region, waitHandles, event)
		return st
	})
	if err != nil {
		return ImageMapping{}, nil, err
	}
	if ptr == nil {
		return ImageMapping{}, event, internalErrorf("clEnqueueMapImage returned a nil pointer for %s", img)
	}
	rowBytes := max(PixelSize(img.format), 1) * region[0]
	size := (region[1]-1)*rowPitch + rowBytes
	if region[2] > 1 {
		size += (region[2] - 1) * slicePitch
	}
	return ImageMapping{
		Data:       unsafe.Slice((*byte)(ptr), size),
		RowPitch:   rowPitch,
		SlicePitch: slicePitch,
	}, event, nil
}

// Unmap unmaps a region previously mapped with MapBuffer or MapImage from the memory object.
func (q *Queue) Unmap(mem Wrapper, mapped []byte, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	h, err := memHandle(mem)
	if err != nil {
		return nil, err
	}
	if len(mapped) == 0 {
		return nil, errors.Wrap(ErrEmpty, "Unmap of an empty mapping")
	}
	return q.submit("clEnqueueUnmapMemObject", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueUnmapMemObject(q.handle, h, clapi.BytePointer(mapped), waitHandles, event)
	})
}

// MigrateMemObjects migrates the memory objects to the device of the queue (or to the host, with
// clapi.MigrateMemObjectHost).
func (q *Queue) MigrateMemObjects(mems []Wrapper, flags clapi.MigrationFlags, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	handles, err := memHandles(mems)
	if err != nil {
		return nil, err
	}
	return q.submit("clEnqueueMigrateMemObjects", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueMigrateMemObjects(q.handle, handles, flags, waitHandles, event)
	})
}

// NDRangeKernel enqueues the execution of the kernel over the global work sizes, with 1 to 3 dimensions.
// offset and local are optional (nil), but when given they must have the same number of dimensions as global.
func (q *Queue) NDRangeKernel(k *Kernel, offset, global, local []int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if k == nil {
		return nil, errors.Wrap(ErrValue, "nil kernel")
	}
	if err := k.alive(); err != nil {
		return nil, err
	}
	dims := len(global)
	if dims == 0 || dims > 3 {
		return nil, errors.Wrapf(ErrLength, "NDRangeKernel requires 1 to 3 work dimensions, got %d", dims)
	}
	if offset != nil && len(offset) != dims {
		return nil, errors.Wrapf(ErrLength, "global work offset has %d dimensions, expected %d", len(offset), dims)
	}
	if local != nil && len(local) != dims {
		return nil, errors.Wrapf(ErrLength, "local work size has %d dimensions, expected %d", len(local), dims)
	}
	for axis := range dims {
		if global[axis] <= 0 {
			return nil, errors.Wrapf(ErrValue, "invalid global work size %v", global)
		}
		if local != nil && local[axis] <= 0 {
			return nil, errors.Wrapf(ErrValue, "invalid local work size %v", local)
		}
		if offset != nil && offset[axis] < 0 {
			return nil, errors.Wrapf(ErrValue, "invalid global work offset %v", offset)
		}
	}
	return q.submit("clEnqueueNDRangeKernel", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueNDRangeKernel(q.handle, k.handle, offset, global, local, waitHandles, event)
	})
}

// Task enqueues a single work-item execution of the kernel.
func (q *Queue) Task(k *Kernel, wait []*Event, withEvent bool) (*Event, error) {
	return q.NDRangeKernel(k, nil, []int{1}, []int{1}, wait, withEvent)
}

// Marker enqueues a marker: its event completes when the events in wait complete, or, if wait is empty, when all
// the commands enqueued before it complete.
func (q *Queue) Marker(wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	return q.submit("clEnqueueMarkerWithWaitList", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueMarkerWithWaitList(q.handle, waitHandles, event)
	})
}

// Barrier enqueues a barrier: commands enqueued after it only start after the events in wait complete, or, if
// wait is empty, after all the commands enqueued before it complete.
func (q *Queue) Barrier(wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	return q.submit("clEnqueueBarrierWithWaitList", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueBarrierWithWaitList(q.handle, waitHandles, event)
	})
}
