package clfake

import (
	"unsafe"

	"github.com/gomlx/gocl/clapi"
)

func (f *API) CreateBuffer(context clapi.Handle, flags clapi.MemFlags, size int, host unsafe.Pointer) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateBuffer")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if size <= 0 {
		return 0, clapi.CL_INVALID_BUFFER_SIZE
	}
	usesHost := flags&(clapi.MemUseHostPtr|clapi.MemCopyHostPtr) != 0
	if usesHost != (host != nil) {
		return 0, clapi.CL_INVALID_HOST_PTR
	}
	b := f.newObject(clapi.ClassMem)
	b.context = c
	b.memType = clapi.CL_MEM_OBJECT_BUFFER
	b.flags = flags
	switch {
	case flags&clapi.MemUseHostPtr != 0:
		b.data = hostBytes(host, size)
	case flags&clapi.MemCopyHostPtr != 0:
		b.data = make([]byte, size)
		copy(b.data, hostBytes(host, size))
	default:
		b.data = make([]byte, size)
	}
	return b.handle, clapi.CL_SUCCESS
}

// CreateSubBuffer creates a region of the buffer: it shares the storage of its buffer, and holds a reference to it.
func (f *API) CreateSubBuffer(buffer clapi.Handle, flags clapi.MemFlags, origin, size int) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateSubBuffer")
	b, st := f.lookup(clapi.ClassMem, buffer)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if b.memType != clapi.CL_MEM_OBJECT_BUFFER || b.parent != nil {
		return 0, clapi.CL_INVALID_MEM_OBJECT
	}
	if size <= 0 {
		return 0, clapi.CL_INVALID_BUFFER_SIZE
	}
	if origin < 0 || origin+size > len(b.data) {
		return 0, clapi.CL_INVALID_VALUE
	}
	if flags == 0 {
		flags = b.flags &^ (clapi.MemUseHostPtr | clapi.MemCopyHostPtr | clapi.MemAllocHostPtr)
	}
	sub := f.newObject(clapi.ClassMem)
	sub.context = b.context
	sub.memType = clapi.CL_MEM_OBJECT_BUFFER
	sub.flags = flags
	sub.parent = b
	sub.origin = origin
	sub.data = b.data[origin : origin+size : origin+size]
	b.attachedRef++
	return sub.handle, clapi.CL_SUCCESS
}

// pixelSize returns the size in bytes of a pixel of the format, or 0 if the format is not supported.
func pixelSize(format clapi.ImageFormat) int {
	var channels, size int
	switch format.ChannelOrder {
	case clapi.CL_R:
		channels = 1
	case clapi.CL_RG:
		channels = 2
	case clapi.CL_RGBA:
		channels = 4
	}
	switch format.ChannelType {
	case clapi.CL_UNORM_INT8, clapi.CL_UNSIGNED_INT8:
		size = 1
	case clapi.CL_HALF_FLOAT:
		size = 2
	case clapi.CL_SIGNED_INT32, clapi.CL_UNSIGNED_INT32, clapi.CL_FLOAT:
		size = 4
	}
	return channels * size
}

// imageExtent returns the width, height and depth (or number of layers) of an image, all at least 1.
func (f *API) GetImageInfo(image clapi.Handle, param uint32, out []byte) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clGetImageInfo")
	img, st := f.image(image)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	desc := img.imageDesc
	var value []byte
	switch param {
	case clapi.CL_IMAGE_FORMAT:
		value = append(u32(img.imageFormat.ChannelOrder), u32(img.imageFormat.ChannelType)...)
	case clapi.CL_IMAGE_ELEMENT_SIZE:
		value = u64(uint64(img.pixelSize))
	case clapi.CL_IMAGE_ROW_PITCH:
		value = u64(uint64(imageExtent(desc)[0] * img.pixelSize))
	case clapi.CL_IMAGE_WIDTH:
		value = u64(uint64(desc.Width))
	case clapi.CL_IMAGE_HEIGHT:
		value = u64(uint64(desc.Height))
	case clapi.CL_IMAGE_DEPTH:
		value = u64(uint64(desc.Depth))
	case clapi.CL_IMAGE_ARRAY_SIZE:
		value = u64(uint64(desc.ArraySize))
	default:
		return 0, clapi.CL_INVALID_VALUE
	}
	return copyOut(out, value)
}

func imageExtent(desc clapi.ImageDesc) [3]int {
	extent := [3]int{max(desc.Width, 1), max(desc.Height, 1), max(desc.Depth, 1)}
	switch desc.Type {
	case clapi.CL_MEM_OBJECT_IMAGE1D_ARRAY:
		extent[1] = max(desc.ArraySize, 1)
	case clapi.CL_MEM_OBJECT_IMAGE2D_ARRAY:
		extent[2] = max(desc.ArraySize, 1)
	}
	return extent
}

func (f *API) CreateImage(context clapi.Handle, flags clapi.MemFlags, format clapi.ImageFormat, desc clapi.ImageDesc,
	host unsafe.Pointer) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateImage")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	pixel := pixelSize(format)
	if pixel == 0 {
		return 0, clapi.CL_IMAGE_FORMAT_NOT_SUPPORTED
	}
	if desc.Width <= 0 {
		return 0, clapi.CL_INVALID_IMAGE_SIZE
	}
	usesHost := flags&(clapi.MemUseHostPtr|clapi.MemCopyHostPtr) != 0
	if usesHost != (host != nil) {
		return 0, clapi.CL_INVALID_HOST_PTR
	}
	extent := imageExtent(desc)
	size := extent[0] * extent[1] * extent[2] * pixel
	img := f.newObject(clapi.ClassMem)
	img.context = c
	img.memType = desc.Type
	img.flags = flags
	img.imageFormat = format
	img.imageDesc = desc
	img.pixelSize = pixel
	img.data = make([]byte, size)
	if usesHost {
		// Host data is tightly packed, unless the pitches say otherwise.
		rowPitch := max(desc.RowPitch, extent[0]*pixel)
		slicePitch := max(desc.SlicePitch, rowPitch*extent[1])
		src := hostBytes(host, slicePitch*extent[2])
		copyRegion(img.data, [3]int{}, extent[0]*pixel, extent[0]*pixel*extent[1],
			src, [3]int{}, rowPitch, slicePitch, [3]int{extent[0] * pixel, extent[1], extent[2]})
	}
	return img.handle, clapi.CL_SUCCESS
}

// copyRegion copies a 3D region between two byte arrays. Origins and region are given in bytes for the first
// dimension, and in rows and slices for the others.
func copyRegion(dst []byte, dstOrigin [3]int, dstRowPitch, dstSlicePitch int,
	src []byte, srcOrigin [3]int, srcRowPitch, srcSlicePitch int, region [3]int) {
	for z := range region[2] {
		for y := range region[1] {
			dstStart := (dstOrigin[2]+z)*dstSlicePitch + (dstOrigin[1]+y)*dstRowPitch + dstOrigin[0]
			srcStart := (srcOrigin[2]+z)*srcSlicePitch + (srcOrigin[1]+y)*srcRowPitch + srcOrigin[0]
			copy(dst[dstStart:dstStart+region[0]], src[srcStart:srcStart+region[0]])
		}
	}
}

// regionFits returns whether the region starting at origin fits in the memory described by the pitches.
func regionFits(size int, origin [3]int, rowPitch, slicePitch int, region [3]int) bool {
	for ii := range 3 {
		if origin[ii] < 0 || region[ii] <= 0 {
			return false
		}
	}
	if region[0] > rowPitch || (region[2] > 1 && rowPitch*region[1] > slicePitch) {
		return false
	}
	last := (origin[2]+region[2]-1)*slicePitch + (origin[1]+region[1]-1)*rowPitch + origin[0] + region[0]
	return last <= size
}

// imageRegion converts an image origin and region (in pixels) to bytes, and returns the image pitches.
func imageRegion(img *object, origin, region [3]int) (byteOrigin, byteRegion [3]int, rowPitch, slicePitch int, ok bool) {
	extent := imageExtent(img.imageDesc)
	for ii := range 3 {
		if origin[ii] < 0 || region[ii] <= 0 || origin[ii]+region[ii] > extent[ii] {
			return byteOrigin, byteRegion, 0, 0, false
		}
	}
	rowPitch = extent[0] * img.pixelSize
	slicePitch = rowPitch * extent[1]
	byteOrigin = [3]int{origin[0] * img.pixelSize, origin[1], origin[2]}
	byteRegion = [3]int{region[0] * img.pixelSize, region[1], region[2]}
	return byteOrigin, byteRegion, rowPitch, slicePitch, true
}

func (f *API) CreateSampler(context clapi.Handle, normalized bool, addressing, filter uint32) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateSampler")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if addressing < clapi.CL_ADDRESS_NONE || addressing > clapi.CL_ADDRESS_MIRRORED_REPEAT ||
		(filter != clapi.CL_FILTER_NEAREST && filter != clapi.CL_FILTER_LINEAR) {
		return 0, clapi.CL_INVALID_VALUE
	}
	s := f.newObject(clapi.ClassSampler)
	s.context = c
	s.normalized, s.addressing, s.filter = normalized, addressing, filter
	return s.handle, clapi.CL_SUCCESS
}

func (f *API) SetMemObjectDestructorCallback(mem clapi.Handle, fn clapi.MemCallback) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clSetMemObjectDestructorCallback")
	m, st := f.lookup(clapi.ClassMem, mem)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if f.noDestructorCallbacks {
		return clapi.CL_INVALID_OPERATION
	}
	if fn == nil {
		return clapi.CL_INVALID_VALUE
	}
	m.destructors = append(m.destructors, fn)
	return clapi.CL_SUCCESS
}

// buffer returns a live buffer and checks that [offset, offset+size) is within it.
func (f *API) buffer(h clapi.Handle, offset, size int) (*object, clapi.Status) {
	b, st := f.lookup(clapi.ClassMem, h)
	if st != clapi.CL_SUCCESS {
		return nil, st
	}
	if b.memType != clapi.CL_MEM_OBJECT_BUFFER {
		return nil, clapi.CL_INVALID_MEM_OBJECT
	}
	if offset < 0 || size <= 0 || offset+size > len(b.data) {
		return nil, clapi.CL_INVALID_VALUE
	}
	return b, clapi.CL_SUCCESS
}

// image returns a live image.
func (f *API) image(h clapi.Handle) (*object, clapi.Status) {
	img, st := f.lookup(clapi.ClassMem, h)
	if st != clapi.CL_SUCCESS {
		return nil, st
	}
	if img.pixelSize == 0 {
		return nil, clapi.CL_INVALID_MEM_OBJECT
	}
	return img, clapi.CL_SUCCESS
}

func (f *API) EnqueueReadBuffer(queue, buffer clapi.Handle, blocking bool, offset, size int, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	b, st := f.buffer(buffer, offset, size)
	if st == clapi.CL_SUCCESS && ptr == nil {
		st = clapi.CL_INVALID_VALUE
	}
	if st != clapi.CL_SUCCESS {
		f.call("clEnqueueReadBuffer")
		return st
	}
	return f.enqueue("clEnqueueReadBuffer", queue, clapi.CL_COMMAND_READ_BUFFER, blocking, wait, event, func() clapi.Status {
		copy(hostBytes(ptr, size), b.data[offset:offset+size])
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueWriteBuffer(queue, buffer clapi.Handle, blocking bool, offset, size int, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	b, st := f.buffer(buffer, offset, size)
	if st == clapi.CL_SUCCESS && ptr == nil {
		st = clapi.CL_INVALID_VALUE
	}
	if st != clapi.CL_SUCCESS {
		f.call("clEnqueueWriteBuffer")
		return st
	}
	return f.enqueue("clEnqueueWriteBuffer", queue, clapi.CL_COMMAND_WRITE_BUFFER, blocking, wait, event, func() clapi.Status {
		copy(b.data[offset:offset+size], hostBytes(ptr, size))
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueCopyBuffer(queue, src, dst clapi.Handle, srcOffset, dstOffset, size int, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	srcB, st := f.buffer(src, srcOffset, size)
	if st != clapi.CL_SUCCESS {
		f.call("clEnqueueCopyBuffer")
		return st
	}
	dstB, st := f.buffer(dst, dstOffset, size)
	if st != clapi.CL_SUCCESS {
		f.call("clEnqueueCopyBuffer")
		return st
	}
	return f.enqueue("clEnqueueCopyBuffer", queue, clapi.CL_COMMAND_COPY_BUFFER, false, wait, event, func() clapi.Status {
		copy(dstB.data[dstOffset:dstOffset+size], srcB.data[srcOffset:srcOffset+size])
		return clapi.CL_SUCCESS
	})
}

// fill repeats the pattern over dst.
func fill(dst, pattern []byte) {
	for ii := 0; ii < len(dst); ii += len(pattern) {
		copy(dst[ii:], pattern)
	}
}

func (f *API) EnqueueFillBuffer(queue, buffer clapi.Handle, pattern []byte, offset, size int, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	b, st := f.buffer(buffer, offset, size)
	n := len(pattern)
	if st == clapi.CL_SUCCESS && (n == 0 || n&(n-1) != 0 || n > 128 || offset%n != 0 || size%n != 0) {
		st = clapi.CL_INVALID_VALUE
	}
	if st != clapi.CL_SUCCESS {
		f.call("clEnqueueFillBuffer")
		return st
	}
	pattern = append([]byte(nil), pattern...)
	return f.enqueue("clEnqueueFillBuffer", queue, clapi.CL_COMMAND_FILL_BUFFER, false, wait, event, func() clapi.Status {
		fill(b.data[offset:offset+size], pattern)
		return clapi.CL_SUCCESS
	})
}

// rectPitches fills in the default pitches (0) of a rectangular transfer.
func rectPitches(region [3]int, rowPitch, slicePitch int) (int, int) {
	if rowPitch == 0 {
		rowPitch = region[0]
	}
	if slicePitch == 0 {
		slicePitch = rowPitch * region[1]
	}
	return rowPitch, slicePitch
}

func (f *API) bufferRect(name string, queue, buffer clapi.Handle, commandType uint32, blocking, read bool,
	rect clapi.BufferRect, ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	b, st := f.lookup(clapi.ClassMem, buffer)
	bufRow, bufSlice := rectPitches(rect.Region, rect.BufferRowPitch, rect.BufferSlicePitch)
	hostRow, hostSlice := rectPitches(rect.Region, rect.HostRowPitch, rect.HostSlicePitch)
	if st == clapi.CL_SUCCESS && (ptr == nil || !regionFits(len(b.data), rect.BufferOrigin, bufRow, bufSlice, rect.Region)) {
		st = clapi.CL_INVALID_VALUE
	}
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	hostSize := (rect.HostOrigin[2]+rect.Region[2]-1)*hostSlice + (rect.HostOrigin[1]+rect.Region[1]-1)*hostRow +
		rect.HostOrigin[0] + rect.Region[0]
	return f.enqueue(name, queue, commandType, blocking, wait, event, func() clapi.Status {
		host := hostBytes(ptr, hostSize)
		if read {
			copyRegion(host, rect.HostOrigin, hostRow, hostSlice, b.data, rect.BufferOrigin, bufRow, bufSlice, rect.Region)
		} else {
			copyRegion(b.data, rect.BufferOrigin, bufRow, bufSlice, host, rect.HostOrigin, hostRow, hostSlice, rect.Region)
		}
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueReadBufferRect(queue, buffer clapi.Handle, blocking bool, rect clapi.BufferRect, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.bufferRect("clEnqueueReadBufferRect", queue, buffer, clapi.CL_COMMAND_READ_BUFFER_RECT, blocking, true,
		rect, ptr, wait, event)
}

func (f *API) EnqueueWriteBufferRect(queue, buffer clapi.Handle, blocking bool, rect clapi.BufferRect, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.bufferRect("clEnqueueWriteBufferRect", queue, buffer, clapi.CL_COMMAND_WRITE_BUFFER_RECT, blocking, false,
		rect, ptr, wait, event)
}

func (f *API) EnqueueCopyBufferRect(queue, src, dst clapi.Handle, rect clapi.CopyRect, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueCopyBufferRect"
	srcB, st := f.lookup(clapi.ClassMem, src)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	dstB, st := f.lookup(clapi.ClassMem, dst)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	srcRow, srcSlice := rectPitches(rect.Region, rect.SrcRowPitch, rect.SrcSlicePitch)
	dstRow, dstSlice := rectPitches(rect.Region, rect.DstRowPitch, rect.DstSlicePitch)
	if !regionFits(len(srcB.data), rect.SrcOrigin, srcRow, srcSlice, rect.Region) ||
		!regionFits(len(dstB.data), rect.DstOrigin, dstRow, dstSlice, rect.Region) {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	return f.enqueue(name, queue, clapi.CL_COMMAND_COPY_BUFFER_RECT, false, wait, event, func() clapi.Status {
		copyRegion(dstB.data, rect.DstOrigin, dstRow, dstSlice, srcB.data, rect.SrcOrigin, srcRow, srcSlice, rect.Region)
		return clapi.CL_SUCCESS
	})
}

func (f *API) imageTransfer(name string, queue, image clapi.Handle, commandType uint32, blocking, read bool,
	origin, region [3]int, rowPitch, slicePitch int, ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	img, st := f.image(image)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	byteOrigin, byteRegion, imgRow, imgSlice, ok := imageRegion(img, origin, region)
	if !ok || ptr == nil {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	hostRow, hostSlice := rectPitches(byteRegion, rowPitch, slicePitch)
	hostSize := (byteRegion[2]-1)*hostSlice + (byteRegion[1]-1)*hostRow + byteRegion[0]
	return f.enqueue(name, queue, commandType, blocking, wait, event, func() clapi.Status {
		host := hostBytes(ptr, hostSize)
		if read {
			copyRegion(host, [3]int{}, hostRow, hostSlice, img.data, byteOrigin, imgRow, imgSlice, byteRegion)
		} else {
			copyRegion(img.data, byteOrigin, imgRow, imgSlice, host, [3]int{}, hostRow, hostSlice, byteRegion)
		}
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueReadImage(queue, image clapi.Handle, blocking bool, origin, region [3]int, rowPitch, slicePitch int,
	ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.imageTransfer("clEnqueueReadImage", queue, image, clapi.CL_COMMAND_READ_IMAGE, blocking, true,
		origin, region, rowPitch, slicePitch, ptr, wait, event)
}

func (f *API) EnqueueWriteImage(queue, image clapi.Handle, blocking bool, origin, region [3]int, rowPitch, slicePitch int,
	ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.imageTransfer("clEnqueueWriteImage", queue, image, clapi.CL_COMMAND_WRITE_IMAGE, blocking, false,
		origin, region, rowPitch, slicePitch, ptr, wait, event)
}

func (f *API) EnqueueCopyImage(queue, src, dst clapi.Handle, srcOrigin, dstOrigin, region [3]int, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueCopyImage"
	srcImg, st := f.image(src)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	dstImg, st := f.image(dst)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	if srcImg.imageFormat != dstImg.imageFormat {
		f.call(name)
		return clapi.CL_IMAGE_FORMAT_MISMATCH
	}
	srcOff, srcRegion, srcRow, srcSlice, okSrc := imageRegion(srcImg, srcOrigin, region)
	dstOff, _, dstRow, dstSlice, okDst := imageRegion(dstImg, dstOrigin, region)
	if !okSrc || !okDst {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	return f.enqueue(name, queue, clapi.CL_COMMAND_COPY_IMAGE, false, wait, event, func() clapi.Status {
		copyRegion(dstImg.data, dstOff, dstRow, dstSlice, srcImg.data, srcOff, srcRow, srcSlice, srcRegion)
		return clapi.CL_SUCCESS
	})
}

// EnqueueFillImage fills the region with the first pixelSize bytes of color: the fake doesn't convert colors.
func (f *API) EnqueueFillImage(queue, image clapi.Handle, color [16]byte, origin, region [3]int, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueFillImage"
	img, st := f.image(image)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	byteOrigin, byteRegion, row, slice, ok := imageRegion(img, origin, region)
	if !ok {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	pixel := color[:img.pixelSize]
	return f.enqueue(name, queue, clapi.CL_COMMAND_FILL_IMAGE, false, wait, event, func() clapi.Status {
		line := make([]byte, byteRegion[0])
		fill(line, pixel)
		for z := range byteRegion[2] {
			for y := range byteRegion[1] {
				start := (byteOrigin[2]+z)*slice + (byteOrigin[1]+y)*row + byteOrigin[0]
				copy(img.data[start:start+len(line)], line)
			}
		}
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueCopyImageToBuffer(queue, src, dst clapi.Handle, srcOrigin, region [3]int, dstOffset int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueCopyImageToBuffer"
	img, st := f.image(src)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	byteOrigin, byteRegion, row, slice, ok := imageRegion(img, srcOrigin, region)
	if !ok {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	size := byteRegion[0] * byteRegion[1] * byteRegion[2]
	b, st := f.buffer(dst, dstOffset, size)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	return f.enqueue(name, queue, clapi.CL_COMMAND_COPY_IMAGE_TO_BUFFER, false, wait, event, func() clapi.Status {
		copyRegion(b.data[dstOffset:], [3]int{}, byteRegion[0], byteRegion[0]*byteRegion[1],
			img.data, byteOrigin, row, slice, byteRegion)
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueCopyBufferToImage(queue, src, dst clapi.Handle, srcOffset int, dstOrigin, region [3]int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueCopyBufferToImage"
	img, st := f.image(dst)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	byteOrigin, byteRegion, row, slice, ok := imageRegion(img, dstOrigin, region)
	if !ok {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	size := byteRegion[0] * byteRegion[1] * byteRegion[2]
	b, st := f.buffer(src, srcOffset, size)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	return f.enqueue(name, queue, clapi.CL_COMMAND_COPY_BUFFER_TO_IMAGE, false, wait, event, func() clapi.Status {
		copyRegion(img.data, byteOrigin, row, slice,
			b.data[srcOffset:], [3]int{}, byteRegion[0], byteRegion[0]*byteRegion[1], byteRegion)
		return clapi.CL_SUCCESS
	})
}

// EnqueueMapBuffer maps the buffer storage itself: the returned pointer stays valid while the buffer is alive.
func (f *API) EnqueueMapBuffer(queue, buffer clapi.Handle, blocking bool, flags clapi.MapFlags, offset, size int,
	wait []clapi.Handle, event *clapi.Handle) (unsafe.Pointer, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueMapBuffer"
	b, st := f.buffer(buffer, offset, size)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return nil, st
	}
	st = f.enqueue(name, queue, clapi.CL_COMMAND_MAP_BUFFER, blocking, wait, event, nil)
	if st != clapi.CL_SUCCESS {
		return nil, st
	}
	return unsafe.Pointer(&b.data[offset]), clapi.CL_SUCCESS
}

func (f *API) EnqueueMapImage(queue, image clapi.Handle, blocking bool, flags clapi.MapFlags, origin, region [3]int,
	wait []clapi.Handle, event *clapi.Handle) (unsafe.Pointer, int, int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueMapImage"
	img, st := f.image(image)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return nil, 0, 0, st
	}
	byteOrigin, _, row, slice, ok := imageRegion(img, origin, region)
	if !ok {
		f.call(name)
		return nil, 0, 0, clapi.CL_INVALID_VALUE
	}
	st = f.enqueue(name, queue, clapi.CL_COMMAND_MAP_IMAGE, blocking, wait, event, nil)
	if st != clapi.CL_SUCCESS {
		return nil, 0, 0, st
	}
	start := byteOrigin[2]*slice + byteOrigin[1]*row + byteOrigin[0]
	if img.imageDesc.Height == 0 && img.imageDesc.Depth == 0 {
		slice = 0
	}
	return unsafe.Pointer(&img.data[start]), row, slice, clapi.CL_SUCCESS
}

func (f *API) EnqueueUnmapMemObject(queue, mem clapi.Handle, ptr unsafe.Pointer, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueUnmapMemObject"
	m, st := f.lookup(clapi.ClassMem, mem)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	start := uintptr(unsafe.Pointer(unsafe.SliceData(m.data)))
	if p := uintptr(ptr); p < start || p >= start+uintptr(len(m.data)) {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	return f.enqueue(name, queue, clapi.CL_COMMAND_UNMAP_MEM_OBJECT, false, wait, event, nil)
}

func (f *API) EnqueueMigrateMemObjects(queue clapi.Handle, mems []clapi.Handle, flags clapi.MigrationFlags,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueMigrateMemObjects"
	if len(mems) == 0 {
		f.call(name)
		return clapi.CL_INVALID_VALUE
	}
	for _, h := range mems {
		if _, st := f.lookup(clapi.ClassMem, h); st != clapi.CL_SUCCESS {
			f.call(name)
			return st
		}
	}
	return f.enqueue(name, queue, clapi.CL_COMMAND_MIGRATE_MEM_OBJECTS, false, wait, event, nil)
}
