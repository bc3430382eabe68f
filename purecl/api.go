//go:build linux || darwin

package purecl

import (
	"runtime"
	"unsafe"

	"github.com/gomlx/gocl/clapi"
)

// Implementation of the required entry points of clapi.API.

// enumerate runs the two-call protocol for the entry points returning lists of handles.
func enumerate(out []clapi.Handle, call func(num uint32, ptr unsafe.Pointer, numRet *uint32) int32) (int, clapi.Status) {
	var numRet uint32
	num, ptr := handlesPtr(out)
	st := clapi.Status(call(num, ptr, &numRet))
	return int(numRet), st
}

func (rt *Runtime) GetPlatformIDs(out []clapi.Handle) (int, clapi.Status) {
	return enumerate(out, rt.getPlatformIDs)
}

func (rt *Runtime) GetDeviceIDs(platform clapi.Handle, deviceType clapi.DeviceType, out []clapi.Handle) (int, clapi.Status) {
	return enumerate(out, func(num uint32, ptr unsafe.Pointer, numRet *uint32) int32 {
		return rt.getDeviceIDs(uintptr(platform), uint64(deviceType), num, ptr, numRet)
	})
}

func (rt *Runtime) CreateSubDevices(device clapi.Handle, properties []int64, out []clapi.Handle) (int, clapi.Status) {
	n, st := enumerate(out, func(num uint32, ptr unsafe.Pointer, numRet *uint32) int32 {
		return rt.createSubDevices(uintptr(device), unsafe.Pointer(&properties[0]), num, ptr, numRet)
	})
	runtime.KeepAlive(properties)
	return n, st
}

// infoCall runs the "get info" calls, with the two-call protocol.
func infoCall(out []byte, call func(size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32) (int, clapi.Status) {
	var sizeRet uintptr
	st := clapi.Status(call(uintptr(len(out)), cBytes(out), &sizeRet))
	return int(sizeRet), st
}

func (rt *Runtime) GetInfo(class clapi.Class, h clapi.Handle, param uint32, out []byte) (int, clapi.Status) {
	getInfo, found := rt.getInfo[class]
	if !found {
		return 0, clapi.CL_INVALID_VALUE
	}
	return infoCall(out, func(size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32 {
		return getInfo(uintptr(h), param, size, value, sizeRet)
	})
}

func (rt *Runtime) GetProgramBuildInfo(program, device clapi.Handle, param uint32, out []byte) (int, clapi.Status) {
	return infoCall(out, func(size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32 {
		return rt.getProgramBuildInfo(uintptr(program), uintptr(device), param, size, value, sizeRet)
	})
}

func (rt *Runtime) GetImageInfo(image clapi.Handle, param uint32, out []byte) (int, clapi.Status) {
	return infoCall(out, func(size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32 {
		return rt.getImageInfo(uintptr(image), param, size, value, sizeRet)
	})
}

func (rt *Runtime) GetEventProfilingInfo(event clapi.Handle, param uint32) (uint64, clapi.Status) {
	var value uint64
	st := rt.getEventProfilingInfo(uintptr(event), param, unsafe.Sizeof(value), unsafe.Pointer(&value), nil)
	return value, clapi.Status(st)
}

func (rt *Runtime) Retain(class clapi.Class, h clapi.Handle) clapi.Status {
	retain, found := rt.retain[class]
	if !found {
		return clapi.CL_SUCCESS
	}
	return clapi.Status(retain(uintptr(h)))
}

func (rt *Runtime) Release(class clapi.Class, h clapi.Handle) clapi.Status {
	release, found := rt.release[class]
	if !found {
		return clapi.CL_SUCCESS
	}
	return clapi.Status(release(uintptr(h)))
}

// created converts the results of the create entry points.
func created(h uintptr, errCode int32) (clapi.Handle, clapi.Status) {
	return clapi.Handle(h), clapi.Status(errCode)
}

func (rt *Runtime) CreateContext(properties []int64, devices []clapi.Handle) (clapi.Handle, clapi.Status) {
	var errCode int32
	var props unsafe.Pointer
	if len(properties) > 0 {
		props = unsafe.Pointer(&properties[0])
	}
	num, ptr := handlesPtr(devices)
	h := rt.createContext(props, num, ptr, 0, 0, &errCode)
	runtime.KeepAlive(properties)
	runtime.KeepAlive(devices)
	return created(h, errCode)
}

func (rt *Runtime) CreateCommandQueue(context, device clapi.Handle, properties uint64) (clapi.Handle, clapi.Status) {
	var errCode int32
	return created(rt.createCommandQueue(uintptr(context), uintptr(device), properties, &errCode), errCode)
}

func (rt *Runtime) CreateBuffer(context clapi.Handle, flags clapi.MemFlags, size int, host unsafe.Pointer) (clapi.Handle, clapi.Status) {
	var errCode int32
	return created(rt.createBuffer(uintptr(context), uint64(flags), uintptr(size), host, &errCode), errCode)
}

func (rt *Runtime) CreateSubBuffer(buffer clapi.Handle, flags clapi.MemFlags, origin, size int) (clapi.Handle, clapi.Status) {
	var errCode int32
	region := [2]uintptr{uintptr(origin), uintptr(size)}
	h := rt.createSubBuffer(uintptr(buffer), uint64(flags), clapi.CL_BUFFER_CREATE_TYPE_REGION, unsafe.Pointer(&region), &errCode)
	return created(h, errCode)
}

// cImageFormat and cImageDesc have the layout of cl_image_format and cl_image_desc.
type cImageFormat struct {
	channelOrder, channelType uint32
}

type cImageDesc struct {
	imageType                       uint32
	width, height, depth, arraySize uintptr
	rowPitch, slicePitch            uintptr
	numMipLevels, numSamples        uint32
	buffer                          uintptr
}

func (rt *Runtime) CreateImage(context clapi.Handle, flags clapi.MemFlags, format clapi.ImageFormat, desc clapi.ImageDesc,
	host unsafe.Pointer) (clapi.Handle, clapi.Status) {
	var errCode int32
	cFormat := cImageFormat{channelOrder: format.ChannelOrder, channelType: format.ChannelType}
	cDesc := cImageDesc{
		imageType:    desc.Type,
		width:        uintptr(desc.Width),
		height:       uintptr(desc.Height),
		depth:        uintptr(desc.Depth),
		arraySize:    uintptr(desc.ArraySize),
		rowPitch:     uintptr(desc.RowPitch),
		slicePitch:   uintptr(desc.SlicePitch),
		numMipLevels: desc.NumMipLevels,
		numSamples:   desc.NumSamples,
		buffer:       uintptr(desc.Buffer),
	}
	h := rt.createImage(uintptr(context), uint64(flags), unsafe.Pointer(&cFormat), unsafe.Pointer(&cDesc), host, &errCode)
	return created(h, errCode)
}

func (rt *Runtime) CreateSampler(context clapi.Handle, normalized bool, addressing, filter uint32) (clapi.Handle, clapi.Status) {
	var errCode int32
	return created(rt.createSampler(uintptr(context), clBool(normalized), addressing, filter, &errCode), errCode)
}

func (rt *Runtime) CreateProgramWithSource(context clapi.Handle, source string) (clapi.Handle, clapi.Status) {
	var errCode int32
	src := cString(source)
	srcPtr := unsafe.Pointer(&src[0])
	length := uintptr(len(source))
	h := rt.createProgramWithSource(uintptr(context), 1, unsafe.Pointer(&srcPtr), unsafe.Pointer(&length), &errCode)
	runtime.KeepAlive(src)
	return created(h, errCode)
}

func (rt *Runtime) CreateProgramWithBinary(context clapi.Handle, devices []clapi.Handle, binaries [][]byte) (clapi.Handle, clapi.Status) {
	var errCode int32
	lengths := make([]uintptr, len(binaries))
	pointers := make([]unsafe.Pointer, len(binaries))
	for ii, binary := range binaries {
		lengths[ii] = uintptr(len(binary))
		pointers[ii] = cBytes(binary)
	}
	num, ptr := handlesPtr(devices)
	h := rt.createProgramWithBinary(uintptr(context), num, ptr, unsafe.Pointer(&lengths[0]), unsafe.Pointer(&pointers[0]), nil, &errCode)
	runtime.KeepAlive(binaries)
	runtime.KeepAlive(devices)
	return created(h, errCode)
}

func (rt *Runtime) BuildProgram(program clapi.Handle, devices []clapi.Handle, options string) clapi.Status {
	num, ptr := handlesPtr(devices)
	st := rt.buildProgram(uintptr(program), num, ptr, options, 0, 0)
	runtime.KeepAlive(devices)
	return clapi.Status(st)
}

func (rt *Runtime) CreateProgramWithBuiltInKernels(context clapi.Handle, devices []clapi.Handle, kernelNames string) (clapi.Handle, clapi.Status) {
	var errCode int32
	num, ptr := handlesPtr(devices)
	h := rt.createProgramWithBuiltInKernels(uintptr(context), num, ptr, kernelNames, &errCode)
	runtime.KeepAlive(devices)
	return created(h, errCode)
}

func (rt *Runtime) CompileProgram(program clapi.Handle, devices []clapi.Handle, options string, headers []clapi.Handle,
	headerNames []string) clapi.Status {
	var a args
	defer a.done()
	num, ptr := handlesPtr(devices)
	numHeaders, headersPtr := handlesPtr(headers)
	var namesPtr unsafe.Pointer
	if len(headerNames) > 0 {
		names := make([]unsafe.Pointer, len(headerNames))
		for ii, name := range headerNames {
			buf := cString(name)
			a.ptr(unsafe.Pointer(&buf[0]))
			names[ii] = unsafe.Pointer(&buf[0])
		}
		namesPtr = unsafe.Pointer(&names[0])
		a.ptr(namesPtr)
	}
	st := rt.compileProgram(uintptr(program), num, ptr, options, numHeaders, headersPtr, namesPtr, 0, 0)
	runtime.KeepAlive(devices)
	runtime.KeepAlive(headers)
	return clapi.Status(st)
}

func (rt *Runtime) LinkProgram(context clapi.Handle, devices []clapi.Handle, options string, programs []clapi.Handle) (clapi.Handle, clapi.Status) {
	var errCode int32
	num, ptr := handlesPtr(devices)
	numPrograms, programsPtr := handlesPtr(programs)
	h := rt.linkProgram(uintptr(context), num, ptr, options, numPrograms, programsPtr, 0, 0, &errCode)
	runtime.KeepAlive(devices)
	runtime.KeepAlive(programs)
	return created(h, errCode)
}

func (rt *Runtime) UnloadPlatformCompiler(platform clapi.Handle) clapi.Status {
	return clapi.Status(rt.unloadPlatformCompiler(uintptr(platform)))
}

func (rt *Runtime) CreateKernel(program clapi.Handle, name string) (clapi.Handle, clapi.Status) {
	var errCode int32
	return created(rt.createKernel(uintptr(program), name, &errCode), errCode)
}

func (rt *Runtime) CreateKernelsInProgram(program clapi.Handle, out []clapi.Handle) (int, clapi.Status) {
	return enumerate(out, func(num uint32, ptr unsafe.Pointer, numRet *uint32) int32 {
		return rt.createKernelsInProgram(uintptr(program), num, ptr, numRet)
	})
}

func (rt *Runtime) SetKernelArg(kernel clapi.Handle, index uint32, size int, value unsafe.Pointer) clapi.Status {
	return clapi.Status(rt.setKernelArg(uintptr(kernel), index, uintptr(size), value))
}

func (rt *Runtime) CreateUserEvent(context clapi.Handle) (clapi.Handle, clapi.Status) {
	var errCode int32
	return created(rt.createUserEvent(uintptr(context), &errCode), errCode)
}

func (rt *Runtime) SetUserEventStatus(event clapi.Handle, status int32) clapi.Status {
	return clapi.Status(rt.setUserEventStatus(uintptr(event), status))
}

func (rt *Runtime) WaitForEvents(events []clapi.Handle) clapi.Status {
	num, ptr := handlesPtr(events)
	st := rt.waitForEvents(num, ptr)
	runtime.KeepAlive(events)
	return clapi.Status(st)
}

func (rt *Runtime) Flush(queue clapi.Handle) clapi.Status {
	return clapi.Status(rt.flush(uintptr(queue)))
}

func (rt *Runtime) Finish(queue clapi.Handle) clapi.Status {
	return clapi.Status(rt.finish(uintptr(queue)))
}

// enqueued runs an enqueue call with the wait list and output event converted to their C layout.
func enqueued(wait []clapi.Handle, event *clapi.Handle, call func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32) clapi.Status {
	numWait, waitPtr := handlesPtr(wait)
	st := call(numWait, waitPtr, (*uintptr)(unsafe.Pointer(event)))
	runtime.KeepAlive(wait)
	return clapi.Status(st)
}

func (rt *Runtime) EnqueueReadBuffer(queue, buffer clapi.Handle, blocking bool, offset, size int, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.readBuffer(uintptr(queue), uintptr(buffer), clBool(blocking), uintptr(offset), uintptr(size), ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueWriteBuffer(queue, buffer clapi.Handle, blocking bool, offset, size int, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.writeBuffer(uintptr(queue), uintptr(buffer), clBool(blocking), uintptr(offset), uintptr(size), ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueCopyBuffer(queue, src, dst clapi.Handle, srcOffset, dstOffset, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.copyBuffer(uintptr(queue), uintptr(src), uintptr(dst), uintptr(srcOffset), uintptr(dstOffset), uintptr(size),
			numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueFillBuffer(queue, buffer clapi.Handle, pattern []byte, offset, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	st := enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.fillBuffer(uintptr(queue), uintptr(buffer), cBytes(pattern), uintptr(len(pattern)), uintptr(offset), uintptr(size),
			numWait, waitPtr, eventPtr)
	})
	runtime.KeepAlive(pattern)
	return st
}

func (rt *Runtime) EnqueueReadBufferRect(queue, buffer clapi.Handle, blocking bool, rect clapi.BufferRect, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.readBufferRect(uintptr(queue), uintptr(buffer), clBool(blocking),
			sizeTriple(rect.BufferOrigin), sizeTriple(rect.HostOrigin), sizeTriple(rect.Region),
			uintptr(rect.BufferRowPitch), uintptr(rect.BufferSlicePitch), uintptr(rect.HostRowPitch), uintptr(rect.HostSlicePitch),
			ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueWriteBufferRect(queue, buffer clapi.Handle, blocking bool, rect clapi.BufferRect, ptr unsafe.Pointer,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.writeBufferRect(uintptr(queue), uintptr(buffer), clBool(blocking),
			sizeTriple(rect.BufferOrigin), sizeTriple(rect.HostOrigin), sizeTriple(rect.Region),
			uintptr(rect.BufferRowPitch), uintptr(rect.BufferSlicePitch), uintptr(rect.HostRowPitch), uintptr(rect.HostSlicePitch),
			ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueCopyBufferRect(queue, src, dst clapi.Handle, rect clapi.CopyRect, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.copyBufferRect(uintptr(queue), uintptr(src), uintptr(dst),
			sizeTriple(rect.SrcOrigin), sizeTriple(rect.DstOrigin), sizeTriple(rect.Region),
			uintptr(rect.SrcRowPitch), uintptr(rect.SrcSlicePitch), uintptr(rect.DstRowPitch), uintptr(rect.DstSlicePitch),
			numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueReadImage(queue, image clapi.Handle, blocking bool, origin, region [3]int, rowPitch, slicePitch int,
	ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.readImage(uintptr(queue), uintptr(image), clBool(blocking), sizeTriple(origin), sizeTriple(region),
			uintptr(rowPitch), uintptr(slicePitch), ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueWriteImage(queue, image clapi.Handle, blocking bool, origin, region [3]int, rowPitch, slicePitch int,
	ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.writeImage(uintptr(queue), uintptr(image), clBool(blocking), sizeTriple(origin), sizeTriple(region),
			uintptr(rowPitch), uintptr(slicePitch), ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueCopyImage(queue, src, dst clapi.Handle, srcOrigin, dstOrigin, region [3]int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.copyImage(uintptr(queue), uintptr(src), uintptr(dst), sizeTriple(srcOrigin), sizeTriple(dstOrigin), sizeTriple(region),
			numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueFillImage(queue, image clapi.Handle, color [16]byte, origin, region [3]int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.fillImage(uintptr(queue), uintptr(image), unsafe.Pointer(&color), sizeTriple(origin), sizeTriple(region),
			numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueCopyImageToBuffer(queue, src, dst clapi.Handle, srcOrigin, region [3]int, dstOffset int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.copyImageToBuffer(uintptr(queue), uintptr(src), uintptr(dst), sizeTriple(srcOrigin), sizeTriple(region),
			uintptr(dstOffset), numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueCopyBufferToImage(queue, src, dst clapi.Handle, srcOffset int, dstOrigin, region [3]int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.copyBufferToImage(uintptr(queue), uintptr(src), uintptr(dst), uintptr(srcOffset), sizeTriple(dstOrigin),
			sizeTriple(region), numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueMapBuffer(queue, buffer clapi.Handle, blocking bool, flags clapi.MapFlags, offset, size int,
	wait []clapi.Handle, event *clapi.Handle) (unsafe.Pointer, clapi.Status) {
	var errCode int32
	var ptr unsafe.Pointer
	enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		ptr = rt.mapBuffer(uintptr(queue), uintptr(buffer), clBool(blocking), uint64(flags), uintptr(offset), uintptr(size),
			numWait, waitPtr, eventPtr, &errCode)
		return errCode
	})
	return ptr, clapi.Status(errCode)
}

func (rt *Runtime) EnqueueMapImage(queue, image clapi.Handle, blocking bool, flags clapi.MapFlags, origin, region [3]int,
	wait []clapi.Handle, event *clapi.Handle) (ptr unsafe.Pointer, rowPitch, slicePitch int, st clapi.Status) {
	var errCode int32
	var cRowPitch, cSlicePitch uintptr
	enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		ptr = rt.mapImage(uintptr(queue), uintptr(image), clBool(blocking), uint64(flags), sizeTriple(origin), sizeTriple(region),
			&cRowPitch, &cSlicePitch, numWait, waitPtr, eventPtr, &errCode)
		return errCode
	})
	return ptr, int(cRowPitch), int(cSlicePitch), clapi.Status(errCode)
}

func (rt *Runtime) EnqueueUnmapMemObject(queue, mem clapi.Handle, ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.unmapMemObject(uintptr(queue), uintptr(mem), ptr, numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueMigrateMemObjects(queue clapi.Handle, mems []clapi.Handle, flags clapi.MigrationFlags,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	numMems, memsPtr := handlesPtr(mems)
	st := enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.migrateMemObjects(uintptr(queue), numMems, memsPtr, uint64(flags), numWait, waitPtr, eventPtr)
	})
	runtime.KeepAlive(mems)
	return st
}

func (rt *Runtime) EnqueueNDRangeKernel(queue, kernel clapi.Handle, offset, global, local []int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.ndRangeKernel(uintptr(queue), uintptr(kernel), uint32(len(global)), sizeList(offset), sizeList(global), sizeList(local),
			numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueMarkerWithWaitList(queue clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.markerWithWaitList(uintptr(queue), numWait, waitPtr, eventPtr)
	})
}

func (rt *Runtime) EnqueueBarrierWithWaitList(queue clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	return enqueued(wait, event, func(numWait uint32, waitPtr unsafe.Pointer, eventPtr *uintptr) int32 {
		return rt.barrierWithWaitList(uintptr(queue), numWait, waitPtr, eventPtr)
	})
}
