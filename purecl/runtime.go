//go:build linux || darwin

// Package purecl implements clapi.API over the system's OpenCL library (libOpenCL, usually the ICD loader),
// loaded with purego: no cgo is required.
//
// The required entry points are bound when the library is opened, and opening fails if any is missing.
// Optional entry points are resolved per platform by GetProcAddress and called through purego.SyscallN.
package purecl

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Runtime is a loaded OpenCL library. It implements clapi.API.
type Runtime struct {
	name, path string
	lib        uintptr

	// Platform versions, used to gate the optional entry points. Protected by muVersions.
	muVersions sync.Mutex
	versions   map[clapi.Handle]platformVersion

	getPlatformIDs        func(num uint32, platforms unsafe.Pointer, numPlatforms *uint32) int32
	getDeviceIDs          func(platform uintptr, deviceType uint64, num uint32, devices unsafe.Pointer, numDevices *uint32) int32
	createSubDevices      func(device uintptr, properties unsafe.Pointer, num uint32, out unsafe.Pointer, numRet *uint32) int32
	getInfo               map[clapi.Class]func(h uintptr, param uint32, size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32
	getProgramBuildInfo   func(program, device uintptr, param uint32, size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32
	getImageInfo          func(image uintptr, param uint32, size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32
	getEventProfilingInfo func(event uintptr, param uint32, size uintptr, value unsafe.Pointer, sizeRet *uintptr) int32
	retain, release       map[clapi.Class]func(h uintptr) int32

	createContext                   func(properties unsafe.Pointer, numDevices uint32, devices unsafe.Pointer, notify, userData uintptr, errCode *int32) uintptr
	createCommandQueue              func(context, device uintptr, properties uint64, errCode *int32) uintptr
	createBuffer                    func(context uintptr, flags uint64, size uintptr, host unsafe.Pointer, errCode *int32) uintptr
	createSubBuffer                 func(buffer uintptr, flags uint64, createType uint32, info unsafe.Pointer, errCode *int32) uintptr
	createImage                     func(context uintptr, flags uint64, format, desc, host unsafe.Pointer, errCode *int32) uintptr
	createSampler                   func(context uintptr, normalized, addressing, filter uint32, errCode *int32) uintptr
	createProgramWithSource         func(context uintptr, count uint32, sources, lengths unsafe.Pointer, errCode *int32) uintptr
	createProgramWithBinary         func(context uintptr, numDevices uint32, devices, lengths, binaries, status unsafe.Pointer, errCode *int32) uintptr
	createProgramWithBuiltInKernels func(context uintptr, numDevices uint32, devices unsafe.Pointer, names string, errCode *int32) uintptr
	buildProgram                    func(program uintptr, numDevices uint32, devices unsafe.Pointer, options string, notify, userData uintptr) int32
	compileProgram                  func(program uintptr, numDevices uint32, devices unsafe.Pointer, options string, numHeaders uint32, headers, headerNames unsafe.Pointer, notify, userData uintptr) int32
	linkProgram                     func(context uintptr, numDevices uint32, devices unsafe.Pointer, options string, numPrograms uint32, programs unsafe.Pointer, notify, userData uintptr, errCode *int32) uintptr
	unloadPlatformCompiler          func(platform uintptr) int32
	createKernel                    func(program uintptr, name string, errCode *int32) uintptr
	createKernelsInProgram          func(program uintptr, num uint32, kernels unsafe.Pointer, numRet *uint32) int32
	setKernelArg                    func(kernel uintptr, index uint32, size uintptr, value unsafe.Pointer) int32
	createUserEvent                 func(context uintptr, errCode *int32) uintptr
	setUserEventStatus              func(event uintptr, status int32) int32
	waitForEvents                   func(num uint32, events unsafe.Pointer) int32
	setEventCallback                func(event uintptr, execType int32, fn, userData uintptr) int32
	setMemDestructor                func(mem uintptr, fn, userData uintptr) int32

	flush, finish        func(queue uintptr) int32
	readBuffer           func(queue, buffer uintptr, blocking uint32, offset, size uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	writeBuffer          func(queue, buffer uintptr, blocking uint32, offset, size uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	copyBuffer           func(queue, src, dst uintptr, srcOffset, dstOffset, size uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	fillBuffer           func(queue, buffer uintptr, pattern unsafe.Pointer, patternSize, offset, size uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	readBufferRect       func(queue, buffer uintptr, blocking uint32, bufferOrigin, hostOrigin, region *[3]uintptr, bufferRowPitch, bufferSlicePitch, hostRowPitch, hostSlicePitch uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	writeBufferRect      func(queue, buffer uintptr, blocking uint32, bufferOrigin, hostOrigin, region *[3]uintptr, bufferRowPitch, bufferSlicePitch, hostRowPitch, hostSlicePitch uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	copyBufferRect       func(queue, src, dst uintptr, srcOrigin, dstOrigin, region *[3]uintptr, srcRowPitch, srcSlicePitch, dstRowPitch, dstSlicePitch uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	readImage            func(queue, image uintptr, blocking uint32, origin, region *[3]uintptr, rowPitch, slicePitch uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	writeImage           func(queue, image uintptr, blocking uint32, origin, region *[3]uintptr, rowPitch, slicePitch uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	copyImage            func(queue, src, dst uintptr, srcOrigin, dstOrigin, region *[3]uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	fillImage            func(queue, image uintptr, color unsafe.Pointer, origin, region *[3]uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	copyImageToBuffer    func(queue, src, dst uintptr, srcOrigin, region *[3]uintptr, dstOffset uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	copyBufferToImage    func(queue, src, dst uintptr, srcOffset uintptr, dstOrigin, region *[3]uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	mapBuffer            func(queue, buffer uintptr, blocking uint32, flags uint64, offset, size uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr, errCode *int32) unsafe.Pointer
	mapImage             func(queue, image uintptr, blocking uint32, flags uint64, origin, region *[3]uintptr, rowPitch, slicePitch *uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr, errCode *int32) unsafe.Pointer
	unmapMemObject       func(queue, mem uintptr, ptr unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	migrateMemObjects    func(queue uintptr, numMems uint32, mems unsafe.Pointer, flags uint64, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	ndRangeKernel        func(queue, kernel uintptr, dims uint32, offset, global, local unsafe.Pointer, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	markerWithWaitList   func(queue uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	barrierWithWaitList  func(queue uintptr, numWait uint32, wait unsafe.Pointer, event *uintptr) int32
	getExtensionFunction func(platform uintptr, name string) uintptr
}

var _ clapi.API = (*Runtime)(nil)

// Open loads the OpenCL library with the given name (e.g. "OpenCL") or absolute path, and binds its required
// entry points. See SearchPaths for where it is searched.
func Open(name string) (*Runtime, error) {
	lib, libPath, err := dlopen(name)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{name: name, path: libPath, lib: lib, versions: make(map[clapi.Handle]platformVersion)}
	if err := rt.bindRequired(); err != nil {
		_ = purego.Dlclose(lib)
		return nil, errors.WithMessagef(err, "OpenCL library %q (%s) is missing required entry points", name, libPath)
	}
	return rt, nil
}

// Name of the library, as given to Open.
func (rt *Runtime) Name() string { return rt.name }

// Path of the loaded library.
func (rt *Runtime) Path() string { return rt.path }

// bindFn binds the function pointer fptr to the symbol name, or returns an error if the library doesn't export it.
func (rt *Runtime) bindFn(fptr any, name string) error {
	sym, err := purego.Dlsym(rt.lib, name)
	if err != nil || sym == 0 {
		return errors.Errorf("symbol %s not found: %v", name, err)
	}
	purego.RegisterFunc(fptr, sym)
	return nil
}

func (rt *Runtime) bindRequired() error {
	rt.getInfo = make(map[clapi.Class]func(uintptr, uint32, uintptr, unsafe.Pointer, *uintptr) int32)
	rt.retain = make(map[clapi.Class]func(uintptr) int32)
	rt.release = make(map[clapi.Class]func(uintptr) int32)
	for _, class := range []clapi.Class{clapi.ClassPlatform, clapi.ClassDevice, clapi.ClassContext, clapi.ClassCommandQueue,
		clapi.ClassMem, clapi.ClassSampler, clapi.ClassProgram, clapi.ClassKernel, clapi.ClassEvent} {
		var getInfo func(uintptr, uint32, uintptr, unsafe.Pointer, *uintptr) int32
		if err := rt.bindFn(&getInfo, "clGet"+class.String()+"Info"); err != nil {
			return err
		}
		rt.getInfo[class] = getInfo
		if class == clapi.ClassPlatform {
			continue
		}
		var retain, release func(uintptr) int32
		if err := rt.bindFn(&retain, "clRetain"+class.String()); err != nil {
			return err
		}
		if err := rt.bindFn(&release, "clRelease"+class.String()); err != nil {
			return err
		}
		rt.retain[class], rt.release[class] = retain, release
	}

	for _, binding := range []struct {
		fptr any
		name string
	}{
		{&rt.getPlatformIDs, "clGetPlatformIDs"},
		{&rt.getDeviceIDs, "clGetDeviceIDs"},
		{&rt.createSubDevices, "clCreateSubDevices"},
		{&rt.getProgramBuildInfo, "clGetProgramBuildInfo"},
		{&rt.getImageInfo, "clGetImageInfo"},
		{&rt.getEventProfilingInfo, "clGetEventProfilingInfo"},
		{&rt.createContext, "clCreateContext"},
		{&rt.createCommandQueue, "clCreateCommandQueue"},
		{&rt.createBuffer, "clCreateBuffer"},
		{&rt.createSubBuffer, "clCreateSubBuffer"},
		{&rt.createImage, "clCreateImage"},
		{&rt.createSampler, "clCreateSampler"},
		{&rt.createProgramWithSource, "clCreateProgramWithSource"},
		{&rt.createProgramWithBinary, "clCreateProgramWithBinary"},
		{&rt.createProgramWithBuiltInKernels, "clCreateProgramWithBuiltInKernels"},
		{&rt.buildProgram, "clBuildProgram"},
		{&rt.compileProgram, "clCompileProgram"},
		{&rt.linkProgram, "clLinkProgram"},
		{&rt.unloadPlatformCompiler, "clUnloadPlatformCompiler"},
		{&rt.createKernel, "clCreateKernel"},
		{&rt.createKernelsInProgram, "clCreateKernelsInProgram"},
		{&rt.setKernelArg, "clSetKernelArg"},
		{&rt.createUserEvent, "clCreateUserEvent"},
		{&rt.setUserEventStatus, "clSetUserEventStatus"},
		{&rt.waitForEvents, "clWaitForEvents"},
		{&rt.setEventCallback, "clSetEventCallback"},
		{&rt.setMemDestructor, "clSetMemObjectDestructorCallback"},
		{&rt.flush, "clFlush"},
		{&rt.finish, "clFinish"},
		{&rt.readBuffer, "clEnqueueReadBuffer"},
		{&rt.writeBuffer, "clEnqueueWriteBuffer"},
		{&rt.copyBuffer, "clEnqueueCopyBuffer"},
		{&rt.fillBuffer, "clEnqueueFillBuffer"},
		{&rt.readBufferRect, "clEnqueueReadBufferRect"},
		{&rt.writeBufferRect, "clEnqueueWriteBufferRect"},
		{&rt.copyBufferRect, "clEnqueueCopyBufferRect"},
		{&rt.readImage, "clEnqueueReadImage"},
		{&rt.writeImage, "clEnqueueWriteImage"},
		{&rt.copyImage, "clEnqueueCopyImage"},
		{&rt.fillImage, "clEnqueueFillImage"},
		{&rt.copyImageToBuffer, "clEnqueueCopyImageToBuffer"},
		{&rt.copyBufferToImage, "clEnqueueCopyBufferToImage"},
		{&rt.mapBuffer, "clEnqueueMapBuffer"},
		{&rt.mapImage, "clEnqueueMapImage"},
		{&rt.unmapMemObject, "clEnqueueUnmapMemObject"},
		{&rt.migrateMemObjects, "clEnqueueMigrateMemObjects"},
		{&rt.ndRangeKernel, "clEnqueueNDRangeKernel"},
		{&rt.markerWithWaitList, "clEnqueueMarkerWithWaitList"},
		{&rt.barrierWithWaitList, "clEnqueueBarrierWithWaitList"},
		{&rt.getExtensionFunction, "clGetExtensionFunctionAddressForPlatform"},
	} {
		if err := rt.bindFn(binding.fptr, binding.name); err != nil {
			return err
		}
	}
	return nil
}

// Helpers to convert arguments to their C layout.

func handlesPtr(handles []clapi.Handle) (uint32, unsafe.Pointer) {
	if len(handles) == 0 {
		return 0, nil
	}
	return uint32(len(handles)), unsafe.Pointer(&handles[0])
}

func clBool(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func sizeTriple(xs [3]int) *[3]uintptr {
	return &[3]uintptr{uintptr(xs[0]), uintptr(xs[1]), uintptr(xs[2])}
}

func sizeList(xs []int) unsafe.Pointer {
	if len(xs) == 0 {
		return nil
	}
	sizes := make([]uintptr, len(xs))
	for ii, x := range xs {
		sizes[ii] = uintptr(x)
	}
	return unsafe.Pointer(&sizes[0])
}

func cBytes(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Pointer(&data[0])
}

// cString returns a NUL terminated copy of s.
func cString(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf
}
