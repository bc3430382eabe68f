package clapi

import "unsafe"

// API is the table of native entry points used by the bindings.
//
// Methods mirror the C entry points closely, and they return the native Status instead of Go errors:
// translating statuses to errors is the job of package cl.
//
// Conventions:
//   - Enumerations and info queries preserve the native two-call protocol: called with a nil (or empty) out
//     slice they return the number of elements (or bytes) required; called with a non-empty out they fill it
//     and return the number of elements (or bytes) available.
//   - wait is the event wait list (nil for none); event, if not nil, receives the handle of the event generated
//     by the enqueued command.
//   - Methods taking a Proc as first argument are optional entry points: the Proc must have been obtained with
//     GetProcAddress for the platform owning the objects involved, and must be available.
type API interface {
	GetPlatformIDs(out []Handle) (int, Status)
	GetDeviceIDs(platform Handle, deviceType DeviceType, out []Handle) (int, Status)
	CreateSubDevices(device Handle, properties []int64, out []Handle) (int, Status)

	// GetInfo calls clGet<class>Info.
	GetInfo(class Class, h Handle, param uint32, out []byte) (int, Status)
	GetProgramBuildInfo(program, device Handle, param uint32, out []byte) (int, Status)
	GetImageInfo(image Handle, param uint32, out []byte) (int, Status)
	GetEventProfilingInfo(event Handle, param uint32) (uint64, Status)

	// Retain and Release call clRetain<class> and clRelease<class>. Platforms are not reference counted.
	Retain(class Class, h Handle) Status
	Release(class Class, h Handle) Status

	CreateContext(properties []int64, devices []Handle) (Handle, Status)
	CreateCommandQueue(context, device Handle, properties uint64) (Handle, Status)
	CreateBuffer(context Handle, flags MemFlags, size int, host unsafe.Pointer) (Handle, Status)
	CreateSubBuffer(buffer Handle, flags MemFlags, origin, size int) (Handle, Status)
	CreateImage(context Handle, flags MemFlags, format ImageFormat, desc ImageDesc, host unsafe.Pointer) (Handle, Status)
	CreateSampler(context Handle, normalized bool, addressing, filter uint32) (Handle, Status)
	CreateProgramWithSource(context Handle, source string) (Handle, Status)
	CreateProgramWithBinary(context Handle, devices []Handle, binaries [][]byte) (Handle, Status)
	CreateProgramWithBuiltInKernels(context Handle, devices []Handle, kernelNames string) (Handle, Status)
	BuildProgram(program Handle, devices []Handle, options string) Status
	// CompileProgram compiles without linking. headers and headerNames have the same length: each header program
	// source is used for the matching "#include" name.
	CompileProgram(program Handle, devices []Handle, options string, headers []Handle, headerNames []string) Status
	LinkProgram(context Handle, devices []Handle, options string, programs []Handle) (Handle, Status)
	UnloadPlatformCompiler(platform Handle) Status
	CreateKernel(program Handle, name string) (Handle, Status)
	CreateKernelsInProgram(program Handle, out []Handle) (int, Status)
	SetKernelArg(kernel Handle, index uint32, size int, value unsafe.Pointer) Status
	CreateUserEvent(context Handle) (Handle, Status)
	SetUserEventStatus(event Handle, status int32) Status
	WaitForEvents(events []Handle) Status
	SetEventCallback(event Handle, execType int32, fn EventCallback) Status
	SetMemObjectDestructorCallback(mem Handle, fn MemCallback) Status

	Flush(queue Handle) Status
	Finish(queue Handle) Status
	EnqueueReadBuffer(queue, buffer Handle, blocking bool, offset, size int, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueWriteBuffer(queue, buffer Handle, blocking bool, offset, size int, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueCopyBuffer(queue, src, dst Handle, srcOffset, dstOffset, size int, wait []Handle, event *Handle) Status
	EnqueueFillBuffer(queue, buffer Handle, pattern []byte, offset, size int, wait []Handle, event *Handle) Status
	EnqueueReadBufferRect(queue, buffer Handle, blocking bool, rect BufferRect, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueWriteBufferRect(queue, buffer Handle, blocking bool, rect BufferRect, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueCopyBufferRect(queue, src, dst Handle, rect CopyRect, wait []Handle, event *Handle) Status
	EnqueueReadImage(queue, image Handle, blocking bool, origin, region [3]int, rowPitch, slicePitch int, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueWriteImage(queue, image Handle, blocking bool, origin, region [3]int, rowPitch, slicePitch int, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueCopyImage(queue, src, dst Handle, srcOrigin, dstOrigin, region [3]int, wait []Handle, event *Handle) Status
	EnqueueFillImage(queue, image Handle, color [16]byte, origin, region [3]int, wait []Handle, event *Handle) Status
	EnqueueCopyImageToBuffer(queue, src, dst Handle, srcOrigin, region [3]int, dstOffset int, wait []Handle, event *Handle) Status
	EnqueueCopyBufferToImage(queue, src, dst Handle, srcOffset int, dstOrigin, region [3]int, wait []Handle, event *Handle) Status
	EnqueueMapBuffer(queue, buffer Handle, blocking bool, flags MapFlags, offset, size int, wait []Handle, event *Handle) (unsafe.Pointer, Status)
	EnqueueMapImage(queue, image Handle, blocking bool, flags MapFlags, origin, region [3]int, wait []Handle, event *Handle) (ptr unsafe.Pointer, rowPitch, slicePitch int, st Status)
	EnqueueUnmapMemObject(queue, mem Handle, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueMigrateMemObjects(queue Handle, mems []Handle, flags MigrationFlags, wait []Handle, event *Handle) Status
	EnqueueNDRangeKernel(queue, kernel Handle, offset, global, local []int, wait []Handle, event *Handle) Status
	EnqueueMarkerWithWaitList(queue Handle, wait []Handle, event *Handle) Status
	EnqueueBarrierWithWaitList(queue Handle, wait []Handle, event *Handle) Status

	// GetProcAddress resolves an optional entry point (see OptionalEntryPoints) for the given platform.
	// It returns 0 if it is not available.
	GetProcAddress(platform Handle, name string) Proc

	CreateCommandQueueWithProperties(proc Proc, context, device Handle, properties []uint64) (Handle, Status)
	CreatePipe(proc Proc, context Handle, flags MemFlags, packetSize, maxPackets uint32) (Handle, Status)
	CreateProgramWithIL(proc Proc, context Handle, il []byte) (Handle, Status)
	CloneKernel(proc Proc, kernel Handle) (Handle, Status)
	SetKernelArgSVMPointer(proc Proc, kernel Handle, index uint32, ptr unsafe.Pointer) Status
	SetDefaultDeviceCommandQueue(proc Proc, context, device, queue Handle) Status
	SetProgramSpecializationConstant(proc Proc, program Handle, specID uint32, value []byte) Status
	SVMAlloc(proc Proc, context Handle, flags MemFlags, size int, alignment uint32) unsafe.Pointer
	SVMFree(proc Proc, context Handle, ptr unsafe.Pointer)
	EnqueueSVMFree(proc Proc, queue Handle, ptrs []unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueSVMMemcpy(proc Proc, queue Handle, blocking bool, dst, src unsafe.Pointer, size int, wait []Handle, event *Handle) Status
	EnqueueSVMMemFill(proc Proc, queue Handle, ptr unsafe.Pointer, pattern []byte, size int, wait []Handle, event *Handle) Status
	EnqueueSVMMap(proc Proc, queue Handle, blocking bool, flags MapFlags, ptr unsafe.Pointer, size int, wait []Handle, event *Handle) Status
	EnqueueSVMUnmap(proc Proc, queue Handle, ptr unsafe.Pointer, wait []Handle, event *Handle) Status
	EnqueueSVMMigrateMem(proc Proc, queue Handle, ptrs []unsafe.Pointer, sizes []int, flags MigrationFlags, wait []Handle, event *Handle) Status
	CreateFromGLBuffer(proc Proc, context Handle, flags MemFlags, buffer uint32) (Handle, Status)
	CreateFromGLTexture(proc Proc, context Handle, flags MemFlags, target uint32, mipLevel int32, texture uint32) (Handle, Status)
	CreateFromGLRenderbuffer(proc Proc, context Handle, flags MemFlags, renderbuffer uint32) (Handle, Status)
	EnqueueAcquireGLObjects(proc Proc, queue Handle, mems []Handle, wait []Handle, event *Handle) Status
	EnqueueReleaseGLObjects(proc Proc, queue Handle, mems []Handle, wait []Handle, event *Handle) Status
}

// EntryPoint describes an optional entry point: either gated by the OpenCL version (MinVersion) or by an
// extension (Extension).
type EntryPoint struct {
	Name       string
	MinVersion string
	Extension  string
}

// OptionalEntryPoints lists the entry points that may be missing from a runtime, and that must be checked
// before use.
var OptionalEntryPoints = []EntryPoint{
	{Name: "clCreateCommandQueueWithProperties", MinVersion: "2.0"},
	{Name: "clCreatePipe", MinVersion: "2.0"},
	{Name: "clSVMAlloc", MinVersion: "2.0"},
	{Name: "clSVMFree", MinVersion: "2.0"},
	{Name: "clEnqueueSVMFree", MinVersion: "2.0"},
	{Name: "clEnqueueSVMMemcpy", MinVersion: "2.0"},
	{Name: "clEnqueueSVMMemFill", MinVersion: "2.0"},
	{Name: "clEnqueueSVMMap", MinVersion: "2.0"},
	{Name: "clEnqueueSVMUnmap", MinVersion: "2.0"},
	{Name: "clSetKernelArgSVMPointer", MinVersion: "2.0"},
	{Name: "clCloneKernel", MinVersion: "2.1"},
	{Name: "clCreateProgramWithIL", MinVersion: "2.1"},
	{Name: "clEnqueueSVMMigrateMem", MinVersion: "2.1"},
	{Name: "clSetDefaultDeviceCommandQueue", MinVersion: "2.1"},
	{Name: "clSetProgramSpecializationConstant", MinVersion: "2.2"},
	{Name: "clCreateFromGLBuffer", Extension: "cl_khr_gl_sharing"},
	{Name: "clCreateFromGLTexture", Extension: "cl_khr_gl_sharing"},
	{Name: "clCreateFromGLRenderbuffer", Extension: "cl_khr_gl_sharing"},
	{Name: "clEnqueueAcquireGLObjects", Extension: "cl_khr_gl_sharing"},
	{Name: "clEnqueueReleaseGLObjects", Extension: "cl_khr_gl_sharing"},
}
