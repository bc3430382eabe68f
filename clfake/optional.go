package clfake

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/gomlx/gocl/clapi"
)

// versionAtLeast returns whether the configured platform version is at least the given one.
func (f *API) versionAtLeast(version string) bool {
	var major, minor, wantMajor, wantMinor int
	if _, err := fmt.Sscanf(f.version, "%d.%d", &major, &minor); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(version, "%d.%d", &wantMajor, &wantMinor); err != nil {
		return false
	}
	return major > wantMajor || (major == wantMajor && minor >= wantMinor)
}

// GetProcAddress returns a fake address (the position of the entry point in clapi.OptionalEntryPoints, plus 1)
// for the entry points the configured version and extensions support.
func (f *API) GetProcAddress(platform clapi.Handle, name string) clapi.Proc {
	f.mu.Lock()
	defer f.unlock()
	f.call("clGetExtensionFunctionAddressForPlatform")
	if _, st := f.lookup(clapi.ClassPlatform, platform); st != clapi.CL_SUCCESS {
		return 0
	}
	idx := slices.IndexFunc(clapi.OptionalEntryPoints, func(ep clapi.EntryPoint) bool { return ep.Name == name })
	if idx < 0 || f.hidden[name] {
		return 0
	}
	ep := clapi.OptionalEntryPoints[idx]
	if ep.MinVersion != "" && !f.versionAtLeast(ep.MinVersion) {
		return 0
	}
	if ep.Extension != "" && !slices.Contains(f.extensions, ep.Extension) {
		return 0
	}
	return clapi.Proc(idx + 1)
}

// checkProc verifies the proc was resolved for the named entry point, and counts the call.
func (f *API) checkProc(proc clapi.Proc, name string) clapi.Status {
	f.call(name)
	idx := int(proc) - 1
	if idx < 0 || idx >= len(clapi.OptionalEntryPoints) || clapi.OptionalEntryPoints[idx].Name != name {
		return clapi.CL_INVALID_OPERATION
	}
	return clapi.CL_SUCCESS
}

func (f *API) CreateCommandQueueWithProperties(proc clapi.Proc, context, device clapi.Handle, properties []uint64) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCreateCommandQueueWithProperties"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	var queueProperties uint64
	for ii := 0; ii+1 < len(properties) && properties[ii] != 0; ii += 2 {
		if properties[ii] != uint64(clapi.CL_QUEUE_PROPERTIES) {
			return 0, clapi.CL_INVALID_VALUE
		}
		queueProperties = properties[ii+1]
	}
	return f.createQueue(context, device, queueProperties)
}

func (f *API) CreatePipe(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, packetSize, maxPackets uint32) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCreatePipe"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if packetSize == 0 || maxPackets == 0 {
		return 0, clapi.CL_INVALID_PIPE_SIZE
	}
	p := f.newObject(clapi.ClassMem)
	p.context = c
	p.memType = clapi.CL_MEM_OBJECT_PIPE
	p.flags = flags
	p.packetSize = packetSize
	p.maxPackets = maxPackets
	p.data = make([]byte, int(packetSize)*int(maxPackets))
	return p.handle, clapi.CL_SUCCESS
}

// CreateProgramWithIL takes the IL as source.
func (f *API) CreateProgramWithIL(proc clapi.Proc, context clapi.Handle, il []byte) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCreateProgramWithIL"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if len(il) == 0 {
		return 0, clapi.CL_INVALID_VALUE
	}
	p := f.newProgram(c, string(il))
	p.il = true
	return p.handle, clapi.CL_SUCCESS
}

func (f *API) CloneKernel(proc clapi.Proc, kernel clapi.Handle) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCloneKernel"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	k, st := f.lookup(clapi.ClassKernel, kernel)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	clone := f.newKernel(k.parent, kernelDef{name: k.kernelName, numArgs: k.numArgs})
	for idx, arg := range k.args {
		clone.args[idx] = arg
	}
	return clone.handle, clapi.CL_SUCCESS
}

// svmRegion returns the SVM region containing ptr, starting at ptr.
func (f *API) svmRegion(ptr unsafe.Pointer) []byte {
	p := uintptr(ptr)
	for start, region := range f.svm {
		if p >= start && p < start+uintptr(len(region)) {
			return region[p-start:]
		}
	}
	return nil
}

func (f *API) SetKernelArgSVMPointer(proc clapi.Proc, kernel clapi.Handle, index uint32, ptr unsafe.Pointer) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clSetKernelArgSVMPointer"); st != clapi.CL_SUCCESS {
		return st
	}
	k, st := f.lookup(clapi.ClassKernel, kernel)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if int(index) >= k.numArgs {
		return clapi.CL_INVALID_ARG_INDEX
	}
	region := f.svmRegion(ptr)
	if region == nil {
		return clapi.CL_INVALID_ARG_VALUE
	}
	k.args[int(index)] = KernelArg{Mem: region}
	return clapi.CL_SUCCESS
}

func (f *API) SetDefaultDeviceCommandQueue(proc clapi.Proc, context, device, queue clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clSetDefaultDeviceCommandQueue"); st != clapi.CL_SUCCESS {
		return st
	}
	q, st := f.lookup(clapi.ClassCommandQueue, queue)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if q.context.handle != context || q.device.handle != device {
		return clapi.CL_INVALID_COMMAND_QUEUE
	}
	q.device.defaultQueue = q
	return clapi.CL_SUCCESS
}

// SetProgramSpecializationConstant accepts any id: the values are only recorded, see SpecializationConstant.
func (f *API) SetProgramSpecializationConstant(proc clapi.Proc, program clapi.Handle, specID uint32, value []byte) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clSetProgramSpecializationConstant"); st != clapi.CL_SUCCESS {
		return st
	}
	p, st := f.lookup(clapi.ClassProgram, program)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if !p.il {
		return clapi.CL_INVALID_PROGRAM
	}
	if len(value) == 0 {
		return clapi.CL_INVALID_VALUE
	}
	if p.specConstants == nil {
		p.specConstants = make(map[uint32][]byte)
	}
	p.specConstants[specID] = append([]byte(nil), value...)
	return clapi.CL_SUCCESS
}

// SpecializationConstant returns the value set for the specialization constant of the program, or nil.
func (f *API) SpecializationConstant(program clapi.Handle, specID uint32) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, found := f.objects[program]; found {
		return p.specConstants[specID]
	}
	return nil
}

// SVMAlloc allocates the region in Go memory, kept alive until it is freed.
func (f *API) SVMAlloc(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, size int, alignment uint32) unsafe.Pointer {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clSVMAlloc"); st != clapi.CL_SUCCESS {
		return nil
	}
	if _, st := f.lookup(clapi.ClassContext, context); st != clapi.CL_SUCCESS || size <= 0 {
		return nil
	}
	align := max(int(alignment), 8)
	storage := make([]byte, size+align)
	start := uintptr(unsafe.Pointer(&storage[0]))
	skip := int((uintptr(align) - start%uintptr(align)) % uintptr(align))
	region := storage[skip : skip+size : skip+size]
	ptr := unsafe.Pointer(&region[0])
	f.svm[uintptr(ptr)] = region
	return ptr
}

func (f *API) SVMFree(proc clapi.Proc, context clapi.Handle, ptr unsafe.Pointer) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clSVMFree"); st != clapi.CL_SUCCESS {
		return
	}
	delete(f.svm, uintptr(ptr))
}

func (f *API) EnqueueSVMFree(proc clapi.Proc, queue clapi.Handle, ptrs []unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueSVMFree"
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if len(ptrs) == 0 {
		return clapi.CL_INVALID_VALUE
	}
	seen := make(map[unsafe.Pointer]bool, len(ptrs))
	for _, ptr := range ptrs {
		if seen[ptr] {
			// A double free for a real runtime.
			return clapi.CL_INVALID_VALUE
		}
		seen[ptr] = true
	}
	ptrs = slices.Clone(ptrs)
	return f.submit(queue, clapi.CL_COMMAND_SVM_FREE, false, wait, event, func() clapi.Status {
		for _, ptr := range ptrs {
			delete(f.svm, uintptr(ptr))
		}
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueSVMMemcpy(proc clapi.Proc, queue clapi.Handle, blocking bool, dst, src unsafe.Pointer, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueSVMMemcpy"
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if dst == nil || src == nil || size <= 0 {
		return clapi.CL_INVALID_VALUE
	}
	return f.submit(queue, clapi.CL_COMMAND_SVM_MEMCPY, blocking, wait, event, func() clapi.Status {
		copy(hostBytes(dst, size), hostBytes(src, size))
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueSVMMemFill(proc clapi.Proc, queue clapi.Handle, ptr unsafe.Pointer, pattern []byte, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueSVMMemFill"
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if ptr == nil || len(pattern) == 0 || size <= 0 || size%len(pattern) != 0 {
		return clapi.CL_INVALID_VALUE
	}
	pattern = slices.Clone(pattern)
	return f.submit(queue, clapi.CL_COMMAND_SVM_MEMFILL, false, wait, event, func() clapi.Status {
		fill(hostBytes(ptr, size), pattern)
		return clapi.CL_SUCCESS
	})
}

func (f *API) EnqueueSVMMap(proc clapi.Proc, queue clapi.Handle, blocking bool, flags clapi.MapFlags, ptr unsafe.Pointer, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueSVMMap"
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if len(f.svmRegion(ptr)) < size || size <= 0 {
		return clapi.CL_INVALID_VALUE
	}
	return f.submit(queue, clapi.CL_COMMAND_SVM_MAP, blocking, wait, event, nil)
}

func (f *API) EnqueueSVMUnmap(proc clapi.Proc, queue clapi.Handle, ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueSVMUnmap"
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if f.svmRegion(ptr) == nil {
		return clapi.CL_INVALID_VALUE
	}
	return f.submit(queue, clapi.CL_COMMAND_SVM_UNMAP, false, wait, event, nil)
}

func (f *API) EnqueueSVMMigrateMem(proc clapi.Proc, queue clapi.Handle, ptrs []unsafe.Pointer, sizes []int, flags clapi.MigrationFlags,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueSVMMigrateMem"
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if len(ptrs) == 0 || (sizes != nil && len(sizes) != len(ptrs)) {
		return clapi.CL_INVALID_VALUE
	}
	for _, ptr := range ptrs {
		if f.svmRegion(ptr) == nil {
			return clapi.CL_INVALID_VALUE
		}
	}
	return f.submit(queue, clapi.CL_COMMAND_SVM_MIGRATE_MEM, false, wait, event, nil)
}

// GL objects are emulated as memory objects of the configured size: buffers have 1024 bytes, and textures and
// renderbuffers are 16x16 RGBA images.
const (
	glBufferSize  = 1024
	glImageExtent = 16
)

func (f *API) createFromGL(context clapi.Handle, flags clapi.MemFlags, glObject uint32, isImage bool) (clapi.Handle, clapi.Status) {
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if glObject == 0 {
		return 0, clapi.CL_INVALID_GL_OBJECT
	}
	m := f.newObject(clapi.ClassMem)
	m.context = c
	m.flags = flags
	m.glObject = glObject
	if isImage {
		m.memType = clapi.CL_MEM_OBJECT_IMAGE2D
		m.imageFormat = clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_UNORM_INT8}
		m.imageDesc = clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D, Width: glImageExtent, Height: glImageExtent}
		m.pixelSize = 4
		m.data = make([]byte, glImageExtent*glImageExtent*4)
	} else {
		m.memType = clapi.CL_MEM_OBJECT_BUFFER
		m.data = make([]byte, glBufferSize)
	}
	return m.handle, clapi.CL_SUCCESS
}

func (f *API) CreateFromGLBuffer(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, buffer uint32) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCreateFromGLBuffer"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	return f.createFromGL(context, flags, buffer, false)
}

func (f *API) CreateFromGLTexture(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, target uint32, mipLevel int32,
	texture uint32) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCreateFromGLTexture"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	if mipLevel < 0 {
		return 0, clapi.CL_INVALID_MIP_LEVEL
	}
	return f.createFromGL(context, flags, texture, true)
}

func (f *API) CreateFromGLRenderbuffer(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, renderbuffer uint32) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	if st := f.checkProc(proc, "clCreateFromGLRenderbuffer"); st != clapi.CL_SUCCESS {
		return 0, st
	}
	return f.createFromGL(context, flags, renderbuffer, true)
}

// glObjects acquires or releases GL memory objects: acquiring an object already acquired (or releasing one not
// acquired) fails.
func (f *API) glObjects(name string, proc clapi.Proc, queue clapi.Handle, mems []clapi.Handle, acquire bool,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	if st := f.checkProc(proc, name); st != clapi.CL_SUCCESS {
		return st
	}
	if len(mems) == 0 {
		return clapi.CL_INVALID_VALUE
	}
	objects := make([]*object, len(mems))
	for ii, h := range mems {
		m, st := f.lookup(clapi.ClassMem, h)
		if st != clapi.CL_SUCCESS {
			return st
		}
		if m.glObject == 0 || m.acquired == acquire {
			return clapi.CL_INVALID_GL_OBJECT
		}
		objects[ii] = m
	}
	commandType := clapi.CL_COMMAND_RELEASE_GL_OBJECTS
	if acquire {
		commandType = clapi.CL_COMMAND_ACQUIRE_GL_OBJECTS
	}
	st := f.submit(queue, commandType, false, wait, event, nil)
	if st == clapi.CL_SUCCESS {
		for _, m := range objects {
			m.acquired = acquire
		}
	}
	return st
}

func (f *API) EnqueueAcquireGLObjects(proc clapi.Proc, queue clapi.Handle, mems []clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.glObjects("clEnqueueAcquireGLObjects", proc, queue, mems, true, wait, event)
}

func (f *API) EnqueueReleaseGLObjects(proc clapi.Proc, queue clapi.Handle, mems []clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.glObjects("clEnqueueReleaseGLObjects", proc, queue, mems, false, wait, event)
}
