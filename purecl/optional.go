//go:build linux || darwin

package purecl

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/gomlx/gocl/clapi"
	"k8s.io/klog/v2"
)

// platformVersion is the OpenCL version and extensions reported by a platform.
type platformVersion struct {
	major, minor int
	extensions   []string
}

func (v platformVersion) atLeast(version string) bool {
	var major, minor int
	if _, err := fmt.Sscanf(version, "%d.%d", &major, &minor); err != nil {
		return false
	}
	return v.major > major || (v.major == major && v.minor >= minor)
}

// platformVersion queries (once) the version and extensions of the platform.
func (rt *Runtime) platformVersion(platform clapi.Handle) platformVersion {
	rt.muVersions.Lock()
	defer rt.muVersions.Unlock()
	if v, found := rt.versions[platform]; found {
		return v
	}
	var v platformVersion
	if version, ok := rt.platformString(platform, clapi.CL_PLATFORM_VERSION); ok {
		if _, err := fmt.Sscanf(version, "OpenCL %d.%d", &v.major, &v.minor); err != nil {
			klog.Warningf("Can't parse version %q of OpenCL platform %s: %v", version, platform, err)
		}
	}
	if exts, ok := rt.platformString(platform, clapi.CL_PLATFORM_EXTENSIONS); ok {
		v.extensions = strings.Fields(exts)
	}
	rt.versions[platform] = v
	return v
}

func (rt *Runtime) platformString(platform clapi.Handle, param uint32) (string, bool) {
	size, st := rt.GetInfo(clapi.ClassPlatform, platform, param, nil)
	if st != clapi.CL_SUCCESS || size == 0 {
		return "", false
	}
	buf := make([]byte, size)
	if _, st = rt.GetInfo(clapi.ClassPlatform, platform, param, buf); st != clapi.CL_SUCCESS {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}

// GetProcAddress resolves one of clapi.OptionalEntryPoints for the platform. It returns 0 if the platform version
// is too old, or if the platform doesn't support the required extension.
func (rt *Runtime) GetProcAddress(platform clapi.Handle, name string) clapi.Proc {
	idx := slices.IndexFunc(clapi.OptionalEntryPoints, func(ep clapi.EntryPoint) bool { return ep.Name == name })
	if idx < 0 {
		return 0
	}
	ep := clapi.OptionalEntryPoints[idx]
	v := rt.platformVersion(platform)
	if ep.MinVersion != "" && !v.atLeast(ep.MinVersion) {
		return 0
	}
	if ep.Extension != "" && !slices.Contains(v.extensions, ep.Extension) {
		return 0
	}
	if proc := rt.getExtensionFunction(uintptr(platform), name); proc != 0 {
		return clapi.Proc(proc)
	}
	if sym, err := purego.Dlsym(rt.lib, name); err == nil {
		return clapi.Proc(sym)
	}
	return 0
}

// Optional entry points are called through their address with purego.SyscallN: the Go memory passed as pointers
// is pinned for the duration of the call.

type args struct {
	pinner runtime.Pinner
}

func (a *args) ptr(p unsafe.Pointer) uintptr {
	if p == nil {
		return 0
	}
	a.pinner.Pin(p)
	return uintptr(p)
}

func (a *args) handles(handles []clapi.Handle) (uintptr, uintptr) {
	if len(handles) == 0 {
		return 0, 0
	}
	return uintptr(len(handles)), a.ptr(unsafe.Pointer(&handles[0]))
}

func (a *args) pointers(ptrs []unsafe.Pointer) uintptr {
	if len(ptrs) == 0 {
		return 0
	}
	return a.ptr(unsafe.Pointer(&ptrs[0]))
}

func (a *args) errCode(errCode *int32) uintptr {
	return a.ptr(unsafe.Pointer(errCode))
}

func (a *args) event(event *clapi.Handle) uintptr {
	return a.ptr(unsafe.Pointer(event))
}

func (a *args) bytes(data []byte) uintptr {
	if len(data) == 0 {
		return 0
	}
	return a.ptr(unsafe.Pointer(&data[0]))
}

func (a *args) done() {
	a.pinner.Unpin()
}

func syscall(proc clapi.Proc, arguments ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(uintptr(proc), arguments...)
	return r1
}

func status(r1 uintptr) clapi.Status {
	return clapi.Status(int32(r1))
}

func (rt *Runtime) CreateCommandQueueWithProperties(proc clapi.Proc, context, device clapi.Handle, properties []uint64) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	var props uintptr
	if len(properties) > 0 {
		props = a.ptr(unsafe.Pointer(&properties[0]))
	}
	h := syscall(proc, uintptr(context), uintptr(device), props, a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) CreatePipe(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, packetSize, maxPackets uint32) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	h := syscall(proc, uintptr(context), uintptr(flags), uintptr(packetSize), uintptr(maxPackets), 0, a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) CreateProgramWithIL(proc clapi.Proc, context clapi.Handle, il []byte) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	h := syscall(proc, uintptr(context), a.bytes(il), uintptr(len(il)), a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) CloneKernel(proc clapi.Proc, kernel clapi.Handle) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	h := syscall(proc, uintptr(kernel), a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) SetKernelArgSVMPointer(proc clapi.Proc, kernel clapi.Handle, index uint32, ptr unsafe.Pointer) clapi.Status {
	return status(syscall(proc, uintptr(kernel), uintptr(index), uintptr(ptr)))
}

func (rt *Runtime) SetDefaultDeviceCommandQueue(proc clapi.Proc, context, device, queue clapi.Handle) clapi.Status {
	return status(syscall(proc, uintptr(context), uintptr(device), uintptr(queue)))
}

func (rt *Runtime) SetProgramSpecializationConstant(proc clapi.Proc, program clapi.Handle, specID uint32, value []byte) clapi.Status {
	var a args
	defer a.done()
	return status(syscall(proc, uintptr(program), uintptr(specID), uintptr(len(value)), a.bytes(value)))
}

func (rt *Runtime) SVMAlloc(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, size int, alignment uint32) unsafe.Pointer {
	ptr := syscall(proc, uintptr(context), uintptr(flags), uintptr(size), uintptr(alignment))
	return *(*unsafe.Pointer)(unsafe.Pointer(&ptr))
}

func (rt *Runtime) SVMFree(proc clapi.Proc, context clapi.Handle, ptr unsafe.Pointer) {
	syscall(proc, uintptr(context), uintptr(ptr))
}

func (rt *Runtime) EnqueueSVMFree(proc clapi.Proc, queue clapi.Handle, ptrs []unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), uintptr(len(ptrs)), a.pointers(ptrs), 0, 0, numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) EnqueueSVMMemcpy(proc clapi.Proc, queue clapi.Handle, blocking bool, dst, src unsafe.Pointer, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), uintptr(clBool(blocking)), uintptr(dst), uintptr(src), uintptr(size),
		numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) EnqueueSVMMemFill(proc clapi.Proc, queue clapi.Handle, ptr unsafe.Pointer, pattern []byte, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), uintptr(ptr), a.bytes(pattern), uintptr(len(pattern)), uintptr(size),
		numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) EnqueueSVMMap(proc clapi.Proc, queue clapi.Handle, blocking bool, flags clapi.MapFlags, ptr unsafe.Pointer, size int,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), uintptr(clBool(blocking)), uintptr(flags), uintptr(ptr), uintptr(size),
		numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) EnqueueSVMUnmap(proc clapi.Proc, queue clapi.Handle, ptr unsafe.Pointer, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), uintptr(ptr), numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) EnqueueSVMMigrateMem(proc clapi.Proc, queue clapi.Handle, ptrs []unsafe.Pointer, sizes []int, flags clapi.MigrationFlags,
	wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numWait, waitPtr := a.handles(wait)
	var cSizes uintptr
	if len(sizes) > 0 {
		sizesC := make([]uintptr, len(sizes))
		for ii, size := range sizes {
			sizesC[ii] = uintptr(size)
		}
		cSizes = a.ptr(unsafe.Pointer(&sizesC[0]))
	}
	return status(syscall(proc, uintptr(queue), uintptr(len(ptrs)), a.pointers(ptrs), cSizes,
		uintptr(flags), numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) CreateFromGLBuffer(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, buffer uint32) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	h := syscall(proc, uintptr(context), uintptr(flags), uintptr(buffer), a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) CreateFromGLTexture(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, target uint32, mipLevel int32,
	texture uint32) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	h := syscall(proc, uintptr(context), uintptr(flags), uintptr(target), uintptr(mipLevel), uintptr(texture), a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) CreateFromGLRenderbuffer(proc clapi.Proc, context clapi.Handle, flags clapi.MemFlags, renderbuffer uint32) (clapi.Handle, clapi.Status) {
	var a args
	defer a.done()
	errCode := new(int32)
	h := syscall(proc, uintptr(context), uintptr(flags), uintptr(renderbuffer), a.errCode(errCode))
	return clapi.Handle(h), clapi.Status(*errCode)
}

func (rt *Runtime) EnqueueAcquireGLObjects(proc clapi.Proc, queue clapi.Handle, mems []clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numMems, memsPtr := a.handles(mems)
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), numMems, memsPtr, numWait, waitPtr, a.event(event)))
}

func (rt *Runtime) EnqueueReleaseGLObjects(proc clapi.Proc, queue clapi.Handle, mems []clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	var a args
	defer a.done()
	numMems, memsPtr := a.handles(mems)
	numWait, waitPtr := a.handles(wait)
	return status(syscall(proc, uintptr(queue), numMems, memsPtr, numWait, waitPtr, a.event(event)))
}
