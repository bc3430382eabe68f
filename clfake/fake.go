// Package clfake implements clapi.API in memory, to test the bindings without an OpenCL runtime.
//
// It emulates the parts of OpenCL the bindings depend on: reference counts (including the implicit references
// sub-buffers hold on their buffers, and kernels on their programs), the two-call info protocol, memory objects
// backed by Go slices, SVM regions, command queues with wait lists and user events, event callbacks and memory
// destructor callbacks. Kernels don't run device code: their behavior can be emulated with RegisterKernel.
//
// Commands run synchronously as soon as their dependencies are satisfied: a command waiting on an incomplete
// user event stays queued (with all the commands after it, in in-order queues) until the user event status is set.
//
// Callbacks are always called after the internal lock is released, from the goroutine that triggered them.
package clfake

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/gomlx/gocl/clapi"
)

// API is an in-memory OpenCL runtime. Create it with New.
type API struct {
	mu   sync.Mutex
	cond *sync.Cond

	// Configuration: only changed before use.
	numPlatforms, numDevices int
	version                  string
	extensions               []string
	hidden                   map[string]bool
	reuseHandles             bool
	noDestructorCallbacks    bool

	nextHandle clapi.Handle
	freed      []clapi.Handle
	objects    map[clapi.Handle]*object
	platforms  []*object
	devices    map[clapi.Handle][]*object

	calls   map[string]int
	clock   uint64
	active  []*object // Queues with pending commands.
	kernels map[string]KernelFunc
	svm     map[uintptr][]byte

	// fire holds the callbacks to call once the lock is released.
	fire []func()
}

var _ clapi.API = (*API)(nil)

// New creates a fake runtime with one platform reporting "OpenCL 3.0", with 2 GPU devices and the
// "cl_khr_gl_sharing" extension. Use the With* methods to configure it before use.
func New() *API {
	f := &API{
		numPlatforms: 1,
		numDevices:   2,
		version:      "3.0",
		extensions:   []string{"cl_khr_icd", "cl_khr_gl_sharing"},
		hidden:       make(map[string]bool),
		nextHandle:   0x1000,
		objects:      make(map[clapi.Handle]*object),
		devices:      make(map[clapi.Handle][]*object),
		calls:        make(map[string]int),
		kernels:      make(map[string]KernelFunc),
		svm:          make(map[uintptr][]byte),
	}
	for _, def := range builtInKernels {
		f.kernels[def.name] = def.fn
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// WithPlatforms sets the number of platforms.
func (f *API) WithPlatforms(n int) *API {
	f.numPlatforms = n
	return f
}

// WithDevices sets the number of (root) devices of each platform.
func (f *API) WithDevices(n int) *API {
	f.numDevices = n
	return f
}

// WithVersion sets the OpenCL version reported by the platforms, e.g. "1.2". It gates the optional entry points.
func (f *API) WithVersion(version string) *API {
	f.version = version
	return f
}

// WithExtensions sets the extensions reported by the platforms.
func (f *API) WithExtensions(extensions ...string) *API {
	f.extensions = extensions
	return f
}

// WithoutEntryPoints makes the given optional entry points unavailable, regardless of the version.
func (f *API) WithoutEntryPoints(names ...string) *API {
	for _, name := range names {
		f.hidden[name] = true
	}
	return f
}

// WithHandleReuse makes the runtime reuse the values of deleted handles (most recently deleted first), as drivers do.
func (f *API) WithHandleReuse() *API {
	f.reuseHandles = true
	return f
}

// WithoutDestructorCallbacks makes clSetMemObjectDestructorCallback fail with CL_INVALID_OPERATION.
func (f *API) WithoutDestructorCallbacks() *API {
	f.noDestructorCallbacks = true
	return f
}

// object is any native object of the fake runtime.
type object struct {
	class    clapi.Class
	handle   clapi.Handle
	refCount int // 0 for objects not reference counted (platforms and root devices).
	deleted  bool

	platform, device, context *object
	parent                    *object // Parent device, buffer of a sub-buffer, program of a kernel.
	subDevices                int
	defaultQueue              *object // Set with clSetDefaultDeviceCommandQueue.

	// Devices of a context, program.
	devices []*object

	// Queues.
	properties uint64
	pending    []*command

	// Memory objects.
	memType     uint32
	flags       clapi.MemFlags
	data        []byte
	origin      int
	imageFormat clapi.ImageFormat
	imageDesc   clapi.ImageDesc
	pixelSize   int
	packetSize  uint32
	maxPackets  uint32
	destructors []clapi.MemCallback
	glObject    uint32
	acquired    bool

	// Samplers.
	normalized         bool
	addressing, filter uint32

	// Programs and kernels.
	source        string
	il            bool
	builtIn       bool
	linked        bool
	compiled      bool
	library       bool
	built         bool
	buildLog      string
	kernelDefs    []kernelDef
	specConstants map[uint32][]byte
	kernelName    string
	numArgs       int
	args          map[int]KernelArg
	attachedRef   int

	// Events.
	queue       *object
	commandType uint32
	status      int32
	user        bool
	callbacks   []eventCallback
	profile     [5]uint64
}

func (o *object) String() string {
	return fmt.Sprintf("%s(%s)", o.class, o.handle)
}

// counted returns whether the object has a reference count.
func (o *object) counted() bool {
	switch o.class {
	case clapi.ClassPlatform:
		return false
	case clapi.ClassDevice:
		return o.parent != nil
	}
	return true
}

// newObject registers a new object with reference count 1. Must be called with the lock held.
func (f *API) newObject(class clapi.Class) *object {
	var h clapi.Handle
	if f.reuseHandles && len(f.freed) > 0 {
		h = f.freed[len(f.freed)-1]
		f.freed = f.freed[:len(f.freed)-1]
	} else {
		h = f.nextHandle
		f.nextHandle += 0x10
	}
	o := &object{class: class, handle: h, refCount: 1}
	f.objects[h] = o
	return o
}

// lookup returns the live object of the given class. Must be called with the lock held.
func (f *API) lookup(class clapi.Class, h clapi.Handle) (*object, clapi.Status) {
	f.init()
	o, found := f.objects[h]
	if !found || o.deleted || o.class != class {
		return nil, invalidStatus(class)
	}
	return o, clapi.CL_SUCCESS
}

func invalidStatus(class clapi.Class) clapi.Status {
	switch class {
	case clapi.ClassPlatform:
		return clapi.CL_INVALID_PLATFORM
	case clapi.ClassDevice:
		return clapi.CL_INVALID_DEVICE
	case clapi.ClassContext:
		return clapi.CL_INVALID_CONTEXT
	case clapi.ClassCommandQueue:
		return clapi.CL_INVALID_COMMAND_QUEUE
	case clapi.ClassMem:
		return clapi.CL_INVALID_MEM_OBJECT
	case clapi.ClassSampler:
		return clapi.CL_INVALID_SAMPLER
	case clapi.ClassProgram:
		return clapi.CL_INVALID_PROGRAM
	case clapi.ClassKernel:
		return clapi.CL_INVALID_KERNEL
	case clapi.ClassEvent:
		return clapi.CL_INVALID_EVENT
	}
	return clapi.CL_INVALID_VALUE
}

// init creates the platforms and devices on first use. Must be called with the lock held.
func (f *API) init() {
	if f.platforms != nil || f.numPlatforms == 0 {
		return
	}
	for range f.numPlatforms {
		p := f.newObject(clapi.ClassPlatform)
		p.refCount = 0
		f.platforms = append(f.platforms, p)
		for range f.numDevices {
			d := f.newObject(clapi.ClassDevice)
			d.refCount = 0
			d.platform = p
			f.devices[p.handle] = append(f.devices[p.handle], d)
		}
	}
}

// call counts a call to the named entry point. Must be called with the lock held.
func (f *API) call(name string) {
	f.calls[name]++
}

// unlock releases the lock and then calls the pending callbacks.
func (f *API) unlock() {
	fire := f.fire
	f.fire = nil
	f.mu.Unlock()
	for _, fn := range fire {
		fn()
	}
}

// Calls returns the number of calls to the named entry point (e.g. "clReleaseMemObject").
func (f *API) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// TotalCalls returns the number of calls to all entry points.
func (f *API) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// Live returns the number of live reference counted objects of the class.
func (f *API) Live(class clapi.Class) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, o := range f.objects {
		if o.class == class && !o.deleted && o.counted() {
			count++
		}
	}
	return count
}

// LiveTotal returns the number of live reference counted objects of all classes.
func (f *API) LiveTotal() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, o := range f.objects {
		if !o.deleted && o.counted() {
			count++
		}
	}
	return count
}

// RefCount returns the reference count of a live object, or false if the handle is not live.
func (f *API) RefCount(h clapi.Handle) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, found := f.objects[h]
	if !found || o.deleted {
		return 0, false
	}
	return o.refCount, true
}

// SVMRegions returns the number of SVM regions allocated and not yet freed.
func (f *API) SVMRegions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.svm)
}

// Memory returns the contents of a live memory object (not a copy), or nil.
func (f *API) Memory(h clapi.Handle) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, found := f.objects[h]
	if !found || o.deleted || o.class != clapi.ClassMem {
		return nil
	}
	return o.data
}

func (f *API) GetPlatformIDs(out []clapi.Handle) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.init()
	f.call("clGetPlatformIDs")
	if len(f.platforms) == 0 {
		return 0, clapi.CL_PLATFORM_NOT_FOUND_KHR
	}
	for ii := 0; ii < len(out) && ii < len(f.platforms); ii++ {
		out[ii] = f.platforms[ii].handle
	}
	return len(f.platforms), clapi.CL_SUCCESS
}

// deviceTypeGPU is the type of all the fake devices.
const deviceTypeGPU = clapi.DeviceTypeGPU | clapi.DeviceTypeDefault

func (f *API) GetDeviceIDs(platform clapi.Handle, deviceType clapi.DeviceType, out []clapi.Handle) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clGetDeviceIDs")
	p, st := f.lookup(clapi.ClassPlatform, platform)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if deviceType&deviceTypeGPU == 0 {
		return 0, clapi.CL_DEVICE_NOT_FOUND
	}
	devices := f.devices[p.handle]
	if len(devices) == 0 {
		return 0, clapi.CL_DEVICE_NOT_FOUND
	}
	for ii := 0; ii < len(out) && ii < len(devices); ii++ {
		out[ii] = devices[ii].handle
	}
	return len(devices), clapi.CL_SUCCESS
}

// CreateSubDevices only supports CL_DEVICE_PARTITION_EQUALLY: the device is split in 2 sub-devices.
func (f *API) CreateSubDevices(device clapi.Handle, properties []int64, out []clapi.Handle) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateSubDevices")
	d, st := f.lookup(clapi.ClassDevice, device)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if len(properties) < 2 || properties[0] != clapi.CL_DEVICE_PARTITION_EQUALLY || properties[1] <= 0 {
		return 0, clapi.CL_INVALID_VALUE
	}
	const numSubDevices = 2
	if len(out) == 0 {
		return numSubDevices, clapi.CL_SUCCESS
	}
	if len(out) < numSubDevices {
		return 0, clapi.CL_INVALID_VALUE
	}
	for ii := range numSubDevices {
		sub := f.newObject(clapi.ClassDevice)
		sub.platform = d.platform
		sub.parent = d
		out[ii] = sub.handle
	}
	return numSubDevices, clapi.CL_SUCCESS
}

// Info encoding helpers.

func u32(v uint32) []byte { return binary.NativeEndian.AppendUint32(nil, v) }
func u64(v uint64) []byte { return binary.NativeEndian.AppendUint64(nil, v) }
func str(s string) []byte { return append([]byte(s), 0) }

func handleList(objects ...*object) []byte {
	buf := make([]byte, 0, 8*len(objects))
	for _, o := range objects {
		var h clapi.Handle
		if o != nil {
			h = o.handle
		}
		buf = binary.NativeEndian.AppendUint64(buf, uint64(h))
	}
	return buf
}

// GetInfo implements the two-call protocol over the value returned by info.
func (f *API) GetInfo(class clapi.Class, h clapi.Handle, param uint32, out []byte) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clGet" + class.String() + "Info")
	o, st := f.lookup(class, h)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	value, st := f.info(o, param)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	return copyOut(out, value)
}

func copyOut(out, value []byte) (int, clapi.Status) {
	if len(out) > 0 {
		if len(out) < len(value) {
			return 0, clapi.CL_INVALID_VALUE
		}
		copy(out, value)
	}
	return len(value), clapi.CL_SUCCESS
}

func (f *API) platformVersion() string {
	return "OpenCL " + f.version + " clfake"
}

// info returns the encoded value of the parameter. Must be called with the lock held.
func (f *API) info(o *object, param uint32) ([]byte, clapi.Status) {
	switch o.class {
	case clapi.ClassPlatform:
		switch param {
		case clapi.CL_PLATFORM_PROFILE:
			return str("FULL_PROFILE"), clapi.CL_SUCCESS
		case clapi.CL_PLATFORM_VERSION:
			return str(f.platformVersion()), clapi.CL_SUCCESS
		case clapi.CL_PLATFORM_NAME:
			return str(fmt.Sprintf("clfake #%d", slices.Index(f.platforms, o))), clapi.CL_SUCCESS
		case clapi.CL_PLATFORM_VENDOR:
			return str("gocl"), clapi.CL_SUCCESS
		case clapi.CL_PLATFORM_EXTENSIONS:
			return str(strings.Join(f.extensions, " ")), clapi.CL_SUCCESS
		}

	case clapi.ClassDevice:
		switch param {
		case clapi.CL_DEVICE_TYPE:
			return u64(uint64(deviceTypeGPU)), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_MAX_COMPUTE_UNITS:
			if o.parent != nil {
				return u32(4), clapi.CL_SUCCESS
			}
			return u32(8), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_MAX_WORK_GROUP_SIZE:
			return u64(256), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_GLOBAL_MEM_SIZE:
			return u64(1 << 30), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_MAX_MEM_ALLOC_SIZE:
			return u64(1 << 28), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_LOCAL_MEM_SIZE:
			return u64(1 << 16), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_NAME:
			return str(fmt.Sprintf("clfake device %s", o.handle)), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_VENDOR:
			return str("gocl"), clapi.CL_SUCCESS
		case clapi.CL_DRIVER_VERSION:
			return str("1.0"), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_VERSION:
			return str(f.platformVersion()), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_EXTENSIONS:
			return str(strings.Join(f.extensions, " ")), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_PLATFORM:
			return handleList(o.platform), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_BUILT_IN_KERNELS:
			names := make([]string, len(builtInKernels))
			for ii, def := range builtInKernels {
				names[ii] = def.name
			}
			return str(strings.Join(names, ";")), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_PARENT_DEVICE:
			return handleList(o.parent), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_PARTITION_MAX_SUB_DEVICES:
			return u32(2), clapi.CL_SUCCESS
		case clapi.CL_DEVICE_REFERENCE_COUNT:
			return u32(uint32(max(o.refCount, 1))), clapi.CL_SUCCESS
		}

	case clapi.ClassContext:
		switch param {
		case clapi.CL_CONTEXT_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_CONTEXT_DEVICES:
			return handleList(o.devices...), clapi.CL_SUCCESS
		case clapi.CL_CONTEXT_NUM_DEVICES:
			return u32(uint32(len(o.devices))), clapi.CL_SUCCESS
		}

	case clapi.ClassCommandQueue:
		switch param {
		case clapi.CL_QUEUE_CONTEXT:
			return handleList(o.context), clapi.CL_SUCCESS
		case clapi.CL_QUEUE_DEVICE:
			return handleList(o.device), clapi.CL_SUCCESS
		case clapi.CL_QUEUE_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_QUEUE_PROPERTIES:
			return u64(o.properties), clapi.CL_SUCCESS
		case clapi.CL_QUEUE_DEVICE_DEFAULT:
			if !f.versionAtLeast("2.1") {
				return nil, clapi.CL_INVALID_VALUE
			}
			q := o.device.defaultQueue
			if q != nil && q.deleted {
				q = nil
			}
			return handleList(q), clapi.CL_SUCCESS
		}

	case clapi.ClassMem:
		switch param {
		case clapi.CL_MEM_TYPE:
			return u32(o.memType), clapi.CL_SUCCESS
		case clapi.CL_MEM_FLAGS:
			return u64(uint64(o.flags)), clapi.CL_SUCCESS
		case clapi.CL_MEM_SIZE:
			return u64(uint64(len(o.data))), clapi.CL_SUCCESS
		case clapi.CL_MEM_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_MEM_CONTEXT:
			return handleList(o.context), clapi.CL_SUCCESS
		case clapi.CL_MEM_ASSOCIATED_MEMOBJECT:
			return handleList(o.parent), clapi.CL_SUCCESS
		case clapi.CL_MEM_OFFSET:
			return u64(uint64(o.origin)), clapi.CL_SUCCESS
		}

	case clapi.ClassSampler:
		switch param {
		case clapi.CL_SAMPLER_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_SAMPLER_CONTEXT:
			return handleList(o.context), clapi.CL_SUCCESS
		case clapi.CL_SAMPLER_NORMALIZED_COORDS:
			var normalized uint32
			if o.normalized {
				normalized = 1
			}
			return u32(normalized), clapi.CL_SUCCESS
		case clapi.CL_SAMPLER_ADDRESSING_MODE:
			return u32(o.addressing), clapi.CL_SUCCESS
		case clapi.CL_SAMPLER_FILTER_MODE:
			return u32(o.filter), clapi.CL_SUCCESS
		}

	case clapi.ClassProgram:
		switch param {
		case clapi.CL_PROGRAM_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_PROGRAM_CONTEXT:
			return handleList(o.context), clapi.CL_SUCCESS
		case clapi.CL_PROGRAM_NUM_DEVICES:
			return u32(uint32(len(o.devices))), clapi.CL_SUCCESS
		case clapi.CL_PROGRAM_DEVICES:
			return handleList(o.devices...), clapi.CL_SUCCESS
		case clapi.CL_PROGRAM_SOURCE:
			return str(o.source), clapi.CL_SUCCESS
		case clapi.CL_PROGRAM_NUM_KERNELS, clapi.CL_PROGRAM_KERNEL_NAMES:
			if !o.built {
				return nil, clapi.CL_INVALID_PROGRAM_EXECUTABLE
			}
			if param == clapi.CL_PROGRAM_NUM_KERNELS {
				return u64(uint64(len(o.kernelDefs))), clapi.CL_SUCCESS
			}
			names := make([]string, len(o.kernelDefs))
			for ii, def := range o.kernelDefs {
				names[ii] = def.name
			}
			return str(strings.Join(names, ";")), clapi.CL_SUCCESS
		}

	case clapi.ClassKernel:
		switch param {
		case clapi.CL_KERNEL_FUNCTION_NAME:
			return str(o.kernelName), clapi.CL_SUCCESS
		case clapi.CL_KERNEL_NUM_ARGS:
			return u32(uint32(o.numArgs)), clapi.CL_SUCCESS
		case clapi.CL_KERNEL_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_KERNEL_CONTEXT:
			return handleList(o.context), clapi.CL_SUCCESS
		case clapi.CL_KERNEL_PROGRAM:
			return handleList(o.parent), clapi.CL_SUCCESS
		}

	case clapi.ClassEvent:
		switch param {
		case clapi.CL_EVENT_COMMAND_QUEUE:
			return handleList(o.queue), clapi.CL_SUCCESS
		case clapi.CL_EVENT_COMMAND_TYPE:
			return u32(o.commandType), clapi.CL_SUCCESS
		case clapi.CL_EVENT_REFERENCE_COUNT:
			return u32(uint32(o.refCount)), clapi.CL_SUCCESS
		case clapi.CL_EVENT_COMMAND_EXECUTION_STATUS:
			return u32(uint32(o.status)), clapi.CL_SUCCESS
		case clapi.CL_EVENT_CONTEXT:
			return handleList(o.context), clapi.CL_SUCCESS
		}
	}
	return nil, clapi.CL_INVALID_VALUE
}

func (f *API) Retain(class clapi.Class, h clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clRetain" + class.String())
	o, st := f.lookup(class, h)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if o.counted() {
		o.refCount++
	}
	return clapi.CL_SUCCESS
}

func (f *API) Release(class clapi.Class, h clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clRelease" + class.String())
	o, st := f.lookup(class, h)
	if st != clapi.CL_SUCCESS {
		return st
	}
	f.release(o)
	return clapi.CL_SUCCESS
}

// release decrements the reference count, and deletes the object when it reaches 0. Must be called with the
// lock held.
func (f *API) release(o *object) {
	if !o.counted() {
		return
	}
	o.refCount--
	if o.refCount > 0 || o.attachedRef > 0 {
		return
	}
	f.delete(o)
}

// delete an object whose reference counts reached 0.
func (f *API) delete(o *object) {
	if o.deleted {
		return
	}
	o.deleted = true
	delete(f.objects, o.handle)
	if f.reuseHandles {
		f.freed = append(f.freed, o.handle)
	}
	if o.class == clapi.ClassMem {
		h := o.handle
		for _, fn := range slices.Backward(o.destructors) {
			f.fire = append(f.fire, func() { fn(h) })
		}
		o.destructors = nil
	}
	// Implicit references held on the parent.
	if p := o.parent; p != nil && (o.class == clapi.ClassMem || o.class == clapi.ClassKernel) {
		p.attachedRef--
		if p.refCount <= 0 && p.attachedRef <= 0 {
			f.delete(p)
		}
	}
}

func (f *API) CreateContext(properties []int64, devices []clapi.Handle) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateContext")
	if len(devices) == 0 {
		return 0, clapi.CL_INVALID_VALUE
	}
	var platform *object
	for ii := 0; ii+1 < len(properties); ii += 2 {
		if properties[ii] == clapi.CL_CONTEXT_PLATFORM {
			p, st := f.lookup(clapi.ClassPlatform, clapi.Handle(properties[ii+1]))
			if st != clapi.CL_SUCCESS {
				return 0, st
			}
			platform = p
		}
	}
	ds := make([]*object, len(devices))
	for ii, h := range devices {
		d, st := f.lookup(clapi.ClassDevice, h)
		if st != clapi.CL_SUCCESS {
			return 0, st
		}
		if platform == nil {
			platform = d.platform
		}
		if d.platform != platform {
			return 0, clapi.CL_INVALID_DEVICE
		}
		ds[ii] = d
	}
	c := f.newObject(clapi.ClassContext)
	c.platform = platform
	c.devices = ds
	return c.handle, clapi.CL_SUCCESS
}

func (f *API) UnloadPlatformCompiler(platform clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clUnloadPlatformCompiler")
	_, st := f.lookup(clapi.ClassPlatform, platform)
	return st
}

// hostBytes returns the host memory at ptr as a slice.
func hostBytes(ptr unsafe.Pointer, size int) []byte {
	if ptr == nil || size <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}
