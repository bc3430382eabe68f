package clfake

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unsafe"

	"github.com/gomlx/gocl/clapi"
)

// KernelArg is the value of a kernel argument, as seen by a KernelFunc.
type KernelArg struct {
	// Value holds the bytes set with clSetKernelArg.
	Value []byte

	// Mem is the storage of the memory object or SVM region passed as argument, nil for other arguments.
	Mem []byte

	// Local is the size of a local memory argument (set with a nil value).
	Local int
}

// KernelFunc emulates a kernel: it is called with the global work size and the arguments when an NDRange
// command for a kernel with the registered name runs.
type KernelFunc func(global []int, args []KernelArg)

// RegisterKernel sets the function that emulates the kernels with the given name. Kernels without an emulation
// do nothing when run.
func (f *API) RegisterKernel(name string, fn KernelFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kernels[name] = fn
}

type kernelDef struct {
	name    string
	numArgs int
}

type builtInKernel struct {
	kernelDef
	fn KernelFunc
}

// builtInKernels are the built-in kernels of every fake device, with their emulation.
var builtInKernels = []builtInKernel{
	// copy_bytes(src, dst) copies global[0] bytes.
	{kernelDef{"copy_bytes", 2}, func(global []int, args []KernelArg) {
		n := min(global[0], len(args[0].Mem), len(args[1].Mem))
		copy(args[1].Mem[:n], args[0].Mem[:n])
	}},
	// fill_bytes(dst, uchar value) sets global[0] bytes.
	{kernelDef{"fill_bytes", 2}, func(global []int, args []KernelArg) {
		for ii := range min(global[0], len(args[0].Mem)) {
			args[0].Mem[ii] = args[1].Value[0]
		}
	}},
}

var (
	reKernel  = regexp.MustCompile(`(?:__)?kernel\s+void\s+(\w+)\s*\(([^)]*)\)`)
	reError   = regexp.MustCompile(`(?m)^\s*#error\s+(.*)$`)
	reInclude = regexp.MustCompile(`(?m)^\s*#include\s+"([^"]+)"`)
)

// parseKernels returns the kernels defined in OpenCL C source.
func parseKernels(source string) []kernelDef {
	var defs []kernelDef
	for _, match := range reKernel.FindAllStringSubmatch(source, -1) {
		def := kernelDef{name: match[1]}
		if params := strings.TrimSpace(match[2]); params != "" && params != "void" {
			def.numArgs = strings.Count(params, ",") + 1
		}
		defs = append(defs, def)
	}
	return defs
}

func (f *API) newProgram(c *object, source string) *object {
	p := f.newObject(clapi.ClassProgram)
	p.context = c
	p.source = source
	p.devices = c.devices
	return p
}

func (f *API) CreateProgramWithSource(context clapi.Handle, source string) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateProgramWithSource")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if source == "" {
		return 0, clapi.CL_INVALID_VALUE
	}
	return f.newProgram(c, source).handle, clapi.CL_SUCCESS
}

// CreateProgramWithBinary takes the source as "binary": all the binaries must be the same.
func (f *API) CreateProgramWithBinary(context clapi.Handle, devices []clapi.Handle, binaries [][]byte) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateProgramWithBinary")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if len(devices) == 0 || len(devices) != len(binaries) {
		return 0, clapi.CL_INVALID_VALUE
	}
	ds := make([]*object, len(devices))
	for ii, h := range devices {
		d, st := f.lookup(clapi.ClassDevice, h)
		if st != clapi.CL_SUCCESS {
			return 0, st
		}
		ds[ii] = d
	}
	for _, binary := range binaries {
		if len(binary) == 0 || string(binary) != string(binaries[0]) {
			return 0, clapi.CL_INVALID_BINARY
		}
	}
	p := f.newProgram(c, string(binaries[0]))
	p.devices = ds
	return p.handle, clapi.CL_SUCCESS
}

// lookupDevices returns the devices for the handles. Must be called with the lock held.
func (f *API) lookupDevices(devices []clapi.Handle) ([]*object, clapi.Status) {
	ds := make([]*object, len(devices))
	for ii, h := range devices {
		d, st := f.lookup(clapi.ClassDevice, h)
		if st != clapi.CL_SUCCESS {
			return nil, st
		}
		ds[ii] = d
	}
	return ds, clapi.CL_SUCCESS
}

// CreateProgramWithBuiltInKernels accepts the names of builtInKernels ("copy_bytes" and "fill_bytes").
func (f *API) CreateProgramWithBuiltInKernels(context clapi.Handle, devices []clapi.Handle, kernelNames string) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateProgramWithBuiltInKernels")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if len(devices) == 0 || kernelNames == "" {
		return 0, clapi.CL_INVALID_VALUE
	}
	ds, st := f.lookupDevices(devices)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	var defs []kernelDef
	for _, name := range strings.Split(kernelNames, ";") {
		name = strings.TrimSpace(name)
		idx := slices.IndexFunc(builtInKernels, func(k builtInKernel) bool { return k.name == name })
		if idx < 0 {
			return 0, clapi.CL_INVALID_VALUE
		}
		defs = append(defs, builtInKernels[idx].kernelDef)
	}
	p := f.newProgram(c, "")
	p.devices = ds
	p.builtIn = true
	p.built = true
	p.kernelDefs = defs
	return p.handle, clapi.CL_SUCCESS
}

// rebuildable returns whether the program can be compiled or built. Must be called with the lock held.
func (p *object) rebuildable() bool {
	// Programs with kernels can't be rebuilt, and built-in or linked programs have no source.
	return p.attachedRef == 0 && !p.builtIn && !p.linked
}

func (f *API) BuildProgram(program clapi.Handle, devices []clapi.Handle, options string) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clBuildProgram")
	p, st := f.lookup(clapi.ClassProgram, program)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if !p.rebuildable() {
		return clapi.CL_INVALID_OPERATION
	}
	p.compiled = false
	if match := reError.FindStringSubmatch(p.source); match != nil {
		p.built = false
		p.buildLog = "error: " + strings.TrimSpace(match[1])
		return clapi.CL_BUILD_PROGRAM_FAILURE
	}
	p.built = true
	p.buildLog = ""
	p.kernelDefs = parseKernels(p.source)
	return clapi.CL_SUCCESS
}

// CompileProgram resolves the `#include "name"` directives of the source with the header programs, and fails with
// CL_COMPILE_PROGRAM_FAILURE on "#error" directives or unknown includes.
func (f *API) CompileProgram(program clapi.Handle, devices []clapi.Handle, options string, headers []clapi.Handle,
	headerNames []string) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCompileProgram")
	p, st := f.lookup(clapi.ClassProgram, program)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if !p.rebuildable() {
		return clapi.CL_INVALID_OPERATION
	}
	if len(headers) != len(headerNames) {
		return clapi.CL_INVALID_VALUE
	}
	if _, st := f.lookupDevices(devices); st != clapi.CL_SUCCESS {
		return st
	}
	included := make(map[string]string, len(headers))
	for ii, h := range headers {
		header, st := f.lookup(clapi.ClassProgram, h)
		if st != clapi.CL_SUCCESS {
			return st
		}
		included[headerNames[ii]] = header.source
	}
	p.built, p.compiled, p.library = false, false, false
	source := p.source
	for _, match := range reInclude.FindAllStringSubmatch(p.source, -1) {
		header, found := included[match[1]]
		if !found {
			p.buildLog = fmt.Sprintf("error: '%s' file not found", match[1])
			return clapi.CL_COMPILE_PROGRAM_FAILURE
		}
		source = header + "\n" + source
	}
	if match := reError.FindStringSubmatch(source); match != nil {
		p.buildLog = "error: " + strings.TrimSpace(match[1])
		return clapi.CL_COMPILE_PROGRAM_FAILURE
	}
	p.compiled = true
	p.buildLog = ""
	p.kernelDefs = parseKernels(source)
	return clapi.CL_SUCCESS
}

// LinkProgram links compiled programs (or libraries) into a new program. With the "-create-library" option the
// new program is a library, to be linked again. Kernels defined twice make the link fail.
func (f *API) LinkProgram(context clapi.Handle, devices []clapi.Handle, options string, programs []clapi.Handle) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clLinkProgram")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if len(programs) == 0 {
		return 0, clapi.CL_INVALID_VALUE
	}
	ds, st := f.lookupDevices(devices)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	var sources []string
	var defs []kernelDef
	for _, h := range programs {
		p, st := f.lookup(clapi.ClassProgram, h)
		if st != clapi.CL_SUCCESS {
			return 0, st
		}
		if p.context != c {
			return 0, clapi.CL_INVALID_CONTEXT
		}
		if !p.compiled {
			return 0, clapi.CL_INVALID_PROGRAM
		}
		for _, def := range p.kernelDefs {
			if slices.ContainsFunc(defs, func(d kernelDef) bool { return d.name == def.name }) {
				return 0, clapi.CL_LINK_PROGRAM_FAILURE
			}
			defs = append(defs, def)
		}
		sources = append(sources, p.source)
	}
	linked := f.newProgram(c, strings.Join(sources, "\n"))
	if len(ds) > 0 {
		linked.devices = ds
	}
	linked.linked = true
	linked.kernelDefs = defs
	if strings.Contains(options, "-create-library") {
		linked.compiled = true
		linked.library = true
	} else {
		linked.built = true
	}
	return linked.handle, clapi.CL_SUCCESS
}

// binaryType returns the CL_PROGRAM_BINARY_TYPE of the program.
func (p *object) binaryType() uint32 {
	switch {
	case p.built:
		return clapi.CL_PROGRAM_BINARY_TYPE_EXECUTABLE
	case p.library:
		return clapi.CL_PROGRAM_BINARY_TYPE_LIBRARY
	case p.compiled:
		return clapi.CL_PROGRAM_BINARY_TYPE_COMPILED_OBJECT
	}
	return clapi.CL_PROGRAM_BINARY_TYPE_NONE
}

func (f *API) GetProgramBuildInfo(program, device clapi.Handle, param uint32, out []byte) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clGetProgramBuildInfo")
	p, st := f.lookup(clapi.ClassProgram, program)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if _, st := f.lookup(clapi.ClassDevice, device); st != clapi.CL_SUCCESS {
		return 0, st
	}
	switch param {
	case clapi.CL_PROGRAM_BUILD_LOG:
		return copyOut(out, str(p.buildLog))
	case clapi.CL_PROGRAM_BUILD_STATUS:
		status := int32(0) // CL_BUILD_SUCCESS
		if !p.built && !p.compiled {
			status = -2 // CL_BUILD_ERROR
		}
		return copyOut(out, u32(uint32(status)))
	case clapi.CL_PROGRAM_BINARY_TYPE:
		return copyOut(out, u32(p.binaryType()))
	}
	return 0, clapi.CL_INVALID_VALUE
}

// newKernel must be called with the lock held.
func (f *API) newKernel(p *object, def kernelDef) *object {
	k := f.newObject(clapi.ClassKernel)
	k.context = p.context
	k.parent = p
	k.kernelName = def.name
	k.numArgs = def.numArgs
	k.args = make(map[int]KernelArg)
	p.attachedRef++
	return k
}

func (f *API) CreateKernel(program clapi.Handle, name string) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateKernel")
	p, st := f.lookup(clapi.ClassProgram, program)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if !p.built {
		return 0, clapi.CL_INVALID_PROGRAM_EXECUTABLE
	}
	for _, def := range p.kernelDefs {
		if def.name == name {
			return f.newKernel(p, def).handle, clapi.CL_SUCCESS
		}
	}
	return 0, clapi.CL_INVALID_KERNEL_NAME
}

func (f *API) CreateKernelsInProgram(program clapi.Handle, out []clapi.Handle) (int, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateKernelsInProgram")
	p, st := f.lookup(clapi.ClassProgram, program)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if !p.built {
		return 0, clapi.CL_INVALID_PROGRAM_EXECUTABLE
	}
	if len(out) == 0 {
		return len(p.kernelDefs), clapi.CL_SUCCESS
	}
	if len(out) < len(p.kernelDefs) {
		return 0, clapi.CL_INVALID_VALUE
	}
	for ii, def := range p.kernelDefs {
		out[ii] = f.newKernel(p, def).handle
	}
	return len(p.kernelDefs), clapi.CL_SUCCESS
}

func (f *API) SetKernelArg(kernel clapi.Handle, index uint32, size int, value unsafe.Pointer) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clSetKernelArg")
	k, st := f.lookup(clapi.ClassKernel, kernel)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if int(index) >= k.numArgs {
		return clapi.CL_INVALID_ARG_INDEX
	}
	if size <= 0 {
		return clapi.CL_INVALID_ARG_SIZE
	}
	if value == nil {
		k.args[int(index)] = KernelArg{Local: size}
		return clapi.CL_SUCCESS
	}
	arg := KernelArg{Value: append([]byte(nil), hostBytes(value, size)...)}
	if size == int(unsafe.Sizeof(clapi.Handle(0))) {
		h := clapi.Handle(binary.NativeEndian.Uint64(arg.Value))
		if m, found := f.objects[h]; found && !m.deleted && m.class == clapi.ClassMem {
			arg.Mem = m.data
		}
	}
	k.args[int(index)] = arg
	return clapi.CL_SUCCESS
}

func (f *API) EnqueueNDRangeKernel(queue, kernel clapi.Handle, offset, global, local []int, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	const name = "clEnqueueNDRangeKernel"
	k, st := f.lookup(clapi.ClassKernel, kernel)
	if st != clapi.CL_SUCCESS {
		f.call(name)
		return st
	}
	dims := len(global)
	if dims < 1 || dims > 3 || (offset != nil && len(offset) != dims) || (local != nil && len(local) != dims) {
		f.call(name)
		return clapi.CL_INVALID_WORK_DIMENSION
	}
	for ii, size := range global {
		if size <= 0 {
			f.call(name)
			return clapi.CL_INVALID_GLOBAL_WORK_SIZE
		}
		if local != nil && (local[ii] <= 0 || size%local[ii] != 0) {
			f.call(name)
			return clapi.CL_INVALID_WORK_GROUP_SIZE
		}
	}
	args := make([]KernelArg, k.numArgs)
	for ii := range args {
		arg, found := k.args[ii]
		if !found {
			f.call(name)
			return clapi.CL_INVALID_KERNEL_ARGS
		}
		args[ii] = arg
	}
	fn := f.kernels[k.kernelName]
	global = append([]int(nil), global...)
	return f.enqueue(name, queue, clapi.CL_COMMAND_NDRANGE_KERNEL, false, wait, event, func() clapi.Status {
		if fn != nil {
			fn(global, args)
		}
		return clapi.CL_SUCCESS
	})
}
