package cl

import (
	"encoding/binary"
	"strings"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Program is an OpenCL program: created from source, binaries or IL (SPIR-V), and built for the devices of its
// context. Kernels are created from built programs, and they are destroyed with it.
type Program struct {
	base
}

func newProgram(c *Context, h clapi.Handle) (*Program, error) {
	o := c.lib.newObject(h, KindProgram, c.Object, releaseAll)
	return bind(&Program{base: base{Object: o, up: c}})
}

// CreateProgramWithSource creates a program from OpenCL C source code. It must be built before use.
func (c *Context) CreateProgramWithSource(source string) (*Program, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if source == "" {
		return nil, errors.Wrap(ErrEmpty, "empty program source")
	}
	h, st := c.lib.api.CreateProgramWithSource(c.handle, source)
	if err := nativeError("clCreateProgramWithSource", st); err != nil {
		return nil, err
	}
	return newProgram(c, h)
}

// CreateProgramWithBinary creates a program from device specific binaries, one per device.
func (c *Context) CreateProgramWithBinary(devices []*Device, binaries [][]byte) (*Program, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrEmpty, "CreateProgramWithBinary requires at least one device")
	}
	if len(devices) != len(binaries) {
		return nil, errors.Wrapf(ErrLength, "%d devices given, but %d binaries", len(devices), len(binaries))
	}
	for ii, binary := range binaries {
		if len(binary) == 0 {
			return nil, errors.Wrapf(ErrEmpty, "binary #%d is empty", ii)
		}
	}
	handles, err := rawHandles(devices)
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateProgramWithBinary(c.handle, handles, binaries)
	if err := nativeError("clCreateProgramWithBinary", st); err != nil {
		return nil, err
	}
	return newProgram(c, h)
}

// CreateProgramWithIL creates a program from an intermediate language (e.g. SPIR-V) module.
// It requires clCreateProgramWithIL (OpenCL >= 2.1).
func (c *Context) CreateProgramWithIL(il []byte) (*Program, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if len(il) == 0 {
		return nil, errors.Wrap(ErrEmpty, "empty IL")
	}
	proc, err := c.ext.Proc("clCreateProgramWithIL")
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateProgramWithIL(proc, c.handle, il)
	if err := nativeError("clCreateProgramWithIL", st); err != nil {
		return nil, err
	}
	return newProgram(c, h)
}

// CreateProgramWithBuiltInKernels creates a program with the named built-in kernels of the devices (see
// Device.BuiltInKernels). It needs no build.
func (c *Context) CreateProgramWithBuiltInKernels(devices []*Device, names ...string) (*Program, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrEmpty, "CreateProgramWithBuiltInKernels requires at least one device")
	}
	if len(names) == 0 {
		return nil, errors.Wrap(ErrEmpty, "CreateProgramWithBuiltInKernels requires at least one kernel name")
	}
	handles, err := rawHandles(devices)
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateProgramWithBuiltInKernels(c.handle, handles, strings.Join(names, ";"))
	if err := nativeError("clCreateProgramWithBuiltInKernels", st); err != nil {
		return nil, errors.WithMessagef(err, "built-in kernels %q", names)
	}
	return newProgram(c, h)
}

// LinkProgram links compiled programs (see Program.Compile) and libraries into a new program of the context, for
// the given devices or for all devices of the context if none is given. With the "-create-library" option the new
// program is a library, which can be linked again.
//
// The linked programs are not modified, and they can be destroyed independently of the new program.
func (c *Context) LinkProgram(options string, programs []*Program, devices ...*Device) (*Program, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return nil, errors.Wrap(ErrEmpty, "LinkProgram requires at least one program")
	}
	programHandles := make([]clapi.Handle, len(programs))
	for ii, p := range programs {
		if p == nil {
			return nil, errors.Wrapf(ErrValue, "program #%d is nil", ii)
		}
		if err := p.alive(); err != nil {
			return nil, err
		}
		if p.parent != c.handle {
			return nil, errors.Wrapf(ErrValue, "%s is not a program of %s", p, c)
		}
		programHandles[ii] = p.handle
	}
	handles, err := rawHandles(devices)
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.LinkProgram(c.handle, handles, options, programHandles)
	err = nativeError("clLinkProgram", st)
	if err == nil {
		return newProgram(c, h)
	}
	if h != 0 {
		// The runtime may return the failed program, only to retrieve its logs.
		failed, wrapErr := newProgram(c, h)
		if wrapErr != nil {
			return nil, errors.WithMessagef(err, "wrapping failed program: %v", wrapErr)
		}
		err = failed.appendBuildLogs(err, devices)
		if destroyErr := failed.Destroy(); destroyErr != nil {
			klog.Errorf("Failed to destroy %s: %+v", failed, destroyErr)
		}
	}
	return nil, err
}

// Context of the program.
func (p *Program) Context() *Context {
	c, _ := p.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// Build compiles and links the program for the given devices, or for all devices of the context if none is given.
// On failure, the build logs of the devices are included in the error.
func (p *Program) Build(options string, devices ...*Device) error {
	if err := p.alive(); err != nil {
		return err
	}
	handles, err := rawHandles(devices)
	if err != nil {
		return err
	}
	err = nativeError("clBuildProgram", p.lib.api.BuildProgram(p.handle, handles, options))
	if err == nil {
		return nil
	}
	return p.appendBuildLogs(err, devices)
}

// Header is a program whose source is included by another program when compiling it.
type Header struct {
	// Name used in the "#include" directives.
	Name    string
	Program *Program
}

// Compile compiles the program source without linking it, for the given devices or all devices of the context if
// none is given. The "#include" directives of the source are resolved with the headers. Compiled programs are
// linked into executables with Context.LinkProgram.
//
// On failure, the compile logs of the devices are included in the error.
func (p *Program) Compile(options string, headers []Header, devices ...*Device) error {
	if err := p.alive(); err != nil {
		return err
	}
	headerHandles := make([]clapi.Handle, len(headers))
	headerNames := make([]string, len(headers))
	for ii, header := range headers {
		if header.Name == "" {
			return errors.Wrapf(ErrValue, "header #%d has no name", ii)
		}
		if header.Program == nil {
			return errors.Wrapf(ErrValue, "header %q has no program", header.Name)
		}
		if err := header.Program.alive(); err != nil {
			return errors.WithMessagef(err, "header %q", header.Name)
		}
		headerHandles[ii] = header.Program.handle
		headerNames[ii] = header.Name
	}
	handles, err := rawHandles(devices)
	if err != nil {
		return err
	}
	st := p.lib.api.CompileProgram(p.handle, handles, options, headerHandles, headerNames)
	if err = nativeError("clCompileProgram", st); err == nil {
		return nil
	}
	return p.appendBuildLogs(err, devices)
}

// appendBuildLogs adds the non-empty build logs of the devices (all devices of the context if none is given) to err.
func (p *Program) appendBuildLogs(err error, devices []*Device) error {
	if len(devices) == 0 {
		if c := p.Context(); c != nil {
			devices, _ = c.Devices()
		}
	}
	for _, d := range devices {
		buildLog, logErr := p.BuildLog(d)
		if logErr != nil {
			klog.Warningf("Failed to retrieve build log of %s for %s: %v", p, d, logErr)
			continue
		}
		if buildLog = strings.TrimSpace(buildLog); buildLog != "" {
			err = errors.WithMessagef(err, "build log for %s:\n%s\n", d, buildLog)
		}
	}
	return err
}

// BinaryType returns what the program holds for the device: one of clapi.CL_PROGRAM_BINARY_TYPE_NONE,
// CL_PROGRAM_BINARY_TYPE_COMPILED_OBJECT, CL_PROGRAM_BINARY_TYPE_LIBRARY or CL_PROGRAM_BINARY_TYPE_EXECUTABLE.
func (p *Program) BinaryType(device *Device) (uint32, error) {
	buf, err := p.buildInfo(device, clapi.CL_PROGRAM_BINARY_TYPE)
	if err != nil {
		return 0, err
	}
	if len(buf) != 4 {
		return 0, internalErrorf("binary type of %s has %d bytes, expected 4", p, len(buf))
	}
	return binary.NativeEndian.Uint32(buf), nil
}

// SetSpecializationConstant sets the value of a specialization constant of a program created from IL, before it
// is built. It requires clSetProgramSpecializationConstant (OpenCL >= 2.2).
func (p *Program) SetSpecializationConstant(specID uint32, value []byte) error {
	if err := p.alive(); err != nil {
		return err
	}
	if len(value) == 0 {
		return errors.Wrapf(ErrEmpty, "empty value for specialization constant %d", specID)
	}
	proc, err := p.ext.Proc("clSetProgramSpecializationConstant")
	if err != nil {
		return err
	}
	st := p.lib.api.SetProgramSpecializationConstant(proc, p.handle, specID, value)
	return nativeError("clSetProgramSpecializationConstant", st)
}

// SetSpecializationConstantValue sets a specialization constant from a Go value.
func SetSpecializationConstantValue[T HostType](p *Program, specID uint32, value T) error {
	return p.SetSpecializationConstant(specID, asBytes([]T{value}))
}

// BuildLog returns the log of the last build (or compile) of the program for the device.
func (p *Program) BuildLog(device *Device) (string, error) {
	buf, err := p.buildInfo(device, clapi.CL_PROGRAM_BUILD_LOG)
	if err != nil {
		return "", err
	}
	return cString(buf), nil
}

// buildInfo queries a clGetProgramBuildInfo parameter with the two-call protocol.
func (p *Program) buildInfo(device *Device, param uint32) ([]byte, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errors.Wrap(ErrValue, "nil device")
	}
	if err := device.alive(); err != nil {
		return nil, err
	}
	const op = "clGetProgramBuildInfo"
	size, st := p.lib.api.GetProgramBuildInfo(p.handle, device.handle, param, nil)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	if _, st = p.lib.api.GetProgramBuildInfo(p.handle, device.handle, param, buf); st != clapi.CL_SUCCESS {
		return nil, nativeError(op, st)
	}
	return buf, nil
}

// KernelNames returns the names of the kernels of a built program.
func (p *Program) KernelNames() ([]string, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	names, err := p.lib.infoString(clapi.ClassProgram, p.handle, clapi.CL_PROGRAM_KERNEL_NAMES)
	if err != nil {
		return nil, err
	}
	if names == "" {
		return nil, nil
	}
	return strings.Split(names, ";"), nil
}

// CreateKernel creates the kernel for the named function of the built program.
func (p *Program) CreateKernel(name string) (*Kernel, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.Wrap(ErrValue, "empty kernel name")
	}
	h, st := p.lib.api.CreateKernel(p.handle, name)
	if err := nativeError("clCreateKernel", st); err != nil {
		return nil, errors.WithMessagef(err, "kernel %q", name)
	}
	return newKernel(&p.base, h)
}

// CreateKernels creates kernels for all the functions of the built program. Kernels already wrapped are reused.
func (p *Program) CreateKernels() ([]*Kernel, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	const op = "clCreateKernelsInProgram"
	count, st := p.lib.api.CreateKernelsInProgram(p.handle, nil)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	handles := make([]clapi.Handle, count)
	count, st = p.lib.api.CreateKernelsInProgram(p.handle, handles)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	handles = handles[:min(count, len(handles))]
	kernels := make([]*Kernel, 0, len(handles))
	for _, h := range handles {
		k, found, err := lookupWrapper[*Kernel](p.lib, h)
		if err != nil {
			return nil, err
		}
		if found {
			kernels = append(kernels, k)
			continue
		}
		k, err = newKernel(&p.base, h)
		if err != nil {
			return nil, err
		}
		kernels = append(kernels, k)
	}
	return kernels, nil
}
