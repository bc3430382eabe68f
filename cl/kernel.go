package cl

import (
	"unsafe"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Kernel is a function of a built Program, with its arguments. Kernels are destroyed with their program.
type Kernel struct {
	base
}

func newKernel(program *base, h clapi.Handle) (*Kernel, error) {
	o := program.lib.newObject(h, KindKernel, program.Object, releaseAll)
	return bind(&Kernel{base: base{Object: o, up: program.Wrapper()}})
}

// Program the kernel was created from.
func (k *Kernel) Program() *Program {
	p, _ := k.Parent().(*Program)
	return p
}

// FunctionName returns the name of the kernel function.
func (k *Kernel) FunctionName() (string, error) {
	if err := k.alive(); err != nil {
		return "", err
	}
	return k.lib.infoString(clapi.ClassKernel, k.handle, clapi.CL_KERNEL_FUNCTION_NAME)
}

// NumArgs returns the number of arguments of the kernel function.
func (k *Kernel) NumArgs() (int, error) {
	if err := k.alive(); err != nil {
		return 0, err
	}
	n, err := k.lib.infoUint32(clapi.ClassKernel, k.handle, clapi.CL_KERNEL_NUM_ARGS)
	return int(n), err
}

// LocalMemory is a kernel argument that allocates that many bytes of local memory (a __local pointer argument).
type LocalMemory int

// SetArg sets the value of the argument at index.
//
// value can be a memory object (*Buffer, *Image or *Pipe), a *Sampler, a LocalMemory size, any of the scalar
// types of HostType, or a []byte with the raw bytes of a struct argument.
func (k *Kernel) SetArg(index int, value any) error {
	if err := k.alive(); err != nil {
		return err
	}
	switch v := value.(type) {
	case nil:
		return errors.Wrapf(ErrValue, "nil value for argument #%d of %s", index, k)
	case *Buffer, *Image, *Pipe, *Sampler:
		w := v.(Wrapper)
		if isNil(w) {
			return errors.Wrapf(ErrValue, "nil %T for argument #%d of %s", v, index, k)
		}
		if err := w.record().alive(); err != nil {
			return err
		}
		h := w.Raw()
		return k.setArg(index, handleSize, unsafe.Pointer(&h))
	case LocalMemory:
		if v <= 0 {
			return errors.Wrapf(ErrValue, "invalid local memory size %d for argument #%d", int(v), index)
		}
		return k.setArg(index, int(v), nil)
	case []byte:
		if len(v) == 0 {
			return errors.Wrapf(ErrEmpty, "empty bytes for argument #%d", index)
		}
		return k.setArg(index, len(v), unsafe.Pointer(&v[0]))
	case int8:
		return SetArgValue(k, index, v)
	case int16:
		return SetArgValue(k, index, v)
	case int32:
		return SetArgValue(k, index, v)
	case int64:
		return SetArgValue(k, index, v)
	case uint8:
		return SetArgValue(k, index, v)
	case uint16:
		return SetArgValue(k, index, v)
	case uint32:
		return SetArgValue(k, index, v)
	case uint64:
		return SetArgValue(k, index, v)
	case float32:
		return SetArgValue(k, index, v)
	case float64:
		return SetArgValue(k, index, v)
	case float16.Float16:
		return SetArgValue(k, index, v)
	case int:
		// OpenCL C int is 32 bits.
		if int(int32(v)) != v {
			return errors.Wrapf(ErrValue, "int value %d for argument #%d overflows a 32 bits int", v, index)
		}
		return SetArgValue(k, index, int32(v))
	}
	return errors.Wrapf(ErrValue, "unsupported kernel argument type %T for argument #%d of %s", value, index, k)
}

// SetArgValue sets a scalar argument of the kernel.
func SetArgValue[T HostType](k *Kernel, index int, value T) error {
	if err := k.alive(); err != nil {
		return err
	}
	return k.setArg(index, int(unsafe.Sizeof(value)), unsafe.Pointer(&value))
}

func (k *Kernel) setArg(index, size int, value unsafe.Pointer) error {
	if index < 0 {
		return errors.Wrapf(ErrValue, "invalid argument index %d", index)
	}
	st := k.lib.api.SetKernelArg(k.handle, uint32(index), size, value)
	if err := nativeError("clSetKernelArg", st); err != nil {
		return errors.WithMessagef(err, "argument #%d of %s", index, k)
	}
	return nil
}

// SetArgSVM sets a pointer argument to the given offset within a shared virtual memory region.
// It requires clSetKernelArgSVMPointer (OpenCL >= 2.0).
func (k *Kernel) SetArgSVM(index int, svm *SVM, offset int) error {
	if err := k.alive(); err != nil {
		return err
	}
	if svm == nil {
		return errors.Wrapf(ErrValue, "nil SVM region for argument #%d", index)
	}
	if err := svm.alive(); err != nil {
		return err
	}
	if err := checkBounds(svm.size, offset, 0); err != nil {
		return err
	}
	if index < 0 {
		return errors.Wrapf(ErrValue, "invalid argument index %d", index)
	}
	proc, err := k.ext.Proc("clSetKernelArgSVMPointer")
	if err != nil {
		return err
	}
	ptr := unsafe.Add(svm.ptr, offset)
	st := k.lib.api.SetKernelArgSVMPointer(proc, k.handle, uint32(index), ptr)
	return nativeError("clSetKernelArgSVMPointer", st)
}

// Clone creates a copy of the kernel, including its arguments. It requires clCloneKernel (OpenCL >= 2.1).
// The clone belongs to the same program.
func (k *Kernel) Clone() (*Kernel, error) {
	if err := k.alive(); err != nil {
		return nil, err
	}
	proc, err := k.ext.Proc("clCloneKernel")
	if err != nil {
		return nil, err
	}
	program, found := k.lib.registry.Lookup(k.parent)
	if !found {
		return nil, internalErrorf("program of %s is not registered", k)
	}
	h, st := k.lib.api.CloneKernel(proc, k.handle)
	if err := nativeError("clCloneKernel", st); err != nil {
		return nil, err
	}
	return newKernel(&base{Object: program, up: program.Wrapper()}, h)
}
