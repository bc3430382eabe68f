package cl

import (
	"reflect"
	"strings"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Platform is an OpenCL platform (an installed driver/ICD). It's the root of the objects hierarchy: its contexts
// and devices are destroyed with it.
type Platform struct {
	base
}

func newPlatform(lib *Library, h clapi.Handle) (*Platform, error) {
	o := lib.newObject(h, KindPlatform, nil, nil)
	return bind(&Platform{base: base{Object: o}})
}

// platformFor returns the existing wrapper for the platform handle, or creates one.
func (l *Library) platformFor(h clapi.Handle) (*Platform, error) {
	if p, found, err := lookupWrapper[*Platform](l, h); found || err != nil {
		return p, err
	}
	return newPlatform(l, h)
}

// Info returns a string parameter of the platform (e.g. clapi.CL_PLATFORM_NAME).
func (p *Platform) Info(param uint32) (string, error) {
	if err := p.alive(); err != nil {
		return "", err
	}
	return p.lib.infoString(clapi.ClassPlatform, p.handle, param)
}

// Name of the platform.
func (p *Platform) Name() (string, error) { return p.Info(clapi.CL_PLATFORM_NAME) }

// Vendor of the platform.
func (p *Platform) Vendor() (string, error) { return p.Info(clapi.CL_PLATFORM_VENDOR) }

// Version of OpenCL supported by the platform, e.g. "OpenCL 3.0 CUDA 12.2.148".
func (p *Platform) Version() (string, error) { return p.Info(clapi.CL_PLATFORM_VERSION) }

// ExtensionNames returns the list of extensions supported by the platform.
func (p *Platform) ExtensionNames() ([]string, error) {
	exts, err := p.Info(clapi.CL_PLATFORM_EXTENSIONS)
	if err != nil {
		return nil, err
	}
	return strings.Fields(exts), nil
}

// GetDevices enumerates the devices of the given type. Devices already wrapped are reused.
func (p *Platform) GetDevices(deviceType clapi.DeviceType) ([]*Device, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	const op = "clGetDeviceIDs"
	count, st := p.lib.api.GetDeviceIDs(p.handle, deviceType, nil)
	if st == clapi.CL_SUCCESS && count == 0 {
		st = clapi.CL_DEVICE_NOT_FOUND
	}
	if err := nativeError(op, st); err != nil {
		return nil, errors.WithMessagef(err, "listing devices of type 0x%x of %s", uint64(deviceType), p)
	}
	handles := make([]clapi.Handle, count)
	count, st = p.lib.api.GetDeviceIDs(p.handle, deviceType, handles)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	handles = handles[:min(count, len(handles))]
	devices := make([]*Device, 0, len(handles))
	for _, h := range handles {
		d, err := p.deviceFor(h)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// deviceFor returns the wrapper of a (root) device of the platform, creating it if needed.
func (p *Platform) deviceFor(h clapi.Handle) (*Device, error) {
	if d, found, err := lookupWrapper[*Device](p.lib, h); found || err != nil {
		return d, err
	}
	return newDevice(p.lib, h, &p.base, 0)
}

// CreateContext creates a context for the given devices of the platform.
func (p *Platform) CreateContext(devices ...*Device) (*Context, error) {
	if err := p.alive(); err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, errors.Wrap(ErrEmpty, "CreateContext requires at least one device")
	}
	handles, err := rawHandles(devices)
	if err != nil {
		return nil, err
	}
	properties := []int64{clapi.CL_CONTEXT_PLATFORM, int64(p.handle), 0}
	h, st := p.lib.api.CreateContext(properties, handles)
	if err := nativeError("clCreateContext", st); err != nil {
		return nil, err
	}
	return newContext(p, h)
}

// UnloadCompiler hints the platform that the compiler resources can be released.
func (p *Platform) UnloadCompiler() error {
	if err := p.alive(); err != nil {
		return err
	}
	return nativeError("clUnloadPlatformCompiler", p.lib.api.UnloadPlatformCompiler(p.handle))
}

// rawHandles returns the handles of the given live wrappers.
func rawHandles[W Wrapper](wrappers []W) ([]clapi.Handle, error) {
	handles := make([]clapi.Handle, len(wrappers))
	for ii, w := range wrappers {
		if isNil(w) {
			return nil, errors.Wrapf(ErrValue, "nil object in position %d", ii)
		}
		if err := w.record().alive(); err != nil {
			return nil, err
		}
		handles[ii] = w.Raw()
	}
	return handles, nil
}

// isNil returns whether w is nil or a nil pointer to a wrapper.
func isNil(w Wrapper) bool {
	if w == nil {
		return true
	}
	v := reflect.ValueOf(w)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
