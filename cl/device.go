package cl

import (
	"strings"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Device is an OpenCL device, either enumerated from a platform, or a sub-device created by partitioning
// another device.
type Device struct {
	base
}

// newDevice creates the wrapper for a device owned by parent (a platform or, for sub-devices, a device).
func newDevice(lib *Library, h clapi.Handle, parent *base, marks Marks) (*Device, error) {
	var finalize func(*Object) error
	if marks.Has(MarkSubDevice) {
		// Root devices are not reference counted.
		finalize = releaseAll
	}
	o := lib.newObject(h, KindDevice, parent.Object, finalize)
	o.setMarks(marks)
	return bind(&Device{base: base{Object: o, up: parent.Wrapper()}})
}

// Platform returns the platform of the device.
func (d *Device) Platform() *Platform {
	p, _ := d.ancestor(KindPlatform).Wrapper().(*Platform)
	return p
}

// ParentDevice returns the device this sub-device was partitioned from, or nil for root devices.
func (d *Device) ParentDevice() *Device {
	if !d.Marks().Has(MarkSubDevice) {
		return nil
	}
	parent, _ := d.Parent().(*Device)
	return parent
}

// InfoString returns a string parameter of the device (e.g. clapi.CL_DEVICE_NAME).
func (d *Device) InfoString(param uint32) (string, error) {
	if err := d.alive(); err != nil {
		return "", err
	}
	return d.lib.infoString(clapi.ClassDevice, d.handle, param)
}

// InfoUint32 returns a cl_uint parameter of the device (e.g. clapi.CL_DEVICE_MAX_COMPUTE_UNITS).
func (d *Device) InfoUint32(param uint32) (uint32, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	return d.lib.infoUint32(clapi.ClassDevice, d.handle, param)
}

// InfoUint64 returns a cl_ulong or size_t parameter of the device (e.g. clapi.CL_DEVICE_GLOBAL_MEM_SIZE).
func (d *Device) InfoUint64(param uint32) (uint64, error) {
	if err := d.alive(); err != nil {
		return 0, err
	}
	return d.lib.infoUint64(clapi.ClassDevice, d.handle, param)
}

// Name of the device.
func (d *Device) Name() (string, error) { return d.InfoString(clapi.CL_DEVICE_NAME) }

// Version of OpenCL supported by the device.
func (d *Device) Version() (string, error) { return d.InfoString(clapi.CL_DEVICE_VERSION) }

// Type of the device.
func (d *Device) Type() (clapi.DeviceType, error) {
	t, err := d.InfoUint64(clapi.CL_DEVICE_TYPE)
	return clapi.DeviceType(t), err
}

// GlobalMemSize returns the size of the device global memory, in bytes.
func (d *Device) GlobalMemSize() (uint64, error) { return d.InfoUint64(clapi.CL_DEVICE_GLOBAL_MEM_SIZE) }

// MaxComputeUnits returns the number of parallel compute units of the device.
func (d *Device) MaxComputeUnits() (uint32, error) {
	return d.InfoUint32(clapi.CL_DEVICE_MAX_COMPUTE_UNITS)
}

// ExtensionNames returns the list of extensions supported by the device.
func (d *Device) ExtensionNames() ([]string, error) {
	exts, err := d.InfoString(clapi.CL_DEVICE_EXTENSIONS)
	if err != nil {
		return nil, err
	}
	return strings.Fields(exts), nil
}

// BuiltInKernels returns the names of the built-in kernels of the device, see
// Context.CreateProgramWithBuiltInKernels.
func (d *Device) BuiltInKernels() ([]string, error) {
	names, err := d.InfoString(clapi.CL_DEVICE_BUILT_IN_KERNELS)
	if err != nil || names == "" {
		return nil, err
	}
	return strings.Split(names, ";"), nil
}

// CreateSubDevices partitions the device. The properties follow cl_device_partition_property, without the
// terminating 0, e.g.: CreateSubDevices(clapi.CL_DEVICE_PARTITION_EQUALLY, 2).
//
// Sub-devices are destroyed with the device they were created from.
func (d *Device) CreateSubDevices(properties ...int64) ([]*Device, error) {
	if err := d.alive(); err != nil {
		return nil, err
	}
	if len(properties) == 0 {
		return nil, errors.Wrap(ErrEmpty, "CreateSubDevices requires partition properties")
	}
	properties = append(properties, 0)
	const op = "clCreateSubDevices"
	count, st := d.lib.api.CreateSubDevices(d.handle, properties, nil)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	handles := make([]clapi.Handle, count)
	count, st = d.lib.api.CreateSubDevices(d.handle, properties, handles)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	handles = handles[:min(count, len(handles))]
	d.setMarks(MarkHasSubDevices)
	subDevices := make([]*Device, 0, len(handles))
	for ii, h := range handles {
		sub, err := newDevice(d.lib, h, &d.base, MarkSubDevice)
		if err != nil {
			// Sub-devices are all or nothing: the ones already wrapped are destroyed, the others released.
			for _, sub := range subDevices {
				if destroyErr := sub.Destroy(); destroyErr != nil {
					klog.Errorf("Failed to destroy %s: %+v", sub, destroyErr)
				}
			}
			for _, h := range handles[ii:] {
				if st := d.lib.api.Release(clapi.ClassDevice, h); st != clapi.CL_SUCCESS {
					klog.Errorf("Failed to release sub-device %s of %s: %v", h, d, nativeError("clReleaseDevice", st))
				}
			}
			return nil, err
		}
		subDevices = append(subDevices, sub)
	}
	return subDevices, nil
}
