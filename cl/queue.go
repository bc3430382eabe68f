package cl

import (
	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Queue is an OpenCL command queue. All enqueue operations are methods of Queue.
//
// When destroyed, the queue is finished (all its commands complete) before it is released.
type Queue struct {
	base
	device *Device
}

// QueueConfig is created with Context.NewQueue, configured with its methods, and the queue is created with Done.
type QueueConfig struct {
	ctx        *Context
	device     *Device
	properties uint64
	err        error
}

// NewQueue starts the configuration of a new command queue for the given device of the context.
// Call Done to create it.
func (c *Context) NewQueue(device *Device) *QueueConfig {
	cfg := &QueueConfig{ctx: c, device: device}
	if device == nil {
		cfg.err = errors.Wrap(ErrValue, "NewQueue requires a device")
	}
	return cfg
}

// OutOfOrder enables out-of-order execution: commands are only ordered by their wait lists.
func (cfg *QueueConfig) OutOfOrder() *QueueConfig {
	cfg.properties |= clapi.QueueOutOfOrderExecModeEnable
	return cfg
}

// Profiling enables the collection of profiling information for the events of the queue.
func (cfg *QueueConfig) Profiling() *QueueConfig {
	cfg.properties |= clapi.QueueProfilingEnable
	return cfg
}

// Done creates the queue.
// It uses clCreateCommandQueueWithProperties when available, and clCreateCommandQueue otherwise.
func (cfg *QueueConfig) Done() (*Queue, error) {
	if cfg.err != nil {
		return nil, cfg.err
	}
	c := cfg.ctx
	if err := c.alive(); err != nil {
		return nil, err
	}
	if err := cfg.device.alive(); err != nil {
		return nil, err
	}
	var h clapi.Handle
	var st clapi.Status
	var op string
	if proc, err := c.ext.Proc("clCreateCommandQueueWithProperties"); err == nil {
		op = "clCreateCommandQueueWithProperties"
		properties := []uint64{uint64(clapi.CL_QUEUE_PROPERTIES), cfg.properties, 0}
		h, st = c.lib.api.CreateCommandQueueWithProperties(proc, c.handle, cfg.device.handle, properties)
	} else {
		op = "clCreateCommandQueue"
		h, st = c.lib.api.CreateCommandQueue(c.handle, cfg.device.handle, cfg.properties)
	}
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	o := c.lib.newObject(h, KindQueue, c.Object, finalizeQueue)
	return bind(&Queue{base: base{Object: o, up: c}, device: cfg.device})
}

// finalizeQueue waits for the pending commands before releasing the queue.
func finalizeQueue(o *Object) error {
	if err := nativeError("clFinish", o.lib.api.Finish(o.handle)); err != nil {
		klog.Errorf("Failed to finish %s before releasing it: %+v", o, err)
	}
	return releaseAll(o)
}

// Context of the queue.
func (q *Queue) Context() *Context {
	c, _ := q.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// Device of the queue.
func (q *Queue) Device() *Device { return q.device }

// Properties returns the properties the queue was created with (clapi.QueueOutOfOrderExecModeEnable,
// clapi.QueueProfilingEnable).
func (q *Queue) Properties() (uint64, error) {
	if err := q.alive(); err != nil {
		return 0, err
	}
	return q.lib.infoUint64(clapi.ClassCommandQueue, q.handle, clapi.CL_QUEUE_PROPERTIES)
}

// DefaultDeviceQueue returns the default device queue of the queue's device (see SetAsDefault), or nil if there is
// none or if it was not created by this library. It requires OpenCL >= 2.1.
func (q *Queue) DefaultDeviceQueue() (*Queue, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	h, err := q.lib.infoHandle(clapi.ClassCommandQueue, q.handle, clapi.CL_QUEUE_DEVICE_DEFAULT)
	if err != nil || h == 0 {
		return nil, err
	}
	defaultQueue, _, err := lookupWrapper[*Queue](q.lib, h)
	return defaultQueue, err
}

// Flush issues all the commands enqueued so far to the device. It doesn't wait for them.
func (q *Queue) Flush() error {
	if err := q.alive(); err != nil {
		return err
	}
	return nativeError("clFlush", q.lib.api.Flush(q.handle))
}

// Finish blocks until all the commands enqueued so far have completed.
func (q *Queue) Finish() error {
	if err := q.alive(); err != nil {
		return err
	}
	return nativeError("clFinish", q.lib.api.Finish(q.handle))
}

// SetAsDefault makes this (device side) queue the default queue of its device in the context.
// It requires clSetDefaultDeviceCommandQueue (OpenCL >= 2.1).
func (q *Queue) SetAsDefault() error {
	if err := q.alive(); err != nil {
		return err
	}
	proc, err := q.ext.Proc("clSetDefaultDeviceCommandQueue")
	if err != nil {
		return err
	}
	st := q.lib.api.SetDefaultDeviceCommandQueue(proc, q.parent, q.device.handle, q.handle)
	return nativeError("clSetDefaultDeviceCommandQueue", st)
}
