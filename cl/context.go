package cl

import (
	"github.com/gomlx/gocl/clapi"
)

// Context is an OpenCL context: it owns the queues, memory objects, programs, samplers and events created in it,
// and they are all destroyed with it.
type Context struct {
	base
}

func newContext(p *Platform, h clapi.Handle) (*Context, error) {
	o := p.lib.newObject(h, KindContext, p.Object, releaseAll)
	return bind(&Context{base: base{Object: o, up: p}})
}

// Platform of the context.
func (c *Context) Platform() *Platform {
	p, _ := c.ancestor(KindPlatform).Wrapper().(*Platform)
	return p
}

// Devices returns the devices of the context. Devices not yet wrapped are wrapped as devices of the context's
// platform.
func (c *Context) Devices() ([]*Device, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	handles, err := c.lib.infoHandles(clapi.ClassContext, c.handle, clapi.CL_CONTEXT_DEVICES)
	if err != nil {
		return nil, err
	}
	platform := c.Platform()
	if platform == nil {
		return nil, internalErrorf("%s has no platform", c)
	}
	devices := make([]*Device, 0, len(handles))
	for _, h := range handles {
		d, err := platform.deviceFor(h)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// CreateUserEvent creates an event whose status is controlled by the host with Event.SetUserStatus.
func (c *Context) CreateUserEvent() (*Event, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateUserEvent(c.handle)
	if err := nativeError("clCreateUserEvent", st); err != nil {
		return nil, err
	}
	return newEvent(&c.base, h)
}
