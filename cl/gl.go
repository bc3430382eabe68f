package cl

import (
	"encoding/binary"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// OpenGL interoperability (cl_khr_gl_sharing). The context must have been created sharing an OpenGL context,
// which is outside the scope of this package.

// CreateFromGLBuffer creates a buffer sharing the OpenGL buffer object glBuffer.
func (c *Context) CreateFromGLBuffer(flags clapi.MemFlags, glBuffer uint32) (*Buffer, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	proc, err := c.ext.Proc("clCreateFromGLBuffer")
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateFromGLBuffer(proc, c.handle, flags, glBuffer)
	if err := nativeError("clCreateFromGLBuffer", st); err != nil {
		return nil, err
	}
	size, err := c.lib.memSize(h)
	if err != nil {
		c.lib.api.Release(clapi.ClassMem, h)
		return nil, errors.WithMessage(err, "querying size of OpenGL buffer")
	}
	return newBuffer(&c.base, h, size, 0, flags, MarkGLBuffer)
}

// CreateFromGLTexture creates an image sharing an OpenGL texture.
func (c *Context) CreateFromGLTexture(flags clapi.MemFlags, target uint32, mipLevel int32, texture uint32) (*Image, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	proc, err := c.ext.Proc("clCreateFromGLTexture")
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateFromGLTexture(proc, c.handle, flags, target, mipLevel, texture)
	if err := nativeError("clCreateFromGLTexture", st); err != nil {
		return nil, err
	}
	format, desc := c.lib.glImageInfo(h)
	return newImage(c, h, format, desc, MarkGLTexture)
}

// CreateFromGLRenderbuffer creates an image sharing an OpenGL renderbuffer.
func (c *Context) CreateFromGLRenderbuffer(flags clapi.MemFlags, renderbuffer uint32) (*Image, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	proc, err := c.ext.Proc("clCreateFromGLRenderbuffer")
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateFromGLRenderbuffer(proc, c.handle, flags, renderbuffer)
	if err := nativeError("clCreateFromGLRenderbuffer", st); err != nil {
		return nil, err
	}
	format, desc := c.lib.glImageInfo(h)
	return newImage(c, h, format, desc, MarkGLRenderbuffer)
}

// glImageInfo queries the format and dimensions of an image created from an OpenGL object. If the runtime can't
// report them they are left zero, and region checks are left to the runtime.
func (l *Library) glImageInfo(h clapi.Handle) (format clapi.ImageFormat, desc clapi.ImageDesc) {
	memType, err := l.infoUint32(clapi.ClassMem, h, clapi.CL_MEM_TYPE)
	if err == nil {
		var buf []byte
		buf, err = l.imageInfoBytes(h, clapi.CL_IMAGE_FORMAT)
		if err == nil && len(buf) != 8 {
			err = internalErrorf("image format of %s has %d bytes, expected 8", h, len(buf))
		}
		if err == nil {
			format.ChannelOrder = binary.NativeEndian.Uint32(buf)
			format.ChannelType = binary.NativeEndian.Uint32(buf[4:])
		}
	}
	dims := [...]struct {
		param uint32
		value *int
	}{
		{clapi.CL_IMAGE_WIDTH, &desc.Width},
		{clapi.CL_IMAGE_HEIGHT, &desc.Height},
		{clapi.CL_IMAGE_DEPTH, &desc.Depth},
		{clapi.CL_IMAGE_ARRAY_SIZE, &desc.ArraySize},
	}
	for _, dim := range dims {
		if err != nil {
			break
		}
		var buf []byte
		buf, err = l.imageInfoBytes(h, dim.param)
		if err == nil && len(buf) != 8 {
			err = internalErrorf("image parameter 0x%x of %s has %d bytes, expected 8", dim.param, h, len(buf))
		}
		if err == nil {
			*dim.value = int(binary.NativeEndian.Uint64(buf))
		}
	}
	if err != nil {
		klog.Warningf("Failed to query the format of OpenGL image %s, dimensions are unknown: %v", h, err)
		return clapi.ImageFormat{}, clapi.ImageDesc{}
	}
	desc.Type = memType
	return format, desc
}

// imageInfoBytes is infoBytes for clGetImageInfo.
func (l *Library) imageInfoBytes(h clapi.Handle, param uint32) ([]byte, error) {
	size, st := l.api.GetImageInfo(h, param, nil)
	if err := nativeError("clGetImageInfo", st); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if size > 0 {
		_, st = l.api.GetImageInfo(h, param, buf)
		if err := nativeError("clGetImageInfo", st); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// AcquireGLObjects acquires the OpenGL shared memory objects for use by the commands of the queue.
func (q *Queue) AcquireGLObjects(mems []Wrapper, wait []*Event, withEvent bool) (*Event, error) {
	return q.glObjects("clEnqueueAcquireGLObjects", mems, wait, withEvent)
}

// ReleaseGLObjects releases the OpenGL shared memory objects back to OpenGL.
func (q *Queue) ReleaseGLObjects(mems []Wrapper, wait []*Event, withEvent bool) (*Event, error) {
	return q.glObjects("clEnqueueReleaseGLObjects", mems, wait, withEvent)
}

func (q *Queue) glObjects(op string, mems []Wrapper, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	handles, err := memHandles(mems)
	if err != nil {
		return nil, err
	}
	for ii, w := range mems {
		if !w.record().Marks().HasAny(MarkGLBuffer | MarkGLTexture | MarkGLRenderbuffer) {
			return nil, errors.Wrapf(ErrValue, "memory object #%d (%s) was not created from an OpenGL object", ii, w)
		}
	}
	proc, err := q.ext.Proc(op)
	if err != nil {
		return nil, err
	}
	return q.submit(op, wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		if op == "clEnqueueAcquireGLObjects" {
			return q.lib.api.EnqueueAcquireGLObjects(proc, q.handle, handles, waitHandles, event)
		}
		return q.lib.api.EnqueueReleaseGLObjects(proc, q.handle, handles, waitHandles, event)
	})
}
