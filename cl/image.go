package cl

import (
	"fmt"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Image is an OpenCL image memory object (1D, 2D or 3D, possibly arrays), or an image created from an OpenGL
// texture or renderbuffer.
type Image struct {
	base
	format clapi.ImageFormat
	desc   clapi.ImageDesc
}

func newImage(c *Context, h clapi.Handle, format clapi.ImageFormat, desc clapi.ImageDesc, marks Marks) (*Image, error) {
	o := c.lib.newObject(h, KindImage, c.Object, releaseAll)
	o.setMarks(marks)
	img, err := bind(&Image{base: base{Object: o, up: c}, format: format, desc: desc})
	if err != nil {
		return nil, err
	}
	watchMemObject(o)
	return img, nil
}

// CreateImage creates an image with the given format and description. If host is not nil, the image is
// initialized with a copy of it (flags must then include clapi.MemCopyHostPtr or clapi.MemUseHostPtr).
func (c *Context) CreateImage(flags clapi.MemFlags, format clapi.ImageFormat, desc clapi.ImageDesc, host []byte) (*Image, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if desc.Width <= 0 {
		return nil, errors.Wrapf(ErrValue, "invalid image width %d", desc.Width)
	}
	if len(host) > 0 && flags&(clapi.MemCopyHostPtr|clapi.MemUseHostPtr) == 0 {
		flags |= clapi.MemCopyHostPtr
	}
	h, st := c.lib.api.CreateImage(c.handle, flags, format, desc, clapi.BytePointer(host))
	if err := nativeError("clCreateImage", st); err != nil {
		return nil, err
	}
	return newImage(c, h, format, desc, 0)
}

// Format of the image.
func (img *Image) Format() clapi.ImageFormat { return img.format }

// Desc returns the description the image was created with. It's zero for images created from OpenGL objects.
func (img *Image) Desc() clapi.ImageDesc { return img.desc }

// Context of the image.
func (img *Image) Context() *Context {
	c, _ := img.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// String implements fmt.Stringer.
func (img *Image) String() string {
	return fmt.Sprintf("%s[%dx%dx%d]", img.Object, img.desc.Width, max(img.desc.Height, 1), max(img.desc.Depth, 1))
}

// PixelSize returns the size in bytes of one pixel of the given format, or 0 if the format is not known.
func PixelSize(format clapi.ImageFormat) int {
	var channels int
	switch format.ChannelOrder {
	case clapi.CL_R:
		channels = 1
	case clapi.CL_RG:
		channels = 2
	case clapi.CL_RGBA:
		channels = 4
	default:
		return 0
	}
	switch format.ChannelType {
	case clapi.CL_UNORM_INT8, clapi.CL_UNSIGNED_INT8:
		return channels
	case clapi.CL_HALF_FLOAT:
		return 2 * channels
	case clapi.CL_SIGNED_INT32, clapi.CL_UNSIGNED_INT32, clapi.CL_FLOAT:
		return 4 * channels
	}
	return 0
}

// checkRegion validates origin and region against the image dimensions (when known).
func (img *Image) checkRegion(origin, region [3]int) error {
	dims := [3]int{img.desc.Width, max(img.desc.Height, 1), max(img.desc.Depth, 1)}
	if img.desc.Width == 0 {
		// Dimensions unknown (OpenGL images): left to the runtime.
		dims = [3]int{-1, -1, -1}
	}
	for axis := range 3 {
		if origin[axis] < 0 || region[axis] <= 0 {
			return errors.Wrapf(ErrBoundaries, "invalid origin %v / region %v for %s", origin, region, img)
		}
		if dims[axis] > 0 && region[axis] > dims[axis]-origin[axis] {
			return errors.Wrapf(ErrBoundaries, "origin %v + region %v out of %s", origin, region, img)
		}
	}
	return nil
}
