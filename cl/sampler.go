package cl

import (
	"github.com/gomlx/gocl/clapi"
)

// Sampler describes how kernels read images.
type Sampler struct {
	base
}

// CreateSampler creates a sampler. addressing is one of clapi.CL_ADDRESS_*, and filter one of
// clapi.CL_FILTER_*.
func (c *Context) CreateSampler(normalizedCoords bool, addressing, filter uint32) (*Sampler, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreateSampler(c.handle, normalizedCoords, addressing, filter)
	if err := nativeError("clCreateSampler", st); err != nil {
		return nil, err
	}
	o := c.lib.newObject(h, KindSampler, c.Object, releaseAll)
	return bind(&Sampler{base: base{Object: o, up: c}})
}

// Context of the sampler.
func (s *Sampler) Context() *Context {
	c, _ := s.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// NormalizedCoords returns whether the image coordinates are normalized ([0, 1]).
func (s *Sampler) NormalizedCoords() (bool, error) {
	v, err := s.info(clapi.CL_SAMPLER_NORMALIZED_COORDS)
	return v != 0, err
}

// AddressingMode returns one of clapi.CL_ADDRESS_*.
func (s *Sampler) AddressingMode() (uint32, error) { return s.info(clapi.CL_SAMPLER_ADDRESSING_MODE) }

// FilterMode returns one of clapi.CL_FILTER_*.
func (s *Sampler) FilterMode() (uint32, error) { return s.info(clapi.CL_SAMPLER_FILTER_MODE) }

func (s *Sampler) info(param uint32) (uint32, error) {
	if err := s.alive(); err != nil {
		return 0, err
	}
	return s.lib.infoUint32(clapi.ClassSampler, s.handle, param)
}
