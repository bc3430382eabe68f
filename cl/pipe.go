package cl

import (
	"github.com/gomlx/gocl/clapi"
)

// Pipe is an OpenCL 2.0 pipe memory object: a FIFO of packets, only accessible by kernels.
type Pipe struct {
	base
	packetSize, maxPackets uint32
}

// CreatePipe creates a pipe of maxPackets packets of packetSize bytes each.
// It requires clCreatePipe (OpenCL >= 2.0).
func (c *Context) CreatePipe(flags clapi.MemFlags, packetSize, maxPackets uint32) (*Pipe, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	proc, err := c.ext.Proc("clCreatePipe")
	if err != nil {
		return nil, err
	}
	h, st := c.lib.api.CreatePipe(proc, c.handle, flags, packetSize, maxPackets)
	if err := nativeError("clCreatePipe", st); err != nil {
		return nil, err
	}
	o := c.lib.newObject(h, KindPipe, c.Object, releaseAll)
	p, err := bind(&Pipe{base: base{Object: o, up: c}, packetSize: packetSize, maxPackets: maxPackets})
	if err != nil {
		return nil, err
	}
	watchMemObject(o)
	return p, nil
}

// PacketSize in bytes.
func (p *Pipe) PacketSize() uint32 { return p.packetSize }

// MaxPackets is the capacity of the pipe.
func (p *Pipe) MaxPackets() uint32 { return p.maxPackets }
