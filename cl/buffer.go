package cl

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Buffer is an OpenCL buffer memory object, or a sub-buffer (a region of another buffer).
//
// The bindings keep its size, origin (for sub-buffers) and flags, to validate the boundaries of the transfers
// before calling the runtime.
type Buffer struct {
	base
	size, origin int
	flags        clapi.MemFlags
}

func newBuffer(owner *base, h clapi.Handle, size, origin int, flags clapi.MemFlags, marks Marks) (*Buffer, error) {
	o := owner.lib.newObject(h, KindBuffer, owner.Object, releaseAll)
	o.setMarks(marks)
	b, err := bind(&Buffer{base: base{Object: o, up: owner.Wrapper()}, size: size, origin: origin, flags: flags})
	if err != nil {
		return nil, err
	}
	watchMemObject(o)
	return b, nil
}

// BufferConfig is created with Context.NewBuffer, configured with its methods, and the buffer is created with Done.
type BufferConfig struct {
	ctx   *Context
	size  int
	flags clapi.MemFlags
	host  []byte
	err   error
}

// NewBuffer starts the configuration of a new buffer. At least its size (or the host data to copy) must be set.
// By default, it's created with clapi.MemReadWrite.
func (c *Context) NewBuffer() *BufferConfig {
	return &BufferConfig{ctx: c, flags: clapi.MemReadWrite}
}

// Size of the buffer in bytes.
func (cfg *BufferConfig) Size(size int) *BufferConfig {
	if size <= 0 {
		cfg.err = errors.Wrapf(ErrValue, "invalid buffer size %d", size)
	}
	cfg.size = size
	return cfg
}

// Flags sets the cl_mem_flags used to create the buffer.
func (cfg *BufferConfig) Flags(flags clapi.MemFlags) *BufferConfig {
	cfg.flags = flags
	return cfg
}

// FromHost initializes the buffer with a copy of data (clapi.MemCopyHostPtr). If the size was not set, it
// defaults to len(data).
func (cfg *BufferConfig) FromHost(data []byte) *BufferConfig {
	if len(data) == 0 {
		cfg.err = errors.Wrap(ErrEmpty, "no host data given to initialize the buffer")
	}
	cfg.host = data
	cfg.flags |= clapi.MemCopyHostPtr
	return cfg
}

// Done creates the buffer.
func (cfg *BufferConfig) Done() (*Buffer, error) {
	if cfg.err != nil {
		return nil, cfg.err
	}
	c := cfg.ctx
	if err := c.alive(); err != nil {
		return nil, err
	}
	size := cfg.size
	if size == 0 {
		size = len(cfg.host)
	}
	if size <= 0 {
		return nil, errors.Wrap(ErrValue, "buffer size not set")
	}
	if cfg.host != nil && len(cfg.host) < size {
		return nil, errors.Wrapf(ErrBoundaries, "host data has %d bytes, buffer size is %d", len(cfg.host), size)
	}
	h, st := c.lib.api.CreateBuffer(c.handle, cfg.flags, size, clapi.BytePointer(cfg.host))
	if err := nativeError("clCreateBuffer", st); err != nil {
		return nil, err
	}
	return newBuffer(&c.base, h, size, 0, cfg.flags, 0)
}

// Size of the buffer in bytes.
func (b *Buffer) Size() int { return b.size }

// Origin of a sub-buffer within its parent buffer, 0 for other buffers.
func (b *Buffer) Origin() int { return b.origin }

// Flags the buffer was created with.
func (b *Buffer) Flags() clapi.MemFlags { return b.flags }

// Context of the buffer.
func (b *Buffer) Context() *Context {
	c, _ := b.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// String implements fmt.Stringer.
func (b *Buffer) String() string {
	if b.Marks().Has(MarkSubBuffer) {
		return fmt.Sprintf("%s[sub-buffer origin=%d, %s]", b.Object, b.origin, humanize.Bytes(uint64(b.size)))
	}
	return fmt.Sprintf("%s[%s]", b.Object, humanize.Bytes(uint64(b.size)))
}

// checkBounds validates that [offset, offset+size) is within a buffer of bufferSize bytes.
func checkBounds(bufferSize, offset, size int) error {
	if offset < 0 || size < 0 || offset >= bufferSize || size > bufferSize-offset {
		return errors.Wrapf(ErrBoundaries, "region [%d, %d+%d) out of buffer of %d bytes", offset, offset, size, bufferSize)
	}
	return nil
}

// CreateSubBuffer creates a buffer for the region [origin, origin+size) of b.
//
// Sub-buffers of sub-buffers are not allowed, and the region must be within b: these are checked before calling
// the runtime. Sub-buffers are destroyed with their parent buffer.
func (b *Buffer) CreateSubBuffer(flags clapi.MemFlags, origin, size int) (*Buffer, error) {
	if err := b.alive(); err != nil {
		return nil, err
	}
	if b.Marks().Has(MarkSubBuffer) {
		return nil, errors.Wrapf(ErrValue, "cannot create a sub buffer from another sub buffer (%s)", b)
	}
	if err := checkBounds(b.size, origin, size); err != nil {
		return nil, errors.WithMessagef(err, "CreateSubBuffer of %s", b)
	}
	h, st := b.lib.api.CreateSubBuffer(b.handle, flags, origin, size)
	if err := nativeError("clCreateSubBuffer", st); err != nil {
		return nil, err
	}
	return newBuffer(&b.base, h, size, origin, flags, MarkSubBuffer)
}
