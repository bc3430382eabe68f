package cl

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SVM is a shared virtual memory region (OpenCL >= 2.0): memory addressable both by the host and by the devices
// of a context. Its handle is the address of the region.
//
// It's freed with clSVMFree when destroyed, unless it was freed with Queue.SVMFree.
type SVM struct {
	base
	ptr   unsafe.Pointer
	size  int
	flags clapi.MemFlags
}

// AllocSVM allocates a shared virtual memory region of size bytes. alignment can be 0 for the default.
// It requires clSVMAlloc (OpenCL >= 2.0).
func (c *Context) AllocSVM(flags clapi.MemFlags, size int, alignment uint32) (*SVM, error) {
	if err := c.alive(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, errors.Wrapf(ErrValue, "invalid SVM size %d", size)
	}
	if alignment&(alignment-1) != 0 {
		return nil, errors.Wrapf(ErrValue, "SVM alignment %d is not a power of 2", alignment)
	}
	proc, err := c.ext.Proc("clSVMAlloc")
	if err != nil {
		return nil, err
	}
	if _, err := c.ext.Proc("clSVMFree"); err != nil {
		return nil, err
	}
	ptr := c.lib.api.SVMAlloc(proc, c.handle, flags, size, alignment)
	if ptr == nil {
		return nil, errors.Wrapf(ErrAllocation, "clSVMAlloc of %s", humanize.Bytes(uint64(size)))
	}
	o := c.lib.newObject(clapi.Handle(uintptr(ptr)), KindSVM, c.Object, func(o *Object) error {
		return freeSVM(o, ptr)
	})
	o.setMarks(MarkAllocated)
	return bind(&SVM{base: base{Object: o, up: c}, ptr: ptr, size: size, flags: flags})
}

// freeSVM is the finalize step of SVM regions.
func freeSVM(o *Object, ptr unsafe.Pointer) error {
	if o.Marks().Has(MarkSVMDontFree) {
		return nil
	}
	proc, err := o.ext.Proc("clSVMFree")
	if err != nil {
		klog.Errorf("Leaking %s: %v", o, err)
		return err
	}
	o.lib.api.SVMFree(proc, o.parent, ptr)
	return nil
}

// Pointer returns the address of the region.
func (s *SVM) Pointer() unsafe.Pointer { return s.ptr }

// Size of the region in bytes.
func (s *SVM) Size() int { return s.size }

// Flags the region was allocated with.
func (s *SVM) Flags() clapi.MemFlags { return s.flags }

// Bytes returns a slice over the region. It's only safe to access while the region is mapped (see Queue.SVMMap),
// or for fine-grained regions (clapi.MemSVMFineGrainBuffer).
func (s *SVM) Bytes() []byte {
	if s.IsDestroyed() {
		return nil
	}
	return unsafe.Slice((*byte)(s.ptr), s.size)
}

// Context of the region.
func (s *SVM) Context() *Context {
	c, _ := s.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// String implements fmt.Stringer.
func (s *SVM) String() string {
	return fmt.Sprintf("%s[%s]", s.Object, humanize.Bytes(uint64(s.size)))
}

func checkSVM(s *SVM) error {
	if s == nil {
		return errors.Wrap(ErrValue, "nil SVM region")
	}
	return s.alive()
}

// SVMFree enqueues the release of the SVM regions (a region listed more than once is freed once). Once the command
// is enqueued the regions are destroyed (they can no longer be used), but the memory is only freed when the command
// executes. If it can't be enqueued, the regions are left untouched.
func (q *Queue) SVMFree(regions []*SVM, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, errors.Wrap(ErrEmpty, "SVMFree requires at least one region")
	}
	unique := make([]*SVM, 0, len(regions))
	for _, s := range regions {
		if err := checkSVM(s); err != nil {
			return nil, err
		}
		if !slices.Contains(unique, s) {
			unique = append(unique, s)
		}
	}
	proc, err := q.ext.Proc("clEnqueueSVMFree")
	if err != nil {
		return nil, err
	}
	ptrs := make([]unsafe.Pointer, len(unique))
	for ii, s := range unique {
		ptrs[ii] = s.ptr
	}
	var enqueued bool
	event, err := q.submit("clEnqueueSVMFree", wait, withEvent, func(wait []clapi.Handle, event *clapi.Handle) clapi.Status {
		st := q.lib.api.EnqueueSVMFree(proc, q.handle, ptrs, wait, event)
		enqueued = st == clapi.CL_SUCCESS
		return st
	})
	if !enqueued {
		return nil, err
	}
	for _, s := range unique {
		s.setMarks(MarkSVMDontFree)
		if destroyErr := s.Destroy(); destroyErr != nil {
			klog.Errorf("Failed to destroy %s after enqueuing its release: %+v", s, destroyErr)
		}
	}
	return event, err
}

// SVMMemcpy copies size bytes from src (at srcOffset) to dst (at dstOffset).
func (q *Queue) SVMMemcpy(blocking bool, dst *SVM, dstOffset int, src *SVM, srcOffset, size int,
	wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkSVM(dst); err != nil {
		return nil, err
	}
	if err := checkSVM(src); err != nil {
		return nil, err
	}
	if err := checkBounds(src.size, srcOffset, size); err != nil {
		return nil, errors.WithMessagef(err, "SVMMemcpy source %s", src)
	}
	if err := checkBounds(dst.size, dstOffset, size); err != nil {
		return nil, errors.WithMessagef(err, "SVMMemcpy destination %s", dst)
	}
	proc, err := q.ext.Proc("clEnqueueSVMMemcpy")
	if err != nil {
		return nil, err
	}
	return q.submit("clEnqueueSVMMemcpy", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueSVMMemcpy(proc, q.handle, blocking, unsafe.Add(dst.ptr, dstOffset), unsafe.Add(src.ptr, srcOffset),
			size, waitHandles, event)
	})
}

// SVMMemFill fills size bytes of the region, starting at offset, with the repeated pattern.
func (q *Queue) SVMMemFill(s *SVM, pattern []byte, offset, size int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkSVM(s); err != nil {
		return nil, err
	}
	if err := checkBounds(s.size, offset, size); err != nil {
		return nil, errors.WithMessagef(err, "SVMMemFill of %s", s)
	}
	if err := checkPattern(pattern, offset, size); err != nil {
		return nil, err
	}
	proc, err := q.ext.Proc("clEnqueueSVMMemFill")
	if err != nil {
		return nil, err
	}
	return q.submit("clEnqueueSVMMemFill", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueSVMMemFill(proc, q.handle, unsafe.Add(s.ptr, offset), pattern, size, waitHandles, event)
	})
}

// SVMMap maps [offset, offset+size) of a coarse-grained region for access by the host.
func (q *Queue) SVMMap(blocking bool, flags clapi.MapFlags, s *SVM, offset, size int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkSVM(s); err != nil {
		return nil, err
	}
	if err := checkBounds(s.size, offset, size); err != nil {
		return nil, errors.WithMessagef(err, "SVMMap of %s", s)
	}
	proc, err := q.ext.Proc("clEnqueueSVMMap")
	if err != nil {
		return nil, err
	}
	return q.submit("clEnqueueSVMMap", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueSVMMap(proc, q.handle, blocking, flags, unsafe.Add(s.ptr, offset), size, waitHandles, event)
	})
}

// SVMUnmap unmaps a region mapped with SVMMap.
func (q *Queue) SVMUnmap(s *SVM, offset int, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if err := checkSVM(s); err != nil {
		return nil, err
	}
	if err := checkBounds(s.size, offset, 0); err != nil {
		return nil, errors.WithMessagef(err, "SVMUnmap of %s", s)
	}
	proc, err := q.ext.Proc("clEnqueueSVMUnmap")
	if err != nil {
		return nil, err
	}
	return q.submit("clEnqueueSVMUnmap", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueSVMUnmap(proc, q.handle, unsafe.Add(s.ptr, offset), waitHandles, event)
	})
}

// SVMMigrateMem migrates the whole regions to the device of the queue (or to the host, with
// clapi.MigrateMemObjectHost). It requires clEnqueueSVMMigrateMem (OpenCL >= 2.1).
func (q *Queue) SVMMigrateMem(regions []*SVM, flags clapi.MigrationFlags, wait []*Event, withEvent bool) (*Event, error) {
	if err := q.alive(); err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, errors.Wrap(ErrEmpty, "SVMMigrateMem requires at least one region")
	}
	ptrs := make([]unsafe.Pointer, len(regions))
	sizes := make([]int, len(regions))
	for ii, s := range regions {
		if err := checkSVM(s); err != nil {
			return nil, err
		}
		ptrs[ii], sizes[ii] = s.ptr, s.size
	}
	proc, err := q.ext.Proc("clEnqueueSVMMigrateMem")
	if err != nil {
		return nil, err
	}
	return q.submit("clEnqueueSVMMigrateMem", wait, withEvent, func(waitHandles []clapi.Handle, event *clapi.Handle) clapi.Status {
		return q.lib.api.EnqueueSVMMigrateMem(proc, q.handle, ptrs, sizes, flags, waitHandles, event)
	})
}
