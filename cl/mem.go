package cl

import (
	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// watchMemObject registers a native destructor callback on a memory object (buffer, image or pipe): if the
// runtime deletes the object while it is still registered (e.g. released by some other owner), the wrapper is
// destroyed. Callbacks arriving after the object was destroyed are ignored.
func watchMemObject(o *Object) {
	st := o.lib.api.SetMemObjectDestructorCallback(o.handle, func(clapi.Handle) {
		// The callback may arrive late, after the handle value was reused by another object: only o is affected.
		if o.IsDestroyed() {
			return
		}
		o.setMarks(MarkNativeDeleted)
		if err := o.Destroy(); err != nil {
			klog.Errorf("Failed to destroy %s from its destructor callback: %+v", o, err)
		}
	})
	if err := nativeError("clSetMemObjectDestructorCallback", st); err != nil {
		klog.Warningf("%s won't be notified of its deletion by the runtime: %v", o, err)
	}
}

// memHandle returns the handle of a live memory object: *Buffer, *Image or *Pipe.
func memHandle(w Wrapper) (clapi.Handle, error) {
	if isNil(w) {
		return 0, errors.Wrap(ErrValue, "nil memory object")
	}
	o := w.record()
	if err := o.alive(); err != nil {
		return 0, err
	}
	switch o.kind {
	case KindBuffer, KindImage, KindPipe:
		return o.handle, nil
	}
	return 0, errors.Wrapf(ErrValue, "%s is not a memory object", o)
}

// memHandles returns the handles of a list of live memory objects.
func memHandles(mems []Wrapper) ([]clapi.Handle, error) {
	if len(mems) == 0 {
		return nil, errors.Wrap(ErrEmpty, "no memory objects given")
	}
	handles := make([]clapi.Handle, len(mems))
	for ii, w := range mems {
		h, err := memHandle(w)
		if err != nil {
			return nil, errors.WithMessagef(err, "memory object #%d", ii)
		}
		handles[ii] = h
	}
	return handles, nil
}

// memSize queries the size of a memory object with CL_MEM_SIZE.
func (l *Library) memSize(h clapi.Handle) (int, error) {
	size, err := l.infoUint64(clapi.ClassMem, h, clapi.CL_MEM_SIZE)
	return int(size), err
}
