package cl

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Wrapper is implemented by all the typed objects of the package (*Platform, *Device, *Context, *Queue, *Buffer,
// *Image, *Pipe, *Sampler, *Program, *Kernel, *Event and *SVM), and by the *Object records themselves.
type Wrapper interface {
	// Raw returns the native handle.
	Raw() clapi.Handle

	// Kind of the object.
	Kind() Kind

	// Destroy the object (and everything created from it), releasing the native handle.
	Destroy() error

	record() *Object
}

// Object is the record the Registry keeps for each live native handle.
//
// It is embedded in all typed wrappers: the methods here are available for any of them.
type Object struct {
	lib    *Library
	handle clapi.Handle
	kind   Kind

	// parent is the handle of the owning object, 0 for platforms.
	// It is resolved through the registry: objects never hold their parents.
	parent clapi.Handle

	ext       *ExtensionTable
	marks     atomic.Uint32
	destroyed atomic.Bool

	// finalize is the kind specific native release step, run once the children were destroyed.
	finalize func(o *Object) error

	// wrapper returns the typed wrapper bound to this record, or nil if it was garbage collected.
	wrapper func() Wrapper
}

// base is embedded by the typed wrappers.
type base struct {
	*Object

	// up is the wrapper of the parent: it keeps the parent wrapper from being garbage collected (which would
	// destroy this object too) while this wrapper is in use.
	up Wrapper
}

// newObject creates an unregistered record. The extension table is inherited from the parent, or created for
// platforms.
func (l *Library) newObject(h clapi.Handle, kind Kind, parent *Object, finalize func(o *Object) error) *Object {
	o := &Object{
		lib:      l,
		handle:   h,
		kind:     kind,
		finalize: finalize,
	}
	if parent != nil {
		o.parent = parent.handle
		o.ext = parent.ext
	}
	if o.ext == nil {
		o.ext = newExtensionTable(l, h)
	}
	return o
}

// bind registers the record of the typed wrapper w, and arranges for the object to be destroyed when w is
// garbage collected.
func bind[T any, PT interface {
	*T
	Wrapper
}](w PT) (PT, error) {
	o := w.record()
	weakW := weak.Make((*T)(w))
	o.wrapper = func() Wrapper {
		if v := weakW.Value(); v != nil {
			return PT(v)
		}
		return nil
	}
	if err := o.lib.registry.Register(o); err != nil {
		return nil, err
	}
	runtime.AddCleanup((*T)(w), func(o *Object) {
		if err := o.Destroy(); err != nil {
			klog.Errorf("Failed to destroy %s after it was garbage collected: %+v", o, err)
		}
	}, o)
	klog.V(2).Infof("created %s", o)
	return w, nil
}

// lookupWrapper returns the typed wrapper registered for the handle.
// If the record exists but its wrapper was already garbage collected (its cleanup is pending), the record is
// destroyed, and it returns false. A live wrapper of another type is an ErrInternal: the record is left untouched.
func lookupWrapper[PT Wrapper](lib *Library, h clapi.Handle) (PT, bool, error) {
	var zero PT
	o, found := lib.registry.Lookup(h)
	if !found {
		return zero, false, nil
	}
	var w Wrapper
	if o.wrapper != nil {
		w = o.wrapper()
	}
	if w == nil {
		if err := o.Destroy(); err != nil {
			klog.Errorf("Failed to destroy stale %s: %+v", o, err)
		}
		return zero, false, nil
	}
	if typed, ok := w.(PT); ok {
		return typed, true, nil
	}
	return zero, false, internalErrorf("%s is registered as %T, expected %T", o, w, zero)
}

func (o *Object) record() *Object { return o }

// Raw returns the native handle.
func (o *Object) Raw() clapi.Handle { return o.handle }

// Kind of the object.
func (o *Object) Kind() Kind { return o.kind }

// Library owning the object.
func (o *Object) Library() *Library { return o.lib }

// Marks returns the marks set on the object.
func (o *Object) Marks() Marks { return Marks(o.marks.Load()) }

func (o *Object) setMarks(m Marks) {
	for {
		old := o.marks.Load()
		if o.marks.CompareAndSwap(old, old|uint32(m)) {
			return
		}
	}
}

// Extensions returns the table of optional entry points of the platform the object belongs to.
func (o *Object) Extensions() *ExtensionTable { return o.ext }

// IsDestroyed returns whether the object was already destroyed.
func (o *Object) IsDestroyed() bool { return o.destroyed.Load() }

// Wrapper returns the typed wrapper for this object (e.g. *Buffer), if it is still alive, or the record itself
// otherwise.
func (o *Object) Wrapper() Wrapper {
	if o.wrapper != nil {
		if w := o.wrapper(); w != nil {
			return w
		}
	}
	return o
}

// Parent returns the wrapper of the owning object, or nil for platforms and for objects whose parent is gone.
func (o *Object) Parent() Wrapper {
	if o.parent == 0 {
		return nil
	}
	p, found := o.lib.registry.Lookup(o.parent)
	if !found {
		return nil
	}
	return p.Wrapper()
}

// ancestor returns the closest ancestor record of the given kind (or o itself), or nil if there is none.
func (o *Object) ancestor(kind Kind) *Object {
	for current := o; current != nil; {
		if current.kind == kind {
			return current
		}
		if current.parent == 0 {
			return nil
		}
		next, found := o.lib.registry.Lookup(current.parent)
		if !found {
			return nil
		}
		current = next
	}
	return nil
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s)", o.kind, o.handle)
}

// alive returns an ErrDestroyed if the object was destroyed.
func (o *Object) alive() error {
	if o == nil {
		return errors.Wrap(ErrValue, "nil object")
	}
	if o.destroyed.Load() {
		return errors.Wrapf(ErrDestroyed, "%s", o)
	}
	return nil
}

// Destroy the object: it is unregistered, then all the objects created from it are destroyed (regardless of their
// native reference counts), and finally its native handle is released.
//
// It's a no-op if the object was already destroyed. Errors destroying the children are logged and ignored.
// It's called automatically when the wrapper is garbage collected.
func (o *Object) Destroy() error {
	if o == nil || !o.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	if !o.lib.registry.drop(o) {
		klog.Errorf("Destroying %s: %v", o, internalErrorf("handle not registered"))
	}
	o.destroyChildren()
	var err error
	if o.finalize != nil {
		err = o.finalize(o)
	}
	klog.V(2).Infof("destroyed %s", o)
	return err
}

// destroyChildren destroys all the registered objects owned by o, kind by kind.
func (o *Object) destroyChildren() {
	if o.kind == KindDevice && !o.Marks().Has(MarkHasSubDevices) {
		return
	}
	for _, kind := range childKinds[o.kind] {
		for _, child := range o.lib.registry.Children(o.handle, kind) {
			if err := child.Destroy(); err != nil {
				klog.Errorf("Failed to destroy %s (owned by %s): %+v", child, o, err)
			}
		}
	}
}

// releaseAll is the finalize step for reference counted objects: it releases the handle as many times as its
// native reference count.
func releaseAll(o *Object) error {
	class, counted := o.kind.class()
	if !counted || o.Marks().Has(MarkNativeDeleted) {
		return nil
	}
	count, err := o.lib.referenceCount(class, o.handle)
	if err != nil {
		return err
	}
	op := "clRelease" + class.String()
	for ; count > 0; count-- {
		if err := nativeError(op, o.lib.api.Release(class, o.handle)); err != nil {
			return err
		}
	}
	return nil
}

// refCounted returns the native class of the object and whether its lifetime is controlled by the native reference
// count. Platforms, root devices and SVM regions are not.
func (o *Object) refCounted() (clapi.Class, bool) {
	class, counted := o.kind.class()
	if o.kind == KindDevice && !o.Marks().Has(MarkSubDevice) {
		counted = false
	}
	return class, counted
}

// ReferenceCount returns the native reference count of the object. It's always 1 for objects that are not
// reference counted.
func (o *Object) ReferenceCount() (int, error) {
	if err := o.alive(); err != nil {
		return 0, err
	}
	class, counted := o.kind.class()
	if !counted {
		return 1, nil
	}
	return o.lib.referenceCount(class, o.handle)
}

// Retain increments the native reference count.
func (o *Object) Retain() error {
	if err := o.alive(); err != nil {
		return err
	}
	class, counted := o.refCounted()
	if !counted {
		return nil
	}
	return nativeError("clRetain"+class.String(), o.lib.api.Retain(class, o.handle))
}

// Release decrements the native reference count. If this is the last reference, the object is destroyed
// (as in Destroy); otherwise the object stays alive.
//
// Objects that are not reference counted are destroyed. Releasing a destroyed object is a no-op.
//
// The reference count is read once before deciding: a concurrent retain or release done by code outside this
// package between the query and the release is not accounted for.
func (o *Object) Release() error {
	if o.IsDestroyed() {
		return nil
	}
	class, counted := o.refCounted()
	if !counted {
		return o.Destroy()
	}
	count, err := o.lib.referenceCount(class, o.handle)
	if err != nil {
		return err
	}
	if count <= 1 {
		return o.Destroy()
	}
	return nativeError("clRelease"+class.String(), o.lib.api.Release(class, o.handle))
}
