package cl

import (
	"cmp"
	"slices"
	"sync"

	"github.com/gomlx/gocl/clapi"
	"k8s.io/klog/v2"
)

// Registry maps the native handles to the objects wrapping them: at most one object per live handle.
//
// Each Library owns one Registry. Objects are registered as soon as the native call that created them returns,
// and unregistered at the start of their destruction, so a handle value reused by the driver never aliases a stale
// object.
//
// It's safe for concurrent use, but the lock is never held while native calls or destructors run.
type Registry struct {
	mu      sync.Mutex
	objects map[clapi.Handle]*Object
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{objects: make(map[clapi.Handle]*Object)}
}

// Register o under its handle.
// It fails with an ErrInternal if the handle is already registered: it means the handle was reused while still alive.
func (r *Registry) Register(o *Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, found := r.objects[o.handle]; found {
		return internalErrorf("registering %s: handle already registered to %s", o, prev)
	}
	r.objects[o.handle] = o
	return nil
}

// Lookup returns the object registered under the handle, if any.
func (r *Registry) Lookup(handle clapi.Handle) (*Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, found := r.objects[handle]
	return o, found
}

// Unregister removes the handle from the registry. It returns false if the handle was not registered.
func (r *Registry) Unregister(handle clapi.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.objects[handle]; !found {
		return false
	}
	delete(r.objects, handle)
	return true
}

// drop removes o from the registry. It returns false, leaving the registry untouched, if the handle is not
// registered to o.
func (r *Registry) drop(o *Object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.objects[o.handle] != o {
		return false
	}
	delete(r.objects, o.handle)
	return true
}

// Children returns the registered objects of the given kind whose parent is the given handle, ordered by handle.
func (r *Registry) Children(parent clapi.Handle, kind Kind) []*Object {
	r.mu.Lock()
	var children []*Object
	for _, o := range r.objects {
		if o.parent == parent && o.kind == kind {
			children = append(children, o)
		}
	}
	r.mu.Unlock()
	slices.SortFunc(children, func(a, b *Object) int {
		return cmp.Compare(a.handle, b.handle)
	})
	return children
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}

// Handles returns the registered handles in ascending order.
func (r *Registry) Handles() []clapi.Handle {
	r.mu.Lock()
	handles := make([]clapi.Handle, 0, len(r.objects))
	for h := range r.objects {
		handles = append(handles, h)
	}
	r.mu.Unlock()
	slices.Sort(handles)
	return handles
}

// DrainAll destroys every registered object: platforms first (which cascades to everything created from them),
// and then whatever is left.
// Errors are logged and otherwise ignored.
func (r *Registry) DrainAll() {
	for _, kind := range []Kind{KindPlatform, KindContext} {
		for _, o := range r.ofKind(kind) {
			if err := o.Destroy(); err != nil {
				klog.Errorf("failed to destroy %s while draining registry: %+v", o, err)
			}
		}
	}
	for _, h := range r.Handles() {
		if o, found := r.Lookup(h); found {
			if err := o.Destroy(); err != nil {
				klog.Errorf("failed to destroy %s while draining registry: %+v", o, err)
			}
		}
	}
}

func (r *Registry) ofKind(kind Kind) []*Object {
	r.mu.Lock()
	var objects []*Object
	for _, o := range r.objects {
		if o.kind == kind {
			objects = append(objects, o)
		}
	}
	r.mu.Unlock()
	slices.SortFunc(objects, func(a, b *Object) int {
		return cmp.Compare(a.handle, b.handle)
	})
	return objects
}
