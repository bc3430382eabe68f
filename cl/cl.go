// Package cl manages OpenCL objects from Go: it tracks the native handles, ties each one to a Go wrapper, and tears
// down objects in dependency order.
//
// The typical flow is:
//
//	lib := must.M1(cl.Default())                  // dlopen libOpenCL (see OPENCL_LIBRARY_PATH and GOCL_LIBRARY).
//	platforms := must.M1(lib.GetPlatforms())
//	devices := must.M1(platforms[0].GetDevices(clapi.DeviceTypeAll))
//	ctx := must.M1(platforms[0].CreateContext(devices...))
//	queue := must.M1(ctx.NewQueue(devices[0]).Done())
//	buf := must.M1(ctx.NewBuffer().Size(1024).Done())
//	fill := must.M1(queue.FillBuffer(buf, []byte{7}, 0, 1024, nil, true))
//	...
//
// Every object created is registered in the Library's Registry, and keeps a (non-owning) link to the object it
// was created from. Destroying an object destroys everything created from it first: destroying a context
// destroys its queues, programs (and their kernels), events, buffers (and their sub-buffers), images, pipes,
// samplers and SVM regions.
//
// Enqueue operations (methods of Queue) take an optional wait list and a flag to request an Event for the
// command. Event status callbacks are recorded when the runtime fires them, and are consumed with Event.Poll.
package cl

import (
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/purecl"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const (
	// LibraryEnv is the name of the environment variable with the name (or absolute path) of the OpenCL library
	// used by Default.
	LibraryEnv = "GOCL_LIBRARY"

	// DefaultLibraryName is used by Default if LibraryEnv is not set.
	DefaultLibraryName = "OpenCL"
)

// Library is a loaded OpenCL runtime (or any other implementation of clapi.API) and the registry of the objects
// created with it.
type Library struct {
	name, path string
	api        clapi.API
	registry   *Registry
}

var (
	// loadedLibraries caches the libraries already loaded. Protected by muLibraries.
	loadedLibraries = make(map[string]*Library)
	muLibraries     sync.Mutex
)

// New creates a Library over the given native API, with its own registry.
// It's mostly used with alternative backends (e.g. clfake in tests); see Load to use the system's OpenCL.
func New(api clapi.API) *Library {
	return &Library{
		name:     fmt.Sprintf("%T", api),
		api:      api,
		registry: NewRegistry(),
	}
}

// Load returns the Library for the OpenCL runtime with the given name (e.g. "OpenCL" for libOpenCL.so) or
// absolute path.
//
// Libraries are searched in the directories listed in OPENCL_LIBRARY_PATH, or in the standard library paths
// of the system if it is not set. Libraries are loaded only once, later calls return the cached Library.
func Load(name string) (*Library, error) {
	muLibraries.Lock()
	defer muLibraries.Unlock()

	if lib, found := loadedLibraries[name]; found {
		return lib, nil
	}
	if path.IsAbs(name) {
		for _, lib := range loadedLibraries {
			if lib.path == name {
				return lib, nil
			}
		}
	}

	rt, err := purecl.Open(name)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load OpenCL library %q", name)
	}
	lib := New(rt)
	lib.name = name
	lib.path = rt.Path()
	loadedLibraries[name] = lib
	klog.V(1).Infof("loaded %s", lib)
	return lib, nil
}

// Default loads the library named by the environment variable GOCL_LIBRARY, or "OpenCL" if it is not set.
func Default() (*Library, error) {
	name, found := os.LookupEnv(LibraryEnv)
	if !found || name == "" {
		name = DefaultLibraryName
	}
	return Load(name)
}

// Name of the library, as given to Load.
func (l *Library) Name() string { return l.name }

// Path of the loaded library file, if it was loaded with Load.
func (l *Library) Path() string { return l.path }

// API returns the native entry points.
func (l *Library) API() clapi.API { return l.api }

// Registry of the objects created with this library.
func (l *Library) Registry() *Registry { return l.registry }

// String implements fmt.Stringer.
func (l *Library) String() string {
	if l.path == "" {
		return fmt.Sprintf("OpenCL library %q", l.name)
	}
	return fmt.Sprintf("OpenCL library %q (%s)", l.name, l.path)
}

// Close destroys all the objects still registered, and forgets the library if it was loaded with Load.
// The native library itself is not unloaded.
func (l *Library) Close() {
	l.registry.DrainAll()
	muLibraries.Lock()
	defer muLibraries.Unlock()
	if cached, found := loadedLibraries[l.name]; found && cached == l {
		delete(loadedLibraries, l.name)
	}
}

// GetPlatforms enumerates the available platforms. Platforms already wrapped are reused.
func (l *Library) GetPlatforms() ([]*Platform, error) {
	const op = "clGetPlatformIDs"
	count, st := l.api.GetPlatformIDs(nil)
	if st == clapi.CL_SUCCESS && count == 0 {
		st = clapi.CL_PLATFORM_NOT_FOUND_KHR
	}
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	handles := make([]clapi.Handle, count)
	count, st = l.api.GetPlatformIDs(handles)
	if err := nativeError(op, st); err != nil {
		return nil, err
	}
	handles = handles[:min(count, len(handles))]
	platforms := make([]*Platform, 0, len(handles))
	for _, h := range handles {
		p, err := l.platformFor(h)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}
