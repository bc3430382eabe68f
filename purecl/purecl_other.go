//go:build !(linux || darwin)

// Package purecl implements clapi.API over the system's OpenCL library. It is only supported on linux and darwin.
package purecl

import (
	"runtime"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Runtime is a loaded OpenCL library. It can't be created on this OS.
type Runtime struct {
	clapi.API
	path string
}

// Open always fails on this OS.
func Open(name string) (*Runtime, error) {
	return nil, errors.Errorf("loading OpenCL library %q: purecl is not supported on %s", name, runtime.GOOS)
}

// Path of the loaded library.
func (rt *Runtime) Path() string { return rt.path }

// SearchPaths returns no directories: libraries are never searched on this OS.
func SearchPaths() []string { return nil }
