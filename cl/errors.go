package cl

import (
	"fmt"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// Errors raised by the bindings themselves, before any native call is made.
// They are wrapped with context, use errors.Is to test for them.
var (
	ErrBoundaries  = errors.New("invalid boundaries")
	ErrValue       = errors.New("invalid value")
	ErrLength      = errors.New("invalid length")
	ErrEmpty       = errors.New("empty list")
	ErrUnavailable = errors.New("entry point not available")
	ErrDestroyed   = errors.New("object already destroyed")
	ErrAllocation  = errors.New("allocation failed")
)

// ErrInternal signals an inconsistency in the bindings (e.g. a handle expected to be registered is not):
// it's a bug in this package, not a misuse by the caller.
var ErrInternal = errors.New("unexpected internal error")

// NativeError is returned when an OpenCL entry point returns a status other than CL_SUCCESS.
type NativeError struct {
	// Op is the native entry point that failed, e.g. "clCreateBuffer".
	Op string

	Status clapi.Status
}

// Error implements the error interface.
func (e *NativeError) Error() string {
	name := e.Status.Name()
	if name == "" {
		name = "CL_UNKNOWN_ERROR"
	}
	return fmt.Sprintf("OpenCL error %s (code=%d) in %s: %s", name, int32(e.Status), e.Op, e.Status)
}

// nativeError converts a native status to an error (with stack trace), or nil if st is CL_SUCCESS.
func nativeError(op string, st clapi.Status) error {
	if st == clapi.CL_SUCCESS {
		return nil
	}
	return errors.WithStack(&NativeError{Op: op, Status: st})
}

// IsNative returns whether err was reported by the OpenCL runtime.
func IsNative(err error) bool {
	var nErr *NativeError
	return errors.As(err, &nErr)
}

// StatusOf returns the native status carried by err, if it was reported by the OpenCL runtime.
func StatusOf(err error) (clapi.Status, bool) {
	var nErr *NativeError
	if errors.As(err, &nErr) {
		return nErr.Status, true
	}
	return clapi.CL_SUCCESS, false
}

// internalErrorf returns an ErrInternal with the given context.
func internalErrorf(format string, args ...any) error {
	return errors.Wrapf(ErrInternal, format, args...)
}
