//go:build linux || darwin

package purecl

import (
	"sync"

	"github.com/ebitengine/purego"
	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/internal/handles"
)

// The native callbacks are created once (purego has a limited number of callback slots) and find the Go function
// to call through the user_data id. OpenCL calls each registered callback exactly once.
var (
	callbacksOnce    sync.Once
	eventCallbackPtr uintptr
	memCallbackPtr   uintptr
)

func initCallbacks() {
	callbacksOnce.Do(func() {
		// void (CL_CALLBACK *pfn_event_notify)(cl_event event, cl_int status, void *user_data)
		eventCallbackPtr = purego.NewCallback(func(_ purego.CDecl, event uintptr, status int32, userData uintptr) {
			if fn, ok := handles.Take(userData).(clapi.EventCallback); ok {
				fn(clapi.Handle(event), status)
			}
		})
		// void (CL_CALLBACK *pfn_notify)(cl_mem memobj, void *user_data)
		memCallbackPtr = purego.NewCallback(func(_ purego.CDecl, mem uintptr, userData uintptr) {
			if fn, ok := handles.Take(userData).(clapi.MemCallback); ok {
				fn(clapi.Handle(mem))
			}
		})
	})
}

func (rt *Runtime) SetEventCallback(event clapi.Handle, execType int32, fn clapi.EventCallback) clapi.Status {
	initCallbacks()
	id := handles.Register(fn)
	st := clapi.Status(rt.setEventCallback(uintptr(event), execType, eventCallbackPtr, id))
	if st != clapi.CL_SUCCESS {
		handles.Delete(id)
	}
	return st
}

func (rt *Runtime) SetMemObjectDestructorCallback(mem clapi.Handle, fn clapi.MemCallback) clapi.Status {
	initCallbacks()
	id := handles.Register(fn)
	st := clapi.Status(rt.setMemDestructor(uintptr(mem), memCallbackPtr, id))
	if st != clapi.CL_SUCCESS {
		handles.Delete(id)
	}
	return st
}
