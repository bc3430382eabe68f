package cl

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gomlx/gocl/clapi"
	"github.com/pkg/errors"
)

// ExecStatus is the execution status of the command associated with an event. Negative values are native
// error codes: the command failed.
type ExecStatus int32

const (
	Complete  = ExecStatus(clapi.CL_COMPLETE)
	Running   = ExecStatus(clapi.CL_RUNNING)
	Submitted = ExecStatus(clapi.CL_SUBMITTED)
	Queued    = ExecStatus(clapi.CL_QUEUED)
)

// Failed returns whether the status reports the command failed.
func (s ExecStatus) Failed() bool { return s < 0 }

// Err returns the native error carried by a failed status, or nil.
func (s ExecStatus) Err() error {
	if s >= 0 {
		return nil
	}
	return nativeError("command execution", clapi.Status(s))
}

// String implements fmt.Stringer.
func (s ExecStatus) String() string {
	switch s {
	case Complete:
		return "Complete"
	case Running:
		return "Running"
	case Submitted:
		return "Submitted"
	case Queued:
		return "Queued"
	}
	if name := clapi.Status(s).Name(); name != "" {
		return "Failed(" + name + ")"
	}
	return fmt.Sprintf("Failed(%d)", int32(s))
}

// CallbackStage selects which execution status transition an event callback records.
type CallbackStage int

const (
	StageSubmitted CallbackStage = iota
	StageRunning
	StageComplete
	numStages
)

func (stage CallbackStage) execType() int32 {
	switch stage {
	case StageSubmitted:
		return clapi.CL_SUBMITTED
	case StageRunning:
		return clapi.CL_RUNNING
	}
	return clapi.CL_COMPLETE
}

// String implements fmt.Stringer.
func (stage CallbackStage) String() string {
	switch stage {
	case StageSubmitted:
		return "Submitted"
	case StageRunning:
		return "Running"
	case StageComplete:
		return "Complete"
	}
	return fmt.Sprintf("CallbackStage(%d)", int(stage))
}

// callbackSlot is written by the native callback (any thread) and consumed by Event.Poll.
// status is stored before called is set, so a poll that sees called also sees the status.
type callbackSlot struct {
	called atomic.Bool
	status atomic.Int32
}

// eventCallbacks is kept apart from the Event, so the native callbacks don't keep the wrapper alive.
type eventCallbacks struct {
	handle clapi.Handle
	slots  [numStages]callbackSlot
}

func (cbs *eventCallbacks) fire(stage CallbackStage, event clapi.Handle, status int32) {
	if event != cbs.handle {
		return
	}
	slot := &cbs.slots[stage]
	slot.status.Store(status)
	slot.called.Store(true)
}

// Event is an OpenCL event: it tracks the execution of an enqueued command (or, for user events, a status set
// by the host). Events are owned by the context of their queue.
type Event struct {
	base
	cbs *eventCallbacks
}

func newEvent(owner *base, h clapi.Handle) (*Event, error) {
	o := owner.lib.newObject(h, KindEvent, owner.Object, releaseAll)
	return bind(&Event{base: base{Object: o, up: owner.Wrapper()}, cbs: &eventCallbacks{handle: h}})
}

// SetCallback registers interest in the given stage of the event execution: when the runtime reports the
// transition, the status is recorded, to be consumed with Poll.
//
// Registering again for the same stage discards a status not yet polled.
func (e *Event) SetCallback(stage CallbackStage) error {
	if err := e.alive(); err != nil {
		return err
	}
	if stage < 0 || stage >= numStages {
		return errors.Wrapf(ErrValue, "invalid callback stage %d", int(stage))
	}
	cbs := e.cbs
	cbs.slots[stage].called.Store(false)
	st := e.lib.api.SetEventCallback(e.handle, stage.execType(), func(event clapi.Handle, status int32) {
		cbs.fire(stage, event, status)
	})
	return nativeError("clSetEventCallback", st)
}

// Poll returns the status recorded by the callback of the given stage, and clears it: it returns ok=true only
// once per callback fired. A negative status means the command failed with that native error code.
func (e *Event) Poll(stage CallbackStage) (status ExecStatus, ok bool) {
	if stage < 0 || stage >= numStages {
		return 0, false
	}
	slot := &e.cbs.slots[stage]
	if !slot.called.CompareAndSwap(true, false) {
		return 0, false
	}
	return ExecStatus(slot.status.Load()), true
}

// Wait blocks until the command of the event completes.
func (e *Event) Wait() error {
	return WaitForEvents(e)
}

// WaitForEvents blocks until all the events complete.
func WaitForEvents(events ...*Event) error {
	if len(events) == 0 {
		return errors.Wrap(ErrEmpty, "WaitForEvents requires at least one event")
	}
	handles, err := rawHandles(events)
	if err != nil {
		return err
	}
	lib := events[0].lib
	for _, e := range events[1:] {
		if e.lib != lib {
			return errors.Wrapf(ErrValue, "WaitForEvents with events from different libraries (%s and %s)", lib, e.lib)
		}
	}
	return nativeError("clWaitForEvents", lib.api.WaitForEvents(handles))
}

// Status queries the current execution status of the event.
func (e *Event) Status() (ExecStatus, error) {
	if err := e.alive(); err != nil {
		return 0, err
	}
	status, err := e.lib.infoUint32(clapi.ClassEvent, e.handle, clapi.CL_EVENT_COMMAND_EXECUTION_STATUS)
	return ExecStatus(int32(status)), err
}

// CommandType returns the type of command associated with the event (e.g. clapi.CL_COMMAND_NDRANGE_KERNEL).
func (e *Event) CommandType() (uint32, error) {
	if err := e.alive(); err != nil {
		return 0, err
	}
	return e.lib.infoUint32(clapi.ClassEvent, e.handle, clapi.CL_EVENT_COMMAND_TYPE)
}

// Context of the event.
func (e *Event) Context() *Context {
	c, _ := e.ancestor(KindContext).Wrapper().(*Context)
	return c
}

// Queue returns the queue the event's command was enqueued in, or nil for user events (or if the queue is no
// longer registered).
func (e *Event) Queue() (*Queue, error) {
	if err := e.alive(); err != nil {
		return nil, err
	}
	h, err := e.lib.infoHandle(clapi.ClassEvent, e.handle, clapi.CL_EVENT_COMMAND_QUEUE)
	if err != nil || h == 0 {
		return nil, err
	}
	q, _, err := lookupWrapper[*Queue](e.lib, h)
	return q, err
}

// SetUserStatus sets the status of a user event (created with Context.CreateUserEvent): Complete or a negative
// error code.
func (e *Event) SetUserStatus(status ExecStatus) error {
	if err := e.alive(); err != nil {
		return err
	}
	if status > 0 {
		return errors.Wrapf(ErrValue, "user event status must be Complete or negative, got %s", status)
	}
	return nativeError("clSetUserEventStatus", e.lib.api.SetUserEventStatus(e.handle, int32(status)))
}

// Profile holds the profiling timestamps of an event, in nanoseconds of the device clock.
// The queue must have been created with profiling enabled.
type Profile struct {
	Queued, Submit, Start, End, Complete uint64
}

// Duration of the execution of the command.
func (p Profile) Duration() time.Duration {
	return time.Duration(p.End - p.Start)
}

// Profiling returns the profiling timestamps of the event.
func (e *Event) Profiling() (Profile, error) {
	if err := e.alive(); err != nil {
		return Profile{}, err
	}
	var p Profile
	for _, field := range []struct {
		param uint32
		value *uint64
	}{
		{clapi.CL_PROFILING_COMMAND_QUEUED, &p.Queued},
		{clapi.CL_PROFILING_COMMAND_SUBMIT, &p.Submit},
		{clapi.CL_PROFILING_COMMAND_START, &p.Start},
		{clapi.CL_PROFILING_COMMAND_END, &p.End},
	} {
		v, st := e.lib.api.GetEventProfilingInfo(e.handle, field.param)
		if err := nativeError("clGetEventProfilingInfo", st); err != nil {
			return Profile{}, err
		}
		*field.value = v
	}
	// CL_PROFILING_COMMAND_COMPLETE is only reported by OpenCL 2.0 runtimes.
	if v, st := e.lib.api.GetEventProfilingInfo(e.handle, clapi.CL_PROFILING_COMMAND_COMPLETE); st == clapi.CL_SUCCESS {
		p.Complete = v
	} else {
		p.Complete = p.End
	}
	return p, nil
}
