package clfake

import (
	"slices"

	"github.com/gomlx/gocl/clapi"
)

// command is an enqueued operation.
type command struct {
	queue *object
	event *object // Always set: if the caller didn't request the event, it's not reachable by handle.
	wait  []*object
	run   func() clapi.Status
	done  bool
}

type eventCallback struct {
	execType int32
	fn       clapi.EventCallback
}

func (f *API) CreateCommandQueue(context, device clapi.Handle, properties uint64) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateCommandQueue")
	return f.createQueue(context, device, properties)
}

// createQueue must be called with the lock held.
func (f *API) createQueue(context, device clapi.Handle, properties uint64) (clapi.Handle, clapi.Status) {
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	d, st := f.lookup(clapi.ClassDevice, device)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if !slices.Contains(c.devices, d) {
		return 0, clapi.CL_INVALID_DEVICE
	}
	if properties&^(clapi.QueueOutOfOrderExecModeEnable|clapi.QueueProfilingEnable) != 0 {
		return 0, clapi.CL_INVALID_QUEUE_PROPERTIES
	}
	q := f.newObject(clapi.ClassCommandQueue)
	q.context = c
	q.device = d
	q.properties = properties
	return q.handle, clapi.CL_SUCCESS
}

func (f *API) CreateUserEvent(context clapi.Handle) (clapi.Handle, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clCreateUserEvent")
	c, st := f.lookup(clapi.ClassContext, context)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	e := f.newObject(clapi.ClassEvent)
	e.context = c
	e.user = true
	e.commandType = clapi.CL_COMMAND_USER
	e.status = clapi.CL_SUBMITTED
	return e.handle, clapi.CL_SUCCESS
}

func (f *API) SetUserEventStatus(event clapi.Handle, status int32) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clSetUserEventStatus")
	e, st := f.lookup(clapi.ClassEvent, event)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if !e.user || status > clapi.CL_COMPLETE {
		return clapi.CL_INVALID_VALUE
	}
	if e.status <= clapi.CL_COMPLETE {
		// Status can only be set once.
		return clapi.CL_INVALID_OPERATION
	}
	f.setStatus(e, status)
	f.progress()
	return clapi.CL_SUCCESS
}

func (f *API) SetEventCallback(event clapi.Handle, execType int32, fn clapi.EventCallback) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clSetEventCallback")
	e, st := f.lookup(clapi.ClassEvent, event)
	if st != clapi.CL_SUCCESS {
		return st
	}
	if fn == nil || (execType != clapi.CL_SUBMITTED && execType != clapi.CL_RUNNING && execType != clapi.CL_COMPLETE) {
		return clapi.CL_INVALID_VALUE
	}
	cb := eventCallback{execType: execType, fn: fn}
	if e.status <= execType {
		f.scheduleCallback(e, cb)
		return clapi.CL_SUCCESS
	}
	e.callbacks = append(e.callbacks, cb)
	return clapi.CL_SUCCESS
}

// scheduleCallback arranges for the callback to be called once the lock is released. Callbacks of failed events
// receive the error code, the others the status they were registered for.
func (f *API) scheduleCallback(e *object, cb eventCallback) {
	h, status := e.handle, cb.execType
	if e.status < 0 {
		status = e.status
	}
	f.fire = append(f.fire, func() { cb.fn(h, status) })
}

// setStatus moves the event to the given status, scheduling the callbacks of the stages reached.
func (f *API) setStatus(e *object, status int32) {
	e.status = status
	var remaining []eventCallback
	for _, cb := range e.callbacks {
		if status <= cb.execType {
			f.scheduleCallback(e, cb)
		} else {
			remaining = append(remaining, cb)
		}
	}
	e.callbacks = remaining
	if status <= clapi.CL_COMPLETE {
		f.cond.Broadcast()
	}
}

func (f *API) tick() uint64 {
	f.clock += 1000
	return f.clock
}

// enqueue creates the command and runs every command that became ready.
// If event is not nil, it receives the handle of the command's event. If blocking, it waits for the command to
// complete. Must be called with the lock held: it may release it and acquire it again while waiting.
func (f *API) enqueue(name string, queue clapi.Handle, commandType uint32, blocking bool, wait []clapi.Handle,
	event *clapi.Handle, run func() clapi.Status) clapi.Status {
	f.call(name)
	return f.enqueueCommand(queue, commandType, blocking, false, wait, event, run)
}

// submit is like enqueue, for entry points that already counted the call.
func (f *API) submit(queue clapi.Handle, commandType uint32, blocking bool, wait []clapi.Handle,
	event *clapi.Handle, run func() clapi.Status) clapi.Status {
	return f.enqueueCommand(queue, commandType, blocking, false, wait, event, run)
}

// enqueueWaitAll enqueues a marker or a barrier: without wait list, they wait for all the previous commands.
func (f *API) enqueueWaitAll(name string, queue clapi.Handle, commandType uint32, wait []clapi.Handle,
	event *clapi.Handle) clapi.Status {
	f.call(name)
	return f.enqueueCommand(queue, commandType, false, len(wait) == 0, wait, event, nil)
}

func (f *API) enqueueCommand(queue clapi.Handle, commandType uint32, blocking, waitAll bool,
	wait []clapi.Handle, event *clapi.Handle, run func() clapi.Status) clapi.Status {
	q, st := f.lookup(clapi.ClassCommandQueue, queue)
	if st != clapi.CL_SUCCESS {
		return st
	}
	waitEvents := make([]*object, len(wait))
	for ii, h := range wait {
		e, st := f.lookup(clapi.ClassEvent, h)
		if st != clapi.CL_SUCCESS || e.context != q.context {
			return clapi.CL_INVALID_EVENT_WAIT_LIST
		}
		waitEvents[ii] = e
	}
	if waitAll {
		for _, cmd := range q.pending {
			waitEvents = append(waitEvents, cmd.event)
		}
	}
	e := &object{class: clapi.ClassEvent, context: q.context, queue: q, commandType: commandType, status: clapi.CL_QUEUED}
	e.profile[0] = f.tick()
	if event != nil {
		e = f.exposeEvent(e)
		*event = e.handle
	}
	cmd := &command{queue: q, event: e, wait: waitEvents, run: run}
	if len(q.pending) == 0 {
		f.active = append(f.active, q)
	}
	q.pending = append(q.pending, cmd)
	f.progress()
	if blocking {
		for !cmd.done {
			f.cond.Wait()
		}
		if cmd.event.status < 0 {
			return clapi.Status(cmd.event.status)
		}
	}
	return clapi.CL_SUCCESS
}

// exposeEvent registers the event, so it can be used by handle.
func (f *API) exposeEvent(e *object) *object {
	registered := f.newObject(clapi.ClassEvent)
	e.handle = registered.handle
	e.refCount = registered.refCount
	f.objects[e.handle] = e
	return e
}

// progress runs the commands whose wait lists are complete, until no more commands can run.
func (f *API) progress() {
	for changed := true; changed; {
		changed = false
		var stillActive []*object
		for _, q := range f.active {
			outOfOrder := q.properties&clapi.QueueOutOfOrderExecModeEnable != 0
			var remaining []*command
			blocked := false
			for _, cmd := range q.pending {
				if blocked || !f.ready(cmd) {
					remaining = append(remaining, cmd)
					blocked = !outOfOrder
					continue
				}
				f.execute(cmd)
				changed = true
			}
			q.pending = remaining
			if len(remaining) > 0 {
				stillActive = append(stillActive, q)
			}
		}
		f.active = stillActive
	}
}

// ready returns whether all the events the command waits on have finished (successfully or not).
func (f *API) ready(cmd *command) bool {
	for _, e := range cmd.wait {
		if e.status > clapi.CL_COMPLETE {
			return false
		}
	}
	return true
}

func (f *API) execute(cmd *command) {
	e := cmd.event
	for _, w := range cmd.wait {
		if w.status < 0 {
			f.setStatus(e, int32(clapi.CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST))
			cmd.done = true
			return
		}
	}
	e.profile[1] = f.tick()
	f.setStatus(e, clapi.CL_SUBMITTED)
	e.profile[2] = f.tick()
	f.setStatus(e, clapi.CL_RUNNING)
	st := clapi.CL_SUCCESS
	if cmd.run != nil {
		st = cmd.run()
	}
	e.profile[3] = f.tick()
	e.profile[4] = f.tick()
	if st != clapi.CL_SUCCESS {
		f.setStatus(e, int32(st))
	} else {
		f.setStatus(e, clapi.CL_COMPLETE)
	}
	cmd.done = true
	f.cond.Broadcast()
}

func (f *API) WaitForEvents(events []clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clWaitForEvents")
	if len(events) == 0 {
		return clapi.CL_INVALID_VALUE
	}
	es := make([]*object, len(events))
	for ii, h := range events {
		e, st := f.lookup(clapi.ClassEvent, h)
		if st != clapi.CL_SUCCESS {
			return st
		}
		es[ii] = e
	}
	for _, e := range es {
		for e.status > clapi.CL_COMPLETE {
			f.cond.Wait()
		}
	}
	for _, e := range es {
		if e.status < 0 {
			return clapi.CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST
		}
	}
	return clapi.CL_SUCCESS
}

func (f *API) GetEventProfilingInfo(event clapi.Handle, param uint32) (uint64, clapi.Status) {
	f.mu.Lock()
	defer f.unlock()
	f.call("clGetEventProfilingInfo")
	e, st := f.lookup(clapi.ClassEvent, event)
	if st != clapi.CL_SUCCESS {
		return 0, st
	}
	if e.user || e.queue == nil || e.queue.properties&clapi.QueueProfilingEnable == 0 || e.status != clapi.CL_COMPLETE {
		return 0, clapi.CL_PROFILING_INFO_NOT_AVAILABLE
	}
	idx := int(param) - int(clapi.CL_PROFILING_COMMAND_QUEUED)
	if idx < 0 || idx >= len(e.profile) {
		return 0, clapi.CL_INVALID_VALUE
	}
	if param == clapi.CL_PROFILING_COMMAND_COMPLETE && !f.versionAtLeast("2.0") {
		return 0, clapi.CL_INVALID_VALUE
	}
	return e.profile[idx], clapi.CL_SUCCESS
}

func (f *API) Flush(queue clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clFlush")
	_, st := f.lookup(clapi.ClassCommandQueue, queue)
	return st
}

// Finish waits until all the commands of the queue ran.
func (f *API) Finish(queue clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	f.call("clFinish")
	q, st := f.lookup(clapi.ClassCommandQueue, queue)
	if st != clapi.CL_SUCCESS {
		return st
	}
	for len(q.pending) > 0 {
		f.cond.Wait()
	}
	return clapi.CL_SUCCESS
}

func (f *API) EnqueueMarkerWithWaitList(queue clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.enqueueWaitAll("clEnqueueMarkerWithWaitList", queue, clapi.CL_COMMAND_MARKER, wait, event)
}

func (f *API) EnqueueBarrierWithWaitList(queue clapi.Handle, wait []clapi.Handle, event *clapi.Handle) clapi.Status {
	f.mu.Lock()
	defer f.unlock()
	return f.enqueueWaitAll("clEnqueueBarrierWithWaitList", queue, clapi.CL_COMMAND_BARRIER, wait, event)
}
