package cl

import (
	"sync"
	"testing"

	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/clfake"
	"github.com/stretchr/testify/require"
)

func TestExecStatus(t *testing.T) {
	require.Equal(t, "Complete", Complete.String())
	require.Equal(t, "Queued", Queued.String())
	failed := ExecStatus(clapi.CL_OUT_OF_RESOURCES)
	require.True(t, failed.Failed())
	require.Equal(t, "Failed(CL_OUT_OF_RESOURCES)", failed.String())
	require.Equal(t, "Failed(-12345)", ExecStatus(-12345).String())
	require.NoError(t, Running.Err())
	st, ok := StatusOf(failed.Err())
	require.True(t, ok)
	require.Equal(t, clapi.CL_OUT_OF_RESOURCES, st)
	require.Equal(t, "Running", StageRunning.String())
}

func TestEventCallbacks(t *testing.T) {
	env := newTestEnv(t, nil)
	user := capture(env.ctx.CreateUserEvent()).Test(t)
	require.Equal(t, uint32(clapi.CL_COMMAND_USER), capture(user.CommandType()).Test(t))
	q := capture(user.Queue()).Test(t)
	require.Nil(t, q)
	require.NoError(t, user.SetCallback(StageComplete))
	_, ok := user.Poll(StageComplete)
	require.False(t, ok)

	// The marker can't run until the user event completes.
	marker := capture(env.queue.Marker([]*Event{user}, true)).Test(t)
	require.NoError(t, marker.SetCallback(StageRunning))
	require.NoError(t, marker.SetCallback(StageComplete))
	require.Equal(t, Queued, capture(marker.Status()).Test(t))
	_, ok = marker.Poll(StageRunning)
	require.False(t, ok)

	require.NoError(t, user.SetUserStatus(Complete))
	status, ok := user.Poll(StageComplete)
	require.True(t, ok)
	require.Equal(t, Complete, status)
	// Each callback is consumed only once.
	_, ok = user.Poll(StageComplete)
	require.False(t, ok)

	require.NoError(t, marker.Wait())
	status, ok = marker.Poll(StageRunning)
	require.True(t, ok)
	require.Equal(t, Running, status)
	status, ok = marker.Poll(StageComplete)
	require.True(t, ok)
	require.Equal(t, Complete, status)
	_, ok = marker.Poll(StageSubmitted)
	require.False(t, ok, "no callback was registered for StageSubmitted")
	require.Equal(t, Complete, capture(marker.Status()).Test(t))

	// Registering a callback for a stage already reached fires it immediately.
	require.NoError(t, marker.SetCallback(StageSubmitted))
	status, ok = marker.Poll(StageSubmitted)
	require.True(t, ok)
	require.Equal(t, Submitted, status)

	requireErrorIs(t, marker.SetCallback(CallbackStage(7)), ErrValue)
	_, ok = marker.Poll(CallbackStage(-1))
	require.False(t, ok)

	// The user status can only be set once, and only to Complete or an error.
	requireErrorIs(t, user.SetUserStatus(Running), ErrValue)
	require.True(t, IsNative(user.SetUserStatus(Complete)))
}

func TestEventFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	user := capture(env.ctx.CreateUserEvent()).Test(t)
	marker := capture(env.queue.Marker([]*Event{user}, true)).Test(t)
	require.NoError(t, user.SetCallback(StageComplete))
	require.NoError(t, marker.SetCallback(StageComplete))

	require.NoError(t, user.SetUserStatus(ExecStatus(clapi.CL_OUT_OF_RESOURCES)))
	status, ok := user.Poll(StageComplete)
	require.True(t, ok)
	require.True(t, status.Failed())
	require.Equal(t, ExecStatus(clapi.CL_OUT_OF_RESOURCES), status)

	// Commands waiting on a failed event fail too.
	status, ok = marker.Poll(StageComplete)
	require.True(t, ok)
	require.Equal(t, ExecStatus(clapi.CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST), status)
	require.True(t, capture(marker.Status()).Test(t).Failed())

	err := WaitForEvents(marker)
	require.True(t, IsNative(err))
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST, st)
}

func TestPollConcurrently(t *testing.T) {
	env := newTestEnv(t, nil)
	user := capture(env.ctx.CreateUserEvent()).Test(t)
	require.NoError(t, user.SetCallback(StageComplete))
	require.NoError(t, user.SetUserStatus(Complete))

	// Only one of the pollers gets the callback.
	const numPollers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	numOk := 0
	for range numPollers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := user.Poll(StageComplete); ok {
				mu.Lock()
				numOk++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, numOk)
}

func TestWaitForEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	requireErrorIs(t, WaitForEvents(), ErrEmpty)
	requireErrorIs(t, WaitForEvents(nil), ErrValue)

	user := capture(env.ctx.CreateUserEvent()).Test(t)
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	fill := capture(env.queue.FillBuffer(buf, []byte{1, 2}, 0, 64, []*Event{user}, true)).Test(t)
	marker := capture(env.queue.Marker(nil, true)).Test(t)

	done := make(chan error, 1)
	go func() {
		done <- WaitForEvents(fill, marker)
	}()
	select {
	case err := <-done:
		t.Fatalf("WaitForEvents returned before the user event completed: %v", err)
	default:
	}
	require.NoError(t, user.SetUserStatus(Complete))
	require.NoError(t, <-done)
	data := env.fake.Memory(buf.Raw())
	require.Equal(t, []byte{1, 2, 1, 2}, data[:4])

	// Events from different libraries can't be mixed.
	other := newTestEnv(t, nil)
	otherEvent := capture(other.queue.Marker(nil, true)).Test(t)
	requireErrorIs(t, WaitForEvents(marker, otherEvent), ErrValue)

	require.NoError(t, marker.Destroy())
	requireErrorIs(t, WaitForEvents(fill, marker), ErrDestroyed)
}

func TestProfiling(t *testing.T) {
	env := newTestEnv(t, nil)
	queue := capture(env.ctx.NewQueue(env.devices[0]).Profiling().Done()).Test(t)
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	event := capture(queue.WriteBuffer(buf, true, 0, make([]byte, 64), nil, true)).Test(t)
	profile := capture(event.Profiling()).Test(t)
	require.Less(t, profile.Queued, profile.Submit)
	require.Less(t, profile.Submit, profile.Start)
	require.Less(t, profile.Start, profile.End)
	require.LessOrEqual(t, profile.End, profile.Complete)
	require.Positive(t, int64(profile.Duration()))

	// Queues without profiling enabled have no profiling information.
	event = capture(env.queue.WriteBuffer(buf, true, 0, make([]byte, 64), nil, true)).Test(t)
	_, err := event.Profiling()
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_PROFILING_INFO_NOT_AVAILABLE, st)
}

func TestProfilingBeforeVersion2(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithVersion("1.2"))
	queue := capture(env.ctx.NewQueue(env.devices[0]).Profiling().Done()).Test(t)
	event := capture(queue.Marker(nil, true)).Test(t)
	require.NoError(t, event.Wait())
	profile := capture(event.Profiling()).Test(t)
	// CL_PROFILING_COMMAND_COMPLETE is not reported: it defaults to the end.
	require.Equal(t, profile.End, profile.Complete)
}
