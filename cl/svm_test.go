package cl

import (
	"encoding/binary"
	"math"
	"testing"
	"unsafe"

	"github.com/gomlx/gocl/clapi"
	"github.com/stretchr/testify/require"
)

func TestSVM(t *testing.T) {
	env := newTestEnv(t, nil)
	fake, ctx, queue := env.fake, env.ctx, env.queue

	src := capture(ctx.AllocSVM(clapi.MemReadWrite, 256, 64)).Test(t)
	require.Zero(t, uintptr(src.Pointer())%64, "region not aligned")
	require.Equal(t, 256, src.Size())
	require.Equal(t, clapi.MemReadWrite, src.Flags())
	require.True(t, src.Marks().Has(MarkAllocated))
	require.Equal(t, clapi.Handle(uintptr(src.Pointer())), src.Raw())
	dst := capture(ctx.AllocSVM(clapi.MemReadWrite, 128, 0)).Test(t)
	require.Equal(t, 2, fake.SVMRegions())

	capture(queue.SVMMap(true, clapi.MapWrite, src, 0, 256, nil, false)).Test(t)
	capture(queue.SVMMemFill(src, []byte{1, 2}, 0, 256, nil, false)).Test(t)
	capture(queue.SVMUnmap(src, 0, nil, false)).Test(t)
	capture(queue.SVMMemcpy(true, dst, 8, src, 1, 16, nil, false)).Test(t)
	got := dst.Bytes()
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 2, 1, 2, 1}, got[:12])
	capture(queue.SVMMigrateMem([]*SVM{src, dst}, clapi.MigrateMemObjectHost, nil, false)).Test(t)

	// Validation happens before any native call.
	calls := fake.TotalCalls()
	_, err := queue.SVMMemcpy(true, dst, 120, src, 0, 16, nil, false)
	requireErrorIs(t, err, ErrBoundaries)
	_, err = queue.SVMMemFill(src, []byte{1, 2, 3}, 0, 255, nil, false)
	requireErrorIs(t, err, ErrLength)
	_, err = queue.SVMMap(true, clapi.MapRead, src, 200, 100, nil, false)
	requireErrorIs(t, err, ErrBoundaries)
	_, err = queue.SVMMigrateMem(nil, 0, nil, false)
	requireErrorIs(t, err, ErrEmpty)
	_, err = queue.SVMFree([]*SVM{nil}, nil, false)
	requireErrorIs(t, err, ErrValue)
	_, err = ctx.AllocSVM(clapi.MemReadWrite, 64, 3)
	requireErrorIs(t, err, ErrValue)
	_, err = ctx.AllocSVM(clapi.MemReadWrite, 0, 0)
	requireErrorIs(t, err, ErrValue)
	require.Equal(t, calls, fake.TotalCalls())

	// Destroying a region frees it.
	require.NoError(t, dst.Destroy())
	require.Nil(t, dst.Bytes())
	require.Equal(t, 1, fake.Calls("clSVMFree"))
	require.Equal(t, 1, fake.SVMRegions())
	_, err = queue.SVMMemFill(dst, []byte{0}, 0, 16, nil, false)
	requireErrorIs(t, err, ErrDestroyed)

	// SVMFree destroys the region immediately, but the memory is only freed when the command runs.
	user := capture(ctx.CreateUserEvent()).Test(t)
	event := capture(queue.SVMFree([]*SVM{src}, []*Event{user}, true)).Test(t)
	require.True(t, src.IsDestroyed())
	require.True(t, src.Marks().Has(MarkSVMDontFree))
	require.Equal(t, 1, fake.SVMRegions())
	require.NoError(t, user.SetUserStatus(Complete))
	require.NoError(t, event.Wait())
	require.Zero(t, fake.SVMRegions())
	require.Equal(t, 1, fake.Calls("clSVMFree"), "regions freed with SVMFree must not be freed again")
}

func TestSVMFreeRegions(t *testing.T) {
	env := newTestEnv(t, nil)
	fake, ctx, queue := env.fake, env.ctx, env.queue
	a := capture(ctx.AllocSVM(clapi.MemReadWrite, 64, 0)).Test(t)
	b := capture(ctx.AllocSVM(clapi.MemReadWrite, 64, 0)).Test(t)

	// The enqueue fails on a wait list from another context: the regions stay alive, and owned by the context.
	other := capture(env.platform.CreateContext(env.devices[0])).Test(t)
	foreign := capture(other.CreateUserEvent()).Test(t)
	_, err := queue.SVMFree([]*SVM{a, b}, []*Event{foreign}, false)
	st, ok := StatusOf(err)
	require.True(t, ok)
	require.Equal(t, clapi.CL_INVALID_EVENT_WAIT_LIST, st)
	require.False(t, a.IsDestroyed())
	require.False(t, b.IsDestroyed())
	require.Equal(t, 2, fake.SVMRegions())
	require.Len(t, env.lib.Registry().Children(ctx.Raw(), KindSVM), 2)
	require.NoError(t, other.Destroy())

	// A region listed twice is freed once.
	capture(queue.SVMFree([]*SVM{a, b, a}, nil, false)).Test(t)
	require.NoError(t, queue.Finish())
	require.True(t, a.IsDestroyed())
	require.True(t, b.IsDestroyed())
	require.Zero(t, fake.SVMRegions())
	require.Zero(t, fake.Calls("clSVMFree"))
}

func TestKernelSVMArgs(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fake.RegisterKernel("scale", scaleKernel)
	program := capture(env.ctx.CreateProgramWithSource(testSource)).Test(t)
	require.NoError(t, program.Build(""))
	k := capture(program.CreateKernel("scale")).Test(t)

	svm := capture(env.ctx.AllocSVM(clapi.MemReadWrite|clapi.MemSVMFineGrainBuffer, 4*4, 0)).Test(t)
	data := unsafe.Slice((*float32)(svm.Pointer()), 4)
	copy(data, []float32{1, 2, 3, 4})

	// The argument points to the second element.
	require.NoError(t, k.SetArgSVM(0, svm, 4))
	require.NoError(t, k.SetArg(1, float32(-1)))
	capture(env.queue.NDRangeKernel(k, nil, []int{3}, nil, nil, false)).Test(t)
	require.NoError(t, env.queue.Finish())
	require.Equal(t, []float32{1, -2, -3, -4}, data)
	require.Equal(t, math.Float32bits(-4), binary.NativeEndian.Uint32(svm.Bytes()[12:]))

	requireErrorIs(t, k.SetArgSVM(0, nil, 0), ErrValue)
	requireErrorIs(t, k.SetArgSVM(0, svm, 17), ErrBoundaries)
	requireErrorIs(t, k.SetArgSVM(-1, svm, 0), ErrValue)
	err := k.SetArgSVM(2, svm, 0)
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_ARG_INDEX, st)
}

func TestDefaultQueue(t *testing.T) {
	env := newTestEnv(t, nil)
	queue := capture(env.ctx.NewQueue(env.devices[1]).OutOfOrder().Done()).Test(t)
	other := capture(env.ctx.NewQueue(env.devices[1]).Profiling().Done()).Test(t)
	require.Nil(t, capture(other.DefaultDeviceQueue()).Test(t))

	require.NoError(t, queue.SetAsDefault())
	require.Equal(t, 1, env.fake.Calls("clSetDefaultDeviceCommandQueue"))
	require.Same(t, env.devices[1], queue.Device())
	require.Same(t, env.ctx, queue.Context())
	require.Same(t, queue, capture(other.DefaultDeviceQueue()).Test(t))
	require.Nil(t, capture(env.queue.DefaultDeviceQueue()).Test(t), "the default queue is per device")

	require.Equal(t, clapi.QueueOutOfOrderExecModeEnable, capture(queue.Properties()).Test(t))
	require.Equal(t, clapi.QueueProfilingEnable, capture(other.Properties()).Test(t))
	require.Zero(t, capture(env.queue.Properties()).Test(t))

	// Once destroyed, the device has no default queue.
	require.NoError(t, queue.Destroy())
	require.Nil(t, capture(other.DefaultDeviceQueue()).Test(t))
	_, err := queue.Properties()
	requireErrorIs(t, err, ErrDestroyed)
}
