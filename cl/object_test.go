package cl

import (
	"runtime"
	"testing"
	"time"

	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/clfake"
	"github.com/stretchr/testify/require"
)

const testSource = `
__kernel void scale(__global float *x, float factor) {
	x[get_global_id(0)] *= factor;
}

__kernel void fill(__global int *x, int value, __local int *scratch) {
	x[get_global_id(0)] = value;
}
`

func TestKindAndMarks(t *testing.T) {
	require.Equal(t, "buffer", KindBuffer.String())
	require.Equal(t, "svm", KindSVM.String())
	kind, err := KindString("queue")
	require.NoError(t, err)
	require.Equal(t, KindQueue, kind)
	require.Len(t, KindValues(), 12)

	marks := MarkSubBuffer | MarkAllocated
	require.Equal(t, "sub_buffer|allocated", marks.String())
	require.True(t, marks.Has(MarkSubBuffer))
	require.False(t, marks.Has(MarkSubBuffer|MarkSubDevice))
	require.True(t, marks.HasAny(MarkSubBuffer|MarkSubDevice))
	require.Equal(t, "", Marks(0).String())
}

func TestCascadingDestroy(t *testing.T) {
	env := newTestEnv(t, nil)
	fake, ctx, queue := env.fake, env.ctx, env.queue

	buf := capture(ctx.NewBuffer().Size(256).Done()).Test(t)
	sub := capture(buf.CreateSubBuffer(clapi.MemReadOnly, 64, 64)).Test(t)
	img := capture(ctx.CreateImage(clapi.MemReadWrite,
		clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_UNORM_INT8},
		clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D, Width: 8, Height: 8}, nil)).Test(t)
	pipe := capture(ctx.CreatePipe(clapi.MemReadWrite, 16, 32)).Test(t)
	sampler := capture(ctx.CreateSampler(false, clapi.CL_ADDRESS_CLAMP, clapi.CL_FILTER_NEAREST)).Test(t)
	program := capture(ctx.CreateProgramWithSource(testSource)).Test(t)
	require.NoError(t, program.Build(""))
	kernels := capture(program.CreateKernels()).Test(t)
	require.Len(t, kernels, 2)
	userEvent := capture(ctx.CreateUserEvent()).Test(t)
	marker := capture(queue.Marker(nil, true)).Test(t)
	svm := capture(ctx.AllocSVM(clapi.MemReadWrite, 1024, 0)).Test(t)
	require.Equal(t, 1, fake.SVMRegions())

	// Context, queue, 2 buffers, image, pipe, sampler, program, 2 kernels and 2 events.
	require.Equal(t, 12, fake.LiveTotal())
	numRoots := 1 + len(env.devices)
	require.Equal(t, numRoots+12+1, env.lib.Registry().Len())

	require.Same(t, ctx, sub.Context())
	require.Same(t, buf, sub.Parent())
	require.Same(t, program, kernels[0].Program())
	require.Same(t, ctx, svm.Context())

	require.NoError(t, ctx.Destroy())
	for _, w := range []Wrapper{ctx, queue, buf, sub, img, pipe, sampler, program, kernels[0], kernels[1],
		userEvent, marker, svm} {
		require.True(t, w.record().IsDestroyed(), "%s not destroyed", w.record())
		_, found := env.lib.Registry().Lookup(w.Raw())
		require.False(t, found, "%s still registered", w.record())
	}
	require.Zero(t, fake.LiveTotal())
	require.Zero(t, fake.SVMRegions())
	require.Equal(t, numRoots, env.lib.Registry().Len())
	require.Equal(t, 1, fake.Calls("clReleaseContext"))
	require.Equal(t, 2, fake.Calls("clReleaseKernel"))
	require.Equal(t, 1, fake.Calls("clFinish"), "queues must be finished before being released")

	// Destroy is idempotent.
	require.NoError(t, ctx.Destroy())
	require.NoError(t, buf.Destroy())
	require.Equal(t, 1, fake.Calls("clReleaseContext"))

	// Destroyed objects can't be used.
	_, err := queue.Marker(nil, false)
	requireErrorIs(t, err, ErrDestroyed)
	_, err = buf.CreateSubBuffer(0, 0, 16)
	requireErrorIs(t, err, ErrDestroyed)
	_, err = kernels[0].NumArgs()
	requireErrorIs(t, err, ErrDestroyed)
	_, err = marker.ReferenceCount()
	requireErrorIs(t, err, ErrDestroyed)
	requireErrorIs(t, marker.Retain(), ErrDestroyed)
	require.NoError(t, marker.Release())
	require.Nil(t, svm.Bytes())

	// The platform and its devices are still usable.
	ctx2 := capture(env.platform.CreateContext(env.devices[1])).Test(t)
	require.NoError(t, ctx2.Release())
	require.True(t, ctx2.IsDestroyed())
}

func TestDestroyProgramDestroysKernels(t *testing.T) {
	env := newTestEnv(t, nil)
	program := capture(env.ctx.CreateProgramWithSource(testSource)).Test(t)
	require.NoError(t, program.Build(""))
	k := capture(program.CreateKernel("scale")).Test(t)
	require.NoError(t, program.Destroy())
	require.True(t, k.IsDestroyed())
	require.Zero(t, env.fake.Live(clapi.ClassKernel))
	require.Zero(t, env.fake.Live(clapi.ClassProgram))
	require.False(t, env.ctx.IsDestroyed())
}

func TestRetainRelease(t *testing.T) {
	env := newTestEnv(t, nil)
	fake := env.fake
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	require.NoError(t, buf.Retain())
	require.NoError(t, buf.Retain())
	require.Equal(t, 3, capture(buf.ReferenceCount()).Test(t))

	// Not the last reference: the object stays alive.
	require.NoError(t, buf.Release())
	require.False(t, buf.IsDestroyed())
	require.Equal(t, 2, capture(buf.ReferenceCount()).Test(t))
	require.Equal(t, 1, fake.Calls("clReleaseMemObject"))

	// Destroy releases all the remaining references.
	require.NoError(t, buf.Destroy())
	require.True(t, buf.IsDestroyed())
	require.Equal(t, 3, fake.Calls("clReleaseMemObject"))
	require.Zero(t, fake.Live(clapi.ClassMem))

	// Releasing the last reference destroys the object.
	buf2 := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	sub := capture(buf2.CreateSubBuffer(0, 0, 32)).Test(t)
	require.NoError(t, buf2.Release())
	require.True(t, buf2.IsDestroyed())
	require.True(t, sub.IsDestroyed())
	require.Zero(t, fake.Live(clapi.ClassMem))
}

func TestUncountedObjects(t *testing.T) {
	env := newTestEnv(t, nil)
	fake := env.fake

	// Platforms and root devices have no native reference count.
	require.Equal(t, 1, capture(env.platform.ReferenceCount()).Test(t))
	device := env.devices[1]
	require.NoError(t, device.Retain())
	require.Zero(t, fake.Calls("clRetainDevice"))
	require.Equal(t, 1, capture(device.ReferenceCount()).Test(t))

	// Releasing them destroys the wrapper, with no native release.
	require.NoError(t, device.Release())
	require.True(t, device.IsDestroyed())
	require.Zero(t, fake.Calls("clReleaseDevice"))

	// Enumerating again creates a new wrapper for the same handle.
	devices := capture(env.platform.GetDevices(clapi.DeviceTypeAll)).Test(t)
	require.Same(t, env.devices[0], devices[0])
	require.NotSame(t, device, devices[1])
	require.Equal(t, device.Raw(), devices[1].Raw())
}

func TestSubDevices(t *testing.T) {
	env := newTestEnv(t, nil)
	fake := env.fake
	root := env.devices[1]
	subs := capture(root.CreateSubDevices(clapi.CL_DEVICE_PARTITION_EQUALLY, 2)).Test(t)
	require.Len(t, subs, 2)
	require.True(t, root.Marks().Has(MarkHasSubDevices))
	for _, sub := range subs {
		require.True(t, sub.Marks().Has(MarkSubDevice))
		require.Same(t, root, sub.ParentDevice())
		require.Same(t, env.platform, sub.Platform())
	}
	subSubs := capture(subs[0].CreateSubDevices(clapi.CL_DEVICE_PARTITION_EQUALLY, 1)).Test(t)
	require.Len(t, subSubs, 2)
	require.Same(t, subs[0], subSubs[1].ParentDevice())
	require.Equal(t, 4, fake.Live(clapi.ClassDevice))

	// Sub-devices are reference counted.
	require.NoError(t, subs[1].Retain())
	require.Equal(t, 1, fake.Calls("clRetainDevice"))
	require.Equal(t, 2, capture(subs[1].ReferenceCount()).Test(t))

	_, err := root.CreateSubDevices()
	requireErrorIs(t, err, ErrEmpty)
	_, err = root.CreateSubDevices(0x4242, 1)
	require.True(t, IsNative(err))

	// Destroying the root device destroys all the sub-devices, recursively.
	require.NoError(t, root.Destroy())
	for _, d := range append(subs, subSubs...) {
		require.True(t, d.IsDestroyed())
	}
	require.Zero(t, fake.Live(clapi.ClassDevice))
	require.Equal(t, 1+2+2, fake.Calls("clReleaseDevice"))

	// Devices without sub-devices don't own anything: destroying them leaves the rest alone.
	require.NoError(t, env.devices[0].Destroy())
	require.False(t, env.ctx.IsDestroyed())
	require.False(t, env.queue.IsDestroyed())
}

func TestSubDevicesPartialFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	fake := env.fake

	// Handles are allocated sequentially: the second sub-device gets a handle already registered, so wrapping it
	// fails.
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	taken := env.lib.newObject(buf.Raw()+0x20, KindBuffer, env.ctx.Object, nil)
	require.NoError(t, env.lib.registry.Register(taken))

	_, err := env.devices[1].CreateSubDevices(clapi.CL_DEVICE_PARTITION_EQUALLY, 2)
	requireErrorIs(t, err, ErrInternal)
	require.Zero(t, fake.Live(clapi.ClassDevice), "sub-devices leaked")
	require.Equal(t, 2, fake.Calls("clReleaseDevice"))
	require.Empty(t, env.lib.Registry().Children(env.devices[1].Raw(), KindDevice))
	require.NoError(t, taken.Destroy())
}

func TestDestructorCallback(t *testing.T) {
	env := newTestEnv(t, nil)
	fake := env.fake
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	require.Equal(t, 1, fake.Calls("clSetMemObjectDestructorCallback"))

	// The runtime deletes the object, released by some other owner of the handle.
	require.NoError(t, nativeError("clReleaseMemObject", env.lib.API().Release(clapi.ClassMem, buf.Raw())))
	require.True(t, buf.IsDestroyed())
	require.True(t, buf.Marks().Has(MarkNativeDeleted))
	_, found := env.lib.Registry().Lookup(buf.Raw())
	require.False(t, found)
	// It's not released again.
	require.Equal(t, 1, fake.Calls("clReleaseMemObject"))

	// Destroying the object normally: the callback arrives after it was unregistered, and it's ignored.
	buf2 := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	require.NoError(t, buf2.Destroy())
	require.False(t, buf2.Marks().Has(MarkNativeDeleted))
	require.Equal(t, 2, fake.Calls("clReleaseMemObject"))
}

// lateDestructors delivers the memory object destructor callbacks only when fired by the test, as a runtime
// notifying from another thread would.
type lateDestructors struct {
	*clfake.API
	pending []func()
}

func (l *lateDestructors) SetMemObjectDestructorCallback(mem clapi.Handle, fn clapi.MemCallback) clapi.Status {
	st := l.API.SetMemObjectDestructorCallback(mem, func(clapi.Handle) {})
	if st == clapi.CL_SUCCESS {
		l.pending = append(l.pending, func() { fn(mem) })
	}
	return st
}

func TestLateDestructorCallback(t *testing.T) {
	fake := clfake.New().WithHandleReuse()
	backend := &lateDestructors{API: fake}
	lib := New(backend)
	defer lib.Close()
	platform := capture(lib.GetPlatforms()).Test(t)[0]
	devices := capture(platform.GetDevices(clapi.DeviceTypeAll)).Test(t)
	ctx := capture(platform.CreateContext(devices...)).Test(t)

	b1 := capture(ctx.NewBuffer().Size(64).Done()).Test(t)
	require.NoError(t, b1.Destroy())
	b2 := capture(ctx.NewBuffer().Size(64).Done()).Test(t)
	require.Equal(t, b1.Raw(), b2.Raw(), "handle of the deleted buffer not reused")
	require.Len(t, backend.pending, 2)

	// The callback for b1 arrives after its handle was given to b2.
	backend.pending[0]()
	require.False(t, b2.IsDestroyed())
	require.False(t, b2.Marks().Has(MarkNativeDeleted))
	o, found := lib.Registry().Lookup(b2.Raw())
	require.True(t, found)
	require.Same(t, b2.Object, o)
	require.Equal(t, 1, fake.Live(clapi.ClassMem))

	// b2's own callback still works.
	require.NoError(t, nativeError("clReleaseMemObject", fake.Release(clapi.ClassMem, b2.Raw())))
	backend.pending[1]()
	require.True(t, b2.IsDestroyed())
	require.True(t, b2.Marks().Has(MarkNativeDeleted))
	require.NoError(t, ctx.Destroy())
	require.Zero(t, fake.LiveTotal())
}

func TestLookupWrapper(t *testing.T) {
	env := newTestEnv(t, nil)
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)

	got, found, err := lookupWrapper[*Buffer](env.lib, buf.Raw())
	require.NoError(t, err)
	require.True(t, found)
	require.Same(t, buf, got)

	_, found, err = lookupWrapper[*Buffer](env.lib, 0x7777)
	require.NoError(t, err)
	require.False(t, found)

	// A live wrapper of another type is an inconsistency: the object is left alone.
	_, found, err = lookupWrapper[*Queue](env.lib, buf.Raw())
	requireErrorIs(t, err, ErrInternal)
	require.False(t, found)
	require.False(t, buf.IsDestroyed())
	require.Equal(t, 1, env.fake.Live(clapi.ClassMem))
}

func TestWithoutDestructorCallbacks(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithoutDestructorCallbacks())
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	require.False(t, buf.IsDestroyed())
	require.NoError(t, buf.Destroy())
	require.Zero(t, env.fake.Live(clapi.ClassMem))
}

func TestGarbageCollectedWrappers(t *testing.T) {
	env := newTestEnv(t, nil)
	fake := env.fake
	func() {
		buf := capture(env.ctx.NewBuffer().Size(1024).Done()).Test(t)
		capture(buf.CreateSubBuffer(0, 0, 512)).Test(t)
	}()
	require.Equal(t, 2, fake.Live(clapi.ClassMem))
	require.Eventually(t, func() bool {
		runtime.GC()
		return fake.Live(clapi.ClassMem) == 0
	}, 10*time.Second, 10*time.Millisecond, "buffers not released after their wrappers were garbage collected")
	require.Eventually(t, func() bool {
		return len(env.lib.Registry().Children(env.ctx.Raw(), KindBuffer)) == 0
	}, time.Second, time.Millisecond)
}
