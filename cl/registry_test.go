package cl

import (
	"testing"

	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/clfake"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	platform := &Object{handle: 0x100, kind: KindPlatform}
	ctx := &Object{handle: 0x300, kind: KindContext, parent: 0x100}
	buffers := []*Object{
		{handle: 0x500, kind: KindBuffer, parent: 0x300},
		{handle: 0x400, kind: KindBuffer, parent: 0x300},
	}
	queue := &Object{handle: 0x200, kind: KindQueue, parent: 0x300}
	for _, o := range append([]*Object{platform, ctx, queue}, buffers...) {
		require.NoError(t, r.Register(o))
	}
	require.Equal(t, 5, r.Len())
	require.Equal(t, []clapi.Handle{0x100, 0x200, 0x300, 0x400, 0x500}, r.Handles())

	// At most one object per handle.
	err := r.Register(&Object{handle: 0x400, kind: KindImage, parent: 0x300})
	requireErrorIs(t, err, ErrInternal)
	o, found := r.Lookup(0x400)
	require.True(t, found)
	require.Same(t, buffers[1], o)

	// Children of a kind, ordered by handle.
	children := r.Children(0x300, KindBuffer)
	require.Equal(t, []*Object{buffers[1], buffers[0]}, children)
	require.Equal(t, []*Object{queue}, r.Children(0x300, KindQueue))
	require.Empty(t, r.Children(0x300, KindEvent))
	require.Equal(t, []*Object{ctx}, r.Children(0x100, KindContext))

	require.True(t, r.Unregister(0x400))
	require.False(t, r.Unregister(0x400))
	_, found = r.Lookup(0x400)
	require.False(t, found)
	require.Equal(t, 4, r.Len())

	// The handle can be registered again to a new object.
	image := &Object{handle: 0x400, kind: KindImage, parent: 0x300}
	require.NoError(t, r.Register(image))
	o, _ = r.Lookup(0x400)
	require.Same(t, image, o)
}

func TestRegistryOneWrapperPerHandle(t *testing.T) {
	env := newTestEnv(t, nil)
	devices := capture(env.platform.GetDevices(clapi.DeviceTypeAll)).Test(t)
	require.Len(t, devices, len(env.devices))
	for ii := range devices {
		require.Same(t, env.devices[ii], devices[ii])
	}
	ctxDevices := capture(env.ctx.Devices()).Test(t)
	for ii := range ctxDevices {
		require.Same(t, env.devices[ii], ctxDevices[ii])
	}

	// The queue of an event is its registered wrapper.
	event := capture(env.queue.Marker(nil, true)).Test(t)
	q := capture(event.Queue()).Test(t)
	require.Same(t, env.queue, q)
	require.Same(t, env.ctx, event.Context())

	// Wrappers are found by handle.
	o, found := env.lib.Registry().Lookup(event.Raw())
	require.True(t, found)
	require.Same(t, event, o.Wrapper())
	require.Same(t, env.ctx, event.Parent())
}

func TestRegistryHandleReuse(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithHandleReuse())
	b1 := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)
	h := b1.Raw()
	require.NoError(t, b1.Destroy())
	require.True(t, b1.IsDestroyed())
	_, found := env.lib.Registry().Lookup(h)
	require.False(t, found)

	// The runtime hands out the same handle value for the next object: it must be tracked by a new wrapper.
	b2 := capture(env.ctx.NewBuffer().Size(32).Done()).Test(t)
	require.Equal(t, h, b2.Raw())
	require.NotSame(t, b1, b2)
	o, found := env.lib.Registry().Lookup(h)
	require.True(t, found)
	require.Same(t, b2, o.Wrapper())
	require.Equal(t, 32, b2.Size())

	// The stale wrapper doesn't reach the new object.
	_, err := env.queue.WriteBuffer(b1, true, 0, make([]byte, 8), nil, false)
	requireErrorIs(t, err, ErrDestroyed)
	require.NoError(t, b1.Destroy())
	require.NoError(t, b1.Release())
	require.False(t, b2.IsDestroyed())
	refCount := capture(b2.ReferenceCount()).Test(t)
	require.Equal(t, 1, refCount)
}
