package cl

import (
	"bytes"
	"testing"

	"github.com/gomlx/gocl/clapi"
	"github.com/stretchr/testify/require"
)

func iota8(n int) []byte {
	data := make([]byte, n)
	for ii := range data {
		data[ii] = byte(ii)
	}
	return data
}

func TestBufferTransfers(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue := env.ctx, env.queue
	src := capture(ctx.NewBuffer().FromHost(iota8(64)).Done()).Test(t)
	require.Equal(t, 64, src.Size())
	require.True(t, src.Flags()&clapi.MemCopyHostPtr != 0)
	dst := capture(ctx.NewBuffer().Size(64).Flags(clapi.MemReadWrite).Done()).Test(t)

	// Non-blocking copy, then a blocking read that waits on it.
	copied := capture(queue.CopyBuffer(src, dst, 8, 0, 32, nil, true)).Test(t)
	got := make([]byte, 32)
	event := capture(queue.ReadBuffer(dst, true, 0, got, []*Event{copied}, false)).Test(t)
	require.Nil(t, event)
	require.Equal(t, iota8(40)[8:], got)

	_, err := queue.WriteBuffer(dst, true, 60, []byte{0xFF, 0xFE, 0xFD, 0xFC}, nil, false)
	require.NoError(t, err)
	_, err = queue.FillBuffer(dst, []byte{7, 7}, 32, 16, nil, false)
	require.NoError(t, err)
	require.NoError(t, queue.Finish())
	all := make([]byte, 64)
	capture(queue.ReadBuffer(dst, true, 0, all, nil, false)).Test(t)
	require.Equal(t, bytes.Repeat([]byte{7}, 16), all[32:48])
	require.Equal(t, []byte{0xFF, 0xFE, 0xFD, 0xFC}, all[60:])

	// Sub-buffers share the storage of their buffer.
	sub := capture(dst.CreateSubBuffer(clapi.MemReadWrite, 32, 16)).Test(t)
	require.Equal(t, 32, sub.Origin())
	require.True(t, sub.Marks().Has(MarkSubBuffer))
	_, err = queue.FillBuffer(sub, []byte{9}, 0, 16, nil, false)
	require.NoError(t, err)
	capture(queue.ReadBuffer(dst, true, 32, all[:16], nil, false)).Test(t)
	require.Equal(t, bytes.Repeat([]byte{9}, 16), all[:16])
	require.NoError(t, queue.Flush())
}

func TestBufferRect(t *testing.T) {
	env := newTestEnv(t, nil)
	queue := env.queue
	// A 4x4 matrix of bytes.
	buf := capture(env.ctx.NewBuffer().FromHost(iota8(16)).Done()).Test(t)

	// Read the 2x2 block at (1, 1).
	block := make([]byte, 4)
	rect := clapi.BufferRect{BufferOrigin: [3]int{1, 1, 0}, Region: [3]int{2, 2, 1}, BufferRowPitch: 4}
	capture(queue.ReadBufferRect(buf, true, rect, block, nil, false)).Test(t)
	require.Equal(t, []byte{5, 6, 9, 10}, block)

	// Write it back transposed to the top-left corner.
	rect = clapi.BufferRect{Region: [3]int{2, 2, 1}, BufferRowPitch: 4}
	capture(queue.WriteBufferRect(buf, true, rect, []byte{5, 9, 6, 10}, nil, false)).Test(t)

	dst := capture(env.ctx.NewBuffer().Size(16).Done()).Test(t)
	copyRect := clapi.CopyRect{Region: [3]int{4, 2, 1}, SrcRowPitch: 4, DstOrigin: [3]int{0, 2, 0}, DstRowPitch: 4}
	capture(queue.CopyBufferRect(buf, dst, copyRect, nil, false)).Test(t)
	got := make([]byte, 16)
	capture(queue.ReadBuffer(dst, true, 0, got, nil, false)).Test(t)
	require.Equal(t, []byte{5, 9, 2, 3, 6, 10, 6, 7}, got[8:])

	// Out of bounds rectangles are rejected before calling the runtime.
	calls := env.fake.TotalCalls()
	rect = clapi.BufferRect{BufferOrigin: [3]int{3, 3, 0}, Region: [3]int{2, 2, 1}, BufferRowPitch: 4}
	_, err := queue.ReadBufferRect(buf, true, rect, block, nil, false)
	requireErrorIs(t, err, ErrBoundaries)
	rect = clapi.BufferRect{Region: [3]int{2, 2, 1}, BufferRowPitch: 4, HostRowPitch: 3}
	_, err = queue.ReadBufferRect(buf, true, rect, block, nil, false)
	requireErrorIs(t, err, ErrBoundaries)
	rect = clapi.BufferRect{Region: [3]int{2, 2, 1}, BufferRowPitch: 1}
	_, err = queue.WriteBufferRect(buf, true, rect, block, nil, false)
	requireErrorIs(t, err, ErrValue)
	require.Equal(t, calls, env.fake.TotalCalls())
}

func TestEnqueueValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue, fake := env.ctx, env.queue, env.fake
	buf := capture(ctx.NewBuffer().Size(64).Done()).Test(t)
	other := capture(ctx.NewBuffer().Size(16).Done()).Test(t)
	img := capture(ctx.CreateImage(clapi.MemReadWrite,
		clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_UNORM_INT8},
		clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D, Width: 4, Height: 4}, nil)).Test(t)
	destroyedEvent := capture(queue.Marker(nil, true)).Test(t)
	require.NoError(t, destroyedEvent.Destroy())
	calls := fake.TotalCalls()

	for _, tc := range []struct {
		name string
		err  error
		call func() error
	}{
		{"read out of bounds", ErrBoundaries, func() error {
			_, err := queue.ReadBuffer(buf, true, 60, make([]byte, 8), nil, false)
			return err
		}},
		{"read negative offset", ErrBoundaries, func() error {
			_, err := queue.ReadBuffer(buf, true, -1, make([]byte, 8), nil, false)
			return err
		}},
		{"read empty", ErrEmpty, func() error {
			_, err := queue.ReadBuffer(buf, true, 0, nil, nil, false)
			return err
		}},
		{"write nil buffer", ErrValue, func() error {
			_, err := queue.WriteBuffer(nil, true, 0, make([]byte, 8), nil, false)
			return err
		}},
		{"write offset at end", ErrBoundaries, func() error {
			_, err := queue.WriteBuffer(buf, true, 64, make([]byte, 1), nil, false)
			return err
		}},
		{"copy too large", ErrBoundaries, func() error {
			_, err := queue.CopyBuffer(buf, other, 0, 0, 32, nil, false)
			return err
		}},
		{"copy zero bytes", ErrValue, func() error {
			_, err := queue.CopyBuffer(buf, other, 0, 0, 0, nil, false)
			return err
		}},
		{"fill pattern not power of 2", ErrLength, func() error {
			_, err := queue.FillBuffer(buf, []byte{1, 2, 3}, 0, 48, nil, false)
			return err
		}},
		{"fill pattern too large", ErrLength, func() error {
			_, err := queue.FillBuffer(buf, make([]byte, 256), 0, 64, nil, false)
			return err
		}},
		{"fill unaligned size", ErrLength, func() error {
			_, err := queue.FillBuffer(buf, []byte{1, 2, 3, 4}, 0, 30, nil, false)
			return err
		}},
		{"fill empty pattern", ErrEmpty, func() error {
			_, err := queue.FillBuffer(buf, nil, 0, 64, nil, false)
			return err
		}},
		{"map out of bounds", ErrBoundaries, func() error {
			_, _, err := queue.MapBuffer(buf, true, clapi.MapRead, 32, 64, nil, false)
			return err
		}},
		{"image region out of bounds", ErrBoundaries, func() error {
			_, err := queue.ReadImage(img, true, [3]int{2, 0, 0}, [3]int{4, 1, 1}, 0, 0, make([]byte, 16), nil, false)
			return err
		}},
		{"image host too small", ErrBoundaries, func() error {
			_, err := queue.WriteImage(img, true, [3]int{}, [3]int{4, 4, 1}, 0, 0, make([]byte, 32), nil, false)
			return err
		}},
		{"image empty region", ErrBoundaries, func() error {
			_, err := queue.FillImage(img, [16]byte{}, [3]int{}, [3]int{0, 1, 1}, nil, false)
			return err
		}},
		{"image to buffer too large", ErrBoundaries, func() error {
			_, err := queue.CopyImageToBuffer(img, other, [3]int{}, [3]int{4, 4, 1}, 0, nil, false)
			return err
		}},
		{"unmap empty", ErrEmpty, func() error {
			_, err := queue.Unmap(buf, nil, nil, false)
			return err
		}},
		{"unmap not a memory object", ErrValue, func() error {
			_, err := queue.Unmap(queue, []byte{1}, nil, false)
			return err
		}},
		{"migrate nothing", ErrEmpty, func() error {
			_, err := queue.MigrateMemObjects(nil, 0, nil, false)
			return err
		}},
		{"destroyed event in wait list", ErrDestroyed, func() error {
			_, err := queue.Marker([]*Event{destroyedEvent}, false)
			return err
		}},
		{"nil event in wait list", ErrValue, func() error {
			_, err := queue.Barrier([]*Event{nil}, false)
			return err
		}},
		{"buffer without size", ErrValue, func() error {
			_, err := ctx.NewBuffer().Done()
			return err
		}},
		{"buffer negative size", ErrValue, func() error {
			_, err := ctx.NewBuffer().Size(-1).Done()
			return err
		}},
		{"buffer host smaller than size", ErrBoundaries, func() error {
			_, err := ctx.NewBuffer().Size(64).FromHost(make([]byte, 8)).Done()
			return err
		}},
		{"sub-buffer out of bounds", ErrBoundaries, func() error {
			_, err := buf.CreateSubBuffer(0, 48, 32)
			return err
		}},
		{"queue without device", ErrValue, func() error {
			_, err := ctx.NewQueue(nil).Done()
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			requireErrorIs(t, tc.call(), tc.err)
			require.Equal(t, calls, fake.TotalCalls(), "native calls made despite invalid arguments")
		})
	}

	// Sub-buffers of sub-buffers are not allowed.
	sub := capture(buf.CreateSubBuffer(0, 0, 32)).Test(t)
	calls = fake.TotalCalls()
	_, err := sub.CreateSubBuffer(0, 0, 16)
	requireErrorIs(t, err, ErrValue)
	require.Equal(t, calls, fake.TotalCalls())
}

func TestNativeErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)

	// Unknown image formats are left to the runtime to reject.
	_, err := env.ctx.CreateImage(clapi.MemReadWrite, clapi.ImageFormat{ChannelOrder: 0x4242, ChannelType: 0x4242},
		clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D, Width: 4, Height: 4}, nil)
	require.True(t, IsNative(err))
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_IMAGE_FORMAT_NOT_SUPPORTED, st)
	var nErr *NativeError
	require.ErrorAs(t, err, &nErr)
	require.Equal(t, "clCreateImage", nErr.Op)
	require.Contains(t, err.Error(), "CL_IMAGE_FORMAT_NOT_SUPPORTED")

	// Events of another context can't be waited on.
	other := capture(env.platform.CreateContext(env.devices[0])).Test(t)
	user := capture(other.CreateUserEvent()).Test(t)
	_, err = env.queue.WriteBuffer(buf, true, 0, make([]byte, 8), []*Event{user}, false)
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_EVENT_WAIT_LIST, st)
}

func TestMapUnmap(t *testing.T) {
	env := newTestEnv(t, nil)
	queue := env.queue
	buf := capture(env.ctx.NewBuffer().FromHost(iota8(64)).Done()).Test(t)

	mapped, event, err := queue.MapBuffer(buf, true, clapi.MapRead|clapi.MapWrite, 16, 8, nil, true)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, iota8(24)[16:], mapped)
	mapped[0] = 0xAA
	unmapped := capture(queue.Unmap(buf, mapped, nil, true)).Test(t)
	require.NoError(t, unmapped.Wait())
	require.Equal(t, uint32(clapi.CL_COMMAND_UNMAP_MEM_OBJECT), capture(unmapped.CommandType()).Test(t))
	got := make([]byte, 1)
	capture(queue.ReadBuffer(buf, true, 16, got, nil, false)).Test(t)
	require.Equal(t, byte(0xAA), got[0])

	// Unmapping memory that doesn't belong to the buffer is a native error.
	_, err = queue.Unmap(buf, make([]byte, 8), nil, false)
	require.True(t, IsNative(err))

	// Images: a 4x2 RGBA image.
	img := capture(env.ctx.CreateImage(clapi.MemReadWrite,
		clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_UNORM_INT8},
		clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D, Width: 4, Height: 2}, iota8(32))).Test(t)
	mapping, _, err := queue.MapImage(img, true, clapi.MapRead, [3]int{1, 0, 0}, [3]int{2, 2, 1}, nil, false)
	require.NoError(t, err)
	require.Equal(t, 16, mapping.RowPitch)
	require.Len(t, mapping.Data, 16+8)
	require.Equal(t, iota8(12)[4:], mapping.Data[:8])
	require.Equal(t, iota8(28)[20:], mapping.Data[16:])
	capture(queue.Unmap(img, mapping.Data, nil, false)).Test(t)

	capture(queue.MigrateMemObjects([]Wrapper{buf, img}, clapi.MigrateMemObjectHost, nil, false)).Test(t)
	require.Equal(t, 1, env.fake.Calls("clEnqueueMigrateMemObjects"))
}

func TestImages(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue := env.ctx, env.queue
	format := clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_UNORM_INT8}
	require.Equal(t, 4, PixelSize(format))
	require.Equal(t, 16, PixelSize(clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_FLOAT}))
	require.Zero(t, PixelSize(clapi.ImageFormat{ChannelOrder: 0x4242, ChannelType: clapi.CL_FLOAT}))

	desc := clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D, Width: 4, Height: 4}
	img := capture(ctx.CreateImage(clapi.MemReadWrite, format, desc, nil)).Test(t)
	require.Equal(t, format, img.Format())
	require.Equal(t, desc, img.Desc())
	require.Same(t, ctx, img.Context())
	_, err := ctx.CreateImage(clapi.MemReadWrite, format, clapi.ImageDesc{Type: clapi.CL_MEM_OBJECT_IMAGE2D}, nil)
	requireErrorIs(t, err, ErrValue)

	// Write a 2x2 block at (1, 1), with a padded host row pitch.
	block := make([]byte, 2*12)
	copy(block[0:8], bytes.Repeat([]byte{1}, 8))
	copy(block[12:20], bytes.Repeat([]byte{2}, 8))
	capture(queue.WriteImage(img, true, [3]int{1, 1, 0}, [3]int{2, 2, 1}, 12, 0, block, nil, false)).Test(t)

	// Fill the last row.
	var color [16]byte
	copy(color[:], []byte{3, 3, 3, 3})
	capture(queue.FillImage(img, color, [3]int{0, 3, 0}, [3]int{4, 1, 1}, nil, false)).Test(t)

	all := make([]byte, 64)
	capture(queue.ReadImage(img, true, [3]int{}, [3]int{4, 4, 1}, 0, 0, all, nil, false)).Test(t)
	require.Equal(t, bytes.Repeat([]byte{1}, 8), all[16+4:16+12])
	require.Equal(t, bytes.Repeat([]byte{2}, 8), all[32+4:32+12])
	require.Equal(t, bytes.Repeat([]byte{3}, 16), all[48:])
	require.Equal(t, make([]byte, 16), all[:16])

	// Copies between images, and to and from buffers.
	img2 := capture(ctx.CreateImage(clapi.MemReadWrite, format, desc, nil)).Test(t)
	capture(queue.CopyImage(img, img2, [3]int{0, 1, 0}, [3]int{0, 0, 0}, [3]int{4, 3, 1}, nil, false)).Test(t)
	buf := capture(ctx.NewBuffer().Size(64).Done()).Test(t)
	capture(queue.CopyImageToBuffer(img2, buf, [3]int{}, [3]int{4, 4, 1}, 0, nil, false)).Test(t)
	got := make([]byte, 64)
	capture(queue.ReadBuffer(buf, true, 0, got, nil, false)).Test(t)
	require.Equal(t, all[16:], got[:48])

	capture(queue.CopyBufferToImage(buf, img, 0, [3]int{}, [3]int{4, 1, 1}, nil, false)).Test(t)
	capture(queue.ReadImage(img, true, [3]int{}, [3]int{4, 1, 1}, 0, 0, got[:16], nil, false)).Test(t)
	require.Equal(t, all[16:32], got[:16])

	// Samplers.
	sampler := capture(ctx.CreateSampler(true, clapi.CL_ADDRESS_CLAMP, clapi.CL_FILTER_NEAREST)).Test(t)
	require.Equal(t, KindSampler, sampler.Kind())
	require.Same(t, ctx, sampler.Context())
	require.True(t, capture(sampler.NormalizedCoords()).Test(t))
	require.Equal(t, clapi.CL_ADDRESS_CLAMP, capture(sampler.AddressingMode()).Test(t))
	require.Equal(t, clapi.CL_FILTER_NEAREST, capture(sampler.FilterMode()).Test(t))
	linear := capture(ctx.CreateSampler(false, clapi.CL_ADDRESS_REPEAT, clapi.CL_FILTER_LINEAR)).Test(t)
	require.False(t, capture(linear.NormalizedCoords()).Test(t))
	require.Equal(t, clapi.CL_FILTER_LINEAR, capture(linear.FilterMode()).Test(t))
	_, err = ctx.CreateSampler(true, clapi.CL_ADDRESS_CLAMP, 0x4242)
	require.True(t, IsNative(err))
}

func TestOutOfOrderQueue(t *testing.T) {
	env := newTestEnv(t, nil)
	queue := capture(env.ctx.NewQueue(env.devices[1]).OutOfOrder().Done()).Test(t)
	require.Same(t, env.devices[1], queue.Device())
	require.Same(t, env.ctx, queue.Context())
	user := capture(env.ctx.CreateUserEvent()).Test(t)
	buf := capture(env.ctx.NewBuffer().Size(8).Done()).Test(t)

	// In an out-of-order queue, only the wait list orders the commands.
	blocked := capture(queue.FillBuffer(buf, []byte{1}, 0, 8, []*Event{user}, true)).Test(t)
	free := capture(queue.FillBuffer(buf, []byte{2}, 0, 4, nil, true)).Test(t)
	require.NoError(t, free.Wait())
	require.Equal(t, Queued, capture(blocked.Status()).Test(t))

	// A barrier without wait list waits for everything enqueued before it.
	barrier := capture(queue.Barrier(nil, true)).Test(t)
	require.Equal(t, Queued, capture(barrier.Status()).Test(t))
	require.NoError(t, user.SetUserStatus(Complete))
	require.NoError(t, WaitForEvents(blocked, barrier))
	require.Equal(t, bytes.Repeat([]byte{1}, 8), env.fake.Memory(buf.Raw()))
}

func TestFillThenCopy(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue := env.ctx, env.queue
	const size = 1024
	src := capture(ctx.NewBuffer().Size(size).Done()).Test(t)
	dst := capture(ctx.NewBuffer().Size(size).Done()).Test(t)

	fill := capture(queue.FillBuffer(src, []byte{1, 2, 3, 4}, 0, size, nil, true)).Test(t)
	copied := capture(queue.CopyBuffer(src, dst, 0, 0, size, []*Event{fill}, true)).Test(t)
	require.NoError(t, queue.Finish())
	require.Equal(t, Complete, capture(fill.Status()).Test(t))
	require.Equal(t, Complete, capture(copied.Status()).Test(t))

	got := make([]byte, size)
	capture(queue.ReadBuffer(dst, true, 0, got, nil, false)).Test(t)
	require.Equal(t, bytes.Repeat([]byte{1, 2, 3, 4}, size/4), got)
}

func TestWaitListOrdersCompletion(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := env.ctx
	queue := capture(ctx.NewQueue(env.devices[0]).OutOfOrder().Profiling().Done()).Test(t)
	user := capture(ctx.CreateUserEvent()).Test(t)
	src := capture(ctx.NewBuffer().Size(256).Done()).Test(t)
	dst := capture(ctx.NewBuffer().Size(256).Done()).Test(t)

	// The fill is held by the user event, the copy depends on the fill, and an unrelated write runs first.
	fill := capture(queue.FillBuffer(src, []byte{5}, 0, 256, []*Event{user}, true)).Test(t)
	copied := capture(queue.CopyBuffer(src, dst, 0, 0, 256, []*Event{fill}, true)).Test(t)
	unrelated := capture(queue.WriteBuffer(dst, true, 0, make([]byte, 16), nil, true)).Test(t)
	require.NoError(t, unrelated.Wait())
	require.Equal(t, Queued, capture(copied.Status()).Test(t))

	require.NoError(t, user.SetUserStatus(Complete))
	require.NoError(t, queue.Finish())
	fillProfile := capture(fill.Profiling()).Test(t)
	copyProfile := capture(copied.Profiling()).Test(t)
	require.GreaterOrEqual(t, copyProfile.Start, fillProfile.End)
	require.GreaterOrEqual(t, copyProfile.Complete, fillProfile.Complete)
	require.Equal(t, bytes.Repeat([]byte{5}, 256), env.fake.Memory(dst.Raw()))
}
